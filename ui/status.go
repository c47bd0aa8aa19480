// Package ui holds the view models behind the console pages: everything a
// page derives from API data and the URL query before it renders.
package ui

import "github.com/sfi2k7/hubconsole/api"

type Color string

const (
	Blue   Color = "blue"
	Orange Color = "orange"
	Green  Color = "green"
	Red    Color = "red"
	Grey   Color = "grey"
)

// Label is what a status indicator shows.
type Label struct {
	Color Color  `json:"color"`
	Text  string `json:"text"`
	Icon  string `json:"icon,omitempty"`
}

// Status maps a task state to its indicator.
func Status(s api.TaskState) Label {
	switch s {
	case api.TaskWaiting:
		return Label{Color: Blue, Text: "Pending", Icon: "outlined-clock"}
	case api.TaskSkipped, api.TaskCanceled:
		return Label{Color: Orange, Text: "Canceled", Icon: "exclamation-triangle"}
	case api.TaskRunning:
		return Label{Color: Blue, Text: "Running", Icon: "sync-alt"}
	case api.TaskCompleted:
		return Label{Color: Green, Text: "Completed", Icon: "check-circle"}
	case api.TaskFailed:
		return Label{Color: Red, Text: "Failed", Icon: "exclamation-circle"}
	}
	return Label{Color: Grey, Text: "---"}
}

// SyncStatus is the indicator of the last sync of r, "---" when it never ran.
func SyncStatus(r api.Remote) Label {
	if r.LastSyncTask == nil {
		return Status("")
	}
	return Status(r.LastSyncTask.State)
}
