package api

import (
	"context"
	"net/http"
	"time"

	"github.com/sfi2k7/hubconsole/params"
)

const remotesPath = "_ui/v1/remotes/"

// TaskState is the state of a pulp task.
type TaskState string

const (
	TaskWaiting   TaskState = "waiting"
	TaskSkipped   TaskState = "skipped"
	TaskCanceled  TaskState = "canceled"
	TaskRunning   TaskState = "running"
	TaskCompleted TaskState = "completed"
	TaskFailed    TaskState = "failed"
)

type SyncTask struct {
	State      TaskState  `json:"state"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      *struct {
		Description string `json:"description"`
		Traceback   string `json:"traceback"`
	} `json:"error,omitempty"`
}

// Remote is the sync configuration of a distribution.
type Remote struct {
	Name             string    `json:"name"`
	URL              string    `json:"url"`
	AuthURL          string    `json:"auth_url"`
	Token            string    `json:"token"`
	RequirementsFile string    `json:"requirements_file"`
	TLSValidation    bool      `json:"tls_validation"`
	Username         string    `json:"username"`
	Password         string    `json:"password"`
	ProxyURL         string    `json:"proxy_url"`
	ClientKey        string    `json:"client_key"`
	ClientCert       string    `json:"client_cert"`
	CACert           string    `json:"ca_cert"`
	LastSyncTask     *SyncTask `json:"last_sync_task,omitempty"`
	UpdatedAt        time.Time `json:"updated_at,omitempty"`
}

// updateBody is the request body of a remote update. The always-sent
// fields are copied as is, the optional ones only when set, and empty
// file fields are sent as null so the server clears them.
func (r Remote) updateBody() map[string]interface{} {
	body := map[string]interface{}{
		"url":               r.URL,
		"name":              r.Name,
		"auth_url":          r.AuthURL,
		"token":             r.Token,
		"requirements_file": r.RequirementsFile,
		"tls_validation":    r.TLSValidation,
	}
	optional := []struct {
		key string
		set bool
		val interface{}
	}{
		{"username", r.Username != "", r.Username},
		{"password", r.Password != "", r.Password},
		{"proxy_url", r.ProxyURL != "", r.ProxyURL},
		{"tls_validation", r.TLSValidation, r.TLSValidation},
		{"client_key", r.ClientKey != "", r.ClientKey},
		{"client_cert", r.ClientCert != "", r.ClientCert},
		{"ca_cert", r.CACert != "", r.CACert},
	}
	for _, o := range optional {
		if o.set {
			body[o.key] = o.val
		}
	}
	for _, k := range []string{"requirements_file", "client_key", "client_cert", "ca_cert"} {
		if body[k] == "" {
			body[k] = nil
		}
	}
	return body
}

// RemoteService manages sync remotes.
type RemoteService struct {
	client *Client
}

func syncConfigPath(distribution string) string {
	return "content/" + distribution + "/v3/sync/config/"
}

func (s *RemoteService) List(ctx context.Context, p params.Params) (*Page[Remote], error) {
	return list[Remote](ctx, s.client, remotesPath, p)
}

// Get returns the sync configuration of distribution.
func (s *RemoteService) Get(ctx context.Context, distribution string) (*Remote, error) {
	r := &Remote{}
	if err := s.client.do(ctx, http.MethodGet, syncConfigPath(distribution), params.New(), nil, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Update replaces the sync configuration of distribution.
func (s *RemoteService) Update(ctx context.Context, distribution string, r Remote) (*Remote, error) {
	out := &Remote{}
	if err := s.client.do(ctx, http.MethodPut, syncConfigPath(distribution), params.New(), r.updateBody(), out); err != nil {
		return nil, err
	}
	return out, nil
}

// Sync starts a sync of distribution and returns the task id.
func (s *RemoteService) Sync(ctx context.Context, distribution string) (string, error) {
	var out struct {
		Task string `json:"task"`
	}
	if err := s.client.do(ctx, http.MethodPost, "content/"+distribution+"/v3/sync/", params.New(), struct{}{}, &out); err != nil {
		return "", err
	}
	return out.Task, nil
}
