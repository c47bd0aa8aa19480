package ui

import (
	"sort"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/sfi2k7/hubconsole/api"
	"github.com/sfi2k7/hubconsole/params"
)

// ImageParams are the defaults of the images tab.
var ImageParams = params.New().
	SetInt(PageKey, api.DefaultPage).
	SetInt(PageSizeKey, api.DefaultPageSize)

// ImageFilters are the filters the images tab offers.
var ImageFilters = []string{"tag", "digest__icontains"}

type ImageRow struct {
	Digest      string    `json:"digest"`
	Tags        []string  `json:"tags"`
	Layers      int       `json:"layers"`
	Size        string    `json:"size"`
	Created     time.Time `json:"created"`
	Age         string    `json:"age"`
	PullCommand string    `json:"pull_command"`
}

// NewImageRow prepares a manifest for the images table of repo served
// from registry.
func NewImageRow(m api.ContainerManifest, registry, repo string, now time.Time) ImageRow {
	tags := append([]string(nil), m.Tags...)
	sort.Strings(tags)

	ref := repo + ":"
	if len(tags) > 0 {
		ref += tags[0]
	} else {
		ref = repo + "@" + m.Digest
	}
	size := m.Size()
	if size < 0 {
		size = 0
	}
	row := ImageRow{
		Digest:      m.Digest,
		Tags:        tags,
		Layers:      len(m.Layers),
		Size:        humanize.IBytes(uint64(size)),
		Created:     m.PulpCreated,
		PullCommand: "podman pull " + strings.TrimSuffix(registry, "/") + "/" + ref,
	}
	if !m.PulpCreated.IsZero() {
		row.Age = humanize.RelTime(m.PulpCreated, now, "ago", "from now")
	}
	return row
}

// ImageRows converts a page of manifests.
func ImageRows(ms []api.ContainerManifest, registry, repo string, now time.Time) []ImageRow {
	out := make([]ImageRow, 0, len(ms))
	for _, m := range ms {
		out = append(out, NewImageRow(m, registry, repo, now))
	}
	return out
}

// ShortDigest trims a digest to the form shown in tables.
func ShortDigest(d string) string {
	if i := strings.IndexByte(d, ':'); i >= 0 && len(d) > i+1+12 {
		return d[:i+1+12]
	}
	return d
}
