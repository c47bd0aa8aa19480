package api

import (
	"context"
	"time"

	"github.com/sfi2k7/hubconsole/params"
)

// ImageParams are parsed as numbers when an image list query is read.
var ImageParams = []string{"page", "page_size"}

// imageViewOnly are view parameters the images endpoint does not accept.
// sort is passed through; the hub orders the manifests.
var imageViewOnly = []string{"tab"}

// Layer is one blob of a manifest.
type Layer struct {
	Digest string `json:"digest"`
	Size   int64  `json:"size"`
}

type ContainerManifest struct {
	ID            string    `json:"id"`
	Digest        string    `json:"digest"`
	SchemaVersion int       `json:"schema_version"`
	MediaType     string    `json:"media_type"`
	Tags          []string  `json:"tags"`
	PulpCreated   time.Time `json:"pulp_created"`
	Layers        []Layer   `json:"layers"`
	ConfigBlob    struct {
		Digest    string `json:"digest"`
		MediaType string `json:"media_type"`
	} `json:"config_blob"`
}

// Size is the sum of the layer sizes.
func (m ContainerManifest) Size() int64 {
	var n int64
	for _, l := range m.Layers {
		n += l.Size
	}
	return n
}

// ExecutionEnvironmentService reads container repositories.
type ExecutionEnvironmentService struct {
	client *Client
}

// ListImages lists the manifests of repo filtered by p.
func (s *ExecutionEnvironmentService) ListImages(ctx context.Context, repo string, p params.Params) (*Page[ContainerManifest], error) {
	path := "_ui/v1/execution-environments/repositories/" + repo + "/_content/images/"
	return list[ContainerManifest](ctx, s.client, path, p.Reduce(imageViewOnly...))
}
