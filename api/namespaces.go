package api

import (
	"context"
	"net/http"

	"github.com/sfi2k7/hubconsole/params"
)

const namespacesPath = "_ui/v1/namespaces/"

// GroupPermissions grants a group object permissions on a namespace.
type GroupPermissions struct {
	ID                int      `json:"id,omitempty"`
	Name              string   `json:"name"`
	ObjectPermissions []string `json:"object_permissions"`
}

type Namespace struct {
	ID            int                `json:"id,omitempty"`
	Name          string             `json:"name"`
	Company       string             `json:"company,omitempty"`
	Description   string             `json:"description,omitempty"`
	AvatarURL     string             `json:"avatar_url,omitempty"`
	Groups        []GroupPermissions `json:"groups"`
	MyPermissions []string           `json:"my_permissions,omitempty"`
}

// NamespaceService manages collection namespaces.
type NamespaceService struct {
	client *Client
}

func (s *NamespaceService) List(ctx context.Context, p params.Params) (*Page[Namespace], error) {
	return list[Namespace](ctx, s.client, namespacesPath, p)
}

func (s *NamespaceService) Get(ctx context.Context, name string) (*Namespace, error) {
	ns := &Namespace{}
	if err := s.client.do(ctx, http.MethodGet, namespacesPath+name+"/", params.New(), nil, ns); err != nil {
		return nil, err
	}
	return ns, nil
}

// Create makes a namespace owned by groups.
func (s *NamespaceService) Create(ctx context.Context, name string, groups []GroupPermissions) (*Namespace, error) {
	if groups == nil {
		groups = []GroupPermissions{}
	}
	in := Namespace{Name: name, Groups: groups}
	out := &Namespace{}
	if err := s.client.do(ctx, http.MethodPost, namespacesPath, params.New(), in, out); err != nil {
		return nil, err
	}
	return out, nil
}
