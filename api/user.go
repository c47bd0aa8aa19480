package api

import (
	"context"
	"net/http"

	"github.com/sfi2k7/hubconsole/params"
)

type Group struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID               int             `json:"id"`
	Username         string          `json:"username"`
	FirstName        string          `json:"first_name"`
	LastName         string          `json:"last_name"`
	Email            string          `json:"email"`
	Groups           []Group         `json:"groups"`
	IsAnonymous      bool            `json:"is_anonymous"`
	IsSuperuser      bool            `json:"is_superuser"`
	ModelPermissions map[string]bool `json:"model_permissions"`
}

// ActiveUserService reads and ends the current session.
type ActiveUserService struct {
	client *Client
}

func (s *ActiveUserService) Get(ctx context.Context) (*User, error) {
	u := &User{}
	if err := s.client.do(ctx, http.MethodGet, "_ui/v1/me/", params.New(), nil, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *ActiveUserService) Logout(ctx context.Context) error {
	return s.client.do(ctx, http.MethodPost, "_ui/v1/auth/logout/", params.New(), struct{}{}, nil)
}
