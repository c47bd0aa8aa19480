package hubconsole

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/sfi2k7/hubconsole/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func namedBackend(t *testing.T, name string) *url.URL {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, name+" "+r.URL.Path)
	}))
	t.Cleanup(ts.Close)
	u, err := url.Parse(ts.URL)
	require.NoError(t, err)
	return u
}

func TestProxyNestedPrefixes(t *testing.T) {
	hub := namedBackend(t, "hub")
	v3 := namedBackend(t, "v3")
	registry := namedBackend(t, "registry")

	p := NewProxy([]config.ProxyTarget{
		{Prefix: "/api/", Target: hub},
		{Prefix: "/api/v3/", Target: v3},
		{Prefix: "/v2/", Target: registry},
	}, zap.NewNop(), nil)
	assert.Equal(t, []string{"/api/", "/v2/"}, p.roots())

	r := NewRouter(nil, nil)
	require.NotPanics(t, func() { p.Mount(r) })

	tests := []struct {
		path string
		want string
	}{
		{"/api/automation-hub/_ui/v1/me/", "hub /api/automation-hub/_ui/v1/me/"},
		{"/api/v3/collections/", "v3 /api/v3/collections/"},
		{"/api/v30/", "hub /api/v30/"},
		{"/v2/ee-minimal/manifests/latest", "registry /v2/ee-minimal/manifests/latest"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := do(t, r, http.MethodGet, tt.path)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestProxyUnknownPrefix(t *testing.T) {
	p := NewProxy([]config.ProxyTarget{{Prefix: "/api/", Target: namedBackend(t, "hub")}}, zap.NewNop(), nil)

	rec := httptest.NewRecorder()
	p.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pulp/api/v3/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"404"`)
}
