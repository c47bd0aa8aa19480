package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sfi2k7/hubconsole/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--ui-debug=false"}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func backend(t *testing.T, h http.HandlerFunc) string {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv.URL
}

func TestImages(t *testing.T) {
	url := backend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/automation-hub/_ui/v1/execution-environments/repositories/ee-minimal/_content/images/", r.URL.Path)
		assert.Equal(t, "latest", r.URL.Query().Get("tag"))
		assert.Equal(t, "10", r.URL.Query().Get("offset"))
		_, _ = io.WriteString(w, `{"data":[{"digest":"sha256:0123456789abcdef","tags":["latest","1.0"],"layers":[{"digest":"sha256:l1","size":1024},{"digest":"sha256:l2","size":512}]}],"meta":{"count":11}}`)
	})

	out, _, err := run(t, "--api-host", url, "images", "ee-minimal", "tag=latest&page=2")
	require.NoError(t, err)
	assert.Contains(t, out, "filter tag: latest")
	assert.Contains(t, out, "DIGEST")
	assert.Contains(t, out, "1.0,latest")
	assert.Contains(t, out, "1.5 KiB")
	assert.Contains(t, out, "podman pull "+strings.TrimPrefix(url, "http://")+"/ee-minimal:1.0")
	assert.Contains(t, out, "page 2 of 2 (11 images)")
}

func TestImagesJSON(t *testing.T) {
	url := backend(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"data":[],"meta":{"count":0}}`)
	})

	out, stderr, err := run(t, "--api-host", url, "--format", "json", "images", "ee-minimal", "page_size=lots")
	require.NoError(t, err)
	assert.Contains(t, stderr, `"lots" is not a number`)

	var res imagesResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "page=1&page_size=10", res.Query)
	assert.Equal(t, 1, res.Pages)
}

func TestNamespacesCreateValidatesLocally(t *testing.T) {
	_, _, err := run(t, "--api-host", "http://127.0.0.1:1", "namespaces", "create", "ab")
	require.Error(t, err)
	assert.Equal(t, "name: Name must be longer than 2 characters", err.Error())
}

func TestNamespacesCreateServerErrors(t *testing.T) {
	url := backend(t, func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Name   string `json:"name"`
			Groups []struct {
				Name              string   `json:"name"`
				ObjectPermissions []string `json:"object_permissions"`
			} `json:"groups"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		require.Len(t, in.Groups, 1)
		assert.Equal(t, "partners", in.Groups[0].Name)
		assert.Contains(t, in.Groups[0].ObjectPermissions, "galaxy.upload_to_namespace")

		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"errors":[{"detail":"already exists","source":{"parameter":"name"}}]}`)
	})

	_, _, err := run(t, "--api-host", url, "namespaces", "create", "community", "--group", "partners")
	require.Error(t, err)
	assert.Equal(t, "name: already exists", err.Error())
}

func TestWhoami(t *testing.T) {
	url := backend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token abc", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"username":"admin","first_name":"Ada","last_name":"Lovelace"}`)
	})

	out, _, err := run(t, "--api-host", url, "--api-token", "abc", "whoami")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace\n", out)
}

func TestRemotesSync(t *testing.T) {
	url := backend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/automation-hub/content/community/v3/sync/", r.URL.Path)
		_, _ = io.WriteString(w, `{"task":"t-1"}`)
	})

	out, _, err := run(t, "--api-host", url, "remotes", "sync", "community")
	require.NoError(t, err)
	assert.Equal(t, "sync of community started, task t-1\n", out)
}

func TestTOC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "version.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"docs_blob":{
		"documentation_files":[{"name":"porting_guide.md"}],
		"contents":[{"content_name":"acl","content_type":"module"}]}}`), 0o644))

	out, _, err := run(t, "toc", path, "--namespace", "cisco", "--collection", "ios", "--name", "acl", "--type", "module", "version=2.0.0")
	require.NoError(t, err)
	assert.Contains(t, out, "Documentation (2)")
	assert.Contains(t, out, "Modules (1) *")
	assert.Contains(t, out, "* acl  /cisco/ios/content/module/acl?version=2.0.0")

	_, _, err = run(t, "toc", path)
	assert.Error(t, err, "namespace and collection are required")
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := run(t, "--format", "yaml", "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestParseQueryOverDefaults(t *testing.T) {
	var warn bytes.Buffer
	defaults := params.New().SetInt("page", 1).SetInt("page_size", 10)

	p := parseQuery(&warn, defaults, []string{"page_size=50&q=x&page=x"}, "page", "page_size")
	assert.Equal(t, "page=1&page_size=50&q=x", p.Encode())
	assert.Contains(t, warn.String(), "ignored")

	assert.True(t, parseQuery(&warn, defaults, nil).Equal(defaults))
}
