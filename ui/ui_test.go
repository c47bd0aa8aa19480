package ui

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/sfi2k7/hubconsole/api"
	"github.com/sfi2k7/hubconsole/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		state api.TaskState
		color Color
		text  string
	}{
		{api.TaskWaiting, Blue, "Pending"},
		{api.TaskSkipped, Orange, "Canceled"},
		{api.TaskCanceled, Orange, "Canceled"},
		{api.TaskRunning, Blue, "Running"},
		{api.TaskCompleted, Green, "Completed"},
		{api.TaskFailed, Red, "Failed"},
		{"bogus", Grey, "---"},
	}
	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			l := Status(tt.state)
			assert.Equal(t, tt.color, l.Color)
			assert.Equal(t, tt.text, l.Text)
		})
	}

	assert.Equal(t, "---", SyncStatus(api.Remote{}).Text)
	assert.Equal(t, "Failed", SyncStatus(api.Remote{LastSyncTask: &api.SyncTask{State: api.TaskFailed}}).Text)
}

func TestTogglePermission(t *testing.T) {
	in := []string{"a", "b"}
	assert.Equal(t, []string{"a", "b", "c"}, TogglePermission(in, "c"))
	assert.Equal(t, []string{"b"}, TogglePermission(in, "a"))
	assert.Equal(t, []string{"a", "b"}, in)

	assert.Equal(t, "Select permissions", PermissionPlaceholder(nil, false))
	assert.Equal(t, "No permission", PermissionPlaceholder(nil, true))
	assert.Equal(t, "", PermissionPlaceholder(in, true))
}

func TestValidateNamespaceName(t *testing.T) {
	tests := map[string]string{
		"":          "Please, provide the namespace name",
		"my-ns":     "Name can only contain letters and numbers",
		"ab":        "Name must be longer than 2 characters",
		"_private":  "Name cannot begin with '_'",
		"community": "",
	}
	for name, want := range tests {
		got := ValidateNamespaceName(name)
		if want == "" {
			assert.Nil(t, got, name)
			continue
		}
		assert.Equal(t, map[string]string{"name": want}, got, name)
	}
}

func TestMergeFieldErrors(t *testing.T) {
	local := map[string]string{"groups": "pick one"}
	apiErr := &api.Error{StatusCode: http.StatusBadRequest, Errors: []api.ErrorDetail{{Detail: "exists"}}}
	apiErr.Errors[0].Source.Parameter = "name"

	got := MergeFieldErrors(local, errors.Wrap(apiErr, "create"))
	assert.Equal(t, map[string]string{"groups": "pick one", "name": "exists"}, got)
	assert.Len(t, local, 1)

	got = MergeFieldErrors(nil, errors.New("connection refused"))
	assert.Equal(t, "connection refused", got["__nofield"])
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Jane Doe", DisplayName(api.User{Username: "jd", FirstName: "Jane", LastName: "Doe"}))
	assert.Equal(t, "Doe", DisplayName(api.User{Username: "jd", LastName: "Doe"}))
	assert.Equal(t, "jd", DisplayName(api.User{Username: "jd"}))
}

func TestAppliedFilters(t *testing.T) {
	p := params.Parse("page=2&tag=latest&tag=1.0&sort=-created&digest__icontains=abc&tab=images", "page")

	got := AppliedFilters(p, DefaultIgnored...)
	want := []Chip{{"tag", "latest"}, {"tag", "1.0"}, {"digest__icontains", "abc"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("AppliedFilters (-want +got):\n%s", diff)
	}

	p = RemoveFilter(p, Chip{"tag", "latest"})
	assert.Equal(t, "page=1&tag=1.0&sort=-created&digest__icontains=abc&tab=images", p.Encode())

	p = RemoveFilter(p, Chip{"tag", "1.0"})
	assert.False(t, p.Has("tag"))

	p = ClearFilters(p, DefaultIgnored...)
	assert.Equal(t, "page=1&sort=-created&tab=images", p.Encode())
}

func TestAddFilter(t *testing.T) {
	p := params.Parse("page=3", "page")
	p = AddFilter(p, "tag", "latest")
	p = AddFilter(p, "tag", "latest")
	p = AddFilter(p, "tag", "")
	assert.Equal(t, "page=1&tag=latest", p.Encode())

	p = AddFilter(p, "tag", "1.0")
	v, _ := p.Get("tag")
	assert.True(t, v.IsSeq())
}

func TestNumericFilterChips(t *testing.T) {
	p := params.Parse("page=2&owner_id=7&owner_id=9", "page", "owner_id")

	chips := AppliedFilters(p, DefaultIgnored...)
	require.Equal(t, []Chip{{"owner_id", "7"}, {"owner_id", "9"}}, chips)

	p = RemoveFilter(p, chips[0])
	assert.Equal(t, "page=1&owner_id=9", p.Encode())
	first, _ := p.First("owner_id")
	assert.True(t, first.IsNumber())

	p = AddFilter(p, "owner_id", "9")
	assert.Equal(t, "page=1&owner_id=9", p.Encode(), "already applied")
	p = AddFilter(p, "owner_id", "12")
	assert.True(t, p.Exists("owner_id", params.Int(12)))
	assert.False(t, p.Exists("owner_id", params.Text("12")))

	assert.True(t, p.Equal(RemoveFilter(p, Chip{"owner_id", "404"})), "unknown chip is a no-op")
}

func TestSortAndPaging(t *testing.T) {
	p := params.Parse("page=4&page_size=20", "page", "page_size")

	p = ToggleSort(p, "name")
	assert.Equal(t, "name", p.Text(SortKey))
	assert.Equal(t, 1, p.Int(PageKey, 0))
	p = ToggleSort(p, "name")
	assert.Equal(t, "-name", p.Text(SortKey))
	p = ToggleSort(p, "name")
	assert.Equal(t, "name", p.Text(SortKey))
	p = ToggleSort(p, "created")
	assert.Equal(t, "created", p.Text(SortKey))

	p = SetPage(p, 5)
	assert.Equal(t, 5, p.Int(PageKey, 0))
	assert.Equal(t, 1, SetPage(p, -1).Int(PageKey, 0))

	p = SetPageSize(p, 50)
	assert.Equal(t, 50, p.Int(PageSizeKey, 0))
	assert.Equal(t, 1, p.Int(PageKey, 0))

	assert.Equal(t, 1, PageCount(0, 10))
	assert.Equal(t, 1, PageCount(10, 10))
	assert.Equal(t, 3, PageCount(21, 10))
	assert.Equal(t, 3, PageCount(21, 0))
}

func TestImageRow(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := api.ContainerManifest{
		Digest: "sha256:0123456789abcdef0123",
		Tags:   []string{"latest", "1.0"},
		Layers: []api.Layer{
			{Digest: "sha256:l1", Size: 2 * 1024 * 1024},
			{Digest: "sha256:l2", Size: 1024 * 1024},
		},
		PulpCreated: now.Add(-2 * time.Hour),
	}

	row := NewImageRow(m, "hub.example.com/", "ee-minimal", now)
	assert.Equal(t, []string{"1.0", "latest"}, row.Tags)
	assert.Equal(t, []string{"latest", "1.0"}, m.Tags)
	assert.Equal(t, 2, row.Layers)
	assert.Equal(t, "3.0 MiB", row.Size)
	assert.Equal(t, "2 hours ago", row.Age)
	assert.Equal(t, "podman pull hub.example.com/ee-minimal:1.0", row.PullCommand)

	m.Tags = nil
	row = NewImageRow(m, "hub.example.com", "ee-minimal", now)
	assert.Equal(t, "podman pull hub.example.com/ee-minimal@sha256:0123456789abcdef0123", row.PullCommand)

	assert.Len(t, ImageRows([]api.ContainerManifest{m, m}, "r", "x", now), 2)
	assert.Equal(t, "sha256:0123456789ab", ShortDigest(m.Digest))
	assert.Equal(t, "abc", ShortDigest("abc"))
}

func TestImageParamsDefaults(t *testing.T) {
	assert.Equal(t, "page=1&page_size=10", ImageParams.Encode())
}
