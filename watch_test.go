package hubconsole

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWatcherDebouncesChanges(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "js"), 0o755))

	changes := make(chan string, 10)
	w, err := NewWatcher(dir, 50*time.Millisecond, func(p string) { changes <- p }, zap.NewNop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "js", "app.js"), []byte{byte(i)}, 0o644))
	}

	select {
	case p := <-changes:
		assert.Equal(t, "js/app.js", p)
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}

	select {
	case p := <-changes:
		t.Fatalf("burst reported twice, second for %s", p)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatcherMissingDir(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "nope"), time.Millisecond, func(string) {}, zap.NewNop())
	assert.Error(t, err)
}
