package api

import (
	"context"
	"sync"
	"testing"

	"github.com/sfi2k7/hubconsole/params"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderReportsSupersededResults(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})

	l := NewLoader[string](func(ctx context.Context, p params.Params) (*Page[string], error) {
		if p.Int("page", 0) == 1 {
			close(started)
			<-release
		}
		return &Page[string]{Data: []string{p.Encode()}}, nil
	})

	var (
		wg        sync.WaitGroup
		slow      *Page[string]
		slowFresh bool
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		var err error
		slow, slowFresh, err = l.Load(context.Background(), params.New().SetInt("page", 1))
		assert.NoError(t, err)
	}()

	<-started
	fast, fastFresh, err := l.Load(context.Background(), params.New().SetInt("page", 2))
	require.NoError(t, err)
	close(release)
	wg.Wait()

	assert.True(t, fastFresh)
	assert.Equal(t, []string{"page=2"}, fast.Data)
	assert.False(t, slowFresh, "the first query was superseded while in flight")
	assert.Equal(t, []string{"page=1"}, slow.Data)
}
