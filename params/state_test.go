package params

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStateUpdateNotifiesOnChange(t *testing.T) {
	s := NewState(New().SetInt("page", 1))

	var calls []string
	s.OnChange(func(prev, next Params) {
		calls = append(calls, prev.Encode()+" -> "+next.Encode())
	})

	assert.True(t, s.Update(s.Params().SetInt("page", 2)))
	assert.False(t, s.Update(New().SetInt("page", 2)), "equal snapshot is not a change")

	assert.Equal(t, []string{"page=1 -> page=2"}, calls)
	assert.Equal(t, 2, s.Params().Int("page", 0))
}

func TestStateQueryHidesKeys(t *testing.T) {
	s := NewState(Parse("page=1&tab=images&tag=latest", "page"), "tab")
	assert.Equal(t, "page=1&tag=latest", s.Query())
	assert.True(t, s.Params().Has("tab"))
}

func TestStateApplyIsAtomic(t *testing.T) {
	s := NewState(New().SetInt("page", 0))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Apply(func(p Params) Params {
				return p.SetInt("page", p.Int("page", 0)+1)
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.Params().Int("page", 0))
}

func TestStateApplyMayReadState(t *testing.T) {
	s := NewState(Parse("page=1&tab=images", "page"), "tab")

	done := make(chan Params)
	go func() {
		done <- s.Apply(func(p Params) Params {
			return p.SetText("seen", s.Query())
		})
	}()

	select {
	case next := <-done:
		assert.Equal(t, "page=1", next.Text("seen"))
		assert.Equal(t, "page=1&seen=page%3D1", s.Query())
	case <-time.After(2 * time.Second):
		t.Fatal("Apply blocked while fn read the state")
	}
}
