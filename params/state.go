package params

import "sync"

// State holds the current Params snapshot of one list view and tells
// subscribers when it is replaced. Views receive a *State explicitly instead
// of sharing update logic through embedding.
type State struct {
	mu       sync.Mutex
	cur      Params
	hidden   []string
	onChange []func(prev, next Params)
}

// NewState starts from initial. hidden names keys that stay in the view
// state but are never written to the location query string.
func NewState(initial Params, hidden ...string) *State {
	return &State{cur: initial, hidden: append([]string(nil), hidden...)}
}

// Params returns the current snapshot.
func (s *State) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// OnChange registers fn to run after every effective update.
func (s *State) OnChange(fn func(prev, next Params)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

// Update replaces the snapshot with next. Subscribers run, outside the lock,
// only when next differs from the current snapshot.
func (s *State) Update(next Params) bool {
	s.mu.Lock()
	prev, subs, changed := s.swap(next)
	s.mu.Unlock()
	notify(subs, prev, next, changed)
	return changed
}

// Apply derives the next snapshot from the current one and stores it. fn
// runs without the lock held, so it may read the State; when another update
// lands while fn runs, fn is called again with the newer snapshot.
func (s *State) Apply(fn func(Params) Params) Params {
	for {
		s.mu.Lock()
		base := s.cur
		s.mu.Unlock()

		next := fn(base)

		s.mu.Lock()
		if !s.cur.Equal(base) {
			s.mu.Unlock()
			continue
		}
		prev, subs, changed := s.swap(next)
		s.mu.Unlock()
		notify(subs, prev, next, changed)
		return next
	}
}

// swap must be called with s.mu held.
func (s *State) swap(next Params) (Params, []func(prev, next Params), bool) {
	prev := s.cur
	if prev.Equal(next) {
		return prev, nil, false
	}
	s.cur = next
	subs := make([]func(prev, next Params), len(s.onChange))
	copy(subs, s.onChange)
	return prev, subs, true
}

func notify(subs []func(prev, next Params), prev, next Params, changed bool) {
	if !changed {
		return
	}
	for _, fn := range subs {
		fn(prev, next)
	}
}

// Query is the query string for the location bar.
func (s *State) Query() string {
	return s.Params().Reduce(s.hidden...).Encode()
}
