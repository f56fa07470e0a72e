package query

import "sync"

// Store owns the canonical Params for one surface. All mutation goes
// through Update or Reset; subscribers are notified synchronously, in
// subscription order, whenever the params actually change. Surfaces never
// hold a mutable reference: Params is a value and every read is a copy.
type Store struct {
	mu       sync.Mutex
	params   Params
	defaults Params
	subs     map[int]func(Params)
	nextSub  int
}

// NewStore creates a store seeded with the surface's default params.
func NewStore(defaults Params) *Store {
	return &Store{
		params:   defaults,
		defaults: defaults,
		subs:     make(map[int]func(Params)),
	}
}

// Params returns the current query parameters.
func (s *Store) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// Update applies fn to the current params and installs the result. If the
// returned params equal the current ones, subscribers are not notified.
// Returns the params now in effect.
func (s *Store) Update(fn func(Params) Params) Params {
	s.mu.Lock()
	next := fn(s.params)
	changed := !next.Equal(s.params)
	s.params = next
	subs := s.snapshotSubs()
	s.mu.Unlock()

	if changed {
		for _, sub := range subs {
			sub(next)
		}
	}
	return next
}

// Reset restores the surface defaults ("clear all filters").
func (s *Store) Reset() Params {
	defaults := s.defaults
	return s.Update(func(Params) Params { return defaults })
}

// Subscribe registers a callback invoked on every change. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Params)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// snapshotSubs returns subscribers in subscription order. Caller must hold mu.
func (s *Store) snapshotSubs() []func(Params) {
	ordered := make([]func(Params), 0, len(s.subs))
	for id := 0; id < s.nextSub; id++ {
		if sub, ok := s.subs[id]; ok {
			ordered = append(ordered, sub)
		}
	}
	return ordered
}
