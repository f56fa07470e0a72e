package suggest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/romindigital/ikirezi-bookstore-sub002/internal/domain"
)

// State identifies where an input session sits in the suggestion lifecycle.
type State string

const (
	// StateIdle: input below the minimum length, nothing pending.
	StateIdle State = "idle"
	// StateDebouncing: input long enough, quiet-period timer running.
	StateDebouncing State = "debouncing"
	// StateFetching: quiet period elapsed, a fetch is in flight.
	StateFetching State = "fetching"
	// StateDisplaying: the latest fetch resolved and its outcome is shown.
	StateDisplaying State = "displaying"
)

// Snapshot is the externally visible suggestion state. Candidates belong to
// the snapshot; observers must treat the slice as read-only.
type Snapshot struct {
	State      State
	Query      string
	Candidates []domain.Book
	Pending    bool
	RequestID  uint64
	Err        error
}

// Fetcher retrieves suggestion candidates for a query. It is called at most
// once per quiet period, off the input path.
type Fetcher func(ctx context.Context, query string, limit int) ([]domain.Book, error)

// Config tunes the debouncer. Zero values fall back to the defaults.
type Config struct {
	// Quiet is the delay after the last keystroke before a fetch fires.
	Quiet time.Duration
	// MinLength is the input length below which no fetch is issued and
	// candidates are cleared immediately.
	MinLength int
	// Limit caps the candidate list.
	Limit int
}

const (
	defaultQuiet     = 300 * time.Millisecond
	defaultMinLength = 2
	defaultLimit     = 5
)

// Debouncer turns a rapid stream of keystrokes into a sparse stream of
// fetches and guarantees the observer only ever sees results for the newest
// input. Responses carry the request ID they were issued with; a response
// whose ID is no longer the latest is dropped, so a slow round-trip for an
// old query can never overwrite a newer result. There is at most one pending
// timer per debouncer: each keystroke resets it, never stacks another.
type Debouncer struct {
	mu       sync.Mutex
	fetch    Fetcher
	observer func(Snapshot)
	cfg      Config

	ctx    context.Context
	cancel context.CancelFunc

	timer  *time.Timer
	latest uint64
	snap   Snapshot
	closed bool
}

// New creates a debouncer. The observer is invoked synchronously, under the
// debouncer's lock, on every snapshot change; it must not call back into the
// Debouncer. A nil observer is allowed.
func New(fetch Fetcher, cfg Config, observer func(Snapshot)) *Debouncer {
	if cfg.Quiet <= 0 {
		cfg.Quiet = defaultQuiet
	}
	if cfg.MinLength <= 0 {
		cfg.MinLength = defaultMinLength
	}
	if cfg.Limit <= 0 {
		cfg.Limit = defaultLimit
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Debouncer{
		fetch:    fetch,
		observer: observer,
		cfg:      cfg,
		ctx:      ctx,
		cancel:   cancel,
		snap:     Snapshot{State: StateIdle},
	}
}

// Input feeds one keystroke's worth of text. Short input clears candidates
// and returns to idle immediately; otherwise the quiet-period timer is reset
// and a fetch fires once typing pauses.
func (d *Debouncer) Input(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}

	trimmed := strings.TrimSpace(text)

	d.stopTimer()

	if len([]rune(trimmed)) < d.cfg.MinLength {
		// Invalidate any in-flight fetch; its response will fail the ID check.
		d.latest++
		d.publish(Snapshot{State: StateIdle, Query: trimmed, RequestID: d.latest})
		return
	}

	d.publish(Snapshot{
		State:      StateDebouncing,
		Query:      trimmed,
		Candidates: d.snap.Candidates,
		RequestID:  d.snap.RequestID,
	})

	d.timer = time.AfterFunc(d.cfg.Quiet, func() { d.fire(trimmed) })
}

// Cancel discards the pending timer and any in-flight fetch and returns to
// idle. Used on blur and unmount.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.stopTimer()
	d.latest++
	d.publish(Snapshot{State: StateIdle, RequestID: d.latest})
}

// Close cancels outstanding work and stops accepting input.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return
	}
	d.stopTimer()
	d.latest++
	d.closed = true
	d.publish(Snapshot{State: StateIdle, RequestID: d.latest})
	d.cancel()
}

// Snapshot returns a copy of the current suggestion state.
func (d *Debouncer) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	snap := d.snap
	if snap.Candidates != nil {
		snap.Candidates = append([]domain.Book(nil), snap.Candidates...)
	}
	return snap
}

// fire runs when the quiet period elapses without further input. It issues
// exactly one fetch tagged with a fresh request ID.
func (d *Debouncer) fire(text string) {
	d.mu.Lock()

	// A keystroke that raced the timer has already superseded this fire.
	if d.closed || d.snap.State != StateDebouncing || d.snap.Query != text {
		d.mu.Unlock()
		return
	}

	d.latest++
	id := d.latest
	d.publish(Snapshot{
		State:      StateFetching,
		Query:      text,
		Candidates: d.snap.Candidates,
		Pending:    true,
		RequestID:  id,
	})
	d.mu.Unlock()

	go func() {
		candidates, err := d.fetch(d.ctx, text, d.cfg.Limit)
		d.resolve(id, text, candidates, err)
	}()
}

// resolve applies a fetch outcome, unless a newer request has been issued in
// the meantime. Stale responses are dropped silently regardless of arrival
// order.
func (d *Debouncer) resolve(id uint64, text string, candidates []domain.Book, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || id != d.latest {
		return
	}

	if err != nil {
		d.publish(Snapshot{State: StateDisplaying, Query: text, RequestID: id, Err: err})
		return
	}

	if len(candidates) > d.cfg.Limit {
		candidates = candidates[:d.cfg.Limit]
	}
	d.publish(Snapshot{
		State:      StateDisplaying,
		Query:      text,
		Candidates: candidates,
		RequestID:  id,
	})
}

// publish installs a snapshot and notifies the observer. Caller must hold mu.
func (d *Debouncer) publish(snap Snapshot) {
	d.snap = snap
	if d.observer != nil {
		d.observer(snap)
	}
}

// stopTimer stops the pending quiet-period timer, if any. Caller must hold mu.
func (d *Debouncer) stopTimer() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
