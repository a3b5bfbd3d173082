package store

import (
	"context"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/smokesignal/smokesignal/pkg/types"
)

// Entry is a snapshot together with its provenance.
type Entry struct {
	Snapshot types.Snapshot

	// Origin names the sender: an agent name or "file:<path>".
	Origin string

	// GeneratedAt is the agent's cycle time; zero when unknown.
	GeneratedAt time.Time

	// UpdatedAt is when the server accepted the snapshot.
	UpdatedAt time.Time
}

// Store is a thread-safe holder for the latest snapshot.
type Store struct {
	mu         sync.RWMutex
	latest     *Entry
	staleAfter time.Duration
	subs       []func(*Entry)
	now        func() time.Time // injectable for deterministic tests
}

// New creates a Store that flags its snapshot stale after staleAfter.
// Zero disables staleness.
func New(staleAfter time.Duration) *Store {
	return &Store{
		staleAfter: staleAfter,
		now:        time.Now,
	}
}

// OnPut registers fn to be called with each new entry. Register before
// serving; subscribers must not call Put.
func (s *Store) OnPut(fn func(*Entry)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// Put replaces the current snapshot. snap is copied.
func (s *Store) Put(snap types.Snapshot, origin string, generatedAt time.Time) *Entry {
	e := &Entry{
		Snapshot:    maps.Clone(snap),
		Origin:      origin,
		GeneratedAt: generatedAt,
	}
	if e.Snapshot == nil {
		e.Snapshot = types.Snapshot{}
	}

	s.mu.Lock()
	e.UpdatedAt = s.now()
	s.latest = e
	subs := s.subs
	s.mu.Unlock()

	for _, fn := range subs {
		fn(e)
	}
	return e
}

// Latest returns the current entry, or false before the first Put.
// Callers must treat the entry as read-only.
func (s *Store) Latest() (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.latest != nil
}

// Get returns one target's result from the current snapshot.
func (s *Store) Get(name string) (types.TargetResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return types.TargetResult{}, false
	}
	r, ok := s.latest.Snapshot[name]
	return r, ok
}

// Stale reports whether the current snapshot is older than StaleAfter.
// An empty store is not stale.
func (s *Store) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.staleLocked(s.now())
}

func (s *Store) staleLocked(now time.Time) bool {
	if s.latest == nil || s.staleAfter <= 0 {
		return false
	}
	return now.Sub(s.latest.UpdatedAt) > s.staleAfter
}

// Run logs once each time the snapshot goes stale. It ticks at half the
// StaleAfter interval (minimum 1 second) and blocks until ctx is cancelled.
// It returns immediately when staleness is disabled.
func (s *Store) Run(ctx context.Context) {
	if s.staleAfter <= 0 {
		return
	}
	interval := s.staleAfter / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	var warnedFor *Entry
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.mu.RLock()
			stale := s.staleLocked(now)
			cur := s.latest
			s.mu.RUnlock()
			if stale && cur != warnedFor {
				slog.Warn("store: snapshot is stale",
					"origin", cur.Origin,
					"updated_at", cur.UpdatedAt,
					"stale_after", s.staleAfter)
				warnedFor = cur
			}
		}
	}
}
