// Package sync implements the fetch coordinator: one Syncer instance
// owns the snapshot of one portal resource and is its only mutation
// path. It guards the remote capability with single-flight and
// debounce checks, falls back to the persisted snapshot on failure and
// reports detected changes to the notification sink.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mberthou/satchel/internal/clock"
	"github.com/mberthou/satchel/internal/diff"
	"github.com/mberthou/satchel/internal/domain"
)

const defaultDebounce = 2 * time.Second

type syncState int

const (
	stateIdle syncState = iota
	stateFetching
)

// AuthGate gates synchronization on credential state.
type AuthGate interface {
	IsAuthenticated() bool
}

// Descriptor statically describes one synchronized resource.
type Descriptor[R any] struct {
	Key           domain.ResourceKey
	TTL           time.Duration                      // Cache validity window
	Identity      func(R) string                     // Stable record identity
	CompareFields []diff.Field[R]                    // Fields that matter for change notification
	Fetch         func(context.Context) ([]R, error) // Remote fetch capability
}

// Syncer coordinates remote fetches, snapshot replacement, persistence
// and change notification for one resource.
type Syncer[R any] struct {
	desc     Descriptor[R]
	store    domain.SnapshotStore
	auth     AuthGate
	notifier domain.Notifier
	clk      clock.Clock
	logger   *slog.Logger
	debounce time.Duration

	mu       sync.Mutex
	state    syncState
	snapshot domain.Snapshot[R]
	lastSync time.Time // Completion time of the last successful fetch
	lastErr  error
}

// Option configures a Syncer.
type Option[R any] func(*Syncer[R])

// WithClock overrides the wall clock.
func WithClock[R any](c clock.Clock) Option[R] {
	return func(s *Syncer[R]) { s.clk = c }
}

// WithLogger sets the syncer logger.
func WithLogger[R any](l *slog.Logger) Option[R] {
	return func(s *Syncer[R]) { s.logger = l }
}

// WithDebounce overrides the minimum interval between remote fetches.
func WithDebounce[R any](d time.Duration) Option[R] {
	return func(s *Syncer[R]) { s.debounce = d }
}

// New creates a syncer and hydrates its snapshot from the store, so a
// previously persisted snapshot is served before the first fetch.
func New[R any](desc Descriptor[R], store domain.SnapshotStore, auth AuthGate, notifier domain.Notifier, opts ...Option[R]) *Syncer[R] {
	s := &Syncer[R]{
		desc:     desc,
		store:    store,
		auth:     auth,
		notifier: notifier,
		clk:      clock.System{},
		logger:   slog.Default(),
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		opt(s)
	}

	if snap, ok := s.loadPersisted(); ok {
		s.snapshot = snap
		s.logger.Debug("hydrated snapshot", "resource", desc.Key, "count", snap.Len())
	}
	return s
}

// Sync returns the current snapshot, refreshing it from the portal
// when needed. Precedence: authentication, single-flight guard,
// debounce, TTL, fetch.
//
// Extra calls arriving while a fetch is in flight are dropped, not
// queued: they return the current snapshot immediately. On fetch
// failure the last persisted snapshot is returned unchanged; only when
// no cache exists does Sync surface ErrFetchFailed.
func (s *Syncer[R]) Sync(ctx context.Context, force bool) (domain.Snapshot[R], error) {
	if s.auth != nil && !s.auth.IsAuthenticated() {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.snapshot, domain.ErrUnauthenticated
	}

	now := s.clk.Now()

	s.mu.Lock()
	if s.state == stateFetching {
		// At most one in-flight fetch per resource, even when forced.
		snap := s.snapshot
		s.mu.Unlock()
		return snap, nil
	}
	if !force {
		if !s.lastSync.IsZero() && now.Sub(s.lastSync) < s.debounce {
			snap := s.snapshot
			s.mu.Unlock()
			return snap, nil
		}
		if !s.snapshot.Empty() && s.store.IsValid(s.snapshot.LastUpdated, s.desc.TTL) {
			snap := s.snapshot
			s.mu.Unlock()
			return snap, nil
		}
	}
	s.state = stateFetching
	s.mu.Unlock()

	records, err := s.desc.Fetch(ctx)
	if err != nil {
		return s.recover(err)
	}
	return s.apply(records), nil
}

// apply replaces the snapshot with freshly fetched records, persists
// it and reports the detected changes.
func (s *Syncer[R]) apply(records []R) domain.Snapshot[R] {
	now := s.clk.Now()

	s.mu.Lock()
	changes := diff.Diff(s.snapshot.Records, records, s.desc.Identity, s.desc.CompareFields)
	s.snapshot = domain.Snapshot[R]{Records: records, LastUpdated: now}
	s.lastSync = now
	s.lastErr = nil
	s.state = stateIdle
	snap := s.snapshot
	s.mu.Unlock()

	if err := s.store.Save(s.desc.Key, records); err != nil {
		// In-memory snapshot stays authoritative for the session.
		s.logger.Warn("failed to persist snapshot", "resource", s.desc.Key, "error", err)
	}

	s.logger.Debug("snapshot replaced", "resource", s.desc.Key, "count", len(records), "changes", len(changes))

	if len(changes) > 0 && s.notifier != nil {
		s.notifier.Notify(s.desc.Key, changes)
	}
	return snap
}

// recover serves the last known-good snapshot after a failed fetch.
// Auth rejections are surfaced even when a cache exists, so the caller
// can refresh credentials and retry.
func (s *Syncer[R]) recover(fetchErr error) (domain.Snapshot[R], error) {
	s.logger.Warn("fetch failed", "resource", s.desc.Key, "error", fetchErr)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateIdle

	if errors.Is(fetchErr, domain.ErrAuthFailed) {
		s.lastErr = fetchErr
		return s.snapshot, fetchErr
	}
	if !s.snapshot.Empty() {
		s.lastErr = nil
		return s.snapshot, nil
	}
	if snap, ok := s.loadPersisted(); ok {
		s.snapshot = snap
		s.lastErr = nil
		return snap, nil
	}

	s.lastErr = fmt.Errorf("%w: %v", domain.ErrFetchFailed, fetchErr)
	return s.snapshot, s.lastErr
}

// Update applies an identity-preserving mutation to a single record
// (the justify transition): the matching record is replaced, the rest
// kept, and the snapshot re-persisted. Reports false when no record
// has the given key.
func (s *Syncer[R]) Update(key string, mutate func(R) R) (domain.Snapshot[R], bool) {
	s.mu.Lock()
	idx := -1
	for i, r := range s.snapshot.Records {
		if s.desc.Identity(r) == key {
			idx = i
		}
	}
	if idx < 0 {
		snap := s.snapshot
		s.mu.Unlock()
		return snap, false
	}

	records := make([]R, len(s.snapshot.Records))
	copy(records, s.snapshot.Records)
	records[idx] = mutate(records[idx])
	s.snapshot = domain.Snapshot[R]{Records: records, LastUpdated: s.snapshot.LastUpdated}
	snap := s.snapshot
	s.mu.Unlock()

	if err := s.store.Save(s.desc.Key, records); err != nil {
		s.logger.Warn("failed to persist snapshot", "resource", s.desc.Key, "error", err)
	}
	return snap, true
}

// Current returns the in-memory snapshot without touching the network.
func (s *Syncer[R]) Current() domain.Snapshot[R] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// Refreshing reports whether a fetch is in flight.
func (s *Syncer[R]) Refreshing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == stateFetching
}

// LastError returns the terminal error of the last sync, nil after any
// successful or cache-recovered sync.
func (s *Syncer[R]) LastError() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// loadPersisted reads and decodes the persisted snapshot, if any.
// Must only be called with records types matching the persisted shape;
// decode failures read as cache miss.
func (s *Syncer[R]) loadPersisted() (domain.Snapshot[R], bool) {
	raw, ts, ok := s.store.Load(s.desc.Key)
	if !ok {
		return domain.Snapshot[R]{}, false
	}
	var records []R
	if err := json.Unmarshal(raw, &records); err != nil {
		s.logger.Warn("discarding undecodable snapshot", "resource", s.desc.Key, "error", err)
		return domain.Snapshot[R]{}, false
	}
	return domain.Snapshot[R]{Records: records, LastUpdated: ts}, true
}
