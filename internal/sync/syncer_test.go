package sync

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mberthou/satchel/internal/clock"
	"github.com/mberthou/satchel/internal/diff"
	"github.com/mberthou/satchel/internal/domain"
	"github.com/mberthou/satchel/internal/log"
	"github.com/mberthou/satchel/internal/store"
)

type fakeAuth struct{ ok bool }

func (f fakeAuth) IsAuthenticated() bool { return f.ok }

type fakeFetcher struct {
	calls   atomic.Int64
	records atomic.Value  // []domain.Absence
	err     atomic.Value  // error
	block   chan struct{} // When non-nil, fetch waits until closed
}

func (f *fakeFetcher) fetch(ctx context.Context) ([]domain.Absence, error) {
	f.calls.Add(1)
	if f.block != nil {
		<-f.block
	}
	if err, _ := f.err.Load().(error); err != nil {
		return nil, err
	}
	records, _ := f.records.Load().([]domain.Absence)
	return records, nil
}

type captureNotifier struct {
	resource domain.ResourceKey
	changes  [][]domain.Change
}

func (n *captureNotifier) Notify(resource domain.ResourceKey, changes []domain.Change) {
	n.resource = resource
	n.changes = append(n.changes, changes)
}

func absences(ids ...int) []domain.Absence {
	out := make([]domain.Absence, len(ids))
	for i, id := range ids {
		out[i] = domain.Absence{
			ID:      id,
			StartAt: time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC),
			EndAt:   time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC),
			Course:  "Algo",
		}
	}
	return out
}

type fixture struct {
	clk      *clock.Fake
	store    *store.SnapshotStore
	fetcher  *fakeFetcher
	notifier *captureNotifier
	auth     *fakeAuth
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clk := clock.NewFake(time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC))
	st, err := store.New("", store.WithClock(clk), store.WithLogger(log.Null()))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return &fixture{
		clk:      clk,
		store:    st,
		fetcher:  &fakeFetcher{},
		notifier: &captureNotifier{},
		auth:     &fakeAuth{ok: true},
	}
}

func (f *fixture) syncer(ttl time.Duration) *Syncer[domain.Absence] {
	desc := Descriptor[domain.Absence]{
		Key:      domain.ResourceAbsences,
		TTL:      ttl,
		Identity: domain.Absence.Key,
		CompareFields: []diff.Field[domain.Absence]{
			{Name: "justified", Value: func(a domain.Absence) string { return strconv.FormatBool(a.Justified) }},
		},
		Fetch: f.fetcher.fetch,
	}
	return New(desc, f.store, f.auth, f.notifier,
		WithClock[domain.Absence](f.clk),
		WithLogger[domain.Absence](log.Null()))
}

func TestSyncFetchesAndPersists(t *testing.T) {
	f := newFixture(t)
	f.fetcher.records.Store(absences(1, 2))
	s := f.syncer(time.Hour)

	snap, err := s.Sync(context.Background(), false)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if snap.Len() != 2 {
		t.Fatalf("snapshot len = %d, want 2", snap.Len())
	}
	if got := f.fetcher.calls.Load(); got != 1 {
		t.Fatalf("fetch calls = %d, want 1", got)
	}
	if _, _, ok := f.store.Load(domain.ResourceAbsences); !ok {
		t.Fatal("snapshot was not persisted")
	}
}

func TestSyncUnauthenticated(t *testing.T) {
	f := newFixture(t)
	f.auth.ok = false
	s := f.syncer(time.Hour)

	_, err := s.Sync(context.Background(), false)
	if !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("err = %v, want ErrUnauthenticated", err)
	}
	if got := f.fetcher.calls.Load(); got != 0 {
		t.Fatalf("fetch calls = %d, want 0 (no network when unauthenticated)", got)
	}
}

func TestSyncDebounce(t *testing.T) {
	f := newFixture(t)
	f.fetcher.records.Store(absences(1))
	s := f.syncer(0) // TTL 0 so only the debounce guard applies

	if _, err := s.Sync(context.Background(), false); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	f.clk.Advance(500 * time.Millisecond)
	if _, err := s.Sync(context.Background(), false); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	if got := f.fetcher.calls.Load(); got != 1 {
		t.Fatalf("fetch calls = %d, want exactly 1 within debounce window", got)
	}

	f.clk.Advance(2 * time.Second)
	if _, err := s.Sync(context.Background(), false); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := f.fetcher.calls.Load(); got != 2 {
		t.Fatalf("fetch calls = %d, want 2 after debounce elapsed", got)
	}
}

func TestSyncForceBypassesDebounceAndTTL(t *testing.T) {
	f := newFixture(t)
	f.fetcher.records.Store(absences(1))
	s := f.syncer(time.Hour)

	if _, err := s.Sync(context.Background(), false); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if _, err := s.Sync(context.Background(), true); err != nil {
		t.Fatalf("forced Sync: %v", err)
	}
	if got := f.fetcher.calls.Load(); got != 2 {
		t.Fatalf("fetch calls = %d, want 2 (force bypasses guards)", got)
	}
}

func TestSyncTTL(t *testing.T) {
	f := newFixture(t)
	f.fetcher.records.Store(absences(1))
	s := f.syncer(3600000 * time.Millisecond)

	if _, err := s.Sync(context.Background(), false); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	// Within TTL: served from the snapshot, no remote call.
	f.clk.Advance(1000000 * time.Millisecond)
	if _, err := s.Sync(context.Background(), false); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := f.fetcher.calls.Load(); got != 1 {
		t.Fatalf("fetch calls = %d, want 1 within TTL", got)
	}

	// Past TTL: refreshed from the portal.
	f.clk.Advance(3000000 * time.Millisecond)
	if _, err := s.Sync(context.Background(), false); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := f.fetcher.calls.Load(); got != 2 {
		t.Fatalf("fetch calls = %d, want 2 past TTL", got)
	}
}

func TestSyncSingleFlight(t *testing.T) {
	f := newFixture(t)
	f.fetcher.records.Store(absences(1))
	f.fetcher.block = make(chan struct{})
	s := f.syncer(time.Hour)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Sync(context.Background(), true)
	}()

	// Wait for the fetch to be in flight.
	for !s.Refreshing() {
		time.Sleep(time.Millisecond)
	}

	// A forced sync while one is pending is dropped, not queued.
	if _, err := s.Sync(context.Background(), true); err != nil {
		t.Fatalf("concurrent Sync: %v", err)
	}
	if got := f.fetcher.calls.Load(); got != 1 {
		t.Fatalf("fetch calls = %d, want 1 in flight at a time", got)
	}

	close(f.fetcher.block)
	<-done

	if s.Refreshing() {
		t.Fatal("syncer stuck in fetching state")
	}
}

func TestSyncCacheFallback(t *testing.T) {
	f := newFixture(t)

	// Persist a snapshot, then make the portal fail.
	if err := f.store.Save(domain.ResourceAbsences, absences(1, 2, 3)); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	f.fetcher.err.Store(errors.New("boom"))

	s := f.syncer(0) // Expired TTL forces a fetch attempt
	f.clk.Advance(time.Hour)

	snap, err := s.Sync(context.Background(), false)
	if err != nil {
		t.Fatalf("Sync should recover from cache, got %v", err)
	}
	if snap.Len() != 3 {
		t.Fatalf("snapshot len = %d, want persisted 3", snap.Len())
	}
	if s.LastError() != nil {
		t.Fatalf("LastError = %v after cache recovery, want nil", s.LastError())
	}
}

func TestSyncAuthRejectionBypassesCache(t *testing.T) {
	f := newFixture(t)
	if err := f.store.Save(domain.ResourceAbsences, absences(1)); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	f.fetcher.err.Store(domain.ErrAuthFailed)

	s := f.syncer(0)
	f.clk.Advance(time.Hour)

	snap, err := s.Sync(context.Background(), false)
	if !errors.Is(err, domain.ErrAuthFailed) {
		t.Fatalf("err = %v, want ErrAuthFailed so the caller can refresh the token", err)
	}
	if snap.Len() != 1 {
		t.Fatalf("snapshot len = %d, want cached 1", snap.Len())
	}
}

func TestSyncTerminalFailure(t *testing.T) {
	f := newFixture(t)
	f.fetcher.err.Store(errors.New("boom"))
	s := f.syncer(time.Hour)

	snap, err := s.Sync(context.Background(), false)
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Fatalf("err = %v, want ErrFetchFailed", err)
	}
	if !snap.Empty() {
		t.Fatalf("snapshot should stay empty, got %d records", snap.Len())
	}
	if !errors.Is(s.LastError(), domain.ErrFetchFailed) {
		t.Fatalf("LastError = %v, want ErrFetchFailed", s.LastError())
	}
}

func TestSyncNotifiesChanges(t *testing.T) {
	f := newFixture(t)
	f.fetcher.records.Store(absences(1))
	s := f.syncer(time.Hour)

	if _, err := s.Sync(context.Background(), false); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	// First fetch against an empty snapshot reports one addition.
	if len(f.notifier.changes) != 1 {
		t.Fatalf("notifications = %d, want 1", len(f.notifier.changes))
	}
	if f.notifier.resource != domain.ResourceAbsences {
		t.Fatalf("notified resource = %q", f.notifier.resource)
	}
	if f.notifier.changes[0][0].Kind != domain.ChangeAdded {
		t.Fatalf("change kind = %v, want added", f.notifier.changes[0][0].Kind)
	}

	// Identical refetch: no notification.
	if _, err := s.Sync(context.Background(), true); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(f.notifier.changes) != 1 {
		t.Fatalf("notifications = %d after unchanged refetch, want still 1", len(f.notifier.changes))
	}

	// A justified transition shows up as a modification.
	updated := absences(1)
	updated[0].Justified = true
	f.fetcher.records.Store(updated)
	if _, err := s.Sync(context.Background(), true); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if len(f.notifier.changes) != 2 {
		t.Fatalf("notifications = %d, want 2", len(f.notifier.changes))
	}
	last := f.notifier.changes[1]
	if len(last) != 1 || last[0].Kind != domain.ChangeModified || last[0].Key != "1" {
		t.Fatalf("changes = %+v, want single modified '1'", last)
	}
}

func TestSyncHydratesFromStore(t *testing.T) {
	f := newFixture(t)
	if err := f.store.Save(domain.ResourceAbsences, absences(4, 5)); err != nil {
		t.Fatalf("seed store: %v", err)
	}

	s := f.syncer(time.Hour)
	if got := s.Current().Len(); got != 2 {
		t.Fatalf("hydrated snapshot len = %d, want 2", got)
	}

	// Fresh persisted snapshot satisfies a non-forced sync without a fetch.
	if _, err := s.Sync(context.Background(), false); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := f.fetcher.calls.Load(); got != 0 {
		t.Fatalf("fetch calls = %d, want 0 with fresh cache", got)
	}
}

func TestUpdateJustify(t *testing.T) {
	f := newFixture(t)
	f.fetcher.records.Store(absences(1, 2))
	s := f.syncer(time.Hour)
	if _, err := s.Sync(context.Background(), false); err != nil {
		t.Fatalf("Sync: %v", err)
	}

	snap, ok := s.Update("1", func(a domain.Absence) domain.Absence {
		a.Justified = true
		return a
	})
	if !ok {
		t.Fatal("Update reported the record missing")
	}
	if snap.Len() != 2 {
		t.Fatalf("snapshot len = %d, want 2 (rest kept)", snap.Len())
	}
	for _, a := range snap.Records {
		if a.ID == 1 && !a.Justified {
			t.Fatal("record 1 not justified after update")
		}
		if a.ID == 2 && a.Justified {
			t.Fatal("record 2 mutated by update")
		}
	}

	if _, ok := s.Update("99", func(a domain.Absence) domain.Absence { return a }); ok {
		t.Fatal("Update of unknown key should report false")
	}

	// Re-persisted: a fresh syncer hydrates the justified state.
	s2 := f.syncer(time.Hour)
	for _, a := range s2.Current().Records {
		if a.ID == 1 && !a.Justified {
			t.Fatal("justified state was not re-persisted")
		}
	}
}
