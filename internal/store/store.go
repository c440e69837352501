// Package store persists the last known-good snapshot of each portal
// resource. Reads fail soft: any miss, corruption or storage error is
// reported as a cache miss and the in-memory snapshot stays
// authoritative for the session.
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/mberthou/satchel/internal/clock"
	"github.com/mberthou/satchel/internal/domain"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketSnapshots = []byte("snapshots")
	bucketMeta      = []byte("meta")
)

// SnapshotStore implements domain.SnapshotStore using BoltDB.
type SnapshotStore struct {
	db     *bolt.DB
	clk    clock.Clock
	logger *slog.Logger

	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// Option configures a SnapshotStore.
type Option func(*SnapshotStore)

// WithClock overrides the wall clock used for timestamps.
func WithClock(c clock.Clock) Option {
	return func(s *SnapshotStore) { s.clk = c }
}

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *SnapshotStore) { s.logger = l }
}

// New opens (or creates) the snapshot database under dir. An empty dir
// selects memory-only mode with no persistence.
func New(dir string, opts ...Option) (*SnapshotStore, error) {
	s := &SnapshotStore{
		clk:    clock.System{},
		logger: slog.Default(),
		cache:  make(map[string][]byte),
	}
	for _, opt := range opts {
		opt(s)
	}

	if dir == "" {
		// Memory-only mode (no persistence)
		return s, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "satchel.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	// Create buckets
	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketSnapshots, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	s.db = db
	return s, nil
}

func (s *SnapshotStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *SnapshotStore) get(bucket []byte, key string) []byte {
	cacheKey := string(bucket) + ":" + key

	// Check memory cache first
	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return data
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil
	}

	// Read from BoltDB
	var data []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	}); err != nil {
		s.logger.Warn("snapshot read failed", "key", key, "error", err)
		return nil
	}

	if data == nil {
		return nil
	}

	// Promote to memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return data
}

func (s *SnapshotStore) set(bucket []byte, key string, data []byte) error {
	cacheKey := string(bucket) + ":" + key

	// Update memory cache
	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil // Memory-only mode
	}

	// Write to BoltDB
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put([]byte(key), data)
	})
}

func (s *SnapshotStore) delete(bucket []byte, key string) {
	cacheKey := string(bucket) + ":" + key

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return
	}

	s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b != nil {
			b.Delete([]byte(key))
		}
		return nil
	})
}

// === Snapshots ===

// Load returns the serialized record array and last-updated timestamp
// for a resource. A missing key, an unreadable value or a corrupt
// timestamp reads as a cache miss.
func (s *SnapshotStore) Load(key domain.ResourceKey) (json.RawMessage, time.Time, bool) {
	data := s.get(bucketSnapshots, string(key))
	if data == nil {
		return nil, time.Time{}, false
	}
	if !json.Valid(data) {
		s.logger.Warn("discarding corrupt snapshot", "resource", key)
		return nil, time.Time{}, false
	}

	var ts time.Time
	if raw := s.get(bucketMeta, string(key)); raw != nil {
		if millis, err := strconv.ParseInt(string(raw), 10, 64); err == nil {
			ts = time.UnixMilli(millis)
		}
	}

	return data, ts, true
}

// Save marshals records, stamps a fresh last-updated timestamp and
// overwrites any previous snapshot for the resource.
func (s *SnapshotStore) Save(key domain.ResourceKey, records any) error {
	data, err := json.Marshal(records)
	if err != nil {
		return err
	}
	if err := s.set(bucketSnapshots, string(key), data); err != nil {
		return err
	}
	ts := strconv.FormatInt(s.clk.Now().UnixMilli(), 10)
	return s.set(bucketMeta, string(key), []byte(ts))
}

// IsValid reports whether a snapshot stamped at lastUpdated is still
// within its validity window. A zero timestamp is always invalid.
func (s *SnapshotStore) IsValid(lastUpdated time.Time, ttl time.Duration) bool {
	if lastUpdated.IsZero() {
		return false
	}
	return s.clk.Now().Sub(lastUpdated) < ttl
}

// Clear removes the persisted snapshot and timestamp for a resource.
func (s *SnapshotStore) Clear(key domain.ResourceKey) {
	s.delete(bucketSnapshots, string(key))
	s.delete(bucketMeta, string(key))
}

var _ domain.SnapshotStore = (*SnapshotStore)(nil)
