package domain

import (
	"context"
	"encoding/json"
	"time"
)

// SnapshotStore handles local snapshot persistence (BoltDB + memory).
// All reads fail soft: a missing key, a corrupt value or a storage
// error is reported as a cache miss, never as an error.
type SnapshotStore interface {
	// Load returns the raw serialized records and the last-updated
	// timestamp for a resource key.
	Load(key ResourceKey) (json.RawMessage, time.Time, bool)

	// Save marshals records, stamps a fresh last-updated timestamp and
	// overwrites the previous snapshot unconditionally.
	Save(key ResourceKey, records any) error

	// IsValid reports whether a snapshot stamped at lastUpdated is
	// still within its validity window. A zero time is always invalid.
	IsValid(lastUpdated time.Time, ttl time.Duration) bool

	// Clear removes the persisted snapshot for a resource key.
	Clear(key ResourceKey)

	Close() error
}

// PortalRepository provides access to the student's portal resources.
// Implementations perform the actual network calls; they are expected
// to enforce their own request timeout and to be retry-transparent.
type PortalRepository interface {
	// GetAbsences returns all recorded absences
	GetAbsences(ctx context.Context) ([]Absence, error)

	// GetGrades returns all published grades
	GetGrades(ctx context.Context) ([]Grade, error)

	// GetPlanning returns planning entries between from and to
	GetPlanning(ctx context.Context, from, to time.Time) ([]CourseEvent, error)
}

// AuthState gates synchronization on the session's credential state.
type AuthState interface {
	// IsAuthenticated reports whether a usable token is held.
	IsAuthenticated() bool

	// Refresh exchanges the refresh token for a fresh access token.
	// Invoked by the consumer when a fetch fails with an auth error;
	// the synchronizer itself only consults IsAuthenticated.
	Refresh(ctx context.Context) error
}
