package domain

import "time"

// Snapshot is the full current record set for one resource plus the
// time it was last confirmed against the portal. A snapshot is always
// either the result of a successful fetch or a previously persisted
// one, never a partial merge.
type Snapshot[R any] struct {
	Records     []R
	LastUpdated time.Time
}

// Empty reports whether the snapshot holds no records.
func (s Snapshot[R]) Empty() bool { return len(s.Records) == 0 }

// Len returns the record count.
func (s Snapshot[R]) Len() int { return len(s.Records) }
