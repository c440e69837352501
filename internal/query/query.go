// Package query provides read-only derived views over the current
// snapshots: period and free-text filtering, aggregate statistics and
// time-windowed selections. All functions are stateless; callers pass
// the reference time explicitly.
package query

import (
	"strings"
	"time"
)

// Period restricts records to a trailing window. Windows are fixed
// day counts, not calendar-aware.
type Period string

const (
	PeriodAll      Period = "all"
	PeriodWeek     Period = "week"
	PeriodMonth    Period = "month"
	PeriodSemester Period = "semester"
)

// Cutoff returns the earliest admissible timestamp for the period.
// The second return is false for PeriodAll, which matches everything.
func (p Period) Cutoff(now time.Time) (time.Time, bool) {
	switch p {
	case PeriodWeek:
		return now.AddDate(0, 0, -7), true
	case PeriodMonth:
		return now.AddDate(0, 0, -30), true
	case PeriodSemester:
		return now.AddDate(0, 0, -180), true
	default:
		return time.Time{}, false
	}
}

// ByPeriod keeps records whose timestamp falls after the period cutoff.
func ByPeriod[R any](records []R, p Period, now time.Time, at func(R) time.Time) []R {
	cutoff, bounded := p.Cutoff(now)
	if !bounded {
		return records
	}
	var out []R
	for _, r := range records {
		if at(r).After(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// ByText keeps records with a case-insensitive substring match in any
// of their searchable fields. An empty query matches everything.
func ByText[R any](records []R, query string, fields func(R) []string) []R {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return records
	}
	var out []R
	for _, r := range records {
		for _, f := range fields(r) {
			if strings.Contains(strings.ToLower(f), query) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
