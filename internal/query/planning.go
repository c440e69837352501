package query

import (
	"sort"
	"time"

	"github.com/mberthou/satchel/internal/domain"
)

// Current returns the events whose interval contains now.
func Current(events []domain.CourseEvent, now time.Time) []domain.CourseEvent {
	var out []domain.CourseEvent
	for _, e := range events {
		if e.Contains(now) {
			out = append(out, e)
		}
	}
	return out
}

// Upcoming returns up to limit events starting after now, ascending by
// start time. A limit <= 0 means no limit.
func Upcoming(events []domain.CourseEvent, now time.Time, limit int) []domain.CourseEvent {
	var out []domain.CourseEvent
	for _, e := range events {
		if e.StartAt.After(now) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ForDate returns the events starting on the same calendar day as d.
func ForDate(events []domain.CourseEvent, d time.Time) []domain.CourseEvent {
	y, m, day := d.Date()
	var out []domain.CourseEvent
	for _, e := range events {
		ey, em, ed := e.StartAt.In(d.Location()).Date()
		if ey == y && em == m && ed == day {
			out = append(out, e)
		}
	}
	return out
}

// ForWeek returns the events within the Monday-start week containing
// d, boundaries inclusive.
func ForWeek(events []domain.CourseEvent, d time.Time) []domain.CourseEvent {
	start := WeekStart(d)
	end := start.AddDate(0, 0, 7)

	var out []domain.CourseEvent
	for _, e := range events {
		at := e.StartAt.In(d.Location())
		if !at.Before(start) && at.Before(end) {
			out = append(out, e)
		}
	}
	return out
}

// WeekStart returns midnight of the Monday of the week containing d.
func WeekStart(d time.Time) time.Time {
	y, m, day := d.Date()
	midnight := time.Date(y, m, day, 0, 0, 0, 0, d.Location())
	offset := (int(midnight.Weekday()) + 6) % 7 // Monday = 0
	return midnight.AddDate(0, 0, -offset)
}

// EventViewFields lists the searchable fields of an event view.
func EventViewFields(v domain.EventView) []string {
	return []string{v.Title, v.Instructors, v.Room, v.Date}
}

// FilterEventViews applies the free-text filter to event views.
func FilterEventViews(views []domain.EventView, text string) []domain.EventView {
	return ByText(views, text, EventViewFields)
}
