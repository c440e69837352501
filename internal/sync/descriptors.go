package sync

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/mberthou/satchel/internal/diff"
	"github.com/mberthou/satchel/internal/domain"
)

// Planning fetch window around the current date.
const (
	planningPast   = 7 * 24 * time.Hour
	planningFuture = 30 * 24 * time.Hour
)

// AbsencesDescriptor describes the absences resource.
func AbsencesDescriptor(repo domain.PortalRepository, ttl time.Duration) Descriptor[domain.Absence] {
	return Descriptor[domain.Absence]{
		Key:      domain.ResourceAbsences,
		TTL:      ttl,
		Identity: domain.Absence.Key,
		CompareFields: []diff.Field[domain.Absence]{
			{Name: "justified", Value: func(a domain.Absence) string { return strconv.FormatBool(a.Justified) }},
			{Name: "start", Value: func(a domain.Absence) string { return a.StartAt.Format(time.RFC3339) }},
			{Name: "end", Value: func(a domain.Absence) string { return a.EndAt.Format(time.RFC3339) }},
			{Name: "course", Value: func(a domain.Absence) string { return a.Course }},
		},
		Fetch: repo.GetAbsences,
	}
}

// GradesDescriptor describes the grades resource.
func GradesDescriptor(repo domain.PortalRepository, ttl time.Duration) Descriptor[domain.Grade] {
	return Descriptor[domain.Grade]{
		Key:      domain.ResourceGrades,
		TTL:      ttl,
		Identity: domain.Grade.Key,
		CompareFields: []diff.Field[domain.Grade]{
			{Name: "note", Value: func(g domain.Grade) string { return strconv.FormatFloat(g.Note, 'f', -1, 64) }},
			{Name: "average", Value: func(g domain.Grade) string { return strconv.FormatFloat(g.ClassAverage, 'f', -1, 64) }},
			{Name: "coefficient", Value: func(g domain.Grade) string { return strconv.FormatFloat(g.Coefficient, 'f', -1, 64) }},
		},
		Fetch: repo.GetGrades,
	}
}

// PlanningDescriptor describes the planning resource. The fetch window
// trails a week behind and runs a month ahead of the clock.
func PlanningDescriptor(repo domain.PortalRepository, ttl time.Duration, now func() time.Time) Descriptor[domain.CourseEvent] {
	return Descriptor[domain.CourseEvent]{
		Key:      domain.ResourcePlanning,
		TTL:      ttl,
		Identity: domain.CourseEvent.Key,
		CompareFields: []diff.Field[domain.CourseEvent]{
			{Name: "start", Value: func(e domain.CourseEvent) string { return e.StartAt.Format(time.RFC3339) }},
			{Name: "end", Value: func(e domain.CourseEvent) string { return e.EndAt.Format(time.RFC3339) }},
			{Name: "title", Value: func(e domain.CourseEvent) string { return e.Title }},
			{Name: "room", Value: func(e domain.CourseEvent) string { return e.Room }},
			{Name: "instructors", Value: func(e domain.CourseEvent) string { return strings.Join(e.Instructors, ", ") }},
		},
		Fetch: func(ctx context.Context) ([]domain.CourseEvent, error) {
			t := now()
			return repo.GetPlanning(ctx, t.Add(-planningPast), t.Add(planningFuture))
		},
	}
}
