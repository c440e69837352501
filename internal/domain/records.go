package domain

import (
	"strconv"
	"time"
)

// ResourceKey identifies one synchronized portal resource.
type ResourceKey string

const (
	ResourceAbsences ResourceKey = "absences"
	ResourceGrades   ResourceKey = "grades"
	ResourcePlanning ResourceKey = "planning"
)

// Absence represents one recorded absence as returned by the portal.
type Absence struct {
	ID          int        // Portal-assigned unique identifier
	StartAt     time.Time  // Start of the missed slot
	EndAt       time.Time  // End of the missed slot
	Course      string     // Course name
	Teachers    []string   // Teachers of the missed slot
	Room        string     // Classroom
	Justified   bool       // Whether the absence has been justified
	JustifiedAt *time.Time // When the justification was accepted, if any
	Reason      string     // Free-text justification reason
}

// Key returns the stable identity used for change detection.
func (a Absence) Key() string { return strconv.Itoa(a.ID) }

// Duration returns the length of the missed slot.
func (a Absence) Duration() time.Duration { return a.EndAt.Sub(a.StartAt) }

// Grade represents one evaluation result as returned by the portal.
type Grade struct {
	ID           int       // Portal-assigned unique identifier
	Session      string    // Composite session code, '_'-delimited (year_course_group...)
	Note         float64   // Student's mark on a /20 scale
	ClassAverage float64   // Class average on a /20 scale (0 when not published)
	Coefficient  float64   // Weight of the evaluation (0 when not published)
	EvaluatedAt  time.Time // Date of the evaluation
	Kind         string    // Evaluation kind ("DS", "CC", "Projet", ...)
}

// Key returns the stable identity used for change detection.
func (g Grade) Key() string { return strconv.Itoa(g.ID) }

// Weight returns the effective coefficient, defaulting to 1 when the
// portal has not published one.
func (g Grade) Weight() float64 {
	if g.Coefficient <= 0 {
		return 1
	}
	return g.Coefficient
}

// CourseEvent represents one planning entry as returned by the portal.
type CourseEvent struct {
	UID         string    // Composite identifier (slot id + date), stable across fetches
	StartAt     time.Time // Start of the slot
	EndAt       time.Time // End of the slot
	Title       string    // Course title, usually prefixed with the slot kind ("CM Algo")
	Instructors []string  // Assigned instructors
	Room        string    // Classroom
	Groups      []string  // Student groups attending
	Kind        string    // Slot kind when the portal provides it explicitly
}

// Key returns the stable identity used for change detection.
func (e CourseEvent) Key() string { return e.UID }

// Duration returns the length of the slot.
func (e CourseEvent) Duration() time.Duration { return e.EndAt.Sub(e.StartAt) }

// Contains reports whether the slot interval contains the given instant.
func (e CourseEvent) Contains(t time.Time) bool {
	return !t.Before(e.StartAt) && t.Before(e.EndAt)
}
