package domain

// Display views are derived, read-only projections of a snapshot's
// records. They are recomputed on every snapshot change and never
// persisted.

// AbsenceView is the presentation-ready projection of an Absence.
type AbsenceView struct {
	ID            int
	Date          string  // "02/01/2006"
	Time          string  // "08:00 - 10:00"
	Course        string
	Teachers      string  // Joined with ", ", "Non spécifié" when empty
	Room          string
	Justified     bool
	Status        string  // "Justifiée" / "Non justifiée"
	JustifiedDate string  // Empty when not justified
	Reason        string
	Hours         float64 // Slot length in hours, one decimal
}

// GradeView is the presentation-ready projection of a Grade.
type GradeView struct {
	ID          int
	Course      string  // Derived from the composite session code
	Date        string  // "02/01/2006"
	Kind        string
	Note        string  // "15/20"
	Average     string  // "12.5/20"
	Difference  string  // Note minus class average, two decimals ("2.50")
	Coefficient float64 // Defaults to 1 when unpublished
	Value       float64 // Raw mark, kept for aggregation
	ClassValue  float64 // Raw class average, 0 when unpublished
}

// EventView is the presentation-ready projection of a CourseEvent.
type EventView struct {
	UID         string
	Weekday     string // French weekday label ("lundi", ...)
	Date        string // "02/01/2006"
	Time        string // "08:00 - 10:00"
	Title       string
	Kind        string // Slot kind parsed from the title ("CM", "TD", ...)
	Color       string // Hex color assigned from the slot kind
	Instructors string // Joined with ", ", "Non spécifié" when empty
	Room        string // "Non spécifié" when empty
	Groups      []string
	Hours       float64 // Slot length in hours, one decimal
}
