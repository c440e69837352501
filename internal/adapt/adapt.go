// Package adapt maps raw portal records to their presentation-ready
// display views. Every mapping is pure, deterministic and total over
// its input: missing fields get display defaults, never an error.
package adapt

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mberthou/satchel/internal/domain"
)

const (
	dateLayout   = "02/01/2006"
	notSpecified = "Non spécifié"
)

// frenchWeekdays maps time.Weekday to the portal's display labels.
var frenchWeekdays = [...]string{
	"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi",
}

// kindColors assigns a display color per slot kind. Unknown kinds fall
// back to gray.
var kindColors = map[string]string{
	"CM":     "#2196F3",
	"TD":     "#4CAF50",
	"TP":     "#FF9800",
	"DS":     "#F44336",
	"EXAM":   "#F44336",
	"EXAMEN": "#F44336",
	"CC":     "#9C27B0",
	"PROJET": "#00BCD4",
}

const defaultColor = "#9E9E9E"

// Absence derives the display view of one absence.
func Absence(a domain.Absence) domain.AbsenceView {
	v := domain.AbsenceView{
		ID:        a.ID,
		Date:      a.StartAt.Format(dateLayout),
		Time:      timeRange(a.StartAt, a.EndAt),
		Course:    a.Course,
		Teachers:  joinOrDefault(a.Teachers),
		Room:      a.Room,
		Justified: a.Justified,
		Reason:    a.Reason,
		Hours:     Hours(a.StartAt, a.EndAt),
	}
	if a.Justified {
		v.Status = "Justifiée"
		if a.JustifiedAt != nil {
			v.JustifiedDate = a.JustifiedAt.Format(dateLayout)
		}
	} else {
		v.Status = "Non justifiée"
	}
	return v
}

// Grade derives the display view of one grade.
func Grade(g domain.Grade) domain.GradeView {
	average := g.ClassAverage
	if average < 0 {
		average = 0
	}
	return domain.GradeView{
		ID:          g.ID,
		Course:      CourseFromSession(g.Session),
		Date:        g.EvaluatedAt.Format(dateLayout),
		Kind:        g.Kind,
		Note:        formatMark(g.Note),
		Average:     formatMark(average),
		Difference:  fmt.Sprintf("%.2f", g.Note-average),
		Coefficient: g.Weight(),
		Value:       g.Note,
		ClassValue:  average,
	}
}

// Event derives the display view of one planning entry.
func Event(e domain.CourseEvent) domain.EventView {
	kind := e.Kind
	if kind == "" {
		kind = kindFromTitle(e.Title)
	}
	return domain.EventView{
		UID:         e.UID,
		Weekday:     frenchWeekdays[e.StartAt.Weekday()],
		Date:        e.StartAt.Format(dateLayout),
		Time:        timeRange(e.StartAt, e.EndAt),
		Title:       e.Title,
		Kind:        kind,
		Color:       colorFor(kind),
		Instructors: joinOrDefault(e.Instructors),
		Room:        stringOrDefault(e.Room),
		Groups:      e.Groups,
		Hours:       Hours(e.StartAt, e.EndAt),
	}
}

// Hours returns the interval length in hours rounded to one decimal,
// computed from millisecond timestamp subtraction.
func Hours(start, end time.Time) float64 {
	ms := end.UnixMilli() - start.UnixMilli()
	return math.Round(float64(ms)/3600000*10) / 10
}

// CourseFromSession extracts the course name from a composite session
// code ("2025_INFO4_S1" -> "INFO4"). A code without a second segment is
// returned as-is.
func CourseFromSession(session string) string {
	parts := strings.Split(session, "_")
	if len(parts) < 2 || parts[1] == "" {
		return session
	}
	return parts[1]
}

// kindFromTitle parses the slot kind from a title prefix ("CM Algo" -> "CM").
func kindFromTitle(title string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(title), " ")
	return strings.ToUpper(first)
}

func colorFor(kind string) string {
	if c, ok := kindColors[strings.ToUpper(kind)]; ok {
		return c
	}
	return defaultColor
}

func timeRange(start, end time.Time) string {
	return start.Format("15:04") + " - " + end.Format("15:04")
}

func formatMark(mark float64) string {
	return strconv.FormatFloat(mark, 'f', -1, 64) + "/20"
}

func joinOrDefault(names []string) string {
	if len(names) == 0 {
		return notSpecified
	}
	return strings.Join(names, ", ")
}

func stringOrDefault(s string) string {
	if s == "" {
		return notSpecified
	}
	return s
}

// Absences maps a record slice to views, preserving order.
func Absences(records []domain.Absence) []domain.AbsenceView {
	views := make([]domain.AbsenceView, len(records))
	for i, r := range records {
		views[i] = Absence(r)
	}
	return views
}

// Grades maps a record slice to views, preserving order.
func Grades(records []domain.Grade) []domain.GradeView {
	views := make([]domain.GradeView, len(records))
	for i, r := range records {
		views[i] = Grade(r)
	}
	return views
}

// Events maps a record slice to views, preserving order.
func Events(records []domain.CourseEvent) []domain.EventView {
	views := make([]domain.EventView, len(records))
	for i, r := range records {
		views[i] = Event(r)
	}
	return views
}
