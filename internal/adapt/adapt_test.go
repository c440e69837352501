package adapt

import (
	"reflect"
	"testing"
	"time"

	"github.com/mberthou/satchel/internal/domain"
)

func TestAbsenceView(t *testing.T) {
	justifiedAt := time.Date(2025, 1, 12, 9, 30, 0, 0, time.UTC)
	a := domain.Absence{
		ID:          1,
		StartAt:     time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC),
		EndAt:       time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC),
		Course:      "Algorithmique",
		Teachers:    []string{"M. Dupont", "Mme Leroy"},
		Room:        "B12",
		Justified:   true,
		JustifiedAt: &justifiedAt,
	}

	v := Absence(a)

	if v.Date != "10/01/2025" {
		t.Fatalf("Date = %q", v.Date)
	}
	if v.Time != "08:00 - 10:00" {
		t.Fatalf("Time = %q", v.Time)
	}
	if v.Teachers != "M. Dupont, Mme Leroy" {
		t.Fatalf("Teachers = %q", v.Teachers)
	}
	if v.Status != "Justifiée" {
		t.Fatalf("Status = %q", v.Status)
	}
	if v.JustifiedDate != "12/01/2025" {
		t.Fatalf("JustifiedDate = %q", v.JustifiedDate)
	}
	if v.Hours != 2.0 {
		t.Fatalf("Hours = %v, want 2.0", v.Hours)
	}
}

func TestAbsenceViewUnjustifiedDefaults(t *testing.T) {
	v := Absence(domain.Absence{
		ID:      2,
		StartAt: time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC),
	})

	if v.Status != "Non justifiée" {
		t.Fatalf("Status = %q", v.Status)
	}
	if v.JustifiedDate != "" {
		t.Fatalf("JustifiedDate = %q, want empty", v.JustifiedDate)
	}
	if v.Teachers != "Non spécifié" {
		t.Fatalf("Teachers = %q", v.Teachers)
	}
	if v.Hours != 1.5 {
		t.Fatalf("Hours = %v, want 1.5", v.Hours)
	}
}

func TestGradeView(t *testing.T) {
	g := domain.Grade{
		ID:           10,
		Session:      "2025_INFO4_S1_DS2",
		Note:         15,
		ClassAverage: 12.5,
		Coefficient:  2,
		EvaluatedAt:  time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
	}

	v := Grade(g)

	if v.Course != "INFO4" {
		t.Fatalf("Course = %q", v.Course)
	}
	if v.Difference != "2.50" {
		t.Fatalf("Difference = %q, want \"2.50\"", v.Difference)
	}
	if v.Average != "12.5/20" {
		t.Fatalf("Average = %q, want \"12.5/20\"", v.Average)
	}
	if v.Note != "15/20" {
		t.Fatalf("Note = %q, want \"15/20\"", v.Note)
	}
	if v.Coefficient != 2 {
		t.Fatalf("Coefficient = %v", v.Coefficient)
	}
}

func TestGradeViewDefaults(t *testing.T) {
	v := Grade(domain.Grade{ID: 11, Session: "soloCode", Note: 9})

	if v.Course != "soloCode" {
		t.Fatalf("Course = %q, want the raw code", v.Course)
	}
	if v.Coefficient != 1 {
		t.Fatalf("Coefficient = %v, want default 1", v.Coefficient)
	}
	if v.Average != "0/20" {
		t.Fatalf("Average = %q, want \"0/20\"", v.Average)
	}
	if v.Difference != "9.00" {
		t.Fatalf("Difference = %q", v.Difference)
	}
}

func TestEventView(t *testing.T) {
	e := domain.CourseEvent{
		UID:         "cm-algo-42",
		StartAt:     time.Date(2025, 1, 13, 8, 0, 0, 0, time.UTC), // a Monday
		EndAt:       time.Date(2025, 1, 13, 10, 0, 0, 0, time.UTC),
		Title:       "CM Algorithmique",
		Instructors: []string{"M. Dupont"},
		Room:        "Amphi A",
	}

	v := Event(e)

	if v.Weekday != "lundi" {
		t.Fatalf("Weekday = %q", v.Weekday)
	}
	if v.Kind != "CM" {
		t.Fatalf("Kind = %q", v.Kind)
	}
	if v.Color != "#2196F3" {
		t.Fatalf("Color = %q", v.Color)
	}
	if v.Room != "Amphi A" {
		t.Fatalf("Room = %q", v.Room)
	}
}

func TestEventViewDefaults(t *testing.T) {
	v := Event(domain.CourseEvent{
		UID:     "x",
		StartAt: time.Date(2025, 1, 14, 14, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2025, 1, 14, 16, 0, 0, 0, time.UTC),
		Title:   "Réunion pédagogique",
	})

	if v.Color != "#9E9E9E" {
		t.Fatalf("Color = %q, want default gray", v.Color)
	}
	if v.Room != "Non spécifié" {
		t.Fatalf("Room = %q", v.Room)
	}
	if v.Instructors != "Non spécifié" {
		t.Fatalf("Instructors = %q", v.Instructors)
	}
}

func TestAdapterDeterminism(t *testing.T) {
	a := domain.Absence{
		ID:       1,
		StartAt:  time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC),
		EndAt:    time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC),
		Teachers: []string{"M. Dupont"},
	}
	if !reflect.DeepEqual(Absence(a), Absence(a)) {
		t.Fatal("Absence adapter is not deterministic")
	}

	g := domain.Grade{ID: 2, Session: "2025_MATH_S1", Note: 11.25, ClassAverage: 10}
	if !reflect.DeepEqual(Grade(g), Grade(g)) {
		t.Fatal("Grade adapter is not deterministic")
	}

	e := domain.CourseEvent{
		UID:     "e",
		StartAt: time.Date(2025, 1, 13, 8, 0, 0, 0, time.UTC),
		EndAt:   time.Date(2025, 1, 13, 9, 0, 0, 0, time.UTC),
		Title:   "TP Réseaux",
	}
	if !reflect.DeepEqual(Event(e), Event(e)) {
		t.Fatal("Event adapter is not deterministic")
	}
}

func TestHoursRounding(t *testing.T) {
	start := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	cases := []struct {
		end  time.Time
		want float64
	}{
		{start.Add(2 * time.Hour), 2.0},
		{start.Add(90 * time.Minute), 1.5},
		{start.Add(100 * time.Minute), 1.7},
		{start.Add(55 * time.Minute), 0.9},
		{start, 0},
	}
	for _, c := range cases {
		if got := Hours(start, c.end); got != c.want {
			t.Fatalf("Hours(.., +%v) = %v, want %v", c.end.Sub(start), got, c.want)
		}
	}
}

func TestCourseFromSession(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"2025_INFO4_S1", "INFO4"},
		{"2025_MATH", "MATH"},
		{"nodélimiteur", "nodélimiteur"},
		{"trailing_", "trailing_"},
	}
	for _, c := range cases {
		if got := CourseFromSession(c.in); got != c.want {
			t.Fatalf("CourseFromSession(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
