package portal

import (
	"time"

	"github.com/mberthou/satchel/internal/domain"
)

// Wire types for the portal proxy API. Every response is wrapped in
// the same envelope; data is decoded per endpoint.

type responseEnvelope struct {
	Success bool       `json:"success"`
	Error   *wireError `json:"error,omitempty"`
}

type wireError struct {
	Title      string `json:"title"`
	Detail     string `json:"detail"`
	StatusCode int    `json:"statusCode"`
}

type wireAbsence struct {
	ID        int        `json:"id"`
	StartTime time.Time  `json:"startTime"`
	EndTime   time.Time  `json:"endTime"`
	Course    string     `json:"course"`
	Teachers  []string   `json:"teachers"`
	Room      string     `json:"room"`
	Status    wireStatus `json:"status"`
	Reason    string     `json:"reason"`
}

type wireStatus struct {
	Justified   bool       `json:"justified"`
	JustifiedAt *time.Time `json:"justifiedAt,omitempty"`
}

type wireGrade struct {
	ID          int     `json:"id"`
	CodeSession string  `json:"codeSession"`
	Note        float64 `json:"note"`
	Moyenne     float64 `json:"moyenne"`
	Coefficient float64 `json:"coefficient"`
	Date        string  `json:"date"` // "2006-01-02"
	Type        string  `json:"type"`
}

type wireEvent struct {
	ID          string    `json:"id"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	Title       string    `json:"title"`
	Instructors []string  `json:"instructors"`
	Room        string    `json:"room"`
	Groups      []string  `json:"groups"`
	Type        string    `json:"type"`
}

func (w wireAbsence) toDomain() domain.Absence {
	return domain.Absence{
		ID:          w.ID,
		StartAt:     w.StartTime,
		EndAt:       w.EndTime,
		Course:      w.Course,
		Teachers:    w.Teachers,
		Room:        w.Room,
		Justified:   w.Status.Justified,
		JustifiedAt: w.Status.JustifiedAt,
		Reason:      w.Reason,
	}
}

func (w wireGrade) toDomain() domain.Grade {
	evaluatedAt, _ := time.Parse("2006-01-02", w.Date)
	return domain.Grade{
		ID:           w.ID,
		Session:      w.CodeSession,
		Note:         w.Note,
		ClassAverage: w.Moyenne,
		Coefficient:  w.Coefficient,
		EvaluatedAt:  evaluatedAt,
		Kind:         w.Type,
	}
}

func (w wireEvent) toDomain() domain.CourseEvent {
	return domain.CourseEvent{
		UID:         w.ID,
		StartAt:     w.StartTime,
		EndAt:       w.EndTime,
		Title:       w.Title,
		Instructors: w.Instructors,
		Room:        w.Room,
		Groups:      w.Groups,
		Kind:        w.Type,
	}
}
