package query

import (
	"math"
	"time"

	"github.com/mberthou/satchel/internal/domain"
)

// AbsenceStats aggregates absences split by justification status.
type AbsenceStats struct {
	Total            int
	Justified        int
	Unjustified      int
	TotalHours       float64
	JustifiedHours   float64
	UnjustifiedHours float64
}

// Absences computes counts and hour totals over the records. Hours are
// millisecond subtractions converted to hours, each total rounded to
// one decimal.
func Absences(records []domain.Absence) AbsenceStats {
	var stats AbsenceStats
	var total, justified, unjustified int64

	for _, a := range records {
		ms := a.EndAt.UnixMilli() - a.StartAt.UnixMilli()
		total += ms
		stats.Total++
		if a.Justified {
			stats.Justified++
			justified += ms
		} else {
			stats.Unjustified++
			unjustified += ms
		}
	}

	stats.TotalHours = roundHours(total)
	stats.JustifiedHours = roundHours(justified)
	stats.UnjustifiedHours = roundHours(unjustified)
	return stats
}

func roundHours(ms int64) float64 {
	return math.Round(float64(ms)/3600000*10) / 10
}

// AbsencesByPeriod keeps absences starting after the period cutoff.
func AbsencesByPeriod(records []domain.Absence, p Period, now time.Time) []domain.Absence {
	return ByPeriod(records, p, now, func(a domain.Absence) time.Time { return a.StartAt })
}

// AbsenceViewFields lists the searchable fields of an absence view.
func AbsenceViewFields(v domain.AbsenceView) []string {
	return []string{v.Course, v.Teachers, v.Room, v.Date}
}

// FilterAbsenceViews applies the free-text filter to absence views.
func FilterAbsenceViews(views []domain.AbsenceView, text string) []domain.AbsenceView {
	return ByText(views, text, AbsenceViewFields)
}
