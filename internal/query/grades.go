package query

import (
	"math"
	"time"

	"github.com/mberthou/satchel/internal/domain"
)

// GradeStats aggregates grade views.
type GradeStats struct {
	Count   int
	Best    float64
	Worst   float64
	Average float64 // Coefficient-weighted, two decimals
}

// Grades computes best/worst/average over the views. The average is
// weighted by each view's effective coefficient. Empty input yields
// zero stats.
func Grades(views []domain.GradeView) GradeStats {
	if len(views) == 0 {
		return GradeStats{}
	}

	stats := GradeStats{
		Count: len(views),
		Best:  views[0].Value,
		Worst: views[0].Value,
	}

	var weighted, weights float64
	for _, v := range views {
		if v.Value > stats.Best {
			stats.Best = v.Value
		}
		if v.Value < stats.Worst {
			stats.Worst = v.Value
		}
		weighted += v.Value * v.Coefficient
		weights += v.Coefficient
	}
	if weights > 0 {
		stats.Average = math.Round(weighted/weights*100) / 100
	}
	return stats
}

// GradesByPeriod keeps grades evaluated after the period cutoff.
func GradesByPeriod(records []domain.Grade, p Period, now time.Time) []domain.Grade {
	return ByPeriod(records, p, now, func(g domain.Grade) time.Time { return g.EvaluatedAt })
}

// GradeViewFields lists the searchable fields of a grade view.
func GradeViewFields(v domain.GradeView) []string {
	return []string{v.Course, v.Kind, v.Date}
}

// FilterGradeViews applies the free-text filter to grade views.
func FilterGradeViews(views []domain.GradeView, text string) []domain.GradeView {
	return ByText(views, text, GradeViewFields)
}
