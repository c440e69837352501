package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mberthou/satchel/internal/domain"
	"github.com/mberthou/satchel/internal/query"
)

// Color palette
var (
	accent   = lipgloss.Color("#2196F3")
	green    = lipgloss.Color("#10B981")
	red      = lipgloss.Color("#EF4444")
	dimGray  = lipgloss.Color("#6B7280")
	white    = lipgloss.Color("#F9FAFB")
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(white).Bold(true)
	sectionStyle = lipgloss.NewStyle().Foreground(accent).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(dimGray)
	okStyle      = lipgloss.NewStyle().Foreground(green)
	warnStyle    = lipgloss.NewStyle().Foreground(red)
)

func renderAbsences(views []domain.AbsenceView, stats query.AbsenceStats) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Absences"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %d au total (%s h), dont %s non justifiées (%s h)\n",
		stats.Total,
		formatHours(stats.TotalHours),
		warnStyle.Render(fmt.Sprintf("%d", stats.Unjustified)),
		formatHours(stats.UnjustifiedHours)))

	for _, v := range views {
		status := okStyle.Render(v.Status)
		if !v.Justified {
			status = warnStyle.Render(v.Status)
		}
		b.WriteString(fmt.Sprintf("  %s  %s  %-24s %s\n", v.Date, v.Time, v.Course, status))
	}
	return b.String()
}

func renderGrades(views []domain.GradeView, stats query.GradeStats) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Notes"))
	b.WriteString("\n")
	if stats.Count > 0 {
		b.WriteString(fmt.Sprintf("  moyenne pondérée %s, meilleure %s, moins bonne %s\n",
			titleStyle.Render(formatMark(stats.Average)),
			okStyle.Render(formatMark(stats.Best)),
			warnStyle.Render(formatMark(stats.Worst))))
	}
	for _, v := range views {
		b.WriteString(fmt.Sprintf("  %s  %-20s %-8s %s %s\n",
			v.Date, v.Course, v.Note,
			dimStyle.Render("moy. "+v.Average),
			dimStyle.Render("Δ "+v.Difference)))
	}
	return b.String()
}

func renderPlanning(events []domain.CourseEvent, now time.Time) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Planning"))
	b.WriteString("\n")

	for _, e := range query.Current(events, now) {
		b.WriteString("  " + okStyle.Render("▶ en cours") + "  " + eventLine(e) + "\n")
	}
	for _, e := range query.Upcoming(events, now, 5) {
		b.WriteString("  " + dimStyle.Render("à venir") + "   " + eventLine(e) + "\n")
	}
	return b.String()
}

func eventLine(e domain.CourseEvent) string {
	room := e.Room
	if room == "" {
		room = "Non spécifié"
	}
	return fmt.Sprintf("%s %s - %s  %-28s %s",
		e.StartAt.Format("02/01"),
		e.StartAt.Format("15:04"),
		e.EndAt.Format("15:04"),
		e.Title,
		dimStyle.Render(room))
}

func renderChanges(resource domain.ResourceKey, changes []domain.Change) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("⚡ %s: %d changement(s)", resource, len(changes))))
	b.WriteString("\n")
	for _, c := range changes {
		switch c.Kind {
		case domain.ChangeAdded:
			b.WriteString("  " + okStyle.Render("+ "+c.Key) + "\n")
		case domain.ChangeRemoved:
			b.WriteString("  " + warnStyle.Render("- "+c.Key) + "\n")
		case domain.ChangeModified:
			b.WriteString("  ~ " + c.Key)
			for _, f := range c.Fields {
				b.WriteString(dimStyle.Render(fmt.Sprintf("  %s: %s → %s", f.Name, f.Before, f.After)))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func formatHours(h float64) string {
	return fmt.Sprintf("%.1f", h)
}

func formatMark(m float64) string {
	return fmt.Sprintf("%.2f/20", m)
}
