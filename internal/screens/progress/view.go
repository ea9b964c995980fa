package progress

import (
	"fmt"
	"strings"
	"time"

	"github.com/studydeck/studydeck/internal/tracker"
	"github.com/studydeck/studydeck/internal/ui/components"
	"github.com/studydeck/studydeck/internal/ui/layout"
	"github.com/studydeck/studydeck/internal/ui/theme"
)

func (s *ProgressScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Notice(width, theme.ErrorText, "Could not load progress: "+s.errMsg)
	}
	if !s.loaded {
		return layout.Notice(width, theme.Hint, "Loading progress...")
	}
	if s.detail != nil {
		return s.viewDetail(width, height)
	}
	return s.viewOverview(width, height)
}

func (s *ProgressScreen) viewOverview(width, height int) string {
	ov := s.overview
	if len(ov.Courses) == 0 {
		return layout.Notice(width, theme.Hint, "No practice tests yet. Take one from the home menu.")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("  %d tests   Average %.0f%%   %d wrong answers to review",
		ov.TotalTests, ov.OverallAverage, ov.TotalWrong)))
	b.WriteString("\n\n")

	barWidth := min(width-4, 70)
	start, end := layout.Window(len(ov.Courses), s.selected, max((height-6)/2, 1))
	for i := start; i < end; i++ {
		p := ov.Courses[i]
		cursor := "  "
		if i == s.selected {
			cursor = theme.Selected.Render("▸ ")
		}
		name := layout.Truncate(s.courseName(p.CourseID), 28)
		b.WriteString(cursor)
		b.WriteString(components.ProgressBar{
			Label:  fmt.Sprintf("%-28s", name),
			Score:  p.AverageScore,
			Width:  barWidth,
			Banded: true,
			Band:   int(tracker.ScoreBand(p.AverageScore)),
		}.View())
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render(fmt.Sprintf("    %d tests, best %d%%, %d wrong", p.TotalTests, p.BestScore, len(p.Wrong))))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *ProgressScreen) viewDetail(width, height int) string {
	p := s.detail

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("  Tests %d   Average %.0f%%   Best %d%%   Learned %d   Wrong %d",
		p.TotalTests, p.AverageScore, p.BestScore, p.LearnedCount, len(p.Wrong))))
	b.WriteString("\n")
	b.WriteString("  " + renderTrend(p))
	b.WriteString("\n\n")

	if len(p.History) == 0 {
		b.WriteString(theme.Hint.Render("  No practice tests yet."))
		b.WriteString("\n")
	} else {
		b.WriteString(theme.Subtitle.Render("  Recent tests"))
		b.WriteString("\n")
		start, end := layout.Window(len(p.History), s.scroll, max(height-12, 3))
		for i := start; i < end; i++ {
			r := p.History[i]
			when := time.UnixMilli(r.Timestamp).Format("2006-01-02 15:04")
			score := theme.BandColor(int(tracker.ScoreBand(float64(r.Score)))).Render(fmt.Sprintf("%3d%%", r.Score))
			cursor := "  "
			if i == s.scroll {
				cursor = theme.Selected.Render("▸ ")
			}
			b.WriteString(fmt.Sprintf("%s%s  %s  %d/%d  %s\n", cursor, theme.Body.Render(when), score,
				r.CorrectAnswers, r.TotalQuestions, tracker.FormatDuration(r.TimeSpent)))
		}
	}

	if s.confirming {
		b.WriteString("\n  " + theme.Status.Render(fmt.Sprintf("Clear %d wrong answers? (y/n)", len(p.Wrong))) + "\n")
	}
	if s.status != "" {
		b.WriteString("\n  " + theme.Status.Render(s.status) + "\n")
	}
	return b.String()
}

func renderTrend(p *tracker.CourseProgress) string {
	switch {
	case p.TotalTests < 6:
		return theme.Hint.Render("Trend appears after 6 tests")
	case p.Trend > 0:
		return theme.Correct.Render(fmt.Sprintf("▲ Improving by %.1f points", p.Trend))
	case p.Trend < 0:
		return theme.Incorrect.Render(fmt.Sprintf("▼ Down %.1f points", -p.Trend))
	default:
		return theme.Subtitle.Render("● Steady")
	}
}
