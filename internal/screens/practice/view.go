package practice

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/studydeck/studydeck/internal/practice"
	"github.com/studydeck/studydeck/internal/tracker"
	"github.com/studydeck/studydeck/internal/ui/components"
	"github.com/studydeck/studydeck/internal/ui/layout"
	"github.com/studydeck/studydeck/internal/ui/theme"
)

func (s *PracticeScreen) View(width, height int) string {
	if !s.loaded || s.session == nil {
		return layout.Notice(width, theme.Hint, "Loading questions...")
	}
	switch s.session.Phase {
	case practice.PhaseRunning:
		return s.viewRunning(width)
	case practice.PhaseFinished:
		return s.viewFinished(width, height)
	default:
		return s.viewConfiguring(width)
	}
}

func (s *PracticeScreen) viewConfiguring(width int) string {
	if s.session.CatalogSize() == 0 {
		return layout.Notice(width, theme.Hint, "No questions are available for this course.")
	}
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Render("  New practice test"))
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("  %d questions available in %s.", s.session.CatalogSize(), s.course.Name)))
	b.WriteString("\n\n  ")
	b.WriteString(s.countInput.View())
	b.WriteString("\n")
	b.WriteString(s.renderStatus())
	return b.String()
}

func (s *PracticeScreen) viewRunning(width int) string {
	q, ok := s.session.Question()
	if !ok {
		return ""
	}
	total := len(s.session.Questions)
	elapsed := int(s.session.Elapsed(s.now()).Seconds())

	var b strings.Builder
	head := fmt.Sprintf("  Question %d / %d   Answered %d / %d",
		s.session.Current+1, total, s.session.AnsweredCount(), total)
	clock := "⏱ " + tracker.FormatDuration(elapsed) + "  "
	gap := max(width-lipgloss.Width(head)-lipgloss.Width(clock), 1)
	b.WriteString(theme.Subtitle.Render(head) + strings.Repeat(" ", gap) + theme.Title.Render(clock))
	b.WriteString("\n")
	b.WriteString(s.renderDots(width))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.NewStyle().
		Width(max(width-4, 10)).
		PaddingLeft(2).
		Bold(true).
		Foreground(theme.Text).
		Render(q.Text))
	b.WriteString("\n\n")
	b.WriteString(s.options.View(width))

	if s.jumpInput != nil {
		b.WriteString("\n  " + s.jumpInput.View() + "\n")
	}
	if s.confirm {
		unanswered := total - s.session.AnsweredCount()
		b.WriteString("\n  " + theme.Status.Render(fmt.Sprintf("%d questions are unanswered and will count as wrong. Submit? (y/n)", unanswered)) + "\n")
	}
	b.WriteString(s.renderStatus())
	return b.String()
}

// renderDots draws one marker per question: filled when answered, ringed
// for the current one.
func (s *PracticeScreen) renderDots(width int) string {
	total := len(s.session.Questions)
	start, end := layout.Window(total, s.session.Current, max((width-4)/2, 1))
	var b strings.Builder
	b.WriteString("  ")
	for i := start; i < end; i++ {
		dot := theme.Subtitle.Render("·")
		if s.session.Answers[i] != "" {
			dot = theme.Selected.Render("●")
		}
		if i == s.session.Current {
			dot = theme.Title.Render("◉")
		}
		b.WriteString(dot + " ")
	}
	return b.String()
}

func (s *PracticeScreen) viewFinished(width, height int) string {
	r := s.session.Result
	if r == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(theme.Title.Render("  Test complete"))
	b.WriteString("\n\n  ")
	b.WriteString(components.ProgressBar{
		Label:  "Score",
		Score:  float64(r.Score),
		Width:  min(width-4, 60),
		Banded: true,
		Band:   int(tracker.ScoreBand(float64(r.Score))),
	}.View())
	b.WriteString("\n\n")
	b.WriteString(theme.Body.Render(fmt.Sprintf("  %d correct, %d wrong out of %d   Time %s",
		r.CorrectAnswers, r.WrongAnswers, r.TotalQuestions, tracker.FormatDuration(r.TimeSpent))))
	b.WriteString("\n\n")

	rows := max(height-10, 3)
	start := min(s.scroll, max(len(r.Questions)-1, 0))
	end := min(start+rows, len(r.Questions))
	for i := start; i < end; i++ {
		qr := r.Questions[i]
		mark := theme.Correct.Render("✓")
		if !qr.IsCorrect {
			mark = theme.Incorrect.Render("✗")
		}
		line := fmt.Sprintf("%d. %s", i+1, qr.Question)
		b.WriteString("  " + mark + " " + theme.Body.Render(layout.Truncate(line, max(width-6, 10))) + "\n")
		if !qr.IsCorrect {
			answer := qr.UserAnswer
			if answer == "" {
				answer = "(no answer)"
			}
			b.WriteString(theme.Hint.Render("      Your answer: "+answer+"   Correct: "+qr.CorrectAnswer) + "\n")
		}
	}
	b.WriteString(s.renderStatus())
	return b.String()
}

func (s *PracticeScreen) renderStatus() string {
	if s.status == "" {
		return ""
	}
	return "\n  " + theme.Status.Render(s.status) + "\n"
}
