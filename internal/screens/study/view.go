package study

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/studydeck/studydeck/internal/buckets"
	"github.com/studydeck/studydeck/internal/ui/components"
	"github.com/studydeck/studydeck/internal/ui/layout"
	"github.com/studydeck/studydeck/internal/ui/theme"
)

func (s *StudyScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Notice(width, theme.ErrorText, "Could not load progress: "+s.errMsg)
	}
	if !s.loaded {
		return layout.Notice(width, theme.Hint, "Loading questions...")
	}

	var b strings.Builder
	b.WriteString(s.renderTabs())
	b.WriteString("\n\n")

	q, ok := s.nav.Current()
	if !ok {
		b.WriteString(s.renderEmpty(width))
		b.WriteString(s.renderFooterLines())
		return b.String()
	}

	star := ""
	if s.state.IsImportant(q.Text) {
		star = "  " + theme.Starred.Render("★ starred")
	}
	pos := fmt.Sprintf("  Question %d / %d", s.nav.Index()+1, s.nav.Len())
	if f := s.nav.Filter(); f != "" {
		pos += fmt.Sprintf("  (filter: %q)", f)
	}
	b.WriteString(theme.Subtitle.Render(pos) + star + "\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render("  " + strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	text := components.MarkText(q.Text, s.options.Keywords, s.showMarks)
	b.WriteString(lipgloss.NewStyle().
		Width(max(width-4, 10)).
		PaddingLeft(2).
		Bold(true).
		Foreground(theme.Text).
		Render(text))
	b.WriteString("\n")
	if q.IsMulti() {
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  Select %d answers, then press Enter", len(q.Answers))))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(s.options.View(width))

	if s.outcome != nil {
		b.WriteString("\n")
		if s.outcome.Correct {
			b.WriteString(theme.Correct.Render("  ✓ Correct!"))
		} else {
			b.WriteString(theme.Incorrect.Render("  ✗ Incorrect.") +
				theme.Body.Render(" Correct answer: "+s.outcome.CorrectText))
		}
		b.WriteString("\n")
	} else if rec, ok := s.state.WrongFor(q.Text); ok {
		b.WriteString("\n")
		b.WriteString(theme.Hint.Render("  Last time you answered: " + rec.UserAnswer))
		b.WriteString("\n")
	}

	if kws := s.options.Keywords; len(kws) > 0 {
		label := "  Marks: "
		if !s.showMarks {
			label = "  Marks (hidden): "
		}
		b.WriteString(theme.Subtitle.Render(label + strings.Join(kws, ", ")))
		b.WriteString("\n")
	}

	b.WriteString(s.renderFooterLines())
	return b.String()
}

func (s *StudyScreen) renderTabs() string {
	counts := s.nav.Counts()
	parts := make([]string, 0, len(buckets.Ordered))
	for _, bk := range buckets.Ordered {
		label := fmt.Sprintf("%s %d", bk.Label(), counts[bk])
		switch {
		case bk == s.nav.Bucket():
			parts = append(parts, theme.TabActive.Render(label))
		case !selectable(bk, counts):
			parts = append(parts, theme.TabDisabled.Render(label))
		default:
			parts = append(parts, theme.TabInactive.Render(label))
		}
	}
	return "  " + strings.Join(parts, " ")
}

func (s *StudyScreen) renderEmpty(width int) string {
	msg := "No questions in this bucket."
	switch {
	case s.nav.Counts()[buckets.All] == 0:
		msg = "No questions are available for this course."
	case s.nav.Filter() != "":
		msg = "No questions match the filter. Press f to change it."
	case s.nav.Bucket() == buckets.Wrong:
		msg = "No wrong answers to review. Nice work!"
	}
	return lipgloss.NewStyle().Width(width).Align(lipgloss.Center).Render(theme.Hint.Render(msg)) + "\n"
}

func (s *StudyScreen) renderFooterLines() string {
	var b strings.Builder
	if s.prompt != promptNone {
		b.WriteString("\n  " + s.input.View() + "\n")
	}
	if s.status != "" {
		b.WriteString("\n  " + theme.Status.Render(s.status) + "\n")
	}
	return b.String()
}
