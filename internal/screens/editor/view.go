package editor

import (
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/studydeck/studydeck/internal/chat"
	"github.com/studydeck/studydeck/internal/ui/layout"
	"github.com/studydeck/studydeck/internal/ui/theme"
)

func (s *EditorScreen) View(width, height int) string {
	var extra []string
	if s.share != nil {
		extra = append(extra, "  "+s.share.View())
	}
	if s.shareText != "" {
		extra = append(extra, theme.Card.Render(s.shareText))
	}
	if s.status != "" {
		extra = append(extra, "  "+theme.Status.Render(s.status))
	}
	bottom := strings.Join(extra, "\n")
	bodyHeight := max(height-lipgloss.Height(bottom)-1, 4)
	if bottom == "" {
		bodyHeight = height
	}

	var body string
	switch {
	case !s.chatOpen:
		body = s.renderEditor(width, bodyHeight)
	case width < layout.CompactWidth:
		// Too narrow for two columns: the focused pane takes the screen.
		if s.focus == focusChat {
			body = s.renderChat(width, bodyHeight)
		} else {
			body = s.renderEditor(width, bodyHeight)
		}
	default:
		chatWidth := width * 2 / 5
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			s.renderEditor(width-chatWidth, bodyHeight),
			s.renderChat(chatWidth, bodyHeight))
	}

	if bottom == "" {
		return body
	}
	return body + "\n" + bottom
}

func (s *EditorScreen) renderEditor(width, height int) string {
	card := theme.Card
	if s.focus == focusEditor {
		card = theme.FocusedCard
	}
	// Border and padding take two rows and four columns.
	s.area.SetWidth(max(width-4, 10))
	s.area.SetHeight(max(height-2, 2))
	return card.Width(width).Render(s.area.View())
}

func (s *EditorScreen) renderChat(width, height int) string {
	card := theme.Card
	if s.focus == focusChat {
		card = theme.FocusedCard
	}
	inner := max(width-4, 10)

	mode := theme.TabInactive.Render(" Ask ") + theme.TabActive.Render(" Agent ")
	if s.panel.mode == chat.ModeAsk {
		mode = theme.TabActive.Render(" Ask ") + theme.TabInactive.Render(" Agent ")
	}
	head := theme.Title.Render("AI chat") + "  " + mode

	var foot []string
	switch {
	case s.panel.pending != nil:
		foot = append(foot, theme.Status.Render("Apply the suggested edit? (y/n)"))
	case s.panel.waiting:
		foot = append(foot, theme.Hint.Render("Thinking..."))
	default:
		s.panel.input.Model.SetWidth(max(inner-2, 4))
		foot = append(foot, s.panel.input.View())
	}

	avail := max(height-2-lipgloss.Height(head)-len(foot)-2, 1)
	lines := s.chatLines(inner)
	if len(lines) > avail {
		lines = lines[len(lines)-avail:]
	}
	if len(lines) == 0 {
		lines = []string{theme.Hint.Render("Ask anything about this document. Agent mode can propose edits.")}
	}

	content := head + "\n\n" + strings.Join(lines, "\n") + "\n\n" + strings.Join(foot, "\n")
	return card.Width(width).Height(height).Render(content)
}

// chatLines wraps every message to width, newest last.
func (s *EditorScreen) chatLines(width int) []string {
	var out []string
	wrap := lipgloss.NewStyle().Width(width)
	for _, m := range s.panel.messages {
		label := theme.Selected.Render("You")
		if m.Role == chat.RoleAssistant {
			label = theme.Subtitle.Render("AI")
		}
		out = append(out, label)
		out = append(out, strings.Split(wrap.Render(theme.Body.Render(m.Content)), "\n")...)
		if m.IsAgentSuggestion {
			preview := layout.Truncate(strings.Join(strings.Fields(m.SuggestedContent), " "), width-2)
			out = append(out, theme.Mark.Render("✎ "+preview))
		}
		out = append(out, "")
	}
	return out
}
