package components

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/studydeck/studydeck/internal/highlight"
	"github.com/studydeck/studydeck/internal/ui/theme"
)

// OptionList renders the answer options of a question. The cursor moves
// with the arrow keys; picking is left to the owning screen.
type OptionList struct {
	Options []string
	Cursor  int

	// Chosen reports whether an option is part of the user's answer.
	Chosen func(option string) bool
	// Correct is consulted only when Revealed is set.
	Correct  func(option string) bool
	Revealed bool

	Keywords  []string
	ShowMarks bool
}

// Update moves the cursor.
func (o OptionList) Update(msg tea.Msg) OptionList {
	kmsg, ok := msg.(tea.KeyPressMsg)
	if !ok || len(o.Options) == 0 {
		return o
	}
	switch kmsg.String() {
	case "up":
		o.Cursor = max(o.Cursor-1, 0)
	case "down":
		o.Cursor = min(o.Cursor+1, len(o.Options)-1)
	}
	return o
}

// PickKey maps a digit key to a 0-based option index.
func PickKey(key string, n int) (int, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return 0, false
	}
	i := int(key[0] - '1')
	return i, i < n
}

// Current returns the option under the cursor.
func (o OptionList) Current() (string, bool) {
	if o.Cursor < 0 || o.Cursor >= len(o.Options) {
		return "", false
	}
	return o.Options[o.Cursor], true
}

func (o OptionList) View(width int) string {
	var b strings.Builder
	for i, opt := range o.Options {
		chosen := o.Chosen != nil && o.Chosen(opt)

		marker := "( )"
		if chosen {
			marker = "(•)"
		}
		prefix := "  "
		if i == o.Cursor && !o.Revealed {
			prefix = "▸ "
		}

		style := theme.Unselected
		switch {
		case o.Revealed && o.Correct != nil && o.Correct(opt):
			style = theme.Correct
			marker = "(✓)"
		case o.Revealed && chosen:
			style = theme.Incorrect
			marker = "(✗)"
		case o.Revealed:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == o.Cursor:
			style = theme.Selected
		}

		text := MarkText(opt, o.Keywords, o.ShowMarks)
		line := lipgloss.NewStyle().Width(max(width-8, 10)).Render(text)
		b.WriteString(style.Render(prefix+marker+" ") + indentTail(line, 6) + "\n")
	}
	return b.String()
}

// MarkText emphasizes keywords in text when show is set.
func MarkText(text string, keywords []string, show bool) string {
	if !show || len(keywords) == 0 {
		return text
	}
	return highlight.Render(text, keywords, func(s string) string {
		return theme.Mark.Render(s)
	})
}

// indentTail indents every line after the first.
func indentTail(s string, n int) string {
	lines := strings.Split(s, "\n")
	pad := strings.Repeat(" ", n)
	for i := 1; i < len(lines); i++ {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}
