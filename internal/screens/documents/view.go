package documents

import (
	"fmt"
	"strings"

	"github.com/studydeck/studydeck/internal/docs"
	"github.com/studydeck/studydeck/internal/ui/layout"
	"github.com/studydeck/studydeck/internal/ui/theme"
)

const previewChars = 60

func (s *LibraryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Notice(width, theme.ErrorText, "Could not read documents: "+s.errMsg)
	}
	if !s.loaded {
		return layout.Notice(width, theme.Hint, "Loading documents...")
	}

	var b strings.Builder
	b.WriteString("\n")
	switch {
	case len(s.all) == 0:
		b.WriteString(theme.Hint.Render("  No documents yet. Press n to create one or o to open a shared id."))
		b.WriteString("\n")
	case len(s.shown) == 0:
		b.WriteString(theme.Hint.Render(fmt.Sprintf("  No documents match %q.", s.search)))
		b.WriteString("\n")
	default:
		if s.search != "" {
			b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  %d of %d documents match %q", len(s.shown), len(s.all), s.search)))
			b.WriteString("\n\n")
		}
		start, end := layout.Window(len(s.shown), s.selected, max((height-8)/2, 1))
		for i := start; i < end; i++ {
			b.WriteString(s.renderRow(s.shown[i], i == s.selected, width))
		}
	}

	if s.prompt != promptNone && s.prompt != promptRemove {
		b.WriteString("\n  " + s.input.View() + "\n")
	}
	if s.prompt == promptRemove && s.selected < len(s.shown) {
		b.WriteString("\n  " + theme.Status.Render(fmt.Sprintf("Forget %q on this device? The shared copy stays. (y/n)", s.shown[s.selected].Title)) + "\n")
	}
	if s.status != "" {
		b.WriteString("\n  " + theme.Status.Render(s.status) + "\n")
	}
	return b.String()
}

func (s *LibraryScreen) renderRow(d docs.Document, selected bool, width int) string {
	cursor := "  "
	title := theme.Body.Render(d.Title)
	if selected {
		cursor = theme.Selected.Render("▸ ")
		title = theme.Selected.Render(d.Title)
	}
	lock := ""
	if d.Protected() {
		lock = " " + theme.Starred.Render("🔒")
	}
	line := cursor + title + lock + theme.Subtitle.Render("  "+d.DocID) + "\n"

	preview := strings.Join(strings.Fields(docs.PlainText(d.Content)), " ")
	if d.Protected() {
		preview = "(password protected)"
	} else if preview == "" {
		preview = "(empty)"
	}
	line += theme.Hint.Render("    "+layout.Truncate(preview, min(previewChars, max(width-6, 10)))) + "\n"
	return line
}
