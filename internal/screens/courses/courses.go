// Package courses is the course picker shared by the study, practice and
// progress flows.
package courses

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/studydeck/studydeck/internal/catalog"
	"github.com/studydeck/studydeck/internal/router"
	"github.com/studydeck/studydeck/internal/screen"
	"github.com/studydeck/studydeck/internal/ui/components"
	"github.com/studydeck/studydeck/internal/ui/layout"
	"github.com/studydeck/studydeck/internal/ui/theme"
)

type coursesLoadedMsg struct {
	Courses []catalog.Course
	Err     error
}

// Next builds the screen opened for the chosen course. It replaces the
// picker on the stack.
type Next func(c catalog.Course) screen.Screen

// PickerScreen lists the course directory with a search filter.
type PickerScreen struct {
	source catalog.Source
	title  string
	next   Next

	all       []catalog.Course
	shown     []catalog.Course
	selected  int
	filter    components.TextInput
	filtering bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*PickerScreen)(nil)
var _ screen.KeyHintProvider = (*PickerScreen)(nil)
var _ screen.InputCapturer = (*PickerScreen)(nil)

// New creates a picker titled title that opens next for the chosen course.
func New(source catalog.Source, title string, next Next) *PickerScreen {
	return &PickerScreen{
		source: source,
		title:  title,
		next:   next,
		filter: components.NewTextInput("Search", "name, code or description", false, 64),
	}
}

func (s *PickerScreen) Init() tea.Cmd {
	return func() tea.Msg {
		courses, err := s.source.ListCourses(context.Background())
		return coursesLoadedMsg{Courses: courses, Err: err}
	}
}

func (s *PickerScreen) Title() string { return s.title }

func (s *PickerScreen) CapturingInput() bool { return s.filtering }

func (s *PickerScreen) KeyHints() []layout.KeyHint {
	if s.filtering {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Done"},
			{Key: "Esc", Description: "Clear search"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Open"},
		{Key: "/", Description: "Search"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *PickerScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case coursesLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.all = msg.Courses
		s.applyFilter()
		return s, nil

	case tea.KeyPressMsg:
		if s.filtering {
			return s.handleFilterKey(msg)
		}
		switch msg.String() {
		case "esc":
			return s, router.Pop
		case "/":
			s.filtering = true
			return s, s.filter.Model.Focus()
		case "up", "k":
			s.selected = max(s.selected-1, 0)
		case "down", "j":
			s.selected = min(s.selected+1, max(len(s.shown)-1, 0))
		case "enter":
			if s.selected < len(s.shown) {
				return s, router.Replace(s.next(s.shown[s.selected]))
			}
		}
	}
	return s, nil
}

func (s *PickerScreen) handleFilterKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "enter":
		s.filtering = false
		return s, nil
	case "esc":
		s.filtering = false
		s.filter.Reset()
		s.applyFilter()
		return s, nil
	}
	var cmd tea.Cmd
	s.filter, cmd = s.filter.Update(msg)
	s.applyFilter()
	return s, cmd
}

func (s *PickerScreen) applyFilter() {
	s.shown = catalog.FilterCourses(s.all, s.filter.Value())
	s.selected = min(s.selected, max(len(s.shown)-1, 0))
}

// Selected returns the highlighted course.
func (s *PickerScreen) Selected() (catalog.Course, bool) {
	if s.selected >= len(s.shown) {
		return catalog.Course{}, false
	}
	return s.shown[s.selected], true
}

func (s *PickerScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Notice(width, theme.ErrorText, "Could not load courses: "+s.errMsg)
	}
	if !s.loaded {
		return layout.Notice(width, theme.Hint, "Loading courses...")
	}

	var b strings.Builder
	b.WriteString("\n  " + s.filter.View() + "\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("  %d of %d courses", len(s.shown), len(s.all))))
	b.WriteString("\n\n")

	if len(s.shown) == 0 {
		b.WriteString(theme.Hint.Render("  No courses match your search."))
		return b.String()
	}

	rows := max((height-5)/2, 1)
	start, end := layout.Window(len(s.shown), s.selected, rows)
	for i := start; i < end; i++ {
		c := s.shown[i]
		prefix := "   "
		style := theme.Unselected
		if i == s.selected {
			prefix = " ▸ "
			style = theme.Selected
		}
		cat := lipgloss.NewStyle().Foreground(theme.Secondary).Render("[" + c.Category() + "]")
		b.WriteString(style.Render(prefix+c.Name) + "  " + cat + "\n")
		desc := c.Description
		if desc == "" {
			desc = c.ID
		}
		b.WriteString("     " + theme.Hint.Render(layout.Truncate(desc, width-8)) + "\n")
	}
	return b.String()
}
