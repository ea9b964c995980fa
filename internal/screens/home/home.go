// Package home is the main menu.
package home

import (
	"context"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/studydeck/studydeck/internal/catalog"
	"github.com/studydeck/studydeck/internal/chat"
	"github.com/studydeck/studydeck/internal/docs"
	"github.com/studydeck/studydeck/internal/router"
	"github.com/studydeck/studydeck/internal/screen"
	"github.com/studydeck/studydeck/internal/screens/courses"
	"github.com/studydeck/studydeck/internal/screens/documents"
	"github.com/studydeck/studydeck/internal/screens/editor"
	"github.com/studydeck/studydeck/internal/screens/practice"
	"github.com/studydeck/studydeck/internal/screens/progress"
	"github.com/studydeck/studydeck/internal/screens/study"
	"github.com/studydeck/studydeck/internal/tracker"
	"github.com/studydeck/studydeck/internal/ui/components"
)

// Deps holds what the screens reachable from the menu need.
type Deps struct {
	Source    catalog.Source
	Tracker   *tracker.Tracker
	Library   *docs.Library
	Remote    docs.Remote
	Assistant *chat.Assistant

	PracticeCount int
	AutosaveDelay time.Duration
	ShareBaseURL  string
}

type statsLoadedMsg struct {
	Overview tracker.Overview
	Err      error
}

// HomeScreen is the main menu with a summary of recent practice.
type HomeScreen struct {
	deps  Deps
	menu  components.Menu
	stats *tracker.Overview
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ router.Resumer = (*HomeScreen)(nil)

// New creates the home screen.
func New(deps Deps) *HomeScreen {
	h := &HomeScreen{deps: deps}
	h.menu = components.NewMenu([]components.MenuItem{
		{Label: "Study", Description: "flashcards by bucket", Action: func() tea.Cmd {
			return router.Push(courses.New(deps.Source, "Study: choose a course", h.openStudy(tracker.ModeStudy)))
		}},
		{Label: "Review mistakes", Description: "only questions you got wrong", Action: func() tea.Cmd {
			return router.Push(courses.New(deps.Source, "Review: choose a course", h.openStudy(tracker.ModeWrongReview)))
		}},
		{Label: "Practice test", Description: "timed, scored", Action: func() tea.Cmd {
			return router.Push(courses.New(deps.Source, "Practice: choose a course", h.openPractice))
		}},
		{Label: "Progress", Description: "history and trends", Action: func() tea.Cmd {
			return router.Push(progress.New(deps.Source, deps.Tracker))
		}},
		{Label: "Documents", Description: "shared notes with AI chat", Disabled: deps.Library == nil, Action: func() tea.Cmd {
			return router.Push(documents.New(deps.Library, deps.Remote, h.openEditor))
		}},
		{Label: "Quit", Action: func() tea.Cmd {
			return tea.Quit
		}},
	})
	return h
}

func (h *HomeScreen) openStudy(mode tracker.Mode) courses.Next {
	return func(c catalog.Course) screen.Screen {
		return study.New(h.deps.Source, h.deps.Tracker, c, mode)
	}
}

func (h *HomeScreen) openPractice(c catalog.Course) screen.Screen {
	return practice.New(h.deps.Source, h.deps.Tracker, c, h.deps.PracticeCount)
}

func (h *HomeScreen) openEditor(doc docs.Document, isNew bool) screen.Screen {
	return editor.New(h.deps.Remote, h.deps.Library, h.deps.Assistant, doc, editor.Options{
		AutosaveDelay: h.deps.AutosaveDelay,
		ShareBaseURL:  h.deps.ShareBaseURL,
		IsNew:         isNew,
	})
}

func (h *HomeScreen) Init() tea.Cmd {
	return h.loadStats()
}

// Resume refreshes the summary after a test or review.
func (h *HomeScreen) Resume() tea.Cmd {
	return h.loadStats()
}

func (h *HomeScreen) loadStats() tea.Cmd {
	if h.deps.Tracker == nil {
		return nil
	}
	return func() tea.Msg {
		ov, err := h.deps.Tracker.Overview(context.Background())
		return statsLoadedMsg{Overview: ov, Err: err}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if msg, ok := msg.(statsLoadedMsg); ok {
		if msg.Err == nil {
			h.stats = &msg.Overview
		}
		return h, nil
	}
	var cmd tea.Cmd
	h.menu, cmd = h.menu.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := contentWidth(width)
	compact := height < 22

	var sections []string
	sections = append(sections, renderTitle(cw, compact))
	sections = append(sections, renderStatsBar(h.stats, cw))
	sections = append(sections, renderMenu(h.menu, cw))
	return centerIn(strings.Join(sections, "\n\n"), width, height)
}

func (h *HomeScreen) Title() string {
	return "Home"
}
