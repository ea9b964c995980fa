// Package progress shows practice history and review state per course.
package progress

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/studydeck/studydeck/internal/catalog"
	"github.com/studydeck/studydeck/internal/router"
	"github.com/studydeck/studydeck/internal/screen"
	"github.com/studydeck/studydeck/internal/screens/study"
	"github.com/studydeck/studydeck/internal/tracker"
	"github.com/studydeck/studydeck/internal/ui/layout"
)

type overviewLoadedMsg struct {
	Overview tracker.Overview
	Courses  map[string]catalog.Course
	Err      error
}

type detailLoadedMsg struct {
	Progress tracker.CourseProgress
	Err      error
}

// ProgressScreen lists every practiced course and drills into one.
type ProgressScreen struct {
	source  catalog.Source
	tracker *tracker.Tracker

	overview tracker.Overview
	courses  map[string]catalog.Course
	selected int

	detail     *tracker.CourseProgress
	scroll     int
	confirming bool

	status string
	loaded bool
	errMsg string
}

var _ screen.Screen = (*ProgressScreen)(nil)
var _ screen.KeyHintProvider = (*ProgressScreen)(nil)
var _ screen.InputCapturer = (*ProgressScreen)(nil)
var _ router.Resumer = (*ProgressScreen)(nil)

// New creates a progress screen.
func New(source catalog.Source, tr *tracker.Tracker) *ProgressScreen {
	return &ProgressScreen{source: source, tracker: tr}
}

func (s *ProgressScreen) Init() tea.Cmd {
	return s.loadOverview()
}

// Resume refreshes after returning from a review session.
func (s *ProgressScreen) Resume() tea.Cmd {
	if s.detail != nil {
		return s.loadDetail(s.detail.CourseID)
	}
	return s.loadOverview()
}

func (s *ProgressScreen) Title() string {
	if s.detail != nil {
		return "Progress: " + s.courseName(s.detail.CourseID)
	}
	return "Progress"
}

func (s *ProgressScreen) CapturingInput() bool { return s.confirming || s.detail != nil }

func (s *ProgressScreen) KeyHints() []layout.KeyHint {
	switch {
	case s.confirming:
		return []layout.KeyHint{
			{Key: "Y", Description: "Clear"},
			{Key: "N", Description: "Cancel"},
		}
	case s.detail != nil:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Scroll"},
			{Key: "R", Description: "Review wrong"},
			{Key: "C", Description: "Clear wrong"},
			{Key: "Esc", Description: "Back"},
		}
	default:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Navigate"},
			{Key: "Enter", Description: "Details"},
			{Key: "Esc", Description: "Back"},
		}
	}
}

func (s *ProgressScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case overviewLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = msg.Err.Error()
			return s, nil
		}
		s.errMsg = ""
		s.overview = msg.Overview
		if msg.Courses != nil {
			s.courses = msg.Courses
		}
		s.selected = min(s.selected, max(len(s.overview.Courses)-1, 0))
		return s, nil

	case detailLoadedMsg:
		if msg.Err != nil {
			s.status = "Could not load course: " + msg.Err.Error()
			return s, nil
		}
		p := msg.Progress
		s.detail = &p
		s.scroll = min(s.scroll, max(len(p.History)-1, 0))
		return s, nil

	case tea.KeyPressMsg:
		if s.detail != nil {
			return s.handleDetailKey(msg)
		}
		return s.handleOverviewKey(msg)
	}
	return s, nil
}

func (s *ProgressScreen) handleOverviewKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return s, router.Pop
	case "up", "k":
		s.selected = max(s.selected-1, 0)
	case "down", "j":
		s.selected = min(s.selected+1, max(len(s.overview.Courses)-1, 0))
	case "enter":
		if s.selected < len(s.overview.Courses) {
			p := s.overview.Courses[s.selected]
			s.detail = &p
			s.scroll = 0
			s.status = ""
		}
	}
	return s, nil
}

func (s *ProgressScreen) handleDetailKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	if s.confirming {
		switch key {
		case "y", "Y":
			s.confirming = false
			if err := s.tracker.ClearWrongAnswers(context.Background(), s.detail.CourseID); err != nil {
				s.status = "Could not clear: " + err.Error()
				return s, nil
			}
			s.status = "Wrong answers cleared"
			return s, s.loadDetail(s.detail.CourseID)
		case "n", "N", "esc":
			s.confirming = false
		}
		return s, nil
	}

	switch key {
	case "esc":
		s.detail = nil
		s.status = ""
		return s, s.loadOverview()
	case "up", "k":
		s.scroll = max(s.scroll-1, 0)
	case "down", "j":
		s.scroll = min(s.scroll+1, max(len(s.detail.History)-1, 0))
	case "c", "C":
		if len(s.detail.Wrong) == 0 {
			s.status = "No wrong answers to clear"
			return s, nil
		}
		s.confirming = true
	case "r", "R":
		if len(s.detail.Wrong) == 0 {
			s.status = "No wrong answers to review"
			return s, nil
		}
		c, ok := s.courses[s.detail.CourseID]
		if !ok {
			s.status = "Course is no longer in the directory"
			return s, nil
		}
		return s, router.Push(study.New(s.source, s.tracker, c, tracker.ModeWrongReview))
	}
	return s, nil
}

// loadOverview reads the overview and, best effort, the course directory
// for display names.
func (s *ProgressScreen) loadOverview() tea.Cmd {
	known := s.courses
	return func() tea.Msg {
		ctx := context.Background()
		ov, err := s.tracker.Overview(ctx)
		if err != nil {
			return overviewLoadedMsg{Err: err}
		}
		if known != nil {
			return overviewLoadedMsg{Overview: ov}
		}
		list, err := s.source.ListCourses(ctx)
		if err != nil {
			return overviewLoadedMsg{Overview: ov}
		}
		byID := make(map[string]catalog.Course, len(list))
		for _, c := range list {
			byID[c.ID] = c
		}
		return overviewLoadedMsg{Overview: ov, Courses: byID}
	}
}

func (s *ProgressScreen) loadDetail(courseID string) tea.Cmd {
	return func() tea.Msg {
		p, err := s.tracker.Progress(context.Background(), courseID)
		return detailLoadedMsg{Progress: p, Err: err}
	}
}

func (s *ProgressScreen) courseName(id string) string {
	if c, ok := s.courses[id]; ok && c.Name != "" {
		return c.Name
	}
	return "Course " + id
}
