// Package practice is the timed practice test screen.
package practice

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/studydeck/studydeck/internal/catalog"
	"github.com/studydeck/studydeck/internal/practice"
	"github.com/studydeck/studydeck/internal/router"
	"github.com/studydeck/studydeck/internal/screen"
	"github.com/studydeck/studydeck/internal/tracker"
	"github.com/studydeck/studydeck/internal/ui/components"
	"github.com/studydeck/studydeck/internal/ui/layout"
)

type loadedMsg struct {
	Questions []catalog.Question
}

// timerTickMsg redraws the clock once a second while a test runs.
type timerTickMsg struct {
	SessionID string
}

// PracticeScreen implements screen.Screen for one course's practice tests.
type PracticeScreen struct {
	source       catalog.Source
	tracker      *tracker.Tracker
	course       catalog.Course
	defaultCount int
	now          func() time.Time
	rng          *rand.Rand

	session    *practice.Session
	countInput components.TextInput
	jumpInput  *components.TextInput
	options    components.OptionList
	confirm    bool
	scroll     int

	status string
	loaded bool
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)
var _ screen.StatusProvider = (*PracticeScreen)(nil)
var _ screen.InputCapturer = (*PracticeScreen)(nil)

// Option configures a PracticeScreen.
type Option func(*PracticeScreen)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *PracticeScreen) { s.now = now }
}

// WithRand fixes the sampling source.
func WithRand(rng *rand.Rand) Option {
	return func(s *PracticeScreen) { s.rng = rng }
}

// New creates a practice screen. defaultCount pre-fills the question count.
func New(source catalog.Source, tr *tracker.Tracker, course catalog.Course, defaultCount int, opts ...Option) *PracticeScreen {
	s := &PracticeScreen{
		source:       source,
		tracker:      tr,
		course:       course,
		defaultCount: max(defaultCount, 1),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.resetCountInput(s.defaultCount)
	return s
}

func (s *PracticeScreen) Init() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{Questions: s.source.LoadQuestions(context.Background(), s.course.File)}
	}
}

func (s *PracticeScreen) Title() string { return "Practice Test" }

func (s *PracticeScreen) Status() string { return s.course.Name }

// CapturingInput reports whether typed keys belong to an input field.
func (s *PracticeScreen) CapturingInput() bool {
	if s.session == nil {
		return false
	}
	return s.jumpInput != nil || s.confirm
}

func (s *PracticeScreen) KeyHints() []layout.KeyHint {
	if s.session == nil {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	switch s.session.Phase {
	case practice.PhaseRunning:
		if s.jumpInput != nil {
			return []layout.KeyHint{
				{Key: "Enter", Description: "Go"},
				{Key: "Esc", Description: "Cancel"},
			}
		}
		if s.confirm {
			return []layout.KeyHint{
				{Key: "Y", Description: "Submit"},
				{Key: "N", Description: "Keep going"},
			}
		}
		return []layout.KeyHint{
			{Key: "←→", Description: "Prev/Next"},
			{Key: "1-9", Description: "Answer"},
			{Key: "g", Description: "Go to"},
			{Key: "Ctrl+S", Description: "Submit"},
			{Key: "Esc", Description: "Abandon"},
		}
	case practice.PhaseFinished:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Scroll"},
			{Key: "R", Description: "New test"},
			{Key: "Esc", Description: "Back"},
		}
	default:
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Back"},
		}
	}
}

func (s *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.loaded = true
		s.session = practice.New(s.course.ID, msg.Questions, s.rng)
		s.resetCountInput(min(s.defaultCount, max(s.session.CatalogSize(), 1)))
		return s, nil

	case timerTickMsg:
		if s.session != nil && s.session.Phase == practice.PhaseRunning && s.session.ID == msg.SessionID {
			return s, s.tick()
		}
		return s, nil

	case tea.KeyPressMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *PracticeScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	if s.session == nil {
		if msg.String() == "esc" {
			return s, router.Pop
		}
		return s, nil
	}
	switch s.session.Phase {
	case practice.PhaseConfiguring:
		return s.handleConfigKey(msg)
	case practice.PhaseRunning:
		return s.handleRunningKey(msg)
	default:
		return s.handleFinishedKey(msg)
	}
}

func (s *PracticeScreen) handleConfigKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return s, router.Pop
	case "enter":
		if !s.session.CanStart() {
			s.status = "No questions are available for this course."
			return s, nil
		}
		n, err := s.countInput.NumericValue()
		if err != nil || n < 1 {
			s.status = "Enter how many questions you want"
			return s, nil
		}
		if err := s.session.Start(n, s.now()); err != nil {
			s.status = err.Error()
			return s, nil
		}
		s.status = ""
		s.syncOptions()
		return s, s.tick()
	}
	var cmd tea.Cmd
	s.countInput, cmd = s.countInput.Update(msg)
	return s, cmd
}

func (s *PracticeScreen) handleRunningKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	if s.jumpInput != nil {
		return s.handleJumpKey(msg)
	}
	if s.confirm {
		switch key {
		case "y", "Y":
			s.confirm = false
			s.submit()
		case "n", "N", "esc":
			s.confirm = false
		}
		return s, nil
	}

	s.status = ""
	switch key {
	case "esc":
		return s, router.Pop
	case "right", "l":
		s.session.Next()
		s.syncOptions()
	case "left", "h":
		s.session.Prev()
		s.syncOptions()
	case "up", "down":
		s.options = s.options.Update(msg)
	case "space", "enter":
		if opt, ok := s.options.Current(); ok {
			s.answer(opt)
		}
	case "g", "G":
		in := components.NewTextInput(fmt.Sprintf("Go to question (1-%d)", len(s.session.Questions)), "", true, 4)
		s.jumpInput = &in
	case "ctrl+s":
		if !s.session.CanSubmit() {
			s.status = practice.ErrNothingAnswered.Error()
			return s, nil
		}
		if s.session.AnsweredCount() < len(s.session.Questions) {
			s.confirm = true
			return s, nil
		}
		s.submit()
	default:
		q, ok := s.session.Question()
		if !ok {
			break
		}
		if i, ok := components.PickKey(key, len(q.Options)); ok {
			s.options.Cursor = i
			s.answer(q.Options[i])
		}
	}
	return s, nil
}

func (s *PracticeScreen) answer(option string) {
	if err := s.session.Answer(option); err != nil {
		s.status = err.Error()
	}
}

func (s *PracticeScreen) handleJumpKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.jumpInput = nil
		return s, nil
	case "enter":
		n, err := s.jumpInput.NumericValue()
		s.jumpInput = nil
		if err != nil {
			s.status = "Enter a question number"
			return s, nil
		}
		if err := s.session.GoTo(n - 1); err != nil {
			s.status = err.Error()
			return s, nil
		}
		s.syncOptions()
		return s, nil
	}
	in, cmd := s.jumpInput.Update(msg)
	s.jumpInput = &in
	return s, cmd
}

func (s *PracticeScreen) submit() {
	result, err := s.session.Submit(s.now())
	if err != nil {
		s.status = err.Error()
		return
	}
	s.scroll = 0
	if _, err := s.tracker.AppendResult(context.Background(), s.course.ID, result); err != nil {
		s.status = "Result not saved: " + err.Error()
	}
}

func (s *PracticeScreen) handleFinishedKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return s, router.Pop
	case "r", "R":
		last := len(s.session.Questions)
		s.session.Retry()
		s.resetCountInput(last)
	case "up", "k":
		s.scroll = max(s.scroll-1, 0)
	case "down", "j":
		if s.session.Result != nil {
			s.scroll = min(s.scroll+1, max(len(s.session.Result.Questions)-1, 0))
		}
	}
	return s, nil
}

func (s *PracticeScreen) syncOptions() {
	q, ok := s.session.Question()
	if !ok {
		return
	}
	cur := s.session.Current
	s.options = components.OptionList{
		Options: q.Options,
		Chosen:  func(o string) bool { return s.session.Answers[cur] == o },
	}
	for i, o := range q.Options {
		if o == s.session.Answers[cur] {
			s.options.Cursor = i
		}
	}
}

func (s *PracticeScreen) resetCountInput(n int) {
	s.countInput = components.NewTextInput("Number of questions", "", true, 4)
	s.countInput.SetValue(strconv.Itoa(n))
}

func (s *PracticeScreen) tick() tea.Cmd {
	id := s.session.ID
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return timerTickMsg{SessionID: id}
	})
}
