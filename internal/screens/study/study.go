// Package study is the flashcard-style study screen: browse a course's
// questions by bucket, answer them, star them and mark keywords.
package study

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"

	"github.com/studydeck/studydeck/internal/buckets"
	"github.com/studydeck/studydeck/internal/catalog"
	"github.com/studydeck/studydeck/internal/grading"
	"github.com/studydeck/studydeck/internal/router"
	"github.com/studydeck/studydeck/internal/screen"
	"github.com/studydeck/studydeck/internal/tracker"
	"github.com/studydeck/studydeck/internal/ui/components"
	"github.com/studydeck/studydeck/internal/ui/layout"
)

type loadedMsg struct {
	Questions []catalog.Question
	State     *tracker.CourseState
	Err       error
}

// prompt identifies what the bottom text field is collecting.
type prompt int

const (
	promptNone prompt = iota
	promptJump
	promptSearch
	promptFilter
	promptMark
	promptUnmark
)

var promptLabels = map[prompt]string{
	promptJump:   "Go to question #",
	promptSearch: "Find",
	promptFilter: "Filter",
	promptMark:   "Highlight keyword",
	promptUnmark: "Remove keyword",
}

// StudyScreen implements screen.Screen for study and wrong-answer review.
type StudyScreen struct {
	source  catalog.Source
	tracker *tracker.Tracker
	course  catalog.Course
	// mode only picks the title and the starting bucket. Answers are
	// recorded as wrong-review whenever the wrong bucket is active.
	mode tracker.Mode

	nav   *buckets.Navigator
	state *tracker.CourseState
	// stale is set when state changed after an answer; the navigator picks
	// up the new sets on the next move so the answered card stays visible.
	stale bool

	options   components.OptionList
	selection grading.Selection
	outcome   *tracker.Outcome
	showMarks bool

	input  components.TextInput
	prompt prompt

	status string
	loaded bool
	errMsg string
}

var _ screen.Screen = (*StudyScreen)(nil)
var _ screen.KeyHintProvider = (*StudyScreen)(nil)
var _ screen.StatusProvider = (*StudyScreen)(nil)
var _ screen.InputCapturer = (*StudyScreen)(nil)

// New creates a study screen for course. ModeWrongReview opens on the
// wrong bucket.
func New(source catalog.Source, tr *tracker.Tracker, course catalog.Course, mode tracker.Mode) *StudyScreen {
	return &StudyScreen{
		source:    source,
		tracker:   tr,
		course:    course,
		mode:      mode,
		showMarks: true,
	}
}

func (s *StudyScreen) Init() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		questions := s.source.LoadQuestions(ctx, s.course.File)
		state, err := s.tracker.Load(ctx, s.course.ID)
		return loadedMsg{Questions: questions, State: state, Err: err}
	}
}

func (s *StudyScreen) Title() string {
	if s.mode == tracker.ModeWrongReview {
		return "Review Wrong Answers"
	}
	return "Study"
}

func (s *StudyScreen) Status() string { return s.course.Name }

func (s *StudyScreen) CapturingInput() bool { return s.prompt != promptNone }

func (s *StudyScreen) KeyHints() []layout.KeyHint {
	if s.prompt != promptNone {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Apply"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "←→", Description: "Prev/Next"},
		{Key: "1-9", Description: "Answer"},
		{Key: "Tab", Description: "Bucket"},
		{Key: "s", Description: "Star"},
		{Key: "m/M", Description: "Mark"},
		{Key: "g", Description: "Go to"},
		{Key: "/", Description: "Find"},
		{Key: "f", Description: "Filter"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *StudyScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		return s.handleLoaded(msg)
	case tea.KeyPressMsg:
		if s.prompt != promptNone {
			return s.handlePromptKey(msg)
		}
		return s.handleKey(msg)
	}
	if s.prompt != promptNone {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *StudyScreen) handleLoaded(msg loadedMsg) (screen.Screen, tea.Cmd) {
	s.loaded = true
	if msg.Err != nil {
		s.errMsg = msg.Err.Error()
		return s, nil
	}
	s.state = msg.State
	s.nav = buckets.NewNavigator(msg.Questions, s.state.Sets(), buckets.All)
	if s.mode == tracker.ModeWrongReview {
		if selectable(buckets.Wrong, s.nav.Counts()) {
			s.nav.SetBucket(buckets.Wrong)
		} else {
			s.status = "No wrong answers to review"
		}
	}
	s.resetCard()
	return s, nil
}

func (s *StudyScreen) handleKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	if key == "esc" {
		return s, router.Pop
	}
	if s.nav == nil {
		return s, nil
	}
	s.status = ""

	switch key {
	case "right", "l", "n":
		s.move(1)
	case "left", "h", "p":
		s.move(-1)
	case "tab":
		s.cycleBucket(1)
	case "shift+tab":
		s.cycleBucket(-1)
	case "up", "down":
		s.options = s.options.Update(msg)
	case "space":
		if opt, ok := s.options.Current(); ok {
			s.pick(opt)
		}
	case "enter":
		s.submit()
	case "s", "*":
		s.toggleStar()
	case "v":
		s.showMarks = !s.showMarks
		s.options.ShowMarks = s.showMarks
	case "m":
		return s, s.openPrompt(promptMark)
	case "M":
		return s, s.openPrompt(promptUnmark)
	case "g":
		return s, s.openPrompt(promptJump)
	case "/":
		return s, s.openPrompt(promptSearch)
	case "f":
		return s, s.openPrompt(promptFilter)
	default:
		q, ok := s.nav.Current()
		if !ok {
			break
		}
		if i, ok := components.PickKey(key, len(q.Options)); ok {
			s.options.Cursor = i
			s.pick(q.Options[i])
		}
	}
	return s, nil
}

// pick records an option choice. Single-answer questions are graded at
// once; multi-answer questions toggle the option until Enter.
func (s *StudyScreen) pick(option string) {
	q, ok := s.nav.Current()
	if !ok || s.outcome != nil {
		return
	}
	if q.IsMulti() {
		s.selection.Toggle(option)
		return
	}
	s.selection.Reset()
	s.selection.Toggle(option)
	s.grade(q)
}

func (s *StudyScreen) submit() {
	q, ok := s.nav.Current()
	if !ok || s.outcome != nil {
		return
	}
	if !q.IsMulti() {
		if opt, ok := s.options.Current(); ok {
			s.pick(opt)
		}
		return
	}
	if s.selection.Len() == 0 {
		s.status = "Select at least one option"
		return
	}
	s.grade(q)
}

func (s *StudyScreen) grade(q catalog.Question) {
	ctx := context.Background()
	mode := tracker.ModeStudy
	if s.nav.Bucket() == buckets.Wrong {
		mode = tracker.ModeWrongReview
	}
	out, err := s.tracker.RecordStudyAnswer(ctx, s.course.ID, q, s.selection.Options(), mode)
	s.outcome = &out
	s.options.Revealed = true
	if err != nil {
		s.status = "Could not save progress: " + err.Error()
		return
	}
	s.reloadState(ctx)
}

func (s *StudyScreen) reloadState(ctx context.Context) {
	state, err := s.tracker.Load(ctx, s.course.ID)
	if err != nil {
		s.status = "Could not reload progress: " + err.Error()
		return
	}
	s.state = state
	s.stale = true
}

// syncSets applies pending set changes and reports whether the current
// question dropped out of the active bucket.
func (s *StudyScreen) syncSets() bool {
	if !s.stale {
		return false
	}
	s.stale = false
	before, hadBefore := s.nav.Current()
	s.nav.UpdateSets(s.state.Sets())
	after, hasAfter := s.nav.Current()
	return hadBefore && (!hasAfter || after.Text != before.Text)
}

func (s *StudyScreen) move(delta int) {
	dropped := s.syncSets()
	if !(dropped && delta > 0) {
		if delta > 0 {
			s.nav.Next()
		} else {
			s.nav.Prev()
		}
	}
	s.resetCard()
}

// cycleBucket moves to the next selectable bucket in delta's direction and
// stays put when there is none.
func (s *StudyScreen) cycleBucket(delta int) {
	s.syncSets()
	cur := 0
	for i, b := range buckets.Ordered {
		if b == s.nav.Bucket() {
			cur = i
		}
	}
	counts := s.nav.Counts()
	n := len(buckets.Ordered)
	for step := 1; step < n; step++ {
		b := buckets.Ordered[((cur+delta*step)%n+n)%n]
		if selectable(b, counts) {
			s.nav.SetBucket(b)
			s.resetCard()
			return
		}
	}
}

// selectable reports whether bucket b can be chosen. All always can; the
// others need at least one question.
func selectable(b buckets.Bucket, counts map[buckets.Bucket]int) bool {
	return b == buckets.All || counts[b] > 0
}

func (s *StudyScreen) toggleStar() {
	q, ok := s.nav.Current()
	if !ok {
		return
	}
	ctx := context.Background()
	starred, err := s.tracker.ToggleImportant(ctx, s.course.ID, q.Text)
	if err != nil {
		s.status = "Could not save star: " + err.Error()
		return
	}
	if starred {
		s.status = "Starred"
	} else {
		s.status = "Unstarred"
	}
	s.reloadState(ctx)
}

// resetCard clears per-card answer state after the current question changed.
func (s *StudyScreen) resetCard() {
	s.selection.Reset()
	s.outcome = nil
	s.options = components.OptionList{
		Chosen:    s.selection.Has,
		Correct:   s.isCorrect,
		ShowMarks: s.showMarks,
	}
	if q, ok := s.nav.Current(); ok {
		s.options.Options = q.Options
		s.options.Keywords = s.state.KeywordsFor(q.Text)
	}
}

func (s *StudyScreen) isCorrect(option string) bool {
	q, ok := s.nav.Current()
	if !ok {
		return false
	}
	return grading.GradeSingle(q, option)
}

func (s *StudyScreen) openPrompt(p prompt) tea.Cmd {
	if p != promptFilter && p != promptJump {
		if _, ok := s.nav.Current(); !ok {
			return nil
		}
	}
	s.prompt = p
	s.input = components.NewTextInput(promptLabels[p], "", p == promptJump, 120)
	if p == promptFilter {
		s.input.SetValue(s.nav.Filter())
	}
	return s.input.Model.Focus()
}

func (s *StudyScreen) handlePromptKey(msg tea.KeyPressMsg) (screen.Screen, tea.Cmd) {
	switch msg.String() {
	case "esc":
		s.prompt = promptNone
		return s, nil
	case "enter":
		p := s.prompt
		s.prompt = promptNone
		s.applyPrompt(p, s.input.Value())
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *StudyScreen) applyPrompt(p prompt, value string) {
	ctx := context.Background()
	switch p {
	case promptJump:
		n, err := s.input.NumericValue()
		if err != nil {
			s.status = fmt.Sprintf("Enter a number between 1 and %d", s.nav.Len())
			return
		}
		s.syncSets()
		if err := s.nav.Jump(n); err != nil {
			s.status = fmt.Sprintf("Enter a number between 1 and %d", s.nav.Len())
			return
		}
		s.resetCard()
	case promptSearch:
		s.syncSets()
		if !s.nav.Search(value) {
			s.status = fmt.Sprintf("No question contains %q", value)
			return
		}
		s.resetCard()
	case promptFilter:
		s.syncSets()
		s.nav.SetFilter(value)
		s.resetCard()
	case promptMark, promptUnmark:
		q, ok := s.nav.Current()
		if !ok {
			return
		}
		var kws []string
		var err error
		if p == promptMark {
			kws, err = s.tracker.AddHighlight(ctx, s.course.ID, q.Text, value)
		} else {
			kws, err = s.tracker.RemoveHighlight(ctx, s.course.ID, q.Text, value)
		}
		if err != nil {
			s.status = "Could not save highlight: " + err.Error()
			return
		}
		if s.state.Highlights == nil {
			s.state.Highlights = tracker.Highlights{}
		}
		s.state.Highlights[q.Text] = kws
		s.options.Keywords = kws
	}
}
