package study

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/studydeck/studydeck/internal/buckets"
	"github.com/studydeck/studydeck/internal/catalog"
	"github.com/studydeck/studydeck/internal/screen"
	"github.com/studydeck/studydeck/internal/store"
	"github.com/studydeck/studydeck/internal/tracker"
)

type fakeSource struct {
	questions []catalog.Question
}

func (f *fakeSource) ListCourses(context.Context) ([]catalog.Course, error) { return nil, nil }
func (f *fakeSource) LoadQuestions(context.Context, string) []catalog.Question {
	return f.questions
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

var course = catalog.Course{ID: "42", Name: "NWC203 Networking", File: "nwc203.json"}

func sampleQuestions() []catalog.Question {
	return []catalog.Question{
		{Text: "Which protocol is reliable?", Options: []string{"A. UDP", "B. TCP", "C. IP"}, Answers: []string{"B"}},
		{Text: "Which layers are below transport?", Options: []string{"A. Network", "B. Link", "C. Session"}, Answers: []string{"A", "B"}},
		{Text: "What does DNS resolve?", Options: []string{"A. Names", "B. MACs"}, Answers: []string{"A"}},
	}
}

func loadedScreen(t *testing.T, mode tracker.Mode) (*StudyScreen, *tracker.Tracker) {
	t.Helper()
	tr := tracker.New(store.NewMemKV())
	return loadInto(t, tr, mode), tr
}

func loadInto(t *testing.T, tr *tracker.Tracker, mode tracker.Mode) *StudyScreen {
	t.Helper()
	s := New(&fakeSource{questions: sampleQuestions()}, tr, course, mode)
	var scr screen.Screen = s
	scr, _ = scr.Update(s.Init()())
	return scr.(*StudyScreen)
}

func TestStudyScreen_CorrectSingleAnswer(t *testing.T) {
	s, tr := loadedScreen(t, tracker.ModeStudy)

	s.Update(keyPress('2'))
	if s.outcome == nil || !s.outcome.Correct {
		t.Fatalf("expected a correct outcome, got %+v", s.outcome)
	}

	st, err := tr.Load(context.Background(), course.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Learned) != 1 || st.Learned[0] != "Which protocol is reliable?" {
		t.Errorf("Learned = %v", st.Learned)
	}
	if !strings.Contains(s.View(100, 30), "Correct!") {
		t.Error("expected feedback in view")
	}
}

func TestStudyScreen_WrongAnswerRecorded(t *testing.T) {
	s, tr := loadedScreen(t, tracker.ModeStudy)

	s.Update(keyPress('1'))
	if s.outcome == nil || s.outcome.Correct {
		t.Fatal("expected an incorrect outcome")
	}
	if s.outcome.CorrectText != "B. TCP" {
		t.Errorf("CorrectText = %q", s.outcome.CorrectText)
	}

	st, _ := tr.Load(context.Background(), course.ID)
	if len(st.Wrong) != 1 || st.Wrong[0].UserAnswer != "A. UDP" {
		t.Errorf("Wrong = %+v", st.Wrong)
	}

	// A second pick on a revealed card is ignored.
	s.Update(keyPress('2'))
	if s.outcome.Correct {
		t.Error("revealed card must not be re-graded")
	}
}

func TestStudyScreen_MultiAnswerNeedsEnter(t *testing.T) {
	s, _ := loadedScreen(t, tracker.ModeStudy)
	s.Update(specialKey(tea.KeyRight))

	s.Update(keyPress('1'))
	if s.outcome != nil {
		t.Fatal("multi-answer question must wait for Enter")
	}
	s.Update(keyPress('2'))
	s.Update(specialKey(tea.KeyEnter))
	if s.outcome == nil || !s.outcome.Correct {
		t.Fatalf("expected correct multi answer, got %+v", s.outcome)
	}
}

func TestStudyScreen_MultiAnswerEmptySelection(t *testing.T) {
	s, _ := loadedScreen(t, tracker.ModeStudy)
	s.Update(specialKey(tea.KeyRight))
	s.Update(specialKey(tea.KeyEnter))
	if s.outcome != nil || s.status == "" {
		t.Error("expected a status message and no grading")
	}
}

func TestStudyScreen_NavigationWraps(t *testing.T) {
	s, _ := loadedScreen(t, tracker.ModeStudy)
	s.Update(specialKey(tea.KeyLeft))
	if s.nav.Index() != 2 {
		t.Errorf("Index after prev from first = %d, want 2", s.nav.Index())
	}
	s.Update(specialKey(tea.KeyRight))
	if s.nav.Index() != 0 {
		t.Errorf("Index after next from last = %d, want 0", s.nav.Index())
	}
}

func TestStudyScreen_BucketCycleAndStar(t *testing.T) {
	s, _ := loadedScreen(t, tracker.ModeStudy)

	s.Update(keyPress('s'))
	if !s.state.IsImportant("Which protocol is reliable?") {
		t.Fatal("expected question to be starred")
	}

	// Wrong is empty, so Tab goes straight to Important.
	s.Update(specialKey(tea.KeyTab))
	if s.nav.Bucket() != buckets.Important || s.nav.Len() != 1 {
		t.Fatalf("important bucket = %s with %d questions", s.nav.Bucket(), s.nav.Len())
	}
	// Learned is empty too.
	s.Update(specialKey(tea.KeyTab))
	if s.nav.Bucket() != buckets.Unlearned {
		t.Errorf("bucket = %s, want unlearned", s.nav.Bucket())
	}
	s.Update(specialKey(tea.KeyTab))
	if s.nav.Bucket() != buckets.All {
		t.Errorf("bucket = %s, want all", s.nav.Bucket())
	}
}

func TestStudyScreen_EmptyBucketsNotSelectable(t *testing.T) {
	tr := tracker.New(store.NewMemKV())
	s := New(&fakeSource{questions: sampleQuestions()[:1]}, tr, course, tracker.ModeStudy)
	s.Update(s.Init()())

	// Only All and Unlearned hold the single question.
	s.Update(specialKey(tea.KeyTab))
	if s.nav.Bucket() != buckets.Unlearned {
		t.Fatalf("bucket = %s, want unlearned", s.nav.Bucket())
	}
	s.Update(keyPress('2'))
	s.Update(specialKey(tea.KeyTab))
	if s.nav.Bucket() != buckets.All {
		t.Fatalf("bucket = %s, want all", s.nav.Bucket())
	}
	s.Update(specialKey(tea.KeyTab))
	if s.nav.Bucket() != buckets.Learned {
		t.Fatalf("bucket after learning = %s, want learned", s.nav.Bucket())
	}
	// Unlearned emptied out, so the cycle wraps back to All.
	s.Update(specialKey(tea.KeyTab))
	if s.nav.Bucket() != buckets.All {
		t.Errorf("bucket = %s, want all", s.nav.Bucket())
	}
	if !strings.Contains(s.renderTabs(), "Unlearned 0") {
		t.Error("expected the empty tab to still be drawn")
	}
}

func TestStudyScreen_WrongReviewWithoutWrongAnswers(t *testing.T) {
	s, _ := loadedScreen(t, tracker.ModeWrongReview)
	if s.nav.Bucket() != buckets.All {
		t.Errorf("bucket = %s, want all when nothing was answered wrong", s.nav.Bucket())
	}
	if s.status == "" {
		t.Error("expected a status explaining the empty review")
	}
}

func TestStudyScreen_CorrectAnswerInWrongBucketGraduates(t *testing.T) {
	s, tr := loadedScreen(t, tracker.ModeStudy)
	ctx := context.Background()

	s.Update(keyPress('1'))
	s.Update(specialKey(tea.KeyTab))
	if s.nav.Bucket() != buckets.Wrong || s.nav.Len() != 1 {
		t.Fatalf("expected wrong bucket with one question, got %s/%d", s.nav.Bucket(), s.nav.Len())
	}

	s.Update(keyPress('2'))
	if s.outcome == nil || !s.outcome.Correct {
		t.Fatalf("expected a correct outcome, got %+v", s.outcome)
	}
	st, _ := tr.Load(ctx, course.ID)
	if len(st.Wrong) != 0 {
		t.Errorf("a correct answer in the wrong bucket should clear the record, got %+v", st.Wrong)
	}
}

func TestStudyScreen_ReviewModeOutsideWrongBucketKeepsRecord(t *testing.T) {
	tr := tracker.New(store.NewMemKV())
	ctx := context.Background()
	q := sampleQuestions()[0]
	if _, err := tr.RecordStudyAnswer(ctx, course.ID, q, []string{"A. UDP"}, tracker.ModeStudy); err != nil {
		t.Fatal(err)
	}

	s := loadInto(t, tr, tracker.ModeWrongReview)
	for s.nav.Bucket() != buckets.All {
		s.Update(specialKey(tea.KeyTab))
	}
	if cur, _ := s.nav.Current(); cur.Text != q.Text {
		t.Fatalf("current = %q, want %q", cur.Text, q.Text)
	}

	s.Update(keyPress('2'))
	st, _ := tr.Load(ctx, course.ID)
	if len(st.Wrong) != 1 {
		t.Errorf("a correct answer outside the wrong bucket must keep the record, got %+v", st.Wrong)
	}
}

func TestStudyScreen_AnsweredCardStaysUntilMove(t *testing.T) {
	s, _ := loadedScreen(t, tracker.ModeStudy)
	// Switch to unlearned and answer the first card correctly.
	for s.nav.Bucket() != buckets.Unlearned {
		s.Update(specialKey(tea.KeyTab))
	}
	s.Update(keyPress('2'))
	if q, _ := s.nav.Current(); q.Text != "Which protocol is reliable?" {
		t.Fatalf("answered card should stay visible, got %q", q.Text)
	}

	s.Update(specialKey(tea.KeyRight))
	q, _ := s.nav.Current()
	if q.Text != "Which layers are below transport?" {
		t.Errorf("after moving, current = %q; want the next unlearned question", q.Text)
	}
	if s.nav.Len() != 2 {
		t.Errorf("unlearned bucket has %d questions, want 2", s.nav.Len())
	}
}

func TestStudyScreen_WrongReviewClearsRecord(t *testing.T) {
	tr := tracker.New(store.NewMemKV())
	ctx := context.Background()
	q := sampleQuestions()[0]
	if _, err := tr.RecordStudyAnswer(ctx, course.ID, q, []string{"A. UDP"}, tracker.ModeStudy); err != nil {
		t.Fatal(err)
	}

	s := loadInto(t, tr, tracker.ModeWrongReview)
	if s.nav.Bucket() != buckets.Wrong || s.nav.Len() != 1 {
		t.Fatalf("expected wrong bucket with one question, got %s/%d", s.nav.Bucket(), s.nav.Len())
	}

	s.Update(keyPress('2'))
	st, _ := tr.Load(ctx, course.ID)
	if len(st.Wrong) != 0 {
		t.Errorf("wrong review should clear the record, got %+v", st.Wrong)
	}
}

func TestStudyScreen_JumpAndSearch(t *testing.T) {
	s, _ := loadedScreen(t, tracker.ModeStudy)

	s.Update(keyPress('g'))
	if !s.CapturingInput() {
		t.Fatal("expected jump prompt")
	}
	s.Update(keyPress('3'))
	s.Update(specialKey(tea.KeyEnter))
	if s.nav.Index() != 2 {
		t.Errorf("Index after jump = %d, want 2", s.nav.Index())
	}

	s.Update(keyPress('g'))
	s.Update(keyPress('9'))
	s.Update(specialKey(tea.KeyEnter))
	if s.nav.Index() != 2 || !strings.Contains(s.status, "between 1 and 3") {
		t.Errorf("out of range jump: index %d, status %q", s.nav.Index(), s.status)
	}

	s.Update(keyPress('/'))
	for _, r := range "reliable" {
		s.Update(keyPress(r))
	}
	s.Update(specialKey(tea.KeyEnter))
	if s.nav.Index() != 0 {
		t.Errorf("Index after search = %d, want 0", s.nav.Index())
	}
}

func TestStudyScreen_Highlights(t *testing.T) {
	s, tr := loadedScreen(t, tracker.ModeStudy)

	s.Update(keyPress('m'))
	for _, r := range "tcp" {
		s.Update(keyPress(r))
	}
	s.Update(specialKey(tea.KeyEnter))

	st, _ := tr.Load(context.Background(), course.ID)
	if kws := st.KeywordsFor("Which protocol is reliable?"); len(kws) != 1 || kws[0] != "tcp" {
		t.Fatalf("keywords = %v", kws)
	}
	if !strings.Contains(s.View(100, 30), "Marks: tcp") {
		t.Error("expected marks line in view")
	}

	s.Update(keyPress('M'))
	for _, r := range "tcp" {
		s.Update(keyPress(r))
	}
	s.Update(specialKey(tea.KeyEnter))
	if len(s.options.Keywords) != 0 {
		t.Errorf("keywords after removal = %v", s.options.Keywords)
	}
}

func TestStudyScreen_EmptyCatalog(t *testing.T) {
	tr := tracker.New(store.NewMemKV())
	s := New(&fakeSource{}, tr, course, tracker.ModeStudy)
	s.Update(s.Init()())

	if !strings.Contains(s.View(100, 30), "No questions are available") {
		t.Error("expected empty catalog notice")
	}
	s.Update(keyPress('1'))
	s.Update(specialKey(tea.KeyRight))
}

func TestStudyScreen_EscPops(t *testing.T) {
	s, _ := loadedScreen(t, tracker.ModeStudy)
	_, cmd := s.Update(specialKey(tea.KeyEscape))
	if cmd == nil {
		t.Error("expected pop command on esc")
	}
}
