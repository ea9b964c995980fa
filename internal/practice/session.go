// Package practice runs timed multiple-choice practice tests over a random
// sample of a course's questions.
package practice

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/studydeck/studydeck/internal/catalog"
	"github.com/studydeck/studydeck/internal/grading"
	"github.com/studydeck/studydeck/internal/tracker"
)

var (
	ErrEmptyCatalog    = errors.New("no questions available")
	ErrNothingAnswered = errors.New("answer at least one question before submitting")
	ErrNotRunning      = errors.New("no practice test in progress")
	ErrNotConfiguring  = errors.New("practice test already started")
)

// Phase is the lifecycle state of a practice session.
type Phase int

const (
	PhaseConfiguring Phase = iota // Choosing the question count
	PhaseRunning                  // Answering questions
	PhaseFinished                 // Showing the result
)

func (p Phase) String() string {
	switch p {
	case PhaseConfiguring:
		return "configuring"
	case PhaseRunning:
		return "running"
	case PhaseFinished:
		return "finished"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Session is one practice test over a course catalog.
type Session struct {
	// ID identifies the current run; it changes on every Start.
	ID string

	CourseID string

	// Questions is the sampled question list, fixed for the run.
	Questions []catalog.Question

	// Answers holds one answer per question; "" means unanswered.
	Answers []string

	// Current is the 0-based index of the displayed question.
	Current int

	Phase Phase

	StartTime  time.Time
	FinishTime time.Time

	// Result is set once the session is submitted.
	Result *tracker.TestResult

	catalog []catalog.Question
	rng     *rand.Rand
}

// New creates a session in the configuring phase. A nil rng uses a
// time-seeded source.
func New(courseID string, questions []catalog.Question, rng *rand.Rand) *Session {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Session{
		CourseID: courseID,
		Phase:    PhaseConfiguring,
		catalog:  questions,
		rng:      rng,
	}
}

// CatalogSize returns the number of questions available for sampling.
func (s *Session) CatalogSize() int {
	return len(s.catalog)
}

// CanStart reports whether Start would succeed.
func (s *Session) CanStart() bool {
	return s.Phase == PhaseConfiguring && len(s.catalog) > 0
}

// Start samples min(n, catalog size) questions uniformly at random and
// begins the run. n below 1 is treated as 1.
func (s *Session) Start(n int, now time.Time) error {
	if s.Phase != PhaseConfiguring {
		return ErrNotConfiguring
	}
	if len(s.catalog) == 0 {
		return ErrEmptyCatalog
	}

	n = min(max(n, 1), len(s.catalog))
	perm := s.rng.Perm(len(s.catalog))
	s.Questions = make([]catalog.Question, n)
	for i := 0; i < n; i++ {
		s.Questions[i] = s.catalog[perm[i]]
	}
	s.Answers = make([]string, n)
	s.Current = 0
	s.ID = uuid.NewString()
	s.StartTime = now
	s.FinishTime = time.Time{}
	s.Result = nil
	s.Phase = PhaseRunning
	return nil
}

// Question returns the question at the current index.
func (s *Session) Question() (catalog.Question, bool) {
	if s.Current < 0 || s.Current >= len(s.Questions) {
		return catalog.Question{}, false
	}
	return s.Questions[s.Current], true
}

// Answer records option as the current question's answer, replacing any
// earlier choice.
func (s *Session) Answer(option string) error {
	if s.Phase != PhaseRunning {
		return ErrNotRunning
	}
	s.Answers[s.Current] = option
	return nil
}

// Move shifts the current index by delta, clamped to the question list.
func (s *Session) Move(delta int) {
	if len(s.Questions) == 0 {
		return
	}
	s.Current = min(max(s.Current+delta, 0), len(s.Questions)-1)
}

// Next moves to the following question, stopping at the last one.
func (s *Session) Next() { s.Move(1) }

// Prev moves to the preceding question, stopping at the first one.
func (s *Session) Prev() { s.Move(-1) }

// GoTo jumps to a 0-based question index.
func (s *Session) GoTo(i int) error {
	if i < 0 || i >= len(s.Questions) {
		return fmt.Errorf("question %d out of range 1..%d", i+1, len(s.Questions))
	}
	s.Current = i
	return nil
}

// AnsweredCount returns the number of questions with a recorded answer.
func (s *Session) AnsweredCount() int {
	n := 0
	for _, a := range s.Answers {
		if a != "" {
			n++
		}
	}
	return n
}

// CanSubmit reports whether the run may be finished.
func (s *Session) CanSubmit() bool {
	return s.Phase == PhaseRunning && s.AnsweredCount() > 0
}

// Submit grades every question with the single-answer rule, freezes the
// timer and returns the result. Unanswered questions count as wrong.
func (s *Session) Submit(now time.Time) (tracker.TestResult, error) {
	if s.Phase != PhaseRunning {
		return tracker.TestResult{}, ErrNotRunning
	}
	if s.AnsweredCount() == 0 {
		return tracker.TestResult{}, ErrNothingAnswered
	}

	correct := 0
	results := make([]tracker.QuestionResult, len(s.Questions))
	for i, q := range s.Questions {
		ok := grading.GradeSingle(q, s.Answers[i])
		if ok {
			correct++
		}
		results[i] = tracker.QuestionResult{
			Question:      q.Text,
			UserAnswer:    s.Answers[i],
			CorrectAnswer: grading.CorrectText(q),
			IsCorrect:     ok,
		}
	}

	s.FinishTime = now
	total := len(s.Questions)
	r := tracker.TestResult{
		ID:             s.ID,
		CourseID:       s.CourseID,
		Score:          Score(correct, total),
		TotalQuestions: total,
		CorrectAnswers: correct,
		WrongAnswers:   total - correct,
		TimeSpent:      int(s.Elapsed(now) / time.Second),
		Timestamp:      now.UnixMilli(),
		Questions:      results,
	}
	s.Result = &r
	s.Phase = PhaseFinished
	return r, nil
}

// Retry discards the run and returns to configuration. Persisted history is
// not touched.
func (s *Session) Retry() {
	s.Phase = PhaseConfiguring
	s.ID = ""
	s.Questions = nil
	s.Answers = nil
	s.Current = 0
	s.StartTime = time.Time{}
	s.FinishTime = time.Time{}
	s.Result = nil
}

// Elapsed returns the running time, frozen once the session is finished.
func (s *Session) Elapsed(now time.Time) time.Duration {
	switch s.Phase {
	case PhaseRunning:
		return now.Sub(s.StartTime)
	case PhaseFinished:
		return s.FinishTime.Sub(s.StartTime)
	default:
		return 0
	}
}

// Score is round(100 * correct / total), or 0 for an empty test.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(correct) / float64(total)))
}
