// Package tracker persists per-course study state (wrong answers, important
// and learned questions, highlights, practice history) and derives progress
// from it.
package tracker

import (
	"strings"

	"github.com/studydeck/studydeck/internal/buckets"
)

// Key prefixes under which course state is persisted, each suffixed with the
// course id.
const (
	HistoryPrefix    = "test_history_"
	WrongPrefix      = "wrong_answers_"
	ImportantPrefix  = "important_questions_"
	LearnedPrefix    = "learned_questions_"
	HighlightsPrefix = "highlights_"
)

// MaxHistory is the number of practice results kept per course.
const MaxHistory = 10

func courseKeys(courseID string) []string {
	return []string{
		HistoryPrefix + courseID,
		WrongPrefix + courseID,
		ImportantPrefix + courseID,
		LearnedPrefix + courseID,
		HighlightsPrefix + courseID,
	}
}

// WrongAnswer is the last incorrect answer given to a question.
type WrongAnswer struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Timestamp     int64  `json:"timestamp"`
}

// QuestionResult is one graded question of a practice test.
type QuestionResult struct {
	Question      string `json:"question"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

// TestResult is a finished practice test.
type TestResult struct {
	ID             string           `json:"id,omitempty"`
	CourseID       string           `json:"courseId"`
	Score          int              `json:"score"`
	TotalQuestions int              `json:"totalQuestions"`
	CorrectAnswers int              `json:"correctAnswers"`
	WrongAnswers   int              `json:"wrongAnswers"`
	TimeSpent      int              `json:"timeSpent"`
	Timestamp      int64            `json:"timestamp"`
	Questions      []QuestionResult `json:"questions"`
}

// Highlights maps question text to the keywords emphasized in it.
type Highlights map[string][]string

// CourseState is everything persisted for one course.
type CourseState struct {
	CourseID   string
	Wrong      []WrongAnswer
	Important  []string
	Learned    []string
	Highlights Highlights
	History    []TestResult
}

// Sets returns the classifier view of the state.
func (s *CourseState) Sets() buckets.Sets {
	wrong := make([]string, len(s.Wrong))
	for i, w := range s.Wrong {
		wrong[i] = w.Question
	}
	return buckets.NewSets(wrong, s.Important, s.Learned)
}

// WrongFor returns the wrong-answer record for a question text.
func (s *CourseState) WrongFor(text string) (WrongAnswer, bool) {
	for _, w := range s.Wrong {
		if w.Question == text {
			return w, true
		}
	}
	return WrongAnswer{}, false
}

// IsImportant reports whether the question is starred.
func (s *CourseState) IsImportant(text string) bool {
	return contains(s.Important, text)
}

// KeywordsFor returns the highlight keywords of a question.
func (s *CourseState) KeywordsFor(text string) []string {
	if s.Highlights == nil {
		return nil
	}
	return s.Highlights[text]
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func without(list []string, s string) []string {
	out := list[:0:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

// CourseIDFromKey extracts the course id from a history key.
func CourseIDFromKey(key string) (string, bool) {
	if !strings.HasPrefix(key, HistoryPrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, HistoryPrefix), true
}
