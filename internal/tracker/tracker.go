package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/studydeck/studydeck/internal/catalog"
	"github.com/studydeck/studydeck/internal/grading"
	"github.com/studydeck/studydeck/internal/store"
)

// Mode is the study context an answer was given in.
type Mode int

const (
	// ModeStudy is ordinary study over any bucket other than wrong.
	ModeStudy Mode = iota
	// ModeWrongReview is study within the wrong bucket; a correct answer
	// graduates the question out of it.
	ModeWrongReview
)

// Outcome is the result of grading a study answer.
type Outcome struct {
	Correct     bool
	UserAnswer  string
	CorrectText string
}

// Tracker reads and writes course state through a KV store. Every mutation
// is a single read-modify-write of one key.
type Tracker struct {
	kv     store.KV
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLogger sets the logger used for unreadable stored values.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// New creates a Tracker over kv.
func New(kv store.KV, opts ...Option) *Tracker {
	t := &Tracker{kv: kv, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// load reads a JSON value, treating unreadable data as absent.
func load[T any](ctx context.Context, t *Tracker, key string) (T, error) {
	v, _, err := store.GetJSON[T](ctx, t.kv, key)
	if err != nil {
		var zero T
		if ctx.Err() != nil {
			return zero, err
		}
		t.logger.Warn("ignoring unreadable stored value", "key", key, "error", err)
		return zero, nil
	}
	return v, nil
}

// Load reads the full state of a course. Missing keys yield empty values.
func (t *Tracker) Load(ctx context.Context, courseID string) (*CourseState, error) {
	st := &CourseState{CourseID: courseID}
	var err error
	if st.History, err = load[[]TestResult](ctx, t, HistoryPrefix+courseID); err != nil {
		return nil, err
	}
	if st.Wrong, err = load[[]WrongAnswer](ctx, t, WrongPrefix+courseID); err != nil {
		return nil, err
	}
	if st.Important, err = load[[]string](ctx, t, ImportantPrefix+courseID); err != nil {
		return nil, err
	}
	if st.Learned, err = load[[]string](ctx, t, LearnedPrefix+courseID); err != nil {
		return nil, err
	}
	if st.Highlights, err = load[Highlights](ctx, t, HighlightsPrefix+courseID); err != nil {
		return nil, err
	}
	return st, nil
}

// RecordStudyAnswer grades chosen against q and applies the study-mode side
// effects: a correct answer marks the question learned (and in wrong review
// also clears its wrong record); an incorrect one replaces its wrong record.
func (t *Tracker) RecordStudyAnswer(ctx context.Context, courseID string, q catalog.Question, chosen []string, mode Mode) (Outcome, error) {
	out := Outcome{
		Correct:     grading.Grade(q, chosen),
		UserAnswer:  grading.AnswerText(chosen),
		CorrectText: grading.CorrectText(q),
	}

	if out.Correct {
		err := store.UpdateJSON(ctx, t.kv, LearnedPrefix+courseID, func(learned *[]string) error {
			if !contains(*learned, q.Text) {
				*learned = append(*learned, q.Text)
			}
			return nil
		})
		if err != nil {
			return out, fmt.Errorf("mark learned: %w", err)
		}
		if mode == ModeWrongReview {
			if err := t.removeWrong(ctx, courseID, q.Text); err != nil {
				return out, err
			}
		}
		return out, nil
	}

	rec := WrongAnswer{
		Question:      q.Text,
		UserAnswer:    out.UserAnswer,
		CorrectAnswer: out.CorrectText,
		Timestamp:     t.now().UnixMilli(),
	}
	err := store.UpdateJSON(ctx, t.kv, WrongPrefix+courseID, func(wrong *[]WrongAnswer) error {
		kept := (*wrong)[:0:0]
		for _, w := range *wrong {
			if w.Question != q.Text {
				kept = append(kept, w)
			}
		}
		*wrong = append(kept, rec)
		return nil
	})
	if err != nil {
		return out, fmt.Errorf("save wrong answer: %w", err)
	}
	return out, nil
}

func (t *Tracker) removeWrong(ctx context.Context, courseID, text string) error {
	err := store.UpdateJSON(ctx, t.kv, WrongPrefix+courseID, func(wrong *[]WrongAnswer) error {
		kept := (*wrong)[:0:0]
		for _, w := range *wrong {
			if w.Question != text {
				kept = append(kept, w)
			}
		}
		*wrong = kept
		return nil
	})
	if err != nil {
		return fmt.Errorf("remove wrong answer: %w", err)
	}
	return nil
}

// ToggleImportant stars or unstars a question and reports the new state.
func (t *Tracker) ToggleImportant(ctx context.Context, courseID, text string) (bool, error) {
	var starred bool
	err := store.UpdateJSON(ctx, t.kv, ImportantPrefix+courseID, func(important *[]string) error {
		if contains(*important, text) {
			*important = without(*important, text)
			starred = false
		} else {
			*important = append(*important, text)
			starred = true
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("toggle important: %w", err)
	}
	return starred, nil
}

// AddHighlight appends a keyword to a question's highlights. The keyword is
// trimmed; empty and duplicate keywords are ignored. It returns the
// question's keywords after the change.
func (t *Tracker) AddHighlight(ctx context.Context, courseID, text, keyword string) ([]string, error) {
	keyword = strings.TrimSpace(keyword)
	var result []string
	err := store.UpdateJSON(ctx, t.kv, HighlightsPrefix+courseID, func(h *Highlights) error {
		if *h == nil {
			*h = Highlights{}
		}
		kws := (*h)[text]
		if keyword != "" && !contains(kws, keyword) {
			kws = append(kws, keyword)
			(*h)[text] = kws
		}
		result = kws
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("add highlight: %w", err)
	}
	return result, nil
}

// RemoveHighlight deletes one keyword from a question's highlights.
func (t *Tracker) RemoveHighlight(ctx context.Context, courseID, text, keyword string) ([]string, error) {
	var result []string
	err := store.UpdateJSON(ctx, t.kv, HighlightsPrefix+courseID, func(h *Highlights) error {
		if *h == nil {
			return nil
		}
		kws := without((*h)[text], keyword)
		if len(kws) == 0 {
			delete(*h, text)
		} else {
			(*h)[text] = kws
		}
		result = kws
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("remove highlight: %w", err)
	}
	return result, nil
}

// ClearWrongAnswers drops every wrong-answer record of a course.
func (t *Tracker) ClearWrongAnswers(ctx context.Context, courseID string) error {
	if err := t.kv.Delete(ctx, WrongPrefix+courseID); err != nil {
		return fmt.Errorf("clear wrong answers: %w", err)
	}
	return nil
}

// ClearCourse deletes all persisted state of a course.
func (t *Tracker) ClearCourse(ctx context.Context, courseID string) error {
	for _, key := range courseKeys(courseID) {
		if err := t.kv.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear course %s: %w", courseID, err)
		}
	}
	return nil
}

// AppendResult prepends a practice result to the course history, keeping the
// MaxHistory most recent entries. It returns the updated history.
func (t *Tracker) AppendResult(ctx context.Context, courseID string, r TestResult) ([]TestResult, error) {
	var updated []TestResult
	err := store.UpdateJSON(ctx, t.kv, HistoryPrefix+courseID, func(history *[]TestResult) error {
		h := append([]TestResult{r}, *history...)
		if len(h) > MaxHistory {
			h = h[:MaxHistory]
		}
		*history = h
		updated = h
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("append result: %w", err)
	}
	return updated, nil
}

// History returns the course's practice results, newest first.
func (t *Tracker) History(ctx context.Context, courseID string) ([]TestResult, error) {
	return load[[]TestResult](ctx, t, HistoryPrefix+courseID)
}
