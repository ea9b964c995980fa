// Package buckets partitions a course's questions into the study buckets
// (all, wrong, important, learned, unlearned) and navigates within one.
package buckets

import (
	"strings"

	"github.com/studydeck/studydeck/internal/catalog"
)

// Bucket names a working subset of a course's questions.
type Bucket string

const (
	All       Bucket = "all"
	Wrong     Bucket = "wrong"
	Important Bucket = "important"
	Learned   Bucket = "learned"
	Unlearned Bucket = "unlearned"
)

// Ordered lists every bucket in display order.
var Ordered = []Bucket{All, Wrong, Important, Learned, Unlearned}

// Parse converts a bucket name, falling back to All for unknown names.
func Parse(s string) Bucket {
	for _, b := range Ordered {
		if string(b) == strings.ToLower(strings.TrimSpace(s)) {
			return b
		}
	}
	return All
}

// Label returns a capitalized display name.
func (b Bucket) Label() string {
	s := string(b)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Sets holds the three persisted per-course question sets, keyed by
// question text.
type Sets struct {
	Wrong     map[string]struct{}
	Important map[string]struct{}
	Learned   map[string]struct{}
}

// NewSets builds Sets from lists of question texts.
func NewSets(wrong, important, learned []string) Sets {
	return Sets{
		Wrong:     toSet(wrong),
		Important: toSet(important),
		Learned:   toSet(learned),
	}
}

func toSet(texts []string) map[string]struct{} {
	m := make(map[string]struct{}, len(texts))
	for _, t := range texts {
		m[t] = struct{}{}
	}
	return m
}

// Predicate decides bucket membership for one question.
type Predicate func(q catalog.Question, s Sets) bool

func isWrong(q catalog.Question, s Sets) bool {
	_, ok := s.Wrong[q.Text]
	return ok
}

func isImportant(q catalog.Question, s Sets) bool {
	_, ok := s.Important[q.Text]
	return ok
}

func isLearned(q catalog.Question, s Sets) bool {
	_, ok := s.Learned[q.Text]
	return ok
}

// A wrong answer disqualifies a question from unlearned even when it was
// learned earlier.
func isUnlearned(q catalog.Question, s Sets) bool {
	return !isLearned(q, s) && !isWrong(q, s)
}

func everything(catalog.Question, Sets) bool { return true }

// PredicateFor returns the membership predicate for a bucket.
func PredicateFor(b Bucket) Predicate {
	switch b {
	case Wrong:
		return isWrong
	case Important:
		return isImportant
	case Learned:
		return isLearned
	case Unlearned:
		return isUnlearned
	default:
		return everything
	}
}

// Classify returns the questions of bucket b in catalog order, further
// narrowed by a case-insensitive substring filter over question text.
// The result is never nil.
func Classify(questions []catalog.Question, s Sets, b Bucket, filter string) []catalog.Question {
	pred := PredicateFor(b)
	filter = strings.ToLower(strings.TrimSpace(filter))

	out := make([]catalog.Question, 0, len(questions))
	for _, q := range questions {
		if !pred(q, s) {
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(q.Text), filter) {
			continue
		}
		out = append(out, q)
	}
	return out
}

// Counts returns the size of every bucket, ignoring any filter. A zero
// count means the bucket should be shown as disabled.
func Counts(questions []catalog.Question, s Sets) map[Bucket]int {
	counts := make(map[Bucket]int, len(Ordered))
	for _, b := range Ordered {
		counts[b] = 0
	}
	for _, q := range questions {
		for _, b := range Ordered {
			if PredicateFor(b)(q, s) {
				counts[b]++
			}
		}
	}
	return counts
}
