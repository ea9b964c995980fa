// Package grading decides whether a chosen option (or set of options) answers
// a catalog question correctly.
package grading

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/studydeck/studydeck/internal/catalog"
)

// Letter returns the leading letter of an option string such as "B. 2".
func Letter(option string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(option))
	if r == utf8.RuneError {
		return ""
	}
	return strings.ToUpper(string(r))
}

// GradeSingle reports whether the chosen option's letter is a correct letter.
func GradeSingle(q catalog.Question, chosen string) bool {
	l := Letter(chosen)
	if l == "" {
		return false
	}
	for _, a := range q.Answers {
		if a == l {
			return true
		}
	}
	return false
}

// GradeMulti reports whether the chosen options' letters equal the correct
// letters as sets. Order and duplicates are ignored.
func GradeMulti(q catalog.Question, chosen []string) bool {
	letters := make([]string, 0, len(chosen))
	for _, c := range chosen {
		if l := Letter(c); l != "" {
			letters = append(letters, l)
		}
	}
	return equalSets(letters, q.Answers)
}

// Grade dispatches to GradeSingle or GradeMulti based on the question.
func Grade(q catalog.Question, chosen []string) bool {
	if q.IsMulti() {
		return GradeMulti(q, chosen)
	}
	if len(chosen) == 0 {
		return false
	}
	return GradeSingle(q, chosen[0])
}

func equalSets(a, b []string) bool {
	sa := make(map[string]struct{}, len(a))
	for _, s := range a {
		sa[s] = struct{}{}
	}
	sb := make(map[string]struct{}, len(b))
	for _, s := range b {
		sb[s] = struct{}{}
	}
	if len(sa) != len(sb) {
		return false
	}
	for s := range sa {
		if _, ok := sb[s]; !ok {
			return false
		}
	}
	return true
}

// CorrectText returns the option text of every correct letter, joined by
// ", ". Letters without a matching option are skipped.
func CorrectText(q catalog.Question) string {
	var parts []string
	for _, a := range q.Answers {
		if opt := q.Option(a); opt != "" {
			parts = append(parts, opt)
		}
	}
	return strings.Join(parts, ", ")
}

// AnswerText joins the literal chosen option texts by ", ".
func AnswerText(chosen []string) string {
	return strings.Join(chosen, ", ")
}

// Selection accumulates the options picked for a multi-answer question.
// It keeps the order in which options were first picked.
type Selection struct {
	options []string
}

// Toggle adds option when absent and removes it when present.
func (s *Selection) Toggle(option string) {
	for i, o := range s.options {
		if o == option {
			s.options = append(s.options[:i], s.options[i+1:]...)
			return
		}
	}
	s.options = append(s.options, option)
}

// Has reports whether option is selected.
func (s *Selection) Has(option string) bool {
	for _, o := range s.options {
		if o == option {
			return true
		}
	}
	return false
}

// Options returns the selected option texts in pick order.
func (s *Selection) Options() []string {
	return append([]string(nil), s.options...)
}

// Letters returns the sorted letters of the selected options.
func (s *Selection) Letters() []string {
	out := make([]string, 0, len(s.options))
	for _, o := range s.options {
		out = append(out, Letter(o))
	}
	sort.Strings(out)
	return out
}

// Len returns the number of selected options.
func (s *Selection) Len() int {
	return len(s.options)
}

// Reset clears the selection.
func (s *Selection) Reset() {
	s.options = nil
}
