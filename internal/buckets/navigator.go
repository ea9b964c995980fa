package buckets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/studydeck/studydeck/internal/catalog"
)

// ErrOutOfRange is returned by Jump for a question number outside the
// current bucket.
var ErrOutOfRange = errors.New("question number out of range")

// Navigator tracks the selected bucket, filter and current question index
// over a fixed catalog.
type Navigator struct {
	catalog []catalog.Question
	sets    Sets
	bucket  Bucket
	filter  string
	active  []catalog.Question
	index   int
}

// NewNavigator starts on bucket b at index 0.
func NewNavigator(questions []catalog.Question, s Sets, b Bucket) *Navigator {
	n := &Navigator{catalog: questions, sets: s, bucket: b}
	n.refresh()
	return n
}

func (n *Navigator) refresh() {
	n.active = Classify(n.catalog, n.sets, n.bucket, n.filter)
}

// Bucket returns the selected bucket.
func (n *Navigator) Bucket() Bucket { return n.bucket }

// Filter returns the active substring filter.
func (n *Navigator) Filter() string { return n.filter }

// Index returns the 0-based current index.
func (n *Navigator) Index() int { return n.index }

// Len returns the size of the active subset.
func (n *Navigator) Len() int { return len(n.active) }

// Questions returns the active subset.
func (n *Navigator) Questions() []catalog.Question { return n.active }

// Counts returns unfiltered bucket sizes for the current sets.
func (n *Navigator) Counts() map[Bucket]int { return Counts(n.catalog, n.sets) }

// Current returns the question at the current index.
func (n *Navigator) Current() (catalog.Question, bool) {
	if n.index < 0 || n.index >= len(n.active) {
		return catalog.Question{}, false
	}
	return n.active[n.index], true
}

// SetBucket switches buckets and resets the index to 0.
func (n *Navigator) SetBucket(b Bucket) {
	n.bucket = b
	n.index = 0
	n.refresh()
}

// SetFilter applies a substring filter and resets the index to 0.
func (n *Navigator) SetFilter(filter string) {
	n.filter = filter
	n.index = 0
	n.refresh()
}

// UpdateSets replaces the persisted sets after a write. The current index
// is kept when still valid, otherwise clamped into the new subset.
func (n *Navigator) UpdateSets(s Sets) {
	n.sets = s
	n.refresh()
	if n.index >= len(n.active) {
		n.index = max(len(n.active)-1, 0)
	}
}

// Next advances, wrapping from the last question to the first.
func (n *Navigator) Next() {
	if len(n.active) == 0 {
		return
	}
	n.index = (n.index + 1) % len(n.active)
}

// Prev steps back, wrapping from the first question to the last.
func (n *Navigator) Prev() {
	if len(n.active) == 0 {
		return
	}
	n.index = (n.index - 1 + len(n.active)) % len(n.active)
}

// Jump moves to the 1-based question number. Out-of-range numbers leave the
// index unchanged.
func (n *Navigator) Jump(number int) error {
	if number < 1 || number > len(n.active) {
		return fmt.Errorf("%w: enter a number between 1 and %d", ErrOutOfRange, len(n.active))
	}
	n.index = number - 1
	return nil
}

// Search jumps to the first question in the active subset whose text
// contains term, case-insensitively. It reports whether a match was found.
func (n *Navigator) Search(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return false
	}
	for i, q := range n.active {
		if strings.Contains(strings.ToLower(q.Text), term) {
			n.index = i
			return true
		}
	}
	return false
}
