package grading

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/studydeck/studydeck/internal/catalog"
)

var (
	single = catalog.Question{Text: "1+1?", Options: []string{"A. 1", "B. 2"}, Answers: []string{"B"}, NumOptions: 2}
	multi  = catalog.Question{
		Text:       "primes?",
		Options:    []string{"A. 2", "B. 3", "C. 4", "D. 6"},
		Answers:    []string{"A", "B"},
		NumOptions: 4,
	}
)

func TestLetter(t *testing.T) {
	assert.Equal(t, "B", Letter("B. 2"))
	assert.Equal(t, "C", Letter("  c. lower"))
	assert.Equal(t, "", Letter(""))
	assert.Equal(t, "É", Letter("é. accented"))
	assert.True(t, utf8.ValidString(Letter("Ω. omega")))
}

func TestGradeSingle(t *testing.T) {
	tests := []struct {
		chosen string
		want   bool
	}{
		{"B. 2", true},
		{"A. 1", false},
		{"", false},
		{"Z. nope", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, GradeSingle(single, tt.chosen), tt.chosen)
	}
}

func TestGradeMulti(t *testing.T) {
	tests := []struct {
		name   string
		chosen []string
		want   bool
	}{
		{"exact", []string{"A. 2", "B. 3"}, true},
		{"reversed order", []string{"B. 3", "A. 2"}, true},
		{"subset", []string{"A. 2"}, false},
		{"superset", []string{"A. 2", "B. 3", "C. 4"}, false},
		{"disjoint", []string{"C. 4", "D. 6"}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GradeMulti(multi, tt.chosen))
		})
	}
}

func TestGrade(t *testing.T) {
	assert.True(t, Grade(single, []string{"B. 2"}))
	assert.False(t, Grade(single, nil))
	assert.True(t, Grade(multi, []string{"B. 3", "A. 2"}))
}

func TestCorrectText(t *testing.T) {
	assert.Equal(t, "B. 2", CorrectText(single))
	assert.Equal(t, "A. 2, B. 3", CorrectText(multi))
	assert.Equal(t, "", CorrectText(catalog.Question{Answers: []string{"C"}}))
}

func TestSelectionToggle(t *testing.T) {
	var s Selection
	s.Toggle("B. 3")
	s.Toggle("A. 2")
	assert.Equal(t, []string{"B. 3", "A. 2"}, s.Options())
	assert.Equal(t, []string{"A", "B"}, s.Letters())
	assert.True(t, GradeMulti(multi, s.Options()))

	s.Toggle("B. 3")
	assert.False(t, s.Has("B. 3"))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, "A. 2", AnswerText(s.Options()))

	s.Reset()
	assert.Zero(t, s.Len())
}
