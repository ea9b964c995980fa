// Package catalog loads courses and their question banks from the remote
// course service.
package catalog

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// ErrInvalidShape is returned when a question bank is neither a
// {"questions": [...]} object nor a bare array.
var ErrInvalidShape = errors.New("unrecognized question bank shape")

// Question is one multiple-choice question. Its text doubles as its
// identity: two questions with equal Text are the same question.
type Question struct {
	Text       string   `json:"question"`
	Options    []string `json:"options"`
	Answers    []string `json:"answers"`
	NumOptions int      `json:"numOptions"`
}

// IsMulti reports whether the question has more than one correct letter.
func (q Question) IsMulti() bool {
	return len(q.Answers) > 1
}

// Option returns the option text for an answer letter ("A", "B", ...), or
// "" when the letter is out of range.
func (q Question) Option(letter string) string {
	if letter == "" {
		return ""
	}
	i := int(letter[0]) - 'A'
	if i < 0 || i >= len(q.Options) {
		return ""
	}
	return q.Options[i]
}

// Shape identifies which of the accepted layouts a question bank uses.
type Shape int

const (
	ShapeInvalid Shape = iota
	ShapeWrapped       // {"questions": [...]}
	ShapeBare          // [...]
)

func (s Shape) String() string {
	switch s {
	case ShapeWrapped:
		return "wrapped"
	case ShapeBare:
		return "bare"
	default:
		return "invalid"
	}
}

// DetectShape inspects a question bank body without decoding it.
func DetectShape(body []byte) (Shape, gjson.Result) {
	if !gjson.ValidBytes(body) {
		return ShapeInvalid, gjson.Result{}
	}
	root := gjson.ParseBytes(body)
	if root.IsObject() {
		if qs := root.Get("questions"); qs.IsArray() {
			return ShapeWrapped, qs
		}
		return ShapeInvalid, gjson.Result{}
	}
	if root.IsArray() {
		return ShapeBare, root
	}
	return ShapeInvalid, gjson.Result{}
}

// DecodeQuestions decodes either accepted question bank layout into a flat
// list. Any other layout yields ErrInvalidShape. Entries that fail
// ValidateEntry are left out.
func DecodeQuestions(body []byte) ([]Question, error) {
	qs, _, err := decodeBank(body)
	return qs, err
}

func decodeBank(body []byte) (questions []Question, skipped int, err error) {
	shape, arr := DetectShape(body)
	if shape == ShapeInvalid {
		return nil, 0, ErrInvalidShape
	}

	questions = []Question{}
	for _, entry := range arr.Array() {
		if ValidateEntry(entry.Raw) != nil {
			skipped++
			continue
		}
		var q Question
		if err := json.Unmarshal([]byte(entry.Raw), &q); err != nil {
			return nil, 0, errors.Wrapf(err, "decode %s question bank", shape)
		}
		normalize(&q)
		questions = append(questions, q)
	}
	return questions, skipped, nil
}

func normalize(q *Question) {
	if q.NumOptions <= 0 {
		q.NumOptions = len(q.Options)
	}
	for i, a := range q.Answers {
		q.Answers[i] = strings.ToUpper(strings.TrimSpace(a))
	}
}
