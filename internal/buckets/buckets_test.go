package buckets

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studydeck/studydeck/internal/catalog"
)

func makeCatalog(texts ...string) []catalog.Question {
	qs := make([]catalog.Question, len(texts))
	for i, t := range texts {
		qs[i] = catalog.Question{Text: t, Options: []string{"A. x", "B. y"}, Answers: []string{"A"}, NumOptions: 2}
	}
	return qs
}

func texts(qs []catalog.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.Text
	}
	return out
}

func TestClassify(t *testing.T) {
	qs := makeCatalog("q1", "q2", "q3", "q4", "q5")
	s := NewSets(
		[]string{"q4", "q2"},       // wrong
		[]string{"q5", "q1"},       // important
		[]string{"q1", "q2", "q3"}, // learned
	)

	tests := []struct {
		bucket Bucket
		want   []string
	}{
		{All, []string{"q1", "q2", "q3", "q4", "q5"}},
		{Wrong, []string{"q2", "q4"}}, // catalog order, not insertion order
		{Important, []string{"q1", "q5"}},
		{Learned, []string{"q1", "q2", "q3"}},
		{Unlearned, []string{"q5"}}, // q2 is learned and wrong: excluded
	}
	for _, tt := range tests {
		t.Run(string(tt.bucket), func(t *testing.T) {
			assert.Equal(t, tt.want, texts(Classify(qs, s, tt.bucket, "")))
		})
	}
}

func TestClassifyFilter(t *testing.T) {
	qs := makeCatalog("What is TCP?", "What is UDP?", "Define latency")
	s := NewSets(nil, nil, nil)

	assert.Equal(t, []string{"What is TCP?", "What is UDP?"}, texts(Classify(qs, s, All, "what IS")))
	assert.Equal(t, []string{"Define latency"}, texts(Classify(qs, s, Unlearned, "LATENCY")))

	empty := Classify(qs, s, Wrong, "")
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestUnlearnedWrongPartition(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 200; trial++ {
		var all, wrong, important, learned []string
		for i := 0; i < 12; i++ {
			text := fmt.Sprintf("q%d", i)
			all = append(all, text)
			if rng.Intn(3) == 0 {
				wrong = append(wrong, text)
			}
			if rng.Intn(3) == 0 {
				important = append(important, text)
			}
			if rng.Intn(2) == 0 {
				learned = append(learned, text)
			}
		}
		qs := makeCatalog(all...)
		s := NewSets(wrong, important, learned)

		inWrong := map[string]bool{}
		for _, q := range Classify(qs, s, Wrong, "") {
			inWrong[q.Text] = true
		}
		for _, q := range Classify(qs, s, Unlearned, "") {
			require.False(t, inWrong[q.Text], "%s in both wrong and unlearned", q.Text)
		}

		c := Counts(qs, s)
		require.Equal(t, len(qs), c[All])
		require.LessOrEqual(t, c[Wrong]+c[Unlearned], c[All])
	}
}

func TestCounts(t *testing.T) {
	qs := makeCatalog("a", "b", "c")
	c := Counts(qs, NewSets([]string{"a"}, nil, []string{"b"}))
	assert.Equal(t, 3, c[All])
	assert.Equal(t, 1, c[Wrong])
	assert.Equal(t, 0, c[Important])
	assert.Equal(t, 1, c[Learned])
	assert.Equal(t, 1, c[Unlearned])
}

func TestParse(t *testing.T) {
	assert.Equal(t, Wrong, Parse("wrong"))
	assert.Equal(t, Important, Parse(" Important "))
	assert.Equal(t, All, Parse("bogus"))
	assert.Equal(t, "Unlearned", Unlearned.Label())
}

func TestNavigatorWrap(t *testing.T) {
	n := NewNavigator(makeCatalog("a", "b", "c"), NewSets(nil, nil, nil), All)

	n.Prev()
	assert.Equal(t, 2, n.Index(), "prev from first wraps to last")
	n.Next()
	assert.Equal(t, 0, n.Index(), "next from last wraps to first")
	n.Next()
	q, ok := n.Current()
	require.True(t, ok)
	assert.Equal(t, "b", q.Text)
}

func TestNavigatorJump(t *testing.T) {
	n := NewNavigator(makeCatalog("a", "b", "c", "d", "e"), NewSets(nil, nil, nil), All)

	require.NoError(t, n.Jump(3))
	assert.Equal(t, 2, n.Index())

	err := n.Jump(6)
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, 2, n.Index())

	assert.ErrorIs(t, n.Jump(0), ErrOutOfRange)
	assert.Equal(t, 2, n.Index())
}

func TestNavigatorSetBucketResets(t *testing.T) {
	n := NewNavigator(makeCatalog("a", "b", "c"), NewSets([]string{"c"}, nil, nil), All)
	n.Next()
	n.Next()
	n.SetBucket(Wrong)
	assert.Equal(t, 0, n.Index())
	assert.Equal(t, 1, n.Len())

	n.SetBucket(Important)
	assert.Equal(t, 0, n.Len())
	_, ok := n.Current()
	assert.False(t, ok)
	n.Next()
	n.Prev()
	assert.Equal(t, 0, n.Index())
}

func TestNavigatorSearch(t *testing.T) {
	n := NewNavigator(makeCatalog("alpha", "beta", "gamma"), NewSets(nil, nil, nil), All)
	assert.True(t, n.Search("GAM"))
	assert.Equal(t, 2, n.Index())
	assert.False(t, n.Search("delta"))
	assert.Equal(t, 2, n.Index())
}

func TestNavigatorUpdateSetsClamps(t *testing.T) {
	n := NewNavigator(makeCatalog("a", "b"), NewSets([]string{"a", "b"}, nil, nil), Wrong)
	n.Next()
	assert.Equal(t, 1, n.Index())

	// b graduates out of the wrong bucket.
	n.UpdateSets(NewSets([]string{"a"}, nil, nil))
	assert.Equal(t, 0, n.Index())
	assert.Equal(t, 1, n.Len())
}
