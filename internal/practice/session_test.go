package practice

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studydeck/studydeck/internal/catalog"
)

func makeQuestions(n int) []catalog.Question {
	qs := make([]catalog.Question, n)
	for i := range qs {
		qs[i] = catalog.Question{
			Text:       fmt.Sprintf("q%d", i),
			Options:    []string{"A. right", "B. wrong"},
			Answers:    []string{"A"},
			NumOptions: 2,
		}
	}
	return qs
}

var t0 = time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

func TestStartClampsToCatalog(t *testing.T) {
	s := New("c", makeQuestions(3), rand.New(rand.NewSource(1)))
	require.NoError(t, s.Start(5, t0))
	assert.Len(t, s.Questions, 3)
	assert.Len(t, s.Answers, 3)
	assert.Equal(t, PhaseRunning, s.Phase)
	assert.NotEmpty(t, s.ID)

	seen := map[string]bool{}
	for _, q := range s.Questions {
		assert.False(t, seen[q.Text], "duplicate %s", q.Text)
		seen[q.Text] = true
	}
}

func TestStartSamplesPrefix(t *testing.T) {
	s := New("c", makeQuestions(20), rand.New(rand.NewSource(42)))
	require.NoError(t, s.Start(5, t0))
	assert.Len(t, s.Questions, 5)

	require.ErrorIs(t, s.Start(5, t0), ErrNotConfiguring)
}

func TestStartEmptyCatalog(t *testing.T) {
	s := New("c", nil, nil)
	assert.False(t, s.CanStart())
	assert.ErrorIs(t, s.Start(10, t0), ErrEmptyCatalog)
	assert.Equal(t, PhaseConfiguring, s.Phase)
}

func TestSubmitScore(t *testing.T) {
	s := New("c", makeQuestions(10), rand.New(rand.NewSource(3)))
	require.NoError(t, s.Start(10, t0))

	for i := 0; i < 10; i++ {
		require.NoError(t, s.GoTo(i))
		if i < 7 {
			require.NoError(t, s.Answer("A. right"))
		} else {
			require.NoError(t, s.Answer("B. wrong"))
		}
	}

	r, err := s.Submit(t0.Add(95 * time.Second))
	require.NoError(t, err)
	assert.Equal(t, 70, r.Score)
	assert.Equal(t, 7, r.CorrectAnswers)
	assert.Equal(t, 3, r.WrongAnswers)
	assert.Equal(t, 10, r.TotalQuestions)
	assert.Equal(t, 95, r.TimeSpent)
	assert.Equal(t, "c", r.CourseID)
	assert.Equal(t, s.ID, r.ID)
	assert.Equal(t, "A. right", r.Questions[0].CorrectAnswer)
	assert.Equal(t, PhaseFinished, s.Phase)

	// Timer is frozen after submit.
	assert.Equal(t, 95*time.Second, s.Elapsed(t0.Add(time.Hour)))
}

func TestSubmitRequiresAnswer(t *testing.T) {
	s := New("c", makeQuestions(3), rand.New(rand.NewSource(1)))
	_, err := s.Submit(t0)
	assert.ErrorIs(t, err, ErrNotRunning)

	require.NoError(t, s.Start(3, t0))
	assert.False(t, s.CanSubmit())
	_, err = s.Submit(t0)
	assert.ErrorIs(t, err, ErrNothingAnswered)

	require.NoError(t, s.Answer("B. wrong"))
	assert.True(t, s.CanSubmit())
	r, err := s.Submit(t0)
	require.NoError(t, err)
	assert.Equal(t, 0, r.Score)
	assert.Equal(t, "", r.Questions[1].UserAnswer, "unanswered recorded as empty")
	assert.False(t, r.Questions[1].IsCorrect)
}

func TestAnswerOverwrites(t *testing.T) {
	s := New("c", makeQuestions(2), rand.New(rand.NewSource(1)))
	assert.ErrorIs(t, s.Answer("A. right"), ErrNotRunning)

	require.NoError(t, s.Start(2, t0))
	require.NoError(t, s.Answer("B. wrong"))
	require.NoError(t, s.Answer("A. right"))
	assert.Equal(t, "A. right", s.Answers[0])
	assert.Equal(t, 1, s.AnsweredCount())
}

func TestNavigationClamps(t *testing.T) {
	s := New("c", makeQuestions(3), rand.New(rand.NewSource(1)))
	require.NoError(t, s.Start(3, t0))

	s.Prev()
	assert.Equal(t, 0, s.Current)
	s.Next()
	s.Next()
	s.Next()
	assert.Equal(t, 2, s.Current)
	assert.Error(t, s.GoTo(3))
	assert.Equal(t, 2, s.Current)
	require.NoError(t, s.GoTo(0))
	q, ok := s.Question()
	require.True(t, ok)
	assert.Equal(t, s.Questions[0].Text, q.Text)
}

func TestRetry(t *testing.T) {
	s := New("c", makeQuestions(3), rand.New(rand.NewSource(1)))
	require.NoError(t, s.Start(2, t0))
	require.NoError(t, s.Answer("A. right"))
	_, err := s.Submit(t0.Add(time.Second))
	require.NoError(t, err)

	s.Retry()
	assert.Equal(t, PhaseConfiguring, s.Phase)
	assert.Nil(t, s.Questions)
	assert.Nil(t, s.Result)
	assert.Zero(t, s.Elapsed(t0.Add(time.Hour)))
	assert.True(t, s.CanStart())
}

func TestElapsedWhileRunning(t *testing.T) {
	s := New("c", makeQuestions(1), rand.New(rand.NewSource(1)))
	require.NoError(t, s.Start(1, t0))
	assert.Equal(t, 3*time.Second, s.Elapsed(t0.Add(3*time.Second)))
}

func TestScore(t *testing.T) {
	assert.Equal(t, 70, Score(7, 10))
	assert.Equal(t, 67, Score(2, 3))
	assert.Equal(t, 33, Score(1, 3))
	assert.Equal(t, 0, Score(0, 0))
}
