package tracker

import (
	"context"
	"fmt"
	"sort"
)

// trendWindow is the number of results averaged on each side of the
// improvement trend.
const trendWindow = 3

// CourseProgress summarizes a course's practice history and review state.
type CourseProgress struct {
	CourseID     string
	History      []TestResult
	Wrong        []WrongAnswer
	LearnedCount int
	TotalTests   int
	AverageScore float64
	BestScore    int
	// Trend is the mean of the 3 newest scores minus the mean of the 3
	// before them, or 0 with fewer than 6 results.
	Trend float64
}

// ComputeProgress derives a CourseProgress from stored values.
func ComputeProgress(courseID string, history []TestResult, wrong []WrongAnswer, learned int) CourseProgress {
	p := CourseProgress{
		CourseID:     courseID,
		History:      history,
		Wrong:        wrong,
		LearnedCount: learned,
		TotalTests:   len(history),
	}
	if len(history) == 0 {
		return p
	}

	sum := 0
	for _, r := range history {
		sum += r.Score
		if r.Score > p.BestScore {
			p.BestScore = r.Score
		}
	}
	p.AverageScore = float64(sum) / float64(len(history))

	if len(history) >= 2*trendWindow {
		p.Trend = meanScore(history[:trendWindow]) - meanScore(history[trendWindow:2*trendWindow])
	}
	return p
}

func meanScore(rs []TestResult) float64 {
	sum := 0
	for _, r := range rs {
		sum += r.Score
	}
	return float64(sum) / float64(len(rs))
}

// Progress loads and summarizes one course.
func (t *Tracker) Progress(ctx context.Context, courseID string) (CourseProgress, error) {
	st, err := t.Load(ctx, courseID)
	if err != nil {
		return CourseProgress{}, err
	}
	return ComputeProgress(courseID, st.History, st.Wrong, len(st.Learned)), nil
}

// Overview aggregates progress across every course with practice history.
type Overview struct {
	Courses        []CourseProgress
	TotalTests     int
	OverallAverage float64 // weighted by each course's test count
	TotalWrong     int
}

// Overview scans every stored history and builds a per-course summary for
// courses that have results or wrong answers, most-practiced first.
func (t *Tracker) Overview(ctx context.Context) (Overview, error) {
	keys, err := t.kv.Keys(ctx, HistoryPrefix)
	if err != nil {
		return Overview{}, fmt.Errorf("list histories: %w", err)
	}

	var ov Overview
	for _, key := range keys {
		courseID, _ := CourseIDFromKey(key)
		p, err := t.Progress(ctx, courseID)
		if err != nil {
			return Overview{}, err
		}
		if p.TotalTests == 0 && len(p.Wrong) == 0 {
			continue
		}
		ov.Courses = append(ov.Courses, p)
	}

	sort.SliceStable(ov.Courses, func(i, j int) bool {
		return ov.Courses[i].TotalTests > ov.Courses[j].TotalTests
	})

	weighted := 0.0
	for _, p := range ov.Courses {
		ov.TotalTests += p.TotalTests
		ov.TotalWrong += len(p.Wrong)
		weighted += p.AverageScore * float64(p.TotalTests)
	}
	if ov.TotalTests > 0 {
		ov.OverallAverage = weighted / float64(ov.TotalTests)
	}
	return ov, nil
}

// Band classifies a score for display.
type Band int

const (
	BandPoor Band = iota
	BandFair
	BandGood
)

// ScoreBand returns BandGood for scores of 80 and above, BandFair for 60
// and above, BandPoor otherwise.
func ScoreBand(score float64) Band {
	switch {
	case score >= 80:
		return BandGood
	case score >= 60:
		return BandFair
	default:
		return BandPoor
	}
}

// FormatDuration renders seconds as m:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
