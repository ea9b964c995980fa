package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/studydeck/studydeck/internal/tracker"
)

var progressCmd = &cobra.Command{
	Use:   "progress [course-id]",
	Short: "Show practice history and review state",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		if len(args) == 1 {
			p, err := e.tracker.Progress(ctx, args[0])
			if err != nil {
				return fmt.Errorf("load progress: %w", err)
			}
			printCourseProgress(cmd.OutOrStdout(), p)
			return nil
		}

		ov, err := e.tracker.Overview(ctx)
		if err != nil {
			return fmt.Errorf("load overview: %w", err)
		}
		if len(ov.Courses) == 0 {
			fmt.Println("No practice tests recorded yet.")
			return nil
		}

		rows := make([][]string, 0, len(ov.Courses))
		for _, p := range ov.Courses {
			rows = append(rows, []string{
				p.CourseID,
				fmt.Sprint(p.TotalTests),
				fmt.Sprintf("%.1f%%", p.AverageScore),
				fmt.Sprintf("%d%%", p.BestScore),
				fmt.Sprint(len(p.Wrong)),
				fmt.Sprintf("%+.1f", p.Trend),
			})
		}
		writeTable(cmd.OutOrStdout(),
			[]string{"Course", "Tests", "Average", "Best", "Wrong", "Trend"}, rows,
			"total", fmt.Sprint(ov.TotalTests), fmt.Sprintf("%.1f%%", ov.OverallAverage), "", fmt.Sprint(ov.TotalWrong), "")
		return nil
	},
}

func printCourseProgress(w io.Writer, p tracker.CourseProgress) {
	writeFields(w, [][2]string{
		{"Course", p.CourseID},
		{"Tests", fmt.Sprint(p.TotalTests)},
		{"Average", fmt.Sprintf("%.1f%%", p.AverageScore)},
		{"Best", fmt.Sprintf("%d%%", p.BestScore)},
		{"Trend", fmt.Sprintf("%+.1f", p.Trend)},
		{"Learned", fmt.Sprint(p.LearnedCount)},
		{"Wrong", fmt.Sprint(len(p.Wrong))},
	})

	if len(p.History) > 0 {
		rows := make([][]string, 0, len(p.History))
		for _, r := range p.History {
			rows = append(rows, []string{
				time.UnixMilli(r.Timestamp).Local().Format("2006-01-02 15:04"),
				fmt.Sprintf("%d%%", r.Score),
				fmt.Sprintf("%d/%d", r.CorrectAnswers, r.TotalQuestions),
				tracker.FormatDuration(r.TimeSpent),
			})
		}
		fmt.Fprintln(w)
		writeTable(w, []string{"When", "Score", "Correct", "Time"}, rows)
	}

	if len(p.Wrong) > 0 {
		fmt.Fprintln(w, "\nTo review")
		for _, q := range p.Wrong {
			fmt.Fprintf(w, "- %s\n    yours: %s\n    correct: %s\n", q.Question, q.UserAnswer, q.CorrectAnswer)
		}
	}
}
