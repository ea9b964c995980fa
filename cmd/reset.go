package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset <course-id>",
	Short: "Clear wrong answers or all saved state for a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		wrong, _ := cmd.Flags().GetBool("wrong")
		all, _ := cmd.Flags().GetBool("all")
		if wrong == all {
			return errors.New("pass exactly one of --wrong or --all")
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		courseID := args[0]
		if wrong {
			if err := e.tracker.ClearWrongAnswers(cmd.Context(), courseID); err != nil {
				return fmt.Errorf("clear wrong answers: %w", err)
			}
			fmt.Printf("Cleared wrong answers for course %s.\n", courseID)
			return nil
		}
		if err := e.tracker.ClearCourse(cmd.Context(), courseID); err != nil {
			return fmt.Errorf("reset course: %w", err)
		}
		fmt.Printf("Reset all saved state for course %s.\n", courseID)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("wrong", false, "Clear the wrong answer review list")
	resetCmd.Flags().Bool("all", false, "Clear history, marks, stars and review state")
}
