package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studydeck/studydeck/internal/catalog"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List the course directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		search, _ := cmd.Flags().GetString("search")
		count, _ := cmd.Flags().GetBool("count")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		courses, err := e.catalog.ListCourses(ctx)
		if err != nil {
			return fmt.Errorf("list courses: %w", err)
		}
		courses = catalog.FilterCourses(courses, search)
		if len(courses) == 0 {
			fmt.Println("No courses found.")
			return nil
		}

		rows := make([][]string, 0, len(courses))
		for _, c := range courses {
			n := "-"
			if count {
				n = fmt.Sprint(len(e.catalog.LoadQuestions(ctx, c.File)))
			}
			rows = append(rows, []string{c.ID, c.Category(), truncate(c.Name, 36), n})
		}
		writeTable(cmd.OutOrStdout(), []string{"ID", "Category", "Name", "Questions"}, rows)
		return nil
	},
}

func init() {
	coursesCmd.Flags().StringP("search", "s", "", "Filter by name, id or description")
	coursesCmd.Flags().Bool("count", false, "Download each question bank and show its size")
}
