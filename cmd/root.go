package cmd

import (
	"github.com/spf13/cobra"

	"github.com/studydeck/studydeck/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "studydeck",
	Short: "Study, practice and take notes for your courses",
	Long:  "StudyDeck: flashcard study, timed practice tests, progress tracking and shared notes with an AI assistant, in the terminal.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return config.LoadDotEnv("")
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	config.RegisterFlags(rootCmd)

	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(docsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}
