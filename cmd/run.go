package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/studydeck/studydeck/internal/app"
	"github.com/studydeck/studydeck/internal/chat"
	"github.com/studydeck/studydeck/internal/llm"
	"github.com/studydeck/studydeck/internal/screens/home"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	deps := home.Deps{
		Source:        e.catalog,
		Tracker:       e.tracker,
		Library:       e.library,
		Remote:        e.docs,
		PracticeCount: e.cfg.PracticeDefaultCount,
		AutosaveDelay: e.cfg.AutosaveDelay,
		ShareBaseURL:  e.cfg.ShareBaseURL,
	}

	if err := e.cfg.LLM.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "AI chat will be unavailable.")
	} else {
		provider, err := llm.NewProvider(cmd.Context(), e.cfg.LLM, e.store.EventRepo(), e.logger)
		if err != nil {
			e.logger.Warn("LLM provider unavailable", "provider", e.cfg.LLM.Provider, "error", err)
			fmt.Fprintln(os.Stderr, "AI chat will be unavailable:", err)
		} else {
			deps.Assistant = chat.New(provider, e.store.KV(), chat.WithLogger(e.logger))
		}
	}

	e.logger.Info("starting", "db", e.cfg.DBPath, "llm", e.cfg.LLM.Provider)
	return app.Run(deps)
}
