package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/studydeck/studydeck/internal/catalog"
	"github.com/studydeck/studydeck/internal/config"
	"github.com/studydeck/studydeck/internal/docs"
	"github.com/studydeck/studydeck/internal/store"
	"github.com/studydeck/studydeck/internal/tracker"
)

// env is what every command works with once configuration is resolved.
type env struct {
	cfg     config.Config
	logger  *slog.Logger
	store   *store.Store
	tracker *tracker.Tracker
	catalog *catalog.Client
	library *docs.Library
	docs    *docs.Client

	logFile io.Closer
}

// openEnv loads configuration, starts file logging and opens the store.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, logFile, err := openLogger(cfg)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		_ = logFile.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	logger.Debug("store opened", "path", cfg.DBPath)

	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	kv := st.KV()
	return &env{
		cfg:     cfg,
		logger:  logger,
		store:   st,
		tracker: tracker.New(kv, tracker.WithLogger(logger)),
		catalog: catalog.NewClient(
			catalog.WithHTTPClient(httpClient),
			catalog.WithCourseURL(cfg.CourseURL),
			catalog.WithQuestionBaseURL(cfg.QuestionBaseURL),
			catalog.WithLogger(logger),
		),
		library: docs.NewLibrary(kv),
		docs:    docs.NewClient(cfg.DocsAPIURL, cfg.DocsAPIKey, httpClient),
		logFile: logFile,
	}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.logger.Warn("close store", "error", err)
	}
	_ = e.logFile.Close()
}

// openLogger writes JSON logs to the configured file. The terminal belongs
// to the UI, so nothing is logged to stderr.
func openLogger(cfg config.Config) (*slog.Logger, io.Closer, error) {
	path := cfg.LogFile
	if path == "" {
		p, err := config.DefaultLogPath()
		if err != nil {
			return nil, nil, err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, f, nil
}
