package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/shelf/internal/app"
	"github.com/llehouerou/shelf/internal/catalog"
	"github.com/llehouerou/shelf/internal/config"
	"github.com/llehouerou/shelf/internal/errmsg"
	"github.com/llehouerou/shelf/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logPath, err := cfg.LogPath()
	if err != nil {
		return fmt.Errorf("log path: %w", err)
	}
	level, levelErr := logging.ParseLevel(cfg.LogLevel)
	log, err := logging.Open(logPath, level)
	if err != nil {
		return err
	}
	// Closing restores stderr, so the error printed by main is visible.
	defer log.Close()
	defer func() {
		if err != nil {
			log.Error("exiting", "error", err)
		}
	}()
	if levelErr != nil {
		log.Warn("using info level", "error", levelErr)
	}
	if err := log.CaptureStderr(); err != nil {
		log.Warn("stderr stays on the terminal", "error", err)
	}

	dbPath, err := cfg.DatabasePath()
	if err != nil {
		return fmt.Errorf("database path: %w", err)
	}
	cat, err := catalog.Open(dbPath, catalog.WithLogger(log.With("component", "catalog")))
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	defer cat.Close()

	m, err := app.New(cfg, cat, log.Logger)
	if err != nil {
		return fmt.Errorf("%s: %w", errmsg.OpInitialize, err)
	}
	defer m.Close()

	log.Info("starting", "database", dbPath, "sources", len(cfg.LibrarySources))
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("run: %w", err)
	}
	return nil
}
