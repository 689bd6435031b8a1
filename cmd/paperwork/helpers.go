package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Veraticus/paperwork-flow/internal/classification"
	"github.com/Veraticus/paperwork-flow/internal/config"
	"github.com/Veraticus/paperwork-flow/internal/model"
	"github.com/Veraticus/paperwork-flow/internal/pipeline"
	"github.com/Veraticus/paperwork-flow/internal/storage"
)

// initStorage opens the configured database and brings its schema up to date.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// loadRuleSet builds the built-in rules followed by the configured rule file.
func loadRuleSet(cfg *config.Config) (*classification.RuleSet, error) {
	rules, err := classification.NewDefaultRuleSet()
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in rules: %w", err)
	}

	if cfg.RulesFile == "" {
		return rules, nil
	}

	defs, err := classification.LoadRuleFile(cfg.RulesFile)
	if err != nil {
		return nil, err
	}
	if err := rules.AddAll(defs); err != nil {
		return nil, fmt.Errorf("rule file %s: %w", cfg.RulesFile, err)
	}

	slog.Debug("Loaded rule file", "file", cfg.RulesFile, "rules", len(defs))
	return rules, nil
}

// app bundles what most commands need.
type app struct {
	cfg      *config.Config
	store    *storage.SQLiteStorage
	pipeline *pipeline.Pipeline
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	rules, err := loadRuleSet(cfg)
	if err != nil {
		return nil, err
	}

	store, err := initStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}

	p := pipeline.New(rules, store)
	if cfg.Workers > 0 {
		p.SetWorkers(cfg.Workers)
	}

	return &app{cfg: cfg, store: store, pipeline: p}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}

// expandFiles resolves glob patterns, keeping literal paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found to import")
	}
	return files, nil
}

// monthFlag reads and parses the --month flag.
func monthFlag(cmd *cobra.Command) (model.Period, error) {
	month, _ := cmd.Flags().GetString("month")
	if month == "" {
		return model.Period{}, fmt.Errorf("--month is required (format: YYYY-MM)")
	}
	return model.ParsePeriod(month)
}

// storeFlag reads the --store flag.
func storeFlag(cmd *cobra.Command) (int, error) {
	storeID, _ := cmd.Flags().GetInt("store")
	if storeID <= 0 {
		return 0, fmt.Errorf("--store must be a positive store id")
	}
	return storeID, nil
}
