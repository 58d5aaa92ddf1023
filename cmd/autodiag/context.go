package main

import (
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"autodiag/internal/config"
	"autodiag/internal/diagnose"
	"autodiag/internal/evidence"
	"autodiag/internal/history"
	"autodiag/internal/logging"
	"autodiag/internal/services"
	"autodiag/internal/services/openrouter"
	"autodiag/internal/taxonomy"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "load config", "", err)
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "cli", "ensure directories", "", err)
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		paths := []string{"stdout"}
		if cfg.Paths.LogDir != "" {
			paths = append(paths, filepath.Join(cfg.Paths.LogDir, "autodiag.log"))
		}
		c.logger, c.loggerErr = logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: paths,
		})
	})
	return c.logger, c.loggerErr
}

// loadTaxonomy resolves the configured taxonomy or the embedded default.
func loadTaxonomy(cfg *config.Config) (*taxonomy.Table, error) {
	if strings.TrimSpace(cfg.Taxonomy.Path) != "" {
		return taxonomy.Load(cfg.Taxonomy.Path)
	}
	return taxonomy.Default(), nil
}

// buildOrchestrator wires the diagnosis pipeline from configuration. The
// recorder is optional and nil when history is disabled.
func buildOrchestrator(cfg *config.Config, logger *slog.Logger, recorder diagnose.Recorder) (*diagnose.Orchestrator, error) {
	table, err := loadTaxonomy(cfg)
	if err != nil {
		return nil, err
	}

	var reasoner diagnose.Reasoner
	if strings.TrimSpace(cfg.Reasoning.APIKey) != "" {
		reasoner = openrouter.NewClient(openrouter.Config{
			APIKey:         cfg.Reasoning.APIKey,
			BaseURL:        cfg.Reasoning.BaseURL,
			Model:          cfg.Reasoning.Model,
			Referer:        cfg.Reasoning.Referer,
			Title:          cfg.Reasoning.Title,
			TimeoutSeconds: cfg.Reasoning.TimeoutSeconds,
		})
	}

	return diagnose.NewOrchestrator(diagnose.Options{
		Table: table,
		Caps: evidence.Caps{
			TitleItems:       cfg.Analysis.TitleLimit,
			DescriptionItems: cfg.Analysis.DescriptionLimit,
			DescriptionChars: cfg.Analysis.DescriptionChars,
			CommentsPerItem:  cfg.Analysis.CommentLimit,
			CommentChars:     cfg.Analysis.CommentChars,
			TranscriptItems:  cfg.Analysis.TranscriptLimit,
			TranscriptChars:  cfg.Analysis.TranscriptChars,
		},
		Workers:             cfg.Analysis.Workers,
		SimilarityThreshold: cfg.Analysis.SimilarityThreshold,
		ReasoningTimeout:    time.Duration(cfg.Reasoning.TimeoutSeconds) * time.Second,
		SystemPrompt:        openrouter.DiagnosticSystemPrompt,
		Reasoner:            reasoner,
		Recorder:            recorder,
		Logger:              logger,
	}), nil
}

// openHistory returns the history store when enabled, or nil.
func openHistory(cfg *config.Config) (*history.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	return history.Open(cfg)
}
