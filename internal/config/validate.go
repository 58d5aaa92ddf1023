package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	var problems []string

	if c.Analysis.Workers < 1 {
		problems = append(problems, "analysis.workers must be at least 1")
	}
	if c.Analysis.TitleLimit < 1 {
		problems = append(problems, "analysis.title_limit must be at least 1")
	}
	if c.Analysis.DescriptionChars < 1 || c.Analysis.CommentChars < 1 || c.Analysis.TranscriptChars < 1 {
		problems = append(problems, "analysis character caps must be positive")
	}
	if c.Analysis.SimilarityThreshold < -1 || c.Analysis.SimilarityThreshold > 1 {
		problems = append(problems, "analysis.similarity_threshold must be within [-1, 1]")
	}
	if c.Reasoning.TimeoutSeconds < 1 {
		problems = append(problems, "reasoning.timeout_seconds must be at least 1")
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not supported (console, json)", c.Logging.Format))
	}
	if strings.TrimSpace(c.Paths.APIBind) == "" {
		problems = append(problems, "paths.api_bind must not be empty")
	}
	if c.History.Enabled && c.History.Keep < 1 {
		problems = append(problems, "history.keep must be at least 1 when history is enabled")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}
