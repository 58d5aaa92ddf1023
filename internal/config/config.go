package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory and bind address configuration.
type Paths struct {
	LogDir  string `toml:"log_dir"`
	DataDir string `toml:"data_dir"`
	APIBind string `toml:"api_bind"`
}

// Analysis contains evidence collection caps and acoustic thresholds.
type Analysis struct {
	// TitleLimit caps how many reference titles feed the reasoning context.
	TitleLimit int `toml:"title_limit"`
	// DescriptionLimit caps how many descriptions feed the reasoning context.
	DescriptionLimit int `toml:"description_limit"`
	// DescriptionChars is the hard character cut applied to each description.
	DescriptionChars int `toml:"description_chars"`
	// CommentLimit caps comments taken per reference item.
	CommentLimit int `toml:"comment_limit"`
	// CommentChars is the hard character cut applied to each comment.
	CommentChars int `toml:"comment_chars"`
	// TranscriptLimit caps how many items contribute transcript segments.
	TranscriptLimit int `toml:"transcript_limit"`
	// TranscriptChars is the hard character cut applied to each transcript segment.
	TranscriptChars int `toml:"transcript_chars"`
	// Workers bounds corpus processing parallelism.
	Workers int `toml:"workers"`
	// SimilarityThreshold is the cosine similarity above which a corpus match
	// earns a confidence bonus.
	SimilarityThreshold float64 `toml:"similarity_threshold"`
}

// Taxonomy contains the keyword taxonomy source.
type Taxonomy struct {
	// Path overrides the embedded default taxonomy when set.
	Path string `toml:"path"`
}

// Reasoning contains connection settings for the external reasoning service.
type Reasoning struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	Referer        string `toml:"referer"`
	Title          string `toml:"title"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// History contains configuration for the diagnosis history store.
type History struct {
	Enabled bool `toml:"enabled"`
	// Keep caps how many records the history list command returns.
	Keep int `toml:"keep"`
}

// Config encapsulates all configuration values for autodiag.
//
// Sections by subsystem:
//   - Paths: directories and API bind address
//   - Analysis: evidence caps, worker pool size, similarity threshold
//   - Taxonomy: keyword taxonomy override
//   - Reasoning: external reasoning service connection
//   - Logging: log format and level
//   - History: diagnosis history store
type Config struct {
	Paths     Paths     `toml:"paths"`
	Analysis  Analysis  `toml:"analysis"`
	Taxonomy  Taxonomy  `toml:"taxonomy"`
	Reasoning Reasoning `toml:"reasoning"`
	Logging   Logging   `toml:"logging"`
	History   History   `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/autodiag/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a file was actually found.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// WriteSample writes the embedded sample configuration to the given path.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}

// EnsureDirectories creates directories required at runtime.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.LogDir, c.Paths.DataDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

func (c *Config) normalize() error {
	var err error
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return err
	}
	if c.Taxonomy.Path != "" {
		if c.Taxonomy.Path, err = expandPath(c.Taxonomy.Path); err != nil {
			return err
		}
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			return home, nil
		}
		return filepath.Join(home, trimmed[2:]), nil
	}
	return filepath.Abs(trimmed)
}
