package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/awrecall/config.yaml"

// EnvPrefix is prepended to every environment override variable.
const EnvPrefix = "AWRECALL_"

// Config holds all awrecall configuration.
type Config struct {
	Session    SessionConfig    `yaml:"session"`
	Storage    StorageConfig    `yaml:"storage"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Retention  RetentionConfig  `yaml:"retention"`
	Import     ImportConfig     `yaml:"import"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// SessionConfig seeds every new search session.
type SessionConfig struct {
	SearchMode          string  `yaml:"search_mode" env:"SEARCH_MODE"`
	SimilarityThreshold float64 `yaml:"similarity_threshold" env:"SIMILARITY_THRESHOLD"`
	MaxResults          int     `yaml:"max_results" env:"MAX_RESULTS"`
	PageSize            int     `yaml:"page_size" env:"PAGE_SIZE"`
	Locale              string  `yaml:"locale" env:"LOCALE"`
	TimeFilter          string  `yaml:"time_filter" env:"TIME_FILTER"`
	BucketFilter        string  `yaml:"bucket_filter" env:"BUCKET_FILTER"`
}

type StorageConfig struct {
	Path       string `yaml:"path" env:"STORAGE_PATH"`
	SQLiteFile string `yaml:"sqlite_file" env:"SQLITE_FILE"`
}

type EmbeddingsConfig struct {
	Enabled           bool    `yaml:"enabled" env:"EMBEDDINGS_ENABLED"`
	BaseURL           string  `yaml:"base_url" env:"EMBEDDINGS_BASE_URL"`
	Model             string  `yaml:"model" env:"EMBEDDINGS_MODEL"`
	APIKey            string  `yaml:"api_key" env:"EMBEDDINGS_API_KEY"`
	BatchSize         int     `yaml:"batch_size" env:"EMBEDDINGS_BATCH_SIZE"`
	RequestsPerSecond float64 `yaml:"requests_per_second" env:"EMBEDDINGS_RPS"`
}

type RetentionConfig struct {
	Days int `yaml:"days" env:"RETENTION_DAYS"`
}

// ImportConfig controls which exported events are loaded.
type ImportConfig struct {
	ExcludeApps []string `yaml:"exclude_apps" env:"IMPORT_EXCLUDE_APPS" envSeparator:","`
}

type LoggingConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
	File  string `yaml:"file" env:"LOG_FILE"`
}

// Load reads a YAML config file at path, merges it with defaults and applies
// environment overrides. Returns an error if the file cannot be read or
// contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnv overlays AWRECALL_* environment variables onto cfg. A .env file in
// the working directory is loaded first when present; variables already set
// in the process environment win over the file.
func ApplyEnv(cfg *Config) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("loading .env file: %w", err)
	}

	opts := env.Options{Prefix: EnvPrefix}
	targets := []interface{}{
		&cfg.Session, &cfg.Storage, &cfg.Embeddings, &cfg.Retention, &cfg.Import, &cfg.Logging,
	}
	for _, target := range targets {
		if err := env.Parse(target, opts); err != nil {
			return fmt.Errorf("parsing environment overrides: %w", err)
		}
	}
	return nil
}

// Validate rejects settings no session could run with.
func (c *Config) Validate() error {
	switch c.Session.SearchMode {
	case "vector", "text":
	default:
		return fmt.Errorf("invalid session.search_mode %q (use vector or text)", c.Session.SearchMode)
	}
	if c.Session.PageSize <= 0 {
		return fmt.Errorf("invalid session.page_size %d: must be positive", c.Session.PageSize)
	}
	if c.Retention.Days < 0 {
		return fmt.Errorf("invalid retention.days %d", c.Retention.Days)
	}
	return nil
}

// DBPath returns the expanded SQLite database path.
func (c *Config) DBPath() (string, error) {
	dir, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		if err := ApplyEnv(cfg); err != nil {
			return nil, err
		}
		return cfg, cfg.Validate()
	}

	return Load(path)
}
