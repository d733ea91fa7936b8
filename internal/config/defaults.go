package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Session: SessionConfig{
			SearchMode:          "vector",
			SimilarityThreshold: 0.7,
			MaxResults:          500,
			PageSize:            25,
			Locale:              "en",
			TimeFilter:          "all_time",
			BucketFilter:        "all",
		},
		Storage: StorageConfig{
			Path:       "~/.config/awrecall",
			SQLiteFile: "awrecall.db",
		},
		Embeddings: EmbeddingsConfig{
			Enabled:           false,
			BaseURL:           "http://localhost:11434/v1",
			Model:             "nomic-embed-text",
			APIKey:            "",
			BatchSize:         16,
			RequestsPerSecond: 4,
		},
		Retention: RetentionConfig{
			Days: 365,
		},
		Import: ImportConfig{
			ExcludeApps: DefaultExcludedApps(),
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}
