// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Embedder EmbedderConfig `mapstructure:"embedder"`
	Keywords KeywordsConfig `mapstructure:"keywords"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ScoringConfig holds the method weights and lexical-model knobs shared by
// the estimators and the aggregator.
type ScoringConfig struct {
	LexicalWeight  float64 `mapstructure:"lexical_weight"`
	SemanticWeight float64 `mapstructure:"semantic_weight"`
	MaxVocabulary  int     `mapstructure:"max_vocabulary"`
	TopSharedTerms int     `mapstructure:"top_shared_terms"`
	TopUniqueTerms int     `mapstructure:"top_unique_terms"`
}

// BatchConfig holds settings for bulk resume ranking.
type BatchConfig struct {
	MaxItems int `mapstructure:"max_items"`
}

// EmbedderConfig holds settings for the ONNX sentence-embedding backend.
type EmbedderConfig struct {
	ModelPath     string `mapstructure:"model_path"`
	TokenizerPath string `mapstructure:"tokenizer_path"`
	OrtLibrary    string `mapstructure:"ort_library"`
	ModelID       string `mapstructure:"model_id"`
	MaxSeqLen     int    `mapstructure:"max_seq_len"`
	MaxChars      int    `mapstructure:"max_chars"`
	CacheDir      string `mapstructure:"cache_dir"`
}

// KeywordsConfig points at the category vocabulary file.
type KeywordsConfig struct {
	CategoriesPath string `mapstructure:"categories_path"`
}

// CacheConfig holds settings for the optional result memoization cache.
type CacheConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	TTL     int         `mapstructure:"ttl"` // milliseconds
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig holds the prometheus scrape endpoint settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
	Path    string `mapstructure:"path"`
}
