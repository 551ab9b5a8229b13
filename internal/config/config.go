// Package config provides typed configuration for the extraction pipeline.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mealvoice/mealvoice/internal/common"
)

// Config is the full application configuration.
type Config struct {
	Transcription TranscriptionConfig
	LLM           LLMConfig
	Extraction    ExtractionConfig
	Review        ReviewConfig
	Lexicon       LexiconConfig
	Storage       StorageConfig
}

// TranscriptionConfig selects and configures the speech backend.
type TranscriptionConfig struct {
	Backend      string
	APIKey       string
	Model        string
	BaseURL      string
	LanguageHint string
	Timeout      time.Duration
}

// LLMConfig configures the inference backend shared by detection and
// estimation.
type LLMConfig struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	Temperature float64
	MaxTokens   int
	RateLimit   int
	Timeout     time.Duration
}

// ExtractionConfig selects strategies and stage deadlines.
type ExtractionConfig struct {
	PrimaryStrategy  string
	FallbackStrategy string
	StageTimeout     time.Duration
	CacheTTL         time.Duration
}

// ReviewConfig tunes the review evaluator.
type ReviewConfig struct {
	Threshold float64
}

// LexiconConfig points at an optional YAML lexicon override.
type LexiconConfig struct {
	Path string
}

// StorageConfig points at the optional food reference database.
type StorageConfig struct {
	DBPath string
}

// SetDefaults registers every default on the given viper instance.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("transcription.backend", "whisper")
	v.SetDefault("transcription.model", "")
	v.SetDefault("transcription.base_url", "")
	v.SetDefault("transcription.language_hint", "")
	v.SetDefault("transcription.timeout", "60s")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.rate_limit", 30)
	v.SetDefault("llm.timeout", "45s")

	v.SetDefault("extraction.primary_strategy", "rich")
	v.SetDefault("extraction.fallback_strategy", "budget")
	v.SetDefault("extraction.stage_timeout", "45s")
	v.SetDefault("extraction.cache_ttl", "15m")

	v.SetDefault("review.threshold", 0.6)
	v.SetDefault("lexicon.path", "")
	v.SetDefault("storage.db_path", "")
}

// Load builds a validated Config from the given viper instance.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Transcription: TranscriptionConfig{
			Backend:      strings.ToLower(v.GetString("transcription.backend")),
			APIKey:       v.GetString("transcription.api_key"),
			Model:        v.GetString("transcription.model"),
			BaseURL:      v.GetString("transcription.base_url"),
			LanguageHint: v.GetString("transcription.language_hint"),
			Timeout:      v.GetDuration("transcription.timeout"),
		},
		LLM: LLMConfig{
			Provider:    strings.ToLower(v.GetString("llm.provider")),
			APIKey:      v.GetString("llm.api_key"),
			Model:       v.GetString("llm.model"),
			BaseURL:     v.GetString("llm.base_url"),
			Temperature: v.GetFloat64("llm.temperature"),
			MaxTokens:   v.GetInt("llm.max_tokens"),
			RateLimit:   v.GetInt("llm.rate_limit"),
			Timeout:     v.GetDuration("llm.timeout"),
		},
		Extraction: ExtractionConfig{
			PrimaryStrategy:  strings.ToLower(v.GetString("extraction.primary_strategy")),
			FallbackStrategy: strings.ToLower(v.GetString("extraction.fallback_strategy")),
			StageTimeout:     v.GetDuration("extraction.stage_timeout"),
			CacheTTL:         v.GetDuration("extraction.cache_ttl"),
		},
		Review: ReviewConfig{
			Threshold: v.GetFloat64("review.threshold"),
		},
		Lexicon: LexiconConfig{
			Path: ExpandPath(v.GetString("lexicon.path")),
		},
		Storage: StorageConfig{
			DBPath: ExpandPath(v.GetString("storage.db_path")),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Transcription.Backend {
	case "whisper", "deepgram":
	default:
		return fmt.Errorf("%w: unknown transcription backend %q",
			common.ErrInvalidConfig, c.Transcription.Backend)
	}
	if c.Transcription.APIKey == "" {
		return fmt.Errorf("%w: transcription.api_key is required", common.ErrMissingConfig)
	}

	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("%w: unknown llm provider %q", common.ErrInvalidConfig, c.LLM.Provider)
	}
	if c.LLM.APIKey == "" {
		return fmt.Errorf("%w: llm.api_key is required", common.ErrMissingConfig)
	}

	for _, s := range []string{c.Extraction.PrimaryStrategy, c.Extraction.FallbackStrategy} {
		switch s {
		case "budget", "rich", "":
		default:
			return fmt.Errorf("%w: unknown strategy %q", common.ErrInvalidConfig, s)
		}
	}
	if c.Extraction.PrimaryStrategy == "" {
		return fmt.Errorf("%w: extraction.primary_strategy is required", common.ErrMissingConfig)
	}
	if c.Extraction.PrimaryStrategy == c.Extraction.FallbackStrategy {
		return fmt.Errorf("%w: fallback strategy must differ from primary", common.ErrInvalidConfig)
	}

	if c.Review.Threshold < 0 || c.Review.Threshold > 1 {
		return fmt.Errorf("%w: review.threshold must be in [0,1]", common.ErrInvalidConfig)
	}
	return nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
