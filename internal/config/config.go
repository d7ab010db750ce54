package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/danielpatrickdp/whatif-engine/internal/ranking"
	"gopkg.in/yaml.v3"
)

// #region errors

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// #endregion errors

// #region types

// Config is the full engine configuration.
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Seed       uint64           `yaml:"seed"` // 0 = seeded from the clock
	RulesFile  string           `yaml:"rules_file"`
	Generation GenerationConfig `yaml:"generation"`
	Ranking    ranking.Weights  `yaml:"ranking"`
	Backend    BackendConfig    `yaml:"backend"`
	Creative   CreativeConfig   `yaml:"creative"`
	Templates  TemplatesConfig  `yaml:"templates"`
	Safety     SafetyConfig     `yaml:"safety"`
}

// GenerationConfig bounds prompt and branch generation.
type GenerationConfig struct {
	MaxPrompts         int     `yaml:"max_prompts"`
	DiversityThreshold float64 `yaml:"diversity_threshold"`
	RelevanceThreshold float64 `yaml:"relevance_threshold"`
}

// BackendConfig configures the optional generative backend.
type BackendConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Addr            string        `yaml:"addr"`
	Timeout         time.Duration `yaml:"timeout"`
	BreakerFailures uint32        `yaml:"breaker_failures"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`
}

// CreativeConfig tunes the creative generator. TargetCount is the candidate
// count backend augmentation tops up to; 0 uses the requested count.
type CreativeConfig struct {
	TargetCount int `yaml:"target_count"`
}

// TemplatesConfig configures the template registry. An empty DBPath keeps
// the registry in memory.
type TemplatesConfig struct {
	DBPath           string  `yaml:"db_path"`
	PruneBelow       float64 `yaml:"prune_below"`
	PruneMinUsage    int     `yaml:"prune_min_usage"`
	ReviewBelow      float64 `yaml:"review_below"`
	PromoteAbove     float64 `yaml:"promote_above"`
	RecommendMinUses int     `yaml:"recommend_min_usage"`
}

// SafetyConfig enables the banned-terms filter.
type SafetyConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Blocklist []string `yaml:"blocklist"`
}

// #endregion types

// #region defaults

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel: "info",
		Generation: GenerationConfig{
			MaxPrompts:         5,
			DiversityThreshold: ranking.DefaultPromptDiversity,
		},
		Ranking: ranking.DefaultWeights(),
		Backend: BackendConfig{
			Addr:            "localhost:50051",
			Timeout:         10 * time.Second,
			BreakerFailures: 3,
			BreakerCooldown: 30 * time.Second,
		},
		Templates: TemplatesConfig{
			PruneBelow:       0.3,
			PruneMinUsage:    10,
			ReviewBelow:      0.4,
			PromoteAbove:     0.8,
			RecommendMinUses: 10,
		},
		Safety: SafetyConfig{Enabled: true},
	}
}

// #endregion defaults

// #region load

// Load reads the optional YAML file at path over the defaults, then applies
// WHATIF_* environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.Templates.DBPath = envOr("WHATIF_DB", cfg.Templates.DBPath)
	cfg.LogLevel = envOr("WHATIF_LOG_LEVEL", cfg.LogLevel)
	cfg.RulesFile = envOr("WHATIF_RULES_FILE", cfg.RulesFile)
	cfg.Backend.Addr = envOr("WHATIF_BACKEND_ADDR", cfg.Backend.Addr)

	if v := os.Getenv("WHATIF_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: WHATIF_SEED: %w", ErrInvalid, err)
		}
		cfg.Seed = seed
	}
	if v := os.Getenv("WHATIF_BACKEND_ENABLED"); v != "" {
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: WHATIF_BACKEND_ENABLED: %w", ErrInvalid, err)
		}
		cfg.Backend.Enabled = on
	}
	if v := os.Getenv("WHATIF_BACKEND_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: WHATIF_BACKEND_TIMEOUT: %w", ErrInvalid, err)
		}
		cfg.Backend.Timeout = d
	}
	if v := os.Getenv("WHATIF_MAX_PROMPTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: WHATIF_MAX_PROMPTS: %w", ErrInvalid, err)
		}
		cfg.Generation.MaxPrompts = n
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// #endregion load

// #region validate

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	if c.Generation.MaxPrompts <= 0 {
		return fmt.Errorf("%w: generation.max_prompts must be positive, got %d", ErrInvalid, c.Generation.MaxPrompts)
	}
	unit := []struct {
		name string
		v    float64
	}{
		{"generation.diversity_threshold", c.Generation.DiversityThreshold},
		{"generation.relevance_threshold", c.Generation.RelevanceThreshold},
		{"ranking.relevance", c.Ranking.Relevance},
		{"ranking.novelty", c.Ranking.Novelty},
		{"ranking.impact", c.Ranking.Impact},
		{"ranking.safety", c.Ranking.Safety},
		{"templates.prune_below", c.Templates.PruneBelow},
		{"templates.review_below", c.Templates.ReviewBelow},
		{"templates.promote_above", c.Templates.PromoteAbove},
	}
	for _, u := range unit {
		if u.v < 0 || u.v > 1 {
			return fmt.Errorf("%w: %s must be in [0,1], got %g", ErrInvalid, u.name, u.v)
		}
	}
	if c.Templates.PruneMinUsage < 0 || c.Templates.RecommendMinUses < 0 {
		return fmt.Errorf("%w: template usage thresholds must not be negative", ErrInvalid)
	}
	if c.Creative.TargetCount < 0 {
		return fmt.Errorf("%w: creative.target_count must not be negative, got %d", ErrInvalid, c.Creative.TargetCount)
	}
	if c.Backend.Enabled {
		if c.Backend.Addr == "" {
			return fmt.Errorf("%w: backend.addr is required when the backend is enabled", ErrInvalid)
		}
		if c.Backend.Timeout <= 0 {
			return fmt.Errorf("%w: backend.timeout must be positive", ErrInvalid)
		}
		if c.Backend.BreakerFailures == 0 {
			return fmt.Errorf("%w: backend.breaker_failures must be positive", ErrInvalid)
		}
	}
	return nil
}

// #endregion validate
