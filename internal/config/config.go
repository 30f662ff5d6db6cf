// Package config loads runtime configuration with layered sources:
// built-in defaults, an optional YAML file, then environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces the environment overrides, e.g.
// RATINGCF_MODEL_TOP_K=50.
const EnvPrefix = "RATINGCF_"

type Config struct {
	Model ModelConfig `koanf:"model"`
	Cache CacheConfig `koanf:"cache"`
	Log   LogConfig   `koanf:"log"`
	Serve ServeConfig `koanf:"serve"`
}

// ModelConfig carries the collaborative-filtering parameters.
type ModelConfig struct {
	// TopK bounds each user's neighbor set.
	TopK int `koanf:"top_k" validate:"gte=0"`
	// Shrink is the significance-weighting constant.
	Shrink float64 `koanf:"shrink" validate:"gte=0"`
	// AmpFactor is the case-amplification exponent.
	AmpFactor float64 `koanf:"amp_factor" validate:"gt=0"`
	// Iterations is the fixed bias-fitting pass count.
	Iterations int `koanf:"iterations" validate:"gte=0"`
	// LearningRate and Regularization drive the bias gradient updates.
	LearningRate   float64 `koanf:"learning_rate" validate:"gt=0"`
	Regularization float64 `koanf:"regularization" validate:"gte=0"`
}

// CacheConfig controls the prediction LRU cache. Size 0 disables it.
type CacheConfig struct {
	Size int           `koanf:"size" validate:"gte=0"`
	TTL  time.Duration `koanf:"ttl" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=console json"`
}

// ServeConfig enables the optional HTTP surface. An empty Addr keeps
// the process in pure batch mode with no sockets.
type ServeConfig struct {
	Addr string `koanf:"addr"`
}

// Default returns the built-in parameter set.
func Default() Config {
	return Config{
		Model: ModelConfig{
			TopK:           190,
			Shrink:         10.0,
			AmpFactor:      1.3,
			Iterations:     8,
			LearningRate:   0.01,
			Regularization: 0.02,
		},
		Cache: CacheConfig{
			Size: 0,
			TTL:  2 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration. Precedence: env > file > defaults.
// path may be empty to skip the file layer.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	defaults := Default()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envToPath), nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// envMappings translates environment variable names (prefix stripped,
// lowercased) to config paths. Unmapped variables are ignored.
var envMappings = map[string]string{
	"model_top_k":          "model.top_k",
	"model_shrink":         "model.shrink",
	"model_amp_factor":     "model.amp_factor",
	"model_iterations":     "model.iterations",
	"model_learning_rate":  "model.learning_rate",
	"model_regularization": "model.regularization",
	"cache_size":           "cache.size",
	"cache_ttl":            "cache.ttl",
	"log_level":            "log.level",
	"log_format":           "log.format",
	"serve_addr":           "serve.addr",
}

func envToPath(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return ""
}
