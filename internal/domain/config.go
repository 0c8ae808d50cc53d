package domain

import (
	"time"
)

// Config represents the main application configuration
type Config struct {
	Environment string          `mapstructure:"environment"`
	Server      ServerConfig    `mapstructure:"server"`
	Predictor   PredictorConfig `mapstructure:"predictor"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Logging     LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	StaticDir      string        `mapstructure:"static_dir"` // web form assets, empty disables
}

// PredictorConfig controls model discovery and the prediction pipeline
type PredictorConfig struct {
	ModelPath         string        `mapstructure:"model_path"`          // explicit path, tried first
	DefaultModelPaths []string      `mapstructure:"default_model_paths"` // conventional fallbacks
	DatasetPaths      []string      `mapstructure:"dataset_paths"`       // reference dataset candidates
	UploadDir         string        `mapstructure:"upload_dir"`
	CacheSize         int           `mapstructure:"cache_size"` // 0 disables the result cache
	Breaker           BreakerConfig `mapstructure:"breaker"`
}

// CandidateModelPaths returns the startup scan order.
func (c PredictorConfig) CandidateModelPaths() []string {
	paths := make([]string, 0, len(c.DefaultModelPaths)+1)
	if c.ModelPath != "" {
		paths = append(paths, c.ModelPath)
	}
	return append(paths, c.DefaultModelPaths...)
}

// BreakerConfig configures the circuit breaker wrapped around model inference
type BreakerConfig struct {
	MaxFailures uint32        `mapstructure:"max_failures"`
	OpenTimeout time.Duration `mapstructure:"open_timeout"`
}

// RateLimitConfig configures request throttling on administrative routes
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
