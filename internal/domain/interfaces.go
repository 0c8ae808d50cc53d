package domain

import (
	"time"
)

// RiskPredictor is the contract the HTTP layer depends on
type RiskPredictor interface {
	// PredictRisk always returns a best-effort result; it has no error path.
	PredictRisk(record PatientRecord) PredictionResult
	// LoadModel replaces the active model. Failures leave the previous model in place.
	LoadModel(path string) error
	DefaultValues() map[string]any
	ModelInfo() ModelInfo
}

// ModelInfo describes the currently loaded model
type ModelInfo struct {
	ModelLoaded        bool       `json:"model_loaded"`
	ModelType          string     `json:"model_type,omitempty"`
	ModelPath          string     `json:"model_path,omitempty"`
	LoadedAt           *time.Time `json:"loaded_at,omitempty"`
	BreakerState       string     `json:"breaker_state,omitempty"`
	Features           []string   `json:"features"`
	PreprocessorsReady bool       `json:"preprocessors_ready"`
}

// ConfigManager defines the interface for configuration management
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetPredictorConfig() *PredictorConfig
	Reload() error
	Validate() error
	IsProduction() bool
	IsDevelopment() bool
}
