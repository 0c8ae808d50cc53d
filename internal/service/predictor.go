package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/heart-risk-predictor/internal/domain"
	"github.com/heart-risk-predictor/internal/metrics"
	"github.com/heart-risk-predictor/internal/model"
	"github.com/heart-risk-predictor/internal/preprocess"
)

// PredictorState is the model lifecycle state of a Predictor.
type PredictorState int

const (
	NoModel PredictorState = iota
	ModelLoaded
)

func (s PredictorState) String() string {
	if s == ModelLoaded {
		return "model_loaded"
	}
	return "no_model"
}

// cachedResult keeps the fallback reason so cache hits are counted like misses.
type cachedResult struct {
	result domain.PredictionResult
	reason string
}

// loadedModel is replaced as a whole on every successful load.
type loadedModel struct {
	adapter    *model.Adapter
	kind       string
	path       string
	loadedAt   time.Time
	generation uint64
}

// PredictorOption configures optional Predictor collaborators.
type PredictorOption func(*Predictor)

// WithMetrics records predictions and loads on r.
func WithMetrics(r *metrics.Recorder) PredictorOption {
	return func(p *Predictor) {
		p.metrics = r
	}
}

// Predictor orchestrates preprocessing, model inference, rule-based
// fallback, formatting and recommendations. One instance is shared by all
// requests.
type Predictor struct {
	cfg          domain.PredictorConfig
	preprocessor *preprocess.Preprocessor
	scorer       *FallbackScorer
	logger       *logrus.Logger
	metrics      *metrics.Recorder
	cache        *lru.Cache[string, cachedResult]

	current    atomic.Pointer[loadedModel]
	loadMu     sync.Mutex
	generation uint64
}

var _ domain.RiskPredictor = (*Predictor)(nil)

// NewPredictor creates a predictor with no model loaded. A non-positive
// cfg.CacheSize disables the result cache.
func NewPredictor(cfg domain.PredictorConfig, preprocessor *preprocess.Preprocessor, logger *logrus.Logger, opts ...PredictorOption) (*Predictor, error) {
	if preprocessor == nil {
		preprocessor = preprocess.New(nil, nil)
	}

	p := &Predictor{
		cfg:          cfg,
		preprocessor: preprocessor,
		scorer:       NewFallbackScorer(),
		logger:       logger,
	}
	for _, opt := range opts {
		opt(p)
	}

	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, cachedResult](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		p.cache = cache
	}

	return p, nil
}

// LoadStartupModel tries the configured candidate paths in priority order.
// Failure leaves the predictor in NoModel and is not fatal.
func (p *Predictor) LoadStartupModel() error {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	candidates := p.cfg.CandidateModelPaths()
	loaded, err := model.LoadFirst(candidates)
	if err != nil {
		p.metrics.ObserveModelLoad(false)
		p.logger.WithError(err).WithField("candidates", candidates).Warn("No startup model loaded, using rule-based scoring")
		return err
	}

	p.metrics.ObserveModelLoad(true)
	p.install(loaded)
	return nil
}

// LoadModel replaces the active model with the one at path. On failure the
// previous model stays active and a *domain.ModelLoadError is returned.
func (p *Predictor) LoadModel(path string) error {
	p.loadMu.Lock()
	defer p.loadMu.Unlock()

	loaded, err := model.Load(path)
	if err != nil {
		p.metrics.ObserveModelLoad(false)
		p.logger.WithError(err).WithField("path", path).Error("Model load failed, keeping previous model")
		return err
	}

	p.metrics.ObserveModelLoad(true)
	p.install(loaded)
	return nil
}

// install must be called with loadMu held.
func (p *Predictor) install(loaded *model.Loaded) {
	p.generation++

	logger := p.logger
	adapter := model.NewAdapter(loaded.Model, loaded.Kind, model.AdapterOptions{
		Name:        loaded.Path,
		MaxFailures: p.cfg.Breaker.MaxFailures,
		OpenTimeout: p.cfg.Breaker.OpenTimeout,
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"model": name,
				"from":  from.String(),
				"to":    to.String(),
			}).Warn("Model circuit breaker changed state")
		},
	})

	p.current.Store(&loadedModel{
		adapter:    adapter,
		kind:       loaded.Kind,
		path:       loaded.Path,
		loadedAt:   loaded.LoadedAt,
		generation: p.generation,
	})
	if p.cache != nil {
		p.cache.Purge()
	}

	p.logger.WithFields(logrus.Fields{
		"path":       loaded.Path,
		"kind":       loaded.Kind,
		"generation": p.generation,
	}).Info("Model loaded")
}

// State reports whether a model is loaded.
func (p *Predictor) State() PredictorState {
	if p.current.Load() == nil {
		return NoModel
	}
	return ModelLoaded
}

// PredictRisk always returns a result. Model failures fall back to
// rule-based scoring and are only logged.
func (p *Predictor) PredictRisk(record domain.PatientRecord) domain.PredictionResult {
	current := p.current.Load()

	var key string
	if p.cache != nil {
		key = cacheKey(current, record)
		if cached, ok := p.cache.Get(key); ok {
			if cached.result.Source == domain.SourceFallback {
				p.metrics.ObserveFallback(cached.reason)
			}
			p.metrics.ObservePrediction(string(cached.result.Source), string(cached.result.RiskCategory), cached.result.RiskPercentage)
			return cached.result.Clone()
		}
	}

	risk, source, reason := p.estimate(current, record)
	category, color := FormatRisk(risk)

	result := domain.PredictionResult{
		RiskPercentage:  risk,
		RiskCategory:    category,
		Color:           color,
		Recommendations: Recommend(record, risk),
		Disclaimer:      domain.Disclaimer,
		Source:          source,
	}
	p.metrics.ObservePrediction(string(source), string(category), risk)

	// Results produced while the model is failing are not cached so that a
	// recovered model is used again.
	if p.cache != nil && reason != metrics.ReasonInference && reason != metrics.ReasonBreakerOpen {
		p.cache.Add(key, cachedResult{result: result.Clone(), reason: reason})
	}

	return result
}

// estimate returns the risk percentage, where it came from and, for the
// fallback path, why the model was not used.
func (p *Predictor) estimate(current *loadedModel, record domain.PatientRecord) (float64, domain.PredictionSource, string) {
	reason := metrics.ReasonNoModel

	if current != nil {
		risk, err := p.predictWithModel(current, record)
		if err == nil {
			return risk, domain.SourceModel, ""
		}

		reason = fallbackReason(err)
		p.logger.WithError(err).WithFields(logrus.Fields{
			"model":  current.path,
			"reason": reason,
		}).Warn("Model prediction failed, using rule-based scoring")
	}

	p.metrics.ObserveFallback(reason)
	risk, signals := p.scorer.ScoreWithSignals(record)
	p.logger.WithFields(logrus.Fields{
		"risk_percentage": risk,
		"signals":         signals,
	}).Debug("Rule-based risk computed")

	return risk, domain.SourceFallback, reason
}

func (p *Predictor) predictWithModel(current *loadedModel, record domain.PatientRecord) (float64, error) {
	features, err := p.preprocessor.Preprocess(record)
	if err != nil {
		return 0, err
	}
	return current.adapter.Predict(features)
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrPreprocessing):
		return metrics.ReasonPreprocessing
	case errors.Is(err, domain.ErrModelUnavailable):
		return metrics.ReasonBreakerOpen
	default:
		return metrics.ReasonInference
	}
}

// DefaultValues returns a copy of the form defaults.
func (p *Predictor) DefaultValues() map[string]any {
	values := make(map[string]any, len(domain.FormDefaults))
	for k, v := range domain.FormDefaults {
		values[k] = v
	}
	return values
}

// ModelInfo describes the active model and preprocessing state.
func (p *Predictor) ModelInfo() domain.ModelInfo {
	info := domain.ModelInfo{
		Features:           append([]string(nil), domain.FeatureOrder...),
		PreprocessorsReady: p.preprocessor.Ready(),
	}

	current := p.current.Load()
	if current == nil {
		return info
	}

	loadedAt := current.loadedAt
	info.ModelLoaded = true
	info.ModelType = current.kind
	info.ModelPath = current.path
	info.LoadedAt = &loadedAt
	info.BreakerState = current.adapter.BreakerState()
	return info
}

// cacheKey identifies a record under one model generation. Only the
// fifteen feature attributes take part.
func cacheKey(current *loadedModel, record domain.PatientRecord) string {
	var generation uint64
	if current != nil {
		generation = current.generation
	}

	attrs := make([]string, 0, len(domain.FeatureOrder))
	for _, attr := range domain.FeatureOrder {
		if record.Has(attr) {
			attrs = append(attrs, attr)
		}
	}
	sort.Strings(attrs)

	var b strings.Builder
	fmt.Fprintf(&b, "%d", generation)
	for _, attr := range attrs {
		v := record[attr]
		fmt.Fprintf(&b, "|%s=%T:%q", attr, v, fmt.Sprint(v))
	}
	return b.String()
}
