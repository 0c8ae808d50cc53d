package model

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/heart-risk-predictor/internal/domain"
)

// Risk percentages reported for models that only expose a hard decision.
// These are a coarse placeholder, not a calibrated estimate.
const (
	BinaryPositiveRisk = 85.0
	BinaryNegativeRisk = 15.0
)

// AdapterOptions configures the circuit breaker guarding a model.
type AdapterOptions struct {
	Name          string
	MaxFailures   uint32
	OpenTimeout   time.Duration
	OnStateChange func(name string, from gobreaker.State, to gobreaker.State)
}

// Adapter turns a model's raw output into a risk percentage. The model's
// shape is resolved once, in NewAdapter.
type Adapter struct {
	kind    string
	proba   ProbabilisticModel
	binary  BinaryModel
	breaker *gobreaker.CircuitBreaker
}

// NewAdapter wraps m. Probability output is preferred when m offers both.
func NewAdapter(m any, kind string, opts AdapterOptions) *Adapter {
	a := &Adapter{kind: kind}
	if p, ok := m.(ProbabilisticModel); ok {
		a.proba = p
	} else if b, ok := m.(BinaryModel); ok {
		a.binary = b
	}

	if opts.MaxFailures == 0 {
		opts.MaxFailures = 5
	}
	if opts.OpenTimeout == 0 {
		opts.OpenTimeout = 30 * time.Second
	}
	maxFailures := opts.MaxFailures
	a.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        opts.Name,
		MaxRequests: 1,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: opts.OnStateChange,
	})

	return a
}

// Kind returns the serialized model kind.
func (a *Adapter) Kind() string {
	if a == nil {
		return ""
	}
	return a.kind
}

// BreakerState reports the circuit breaker state.
func (a *Adapter) BreakerState() string {
	if a == nil {
		return ""
	}
	return a.breaker.State().String()
}

// Predict returns the risk percentage for one preprocessed feature vector.
// It fails with domain.ErrModelUnavailable when there is no model or the
// breaker is open, and with a *domain.InferenceError otherwise.
func (a *Adapter) Predict(features []float64) (float64, error) {
	if a == nil {
		return 0, domain.ErrModelUnavailable
	}

	out, err := a.breaker.Execute(func() (interface{}, error) {
		return a.infer(features)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return 0, fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err)
	}
	if err != nil {
		return 0, err
	}
	return out.(float64), nil
}

func (a *Adapter) infer(features []float64) (risk float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.NewInferenceError("model panicked", fmt.Errorf("%v", r))
		}
	}()

	rows := [][]float64{features}

	switch {
	case a.proba != nil:
		proba, err := a.proba.PredictProba(rows)
		if err != nil {
			return 0, domain.NewInferenceError("predict_proba failed", err)
		}
		if len(proba) == 0 || len(proba[0]) < 2 {
			return 0, domain.NewInferenceError("probability output is missing the positive class", nil)
		}
		p := proba[0][1]
		if math.IsNaN(p) || p < 0 || p > 1 {
			return 0, domain.NewInferenceError(fmt.Sprintf("probability %v out of range", p), nil)
		}
		return roundPercentage(p), nil

	case a.binary != nil:
		decisions, err := a.binary.Predict(rows)
		if err != nil {
			return 0, domain.NewInferenceError("predict failed", err)
		}
		if len(decisions) == 0 {
			return 0, domain.NewInferenceError("empty decision output", nil)
		}
		switch decisions[0] {
		case 1:
			return BinaryPositiveRisk, nil
		case 0:
			return BinaryNegativeRisk, nil
		default:
			return 0, domain.NewInferenceError(fmt.Sprintf("unexpected decision %d", decisions[0]), nil)
		}

	default:
		return 0, domain.NewInferenceError("model exposes neither probabilities nor decisions", nil)
	}
}

// roundPercentage scales a probability to a percentage with one decimal.
func roundPercentage(p float64) float64 {
	pct, _ := decimal.NewFromFloat(p).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	return pct
}
