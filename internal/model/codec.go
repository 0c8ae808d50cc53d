package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/heart-risk-predictor/internal/domain"
)

// document is the on-disk JSON representation of every model kind.
type document struct {
	Kind         string     `json:"kind"`
	Features     []string   `json:"features,omitempty"`
	Coefficients []float64  `json:"coefficients,omitempty"`
	Intercept    float64    `json:"intercept"`
	Threshold    float64    `json:"threshold,omitempty"`
	Estimators   []document `json:"estimators,omitempty"`
	Weights      []float64  `json:"weights,omitempty"`
}

// Decode reads one serialized model and returns it with its kind. The value
// implements ProbabilisticModel, BinaryModel or both.
func Decode(r io.Reader) (any, string, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, "", fmt.Errorf("decode model document: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return nil, "", errors.New("decode model document: trailing data after model")
	}

	m, err := build(doc)
	if err != nil {
		return nil, "", err
	}
	return m, doc.Kind, nil
}

func build(doc document) (any, error) {
	if err := checkFeatures(doc.Features); err != nil {
		return nil, err
	}

	switch doc.Kind {
	case KindLogisticRegression:
		return buildLogistic(doc)

	case KindSoftVotingEnsemble:
		if len(doc.Estimators) == 0 {
			return nil, errors.New("ensemble has no estimators")
		}
		weights := doc.Weights
		if len(weights) == 0 {
			weights = make([]float64, len(doc.Estimators))
			for i := range weights {
				weights[i] = 1
			}
		}
		if len(weights) != len(doc.Estimators) {
			return nil, fmt.Errorf("ensemble has %d estimators but %d weights", len(doc.Estimators), len(weights))
		}
		ensemble := &SoftVotingEnsemble{Weights: weights}
		for i, est := range doc.Estimators {
			if est.Kind != KindLogisticRegression {
				return nil, fmt.Errorf("estimator %d: unsupported kind %q", i, est.Kind)
			}
			if err := checkFeatures(est.Features); err != nil {
				return nil, fmt.Errorf("estimator %d: %w", i, err)
			}
			member, err := buildLogistic(est)
			if err != nil {
				return nil, fmt.Errorf("estimator %d: %w", i, err)
			}
			ensemble.Members = append(ensemble.Members, member)
		}
		return ensemble, nil

	case KindThresholdClassifier:
		if err := checkCoefficients(doc.Coefficients, doc.Intercept); err != nil {
			return nil, err
		}
		return &ThresholdClassifier{
			Coefficients: doc.Coefficients,
			Intercept:    doc.Intercept,
			Threshold:    doc.Threshold,
		}, nil

	case "":
		return nil, errors.New("model document has no kind")
	default:
		return nil, fmt.Errorf("unsupported model kind %q", doc.Kind)
	}
}

func buildLogistic(doc document) (*LogisticRegression, error) {
	if err := checkCoefficients(doc.Coefficients, doc.Intercept); err != nil {
		return nil, err
	}
	return &LogisticRegression{Coefficients: doc.Coefficients, Intercept: doc.Intercept}, nil
}

func checkCoefficients(coefficients []float64, intercept float64) error {
	if len(coefficients) != domain.FeatureCount {
		return fmt.Errorf("expected %d coefficients, got %d", domain.FeatureCount, len(coefficients))
	}
	for _, c := range append([]float64{intercept}, coefficients...) {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return errors.New("model parameters must be finite")
		}
	}
	return nil
}

// checkFeatures rejects models trained on a different column order.
func checkFeatures(features []string) error {
	if len(features) == 0 {
		return nil
	}
	if len(features) != len(domain.FeatureOrder) {
		return fmt.Errorf("model declares %d features, expected %d", len(features), len(domain.FeatureOrder))
	}
	for i, name := range features {
		if name != domain.FeatureOrder[i] {
			return fmt.Errorf("feature %d is %q, expected %q", i, name, domain.FeatureOrder[i])
		}
	}
	return nil
}
