// Package model loads serialized predictive models and adapts their output
// to a 0-100 risk percentage.
package model

import (
	"fmt"
	"math"
)

// ProbabilisticModel exposes class probabilities. Each output row holds one
// probability per class; column 1 is the "disease present" class.
type ProbabilisticModel interface {
	PredictProba(rows [][]float64) ([][]float64, error)
}

// BinaryModel exposes only a hard 0/1 decision per row.
type BinaryModel interface {
	Predict(rows [][]float64) ([]int, error)
}

// Model kinds understood by the codec
const (
	KindLogisticRegression  = "logistic_regression"
	KindSoftVotingEnsemble  = "soft_voting_ensemble"
	KindThresholdClassifier = "threshold_classifier"
)

// LogisticRegression is a linear model with a sigmoid link.
type LogisticRegression struct {
	Coefficients []float64
	Intercept    float64
}

func (m *LogisticRegression) decision(row []float64) (float64, error) {
	if len(row) != len(m.Coefficients) {
		return 0, fmt.Errorf("expected %d features, got %d", len(m.Coefficients), len(row))
	}
	z := m.Intercept
	for i, w := range m.Coefficients {
		z += w * row[i]
	}
	return z, nil
}

// PredictProba returns [P(no disease), P(disease)] for each row.
func (m *LogisticRegression) PredictProba(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		z, err := m.decision(row)
		if err != nil {
			return nil, err
		}
		p := sigmoid(z)
		out[i] = []float64{1 - p, p}
	}
	return out, nil
}

// Predict returns 1 where the decision function is positive.
func (m *LogisticRegression) Predict(rows [][]float64) ([]int, error) {
	out := make([]int, len(rows))
	for i, row := range rows {
		z, err := m.decision(row)
		if err != nil {
			return nil, err
		}
		if z > 0 {
			out[i] = 1
		}
	}
	return out, nil
}

// SoftVotingEnsemble averages member probabilities using Weights.
type SoftVotingEnsemble struct {
	Members []*LogisticRegression
	Weights []float64
}

// PredictProba returns the weighted mean of member probabilities.
func (e *SoftVotingEnsemble) PredictProba(rows [][]float64) ([][]float64, error) {
	var total float64
	for _, w := range e.Weights {
		total += w
	}
	if total <= 0 {
		return nil, fmt.Errorf("ensemble weights sum to %v", total)
	}

	out := make([][]float64, len(rows))
	for i := range out {
		out[i] = []float64{0, 0}
	}
	for m, member := range e.Members {
		proba, err := member.PredictProba(rows)
		if err != nil {
			return nil, fmt.Errorf("member %d: %w", m, err)
		}
		for i, p := range proba {
			out[i][0] += p[0] * e.Weights[m] / total
			out[i][1] += p[1] * e.Weights[m] / total
		}
	}
	return out, nil
}

// Predict returns 1 where the averaged disease probability exceeds one half.
func (e *SoftVotingEnsemble) Predict(rows [][]float64) ([]int, error) {
	proba, err := e.PredictProba(rows)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(proba))
	for i, p := range proba {
		if p[1] > 0.5 {
			out[i] = 1
		}
	}
	return out, nil
}

// ThresholdClassifier is a linear rule with no probability output.
type ThresholdClassifier struct {
	Coefficients []float64
	Intercept    float64
	Threshold    float64
}

// Predict returns 1 where the linear score reaches Threshold.
func (c *ThresholdClassifier) Predict(rows [][]float64) ([]int, error) {
	out := make([]int, len(rows))
	for i, row := range rows {
		if len(row) != len(c.Coefficients) {
			return nil, fmt.Errorf("expected %d features, got %d", len(c.Coefficients), len(row))
		}
		score := c.Intercept
		for j, w := range c.Coefficients {
			score += w * row[j]
		}
		if score >= c.Threshold {
			out[i] = 1
		}
	}
	return out, nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
