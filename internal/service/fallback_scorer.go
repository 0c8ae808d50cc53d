package service

import (
	"github.com/heart-risk-predictor/internal/domain"
)

// Bounds of a rule-based risk percentage. The scorer never reports certainty.
const (
	FallbackMinRisk = 5.0
	FallbackMaxRisk = 95.0
)

// ScoringRule contributes points for one risk factor.
type ScoringRule struct {
	Factor   string
	Evaluate func(record domain.PatientRecord) float64
}

// Signal records a rule that contributed a non-zero delta.
type Signal struct {
	Factor string  `json:"factor"`
	Delta  float64 `json:"delta"`
}

// tier maps a lower bound to the points awarded at or above it. Tiers are
// listed highest first and are mutually exclusive.
type tier struct {
	min    float64
	points float64
}

// FallbackScorer estimates risk from clinical heuristics when no model can
// be used. It is stateless and safe for concurrent use.
type FallbackScorer struct {
	rules []ScoringRule
}

// NewFallbackScorer creates a scorer with the standard point table
func NewFallbackScorer() *FallbackScorer {
	s := &FallbackScorer{}
	s.initializeRules()
	return s
}

// Score returns a risk percentage in [FallbackMinRisk, FallbackMaxRisk].
func (s *FallbackScorer) Score(record domain.PatientRecord) float64 {
	risk, _ := s.ScoreWithSignals(record)
	return risk
}

// ScoreWithSignals is Score plus the rules that fired, in table order.
func (s *FallbackScorer) ScoreWithSignals(record domain.PatientRecord) (float64, []Signal) {
	var (
		total   float64
		signals []Signal
	)
	for _, rule := range s.rules {
		delta := rule.Evaluate(record)
		if delta == 0 {
			continue
		}
		total += delta
		signals = append(signals, Signal{Factor: rule.Factor, Delta: delta})
	}
	return clamp(total, FallbackMinRisk, FallbackMaxRisk), signals
}

func (s *FallbackScorer) initializeRules() {
	s.addNumericRule(domain.AttrAge, tier{65, 25}, tier{55, 15}, tier{45, 10})
	s.addCategoryRule(domain.AttrGender, "", map[string]float64{"Male": 10})
	s.addNumericRule(domain.AttrCholesterol, tier{240, 20}, tier{200, 10})
	s.addNumericRule(domain.AttrBloodPressure, tier{140, 20}, tier{130, 10})
	s.addCategoryRule(domain.AttrSmoking, domain.DefaultSmoking, map[string]float64{"Current": 25, "Former": 10})
	s.addCategoryRule(domain.AttrDiabetes, "", map[string]float64{"Yes": 20})
	s.addCategoryRule(domain.AttrFamilyHistory, "", map[string]float64{"Yes": 15})
	s.addCategoryRule(domain.AttrObesity, "", map[string]float64{"Yes": 15})
	// Exercise is protective.
	s.addNumericRule(domain.AttrExerciseHours, tier{5, -10}, tier{3, -5})
	s.addNumericRule(domain.AttrStressLevel, tier{8, 10}, tier{6, 5})
}

func (s *FallbackScorer) addNumericRule(attr string, tiers ...tier) {
	def := domain.ScoringDefaults[attr]
	s.rules = append(s.rules, ScoringRule{
		Factor: attr,
		Evaluate: func(record domain.PatientRecord) float64 {
			value := record.NumberOr(attr, def)
			for _, t := range tiers {
				if value >= t.min {
					return t.points
				}
			}
			return 0
		},
	})
}

func (s *FallbackScorer) addCategoryRule(attr, def string, points map[string]float64) {
	s.rules = append(s.rules, ScoringRule{
		Factor: attr,
		Evaluate: func(record domain.PatientRecord) float64 {
			return points[record.TextOr(attr, def)]
		},
	})
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
