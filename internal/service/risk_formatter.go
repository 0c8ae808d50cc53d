package service

import (
	"github.com/heart-risk-predictor/internal/domain"
)

// FormatRisk maps a risk percentage to its category and display color.
// Boundary values belong to the lower category.
func FormatRisk(riskPercentage float64) (domain.RiskCategory, string) {
	switch {
	case riskPercentage <= domain.LowRiskCeiling:
		return domain.LowRisk, domain.ColorLow
	case riskPercentage <= domain.ModerateRiskCeiling:
		return domain.ModerateRisk, domain.ColorModerate
	default:
		return domain.HighRisk, domain.ColorHigh
	}
}
