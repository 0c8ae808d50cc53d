package domain

// RiskCategory names the tier a risk percentage falls into.
type RiskCategory string

const (
	LowRisk      RiskCategory = "Low Risk"
	ModerateRisk RiskCategory = "Moderate Risk"
	HighRisk     RiskCategory = "High Risk"
)

// Display colors for each risk category
const (
	ColorLow      = "#22c55e"
	ColorModerate = "#f59e0b"
	ColorHigh     = "#ef4444"
)

// Category upper bounds, inclusive.
const (
	LowRiskCeiling      = 30.0
	ModerateRiskCeiling = 60.0
)

// Disclaimer accompanies every prediction.
const Disclaimer = "This is a risk assessment tool and should not replace professional medical advice. Please consult with a healthcare provider for proper diagnosis and treatment."

// PredictionSource identifies which path produced a risk percentage.
type PredictionSource string

const (
	SourceModel    PredictionSource = "model"
	SourceFallback PredictionSource = "fallback"
)

// PredictionResult is returned for every prediction request.
type PredictionResult struct {
	RiskPercentage  float64          `json:"risk_percentage"`
	RiskCategory    RiskCategory     `json:"risk_category"`
	Color           string           `json:"color"`
	Recommendations []string         `json:"recommendations"`
	Disclaimer      string           `json:"disclaimer"`
	Source          PredictionSource `json:"source"`
}

// Clone returns a copy that shares no slices with r.
func (r PredictionResult) Clone() PredictionResult {
	out := r
	out.Recommendations = append([]string(nil), r.Recommendations...)
	return out
}
