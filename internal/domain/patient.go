package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Patient attribute names as they appear in the reference dataset
const (
	AttrAge                   = "Age"
	AttrGender                = "Gender"
	AttrCholesterol           = "Cholesterol"
	AttrBloodPressure         = "Blood Pressure"
	AttrHeartRate             = "Heart Rate"
	AttrSmoking               = "Smoking"
	AttrAlcoholIntake         = "Alcohol Intake"
	AttrExerciseHours         = "Exercise Hours"
	AttrFamilyHistory         = "Family History"
	AttrDiabetes              = "Diabetes"
	AttrObesity               = "Obesity"
	AttrStressLevel           = "Stress Level"
	AttrBloodSugar            = "Blood Sugar"
	AttrExerciseInducedAngina = "Exercise Induced Angina"
	AttrChestPainType         = "Chest Pain Type"
)

// FeatureOrder is the column order every model expects.
var FeatureOrder = []string{
	AttrAge,
	AttrGender,
	AttrCholesterol,
	AttrBloodPressure,
	AttrHeartRate,
	AttrSmoking,
	AttrAlcoholIntake,
	AttrExerciseHours,
	AttrFamilyHistory,
	AttrDiabetes,
	AttrObesity,
	AttrStressLevel,
	AttrBloodSugar,
	AttrExerciseInducedAngina,
	AttrChestPainType,
}

// FeatureCount is the length of a preprocessed feature vector.
const FeatureCount = 15

// NumericAttributes lists the attributes scaled by the preprocessor.
var NumericAttributes = []string{
	AttrAge,
	AttrCholesterol,
	AttrBloodPressure,
	AttrHeartRate,
	AttrExerciseHours,
	AttrStressLevel,
	AttrBloodSugar,
}

// CategoricalAttributes lists the attributes encoded by the preprocessor.
var CategoricalAttributes = []string{
	AttrGender,
	AttrSmoking,
	AttrAlcoholIntake,
	AttrFamilyHistory,
	AttrDiabetes,
	AttrObesity,
	AttrExerciseInducedAngina,
	AttrChestPainType,
}

// IsCategorical reports whether attr is one of the categorical attributes.
func IsCategorical(attr string) bool {
	for _, name := range CategoricalAttributes {
		if name == attr {
			return true
		}
	}
	return false
}

// PreprocessDefaults fill attributes missing from a record before encoding.
var PreprocessDefaults = map[string]any{
	AttrAge:                   0.0,
	AttrGender:                "Male",
	AttrCholesterol:           0.0,
	AttrBloodPressure:         0.0,
	AttrHeartRate:             0.0,
	AttrSmoking:               "Never",
	AttrAlcoholIntake:         "None",
	AttrExerciseHours:         0.0,
	AttrFamilyHistory:         "No",
	AttrDiabetes:              "No",
	AttrObesity:               "No",
	AttrStressLevel:           0.0,
	AttrBloodSugar:            0.0,
	AttrExerciseInducedAngina: "No",
	AttrChestPainType:         "Asymptomatic",
}

// ScoringDefaults are used by the rule-based scorer and the recommendation
// engine when a numeric attribute is missing or unparseable.
var ScoringDefaults = map[string]float64{
	AttrAge:           50,
	AttrCholesterol:   200,
	AttrBloodPressure: 120,
	AttrExerciseHours: 3,
	AttrStressLevel:   5,
}

// Categorical fallbacks shared by the scorer and the recommendation engine.
const (
	DefaultSmoking       = "Never"
	DefaultAlcoholIntake = "None"
)

// FormDefaults pre-populate the prediction form.
var FormDefaults = map[string]any{
	AttrAge:                   45,
	AttrGender:                "Male",
	AttrCholesterol:           200,
	AttrBloodPressure:         120,
	AttrHeartRate:             75,
	AttrSmoking:               "Never",
	AttrAlcoholIntake:         "None",
	AttrExerciseHours:         3,
	AttrFamilyHistory:         "No",
	AttrDiabetes:              "No",
	AttrObesity:               "No",
	AttrStressLevel:           3,
	AttrBloodSugar:            100,
	AttrExerciseInducedAngina: "No",
	AttrChestPainType:         "Asymptomatic",
}

// PatientRecord maps attribute names to raw values. A nil value is treated
// the same as a missing attribute.
type PatientRecord map[string]any

// Has reports whether attr is present with a non-nil value.
func (r PatientRecord) Has(attr string) bool {
	v, ok := r[attr]
	return ok && v != nil
}

// Number returns attr as a float64. The second result is false when the
// attribute is missing or cannot be read as a number.
func (r PatientRecord) Number(attr string) (float64, bool) {
	v, ok := r[attr]
	if !ok || v == nil {
		return 0, false
	}
	f, err := ToFloat(v)
	if err != nil {
		return 0, false
	}
	return f, true
}

// NumberOr returns attr as a float64, or def if it is missing or not numeric.
func (r PatientRecord) NumberOr(attr string, def float64) float64 {
	if f, ok := r.Number(attr); ok {
		return f
	}
	return def
}

// Text returns attr as a string. Missing or nil attributes yield ("", false).
func (r PatientRecord) Text(attr string) (string, bool) {
	v, ok := r[attr]
	if !ok || v == nil {
		return "", false
	}
	switch s := v.(type) {
	case string:
		return s, true
	case fmt.Stringer:
		return s.String(), true
	default:
		return fmt.Sprint(v), true
	}
}

// TextOr returns attr as a string, or def if it is missing.
func (r PatientRecord) TextOr(attr, def string) string {
	if s, ok := r.Text(attr); ok {
		return s
	}
	return def
}

// Is reports whether attr is present and equal to want.
func (r PatientRecord) Is(attr, want string) bool {
	s, ok := r.Text(attr)
	return ok && s == want
}

// ToFloat converts the numeric representations that arrive from JSON bodies,
// CSV files and Go callers into a float64.
func ToFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		return n.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, fmt.Errorf("unsupported numeric type %T", v)
	}
}
