package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/heart-risk-predictor/internal/domain"
)

func lowRiskRecord() domain.PatientRecord {
	return domain.PatientRecord{
		domain.AttrAge:                   30,
		domain.AttrGender:                "Female",
		domain.AttrCholesterol:           180,
		domain.AttrBloodPressure:         110,
		domain.AttrHeartRate:             70,
		domain.AttrSmoking:               "Never",
		domain.AttrAlcoholIntake:         "None",
		domain.AttrExerciseHours:         6,
		domain.AttrFamilyHistory:         "No",
		domain.AttrDiabetes:              "No",
		domain.AttrObesity:               "No",
		domain.AttrStressLevel:           3,
		domain.AttrBloodSugar:            90,
		domain.AttrExerciseInducedAngina: "No",
		domain.AttrChestPainType:         "Asymptomatic",
	}
}

func highRiskRecord() domain.PatientRecord {
	return domain.PatientRecord{
		domain.AttrAge:                   65,
		domain.AttrGender:                "Male",
		domain.AttrCholesterol:           280,
		domain.AttrBloodPressure:         160,
		domain.AttrHeartRate:             85,
		domain.AttrSmoking:               "Current",
		domain.AttrAlcoholIntake:         "Heavy",
		domain.AttrExerciseHours:         1,
		domain.AttrFamilyHistory:         "Yes",
		domain.AttrDiabetes:              "Yes",
		domain.AttrObesity:               "Yes",
		domain.AttrStressLevel:           9,
		domain.AttrBloodSugar:            150,
		domain.AttrExerciseInducedAngina: "Yes",
		domain.AttrChestPainType:         "Typical Angina",
	}
}

func TestFallbackScorer_Examples(t *testing.T) {
	scorer := NewFallbackScorer()

	t.Run("Low_Risk_Clamped_To_Floor", func(t *testing.T) {
		risk, signals := scorer.ScoreWithSignals(lowRiskRecord())

		assert.Equal(t, FallbackMinRisk, risk)
		assert.Equal(t, []Signal{{Factor: domain.AttrExerciseHours, Delta: -10}}, signals)
	})

	t.Run("High_Risk_Clamped_To_Ceiling", func(t *testing.T) {
		risk, signals := scorer.ScoreWithSignals(highRiskRecord())

		assert.Equal(t, FallbackMaxRisk, risk)
		assert.Len(t, signals, 9)

		var sum float64
		for _, s := range signals {
			sum += s.Delta
		}
		assert.Equal(t, 160.0, sum)
	})

	t.Run("Moderate_Risk_Unclamped", func(t *testing.T) {
		record := domain.PatientRecord{
			domain.AttrAge:           55,
			domain.AttrGender:        "Male",
			domain.AttrCholesterol:   210,
			domain.AttrBloodPressure: 135,
			domain.AttrSmoking:       "Former",
			domain.AttrExerciseHours: 4,
			domain.AttrStressLevel:   6,
		}

		assert.Equal(t, 55.0, scorer.Score(record))
	})
}

func TestFallbackScorer_DefaultsForMissingAndInvalid(t *testing.T) {
	scorer := NewFallbackScorer()

	// Age 50 (+10), Cholesterol 200 (+10), Exercise Hours 3 (-5).
	assert.Equal(t, 15.0, scorer.Score(domain.PatientRecord{}))

	invalid := domain.PatientRecord{
		domain.AttrAge:           "unknown",
		domain.AttrCholesterol:   nil,
		domain.AttrExerciseHours: "lots",
	}
	assert.Equal(t, 15.0, scorer.Score(invalid))

	numericStrings := domain.PatientRecord{
		domain.AttrAge:           "70",
		domain.AttrCholesterol:   "250",
		domain.AttrExerciseHours: "0",
	}
	assert.Equal(t, 45.0, scorer.Score(numericStrings))
}

func TestFallbackScorer_TierBoundaries(t *testing.T) {
	scorer := NewFallbackScorer()

	tests := []struct {
		name  string
		attr  string
		value float64
		want  float64
	}{
		{"Age_44", domain.AttrAge, 44, 0},
		{"Age_45", domain.AttrAge, 45, 10},
		{"Age_55", domain.AttrAge, 55, 15},
		{"Age_65", domain.AttrAge, 65, 25},
		{"Cholesterol_199", domain.AttrCholesterol, 199, 0},
		{"Cholesterol_240", domain.AttrCholesterol, 240, 20},
		{"Blood_Pressure_130", domain.AttrBloodPressure, 130, 10},
		{"Blood_Pressure_140", domain.AttrBloodPressure, 140, 20},
		{"Exercise_2", domain.AttrExerciseHours, 2, 0},
		{"Exercise_5", domain.AttrExerciseHours, 5, -10},
		{"Stress_6", domain.AttrStressLevel, 6, 5},
		{"Stress_8", domain.AttrStressLevel, 8, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, signals := scorer.ScoreWithSignals(domain.PatientRecord{tt.attr: tt.value})

			var got float64
			for _, s := range signals {
				if s.Factor == tt.attr {
					got = s.Delta
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFallbackScorer_Deterministic(t *testing.T) {
	scorer := NewFallbackScorer()
	record := highRiskRecord()
	record[domain.AttrAge] = 50
	record[domain.AttrSmoking] = "Never"

	first := scorer.Score(record)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, NewFallbackScorer().Score(record))
	}
	assert.GreaterOrEqual(t, first, FallbackMinRisk)
	assert.LessOrEqual(t, first, FallbackMaxRisk)
}

func TestFallbackScorer_MissingGenderScoresNoPoints(t *testing.T) {
	scorer := NewFallbackScorer()
	record := domain.PatientRecord{domain.AttrAge: 50, domain.AttrExerciseHours: 0}

	assert.Equal(t, 20.0, scorer.Score(record))

	record[domain.AttrGender] = "Male"
	assert.Equal(t, 30.0, scorer.Score(record))
}
