package service

import (
	"github.com/heart-risk-predictor/internal/domain"
)

// Advisory texts, in the order they are emitted.
const (
	AdviceQuitSmoking      = "🚭 Quit smoking immediately - this is the single most important step for heart health"
	AdviceStaySmokeFree    = "✅ Continue avoiding tobacco - great job on quitting!"
	AdviceIncreaseActivity = "🏃 Increase physical activity - aim for at least 150 minutes of moderate exercise per week"
	AdviceKeepExercising   = "✅ Excellent exercise routine - keep up the great work!"
	AdviceHeartHealthyDiet = "🥗 Focus on heart-healthy diet - reduce saturated fats and increase fruits and vegetables"
	AdviceMonitorPressure  = "🩺 Monitor blood pressure regularly and consider dietary changes to reduce sodium"
	AdviceManageStress     = "🧘 Practice stress management techniques like meditation, yoga, or deep breathing"
	AdviceManageWeight     = "⚖️ Work on achieving a healthy weight through balanced diet and regular exercise"
	AdviceReduceAlcohol    = "🍷 Consider reducing alcohol consumption to moderate levels"
	AdviceCardiacEval      = "⚠️ Schedule an appointment with your doctor for a comprehensive cardiac evaluation"
	AdvicePreventiveMeds   = "💊 Consider discussing preventive medications with your healthcare provider"
	AdviceRegularCheckups  = "📅 Schedule regular check-ups with your healthcare provider"
	AdviceScreenings       = "🔬 Consider regular health screenings including lipid panels and blood pressure checks"
)

// Recommend returns personalized advice for record. Each trigger is
// independent; the screening reminder is always last.
func Recommend(record domain.PatientRecord, riskPercentage float64) []string {
	var recs []string

	switch record.TextOr(domain.AttrSmoking, domain.DefaultSmoking) {
	case "Current":
		recs = append(recs, AdviceQuitSmoking)
	case "Former":
		recs = append(recs, AdviceStaySmokeFree)
	}

	exercise := scoringNumber(record, domain.AttrExerciseHours)
	if exercise < 3 {
		recs = append(recs, AdviceIncreaseActivity)
	} else if exercise >= 5 {
		recs = append(recs, AdviceKeepExercising)
	}

	if scoringNumber(record, domain.AttrCholesterol) >= 200 {
		recs = append(recs, AdviceHeartHealthyDiet)
	}

	if scoringNumber(record, domain.AttrBloodPressure) >= 130 {
		recs = append(recs, AdviceMonitorPressure)
	}

	if scoringNumber(record, domain.AttrStressLevel) >= 6 {
		recs = append(recs, AdviceManageStress)
	}

	if record.Is(domain.AttrObesity, "Yes") {
		recs = append(recs, AdviceManageWeight)
	}

	if record.TextOr(domain.AttrAlcoholIntake, domain.DefaultAlcoholIntake) == "Heavy" {
		recs = append(recs, AdviceReduceAlcohol)
	}

	switch {
	case riskPercentage > domain.ModerateRiskCeiling:
		recs = append(recs, AdviceCardiacEval, AdvicePreventiveMeds)
	case riskPercentage > domain.LowRiskCeiling:
		recs = append(recs, AdviceRegularCheckups)
	}

	return append(recs, AdviceScreenings)
}

func scoringNumber(record domain.PatientRecord, attr string) float64 {
	return record.NumberOr(attr, domain.ScoringDefaults[attr])
}
