package api

import (
	"github.com/heart-risk-predictor/internal/domain"
)

// requestField pairs a JSON body key with the attribute it carries.
type requestField struct {
	JSON      string
	Attribute string
	Required  bool
}

// predictFields lists the body keys accepted by POST /api/predict.
var predictFields = []requestField{
	{"age", domain.AttrAge, true},
	{"gender", domain.AttrGender, true},
	{"cholesterol", domain.AttrCholesterol, true},
	{"bloodPressure", domain.AttrBloodPressure, true},
	{"heartRate", domain.AttrHeartRate, true},
	{"smoking", domain.AttrSmoking, false},
	{"alcoholIntake", domain.AttrAlcoholIntake, false},
	{"exerciseHours", domain.AttrExerciseHours, false},
	{"familyHistory", domain.AttrFamilyHistory, false},
	{"diabetes", domain.AttrDiabetes, false},
	{"obesity", domain.AttrObesity, false},
	{"stressLevel", domain.AttrStressLevel, false},
	{"bloodSugar", domain.AttrBloodSugar, false},
	{"exerciseInducedAngina", domain.AttrExerciseInducedAngina, false},
	{"chestPainType", domain.AttrChestPainType, false},
}

// toPatientRecord maps a decoded request body onto attribute names. Unknown
// keys are ignored; a required attribute that is absent or null is a
// *domain.ValidationError.
func toPatientRecord(body map[string]any) (domain.PatientRecord, error) {
	record := make(domain.PatientRecord, len(predictFields))
	for _, f := range predictFields {
		if v, ok := body[f.JSON]; ok && v != nil {
			record[f.Attribute] = v
		}
	}

	for _, f := range predictFields {
		if f.Required && !record.Has(f.Attribute) {
			return nil, domain.NewValidationError(f.Attribute, "Missing required field: "+f.Attribute, nil)
		}
	}
	return record, nil
}

// toRequestKeys renames attribute-keyed values to their JSON body keys.
func toRequestKeys(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for _, f := range predictFields {
		if v, ok := values[f.Attribute]; ok {
			out[f.JSON] = v
		}
	}
	return out
}
