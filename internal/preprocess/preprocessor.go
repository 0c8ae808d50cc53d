package preprocess

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/heart-risk-predictor/internal/domain"
)

// Preprocessor encodes, scales and orders patient attributes. Its tables are
// fixed at construction and safe for concurrent use.
type Preprocessor struct {
	encodings EncodingTable
	scaling   ScalingParameters
}

// New creates a preprocessor from already fitted tables. Either may be nil.
func New(encodings EncodingTable, scaling ScalingParameters) *Preprocessor {
	if encodings == nil {
		encodings = EncodingTable{}
	}
	return &Preprocessor{encodings: encodings, scaling: scaling}
}

// NewFromDataset fits encoders and scalers on ds. A scaling fit failure is
// logged and leaves numeric values unscaled.
func NewFromDataset(ds *ReferenceDataset, logger *logrus.Logger) *Preprocessor {
	encodings := FitEncodingTable(ds, domain.CategoricalAttributes)

	scaling, err := FitScalingParameters(ds, domain.NumericAttributes)
	if err != nil {
		logger.WithError(err).WithField("dataset", ds.Path).Warn("Could not fit numeric scaling, values will pass through unscaled")
		scaling = nil
	}

	logger.WithFields(logrus.Fields{
		"dataset":  ds.Path,
		"rows":     len(ds.Rows),
		"encoders": len(encodings),
		"scaled":   scaling != nil,
	}).Info("Fitted preprocessors from reference dataset")

	return New(encodings, scaling)
}

// Load fits a preprocessor from the first reference dataset found among
// paths. It never fails: without a dataset the preprocessor passes values
// through unencoded and unscaled.
func Load(paths []string, logger *logrus.Logger) *Preprocessor {
	ds, err := LoadReferenceDataset(paths)
	if err != nil {
		if errors.Is(err, ErrDatasetNotFound) {
			logger.WithField("paths", paths).Warn("Reference dataset not found, using default preprocessing")
		} else {
			logger.WithError(err).Warn("Reference dataset unreadable, using default preprocessing")
		}
		return New(nil, nil)
	}
	return NewFromDataset(ds, logger)
}

// Ready reports whether any categorical encoder was fitted.
func (p *Preprocessor) Ready() bool {
	return len(p.encodings) > 0
}

// Scaled reports whether numeric scaling is active.
func (p *Preprocessor) Scaled() bool {
	return p.scaling != nil
}

// Preprocess returns the feature vector for record in domain.FeatureOrder.
// Errors wrap domain.ErrPreprocessing.
func (p *Preprocessor) Preprocess(record domain.PatientRecord) ([]float64, error) {
	vector := make([]float64, 0, domain.FeatureCount)

	for _, attr := range domain.FeatureOrder {
		raw, ok := record[attr]
		if !ok || raw == nil {
			raw = domain.PreprocessDefaults[attr]
		}

		var (
			value float64
			err   error
		)
		if domain.IsCategorical(attr) {
			value, err = p.encode(attr, raw)
		} else {
			value, err = p.scale(attr, raw)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrPreprocessing, attr, err)
		}
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return nil, fmt.Errorf("%w: %s: non-finite value", domain.ErrPreprocessing, attr)
		}

		vector = append(vector, value)
	}

	return vector, nil
}

func (p *Preprocessor) encode(attr string, raw any) (float64, error) {
	text, _ := domain.PatientRecord{attr: raw}.Text(attr)
	if code, ok := p.encodings.Encode(attr, text); ok {
		return float64(code), nil
	}

	// No encoder for this attribute: only values that are already numeric
	// can reach a model.
	f, err := domain.ToFloat(raw)
	if err != nil {
		return 0, fmt.Errorf("no encoder for category %q", text)
	}
	return f, nil
}

func (p *Preprocessor) scale(attr string, raw any) (float64, error) {
	v, err := domain.ToFloat(raw)
	if err != nil {
		return 0, err
	}
	if s, ok := p.scaling[attr]; ok {
		return s.Apply(v), nil
	}
	return v, nil
}
