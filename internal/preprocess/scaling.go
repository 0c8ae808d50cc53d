package preprocess

import (
	"fmt"
	"math"
	"strconv"
)

// Scaler holds the standardization parameters of one numeric attribute.
type Scaler struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// Apply standardizes v. A zero deviation leaves the centered value unscaled.
func (s Scaler) Apply(v float64) float64 {
	std := s.Std
	if std == 0 {
		std = 1
	}
	return (v - s.Mean) / std
}

// ScalingParameters maps numeric attributes to their scalers.
type ScalingParameters map[string]Scaler

// FitScalingParameters computes mean and population standard deviation for
// every attribute. The fit is all-or-nothing: a missing or non-numeric
// column fails the whole fit.
func FitScalingParameters(ds *ReferenceDataset, attributes []string) (ScalingParameters, error) {
	params := make(ScalingParameters, len(attributes))
	for _, attr := range attributes {
		cells, ok := ds.Column(attr)
		if !ok {
			return nil, fmt.Errorf("column %q missing from reference dataset", attr)
		}
		if len(cells) == 0 {
			return nil, fmt.Errorf("column %q has no values", attr)
		}

		values := make([]float64, len(cells))
		for i, cell := range cells {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", attr, err)
			}
			values[i] = v
		}
		params[attr] = fitScaler(values)
	}
	return params, nil
}

func fitScaler(values []float64) Scaler {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return Scaler{Mean: mean, Std: math.Sqrt(sq / float64(len(values)))}
}
