package dataset

import (
	"errors"
	"math"
)

// StandardScaler centers features to zero mean and unit variance. Fit on
// the training split, then apply to validation and live data with the
// same statistics.
type StandardScaler struct {
	Mean []float64
	Std  []float64
}

// Fit computes per-column mean and standard deviation.
func (s *StandardScaler) Fit(data [][]float64) error {
	if len(data) == 0 {
		return errors.New("empty data")
	}

	nFeatures := len(data[0])
	s.Mean = make([]float64, nFeatures)
	s.Std = make([]float64, nFeatures)

	for _, row := range data {
		for j, v := range row {
			s.Mean[j] += v
		}
	}
	n := float64(len(data))
	for j := range s.Mean {
		s.Mean[j] /= n
	}

	for _, row := range data {
		for j, v := range row {
			d := v - s.Mean[j]
			s.Std[j] += d * d
		}
	}
	for j := range s.Std {
		s.Std[j] = math.Sqrt(s.Std[j] / n)
		if s.Std[j] == 0 {
			// Constant columns pass through unscaled.
			s.Std[j] = 1
		}
	}

	return nil
}

// Transform scales data in place and returns it.
func (s *StandardScaler) Transform(data [][]float64) [][]float64 {
	for _, row := range data {
		for j := range row {
			row[j] = (row[j] - s.Mean[j]) / s.Std[j]
		}
	}
	return data
}

// TransformOne scales a single vector in place and returns it.
func (s *StandardScaler) TransformOne(row []float64) []float64 {
	for j := range row {
		row[j] = (row[j] - s.Mean[j]) / s.Std[j]
	}
	return row
}

// FitTransform fits the scaler and scales the data.
func (s *StandardScaler) FitTransform(data [][]float64) ([][]float64, error) {
	if err := s.Fit(data); err != nil {
		return nil, err
	}
	return s.Transform(data), nil
}
