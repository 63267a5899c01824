package walkforward

import (
	"fmt"
	"math"

	"TrendLab/internal/domain/models"
)

// Scaler standardizes features to zero mean and unit variance. It is always
// fit on training data only and applied unchanged to test data, so no test
// statistics ever leak into a fold.
type Scaler struct {
	Means []float64
	Stds  []float64
}

// FitScaler computes per-column mean and population standard deviation.
// Columns with zero variance scale by 1 so constant features pass through
// centered instead of dividing by zero.
func FitScaler(X [][]float64) (*Scaler, error) {
	if len(X) == 0 || len(X[0]) == 0 {
		return nil, fmt.Errorf("fit scaler: empty matrix")
	}
	cols := len(X[0])
	means := make([]float64, cols)
	stds := make([]float64, cols)

	for _, row := range X {
		if len(row) != cols {
			return nil, fmt.Errorf("fit scaler: ragged matrix")
		}
		for c, v := range row {
			means[c] += v
		}
	}
	n := float64(len(X))
	for c := range means {
		means[c] /= n
	}
	for _, row := range X {
		for c, v := range row {
			d := v - means[c]
			stds[c] += d * d
		}
	}
	for c := range stds {
		stds[c] = math.Sqrt(stds[c] / n)
		if stds[c] == 0 {
			stds[c] = 1
		}
	}
	return &Scaler{Means: means, Stds: stds}, nil
}

// Apply standardizes a single row.
func (s *Scaler) Apply(row []float64) []float64 {
	out := make([]float64, len(row))
	for c, v := range row {
		out[c] = (v - s.Means[c]) / s.Stds[c]
	}
	return out
}

// Transform standardizes a matrix.
func (s *Scaler) Transform(X [][]float64) [][]float64 {
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = s.Apply(row)
	}
	return out
}

// Params exports the scaler in feature order for external consumers.
func (s *Scaler) Params(columns []string) *models.ScalerParams {
	means := make([]float64, len(s.Means))
	stds := make([]float64, len(s.Stds))
	copy(means, s.Means)
	copy(stds, s.Stds)
	return &models.ScalerParams{Columns: columns, Means: means, Stds: stds}
}
