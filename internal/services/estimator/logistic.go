package estimator

import (
	"fmt"
	"math"

	"TrendLab/internal/domain/service"
)

// Logistic is an L2-regularized logistic regression trained by full-batch
// gradient descent. It is deterministic for a given dataset, which keeps
// validation runs reproducible, and it satisfies both the Estimator and
// FeatureRanker capabilities.
type Logistic struct {
	LearningRate float64
	Epochs       int
	L2           float64

	weights []float64
	bias    float64
}

// New returns a logistic regression with the production hyperparameters.
func New() *Logistic {
	return &Logistic{
		LearningRate: 0.1,
		Epochs:       300,
		L2:           1e-4,
	}
}

// Factory adapts New to the harness's factory signature.
func Factory() service.Estimator { return New() }

// Fit trains on standardized features and binary labels.
func (l *Logistic) Fit(X [][]float64, y []int) error {
	if len(X) == 0 || len(X) != len(y) {
		return fmt.Errorf("logistic fit: %d rows, %d labels", len(X), len(y))
	}
	cols := len(X[0])
	for _, row := range X {
		if len(row) != cols {
			return fmt.Errorf("logistic fit: ragged matrix")
		}
	}
	for _, label := range y {
		if label != 0 && label != 1 {
			return fmt.Errorf("logistic fit: non-binary label %d", label)
		}
	}

	l.weights = make([]float64, cols)
	l.bias = 0
	n := float64(len(X))

	gradW := make([]float64, cols)
	for epoch := 0; epoch < l.Epochs; epoch++ {
		for c := range gradW {
			gradW[c] = 0
		}
		gradB := 0.0
		for i, row := range X {
			err := sigmoid(l.score(row)) - float64(y[i])
			for c, v := range row {
				gradW[c] += err * v
			}
			gradB += err
		}
		for c := range l.weights {
			l.weights[c] -= l.LearningRate * (gradW[c]/n + l.L2*l.weights[c])
		}
		l.bias -= l.LearningRate * gradB / n
	}
	return nil
}

// PredictProba returns the positive-class probability per row.
func (l *Logistic) PredictProba(X [][]float64) ([]float64, error) {
	if l.weights == nil {
		return nil, fmt.Errorf("logistic predict: model not fitted")
	}
	out := make([]float64, len(X))
	for i, row := range X {
		if len(row) != len(l.weights) {
			return nil, fmt.Errorf("logistic predict: row %d has %d features, want %d", i, len(row), len(l.weights))
		}
		out[i] = sigmoid(l.score(row))
	}
	return out, nil
}

// FeatureImportances reports normalized absolute weights. On standardized
// inputs these rank features by influence on the decision.
func (l *Logistic) FeatureImportances() []float64 {
	if l.weights == nil {
		return nil
	}
	out := make([]float64, len(l.weights))
	var total float64
	for i, w := range l.weights {
		out[i] = math.Abs(w)
		total += out[i]
	}
	if total > 0 {
		for i := range out {
			out[i] /= total
		}
	}
	return out
}

func (l *Logistic) score(row []float64) float64 {
	s := l.bias
	for c, v := range row {
		s += l.weights[c] * v
	}
	return s
}

func sigmoid(x float64) float64 {
	// clamp to keep exp well-conditioned at extreme scores
	if x > 35 {
		return 1
	}
	if x < -35 {
		return 0
	}
	return 1 / (1 + math.Exp(-x))
}
