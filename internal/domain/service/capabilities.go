package service

// Estimator is the opaque model capability the walk-forward harness trains
// and queries. Any conforming implementation (gradient boosting behind a
// bridge, linear model, neural net) can be substituted; the harness never
// depends on a specific library.
type Estimator interface {
	// Fit trains the model on a feature matrix and binary labels.
	Fit(X [][]float64, y []int) error
	// PredictProba returns the positive-class probability per row.
	PredictProba(X [][]float64) ([]float64, error)
}

// EstimatorFactory creates a fresh, untrained Estimator. The harness trains
// one per fold so no fold ever sees another fold's fitted state.
type EstimatorFactory func() Estimator

// FeatureRanker is an optional Estimator extension exposing per-feature
// importances in schema order, used for final-model introspection only.
type FeatureRanker interface {
	FeatureImportances() []float64
}
