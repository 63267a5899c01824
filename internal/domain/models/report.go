package models

import "time"

// EvalMetrics holds classification metrics for one evaluation pass.
type EvalMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	ROCAUC    float64 `json:"roc_auc"`
}

// TradingStats holds simulated trading statistics for predicted-positive
// bars. These are sanity-check figures, not real market outcomes.
type TradingStats struct {
	Sharpe      float64 `json:"sharpe"`
	MaxDrawdown float64 `json:"max_drawdown"`
	WinRate     float64 `json:"win_rate"`
	Trades      int     `json:"trades"`
	TotalPnL    float64 `json:"total_pnl"`
}

// FoldReport describes one scored walk-forward fold. Folds are ephemeral
// within a run but published to the report sink for downstream dashboards.
type FoldReport struct {
	Fold         int          `json:"fold"`
	TrainStart   time.Time    `json:"train_start"`
	TrainEnd     time.Time    `json:"train_end"`
	TestStart    time.Time    `json:"test_start"`
	TestEnd      time.Time    `json:"test_end"`
	TrainSamples int          `json:"train_samples"`
	TestSamples  int          `json:"test_samples"`
	Metrics      EvalMetrics  `json:"metrics"`
	Trading      TradingStats `json:"trading"`
}

// Gate decision values for a validation run.
const (
	DecisionAccept = "ACCEPT"
	DecisionReject = "REJECT"
)

// ScalerParams holds standardization parameters aligned to the feature
// schema order. Consumers must apply (x - mean) / std per feature.
type ScalerParams struct {
	Columns []string  `json:"columns"`
	Means   []float64 `json:"means"`
	Stds    []float64 `json:"stds"`
}

// ValidationReport is the aggregate outcome of a walk-forward run.
type ValidationReport struct {
	Symbol            string        `json:"symbol"`
	GeneratedAt       time.Time     `json:"generated_at"`
	Folds             []FoldReport  `json:"folds"`
	SkippedFolds      int           `json:"skipped_folds"`
	Mean              EvalMetrics   `json:"mean"`
	Std               EvalMetrics   `json:"std"`
	Trading           TradingStats  `json:"trading"`
	Decision          string        `json:"decision"`
	Scaler            *ScalerParams `json:"scaler,omitempty"`
	FeatureImportance []float64     `json:"feature_importance,omitempty"`
}

// DatasetStats summarizes a labeled dataset.
type DatasetStats struct {
	Symbol       string    `json:"symbol"`
	Candles      int       `json:"candles"`
	From         time.Time `json:"from"`
	To           time.Time `json:"to"`
	ValidSamples int       `json:"valid_samples"`
	Positive     int       `json:"positive"`
	Negative     int       `json:"negative"`
	PositiveRate float64   `json:"positive_rate"`
	ClassBalance float64   `json:"class_balance"`
}

// LivePrediction is the per-bar output of the live inference path.
type LivePrediction struct {
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
	Proba     float64   `json:"proba"`
	Regime    int       `json:"regime"`
	Close     float64   `json:"close"`
}
