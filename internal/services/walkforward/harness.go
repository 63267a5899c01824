package walkforward

import (
	"fmt"
	"math"
	"time"

	"TrendLab/internal/domain/models"
	"TrendLab/internal/domain/service"
	"TrendLab/internal/services/labels"
)

// a validation month is a fixed 30-day window, not a calendar month
const monthWindow = 30 * 24 * time.Hour

// Config controls the walk-forward schedule and the accept gate.
type Config struct {
	// TrainWindowMonths is the training span added per fold; the train set
	// expands, it never slides.
	TrainWindowMonths int
	// TestWindowMonths is the out-of-sample span scored after each train set.
	TestWindowMonths int
	// MaxFolds caps the schedule; 0 means run until data is exhausted.
	MaxFolds int
	// MinTestSamples skips folds whose test window is too thin to score.
	MinTestSamples int
	// DecisionThreshold converts probabilities to class predictions for
	// evaluation metrics.
	DecisionThreshold float64
	// TradingThreshold is the higher confidence bar for simulated trades.
	TradingThreshold float64
	// AcceptAccuracy is the mean fold accuracy required for ACCEPT.
	AcceptAccuracy float64
	// Simulation selects the trading P&L mode (realized or coinflip).
	Simulation string
	// Seed drives the coinflip simulator.
	Seed int64
}

// DefaultConfig returns the production validation schedule.
func DefaultConfig() Config {
	return Config{
		TrainWindowMonths: 3,
		TestWindowMonths:  1,
		MinTestSamples:    100,
		DecisionThreshold: 0.5,
		TradingThreshold:  0.72,
		AcceptAccuracy:    0.55,
		Simulation:        SimRealized,
	}
}

// Sample is one trainable bar: its feature vector, binary label and the
// labeling metadata the trading simulator needs.
type Sample struct {
	Timestamp time.Time
	Features  []float64
	Label     int
	Record    labels.Record
}

// Prediction is one pooled out-of-sample prediction, kept for downstream
// session analysis.
type Prediction struct {
	Timestamp time.Time
	Proba     float64
	Label     int
}

// Result is the full outcome of a validation run. FinalScaler and FinalModel
// are only set when the gate accepts.
type Result struct {
	Report      *models.ValidationReport
	Predictions []Prediction
	FinalScaler *Scaler
	FinalModel  service.Estimator
}

// Harness runs expanding-window walk-forward validation over a labeled
// dataset.
type Harness struct {
	cfg     Config
	factory service.EstimatorFactory
	columns []string
	sim     *TradeSim

	thresholdPips float64
}

// NewHarness builds a harness. columns names the feature order of every
// Sample; thresholdPips is the labeler's continuation threshold, reused by
// the realized trading simulator.
func NewHarness(cfg Config, factory service.EstimatorFactory, columns []string, thresholdPips float64) *Harness {
	return &Harness{
		cfg:           cfg,
		factory:       factory,
		columns:       columns,
		sim:           NewTradeSim(cfg.Simulation, cfg.TradingThreshold, thresholdPips, cfg.Seed),
		thresholdPips: thresholdPips,
	}
}

// Run executes the fold schedule and the accept gate. Samples must be sorted
// by timestamp; invalid labels are dropped up front so they never count
// toward windows or metrics.
func (h *Harness) Run(symbol string, samples []Sample) (*Result, error) {
	valid := samples[:0:0]
	for _, s := range samples {
		if s.Label == labels.LabelPositive || s.Label == labels.LabelNegative {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return nil, fmt.Errorf("walkforward: no valid samples for %s", symbol)
	}
	if h.cfg.TrainWindowMonths <= 0 || h.cfg.TestWindowMonths <= 0 {
		return nil, fmt.Errorf("walkforward: non-positive window config")
	}

	report := &models.ValidationReport{
		Symbol:      symbol,
		GeneratedAt: time.Now().UTC(),
	}
	res := &Result{Report: report}

	start := valid[0].Timestamp
	end := valid[len(valid)-1].Timestamp
	trainSpan := time.Duration(h.cfg.TrainWindowMonths) * monthWindow
	testSpan := time.Duration(h.cfg.TestWindowMonths) * monthWindow

	var pooledPnL []float64
	for fold := 1; ; fold++ {
		if h.cfg.MaxFolds > 0 && fold > h.cfg.MaxFolds {
			break
		}
		trainEnd := start.Add(time.Duration(fold) * trainSpan)
		testEnd := trainEnd.Add(testSpan)
		if !trainEnd.Before(end) {
			break
		}

		train := samplesIn(valid, start, trainEnd)
		test := samplesIn(valid, trainEnd, testEnd)
		if len(test) < h.cfg.MinTestSamples {
			report.SkippedFolds++
			continue
		}

		fr, probs, err := h.scoreFold(fold, train, test)
		if err != nil {
			return nil, fmt.Errorf("walkforward fold %d: %w", fold, err)
		}

		stats, pnl := h.sim.Run(probs, recordsOf(test))
		fr.Trading = stats
		pooledPnL = append(pooledPnL, pnl...)

		report.Folds = append(report.Folds, *fr)
		for i, s := range test {
			res.Predictions = append(res.Predictions, Prediction{
				Timestamp: s.Timestamp,
				Proba:     probs[i],
				Label:     s.Label,
			})
		}
	}

	report.Mean, report.Std = aggregate(report.Folds)
	report.Trading = Summarize(pooledPnL)

	if len(report.Folds) == 0 || report.Mean.Accuracy < h.cfg.AcceptAccuracy {
		report.Decision = models.DecisionReject
		return res, nil
	}
	report.Decision = models.DecisionAccept

	if err := h.refit(res, valid); err != nil {
		return nil, fmt.Errorf("walkforward refit: %w", err)
	}
	return res, nil
}

func (h *Harness) scoreFold(fold int, train, test []Sample) (*models.FoldReport, []float64, error) {
	scaler, err := FitScaler(featuresOf(train))
	if err != nil {
		return nil, nil, err
	}
	model := h.factory()
	if err := model.Fit(scaler.Transform(featuresOf(train)), labelsOf(train)); err != nil {
		return nil, nil, fmt.Errorf("fit: %w", err)
	}
	probs, err := model.PredictProba(scaler.Transform(featuresOf(test)))
	if err != nil {
		return nil, nil, fmt.Errorf("predict: %w", err)
	}

	fr := &models.FoldReport{
		Fold:         fold,
		TrainStart:   train[0].Timestamp,
		TrainEnd:     train[len(train)-1].Timestamp,
		TestStart:    test[0].Timestamp,
		TestEnd:      test[len(test)-1].Timestamp,
		TrainSamples: len(train),
		TestSamples:  len(test),
		Metrics:      Evaluate(labelsOf(test), probs, h.cfg.DecisionThreshold),
	}
	return fr, probs, nil
}

// refit trains the deployable model and scaler on the full dataset once the
// gate has accepted.
func (h *Harness) refit(res *Result, valid []Sample) error {
	scaler, err := FitScaler(featuresOf(valid))
	if err != nil {
		return err
	}
	model := h.factory()
	if err := model.Fit(scaler.Transform(featuresOf(valid)), labelsOf(valid)); err != nil {
		return err
	}
	res.FinalScaler = scaler
	res.FinalModel = model
	res.Report.Scaler = scaler.Params(h.columns)
	if ranker, ok := model.(service.FeatureRanker); ok {
		res.Report.FeatureImportance = ranker.FeatureImportances()
	}
	return nil
}

// samplesIn returns the samples with from <= Timestamp < to.
func samplesIn(samples []Sample, from, to time.Time) []Sample {
	var out []Sample
	for _, s := range samples {
		if !s.Timestamp.Before(from) && s.Timestamp.Before(to) {
			out = append(out, s)
		}
	}
	return out
}

func featuresOf(samples []Sample) [][]float64 {
	out := make([][]float64, len(samples))
	for i, s := range samples {
		out[i] = s.Features
	}
	return out
}

func labelsOf(samples []Sample) []int {
	out := make([]int, len(samples))
	for i, s := range samples {
		out[i] = s.Label
	}
	return out
}

func recordsOf(samples []Sample) []labels.Record {
	out := make([]labels.Record, len(samples))
	for i, s := range samples {
		out[i] = s.Record
	}
	return out
}

// aggregate computes the mean and population std of each metric across folds.
func aggregate(folds []models.FoldReport) (models.EvalMetrics, models.EvalMetrics) {
	if len(folds) == 0 {
		return models.EvalMetrics{}, models.EvalMetrics{}
	}
	pick := func(f models.FoldReport) []float64 {
		m := f.Metrics
		return []float64{m.Accuracy, m.Precision, m.Recall, m.F1, m.ROCAUC}
	}

	n := float64(len(folds))
	sums := make([]float64, 5)
	for _, f := range folds {
		for i, v := range pick(f) {
			sums[i] += v
		}
	}
	means := make([]float64, 5)
	for i := range sums {
		means[i] = sums[i] / n
	}
	vars := make([]float64, 5)
	for _, f := range folds {
		for i, v := range pick(f) {
			d := v - means[i]
			vars[i] += d * d
		}
	}
	stds := make([]float64, 5)
	for i := range vars {
		stds[i] = math.Sqrt(vars[i] / n)
	}

	mean := models.EvalMetrics{Accuracy: means[0], Precision: means[1], Recall: means[2], F1: means[3], ROCAUC: means[4]}
	std := models.EvalMetrics{Accuracy: stds[0], Precision: stds[1], Recall: stds[2], F1: stds[3], ROCAUC: stds[4]}
	return mean, std
}
