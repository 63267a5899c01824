package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"TrendLab/internal/domain/models"
	drepo "TrendLab/internal/domain/repository"
	"TrendLab/internal/services/sessions"
	"TrendLab/internal/services/walkforward"
	applogger "TrendLab/pkg/logger"
)

// ValidationOutcome bundles everything one validation run produced.
type ValidationOutcome struct {
	Dataset  *Dataset
	Result   *walkforward.Result
	Sessions *models.SessionReport
}

// Validator orchestrates one full walk-forward validation run: dataset
// build, fold scoring, the accept gate, session analysis, and publication.
type Validator struct {
	dataset  *DatasetBuilder
	harness  *walkforward.Harness
	analyzer *sessions.Analyzer
	sink     drepo.ReportSink
	cache    drepo.ReportCache
	metrics  drepo.Metrics
	logger   *applogger.Logger
	symbol   string

	mu     sync.RWMutex
	latest *ValidationOutcome
}

// NewValidator creates a validation orchestrator.
func NewValidator(
	dataset *DatasetBuilder,
	harness *walkforward.Harness,
	analyzer *sessions.Analyzer,
	sink drepo.ReportSink,
	cache drepo.ReportCache,
	metrics drepo.Metrics,
	logger *applogger.Logger,
	symbol string,
) *Validator {
	return &Validator{
		dataset:  dataset,
		harness:  harness,
		analyzer: analyzer,
		sink:     sink,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		symbol:   symbol,
	}
}

// Run executes the pipeline end to end. Publication and caching are
// best-effort: a sink outage does not invalidate a finished run.
func (v *Validator) Run(ctx context.Context) (*ValidationOutcome, error) {
	dataset, err := v.dataset.Build(ctx)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	result, err := v.harness.Run(v.symbol, dataset.Samples)
	if err != nil {
		return nil, fmt.Errorf("walkforward run: %w", err)
	}
	v.metrics.RecordStageDuration("walkforward", time.Since(start).Seconds())

	report := result.Report
	for _, fold := range report.Folds {
		v.metrics.RecordFoldScored("scored")
		if err := v.sink.PublishFold(ctx, v.symbol, fold); err != nil {
			v.logger.Warn("fold publish failed",
				applogger.Int("fold", fold.Fold), applogger.Error(err))
		}
	}
	for i := 0; i < report.SkippedFolds; i++ {
		v.metrics.RecordFoldScored("skipped")
	}
	v.metrics.RecordGateDecision(report.Decision)
	v.logger.Info("validation finished",
		applogger.String("symbol", v.symbol),
		applogger.Int("folds", len(report.Folds)),
		applogger.Int("skipped", report.SkippedFolds),
		applogger.Float64("mean_accuracy", report.Mean.Accuracy),
		applogger.String("decision", report.Decision))

	if err := v.sink.PublishDecision(ctx, report); err != nil {
		v.logger.Warn("decision publish failed", applogger.Error(err))
	}
	if err := v.cache.SetReport(ctx, report); err != nil {
		v.logger.Warn("report cache write failed", applogger.Error(err))
	}

	outcome := &ValidationOutcome{
		Dataset:  dataset,
		Result:   result,
		Sessions: v.analyzer.Analyze(result.Predictions),
	}
	v.mu.Lock()
	v.latest = outcome
	v.mu.Unlock()
	return outcome, nil
}

// Latest returns the most recent outcome, or nil before the first run.
func (v *Validator) Latest() *ValidationOutcome {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.latest
}

// Report returns the cached validation report for a symbol, falling back to
// the in-memory outcome when the cache has no entry.
func (v *Validator) Report(ctx context.Context, symbol string) (*models.ValidationReport, error) {
	report, err := v.cache.GetReport(ctx, symbol)
	if err == nil {
		return report, nil
	}
	if err != drepo.ErrCacheMiss {
		v.logger.Warn("report cache read failed", applogger.Error(err))
	}
	if latest := v.Latest(); latest != nil && latest.Result.Report.Symbol == symbol {
		return latest.Result.Report, nil
	}
	return nil, drepo.ErrCacheMiss
}

// Symbol returns the symbol this validator runs on.
func (v *Validator) Symbol() string { return v.symbol }
