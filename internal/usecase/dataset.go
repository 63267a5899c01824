package usecase

import (
	"context"
	"fmt"
	"time"

	"TrendLab/internal/domain/models"
	drepo "TrendLab/internal/domain/repository"
	"TrendLab/internal/services/features"
	"TrendLab/internal/services/labels"
	"TrendLab/internal/services/walkforward"
	applogger "TrendLab/pkg/logger"
)

// Dataset is the fully prepared training input: raw candles, the feature
// frame, per-bar label records, and the flattened samples the harness
// consumes.
type Dataset struct {
	Candles []models.Candle
	Frame   *features.Frame
	Records []labels.Record
	Samples []walkforward.Sample
	Stats   *models.DatasetStats
}

// DatasetBuilder loads candles and turns them into a labeled dataset.
type DatasetBuilder struct {
	source     drepo.CandleSource
	sourceName string
	symbol     string
	builder    *features.Builder
	generator  *labels.Generator
	metrics    drepo.Metrics
	logger     *applogger.Logger
}

// NewDatasetBuilder creates a dataset builder.
func NewDatasetBuilder(
	source drepo.CandleSource,
	sourceName, symbol string,
	builder *features.Builder,
	generator *labels.Generator,
	metrics drepo.Metrics,
	logger *applogger.Logger,
) *DatasetBuilder {
	return &DatasetBuilder{
		source:     source,
		sourceName: sourceName,
		symbol:     symbol,
		builder:    builder,
		generator:  generator,
		metrics:    metrics,
		logger:     logger,
	}
}

// Build runs load -> features -> labels and assembles harness samples.
func (b *DatasetBuilder) Build(ctx context.Context) (*Dataset, error) {
	start := time.Now()
	candles, err := b.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load candles: %w", err)
	}
	b.metrics.RecordCandlesLoaded(b.sourceName, len(candles))
	b.metrics.RecordStageDuration("load", time.Since(start).Seconds())
	b.logger.Info("candles loaded",
		applogger.String("source", b.sourceName),
		applogger.String("symbol", b.symbol),
		applogger.Int("candles", len(candles)))

	start = time.Now()
	frame, err := b.builder.Build(candles)
	if err != nil {
		return nil, fmt.Errorf("build features: %w", err)
	}
	b.metrics.RecordStageDuration("features", time.Since(start).Seconds())

	start = time.Now()
	records, err := b.generator.Generate(candles, frame.PriceKumoDistance, frame.ATR)
	if err != nil {
		return nil, fmt.Errorf("generate labels: %w", err)
	}
	b.metrics.RecordStageDuration("labels", time.Since(start).Seconds())

	samples := make([]walkforward.Sample, len(candles))
	valid := 0
	for i := range candles {
		samples[i] = walkforward.Sample{
			Timestamp: candles[i].Timestamp,
			Features:  frame.Vector(i),
			Label:     records[i].Label,
			Record:    records[i],
		}
		if records[i].Valid() {
			valid++
		}
	}
	b.metrics.RecordSamplesLabeled(valid, len(candles)-valid)

	stats := labels.Statistics(records)
	b.logger.Info("dataset labeled",
		applogger.Int("valid", stats.Total),
		applogger.Int("positive", stats.Positive),
		applogger.Float64("positive_rate", stats.PositiveRate),
		applogger.Float64("class_balance", stats.ClassBalance))

	return &Dataset{
		Candles: candles,
		Frame:   frame,
		Records: records,
		Samples: samples,
		Stats: &models.DatasetStats{
			Symbol:       b.symbol,
			Candles:      len(candles),
			From:         candles[0].Timestamp,
			To:           candles[len(candles)-1].Timestamp,
			ValidSamples: stats.Total,
			Positive:     stats.Positive,
			Negative:     stats.Negative,
			PositiveRate: stats.PositiveRate,
			ClassBalance: stats.ClassBalance,
		},
	}, nil
}
