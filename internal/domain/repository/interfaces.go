package repository

import (
	"context"
	"errors"

	"TrendLab/internal/domain/models"
)

// ErrCacheMiss is returned by ReportCache when no entry exists.
var ErrCacheMiss = errors.New("cache miss")

// CandleSource supplies a time-ordered candle history. Implementations may
// read from ClickHouse, a CSV export, or a synthetic generator; the core
// only requires the stated columns and strict ordering.
type CandleSource interface {
	Load(ctx context.Context) ([]models.Candle, error)
}

// CandleStream delivers finished candles one bar at a time for the live
// inference path.
type CandleStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Candle, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// ReportSink publishes fold reports and the final gate decision for
// downstream consumers (dashboards, exporters).
type ReportSink interface {
	PublishFold(ctx context.Context, symbol string, fold models.FoldReport) error
	PublishDecision(ctx context.Context, report *models.ValidationReport) error
	Close() error
}

// ReportCache caches the latest validation report per symbol.
type ReportCache interface {
	SetReport(ctx context.Context, report *models.ValidationReport) error
	GetReport(ctx context.Context, symbol string) (*models.ValidationReport, error)
	Close() error
}

// Metrics records pipeline observability counters and timings.
type Metrics interface {
	RecordCandlesLoaded(source string, n int)
	RecordSamplesLabeled(valid, invalid int)
	RecordFoldScored(result string)
	RecordStageDuration(stage string, seconds float64)
	RecordGateDecision(decision string)
	RecordLivePrediction(symbol string, proba float64)
}
