package usecase

import (
	"context"
	"fmt"
	"sync"

	"TrendLab/internal/domain/models"
	drepo "TrendLab/internal/domain/repository"
	"TrendLab/internal/domain/service"
	"TrendLab/internal/services/features"
	"TrendLab/internal/services/walkforward"
	applogger "TrendLab/pkg/logger"
)

// minimum history for every indicator column to be defined
const defaultMaxHistory = 512

// LiveEngine scores each finished candle from the stream with the accepted
// model. It only runs after a validation run ended in ACCEPT; the engine
// holds that run's scaler and model.
type LiveEngine struct {
	stream  drepo.CandleStream
	builder *features.Builder
	metrics drepo.Metrics
	logger  *applogger.Logger
	symbol  string

	regimeIdx  int
	maxHistory int

	mu      sync.RWMutex
	scaler  *walkforward.Scaler
	model   service.Estimator
	history []models.Candle
	last    *models.LivePrediction
}

// NewLiveEngine creates a live inference engine.
func NewLiveEngine(
	stream drepo.CandleStream,
	builder *features.Builder,
	metrics drepo.Metrics,
	logger *applogger.Logger,
	symbol string,
) (*LiveEngine, error) {
	regimeIdx, err := features.NewSchema().Index(features.ColRegimeFlag)
	if err != nil {
		return nil, err
	}
	return &LiveEngine{
		stream:     stream,
		builder:    builder,
		metrics:    metrics,
		logger:     logger,
		symbol:     symbol,
		regimeIdx:  regimeIdx,
		maxHistory: defaultMaxHistory,
	}, nil
}

// Arm installs the accepted model and seeds price history so the first live
// bar already has fully warmed-up indicators.
func (e *LiveEngine) Arm(scaler *walkforward.Scaler, model service.Estimator, warmup []models.Candle) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scaler = scaler
	e.model = model
	if len(warmup) > e.maxHistory {
		warmup = warmup[len(warmup)-e.maxHistory:]
	}
	e.history = append(e.history[:0], warmup...)
}

// Armed reports whether an accepted model is installed.
func (e *LiveEngine) Armed() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.model != nil
}

// Start consumes the stream until the context ends, reconnecting on read
// failures.
func (e *LiveEngine) Start(ctx context.Context) error {
	if !e.Armed() {
		return fmt.Errorf("live engine: no accepted model installed")
	}
	if err := e.stream.Connect(ctx); err != nil {
		return err
	}
	if err := e.stream.Subscribe(ctx); err != nil {
		return err
	}

	for {
		candles, errs := e.stream.Read(ctx)
	consume:
		for {
			select {
			case <-ctx.Done():
				return e.stream.Close()
			case candle, ok := <-candles:
				if !ok {
					break consume
				}
				if _, err := e.OnCandle(ctx, candle); err != nil {
					e.logger.Warn("live prediction failed", applogger.Error(err))
				}
			case err, ok := <-errs:
				if !ok {
					break consume
				}
				e.logger.Warn("stream read error", applogger.Error(err))
				break consume
			}
		}
		if ctx.Err() != nil {
			return e.stream.Close()
		}
		if err := e.stream.Reconnect(ctx); err != nil {
			return fmt.Errorf("stream reconnect: %w", err)
		}
		e.logger.Info("stream reconnected", applogger.String("symbol", e.symbol))
	}
}

// OnCandle appends one bar and scores it.
func (e *LiveEngine) OnCandle(ctx context.Context, candle *models.Candle) (*models.LivePrediction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if candle == nil {
		return nil, fmt.Errorf("nil candle")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if n := len(e.history); n > 0 && !candle.Timestamp.After(e.history[n-1].Timestamp) {
		return nil, fmt.Errorf("stale candle %s", candle.Timestamp)
	}
	e.history = append(e.history, *candle)
	if len(e.history) > e.maxHistory {
		e.history = e.history[len(e.history)-e.maxHistory:]
	}

	vector, err := e.builder.AssembleLatest(e.history)
	if err != nil {
		return nil, fmt.Errorf("assemble features: %w", err)
	}
	probs, err := e.model.PredictProba([][]float64{e.scaler.Apply(vector)})
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}

	pred := &models.LivePrediction{
		Symbol:    e.symbol,
		Timestamp: candle.Timestamp,
		Proba:     probs[0],
		Regime:    int(vector[e.regimeIdx]),
		Close:     candle.Close,
	}
	e.last = pred
	e.metrics.RecordLivePrediction(e.symbol, pred.Proba)
	e.logger.Debug("live prediction",
		applogger.String("symbol", e.symbol),
		applogger.Float64("proba", pred.Proba),
		applogger.Int("regime", pred.Regime))
	return pred, nil
}

// Last returns the most recent prediction, or nil.
func (e *LiveEngine) Last() *models.LivePrediction {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}
