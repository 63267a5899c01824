package models

import (
	"fmt"
	"math"
	"time"
)

// Candle represents one fixed-duration OHLCV price bar as delivered by a
// broker terminal or market-data provider. Candles are immutable once
// produced; every downstream stage consumes them read-only.
type Candle struct {
	Timestamp  time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	TickVolume float64
	Spread     float64
}

// Validate checks a single candle for internal consistency.
func (c Candle) Validate() error {
	if c.Timestamp.IsZero() {
		return fmt.Errorf("candle timestamp is zero")
	}
	for name, v := range map[string]float64{
		"open": c.Open, "high": c.High, "low": c.Low, "close": c.Close,
		"tick_volume": c.TickVolume, "spread": c.Spread,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("candle %s is not finite", name)
		}
	}
	if c.Low > math.Min(c.Open, c.Close) {
		return fmt.Errorf("candle low %.5f above min(open, close)", c.Low)
	}
	if c.High < math.Max(c.Open, c.Close) {
		return fmt.Errorf("candle high %.5f below max(open, close)", c.High)
	}
	return nil
}

// ValidateSeries checks an entire candle history before any computation
// begins: non-empty, strictly increasing timestamps, per-candle invariants.
// Malformed input is the one fatal condition in the pipeline.
func ValidateSeries(candles []Candle) error {
	if len(candles) == 0 {
		return fmt.Errorf("empty candle series")
	}
	for i, c := range candles {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("candle %d (%s): %w", i, c.Timestamp.Format(time.RFC3339), err)
		}
		if i > 0 && !candles[i-1].Timestamp.Before(c.Timestamp) {
			return fmt.Errorf("candle %d: timestamp %s not after previous %s",
				i, c.Timestamp.Format(time.RFC3339), candles[i-1].Timestamp.Format(time.RFC3339))
		}
	}
	return nil
}
