package indicators

import (
	"math"

	"TrendLab/internal/domain/models"
)

// TrueRange returns the per-bar true range:
// max(high-low, |high-prevClose|, |low-prevClose|).
// At bar 0 there is no previous close, so only high-low applies.
func TrueRange(candles []models.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		hl := c.High - c.Low
		if i == 0 {
			out[i] = hl
			continue
		}
		prev := candles[i-1].Close
		out[i] = math.Max(hl, math.Max(math.Abs(c.High-prev), math.Abs(c.Low-prev)))
	}
	return out
}

// ATR returns the rolling mean of true range over period bars.
func ATR(candles []models.Candle, period int) []float64 {
	return RollingMean(TrueRange(candles), period)
}
