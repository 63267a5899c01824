package indicators

import (
	"TrendLab/internal/domain/models"
)

// Ichimoku-style band midpoints. A midpoint over a lookback window is
// (highest high + lowest low) / 2; the two cloud spans are midpoints shifted
// forward by the kijun period, so the value exposed at bar i was computed
// from bars at or before i - kijunPeriod. That lag is causal smoothing, not
// look-ahead.

// Midpoint returns the band midpoint over period bars.
func Midpoint(candles []models.Candle, period int) []float64 {
	highs := make([]float64, len(candles))
	lows := make([]float64, len(candles))
	for i, c := range candles {
		highs[i] = c.High
		lows[i] = c.Low
	}
	hi := RollingMax(highs, period)
	lo := RollingMin(lows, period)
	out := nanSlice(len(candles))
	for i := range out {
		out[i] = (hi[i] + lo[i]) / 2
	}
	return out
}

// CloudSpans returns the two lagged cloud boundaries:
// span A = shift((tenkan + kijun) / 2, kijunPeriod) and
// span B = shift(midpoint(senkouBPeriod), kijunPeriod).
func CloudSpans(candles []models.Candle, tenkan, kijun []float64, senkouBPeriod, kijunPeriod int) (spanA, spanB []float64) {
	a := make([]float64, len(candles))
	for i := range a {
		a[i] = (tenkan[i] + kijun[i]) / 2
	}
	spanA = Shift(a, kijunPeriod)
	spanB = Shift(Midpoint(candles, senkouBPeriod), kijunPeriod)
	return spanA, spanB
}
