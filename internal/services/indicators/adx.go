package indicators

import (
	"math"

	"TrendLab/internal/domain/models"
)

// ADX returns the average directional index over period bars.
//
// Directional movement is taken from consecutive high/low deltas, smoothed
// by ATR-normalized rolling means into +DI and -DI, combined into
// DX = 100 * |+DI - -DI| / (+DI + -DI) and smoothed again over period bars.
// A zero DI sum makes DX undefined (NaN), not an error; the NaN propagates
// through the final smoothing like any other missing value.
func ADX(candles []models.Candle, period int) []float64 {
	n := len(candles)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	for i := 1; i < n; i++ {
		up := candles[i].High - candles[i-1].High
		down := candles[i-1].Low - candles[i].Low
		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
	}

	atr := ATR(candles, period)
	plusMean := RollingMean(plusDM, period)
	minusMean := RollingMean(minusDM, period)

	dx := nanSlice(n)
	for i := 0; i < n; i++ {
		if math.IsNaN(atr[i]) || math.IsNaN(plusMean[i]) || math.IsNaN(minusMean[i]) || atr[i] == 0 {
			continue
		}
		plusDI := 100 * plusMean[i] / atr[i]
		minusDI := 100 * minusMean[i] / atr[i]
		sum := plusDI + minusDI
		if sum == 0 {
			continue
		}
		dx[i] = 100 * math.Abs(plusDI-minusDI) / sum
	}

	return RollingMean(dx, period)
}
