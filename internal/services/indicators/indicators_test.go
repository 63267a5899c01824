package indicators

import (
	"math"
	"testing"
	"time"

	"TrendLab/internal/domain/models"
)

func seriesFromCloses(closes []float64, halfRange float64) []models.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, len(closes))
	for i, c := range closes {
		out[i] = models.Candle{
			Timestamp:  start.Add(time.Duration(i) * 15 * time.Minute),
			Open:       c,
			High:       c + halfRange,
			Low:        c - halfRange,
			Close:      c,
			TickVolume: 100,
		}
	}
	return out
}

func TestMidpointUndefinedBeforeWindow(t *testing.T) {
	candles := seriesFromCloses([]float64{1, 2, 3, 4, 5}, 0.5)
	mid := Midpoint(candles, 3)
	for i := 0; i < 2; i++ {
		if !math.IsNaN(mid[i]) {
			t.Fatalf("expected NaN at %d, got %v", i, mid[i])
		}
	}
	// window [1,2,3]: max high 3.5, min low 0.5 -> midpoint 2
	if mid[2] != 2 {
		t.Fatalf("expected midpoint 2, got %v", mid[2])
	}
	if mid[4] != 4 {
		t.Fatalf("expected midpoint 4, got %v", mid[4])
	}
}

func TestShiftExposesLaggedValues(t *testing.T) {
	v := []float64{1, 2, 3, 4}
	s := Shift(v, 2)
	if !math.IsNaN(s[0]) || !math.IsNaN(s[1]) {
		t.Fatalf("expected NaN prefix, got %v", s[:2])
	}
	if s[2] != 1 || s[3] != 2 {
		t.Fatalf("unexpected shift result %v", s)
	}
}

func TestATRFlatSeries(t *testing.T) {
	candles := seriesFromCloses([]float64{10, 10, 10, 10, 10, 10}, 0.05)
	atr := ATR(candles, 3)
	if !math.IsNaN(atr[1]) {
		t.Fatalf("expected NaN before window, got %v", atr[1])
	}
	// constant close, constant range: TR is 0.1 everywhere
	for i := 2; i < len(atr); i++ {
		if math.Abs(atr[i]-0.1) > 1e-12 {
			t.Fatalf("expected ATR 0.1 at %d, got %v", i, atr[i])
		}
	}
}

func TestADXRisingCloses(t *testing.T) {
	closes := make([]float64, 1000)
	for i := range closes {
		closes[i] = 100 + 0.1*float64(i)
	}
	candles := seriesFromCloses(closes, 0.05)
	adx := ADX(candles, 14)

	// undefined until both smoothing windows fill
	if !math.IsNaN(adx[20]) {
		t.Fatalf("expected NaN at 20, got %v", adx[20])
	}
	last := adx[len(adx)-1]
	if math.IsNaN(last) {
		t.Fatalf("expected defined ADX at tail")
	}
	// a monotone up-trend has only positive directional movement
	if last < 25 {
		t.Fatalf("expected strong trend ADX, got %v", last)
	}
}

func TestADXZeroDirectionalSum(t *testing.T) {
	// flat highs and lows: +DM and -DM are 0 everywhere, DI sum is 0
	candles := seriesFromCloses([]float64{5, 5, 5, 5, 5, 5, 5, 5}, 0.1)
	adx := ADX(candles, 3)
	for i, v := range adx {
		if !math.IsNaN(v) {
			t.Fatalf("expected NaN at %d for zero DI sum, got %v", i, v)
		}
	}
}

func TestRollingMeanPropagatesNaN(t *testing.T) {
	v := []float64{1, math.NaN(), 3, 4, 5}
	m := RollingMean(v, 2)
	if !math.IsNaN(m[1]) || !math.IsNaN(m[2]) {
		t.Fatalf("expected NaN windows, got %v", m)
	}
	if m[3] != 3.5 || m[4] != 4.5 {
		t.Fatalf("unexpected means %v", m)
	}
}
