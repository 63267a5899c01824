package labels

import (
	"math"
	"testing"
	"time"

	"TrendLab/internal/domain/models"
)

func candlesFromCloses(closes []float64, halfRange float64) []models.Candle {
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

func constSlice(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestFinalWindowAlwaysInvalid(t *testing.T) {
	closes := make([]float64, 50)
	for i := range closes {
		closes[i] = 150 + float64(i)
	}
	candles := candlesFromCloses(closes, 0.05)
	g := NewGenerator(DefaultParams())

	recs, err := g.Generate(candles, constSlice(50, 2.0), constSlice(50, 0.1))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for i := 50 - g.params.Lookforward; i < 50; i++ {
		if recs[i].Valid() {
			t.Fatalf("bar %d inside final window must be invalid", i)
		}
	}
	if !recs[0].Valid() {
		t.Fatalf("bar 0 with bullish bias and full window should be labeled")
	}
}

func TestNeutralZoneInvariant(t *testing.T) {
	closes := constSlice(40, 150)
	candles := candlesFromCloses(closes, 0.05)
	g := NewGenerator(DefaultParams())

	kumo := make([]float64, 40)
	for i := range kumo {
		// alternate inside and just outside the neutral band
		switch i % 3 {
		case 0:
			kumo[i] = 0.05
		case 1:
			kumo[i] = -0.1
		case 2:
			kumo[i] = 0.2
		}
	}
	recs, err := g.Generate(candles, kumo, constSlice(40, 0.1))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for i, r := range recs {
		if math.Abs(kumo[i]) <= g.params.BiasBand && r.Valid() {
			t.Fatalf("bar %d in neutral zone (%v) must be invalid", i, kumo[i])
		}
	}
}

func TestFlatSeriesNeverContinues(t *testing.T) {
	closes := constSlice(60, 150)
	candles := candlesFromCloses(closes, 0.0)
	g := NewGenerator(DefaultParams())

	recs, err := g.Generate(candles, constSlice(60, 1.0), constSlice(60, 0.1))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	for i := 0; i < 60-g.params.Lookforward; i++ {
		r := recs[i]
		if r.BullishMovePips != 0 || r.BearishMovePips != 0 {
			t.Fatalf("bar %d: flat series produced nonzero move (%v, %v)", i, r.BullishMovePips, r.BearishMovePips)
		}
		if r.Label != LabelNegative {
			t.Fatalf("bar %d: biased flat bar should be labeled 0, got %d", i, r.Label)
		}
	}
}

func TestBearishBiasUsesBearishMove(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 150 - 0.1*float64(i) // falling 10 pips per bar
	}
	candles := candlesFromCloses(closes, 0.0)
	g := NewGenerator(DefaultParams())

	recs, err := g.Generate(candles, constSlice(30, -1.0), constSlice(30, 0.1))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	// over 10 forward bars price falls 100 pips, well past the threshold
	if recs[0].Label != LabelPositive {
		t.Fatalf("expected bearish continuation label 1, got %d", recs[0].Label)
	}
	if recs[0].Bias != BiasBearish {
		t.Fatalf("expected bearish bias, got %d", recs[0].Bias)
	}
}

func TestRiskRewardZeroStop(t *testing.T) {
	closes := constSlice(30, 150)
	candles := candlesFromCloses(closes, 0.0)
	g := NewGenerator(DefaultParams())

	recs, err := g.Generate(candles, constSlice(30, 1.0), constSlice(30, 0.0))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if recs[0].RiskReward != 0 || recs[0].StopPips != 0 {
		t.Fatalf("zero ATR stop must short-circuit risk/reward to 0, got %+v", recs[0])
	}
}

func TestStatistics(t *testing.T) {
	recs := []Record{
		{Label: LabelPositive}, {Label: LabelPositive}, {Label: LabelNegative},
		{Label: LabelInvalid}, {Label: LabelInvalid},
	}
	s := Statistics(recs)
	if s.Total != 3 || s.Positive != 2 || s.Negative != 1 {
		t.Fatalf("unexpected counts %+v", s)
	}
	if math.Abs(s.PositiveRate-2.0/3.0) > 1e-12 {
		t.Fatalf("unexpected positive rate %v", s.PositiveRate)
	}
	if s.ClassBalance != 0.5 {
		t.Fatalf("unexpected class balance %v", s.ClassBalance)
	}
}

func TestLengthMismatchFails(t *testing.T) {
	candles := candlesFromCloses(constSlice(10, 150), 0.05)
	g := NewGenerator(DefaultParams())
	if _, err := g.Generate(candles, constSlice(9, 0), constSlice(10, 0.1)); err == nil {
		t.Fatalf("expected length mismatch error")
	}
}
