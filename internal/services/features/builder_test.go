package features

import (
	"math"
	"testing"
	"time"

	"TrendLab/internal/domain/models"
)

func trendingCandles(n int, step float64) []models.Candle {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]models.Candle, n)
	for i := range out {
		c := 150 + step*float64(i)
		out[i] = models.Candle{
			Timestamp:  start.Add(time.Duration(i) * 15 * time.Minute),
			Open:       c,
			High:       c + 0.05,
			Low:        c - 0.05,
			Close:      c,
			TickVolume: 500,
			Spread:     0.02,
		}
	}
	return out
}

func TestVectorOrderStability(t *testing.T) {
	candles := trendingCandles(300, 0.01)
	b := NewBuilder(NewSchema(), DefaultParams())

	f1, err := b.Build(candles)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	f2, err := b.Build(candles)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for i := 0; i < f1.Len(); i++ {
		v1, v2 := f1.Vector(i), f2.Vector(i)
		if len(v1) != NewSchema().Len() {
			t.Fatalf("vector length %d", len(v1))
		}
		for c := range v1 {
			if v1[c] != v2[c] {
				t.Fatalf("bar %d column %d differs: %v vs %v", i, c, v1[c], v2[c])
			}
		}
	}
}

func TestVectorsAreFinite(t *testing.T) {
	candles := trendingCandles(120, 0.01)
	b := NewBuilder(NewSchema(), DefaultParams())
	f, err := b.Build(candles)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for i := 0; i < f.Len(); i++ {
		for c, v := range f.Vector(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("bar %d column %d not finite: %v", i, c, v)
			}
		}
	}
}

// Changing any candle after bar i must not change bar i's vector, for every
// column except the deliberately replicated lagging-span leak. That one
// column is the reason this regression exists.
func TestCausalityExceptChikouParity(t *testing.T) {
	candles := trendingCandles(300, 0.01)
	b := NewBuilder(NewSchema(), DefaultParams())

	full, err := b.Build(candles)
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	const i = 200
	truncated, err := b.Build(candles[:i+1])
	if err != nil {
		t.Fatalf("build truncated: %v", err)
	}

	chikouIdx, err := NewSchema().Index(ColChikouRelative)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	fv, tv := full.Vector(i), truncated.Vector(i)
	for c := range fv {
		if c == chikouIdx {
			continue
		}
		if fv[c] != tv[c] {
			t.Fatalf("column %d depends on future bars: %v vs %v", c, fv[c], tv[c])
		}
	}
	// parity mode leaks: with the future available the column is nonzero
	if fv[chikouIdx] == tv[chikouIdx] {
		t.Fatalf("expected parity chikou to differ with future bars present")
	}
}

func TestCausalChikouModeIsLeakFree(t *testing.T) {
	candles := trendingCandles(300, 0.01)
	params := DefaultParams()
	params.ChikouParity = false
	b := NewBuilder(NewSchema(), params)

	full, err := b.Build(candles)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	const i = 200
	truncated, err := b.Build(candles[:i+1])
	if err != nil {
		t.Fatalf("build truncated: %v", err)
	}
	fv, tv := full.Vector(i), truncated.Vector(i)
	for c := range fv {
		if fv[c] != tv[c] {
			t.Fatalf("column %d depends on future bars in causal mode", c)
		}
	}
}

func TestAssembleAtMatchesBatch(t *testing.T) {
	candles := trendingCandles(250, 0.01)
	params := DefaultParams()
	params.ChikouParity = false
	b := NewBuilder(NewSchema(), params)

	frame, err := b.Build(candles)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, i := range []int{0, 53, 120, 249} {
		live, err := b.AssembleAt(candles, i)
		if err != nil {
			t.Fatalf("assemble at %d: %v", i, err)
		}
		batch := frame.Vector(i)
		for c := range live {
			if live[c] != batch[c] {
				t.Fatalf("bar %d column %d: live %v batch %v", i, c, live[c], batch[c])
			}
		}
	}
}

func TestKumoDistance(t *testing.T) {
	cases := []struct {
		name                     string
		close, top, bottom, atr  float64
		want                     float64
	}{
		{"inside cloud", 100, 101, 99, 0.5, 0},
		{"on boundary", 101, 101, 99, 0.5, 0},
		{"above", 102, 101, 99, 0.5, 1 / (0.5 + distEps)},
		{"below", 98, 101, 99, 0.5, -1 / (0.5 + distEps)},
	}
	for _, tc := range cases {
		got := KumoDistance(tc.close, tc.top, tc.bottom, tc.atr)
		if math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestRegimeTransitionOnRisingTrend(t *testing.T) {
	candles := trendingCandles(1000, 0.1)
	b := NewBuilder(NewSchema(), DefaultParams())
	f, err := b.Build(candles)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	regime, err := f.Column(ColRegimeFlag)
	if err != nil {
		t.Fatalf("column: %v", err)
	}
	adx := f.ADX

	sawRange, sawTrend := false, false
	for i := range regime {
		if math.IsNaN(adx[i]) {
			if regime[i] != RegimeRange {
				t.Fatalf("bar %d: undefined ADX should default to range regime", i)
			}
			sawRange = true
			continue
		}
		if adx[i] > 25 && regime[i] != RegimeTrend {
			t.Fatalf("bar %d: adx %v but regime %v", i, adx[i], regime[i])
		}
		if regime[i] == RegimeTrend {
			sawTrend = true
		}
	}
	if !sawRange || !sawTrend {
		t.Fatalf("expected regime transition range->trend (range=%v trend=%v)", sawRange, sawTrend)
	}
}

func TestSessionID(t *testing.T) {
	cases := map[int]int{0: SessionAsia, 7: SessionAsia, 8: SessionLondon, 15: SessionLondon, 16: SessionNewYork, 23: SessionNewYork}
	for hour, want := range cases {
		if got := SessionID(hour); got != want {
			t.Fatalf("hour %d: got %d want %d", hour, got, want)
		}
	}
}

func TestSchemaIndexUnknownColumn(t *testing.T) {
	if _, err := NewSchema().Index("no_such_feature"); err == nil {
		t.Fatalf("expected error for unknown column")
	}
}
