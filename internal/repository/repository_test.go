package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"TrendLab/internal/domain/models"
	domainrepo "TrendLab/internal/domain/repository"
)

func TestSyntheticSourceIsDeterministic(t *testing.T) {
	ctx := context.Background()
	a, err := NewSyntheticCandleSource(2000, 42).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	b, err := NewSyntheticCandleSource(2000, 42).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("candle %d differs between seeded runs", i)
		}
	}
	c, err := NewSyntheticCandleSource(2000, 7).Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	same := true
	for i := range a {
		if a[i].Close != c[i].Close {
			same = false
			break
		}
	}
	if same {
		t.Fatalf("different seeds produced identical series")
	}
}

func TestSyntheticSourceProducesValidSeries(t *testing.T) {
	candles, err := NewSyntheticCandleSource(5000, 42).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := models.ValidateSeries(candles); err != nil {
		t.Fatalf("synthetic series invalid: %v", err)
	}
	for i, c := range candles {
		if c.Close < 147.0 || c.Close > 157.0 {
			t.Fatalf("candle %d close %v escaped the price band", i, c.Close)
		}
	}
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candles.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	return path
}

func TestCSVSourceLoads(t *testing.T) {
	path := writeCSV(t, `timestamp,open,high,low,close,tick_volume,spread
2024-01-01 00:00:00,150.00,150.10,149.95,150.05,500,0.02
2024-01-01 00:15:00,150.05,150.20,150.00,150.15,600,0.02
`)
	candles, err := NewCSVCandleSource(path).Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles, got %d", len(candles))
	}
	if candles[0].Close != 150.05 || candles[0].Spread != 0.02 {
		t.Fatalf("unexpected first candle %+v", candles[0])
	}
	if !candles[1].Timestamp.After(candles[0].Timestamp) {
		t.Fatalf("timestamps not increasing")
	}
}

func TestCSVSourceMissingColumnFailsFast(t *testing.T) {
	path := writeCSV(t, `timestamp,open,high,low,close
2024-01-01 00:00:00,150.00,150.10,149.95,150.05
`)
	if _, err := NewCSVCandleSource(path).Load(context.Background()); err == nil {
		t.Fatalf("expected error for missing tick_volume column")
	}
}

func TestCSVSourceMalformedRowFails(t *testing.T) {
	path := writeCSV(t, `timestamp,open,high,low,close,tick_volume
2024-01-01 00:00:00,150.00,150.10,149.95,abc,500
`)
	if _, err := NewCSVCandleSource(path).Load(context.Background()); err == nil {
		t.Fatalf("expected error for malformed close value")
	}
}

func TestCSVSourceUnorderedTimestampsFail(t *testing.T) {
	path := writeCSV(t, `timestamp,open,high,low,close,tick_volume
2024-01-01 00:15:00,150.00,150.10,149.95,150.05,500
2024-01-01 00:00:00,150.05,150.20,150.00,150.15,600
`)
	if _, err := NewCSVCandleSource(path).Load(context.Background()); err == nil {
		t.Fatalf("expected error for unordered timestamps")
	}
}

func TestMemoryReportCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryReportCache()

	if _, err := c.GetReport(ctx, "USDJPY"); err != domainrepo.ErrCacheMiss {
		t.Fatalf("expected cache miss, got %v", err)
	}
	report := &models.ValidationReport{Symbol: "USDJPY", Decision: models.DecisionAccept}
	if err := c.SetReport(ctx, report); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := c.GetReport(ctx, "USDJPY")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Decision != models.DecisionAccept {
		t.Fatalf("unexpected report %+v", got)
	}
}
