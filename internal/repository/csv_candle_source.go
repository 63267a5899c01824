package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"TrendLab/internal/domain/models"
	"TrendLab/internal/domain/repository"
)

// candle columns a CSV export must carry; spread is optional
var requiredColumns = []string{"timestamp", "open", "high", "low", "close", "tick_volume"}

// CSVCandleSource implements CandleSource from a broker CSV export.
type CSVCandleSource struct {
	path string
}

// NewCSVCandleSource creates a CSV candle source.
func NewCSVCandleSource(path string) *CSVCandleSource {
	return &CSVCandleSource{path: path}
}

// Load reads and validates the whole file. A missing required column or a
// malformed row fails the load; candle data problems must surface before any
// feature is computed.
func (s *CSVCandleSource) Load(ctx context.Context) ([]models.Candle, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open candles csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("candles csv: missing required column %q", name)
		}
	}
	spreadCol, hasSpread := idx["spread"]

	var candles []models.Candle
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", line, err)
		}

		c, err := parseCandleRow(row, idx, spreadCol, hasSpread)
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", line, err)
		}
		candles = append(candles, c)
	}

	if err := models.ValidateSeries(candles); err != nil {
		return nil, fmt.Errorf("csv candles: %w", err)
	}
	return candles, nil
}

func parseCandleRow(row []string, idx map[string]int, spreadCol int, hasSpread bool) (models.Candle, error) {
	var c models.Candle

	ts, ok := parseTimestamp(row[idx["timestamp"]])
	if !ok {
		return c, fmt.Errorf("unparseable timestamp %q", row[idx["timestamp"]])
	}
	c.Timestamp = ts

	fields := []struct {
		name string
		dst  *float64
	}{
		{"open", &c.Open},
		{"high", &c.High},
		{"low", &c.Low},
		{"close", &c.Close},
		{"tick_volume", &c.TickVolume},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(row[idx[f.name]], 64)
		if err != nil {
			return c, fmt.Errorf("parse %s: %w", f.name, err)
		}
		*f.dst = v
	}

	if hasSpread && spreadCol < len(row) && row[spreadCol] != "" {
		v, err := strconv.ParseFloat(row[spreadCol], 64)
		if err != nil {
			return c, fmt.Errorf("parse spread: %w", err)
		}
		c.Spread = v
	}
	return c, nil
}

func parseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil && unix > 0 {
		return time.Unix(unix, 0).UTC(), true
	}
	return time.Time{}, false
}

var _ repository.CandleSource = (*CSVCandleSource)(nil)
