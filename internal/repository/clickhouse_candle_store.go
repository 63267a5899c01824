package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"TrendLab/internal/domain/models"
	"TrendLab/internal/domain/repository"
)

// ClickHouseCandleStore implements CandleSource backed by a ClickHouse
// candles table. It can also persist candles, which the synthetic and stream
// paths use to build up history.
type ClickHouseCandleStore struct {
	db     *sql.DB
	table  string
	symbol string
}

// NewClickHouseCandleStore creates a ClickHouse candle store.
func NewClickHouseCandleStore(db *sql.DB, table, symbol string) *ClickHouseCandleStore {
	return &ClickHouseCandleStore{db: db, table: table, symbol: symbol}
}

// SchemaStatements returns idempotent DDL for the candles table.
func SchemaStatements(database, table string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
			symbol LowCardinality(String),
			ts DateTime64(3, 'UTC'),
			open Float64,
			high Float64,
			low Float64,
			close Float64,
			tick_volume Int64,
			spread Float64
		) ENGINE = ReplacingMergeTree
		ORDER BY (symbol, ts)`, database, table),
	}
}

// Load reads the full ordered candle history for the store's symbol.
func (s *ClickHouseCandleStore) Load(ctx context.Context) ([]models.Candle, error) {
	q := fmt.Sprintf(
		"SELECT ts, open, high, low, close, tick_volume, spread FROM %s WHERE symbol = ? ORDER BY ts ASC",
		s.table)
	rows, err := s.db.QueryContext(ctx, q, s.symbol)
	if err != nil {
		return nil, fmt.Errorf("query candles: %w", err)
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		var ts time.Time
		if err := rows.Scan(&ts, &c.Open, &c.High, &c.Low, &c.Close, &c.TickVolume, &c.Spread); err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		c.Timestamp = ts.UTC()
		candles = append(candles, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read candles: %w", err)
	}
	if err := models.ValidateSeries(candles); err != nil {
		return nil, fmt.Errorf("clickhouse candles: %w", err)
	}
	return candles, nil
}

// StoreBatch inserts candles in chunks to limit round-trips.
func (s *ClickHouseCandleStore) StoreBatch(ctx context.Context, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	const chunkSize = 2000
	for start := 0; start < len(candles); start += chunkSize {
		end := start + chunkSize
		if end > len(candles) {
			end = len(candles)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*8)
		for _, c := range candles[start:end] {
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				s.symbol,
				c.Timestamp,
				c.Open,
				c.High,
				c.Low,
				c.Close,
				c.TickVolume,
				c.Spread,
			)
		}
		q := fmt.Sprintf(
			"INSERT INTO %s (symbol, ts, open, high, low, close, tick_volume, spread) VALUES %s",
			s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("insert candles: %w", err)
		}
	}
	return nil
}

// Health performs a connectivity check.
func (s *ClickHouseCandleStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

var _ repository.CandleSource = (*ClickHouseCandleStore)(nil)
