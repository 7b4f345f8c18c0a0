package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"mockflow/internal/domain/models"
	"mockflow/internal/domain/repository"
)

// ClickHouseFixtureStore implements FixtureStore for ClickHouse.
type ClickHouseFixtureStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseFixtureStore creates ClickHouse fixture storage.
func NewClickHouseFixtureStore(db *sql.DB, table string) repository.FixtureStore {
	return &ClickHouseFixtureStore{db: db, table: table}
}

func (s *ClickHouseFixtureStore) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

func (s *ClickHouseFixtureStore) StoreBatch(ctx context.Context, symbol string, tf repository.Timeframe, candles []models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	// Batch insert using VALUES multi-row to reduce round-trips.
	// Chunk size tuned to 2000 rows per batch.
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
				symbol,
				string(tf),
				c.Timestamp,
				c.Open,
				c.High,
				c.Low,
				c.Close,
				c.Volume,
			)
		}
		q := fmt.Sprintf("INSERT INTO %s (symbol, tf, ts, open, high, low, close, volume) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store fixtures: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseFixtureStore) Query(ctx context.Context, symbol string, tf repository.Timeframe, from, to time.Time, limit int) ([]models.Candle, error) {
	q := fmt.Sprintf("SELECT ts, open, high, low, close, volume FROM %s WHERE symbol = ? AND tf = ? AND ts >= ? AND ts <= ? ORDER BY ts ASC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol, string(tf), from, to, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candles []models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Timestamp, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, err
		}
		candles = append(candles, c)
	}
	return candles, rows.Err()
}

func (s *ClickHouseFixtureStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseFixtureStore) Close() error {
	return nil // Managed by pkg
}
