package repository

import (
	"context"
	"time"

	"mockflow/internal/domain/models"
)

// FixtureStore persists generated candle sequences for reuse by downstream tooling.
type FixtureStore interface {
	Init(ctx context.Context) error // ensure tables, health checks
	StoreBatch(ctx context.Context, symbol string, tf Timeframe, candles []models.Candle) error
	Query(ctx context.Context, symbol string, tf Timeframe, from, to time.Time, limit int) ([]models.Candle, error)
	Health(ctx context.Context) error // ping
	Close() error
}

// FixturePublisher fans generated candles out to a message bus.
type FixturePublisher interface {
	PublishBatch(ctx context.Context, symbol string, tf Timeframe, candles []models.Candle) error
	Close() error
}

// Metrics records operational counters for generation runs.
type Metrics interface {
	RecordBarsGenerated(symbol, timeframe, scenario string, n int)
	RecordGenerationDuration(timeframe string, seconds float64)
	RecordError(kind string)
	RecordCacheHit(hit bool)
	RecordSinkDelivery(sink, symbol string)
}
