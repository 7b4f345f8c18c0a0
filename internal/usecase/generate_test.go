package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"mockflow/internal/domain/models"
	domrepo "mockflow/internal/domain/repository"
	"mockflow/internal/engine"
	"mockflow/pkg/cache"
)

type fakeMetrics struct {
	bars      int
	errors    map[string]int
	cacheHits int
	cacheMiss int
	sinks     int
}

func newFakeMetrics() *fakeMetrics { return &fakeMetrics{errors: map[string]int{}} }

func (m *fakeMetrics) RecordBarsGenerated(_, _, _ string, n int)    { m.bars += n }
func (m *fakeMetrics) RecordGenerationDuration(_ string, _ float64) {}
func (m *fakeMetrics) RecordError(kind string)                      { m.errors[kind]++ }
func (m *fakeMetrics) RecordSinkDelivery(_, _ string)               { m.sinks++ }

func (m *fakeMetrics) RecordCacheHit(hit bool) {
	if hit {
		m.cacheHits++
	} else {
		m.cacheMiss++
	}
}

type fakeStore struct {
	batches int
	candles int
}

func (s *fakeStore) Init(context.Context) error { return nil }
func (s *fakeStore) StoreBatch(_ context.Context, _ string, _ domrepo.Timeframe, cs []models.Candle) error {
	s.batches++
	s.candles += len(cs)
	return nil
}
func (s *fakeStore) Query(context.Context, string, domrepo.Timeframe, time.Time, time.Time, int) ([]models.Candle, error) {
	return nil, nil
}
func (s *fakeStore) Health(context.Context) error { return nil }
func (s *fakeStore) Close() error                 { return nil }

func TestGenerateUseCaseBasic(t *testing.T) {
	metrics := newFakeMetrics()
	uc := NewGenerateUseCase(engine.New(), metrics, nil)

	res, err := uc.Generate(context.Background(), ResolveParams{
		Symbol: "BTCUSDT", TF: "1h", Limit: 720, Scenario: "bull", Seed: 42,
	})
	require.NoError(t, err)
	require.Equal(t, 720, res.Count)
	require.Equal(t, 720, res.Frame.Len())
	require.Equal(t, "bull", res.Scenario)
	require.Equal(t, 720, metrics.bars)

	for i := range res.Frame.Index {
		require.Greater(t, res.Frame.Low[i], 0.0)
		require.GreaterOrEqual(t, res.Frame.High[i], res.Frame.Low[i])
		require.GreaterOrEqual(t, res.Frame.Volume[i], int64(1))
	}
}

func TestGenerateUseCaseCacheRoundTrip(t *testing.T) {
	mem := cache.NewMemoryCache()
	defer mem.Close()
	metrics := newFakeMetrics()
	uc := NewGenerateUseCase(engine.New(), metrics, nil, WithCache(mem, time.Minute))

	p := ResolveParams{Symbol: "ETHUSDT", TF: "4h", Limit: 100, Scenario: "sideways", Seed: 9}

	first, err := uc.Generate(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, 1, metrics.cacheMiss)

	second, err := uc.Generate(context.Background(), p)
	require.NoError(t, err)
	require.Equal(t, 1, metrics.cacheHits)

	require.Equal(t, first.Count, second.Count)
	require.Equal(t, first.Frame.Close, second.Frame.Close)
	require.Equal(t, first.Frame.Volume, second.Frame.Volume)
}

func TestGenerateUseCaseSinkDelivery(t *testing.T) {
	store := &fakeStore{}
	metrics := newFakeMetrics()
	uc := NewGenerateUseCase(engine.New(), metrics, nil, WithFixtureStore(store))

	_, err := uc.Generate(context.Background(), ResolveParams{
		Symbol: "BTCUSDT", TF: "1h", Limit: 50, Scenario: "auto", Seed: 3,
	})
	require.NoError(t, err)
	require.Equal(t, 1, store.batches)
	require.Equal(t, 50, store.candles)
	require.Equal(t, 1, metrics.sinks)
}

func TestGenerateUseCaseInvalidParams(t *testing.T) {
	metrics := newFakeMetrics()
	uc := NewGenerateUseCase(engine.New(), metrics, nil)

	_, err := uc.Generate(context.Background(), ResolveParams{Symbol: "", TF: "1h", Limit: 10})
	require.ErrorIs(t, err, engine.ErrInvalidRequest)
	require.Equal(t, 1, metrics.errors["resolve"])
}
