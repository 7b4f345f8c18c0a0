package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"mockflow/internal/domain/models"
	domrepo "mockflow/internal/domain/repository"
	"mockflow/internal/engine"
	"mockflow/pkg/cache"
	applogger "mockflow/pkg/logger"
)

// GenerateResult is the assembled output of one generation call.
type GenerateResult struct {
	Symbol    string        `json:"symbol"`
	Timeframe string        `json:"timeframe"`
	Scenario  string        `json:"scenario"`
	Seed      int64         `json:"seed"`
	Start     time.Time     `json:"start"`
	Count     int           `json:"count"`
	Frame     *models.Frame `json:"frame"`
}

// GenerateUseCase drives resolve -> engine -> frame, with optional response
// caching and optional fan-out to fixture sinks. Sinks and cache live
// strictly outside the core: generation itself does no I/O.
type GenerateUseCase struct {
	engine   *engine.Engine
	cache    cache.Service
	cacheTTL time.Duration
	store    domrepo.FixtureStore
	pub      domrepo.FixturePublisher
	metrics  domrepo.Metrics
	logger   *applogger.Logger
}

// GenerateOption configures the use case.
type GenerateOption func(*GenerateUseCase)

// WithCache enables response caching with the given TTL.
func WithCache(c cache.Service, ttl time.Duration) GenerateOption {
	return func(uc *GenerateUseCase) {
		uc.cache = c
		uc.cacheTTL = ttl
	}
}

// WithFixtureStore attaches an optional persistence sink.
func WithFixtureStore(s domrepo.FixtureStore) GenerateOption {
	return func(uc *GenerateUseCase) { uc.store = s }
}

// WithFixturePublisher attaches an optional message-bus sink.
func WithFixturePublisher(p domrepo.FixturePublisher) GenerateOption {
	return func(uc *GenerateUseCase) { uc.pub = p }
}

// NewGenerateUseCase creates the use case.
func NewGenerateUseCase(eng *engine.Engine, metrics domrepo.Metrics, logger *applogger.Logger, opts ...GenerateOption) *GenerateUseCase {
	uc := &GenerateUseCase{engine: eng, metrics: metrics, logger: logger}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Generate resolves the public parameters, runs the engine and assembles the
// columnar result. Output is deterministic, so the cache key is simply the
// fully resolved request.
func (uc *GenerateUseCase) Generate(ctx context.Context, p ResolveParams) (*GenerateResult, error) {
	req, err := Resolve(p)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.RecordError("resolve")
		}
		return nil, err
	}

	key := cacheKey(req)
	if uc.cache != nil {
		var raw string
		if err := uc.cache.Get(ctx, key, &raw); err == nil {
			var cached GenerateResult
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				if uc.metrics != nil {
					uc.metrics.RecordCacheHit(true)
				}
				return &cached, nil
			}
		}
		if uc.metrics != nil {
			uc.metrics.RecordCacheHit(false)
		}
	}

	start := time.Now()
	candles, err := uc.engine.Generate(ctx, req)
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.RecordError("generate")
		}
		return nil, fmt.Errorf("generate candles: %w", err)
	}
	if uc.metrics != nil {
		uc.metrics.RecordGenerationDuration(string(req.Timeframe), time.Since(start).Seconds())
		uc.metrics.RecordBarsGenerated(req.Symbol, string(req.Timeframe), string(req.Scenario), len(candles))
	}

	result := &GenerateResult{
		Symbol:    req.Symbol,
		Timeframe: string(req.Timeframe),
		Scenario:  string(req.Scenario),
		Seed:      req.Seed,
		Start:     req.Start,
		Count:     len(candles),
		Frame:     models.NewFrame(candles),
	}

	if uc.cache != nil {
		if b, err := json.Marshal(result); err == nil {
			if err := uc.cache.Set(ctx, key, string(b), uc.cacheTTL); err != nil && uc.logger != nil {
				uc.logger.Warn("cache set failed", applogger.Error(err))
			}
		}
	}

	uc.deliver(ctx, req, candles)
	return result, nil
}

// GenerateCandles returns the raw candle sequence for a fully resolved
// request, bypassing cache and sinks. Used by the streaming handler.
func (uc *GenerateUseCase) GenerateCandles(ctx context.Context, req engine.Request) ([]models.Candle, error) {
	return uc.engine.Generate(ctx, req)
}

// deliver fans the sequence out to configured sinks, best effort: a sink
// failure is logged and counted but never fails the call, since the caller
// can always regenerate the exact same data.
func (uc *GenerateUseCase) deliver(ctx context.Context, req engine.Request, candles []models.Candle) {
	if uc.store != nil {
		if err := uc.store.StoreBatch(ctx, req.Symbol, req.Timeframe, candles); err != nil {
			if uc.logger != nil {
				uc.logger.Error("fixture store failed", applogger.String("symbol", req.Symbol), applogger.Error(err))
			}
			if uc.metrics != nil {
				uc.metrics.RecordError("store")
			}
		} else if uc.metrics != nil {
			uc.metrics.RecordSinkDelivery("clickhouse", req.Symbol)
		}
	}
	if uc.pub != nil {
		if err := uc.pub.PublishBatch(ctx, req.Symbol, req.Timeframe, candles); err != nil {
			if uc.logger != nil {
				uc.logger.Error("fixture publish failed", applogger.String("symbol", req.Symbol), applogger.Error(err))
			}
			if uc.metrics != nil {
				uc.metrics.RecordError("publish")
			}
		} else if uc.metrics != nil {
			uc.metrics.RecordSinkDelivery("kafka", req.Symbol)
		}
	}
}

func cacheKey(req engine.Request) string {
	id := fmt.Sprintf("%s:%s:%d:%d:%s:%d",
		req.Symbol, req.Timeframe, req.BarCount, req.Start.Unix(), req.Scenario, req.Seed)
	return cache.GenerateKey("candles", id)
}
