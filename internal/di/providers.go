package di

import (
	"context"
	"fmt"
	"time"

	"mockflow/internal/domain/repository"
	"mockflow/internal/engine"
	internalrepo "mockflow/internal/repository"
	"mockflow/internal/service/ratelimit"
	"mockflow/internal/usecase"
	"mockflow/pkg/cache"
	pkgch "mockflow/pkg/clickhouse"
	"mockflow/pkg/config"
	pkgkafka "mockflow/pkg/kafka"
	applogger "mockflow/pkg/logger"
	"mockflow/pkg/metrics"
	"mockflow/pkg/server"
)

// ProvideLogger creates the application logger from config.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideEngine creates the candle generation engine.
func ProvideEngine(cfg *config.Config) *engine.Engine {
	opts := []engine.Option{engine.WithGapNoise(cfg.Generator.GapNoise)}
	if cfg.Generator.BasePrice > 0 {
		opts = append(opts, engine.WithBasePrice(cfg.Generator.BasePrice))
	}
	return engine.New(opts...)
}

// ProvideClickHouseClient creates a ClickHouse client when the clickhouse
// sink is enabled, nil otherwise.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !sinkHasClickHouse(cfg) {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	table := cfg.ClickHouse.Database + "." + cfg.ClickHouse.Table
	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS " + cfg.ClickHouse.Database,
		"CREATE TABLE IF NOT EXISTS " + table + " (" +
			"symbol String, tf String, ts DateTime, " +
			"open Float64, high Float64, low Float64, close Float64, volume Int64" +
			") ENGINE=MergeTree ORDER BY (symbol, tf, ts)",
	}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer when the kafka sink is
// enabled, nil otherwise.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !sinkHasKafka(cfg) {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideFixtureStore creates the ClickHouse fixture store, nil when the
// sink is disabled.
func ProvideFixtureStore(chClient *pkgch.Client, cfg *config.Config) repository.FixtureStore {
	if chClient == nil {
		return nil
	}
	table := cfg.ClickHouse.Database + "." + cfg.ClickHouse.Table
	return internalrepo.NewClickHouseFixtureStore(chClient.DB(), table)
}

// ProvideFixturePublisher creates the Kafka fixture publisher, nil when the
// sink is disabled.
func ProvideFixturePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.FixturePublisher {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaFixturePublisher(producer, cfg.Kafka.Topic)
}

// ProvideCache builds the response cache per config: layered memory+redis
// when redis is enabled, in-process memory otherwise. Nil when disabled.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Cache.Enabled {
		return nil, nil
	}
	if cfg.Cache.Redis.Enabled {
		rc, err := cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
		)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return cache.NewLayeredCache(rc, cache.WithLayeredMemorySize(cfg.Cache.MaxSize)), nil
	}
	return cache.NewMemoryCache(cache.WithMemoryMaxSize(cfg.Cache.MaxSize)), nil
}

// ProvideRateLimiter creates the per-client token bucket limiter, nil when
// rate limiting is disabled.
func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return ratelimit.New()
}

// ProvideGenerateUseCase wires the generation use case with its optional
// cache and sinks.
func ProvideGenerateUseCase(
	eng *engine.Engine,
	mtr repository.Metrics,
	logger *applogger.Logger,
	svc cache.Service,
	store repository.FixtureStore,
	pub repository.FixturePublisher,
	cfg *config.Config,
) *usecase.GenerateUseCase {
	var opts []usecase.GenerateOption
	if svc != nil {
		opts = append(opts, usecase.WithCache(svc, cfg.Cache.TTL))
	}
	if store != nil {
		opts = append(opts, usecase.WithFixtureStore(store))
	}
	if pub != nil {
		opts = append(opts, usecase.WithFixturePublisher(pub))
	}
	return usecase.NewGenerateUseCase(eng, mtr, logger, opts...)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	gen *usecase.GenerateUseCase,
	limiter *ratelimit.Limiter,
	svc cache.Service,
	chClient *pkgch.Client,
	producer *pkgkafka.Producer,
) *server.App {
	return server.New(cfg, logger, gen, limiter, svc, chClient, producer)
}

func sinkHasClickHouse(cfg *config.Config) bool {
	return cfg.Sink.Type == "clickhouse" || cfg.Sink.Type == "both"
}

func sinkHasKafka(cfg *config.Config) bool {
	return cfg.Sink.Type == "kafka" || cfg.Sink.Type == "both"
}
