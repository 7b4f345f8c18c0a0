//go:build wireinject
// +build wireinject

package di

import (
	"mockflow/pkg/config"
	"mockflow/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients (nil when the sink is disabled)
		ProvideClickHouseClient,
		ProvideKafkaProducer,

		// Repositories
		ProvideFixtureStore,
		ProvideFixturePublisher,

		// Services
		ProvideCache,
		ProvideRateLimiter,

		// Engine and use case
		ProvideEngine,
		ProvideGenerateUseCase,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
