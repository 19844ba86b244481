//go:build wireinject
// +build wireinject

package di

import (
	"PremiumPulse/pkg/config"
	"PremiumPulse/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Metrics
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCache,

		// Repositories
		ProvideWarehouse,

		// Domain services
		ProvideRegionValidator,

		// Use cases
		ProvideAggregator,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
