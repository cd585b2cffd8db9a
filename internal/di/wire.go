//go:build wireinject
// +build wireinject

package di

import (
	"SilverFetch/pkg/config"
	"SilverFetch/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideCache,

		// Market data
		ProvideSourceAdapters,
		ProvideAggregator,
		ProvideCandleProvider,

		// Analysis
		ProvideScoringEngine,
		ProvideNarrativeService,

		// Output
		ProvideSinks,
		ProvideScheduler,
		ProvideHub,
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
