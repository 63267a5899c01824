//go:build wireinject
// +build wireinject

package di

import (
	"TrendLab/pkg/config"
	"TrendLab/pkg/server"

	"github.com/google/wire"
)

// InitializeApp builds the application object graph.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideClickHouseClient,
		ProvideCandleSource,
		ProvideKafkaProducer,
		ProvideReportSink,
		ProvideReportCache,
		ProvideFeatureBuilder,
		ProvideLabelGenerator,
		ProvideHarness,
		ProvideSessionAnalyzer,
		ProvideDatasetBuilder,
		ProvideValidator,
		ProvideCandleStream,
		ProvideLiveEngine,
		ProvideAPIHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
