package di

import (
	"context"
	"fmt"
	"time"

	"TrendLab/internal/domain/repository"
	"TrendLab/internal/handler/api"
	internalrepo "TrendLab/internal/repository"
	"TrendLab/internal/service/stream"
	"TrendLab/internal/services/estimator"
	"TrendLab/internal/services/features"
	"TrendLab/internal/services/labels"
	"TrendLab/internal/services/sessions"
	"TrendLab/internal/services/walkforward"
	"TrendLab/internal/usecase"
	pkgcache "TrendLab/pkg/cache"
	pkgch "TrendLab/pkg/clickhouse"
	"TrendLab/pkg/config"
	xhttp "TrendLab/pkg/http"
	pkgkafka "TrendLab/pkg/kafka"
	applogger "TrendLab/pkg/logger"
	"TrendLab/pkg/metrics"
	"TrendLab/pkg/server"
)

// ProvideLogger creates the application logger.
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

// ProvideClickHouseClient creates a ClickHouse client when the candle source
// needs one; other sources run without the database.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if cfg.Data.Source != "clickhouse" {
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
	if err := client.InitSchema(ctx, internalrepo.SchemaStatements(cfg.ClickHouse.Database, cfg.ClickHouse.Table)); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideCandleSource selects the configured candle source.
func ProvideCandleSource(cfg *config.Config, chClient *pkgch.Client) (repository.CandleSource, error) {
	switch cfg.Data.Source {
	case "clickhouse":
		table := cfg.ClickHouse.Database + "." + cfg.ClickHouse.Table
		return internalrepo.NewClickHouseCandleStore(chClient.DB(), table, cfg.Data.Symbol), nil
	case "csv":
		return internalrepo.NewCSVCandleSource(cfg.Data.CSV.Path), nil
	case "synthetic":
		return internalrepo.NewSyntheticCandleSource(cfg.Data.Synthetic.Candles, cfg.Data.Synthetic.Seed), nil
	default:
		return nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}
}

// ProvideKafkaProducer creates a Kafka producer, or nil when Kafka is
// disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
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

// ProvideReportSink publishes to Kafka when enabled, otherwise discards.
func ProvideReportSink(cfg *config.Config, producer *pkgkafka.Producer) repository.ReportSink {
	if producer == nil {
		return internalrepo.NopReportSink{}
	}
	return internalrepo.NewKafkaReportSink(producer, cfg.Kafka.Topic)
}

// ProvideReportCache caches reports in Redis when enabled, otherwise in
// process memory.
func ProvideReportCache(cfg *config.Config) (repository.ReportCache, error) {
	if !cfg.Redis.Enabled {
		return internalrepo.NewMemoryReportCache(), nil
	}
	host, port := splitHostPort(cfg.Redis.Addr)
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(host),
		pkgcache.WithRedisPort(port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return internalrepo.NewRedisReportCache(rc, cfg.Redis.TTL), nil
}

// ProvideFeatureBuilder creates the feature builder from config.
func ProvideFeatureBuilder(cfg *config.Config) *features.Builder {
	params := features.DefaultParams()
	params.TenkanPeriod = cfg.Features.TenkanPeriod
	params.KijunPeriod = cfg.Features.KijunPeriod
	params.SenkouBPeriod = cfg.Features.SenkouBPeriod
	params.ATRPeriod = cfg.Features.ATRPeriod
	params.ADXPeriod = cfg.Features.ADXPeriod
	params.VolumeWindow = cfg.Features.VolumeWindow
	params.RangeWindow = cfg.Features.RangeWindow
	params.ChikouParity = cfg.Features.ChikouParity
	return features.NewBuilder(features.NewSchema(), params)
}

// ProvideLabelGenerator creates the label generator from config.
func ProvideLabelGenerator(cfg *config.Config) *labels.Generator {
	return labels.NewGenerator(labels.Params{
		ThresholdPips: cfg.Labels.ThresholdPips,
		Lookforward:   cfg.Labels.Lookforward,
		PipValue:      cfg.Labels.PipValue,
		SLMultiplier:  cfg.Labels.SLMultiplier,
		BiasBand:      cfg.Labels.BiasBand,
	})
}

// ProvideHarness creates the walk-forward harness.
func ProvideHarness(cfg *config.Config) *walkforward.Harness {
	return walkforward.NewHarness(
		walkforward.Config{
			TrainWindowMonths: cfg.Walkforward.TrainWindowMonths,
			TestWindowMonths:  cfg.Walkforward.TestWindowMonths,
			MaxFolds:          cfg.Walkforward.MaxFolds,
			MinTestSamples:    cfg.Walkforward.MinTestSamples,
			DecisionThreshold: cfg.Walkforward.DecisionThreshold,
			TradingThreshold:  cfg.Walkforward.TradingThreshold,
			AcceptAccuracy:    cfg.Walkforward.AcceptAccuracy,
			Simulation:        cfg.Walkforward.Simulation,
			Seed:              cfg.Walkforward.Seed,
		},
		estimator.Factory,
		features.NewSchema().Columns(),
		cfg.Labels.ThresholdPips,
	)
}

// ProvideSessionAnalyzer creates the broker-time analyzer.
func ProvideSessionAnalyzer(cfg *config.Config) *sessions.Analyzer {
	params := sessions.DefaultParams()
	params.DecisionThreshold = cfg.Walkforward.DecisionThreshold
	return sessions.NewAnalyzer(params)
}

// ProvideDatasetBuilder creates the dataset builder use case.
func ProvideDatasetBuilder(
	source repository.CandleSource,
	builder *features.Builder,
	generator *labels.Generator,
	m repository.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.DatasetBuilder {
	return usecase.NewDatasetBuilder(source, cfg.Data.Source, cfg.Data.Symbol, builder, generator, m, logger)
}

// ProvideValidator creates the validation orchestrator.
func ProvideValidator(
	dataset *usecase.DatasetBuilder,
	harness *walkforward.Harness,
	analyzer *sessions.Analyzer,
	sink repository.ReportSink,
	cache repository.ReportCache,
	m repository.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.Validator {
	return usecase.NewValidator(dataset, harness, analyzer, sink, cache, m, logger, cfg.Data.Symbol)
}

// ProvideCandleStream creates the WebSocket candle stream, or nil when
// streaming is disabled.
func ProvideCandleStream(cfg *config.Config) repository.CandleStream {
	if !cfg.Stream.Enabled {
		return nil
	}
	return stream.New(
		cfg.Stream.URL,
		cfg.Stream.Symbols,
		cfg.Stream.ReconnectDelay,
		cfg.Stream.PingInterval,
		cfg.Stream.BufferSize,
	)
}

// ProvideLiveEngine creates the live inference engine when streaming is
// enabled.
func ProvideLiveEngine(
	cs repository.CandleStream,
	builder *features.Builder,
	m repository.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) (*usecase.LiveEngine, error) {
	if cs == nil {
		return nil, nil
	}
	return usecase.NewLiveEngine(cs, builder, m, logger, cfg.Data.Symbol)
}

// ProvideAPIHandler creates the Echo route handler.
func ProvideAPIHandler(logger *applogger.Logger, validator *usecase.Validator, live *usecase.LiveEngine) xhttp.Handler {
	return api.NewReportsEchoHandler(logger, validator, live)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	logger *applogger.Logger,
	validator *usecase.Validator,
	live *usecase.LiveEngine,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	sink repository.ReportSink,
	cache repository.ReportCache,
) *server.App {
	return server.New(cfg, logger, validator, live, handler, chClient, sink, cache)
}

func splitHostPort(addr string) (string, int) {
	host, port := "localhost", 6379
	for i := len(addr) - 1; i >= 0; i-- {
		if addr[i] == ':' {
			host = addr[:i]
			p := 0
			for _, ch := range addr[i+1:] {
				if ch < '0' || ch > '9' {
					return host, port
				}
				p = p*10 + int(ch-'0')
			}
			if p > 0 {
				port = p
			}
			return host, port
		}
	}
	if addr != "" {
		host = addr
	}
	return host, port
}
