package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"TrendLab/internal/domain/models"
	drepo "TrendLab/internal/domain/repository"
	"TrendLab/internal/usecase"
	pkgch "TrendLab/pkg/clickhouse"
	"TrendLab/pkg/config"
	xhttp "TrendLab/pkg/http"
	applogger "TrendLab/pkg/logger"
)

// App encapsulates the entire application lifecycle: one validation run at
// startup, the HTTP API, and optional live inference on the candle stream.
type App struct {
	cfg        *config.Config
	logger     *applogger.Logger
	validator  *usecase.Validator
	live       *usecase.LiveEngine
	handler    xhttp.Handler
	chClient   *pkgch.Client
	sink       drepo.ReportSink
	cache      drepo.ReportCache
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	validator *usecase.Validator,
	live *usecase.LiveEngine,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	sink drepo.ReportSink,
	cache drepo.ReportCache,
) *App {
	return &App{
		cfg:       cfg,
		logger:    logger,
		validator: validator,
		live:      live,
		handler:   handler,
		chClient:  chClient,
		sink:      sink,
		cache:     cache,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// The validation run takes minutes on large datasets; the API serves 404s
	// until it lands.
	go a.validate(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

// validate runs the walk-forward pipeline once and, on an accepted model,
// arms and starts the live engine.
func (a *App) validate(ctx context.Context) {
	outcome, err := a.validator.Run(ctx)
	if err != nil {
		a.logger.Error("validation run failed", applogger.Error(err))
		return
	}

	report := outcome.Result.Report
	if report.Decision != models.DecisionAccept {
		a.logger.Warn("model rejected, live inference stays off",
			applogger.String("symbol", report.Symbol),
			applogger.Float64("mean_accuracy", report.Mean.Accuracy))
		return
	}
	if a.live == nil {
		a.logger.Info("model accepted, streaming disabled",
			applogger.String("symbol", report.Symbol))
		return
	}

	a.live.Arm(outcome.Result.FinalScaler, outcome.Result.FinalModel, outcome.Dataset.Candles)
	a.logger.Info("live engine armed",
		applogger.String("symbol", report.Symbol),
		applogger.Strings("stream_symbols", a.cfg.Stream.Symbols))
	go func() {
		if err := a.live.Start(ctx); err != nil && ctx.Err() == nil {
			a.logger.Error("live engine stopped", applogger.Error(err))
		}
	}()
}

// shutdown gracefully stops all services.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}
	if err := a.sink.Close(); err != nil {
		a.logger.Warn("report sink close error", applogger.Error(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("report cache close error", applogger.Error(err))
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
