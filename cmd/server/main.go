package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/localprint/bridge/internal/application/printing"
	"github.com/localprint/bridge/internal/infrastructure/config"
	"github.com/localprint/bridge/internal/infrastructure/fetch"
	"github.com/localprint/bridge/internal/infrastructure/logger"
	"github.com/localprint/bridge/internal/infrastructure/render"
	"github.com/localprint/bridge/internal/infrastructure/scheduler"
	"github.com/localprint/bridge/internal/infrastructure/spool"
	"github.com/localprint/bridge/internal/infrastructure/telemetry"
	"github.com/localprint/bridge/internal/interfaces/http/handler"
	"github.com/localprint/bridge/internal/interfaces/http/middleware"
)

func main() {
	// The config file is watched: printer assignments and the token can
	// change while the bridge runs, without a restart.
	store, err := config.LoadAndWatch(func(next *config.Config, err error) {
		if err != nil {
			zap.L().Warn("config reload rejected", zap.Error(err))
			return
		}
		zap.L().Info("configuration reloaded",
			zap.String("printer_a3", next.Printers.A3),
			zap.String("printer_a4", next.Printers.A4),
		)
	})
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}
	cfg := store.Current()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The log exporter is built before the logger so log lines can be teed
	// to the collector from the first line on.
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, zap.NewNop())
	if err != nil {
		panic("Failed to initialize log exporter: " + err.Error())
	}

	logLevel, levelErr := zapcore.ParseLevel(cfg.Log.Level)
	if levelErr != nil {
		logLevel = zapcore.InfoLevel
	}
	otelCore := telemetry.NewZapOTELCore(telemetry.ZapBridgeConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		LoggerProvider: loggerProvider,
		Level:          logLevel,
	})

	// Initialize logger
	log, err := logger.NewWithCores(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	}, otelCore)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()
	zap.ReplaceGlobals(log)

	log.Info("Starting print bridge",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("addr", cfg.Server.Addr()),
		zap.String("engine", cfg.Render.Engine),
	)

	// Tracing, metrics and profiling each no-op when disabled.
	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	meterProvider, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	profilerConfig := telemetry.DefaultProfilerConfig(cfg.Profiler.ServerAddress, cfg.Profiler.ApplicationName)
	profilerConfig.Enabled = cfg.Profiler.Enabled
	profilerConfig.BasicAuthUser = cfg.Profiler.BasicAuthUser
	profilerConfig.BasicAuthPassword = cfg.Profiler.BasicAuthPassword
	profiler, err := telemetry.NewProfiler(profilerConfig, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}

	// Span profiles need both sides up: the tracer for the spans and
	// pyroscope for the profile stream.
	if cfg.Telemetry.Enabled && cfg.Profiler.Enabled {
		if err := tracerProvider.EnableSpanProfiles(); err != nil {
			log.Warn("Span profiles unavailable", zap.Error(err))
		}
	}

	var printMetrics *telemetry.PrintMetrics
	if meterProvider.IsEnabled() {
		printMetrics, err = telemetry.NewPrintMetrics(telemetry.PrintMetricsConfig{
			Meter:  meterProvider.Meter("print-bridge"),
			Logger: log,
		})
		if err != nil {
			log.Warn("Print metrics unavailable", zap.Error(err))
		}
	}

	// Sweep renderer scratch files left behind by killed browser runs.
	sweeper := scheduler.NewSweeper(scheduler.SweeperConfig{
		Dir:      cfg.Render.TempDir,
		MaxAge:   cfg.Render.SweepMaxAge,
		Interval: cfg.Render.SweepInterval,
		Metrics:  printMetrics,
	}, log)
	if err := sweeper.Start(ctx); err != nil {
		log.Warn("Temp sweeper not started", zap.Error(err))
	}

	// The pipeline: fetch or render, then spool.
	fetcher := fetch.NewPDFResolver(&fetch.ResolverConfig{Logger: log})

	var renderer render.Renderer
	switch cfg.Render.Engine {
	case "devtools":
		renderer = render.NewDevToolsRenderer(&render.DevToolsConfig{
			BinaryPath: cfg.Render.Binary,
			RemoteURL:  cfg.Render.RemoteURL,
			NoSandbox:  cfg.Render.NoSandbox,
			Logger:     log,
		})
	default:
		renderer = render.NewChromiumRenderer(&render.ChromiumConfig{
			BinaryPath: cfg.Render.Binary,
			TempDir:    cfg.Render.TempDir,
			NoSandbox:  cfg.Render.NoSandbox,
			Logger:     log,
		})
	}

	spooler := spool.NewCUPSSpooler(&spool.CUPSConfig{
		LpPath:        cfg.Spool.LpPath,
		LpstatPath:    cfg.Spool.LpstatPath,
		LpoptionsPath: cfg.Spool.LpoptionsPath,
		Logger:        log,
	})

	printService := printing.NewPrintService(store, fetcher, renderer, spooler, printMetrics, log)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	engine := gin.New()

	// The local-origin gate reads the socket peer address; a proxy in
	// front of the bridge would defeat it, so none are trusted.
	if err := engine.SetTrustedProxies(nil); err != nil {
		log.Warn("Failed to configure trusted proxies", zap.Error(err))
	}

	// Middleware order matters here. CORS headers go on before anything
	// can refuse the request; the local-origin gate runs before routing,
	// preflight and token checks; preflight completes before the token is
	// demanded because OPTIONS cannot carry custom headers.
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS(store))
	engine.Use(middleware.Tracing(middleware.TracingConfig{
		ServiceName: cfg.Telemetry.ServiceName,
		Enabled:     cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.TraceEnrichment())
	engine.Use(middleware.HTTPMetrics(middleware.HTTPMetricsConfig{
		MeterProvider: meterProvider,
		Enabled:       cfg.Telemetry.Enabled,
	}))
	engine.Use(middleware.LocalOnly())
	engine.Use(middleware.Preflight())
	engine.Use(middleware.TokenAuth(store))

	handler.RegisterRoutes(engine, handler.NewPrintHandler(printService), handler.NewSystemHandler())

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           cfg.Server.Addr(),
		Handler:        engine,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	cancel()
	if err := sweeper.Stop(shutdownCtx); err != nil {
		log.Warn("Sweeper stop failed", zap.Error(err))
	}
	if err := renderer.Close(); err != nil {
		log.Warn("Renderer close failed", zap.Error(err))
	}
	if err := profiler.Stop(); err != nil {
		log.Warn("Profiler stop failed", zap.Error(err))
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Tracer shutdown failed", zap.Error(err))
	}
	if err := meterProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Meter provider shutdown failed", zap.Error(err))
	}
	if err := loggerProvider.Shutdown(shutdownCtx); err != nil {
		log.Warn("Log exporter shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
