package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drivestack/drivehealth/internal/api"
	"github.com/drivestack/drivehealth/internal/config"
	"github.com/drivestack/drivehealth/internal/detector"
	"github.com/drivestack/drivehealth/internal/engine"
	"github.com/drivestack/drivehealth/internal/loader"
	"github.com/drivestack/drivehealth/internal/metrics"
	"github.com/drivestack/drivehealth/internal/models"
	"github.com/drivestack/drivehealth/internal/report"
	"github.com/drivestack/drivehealth/internal/utils"
)

func main() {
	var (
		configPath    string
		dataPath      string
		contamination float64
		seed          int64
		serve         bool
	)
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&dataPath, "data", "", "Directory of daily CSV snapshots (overrides config)")
	flag.Float64Var(&contamination, "contamination", 0, "Expected anomaly fraction in (0, 0.5] (overrides config)")
	flag.Int64Var(&seed, "seed", 0, "Random seed for reproducible runs (overrides config)")
	flag.BoolVar(&serve, "serve", false, "Serve the interactive dashboard API instead of a one-shot run")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("failed to load config", slog.String("path", configPath), slog.Any("error", err))
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "data":
			cfg.Data.Path = dataPath
		case "contamination":
			cfg.Detector.Contamination = contamination
		case "seed":
			cfg.Detector.Seed = seed
		}
	})

	logger := utils.NewLogger(cfg.Logging.Level, cfg.Logging.JSON)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		logger.Error("failed to register metrics", slog.Any("error", err))
		os.Exit(1)
	}

	factory := func(seed int64) detector.Detector {
		return detector.NewIsolationForest(
			detector.WithTrees(cfg.Detector.Trees),
			detector.WithSampleSize(cfg.Detector.SampleSize),
			detector.WithSeed(seed),
		)
	}
	pipeline := engine.NewPipeline(logger, loader.New(logger), factory)

	defaults := models.AnalysisRequest{
		DataPath:      cfg.Data.Path,
		Contamination: cfg.Detector.Contamination,
		Seed:          cfg.Detector.Seed,
	}

	if !serve {
		runOnce(logger, pipeline, defaults)
		return
	}

	logger.Info("starting drivehealth dashboard", slog.String("address", cfg.Server.Address))

	handler := api.NewHandler(logger, pipeline, defaults)
	server, err := api.NewServer(cfg.Server, handler.Routes())
	if err != nil {
		logger.Error("failed to create HTTP server", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsServer *http.Server
	if cfg.Server.MetricsAddress != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{
			Addr:         cfg.Server.MetricsAddress,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			logger.Info("metrics server listening", slog.String("address", cfg.Server.MetricsAddress))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server exited", slog.Any("error", err))
				stop()
			}
		}()
	}

	go func() {
		if serveErr := server.Start(); serveErr != nil {
			logger.Error("HTTP server exited", slog.Any("error", serveErr))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	server.Shutdown(shutdownCtx)

	if metricsServer != nil {
		metricsCtx, cancelMetrics := context.WithTimeout(context.Background(), 5*time.Second)
		if err := metricsServer.Shutdown(metricsCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("metrics server shutdown", slog.Any("error", err))
		}
		cancelMetrics()
	}

	logger.Info("drivehealth stopped")
}

func runOnce(logger *slog.Logger, pipeline *engine.Pipeline, req models.AnalysisRequest) {
	logger.Info("running analysis",
		slog.String("data_path", req.DataPath),
		slog.Float64("contamination", req.Contamination),
		slog.Int64("seed", req.Seed),
	)

	result, err := pipeline.Run(context.Background(), req)
	if err != nil {
		logger.Error("analysis failed", slog.Any("error", err))
		os.Exit(1)
	}

	fmt.Print(report.Render(result))
}
