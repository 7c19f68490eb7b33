package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"turbinecli/internal/config"
	"turbinecli/internal/exporter"
	"turbinecli/internal/infrastructure"
	"turbinecli/internal/operations"
)

func main() {
	inDir := flag.String("in", "", "input directory for .csv/.xlsx sensor files (defaults to data/input relative to executable)")
	files := flag.String("files", "", "comma-separated list of input files; overrides -in discovery")
	outDir := flag.String("out", "", "output directory for CSV artifacts (defaults to data/output relative to executable)")
	configFile := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Flag overrides take precedence over config and environment.
	if *inDir != "" {
		cfg.Paths.InputDir = *inDir
	}
	if *outDir != "" {
		cfg.Paths.OutputDir = *outDir
	}

	paths, err := config.GetPaths(cfg.Paths)
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	if !filepath.IsAbs(cfg.Logging.FilePath) {
		cfg.Logging.FilePath = paths.GetLogPath(filepath.Base(cfg.Logging.FilePath))
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, paths.GetLogPath("telemetry.log"), logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		logger.Error("Failed to create pipeline metrics", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var inputFiles []string
	if *files != "" {
		for _, f := range strings.Split(*files, ",") {
			if f = strings.TrimSpace(f); f != "" {
				inputFiles = append(inputFiles, f)
			}
		}
	}

	runID := infrastructure.GenerateRunID()
	ctx := infrastructure.WithTraceID(context.Background(), runID)

	logger.InfoContext(ctx, "Starting turbine sensor data pipeline",
		slog.String("version", config.AppVersion),
		slog.String("run_id", runID),
		slog.String("input_dir", paths.InputDir),
		slog.String("output_dir", paths.OutputDir),
		slog.Int("explicit_files", len(inputFiles)))

	writer := exporter.NewArtifactWriter(paths, logger)

	manager := operations.NewManager(logger, providers.Tracer, metrics)
	manager.RegisterStep(operations.NewLoadStep(inputFiles, paths.InputDir, cfg.Pipeline.LoaderParallelism))
	manager.RegisterStep(operations.NewCleanStep(logger, cfg.Pipeline))
	manager.RegisterStep(operations.NewStatsStep())
	manager.RegisterStep(operations.NewAnomalyStep(cfg.Pipeline.AnomalySigma))
	manager.RegisterStep(operations.NewPersistStep(writer))

	state, err := manager.Execute(ctx, runID)
	if err != nil {
		logger.ErrorContext(ctx, "Pipeline run failed",
			slog.String("run_id", runID),
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Pipeline run finished",
		slog.String("run_id", runID),
		slog.Int("input_files", len(state.InputFiles)),
		slog.Int("raw_rows", state.Summary.RawRows),
		slog.Int("clean_rows", state.Summary.CleanRows),
		slog.Int("stat_rows", len(state.Stats)),
		slog.Int("anomalies", len(state.Anomalies)),
		slog.Duration("duration", state.Duration()))
}
