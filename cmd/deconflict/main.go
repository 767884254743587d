package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/skyward/deconflict/internal/api"
	"github.com/skyward/deconflict/internal/config"
	"github.com/skyward/deconflict/internal/detector"
	"github.com/skyward/deconflict/internal/influx"
	"github.com/skyward/deconflict/internal/logging"
	"github.com/skyward/deconflict/internal/otel"
	"github.com/skyward/deconflict/internal/report"
	"github.com/skyward/deconflict/internal/schedule"
	"github.com/skyward/deconflict/internal/storage"
	"github.com/skyward/deconflict/pkg/core"
)

// Version can be set at build time via ldflags.
var Version = "0.1.0"

func usage() {
	fmt.Fprintf(os.Stderr, `deconflict %s - UAV trajectory conflict detection

Usage:
  deconflict detect <missions-file>   run detection over a mission schedule file
  deconflict simulate                 run detection over the built-in simulated traffic
  deconflict serve                    start the HTTP detection API
`, Version)
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	logManager := logging.NewSlogManager()
	setupLogging(logManager)
	logger := logManager.Logger()

	var err error
	switch os.Args[1] {
	case "detect":
		if len(os.Args) < 3 {
			usage()
			os.Exit(2)
		}
		var missions []core.Mission
		missions, err = schedule.LoadFile(os.Args[2])
		if err == nil {
			err = runDetection(missions, logManager)
		}
	case "simulate":
		err = runDetection(schedule.Simulated(), logManager)
	case "serve":
		err = runServe(logManager)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		logger.Error("Command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

// setupLogging loads config and wires console, file, and optional Graylog
// outputs. A missing config file is fine; defaults apply.
func setupLogging(logManager *logging.SlogManager) {
	configErr := config.Load(".")

	var logFile io.Writer
	logsDir := config.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err == nil {
		f, err := os.Create(logging.LogFilePath(logsDir, "deconflict", time.Now()))
		if err == nil {
			logFile = f
		}
	}

	var graylog io.Writer
	if config.GetBool("graylog.enabled") {
		gw, err := logging.NewGelfWriter(config.GetString("graylog.address"))
		if err == nil {
			graylog = gw
		}
	}

	logManager.Setup(logFile, config.GetString("logLevel"), graylog)

	if configErr != nil {
		logManager.Logger().Debug("No config file loaded, using defaults", "error", configErr)
	}
}

// newDetector builds the detector from config.
func newDetector(logManager *logging.SlogManager, cfg config.DetectionConfig) (*detector.Detector, error) {
	return detector.New(
		logging.NewDetectorLogger(logManager.Logger()),
		detector.WithSampleSteps(cfg.SampleSteps),
		detector.WithParallelism(cfg.Parallelism),
	)
}

// runDetection executes one detection run over the given missions:
// persists them via the configured storage backend, records run metrics,
// and prints a report to stdout.
func runDetection(missions []core.Mission, logManager *logging.SlogManager) error {
	logger := logManager.Logger()
	detCfg := config.GetDetectionConfig()

	det, err := newDetector(logManager, detCfg)
	if err != nil {
		return fmt.Errorf("creating detector: %w", err)
	}

	backend, err := storage.NewBackend(config.GetStorageConfig(), logManager)
	if err != nil {
		return fmt.Errorf("creating storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("initializing storage backend: %w", err)
	}

	start := time.Now()
	summary := core.RunSummary{
		StartedAt:      start,
		SafetyDistance: detCfg.SafetyDistance,
		SampleSteps:    detCfg.SampleSteps,
		MissionCount:   len(missions),
		PairCount:      len(missions) * (len(missions) - 1) / 2,
	}

	if err := backend.BeginRun(summary); err != nil {
		return fmt.Errorf("beginning run: %w", err)
	}
	for i := range missions {
		if err := backend.AddMission(&missions[i]); err != nil {
			logger.Error("Failed to record mission", "droneId", missions[i].DroneID, "error", err)
		}
	}

	conflicts := det.Detect(missions, detCfg.SafetyDistance)

	summary.Duration = time.Since(start)
	summary.ConflictCount = len(conflicts)

	for _, c := range conflicts {
		if err := backend.RecordConflict(c); err != nil {
			logger.Error("Failed to record conflict", "error", err)
		}
	}
	if err := backend.EndRun(summary); err != nil {
		logger.Error("Failed to end run", "error", err)
	}
	if err := backend.Close(); err != nil {
		logger.Error("Failed to close storage backend", "error", err)
	}

	writeRunMetrics(summary, conflicts, logger)

	if err := report.Write(os.Stdout, missions, conflicts, summary); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if exportable, ok := backend.(storage.Exportable); ok {
		if path := exportable.GetExportedFilePath(); path != "" {
			logger.Info("Run archive written", "path", path)
		}
	}

	return nil
}

// writeRunMetrics sends the run summary and conflicts to InfluxDB when enabled.
func writeRunMetrics(summary core.RunSummary, conflicts []core.Conflict, logger *slog.Logger) {
	if !config.GetBool("influx.enabled") {
		return
	}

	zlog := zerolog.New(os.Stderr).With().Timestamp().Logger()
	backupPath := filepath.Join(config.GetString("logsDir"), "influx_backup.gz")
	mgr := influx.NewManager(zlog, backupPath)
	if err := mgr.Connect(); err != nil {
		logger.Error("InfluxDB connect failed", "error", err)
		return
	}
	defer mgr.Close()

	ctx := context.Background()
	if err := mgr.WriteRunSummary(ctx, summary); err != nil {
		logger.Error("Failed to write run summary point", "error", err)
	}
	for _, c := range conflicts {
		if err := mgr.WriteConflict(ctx, c); err != nil {
			logger.Error("Failed to write conflict point", "error", err)
		}
	}
}

// newOtelProvider builds the OTel provider from config. The log file is
// created under logsDir when telemetry is enabled.
func newOtelProvider(logger *slog.Logger) (*otel.Provider, error) {
	cfg := otel.Config{
		Enabled:      config.GetBool("otel.enabled"),
		ServiceName:  config.GetString("otel.serviceName"),
		BatchTimeout: config.GetDuration("otel.batchTimeout"),
		Endpoint:     config.GetString("otel.endpoint"),
		Insecure:     config.GetBool("otel.insecure"),
	}

	if cfg.Enabled {
		logsDir := config.GetString("logsDir")
		if err := os.MkdirAll(logsDir, 0755); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		f, err := os.Create(filepath.Join(logsDir, "otel.jsonl"))
		if err != nil {
			return nil, fmt.Errorf("creating otel log file: %w", err)
		}
		cfg.LogWriter = f
		logger.Info("Telemetry enabled", "service", cfg.ServiceName, "endpoint", cfg.Endpoint)
	}

	return otel.New(cfg)
}

// runServe starts the HTTP API and blocks until SIGINT/SIGTERM.
func runServe(logManager *logging.SlogManager) error {
	logger := logManager.Logger()
	detCfg := config.GetDetectionConfig()
	srvCfg := config.GetServerConfig()

	provider, err := newOtelProvider(logger)
	if err != nil {
		return fmt.Errorf("creating telemetry provider: %w", err)
	}
	if lp := provider.LoggerProvider(); lp != nil {
		logManager.AttachOTel(lp)
		logger = logManager.Logger()
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Error("Telemetry shutdown failed", "error", err)
		}
	}()

	det, err := newDetector(logManager, detCfg)
	if err != nil {
		return fmt.Errorf("creating detector: %w", err)
	}

	backend, err := storage.NewBackend(config.GetStorageConfig(), logManager)
	if err != nil {
		return fmt.Errorf("creating storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("initializing storage backend: %w", err)
	}
	defer backend.Close()

	handler := api.NewHandler(det, backend, logger, api.NewMetrics(), detCfg)

	srv := &http.Server{
		Addr:    ":" + srvCfg.Port,
		Handler: handler.Router(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("Server starting",
		"port", srvCfg.Port,
		"safetyDistance", detCfg.SafetyDistance,
		"sampleSteps", detCfg.SampleSteps,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	logger.Info("Shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}
