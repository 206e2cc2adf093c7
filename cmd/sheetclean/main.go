// Command sheetclean cleans one table per run: it loads the data from a
// Google Sheet (or data.csv when no sheet is configured), drops sparse rows,
// imputes missing values, standardizes numeric columns, then writes the
// cleaned table and a short report.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sheetclean/internal/cleaning"
	"sheetclean/internal/config"
	"sheetclean/internal/files"
	"sheetclean/internal/generator"
	"sheetclean/internal/infrastructure"
	"sheetclean/internal/pipeline"
	"sheetclean/internal/report"
	"sheetclean/internal/sink"
	"sheetclean/internal/source"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "sheetclean: %v\n", err)
		os.Exit(1)
	}
}

// run wires the components from configuration and executes one cleaning
// run. traceOut receives spans when the stdout trace exporter is selected.
func run(ctx context.Context, traceOut io.Writer) error {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := infrastructure.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer logger.Close()

	telemetry, err := infrastructure.InitializeTelemetry(cfg.Telemetry, traceOut, logger.Logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	metrics, err := infrastructure.CreateRunMetrics(telemetry.Meter)
	if err != nil {
		return fmt.Errorf("failed to create run metrics: %w", err)
	}

	remote := cfg.Remote()
	switch remote.(type) {
	case config.Configured:
		logger.Info("Spreadsheet configured, using remote source and sink")
	default:
		logger.Info("Spreadsheet not configured, using local files",
			slog.String("input", cfg.Paths.Input))
	}

	fm := files.NewManager(logger.Logger)

	var gen pipeline.Generator
	if cfg.Generator.Enabled {
		gen = generator.New(cfg.Generator, cfg.Paths.Input, generator.ExecRunner{}, fm, logger.Logger)
	}

	src := source.New(remote, cfg.Paths.Input, fm, nil, logger.Logger)

	snk := sink.New(remote, sink.Paths{CSV: cfg.Paths.Output, XLSX: cfg.Paths.XLSXOutput}, fm, nil, logger.Logger)
	snk.SetFailureCounter(metrics.RemoteWriteFailures)

	p := pipeline.New(gen, src,
		cleaning.NewCleaner(logger.Logger),
		report.NewReporter(cfg.Paths.Report, logger.Logger),
		snk,
		logger.Logger,
	)
	p.SetMetrics(metrics)

	_, runErr := p.Run(ctx)

	if cfg.Paths.Metrics != "" {
		if err := telemetry.WriteMetrics(cfg.Paths.Metrics); err != nil {
			logger.Warn("Failed to write metrics file",
				slog.String("path", cfg.Paths.Metrics),
				slog.String("error", err.Error()))
		}
	}

	return runErr
}
