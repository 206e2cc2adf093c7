// Package pipeline runs one cleaning pass: optional data generation, load,
// clean, report and save, in that order.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"sheetclean/internal/cleaning"
	"sheetclean/internal/infrastructure"
	"sheetclean/internal/table"
)

// TracerName is the instrumentation name of run spans
const TracerName = "sheetclean/pipeline"

// Step names, used for spans, metrics and error prefixes
const (
	StepGenerate = "generate"
	StepLoad     = "load"
	StepClean    = "clean"
	StepReport   = "report"
	StepSave     = "save"
)

// Generator prepares the input before loading
type Generator interface {
	Generate(ctx context.Context) error
}

// Loader is the data source
type Loader interface {
	Load(ctx context.Context) (*table.Table, error)
}

// Saver is the data sink
type Saver interface {
	Save(ctx context.Context, t *table.Table) error
}

// ReportWriter persists cleaning statistics
type ReportWriter interface {
	Write(stats cleaning.Stats) error
}

// Pipeline wires the run steps together
type Pipeline struct {
	generator Generator
	source    Loader
	cleaner   *cleaning.Cleaner
	reporter  ReportWriter
	sink      Saver
	logger    *slog.Logger
	tracer    trace.Tracer
	metrics   *infrastructure.RunMetrics
}

// Result describes a finished run
type Result struct {
	RunID    string
	Rows     int
	Stats    cleaning.Stats
	Duration time.Duration
}

// New creates a pipeline. generator may be nil to skip data generation.
func New(generator Generator, source Loader, cleaner *cleaning.Cleaner, reporter ReportWriter, sink Saver, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		generator: generator,
		source:    source,
		cleaner:   cleaner,
		reporter:  reporter,
		sink:      sink,
		logger:    logger,
		tracer:    otel.Tracer(TracerName),
	}
}

// SetMetrics sets the instruments recorded by Run
func (p *Pipeline) SetMetrics(metrics *infrastructure.RunMetrics) {
	p.metrics = metrics
}

// Run executes every step once. The first failing step aborts the run.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	result := Result{RunID: infrastructure.GetRunID(ctx)}

	ctx, span := p.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("run.id", result.RunID)),
	)
	defer span.End()

	p.logger.InfoContext(ctx, "Cleaning run started")
	start := time.Now()

	err := p.run(ctx, &result)
	result.Duration = time.Since(start)

	status := "success"
	if err != nil {
		status = "failure"
		infrastructure.RecordError(ctx, err)
		p.logger.ErrorContext(ctx, "Cleaning run failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", result.Duration))
	} else {
		span.SetStatus(codes.Ok, "")
		p.logger.InfoContext(ctx, "Cleaning run completed",
			slog.Int("rows", result.Rows),
			slog.Float64("percent_filled", result.Stats.PercentFilled),
			slog.Float64("percent_rows_removed", result.Stats.PercentRowsRemoved),
			slog.Duration("duration", result.Duration))
	}

	if p.metrics != nil {
		attrs := metric.WithAttributes(attribute.String("status", status))
		p.metrics.RunsTotal.Add(ctx, 1, attrs)
		p.metrics.RunDuration.Record(ctx, result.Duration.Seconds(), attrs)
	}

	return result, err
}

func (p *Pipeline) run(ctx context.Context, result *Result) error {
	if p.generator != nil {
		if err := p.step(ctx, StepGenerate, p.generator.Generate); err != nil {
			return err
		}
	}

	var t *table.Table
	if err := p.step(ctx, StepLoad, func(ctx context.Context) error {
		var err error
		t, err = p.source.Load(ctx)
		if err != nil {
			return err
		}
		infrastructure.SetSpanAttributes(ctx,
			attribute.Int("table.rows", t.NumRows()),
			attribute.Int("table.columns", t.NumColumns()))
		if p.metrics != nil {
			p.metrics.RowsRead.Add(ctx, int64(t.NumRows()))
		}
		return nil
	}); err != nil {
		return err
	}

	if err := p.step(ctx, StepClean, func(ctx context.Context) error {
		stats, err := p.cleaner.Clean(t)
		if err != nil {
			return err
		}
		result.Stats = stats
		result.Rows = t.NumRows()
		infrastructure.SetSpanAttributes(ctx,
			attribute.Int("clean.rows_removed", stats.RowsRemoved),
			attribute.Int("clean.cells_filled", stats.Filled))
		if p.metrics != nil {
			p.metrics.RowsRemoved.Add(ctx, int64(stats.RowsRemoved))
			p.metrics.CellsFilled.Add(ctx, int64(stats.Filled))
		}
		return nil
	}); err != nil {
		return err
	}

	if err := p.step(ctx, StepReport, func(ctx context.Context) error {
		return p.reporter.Write(result.Stats)
	}); err != nil {
		return err
	}

	return p.step(ctx, StepSave, func(ctx context.Context) error {
		return p.sink.Save(ctx, t)
	})
}

// step runs fn inside a child span and records its duration
func (p *Pipeline) step(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, span := p.tracer.Start(ctx, "pipeline.step."+name,
		trace.WithAttributes(attribute.String("step.name", name)),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start)

	if p.metrics != nil {
		p.metrics.StepDuration.Record(ctx, duration.Seconds(),
			metric.WithAttributes(
				attribute.String("step", name),
				attribute.Bool("success", err == nil),
			))
	}

	if err != nil {
		infrastructure.RecordError(ctx, err)
		return fmt.Errorf("%s: %w", name, err)
	}

	span.SetStatus(codes.Ok, "")
	p.logger.DebugContext(ctx, "Step completed",
		slog.String("step", name),
		slog.Duration("duration", duration))
	return nil
}
