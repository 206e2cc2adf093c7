package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"sheetclean/internal/cleaning"
	"sheetclean/internal/infrastructure"
	"sheetclean/internal/report"
	"sheetclean/internal/shared/testutil"
	"sheetclean/internal/table"
)

// recorder tracks the order in which fakes are called
type recorder struct {
	calls []string
}

type fakeGenerator struct {
	rec *recorder
	err error
}

func (f *fakeGenerator) Generate(ctx context.Context) error {
	f.rec.calls = append(f.rec.calls, StepGenerate)
	return f.err
}

type fakeSource struct {
	rec   *recorder
	table *table.Table
	err   error
}

func (f *fakeSource) Load(ctx context.Context) (*table.Table, error) {
	f.rec.calls = append(f.rec.calls, StepLoad)
	return f.table, f.err
}

type fakeReporter struct {
	rec   *recorder
	stats *cleaning.Stats
}

func (f *fakeReporter) Write(stats cleaning.Stats) error {
	f.rec.calls = append(f.rec.calls, StepReport)
	f.stats = &stats
	return nil
}

type fakeSink struct {
	rec   *recorder
	saved *table.Table
	runID string
}

func (f *fakeSink) Save(ctx context.Context, t *table.Table) error {
	f.rec.calls = append(f.rec.calls, StepSave)
	f.saved = t
	f.runID = infrastructure.GetRunID(ctx)
	return nil
}

func sampleTable(t *testing.T) *table.Table {
	t.Helper()
	return testutil.MustTable(t, []string{"a", "b", "c", "d", "e"},
		[]string{"1", "x", "2", "y", "3"},
		[]string{"", "x", "4", "", "5"},
		[]string{"", "", "", "z", ""},
		[]string{"3", "y", "6", "y", ""},
	)
}

func installSpanRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr
}

func TestRunSuccess(t *testing.T) {
	sr := installSpanRecorder(t)
	logger, _ := testutil.NewTestLogger(t)
	rec := &recorder{}

	src := &fakeSource{rec: rec, table: sampleTable(t)}
	rep := &fakeReporter{rec: rec}
	snk := &fakeSink{rec: rec}
	p := New(&fakeGenerator{rec: rec}, src, cleaning.NewCleaner(logger), rep, snk, logger)

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{StepGenerate, StepLoad, StepReport, StepSave}, rec.calls)
	assert.NotEmpty(t, result.RunID)
	assert.Equal(t, result.RunID, snk.runID)
	assert.Equal(t, 3, result.Rows)
	assert.Equal(t, 1, result.Stats.RowsRemoved)
	assert.Equal(t, 7, result.Stats.Filled)
	assert.InDelta(t, 35.0, result.Stats.PercentFilled, 1e-9)
	assert.InDelta(t, 25.0, result.Stats.PercentRowsRemoved, 1e-9)

	require.NotNil(t, rep.stats)
	assert.Equal(t, result.Stats, *rep.stats)
	require.NotNil(t, snk.saved)
	assert.Equal(t, 0, snk.saved.MissingCount())

	var names []string
	for _, span := range sr.Ended() {
		names = append(names, span.Name())
	}
	assert.ElementsMatch(t, []string{
		"pipeline.step.generate",
		"pipeline.step.load",
		"pipeline.step.clean",
		"pipeline.step.report",
		"pipeline.step.save",
		"pipeline.run",
	}, names)
}

func TestRunWithoutGenerator(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	rec := &recorder{}

	p := New(nil, &fakeSource{rec: rec, table: sampleTable(t)}, cleaning.NewCleaner(logger),
		&fakeReporter{rec: rec}, &fakeSink{rec: rec}, logger)

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{StepLoad, StepReport, StepSave}, rec.calls)
}

func TestRunKeepsExistingRunID(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	rec := &recorder{}
	snk := &fakeSink{rec: rec}

	p := New(nil, &fakeSource{rec: rec, table: sampleTable(t)}, cleaning.NewCleaner(logger),
		&fakeReporter{rec: rec}, snk, logger)

	ctx := infrastructure.WithRunID(context.Background(), "run-42")
	result, err := p.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, "run-42", result.RunID)
	assert.Equal(t, "run-42", snk.runID)
}

func TestRunStopsAtFirstFailure(t *testing.T) {
	loadErr := errors.New("sheet unreachable")
	genErr := errors.New("generator crashed")

	tests := []struct {
		name      string
		generator Generator
		source    func(rec *recorder) Loader
		wantErr   error
		wantStep  string
		wantCalls []string
	}{
		{
			name: "generator fails",
			source: func(rec *recorder) Loader {
				return &fakeSource{rec: rec}
			},
			wantErr:   genErr,
			wantStep:  StepGenerate,
			wantCalls: []string{StepGenerate},
		},
		{
			name: "load fails",
			source: func(rec *recorder) Loader {
				return &fakeSource{rec: rec, err: loadErr}
			},
			wantErr:   loadErr,
			wantStep:  StepLoad,
			wantCalls: []string{StepLoad},
		},
		{
			name: "empty table",
			source: func(rec *recorder) Loader {
				empty, err := table.New(&table.Column{Name: "a"})
				require.NoError(t, err)
				return &fakeSource{rec: rec, table: empty}
			},
			wantErr:   cleaning.ErrEmptyTable,
			wantStep:  StepClean,
			wantCalls: []string{StepLoad},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)
			rec := &recorder{}

			var gen Generator
			if tt.wantErr == genErr {
				gen = &fakeGenerator{rec: rec, err: genErr}
			}
			p := New(gen, tt.source(rec), cleaning.NewCleaner(logger), &fakeReporter{rec: rec}, &fakeSink{rec: rec}, logger)

			_, err := p.Run(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.wantStep+":")
			assert.Equal(t, tt.wantCalls, rec.calls)
		})
	}
}

func TestRunWritesReport(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	rec := &recorder{}
	path := filepath.Join(t.TempDir(), "report.txt")

	p := New(nil, &fakeSource{rec: rec, table: sampleTable(t)}, cleaning.NewCleaner(logger),
		report.NewReporter(path, logger), &fakeSink{rec: rec}, logger)

	_, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t,
		"DATA CLEANING REPORT\n====================\nFilled: 35.00% of data\nRemoved: 25.00% of rows\n",
		testutil.ReadFile(t, path))
}

func TestRunRecordsMetrics(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	rec := &recorder{}

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := infrastructure.CreateRunMetrics(provider.Meter("test"))
	require.NoError(t, err)

	p := New(nil, &fakeSource{rec: rec, table: sampleTable(t)}, cleaning.NewCleaner(logger),
		&fakeReporter{rec: rec}, &fakeSink{rec: rec}, logger)
	p.SetMetrics(metrics)

	_, err = p.Run(context.Background())
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := map[string]int64{}
	var runStatus string
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				sums[m.Name] += dp.Value
				if m.Name == "sheetclean.runs" {
					if v, ok := dp.Attributes.Value(attribute.Key("status")); ok {
						runStatus = v.AsString()
					}
				}
			}
		}
	}

	assert.Equal(t, int64(1), sums["sheetclean.runs"])
	assert.Equal(t, "success", runStatus)
	assert.Equal(t, int64(4), sums["sheetclean.rows.read"])
	assert.Equal(t, int64(1), sums["sheetclean.rows.removed"])
	assert.Equal(t, int64(7), sums["sheetclean.cells.filled"])
}
