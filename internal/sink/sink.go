// Package sink stores the cleaned table locally and, when a spreadsheet is
// configured, writes it back to the remote sheet.
package sink

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	"sheetclean/internal/config"
	"sheetclean/internal/files"
	"sheetclean/internal/sheets"
	"sheetclean/internal/table"
)

// WriterOpener connects to the remote spreadsheet
type WriterOpener func(ctx context.Context, remote config.Configured) (sheets.TableWriter, error)

// Paths are the local outputs of a run. XLSX is optional.
type Paths struct {
	CSV  string
	XLSX string
}

// Sink is the sink adapter
type Sink struct {
	remote   config.Remote
	paths    Paths
	files    *files.Manager
	open     WriterOpener
	logger   *slog.Logger
	failures metric.Int64Counter
}

// New creates a sink. A nil open uses the Sheets API with the configured
// service-account credentials.
func New(remote config.Remote, paths Paths, fm *files.Manager, open WriterOpener, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	if fm == nil {
		fm = files.NewManager(logger)
	}
	if open == nil {
		opener := sheets.DefaultOpener(logger)
		open = func(ctx context.Context, remote config.Configured) (sheets.TableWriter, error) {
			return opener(ctx, remote)
		}
	}
	if remote == nil {
		remote = config.Unconfigured{}
	}
	return &Sink{
		remote: remote,
		paths:  paths,
		files:  fm,
		open:   open,
		logger: logger,
	}
}

// SetFailureCounter sets the counter incremented on each failed remote write
func (s *Sink) SetFailureCounter(counter metric.Int64Counter) {
	s.failures = counter
}

// Save writes the local outputs and then attempts the remote upload. Only
// local write failures are returned; remote problems are logged as warnings.
func (s *Sink) Save(ctx context.Context, t *table.Table) error {
	if err := s.files.WriteTable(s.paths.CSV, t); err != nil {
		return err
	}
	if s.paths.XLSX != "" {
		if err := s.files.WriteTable(s.paths.XLSX, t); err != nil {
			return err
		}
	}

	s.upload(ctx, t)
	return nil
}

func (s *Sink) upload(ctx context.Context, t *table.Table) {
	remote, ok := s.remote.(config.Configured)
	if !ok {
		s.logger.WarnContext(ctx, "Spreadsheet not configured, skipping upload",
			slog.String("reason", "missing GOOGLE_CREDENTIALS_JSON or SHEET_ID"))
		return
	}

	writer, err := s.open(ctx, remote)
	if err == nil {
		err = writer.ReplaceTable(ctx, t)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to upload cleaned data to spreadsheet",
			slog.String("sheet_id", remote.SheetID),
			slog.String("error", err.Error()))
		if s.failures != nil {
			s.failures.Add(ctx, 1)
		}
		return
	}

	s.logger.InfoContext(ctx, "Cleaned data uploaded to spreadsheet",
		slog.String("sheet_id", remote.SheetID),
		slog.Int("rows", t.NumRows()))
}
