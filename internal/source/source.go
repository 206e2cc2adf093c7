// Package source loads the table a run works on, from the remote
// spreadsheet when one is configured and from the local input file otherwise.
package source

import (
	"context"
	"fmt"
	"log/slog"

	"sheetclean/internal/config"
	"sheetclean/internal/files"
	"sheetclean/internal/sheets"
	"sheetclean/internal/table"
)

// ReaderOpener connects to the remote spreadsheet
type ReaderOpener func(ctx context.Context, remote config.Configured) (sheets.TableReader, error)

// Source is the data source adapter
type Source struct {
	remote config.Remote
	input  string
	files  *files.Manager
	open   ReaderOpener
	logger *slog.Logger
}

// New creates a source. A nil open uses the Sheets API with the configured
// service-account credentials.
func New(remote config.Remote, inputPath string, fm *files.Manager, open ReaderOpener, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	if fm == nil {
		fm = files.NewManager(logger)
	}
	if open == nil {
		opener := sheets.DefaultOpener(logger)
		open = func(ctx context.Context, remote config.Configured) (sheets.TableReader, error) {
			return opener(ctx, remote)
		}
	}
	if remote == nil {
		remote = config.Unconfigured{}
	}
	return &Source{
		remote: remote,
		input:  inputPath,
		files:  fm,
		open:   open,
		logger: logger,
	}
}

// Load reads the table. Remote failures are returned as-is; there is no
// fallback to the local file once a remote is configured.
func (s *Source) Load(ctx context.Context) (*table.Table, error) {
	switch remote := s.remote.(type) {
	case config.Configured:
		s.logger.InfoContext(ctx, "Loading data from spreadsheet", slog.String("sheet_id", remote.SheetID))

		reader, err := s.open(ctx, remote)
		if err != nil {
			return nil, err
		}
		return reader.ReadTable(ctx)

	case config.Unconfigured:
		s.logger.InfoContext(ctx, "No spreadsheet configured, loading local file", slog.String("path", s.input))
		return s.files.ReadTable(s.input)

	default:
		return nil, fmt.Errorf("unsupported remote configuration %T", remote)
	}
}
