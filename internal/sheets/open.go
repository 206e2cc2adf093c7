package sheets

import (
	"context"
	"log/slog"

	"sheetclean/internal/config"
	"sheetclean/internal/table"
)

// TableReader reads a whole remote table
type TableReader interface {
	ReadTable(ctx context.Context) (*table.Table, error)
}

// TableWriter replaces a whole remote table
type TableWriter interface {
	ReplaceTable(ctx context.Context, t *table.Table) error
}

// Opener connects to the spreadsheet described by a Configured remote
type Opener func(ctx context.Context, remote config.Configured) (*Client, error)

// DefaultOpener authenticates with the configured service-account credentials
func DefaultOpener(logger *slog.Logger) Opener {
	return func(ctx context.Context, remote config.Configured) (*Client, error) {
		return NewFromCredentials(ctx, remote.Credentials, remote.SheetID, logger)
	}
}
