// Package cleaning implements the cleaning pass: sparse-row removal,
// median/mode imputation and z-score standardization of numeric columns.
package cleaning

import (
	"errors"
	"log/slog"

	"sheetclean/internal/table"
)

// Placeholder fills categorical columns that have no values left
const Placeholder = "no data"

// MaxMissingMargin defines the row-removal policy: a row is dropped when its
// missing-cell count exceeds columns - MaxMissingMargin. The value is fixed.
const MaxMissingMargin = 3

// ErrEmptyTable is returned for a table with no rows, for which the
// percentages are undefined.
var ErrEmptyTable = errors.New("table has no rows")

// Stats summarizes what a cleaning pass changed
type Stats struct {
	TotalCells    int
	MissingBefore int
	MissingAfter  int
	Filled        int
	RowsBefore    int
	RowsRemoved   int

	PercentFilled      float64
	PercentRowsRemoved float64
}

// Cleaner runs the cleaning pass
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a cleaner logging to logger
func NewCleaner(logger *slog.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean mutates t in place and returns the change statistics.
//
// Rows with more than columns-3 missing cells are removed, numeric columns
// are imputed with their median and categorical columns with their mode (or
// Placeholder when empty), then numeric columns are standardized to zero mean
// and unit population variance.
func (c *Cleaner) Clean(t *table.Table) (Stats, error) {
	rows := t.NumRows()
	if rows == 0 {
		return Stats{}, ErrEmptyTable
	}

	stats := Stats{
		TotalCells:    rows * t.NumColumns(),
		MissingBefore: t.MissingCount(),
		RowsBefore:    rows,
	}

	threshold := t.NumColumns() - MaxMissingMargin
	stats.RowsRemoved = t.KeepRows(func(i int) bool {
		return t.RowMissing(i) <= threshold
	})

	for _, col := range t.Columns {
		if col.Missing() == 0 {
			continue
		}
		switch col.Kind {
		case table.Numeric:
			// Median of no values is 0, which standardizes to 0 anyway.
			median := Median(col.Numbers())
			n := col.Fill(table.NumberCell(median))
			c.logger.Debug("Imputed numeric column",
				slog.String("column", col.Name),
				slog.Float64("median", median),
				slog.Int("cells", n))
		default:
			mode, ok := Mode(col.Strings())
			if !ok {
				mode = Placeholder
			}
			n := col.Fill(table.TextCell(mode))
			c.logger.Debug("Imputed categorical column",
				slog.String("column", col.Name),
				slog.String("mode", mode),
				slog.Int("cells", n))
		}
	}

	stats.MissingAfter = t.MissingCount()
	stats.Filled = stats.MissingBefore - stats.MissingAfter

	for _, col := range t.Columns {
		if col.Kind == table.Numeric {
			Standardize(col)
		}
	}

	stats.PercentFilled = 100 * float64(stats.Filled) / float64(stats.TotalCells)
	stats.PercentRowsRemoved = 100 * float64(stats.RowsRemoved) / float64(stats.RowsBefore)

	c.logger.Info("Cleaning complete",
		slog.Int("rows_before", stats.RowsBefore),
		slog.Int("rows_removed", stats.RowsRemoved),
		slog.Int("missing_before", stats.MissingBefore),
		slog.Int("missing_after", stats.MissingAfter),
		slog.Float64("percent_filled", stats.PercentFilled),
		slog.Float64("percent_rows_removed", stats.PercentRowsRemoved))

	return stats, nil
}

// Standardize rescales the present values of a numeric column to zero mean
// and unit population standard deviation. A constant column has its scale
// taken as 1 and becomes all zeros.
func Standardize(col *table.Column) {
	values := col.Numbers()
	if len(values) == 0 {
		return
	}
	mean, std := MeanStd(values)
	if std == 0 {
		std = 1
	}
	for i := range col.Cells {
		if col.Cells[i].Valid {
			col.Cells[i].Num = (col.Cells[i].Num - mean) / std
		}
	}
}
