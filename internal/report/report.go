// Package report renders cleaning statistics as a short plain-text report.
package report

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"sheetclean/internal/cleaning"
	apperrors "sheetclean/internal/errors"
)

const (
	Title     = "DATA CLEANING REPORT"
	Underline = "===================="
)

// Reporter writes the report file
type Reporter struct {
	path   string
	logger *slog.Logger
}

// NewReporter creates a reporter writing to path
func NewReporter(path string, logger *slog.Logger) *Reporter {
	return &Reporter{path: path, logger: logger}
}

// Render writes the two-line header and both percentages to w
func Render(w io.Writer, stats cleaning.Stats) error {
	_, err := fmt.Fprintf(w, "%s\n%s\nFilled: %.2f%% of data\nRemoved: %.2f%% of rows\n",
		Title, Underline, stats.PercentFilled, stats.PercentRowsRemoved)
	return err
}

// Write renders stats to the report file, replacing any previous report
func (r *Reporter) Write(stats cleaning.Stats) error {
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return apperrors.NewStorageError("failed to create report directory", err)
		}
	}

	f, err := os.Create(r.path)
	if err != nil {
		return apperrors.NewStorageError("failed to create report", err).WithContext("path", r.path)
	}
	defer f.Close()

	if err := Render(f, stats); err != nil {
		return apperrors.NewStorageError("failed to write report", err).WithContext("path", r.path)
	}
	if err := f.Close(); err != nil {
		return apperrors.NewStorageError("failed to close report", err).WithContext("path", r.path)
	}

	r.logger.Info("Report written", slog.String("path", r.path))
	return nil
}
