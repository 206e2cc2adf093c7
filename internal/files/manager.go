package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "sheetclean/internal/errors"
	"sheetclean/internal/table"
)

// Format identifies a table file encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// FormatOf picks the encoding from the file extension. Anything that is not
// .xlsx is treated as CSV.
func FormatOf(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Manager provides table file operations
type Manager struct {
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(path)
	exists := err == nil

	m.logger.Debug("FileExists check",
		slog.String("path", path),
		slog.Bool("exists", exists))

	return exists
}

// ReadTable loads a table from path
func (m *Manager) ReadTable(path string) (*table.Table, error) {
	format := FormatOf(path)
	m.logger.Info("Reading table",
		slog.String("path", path),
		slog.String("format", string(format)))

	var (
		t   *table.Table
		err error
	)
	switch format {
	case FormatXLSX:
		t, err = readXLSX(path)
	default:
		t, err = readCSV(path)
	}
	if err != nil {
		return nil, err
	}

	m.logger.Info("Table read",
		slog.String("path", path),
		slog.Int("rows", t.NumRows()),
		slog.Int("columns", t.NumColumns()))
	return t, nil
}

// WriteTable stores t at path, replacing any existing file
func (m *Manager) WriteTable(path string, t *table.Table) error {
	format := FormatOf(path)
	m.logger.Info("Writing table",
		slog.String("path", path),
		slog.String("format", string(format)),
		slog.Int("rows", t.NumRows()))

	if err := ensureDir(path); err != nil {
		return err
	}

	switch format {
	case FormatXLSX:
		return writeXLSX(path, t)
	default:
		return writeCSV(path, t)
	}
}

// CopyFile copies a file from source to destination
func (m *Manager) CopyFile(src, dst string) error {
	m.logger.Info("Copying file",
		slog.String("src", src),
		slog.String("dst", dst))

	if err := ensureDir(dst); err != nil {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return apperrors.NewStorageError("failed to open source file", err).WithContext("path", src)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return apperrors.NewStorageError("failed to create destination file", err).WithContext("path", dst)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return apperrors.NewStorageError("failed to copy file content", err).WithContext("path", dst)
	}

	// Sync to ensure write is complete
	if err := dstFile.Sync(); err != nil {
		return apperrors.NewStorageError("failed to sync destination file", err).WithContext("path", dst)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("failed to create directory %s", dir), err)
	}
	return nil
}
