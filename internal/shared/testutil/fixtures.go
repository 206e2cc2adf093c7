package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"sheetclean/internal/table"
)

// WriteFile writes content to name inside dir and returns the full path
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// ReadFile returns the content of path
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return string(data)
}

// MustTable builds a table from string records or fails the test
func MustTable(t *testing.T, header []string, rows ...[]string) *table.Table {
	t.Helper()

	tbl, err := table.FromRecords(header, rows)
	if err != nil {
		t.Fatalf("failed to build table: %v", err)
	}
	return tbl
}
