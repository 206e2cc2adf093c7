package files

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"os"

	apperrors "sheetclean/internal/errors"
	"sheetclean/internal/table"
)

// ErrNoHeader is returned when a table file has no header row
var ErrNoHeader = errors.New("file has no header row")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func readCSV(path string) (*table.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open CSV file", err).WithContext("path", path)
	}
	t, err := DecodeCSV(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	if err != nil {
		return nil, apperrors.NewParsingError("failed to parse CSV file", err).WithContext("path", path)
	}
	return t, nil
}

// DecodeCSV reads a header row followed by data rows. Rows may be shorter
// than the header; their tail is read as missing.
func DecodeCSV(r io.Reader) (*table.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoHeader
	}
	return table.FromRecords(records[0], records[1:])
}

// EncodeCSV writes the header and every row of t
func EncodeCSV(w io.Writer, t *table.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Header()); err != nil {
		return err
	}
	if err := writer.WriteAll(t.Records()); err != nil {
		return err
	}
	return writer.Error()
}

func writeCSV(path string, t *table.Table) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return apperrors.NewStorageError("failed to open CSV file", err).WithContext("path", path)
	}
	defer file.Close()

	if err := EncodeCSV(file, t); err != nil {
		return apperrors.NewStorageError("failed to write CSV file", err).WithContext("path", path)
	}
	if err := file.Close(); err != nil {
		return apperrors.NewStorageError("failed to close CSV file", err).WithContext("path", path)
	}
	return nil
}
