package files

import (
	"github.com/xuri/excelize/v2"

	apperrors "sheetclean/internal/errors"
	"sheetclean/internal/table"
)

// readXLSX reads the first sheet of a workbook. Cell values are read raw so
// numbers keep their stored precision instead of the display format.
func readXLSX(path string) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStorageError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook has no sheets", nil).WithContext("path", path)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError("failed to read sheet rows", err).
			WithContext("path", path).
			WithContext("sheet", sheets[0])
	}
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError("workbook sheet is empty", ErrNoHeader).WithContext("path", path)
	}

	t, err := table.FromRecords(rows[0], rows[1:])
	if err != nil {
		return nil, apperrors.NewParsingError("failed to parse sheet rows", err).WithContext("path", path)
	}
	return t, nil
}

// writeXLSX writes t into the first sheet of a new workbook. Numeric cells
// stay numbers; missing cells are left blank.
func writeXLSX(path string, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]interface{}, 0, t.NumColumns())
	for _, name := range t.Header() {
		header = append(header, name)
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return apperrors.NewStorageError("failed to write header row", err).WithContext("path", path)
	}

	for i, row := range t.Values() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperrors.NewStorageError("failed to address row", err).WithContext("row", i+2)
		}
		for j, v := range row {
			if s, ok := v.(string); ok && s == "" {
				row[j] = nil
			}
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return apperrors.NewStorageError("failed to write row", err).
				WithContext("path", path).
				WithContext("row", i+2)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save workbook", err).WithContext("path", path)
	}
	return nil
}
