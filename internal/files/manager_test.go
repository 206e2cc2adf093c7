package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "sheetclean/internal/errors"
	"sheetclean/internal/infrastructure"
	"sheetclean/internal/table"
)

func newTestManager() *Manager {
	return NewManager(infrastructure.DiscardLogger())
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"data.csv", FormatCSV},
		{"data.xlsx", FormatXLSX},
		{"DATA.XLSX", FormatXLSX},
		{"data.txt", FormatCSV},
		{"data", FormatCSV},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatOf(tt.path))
		})
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "exists.csv")
	writeFile(t, path, "a\n1\n")

	manager := newTestManager()
	assert.True(t, manager.FileExists(path))
	assert.False(t, manager.FileExists(filepath.Join(tmpDir, "missing.csv")))
}

func TestReadTableCSV(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "data.csv")
	writeFile(t, path, "\xEF\xBB\xBFage,city,score\n30,Warsaw,1.5\n,Krakow,NA\n41\n")

	tbl, err := newTestManager().ReadTable(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"age", "city", "score"}, tbl.Header())
	assert.Equal(t, 3, tbl.NumRows())

	age, ok := tbl.Column("age")
	require.True(t, ok)
	assert.Equal(t, table.Numeric, age.Kind)
	assert.Equal(t, 1, age.Missing())

	city, ok := tbl.Column("city")
	require.True(t, ok)
	assert.Equal(t, table.Categorical, city.Kind)
	assert.Equal(t, 1, city.Missing())

	score, ok := tbl.Column("score")
	require.True(t, ok)
	assert.Equal(t, table.Numeric, score.Kind)
	assert.Equal(t, 2, score.Missing())
}

func TestReadTableErrors(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := newTestManager().ReadTable(filepath.Join(tmpDir, "nope.csv"))
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	})

	t.Run("empty file", func(t *testing.T) {
		path := filepath.Join(tmpDir, "empty.csv")
		writeFile(t, path, "")

		_, err := newTestManager().ReadTable(path)
		require.Error(t, err)
		assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))
		assert.ErrorIs(t, err, ErrNoHeader)
	})

	t.Run("row longer than header", func(t *testing.T) {
		path := filepath.Join(tmpDir, "long.csv")
		writeFile(t, path, "a,b\n1,2,3\n")

		_, err := newTestManager().ReadTable(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, table.ErrRowTooLong)
	})
}

func TestWriteTableCSV(t *testing.T) {
	tbl, err := table.FromRecords(
		[]string{"name", "value"},
		[][]string{{"a, b", "1.25"}, {"c", "-0.5"}},
	)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "cleaned_data.csv")
	require.NoError(t, newTestManager().WriteTable(path, tbl))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name,value\n\"a, b\",1.25\nc,-0.5\n", string(data))
}

func TestCSVRoundTripKeepsShape(t *testing.T) {
	tbl, err := table.FromRecords(
		[]string{"x", "y"},
		[][]string{{"1", "red"}, {"", "blue"}, {"3", ""}},
	)
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, EncodeCSV(&buf, tbl))

	back, err := DecodeCSV(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, tbl.Header(), back.Header())
	assert.Equal(t, tbl.Records(), back.Records())
	assert.Equal(t, tbl.MissingCount(), back.MissingCount())
}

func TestXLSXRoundTrip(t *testing.T) {
	tbl, err := table.FromRecords(
		[]string{"id", "label", "ratio"},
		[][]string{{"1", "x", "0.333333333333"}, {"2", "", "-1.5"}, {"3", "z", ""}},
	)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "cleaned.xlsx")
	manager := newTestManager()
	require.NoError(t, manager.WriteTable(path, tbl))

	back, err := manager.ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, tbl.Header(), back.Header())
	assert.Equal(t, tbl.Records(), back.Records())

	ratio, ok := back.Column("ratio")
	require.True(t, ok)
	assert.Equal(t, table.Numeric, ratio.Kind)
	assert.InDelta(t, 0.333333333333, ratio.Cells[0].Num, 1e-12)
}

func TestReadTableXLSXUsesFirstSheet(t *testing.T) {
	f := excelize.NewFile()
	first := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(first, "A1", &[]interface{}{"n", "tag"}))
	require.NoError(t, f.SetSheetRow(first, "A2", &[]interface{}{4.5, "ok"}))
	_, err := f.NewSheet("Other")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Other", "A1", "ignored"))

	path := filepath.Join(t.TempDir(), "input.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	tbl, err := newTestManager().ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"n", "tag"}, tbl.Header())
	assert.Equal(t, [][]string{{"4.5", "ok"}}, tbl.Records())
}

func TestCopyFile(t *testing.T) {
	tmpDir := t.TempDir()
	src := filepath.Join(tmpDir, "data_student_1.csv")
	dst := filepath.Join(tmpDir, "nested", "data.csv")
	writeFile(t, src, "a,b\n1,2\n")

	manager := newTestManager()
	require.NoError(t, manager.CopyFile(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))

	err = manager.CopyFile(filepath.Join(tmpDir, "missing.csv"), dst)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}
