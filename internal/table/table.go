// Package table holds the flat, in-memory table a cleaning run operates on.
//
// A Table is an ordered list of named columns of equal length. Every column is
// either numeric or categorical and every cell may be missing. Tables are
// built from string records (CSV rows, spreadsheet rows) with FromRecords and
// rendered back with Records or Values.
package table

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var (
	ErrColumnLength    = errors.New("columns have different lengths")
	ErrRowTooLong      = errors.New("row has more cells than the header")
	ErrDuplicateColumn = errors.New("duplicate column name")
)

// Kind is the value type of a column
type Kind int

const (
	Categorical Kind = iota
	Numeric
)

func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "categorical"
}

// Cell is a single table value. Num is used by numeric columns and Str by
// categorical ones. A cell with Valid == false is missing.
type Cell struct {
	Num   float64
	Str   string
	Valid bool
}

// NumberCell returns a present numeric cell
func NumberCell(v float64) Cell { return Cell{Num: v, Valid: true} }

// TextCell returns a present categorical cell
func TextCell(s string) Cell { return Cell{Str: s, Valid: true} }

// MissingCell returns a missing cell
func MissingCell() Cell { return Cell{} }

// Column is a named sequence of cells of one kind
type Column struct {
	Name  string
	Kind  Kind
	Cells []Cell
}

// Missing returns the number of missing cells in the column
func (c *Column) Missing() int {
	n := 0
	for _, cell := range c.Cells {
		if !cell.Valid {
			n++
		}
	}
	return n
}

// Numbers returns the present values of a numeric column, in row order
func (c *Column) Numbers() []float64 {
	out := make([]float64, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if cell.Valid {
			out = append(out, cell.Num)
		}
	}
	return out
}

// Strings returns the present values of a categorical column, in row order
func (c *Column) Strings() []string {
	out := make([]string, 0, len(c.Cells))
	for _, cell := range c.Cells {
		if cell.Valid {
			out = append(out, cell.Str)
		}
	}
	return out
}

// Fill replaces every missing cell with v and returns how many were replaced
func (c *Column) Fill(v Cell) int {
	v.Valid = true
	n := 0
	for i := range c.Cells {
		if !c.Cells[i].Valid {
			c.Cells[i] = v
			n++
		}
	}
	return n
}

// Table is an ordered set of equal-length columns
type Table struct {
	Columns []*Column
}

// New builds a table from columns, checking names and lengths
func New(columns ...*Column) (*Table, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, col := range columns {
		if _, dup := seen[col.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, col.Name)
		}
		seen[col.Name] = struct{}{}
		if len(col.Cells) != len(columns[0].Cells) {
			return nil, fmt.Errorf("%w: %q has %d cells, %q has %d",
				ErrColumnLength, col.Name, len(col.Cells), columns[0].Name, len(columns[0].Cells))
		}
	}
	return &Table{Columns: columns}, nil
}

// NumRows returns the number of rows
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// NumColumns returns the number of columns
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// Header returns the column names in order
func (t *Table) Header() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Column looks up a column by name
func (t *Table) Column(name string) (*Column, bool) {
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return nil, false
}

// MissingCount returns the number of missing cells in the table
func (t *Table) MissingCount() int {
	n := 0
	for _, col := range t.Columns {
		n += col.Missing()
	}
	return n
}

// RowMissing returns the number of missing cells in row i
func (t *Table) RowMissing(i int) int {
	n := 0
	for _, col := range t.Columns {
		if !col.Cells[i].Valid {
			n++
		}
	}
	return n
}

// KeepRows drops every row for which keep returns false, preserving order,
// and returns the number of rows dropped.
func (t *Table) KeepRows(keep func(row int) bool) int {
	rows := t.NumRows()
	kept := make([]int, 0, rows)
	for i := 0; i < rows; i++ {
		if keep(i) {
			kept = append(kept, i)
		}
	}
	if len(kept) == rows {
		return 0
	}
	for _, col := range t.Columns {
		cells := make([]Cell, len(kept))
		for j, i := range kept {
			cells[j] = col.Cells[i]
		}
		col.Cells = cells
	}
	return rows - len(kept)
}

// Records renders the table body as strings. Missing cells become "".
func (t *Table) Records() [][]string {
	rows := t.NumRows()
	out := make([][]string, rows)
	for i := 0; i < rows; i++ {
		record := make([]string, len(t.Columns))
		for j, col := range t.Columns {
			record[j] = col.format(i)
		}
		out[i] = record
	}
	return out
}

// Values renders the table body for APIs that keep numbers typed: numeric
// cells become float64, everything else a string.
func (t *Table) Values() [][]interface{} {
	rows := t.NumRows()
	out := make([][]interface{}, rows)
	for i := 0; i < rows; i++ {
		row := make([]interface{}, len(t.Columns))
		for j, col := range t.Columns {
			cell := col.Cells[i]
			if col.Kind == Numeric && cell.Valid && !math.IsNaN(cell.Num) && !math.IsInf(cell.Num, 0) {
				row[j] = cell.Num
			} else {
				row[j] = col.format(i)
			}
		}
		out[i] = row
	}
	return out
}

func (c *Column) format(i int) string {
	cell := c.Cells[i]
	if !cell.Valid {
		return ""
	}
	if c.Kind == Numeric {
		return FormatNumber(cell.Num)
	}
	return cell.Str
}

// FormatNumber renders v with the fewest digits that round-trip, switching to
// exponent notation for very small or very large magnitudes.
func FormatNumber(v float64) string {
	abs := math.Abs(v)
	if abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// missingMarkers are the raw values read as a missing cell
var missingMarkers = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsMissing reports whether a raw value denotes a missing cell
func IsMissing(raw string) bool {
	_, ok := missingMarkers[strings.TrimSpace(raw)]
	return ok
}

// FromRecords builds a table from a header and string rows. Short rows are
// padded with missing cells. A column is numeric when it has at least one
// present value and all present values parse as numbers.
func FromRecords(header []string, rows [][]string) (*Table, error) {
	width := len(header)
	for i, row := range rows {
		if len(row) <= width {
			continue
		}
		for _, extra := range row[width:] {
			if !IsMissing(extra) {
				return nil, fmt.Errorf("%w: row %d has %d cells, header has %d", ErrRowTooLong, i+1, len(row), width)
			}
		}
	}

	columns := make([]*Column, width)
	for j, name := range header {
		raw := make([]string, len(rows))
		for i, row := range rows {
			if j < len(row) {
				raw[i] = row[j]
			}
		}
		columns[j] = parseColumn(strings.TrimSpace(name), raw)
	}

	return New(columns...)
}

func parseColumn(name string, raw []string) *Column {
	cells := make([]Cell, len(raw))
	numeric, present := true, 0
	for i, v := range raw {
		if IsMissing(v) {
			continue
		}
		present++
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		// ParseFloat accepts "inf" and "NAN"; those stay text.
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			numeric = false
		}
		cells[i] = Cell{Num: f, Str: v, Valid: true}
	}

	kind := Categorical
	if numeric && present > 0 {
		kind = Numeric
	}
	for i := range cells {
		if kind == Numeric {
			cells[i].Str = ""
		} else {
			cells[i].Num = 0
		}
	}
	return &Column{Name: name, Kind: kind, Cells: cells}
}
