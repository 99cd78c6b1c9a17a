// Package table implements the ordered string table that sheets and the
// output accumulator are built on. Cells are always strings; a missing
// value is the empty string. Column order is preserved and meaningful.
package table

import "fmt"

// Table is a two-dimensional table of string cells with named, ordered
// columns. Duplicate column names are tolerated (raw sheets sometimes
// repeat a header); name lookups resolve to the first occurrence.
type Table struct {
	cols []string
	rows [][]string
}

// New returns an empty table with no columns.
func New() *Table {
	return &Table{}
}

// FromRows builds a table from a header and data rows. Rows shorter than
// the header are padded with empty strings; longer rows are truncated.
func FromRows(header []string, rows [][]string) *Table {
	t := &Table{cols: append([]string{}, header...)}
	for _, r := range rows {
		t.AppendRow(r)
	}
	return t
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	return append([]string{}, t.cols...)
}

// NumRows returns the number of data rows.
func (t *Table) NumRows() int { return len(t.rows) }

// NumCols returns the number of columns, counting duplicates.
func (t *Table) NumCols() int { return len(t.cols) }

// colIndex returns the position of the first column named name, or -1.
func (t *Table) colIndex(name string) int {
	for i, c := range t.cols {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumn reports whether a column named name exists.
func (t *Table) HasColumn(name string) bool {
	return t.colIndex(name) >= 0
}

// EnsureColumn adds an empty-string column named name if absent.
// Calling it again for the same name is a no-op.
func (t *Table) EnsureColumn(name string) {
	if t.HasColumn(name) {
		return
	}
	t.cols = append(t.cols, name)
	for i := range t.rows {
		t.rows[i] = append(t.rows[i], "")
	}
}

// RenameColumn renames the first column named from to to. Missing columns
// are a no-op so speculative renames are safe.
func (t *Table) RenameColumn(from, to string) {
	if i := t.colIndex(from); i >= 0 {
		t.cols[i] = to
	}
}

// Value returns the cell at row idx in the named column, or "" when the
// row or column does not exist.
func (t *Table) Value(idx int, name string) string {
	ci := t.colIndex(name)
	if ci < 0 || idx < 0 || idx >= len(t.rows) {
		return ""
	}
	return t.rows[idx][ci]
}

// Set writes value into the named column at row idx. The column must
// exist; rows outside the data region return an error.
func (t *Table) Set(idx int, name, value string) error {
	ci := t.colIndex(name)
	if ci < 0 {
		return fmt.Errorf("no column %q", name)
	}
	if idx < 0 || idx >= len(t.rows) {
		return fmt.Errorf("row index %d out of range [0,%d)", idx, len(t.rows))
	}
	t.rows[idx][ci] = value
	return nil
}

// Column returns all cell values of the first column named name, in row
// order. Returns nil when the column does not exist.
func (t *Table) Column(name string) []string {
	ci := t.colIndex(name)
	if ci < 0 {
		return nil
	}
	out := make([]string, len(t.rows))
	for i, r := range t.rows {
		out[i] = r[ci]
	}
	return out
}

// Row returns a copy of the cells of row idx, or nil when out of range.
func (t *Table) Row(idx int) []string {
	if idx < 0 || idx >= len(t.rows) {
		return nil
	}
	return append([]string{}, t.rows[idx]...)
}

// AppendRow adds a data row, padding or truncating to the column count.
func (t *Table) AppendRow(row []string) {
	r := make([]string, len(t.cols))
	copy(r, row)
	t.rows = append(t.rows, r)
}

// Append concatenates other's rows onto t, unioning column sets first.
// Columns present only in other are added to t (empty for existing rows);
// cells other lacks come through as empty strings. Row order within each
// table is preserved.
func (t *Table) Append(other *Table) {
	for _, c := range other.cols {
		t.EnsureColumn(c)
	}
	for i := range other.rows {
		r := make([]string, len(t.cols))
		for j, c := range t.cols {
			r[j] = other.Value(i, c)
		}
		t.rows = append(t.rows, r)
	}
}

// Filter keeps only the rows for which keep returns true. Surviving rows
// retain their relative order.
func (t *Table) Filter(keep func(idx int) bool) {
	out := t.rows[:0]
	for i, r := range t.rows {
		if keep(i) {
			out = append(out, r)
		}
	}
	t.rows = out
}

// DropRowsBefore removes the first n data rows. Negative or zero n is a
// no-op; n past the end empties the table.
func (t *Table) DropRowsBefore(n int) {
	if n <= 0 {
		return
	}
	if n >= len(t.rows) {
		t.rows = nil
		return
	}
	t.rows = t.rows[n:]
}

// Select returns a new table holding exactly the given columns in the
// given order. Columns t lacks come through as empty strings; columns not
// listed are dropped.
func (t *Table) Select(cols []string) *Table {
	out := &Table{cols: append([]string{}, cols...)}
	for i := range t.rows {
		r := make([]string, len(cols))
		for j, c := range cols {
			r[j] = t.Value(i, c)
		}
		out.rows = append(out.rows, r)
	}
	return out
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := &Table{cols: append([]string{}, t.cols...)}
	out.rows = make([][]string, len(t.rows))
	for i, r := range t.rows {
		out.rows[i] = append([]string{}, r...)
	}
	return out
}
