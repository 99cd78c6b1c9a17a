// Package workbook loads and writes the tabular containers dictionaries
// live in. Excel workbooks can hold several sheets; a CSV file behaves
// as a workbook with a single, unnamed sheet.
package workbook

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dictools/rcmod/internal/table"
)

// Source is a read-only multi-sheet container. Grid returns the raw cell
// matrix of a sheet with no header interpretation; Sheet interprets the
// first row as the header.
type Source interface {
	SheetNames() []string
	Grid(name string) ([][]string, error)
	Sheet(name string) (*table.Table, error)
}

// Open returns a Source for path based on its extension.
func Open(path string) (Source, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx", ".xlsm", ".xls":
		return OpenExcel(path)
	case ".csv":
		return OpenCSV(path)
	default:
		return nil, fmt.Errorf("unsupported dictionary format %q", ext)
	}
}

// sheetFromGrid interprets row headerIdx of a raw grid as the header and
// everything below it as data.
func sheetFromGrid(grid [][]string, headerIdx int) *table.Table {
	if headerIdx < 0 || headerIdx >= len(grid) {
		return table.New()
	}
	return table.FromRows(grid[headerIdx], grid[headerIdx+1:])
}

// SheetAt returns the named sheet of src with the header taken from the
// given 0-based grid row instead of row 0.
func SheetAt(src Source, name string, headerIdx int) (*table.Table, error) {
	grid, err := src.Grid(name)
	if err != nil {
		return nil, err
	}
	return sheetFromGrid(grid, headerIdx), nil
}
