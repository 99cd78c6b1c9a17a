package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/dictools/rcmod/internal/table"
)

// Excel reads sheets out of an .xlsx workbook. All cells come back as
// strings; the numeric formatting the workbook displays is what we get.
type Excel struct {
	file *excelize.File
}

// OpenExcel opens an Excel workbook for reading.
func OpenExcel(path string) (*Excel, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	return &Excel{file: f}, nil
}

// Close releases the underlying workbook handle.
func (e *Excel) Close() error {
	return e.file.Close()
}

// SheetNames returns the workbook's sheet names in workbook order.
func (e *Excel) SheetNames() []string {
	return e.file.GetSheetList()
}

// Grid returns the raw cell matrix of a sheet. Rows are ragged exactly
// as excelize reports them; consumers pad as needed.
func (e *Excel) Grid(name string) ([][]string, error) {
	rows, err := e.file.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", name, err)
	}
	return rows, nil
}

// Sheet returns a sheet with its first row interpreted as the header.
func (e *Excel) Sheet(name string) (*table.Table, error) {
	grid, err := e.Grid(name)
	if err != nil {
		return nil, err
	}
	return sheetFromGrid(grid, 0), nil
}

// WriteExcel writes t to path as a single-sheet workbook named sheetName.
func WriteExcel(path, sheetName string, t *table.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	const defaultSheet = "Sheet1"
	if sheetName == "" {
		sheetName = "Output"
	}
	if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	if err := writeRow(f, sheetName, 1, t.Columns()); err != nil {
		return err
	}
	for i := 0; i < t.NumRows(); i++ {
		if err := writeRow(f, sheetName, i+2, t.Row(i)); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, cells []string) error {
	ref, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	row := make([]any, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	if err := f.SetSheetRow(sheet, ref, &row); err != nil {
		return fmt.Errorf("write row %d: %w", rowNum, err)
	}
	return nil
}
