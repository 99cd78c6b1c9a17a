package workbook

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/dictools/rcmod/internal/table"
)

// CSV presents a delimited-text file as a workbook with one sheet whose
// name is the empty string.
type CSV struct {
	grid [][]string
}

// OpenCSV reads an entire CSV file into memory.
func OpenCSV(path string) (*CSV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // raw dictionaries are often ragged
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return &CSV{grid: records}, nil
}

// SheetNames returns the single pseudo-sheet name.
func (c *CSV) SheetNames() []string { return []string{""} }

// Grid returns the raw records. The sheet name is ignored; a CSV only
// has one sheet.
func (c *CSV) Grid(string) ([][]string, error) { return c.grid, nil }

// Sheet returns the CSV with its first record as the header.
func (c *CSV) Sheet(string) (*table.Table, error) {
	return sheetFromGrid(c.grid, 0), nil
}

// WriteCSV writes t to path with a header record.
func WriteCSV(path string, t *table.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < t.NumRows(); i++ {
		if err := w.Write(t.Row(i)); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	w.Flush()
	return w.Error()
}
