package workbook

import (
	"fmt"

	"github.com/dictools/rcmod/internal/table"
)

// Memory is an in-memory Source, used by tests and by callers that build
// sheets programmatically.
type Memory struct {
	names []string
	grids map[string][][]string
}

// NewMemory returns an empty in-memory workbook.
func NewMemory() *Memory {
	return &Memory{grids: make(map[string][][]string)}
}

// AddSheet adds a raw grid under name, replacing any previous grid with
// that name. Sheet order follows first insertion.
func (m *Memory) AddSheet(name string, grid [][]string) {
	if _, ok := m.grids[name]; !ok {
		m.names = append(m.names, name)
	}
	m.grids[name] = grid
}

// SheetNames returns sheet names in insertion order.
func (m *Memory) SheetNames() []string {
	return append([]string{}, m.names...)
}

// Grid returns the raw grid stored under name.
func (m *Memory) Grid(name string) ([][]string, error) {
	grid, ok := m.grids[name]
	if !ok {
		return nil, fmt.Errorf("no sheet %q", name)
	}
	return grid, nil
}

// Sheet returns the named sheet with its first row as the header.
func (m *Memory) Sheet(name string) (*table.Table, error) {
	grid, err := m.Grid(name)
	if err != nil {
		return nil, err
	}
	return sheetFromGrid(grid, 0), nil
}
