// Package mapping defines the persisted, hand-editable descriptor that
// records how each sheet of a dictionary maps onto the canonical schema,
// and generates descriptors by running the resolution engine over a
// workbook.
package mapping

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Sheet is the descriptor entry for one sheet.
type Sheet struct {
	// Mapping is canonical→raw: which raw column feeds each canonical
	// column. Inverted relative to the resolver's working direction
	// because the persisted artifact is keyed by what readers look up.
	Mapping map[string]string `json:"mapping" yaml:"mapping"`

	// MissingRequired lists required canonical columns that neither the
	// resolver nor an immediate value could satisfy.
	MissingRequired []string `json:"missing_required" yaml:"missing_required"`

	// StartRow is the detected header row, 1-based.
	StartRow int `json:"start_row" yaml:"start_row"`

	// Immediate holds literal values injected into every row of the
	// sheet for canonical columns with no raw counterpart.
	Immediate map[string]string `json:"immediate,omitempty" yaml:"immediate,omitempty"`

	// Ignore skips the sheet entirely during consolidation.
	Ignore bool `json:"ignore,omitempty" yaml:"ignore,omitempty"`
}

// Descriptor maps sheet names to their entries.
type Descriptor map[string]Sheet

// RenameMap returns the raw→canonical rename map for a sheet entry.
func (s Sheet) RenameMap() map[string]string {
	out := make(map[string]string, len(s.Mapping))
	for canon, raw := range s.Mapping {
		out[raw] = canon
	}
	return out
}

// Load reads a descriptor from a JSON or YAML file, chosen by extension.
// Descriptors are hand-edited between runs, so both formats are accepted.
func Load(path string) (Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	var d Descriptor
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("parse descriptor %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &d); err != nil {
			return nil, fmt.Errorf("parse descriptor %s: %w", path, err)
		}
	}
	return d, nil
}

// Save writes the descriptor as indented JSON, the interchange format
// downstream stages consume.
func Save(path string, d Descriptor) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode descriptor: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create descriptor dir: %w", err)
		}
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
