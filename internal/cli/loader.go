package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dictools/rcmod/internal/schema"
	"github.com/dictools/rcmod/internal/table"
	"github.com/dictools/rcmod/internal/workbook"
)

// Overrides is a user-supplied column mapping plus any forced Form Name
// value. Two file shapes are accepted: a flat raw→canonical object, and
// the exported-map shape keyed by canonical name with
// {"fieldname": raw, "override": bool} values. An overriding Form Name
// entry carries a literal value instead of a column name.
type Overrides struct {
	Columns  map[string]string // raw → canonical
	FormName string            // literal, set when Form Name override=true
}

type mappingEntry struct {
	FieldName string `json:"fieldname"`
	Override  bool   `json:"override"`
}

// LoadOverrides reads a mapping file in either accepted shape. A missing
// path yields empty overrides.
func LoadOverrides(path string) (Overrides, error) {
	ov := Overrides{Columns: make(map[string]string)}
	if path == "" {
		return ov, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ov, fmt.Errorf("read mapping file: %w", err)
	}

	var generic map[string]json.RawMessage
	if err := json.Unmarshal(data, &generic); err != nil {
		return ov, fmt.Errorf("parse mapping file %s: %w", path, err)
	}
	for key, raw := range generic {
		var entry mappingEntry
		if err := json.Unmarshal(raw, &entry); err == nil && entry.FieldName != "" {
			// Exported-map shape: key is the canonical name.
			if entry.Override && key == schema.ColFormName {
				ov.FormName = entry.FieldName
				continue
			}
			ov.Columns[entry.FieldName] = key
			continue
		}
		var canon string
		if err := json.Unmarshal(raw, &canon); err != nil {
			return ov, fmt.Errorf("mapping file %s: entry %q is neither a string nor a mapping object", path, key)
		}
		ov.Columns[key] = canon
	}
	return ov, nil
}

// ParseDefaults parses repeated CANON=VALUE flag values into immediate
// defaults, rejecting unknown canonical names.
func ParseDefaults(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	defaults := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		canon, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("malformed default %q: want CANONICAL=VALUE", pair)
		}
		canon = strings.TrimSpace(canon)
		if !schema.IsCanonical(canon) {
			return nil, fmt.Errorf("unknown canonical column %q", canon)
		}
		defaults[canon] = value
	}
	return defaults, nil
}

// writeExportMap writes the combined column mapping in the exported-map
// shape: canonical name → {"fieldname": raw, "override": bool}. A forced
// Form Name value is recorded as an overriding entry.
func writeExportMap(path string, rawToCanon map[string]string, formName string) error {
	inverted := make(map[string]string, len(rawToCanon))
	for raw, canon := range rawToCanon {
		inverted[canon] = raw
	}
	out := make(map[string]mappingEntry)
	for _, canon := range schema.All {
		if canon == schema.ColFormName && formName != "" {
			out[canon] = mappingEntry{FieldName: formName, Override: true}
			continue
		}
		if raw, ok := inverted[canon]; ok {
			out[canon] = mappingEntry{FieldName: raw, Override: false}
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// writeTable writes t to path as .xlsx or .csv by extension.
func writeTable(path, sheetName string, t *table.Table) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return workbook.WriteExcel(path, sheetName, t)
	case ".csv":
		return workbook.WriteCSV(path, t)
	default:
		return fmt.Errorf("unsupported output format %q", ext)
	}
}

// writeLines writes a script, one command per line, trailing newline.
func writeLines(path string, lines []string) error {
	return os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
}
