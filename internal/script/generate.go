// Package script produces corrective DSL scripts: a full normalization
// script from a mapping descriptor, and targeted row fixes compiled from
// classifier facts.
package script

import (
	"fmt"
	"strings"

	"github.com/dictools/rcmod/internal/mapping"
	"github.com/dictools/rcmod/internal/schema"
	"github.com/dictools/rcmod/internal/table"
	"github.com/dictools/rcmod/internal/workbook"
)

// DefaultOutputSheet names the consolidated sheet normalization scripts
// build.
const DefaultOutputSheet = "REDCap"

// GenerateOptions controls normalization script generation.
type GenerateOptions struct {
	// OutputSheet overrides the consolidated sheet name.
	OutputSheet string

	// ElideUnlabeled also drops rows whose Field Label is blank, not
	// just rows missing an identifier.
	ElideUnlabeled bool
}

// Generate emits the DSL script that replays a mapping descriptor:
// create the output sheet, ensure the canonical columns, then per sheet
// process, rename, prune blank rows, and inject immediate values.
// Sheets are visited in src order; ignored sheets are skipped.
func Generate(src workbook.Source, desc mapping.Descriptor, opts GenerateOptions) ([]string, error) {
	outputSheet := opts.OutputSheet
	if outputSheet == "" {
		outputSheet = DefaultOutputSheet
	}

	var lines []string
	emit := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	emit("CreateOutputSheet(%s)", quote(outputSheet))
	for _, col := range schema.All {
		emit("EnsureColumn(%s)", quote(col))
	}

	deleteCols := []string{quote(schema.ColVariable)}
	if opts.ElideUnlabeled {
		deleteCols = append(deleteCols, quote(schema.ColFieldLabel))
	}

	for _, name := range src.SheetNames() {
		cfg, ok := desc[name]
		if !ok || cfg.Ignore {
			continue
		}
		startRow := cfg.StartRow
		if startRow < 1 {
			startRow = 1
		}
		sheet, err := workbook.SheetAt(src, name, startRow-1)
		if err != nil {
			return nil, err
		}

		emit("")
		emit("# -- %s --", name)
		emit("ProcessSheet(%s, %d)", quote(name), startRow)

		for _, canon := range schema.All {
			if raw, ok := cfg.Mapping[canon]; ok && raw != canon {
				emit("MapColumn(%s, %s)", quote(raw), quote(canon))
			}
		}

		emit("DeleteRowsIfEmpty([%s])", strings.Join(deleteCols, ", "))

		if len(cfg.Immediate) == 0 {
			continue
		}
		// The immediates run after the delete above, so they address the
		// surviving rows: 2 through survivors+1 in header-relative terms.
		survivors := survivingRows(sheet, cfg, opts.ElideUnlabeled)
		for i := 0; i < survivors; i++ {
			rowNum := i + 2
			if form, ok := cfg.Immediate[schema.ColFormName]; ok {
				emit("SetFormName(%d, %s)", rowNum, quote(form))
			}
			for _, canon := range schema.All {
				if canon == schema.ColFormName {
					continue
				}
				if val, ok := cfg.Immediate[canon]; ok {
					emit("SetCell(%d, %s, %s)", rowNum, quote(canon), quote(val))
				}
			}
		}
	}
	return lines, nil
}

// rawName returns the raw column feeding canon on this sheet, or canon
// itself when the sheet already uses the canonical name.
func rawName(cfg mapping.Sheet, canon string) string {
	if raw, ok := cfg.Mapping[canon]; ok {
		return raw
	}
	return canon
}

// survivingRows counts the rows DeleteRowsIfEmpty will keep, mirroring
// the executor's blank test over the yet-unrenamed sheet columns.
func survivingRows(sheet *table.Table, cfg mapping.Sheet, elideUnlabeled bool) int {
	cols := []string{rawName(cfg, schema.ColVariable)}
	if elideUnlabeled {
		cols = append(cols, rawName(cfg, schema.ColFieldLabel))
	}
	n := 0
	for i := 0; i < sheet.NumRows(); i++ {
		keep := true
		for _, col := range cols {
			if strings.TrimSpace(sheet.Value(i, col)) == "" {
				keep = false
				break
			}
		}
		if keep {
			n++
		}
	}
	return n
}

// quote renders a DSL string literal.
func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
