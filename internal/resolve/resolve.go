// Package resolve implements the header resolution engine: it maps raw
// sheet columns onto the canonical schema using exact normalized matches,
// a synonym table, user overrides, and content heuristics, and detects
// which row of an unlabeled grid is the true header row.
package resolve

import (
	"strings"

	"github.com/dictools/rcmod/internal/schema"
	"github.com/dictools/rcmod/internal/table"
)

// Threshold is the minimum heuristic confidence for an automatic content
// based mapping. Below it a column stays unmapped: a silent mis-mapping
// misfiles data, an unmapped column only surfaces as missing_required.
const Threshold = 0.8

// MaxHeaderScan bounds how many candidate rows header detection tries.
const MaxHeaderScan = 20

// Result describes one resolution pass over a sheet.
type Result struct {
	// Mapping holds every raw→canonical assignment made, including
	// identity assignments for columns already canonically named.
	Mapping map[string]string
	// Unknown lists raw columns left unresolved, in encounter order.
	Unknown []string
}

// Missing returns the required canonical columns that no raw column was
// mapped onto.
func (r Result) Missing() []string {
	claimed := make(map[string]bool, len(r.Mapping))
	for _, canon := range r.Mapping {
		claimed[canon] = true
	}
	var out []string
	for _, c := range schema.Required {
		if !claimed[c] {
			out = append(out, c)
		}
	}
	return out
}

// Headers resolves the columns of t against the canonical schema without
// mutating t. Stages run in strict precedence order; a stage that claims
// a canonical target locks it against later automatic stages, and a
// canonical target is never assigned to two raw columns.
func Headers(t *table.Table, overrides map[string]string) Result {
	rawCols := t.Columns()
	mapping := make(map[string]string, len(rawCols))
	claimed := make(map[string]bool, len(schema.All))

	canonByNorm := make(map[string]string, len(schema.All))
	for _, c := range schema.All {
		canonByNorm[Normalize(c)] = c
	}

	// Stage 1: exact normalized match.
	for _, col := range rawCols {
		if canon, ok := canonByNorm[Normalize(col)]; ok && !claimed[canon] {
			mapping[col] = canon
			claimed[canon] = true
		}
	}

	// Stage 2: synonym substring lookup.
	for _, col := range rawCols {
		if _, done := mapping[col]; done {
			continue
		}
		n := Normalize(col)
		for _, syn := range synonyms {
			if strings.Contains(n, syn.Key) && !claimed[syn.Canon] {
				mapping[col] = syn.Canon
				claimed[syn.Canon] = true
				break
			}
		}
	}

	// Stage 3: user overrides win over anything automatic, displacing a
	// prior claim on the same canonical target.
	for raw, canon := range overrides {
		for prevRaw, prevCanon := range mapping {
			if prevCanon == canon && prevRaw != raw {
				delete(mapping, prevRaw)
			}
		}
		mapping[raw] = canon
	}
	// An override may also remap a raw column away from the canonical
	// target stages 1/2 had assigned it; rebuild the claim set from what
	// actually remains mapped so stage 4 can refill freed targets.
	claimed = make(map[string]bool, len(mapping))
	for _, canon := range mapping {
		claimed[canon] = true
	}

	// Stage 4: content heuristics for whatever is still missing.
	unmapped := make([]string, 0, len(rawCols))
	for _, col := range rawCols {
		if _, done := mapping[col]; !done {
			unmapped = append(unmapped, col)
		}
	}
	for _, canon := range schema.All {
		if claimed[canon] {
			continue
		}
		score, ok := scorers[canon]
		if !ok {
			continue
		}
		best, bestScore := -1, 0.0
		for i, col := range unmapped {
			if col == "" {
				continue
			}
			if s := score(col, t.Column(col)); s > bestScore {
				best, bestScore = i, s
			}
		}
		if best >= 0 && bestScore >= Threshold {
			mapping[unmapped[best]] = canon
			claimed[canon] = true
			unmapped = append(unmapped[:best], unmapped[best+1:]...)
		}
	}

	unknown := make([]string, 0, len(rawCols))
	for _, col := range rawCols {
		if _, done := mapping[col]; !done {
			unknown = append(unknown, col)
		}
	}
	return Result{Mapping: mapping, Unknown: unknown}
}

// Apply renames t's columns in place according to a raw→canonical
// mapping. Identity entries are no-ops.
func Apply(t *table.Table, mapping map[string]string) {
	for raw, canon := range mapping {
		if raw != canon {
			t.RenameColumn(raw, canon)
		}
	}
}

// FindHeaderRow scans up to MaxHeaderScan candidate rows of a raw grid,
// tentatively resolving the rows beneath each candidate as data, and
// returns the 0-based index of the row mapping the most canonical
// columns. Ties favor the earliest row. At least one data row must
// remain below the header, so the scan never reaches the last row.
func FindHeaderRow(grid [][]string, overrides map[string]string) int {
	bestIdx, bestMapped := 0, -1

	limit := len(grid) - 1
	if limit > MaxHeaderScan {
		limit = MaxHeaderScan
	}
	for i := 0; i < limit; i++ {
		sub := table.FromRows(grid[i], grid[i+1:])
		res := Headers(sub, overrides)
		if n := len(res.Mapping); n > bestMapped {
			bestMapped = n
			bestIdx = i
		}
	}
	return bestIdx
}
