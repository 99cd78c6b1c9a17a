package mapping

import (
	"github.com/dictools/rcmod/internal/resolve"
	"github.com/dictools/rcmod/internal/schema"
	"github.com/dictools/rcmod/internal/workbook"
)

// Summary reports, per sheet, what resolution could not account for.
// It exists for the operator reviewing a freshly generated descriptor.
type Summary struct {
	Sheet string `json:"sheet"`
	// MissingRequired is computed before immediates paper anything over.
	MissingRequired []string `json:"missing_required,omitempty"`
	UnmappedRaw     []string `json:"unmapped_raw,omitempty"`
	UnusedCanonical []string `json:"unused_canonical,omitempty"`
}

// Generate resolves every sheet of src and builds a descriptor.
//
// A sheet with no mapped Form Name column gets the sheet name injected as
// an immediate value; defaults supplies further immediates for canonical
// columns no raw column was mapped onto. Both remove their column from
// missing_required.
func Generate(src workbook.Source, overrides, defaults map[string]string) (Descriptor, []Summary, error) {
	desc := make(Descriptor)
	var summaries []Summary

	for _, name := range src.SheetNames() {
		grid, err := src.Grid(name)
		if err != nil {
			return nil, nil, err
		}
		headerIdx := resolve.FindHeaderRow(grid, overrides)
		sheet, err := workbook.SheetAt(src, name, headerIdx)
		if err != nil {
			return nil, nil, err
		}

		res := resolve.Headers(sheet, overrides)
		canonToRaw := make(map[string]string, len(res.Mapping))
		for raw, canon := range res.Mapping {
			canonToRaw[canon] = raw
		}

		var unused []string
		for _, c := range schema.All {
			if _, ok := canonToRaw[c]; !ok {
				unused = append(unused, c)
			}
		}
		initialMissing := res.Missing()
		missing := append([]string{}, initialMissing...)

		immediate := make(map[string]string)
		if _, ok := canonToRaw[schema.ColFormName]; !ok {
			immediate[schema.ColFormName] = name
			missing = remove(missing, schema.ColFormName)
		}
		for canon, val := range defaults {
			if canon != schema.ColFormName {
				if _, ok := canonToRaw[canon]; !ok {
					immediate[canon] = val
				}
			}
			missing = remove(missing, canon)
		}

		entry := Sheet{
			Mapping:         canonToRaw,
			MissingRequired: missing,
			StartRow:        headerIdx + 1,
		}
		if len(immediate) > 0 {
			entry.Immediate = immediate
		}
		desc[name] = entry

		summaries = append(summaries, Summary{
			Sheet:           name,
			MissingRequired: initialMissing,
			UnmappedRaw:     res.Unknown,
			UnusedCanonical: unused,
		})
	}
	return desc, summaries, nil
}

func remove(list []string, item string) []string {
	out := list[:0]
	for _, v := range list {
		if v != item {
			out = append(out, v)
		}
	}
	return out
}
