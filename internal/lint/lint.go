// Package lint classifies data-dictionary rows against the canonical
// schema rules: well-formed unique identifiers, known field types, and
// choice lists present where the field type demands them.
package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dictools/rcmod/internal/schema"
	"github.com/dictools/rcmod/internal/table"
)

// Verdict is the per-row outcome.
type Verdict string

const (
	// Accept means the row satisfies every rule.
	Accept Verdict = "ACCEPT"
	// Violate means at least one rule failed; reasons list which.
	Violate Verdict = "VIOLATE"
	// Ignore marks blank lines and #-comment rows, which are neither
	// counted against the dictionary nor claim their identifier.
	Ignore Verdict = "IGNORE"
)

// multiChoice lists the field types that require a choice list.
var multiChoice = map[string]bool{
	"radio":    true,
	"checkbox": true,
	"dropdown": true,
}

// Classification is the verdict payload embedded in each report record.
type Classification struct {
	Valid   bool    `json:"valid"`
	Verdict Verdict `json:"verdict"`
	Error   string  `json:"error,omitempty"`
}

// Record is one report entry. Line numbering matches the source file:
// row 0 of the buffer is line 2, after the header. The raw values of the
// key columns ride along so downstream tooling can act on the report
// without re-reading the dictionary.
type Record struct {
	Line           int            `json:"line"`
	Classification Classification `json:"classification"`
	Variable       string         `json:"Variable / Field Name"`
	FormName       string         `json:"Form Name"`
	FieldType      string         `json:"Field Type"`
	FieldLabel     string         `json:"Field Label"`
	Choices        string         `json:"Choices, Calculations, OR Slider Labels"`
}

// Summary tallies verdicts across a run.
type Summary struct {
	Accept  int
	Violate int
	Ignore  int
}

// Clean reports whether no row violated.
func (s Summary) Clean() bool { return s.Violate == 0 }

// Print writes the human-readable tally.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "\nLint Summary\n============")
	fmt.Fprintf(w, "ACCEPT  : %d\n", s.Accept)
	fmt.Fprintf(w, "VIOLATE : %d\n", s.Violate)
	if s.Ignore > 0 {
		fmt.Fprintf(w, "IGNORE  : %d\n", s.Ignore)
	}
	fmt.Fprintln(w, "============")
}

// Run classifies every row of a canonicalized dictionary and returns the
// report records with the verdict tally. Identifier uniqueness is judged
// across the whole table in row order.
func Run(t *table.Table) ([]Record, Summary) {
	records := make([]Record, 0, t.NumRows())
	var sum Summary
	seen := make(map[string]bool)

	for i := 0; i < t.NumRows(); i++ {
		verdict, reasons := classifyRow(t, i, seen)
		switch verdict {
		case Accept:
			sum.Accept++
		case Violate:
			sum.Violate++
		case Ignore:
			sum.Ignore++
		}
		records = append(records, Record{
			Line: schema.RowNumber(i),
			Classification: Classification{
				Valid:   verdict == Accept,
				Verdict: verdict,
				Error:   strings.Join(reasons, "; "),
			},
			Variable:   t.Value(i, schema.ColVariable),
			FormName:   t.Value(i, schema.ColFormName),
			FieldType:  t.Value(i, schema.ColFieldType),
			FieldLabel: t.Value(i, schema.ColFieldLabel),
			Choices:    t.Value(i, schema.ColChoices),
		})
	}
	return records, sum
}

func classifyRow(t *table.Table, idx int, seen map[string]bool) (Verdict, []string) {
	row := t.Row(idx)
	blank := true
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			blank = false
			break
		}
	}
	if blank {
		return Ignore, []string{"blank line"}
	}
	if len(row) > 0 && strings.HasPrefix(strings.TrimLeft(row[0], " \t"), "#") {
		return Ignore, []string{"comment"}
	}

	var reasons []string

	name := strings.TrimSpace(t.Value(idx, schema.ColVariable))
	switch {
	case !schema.ValidVarName(name):
		reasons = append(reasons, "invalid variable name")
	case seen[name]:
		reasons = append(reasons, "duplicate variable name")
	default:
		seen[name] = true
	}

	ftype := strings.ToLower(strings.TrimSpace(t.Value(idx, schema.ColFieldType)))
	if ftype != "" && !schema.FieldTypes[ftype] {
		reasons = append(reasons, fmt.Sprintf("unknown field type %q", ftype))
	}
	if multiChoice[ftype] && strings.TrimSpace(t.Value(idx, schema.ColChoices)) == "" {
		reasons = append(reasons, "missing choices for multi-choice field")
	}

	if len(reasons) > 0 {
		return Violate, reasons
	}
	return Accept, nil
}

// WriteReport writes the full per-line report as indented JSON, creating
// parent directories as needed.
func WriteReport(path string, records []Record) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
