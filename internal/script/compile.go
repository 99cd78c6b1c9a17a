package script

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dictools/rcmod/internal/schema"
)

// Fact is one corrective record from the external classifier: a flagged
// row plus the inferred correction. The JSON keys mirror the report the
// linter emits, augmented with inference fields.
type Fact struct {
	Line                 int             `json:"line"`
	InferredFieldType    string          `json:"inferred_field_type"`
	Configuration        json.RawMessage `json:"configuration"`
	Variable             string          `json:"Variable / Field Name"`
	InferredVariableName string          `json:"inferred_variable_name"`
	Classification       Classification  `json:"classification"`
}

// Classification carries the linter verdict for the row. Older reports
// use a single error string, newer ones a list; both are accepted.
type Classification struct {
	Valid  bool     `json:"valid"`
	Error  string   `json:"error,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// Type-specific configuration payloads.

type choicePayload struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type choicesPayload struct {
	Choices []choicePayload `json:"choices"`
}

type sliderPayload struct {
	Min      json.Number `json:"min"`
	MinLabel string      `json:"min_label"`
	Max      json.Number `json:"max"`
	MaxLabel string      `json:"max_label"`
}

type calcPayload struct {
	Formula string `json:"formula"`
}

type datePayload struct {
	Format string `json:"format"`
}

type textPayload struct {
	ValidationType string      `json:"validation_type"`
	Min            json.Number `json:"min"`
	Max            json.Number `json:"max"`
}

// LoadFacts reads a classifier report from a JSON file.
func LoadFacts(path string) ([]Fact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var facts []Fact
	if err := json.Unmarshal(data, &facts); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return facts, nil
}

// Compile turns classifier facts into row-level DSL ops. The script is
// flat-mode: it assumes the dictionary has already been canonicalized by
// a descriptor or normalization script, so it emits no renames.
//
// Field type tags are written as barewords, matching the scripts the
// original tooling produced.
func Compile(facts []Fact) ([]string, error) {
	var lines []string
	emit := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	// The section header column is optional in sources but expected in
	// every output, so every fix script starts by ensuring it.
	emit("EnsureColumn(%s)", quote(schema.ColSectionHeader))

	for _, f := range facts {
		if !schema.ValidVarName(f.Variable) && f.InferredVariableName != "" {
			emit("SetVariableName(%d, %s)", f.Line, quote(f.InferredVariableName))
		}

		ftype := f.InferredFieldType
		if ftype == "" {
			continue
		}
		emit("SetFieldType(%d, %s)", f.Line, ftype)

		switch ftype {
		case "yesno", "truefalse":
			var choices []choicePayload
			if len(f.Configuration) > 0 {
				// Boolean payloads are a bare array; tolerate absence.
				_ = json.Unmarshal(f.Configuration, &choices)
			}
			if len(choices) == 0 {
				choices = []choicePayload{{Code: "1", Label: "Yes"}, {Code: "0", Label: "No"}}
			}
			emit("SetChoices(%d, %s)", f.Line, choiceList(choices))

		case "radio", "checkbox", "dropdown":
			var cfg choicesPayload
			if err := json.Unmarshal(f.Configuration, &cfg); err != nil {
				return nil, fmt.Errorf("line %d: bad %s configuration: %w", f.Line, ftype, err)
			}
			emit("SetChoices(%d, %s)", f.Line, choiceList(cfg.Choices))

		case "slider":
			var cfg sliderPayload
			if err := json.Unmarshal(f.Configuration, &cfg); err != nil {
				return nil, fmt.Errorf("line %d: bad slider configuration: %w", f.Line, err)
			}
			emit("SetSlider(%d, %s, %s, %s, %s)",
				f.Line, number(cfg.Min), quote(cfg.MinLabel), number(cfg.Max), quote(cfg.MaxLabel))

		case "calc":
			var cfg calcPayload
			if err := json.Unmarshal(f.Configuration, &cfg); err != nil {
				return nil, fmt.Errorf("line %d: bad calc configuration: %w", f.Line, err)
			}
			emit("SetFormula(%d, %s)", f.Line, quote(cfg.Formula))

		case "date", "datetime":
			var cfg datePayload
			if err := json.Unmarshal(f.Configuration, &cfg); err != nil {
				return nil, fmt.Errorf("line %d: bad %s configuration: %w", f.Line, ftype, err)
			}
			emit("SetFormat(%d, %s)", f.Line, quote(cfg.Format))

		case "text":
			var cfg textPayload
			if err := json.Unmarshal(f.Configuration, &cfg); err != nil {
				return nil, fmt.Errorf("line %d: bad text configuration: %w", f.Line, err)
			}
			emit("SetValidation(%d, %s, %s, %s)",
				f.Line, quote(cfg.ValidationType), quote(cfg.Min.String()), quote(cfg.Max.String()))
			emit("ClearCell(%d, %s)", f.Line, quote(schema.ColChoices))
		}
	}
	return lines, nil
}

func choiceList(choices []choicePayload) string {
	parts := make([]string, len(choices))
	for i, c := range choices {
		parts[i] = fmt.Sprintf("(%s,%s)", quote(c.Code), quote(c.Label))
	}
	out := "["
	for i, p := range parts {
		if i > 0 {
			out += ","
		}
		out += p
	}
	return out + "]"
}

// number renders a numeric argument bare, defaulting to 0 when the
// classifier omitted it.
func number(n json.Number) string {
	if n == "" {
		return "0"
	}
	return n.String()
}
