package resolve

import (
	"regexp"
	"strings"

	"github.com/dictools/rcmod/internal/schema"
)

// Content scorers return a confidence in [0,1] that a column's values
// belong to a given canonical field. An empty column (no non-empty cells)
// always scores 0.0: no evidence, do not map.

var (
	numberRE   = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	ordinalRE  = regexp.MustCompile(`^\d+(\.\d+)?$`)
	bracketRE  = regexp.MustCompile(`\[.*\]`)
	whitespace = regexp.MustCompile(`\s`)
)

var yesNoValues = map[string]bool{
	"y": true, "n": true, "yes": true, "no": true, "true": true, "false": true,
}

var alignmentValues = map[string]bool{
	"L": true, "C": true, "R": true, "LEFT": true, "CENTER": true, "RIGHT": true,
}

// scorer rates the non-empty values of a candidate column for one
// canonical field. header is the raw column name, available to scorers
// that also weigh the name itself.
type scorer func(header string, values []string) float64

// scorers holds one content heuristic per canonical field.
var scorers = map[string]scorer{
	schema.ColVariable:       scoreVariable,
	schema.ColFormName:       scoreFormName,
	schema.ColFieldType:      scoreFieldType,
	schema.ColFieldLabel:     scoreFieldLabel,
	schema.ColSectionHeader:  fractionOf(func(v string) bool { return whitespace.MatchString(v) }),
	schema.ColChoices:        fractionOf(func(v string) bool { return strings.Contains(v, "|") }),
	schema.ColFieldNote:      fractionOf(func(v string) bool { return len(v) > 20 }),
	schema.ColValidationType: fractionOf(func(v string) bool { return schema.ValidationTypes[strings.ToLower(v)] }),
	schema.ColValidationMin:  fractionOf(numberRE.MatchString),
	schema.ColValidationMax:  fractionOf(numberRE.MatchString),
	schema.ColIdentifier:     fractionOf(func(v string) bool { return yesNoValues[strings.ToLower(v)] }),
	schema.ColBranching:      fractionOf(bracketRE.MatchString),
	schema.ColRequired:       fractionOf(func(v string) bool { return yesNoValues[strings.ToLower(v)] }),
	schema.ColAlignment:      fractionOf(func(v string) bool { return alignmentValues[strings.ToUpper(v)] }),
	schema.ColQuestionNum:    fractionOf(ordinalRE.MatchString),
	schema.ColAnnotation:     fractionOf(func(v string) bool { return strings.HasPrefix(v, "@") }),
}

// nonEmpty filters out empty cells. Scoring only ever looks at cells that
// hold a value.
func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func fraction(values []string, pred func(string) bool) float64 {
	if len(values) == 0 {
		return 0.0
	}
	n := 0
	for _, v := range values {
		if pred(v) {
			n++
		}
	}
	return float64(n) / float64(len(values))
}

// fractionOf lifts a per-value predicate into a scorer over the non-empty
// cells, with the empty-column-scores-zero rule applied.
func fractionOf(pred func(string) bool) scorer {
	return func(_ string, values []string) float64 {
		return fraction(nonEmpty(values), pred)
	}
}

func uniqueFraction(values []string) float64 {
	if len(values) == 0 {
		return 0.0
	}
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		seen[v] = true
	}
	return float64(len(seen)) / float64(len(values))
}

// scoreVariable blends identifier-pattern conformance with uniqueness:
// row identifiers both look like variable names and rarely repeat.
func scoreVariable(_ string, values []string) float64 {
	non := nonEmpty(values)
	if len(non) == 0 {
		return 0.0
	}
	return 0.5*fraction(non, schema.ValidVarName) + 0.5*uniqueFraction(non)
}

// scoreFormName blends pattern conformance with repetition: grouping tags
// look like identifiers but recur across many rows.
func scoreFormName(_ string, values []string) float64 {
	non := nonEmpty(values)
	if len(non) == 0 {
		return 0.0
	}
	return 0.7*fraction(non, schema.ValidVarName) + 0.3*(1-uniqueFraction(non))
}

func scoreFieldType(_ string, values []string) float64 {
	non := nonEmpty(values)
	return fraction(non, func(v string) bool { return schema.FieldTypes[strings.ToLower(v)] })
}

// scoreFieldLabel rates the fraction of values containing whitespace,
// boosted when the raw header itself mentions "label".
func scoreFieldLabel(header string, values []string) float64 {
	non := nonEmpty(values)
	if len(non) == 0 {
		return 0.0
	}
	base := fraction(non, whitespace.MatchString)
	if strings.Contains(strings.ToLower(header), "label") {
		base += 0.25
	}
	if base > 1.0 {
		base = 1.0
	}
	return base
}
