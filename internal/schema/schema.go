// Package schema defines the canonical 16-column data-dictionary layout
// that every normalized output conforms to, together with the fixed
// vocabularies (field types, text validation types) and the identifier
// naming rule shared by the resolver, linter, and DSL executor.
package schema

import "regexp"

// Canonical column names, in their fixed output order.
const (
	ColVariable       = "Variable / Field Name"
	ColFormName       = "Form Name"
	ColFieldType      = "Field Type"
	ColFieldLabel     = "Field Label"
	ColSectionHeader  = "Section Header"
	ColChoices        = "Choices, Calculations, OR Slider Labels"
	ColFieldNote      = "Field Note"
	ColValidationType = "Text Validation Type OR Show Slider Number"
	ColValidationMin  = "Text Validation Min"
	ColValidationMax  = "Text Validation Max"
	ColIdentifier     = "Identifier?"
	ColBranching      = "Branching Logic"
	ColRequired       = "Required Field?"
	ColAlignment      = "Custom Alignment"
	ColQuestionNum    = "Question Number (surveys only)"
	ColAnnotation     = "Field Annotation"
)

// Required lists the four columns every usable dictionary row depends on.
var Required = []string{
	ColVariable,
	ColFormName,
	ColFieldType,
	ColFieldLabel,
}

// Optional lists the remaining twelve canonical columns. Absent values are
// represented as empty strings in output, never omitted.
var Optional = []string{
	ColSectionHeader,
	ColChoices,
	ColFieldNote,
	ColValidationType,
	ColValidationMin,
	ColValidationMax,
	ColIdentifier,
	ColBranching,
	ColRequired,
	ColAlignment,
	ColQuestionNum,
	ColAnnotation,
}

// All is the full canonical column set in output order: Required then
// Optional.
var All = append(append([]string{}, Required...), Optional...)

// FieldTypes is the closed vocabulary of recognized field type tags.
var FieldTypes = map[string]bool{
	"text":        true,
	"notes":       true,
	"radio":       true,
	"checkbox":    true,
	"dropdown":    true,
	"calc":        true,
	"file":        true,
	"yesno":       true,
	"truefalse":   true,
	"slider":      true,
	"descriptive": true,
	"date":        true,
	"datetime":    true,
}

// ValidationTypes is the closed vocabulary of text validation type tags.
var ValidationTypes = map[string]bool{
	"integer":      true,
	"number":       true,
	"date_mdy":     true,
	"date_dmy":     true,
	"time":         true,
	"datetime_mdy": true,
	"datetime_dmy": true,
	"email":        true,
	"phone":        true,
}

// MaxVarNameLen bounds identifier length, counting the leading letter.
const MaxVarNameLen = 26

// VarNameRE matches a valid row identifier: a lowercase letter followed by
// up to MaxVarNameLen-1 lowercase letters, digits, or underscores.
var VarNameRE = regexp.MustCompile(`^[a-z][a-z0-9_]{0,25}$`)

// ValidVarName reports whether s is a well-formed row identifier.
func ValidVarName(s string) bool {
	return VarNameRE.MatchString(s)
}

var canonical = func() map[string]bool {
	m := make(map[string]bool, len(All))
	for _, c := range All {
		m[c] = true
	}
	return m
}()

var required = func() map[string]bool {
	m := make(map[string]bool, len(Required))
	for _, c := range Required {
		m[c] = true
	}
	return m
}()

// IsCanonical reports whether name is one of the 16 canonical columns.
func IsCanonical(name string) bool { return canonical[name] }

// IsRequired reports whether name is one of the four required columns.
func IsRequired(name string) bool { return required[name] }
