// Package dsl implements the corrective-script language: a line-oriented
// vocabulary of primitives parsed into a closed command type and replayed
// by a stateful executor against multi-sheet tabular buffers.
package dsl

// Command is the sealed set of script primitives. Each variant carries
// its typed argument tuple, decoded once at parse time, so execution can
// dispatch with an exhaustive switch instead of dynamic name lookup.
type Command interface {
	primitive() string
}

// Choice is one (code,label) pair of a choice list.
type Choice struct {
	Code  string
	Label string
}

// CreateOutputSheet names and clears the output accumulator.
type CreateOutputSheet struct {
	Name string
}

// ProcessSheet loads a source sheet as the current sheet, committing any
// previously current sheet to the accumulator first. StartRow is the
// 1-based grid row holding the header; the data rows below it are
// addressed as rows 2, 3, ... regardless of any preamble above the
// header.
type ProcessSheet struct {
	Sheet    string
	StartRow int
}

// MapColumn renames a raw column to a canonical one in the current sheet.
type MapColumn struct {
	From string
	To   string
}

// EnsureColumn adds an empty column if absent. Idempotent.
type EnsureColumn struct {
	Column string
}

// DeleteRowsIfEmpty drops every row in which any listed column is blank.
type DeleteRowsIfEmpty struct {
	Columns []string
}

// SetCell writes a value into one cell.
type SetCell struct {
	Row    int
	Column string
	Value  string
}

// ClearCell blanks one cell.
type ClearCell struct {
	Row    int
	Column string
}

// SetFormName writes the grouping/form name of one row.
type SetFormName struct {
	Row  int
	Name string
}

// SetVariableName writes the row identifier, suffixing it as needed to
// keep identifiers globally unique.
type SetVariableName struct {
	Row  int
	Name string
}

// LowercaseVariableName lower-cases the existing row identifier in place.
type LowercaseVariableName struct {
	Row int
}

// SetFieldType writes the type tag of one row.
type SetFieldType struct {
	Row  int
	Type string
}

// SetChoices serializes a choice list into the choices column.
type SetChoices struct {
	Row     int
	Choices []Choice
}

// SetSlider serializes slider bounds and labels into the choices column.
type SetSlider struct {
	Row      int
	Min      string
	MinLabel string
	Max      string
	MaxLabel string
}

// SetFormula writes a calculation expression verbatim into the choices
// column.
type SetFormula struct {
	Row  int
	Expr string
}

// SetFormat writes a date/time format into the validation type column.
type SetFormat struct {
	Row    int
	Format string
}

// SetValidation writes validation type and bounds, ensuring all three
// validation columns exist even when only one is set.
type SetValidation struct {
	Row  int
	Type string
	Min  string
	Max  string
}

func (CreateOutputSheet) primitive() string     { return "CreateOutputSheet" }
func (ProcessSheet) primitive() string          { return "ProcessSheet" }
func (MapColumn) primitive() string             { return "MapColumn" }
func (EnsureColumn) primitive() string          { return "EnsureColumn" }
func (DeleteRowsIfEmpty) primitive() string     { return "DeleteRowsIfEmpty" }
func (SetCell) primitive() string               { return "SetCell" }
func (ClearCell) primitive() string             { return "ClearCell" }
func (SetFormName) primitive() string           { return "SetFormName" }
func (SetVariableName) primitive() string       { return "SetVariableName" }
func (LowercaseVariableName) primitive() string { return "LowercaseVariableName" }
func (SetFieldType) primitive() string          { return "SetFieldType" }
func (SetChoices) primitive() string            { return "SetChoices" }
func (SetSlider) primitive() string             { return "SetSlider" }
func (SetFormula) primitive() string            { return "SetFormula" }
func (SetFormat) primitive() string             { return "SetFormat" }
func (SetValidation) primitive() string         { return "SetValidation" }

// Name returns the primitive name of a command, for diagnostics and the
// run trace.
func Name(c Command) string { return c.primitive() }
