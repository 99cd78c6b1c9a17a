package dsl

import (
	"fmt"
	"strings"

	"github.com/dictools/rcmod/internal/mapping"
	"github.com/dictools/rcmod/internal/schema"
	"github.com/dictools/rcmod/internal/table"
	"github.com/dictools/rcmod/internal/workbook"
)

// DefaultOutputSheet names the accumulator when no CreateOutputSheet is
// ever issued.
const DefaultOutputSheet = "Output"

// Executor replays a script against a source workbook. It is a small
// state machine over three session-scoped pieces of state: the current
// sheet buffer, the output accumulator, and the set of row identifiers
// seen so far. Identifier state is owned by the executor instance, not
// shared globally, so independent runs never interfere.
type Executor struct {
	source workbook.Source
	desc   mapping.Descriptor

	outputName string
	output     *table.Table // nil until first needed
	current    *table.Table // nil while idle

	// columnMappings records MapColumn renames for the current sheet,
	// for traceability only.
	columnMappings map[string]string

	// seen accumulates accepted row identifiers across all sheets of
	// the run. Never cleared: uniqueness is dictionary-wide.
	seen map[string]bool
}

// Option configures an Executor.
type Option func(*Executor)

// WithDescriptor supplies a mapping descriptor; ProcessSheet then applies
// the sheet's raw→canonical renames before any commands run against it.
func WithDescriptor(d mapping.Descriptor) Option {
	return func(e *Executor) { e.desc = d }
}

// NewExecutor creates an executor over a source workbook. source may be
// nil for flat-mode scripts that never call ProcessSheet.
func NewExecutor(source workbook.Source, opts ...Option) *Executor {
	e := &Executor{
		source:         source,
		columnMappings: make(map[string]string),
		seen:           make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// active returns the buffer write-side primitives target: the current
// sheet when one is in progress, otherwise the output accumulator,
// created lazily. Flat-mode scripts write straight into the accumulator.
func (e *Executor) active() *table.Table {
	if e.current != nil {
		return e.current
	}
	if e.output == nil {
		e.output = table.New()
	}
	return e.output
}

// Apply executes one command. Errors carry no line position; the script
// runner attaches it.
func (e *Executor) Apply(cmd Command) *Error {
	switch c := cmd.(type) {
	case CreateOutputSheet:
		e.outputName = c.Name
		e.output = table.New()

	case ProcessSheet:
		return e.processSheet(c)

	case MapColumn:
		if e.current == nil {
			return missingContextError("MapColumn")
		}
		e.current.RenameColumn(c.From, c.To)
		e.columnMappings[c.From] = c.To

	case EnsureColumn:
		e.active().EnsureColumn(c.Column)

	case DeleteRowsIfEmpty:
		if e.current == nil {
			return missingContextError("DeleteRowsIfEmpty")
		}
		for _, col := range c.Columns {
			e.current.EnsureColumn(col)
		}
		e.current.Filter(func(idx int) bool {
			for _, col := range c.Columns {
				if strings.TrimSpace(e.current.Value(idx, col)) == "" {
					return false
				}
			}
			return true
		})

	case SetCell:
		e.setCell(c.Row, c.Column, c.Value)

	case ClearCell:
		e.setCell(c.Row, c.Column, "")

	case SetFormName:
		e.setCell(c.Row, schema.ColFormName, c.Name)

	case SetVariableName:
		e.setVariableName(c.Row, c.Name)

	case LowercaseVariableName:
		return e.lowercaseVariableName(c.Row)

	case SetFieldType:
		e.setCell(c.Row, schema.ColFieldType, c.Type)

	case SetChoices:
		parts := make([]string, len(c.Choices))
		for i, ch := range c.Choices {
			parts[i] = fmt.Sprintf("%s,%s", ch.Code, ch.Label)
		}
		e.setCell(c.Row, schema.ColChoices, strings.Join(parts, " | "))

	case SetSlider:
		e.setCell(c.Row, schema.ColChoices,
			fmt.Sprintf("%s,%s | %s,%s", c.Min, c.MinLabel, c.Max, c.MaxLabel))

	case SetFormula:
		e.setCell(c.Row, schema.ColChoices, c.Expr)

	case SetFormat:
		buf := e.active()
		buf.EnsureColumn(schema.ColValidationType)
		buf.EnsureColumn(schema.ColValidationMin)
		buf.EnsureColumn(schema.ColValidationMax)
		idx := schema.BufferIndex(c.Row)
		if idx >= 0 && idx < buf.NumRows() {
			buf.Set(idx, schema.ColValidationType, c.Format)
		}

	case SetValidation:
		buf := e.active()
		buf.EnsureColumn(schema.ColValidationType)
		buf.EnsureColumn(schema.ColValidationMin)
		buf.EnsureColumn(schema.ColValidationMax)
		idx := schema.BufferIndex(c.Row)
		if idx >= 0 && idx < buf.NumRows() {
			buf.Set(idx, schema.ColValidationType, c.Type)
			buf.Set(idx, schema.ColValidationMin, c.Min)
			buf.Set(idx, schema.ColValidationMax, c.Max)
		}

	default:
		// decode produces only the variants above.
		return contractErrorf("unhandled primitive %s", Name(cmd))
	}
	return nil
}

func (e *Executor) processSheet(c ProcessSheet) *Error {
	if e.current != nil {
		e.commitCurrent()
	}
	if e.source == nil {
		return missingContextError("ProcessSheet")
	}
	headerIdx := c.StartRow - 1
	if headerIdx < 0 {
		headerIdx = 0
	}
	sheet, err := workbook.SheetAt(e.source, c.Sheet, headerIdx)
	if err != nil {
		return contractErrorf("ProcessSheet: %v", err)
	}
	e.current = sheet
	e.columnMappings = make(map[string]string)

	if entry, ok := e.desc[c.Sheet]; ok {
		for raw, canon := range entry.RenameMap() {
			e.current.RenameColumn(raw, canon)
			e.columnMappings[raw] = canon
		}
	}

	// Pre-seed identifiers already on the sheet so later writes stay
	// unique against them.
	for _, v := range e.current.Column(schema.ColVariable) {
		if name := strings.TrimSpace(v); name != "" {
			e.seen[name] = true
		}
	}
	return nil
}

// SeedSheet loads the named sheet (header at grid row 0) into the output
// accumulator so that a script with no ProcessSheet edits real dictionary
// rows instead of an empty buffer. Descriptor renames for the sheet are
// applied and existing identifiers registered, the same preparation
// ProcessSheet performs.
func (e *Executor) SeedSheet(name string) error {
	if e.source == nil {
		return fmt.Errorf("no source workbook to seed from")
	}
	sheet, err := e.source.Sheet(name)
	if err != nil {
		return err
	}
	if entry, ok := e.desc[name]; ok {
		for raw, canon := range entry.RenameMap() {
			sheet.RenameColumn(raw, canon)
		}
	}
	for _, v := range sheet.Column(schema.ColVariable) {
		if n := strings.TrimSpace(v); n != "" {
			e.seen[n] = true
		}
	}
	e.output = sheet
	return nil
}

// setCell ensures the column exists, then writes if the row is in range.
// Rows outside the buffer are silently ignored: scripts may address rows
// an earlier DeleteRowsIfEmpty removed.
func (e *Executor) setCell(row int, column, value string) {
	buf := e.active()
	buf.EnsureColumn(column)
	idx := schema.BufferIndex(row)
	if idx >= 0 && idx < buf.NumRows() {
		buf.Set(idx, column, value)
	}
}

// uniqueName suffixes base with _2, _3, ... until it is not yet seen.
func (e *Executor) uniqueName(base string) string {
	candidate := base
	for suffix := 2; e.seen[candidate]; suffix++ {
		candidate = fmt.Sprintf("%s_%d", base, suffix)
	}
	return candidate
}

func (e *Executor) setVariableName(row int, name string) {
	buf := e.active()
	buf.EnsureColumn(schema.ColVariable)
	idx := schema.BufferIndex(row)
	if idx < 0 || idx >= buf.NumRows() {
		return
	}
	accepted := e.uniqueName(name)
	buf.Set(idx, schema.ColVariable, accepted)
	e.seen[accepted] = true
}

func (e *Executor) lowercaseVariableName(row int) *Error {
	buf := e.active()
	buf.EnsureColumn(schema.ColVariable)
	idx := schema.BufferIndex(row)
	if idx < 0 || idx >= buf.NumRows() {
		return nil
	}
	current := buf.Value(idx, schema.ColVariable)
	lowered := strings.ToLower(current)
	if lowered == "" {
		return nil
	}
	if !schema.ValidVarName(lowered) {
		return contractErrorf("LowercaseVariableName would still violate naming rules: %q", current)
	}
	accepted := e.uniqueName(lowered)
	buf.Set(idx, schema.ColVariable, accepted)
	e.seen[accepted] = true
	return nil
}

// commitCurrent appends the current sheet's rows to the accumulator and
// leaves the executor idle.
func (e *Executor) commitCurrent() {
	if e.current == nil {
		return
	}
	if e.output == nil {
		e.output = e.current.Clone()
	} else {
		e.output.Append(e.current)
	}
	e.current = nil
	e.columnMappings = make(map[string]string)
}

// OutputName returns the accumulator's sheet name.
func (e *Executor) OutputName() string {
	if e.outputName == "" {
		return DefaultOutputSheet
	}
	return e.outputName
}

// Finalize commits any still-active sheet and returns the consolidated
// output: every canonical column present, in canonical order, non-schema
// columns dropped. Rows keep sheet processing order.
func (e *Executor) Finalize() *table.Table {
	e.commitCurrent()
	if e.output == nil {
		e.output = table.New()
	}
	for _, col := range schema.All {
		e.output.EnsureColumn(col)
	}
	return e.output.Select(schema.All)
}
