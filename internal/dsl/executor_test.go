package dsl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dictools/rcmod/internal/mapping"
	"github.com/dictools/rcmod/internal/schema"
	"github.com/dictools/rcmod/internal/workbook"
)

func testSource() *workbook.Memory {
	src := workbook.NewMemory()
	src.AddSheet("Demographics", [][]string{
		{"Field ID", "Kind", "Desc"},
		{"age", "text", "Age in years"},
		{"sex", "radio", "Sex at birth"},
		{"", "", ""},
	})
	src.AddSheet("Labs", [][]string{
		{"Field ID", "Kind", "Desc"},
		{"glucose", "text", "Fasting glucose"},
	})
	return src
}

func run(t *testing.T, e *Executor, script string) *Error {
	t.Helper()
	err := e.RunScript(strings.NewReader(script), nil)
	if err == nil {
		return nil
	}
	var serr *Error
	require.ErrorAs(t, err, &serr)
	return serr
}

func TestExecutor_NormalizationEndToEnd(t *testing.T) {
	script := `
CreateOutputSheet("REDCap")

# -- Demographics --
ProcessSheet("Demographics", 1)
MapColumn("Field ID", "Variable / Field Name")
MapColumn("Kind", "Field Type")
MapColumn("Desc", "Field Label")
DeleteRowsIfEmpty(["Variable / Field Name"])
SetFormName(2, "demographics")
SetFormName(3, "demographics")

# -- Labs --
ProcessSheet("Labs", 1)
MapColumn("Field ID", "Variable / Field Name")
MapColumn("Kind", "Field Type")
MapColumn("Desc", "Field Label")
SetFormName(2, "labs")
`
	e := NewExecutor(testSource())
	require.Nil(t, run(t, e, script))

	out := e.Finalize()
	assert.Equal(t, "REDCap", e.OutputName())
	assert.Equal(t, schema.All, out.Columns())
	require.Equal(t, 3, out.NumRows())

	assert.Equal(t, "age", out.Value(0, schema.ColVariable))
	assert.Equal(t, "demographics", out.Value(0, schema.ColFormName))
	assert.Equal(t, "sex", out.Value(1, schema.ColVariable))
	// Sheets concatenate in processing order.
	assert.Equal(t, "glucose", out.Value(2, schema.ColVariable))
	assert.Equal(t, "labs", out.Value(2, schema.ColFormName))
	// Optional columns come through as empty strings, never omitted.
	assert.Equal(t, "", out.Value(0, schema.ColAnnotation))
}

func TestExecutor_DescriptorRenamesApply(t *testing.T) {
	desc := mapping.Descriptor{
		"Demographics": {
			Mapping: map[string]string{
				schema.ColVariable:   "Field ID",
				schema.ColFieldType:  "Kind",
				schema.ColFieldLabel: "Desc",
			},
			StartRow: 1,
		},
	}
	e := NewExecutor(testSource(), WithDescriptor(desc))
	require.Nil(t, run(t, e, `
ProcessSheet("Demographics", 1)
DeleteRowsIfEmpty(["Variable / Field Name"])
`))
	out := e.Finalize()
	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, "age", out.Value(0, schema.ColVariable))
}

func TestExecutor_StartRowSelectsHeaderRow(t *testing.T) {
	src := workbook.NewMemory()
	src.AddSheet("S", [][]string{
		{"Cohort Dictionary", ""},
		{"exported 2024-11-02", ""},
		{"Variable / Field Name", "Field Label"},
		{"age", "Age in years"},
		{"sex", "Sex at birth"},
	})
	e := NewExecutor(src)
	// The header sits at grid row 3; the preamble above it never enters
	// the buffer, and data rows are addressed from 2 as usual.
	require.Nil(t, run(t, e, `
ProcessSheet("S", 3)
DeleteRowsIfEmpty(["Variable / Field Name"])
SetCell(2, "Field Label", "Age (years)")
`))
	out := e.Finalize()
	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, "age", out.Value(0, schema.ColVariable))
	assert.Equal(t, "Age (years)", out.Value(0, schema.ColFieldLabel))
	assert.Equal(t, "sex", out.Value(1, schema.ColVariable))
}

func TestExecutor_UniquenessSuffixing(t *testing.T) {
	src := workbook.NewMemory()
	src.AddSheet("S", [][]string{
		{"Variable / Field Name"},
		{"age"},
		{"height"},
		{"weight"},
	})
	e := NewExecutor(src)
	require.Nil(t, run(t, e, `
ProcessSheet("S", 1)
SetVariableName(3, "age")
SetVariableName(4, "age")
`))
	out := e.Finalize()
	vars := out.Column(schema.ColVariable)
	assert.Equal(t, []string{"age", "age_2", "age_3"}, vars)
}

func TestExecutor_UniquenessSpansSheets(t *testing.T) {
	src := workbook.NewMemory()
	src.AddSheet("A", [][]string{{"Variable / Field Name"}, {"age"}})
	src.AddSheet("B", [][]string{{"Variable / Field Name"}, {"height"}})
	e := NewExecutor(src)
	require.Nil(t, run(t, e, `
ProcessSheet("A", 1)
ProcessSheet("B", 1)
SetVariableName(2, "age")
`))
	out := e.Finalize()
	assert.Equal(t, []string{"age", "age_2"}, out.Column(schema.ColVariable))
}

func TestExecutor_LowercaseVariableName(t *testing.T) {
	src := workbook.NewMemory()
	src.AddSheet("S", [][]string{
		{"Variable / Field Name"},
		{"Weight_KG"},
	})
	e := NewExecutor(src)
	require.Nil(t, run(t, e, `
ProcessSheet("S", 1)
LowercaseVariableName(2)
`))
	out := e.Finalize()
	assert.Equal(t, "weight_kg", out.Value(0, schema.ColVariable))
}

func TestExecutor_LowercaseUnfixableIsFatal(t *testing.T) {
	src := workbook.NewMemory()
	src.AddSheet("S", [][]string{
		{"Variable / Field Name"},
		{"2Bad"},
	})
	e := NewExecutor(src)
	serr := run(t, e, `
ProcessSheet("S", 1)
LowercaseVariableName(2)
`)
	require.NotNil(t, serr)
	assert.Equal(t, CodeContract, serr.Code)
	assert.False(t, serr.Recoverable())
	assert.Equal(t, 3, serr.Line)
}

func TestExecutor_RecoverableLinesAreSkipped(t *testing.T) {
	src := testSource()
	e := NewExecutor(src)
	var statuses []string
	err := e.RunScript(strings.NewReader(`
ProcessSheet("Demographics", 1)
Frobnicate(2)
this is not a call
MapColumn("Field ID", "Variable / Field Name")
`), func(line int, text, primitive, status string) {
		statuses = append(statuses, status)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok", "skipped", "skipped", "ok"}, statuses)
}

func TestExecutor_StructuralCommandsNeedContext(t *testing.T) {
	e := NewExecutor(nil)
	serr := run(t, e, `MapColumn("a", "b")`)
	require.NotNil(t, serr)
	assert.Equal(t, CodeMissingContext, serr.Code)
}

func TestExecutor_FlatModeWithoutSourceStartsEmpty(t *testing.T) {
	e := NewExecutor(nil)
	require.Nil(t, run(t, e, `
EnsureColumn("Variable / Field Name")
SetVariableName(2, "age")
SetFieldType(2, text)
SetChoices(2, [("1","Yes"),("0","No")])
`))
	out := e.Finalize()
	// With nothing seeded the accumulator has no rows: row 2 addresses
	// buffer index 0, which does not exist, so writes are ignored.
	assert.Equal(t, 0, out.NumRows())
	assert.Equal(t, DefaultOutputSheet, e.OutputName())
}

func TestExecutor_SeedSheetLetsFlatScriptsEditRows(t *testing.T) {
	src := workbook.NewMemory()
	src.AddSheet("S", [][]string{
		{"Variable / Field Name", "Field Type", "Field Label"},
		{"consent", "boolean", "Consent given"},
		{"age", "text", "Age in years"},
	})
	e := NewExecutor(src)
	require.NoError(t, e.SeedSheet("S"))
	require.Nil(t, run(t, e, `
EnsureColumn("Section Header")
SetFieldType(2, yesno)
SetChoices(2, [("1","Yes"),("0","No")])
SetVariableName(3, "consent")
`))
	out := e.Finalize()
	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, "yesno", out.Value(0, schema.ColFieldType))
	assert.Equal(t, "1,Yes | 0,No", out.Value(0, schema.ColChoices))
	// Seeding registers existing identifiers, so the rename is suffixed.
	assert.Equal(t, "consent_2", out.Value(1, schema.ColVariable))
}

func TestExecutor_SeedSheetAppliesDescriptorRenames(t *testing.T) {
	src := workbook.NewMemory()
	src.AddSheet("S", [][]string{
		{"Field ID", "Kind"},
		{"age", "text"},
	})
	desc := mapping.Descriptor{
		"S": {Mapping: map[string]string{
			schema.ColVariable:  "Field ID",
			schema.ColFieldType: "Kind",
		}},
	}
	e := NewExecutor(src, WithDescriptor(desc))
	require.NoError(t, e.SeedSheet("S"))
	require.Nil(t, run(t, e, `SetFieldType(2, notes)`))
	out := e.Finalize()
	assert.Equal(t, "age", out.Value(0, schema.ColVariable))
	assert.Equal(t, "notes", out.Value(0, schema.ColFieldType))
}

func TestUsesSheets(t *testing.T) {
	flat := []byte(`# fixes
EnsureColumn("Section Header")
SetFieldType(2, yesno)
`)
	assert.False(t, UsesSheets(flat))
	assert.True(t, UsesSheets([]byte(`ProcessSheet("S", 1)`)))
	assert.False(t, UsesSheets([]byte(`# ProcessSheet("S", 1)`)))
}

func TestExecutor_FlatModeEditsExistingRows(t *testing.T) {
	src := workbook.NewMemory()
	src.AddSheet("S", [][]string{
		{"Variable / Field Name", "Field Type"},
		{"consent", "boolean"},
	})
	e := NewExecutor(src)
	require.Nil(t, run(t, e, `
ProcessSheet("S", 1)
SetFieldType(2, yesno)
SetChoices(2, [("1","Yes"),("0","No")])
SetSlider(2, 0, "Low", 10, "High")
`))
	out := e.Finalize()
	assert.Equal(t, "yesno", out.Value(0, schema.ColFieldType))
	// The slider write lands last in the shared choices column.
	assert.Equal(t, "0,Low | 10,High", out.Value(0, schema.ColChoices))
}

func TestExecutor_SetChoicesSerialization(t *testing.T) {
	src := workbook.NewMemory()
	src.AddSheet("S", [][]string{
		{"Variable / Field Name"},
		{"color"},
	})
	e := NewExecutor(src)
	require.Nil(t, run(t, e, `
ProcessSheet("S", 1)
SetChoices(2, [("1","Red"),("2","Green"),("3","Blue")])
`))
	out := e.Finalize()
	assert.Equal(t, "1,Red | 2,Green | 3,Blue", out.Value(0, schema.ColChoices))
}

func TestExecutor_SetValidationEnsuresAllThreeColumns(t *testing.T) {
	src := workbook.NewMemory()
	src.AddSheet("S", [][]string{
		{"Variable / Field Name"},
		{"age"},
	})
	e := NewExecutor(src)
	require.Nil(t, run(t, e, `
ProcessSheet("S", 1)
SetValidation(2, "integer", "0", "120")
`))
	out := e.Finalize()
	assert.Equal(t, "integer", out.Value(0, schema.ColValidationType))
	assert.Equal(t, "0", out.Value(0, schema.ColValidationMin))
	assert.Equal(t, "120", out.Value(0, schema.ColValidationMax))
}

func TestExecutor_OutOfRangeRowIgnored(t *testing.T) {
	src := workbook.NewMemory()
	src.AddSheet("S", [][]string{
		{"Variable / Field Name"},
		{"age"},
	})
	e := NewExecutor(src)
	require.Nil(t, run(t, e, `
ProcessSheet("S", 1)
SetCell(99, "Field Label", "nope")
SetCell(1, "Field Label", "header row has no buffer slot")
`))
	out := e.Finalize()
	require.Equal(t, 1, out.NumRows())
	assert.Equal(t, "", out.Value(0, schema.ColFieldLabel))
}

func TestExecutor_DeleteRowsIfEmptyAnyBlankDrops(t *testing.T) {
	src := workbook.NewMemory()
	src.AddSheet("S", [][]string{
		{"Variable / Field Name", "Field Label"},
		{"age", "Age in years"},
		{"sex", ""},
		{"", "Orphan label"},
	})
	e := NewExecutor(src)
	require.Nil(t, run(t, e, `
ProcessSheet("S", 1)
DeleteRowsIfEmpty(["Variable / Field Name", "Field Label"])
`))
	out := e.Finalize()
	require.Equal(t, 1, out.NumRows())
	assert.Equal(t, "age", out.Value(0, schema.ColVariable))
}

func TestExecutor_ProcessSheetUnknownSheetIsFatal(t *testing.T) {
	e := NewExecutor(testSource())
	serr := run(t, e, `ProcessSheet("Nope", 1)`)
	require.NotNil(t, serr)
	assert.Equal(t, CodeContract, serr.Code)
}
