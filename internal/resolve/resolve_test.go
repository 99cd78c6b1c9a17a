package resolve

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dictools/rcmod/internal/schema"
	"github.com/dictools/rcmod/internal/table"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Variable / Field Name", "variablefieldname"},
		{"FIELD_TYPE", "fieldtype"},
		{"Variablé", "variable"},
		{"Qüestion  Number!", "questionnumber"},
		{"  ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.input), "input %q", tt.input)
	}
}

func TestHeaders_ExactMatchBeatsSynonym(t *testing.T) {
	tbl := table.FromRows([]string{"variable / field name", "Var Code"}, [][]string{
		{"age", "a1"},
	})
	res := Headers(tbl, nil)
	assert.Equal(t, schema.ColVariable, res.Mapping["variable / field name"])
	// The synonym candidate loses: the canonical target is already claimed.
	_, mapped := res.Mapping["Var Code"]
	assert.False(t, mapped)
	assert.Contains(t, res.Unknown, "Var Code")
}

func TestHeaders_SynonymSubstrings(t *testing.T) {
	tbl := table.FromRows(
		[]string{"Field ID", "Item Description", "Data Type", "Permissible Values"},
		[][]string{{"age", "Age in years", "text", "1,A | 2,B"}},
	)
	res := Headers(tbl, nil)
	assert.Equal(t, schema.ColVariable, res.Mapping["Field ID"])
	assert.Equal(t, schema.ColFieldLabel, res.Mapping["Item Description"])
	assert.Equal(t, schema.ColFieldType, res.Mapping["Data Type"])
	assert.Equal(t, schema.ColChoices, res.Mapping["Permissible Values"])
	assert.Equal(t, []string{schema.ColFormName}, res.Missing())
}

func TestHeaders_OverrideDisplacesPriorClaim(t *testing.T) {
	tbl := table.FromRows([]string{"Label", "Pretty Text"}, [][]string{
		{"XJ9!", "Age in years"},
	})
	res := Headers(tbl, map[string]string{"Pretty Text": schema.ColFieldLabel})
	assert.Equal(t, schema.ColFieldLabel, res.Mapping["Pretty Text"])
	_, mapped := res.Mapping["Label"]
	assert.False(t, mapped)
}

func TestHeaders_OverrideFreesDisplacedTarget(t *testing.T) {
	// "Field Type" holds annotations here; the override moves it away,
	// and the freed canonical target must be refillable by heuristics.
	tbl := table.FromRows(
		[]string{"Variable / Field Name", "Field Type", "Kind"},
		[][]string{
			{"age", "@HIDDEN", "text"},
			{"sex", "@READONLY", "radio"},
			{"bmi", "@HIDDEN", "calc"},
			{"vax", "@READONLY", "yesno"},
		},
	)
	res := Headers(tbl, map[string]string{"Field Type": schema.ColAnnotation})
	assert.Equal(t, schema.ColAnnotation, res.Mapping["Field Type"])
	assert.Equal(t, schema.ColFieldType, res.Mapping["Kind"])
}

func TestHeaders_ContentHeuristics(t *testing.T) {
	tbl := table.FromRows(
		[]string{"ID", "Group", "Kind", "Desc"},
		[][]string{
			{"age", "intake", "text", "Age in years"},
			{"sex", "intake", "radio", "Sex at birth"},
			{"bmi", "intake", "calc", "Body mass index"},
			{"visit_date", "intake", "text", "Date of visit"},
		},
	)
	res := Headers(tbl, nil)
	assert.Equal(t, schema.ColVariable, res.Mapping["ID"])
	assert.Equal(t, schema.ColFormName, res.Mapping["Group"])
	assert.Equal(t, schema.ColFieldType, res.Mapping["Kind"])
	assert.Equal(t, schema.ColFieldLabel, res.Mapping["Desc"])
	assert.Empty(t, res.Missing())
	assert.Empty(t, res.Unknown)
}

func TestHeaders_ThresholdBoundary(t *testing.T) {
	// An explicit identifier column keeps the variable heuristic from
	// claiming the candidate first.
	header := []string{"Variable / Field Name", "Kind"}

	// 4 of 5 recognized type tags scores exactly 0.8 and maps.
	atThreshold := table.FromRows(header, [][]string{
		{"a1", "text"}, {"a2", "radio"}, {"a3", "calc"}, {"a4", "notes"}, {"a5", "freeform"},
	})
	res := Headers(atThreshold, nil)
	assert.Equal(t, schema.ColFieldType, res.Mapping["Kind"])

	// 3 of 4 scores 0.75 and stays unmapped.
	below := table.FromRows(header, [][]string{
		{"a1", "text"}, {"a2", "radio"}, {"a3", "calc"}, {"a4", "freeform"},
	})
	res = Headers(below, nil)
	_, mapped := res.Mapping["Kind"]
	assert.False(t, mapped)
	assert.Contains(t, res.Unknown, "Kind")

	// 19 of 24 scores just under the threshold (~0.792) and also stays
	// unmapped: the comparison admits 0.8 exactly, nothing short of it.
	types := []string{
		"text", "notes", "radio", "checkbox", "dropdown", "calc",
		"file", "yesno", "truefalse", "slider", "descriptive", "date",
	}
	var rows [][]string
	for i := 0; i < 24; i++ {
		kind := "not_a_type"
		switch {
		case i < len(types):
			kind = types[i]
		case i < 19:
			kind = "text"
		}
		rows = append(rows, []string{fmt.Sprintf("v%02d", i), "intake", kind})
	}
	justBelow := table.FromRows(
		[]string{"Variable / Field Name", "Form Name", "Kind"}, rows)
	res = Headers(justBelow, nil)
	_, mapped = res.Mapping["Kind"]
	assert.False(t, mapped)
	assert.Contains(t, res.Unknown, "Kind")
}

func TestScoreFieldLabel_BoostStaysInRange(t *testing.T) {
	// All values carry whitespace and the header mentions "label": the
	// name boost must not push the confidence past 1.0.
	score := scoreFieldLabel("Item Label", []string{"Age in years", "Sex at birth"})
	assert.Equal(t, 1.0, score)
}

func TestHeaders_EmptyColumnScoresZero(t *testing.T) {
	tbl := table.FromRows([]string{"Mystery"}, [][]string{{""}, {""}, {""}})
	res := Headers(tbl, nil)
	assert.Empty(t, res.Mapping)
	assert.Equal(t, []string{"Mystery"}, res.Unknown)
}

func TestHeaders_MissingListsUnresolvedRequired(t *testing.T) {
	tbl := table.FromRows([]string{"Variable / Field Name"}, [][]string{{"age"}})
	res := Headers(tbl, nil)
	assert.Equal(t, []string{
		schema.ColFormName,
		schema.ColFieldType,
		schema.ColFieldLabel,
	}, res.Missing())
}

func TestApply_RenamesInPlace(t *testing.T) {
	tbl := table.FromRows([]string{"Field ID", "Desc"}, [][]string{{"age", "Age"}})
	Apply(tbl, map[string]string{
		"Field ID": schema.ColVariable,
		"Desc":     schema.ColFieldLabel,
	})
	assert.Equal(t, []string{schema.ColVariable, schema.ColFieldLabel}, tbl.Columns())
}

func TestFindHeaderRow_SkipsPreamble(t *testing.T) {
	grid := [][]string{
		{"Cohort Dictionary", "", "", ""},
		{"exported 2024-11-02", "", "", ""},
		{"Variable / Field Name", "Form Name", "Field Type", "Field Label"},
		{"age", "intake", "text", "Age in years"},
		{"sex", "intake", "radio", "Sex at birth"},
	}
	require.Equal(t, 2, FindHeaderRow(grid, nil))
}

func TestFindHeaderRow_HeaderFirst(t *testing.T) {
	grid := [][]string{
		{"Variable / Field Name", "Form Name"},
		{"age", "intake"},
	}
	assert.Equal(t, 0, FindHeaderRow(grid, nil))
}
