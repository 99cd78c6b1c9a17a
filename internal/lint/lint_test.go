package lint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dictools/rcmod/internal/schema"
	"github.com/dictools/rcmod/internal/table"
)

func lintTable() *table.Table {
	return table.FromRows(
		[]string{
			schema.ColVariable,
			schema.ColFormName,
			schema.ColFieldType,
			schema.ColFieldLabel,
			schema.ColChoices,
		},
		[][]string{
			{"age", "intake", "text", "Age in years", ""},
			{"", "", "", "", ""},
			{"# demographics section", "", "", "", ""},
			{"Bad Name", "intake", "text", "Broken", ""},
			{"age", "intake", "text", "Duplicate", ""},
			{"sex", "intake", "multi", "Unknown type", ""},
			{"color", "intake", "radio", "No choices", ""},
			{"mood", "intake", "radio", "Has choices", "1,Happy | 2,Sad"},
		},
	)
}

func TestRun_Verdicts(t *testing.T) {
	records, sum := Run(lintTable())
	require.Len(t, records, 8)

	wantVerdicts := []Verdict{
		Accept,  // age
		Ignore,  // blank
		Ignore,  // comment
		Violate, // invalid name
		Violate, // duplicate name
		Violate, // unknown field type
		Violate, // radio without choices
		Accept,  // radio with choices
	}
	for i, want := range wantVerdicts {
		assert.Equal(t, want, records[i].Classification.Verdict, "record %d", i)
	}

	assert.Equal(t, Summary{Accept: 2, Violate: 4, Ignore: 2}, sum)
	assert.False(t, sum.Clean())
}

func TestRun_ReasonsAndLineNumbers(t *testing.T) {
	records, _ := Run(lintTable())

	// Buffer row 0 is file line 2.
	assert.Equal(t, 2, records[0].Line)
	assert.Equal(t, 9, records[7].Line)

	assert.Equal(t, "invalid variable name", records[3].Classification.Error)
	assert.Equal(t, "duplicate variable name", records[4].Classification.Error)
	assert.Equal(t, `unknown field type "multi"`, records[5].Classification.Error)
	assert.Equal(t, "missing choices for multi-choice field", records[6].Classification.Error)
	assert.True(t, records[0].Classification.Valid)
	assert.False(t, records[6].Classification.Valid)
}

func TestRun_CarriesRawKeyValues(t *testing.T) {
	records, _ := Run(lintTable())
	rec := records[7]
	assert.Equal(t, "mood", rec.Variable)
	assert.Equal(t, "intake", rec.FormName)
	assert.Equal(t, "radio", rec.FieldType)
	assert.Equal(t, "Has choices", rec.FieldLabel)
	assert.Equal(t, "1,Happy | 2,Sad", rec.Choices)
}

func TestRun_MultipleReasonsJoined(t *testing.T) {
	tbl := table.FromRows(
		[]string{schema.ColVariable, schema.ColFieldType, schema.ColChoices},
		[][]string{{"Bad Name", "multi", ""}},
	)
	records, _ := Run(tbl)
	require.Len(t, records, 1)
	assert.Equal(t, Violate, records[0].Classification.Verdict)
	assert.Equal(t,
		`invalid variable name; unknown field type "multi"`,
		records[0].Classification.Error)
}

func TestWriteReport_RoundTrip(t *testing.T) {
	records, _ := Run(lintTable())
	path := filepath.Join(t.TempDir(), "reports", "lint.json")
	require.NoError(t, WriteReport(path, records))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []Record
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, records, got)
}

func TestSummary_Print(t *testing.T) {
	var b strings.Builder
	Summary{Accept: 3, Violate: 1, Ignore: 2}.Print(&b)
	out := b.String()
	assert.Contains(t, out, "ACCEPT  : 3")
	assert.Contains(t, out, "VIOLATE : 1")
	assert.Contains(t, out, "IGNORE  : 2")
}
