package resolve

import "github.com/dictools/rcmod/internal/schema"

// synonym is one substring rule: a normalized raw header containing Key
// maps to Canon. Order matters; the first matching rule wins.
type synonym struct {
	Key   string
	Canon string
}

// synonyms is the fixed substring lookup table, tried after exact
// normalized matching. Keys are already in normalized form.
var synonyms = []synonym{
	{"variable", schema.ColVariable},
	{"var", schema.ColVariable},
	{"fieldname", schema.ColVariable},
	{"fieldid", schema.ColVariable},
	{"label", schema.ColFieldLabel},
	{"fieldlabel", schema.ColFieldLabel},
	{"description", schema.ColFieldLabel},
	{"fielddescription", schema.ColFieldLabel},
	{"type", schema.ColFieldType},
	{"datatype", schema.ColFieldType},
	{"notes", schema.ColFieldNote},
	{"note", schema.ColFieldNote},
	{"branchinglogic", schema.ColBranching},
	{"showfieldonlyif", schema.ColBranching},
	{"sectionheader", schema.ColSectionHeader},
	{"identifier", schema.ColIdentifier},
	{"required", schema.ColRequired},
	{"align", schema.ColAlignment},
	{"questionnumber", schema.ColQuestionNum},
	{"annotation", schema.ColAnnotation},
	{"choices", schema.ColChoices},
	{"permissiblevalues", schema.ColChoices},
	{"validvalues", schema.ColChoices},
	{"validation", schema.ColValidationType},
}
