package dsl

import "strconv"

// decode turns a parsed call into its typed command variant, enforcing
// arity and argument types.
func decode(name string, args []literal) (Command, *Error) {
	switch name {
	case "CreateOutputSheet":
		if err := arity(name, args, 1); err != nil {
			return nil, err
		}
		return CreateOutputSheet{Name: asString(args[0])}, nil

	case "ProcessSheet":
		if err := arity(name, args, 2); err != nil {
			return nil, err
		}
		start, err := asInt(name, "startRow", args[1])
		if err != nil {
			return nil, err
		}
		return ProcessSheet{Sheet: asString(args[0]), StartRow: start}, nil

	case "MapColumn":
		if err := arity(name, args, 2); err != nil {
			return nil, err
		}
		return MapColumn{From: asString(args[0]), To: asString(args[1])}, nil

	case "EnsureColumn":
		if err := arity(name, args, 1); err != nil {
			return nil, err
		}
		return EnsureColumn{Column: asString(args[0])}, nil

	case "DeleteRowsIfEmpty":
		if err := arity(name, args, 1); err != nil {
			return nil, err
		}
		cols, err := asStringList(name, args[0])
		if err != nil {
			return nil, err
		}
		return DeleteRowsIfEmpty{Columns: cols}, nil

	case "SetCell":
		if err := arity(name, args, 3); err != nil {
			return nil, err
		}
		row, err := asInt(name, "row", args[0])
		if err != nil {
			return nil, err
		}
		return SetCell{Row: row, Column: asString(args[1]), Value: asString(args[2])}, nil

	case "ClearCell":
		if err := arity(name, args, 2); err != nil {
			return nil, err
		}
		row, err := asInt(name, "row", args[0])
		if err != nil {
			return nil, err
		}
		return ClearCell{Row: row, Column: asString(args[1])}, nil

	case "SetFormName":
		if err := arity(name, args, 2); err != nil {
			return nil, err
		}
		row, err := asInt(name, "row", args[0])
		if err != nil {
			return nil, err
		}
		return SetFormName{Row: row, Name: asString(args[1])}, nil

	case "SetVariableName":
		if err := arity(name, args, 2); err != nil {
			return nil, err
		}
		row, err := asInt(name, "row", args[0])
		if err != nil {
			return nil, err
		}
		return SetVariableName{Row: row, Name: asString(args[1])}, nil

	case "LowercaseVariableName":
		if err := arity(name, args, 1); err != nil {
			return nil, err
		}
		row, err := asInt(name, "row", args[0])
		if err != nil {
			return nil, err
		}
		return LowercaseVariableName{Row: row}, nil

	case "SetFieldType":
		if err := arity(name, args, 2); err != nil {
			return nil, err
		}
		row, err := asInt(name, "row", args[0])
		if err != nil {
			return nil, err
		}
		return SetFieldType{Row: row, Type: asString(args[1])}, nil

	case "SetChoices":
		if err := arity(name, args, 2); err != nil {
			return nil, err
		}
		row, err := asInt(name, "row", args[0])
		if err != nil {
			return nil, err
		}
		choices, err := asChoiceList(name, args[1])
		if err != nil {
			return nil, err
		}
		return SetChoices{Row: row, Choices: choices}, nil

	case "SetSlider":
		if err := arity(name, args, 5); err != nil {
			return nil, err
		}
		row, err := asInt(name, "row", args[0])
		if err != nil {
			return nil, err
		}
		return SetSlider{
			Row:      row,
			Min:      asString(args[1]),
			MinLabel: asString(args[2]),
			Max:      asString(args[3]),
			MaxLabel: asString(args[4]),
		}, nil

	case "SetFormula":
		if err := arity(name, args, 2); err != nil {
			return nil, err
		}
		row, err := asInt(name, "row", args[0])
		if err != nil {
			return nil, err
		}
		return SetFormula{Row: row, Expr: asString(args[1])}, nil

	case "SetFormat":
		if err := arity(name, args, 2); err != nil {
			return nil, err
		}
		row, err := asInt(name, "row", args[0])
		if err != nil {
			return nil, err
		}
		return SetFormat{Row: row, Format: asString(args[1])}, nil

	case "SetValidation":
		if err := arity(name, args, 4); err != nil {
			return nil, err
		}
		row, err := asInt(name, "row", args[0])
		if err != nil {
			return nil, err
		}
		return SetValidation{
			Row:  row,
			Type: asString(args[1]),
			Min:  asString(args[2]),
			Max:  asString(args[3]),
		}, nil

	default:
		return nil, unknownPrimitiveError(name)
	}
}

func arity(name string, args []literal, want int) *Error {
	if len(args) != want {
		return contractErrorf("%s expects %d argument(s), got %d", name, want, len(args))
	}
	return nil
}

// asString accepts quoted strings, barewords, and numbers; all carry a
// textual value. Generated scripts write unquoted type tags and numeric
// slider bounds where a string is meant.
func asString(l literal) string {
	return l.text
}

// asInt requires an integer literal; row numbers are never strings or
// floats.
func asInt(primitive, argName string, l literal) (int, *Error) {
	if l.kind != litNumber {
		return 0, contractErrorf("%s: %s must be an integer, got %q", primitive, argName, l.text)
	}
	n, err := strconv.Atoi(l.text)
	if err != nil {
		return 0, contractErrorf("%s: %s must be an integer, got %q", primitive, argName, l.text)
	}
	return n, nil
}

func asStringList(primitive string, l literal) ([]string, *Error) {
	if l.kind != litList {
		return nil, contractErrorf("%s expects a list argument", primitive)
	}
	out := make([]string, len(l.items))
	for i, item := range l.items {
		if item.kind == litList || item.kind == litPair {
			return nil, contractErrorf("%s: list elements must be strings", primitive)
		}
		out[i] = item.text
	}
	return out, nil
}

func asChoiceList(primitive string, l literal) ([]Choice, *Error) {
	if l.kind != litList {
		return nil, contractErrorf("%s expects a list of (code,label) pairs", primitive)
	}
	out := make([]Choice, len(l.items))
	for i, item := range l.items {
		if item.kind != litPair {
			return nil, contractErrorf("%s: element %d is not a (code,label) pair", primitive, i)
		}
		out[i] = Choice{Code: item.items[0].text, Label: item.items[1].text}
	}
	return out, nil
}
