package token

import (
	"sheetcalc/internal/reference"
)

// binarySymbol maps every two-operand composite to its operator symbol.
var binarySymbol = map[Kind]Kind{
	Addition:          PlusSymbol,
	Subtraction:       MinusSymbol,
	Multiplication:    MultiplySymbol,
	Division:          DivideSymbol,
	Power:             PowerSymbol,
	Equals:            EqualsSymbol,
	NotEquals:         NotEqualsSymbol,
	GreaterThan:       GreaterThanSymbol,
	GreaterThanEquals: GreaterThanEqualsSymbol,
	LessThan:          LessThanSymbol,
	LessThanEquals:    LessThanEqualsSymbol,
	CellRange:         BetweenSymbol,
}

var numberSymbols = map[Kind]bool{
	PlusSymbol:             true,
	MinusSymbol:            true,
	DecimalSeparatorSymbol: true,
	ExponentSymbol:         true,
	PercentSymbol:          true,
	GroupSeparatorSymbol:   true,
	WhitespaceSymbol:       true,
}

var temporalSymbols = map[Kind]bool{
	SeparatorSymbol:        true,
	WhitespaceSymbol:       true,
	DecimalSeparatorSymbol: true,
	ValueSeparatorSymbol:   true,
}

func check(kind Kind, children []Token) (any, error) {
	operands := withoutNoise(children)
	switch {
	case kind.IsBinary():
		return nil, checkBinary(kind, children, operands)
	case kind.IsConditionRight():
		return nil, checkConditionRight(kind, children, operands)
	}
	switch kind {
	case Expression:
		if len(operands) > 1 {
			return nil, invalid("%s has %d operands, want at most 1", kind, len(operands))
		}
	case Group, Negative:
		if len(operands) != 1 {
			return nil, invalid("%s has %d operands, want 1", kind, len(operands))
		}
		if kind == Negative && !hasSymbol(children, MinusSymbol) {
			return nil, invalid("%s missing %s", kind, MinusSymbol)
		}
	case Cell:
		return checkCell(operands)
	case CellRange:
		return checkRange(children, operands)
	case NamedFunction:
		if len(operands) != 2 || operands[0].kind != FunctionName || operands[1].kind != FunctionParameters {
			return nil, invalid("%s wants %s and %s, got %s", kind, FunctionName, FunctionParameters, kinds(operands))
		}
	case LambdaFunction:
		if len(operands) < 2 || operands[0].kind != FunctionName {
			return nil, invalid("%s wants %s and parameters, got %s", kind, FunctionName, kinds(operands))
		}
		for _, p := range operands[1:] {
			if p.kind != FunctionParameters {
				return nil, invalid("%s has unexpected %s", kind, p.kind)
			}
		}
	case FunctionParameters:
		// any operand list, possibly empty
	case Boolean:
		if len(operands) != 1 || operands[0].kind != BooleanLiteral {
			return nil, invalid("%s wants one %s, got %s", kind, BooleanLiteral, kinds(operands))
		}
	case Text:
		for _, c := range children {
			switch c.kind {
			case TextLiteral, DoubleQuoteSymbol, ApostropheSymbol:
			default:
				return nil, invalid("%s has unexpected %s", kind, c.kind)
			}
		}
	case Number:
		return nil, checkNumber(children, operands)
	case Date, DateTime, Time:
		return nil, checkTemporal(kind, children, operands)
	}
	return nil, nil
}

func checkBinary(kind Kind, children, operands []Token) error {
	if len(operands) != 2 {
		return invalid("%s has %d operands, want 2", kind, len(operands))
	}
	if sym := binarySymbol[kind]; !hasSymbol(children, sym) {
		return invalid("%s missing %s", kind, sym)
	}
	return nil
}

func checkConditionRight(kind Kind, children, operands []Token) error {
	want := conditionSymbol(kind)
	symbols := 0
	for _, c := range children {
		if !c.IsSymbol() || c.IsWhitespace() {
			continue
		}
		if c.kind != want {
			return invalid("%s has unexpected %s", kind, c.kind)
		}
		symbols++
	}
	if symbols != 1 {
		return invalid("%s has %d %s symbols, want 1", kind, symbols, want)
	}
	if len(operands) != 1 {
		return invalid("%s has %d operands, want 1", kind, len(operands))
	}
	return nil
}

func checkCell(operands []Token) (any, error) {
	var (
		col    reference.Column
		row    reference.Row
		gotCol bool
		gotRow bool
	)
	for _, o := range operands {
		switch o.kind {
		case ColumnReference:
			if gotCol {
				return nil, invalid("%s has extra %s", Cell, ColumnReference)
			}
			col, gotCol = o.value.(reference.Column), true
		case RowReference:
			if gotRow {
				return nil, invalid("%s has extra %s", Cell, RowReference)
			}
			row, gotRow = o.value.(reference.Row), true
		default:
			return nil, invalid("%s has unexpected %s", Cell, o.kind)
		}
	}
	if !gotCol {
		return nil, invalid("%s missing %s", Cell, ColumnReference)
	}
	if !gotRow {
		return nil, invalid("%s missing %s", Cell, RowReference)
	}
	return reference.CellReference{Column: col, Row: row}, nil
}

func checkRange(children, operands []Token) (any, error) {
	if len(operands) != 2 || operands[0].kind != Cell || operands[1].kind != Cell {
		return nil, invalid("%s wants two %s, got %s", CellRange, Cell, kinds(operands))
	}
	if !hasSymbol(children, BetweenSymbol) {
		return nil, invalid("%s missing %s", CellRange, BetweenSymbol)
	}
	a, _ := operands[0].Cell()
	b, _ := operands[1].Cell()
	return reference.NewRange(a, b), nil
}

func checkNumber(children, operands []Token) error {
	if len(operands) == 0 {
		return invalid("%s missing %s", Number, Digits)
	}
	for _, o := range operands {
		if o.kind != Digits {
			return invalid("%s has unexpected %s", Number, o.kind)
		}
	}
	for _, c := range children {
		if c.IsSymbol() && !numberSymbols[c.kind] {
			return invalid("%s has unexpected %s", Number, c.kind)
		}
	}
	return nil
}

func checkTemporal(kind Kind, children, operands []Token) error {
	seen := make(map[Kind]bool, len(operands))
	month := false
	for _, o := range operands {
		if !o.kind.IsTemporalLeaf() {
			return invalid("%s has unexpected %s", kind, o.kind)
		}
		if seen[o.kind] {
			return invalid("%s has extra %s", kind, o.kind)
		}
		seen[o.kind] = true
		switch o.kind {
		case MonthNumber, MonthName, MonthNameAbbreviation, MonthNameInitial:
			if month {
				return invalid("%s has more than one month", kind)
			}
			month = true
		}
	}
	for _, c := range children {
		if c.IsSymbol() && !temporalSymbols[c.kind] {
			return invalid("%s has unexpected %s", kind, c.kind)
		}
	}
	if kind == Date || kind == DateTime {
		if !seen[DayNumber] {
			return invalid("%s missing %s", kind, DayNumber)
		}
		if !month {
			return invalid("%s missing month", kind)
		}
	}
	if kind == Time || kind == DateTime {
		if !seen[Hour] {
			return invalid("%s missing %s", kind, Hour)
		}
		if !seen[Minute] {
			return invalid("%s missing %s", kind, Minute)
		}
	}
	if kind == Time && (seen[DayNumber] || month || seen[Year]) {
		return invalid("%s has date components", kind)
	}
	if kind == Date && (seen[Hour] || seen[Minute] || seen[Seconds] || seen[Millisecond] || seen[AmPm]) {
		return invalid("%s has time components", kind)
	}
	return nil
}

func hasSymbol(children []Token, kind Kind) bool {
	for _, c := range children {
		if c.kind == kind {
			return true
		}
	}
	return false
}

func kinds(ts []Token) string {
	if len(ts) == 0 {
		return "nothing"
	}
	s := ""
	for i, t := range ts {
		if i > 0 {
			s += ", "
		}
		s += t.kind.String()
	}
	return s
}
