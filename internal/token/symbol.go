package token

// Priority ranks how tightly a symbol binds its operands.
type Priority uint8

const (
	// PriorityIgnored marks punctuation that never combines operands.
	PriorityIgnored Priority = iota
	PriorityComparison
	PriorityAddition
	PriorityMultiplication
	PriorityPower
	PriorityRange
)

// operatorOf maps a binary operator symbol to its composite kind.
var operatorOf = map[Kind]Kind{
	PlusSymbol:              Addition,
	MinusSymbol:             Subtraction,
	MultiplySymbol:          Multiplication,
	DivideSymbol:            Division,
	PowerSymbol:             Power,
	EqualsSymbol:            Equals,
	NotEqualsSymbol:         NotEquals,
	GreaterThanSymbol:       GreaterThan,
	GreaterThanEqualsSymbol: GreaterThanEquals,
	LessThanSymbol:          LessThan,
	LessThanEqualsSymbol:    LessThanEquals,
	BetweenSymbol:           CellRange,
}

// Priority returns the operator priority of a symbol; every other token
// reports PriorityIgnored.
func (t Token) Priority() Priority {
	switch t.kind {
	case EqualsSymbol, NotEqualsSymbol,
		GreaterThanSymbol, GreaterThanEqualsSymbol,
		LessThanSymbol, LessThanEqualsSymbol:
		return PriorityComparison
	case PlusSymbol, MinusSymbol:
		return PriorityAddition
	case MultiplySymbol, DivideSymbol:
		return PriorityMultiplication
	case PowerSymbol:
		return PriorityPower
	case BetweenSymbol:
		return PriorityRange
	default:
		return PriorityIgnored
	}
}

// BinaryOperand builds the composite the symbol t forms with its operands.
// children must hold left operand, t and right operand (plus any
// whitespace); they and text are stored exactly as given.
func (t Token) BinaryOperand(children []Token, text string) (Token, error) {
	kind, ok := operatorOf[t.kind]
	if !ok || t.Priority() == PriorityIgnored {
		return Token{}, unsupported("%s does not combine operands", t.kind)
	}
	return NewParent(kind, children, text)
}
