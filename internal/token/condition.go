package token

var conditionRightOf = map[Kind]Kind{
	Equals:            ConditionRightEquals,
	NotEquals:         ConditionRightNotEquals,
	GreaterThan:       ConditionRightGreaterThan,
	GreaterThanEquals: ConditionRightGreaterThanEquals,
	LessThan:          ConditionRightLessThan,
	LessThanEquals:    ConditionRightLessThanEquals,
}

var conditionOf = map[Kind]Kind{
	ConditionRightEquals:            Equals,
	ConditionRightNotEquals:         NotEquals,
	ConditionRightGreaterThan:       GreaterThan,
	ConditionRightGreaterThanEquals: GreaterThanEquals,
	ConditionRightLessThan:          LessThan,
	ConditionRightLessThanEquals:    LessThanEquals,
}

func conditionSymbol(right Kind) Kind {
	return binarySymbol[conditionOf[right]]
}

// ConditionRight splits a condition at its first non-whitespace symbol and
// returns the operator and right operand as a one-sided condition. Whitespace
// directly before the operator travels with the right side so that
// SetConditionLeft restores the original children.
func (t Token) ConditionRight() (Token, error) {
	kind, ok := conditionRightOf[t.kind]
	if !ok {
		return Token{}, unsupported("%s is not a condition", t.kind)
	}
	for i, c := range t.children {
		if c.IsSymbol() && !c.IsWhitespace() {
			for i > 0 && t.children[i-1].IsWhitespace() {
				i--
			}
			rest := t.children[i:]
			return NewParent(kind, rest, joinText(rest))
		}
	}
	return Token{}, invalid("%s has no operator", t.kind)
}

// SetConditionLeft prepends left to a one-sided condition and returns the
// full comparison.
func (t Token) SetConditionLeft(left Token) (Token, error) {
	kind, ok := conditionOf[t.kind]
	if !ok {
		return Token{}, unsupported("%s is not a one-sided condition", t.kind)
	}
	children := make([]Token, 0, len(t.children)+1)
	children = append(children, left)
	children = append(children, t.children...)
	return NewParent(kind, children, left.text+t.text)
}
