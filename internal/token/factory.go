package token

import (
	"errors"
	"fmt"

	"sheetcalc/internal/reference"
	"sheetcalc/internal/value"
)

// MaxDepth bounds how deeply tokens of one formula nest.
const MaxDepth = 512

var (
	// ErrInvalidToken reports a token whose shape breaks its kind's rules.
	ErrInvalidToken = errors.New("invalid token")
	// ErrUnsupported reports an operation the token kind does not offer.
	ErrUnsupported = errors.New("unsupported token operation")
	// ErrTooDeep reports nesting beyond MaxDepth.
	ErrTooDeep = errors.New("expression nested too deeply")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidToken, fmt.Sprintf(format, args...))
}

func unsupported(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnsupported, fmt.Sprintf(format, args...))
}

// NewSymbol builds an operator or punctuation leaf whose value is its text.
func NewSymbol(kind Kind, text string) (Token, error) {
	if !kind.IsSymbol() {
		return Token{}, invalid("%s is not a symbol", kind)
	}
	if text == "" {
		return Token{}, invalid("%s text is empty", kind)
	}
	return Token{kind: kind, text: text, value: text}, nil
}

// NewLeaf builds a value leaf. The dynamic type of v must match the kind:
//
//	Digits, TextLiteral, FunctionName        string
//	BooleanLiteral                           bool
//	ColumnReference                          reference.Column
//	RowReference                             reference.Row
//	LabelName                                reference.LabelName
//	ValueName                                reference.EnvironmentValueName
//	ErrorLiteral                             value.Error
//	Year ... AmPm                            int
func NewLeaf(kind Kind, v any, text string) (Token, error) {
	if kind.IsSymbol() {
		return NewSymbol(kind, text)
	}
	if !kind.IsLeaf() {
		return Token{}, invalid("%s is not a leaf", kind)
	}
	if text == "" && kind != TextLiteral {
		return Token{}, invalid("%s text is empty", kind)
	}
	var ok bool
	switch kind {
	case Digits, TextLiteral, FunctionName:
		_, ok = v.(string)
	case BooleanLiteral:
		_, ok = v.(bool)
	case ColumnReference:
		_, ok = v.(reference.Column)
	case RowReference:
		_, ok = v.(reference.Row)
	case LabelName:
		_, ok = v.(reference.LabelName)
	case ValueName:
		_, ok = v.(reference.EnvironmentValueName)
	case ErrorLiteral:
		_, ok = v.(value.Error)
	default:
		_, ok = v.(int)
	}
	if !ok {
		return Token{}, invalid("%s value has type %T", kind, v)
	}
	return Token{kind: kind, text: text, value: v}, nil
}

// NewParent builds a composite token after checking its children.
func NewParent(kind Kind, children []Token, text string) (Token, error) {
	if !kind.IsParent() {
		return Token{}, invalid("%s is not a parent", kind)
	}
	if len(children) == 0 {
		return Token{}, invalid("%s has no children", kind)
	}
	if text == "" && kind != Text {
		return Token{}, invalid("%s text is empty", kind)
	}
	cs := make([]Token, len(children))
	copy(cs, children)
	t := Token{kind: kind, text: text, children: cs}
	derived, err := check(kind, cs)
	if err != nil {
		return Token{}, err
	}
	t.derived = derived
	return t, nil
}

// MustParent is NewParent for trees known to be well formed, such as test
// fixtures; it panics on error.
func MustParent(kind Kind, children []Token, text string) Token {
	t, err := NewParent(kind, children, text)
	if err != nil {
		panic(err)
	}
	return t
}

// MustLeaf is NewLeaf that panics on error.
func MustLeaf(kind Kind, v any, text string) Token {
	t, err := NewLeaf(kind, v, text)
	if err != nil {
		panic(err)
	}
	return t
}

// MustSymbol is NewSymbol that panics on error.
func MustSymbol(kind Kind, text string) Token {
	t, err := NewSymbol(kind, text)
	if err != nil {
		panic(err)
	}
	return t
}

// Cell returns the reference of a Cell token.
func (t Token) Cell() (reference.CellReference, bool) {
	c, ok := t.derived.(reference.CellReference)
	return c, ok
}

// Range returns the reference of a CellRange token.
func (t Token) Range() (reference.CellRange, bool) {
	r, ok := t.derived.(reference.CellRange)
	return r, ok
}
