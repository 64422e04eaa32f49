package token

import (
	"strings"
)

// Token is one node of a formula parse tree.
type Token struct {
	kind     Kind
	text     string
	value    any
	children []Token
	// derived is the reference a Cell or CellRange composite resolves to.
	derived any
}

// Kind returns the token category.
func (t Token) Kind() Kind { return t.kind }

// Text returns the source text the token was built from.
func (t Token) Text() string { return t.text }

// Value returns the scalar of a leaf or a copy of the children of a parent.
func (t Token) Value() any {
	if t.kind.IsParent() {
		return t.Children()
	}
	return t.value
}

// Children returns a copy of the child list; leaves have none.
func (t Token) Children() []Token {
	if len(t.children) == 0 {
		return nil
	}
	out := make([]Token, len(t.children))
	copy(out, t.children)
	return out
}

func (t Token) IsLeaf() bool   { return t.kind.IsLeaf() }
func (t Token) IsParent() bool { return t.kind.IsParent() }
func (t Token) IsSymbol() bool { return t.kind.IsSymbol() }

// IsNoise reports whether the token is skipped by operand shape checks.
func (t Token) IsNoise() bool { return t.kind.IsSymbol() }

// IsWhitespace reports whether the token is a whitespace symbol.
func (t Token) IsWhitespace() bool { return t.kind == WhitespaceSymbol }

// Operands returns the non-noise children.
func (t Token) Operands() []Token { return withoutNoise(t.children) }

// SetChildren returns a token of the same kind whose text is the
// concatenated text of children.
func (t Token) SetChildren(children []Token) (Token, error) {
	if !t.kind.IsParent() {
		return Token{}, unsupported("%s has no children", t.kind)
	}
	return NewParent(t.kind, children, joinText(children))
}

// Equal reports structural equality: same kind, text, value and children.
func (t Token) Equal(other Token) bool {
	if t.kind != other.kind || t.text != other.text {
		return false
	}
	if t.kind.IsParent() {
		if len(t.children) != len(other.children) {
			return false
		}
		for i := range t.children {
			if !t.children[i].Equal(other.children[i]) {
				return false
			}
		}
		return true
	}
	return t.value == other.value
}

// Walk visits t and its descendants in pre-order; returning false from fn
// skips the node's children.
func (t Token) Walk(fn func(Token) bool) {
	if !fn(t) {
		return
	}
	for _, c := range t.children {
		c.Walk(fn)
	}
}

// String renders a compact debug form such as Addition("1+2").
func (t Token) String() string {
	var b strings.Builder
	b.WriteString(t.kind.String())
	b.WriteString("(")
	b.WriteString(quote(t.text))
	b.WriteString(")")
	return b.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

func withoutNoise(children []Token) []Token {
	out := make([]Token, 0, len(children))
	for _, c := range children {
		if !c.IsNoise() {
			out = append(out, c)
		}
	}
	return out
}

func joinText(children []Token) string {
	var b strings.Builder
	for _, c := range children {
		b.WriteString(c.text)
	}
	return b.String()
}
