// Package token defines the parsed-syntax tree of a spreadsheet formula.
// Invariants:
//   - Token is immutable; every mutator returns a new value.
//   - A token is either a leaf (Value holds a scalar) or a parent (ordered
//     children). The Kind decides which, never the contents.
//   - Parent text is the source text of the construct; factories do not
//     re-derive it from the children except in SetChildren.
//   - Whitespace and symbols are "noise" for shape checks: a composite's
//     operands are its non-symbol children.
//   - Shape violations are reported at construction with ErrInvalidToken;
//     a token that exists is well formed.
package token
