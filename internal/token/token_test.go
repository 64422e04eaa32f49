package token_test

import (
	"errors"
	"testing"

	"sheetcalc/internal/reference"
	"sheetcalc/internal/token"
)

func digits(t *testing.T, text string) token.Token {
	t.Helper()
	d, err := token.NewLeaf(token.Digits, text, text)
	if err != nil {
		t.Fatalf("digits: %v", err)
	}
	n, err := token.NewParent(token.Number, []token.Token{d}, text)
	if err != nil {
		t.Fatalf("number: %v", err)
	}
	return n
}

func symbol(t *testing.T, kind token.Kind, text string) token.Token {
	t.Helper()
	s, err := token.NewSymbol(kind, text)
	if err != nil {
		t.Fatalf("symbol: %v", err)
	}
	return s
}

func cell(t *testing.T, text string) token.Token {
	t.Helper()
	ref, err := reference.ParseCell(text)
	if err != nil {
		t.Fatalf("parse cell: %v", err)
	}
	col := token.MustLeaf(token.ColumnReference, ref.Column, ref.Column.String())
	row := token.MustLeaf(token.RowReference, ref.Row, ref.Row.String())
	c, err := token.NewParent(token.Cell, []token.Token{col, row}, text)
	if err != nil {
		t.Fatalf("cell: %v", err)
	}
	return c
}

func TestLeafRejectsEmptyText(t *testing.T) {
	if _, err := token.NewLeaf(token.Digits, "", ""); !errors.Is(err, token.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if _, err := token.NewSymbol(token.PlusSymbol, ""); !errors.Is(err, token.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for symbol, got %v", err)
	}
	lit, err := token.NewLeaf(token.TextLiteral, "", "")
	if err != nil {
		t.Fatalf("empty text literal rejected: %v", err)
	}
	txt, err := token.NewParent(token.Text, []token.Token{lit}, "")
	if err != nil {
		t.Fatalf("empty Text rejected: %v", err)
	}
	if txt.Text() != "" {
		t.Fatalf("text %q", txt.Text())
	}
}

func TestLeafChecksValueType(t *testing.T) {
	if _, err := token.NewLeaf(token.Year, "2024", "2024"); !errors.Is(err, token.ErrInvalidToken) {
		t.Fatalf("Year accepted a string: %v", err)
	}
	if _, err := token.NewLeaf(token.BooleanLiteral, true, "TRUE"); err != nil {
		t.Fatalf("boolean: %v", err)
	}
}

func TestParentShapes(t *testing.T) {
	one := digits(t, "1")
	two := digits(t, "2")
	plus := symbol(t, token.PlusSymbol, "+")
	ws := symbol(t, token.WhitespaceSymbol, " ")
	col := token.MustLeaf(token.ColumnReference, reference.Column{Index: 0}, "A")
	name := token.MustLeaf(token.FunctionName, "SUM", "SUM")

	tests := []struct {
		name     string
		kind     token.Kind
		children []token.Token
		ok       bool
	}{
		{"addition", token.Addition, []token.Token{one, ws, plus, ws, two}, true},
		{"addition one operand", token.Addition, []token.Token{one, plus}, false},
		{"addition wrong symbol", token.Addition, []token.Token{one, symbol(t, token.MinusSymbol, "-"), two}, false},
		{"empty children", token.Group, nil, false},
		{"cell missing row", token.Cell, []token.Token{col}, false},
		{"cell extra column", token.Cell, []token.Token{col, col}, false},
		{"named function without parameters", token.NamedFunction, []token.Token{name}, false},
		{"negative", token.Negative, []token.Token{symbol(t, token.MinusSymbol, "-"), one}, true},
		{"negative two operands", token.Negative, []token.Token{symbol(t, token.MinusSymbol, "-"), one, two}, false},
		{"boolean with digits", token.Boolean, []token.Token{one}, false},
		{"text with digits", token.Text, []token.Token{one}, false},
		{"condition right two symbols", token.ConditionRightLessThan, []token.Token{symbol(t, token.LessThanSymbol, "<"), symbol(t, token.LessThanSymbol, "<"), one}, false},
		{"condition right", token.ConditionRightLessThan, []token.Token{symbol(t, token.LessThanSymbol, "<"), one}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := token.NewParent(tt.kind, tt.children, "x")
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, token.ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestCellDerivesReference(t *testing.T) {
	c := cell(t, "$B7")
	ref, ok := c.Cell()
	if !ok {
		t.Fatal("cell reference missing")
	}
	if ref.String() != "$B7" {
		t.Fatalf("got %s", ref)
	}
	r, err := symbol(t, token.BetweenSymbol, ":").BinaryOperand(
		[]token.Token{cell(t, "C3"), symbol(t, token.BetweenSymbol, ":"), cell(t, "A1")}, "C3:A1")
	if err != nil {
		t.Fatalf("range: %v", err)
	}
	rng, ok := r.Range()
	if !ok || rng.String() != "A1:C3" {
		t.Fatalf("range %v %v", rng, ok)
	}
}

func TestValueOfParentIsChildren(t *testing.T) {
	n := digits(t, "42")
	kids, ok := n.Value().([]token.Token)
	if !ok || len(kids) != 1 || kids[0].Text() != "42" {
		t.Fatalf("value %#v", n.Value())
	}
	kids[0] = symbol(t, token.PlusSymbol, "+")
	if n.Children()[0].Kind() != token.Digits {
		t.Fatal("children were mutated through Value")
	}
}

func TestSetChildrenRebuildsText(t *testing.T) {
	g := token.MustParent(token.Group, []token.Token{
		symbol(t, token.ParenthesisOpenSymbol, "("), digits(t, "1"), symbol(t, token.ParenthesisCloseSymbol, ")"),
	}, "(1)")
	g2, err := g.SetChildren([]token.Token{
		symbol(t, token.ParenthesisOpenSymbol, "("), digits(t, "23"), symbol(t, token.ParenthesisCloseSymbol, ")"),
	})
	if err != nil {
		t.Fatalf("SetChildren: %v", err)
	}
	if g2.Text() != "(23)" || g.Text() != "(1)" {
		t.Fatalf("got %q and %q", g2.Text(), g.Text())
	}
	if _, err := digits(t, "1").Children()[0].SetChildren(nil); !errors.Is(err, token.ErrUnsupported) {
		t.Fatalf("leaf SetChildren: %v", err)
	}
}
