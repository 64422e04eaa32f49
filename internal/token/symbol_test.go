package token_test

import (
	"errors"
	"testing"

	"sheetcalc/internal/token"
)

func TestPriorityTiers(t *testing.T) {
	order := []token.Kind{
		token.EqualsSymbol,
		token.PlusSymbol,
		token.MultiplySymbol,
		token.PowerSymbol,
		token.BetweenSymbol,
	}
	prev := token.PriorityIgnored
	for _, k := range order {
		p := symbol(t, k, "x").Priority()
		if p <= prev {
			t.Fatalf("%s priority %d not above %d", k, p, prev)
		}
		prev = p
	}
	for _, k := range []token.Kind{token.ApostropheSymbol, token.GroupSeparatorSymbol, token.WhitespaceSymbol} {
		if p := symbol(t, k, "x").Priority(); p != token.PriorityIgnored {
			t.Fatalf("%s priority %d", k, p)
		}
	}
	if digits(t, "1").Priority() != token.PriorityIgnored {
		t.Fatal("non-symbol has a priority")
	}
}

func TestBinaryOperandRoundTrip(t *testing.T) {
	ops := map[token.Kind]token.Kind{
		token.PlusSymbol:              token.Addition,
		token.MinusSymbol:             token.Subtraction,
		token.MultiplySymbol:          token.Multiplication,
		token.DivideSymbol:            token.Division,
		token.PowerSymbol:             token.Power,
		token.EqualsSymbol:            token.Equals,
		token.NotEqualsSymbol:         token.NotEquals,
		token.GreaterThanSymbol:       token.GreaterThan,
		token.GreaterThanEqualsSymbol: token.GreaterThanEquals,
		token.LessThanSymbol:          token.LessThan,
		token.LessThanEqualsSymbol:    token.LessThanEquals,
	}
	for sk, want := range ops {
		sym := symbol(t, sk, "op")
		children := []token.Token{digits(t, "1"), symbol(t, token.WhitespaceSymbol, " "), sym, digits(t, "2")}
		text := "1 op2"
		got, err := sym.BinaryOperand(children, text)
		if err != nil {
			t.Fatalf("%s: %v", sk, err)
		}
		if got.Kind() != want {
			t.Fatalf("%s built %s, want %s", sk, got.Kind(), want)
		}
		if got.Text() != text {
			t.Fatalf("%s text %q", sk, got.Text())
		}
		kids := got.Value().([]token.Token)
		if len(kids) != len(children) {
			t.Fatalf("%s has %d children", sk, len(kids))
		}
		for i := range kids {
			if !kids[i].Equal(children[i]) {
				t.Fatalf("%s child %d differs", sk, i)
			}
		}
	}
}

func TestBinaryOperandIgnoredSymbol(t *testing.T) {
	apos := symbol(t, token.ApostropheSymbol, "'")
	_, err := apos.BinaryOperand([]token.Token{digits(t, "1"), apos, digits(t, "2")}, "1'2")
	if !errors.Is(err, token.ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}
