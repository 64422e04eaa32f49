package parser_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"

	"sheetcalc/internal/expr"
	"sheetcalc/internal/lower"
	"sheetcalc/internal/parser"
	"sheetcalc/internal/reference"
	"sheetcalc/internal/token"
	"sheetcalc/internal/value"
)

type locale struct{}

func (locale) NumberKind() value.NumberKind { return value.NumberDouble }
func (locale) DefaultYear() int             { return 2023 }
func (locale) TwoToFourDigitYear(y int) int {
	if y < 30 {
		return 2000 + y
	}
	return 1900 + y
}

func lowerFormula(t *testing.T, text string, opts parser.Options) expr.Expression {
	t.Helper()
	tok, err := parser.ParseFormula(text, opts)
	if err != nil {
		t.Fatalf("parse %q: %v", text, err)
	}
	e, ok, err := lower.Expression(tok, locale{})
	if err != nil || !ok {
		t.Fatalf("lower %q: ok=%v err=%v", text, ok, err)
	}
	return e
}

// shape renders the kinds of a token tree, skipping symbols.
func shape(tok token.Token) string {
	var b strings.Builder
	var walk func(token.Token)
	walk = func(t token.Token) {
		b.WriteString(t.Kind().String())
		ops := t.Operands()
		if !t.IsParent() || len(ops) == 0 {
			return
		}
		b.WriteString("(")
		for i, c := range ops {
			if i > 0 {
				b.WriteString(" ")
			}
			walk(c)
		}
		b.WriteString(")")
	}
	walk(tok)
	return b.String()
}

func TestParseFormulaShapes(t *testing.T) {
	tests := []struct {
		in    string
		shape string
		text  string
	}{
		{"=1+2*3", "Expression(Addition(Number Multiplication(Number Number)))", "=1+2*3"},
		{"=1*2+3", "Expression(Addition(Multiplication(Number Number) Number))", "=1*2+3"},
		{"=1-2-3", "Expression(Subtraction(Subtraction(Number Number) Number))", "=1-2-3"},
		{"=A1=5", "Expression(Equals(Cell Number))", "=A1=5"},
		{"=1<>2", "Expression(NotEquals(Number Number))", "=1<>2"},
		{"=-2^2", "Expression(Power(Negative(Number) Number))", "=-2^2"},
		{"=(1+2)*3", "Expression(Multiplication(Group(Addition(Number Number)) Number))", "=(1+2)*3"},
		{"=SUM(A1:B2, 4)", "Expression(NamedFunction(FunctionName FunctionParameters(CellRange(Cell Cell) Number)))", "=SUM(A1:B2,4)"},
		{"=NOW()", "Expression(NamedFunction(FunctionName FunctionParameters))", "=NOW()"},
		{"=TRUE", "Expression(Boolean(BooleanLiteral))", "=TRUE"},
		{"=#REF!", "Expression(ErrorLiteral)", "=#REF!"},
		{`="a""b"`, "Expression(Text(TextLiteral))", `="a""b"`},
		{"=Total", "Expression(LabelName)", "=Total"},
		{"=", "Expression", "="},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tok, err := parser.ParseFormula(tt.in, parser.Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := shape(tok); got != tt.shape {
				t.Fatalf("shape %s, want %s", got, tt.shape)
			}
			if tok.Text() != tt.text {
				t.Fatalf("text %q, want %q", tok.Text(), tt.text)
			}
		})
	}
}

func TestParseFormulaSyntaxErrors(t *testing.T) {
	for _, in := range []string{"1+2", "=(1+2", "=1+", `="a"&"b"`, "=1%%A1", "=A1%"} {
		t.Run(in, func(t *testing.T) {
			_, err := parser.ParseFormula(in, parser.Options{})
			if !errors.Is(err, parser.ErrSyntax) {
				t.Fatalf("expected ErrSyntax, got %v", err)
			}
		})
	}
}

func TestParseFormulaEvaluates(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"=1+2*3", 7.0},
		{"=-2^2", 4.0},
		{"=50%", 0.5},
		{"=50%%", 0.005},
		{"=1.5E+3", 1500.0},
		{`="a""b"`, `a"b`},
		{"=2>=2", true},
	}
	for _, tt := range tests {
		e := lowerFormula(t, tt.in, parser.Options{})
		got, err := expr.Eval(nil, e)
		if err != nil {
			t.Fatalf("%s: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestValueNames(t *testing.T) {
	opts := parser.Options{ValueNames: func(name string) bool { return strings.EqualFold(name, "tax") }}
	got := lowerFormula(t, "=Total*TAX", opts)
	want := expr.Multiply(expr.Ref(reference.LabelName("Total")), expr.Ref(reference.EnvironmentValueName("TAX")))
	if !expr.Equal(got, want) {
		t.Fatalf("got %s", got)
	}
}

func TestLambdaInvocation(t *testing.T) {
	tok, err := parser.ParseFormula("=LAMBDA(x, x*2)(3)", parser.Options{})
	if err != nil {
		t.Fatal(err)
	}
	want := "Expression(LambdaFunction(FunctionName FunctionParameters(ValueName Multiplication(ValueName Number)) FunctionParameters(Number)))"
	if got := shape(tok); got != want {
		t.Fatalf("shape %s", got)
	}
	if _, err := parser.ParseFormula("=LAMBDA(1, 2)", parser.Options{}); !errors.Is(err, parser.ErrSyntax) {
		t.Fatalf("numeric parameter accepted: %v", err)
	}
}

func TestSyntaxErrorSpan(t *testing.T) {
	_, err := parser.ParseFormula(`=1+"a"&2`, parser.Options{})
	var se *parser.SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("expected SyntaxError, got %v", err)
	}
	if se.Span.Slice(`=1+"a"&2`) != "&" {
		t.Fatalf("span %s covers %q", se.Span, se.Span.Slice(`=1+"a"&2`))
	}
	if !se.Unsupported {
		t.Fatalf("concatenation should be marked unsupported")
	}

	_, err = parser.ParseFormula("=1+", parser.Options{})
	if !errors.As(err, &se) || se.Unsupported {
		t.Fatalf("missing operand: got %v", err)
	}
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		in   string
		kind token.Kind
		want any
	}{
		{"42", token.Number, 42.0},
		{"-1,234.5", token.Number, -1234.5},
		{"50%", token.Number, 0.5},
		{"1e3", token.Number, 1000.0},
		{"TRUE", token.Boolean, true},
		{"#N/A", token.ErrorLiteral, value.Error{Kind: value.ErrorNA}},
		{"2024/03/15", token.Date, civil.Date{Year: 2024, Month: time.March, Day: 15}},
		{"15-Mar-24", token.Date, civil.Date{Year: 2024, Month: time.March, Day: 15}},
		{"15 March 1999", token.Date, civil.Date{Year: 1999, Month: time.March, Day: 15}},
		{"March 15, 2024", token.Date, civil.Date{Year: 2024, Month: time.March, Day: 15}},
		{"1 Jul", token.Date, civil.Date{Year: 2023, Month: time.July, Day: 1}},
		{"14:30", token.Time, civil.Time{Hour: 14, Minute: 30}},
		{"2:30:15 PM", token.Time, civil.Time{Hour: 14, Minute: 30, Second: 15}},
		{"12:05 am", token.Time, civil.Time{Hour: 0, Minute: 5}},
		{"10:00:00.250", token.Time, civil.Time{Hour: 10, Nanosecond: 250_000_000}},
		{"2024-03-15 14:30", token.DateTime, civil.DateTime{
			Date: civil.Date{Year: 2024, Month: time.March, Day: 15},
			Time: civil.Time{Hour: 14, Minute: 30},
		}},
		{"hello", token.Text, "hello"},
		{"'123", token.Text, "123"},
		{"12 apples", token.Text, "12 apples"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			tok, err := parser.ParseLiteral(tt.in, parser.Options{})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tok.Kind() != tt.kind {
				t.Fatalf("kind %s, want %s", tok.Kind(), tt.kind)
			}
			e, ok, err := lower.Expression(tok, locale{})
			if err != nil || !ok {
				t.Fatalf("lower: ok=%v err=%v", ok, err)
			}
			got, err := expr.Eval(nil, e)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %v (%T), want %v", got, got, tt.want)
			}
		})
	}
}

func TestParseLiteralDecimalComma(t *testing.T) {
	tok, err := parser.ParseLiteral("1.234,5", parser.Options{DecimalSeparator: ','})
	if err != nil {
		t.Fatal(err)
	}
	n, err := lower.Number(tok, locale{})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1234.5 {
		t.Fatalf("got %v", n)
	}
}

func TestParseFormulaNestingLimit(t *testing.T) {
	const n = 5000
	tests := map[string]string{
		"negation":    "=" + strings.Repeat("-", n) + "1",
		"parentheses": "=" + strings.Repeat("(", n) + "1" + strings.Repeat(")", n),
		"functions":   "=" + strings.Repeat("ABS(", n) + "1" + strings.Repeat(")", n),
		"left chain":  "=1" + strings.Repeat("+1", n),
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			start := time.Now()
			_, err := parser.ParseFormula(text, parser.Options{})
			if !errors.Is(err, token.ErrTooDeep) || !errors.Is(err, parser.ErrSyntax) {
				t.Fatalf("err = %v, want a nesting syntax error", err)
			}
			if elapsed := time.Since(start); elapsed > 2*time.Second {
				t.Fatalf("rejecting took %s", elapsed)
			}
		})
	}
}

func TestParseFormulaBelowNestingLimit(t *testing.T) {
	text := "=" + strings.Repeat("-", 100) + "1"
	e := lowerFormula(t, text, parser.Options{})
	v, err := expr.Eval(nil, e)
	if err != nil || v != 1.0 {
		t.Fatalf("%s = %v, %v", text, v, err)
	}
}
