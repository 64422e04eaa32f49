package eval_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"sheetcalc/internal/env"
	"sheetcalc/internal/eval"
	"sheetcalc/internal/expr"
	"sheetcalc/internal/function"
	"sheetcalc/internal/parser"
	"sheetcalc/internal/reference"
	"sheetcalc/internal/store"
	"sheetcalc/internal/trace"
	"sheetcalc/internal/value"
)

func cell(t *testing.T, text string) reference.CellReference {
	t.Helper()
	ref, err := reference.ParseCell(text)
	if err != nil {
		t.Fatalf("ParseCell(%q): %v", text, err)
	}
	return ref
}

func setValue(t *testing.T, st *store.Memory, at string, v any) {
	t.Helper()
	st.SaveCell(store.Cell{Reference: cell(t, at), Value: v, HasValue: true})
}

func newContext(st *store.Memory) *eval.Context {
	return eval.New(st, env.Default().WithDefaultYear(2024), function.Builtins())
}

func TestLabelCycle(t *testing.T) {
	st := store.NewMemory()
	st.SaveLabel(store.LabelMapping{Label: "Alpha", Target: reference.LabelName("Beta")})
	st.SaveLabel(store.LabelMapping{Label: "Beta", Target: reference.LabelName("alpha")})
	ctx := newContext(st)

	_, _, err := ctx.Reference(reference.LabelName("Alpha"))
	if !errors.Is(err, eval.ErrCycle) {
		t.Fatalf("Reference error = %v, want ErrCycle", err)
	}
	if msg := err.Error(); !strings.Contains(msg, "Alpha") || !strings.Contains(msg, "BETA") {
		t.Fatalf("cycle message does not name both references: %s", msg)
	}

	got, err := ctx.Evaluate("=Alpha+1")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if e, ok := got.(value.Error); !ok || e.Kind != value.ErrorCycle {
		t.Fatalf("Evaluate = %#v, want #CYCLE!", got)
	}
}

func TestValueCycleThroughCell(t *testing.T) {
	st := store.NewMemory()
	setValue(t, st, "A1", cell(t, "$B$1"))
	setValue(t, st, "B1", cell(t, "A1"))
	_, _, err := newContext(st).Reference(cell(t, "A1"))
	if !errors.Is(err, eval.ErrCycle) {
		t.Fatalf("Reference error = %v, want ErrCycle", err)
	}
}

func TestRangeWithMissingCell(t *testing.T) {
	st := store.NewMemory()
	setValue(t, st, "A1", 1.0)
	setValue(t, st, "A3", 3.0)
	r, err := reference.ParseRange("A1:A3")
	if err != nil {
		t.Fatal(err)
	}

	b, ok, err := newContext(st).Reference(r)
	if err != nil || !ok || !b.Present {
		t.Fatalf("Reference = %+v, %v, %v", b, ok, err)
	}
	list, isList := b.Value.([]any)
	if !isList || len(list) != 3 {
		t.Fatalf("range value = %#v, want 3 elements", b.Value)
	}
	if list[0] != 1.0 || list[1] != nil || list[2] != 3.0 {
		t.Fatalf("range value = %#v", list)
	}
}

func TestEmptyRangeKeepsLength(t *testing.T) {
	r, err := reference.ParseRange("B2:C3")
	if err != nil {
		t.Fatal(err)
	}
	b, ok, err := newContext(store.NewMemory()).Reference(r)
	if err != nil || !ok {
		t.Fatalf("Reference = %v, %v", ok, err)
	}
	if list := b.Value.([]any); len(list) != 4 {
		t.Fatalf("len = %d, want 4", len(list))
	}
}

func TestAbsentCellIsEmptyNotError(t *testing.T) {
	ctx := newContext(store.NewMemory())
	b, ok, err := ctx.Reference(cell(t, "A1"))
	if err != nil || !ok || b.Present {
		t.Fatalf("Reference = %+v, %v, %v; want known and empty", b, ok, err)
	}
	got, err := ctx.Evaluate("=A1=5")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if got != false {
		t.Fatalf("=A1=5 = %#v, want false", got)
	}
}

func TestEvaluate(t *testing.T) {
	st := store.NewMemory()
	setValue(t, st, "A1", 10.0)
	setValue(t, st, "A2", 20.0)
	st.SaveLabel(store.LabelMapping{Label: "Total", Target: reference.LabelName("Sales")})
	r, _ := reference.ParseRange("A1:A2")
	st.SaveLabel(store.LabelMapping{Label: "Sales", Target: r})
	environment := env.Default().With("TaxRate", 0.5)
	ctx := eval.New(st, environment, function.Builtins())

	tests := []struct {
		text string
		want any
	}{
		{"=1+2*3", 7.0},
		{"=SUM(Total)", 30.0},
		{"=$A$1*TAXRATE", 5.0},
		{"=LAMBDA(x, x*TaxRate)(A2)", 10.0},
		{"=Missing", value.NewError(value.ErrorName, "unknown reference Missing")},
		{"=1/0", value.NewError(value.ErrorDiv0, "division by zero")},
		{"42", 42.0},
		{"hello", "hello"},
		{"=", nil},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ctx.Evaluate(tt.text)
			if err != nil {
				t.Fatalf("Evaluate: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	_, err := newContext(store.NewMemory()).Evaluate("=1 & 2")
	if !errors.Is(err, parser.ErrSyntax) {
		t.Fatalf("err = %v, want ErrSyntax", err)
	}
}

func TestWithEnvironmentRebuildsParsing(t *testing.T) {
	ctx := newContext(store.NewMemory())
	if got, err := ctx.Evaluate("1,5"); err != nil || got != "1,5" {
		t.Fatalf("decimal point: got %#v, %v", got, err)
	}
	comma, err := env.Decode("[locale]\ndecimal_separator = \",\"\n")
	if err != nil {
		t.Fatal(err)
	}
	got, err := ctx.WithEnvironment(comma).Evaluate("1,5")
	if err != nil || got != 1.5 {
		t.Fatalf("decimal comma: got %#v, %v", got, err)
	}
}

func TestLocalsShadowEnvironment(t *testing.T) {
	ctx := eval.New(store.NewMemory(), env.Default().With("x", 1.0), nil)
	inner := ctx.WithLocals(map[reference.EnvironmentValueName]any{"X": 2.0})
	got, err := expr.Eval(inner, expr.Ref(reference.EnvironmentValueName("x")))
	if err != nil || got != 2.0 {
		t.Fatalf("got %#v, %v", got, err)
	}
	got, err = expr.Eval(ctx, expr.Ref(reference.EnvironmentValueName("x")))
	if err != nil || got != 1.0 {
		t.Fatalf("outer context changed: %#v, %v", got, err)
	}
}

func TestReferenceHopsAreTraced(t *testing.T) {
	st := store.NewMemory()
	setValue(t, st, "B1", 3.0)
	st.SaveLabel(store.LabelMapping{Label: "Price", Target: cell(t, "B1")})
	var buf bytes.Buffer
	tr := trace.NewStreamTracer(&buf, trace.LevelDebug, trace.FormatText)
	ctx := newContext(st).WithTracer(tr, 0)

	if _, _, err := ctx.Reference(reference.LabelName("Price")); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"ref:Price", "ref:B1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("trace missing %q:\n%s", want, out)
		}
	}
}

func TestErrorValue(t *testing.T) {
	if _, ok := eval.ErrorValue(errors.New("other")); ok {
		t.Fatalf("unrelated error translated")
	}
	e, ok := eval.ErrorValue(&expr.UnknownReferenceError{Ref: cell(t, "A1")})
	if !ok || e.Kind != value.ErrorRef {
		t.Fatalf("unknown cell = %#v, %v", e, ok)
	}
}

func TestHugeRangeIsNumError(t *testing.T) {
	st := store.NewMemory()
	setValue(t, st, "A1", 2.0)
	st.SaveLabel(store.LabelMapping{Label: "Everything", Target: reference.NewRange(cell(t, "A1"), cell(t, "XFD1048576"))})
	ctx := newContext(st)

	for _, formula := range []string{"=SUM(A1:XFD1048576)", "=SUM(Everything)", "=A1:B1048576"} {
		got, err := ctx.Evaluate(formula)
		if err != nil {
			t.Fatalf("%s: %v", formula, err)
		}
		e, ok := got.(value.Error)
		if !ok || e.Kind != value.ErrorNum {
			t.Fatalf("%s = %#v, want #NUM!", formula, got)
		}
	}

	got, err := ctx.Evaluate("=SUM(A1:A1048576)")
	if err != nil || got != 2.0 {
		t.Fatalf("full column = %#v, %v", got, err)
	}
}
