package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"cloud.google.com/go/civil"

	"sheetcalc/internal/diag"
	"sheetcalc/internal/engine"
	"sheetcalc/internal/env"
	"sheetcalc/internal/function"
	"sheetcalc/internal/reference"
	"sheetcalc/internal/store"
	"sheetcalc/internal/value"
)

func workbook(t *testing.T, data string) *store.Memory {
	t.Helper()
	wb, err := store.DecodeWorkbook(data)
	if err != nil {
		t.Fatalf("DecodeWorkbook: %v", err)
	}
	return wb
}

func valueAt(t *testing.T, wb *store.Memory, at string) any {
	t.Helper()
	ref, err := reference.ParseCell(at)
	if err != nil {
		t.Fatal(err)
	}
	c, ok := wb.LoadCell(ref)
	if !ok || !c.HasValue {
		t.Fatalf("%s has no value", at)
	}
	return c.Value
}

func recalc(t *testing.T, wb *store.Memory) *engine.Result {
	t.Helper()
	environment := env.Default().With("Rate", 0.5)
	res, err := engine.Recalculate(context.Background(), wb, environment, engine.Options{
		Jobs:      4,
		Functions: function.Builtins(),
	})
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	return res
}

func TestRecalculateInDependencyOrder(t *testing.T) {
	wb := workbook(t, `
[cells]
D1 = "=Rate*C1"
C1 = "=SUM(A1:B1)"
B1 = "=A1*3"
A1 = 2
A2 = "2024/03/15"
A3 = "hello"
B3 = "=SUM(Total)"

[labels]
Total = "A1:B1"
`)
	res := recalc(t, wb)

	tests := []struct {
		cell string
		want any
	}{
		{"A1", 2.0},
		{"B1", 6.0},
		{"C1", 8.0},
		{"D1", 4.0},
		{"A2", civil.Date{Year: 2024, Month: 3, Day: 15}},
		{"A3", "hello"},
		{"B3", 8.0},
	}
	for _, tt := range tests {
		if got := valueAt(t, wb, tt.cell); got != tt.want {
			t.Errorf("%s = %#v, want %#v", tt.cell, got, tt.want)
		}
	}
	if res.Bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diag.FormatShort(res.Bag.Items()))
	}
	if res.Batches != 4 {
		t.Fatalf("batches = %d, want 4", res.Batches)
	}
	if len(res.Cells) != 7 || res.Cells[0].Cell.String() != "A1" {
		t.Fatalf("cells not in row-major order: %+v", res.Cells)
	}
}

func TestRecalculateDependencyCycle(t *testing.T) {
	wb := workbook(t, `
[cells]
A1 = "=B1"
B1 = "=A1"
C1 = "=A1+1"
`)
	res := recalc(t, wb)

	for _, cell := range []string{"A1", "B1", "C1"} {
		e, ok := valueAt(t, wb, cell).(value.Error)
		if !ok || e.Kind != value.ErrorCycle {
			t.Fatalf("%s = %#v, want #CYCLE!", cell, valueAt(t, wb, cell))
		}
	}
	if len(res.Cycles) != 2 {
		t.Fatalf("cycles = %v, want A1 and B1", res.Cycles)
	}
	var cycles, warnings int
	for _, d := range res.Bag.Items() {
		switch d.Code {
		case diag.EngDependencyCycle:
			cycles++
		case diag.EvalErrorValue:
			warnings++
		}
	}
	if cycles != 2 || warnings != 1 {
		t.Fatalf("diagnostics:\n%s", diag.FormatShort(res.Bag.Items()))
	}
}

func TestRecalculateReportsBadInput(t *testing.T) {
	wb := workbook(t, `
[cells]
A1 = "=1+"
B1 = "=A1*2"
`)
	res := recalc(t, wb)

	if e, ok := valueAt(t, wb, "A1").(value.Error); !ok || e.Kind != value.ErrorValue {
		t.Fatalf("A1 = %#v, want #VALUE!", valueAt(t, wb, "A1"))
	}
	if e, ok := valueAt(t, wb, "B1").(value.Error); !ok || e.Kind != value.ErrorValue {
		t.Fatalf("B1 = %#v, want #VALUE!", valueAt(t, wb, "B1"))
	}
	if !res.Bag.HasErrors() {
		t.Fatalf("expected an error diagnostic")
	}
	first := res.Bag.Items()[0]
	if first.Subject != "A1" || first.Code != diag.SynUnexpectedToken {
		t.Fatalf("first diagnostic = %+v", first)
	}
}

type recorder struct {
	mu     sync.Mutex
	events []engine.Event
}

func (r *recorder) OnEvent(ev engine.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func TestRecalculateProgressAndCancel(t *testing.T) {
	wb := workbook(t, `
[cells]
A1 = 1
A2 = "=A1+1"
`)
	rec := &recorder{}
	_, err := engine.Recalculate(context.Background(), wb, env.Default(), engine.Options{Progress: rec})
	if err != nil {
		t.Fatalf("Recalculate: %v", err)
	}
	done := 0
	for _, ev := range rec.events {
		if ev.Stage == engine.StageEvaluate && ev.Status == engine.StatusDone {
			done++
		}
	}
	if done != 2 {
		t.Fatalf("done events = %d, want 2 (%+v)", done, rec.events)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = engine.Recalculate(ctx, wb, env.Default(), engine.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
