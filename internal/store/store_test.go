package store_test

import (
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/vmihailenco/msgpack/v5"

	"sheetcalc/internal/reference"
	"sheetcalc/internal/store"
	"sheetcalc/internal/value"
)

func mustCell(t *testing.T, s string) reference.CellReference {
	t.Helper()
	c, err := reference.ParseCell(s)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestMemoryLoadCellRange(t *testing.T) {
	m := store.NewMemory()
	for _, s := range []string{"A1", "A3", "B2", "D9"} {
		m.SaveCell(store.Cell{Reference: mustCell(t, s), Formula: s})
	}
	r, err := reference.ParseRange("A1:B3")
	if err != nil {
		t.Fatal(err)
	}
	got := m.LoadCellRange(r)
	store.SortCells(got)
	var names []string
	for _, c := range got {
		names = append(names, c.Reference.String())
	}
	if strings.Join(names, ",") != "A1,B2,A3" {
		t.Fatalf("got %v", names)
	}

	big, _ := reference.ParseRange("A1:Z100")
	if n := len(m.LoadCellRange(big)); n != 4 {
		t.Fatalf("large range found %d cells", n)
	}

	sheet, _ := reference.ParseRange("A1:XFD1048576")
	if err := sheet.Check(); err == nil {
		t.Fatalf("whole-sheet range passed Check")
	}
	if n := len(m.LoadCellRange(sheet)); n != 4 {
		t.Fatalf("whole-sheet range found %d cells", n)
	}
}

func TestMemoryAbsoluteKeys(t *testing.T) {
	m := store.NewMemory()
	m.SaveCell(store.Cell{Reference: mustCell(t, "$B$2"), Formula: "x"})
	if _, ok := m.LoadCell(mustCell(t, "B2")); !ok {
		t.Fatal("absolute reference not normalised")
	}
	if !m.SetValue(mustCell(t, "B$2"), 3.0) {
		t.Fatal("SetValue missed the cell")
	}
	c, _ := m.LoadCell(mustCell(t, "B2"))
	if !c.HasValue || c.Value != 3.0 {
		t.Fatalf("cell %+v", c)
	}
	if m.SetValue(mustCell(t, "C3"), 1.0) {
		t.Fatal("SetValue created a cell")
	}
	m.SaveLabel(store.LabelMapping{Label: "Total", Target: mustCell(t, "B2")})
	if _, ok := m.LoadLabel("TOTAL"); !ok {
		t.Fatal("labels are case-insensitive")
	}
}

func TestMemoryConcurrentAccess(t *testing.T) {
	m := store.NewMemory()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(col int) {
			defer wg.Done()
			for row := 0; row < 50; row++ {
				ref := reference.Cell(col, row)
				m.SaveCell(store.Cell{Reference: ref})
				m.SetValue(ref, float64(row))
				m.LoadCell(ref)
			}
		}(i)
	}
	wg.Wait()
	if n := len(m.Cells()); n != 400 {
		t.Fatalf("got %d cells", n)
	}
}

func TestDecodeWorkbook(t *testing.T) {
	m, err := store.DecodeWorkbook(`
[cells]
A1 = 5
A2 = "=A1*2"
A3 = true
B1 = 2024-03-15
C1 = "hello"

[labels]
Total = "A2"
Inputs = "A1:A3"
Alias = "Total"
`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	a1, _ := m.LoadCell(mustCell(t, "A1"))
	if !a1.HasValue || a1.Value != 5.0 {
		t.Fatalf("A1 %+v", a1)
	}
	a2, _ := m.LoadCell(mustCell(t, "A2"))
	if a2.HasValue || !a2.IsFormula() {
		t.Fatalf("A2 %+v", a2)
	}
	b1, _ := m.LoadCell(mustCell(t, "B1"))
	if b1.Value != (civil.Date{Year: 2024, Month: time.March, Day: 15}) {
		t.Fatalf("B1 %+v", b1)
	}
	c1, _ := m.LoadCell(mustCell(t, "C1"))
	if c1.IsFormula() || c1.Formula != "hello" {
		t.Fatalf("C1 %+v", c1)
	}
	alias, ok := m.LoadLabel("alias")
	if !ok || alias.Target != reference.LabelName("Total") {
		t.Fatalf("alias %+v", alias)
	}
	inputs, _ := m.LoadLabel("Inputs")
	if inputs.Target.String() != "A1:A3" {
		t.Fatalf("inputs %v", inputs.Target)
	}
}

func TestDecodeWorkbookErrors(t *testing.T) {
	tests := []struct {
		data string
		want string
	}{
		{"[labels]\nX = \"A1\"\n", "missing [cells]"},
		{"[cells]\nA0 = 1\n", "[cells].A0"},
		{"[cells]\nA1 = 1\n[labels]\nX = \"1:2\"\n", "[labels].X"},
	}
	for _, tt := range tests {
		_, err := store.DecodeWorkbook(tt.data)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("expected %q, got %v", tt.want, err)
		}
	}
}

func TestSnapshotFile(t *testing.T) {
	m := store.NewMemory()
	m.SaveCell(store.Cell{Reference: mustCell(t, "A1"), Formula: "=1/0", Value: value.NewError(value.ErrorDiv0, "division by zero"), HasValue: true})
	m.SaveCell(store.Cell{Reference: mustCell(t, "A2"), Formula: "=A1:A1", Value: []any{1.0, nil, "x"}, HasValue: true})
	m.SaveCell(store.Cell{Reference: mustCell(t, "A3"), Formula: "14:30", Value: civil.Time{Hour: 14, Minute: 30}, HasValue: true})
	m.SaveCell(store.Cell{Reference: mustCell(t, "A4")})
	m.SaveLabel(store.LabelMapping{Label: "Errs", Target: mustCell(t, "A1")})

	path := filepath.Join(t.TempDir(), "out", "book.mp")
	if err := store.SaveSnapshot(path, m); err != nil {
		t.Fatalf("save: %v", err)
	}
	back, err := store.LoadSnapshot(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	a1, _ := back.LoadCell(mustCell(t, "A1"))
	if e, ok := a1.Value.(value.Error); !ok || e.Kind != value.ErrorDiv0 || a1.Formula != "=1/0" {
		t.Fatalf("A1 %+v", a1)
	}
	a2, _ := back.LoadCell(mustCell(t, "A2"))
	list, ok := a2.Value.([]any)
	if !ok || len(list) != 3 || list[1] != nil || list[2] != "x" {
		t.Fatalf("A2 %+v", a2)
	}
	a3, _ := back.LoadCell(mustCell(t, "A3"))
	if a3.Value != (civil.Time{Hour: 14, Minute: 30}) {
		t.Fatalf("A3 %+v", a3)
	}
	a4, _ := back.LoadCell(mustCell(t, "A4"))
	if a4.HasValue {
		t.Fatalf("A4 %+v", a4)
	}
	if _, ok := back.LoadLabel("errs"); !ok {
		t.Fatal("label lost")
	}
}

func TestSnapshotSchemaMismatch(t *testing.T) {
	data, err := msgpack.Marshal(&store.Snapshot{Schema: 99})
	if err != nil {
		t.Fatal(err)
	}
	var snap store.Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		t.Fatal(err)
	}
	if _, err := snap.Restore(); !errors.Is(err, store.ErrSnapshotSchema) {
		t.Fatalf("expected ErrSnapshotSchema, got %v", err)
	}
}
