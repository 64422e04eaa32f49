package dag

import (
	"reflect"
	"testing"

	"sheetcalc/internal/diag"
	"sheetcalc/internal/reference"
	"sheetcalc/internal/source"
)

func ref(t *testing.T, text string) reference.CellReference {
	t.Helper()
	r, err := reference.ParseCell(text)
	if err != nil {
		t.Fatalf("ParseCell(%q): %v", text, err)
	}
	return r
}

func node(t *testing.T, cell string, deps ...string) Node {
	t.Helper()
	n := Node{Cell: ref(t, cell)}
	for _, d := range deps {
		n.Deps = append(n.Deps, ref(t, d))
	}
	return n
}

func batchesToNames(idx Index, batches [][]NodeID) [][]string {
	out := make([][]string, len(batches))
	for i, batch := range batches {
		out[i] = idx.Names(batch)
	}
	return out
}

func TestBuildIndexRowMajor(t *testing.T) {
	nodes := []Node{node(t, "B1", "A2"), node(t, "A1", "$C$1")}
	idx := BuildIndex(nodes)

	want := []string{"A1", "B1", "C1", "A2"}
	if got := idx.Names([]NodeID{0, 1, 2, 3}); !reflect.DeepEqual(got, want) {
		t.Fatalf("index order = %v, want %v", got, want)
	}
	if id, ok := idx.KeyToID[ref(t, "C1")]; !ok || id != 2 {
		t.Fatalf("KeyToID[C1] = %v, %v", id, ok)
	}
}

func TestBuildGraphDropsAbsentDeps(t *testing.T) {
	nodes := []Node{node(t, "A1", "B1", "Z9", "$B$1"), node(t, "B1")}
	idx := BuildIndex(nodes)
	g := BuildGraph(idx, nodes, nil)

	a1, b1, z9 := idx.KeyToID[ref(t, "A1")], idx.KeyToID[ref(t, "B1")], idx.KeyToID[ref(t, "Z9")]
	if g.Present[int(z9)] {
		t.Fatalf("Z9 should not be present")
	}
	if got := g.Edges[int(b1)]; len(got) != 1 || got[0] != a1 {
		t.Fatalf("edges from B1 = %v, want [%v]", got, a1)
	}
	if g.Indeg[int(a1)] != 1 {
		t.Fatalf("indeg A1 = %d, want 1", g.Indeg[int(a1)])
	}
}

func TestBuildGraphDuplicateCell(t *testing.T) {
	first := node(t, "A1")
	first.Span = source.Span{Start: 0, End: 3}
	second := node(t, "$A$1", "B1")
	second.Span = source.Span{Start: 0, End: 4}

	bag := diag.NewBag(10)
	nodes := []Node{first, second, node(t, "B1")}
	idx := BuildIndex(nodes)
	g := BuildGraph(idx, nodes, diag.BagReporter{Bag: bag})

	if bag.Len() != 1 || bag.Items()[0].Code != diag.EngWorkbook {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
	a1 := idx.KeyToID[ref(t, "A1")]
	if g.Indeg[int(a1)] != 0 || g.Spans[int(a1)] != first.Span {
		t.Fatalf("first declaration should win: indeg=%d span=%v", g.Indeg[int(a1)], g.Spans[int(a1)])
	}
}

func TestToposortKahnBatches(t *testing.T) {
	// C1 = A1 + B1, B1 = A1, A2 is independent.
	nodes := []Node{node(t, "C1", "A1", "B1"), node(t, "B1", "A1"), node(t, "A1"), node(t, "A2")}
	idx := BuildIndex(nodes)
	topo := ToposortKahn(BuildGraph(idx, nodes, nil))
	if topo.Cyclic {
		t.Fatalf("expected acyclic graph")
	}

	want := [][]string{{"A1", "A2"}, {"B1"}, {"C1"}}
	if got := batchesToNames(idx, topo.Batches); !reflect.DeepEqual(got, want) {
		t.Fatalf("batches = %v, want %v", got, want)
	}
	if got := idx.Names(topo.Order); !reflect.DeepEqual(got, []string{"A1", "A2", "B1", "C1"}) {
		t.Fatalf("order = %v", got)
	}
}

func TestToposortCycleMembersAndDownstream(t *testing.T) {
	// A1 <-> B1 form a cycle, C1 reads B1, D1 reads itself, E1 is free.
	nodes := []Node{
		node(t, "A1", "B1"),
		node(t, "B1", "A1"),
		node(t, "C1", "B1"),
		node(t, "D1", "D1"),
		node(t, "E1"),
	}
	idx := BuildIndex(nodes)
	g := BuildGraph(idx, nodes, nil)
	topo := ToposortKahn(g)

	if !topo.Cyclic {
		t.Fatalf("expected cycle")
	}
	if got := idx.Names(topo.Cycles); !reflect.DeepEqual(got, []string{"A1", "B1", "D1"}) {
		t.Fatalf("cycles = %v", got)
	}
	if got := idx.Names(topo.Order); !reflect.DeepEqual(got, []string{"E1", "C1"}) {
		t.Fatalf("order = %v", got)
	}
	if len(topo.Components) != 2 ||
		!reflect.DeepEqual(idx.Names(topo.Components[0]), []string{"A1", "B1"}) ||
		!reflect.DeepEqual(idx.Names(topo.Components[1]), []string{"D1"}) {
		t.Fatalf("components = %v", topo.Components)
	}

	bag := diag.NewBag(10)
	ReportCycles(idx, g, topo, diag.BagReporter{Bag: bag})
	if bag.Len() != 3 {
		t.Fatalf("diagnostics = %d, want 3", bag.Len())
	}
	for _, d := range bag.Items() {
		if d.Code != diag.EngDependencyCycle {
			t.Fatalf("unexpected code %v", d.Code)
		}
	}
	first := bag.Items()[0]
	if first.Subject != "A1" || len(first.Notes) != 1 || first.Notes[0].Msg != "reads B1" {
		t.Fatalf("A1 diagnostic = %+v", first)
	}
	if first.Message != "cell A1 is part of a dependency cycle among A1, B1" {
		t.Fatalf("A1 message = %q", first.Message)
	}
	self := bag.Items()[2]
	if len(self.Notes) != 1 || self.Notes[0].Msg != "reads D1" {
		t.Fatalf("D1 diagnostic = %+v", self)
	}
	if self.Message != "cell D1 reads itself" {
		t.Fatalf("D1 message = %q", self.Message)
	}
}
