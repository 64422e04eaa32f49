package dag

import (
	"fmt"
	"slices"
	"strings"

	"sheetcalc/internal/diag"
	"sheetcalc/internal/reference"
	"sheetcalc/internal/source"
)

// Node is a workbook cell and the cells its formula reads.
type Node struct {
	Cell reference.CellReference
	Deps []reference.CellReference
	// Span covers the formula text, for diagnostics.
	Span source.Span
}

type Graph struct {
	Edges   [][]NodeID // Edges[dep] = ячейки, читающие dep
	Indeg   []int      // входящие степени для Kahn (только присутствующие ячейки)
	Present []bool     // ячейка есть в книге, а не только упоминается
	Spans   []source.Span
}

// BuildGraph links every node to the nodes it depends on. A node listed
// twice is reported and the first one wins. Dependencies on cells that are
// not nodes are dropped: such cells are empty.
func BuildGraph(idx Index, nodes []Node, r diag.Reporter) Graph {
	count := len(idx.IDToKey)
	g := Graph{
		Edges:   make([][]NodeID, count),
		Indeg:   make([]int, count),
		Present: make([]bool, count),
		Spans:   make([]source.Span, count),
	}
	deps := make([][]reference.CellReference, count)
	for _, n := range nodes {
		id, ok := idx.KeyToID[n.Cell.Key()]
		if !ok {
			// не должно происходить, индекс строится по тем же узлам
			continue
		}
		if g.Present[int(id)] {
			if r != nil {
				r.Report(diag.NewError(diag.EngWorkbook, n.Cell.Key().String(), n.Span,
					fmt.Sprintf("duplicate cell %s", n.Cell.Key())))
			}
			continue
		}
		g.Present[int(id)] = true
		g.Spans[int(id)] = n.Span
		deps[int(id)] = n.Deps
	}

	for to := range deps {
		seen := make(map[NodeID]struct{}, len(deps[to]))
		for _, dep := range deps[to] {
			from, ok := idx.KeyToID[dep.Key()]
			if !ok || !g.Present[int(from)] {
				continue
			}
			if _, dup := seen[from]; dup {
				continue
			}
			seen[from] = struct{}{}
			g.Edges[int(from)] = append(g.Edges[int(from)], NodeID(to))
			g.Indeg[to]++
		}
	}
	for from := range g.Edges {
		if len(g.Edges[from]) > 1 {
			slices.Sort(g.Edges[from])
		}
	}
	return g
}

// ReportCycles reports every cell that is part of a dependency cycle. Each
// diagnostic names only the members of the cell's own cycle.
func ReportCycles(idx Index, g Graph, topo *Topo, r diag.Reporter) {
	if r == nil || !topo.Cyclic || len(topo.Components) == 0 {
		return
	}
	for _, comp := range topo.Components {
		summary := strings.Join(idx.Names(comp), ", ")
		for _, id := range comp {
			name := idx.IDToKey[int(id)].String()
			msg := fmt.Sprintf("cell %s is part of a dependency cycle among %s", name, summary)
			if len(comp) == 1 {
				msg = fmt.Sprintf("cell %s reads itself", name)
			}
			b := diag.ReportError(r, diag.EngDependencyCycle, name, g.Spans[int(id)], msg)
			for _, dep := range comp {
				if slices.Contains(g.Edges[int(dep)], id) {
					b.WithNote(source.Span{}, "reads "+idx.IDToKey[int(dep)].String())
				}
			}
			b.Emit()
		}
	}
}
