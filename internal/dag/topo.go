package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []NodeID   // линейный порядок вычисления (без ячеек цикла)
	Batches [][]NodeID // волны независимых ячеек
	Cyclic  bool
	Cycles  []NodeID // ячейки, лежащие на цикле
	// Components splits Cycles into independent cycles, each sorted,
	// ordered by their first member.
	Components [][]NodeID
}

func nodeID(i int) NodeID {
	id, err := safecast.Conv[NodeID](i)
	if err != nil {
		panic(fmt.Errorf("node id overflow: %w", err))
	}
	return id
}

// ToposortKahn orders present nodes in batches whose members do not
// depend on each other. Nodes on a cycle are listed in Cycles; nodes that
// only depend on a cycle are still ordered, after the cycle is treated as
// resolved.
func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := make([]int, len(g.Indeg))
	copy(indeg, g.Indeg)

	topo := &Topo{
		Order:   make([]NodeID, 0, nodeCount),
		Batches: make([][]NodeID, 0),
	}

	active := 0
	current := make([]NodeID, 0, nodeCount)
	for i := range nodeCount {
		if !g.Present[i] {
			continue
		}
		active++
		if indeg[i] == 0 {
			current = append(current, nodeID(i))
		}
	}

	visited := topo.drain(g, indeg, current)
	if visited == active {
		return topo
	}

	topo.Cyclic = true
	topo.Cycles, topo.Components = cycleMembers(g, indeg)
	onCycle := make(map[NodeID]bool, len(topo.Cycles))
	for _, id := range topo.Cycles {
		onCycle[id] = true
	}
	// Ячейки цикла считаются вычисленными; продолжаем с зависящими от них.
	next := make([]NodeID, 0)
	for _, id := range topo.Cycles {
		for _, to := range g.Edges[int(id)] {
			if onCycle[to] {
				continue
			}
			indeg[int(to)]--
			if indeg[int(to)] == 0 {
				next = append(next, to)
			}
		}
	}
	topo.drain(g, indeg, next)
	return topo
}

// drain runs Kahn batches starting from current and returns how many
// nodes it ordered.
func (t *Topo) drain(g Graph, indeg []int, current []NodeID) int {
	slices.Sort(current)
	visited := 0
	for len(current) > 0 {
		batch := make([]NodeID, len(current))
		copy(batch, current)
		t.Batches = append(t.Batches, batch)

		next := make([]NodeID, 0)
		for _, id := range batch {
			t.Order = append(t.Order, id)
			visited++
			for _, to := range g.Edges[int(id)] {
				if !g.Present[int(to)] {
					continue
				}
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}
	return visited
}

// cycleMembers finds the nodes left by Kahn that lie on a cycle, using
// Tarjan's strongly connected components over the leftover subgraph. It
// returns all members and the cyclic components separately.
func cycleMembers(g Graph, indeg []int) ([]NodeID, [][]NodeID) {
	n := len(g.Edges)
	stuck := func(i int) bool { return g.Present[i] && indeg[i] > 0 }

	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var stack []int
	var members []NodeID
	var comps [][]NodeID
	counter := 0

	var visit func(v int)
	visit = func(v int) {
		index[v], low[v] = counter, counter
		counter++
		stack = append(stack, v)
		onStack[v] = true
		selfLoop := false
		for _, to := range g.Edges[v] {
			w := int(to)
			if !stuck(w) {
				continue
			}
			if w == v {
				selfLoop = true
			}
			if index[w] < 0 {
				visit(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}
		if low[v] != index[v] {
			return
		}
		var comp []int
		for {
			w := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		if len(comp) > 1 || selfLoop {
			ids := make([]NodeID, 0, len(comp))
			for _, w := range comp {
				ids = append(ids, nodeID(w))
			}
			slices.Sort(ids)
			members = append(members, ids...)
			comps = append(comps, ids)
		}
	}
	for i := range n {
		if stuck(i) && index[i] < 0 {
			visit(i)
		}
	}
	slices.Sort(members)
	slices.SortFunc(comps, func(a, b []NodeID) int { return int(a[0]) - int(b[0]) })
	return members, comps
}
