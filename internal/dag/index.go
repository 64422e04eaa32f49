// Package dag orders formula cells so that every cell is evaluated after
// the cells it reads.
package dag

import (
	"sheetcalc/internal/reference"
	"sheetcalc/internal/store"
)

type NodeID uint32

type Index struct {
	KeyToID map[reference.CellReference]NodeID
	IDToKey []reference.CellReference
}

// собрать уникальные ячейки (узлы и их зависимости), отсортировать
// построчно, раздать ID по порядку
func BuildIndex(nodes []Node) Index {
	uniq := make(map[reference.CellReference]struct{}, len(nodes))
	for _, n := range nodes {
		uniq[n.Cell.Key()] = struct{}{}
		for _, dep := range n.Deps {
			uniq[dep.Key()] = struct{}{}
		}
	}

	cells := make([]store.Cell, 0, len(uniq))
	for ref := range uniq {
		cells = append(cells, store.Cell{Reference: ref})
	}
	store.SortCells(cells)

	keyToID := make(map[reference.CellReference]NodeID, len(cells))
	idToKey := make([]reference.CellReference, len(cells))
	for i, c := range cells {
		keyToID[c.Reference] = NodeID(i)
		idToKey[i] = c.Reference
	}
	return Index{KeyToID: keyToID, IDToKey: idToKey}
}

// Names renders ids as cell names.
func (idx Index) Names(ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToKey[int(id)].String()
	}
	return out
}
