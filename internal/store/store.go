// Package store keeps workbook cells and labels.
package store

import (
	"sort"
	"strings"
	"sync"

	"sheetcalc/internal/reference"
)

// Cell is one workbook cell. Formula holds the user input: a formula
// starting with '=' or literal text. Value is the last computed value.
type Cell struct {
	Reference reference.CellReference
	Formula   string
	Value     any
	HasValue  bool
}

// IsFormula reports whether the cell input is a formula.
func (c Cell) IsFormula() bool { return strings.HasPrefix(strings.TrimSpace(c.Formula), "=") }

// LabelMapping names a cell, a range or another label.
type LabelMapping struct {
	Label  reference.LabelName
	Target reference.ExpressionReference
}

// Reader is the read side the evaluator depends on. Implementations must
// be safe for concurrent reads.
type Reader interface {
	LoadCell(ref reference.CellReference) (Cell, bool)
	LoadLabel(name reference.LabelName) (LabelMapping, bool)
	// LoadCellRange returns the existing cells inside r in no particular
	// order.
	LoadCellRange(r reference.CellRange) []Cell
}

// Memory is an in-memory Reader guarded by a RWMutex.
type Memory struct {
	mu     sync.RWMutex
	cells  map[reference.CellReference]Cell
	labels map[string]LabelMapping
}

func NewMemory() *Memory {
	return &Memory{
		cells:  make(map[reference.CellReference]Cell),
		labels: make(map[string]LabelMapping),
	}
}

func labelKey(name reference.LabelName) string { return strings.ToUpper(string(name)) }

func (m *Memory) LoadCell(ref reference.CellReference) (Cell, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.cells[ref.Key()]
	return c, ok
}

func (m *Memory) LoadLabel(name reference.LabelName) (LabelMapping, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.labels[labelKey(name)]
	return l, ok
}

func (m *Memory) LoadCellRange(r reference.CellRange) []Cell {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Cell
	if r.Count() <= len(m.cells) {
		for _, ref := range r.Cells() {
			if c, ok := m.cells[ref.Key()]; ok {
				out = append(out, c)
			}
		}
		return out
	}
	for _, c := range m.cells {
		if r.Contains(c.Reference) {
			out = append(out, c)
		}
	}
	return out
}

// SaveCell stores c, replacing any cell at the same position.
func (m *Memory) SaveCell(c Cell) {
	c.Reference = c.Reference.Key()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cells[c.Reference] = c
}

// SetValue records a computed value for an existing cell. It reports
// false when there is no such cell.
func (m *Memory) SetValue(ref reference.CellReference, v any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cells[ref.Key()]
	if !ok {
		return false
	}
	c.Value, c.HasValue = v, true
	m.cells[ref.Key()] = c
	return true
}

func (m *Memory) SaveLabel(l LabelMapping) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.labels[labelKey(l.Label)] = l
}

// Cells returns every cell in row-major order.
func (m *Memory) Cells() []Cell {
	m.mu.RLock()
	out := make([]Cell, 0, len(m.cells))
	for _, c := range m.cells {
		out = append(out, c)
	}
	m.mu.RUnlock()
	SortCells(out)
	return out
}

// Labels returns every label sorted by name.
func (m *Memory) Labels() []LabelMapping {
	m.mu.RLock()
	out := make([]LabelMapping, 0, len(m.labels))
	for _, l := range m.labels {
		out = append(out, l)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return labelKey(out[i].Label) < labelKey(out[j].Label) })
	return out
}

// SortCells orders cells top row first, left to right.
func SortCells(cells []Cell) {
	sort.Slice(cells, func(i, j int) bool {
		a, b := cells[i].Reference, cells[j].Reference
		if a.Row.Index != b.Row.Index {
			return a.Row.Index < b.Row.Index
		}
		return a.Column.Index < b.Column.Index
	})
}
