package eval

import (
	"errors"
	"fmt"
	"strings"

	"sheetcalc/internal/expr"
	"sheetcalc/internal/reference"
	"sheetcalc/internal/trace"
)

// ErrCycle reports a reference that resolves back to itself.
var ErrCycle = errors.New("reference cycle")

// Reference resolves ref, following label targets and values that are
// themselves references. ok is false for an unknown reference; a known
// reference without a value, such as an absent cell, yields a Binding
// that is not Present.
func (c *Context) Reference(ref reference.ExpressionReference) (b expr.Binding, ok bool, err error) {
	var visited []reference.ExpressionReference
	candidate := ref
	for {
		key := referenceKey(candidate)
		for _, seen := range visited {
			if seen == key {
				return expr.Binding{}, false, fmt.Errorf("%w: %s reaches %s again (%s)", ErrCycle, ref, candidate, chain(visited, candidate))
			}
		}
		visited = append(visited, key)

		b, ok, err = c.hop(candidate)
		if err != nil {
			return expr.Binding{}, false, err
		}
		if !ok || !b.Present {
			return b, ok, nil
		}
		next, isRef := b.Value.(reference.ExpressionReference)
		if !isRef {
			return b, true, nil
		}
		candidate = next
	}
}

// hop resolves one reference without following the result.
func (c *Context) hop(ref reference.ExpressionReference) (b expr.Binding, ok bool, err error) {
	span := trace.Begin(c.tracer, trace.ScopeReference, "ref:"+ref.String(), c.span)
	defer func() {
		detail := "unknown"
		switch {
		case err != nil:
			span.Fail(err)
			return
		case ok && !b.Present:
			detail = "empty"
		case ok:
			detail = "value"
		}
		span.End(detail)
	}()

	switch r := ref.(type) {
	case reference.CellReference:
		cell, found := c.store.LoadCell(r)
		if !found || !cell.HasValue {
			return expr.Binding{}, true, nil
		}
		return expr.Binding{Value: cell.Value, Present: true}, true, nil
	case reference.CellRange:
		if err := r.Check(); err != nil {
			return expr.Binding{}, false, err
		}
		values := make([]any, r.Count())
		for _, cell := range c.store.LoadCellRange(r) {
			if !cell.HasValue {
				continue
			}
			if i := r.Index(cell.Reference); i >= 0 {
				values[i] = cell.Value
			}
		}
		return expr.Binding{Value: values, Present: true}, true, nil
	case reference.LabelName:
		mapping, found := c.store.LoadLabel(r)
		if !found {
			return expr.Binding{}, false, nil
		}
		return expr.Binding{Value: mapping.Target, Present: true}, true, nil
	case reference.EnvironmentValueName:
		if v, found := c.locals[localKey(r)]; found {
			return expr.Binding{Value: v, Present: true}, true, nil
		}
		v, found := c.env.EnvironmentValue(r)
		if !found {
			return expr.Binding{}, false, nil
		}
		return expr.Binding{Value: v, Present: v != nil}, true, nil
	}
	return expr.Binding{}, false, nil
}

// referenceKey normalises ref so that spellings of the same target
// compare equal: absolute markers are dropped and names are upper-cased.
func referenceKey(ref reference.ExpressionReference) reference.ExpressionReference {
	switch r := ref.(type) {
	case reference.CellReference:
		return r.Key()
	case reference.CellRange:
		return reference.NewRange(r.Begin.Key(), r.End.Key())
	case reference.LabelName:
		return reference.LabelName(strings.ToUpper(string(r)))
	case reference.EnvironmentValueName:
		return localKey(r)
	}
	return ref
}

func chain(visited []reference.ExpressionReference, last reference.ExpressionReference) string {
	parts := make([]string, 0, len(visited)+1)
	for _, v := range visited {
		parts = append(parts, v.String())
	}
	parts = append(parts, referenceKey(last).String())
	return strings.Join(parts, " -> ")
}
