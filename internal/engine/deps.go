package engine

import (
	"strings"

	"sheetcalc/internal/expr"
	"sheetcalc/internal/reference"
	"sheetcalc/internal/store"
)

// dependencies lists the stored cells e reads, following labels. Label
// loops are cut here and reported as cycles during evaluation.
func dependencies(e expr.Expression, st store.Reader) []reference.CellReference {
	var out []reference.CellReference
	var walk func(e expr.Expression)
	walk = func(e expr.Expression) {
		switch x := e.(type) {
		case expr.RefExpr:
			out = appendTargets(out, x.Ref, st, map[string]bool{})
		case expr.BinaryExpr:
			walk(x.Left)
			walk(x.Right)
		case expr.NegExpr:
			walk(x.X)
		case expr.CallExpr:
			walk(x.Fn)
			for _, a := range x.Args {
				walk(a)
			}
		}
	}
	walk(e)
	return out
}

func appendTargets(out []reference.CellReference, ref reference.ExpressionReference, st store.Reader, seen map[string]bool) []reference.CellReference {
	switch r := ref.(type) {
	case reference.CellReference:
		return append(out, r.Key())
	case reference.CellRange:
		for _, c := range st.LoadCellRange(r) {
			out = append(out, c.Reference.Key())
		}
	case reference.LabelName:
		key := strings.ToUpper(string(r))
		if seen[key] {
			return out
		}
		seen[key] = true
		if m, ok := st.LoadLabel(r); ok {
			return appendTargets(out, m.Target, st, seen)
		}
	}
	return out
}
