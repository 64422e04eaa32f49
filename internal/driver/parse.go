package driver

import (
	"sheetcalc/internal/diag"
	"sheetcalc/internal/engine"
	"sheetcalc/internal/env"
	"sheetcalc/internal/eval"
	"sheetcalc/internal/expr"
	"sheetcalc/internal/function"
	"sheetcalc/internal/source"
	"sheetcalc/internal/store"
	"sheetcalc/internal/token"
)

type ParseResult struct {
	Formula string
	Token   token.Token
	// Expr is nil when the input is empty or did not lower.
	Expr expr.Expression
	Bag  *diag.Bag
}

// Parse parses formula (or literal input) and lowers it. Errors become
// diagnostics; the returned error is reserved for misuse.
func Parse(formula string, environment *env.Environment, maxDiagnostics int) *ParseResult {
	if environment == nil {
		environment = env.Default()
	}
	res := &ParseResult{Formula: formula, Bag: diag.NewBag(maxDiagnostics)}
	ctx := eval.New(store.NewMemory(), environment, function.Builtins())

	tok, err := ctx.Parse(formula)
	if err != nil {
		res.Bag.Add(diagnose(formula, err))
		return res
	}
	res.Token = tok
	e, ok, err := ctx.Lower(tok)
	if err != nil {
		res.Bag.Add(diagnose(formula, err))
		return res
	}
	if ok {
		res.Expr = e
	}
	return res
}

func diagnose(formula string, err error) diag.Diagnostic {
	d := engine.Diagnose(Subject, err)
	if d.Primary.Empty() {
		d.Primary = source.NewSpan(0, len(formula))
	}
	return d
}
