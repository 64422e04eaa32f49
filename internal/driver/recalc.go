package driver

import (
	"context"
	"errors"
	"fmt"

	"sheetcalc/internal/diag"
	"sheetcalc/internal/engine"
	"sheetcalc/internal/env"
	"sheetcalc/internal/eval"
	"sheetcalc/internal/function"
	"sheetcalc/internal/observ"
	"sheetcalc/internal/source"
	"sheetcalc/internal/store"
	"sheetcalc/internal/trace"
	"sheetcalc/internal/value"
)

// RecalcRequest describes one workbook recalculation.
type RecalcRequest struct {
	// WorkbookPath is a workbook TOML file, or a snapshot when Snapshot is set.
	WorkbookPath string
	Snapshot     bool
	// SavePath, when set, receives a snapshot of the recalculated store.
	SavePath       string
	Env            *env.Environment
	Jobs           int
	MaxDiagnostics int
	Progress       engine.ProgressSink
	Observer       PhaseObserver
	// Timings adds an EngInfo diagnostic with phase durations.
	Timings bool
}

type RecalcResult struct {
	Store  *store.Memory
	Result *engine.Result
	Bag    *diag.Bag
	Timing observ.Report
}

// Recalc loads a workbook, recalculates it and optionally saves a snapshot.
// Load and save failures are reported as diagnostics and returned.
func Recalc(ctx context.Context, req RecalcRequest) (*RecalcResult, error) {
	environment := req.Env
	if environment == nil {
		environment = env.Default()
	}
	res := &RecalcResult{Bag: diag.NewBag(req.MaxDiagnostics)}

	span, ctx := trace.Start(ctx, trace.ScopeEngine, "driver.recalc")
	defer span.End(req.WorkbookPath)

	ph := phases{timer: observ.NewTimer(), observer: req.Observer}

	err := ph.run(ctx, "load", func(context.Context) error {
		var err error
		if req.Snapshot {
			res.Store, err = store.LoadSnapshot(req.WorkbookPath)
		} else {
			res.Store, err = store.LoadWorkbook(req.WorkbookPath)
		}
		return err
	})
	if err != nil {
		code := diag.EngWorkbook
		if req.Snapshot {
			code = diag.EngSnapshot
		}
		res.Bag.Add(diag.NewError(code, req.WorkbookPath, source.Span{}, err.Error()))
		return res, err
	}

	err = ph.run(ctx, "recalc", func(ctx context.Context) error {
		var err error
		res.Result, err = engine.Recalculate(ctx, res.Store, environment, engine.Options{
			Jobs:           req.Jobs,
			MaxDiagnostics: req.MaxDiagnostics,
			Functions:      function.Builtins(),
			Progress:       req.Progress,
		})
		return err
	})
	if res.Result != nil {
		res.Bag.Merge(res.Result.Bag)
	}
	if err != nil {
		return res, err
	}

	if req.SavePath != "" {
		err = ph.run(ctx, "save", func(context.Context) error { return store.SaveSnapshot(req.SavePath, res.Store) })
		if err != nil {
			res.Bag.Add(diag.NewError(diag.EngSnapshot, req.SavePath, source.Span{}, err.Error()))
			return res, err
		}
	}

	res.Timing = ph.timer.Report()
	if req.Timings {
		appendTimingDiagnostic(res.Bag, timingPayload{
			Path:    req.WorkbookPath,
			TotalMS: res.Timing.TotalMS,
			Phases:  res.Timing.Phases,
		})
	}
	return res, nil
}

// EvalResult is the value of a formula evaluated against a workbook.
type EvalResult struct {
	Parse *ParseResult
	Value any
	Bag   *diag.Bag
}

// Evaluate parses formula and evaluates it against st, which should already
// be recalculated. A nil store evaluates against an empty workbook.
// Input that does not parse yields a nil Value and error diagnostics; an
// error value result is reported as a warning.
func Evaluate(formula string, st *store.Memory, environment *env.Environment, maxDiagnostics int) (*EvalResult, error) {
	if environment == nil {
		environment = env.Default()
	}
	if st == nil {
		st = store.NewMemory()
	}
	parsed := Parse(formula, environment, maxDiagnostics)
	res := &EvalResult{Parse: parsed, Bag: parsed.Bag}
	if parsed.Bag.HasErrors() || parsed.Expr == nil {
		return res, nil
	}
	ctx := eval.New(st, environment, function.Builtins())
	v, err := ctx.EvaluateExpression(parsed.Expr)
	if err != nil {
		return res, fmt.Errorf("evaluate %s: %w", formula, err)
	}
	if ev, ok := v.(value.Error); ok {
		msg := "result is " + ev.String()
		if ev.Message != "" {
			msg += ": " + ev.Message
		}
		res.Bag.Add(diag.New(diag.SevWarning, diag.EvalErrorValue, Subject, source.NewSpan(0, len(formula)), msg))
	}
	res.Value = v
	return res, nil
}

// IsCanceled reports whether err came from a canceled recalculation.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
