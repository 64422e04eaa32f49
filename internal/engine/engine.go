// Package engine recalculates a workbook: it parses every cell, orders
// formula cells by their dependencies and evaluates independent cells in
// parallel.
package engine

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"sheetcalc/internal/dag"
	"sheetcalc/internal/diag"
	"sheetcalc/internal/eval"
	"sheetcalc/internal/expr"
	"sheetcalc/internal/reference"
	"sheetcalc/internal/source"
	"sheetcalc/internal/store"
	"sheetcalc/internal/trace"
	"sheetcalc/internal/value"
)

// Workbook is the store a recalculation reads from and writes to.
type Workbook interface {
	store.Reader
	Cells() []store.Cell
	SetValue(ref reference.CellReference, v any) bool
}

type Options struct {
	// Jobs bounds concurrent cell evaluations; <= 0 uses GOMAXPROCS.
	Jobs           int
	MaxDiagnostics int
	Functions      eval.FunctionProvider
	Progress       ProgressSink
}

// CellResult is the outcome of one cell.
type CellResult struct {
	Cell  reference.CellReference
	Input string
	Value any
}

type Result struct {
	Cells   []CellResult // row-major
	Bag     *diag.Bag
	Batches int
	Cycles  []reference.CellReference
}

// compiled is a cell ready for evaluation.
type compiled struct {
	cell  store.Cell
	expr  expr.Expression // nil for constants and failed input
	value any             // result when expr is nil
	span  source.Span
}

// Recalculate evaluates every cell of wb and stores the results. Cells in a
// dependency cycle get #CYCLE!; input that does not parse gets #VALUE! and
// an error diagnostic. The returned error is non-nil only when ctx is
// canceled.
func Recalculate(ctx context.Context, wb Workbook, environment eval.Environment, opts Options) (*Result, error) {
	tracer := trace.FromContext(ctx)
	root, ctx := trace.Start(ctx, trace.ScopeEngine, "recalc")
	defer root.End("")

	sink := opts.Progress
	if sink == nil {
		sink = nopSink{}
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	bag := diag.NewBag(opts.MaxDiagnostics)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	base := eval.New(wb, environment, opts.Functions)

	cells := wb.Cells()
	units := make([]compiled, len(cells))
	nodes := make([]dag.Node, len(cells))
	for _, c := range cells {
		sink.OnEvent(Event{Cell: c.Reference.String(), Stage: StageParse, Status: StatusQueued})
	}

	parseSpan := trace.Begin(tracer, trace.ScopeBatch, "parse", root.ID())
	for i, c := range cells {
		units[i] = compile(base, c, reporter)
		nodes[i] = dag.Node{Cell: c.Reference, Span: units[i].span}
		if units[i].expr != nil {
			nodes[i].Deps = dependencies(units[i].expr, wb)
		}
	}
	parseSpan.End(fmt.Sprintf("%d cells", len(cells)))

	idx := dag.BuildIndex(nodes)
	graph := dag.BuildGraph(idx, nodes, reporter)
	topo := dag.ToposortKahn(graph)
	dag.ReportCycles(idx, graph, topo, reporter)

	byKey := make(map[reference.CellReference]int, len(units))
	for i := range units {
		byKey[units[i].cell.Reference.Key()] = i
	}

	result := &Result{Bag: bag, Batches: len(topo.Batches)}
	for _, id := range topo.Cycles {
		ref := idx.IDToKey[int(id)]
		result.Cycles = append(result.Cycles, ref)
		v := value.NewError(value.ErrorCycle, "dependency cycle at "+ref.String())
		wb.SetValue(ref, v)
		sink.OnEvent(Event{Cell: ref.String(), Stage: StageEvaluate, Status: StatusError, Err: fmt.Errorf("dependency cycle")})
	}

	for n, batch := range topo.Batches {
		if err := ctx.Err(); err != nil {
			reporter.Report(diag.NewError(diag.EngCanceled, "workbook", source.Span{}, err.Error()))
			return result, fmt.Errorf("recalculation canceled: %w", err)
		}
		if err := runBatch(ctx, base, wb, units, idx, batch, byKey, jobs, n, root.ID(), reporter, sink); err != nil {
			reporter.Report(diag.NewError(diag.EngCanceled, "workbook", source.Span{}, err.Error()))
			return result, fmt.Errorf("recalculation canceled: %w", err)
		}
	}

	for _, c := range wb.Cells() {
		result.Cells = append(result.Cells, CellResult{Cell: c.Reference, Input: c.Formula, Value: c.Value})
	}
	bag.Sort()
	root.With("cells", fmt.Sprint(len(cells))).With("batches", fmt.Sprint(len(topo.Batches))).With("duplicates", fmt.Sprint(reporter.Suppressed()))
	return result, nil
}

// compile parses and lowers the input of c. Cells holding a value without
// input are constants.
func compile(base *eval.Context, c store.Cell, r diag.Reporter) compiled {
	out := compiled{cell: c}
	if c.Formula == "" && c.HasValue {
		out.value = c.Value
		return out
	}
	subject := c.Reference.String()
	out.span = source.NewSpan(0, len(c.Formula))
	tok, err := base.Parse(c.Formula)
	if err == nil {
		var ok bool
		out.expr, ok, err = base.Lower(tok)
		if err == nil && !ok {
			out.expr = nil
		}
	}
	if err != nil {
		d := Diagnose(subject, err)
		if d.Primary.Empty() {
			d.Primary = out.span
		}
		r.Report(d)
		out.expr = nil
		out.value = value.NewError(value.ErrorValue, err.Error())
	}
	return out
}

type outcome struct {
	ref   reference.CellReference
	value any
	err   error
}

// runBatch evaluates one batch concurrently. Each worker gets its own
// evaluation context; results are written after the batch completes so the
// store only changes between batches.
func runBatch(ctx context.Context, base *eval.Context, wb Workbook, units []compiled, idx dag.Index, batch []dag.NodeID, byKey map[reference.CellReference]int, jobs, n int, parent uint64, r diag.Reporter, sink ProgressSink) error {
	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeBatch, fmt.Sprintf("batch:%d", n), parent)
	defer span.End(fmt.Sprintf("%d cells", len(batch)))

	results := make([]outcome, len(batch))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(batch))))
	for i, id := range batch {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			ref := idx.IDToKey[int(id)]
			u := units[byKey[ref]]
			name := ref.String()
			start := time.Now()
			sink.OnEvent(Event{Cell: name, Stage: StageEvaluate, Status: StatusWorking})
			cellSpan := trace.BeginCell(tracer, name, span.ID())

			out := outcome{ref: ref, value: u.value}
			if u.expr != nil {
				worker := base.WithTracer(tracer, cellSpan.ID())
				out.value, out.err = worker.EvaluateExpression(u.expr)
			}
			if out.err != nil {
				cellSpan.Fail(out.err)
			} else {
				cellSpan.End(value.ToText(out.value))
			}

			status := StatusDone
			if out.err != nil {
				status = StatusError
			}
			sink.OnEvent(Event{Cell: name, Stage: StageEvaluate, Status: status, Err: out.err, Elapsed: time.Since(start)})
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, out := range results {
		u := units[byKey[out.ref]]
		subject := out.ref.String()
		v := out.value
		switch {
		case out.err != nil:
			d := Diagnose(subject, out.err)
			d.Primary = u.span
			r.Report(d)
			v = value.NewError(value.ErrorValue, out.err.Error())
		case u.expr != nil:
			if e, isErr := v.(value.Error); isErr {
				b := diag.ReportWarning(r, diag.EvalErrorValue, subject, u.span, fmt.Sprintf("%s evaluates to %s", subject, e))
				if e.Message != "" {
					b.WithNote(u.span, e.Message)
				}
				b.Emit()
			}
		}
		wb.SetValue(out.ref, v)
	}
	return nil
}
