// Package trace records what the recalculation engine and the evaluation
// context are doing, to diagnose slow workbooks and reference chains.
//
// # Usage
//
//	sheetcalc recalc --trace=- --trace-level=detail book.toml
//
// # Tracers
//
//   - Nop: no-op tracer used when tracing is off
//   - StreamTracer: writes each event to a file or stderr
//   - RingTracer: keeps the last events in memory and counts failures
//   - MultiTracer: fans out to several tracers
//
// # Levels and scopes
//
// Events carry a scope: ScopeEngine for a whole recalculation, ScopeBatch
// for one topological batch, ScopeCell for a single cell and ScopeReference
// for every reference hop taken while resolving a formula. LevelPhase
// emits engine and batch events, LevelDetail adds cells and LevelDebug
// adds reference hops. LevelError emits only failed spans, whatever their
// scope.
//
// # Context propagation
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span, ctx := trace.Start(ctx, trace.ScopeEngine, "recalc")
//	defer span.End("")
package trace
