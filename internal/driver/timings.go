package driver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"sheetcalc/internal/diag"
	"sheetcalc/internal/observ"
	"sheetcalc/internal/source"
	"sheetcalc/internal/trace"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// PhaseEvent reports a Recalc phase boundary. Done is false when the phase
// starts; a finished phase carries its duration and error.
type PhaseEvent struct {
	Name    string
	Done    bool
	Elapsed time.Duration
	Err     error
}

// PhaseObserver receives phase events emitted during Recalc.
type PhaseObserver func(PhaseEvent)

// phases times each Recalc phase, traces it and forwards its boundaries to
// the observer.
type phases struct {
	timer    *observ.Timer
	observer PhaseObserver
}

func (p phases) run(ctx context.Context, name string, fn func(context.Context) error) error {
	p.notify(PhaseEvent{Name: name})
	span, ctx := trace.Start(ctx, trace.ScopeBatch, "phase:"+name)
	start := time.Now()
	err := p.timer.Measure(name, func() error { return fn(ctx) })
	span.Fail(err)
	p.notify(PhaseEvent{Name: name, Done: true, Elapsed: time.Since(start), Err: err})
	return err
}

func (p phases) notify(ev PhaseEvent) {
	if p.observer != nil {
		p.observer(ev)
	}
}

func appendTimingDiagnostic(bag *diag.Bag, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "recalc"
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)
	if payload.Path != "" {
		msg = fmt.Sprintf("%s: %s", msg, payload.Path)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	d := diag.New(diag.SevInfo, diag.EngInfo, "workbook", source.Span{}, msg).
		WithNote(source.Span{}, string(data))

	if bag.Add(d) {
		return
	}
	overflow := diag.NewBag(bag.Len() + 1)
	overflow.Add(d)
	bag.Merge(overflow)
}
