package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"sheetcalc/internal/driver"
	"sheetcalc/internal/engine"
	"sheetcalc/internal/ui"
)

type recalcOutcome struct {
	result *driver.RecalcResult
	err    error
}

// runRecalcWithUI runs the recalculation in the background while a progress
// view consumes its events. The view closes when the engine is done.
func runRecalcWithUI(ctx context.Context, title string, req driver.RecalcRequest) (*driver.RecalcResult, error) {
	events := make(chan engine.Event, 256)
	outcomeCh := make(chan recalcOutcome, 1)

	go func() {
		reqCopy := req
		reqCopy.Progress = engine.ChannelSink{Ch: events}
		res, err := driver.Recalc(ctx, reqCopy)
		outcomeCh <- recalcOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, nil, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr))
	_, uiErr := program.Run()
	if uiErr != nil {
		// Незавершённый UI больше не читает события.
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
