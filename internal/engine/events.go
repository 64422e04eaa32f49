package engine

import "time"

// Stage describes a phase of a recalculation.
type Stage string

const (
	// StageParse covers parsing and lowering every cell input.
	StageParse Stage = "parse"
	// StageEvaluate covers evaluating a cell.
	StageEvaluate Stage = "evaluate"
)

// Status captures progress state within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a cell, or for the whole recalculation when
// Cell is empty.
type Event struct {
	Cell    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent is called from worker
// goroutines.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

type nopSink struct{}

func (nopSink) OnEvent(Event) {}
