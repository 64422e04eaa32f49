package observ

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Phase is one measured step of a command, such as loading a workbook or
// recalculating it.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Err   error
}

// Timer records the phases of one command in the order they ran. It is
// safe for concurrent use.
type Timer struct {
	mu     sync.Mutex
	origin time.Time
	phases []Phase
}

// NewTimer creates a Timer whose total is measured from now.
func NewTimer() *Timer {
	return &Timer{origin: time.Now(), phases: make([]Phase, 0, 4)}
}

// Measure runs fn as a phase named name and returns its error.
func (t *Timer) Measure(name string, fn func() error) error {
	start := time.Now()
	err := fn()
	t.mu.Lock()
	t.phases = append(t.phases, Phase{Name: name, Start: start, Dur: time.Since(start), Err: err})
	t.mu.Unlock()
	return err
}

// PhaseReport — фаза в виде, пригодном для JSON.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Error      string  `json:"error,omitempty"`
}

// Report — сводка таймера. TotalMS считается от создания таймера, поэтому
// включает и время между фазами.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report snapshots the phases recorded so far.
func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	end := t.origin
	for i, p := range t.phases {
		report.Phases[i] = PhaseReport{Name: p.Name, DurationMS: millis(p.Dur)}
		if p.Err != nil {
			report.Phases[i].Error = p.Err.Error()
		}
		if e := p.Start.Add(p.Dur); e.After(end) {
			end = e
		}
	}
	report.TotalMS = millis(end.Sub(t.origin))
	return report
}

// WriteTo prints one line per phase followed by the total.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, p := range r.Phases {
		line := fmt.Sprintf("%-8s %8.2f ms", p.Name, p.DurationMS)
		if p.Error != "" {
			line += "  failed: " + p.Error
		}
		k, err := fmt.Fprintln(w, line)
		n += int64(k)
		if err != nil {
			return n, err
		}
	}
	k, err := fmt.Fprintf(w, "%-8s %8.2f ms\n", "total", r.TotalMS)
	return n + int64(k), err
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
