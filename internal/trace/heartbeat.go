package trace

import (
	"context"
	"runtime"
	"strconv"
	"time"
)

// Probe samples attributes attached to each heartbeat.
type Probe func() []Attr

// RuntimeProbe reports the goroutine count and live heap size. A stuck
// recalculation shows heartbeats with a steady goroutine count and no cell
// span ends in between.
func RuntimeProbe() []Attr {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return []Attr{
		{Key: "goroutines", Value: strconv.Itoa(runtime.NumGoroutine())},
		{Key: "heap_kib", Value: strconv.FormatUint(ms.HeapAlloc/1024, 10)},
	}
}

// Heartbeat emits KindHeartbeat events until stopped.
type Heartbeat struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// StartHeartbeat starts emitting to t every interval. It returns nil when
// tracing is off or interval is not positive. probe may be nil.
func StartHeartbeat(t Tracer, interval time.Duration, probe Probe) *Heartbeat {
	if !Enabled(t) || interval <= 0 {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	h := &Heartbeat{cancel: cancel, done: make(chan struct{})}
	go h.run(ctx, t, interval, probe)
	return h
}

func (h *Heartbeat) run(ctx context.Context, t Tracer, interval time.Duration, probe Probe) {
	defer close(h.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for beat := 1; ; beat++ {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			ev := &Event{
				Time:   now,
				Kind:   KindHeartbeat,
				Scope:  ScopeEngine,
				Name:   "heartbeat",
				Detail: "#" + strconv.Itoa(beat),
			}
			if probe != nil {
				ev.Attrs = probe()
			}
			t.Emit(ev)
		}
	}
}

// Stop ends the heartbeat and waits for the last event. Safe to call twice.
func (h *Heartbeat) Stop() {
	if h == nil {
		return
	}
	h.cancel()
	<-h.done
}
