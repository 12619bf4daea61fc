package controllers

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"chanmacro/core"
)

// Dispatcher is the slice of input.Dispatcher the sequence needs.
type Dispatcher interface {
	RunSync(fn func())
}

// DetectionSequence drives the macro from packet events. One session at a
// time: Start spawns a worker that resets the macro, runs step one, and
// waits for the detection outcome. A new channel fires step two and ends
// the session; a repeated channel opens a short rolling watch window in
// case a new one arrives right behind it; silence retries from the top.
//
// Events arrive from the packet pipeline via NotifyChannelFound and are
// ignored whenever no session is active, so stale detections can never
// trigger clicks.
type DetectionSequence struct {
	macro      *MacroController
	queue      *core.EventQueue
	dispatcher Dispatcher

	timeoutMS func() int
	watchMS   func() int

	status  func(string)
	refresh func()

	mu      sync.Mutex
	running bool
	stop    chan struct{}
}

// NewDetectionSequence wires the sequence. timeoutMS bounds the wait for
// the first event after step one; watchMS sizes the rolling window after a
// repeated channel (zero or negative skips the window). refresh is called
// exactly once per session end, on the dispatcher thread.
func NewDetectionSequence(macro *MacroController, queue *core.EventQueue, dispatcher Dispatcher, timeoutMS, watchMS func() int, status func(string), refresh func()) *DetectionSequence {
	if status == nil {
		status = func(string) {}
	}
	if refresh == nil {
		refresh = func() {}
	}
	return &DetectionSequence{
		macro:      macro,
		queue:      queue,
		dispatcher: dispatcher,
		timeoutMS:  timeoutMS,
		watchMS:    watchMS,
		status:     status,
		refresh:    refresh,
	}
}

// Running reports whether a session is active.
func (d *DetectionSequence) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

// Start begins a session. A second Start while one is active is refused
// with a status notice.
func (d *DetectionSequence) Start(newline bool) bool {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		d.status("channel sequence already running")
		return false
	}
	d.running = true
	stop := make(chan struct{})
	d.stop = stop
	d.mu.Unlock()

	log.Info().Bool("newline", newline).Msg("channel sequence started")
	go d.run(newline, stop)
	return true
}

// Stop cancels the active session, if any, and discards queued events.
func (d *DetectionSequence) Stop() {
	d.mu.Lock()
	if d.running && d.stop != nil {
		close(d.stop)
		d.stop = nil
	}
	d.mu.Unlock()
	d.queue.Drain()
}

// NotifyChannelFound feeds a detection outcome into the active session.
// Without a session the event is dropped.
func (d *DetectionSequence) NotifyChannelFound(at time.Time, isNew bool) {
	d.mu.Lock()
	running := d.running
	d.mu.Unlock()
	if !running {
		return
	}
	if !d.queue.Put(core.DetectionEvent{At: at, IsNew: isNew}) {
		log.Warn().Msg("detection event dropped, queue full")
	}
}

func (d *DetectionSequence) run(newline bool, stop chan struct{}) {
	defer d.finish(stop)

	for attempt := 1; ; attempt++ {
		select {
		case <-stop:
			return
		default:
		}

		d.status("switching channel...")
		d.queue.Drain()
		var stepErr error
		d.dispatcher.RunSync(func() {
			stepErr = d.macro.ResetAndRunFirst(newline)
		})
		if stepErr != nil {
			return
		}

		ev, ok := d.queue.Get(core.MS(d.timeoutMS()), stop)
		if !ok {
			if isClosed(stop) {
				return
			}
			d.status("no channel packet, retrying")
			log.Debug().Int("attempt", attempt).Msg("channel detection timed out, retrying")
			continue
		}
		if ev.IsNew {
			d.finishOnNew(newline)
			return
		}

		// A repeated channel may be immediately followed by the real new
		// one. Watch a short sliding window before giving up on this
		// attempt; every further event pushes the deadline out again.
		watch := core.MS(d.watchMS())
		if watch <= 0 {
			continue
		}
		deadline := ev.At.Add(watch)
		for {
			remain := time.Until(deadline)
			if remain <= 0 {
				break
			}
			ev, ok = d.queue.Get(remain, stop)
			if !ok {
				if isClosed(stop) {
					return
				}
				break
			}
			if ev.IsNew {
				d.finishOnNew(newline)
				return
			}
			deadline = ev.At.Add(watch)
		}
	}
}

func (d *DetectionSequence) finishOnNew(newline bool) {
	d.status("new channel found")
	d.dispatcher.RunSync(func() {
		if err := d.macro.RunStep(newline); err != nil {
			log.Error().Err(err).Msg("closing macro step failed")
		}
	})
}

func isClosed(stop <-chan struct{}) bool {
	select {
	case <-stop:
		return true
	default:
		return false
	}
}

// finish clears the running flag, but only if the session that is ending
// still owns it. The status refresh runs once, on the dispatcher thread.
func (d *DetectionSequence) finish(stop chan struct{}) {
	d.mu.Lock()
	owns := d.stop == stop || d.stop == nil
	if owns {
		d.running = false
		d.stop = nil
	}
	d.mu.Unlock()
	if owns {
		log.Info().Msg("channel sequence finished")
		d.dispatcher.RunSync(d.refresh)
	}
}
