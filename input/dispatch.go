package input

import (
	"runtime"
	"sync"

	"github.com/rs/zerolog/log"
)

// Dispatcher funnels all actuator work onto a single goroutine pinned to
// one OS thread. Input synthesis APIs on every platform want a consistent
// thread, and serializing through one worker also guarantees that macro
// steps from different controllers never interleave mid-click.
type Dispatcher struct {
	jobs chan job

	closeOnce sync.Once
	closed    chan struct{}
}

type job struct {
	fn   func()
	done chan struct{}
}

// NewDispatcher starts the worker goroutine.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		jobs:   make(chan job),
		closed: make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	for {
		select {
		case j := <-d.jobs:
			d.run(j)
		case <-d.closed:
			return
		}
	}
}

func (d *Dispatcher) run(j job) {
	defer close(j.done)
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("dispatched job panicked")
		}
	}()
	j.fn()
}

// RunSync executes fn on the dispatcher thread and blocks until it
// returns. After Close, fn is dropped and RunSync returns immediately.
func (d *Dispatcher) RunSync(fn func()) {
	j := job{fn: fn, done: make(chan struct{})}
	select {
	case d.jobs <- j:
		<-j.done
	case <-d.closed:
	}
}

// Close stops the worker. Jobs submitted afterwards are discarded.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.closed) })
}
