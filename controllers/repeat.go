package controllers

import (
	"sync"
	"time"

	"chanmacro/core"
	"chanmacro/input"
)

// RepeatingTask runs one action over and over at a fixed interval until
// stopped. It backs the login and character repeat-clickers: hold-to-spam
// behavior without tying up the UI.
type RepeatingTask struct {
	dispatcher Dispatcher
	status     func(string)

	mu      sync.Mutex
	stop    chan struct{}
	running bool
}

// NewRepeatingTask builds an idle task. Actions execute on the dispatcher
// thread; status may be nil.
func NewRepeatingTask(dispatcher Dispatcher, status func(string)) *RepeatingTask {
	if status == nil {
		status = func(string) {}
	}
	return &RepeatingTask{dispatcher: dispatcher, status: status}
}

// Running reports whether the task is active.
func (t *RepeatingTask) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Start begins repeating action every intervalMS() milliseconds. A start
// while already running is ignored. stopMsg is emitted when the task ends,
// however it ends.
func (t *RepeatingTask) Start(action func(), intervalMS func() int, startMsg, stopMsg string) bool {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return false
	}
	t.running = true
	stop := make(chan struct{})
	t.stop = stop
	t.mu.Unlock()

	if startMsg != "" {
		t.status(startMsg)
	}
	go t.loop(action, intervalMS, stopMsg, stop)
	return true
}

// StartClick repeats a click on the named coordinate.
func (t *RepeatingTask) StartClick(coords CoordinateProvider, actuator input.Actuator, key string, intervalMS func() int, startMsg, stopMsg string) bool {
	return t.Start(func() {
		if p, ok := coords.Point(key); ok {
			actuator.Click(p.X, p.Y)
		}
	}, intervalMS, startMsg, stopMsg)
}

// Stop ends the task and reports whether one was running. The task is
// restartable as soon as Stop returns; the old loop drains on its own.
func (t *RepeatingTask) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running || t.stop == nil {
		return false
	}
	close(t.stop)
	t.stop = nil
	t.running = false
	return true
}

func (t *RepeatingTask) loop(action func(), intervalMS func() int, stopMsg string, stop chan struct{}) {
	defer func() {
		t.mu.Lock()
		// Only clear state if this loop still owns it; a Stop followed by
		// an immediate Start hands ownership to a newer loop.
		if t.stop == stop {
			t.stop = nil
			t.running = false
		}
		t.mu.Unlock()
		if stopMsg != "" {
			t.status(stopMsg)
		}
	}()

	for {
		select {
		case <-stop:
			return
		default:
		}
		t.dispatcher.RunSync(action)
		interval := core.MS(intervalMS())
		if interval <= 0 {
			interval = time.Millisecond
		}
		select {
		case <-stop:
			return
		case <-time.After(interval):
		}
	}
}
