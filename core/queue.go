package core

import "time"

// DetectionEvent signals one registry classification result to the
// detection sequence: when the capture happened and whether it contained a
// previously unseen channel name.
type DetectionEvent struct {
	At    time.Time
	IsNew bool
}

// EventQueue is the FIFO between the packet-processing side (producer) and
// the detection sequence worker (consumer). Events enqueued while the
// worker is between waits are kept and picked up on the next Get. Puts
// never block: when the buffer is saturated (a pathological flood) the
// newest event is dropped rather than stalling the capture path.
type EventQueue struct {
	ch chan DetectionEvent
}

const defaultQueueSize = 128

// NewEventQueue builds a queue with the given capacity; size <= 0 selects
// the default.
func NewEventQueue(size int) *EventQueue {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &EventQueue{ch: make(chan DetectionEvent, size)}
}

// Put enqueues an event without blocking. It reports whether the event was
// accepted.
func (q *EventQueue) Put(ev DetectionEvent) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		return false
	}
}

// Get waits up to timeout for the next event. A non-positive timeout polls
// without waiting. Closing or signalling stop aborts the wait immediately;
// in that case (and on timeout) ok is false.
func (q *EventQueue) Get(timeout time.Duration, stop <-chan struct{}) (ev DetectionEvent, ok bool) {
	if timeout <= 0 {
		select {
		case ev = <-q.ch:
			return ev, true
		default:
			return DetectionEvent{}, false
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case ev = <-q.ch:
		return ev, true
	case <-timer.C:
		return DetectionEvent{}, false
	case <-stop:
		return DetectionEvent{}, false
	}
}

// Drain discards every queued event.
func (q *EventQueue) Drain() {
	for {
		select {
		case <-q.ch:
		default:
			return
		}
	}
}

// Len reports how many events are currently queued.
func (q *EventQueue) Len() int {
	return len(q.ch)
}
