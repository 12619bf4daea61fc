package core

import (
	"testing"
	"time"
)

func TestEventQueueOrdering(t *testing.T) {
	q := NewEventQueue(4)
	base := time.Now()
	for i := 0; i < 3; i++ {
		if !q.Put(DetectionEvent{At: base.Add(time.Duration(i) * time.Millisecond), IsNew: i == 2}) {
			t.Fatalf("put %d rejected", i)
		}
	}
	for i := 0; i < 3; i++ {
		ev, ok := q.Get(0, nil)
		if !ok {
			t.Fatalf("get %d returned nothing", i)
		}
		if ev.IsNew != (i == 2) {
			t.Errorf("event %d IsNew = %v", i, ev.IsNew)
		}
	}
	if _, ok := q.Get(0, nil); ok {
		t.Error("empty queue returned an event")
	}
}

func TestEventQueuePutNeverBlocks(t *testing.T) {
	q := NewEventQueue(2)
	if !q.Put(DetectionEvent{}) || !q.Put(DetectionEvent{}) {
		t.Fatal("puts within capacity rejected")
	}
	if q.Put(DetectionEvent{}) {
		t.Error("put beyond capacity accepted")
	}
	if q.Len() != 2 {
		t.Errorf("Len = %d, want 2", q.Len())
	}
}

func TestEventQueueGetTimesOut(t *testing.T) {
	q := NewEventQueue(1)
	start := time.Now()
	_, ok := q.Get(30*time.Millisecond, nil)
	if ok {
		t.Fatal("empty queue returned an event")
	}
	if elapsed := time.Since(start); elapsed < 25*time.Millisecond {
		t.Errorf("returned after %v, before the timeout", elapsed)
	}
}

func TestEventQueueGetAbortsOnStop(t *testing.T) {
	q := NewEventQueue(1)
	stop := make(chan struct{})
	go func() {
		time.Sleep(10 * time.Millisecond)
		close(stop)
	}()
	start := time.Now()
	if _, ok := q.Get(5*time.Second, stop); ok {
		t.Fatal("stopped wait returned an event")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("stop took %v to abort the wait", elapsed)
	}
}

func TestEventQueueDrain(t *testing.T) {
	q := NewEventQueue(4)
	q.Put(DetectionEvent{})
	q.Put(DetectionEvent{})
	q.Drain()
	if q.Len() != 0 {
		t.Errorf("Len = %d after drain", q.Len())
	}
}
