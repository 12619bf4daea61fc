package controllers

import (
	"sync/atomic"
	"testing"
	"time"

	"chanmacro/core"
)

func TestRepeatingTaskRunsUntilStopped(t *testing.T) {
	task := NewRepeatingTask(inlineDispatcher{}, nil)
	var runs atomic.Int32

	if !task.Start(func() { runs.Add(1) }, fixed(10), "", "") {
		t.Fatal("start refused")
	}
	waitFor(t, time.Second, func() { return runs.Load() >= 3 })

	if !task.Stop() {
		t.Error("stop on a running task returned false")
	}
	waitFor(t, time.Second, func() { return !task.Running() })

	settled := runs.Load()
	time.Sleep(50 * time.Millisecond)
	if runs.Load() > settled+1 {
		t.Errorf("task kept running after stop: %d -> %d", settled, runs.Load())
	}
}

func TestRepeatingTaskDoubleStart(t *testing.T) {
	task := NewRepeatingTask(inlineDispatcher{}, nil)
	defer task.Stop()

	if !task.Start(func() {}, fixed(10), "", "") {
		t.Fatal("start refused")
	}
	if task.Start(func() {}, fixed(10), "", "") {
		t.Error("second start accepted while running")
	}
}

func TestRepeatingTaskStopThenImmediateRestart(t *testing.T) {
	task := NewRepeatingTask(inlineDispatcher{}, nil)
	var runs atomic.Int32

	if !task.Start(func() { runs.Add(1) }, fixed(10), "", "") {
		t.Fatal("start refused")
	}
	waitFor(t, time.Second, func() { return runs.Load() >= 1 })
	if !task.Stop() {
		t.Fatal("stop returned false")
	}
	// The old loop may still be draining; a restart right after Stop must
	// not be refused.
	if !task.Start(func() { runs.Add(1) }, fixed(10), "", "") {
		t.Fatal("restart right after stop refused")
	}
	if !task.Running() {
		t.Error("task not running after restart")
	}
	settled := runs.Load()
	waitFor(t, time.Second, func() { return runs.Load() > settled })
	task.Stop()
}

func TestRepeatingTaskStopWhenIdle(t *testing.T) {
	task := NewRepeatingTask(inlineDispatcher{}, nil)
	if task.Stop() {
		t.Error("stop on an idle task returned true")
	}
}

func TestRepeatingTaskStatusMessages(t *testing.T) {
	var statuses chanStatus
	task := NewRepeatingTask(inlineDispatcher{}, statuses.add)

	task.Start(func() {}, fixed(5), "started", "stopped")
	waitFor(t, time.Second, func() { return statuses.has("started") })
	task.Stop()
	waitFor(t, time.Second, func() { return statuses.has("stopped") })
}

func TestRepeatingTaskStartClick(t *testing.T) {
	act := &fakeActuator{}
	task := NewRepeatingTask(inlineDispatcher{}, nil)

	task.StartClick(fakeCoords{"login": core.Point{X: 5, Y: 6}}, act, "login", fixed(5), "", "")
	waitFor(t, time.Second, func() { return countEvents(act, "click 5,6") >= 2 })
	task.Stop()
}
