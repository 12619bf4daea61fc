package controllers

import (
	"fmt"
	"strings"
	"sync"

	"chanmacro/core"
)

// fakeActuator records every click and key press in order.
type fakeActuator struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeActuator) Click(x, y int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, clickEvent(x, y))
}

func (f *fakeActuator) PressKey(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, "key "+name)
}

func (f *fakeActuator) Events() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	copy(out, f.events)
	return out
}

func (f *fakeActuator) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}

func clickEvent(x, y int) string {
	return fmt.Sprintf("click %d,%d", x, y)
}

// fakeCoords is a fixed coordinate table.
type fakeCoords map[string]core.Point

func (f fakeCoords) Point(key string) (core.Point, bool) {
	p, ok := f[key]
	return p, ok
}

// inlineDispatcher runs jobs on the calling goroutine.
type inlineDispatcher struct{}

func (inlineDispatcher) RunSync(fn func()) { fn() }

// chanStatus collects status messages across goroutines.
type chanStatus struct {
	mu   sync.Mutex
	msgs []string
}

func (s *chanStatus) add(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, msg)
}

func (s *chanStatus) has(msg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.msgs {
		if m == msg {
			return true
		}
	}
	return false
}

func (s *chanStatus) hasPrefix(prefix string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.msgs {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

func fixed(n int) func() int  { return func() int { return n } }
func flag(v bool) func() bool { return func() bool { return v } }

func zeroDelays(repeat int) core.DelayConfig {
	return core.DelayConfig{
		BeforeCancel:       fixed(0),
		BeforeMenu:         fixed(0),
		BeforeChannel:      fixed(0),
		BeforeRow:          fixed(0),
		BeforeEnter:        fixed(0),
		RepeatCount:        fixed(repeat),
		NewlineBeforeArrow: fixed(0),
		NewlineBeforeRow:   fixed(0),
		NewlineBeforeEnter: fixed(0),
	}
}
