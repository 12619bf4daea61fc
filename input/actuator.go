// Package input owns everything that touches the OS input layer: the
// Actuator abstraction over mouse/keyboard simulation, its robotgo and
// serial-HID backends, and the Dispatcher that serializes all actuator
// work onto one dedicated OS thread.
package input

import (
	"github.com/go-vgo/robotgo"
)

// Actuator performs a real mouse click or key press. Implementations are
// only safe to call from the dispatcher goroutine; controllers reach them
// through Dispatcher.RunSync.
type Actuator interface {
	// Click moves the cursor to (x, y) and presses the left button.
	Click(x, y int)
	// PressKey taps a named key ("enter", "esc", ...).
	PressKey(name string)
}

// RobotgoActuator drives the local mouse and keyboard through robotgo.
// This is the default backend.
type RobotgoActuator struct{}

// NewRobotgoActuator disables robotgo's built-in inter-event sleeps; step
// pacing is owned by the macro controller's configured delays.
func NewRobotgoActuator() *RobotgoActuator {
	robotgo.MouseSleep = 0
	robotgo.KeySleep = 0
	return &RobotgoActuator{}
}

func (a *RobotgoActuator) Click(x, y int) {
	robotgo.Move(x, y)
	robotgo.Click("left")
}

func (a *RobotgoActuator) PressKey(name string) {
	robotgo.KeyTap(name)
}
