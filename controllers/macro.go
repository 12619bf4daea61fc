// Package controllers holds the automation logic that sits between packet
// detection and input synthesis: the two-step channel macro, the detection
// sequence state machine, repeat-clickers, and the set workflow.
package controllers

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"chanmacro/core"
	"chanmacro/input"
)

// CoordinateProvider resolves named click targets. The "row" key follows
// the active row bank.
type CoordinateProvider interface {
	Point(key string) (core.Point, bool)
}

// MacroController runs the two-step channel macro. Step one opens the
// channel menu and clicks the channel entry; step two selects the row and
// confirms, repeated a configured number of times. The step counter
// alternates so successive triggers walk one-two-one-two.
//
// All methods must be called on the dispatcher thread; delays here block
// that thread on purpose, keeping the click cadence exact.
type MacroController struct {
	coords   CoordinateProvider
	actuator input.Actuator
	delays   core.DelayConfig
	escClick func() bool
	status   func(string)

	mu          sync.Mutex
	currentStep int
}

// NewMacroController wires the macro over its coordinate source, actuator
// and live delay accessors. status receives one-line progress messages and
// may be nil.
func NewMacroController(coords CoordinateProvider, actuator input.Actuator, delays core.DelayConfig, escClick func() bool, status func(string)) *MacroController {
	if status == nil {
		status = func(string) {}
	}
	if escClick == nil {
		escClick = func() bool { return false }
	}
	return &MacroController{
		coords:      coords,
		actuator:    actuator,
		delays:      delays,
		escClick:    escClick,
		status:      status,
		currentStep: 1,
	}
}

// CurrentStep reports which step the next RunStep will execute.
func (m *MacroController) CurrentStep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentStep
}

// ResetAndRunFirst cancels whatever is open, forces the counter back to
// step one and runs it. This is the detection sequence's opening move on
// every attempt.
func (m *MacroController) ResetAndRunFirst(newline bool) error {
	if err := m.cancel(); err != nil {
		m.status(err.Error())
		log.Error().Err(err).Msg("reset cancel aborted")
		return err
	}
	m.mu.Lock()
	m.currentStep = 1
	m.mu.Unlock()
	return m.RunStep(newline)
}

// cancel dismisses an open menu: a click at the "esc" coordinate when the
// esc-click option is on, an Esc keypress otherwise.
func (m *MacroController) cancel() error {
	useClick := m.escClick()
	var esc core.Point
	if useClick {
		var ok bool
		esc, ok = m.coords.Point("esc")
		if !ok {
			return fmt.Errorf("esc coordinate not set")
		}
	}
	m.sleep(m.delays.BeforeCancel())
	if useClick {
		m.actuator.Click(esc.X, esc.Y)
	} else {
		m.actuator.PressKey("esc")
	}
	return nil
}

// RunStep executes the current step and, on success, advances the counter.
// A missing coordinate aborts with an error before any click happens, and
// the counter stays put so the operator can fix the point and retrigger.
func (m *MacroController) RunStep(newline bool) error {
	m.mu.Lock()
	step := m.currentStep
	m.mu.Unlock()

	var err error
	switch step {
	case 1:
		err = m.stepOne()
	default:
		err = m.stepTwo(newline)
	}
	if err != nil {
		m.status(err.Error())
		log.Error().Err(err).Int("step", step).Msg("macro step aborted")
		return err
	}

	m.mu.Lock()
	if m.currentStep == 1 {
		m.currentStep = 2
	} else {
		m.currentStep = 1
	}
	m.mu.Unlock()
	return nil
}

// stepOne: menu click, then channel click.
func (m *MacroController) stepOne() error {
	menu, ok := m.coords.Point("menu")
	if !ok {
		return fmt.Errorf("menu coordinate not set")
	}
	channel, ok := m.coords.Point("channel")
	if !ok {
		return fmt.Errorf("channel coordinate not set")
	}

	m.sleep(m.delays.BeforeMenu())
	m.actuator.Click(menu.X, menu.Y)
	m.sleep(m.delays.BeforeChannel())
	m.actuator.Click(channel.X, channel.Y)
	m.status("step 1 done (menu + channel)")
	return nil
}

// stepTwo: row click then enter, repeated RepeatCount times. Newline mode
// clicks the "arrow" coordinate before each row click.
func (m *MacroController) stepTwo(newline bool) error {
	row, ok := m.coords.Point("row")
	if !ok {
		return fmt.Errorf("row coordinate not set")
	}
	var arrow core.Point
	if newline {
		arrow, ok = m.coords.Point("arrow")
		if !ok {
			return fmt.Errorf("arrow coordinate not set")
		}
	}

	count := m.delays.RepeatCount()
	for i := 0; i < count; i++ {
		if newline {
			m.sleep(m.delays.NewlineBeforeArrow())
			m.actuator.Click(arrow.X, arrow.Y)
			m.sleep(m.delays.NewlineBeforeRow())
			m.actuator.Click(row.X, row.Y)
			m.sleep(m.delays.NewlineBeforeEnter())
		} else {
			m.sleep(m.delays.BeforeRow())
			m.actuator.Click(row.X, row.Y)
			m.sleep(m.delays.BeforeEnter())
		}
		m.actuator.PressKey("enter")
	}
	m.status(fmt.Sprintf("step 2 done (%d confirms)", count))
	return nil
}

func (m *MacroController) sleep(ms int) {
	if ms > 0 {
		time.Sleep(core.MS(ms))
	}
}
