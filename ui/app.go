// Package ui is the application shell: it wires the capture pipeline,
// detection controllers and input backends together and exposes them
// through a system tray menu, global hotkeys and a status line.
package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"chanmacro/capture"
	"chanmacro/controllers"
	"chanmacro/core"
	"chanmacro/input"
)

// App owns the full object graph for one run of the tool.
type App struct {
	statePath string

	State    *core.AppState
	Registry *core.Registry
	DevLogic *core.DevLogicState
	Recorder *core.WindowRecorder

	Dispatcher *input.Dispatcher
	Actuator   input.Actuator
	Notifier   *BeepNotifier

	Macro    *controllers.MacroController
	Sequence *controllers.DetectionSequence
	SetAuto  *controllers.SetAutomationController
	Capture  *capture.Manager

	serial *input.SerialActuator

	statusMu   sync.Mutex
	statusText string
	statusHook func(string)
}

// NewApp loads persisted state from statePath and builds the object graph.
// The serial actuator backend falls back to robotgo when its port cannot
// be opened, so a missing device never blocks startup.
func NewApp(statePath string) *App {
	app := &App{
		statePath: statePath,
		State:     core.LoadAppState(statePath),
		Registry:  core.NewRegistry(),
		DevLogic:  &core.DevLogicState{},
		Notifier:  &BeepNotifier{},
	}

	app.Dispatcher = input.NewDispatcher()
	app.Actuator = app.buildActuator()

	state := app.State
	delays := core.DelayConfig{
		BeforeCancel:       state.DelayMS(func(d *core.DelaySettings) int { return d.BeforeCancelMS }),
		BeforeMenu:         state.DelayMS(func(d *core.DelaySettings) int { return d.BeforeMenuMS }),
		BeforeChannel:      state.DelayMS(func(d *core.DelaySettings) int { return d.BeforeChannelMS }),
		BeforeRow:          state.DelayMS(func(d *core.DelaySettings) int { return d.BeforeRowMS }),
		BeforeEnter:        state.DelayMS(func(d *core.DelaySettings) int { return d.BeforeEnterMS }),
		RepeatCount:        state.Count(func(d *core.DelaySettings) int { return d.RepeatCount }),
		NewlineBeforeArrow: state.DelayMS(func(d *core.DelaySettings) int { return d.NewlineBeforeArrowMS }),
		NewlineBeforeRow:   state.DelayMS(func(d *core.DelaySettings) int { return d.NewlineBeforeRowMS }),
		NewlineBeforeEnter: state.DelayMS(func(d *core.DelaySettings) int { return d.NewlineBeforeEnterMS }),
	}
	app.Macro = controllers.NewMacroController(
		state, app.Actuator, delays,
		state.Flag(func(s *core.AppState) bool { return s.EscClick }),
		app.Status,
	)

	app.Sequence = controllers.NewDetectionSequence(
		app.Macro,
		core.NewEventQueue(0),
		app.Dispatcher,
		state.DelayMS(func(d *core.DelaySettings) int { return d.ChannelTimeoutMS }),
		state.DelayMS(func(d *core.DelaySettings) int { return d.ChannelWatchIntervalMS }),
		app.Status,
		app.RefreshStatus,
	)

	setDelays := core.SetDelayConfig{
		BetweenMoreReload: state.DelayMS(func(d *core.DelaySettings) int { return d.BetweenMoreReloadMS }),
		BeforeEnter:       state.DelayMS(func(d *core.DelaySettings) int { return d.SetBeforeEnterMS }),
		LoginInterval:     state.DelayMS(func(d *core.DelaySettings) int { return d.LoginIntervalMS }),
		CharacterInterval: state.DelayMS(func(d *core.DelaySettings) int { return d.CharacterIntervalMS }),
	}
	app.SetAuto = controllers.NewSetAutomationController(
		state, app.Actuator, app.Dispatcher, setDelays,
		state.Flag(func(s *core.AppState) bool { return s.SetAutomation }),
		state.Flag(func(s *core.AppState) bool { return s.TreatNormalAsNew }),
		app.Notifier,
		app.Status,
	)

	app.Recorder = core.NewWindowRecorder(core.DefaultRecorderConfig(), app.onBlockCaptured, nil)

	app.Capture = capture.NewManager(state.CaptureDevice, state.CapturePort, app.ProcessPacket)

	return app
}

func (a *App) buildActuator() input.Actuator {
	if a.State.Actuator == "serial" && a.State.SerialPort != "" {
		serial, err := input.OpenSerialActuator(a.State.SerialPort)
		if err == nil {
			a.serial = serial
			return serial
		}
		log.Warn().Err(err).Str("port", a.State.SerialPort).
			Msg("serial actuator unavailable, falling back to robotgo")
	}
	return input.NewRobotgoActuator()
}

// SetStatusHook installs the tray's status-line sink.
func (a *App) SetStatusHook(hook func(string)) {
	a.statusMu.Lock()
	a.statusHook = hook
	a.statusMu.Unlock()
}

// Status records and displays a one-line status message.
func (a *App) Status(msg string) {
	a.statusMu.Lock()
	a.statusText = msg
	hook := a.statusHook
	a.statusMu.Unlock()
	log.Info().Msg(msg)
	if hook != nil {
		hook(msg)
	}
}

// RefreshStatus re-renders the summary status line from live state.
func (a *App) RefreshStatus() {
	parts := []string{}
	if a.Capture.Running() {
		parts = append(parts, "capture on")
	} else {
		parts = append(parts, "capture off")
	}
	if a.Sequence.Running() {
		parts = append(parts, "sequence running")
	} else {
		parts = append(parts, "sequence idle")
	}
	if a.SetAuto.Active() {
		parts = append(parts, "set automation on")
	}
	parts = append(parts, fmt.Sprintf("%d channels seen", a.Registry.Len()))
	a.Status(strings.Join(parts, " | "))
}

// ProcessPacket is the capture callback. It runs on the capture goroutine;
// everything it touches is internally synchronized, and the recorder is
// touched from this goroutine only.
func (a *App) ProcessPacket(text string) {
	if strings.Contains(text, core.DevLogicKeyword) {
		display, isNew, isNormal := core.ClassifyDevLogicPacket(text)
		if display != "" {
			a.DevLogic.Update(display, isNew)
			a.SetAuto.OnChannelClassified(isNew, isNormal)
		}
	}
	if strings.Contains(text, core.SelectionKeyword) {
		a.DevLogic.MarkSelection()
		a.SetAuto.OnSelectionDetected()
	}
	a.Recorder.Feed(text)
}

func (a *App) onBlockCaptured(span string) {
	now := time.Now()
	names, newNames := a.Registry.Record(span, now)
	if len(names) == 0 {
		return
	}
	log.Debug().Strs("names", names).Strs("new", newNames).Msg("channel block captured")
	a.Sequence.NotifyChannelFound(now, len(newNames) > 0)
	if len(newNames) > 0 {
		a.Notifier.Bell(1)
	}
}

// Newline reports whether step two should use newline (arrow-key) mode.
func (a *App) Newline() bool {
	return a.State.Flag(func(s *core.AppState) bool { return s.NewlineAfterChannel })()
}

// ToggleCapture flips packet capture and reports the resulting state.
func (a *App) ToggleCapture() {
	if a.Capture.Running() {
		a.Capture.Stop()
	} else if err := a.Capture.Start(); err != nil {
		a.Status(fmt.Sprintf("packet capture failed: %v", err))
		return
	}
	a.RefreshStatus()
}

// ToggleDetection starts the detection sequence, or stops the running one.
func (a *App) ToggleDetection() {
	if a.Sequence.Running() {
		a.Sequence.Stop()
		return
	}
	a.Sequence.Start(a.Newline())
}

// RunMacroStep fires the current macro step once, from step one.
func (a *App) RunMacroStep() {
	newline := a.Newline()
	go a.Dispatcher.RunSync(func() {
		if err := a.Macro.ResetAndRunFirst(newline); err == nil {
			a.Status("macro step fired")
		}
	})
}

// ClearRecords wipes the channel registry and capture history.
func (a *App) ClearRecords() {
	a.Registry.Clear()
	a.DevLogic.Reset()
	a.Status("records cleared")
}

// Shutdown stops every moving part and persists state.
func (a *App) Shutdown() {
	a.Sequence.Stop()
	a.SetAuto.StopAutomation("")
	a.Capture.Stop()
	a.Dispatcher.Close()
	if a.serial != nil {
		a.serial.Close()
	}
	if err := a.State.SaveAppState(a.statePath); err != nil {
		log.Error().Err(err).Msg("state save failed on shutdown")
	}
}
