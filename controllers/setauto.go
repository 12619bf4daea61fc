package controllers

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"chanmacro/core"
	"chanmacro/input"
)

// Notifier raises an audible alert.
type Notifier interface {
	Bell(count int)
}

const (
	batchRepeatCount = 10
	batchIntervalMS  = 200
)

// SetRecord is one finished set in the history.
type SetRecord struct {
	SetNo     int
	StartedAt time.Time
	Result    string
}

// SetAutomationController runs the set workflow: fire a reload batch, wait
// for the channel classifier to report a new channel, then walk the login
// and character-selection clickers through the rest of the set. It consumes
// the DevLogic classifier's verdicts, not the registry's dedup signal.
//
// Phases while a set is in flight: waitingNew (batch fired, watching for a
// new channel), waitingNormal (new channel entered, watching for it to turn
// normal), waitingSelection (login clicker running, watching for the
// selection window).
type SetAutomationController struct {
	coords     CoordinateProvider
	actuator   input.Actuator
	dispatcher Dispatcher
	delays     core.SetDelayConfig
	status     func(string)
	notifier   Notifier

	automation       func() bool
	treatNormalAsNew func() bool

	login     *RepeatingTask
	character *RepeatingTask

	mu               sync.Mutex
	active           bool
	waitingNew       bool
	waitingNormal    bool
	waitingSelection bool
	setIndex         int
	setStartedAt     time.Time
	batchStop        chan struct{}
	records          []SetRecord
}

// NewSetAutomationController wires the workflow. automation gates the
// state machine; treatNormalAsNew makes a normal classification count as
// new (a test aid for tuning without waiting on a real new channel).
func NewSetAutomationController(coords CoordinateProvider, actuator input.Actuator, dispatcher Dispatcher, delays core.SetDelayConfig, automation, treatNormalAsNew func() bool, notifier Notifier, status func(string)) *SetAutomationController {
	if status == nil {
		status = func(string) {}
	}
	if automation == nil {
		automation = func() bool { return false }
	}
	if treatNormalAsNew == nil {
		treatNormalAsNew = func() bool { return false }
	}
	return &SetAutomationController{
		coords:           coords,
		actuator:         actuator,
		dispatcher:       dispatcher,
		delays:           delays,
		status:           status,
		notifier:         notifier,
		automation:       automation,
		treatNormalAsNew: treatNormalAsNew,
		login:            NewRepeatingTask(dispatcher, status),
		character:        NewRepeatingTask(dispatcher, status),
	}
}

// Records returns a copy of the set history.
func (c *SetAutomationController) Records() []SetRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SetRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Active reports whether the workflow is armed.
func (c *SetAutomationController) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// StartAutomation arms the workflow and fires the first batch. Repeat
// clickers from a previous manual run are stopped first.
func (c *SetAutomationController) StartAutomation() {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		c.status("set automation already running")
		return
	}
	c.mu.Unlock()

	c.login.Stop()
	c.character.Stop()
	c.armAndRun(true)
}

// RestartCycle re-arms the full state machine and fires a fresh batch.
func (c *SetAutomationController) RestartCycle() {
	c.armAndRun(true)
}

// RestartLogic fires a fresh batch for a new set without touching the
// phase flags; used when a set fails while still waiting for a new channel.
func (c *SetAutomationController) RestartLogic() {
	c.armAndRun(false)
}

func (c *SetAutomationController) armAndRun(resetPhases bool) {
	if _, ok := c.coords.Point("more"); !ok {
		c.status("more coordinate not set")
		return
	}
	if _, ok := c.coords.Point("reload"); !ok {
		c.status("reload coordinate not set")
		return
	}

	c.mu.Lock()
	if resetPhases {
		c.active = true
		c.waitingNew = true
		c.waitingNormal = false
		c.waitingSelection = false
	}
	c.setIndex++
	c.setStartedAt = time.Now()
	index := c.setIndex
	c.mu.Unlock()

	c.status(fmt.Sprintf("set %d started", index))
	c.runBatch("", "")
}

// StopAutomation disarms everything: phase flags, in-flight batch, both
// repeat clickers.
func (c *SetAutomationController) StopAutomation(message string) {
	c.mu.Lock()
	c.active = false
	c.waitingNew = false
	c.waitingNormal = false
	c.waitingSelection = false
	c.setStartedAt = time.Time{}
	if c.batchStop != nil {
		close(c.batchStop)
		c.batchStop = nil
	}
	c.mu.Unlock()

	if c.login.Stop() {
		c.status("login clicker stopped")
	}
	if c.character.Stop() {
		c.status("character clicker stopped")
	}
	if message != "" {
		c.status(message)
	}
}

// TriggerBatch is the manual hotkey entry point. With the automation flag
// set it arms the workflow; without it, it just runs one batch.
func (c *SetAutomationController) TriggerBatch() {
	if c.automation() {
		c.StartAutomation()
		return
	}
	if c.character.Stop() {
		c.status("character clicker stopped")
	}
	c.runBatch(fmt.Sprintf("running batch x%d...", batchRepeatCount), "batch done")
}

// runBatch fires the more/reload/enter triple batchRepeatCount times on a
// worker goroutine, each triple on the dispatcher thread. A previous batch
// still in flight is cancelled.
func (c *SetAutomationController) runBatch(startMsg, stopMsg string) {
	c.mu.Lock()
	if c.batchStop != nil {
		close(c.batchStop)
	}
	stop := make(chan struct{})
	c.batchStop = stop
	c.mu.Unlock()

	if startMsg != "" {
		c.status(startMsg)
	}
	go func() {
		defer func() {
			c.mu.Lock()
			if c.batchStop == stop {
				c.batchStop = nil
			}
			c.mu.Unlock()
		}()
		for i := 0; i < batchRepeatCount; i++ {
			select {
			case <-stop:
				return
			default:
			}
			c.dispatcher.RunSync(c.batchStep)
			if i < batchRepeatCount-1 {
				select {
				case <-stop:
					return
				case <-time.After(batchIntervalMS * time.Millisecond):
				}
			}
		}
		if stopMsg != "" {
			c.status(stopMsg)
		}
	}()
}

func (c *SetAutomationController) batchStep() {
	more, ok := c.coords.Point("more")
	if !ok {
		return
	}
	reload, ok := c.coords.Point("reload")
	if !ok {
		return
	}
	c.actuator.Click(more.X, more.Y)
	time.Sleep(core.MS(c.delays.BetweenMoreReload()))
	c.actuator.Click(reload.X, reload.Y)
	time.Sleep(core.MS(c.delays.BeforeEnter()))
	c.actuator.PressKey("enter")
}

// RunLogin starts the login repeat-clicker.
func (c *SetAutomationController) RunLogin() {
	if _, ok := c.coords.Point("login"); !ok {
		c.status("login coordinate not set")
		return
	}
	if !c.login.StartClick(c.coords, c.actuator, "login", c.delays.LoginInterval,
		"login clicker started", "login clicker stopped") {
		log.Warn().Msg("login clicker already running")
	}
}

// RunCharacter toggles the character repeat-clicker. With force it always
// restarts instead of toggling off.
func (c *SetAutomationController) RunCharacter(force bool) {
	if c.character.Running() {
		c.character.Stop()
		if !force {
			return
		}
	}
	if _, ok := c.coords.Point("character"); !ok {
		c.status("character coordinate not set")
		return
	}
	if c.login.Stop() {
		c.status("login clicker stopped")
	}
	if !c.character.StartClick(c.coords, c.actuator, "character", c.delays.CharacterInterval,
		"character clicker started", "character clicker stopped") {
		log.Warn().Msg("character clicker already running")
	}
}

// HandleCharacterKey is the F12 entry point. While the workflow is armed
// with the automation flag on, the key aborts it; otherwise it toggles the
// character clicker.
func (c *SetAutomationController) HandleCharacterKey() {
	if c.Active() && c.automation() {
		c.StopAutomation("set automation stopped")
		return
	}
	c.RunCharacter(false)
}

// OnChannelClassified consumes one DevLogic verdict and advances the set
// state machine.
func (c *SetAutomationController) OnChannelClassified(isNew, isNormal bool) {
	c.mu.Lock()
	active := c.active
	automation := c.automation()
	forcedNew := active && automation && c.treatNormalAsNew() && isNormal
	effectiveNew := isNew || forcedNew

	if !automation {
		c.waitingNew = false
		c.waitingNormal = false
		c.waitingSelection = false
		c.mu.Unlock()
		return
	}
	if !active {
		c.mu.Unlock()
		return
	}

	switch {
	case c.waitingNew && effectiveNew:
		c.waitingNew = false
		c.waitingNormal = true
		batchStop := c.batchStop
		c.batchStop = nil
		c.mu.Unlock()
		if batchStop != nil {
			close(batchStop)
		}
		c.finishSet("success", "awaiting normal channel")
		if c.notifier != nil {
			c.notifier.Bell(3)
		}
	case c.waitingNew && isNormal:
		c.mu.Unlock()
		c.finishSet("failed", "restarting batch")
		c.RestartLogic()
	case c.waitingNormal && isNormal:
		c.waitingNormal = false
		c.waitingSelection = true
		c.mu.Unlock()
		c.status("normal channel detected, login clicker until selection")
		c.RunLogin()
	default:
		c.mu.Unlock()
	}
}

// OnSelectionDetected consumes a selection-window sighting.
func (c *SetAutomationController) OnSelectionDetected() {
	c.mu.Lock()
	fire := c.active && c.waitingSelection
	if fire {
		c.waitingSelection = false
	}
	c.mu.Unlock()
	if !fire {
		return
	}
	c.status("selection window detected, character clicker running")
	c.RunCharacter(true)
}

func (c *SetAutomationController) finishSet(result, note string) {
	c.mu.Lock()
	if c.setStartedAt.IsZero() {
		c.mu.Unlock()
		return
	}
	rec := SetRecord{SetNo: c.setIndex, StartedAt: c.setStartedAt, Result: result}
	c.records = append(c.records, rec)
	c.setStartedAt = time.Time{}
	c.mu.Unlock()

	msg := fmt.Sprintf("set %d finished (%s)", rec.SetNo, result)
	if note != "" {
		msg += " - " + note
	}
	c.status(msg)
	log.Info().Int("set", rec.SetNo).Str("result", result).Msg("set finished")
}
