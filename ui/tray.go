package ui

import (
	"fmt"
	"os"
	"time"

	"github.com/getlantern/systray"
	"github.com/rs/zerolog/log"

	"chanmacro/core"
)

// TrayApp is the system tray shell around App: a status line, the alert
// line fed by the DevLogic classifier, and toggles for capture, detection
// and the set workflow. Configuration edits persist immediately.
type TrayApp struct {
	app *App

	statusItem *systray.MenuItem
	alertItem  *systray.MenuItem

	captureItem   *systray.MenuItem
	detectionItem *systray.MenuItem
	macroItem     *systray.MenuItem

	setAutoItem  *systray.MenuItem
	forceNewItem *systray.MenuItem
	stopSetItem  *systray.MenuItem
	escClickItem *systray.MenuItem
	rowBankItem  *systray.MenuItem
	clearItem    *systray.MenuItem
}

// NewTrayApp wraps an App in the tray shell.
func NewTrayApp(app *App) *TrayApp {
	return &TrayApp{app: app}
}

// Run starts the tray loop. Blocks until quit.
func (t *TrayApp) Run() {
	log.Info().Msg("starting system tray")
	systray.Run(t.onReady, func() {
		log.Info().Msg("tray exit, shutting down")
		t.app.Shutdown()
	})
}

func (t *TrayApp) onReady() {
	systray.SetTitle("Channel Macro")
	systray.SetTooltip("Channel detection macro")

	// TODO: Set icon
	// systray.SetIcon(iconData)

	t.statusItem = systray.AddMenuItem("Status: idle", "Current status")
	t.statusItem.Disable()
	t.alertItem = systray.AddMenuItem("No detections yet", "Last channel classification")
	t.alertItem.Disable()

	systray.AddSeparator()

	t.captureItem = systray.AddMenuItem("Start packet capture", "Toggle packet capture")
	t.detectionItem = systray.AddMenuItem("Start channel sequence", "Toggle the detection sequence")
	t.macroItem = systray.AddMenuItem("Run macro step", "Fire the macro once from step one")

	systray.AddSeparator()

	setMenu := systray.AddMenuItem("Set Workflow", "Set automation controls")
	t.setAutoItem = setMenu.AddSubMenuItemCheckbox("Automation mode", "Arm the set state machine", false)
	t.forceNewItem = setMenu.AddSubMenuItemCheckbox("Treat normal as new", "Count normal channels as new (tuning aid)", false)
	t.stopSetItem = setMenu.AddSubMenuItem("Stop automation", "Disarm the set workflow")

	optionsMenu := systray.AddMenuItem("Options", "Macro options")
	t.escClickItem = optionsMenu.AddSubMenuItemCheckbox("Esc before menu", "Press Esc before opening the menu", false)
	t.rowBankItem = optionsMenu.AddSubMenuItem("Row bank: 1", "Cycle through the six row coordinate banks")

	systray.AddSeparator()

	t.clearItem = systray.AddMenuItem("Clear records", "Wipe seen channels and history")

	systray.AddSeparator()
	quitItem := systray.AddMenuItem("Quit", "Quit the application")

	t.syncChecks()
	t.app.SetStatusHook(func(msg string) {
		t.statusItem.SetTitle("Status: " + msg)
	})

	go t.handleEvents(quitItem)
	go t.pollAlert()
	go RunHotkeys(t.app)

	log.Info().Msg("system tray initialized")
}

func (t *TrayApp) handleEvents(quitItem *systray.MenuItem) {
	for {
		select {
		case <-t.captureItem.ClickedCh:
			t.app.ToggleCapture()
			if t.app.Capture.Running() {
				t.captureItem.SetTitle("Stop packet capture")
			} else {
				t.captureItem.SetTitle("Start packet capture")
			}
		case <-t.detectionItem.ClickedCh:
			t.app.ToggleDetection()
			if t.app.Sequence.Running() {
				t.detectionItem.SetTitle("Stop channel sequence")
			} else {
				t.detectionItem.SetTitle("Start channel sequence")
			}
		case <-t.macroItem.ClickedCh:
			t.app.RunMacroStep()
		case <-t.setAutoItem.ClickedCh:
			t.toggleFlag(func(s *core.AppState) { s.SetAutomation = !s.SetAutomation })
			if !t.app.State.Flag(func(s *core.AppState) bool { return s.SetAutomation })() {
				t.app.SetAuto.StopAutomation("set automation disarmed")
			}
		case <-t.forceNewItem.ClickedCh:
			t.toggleFlag(func(s *core.AppState) { s.TreatNormalAsNew = !s.TreatNormalAsNew })
		case <-t.stopSetItem.ClickedCh:
			t.app.SetAuto.StopAutomation("set automation stopped")
		case <-t.escClickItem.ClickedCh:
			t.toggleFlag(func(s *core.AppState) { s.EscClick = !s.EscClick })
		case <-t.rowBankItem.ClickedCh:
			bank := t.app.State.CycleRowBank()
			t.rowBankItem.SetTitle(fmt.Sprintf("Row bank: %d", bank))
			t.saveState()
		case <-t.clearItem.ClickedCh:
			t.app.ClearRecords()
		case <-quitItem.ClickedCh:
			log.Info().Msg("quit requested by user")
			StopHotkeys()
			systray.Quit()
			// systray.Quit triggers onExit which runs App.Shutdown; the
			// exit below covers platforms where the loop lingers.
			time.Sleep(200 * time.Millisecond)
			os.Exit(0)
		}
	}
}

func (t *TrayApp) toggleFlag(apply func(*core.AppState)) {
	t.app.State.SetFlag(apply)
	t.syncChecks()
	t.saveState()
}

func (t *TrayApp) syncChecks() {
	state := t.app.State
	setCheck(t.setAutoItem, state.Flag(func(s *core.AppState) bool { return s.SetAutomation })())
	setCheck(t.forceNewItem, state.Flag(func(s *core.AppState) bool { return s.TreatNormalAsNew })())
	setCheck(t.escClickItem, state.Flag(func(s *core.AppState) bool { return s.EscClick })())
}

func setCheck(item *systray.MenuItem, on bool) {
	if on {
		item.Check()
	} else {
		item.Uncheck()
	}
}

func (t *TrayApp) saveState() {
	if err := t.app.State.SaveAppState(t.app.statePath); err != nil {
		log.Error().Err(err).Msg("state save failed")
	}
}

// pollAlert refreshes the alert line once a second from the DevLogic
// classifier state.
func (t *TrayApp) pollAlert() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		if alert := t.app.DevLogic.Alert(); alert != "" {
			t.alertItem.SetTitle(alert)
		}
	}
}
