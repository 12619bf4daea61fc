package ui

import (
	hook "github.com/robotn/gohook"
	"github.com/rs/zerolog/log"
)

// RunHotkeys registers the global function-key bindings and blocks on the
// gohook event loop. Call it on its own goroutine.
//
//	F9  fire the macro from step one
//	F10 toggle the detection sequence
//	F11 trigger the set batch (arms automation when the flag is on)
//	F12 abort set automation when armed, else toggle the character clicker
func RunHotkeys(app *App) {
	hook.Register(hook.KeyDown, []string{"f9"}, func(e hook.Event) {
		log.Debug().Msg("hotkey f9")
		app.RunMacroStep()
	})
	hook.Register(hook.KeyDown, []string{"f10"}, func(e hook.Event) {
		log.Debug().Msg("hotkey f10")
		app.ToggleDetection()
	})
	hook.Register(hook.KeyDown, []string{"f11"}, func(e hook.Event) {
		log.Debug().Msg("hotkey f11")
		go app.SetAuto.TriggerBatch()
	})
	hook.Register(hook.KeyDown, []string{"f12"}, func(e hook.Event) {
		log.Debug().Msg("hotkey f12")
		go app.SetAuto.HandleCharacterKey()
	})

	s := hook.Start()
	<-hook.Process(s)
}

// StopHotkeys tears the gohook listener down.
func StopHotkeys() {
	hook.End()
}
