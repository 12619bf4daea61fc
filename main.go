// Channel macro tool: sniffs game traffic for channel-name packets and
// drives a two-step click/keystroke macro from the detections. Runs as a
// system tray application with global function-key bindings.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chanmacro/ui"
)

const (
	stateFile    = "data.json"
	debugLogFile = "Debug.log"
)

func main() {
	setupLogging()
	log.Info().Msg("starting channel macro tool")

	app := ui.NewApp(stateFile)
	ui.NewTrayApp(app).Run()
}

// setupLogging sends structured logs to the console and to Debug.log,
// truncated on every start so the file only ever holds the current run.
func setupLogging() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}

	file, err := os.Create(debugLogFile)
	if err != nil {
		log.Logger = log.Output(console)
		log.Warn().Err(err).Msg("debug log file unavailable, console only")
		return
	}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, file)).
		With().Timestamp().Logger()
}
