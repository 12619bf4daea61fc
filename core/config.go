package core

import "time"

// Default timing values in milliseconds. These match the shipped tuning of
// the tool and seed the persisted state on first run.
const (
	DefaultBeforeCancelMS       = 0
	DefaultBeforeMenuMS         = 55
	DefaultBeforeChannelMS      = 55
	DefaultBeforeRowMS          = 15
	DefaultBeforeEnterMS        = 15
	DefaultRepeatCount          = 8
	DefaultNewlineBeforeArrowMS = 170
	DefaultNewlineBeforeRowMS   = 30
	DefaultNewlineBeforeEnterMS = 15

	DefaultBetweenMoreReloadMS = 25
	DefaultSetBeforeEnterMS    = 55
	DefaultLoginIntervalMS     = 25
	DefaultCharacterIntervalMS = 25

	DefaultChannelWatchIntervalMS = 20
	DefaultChannelTimeoutMS       = 700

	DefaultCapturePort = 32800
)

// DelayConfig supplies every timing parameter of the two-step macro as
// zero-argument accessors. Accessors are evaluated at the moment of use so
// live-edited settings take effect without rebuilding the controller. Each
// accessor is expected to clamp its value (>= 0 for delays, >= 1 for the
// repeat count).
type DelayConfig struct {
	BeforeCancel  func() int
	BeforeMenu    func() int
	BeforeChannel func() int
	BeforeRow     func() int
	BeforeEnter   func() int
	RepeatCount   func() int

	NewlineBeforeArrow func() int
	NewlineBeforeRow   func() int
	NewlineBeforeEnter func() int
}

// SetDelayConfig supplies the timing parameters of the set-automation
// workflow, same accessor convention as DelayConfig.
type SetDelayConfig struct {
	BetweenMoreReload func() int
	BeforeEnter       func() int
	LoginInterval     func() int
	CharacterInterval func() int
}

// ClampDelayMS floors a delay at zero.
func ClampDelayMS(ms int) int {
	if ms < 0 {
		return 0
	}
	return ms
}

// ClampCount floors a repeat count at one.
func ClampCount(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// MS converts a millisecond setting to a non-negative duration.
func MS(ms int) time.Duration {
	return time.Duration(ClampDelayMS(ms)) * time.Millisecond
}
