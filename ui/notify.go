package ui

import (
	"sync"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog/log"
)

// BeepNotifier raises audible alerts through the system sound device.
// Bell requests are overlap-safe: a second request while one is sounding
// is dropped rather than queued.
type BeepNotifier struct {
	mu   sync.Mutex
	busy bool
}

// Bell sounds count beeps, spaced out so they stay audible as separate
// alerts. Non-positive counts are ignored.
func (n *BeepNotifier) Bell(count int) {
	if count <= 0 {
		return
	}
	n.mu.Lock()
	if n.busy {
		n.mu.Unlock()
		return
	}
	n.busy = true
	n.mu.Unlock()

	go func() {
		defer func() {
			n.mu.Lock()
			n.busy = false
			n.mu.Unlock()
		}()
		for i := 0; i < count; i++ {
			if err := beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration); err != nil {
				log.Warn().Err(err).Msg("beep failed")
				return
			}
			if i < count-1 {
				time.Sleep(300 * time.Millisecond)
			}
		}
	}()
}
