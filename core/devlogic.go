package core

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// DevLogicKeyword marks packets carrying the secondary channel-type
// indicator. This classifier is independent of the registry's dedup-based
// "new" notion: it judges channel type from the shape of the text that
// follows the keyword, not from history. The two capabilities intentionally
// stay separate.
const DevLogicKeyword = "DevLogic"

// SelectionKeyword marks packets announcing the selection window.
const SelectionKeyword = "AdminLevel"

// devLogicSegmentLen is how much text after the keyword is inspected.
const devLogicSegmentLen = 25

// ClassifyDevLogicPacket extracts and classifies the segment following the
// DevLogic keyword. A "normal" channel segment carries an ASCII letter, a
// digit, and a Hangul syllable all at once; anything else is treated as a
// new channel. The returned display string is the normalized segment,
// empty when the keyword is absent or nothing follows it (in which case
// both flags are false).
func ClassifyDevLogicPacket(text string) (display string, isNew, isNormal bool) {
	start := strings.Index(text, DevLogicKeyword)
	if start < 0 {
		return "", false, false
	}
	segment := text[start+len(DevLogicKeyword):]

	// Bound by rune count so a multi-byte syllable is never cut in half.
	runes := []rune(segment)
	if len(runes) > devLogicSegmentLen {
		runes = runes[:devLogicSegmentLen]
	}
	display = Normalize(string(runes))
	if display == "" {
		return "", false, false
	}

	isNormal = hasASCIILetter(display) && hasASCIIDigit(display) && hasHangul(display)
	return display, !isNormal, isNormal
}

// DevLogicState remembers the most recent DevLogic sighting for the status
// display. The packet pipeline writes it; the UI ticker reads it.
type DevLogicState struct {
	mu             sync.Mutex
	lastDetectedAt time.Time
	lastPacket     string
	lastIsNew      bool
	alertMessage   string
	alertPacket    string
}

// Update records a DevLogic classification result.
func (s *DevLogicState) Update(display string, isNew bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastDetectedAt = time.Now()
	s.lastPacket = display
	s.lastIsNew = isNew
	if isNew {
		s.alertMessage = "new channel!!"
	} else {
		s.alertMessage = "channel detected"
	}
	s.alertPacket = display
}

// MarkSelection records a selection-window sighting.
func (s *DevLogicState) MarkSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastDetectedAt = time.Now()
	s.alertMessage = "selection window detected"
	s.alertPacket = ""
}

// Alert renders the current alert line, or "" when nothing has been seen.
func (s *DevLogicState) Alert() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastDetectedAt.IsZero() || s.alertMessage == "" {
		return ""
	}
	elapsed := int(time.Since(s.lastDetectedAt).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	if s.alertPacket != "" {
		return fmt.Sprintf("%s %s (%ds ago)", s.alertMessage, s.alertPacket, elapsed)
	}
	return fmt.Sprintf("%s (%ds ago)", s.alertMessage, elapsed)
}

// LastIsNew reports whether the most recent DevLogic packet classified as a
// new channel.
func (s *DevLogicState) LastIsNew() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastIsNew
}

// Reset clears the remembered sighting.
func (s *DevLogicState) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastDetectedAt = time.Time{}
	s.lastPacket = ""
	s.lastIsNew = false
	s.alertMessage = ""
	s.alertPacket = ""
}
