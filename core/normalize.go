// Package core implements the channel-name detection engine: payload text
// normalization, streaming segment recorders, the channel registry, the
// detection event queue, and the packet classifiers that drive the
// controllers.
//
// The pipeline is: capture callback -> Normalize -> recorder Feed ->
// registry classification -> detection event queue -> detection sequence.
// Everything in this package is deterministic and free of I/O so the
// parsing behavior can be tested without a live capture device.
package core

import "strings"

// Placeholder is the character substituted for every rune that is not part
// of the canonical channel-name alphabet. The recorders' value patterns are
// written against this placeholder, so changing it means changing them too.
const Placeholder = '-'

// Normalize maps arbitrary decoded payload text onto the canonical
// character stream consumed by the segment recorders. ASCII letters, ASCII
// digits, and Hangul syllables pass through unchanged; every other rune
// (protocol framing bytes, whitespace, punctuation, invalid sequences)
// collapses to Placeholder.
//
// Normalize is total over any input, returns "" for "", and is idempotent:
// the placeholder itself maps to itself.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if isCanonical(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(Placeholder)
		}
	}
	return b.String()
}

func isCanonical(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r >= 0xAC00 && r <= 0xD7A3: // Hangul syllables
		return true
	}
	return false
}

func hasHangul(s string) bool {
	for _, r := range s {
		if r >= 0xAC00 && r <= 0xD7A3 {
			return true
		}
	}
	return false
}

func hasASCIILetter(s string) bool {
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			return true
		}
	}
	return false
}

func hasASCIIDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
