package core

import (
	"regexp"
	"strings"
	"time"
)

// DefaultAnchor is the keyword that marks the start of a channel-name block
// inside normalized payload text.
const DefaultAnchor = "ChannelName"

// DefaultAnchorWindow bounds how far apart two anchor repeats may sit and
// still be treated as the same channel-name block (in bytes of normalized
// text).
const DefaultAnchorWindow = 100

// DefaultValuePattern matches a channel-name value in normalized text: one
// uppercase letter, a Hangul syllable, and a 2-3 digit channel number, with
// the placeholder separators still in place.
var DefaultValuePattern = regexp.MustCompile(`[A-Z]-[가-힣]\d{2,3}-`)

// RecorderConfig parameterizes the segment recorders. The anchor keyword,
// the value pattern, and the anchor window were hard-coded in earlier
// revisions of this tool; keeping them configurable lets one recorder type
// serve every capture profile.
type RecorderConfig struct {
	Anchor       string
	Pattern      *regexp.Regexp
	AnchorWindow int
}

// DefaultRecorderConfig returns the production capture profile.
func DefaultRecorderConfig() RecorderConfig {
	return RecorderConfig{
		Anchor:       DefaultAnchor,
		Pattern:      DefaultValuePattern,
		AnchorWindow: DefaultAnchorWindow,
	}
}

// SegmentRecorder is the simple streaming parser: it buffers normalized
// payload text, finds the anchor keyword, and emits the first value-pattern
// match found after it, with separators stripped. A single Feed may emit
// zero or more captures. The buffer is truncated whenever no anchor is
// present so noise-only streams cannot grow it past the anchor length.
type SegmentRecorder struct {
	cfg        RecorderConfig
	onCapture  func(token string)
	onActivity func(at time.Time)
	buf        string
}

// NewSegmentRecorder builds a simple recorder. onCapture is required;
// onActivity may be nil and fires on every anchor sighting, whether or not
// a capture completes.
func NewSegmentRecorder(cfg RecorderConfig, onCapture func(string), onActivity func(time.Time)) *SegmentRecorder {
	return &SegmentRecorder{
		cfg:        cfg,
		onCapture:  onCapture,
		onActivity: onActivity,
	}
}

// Feed appends a payload chunk to the recorder. Chunk boundaries are
// arbitrary: the same captures come out no matter how the stream is split.
func (r *SegmentRecorder) Feed(text string) {
	normalized := Normalize(text)
	if normalized == "" {
		return
	}
	if r.onActivity != nil && strings.Contains(normalized, r.cfg.Anchor) {
		r.onActivity(time.Now())
	}
	r.buf += normalized
	r.process()
}

func (r *SegmentRecorder) process() {
	for {
		anchorIdx := strings.Index(r.buf, r.cfg.Anchor)
		if anchorIdx < 0 {
			// Keep only a tail long enough to complete a split anchor.
			if len(r.buf) > len(r.cfg.Anchor) {
				r.buf = r.buf[len(r.buf)-len(r.cfg.Anchor):]
			}
			return
		}
		if r.onActivity != nil {
			r.onActivity(time.Now())
		}

		searchFrom := anchorIdx + len(r.cfg.Anchor)
		loc := r.cfg.Pattern.FindStringIndex(r.buf[searchFrom:])
		if loc == nil {
			// Value not complete yet: hold from the anchor onwards.
			r.buf = r.buf[anchorIdx:]
			return
		}

		start, end := searchFrom+loc[0], searchFrom+loc[1]
		token := strings.ReplaceAll(r.buf[start:end], string(Placeholder), "")
		r.onCapture(token)
		r.buf = r.buf[end:]
	}
}

// WindowRecorder is the anchor-window variant of the segment recorder. It
// is more robust against payloads where one channel-name block spans
// several anchor repeats: instead of matching a value pattern directly, it
// absorbs every anchor repeat that lands within AnchorWindow bytes of the
// previous one and, once the block stops extending, emits the whole span.
//
// A block is only emitted if at least one follow-up anchor was absorbed;
// a lone anchor with no repeat is treated as noise and discarded. The
// caller extracts channel names from the emitted span (see Registry).
type WindowRecorder struct {
	cfg        RecorderConfig
	onCapture  func(span string)
	onActivity func(at time.Time)

	buf           string
	active        bool
	start         int
	lastAnchor    int
	cursor        int
	foundFollowup bool
}

// NewWindowRecorder builds an anchor-window recorder. onCapture receives
// the full block span (anchors included); onActivity may be nil.
func NewWindowRecorder(cfg RecorderConfig, onCapture func(string), onActivity func(time.Time)) *WindowRecorder {
	return &WindowRecorder{
		cfg:        cfg,
		onCapture:  onCapture,
		onActivity: onActivity,
	}
}

// Feed appends a payload chunk and advances the scan. Like the simple
// recorder, a single Feed may emit zero or more block captures and the
// buffer stays bounded when the stream carries no anchors.
func (w *WindowRecorder) Feed(text string) {
	normalized := Normalize(text)
	if normalized == "" {
		return
	}
	w.buf += normalized
	w.process()
}

func (w *WindowRecorder) process() {
	for {
		if !w.active {
			idx := strings.Index(w.buf, w.cfg.Anchor)
			if idx < 0 {
				if len(w.buf) > len(w.cfg.Anchor) {
					w.buf = w.buf[len(w.buf)-len(w.cfg.Anchor):]
				}
				return
			}
			w.buf = w.buf[idx:]
			w.active = true
			w.start = 0
			w.lastAnchor = 0
			w.cursor = len(w.cfg.Anchor)
			w.foundFollowup = false
			w.activity()
			continue
		}

		rel := strings.Index(w.buf[w.cursor:], w.cfg.Anchor)
		if rel >= 0 {
			next := w.cursor + rel
			if next-w.lastAnchor <= w.cfg.AnchorWindow {
				// Same block: absorb the repeat and keep scanning.
				w.lastAnchor = next
				w.cursor = next + len(w.cfg.Anchor)
				w.foundFollowup = true
				w.activity()
				continue
			}
			// A later anchor beyond the window closes the current block.
			w.finishBlock()
			continue
		}

		if len(w.buf)-w.lastAnchor > w.cfg.AnchorWindow {
			// The stream moved on without another repeat.
			w.finishBlock()
			continue
		}
		// The block may still be extending; wait for more data.
		return
	}
}

// finishBlock emits the accumulated span if it contained at least one
// anchor repeat, then discards the consumed bytes and goes back to the
// inactive scan.
func (w *WindowRecorder) finishBlock() {
	end := w.lastAnchor + len(w.cfg.Anchor)
	if w.foundFollowup {
		w.onCapture(w.buf[w.start:end])
	}
	w.buf = w.buf[end:]
	w.active = false
}

func (w *WindowRecorder) activity() {
	if w.onActivity != nil {
		w.onActivity(time.Now())
	}
}
