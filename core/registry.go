package core

import (
	"regexp"
	"strings"
	"sync"
	"time"
)

// NamePattern matches a fully extracted channel name: uppercase letter,
// Hangul syllable, 2-3 digit channel number, separators already stripped.
var NamePattern = regexp.MustCompile(`[A-Z][가-힣]\d{2,3}`)

// spanNamePattern matches channel names inside a raw recorder span, where
// the letter and the syllable may still be split by one placeholder.
var spanNamePattern = regexp.MustCompile(`[A-Z]-?[가-힣]\d{2,3}`)

// CaptureRecord is one registry entry worth of history: the raw captured
// content, when it arrived, and which names in it were first sightings.
type CaptureRecord struct {
	At       time.Time
	Content  string
	Names    []string
	NewNames []string
}

// Registry deduplicates channel names across a detection session and keeps
// the capture history for display. Names are recorded at most once;
// classification and insertion are atomic under one lock. Mutation happens
// on the capture goroutine, reads come from the UI, so the lock stays.
type Registry struct {
	mu      sync.Mutex
	pattern *regexp.Regexp
	seen    map[string]struct{}
	names   []string
	records []CaptureRecord
}

// NewRegistry builds an empty registry using spanNamePattern.
func NewRegistry() *Registry {
	return &Registry{
		pattern: spanNamePattern,
		seen:    make(map[string]struct{}),
	}
}

// ClassifyAndRecord atomically checks membership and inserts the name if
// absent. It reports whether the name was new. Empty names are never new.
func (r *Registry) ClassifyAndRecord(name string) bool {
	if name == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.insertLocked(name)
}

func (r *Registry) insertLocked(name string) bool {
	if _, ok := r.seen[name]; ok {
		return false
	}
	r.seen[name] = struct{}{}
	r.names = append(r.names, name)
	return true
}

// Record extracts every channel name from a captured span, classifies each
// against the registry, and appends a history record when the capture
// contained at least one first sighting. It returns all extracted names and
// the subset that was new, in extraction order. Names are stored with
// separators stripped.
func (r *Registry) Record(content string, at time.Time) (names, newNames []string) {
	names = r.pattern.FindAllString(content, -1)
	if len(names) == 0 {
		return nil, nil
	}
	for i, name := range names {
		names[i] = strings.ReplaceAll(name, string(Placeholder), "")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if r.insertLocked(name) {
			newNames = append(newNames, name)
		}
	}
	if len(newNames) > 0 {
		r.records = append(r.records, CaptureRecord{
			At:       at,
			Content:  content,
			Names:    names,
			NewNames: newNames,
		})
	}
	return names, newNames
}

// Names returns every recorded channel name in first-seen order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Records returns a copy of the capture history.
func (r *Registry) Records() []CaptureRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CaptureRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Len reports how many distinct names have been recorded.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.names)
}

// Clear wipes the name set and the capture history. Only an explicit user
// action calls this; nothing expires on its own.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = make(map[string]struct{})
	r.names = nil
	r.records = nil
}
