package core

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog/log"
)

// Point is a screen coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DelaySettings is the persisted form of every timing field, in
// milliseconds (counts excepted).
type DelaySettings struct {
	BeforeCancelMS       int `json:"before_cancel_ms"`
	BeforeMenuMS         int `json:"before_menu_ms"`
	BeforeChannelMS      int `json:"before_channel_ms"`
	BeforeRowMS          int `json:"before_row_ms"`
	BeforeEnterMS        int `json:"before_enter_ms"`
	RepeatCount          int `json:"repeat_count"`
	NewlineBeforeArrowMS int `json:"newline_before_arrow_ms"`
	NewlineBeforeRowMS   int `json:"newline_before_row_ms"`
	NewlineBeforeEnterMS int `json:"newline_before_enter_ms"`

	BetweenMoreReloadMS int `json:"between_more_reload_ms"`
	SetBeforeEnterMS    int `json:"set_before_enter_ms"`
	LoginIntervalMS     int `json:"login_interval_ms"`
	CharacterIntervalMS int `json:"character_interval_ms"`

	ChannelWatchIntervalMS int `json:"channel_watch_interval_ms"`
	ChannelTimeoutMS       int `json:"channel_timeout_ms"`
}

// AppState is everything the tool persists between runs: named click
// coordinates, the six row-coordinate banks, timing settings, and mode
// flags. Controllers never touch the file; they read live values through
// accessor closures built over this struct.
//
// All access goes through the methods; the mutex covers concurrent reads
// from the UI while the dispatcher goroutine applies edits.
type AppState struct {
	mu sync.Mutex

	Coordinates map[string]Point `json:"coordinates"`
	RowBanks    [6]Point         `json:"row_banks"`
	RowBank     int              `json:"row_bank"`

	Delays DelaySettings `json:"delays"`

	NewlineAfterChannel bool `json:"newline_after_channel"`
	EscClick            bool `json:"esc_click"`
	SetAutomation       bool `json:"set_automation"`
	TreatNormalAsNew    bool `json:"treat_normal_as_new"`

	CapturePort   int    `json:"capture_port"`
	CaptureDevice string `json:"capture_device"`

	Actuator   string `json:"actuator"`
	SerialPort string `json:"serial_port"`
}

// NewAppState returns the default state for a fresh install.
func NewAppState() *AppState {
	return &AppState{
		Coordinates: make(map[string]Point),
		RowBank:     1,
		Delays: DelaySettings{
			BeforeCancelMS:         DefaultBeforeCancelMS,
			BeforeMenuMS:           DefaultBeforeMenuMS,
			BeforeChannelMS:        DefaultBeforeChannelMS,
			BeforeRowMS:            DefaultBeforeRowMS,
			BeforeEnterMS:          DefaultBeforeEnterMS,
			RepeatCount:            DefaultRepeatCount,
			NewlineBeforeArrowMS:   DefaultNewlineBeforeArrowMS,
			NewlineBeforeRowMS:     DefaultNewlineBeforeRowMS,
			NewlineBeforeEnterMS:   DefaultNewlineBeforeEnterMS,
			BetweenMoreReloadMS:    DefaultBetweenMoreReloadMS,
			SetBeforeEnterMS:       DefaultSetBeforeEnterMS,
			LoginIntervalMS:        DefaultLoginIntervalMS,
			CharacterIntervalMS:    DefaultCharacterIntervalMS,
			ChannelWatchIntervalMS: DefaultChannelWatchIntervalMS,
			ChannelTimeoutMS:       DefaultChannelTimeoutMS,
		},
		NewlineAfterChannel: true,
		CapturePort:         DefaultCapturePort,
		Actuator:            "robotgo",
	}
}

// Point looks up a named coordinate. The "row" key resolves through the
// active row bank.
func (s *AppState) Point(key string) (Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key == "row" {
		bank := s.RowBank
		if bank < 1 || bank > len(s.RowBanks) {
			return Point{}, false
		}
		p := s.RowBanks[bank-1]
		if p == (Point{}) {
			return Point{}, false
		}
		return p, true
	}
	p, ok := s.Coordinates[key]
	return p, ok
}

// SetPoint stores a named coordinate.
func (s *AppState) SetPoint(key string, p Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key == "row" {
		if s.RowBank >= 1 && s.RowBank <= len(s.RowBanks) {
			s.RowBanks[s.RowBank-1] = p
		}
		return
	}
	s.Coordinates[key] = p
}

// CycleRowBank advances to the next of the six row banks and returns the
// new bank number. Bank 1 implies newline mode; the other banks disable it.
func (s *AppState) CycleRowBank() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RowBank = s.RowBank%len(s.RowBanks) + 1
	s.NewlineAfterChannel = s.RowBank == 1
	return s.RowBank
}

// Snapshot returns a copy of the delay settings.
func (s *AppState) Snapshot() DelaySettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Delays
}

// DelayMS returns a clamped delay accessor over one settings field.
func (s *AppState) DelayMS(field func(*DelaySettings) int) func() int {
	return func() int {
		s.mu.Lock()
		defer s.mu.Unlock()
		return ClampDelayMS(field(&s.Delays))
	}
}

// Count returns a clamped count accessor over one settings field.
func (s *AppState) Count(field func(*DelaySettings) int) func() int {
	return func() int {
		s.mu.Lock()
		defer s.mu.Unlock()
		return ClampCount(field(&s.Delays))
	}
}

// Flag returns a live accessor over one boolean field.
func (s *AppState) Flag(field func(*AppState) bool) func() bool {
	return func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return field(s)
	}
}

// SetFlag applies a mutation under the lock.
func (s *AppState) SetFlag(apply func(*AppState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	apply(s)
}

// LoadAppState reads the state file. A missing file yields defaults; a
// corrupt file is logged and also yields defaults, so startup never fails
// on bad on-disk state.
func LoadAppState(path string) *AppState {
	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("could not read state file, using defaults")
		}
		return NewAppState()
	}
	state := NewAppState()
	if err := json.Unmarshal(raw, state); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("could not decode state file, using defaults")
		return NewAppState()
	}
	if state.Coordinates == nil {
		state.Coordinates = make(map[string]Point)
	}
	if state.CapturePort <= 0 || state.CapturePort > 65535 {
		state.CapturePort = DefaultCapturePort
	}
	log.Info().Str("path", path).Msg("state loaded")
	return state
}

// SaveAppState writes the state file with a readable indent.
func (s *AppState) SaveAppState(path string) error {
	s.mu.Lock()
	raw, err := json.MarshalIndent(s, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	log.Info().Str("path", path).Msg("state saved")
	return nil
}
