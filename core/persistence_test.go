package core

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAppStateRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")

	s := NewAppState()
	s.SetPoint("menu", Point{X: 100, Y: 200})
	s.SetPoint("row", Point{X: 30, Y: 40})
	s.SetFlag(func(st *AppState) { st.EscClick = true })
	s.Delays.RepeatCount = 3
	if err := s.SaveAppState(path); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded := LoadAppState(path)
	if p, ok := loaded.Point("menu"); !ok || p != (Point{X: 100, Y: 200}) {
		t.Errorf("menu = %v %v", p, ok)
	}
	if p, ok := loaded.Point("row"); !ok || p != (Point{X: 30, Y: 40}) {
		t.Errorf("row = %v %v", p, ok)
	}
	if !loaded.Flag(func(st *AppState) bool { return st.EscClick })() {
		t.Error("EscClick flag lost")
	}
	if got := loaded.Count(func(d *DelaySettings) int { return d.RepeatCount })(); got != 3 {
		t.Errorf("RepeatCount = %d, want 3", got)
	}
}

func TestLoadAppStateMissingFile(t *testing.T) {
	s := LoadAppState(filepath.Join(t.TempDir(), "absent.json"))
	if s.Delays.BeforeMenuMS != DefaultBeforeMenuMS {
		t.Errorf("BeforeMenuMS = %d, want default", s.Delays.BeforeMenuMS)
	}
	if s.CapturePort != DefaultCapturePort {
		t.Errorf("CapturePort = %d, want default", s.CapturePort)
	}
}

func TestLoadAppStateCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := LoadAppState(path)
	if s.Delays.ChannelTimeoutMS != DefaultChannelTimeoutMS {
		t.Error("corrupt file did not fall back to defaults")
	}
}

func TestAppStateRowBanks(t *testing.T) {
	s := NewAppState()
	if _, ok := s.Point("row"); ok {
		t.Error("unset row bank resolved to a point")
	}

	s.SetPoint("row", Point{X: 1, Y: 1}) // bank 1
	bank := s.CycleRowBank()
	if bank != 2 {
		t.Fatalf("bank = %d, want 2", bank)
	}
	if s.Flag(func(st *AppState) bool { return st.NewlineAfterChannel })() {
		t.Error("newline mode still on outside bank 1")
	}
	if _, ok := s.Point("row"); ok {
		t.Error("bank 2 should be unset")
	}
	s.SetPoint("row", Point{X: 2, Y: 2})

	// Cycle back around to bank 1.
	for s.RowBank != 1 {
		bank = s.CycleRowBank()
	}
	if !s.Flag(func(st *AppState) bool { return st.NewlineAfterChannel })() {
		t.Error("newline mode off in bank 1")
	}
	if p, _ := s.Point("row"); p != (Point{X: 1, Y: 1}) {
		t.Errorf("bank 1 point = %v", p)
	}
}

func TestClamping(t *testing.T) {
	if got := ClampDelayMS(-5); got != 0 {
		t.Errorf("ClampDelayMS(-5) = %d", got)
	}
	if got := ClampCount(0); got != 1 {
		t.Errorf("ClampCount(0) = %d", got)
	}
	if MS(-1) != 0 {
		t.Error("MS(-1) nonzero")
	}
}
