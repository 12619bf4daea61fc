package controllers

import (
	"reflect"
	"testing"
)

func testCoords() fakeCoords {
	return fakeCoords{
		"menu":    {X: 10, Y: 11},
		"channel": {X: 20, Y: 21},
		"row":     {X: 30, Y: 31},
		"arrow":   {X: 40, Y: 41},
		"esc":     {X: 50, Y: 51},
	}
}

func TestMacroStepAlternation(t *testing.T) {
	act := &fakeActuator{}
	m := NewMacroController(testCoords(), act, zeroDelays(1), flag(false), nil)

	if m.CurrentStep() != 1 {
		t.Fatalf("initial step = %d", m.CurrentStep())
	}
	for i, want := range []int{2, 1, 2, 1} {
		if err := m.RunStep(false); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if got := m.CurrentStep(); got != want {
			t.Fatalf("after run %d step = %d, want %d", i, got, want)
		}
	}
}

func TestMacroStepOneClicks(t *testing.T) {
	act := &fakeActuator{}
	m := NewMacroController(testCoords(), act, zeroDelays(1), flag(false), nil)

	if err := m.RunStep(false); err != nil {
		t.Fatal(err)
	}
	want := []string{"click 10,11", "click 20,21"}
	if got := act.Events(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestMacroResetCancelModes(t *testing.T) {
	tests := []struct {
		name     string
		escClick bool
		want     []string
	}{
		{"esc keypress", false, []string{"key esc", "click 10,11", "click 20,21"}},
		{"esc click", true, []string{"click 50,51", "click 10,11", "click 20,21"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act := &fakeActuator{}
			m := NewMacroController(testCoords(), act, zeroDelays(1), flag(tt.escClick), nil)

			if err := m.ResetAndRunFirst(false); err != nil {
				t.Fatal(err)
			}
			if got := act.Events(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("events = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMacroResetMissingEscCoordinate(t *testing.T) {
	act := &fakeActuator{}
	coords := testCoords()
	delete(coords, "esc")
	var statuses []string
	m := NewMacroController(coords, act, zeroDelays(1), flag(true),
		func(msg string) { statuses = append(statuses, msg) })

	if err := m.ResetAndRunFirst(false); err == nil {
		t.Fatal("missing esc coordinate did not abort")
	}
	if got := act.Events(); len(got) != 0 {
		t.Errorf("aborted reset still produced events %v", got)
	}
	if len(statuses) == 0 {
		t.Error("abort produced no status message")
	}
}

func TestMacroStepTwoRepeats(t *testing.T) {
	act := &fakeActuator{}
	m := NewMacroController(testCoords(), act, zeroDelays(3), flag(false), nil)

	if err := m.RunStep(false); err != nil { // step 1
		t.Fatal(err)
	}
	act.Reset()
	if err := m.RunStep(false); err != nil { // step 2
		t.Fatal(err)
	}
	want := []string{
		"click 30,31", "key enter",
		"click 30,31", "key enter",
		"click 30,31", "key enter",
	}
	if got := act.Events(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestMacroStepTwoNewlineMode(t *testing.T) {
	act := &fakeActuator{}
	m := NewMacroController(testCoords(), act, zeroDelays(2), flag(false), nil)

	if err := m.RunStep(true); err != nil { // step 1
		t.Fatal(err)
	}
	act.Reset()
	if err := m.RunStep(true); err != nil { // step 2
		t.Fatal(err)
	}
	want := []string{
		"click 40,41", "click 30,31", "key enter",
		"click 40,41", "click 30,31", "key enter",
	}
	if got := act.Events(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestMacroNewlineMissingArrowAborts(t *testing.T) {
	act := &fakeActuator{}
	coords := testCoords()
	delete(coords, "arrow")
	m := NewMacroController(coords, act, zeroDelays(1), flag(false), nil)

	if err := m.RunStep(true); err != nil { // step 1
		t.Fatal(err)
	}
	act.Reset()
	if err := m.RunStep(true); err == nil {
		t.Fatal("missing arrow coordinate did not abort")
	}
	if got := act.Events(); len(got) != 0 {
		t.Errorf("aborted step still produced events %v", got)
	}
	if m.CurrentStep() != 2 {
		t.Error("aborted step advanced the counter")
	}
}

func TestMacroMissingCoordinateAborts(t *testing.T) {
	tests := []struct {
		name   string
		coords fakeCoords
		step   int
	}{
		{"no menu", fakeCoords{"channel": {X: 1, Y: 1}, "row": {X: 1, Y: 1}}, 1},
		{"no channel", fakeCoords{"menu": {X: 1, Y: 1}, "row": {X: 1, Y: 1}}, 1},
		{"no row", testCoords(), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act := &fakeActuator{}
			var statuses []string
			m := NewMacroController(tt.coords, act, zeroDelays(1), flag(false),
				func(msg string) { statuses = append(statuses, msg) })

			if tt.step == 2 {
				if err := m.RunStep(false); err != nil {
					t.Fatal(err)
				}
				act.Reset()
				delete(tt.coords, "row")
			}
			before := m.CurrentStep()
			if err := m.RunStep(false); err == nil {
				t.Fatal("missing coordinate did not abort")
			}
			if got := act.Events(); len(got) != 0 {
				t.Errorf("aborted step still produced events %v", got)
			}
			if m.CurrentStep() != before {
				t.Error("aborted step advanced the counter")
			}
			if len(statuses) == 0 {
				t.Error("abort produced no status message")
			}
		})
	}
}

func TestMacroResetAndRunFirst(t *testing.T) {
	act := &fakeActuator{}
	m := NewMacroController(testCoords(), act, zeroDelays(1), flag(false), nil)

	if err := m.RunStep(false); err != nil { // now at step 2
		t.Fatal(err)
	}
	act.Reset()
	if err := m.ResetAndRunFirst(false); err != nil {
		t.Fatal(err)
	}
	want := []string{"key esc", "click 10,11", "click 20,21"}
	if got := act.Events(); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if m.CurrentStep() != 2 {
		t.Errorf("step = %d after reset-and-run, want 2", m.CurrentStep())
	}
}
