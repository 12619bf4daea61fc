package capture

import "testing"

func TestManagerDefaultsDevice(t *testing.T) {
	m := NewManager("", 32800, func(string) {})
	if m.device != "any" {
		t.Errorf("device = %q, want any", m.device)
	}
	if m.Running() {
		t.Error("fresh manager reports running")
	}
}

func TestManagerSetPort(t *testing.T) {
	m := NewManager("any", 32800, func(string) {})
	for _, bad := range []int{0, -1, 65536} {
		if err := m.SetPort(bad); err == nil {
			t.Errorf("SetPort(%d) accepted", bad)
		}
	}
	if err := m.SetPort(4000); err != nil {
		t.Errorf("SetPort(4000): %v", err)
	}
	if m.port != 4000 {
		t.Errorf("port = %d", m.port)
	}
}
