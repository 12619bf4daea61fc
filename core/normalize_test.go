package core

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"ascii alnum kept", "Abc123", "Abc123"},
		{"hangul kept", "서버이름", "서버이름"},
		{"punctuation replaced", "A.B,C", "A-B-C"},
		{"control bytes replaced", "A\x00\x01B", "A--B"},
		{"mixed channel value", "S.서12.", "S-서12-"},
		{"spaces replaced", "a b", "a-b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	in := "Chan!!nel 서버07 \x7f"
	once := Normalize(in)
	if twice := Normalize(once); twice != once {
		t.Errorf("second pass changed output: %q -> %q", once, twice)
	}
}
