package utils

import "testing"

func TestNormalizeSerial(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"fx6 0001", "FX6-0001"},
		{"FX6-0001", "FX6-0001"},
		{"  c70 / 0001  ", "C70-0001"},
		{"ap600d___0001", "AP600D-0001"},
		{"", ""},
		{"---", ""},
		{"a b c", "A-B-C"},
	}

	for _, tt := range tests {
		if got := NormalizeSerial(tt.in); got != tt.want {
			t.Errorf("NormalizeSerial(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
