package utils

import "testing"

func TestParseID(t *testing.T) {
	tests := []struct {
		in     string
		want   uint
		wantOK bool
	}{
		{"1", 1, true},
		{"42", 42, true},
		{"007", 7, true},
		{"4294967295", 4294967295, true},
		{"4294967296", 0, false}, // overflow
		{"", 0, false},
		{"0", 0, false},
		{"-3", 0, false},
		{"+7", 0, false},
		{"abc", 0, false},
		{"1.5", 0, false},
		{" 1", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseID(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseID(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}
