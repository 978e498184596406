package models

import "testing"

func TestMatchesName(t *testing.T) {
	tests := []struct {
		name     string
		rendered string
		expected string
		want     bool
	}{
		{
			name:     "truncated rendering matches full name",
			rendered: "HP ZBook 17 G2 Mo…",
			expected: "HP ZBook 17 G2 Mobile Workstation",
			want:     true,
		},
		{
			name:     "different product does not match",
			rendered: "HP Elite x2 1011 G1 Tablet",
			expected: "HP Z8000 Bluetooth Mouse",
			want:     false,
		},
		{
			name:     "case is ignored",
			rendered: "HP Z8000 BLUETOOTH MOUSE",
			expected: "hp z8000 bluetooth mouse",
			want:     true,
		},
		{
			name:     "only the first ten characters are compared",
			rendered: "HP ZBook 1X something else",
			expected: "HP ZBook 17 G2 Mobile Workstation",
			want:     true,
		},
		{
			name:     "eleventh character difference is ignored but tenth is not",
			rendered: "HP ZBook 2",
			expected: "HP ZBook 17 G2 Mobile Workstation",
			want:     false,
		},
		{
			name:     "short expected name uses its full length",
			rendered: "Mouse pad deluxe",
			expected: "Mouse",
			want:     true,
		},
		{
			name:     "rendered shorter than prefix",
			rendered: "HP ZB",
			expected: "HP ZBook 17 G2 Mobile Workstation",
			want:     false,
		},
		{
			name:     "empty rendered name",
			rendered: "",
			expected: "HP Z8000 Bluetooth Mouse",
			want:     false,
		},
		{
			name:     "empty expected name never matches",
			rendered: "anything",
			expected: "",
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchesName(tt.rendered, tt.expected); got != tt.want {
				t.Errorf("MatchesName(%q, %q) = %v, want %v", tt.rendered, tt.expected, got, tt.want)
			}
		})
	}
}
