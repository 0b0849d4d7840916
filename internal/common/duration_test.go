package common

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input    string
		expected time.Duration
		wantErr  bool
	}{
		// Go style
		{"30s", 30 * time.Second, false},
		{"2m", 2 * time.Minute, false},
		{"1h30m", 90 * time.Minute, false},
		{" 45s ", 45 * time.Second, false},

		// ISO 8601
		{"PT30S", 30 * time.Second, false},
		{"PT2M", 2 * time.Minute, false},
		{"PT1H30M", 90 * time.Minute, false},

		// Invalid
		{"", 0, true},
		{"soon", 0, true},
		{"30 seconds", 0, true},
	}

	for _, test := range tests {
		result, err := ParseDuration(test.input)
		if test.wantErr {
			if err == nil {
				t.Errorf("ParseDuration(%q) expected error, got %v", test.input, result)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDuration(%q) unexpected error: %v", test.input, err)
			continue
		}
		if result != test.expected {
			t.Errorf("ParseDuration(%q) = %v, expected %v", test.input, result, test.expected)
		}
	}
}

func TestFormatDurationRemaining(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{0, "0 seconds"},
		{time.Second, "1 second"},
		{90 * time.Second, "1 minute, 30 seconds"},
		{time.Hour, "1 hour"},
		{26*time.Hour + 2*time.Minute, "1 day, 2 hours, 2 minutes"},
		{500 * time.Millisecond, "less than a second"},
	}

	for _, test := range tests {
		result := FormatDurationRemaining(test.input)
		if result != test.expected {
			t.Errorf("FormatDurationRemaining(%v) = %q, expected %q", test.input, result, test.expected)
		}
	}
}
