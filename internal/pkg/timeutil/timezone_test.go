package timeutil

import (
	"testing"
	"time"
)

func TestFormatDate(t *testing.T) {
	// 23:30 UTC on 31 December is already New Year's Day in Tokyo
	ts := time.Date(2024, 12, 31, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		timezone string
		expected string
	}{
		{timezone: "UTC", expected: "31 December 2024"},
		{timezone: "Asia/Tokyo", expected: "1 January 2025"},
		{timezone: "America/Los_Angeles", expected: "31 December 2024"},
	}

	for _, tt := range tests {
		t.Run(tt.timezone, func(t *testing.T) {
			if got := FormatDate(ts, tt.timezone); got != tt.expected {
				t.Errorf("FormatDate(%s) = %q, want %q", tt.timezone, got, tt.expected)
			}
		})
	}
}

func TestLocation_FallsBackToLocal(t *testing.T) {
	if Location("") != time.Local {
		t.Error("expected local zone for empty name")
	}
	if Location("Not/AZone") != time.Local {
		t.Error("expected local zone for unknown name")
	}
}

func TestIsValidTimezone(t *testing.T) {
	tests := []struct {
		timezone string
		valid    bool
	}{
		{"", true},
		{"Europe/London", true},
		{"Not/AZone", false},
	}

	for _, tt := range tests {
		if got := IsValidTimezone(tt.timezone); got != tt.valid {
			t.Errorf("IsValidTimezone(%q) = %v, want %v", tt.timezone, got, tt.valid)
		}
	}
}
