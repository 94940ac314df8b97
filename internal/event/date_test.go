package event

import (
	"testing"
	"time"
)

func eastern(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("loading timezone: %v", err)
	}
	return loc
}

func TestParseAPITimestamp(t *testing.T) {
	got, err := ParseAPITimestamp("2024-06-01T14:30:00.000Z")
	if err != nil {
		t.Fatalf("ParseAPITimestamp() error: %v", err)
	}
	want := time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseAPITimestamp() = %v, want %v", got, want)
	}
}

func TestParseAPITimestampErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"no millis", "2024-06-01T14:30:00Z"},
		{"garbage", "not-a-date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAPITimestamp(tt.input); err == nil {
				t.Errorf("expected error for %q", tt.input)
			}
		})
	}
}

func TestFormatClockEastern(t *testing.T) {
	loc := eastern(t)

	tests := []struct {
		name string
		utc  string
		want string
	}{
		{
			// June: EDT, UTC-4. No leading zero on the hour.
			name: "summer daylight time",
			utc:  "2024-06-01T14:30:00.000Z",
			want: "10:30 AM",
		},
		{
			// January: EST, UTC-5.
			name: "winter standard time",
			utc:  "2024-01-15T14:30:00.000Z",
			want: "9:30 AM",
		},
		{
			name: "crosses midnight into previous day",
			utc:  "2024-06-01T02:00:00.000Z",
			want: "10:00 PM",
		},
		{
			name: "afternoon single digit hour",
			utc:  "2024-06-01T18:30:00.000Z",
			want: "2:30 PM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, err := ParseAPITimestamp(tt.utc)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if got := FormatClock(ts, loc); got != tt.want {
				t.Errorf("FormatClock(%s) = %q, want %q", tt.utc, got, tt.want)
			}
		})
	}
}

func TestFormatDateEastern(t *testing.T) {
	loc := eastern(t)

	// 02:00 UTC on June 1 is still May 31 in Eastern time
	ts, err := ParseAPITimestamp("2024-06-01T02:00:00.000Z")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := FormatDate(ts, loc); got != "31/05/2024" {
		t.Errorf("FormatDate() = %q, want 31/05/2024", got)
	}

	ts, err = ParseAPITimestamp("2024-06-01T14:30:00.000Z")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got := FormatDate(ts, loc); got != "01/06/2024" {
		t.Errorf("FormatDate() = %q, want 01/06/2024", got)
	}
}
