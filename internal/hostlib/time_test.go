package hostlib

import (
	"testing"
	"time"
)

func TestLoadZoneDefaultsToUTC(t *testing.T) {
	loc, err := LoadZone("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc != time.UTC {
		t.Errorf("got %v, want UTC", loc)
	}
}

func TestLoadZoneRejectsUnknown(t *testing.T) {
	if _, err := LoadZone("Not/AZone"); err == nil {
		t.Fatalf("expected error for unknown timezone")
	}
}

func TestTimestampGetterFields(t *testing.T) {
	ts := time.Date(2026, time.March, 5, 13, 30, 45, 0, time.UTC)
	tests := []struct {
		field string
		want  int64
	}{
		{"getFullYear", 2026},
		{"getMonth", 2},
		{"getDayOfMonth", 4},
		{"getDate", 5},
		{"getHours", 13},
		{"getMinutes", 30},
		{"getSeconds", 45},
	}
	for _, tt := range tests {
		got, err := TimestampGetter(ts, time.UTC, tt.field)
		if err != nil {
			t.Fatalf("TimestampGetter(%s): %v", tt.field, err)
		}
		if got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.field, got, tt.want)
		}
	}
}

func TestDurationGetterFields(t *testing.T) {
	d := 2*time.Hour + 30*time.Minute + 15*time.Second
	tests := []struct {
		field string
		want  int64
	}{
		{"getHours", 2},
		{"getMinutes", 150},
		{"getSeconds", 9015},
	}
	for _, tt := range tests {
		got, err := DurationGetter(d, tt.field)
		if err != nil {
			t.Fatalf("DurationGetter(%s): %v", tt.field, err)
		}
		if got != tt.want {
			t.Errorf("%s: got %d, want %d", tt.field, got, tt.want)
		}
	}
}

func TestParseDurationAndTimestamp(t *testing.T) {
	d, err := ParseDuration("1h30m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 90*time.Minute {
		t.Errorf("got %v, want 90m", d)
	}

	ts, err := ParseTimestamp("2026-03-05T13:30:45Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ts.Year() != 2026 {
		t.Errorf("got year %d, want 2026", ts.Year())
	}
}
