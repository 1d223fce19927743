package utils

import (
	"testing"
	"time"
)

func TestDayUTC(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			"midnight stays",
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"intraday truncates",
			time.Date(2024, 1, 1, 18, 30, 45, 12, time.UTC),
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			"offset zone converts first",
			time.Date(2024, 1, 2, 3, 0, 0, 0, loc), // 2024-01-01 21:30 UTC
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DayUTC(tt.in); !got.Equal(tt.want) {
				t.Errorf("DayUTC(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2024-01-01")
	if err != nil {
		t.Fatalf("ParseDate error: %v", err)
	}
	want := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDate = %v, want %v", got, want)
	}

	if _, err := ParseDate("01/01/2024"); err == nil {
		t.Error("expected an error for a non-ISO date")
	}
}

func TestFormatDate(t *testing.T) {
	in := time.Date(2024, 1, 1, 23, 59, 0, 0, time.UTC)
	if got := FormatDate(in); got != "2024-01-01" {
		t.Errorf("FormatDate = %q, want %q", got, "2024-01-01")
	}
}

func TestIsBusinessDay(t *testing.T) {
	// 2024-01-01 is a Monday.
	for d := 1; d <= 5; d++ {
		if !IsBusinessDay(time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("2024-01-0%d should be a business day", d)
		}
	}
	for d := 6; d <= 7; d++ {
		if IsBusinessDay(time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("2024-01-0%d should not be a business day", d)
		}
	}
}

func TestPrevNextBusinessDay(t *testing.T) {
	monday := time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC)

	prev := PrevBusinessDay(monday)
	if want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC); !prev.Equal(want) {
		t.Errorf("PrevBusinessDay(Monday) = %v, want Friday %v", prev, want)
	}

	friday := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	next := NextBusinessDay(friday)
	if !next.Equal(monday) {
		t.Errorf("NextBusinessDay(Friday) = %v, want Monday %v", next, monday)
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"same day", "2024-01-01", "2024-01-01", 1},
		{"three days", "2024-01-01", "2024-01-03", 3},
		{"inverted", "2024-01-03", "2024-01-01", 0},
		{"across months", "2024-01-30", "2024-02-02", 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, _ := ParseDate(tt.start)
			end, _ := ParseDate(tt.end)
			if got := DaysBetween(start, end); got != tt.want {
				t.Errorf("DaysBetween(%s, %s) = %d, want %d", tt.start, tt.end, got, tt.want)
			}
		})
	}
}
