package calendar

import (
	"encoding/json"
	"testing"
	"time"
)

func TestAddDaysCrossesMonthAndYear(t *testing.T) {
	d := Date{Year: 2025, Month: time.December, Day: 30}

	if got := d.AddDays(3); got != (Date{Year: 2026, Month: time.January, Day: 2}) {
		t.Fatalf("expected 2026-01-02, got %s", got)
	}
	if got := d.AddDays(-30); got != (Date{Year: 2025, Month: time.November, Day: 30}) {
		t.Fatalf("expected 2025-11-30, got %s", got)
	}
}

func TestDaysUntil(t *testing.T) {
	d := Date{Year: 2026, Month: time.October, Day: 18}

	tests := []struct {
		to   Date
		want int
	}{
		{d, 0},
		{d.AddDays(1), 1},
		{d.AddDays(-7), -7},
		{Date{Year: 2027, Month: time.October, Day: 18}, 365},
		{d.AddDays(-MaxDaysBack), -MaxDaysBack},
	}
	for _, tt := range tests {
		if got := d.DaysUntil(tt.to); got != tt.want {
			t.Errorf("DaysUntil(%s): expected %d, got %d", tt.to, tt.want, got)
		}
	}
}

func TestBoundsCoverWholeDaysInLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	start := Date{Year: 2026, Month: time.March, Day: 10}

	from, to := Bounds(start, 2, loc)

	wantFrom := time.Date(2026, time.March, 10, 0, 0, 0, 0, loc)
	wantTo := time.Date(2026, time.March, 12, 23, 59, 59, 0, loc)
	if !from.Equal(wantFrom) {
		t.Fatalf("expected from %v, got %v", wantFrom, from)
	}
	if !to.Equal(wantTo) {
		t.Fatalf("expected to %v, got %v", wantTo, to)
	}
}

func TestTodayUsesLocation(t *testing.T) {
	instant := time.Date(2026, time.March, 10, 23, 30, 0, 0, time.UTC)
	loc := time.FixedZone("UTC+2", 2*60*60)

	if got := Today(instant, time.UTC); got.Day != 10 {
		t.Fatalf("expected day 10 in UTC, got %s", got)
	}
	if got := Today(instant, loc); got.Day != 11 {
		t.Fatalf("expected day 11 in UTC+2, got %s", got)
	}
}

func TestDateTextRoundTrip(t *testing.T) {
	d := Date{Year: 2026, Month: time.October, Day: 18}

	raw, err := json.Marshal(map[string]Date{"date": d})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"date":"2026-10-18"}` {
		t.Fatalf("unexpected json %s", raw)
	}

	var decoded struct {
		Date Date `json:"date"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Date != d {
		t.Fatalf("expected %s, got %s", d, decoded.Date)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("18/10/2026"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
}
