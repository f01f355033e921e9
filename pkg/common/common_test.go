package common

import (
	"testing"
	"time"
)

func TestGenerateTrxNo(t *testing.T) {
	trx := GenerateTrxNo()
	if len(trx) != 10 {
		t.Errorf("Expected length 10, got %d", len(trx))
	}

	validChars := "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	for _, char := range trx {
		isValid := false
		for _, validChar := range validChars {
			if char == validChar {
				isValid = true
				break
			}
		}
		if !isValid {
			t.Errorf("Invalid character found: %c", char)
		}
	}
}

func TestPercentOf(t *testing.T) {
	// 12% of 1000.00
	if got := PercentOf(100000, 1200); got != 12000 {
		t.Errorf("Expected 12000, got %d", got)
	}
	// Truncates toward zero
	if got := PercentOf(3, 100); got != 0 {
		t.Errorf("Expected 0, got %d", got)
	}
}

func TestProRata(t *testing.T) {
	// 500/1500 of 100,000.00
	if got := ProRata(10000000, 50000, 150000); got != 3333333 {
		t.Errorf("Expected 3333333, got %d", got)
	}
	if got := ProRata(10000000, 0, 150000); got != 0 {
		t.Errorf("Expected 0 for zero part, got %d", got)
	}
	// Large pool and part must not overflow
	big := ProRata(1<<50, 1<<40, 1<<41)
	if big != 1<<49 {
		t.Errorf("Expected %d, got %d", int64(1)<<49, big)
	}
}

func TestWithinMonths(t *testing.T) {
	opened := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	// Exactly on the anniversary counts as within.
	if !WithinMonths(opened, opened.AddDate(0, 3, 0), 3) {
		t.Error("Expected exactly 3 months to be within 3 months")
	}
	if WithinMonths(opened, opened.AddDate(0, 3, 1), 3) {
		t.Error("Expected 3 months + 1 day to be outside 3 months")
	}
}

func TestMonthsElapsed(t *testing.T) {
	opened := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		at   time.Time
		want int
	}{
		{opened, 0},
		{opened.AddDate(0, 0, 27), 0},
		{time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), 1},
		{opened.AddDate(1, 0, 0), 12},
	}
	for _, c := range cases {
		if got := MonthsElapsed(opened, c.at); got != c.want {
			t.Errorf("MonthsElapsed(%v) = %d, want %d", c.at, got, c.want)
		}
	}
}

func TestPeriodWindow(t *testing.T) {
	start, end, err := PeriodWindow("2026-08")
	if err != nil {
		t.Fatalf("PeriodWindow failed: %v", err)
	}
	if start.Month() != time.August || end.Month() != time.September {
		t.Errorf("Unexpected window %v - %v", start, end)
	}

	if _, _, err := PeriodWindow("not-a-period"); err == nil {
		t.Error("Expected error for malformed period")
	}
}

func TestPaginateResponse(t *testing.T) {
	res := PaginateResponse([]int{4, 5, 6}, 7, 2, 3, "")
	if res.Message != "success" {
		t.Errorf("Expected default message, got %q", res.Message)
	}
	if res.LastPage != 3 {
		t.Errorf("Expected last page 3, got %d", res.LastPage)
	}
	if res.NextPage != 3 || res.PrevPage != 1 {
		t.Errorf("Expected next 3 / prev 1, got %d / %d", res.NextPage, res.PrevPage)
	}

	last := PaginateResponse(nil, 7, 3, 3, "done")
	if last.NextPage != 0 {
		t.Errorf("Expected no next page, got %d", last.NextPage)
	}
	if last.Message != "done" {
		t.Errorf("Expected custom message, got %q", last.Message)
	}
}
