package common

import (
	"testing"
	"time"
)

func TestPluralizeCoins(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "экокоинов"},
		{1, "экокоин"},
		{2, "экокоина"},
		{4, "экокоина"},
		{5, "экокоинов"},
		{11, "экокоинов"},
		{12, "экокоинов"},
		{14, "экокоинов"},
		{21, "экокоин"},
		{22, "экокоина"},
		{25, "экокоинов"},
		{100, "экокоинов"},
		{101, "экокоин"},
		{111, "экокоинов"},
		{-3, "экокоина"},
	}
	for _, tt := range tests {
		if got := PluralizeCoins(tt.n); got != tt.want {
			t.Errorf("PluralizeCoins(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestDayStart(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Skip("Europe/Moscow недоступен")
	}

	// 23:30 UTC 9 ноября — это уже 02:30 10 ноября по Москве
	moment := time.Date(2025, 11, 9, 23, 30, 0, 0, time.UTC)
	got := DayStart(moment, loc)
	want := time.Date(2025, 11, 10, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Errorf("DayStart() = %v, want %v", got, want)
	}
}

func TestPrevMonth(t *testing.T) {
	tests := []struct {
		t         time.Time
		wantYear  int
		wantMonth time.Month
	}{
		{time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC), 2025, time.October},
		{time.Date(2026, 1, 1, 0, 5, 0, 0, time.UTC), 2025, time.December},
		{time.Date(2025, 3, 31, 23, 59, 0, 0, time.UTC), 2025, time.February},
	}
	for _, tt := range tests {
		y, m := PrevMonth(tt.t, time.UTC)
		if y != tt.wantYear || m != tt.wantMonth {
			t.Errorf("PrevMonth(%v) = %d-%v, want %d-%v", tt.t, y, m, tt.wantYear, tt.wantMonth)
		}
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2025-11-10", time.UTC)
	if err != nil {
		t.Fatalf("ParseDate() error = %v", err)
	}
	want := time.Date(2025, 11, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("ParseDate() = %v, want %v", got, want)
	}

	got, err = ParseDate("", time.UTC)
	if err != nil || !got.IsZero() {
		t.Errorf("ParseDate(\"\") = %v, %v; want нулевое время без ошибки", got, err)
	}

	if _, err := ParseDate("10.11.2025", time.UTC); err == nil {
		t.Error("ParseDate с неверным форматом должен вернуть ошибку")
	}
}

func TestDateRangeUpperBoundInclusive(t *testing.T) {
	from, to, err := DateRange("2025-11-01", "2025-11-10", time.UTC)
	if err != nil {
		t.Fatalf("DateRange() error = %v", err)
	}
	if !from.Equal(time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("from = %v", from)
	}
	// Верхняя граница включительна: to = начало следующего дня
	if !to.Equal(time.Date(2025, 11, 11, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("to = %v, want начало 11 ноября", to)
	}

	from, to, err = DateRange("", "", time.UTC)
	if err != nil || !from.IsZero() || !to.IsZero() {
		t.Errorf("пустой диапазон: from=%v to=%v err=%v", from, to, err)
	}
}
