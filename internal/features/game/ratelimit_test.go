package game

import (
	"testing"
	"time"
)

func TestDecide(t *testing.T) {
	action := &Action{ID: "battery", Coins: 5, CooldownSec: 120, DailyCap: 2}
	now := time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC)

	ago := func(d time.Duration) *time.Time {
		t := now.Add(-d)
		return &t
	}

	tests := []struct {
		name       string
		lastCredit *time.Time
		todayCount int
		want       Verdict
	}{
		{"первое начисление", nil, 0, Allowed},
		{"перезарядка прошла", ago(121 * time.Second), 1, Allowed},
		{"ровно на границе перезарядки", ago(120 * time.Second), 1, Allowed},
		{"перезарядка не прошла", ago(119 * time.Second), 1, Cooldown},
		{"секунду назад", ago(1 * time.Second), 1, Cooldown},
		{"дневной лимит исчерпан", ago(10 * time.Minute), 2, DailyLimit},
		{"лимит выше дневного", ago(10 * time.Minute), 5, DailyLimit},
		// Перезарядка проверяется раньше лимита
		{"перезарядка и лимит сразу", ago(30 * time.Second), 2, Cooldown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(action, tt.lastCredit, tt.todayCount, now)
			if got != tt.want {
				t.Errorf("Decide() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDecideZeroCapNeverAllows(t *testing.T) {
	action := &Action{ID: "disabled", Coins: 1, CooldownSec: 0, DailyCap: 0}
	now := time.Now()
	if got := Decide(action, nil, 0, now); got != DailyLimit {
		t.Errorf("Decide() = %v, want %v", got, DailyLimit)
	}
}

func TestVerdictString(t *testing.T) {
	tests := []struct {
		v    Verdict
		want string
	}{
		{Allowed, "allowed"},
		{Cooldown, "cooldown"},
		{DailyLimit, "daily_limit"},
		{Verdict(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("Verdict(%d).String() = %q, want %q", tt.v, got, tt.want)
		}
	}
}
