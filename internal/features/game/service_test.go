package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecosadik.ru/ecocoin-backend/internal/common"
)

// fakeStore — хранилище в памяти, повторяющее контракт CreditTx:
// решение принимается внутри «транзакции», успех пишет событие и баланс,
// отказ не оставляет следов.
type fakeStore struct {
	actions  map[string]*Action
	balances map[string]int64
	// события как времена начислений по паре ребёнок/действие
	credits map[string][]time.Time
}

func newFakeStore(actions ...*Action) *fakeStore {
	s := &fakeStore{
		actions:  make(map[string]*Action),
		balances: make(map[string]int64),
		credits:  make(map[string][]time.Time),
	}
	for _, a := range actions {
		s.actions[a.ID] = a
	}
	return s
}

func (s *fakeStore) ListActions(ctx context.Context) ([]*Action, error) {
	out := make([]*Action, 0, len(s.actions))
	for _, a := range s.actions {
		out = append(out, a)
	}
	return out, nil
}

func (s *fakeStore) GetAction(ctx context.Context, id string) (*Action, error) {
	return s.actions[id], nil
}

func (s *fakeStore) CreditTx(ctx context.Context, childID string, a *Action, now, dayStart time.Time, decide DecideFunc) (*CreditOutcome, error) {
	balance, ok := s.balances[childID]
	if !ok {
		return nil, common.ErrChildNotFound
	}

	key := childID + "/" + a.ID
	var lastCredit *time.Time
	todayCount := 0
	for _, t := range s.credits[key] {
		if lastCredit == nil || t.After(*lastCredit) {
			tt := t
			lastCredit = &tt
		}
		if !t.Before(dayStart) {
			todayCount++
		}
	}

	verdict := decide(lastCredit, todayCount)
	if verdict != Allowed {
		return &CreditOutcome{Verdict: verdict, NewBalance: balance}, nil
	}

	s.credits[key] = append(s.credits[key], now)
	s.balances[childID] = balance + a.Coins
	return &CreditOutcome{Verdict: Allowed, Credited: a.Coins, NewBalance: s.balances[childID]}, nil
}

func (s *fakeStore) EnsureCatalog(ctx context.Context) error { return nil }
func (s *fakeStore) ResetCatalog(ctx context.Context) error  { return nil }

func (s *fakeStore) eventCount(childID, actionID string) int {
	return len(s.credits[childID+"/"+actionID])
}

var battery = &Action{ID: "battery", Name: "Батарейка", Coins: 5, CooldownSec: 120, DailyCap: 2}

func newTestService(store *fakeStore, start time.Time) (*Service, *time.Time) {
	svc := NewService(store, time.UTC)
	now := start
	svc.now = func() time.Time { return now }
	return svc, &now
}

func TestInteractSuccess(t *testing.T) {
	store := newFakeStore(battery)
	store.balances["child1"] = 10
	svc, _ := newTestService(store, time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC))

	result, err := svc.Interact(context.Background(), "child1", "battery")
	if err != nil {
		t.Fatalf("Interact() error = %v", err)
	}
	if !result.Success || result.Reason != ReasonOK {
		t.Errorf("result = %+v, want success/ok", result)
	}
	if result.Credited != 5 || result.NewBalance != 15 {
		t.Errorf("credited=%d balance=%d, want 5/15", result.Credited, result.NewBalance)
	}
	if n := store.eventCount("child1", "battery"); n != 1 {
		t.Errorf("событий записано %d, want 1", n)
	}
}

func TestInteractCooldownLeavesNoEvent(t *testing.T) {
	store := newFakeStore(battery)
	store.balances["child1"] = 0
	svc, now := newTestService(store, time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC))

	if _, err := svc.Interact(context.Background(), "child1", "battery"); err != nil {
		t.Fatalf("первое взаимодействие: %v", err)
	}

	*now = now.Add(30 * time.Second)
	result, err := svc.Interact(context.Background(), "child1", "battery")
	if err != nil {
		t.Fatalf("Interact() error = %v", err)
	}
	if result.Success || result.Reason != ReasonCooldown {
		t.Errorf("result = %+v, want cooldown", result)
	}
	if result.NewBalance != 5 {
		t.Errorf("balance = %d, want 5 (без изменений)", result.NewBalance)
	}
	if n := store.eventCount("child1", "battery"); n != 1 {
		t.Errorf("событий записано %d, want 1 (отказ ничего не пишет)", n)
	}
}

func TestInteractDailyLimit(t *testing.T) {
	store := newFakeStore(battery)
	store.balances["child1"] = 0
	svc, now := newTestService(store, time.Date(2025, 11, 10, 9, 0, 0, 0, time.UTC))

	// Две батарейки с интервалом больше перезарядки — лимит исчерпан
	for i := 0; i < 2; i++ {
		result, err := svc.Interact(context.Background(), "child1", "battery")
		if err != nil {
			t.Fatalf("взаимодействие %d: %v", i+1, err)
		}
		if !result.Success {
			t.Fatalf("взаимодействие %d: %+v, want success", i+1, result)
		}
		*now = now.Add(3 * time.Minute)
	}

	result, err := svc.Interact(context.Background(), "child1", "battery")
	if err != nil {
		t.Fatalf("Interact() error = %v", err)
	}
	if result.Success || result.Reason != ReasonDailyLimit {
		t.Errorf("result = %+v, want daily_limit", result)
	}
	if result.NewBalance != 10 {
		t.Errorf("balance = %d, want 10", result.NewBalance)
	}
}

func TestInteractDailyLimitResetsNextDay(t *testing.T) {
	store := newFakeStore(battery)
	store.balances["child1"] = 0
	svc, now := newTestService(store, time.Date(2025, 11, 10, 23, 50, 0, 0, time.UTC))

	for i := 0; i < 2; i++ {
		if result, _ := svc.Interact(context.Background(), "child1", "battery"); !result.Success {
			t.Fatalf("взаимодействие %d не прошло: %+v", i+1, result)
		}
		*now = now.Add(4 * time.Minute)
	}

	// 23:58 — лимит дня исчерпан
	result, _ := svc.Interact(context.Background(), "child1", "battery")
	if result.Success || result.Reason != ReasonDailyLimit {
		t.Fatalf("result = %+v, want daily_limit", result)
	}

	// 00:03 следующего дня — счётчик календарного дня обнулился
	*now = now.Add(5 * time.Minute)
	result, _ = svc.Interact(context.Background(), "child1", "battery")
	if !result.Success {
		t.Errorf("result = %+v, want success после полуночи", result)
	}
}

func TestInteractUnknownAction(t *testing.T) {
	store := newFakeStore(battery)
	store.balances["child1"] = 0
	svc, _ := newTestService(store, time.Now())

	_, err := svc.Interact(context.Background(), "child1", "no_such_action")
	if !errors.Is(err, common.ErrActionNotFound) {
		t.Errorf("err = %v, want ErrActionNotFound", err)
	}
}

func TestInteractUnknownChild(t *testing.T) {
	store := newFakeStore(battery)
	svc, _ := newTestService(store, time.Now())

	_, err := svc.Interact(context.Background(), "ghost", "battery")
	if !errors.Is(err, common.ErrChildNotFound) {
		t.Errorf("err = %v, want ErrChildNotFound", err)
	}
}
