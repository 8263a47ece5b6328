package economy

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecosadik.ru/ecocoin-backend/internal/common"
)

// fakeStore повторяет контракт AdjustTx: отказ не меняет баланс
// и не оставляет события.
type fakeStore struct {
	balances map[string]int64
	events   int
	fixed    int64
}

func (s *fakeStore) AdjustTx(ctx context.Context, childID string, delta int64, comment, adminName string, now time.Time) (int64, error) {
	balance, ok := s.balances[childID]
	if !ok {
		return 0, common.ErrChildNotFound
	}
	newBalance := balance + delta
	if newBalance < 0 {
		return 0, common.ErrInvalidAmount
	}
	s.balances[childID] = newBalance
	s.events++
	return newBalance, nil
}

func (s *fakeStore) ReconcileBalances(ctx context.Context) (int64, error) {
	return s.fixed, nil
}

func TestAdjustSuccess(t *testing.T) {
	store := &fakeStore{balances: map[string]int64{"child1": 100}}
	svc := NewService(store, time.UTC)

	newBalance, err := svc.Adjust(context.Background(), "child1", -30, "поломка игрушки", "admin")
	if err != nil {
		t.Fatalf("Adjust() error = %v", err)
	}
	if newBalance != 70 {
		t.Errorf("newBalance = %d, want 70", newBalance)
	}
	if store.events != 1 {
		t.Errorf("событий записано %d, want 1", store.events)
	}
}

func TestAdjustRejectsZeroDelta(t *testing.T) {
	store := &fakeStore{balances: map[string]int64{"child1": 100}}
	svc := NewService(store, time.UTC)

	_, err := svc.Adjust(context.Background(), "child1", 0, "комментарий", "admin")
	if !errors.Is(err, common.ErrInvalidAmount) {
		t.Errorf("err = %v, want ErrInvalidAmount", err)
	}
	if store.events != 0 {
		t.Errorf("событий записано %d, want 0", store.events)
	}
}

func TestAdjustRequiresComment(t *testing.T) {
	store := &fakeStore{balances: map[string]int64{"child1": 100}}
	svc := NewService(store, time.UTC)

	for _, comment := range []string{"", "   ", "\t\n"} {
		_, err := svc.Adjust(context.Background(), "child1", 10, comment, "admin")
		if !errors.Is(err, common.ErrEmptyComment) {
			t.Errorf("comment %q: err = %v, want ErrEmptyComment", comment, err)
		}
	}
	if store.events != 0 {
		t.Errorf("событий записано %d, want 0", store.events)
	}
}

func TestAdjustRejectsNegativeResult(t *testing.T) {
	store := &fakeStore{balances: map[string]int64{"child1": 20}}
	svc := NewService(store, time.UTC)

	_, err := svc.Adjust(context.Background(), "child1", -50, "списание", "admin")
	if !errors.Is(err, common.ErrInvalidAmount) {
		t.Errorf("err = %v, want ErrInvalidAmount", err)
	}
	if store.balances["child1"] != 20 {
		t.Errorf("balance = %d, want 20 (без изменений)", store.balances["child1"])
	}
	if store.events != 0 {
		t.Errorf("событий записано %d, want 0", store.events)
	}
}

func TestAdjustUnknownChild(t *testing.T) {
	store := &fakeStore{balances: map[string]int64{}}
	svc := NewService(store, time.UTC)

	_, err := svc.Adjust(context.Background(), "ghost", 10, "комментарий", "admin")
	if !errors.Is(err, common.ErrChildNotFound) {
		t.Errorf("err = %v, want ErrChildNotFound", err)
	}
}
