package stats

import (
	"context"
	"testing"
	"time"

	"ecosadik.ru/ecocoin-backend/internal/features/admin"
)

// fakeStore запоминает фильтр группы, с которым его вызвали:
// сервис обязан подменять фильтр воспитателя на его группу.
type fakeStore struct {
	lastGroupFilter string
	groupStats      []*GroupStat
}

func (s *fakeStore) GroupStats(ctx context.Context, from, to time.Time) ([]*GroupStat, error) {
	return s.groupStats, nil
}

func (s *fakeStore) ChildStats(ctx context.Context, groupID, q string, from, to time.Time) ([]*ChildStat, error) {
	s.lastGroupFilter = groupID
	return nil, nil
}

func (s *fakeStore) Events(ctx context.Context, groupID, childID string, from, to time.Time) ([]*EventView, error) {
	s.lastGroupFilter = groupID
	return nil, nil
}

func (s *fakeStore) Leaderboard(ctx context.Context, groupID string) ([]*LeaderboardRow, error) {
	s.lastGroupFilter = groupID
	return nil, nil
}

var (
	rootPrincipal     = &admin.Principal{Username: "admin", Role: admin.RoleAdmin}
	educatorPrincipal = &admin.Principal{Username: "vospit1", Role: admin.RoleEducator, GroupID: "group1"}
)

func TestGroupStatsEducatorFiltered(t *testing.T) {
	store := &fakeStore{groupStats: []*GroupStat{
		{GroupID: "group1", GroupName: "Солнышко", TotalBalance: 60},
		{GroupID: "group2", GroupName: "Ромашка", TotalBalance: 40},
	}}
	svc := NewService(store)

	got, err := svc.GroupStats(context.Background(), educatorPrincipal, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GroupStats() error = %v", err)
	}
	if len(got) != 1 || got[0].GroupID != "group1" {
		t.Errorf("воспитатель видит %+v, want только group1", got)
	}

	got, err = svc.GroupStats(context.Background(), rootPrincipal, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GroupStats() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("админ видит %d групп, want 2", len(got))
	}
}

func TestChildStatsEducatorGroupOverridesFilter(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	// Присланный фильтр чужой группы молча заменяется
	if _, err := svc.ChildStats(context.Background(), educatorPrincipal, "group2", "", time.Time{}, time.Time{}); err != nil {
		t.Fatalf("ChildStats() error = %v", err)
	}
	if store.lastGroupFilter != "group1" {
		t.Errorf("фильтр группы = %q, want group1", store.lastGroupFilter)
	}

	if _, err := svc.ChildStats(context.Background(), rootPrincipal, "group2", "", time.Time{}, time.Time{}); err != nil {
		t.Fatalf("ChildStats() error = %v", err)
	}
	if store.lastGroupFilter != "group2" {
		t.Errorf("фильтр админа = %q, want group2", store.lastGroupFilter)
	}
}

func TestEventsEducatorGroupOverridesFilter(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	if _, err := svc.Events(context.Background(), educatorPrincipal, "", "c1", time.Time{}, time.Time{}); err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if store.lastGroupFilter != "group1" {
		t.Errorf("фильтр группы = %q, want group1", store.lastGroupFilter)
	}
}
