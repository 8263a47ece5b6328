// Package stats — service.go применяет права доступа к отчётам.
// Воспитатель видит только свою группу: присланный фильтр группы
// молча заменяется на его собственную.
package stats

import (
	"context"
	"time"

	"ecosadik.ru/ecocoin-backend/internal/common"
	"ecosadik.ru/ecocoin-backend/internal/features/admin"
)

// Store — операции хранилища, нужные сервису статистики.
// Реализуется *Repository (PostgreSQL) и подменяется в тестах.
type Store interface {
	GroupStats(ctx context.Context, from, to time.Time) ([]*GroupStat, error)
	ChildStats(ctx context.Context, groupID, q string, from, to time.Time) ([]*ChildStat, error)
	Events(ctx context.Context, groupID, childID string, from, to time.Time) ([]*EventView, error)
	Leaderboard(ctx context.Context, groupID string) ([]*LeaderboardRow, error)
}

// Service отдаёт отчёты с учётом роли принципала.
type Service struct {
	store Store
}

// NewService создаёт сервис статистики.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GroupStats возвращает сводку по группам. Воспитатель получает
// только свою группу.
func (s *Service) GroupStats(ctx context.Context, principal *admin.Principal, from, to time.Time) ([]*GroupStat, error) {
	all, err := s.store.GroupStats(ctx, from, to)
	if err != nil {
		return nil, err
	}
	gid := principal.EducatorGroup()
	if gid == "" {
		return all, nil
	}
	out := make([]*GroupStat, 0, 1)
	for _, g := range all {
		if g.GroupID == gid {
			out = append(out, g)
		}
	}
	return out, nil
}

// ChildStats возвращает сводку по детям с фильтрами группы и подстроки ФИО.
func (s *Service) ChildStats(ctx context.Context, principal *admin.Principal, groupID, q string, from, to time.Time) ([]*ChildStat, error) {
	if gid := principal.EducatorGroup(); gid != "" {
		groupID = gid
	}
	return s.store.ChildStats(ctx, groupID, q, from, to)
}

// Events возвращает журнал событий (новые первыми).
func (s *Service) Events(ctx context.Context, principal *admin.Principal, groupID, childID string, from, to time.Time) ([]*EventView, error) {
	if gid := principal.EducatorGroup(); gid != "" {
		groupID = gid
	}
	return s.store.Events(ctx, groupID, childID, from, to)
}

// ChildEvents возвращает историю одного ребёнка. Ребёнок чужой группы
// для воспитателя неотличим от несуществующего.
func (s *Service) ChildEvents(ctx context.Context, principal *admin.Principal, childID string, from, to time.Time) ([]*EventView, error) {
	if childID == "" {
		return nil, common.ErrChildNotFound
	}
	return s.store.Events(ctx, principal.EducatorGroup(), childID, from, to)
}

// Leaderboard возвращает таблицу лидеров по убыванию баланса,
// при необходимости ограниченную группой.
func (s *Service) Leaderboard(ctx context.Context, groupID string) ([]*LeaderboardRow, error) {
	return s.store.Leaderboard(ctx, groupID)
}
