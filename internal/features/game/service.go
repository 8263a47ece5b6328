// Package game — service.go содержит бизнес-логику взаимодействий.
package game

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"ecosadik.ru/ecocoin-backend/internal/common"
)

// Store — операции хранилища, нужные игровому сервису.
// Реализуется *Repository (PostgreSQL) и подменяется в тестах.
type Store interface {
	ListActions(ctx context.Context) ([]*Action, error)
	GetAction(ctx context.Context, id string) (*Action, error)
	CreditTx(ctx context.Context, childID string, a *Action, now, dayStart time.Time, decide DecideFunc) (*CreditOutcome, error)
	EnsureCatalog(ctx context.Context) error
	ResetCatalog(ctx context.Context) error
}

// Service управляет игровыми взаимодействиями.
type Service struct {
	store Store
	loc   *time.Location // часовой пояс календарного дня
	now   func() time.Time
}

// NewService создаёт игровой сервис.
func NewService(store Store, loc *time.Location) *Service {
	return &Service{store: store, loc: loc, now: time.Now}
}

// Actions возвращает каталог действий.
func (s *Service) Actions(ctx context.Context) ([]*Action, error) {
	return s.store.ListActions(ctx)
}

// Interact обрабатывает одно взаимодействие ребёнка с действием.
//
// Успех — ровно одно событие начисления; любой отказ (неизвестные id,
// перезарядка, дневной лимит, ошибка хранилища) — ноль событий.
// Ключа идемпотентности у клиента нет: повторный тап после потерянного
// ответа даёт повторное начисление, частые повторы гасятся перезарядкой.
func (s *Service) Interact(ctx context.Context, childID, actionID string) (*InteractResult, error) {
	action, err := s.store.GetAction(ctx, actionID)
	if err != nil {
		return nil, err
	}
	if action == nil {
		return nil, common.ErrActionNotFound
	}

	now := s.now().In(s.loc)
	dayStart := common.DayStart(now, s.loc)

	outcome, err := s.store.CreditTx(ctx, childID, action, now, dayStart, func(lastCredit *time.Time, todayCount int) Verdict {
		return Decide(action, lastCredit, todayCount, now)
	})
	if err != nil {
		observeInteraction("error")
		return nil, err
	}

	observeInteraction(outcome.Verdict.String())

	switch outcome.Verdict {
	case Cooldown:
		return &InteractResult{Success: false, NewBalance: outcome.NewBalance, Reason: ReasonCooldown}, nil
	case DailyLimit:
		return &InteractResult{Success: false, NewBalance: outcome.NewBalance, Reason: ReasonDailyLimit}, nil
	}

	log.WithFields(log.Fields{
		"child_id":  childID,
		"action_id": actionID,
		"credited":  outcome.Credited,
		"balance":   outcome.NewBalance,
	}).Info("Экокоины начислены")

	return &InteractResult{
		Success:    true,
		Credited:   outcome.Credited,
		NewBalance: outcome.NewBalance,
		Reason:     ReasonOK,
	}, nil
}

// EnsureCatalog засевает каталог по умолчанию (вызывается при старте).
func (s *Service) EnsureCatalog(ctx context.Context) error {
	return s.store.EnsureCatalog(ctx)
}

// ResetCatalog восстанавливает каталог по умолчанию (команда reset-actions).
func (s *Service) ResetCatalog(ctx context.Context) error {
	return s.store.ResetCatalog(ctx)
}
