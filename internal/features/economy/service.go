// Package economy — service.go содержит бизнес-логику ручных корректировок
// и сверки балансов с журналом событий.
package economy

import (
	"context"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"ecosadik.ru/ecocoin-backend/internal/common"
)

// Store — операции хранилища, нужные сервису экономики.
// Реализуется *Repository (PostgreSQL) и подменяется в тестах.
type Store interface {
	AdjustTx(ctx context.Context, childID string, delta int64, comment, adminName string, now time.Time) (int64, error)
	ReconcileBalances(ctx context.Context) (int64, error)
}

// Service управляет балансами вне обычной игры.
type Service struct {
	store Store
	loc   *time.Location
	now   func() time.Time
}

// NewService создаёт сервис экономики.
func NewService(store Store, loc *time.Location) *Service {
	return &Service{store: store, loc: loc, now: time.Now}
}

// Adjust применяет ручную корректировку баланса (плюс или минус).
//
// Правила:
//   - delta не может быть нулём;
//   - комментарий обязателен (пробелы не считаются);
//   - итоговый баланс не может стать отрицательным — иначе отказ без события.
//
// Корректировка всегда записывается как manual_adjustment и в любых
// выборках отличима от игровых начислений.
func (s *Service) Adjust(ctx context.Context, childID string, delta int64, comment, adminName string) (int64, error) {
	if delta == 0 {
		return 0, common.ErrInvalidAmount
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return 0, common.ErrEmptyComment
	}

	newBalance, err := s.store.AdjustTx(ctx, childID, delta, comment, adminName, s.now().In(s.loc))
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"child_id": childID,
		"delta":    delta,
		"admin":    adminName,
		"balance":  newBalance,
	}).Info("Баланс скорректирован вручную")

	return newBalance, nil
}

// Reconcile пересчитывает балансы из журнала событий и чинит расхождения.
// Вызывается при старте сервера и командой reconcile.
func (s *Service) Reconcile(ctx context.Context) error {
	fixed, err := s.store.ReconcileBalances(ctx)
	if err != nil {
		return err
	}
	if fixed > 0 {
		log.WithField("count", fixed).Warn("Балансы расходились с журналом событий — исправлено")
	} else {
		log.Debug("Сверка балансов: расхождений нет")
	}
	return nil
}
