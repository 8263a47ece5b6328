// Package rollover — service.go решает, пора ли закрывать месяц,
// и фильтрует итоги для воспитателя.
package rollover

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"ecosadik.ru/ecocoin-backend/internal/common"
	"ecosadik.ru/ecocoin-backend/internal/features/admin"
)

// Store — операции хранилища, нужные сервису закрытия.
// Реализуется *Repository (PostgreSQL) и подменяется в тестах.
type Store interface {
	LastClosed(ctx context.Context) (year, month int, ok bool, err error)
	InitMarker(ctx context.Context, year, month int) error
	CloseMonth(ctx context.Context, year, month int, now time.Time) (*MonthlyResult, error)
	ListResults(ctx context.Context) ([]*MonthlyResult, error)
}

// Service управляет месячным закрытием балансов.
type Service struct {
	store Store
	loc   *time.Location
	now   func() time.Time
}

// NewService создаёт сервис месячного закрытия.
func NewService(store Store, loc *time.Location) *Service {
	return &Service{store: store, loc: loc, now: time.Now}
}

// CloseMonthIfDue закрывает предыдущий календарный месяц, если он ещё
// не закрыт. Вызывается при старте сервера и планировщиком каждую ночь,
// поэтому повторные вызовы в одном месяце — штатный случай и ничего
// не делают.
//
// На первом запуске итогов не создаётся: маркер просто ставится на
// предыдущий месяц, и закрытие начнёт работать со следующего.
func (s *Service) CloseMonthIfDue(ctx context.Context) error {
	now := s.now().In(s.loc)
	prevYear, prevMonth := common.PrevMonth(now, s.loc)

	lastYear, lastMonth, ok, err := s.store.LastClosed(ctx)
	if err != nil {
		return err
	}
	if !ok {
		log.WithFields(log.Fields{"year": prevYear, "month": int(prevMonth)}).
			Info("Первый запуск: маркер закрытия инициализирован, итоги не создаются")
		return s.store.InitMarker(ctx, prevYear, int(prevMonth))
	}
	if lastYear == prevYear && lastMonth == int(prevMonth) {
		return nil
	}

	result, err := s.store.CloseMonth(ctx, prevYear, int(prevMonth), now)
	if err != nil {
		return err
	}
	if result == nil {
		// Закрыл конкурирующий экземпляр
		log.WithFields(log.Fields{"year": prevYear, "month": int(prevMonth)}).
			Debug("Месяц уже закрыт другим экземпляром")
		return nil
	}

	log.WithFields(log.Fields{
		"year":     result.Year,
		"month":    result.Month,
		"children": len(result.Children),
		"total":    common.FormatBalance(result.TotalSum),
	}).Info("Месяц закрыт, балансы обнулены")
	return nil
}

// ListResults возвращает итоги закрытых месяцев, новые первыми.
// Воспитатель видит только детей своей группы; totalSum пересчитывается
// по видимым детям.
func (s *Service) ListResults(ctx context.Context, principal *admin.Principal) ([]*MonthlyResult, error) {
	results, err := s.store.ListResults(ctx)
	if err != nil {
		return nil, err
	}
	gid := principal.EducatorGroup()
	if gid == "" {
		return results, nil
	}

	out := make([]*MonthlyResult, 0, len(results))
	for _, m := range results {
		filtered := &MonthlyResult{
			ID:       m.ID,
			Year:     m.Year,
			Month:    m.Month,
			ClosedAt: m.ClosedAt,
			Children: []*ResultChild{},
		}
		for _, c := range m.Children {
			if c.GroupID != nil && *c.GroupID == gid {
				filtered.Children = append(filtered.Children, c)
				filtered.TotalSum += c.Balance
			}
		}
		out = append(out, filtered)
	}
	return out, nil
}
