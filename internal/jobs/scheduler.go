// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ночное закрытие месяца
// и ежечасная чистка протухших сессий.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"ecosadik.ru/ecocoin-backend/internal/features/admin"
	"ecosadik.ru/ecocoin-backend/internal/features/rollover"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron            *cron.Cron
	rolloverService *rollover.Service
	adminService    *admin.Service
}

// NewScheduler создаёт планировщик задач в часовом поясе приложения.
func NewScheduler(loc *time.Location, rolloverService *rollover.Service, adminService *admin.Service) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(loc)),
		rolloverService: rolloverService,
		adminService:    adminService,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Закрытие месяца в 00:05 первого числа. Повторный вызов безопасен,
	// поэтому проверяем каждую ночь: если сервер был выключен первого
	// числа, закрытие догонит при ближайшем запуске задачи.
	s.cron.AddFunc("5 0 * * *", func() {
		log.Debug("[CRON] Проверка месячного закрытия")
		if err := s.rolloverService.CloseMonthIfDue(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка месячного закрытия")
		}
	})

	// Чистка протухших сессий каждый час
	s.cron.AddFunc("0 * * * *", func() {
		log.Debug("[CRON] Чистка протухших сессий")
		if err := s.adminService.CleanupSessions(ctx); err != nil {
			log.WithError(err).Error("[CRON] Ошибка чистки сессий")
		}
	})

	s.cron.Start()
	log.Info("Планировщик задач запущен")
}

// Stop останавливает планировщик.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
