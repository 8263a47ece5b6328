// Package stats — handlers.go обрабатывает отчётные эндпоинты:
// сводки по группам и детям, журнал событий, таблица лидеров.
package stats

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"ecosadik.ru/ecocoin-backend/internal/common"
	"ecosadik.ru/ecocoin-backend/internal/features/admin"
	"ecosadik.ru/ecocoin-backend/internal/features/children"
)

// Handler обрабатывает запросы статистики.
type Handler struct {
	service         *Service
	childrenService *children.Service // для проверки видимости ребёнка воспитателю
	loc             *time.Location
}

// NewHandler создаёт обработчик статистики.
func NewHandler(service *Service, childrenService *children.Service, loc *time.Location) *Handler {
	return &Handler{service: service, childrenService: childrenService, loc: loc}
}

// dateRange разбирает query-параметры from/to. При ошибке пишет 400 и
// возвращает false.
func (h *Handler) dateRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	from, to, err := common.DateRange(r.URL.Query().Get("from"), r.URL.Query().Get("to"), h.loc)
	if err != nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_input")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

// HandleGroupStats — GET /api/v1/admin/stats/groups?from=&to=
func (h *Handler) HandleGroupStats(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	stats, err := h.service.GroupStats(r.Context(), admin.FromContext(r.Context()), from, to)
	if err != nil {
		log.WithError(err).Error("Ошибка получения статистики групп")
		common.WriteError(w, http.StatusInternalServerError, "storage_failure")
		return
	}
	if stats == nil {
		stats = []*GroupStat{}
	}
	common.WriteJSON(w, http.StatusOK, stats)
}

// HandleChildStats — GET /api/v1/admin/stats/children?groupId=&q=&from=&to=
func (h *Handler) HandleChildStats(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	stats, err := h.service.ChildStats(r.Context(), admin.FromContext(r.Context()), q.Get("groupId"), q.Get("q"), from, to)
	if err != nil {
		log.WithError(err).Error("Ошибка получения статистики детей")
		common.WriteError(w, http.StatusInternalServerError, "storage_failure")
		return
	}
	if stats == nil {
		stats = []*ChildStat{}
	}
	common.WriteJSON(w, http.StatusOK, stats)
}

// HandleEvents — GET /api/v1/admin/events?groupId=&childId=&from=&to=
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	from, to, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	events, err := h.service.Events(r.Context(), admin.FromContext(r.Context()), q.Get("groupId"), q.Get("childId"), from, to)
	if err != nil {
		log.WithError(err).Error("Ошибка получения журнала событий")
		common.WriteError(w, http.StatusInternalServerError, "storage_failure")
		return
	}
	if events == nil {
		events = []*EventView{}
	}
	common.WriteJSON(w, http.StatusOK, events)
}

// HandleChildEvents — GET /api/v1/admin/child/{id}/events?from=&to=
// История начислений одного ребёнка, новые первыми.
func (h *Handler) HandleChildEvents(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	principal := admin.FromContext(r.Context())

	// Ребёнок чужой группы для воспитателя неотличим от несуществующего
	if _, err := h.childrenService.Get(r.Context(), principal, id); err != nil {
		if errors.Is(err, common.ErrChildNotFound) {
			common.WriteError(w, http.StatusNotFound, "not_found")
			return
		}
		log.WithError(err).Error("Ошибка проверки ребёнка")
		common.WriteError(w, http.StatusInternalServerError, "storage_failure")
		return
	}

	from, to, ok := h.dateRange(w, r)
	if !ok {
		return
	}
	events, err := h.service.ChildEvents(r.Context(), principal, id, from, to)
	if err != nil {
		log.WithError(err).Error("Ошибка получения истории ребёнка")
		common.WriteError(w, http.StatusInternalServerError, "storage_failure")
		return
	}
	if events == nil {
		events = []*EventView{}
	}
	common.WriteJSON(w, http.StatusOK, events)
}

// HandleLeaderboard — GET /api/v1/leaderboard?groupId=
// Публичная таблица лидеров для игрового экрана.
func (h *Handler) HandleLeaderboard(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.Leaderboard(r.Context(), r.URL.Query().Get("groupId"))
	if err != nil {
		log.WithError(err).Error("Ошибка получения таблицы лидеров")
		common.WriteError(w, http.StatusInternalServerError, "storage_failure")
		return
	}
	if rows == nil {
		rows = []*LeaderboardRow{}
	}
	common.WriteJSON(w, http.StatusOK, rows)
}
