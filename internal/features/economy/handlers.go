// Package economy — handlers.go обрабатывает эндпоинт ручной корректировки:
// POST /admin/child/{id}/balance-adjust.
package economy

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"ecosadik.ru/ecocoin-backend/internal/common"
	"ecosadik.ru/ecocoin-backend/internal/features/admin"
	"ecosadik.ru/ecocoin-backend/internal/features/children"
)

// Handler обрабатывает запросы корректировок.
type Handler struct {
	service         *Service
	childrenService *children.Service // для проверки видимости ребёнка воспитателю
}

// NewHandler создаёт обработчик корректировок.
func NewHandler(service *Service, childrenService *children.Service) *Handler {
	return &Handler{service: service, childrenService: childrenService}
}

// HandleAdjust — POST /api/v1/admin/child/{id}/balance-adjust,
// body {delta, comment}. Ответ: {new_balance}.
// Воспитатель корректирует только детей своей группы.
func (h *Handler) HandleAdjust(w http.ResponseWriter, r *http.Request) {
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

	var req struct {
		Delta   *int64 `json:"delta"`
		Comment string `json:"comment"`
	}
	if !common.DecodeJSON(w, r, &req) {
		return
	}
	if req.Delta == nil {
		common.WriteError(w, http.StatusBadRequest, "invalid_input")
		return
	}

	newBalance, err := h.service.Adjust(r.Context(), id, *req.Delta, req.Comment, principal.Username)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrChildNotFound):
			common.WriteError(w, http.StatusNotFound, "not_found")
		case errors.Is(err, common.ErrInvalidAmount):
			common.WriteError(w, http.StatusBadRequest, "invalid_amount")
		case errors.Is(err, common.ErrEmptyComment):
			common.WriteError(w, http.StatusBadRequest, "invalid_input")
		default:
			log.WithError(err).Error("Ошибка корректировки баланса")
			common.WriteError(w, http.StatusInternalServerError, "storage_failure")
		}
		return
	}

	common.WriteJSON(w, http.StatusOK, map[string]int64{"new_balance": newBalance})
}
