// Package rollover — handlers.go обрабатывает просмотр месячных итогов.
package rollover

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"ecosadik.ru/ecocoin-backend/internal/common"
	"ecosadik.ru/ecocoin-backend/internal/features/admin"
)

// Handler обрабатывает запросы месячных итогов.
type Handler struct {
	service *Service
}

// NewHandler создаёт обработчик месячных итогов.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleResults — GET /api/v1/admin/monthly-results
// Итоги закрытых месяцев, новые первыми.
func (h *Handler) HandleResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.ListResults(r.Context(), admin.FromContext(r.Context()))
	if err != nil {
		log.WithError(err).Error("Ошибка получения итогов месяцев")
		common.WriteError(w, http.StatusInternalServerError, "storage_failure")
		return
	}
	if results == nil {
		results = []*MonthlyResult{}
	}
	common.WriteJSON(w, http.StatusOK, results)
}
