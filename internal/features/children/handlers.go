// Package children — handlers.go обрабатывает HTTP-эндпоинты детей:
// публичный список для игрового экрана и админский CRUD.
package children

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"ecosadik.ru/ecocoin-backend/internal/common"
	"ecosadik.ru/ecocoin-backend/internal/features/admin"
)

// Handler обрабатывает запросы детей.
type Handler struct {
	service *Service
}

// NewHandler создаёт обработчик.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type childJSON struct {
	ID       string  `json:"id"`
	FullName string  `json:"fullName"`
	GroupID  *string `json:"groupId"`
	Balance  int64   `json:"balance"`
}

func toJSON(c *Child) childJSON {
	return childJSON{ID: c.ID, FullName: c.FullName, GroupID: c.GroupID, Balance: c.Balance}
}

// HandlePublicList — GET /api/v1/children. Список детей (id, fullName,
// groupId, balance) для игрового экрана, без аутентификации.
func (h *Handler) HandlePublicList(w http.ResponseWriter, r *http.Request) {
	cs, err := h.service.List(r.Context())
	if err != nil {
		log.WithError(err).Error("Ошибка получения списка детей")
		common.WriteError(w, http.StatusInternalServerError, "storage_failure")
		return
	}
	out := make([]childJSON, 0, len(cs))
	for _, c := range cs {
		out = append(out, toJSON(c))
	}
	common.WriteJSON(w, http.StatusOK, out)
}

// HandleCreate — POST /api/v1/admin/children/create, body {fullName, groupId}.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FullName string `json:"fullName"`
		GroupID  string `json:"groupId"`
	}
	if !common.DecodeJSON(w, r, &req) {
		return
	}
	c, err := h.service.Create(r.Context(), admin.FromContext(r.Context()), req.FullName, req.GroupID)
	if err != nil {
		writeChildError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, toJSON(c))
}

// HandleUpdate — PUT /api/v1/admin/child/{id}/update, body {fullName, groupId}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		FullName string `json:"fullName"`
		GroupID  string `json:"groupId"`
	}
	if !common.DecodeJSON(w, r, &req) {
		return
	}
	principal := admin.FromContext(r.Context())
	if err := h.service.Update(r.Context(), principal, id, req.FullName, req.GroupID); err != nil {
		writeChildError(w, err)
		return
	}
	c, err := h.service.Get(r.Context(), principal, id)
	if err != nil {
		writeChildError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, toJSON(c))
}

// HandleDelete — DELETE /api/v1/admin/child/{id}/delete.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), admin.FromContext(r.Context()), id); err != nil {
		writeChildError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// writeChildError переводит ошибки сервиса в коды ответа API.
func writeChildError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrChildNotFound), errors.Is(err, common.ErrGroupNotFound):
		common.WriteError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, common.ErrForbidden):
		common.WriteError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, common.ErrEmptyName):
		common.WriteError(w, http.StatusBadRequest, "invalid_input")
	default:
		log.WithError(err).Error("Ошибка операции с ребёнком")
		common.WriteError(w, http.StatusInternalServerError, "storage_failure")
	}
}
