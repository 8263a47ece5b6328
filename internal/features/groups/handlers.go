// Package groups — handlers.go обрабатывает HTTP-эндпоинты групп:
// публичный список для экрана выбора и админский CRUD.
package groups

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"ecosadik.ru/ecocoin-backend/internal/common"
	"ecosadik.ru/ecocoin-backend/internal/features/admin"
)

// Handler обрабатывает запросы групп.
type Handler struct {
	service *Service
}

// NewHandler создаёт обработчик групп.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type groupJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toJSON(gs []*Group) []groupJSON {
	out := make([]groupJSON, 0, len(gs))
	for _, g := range gs {
		out = append(out, groupJSON{ID: g.ID, Name: g.Name})
	}
	return out
}

// HandlePublicList — GET /api/v1/groups. Список групп (id, name)
// для выбора на первом экране, без аутентификации.
func (h *Handler) HandlePublicList(w http.ResponseWriter, r *http.Request) {
	gs, err := h.service.List(r.Context(), nil)
	if err != nil {
		log.WithError(err).Error("Ошибка получения списка групп")
		common.WriteError(w, http.StatusInternalServerError, "storage_failure")
		return
	}
	common.WriteJSON(w, http.StatusOK, toJSON(gs))
}

// HandleAdminList — GET /api/v1/admin/groups. Воспитатель видит только свою группу.
func (h *Handler) HandleAdminList(w http.ResponseWriter, r *http.Request) {
	gs, err := h.service.List(r.Context(), admin.FromContext(r.Context()))
	if err != nil {
		log.WithError(err).Error("Ошибка получения списка групп")
		common.WriteError(w, http.StatusInternalServerError, "storage_failure")
		return
	}
	common.WriteJSON(w, http.StatusOK, toJSON(gs))
}

// HandleCreate — POST /api/v1/admin/group/create, body {name}.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if !common.DecodeJSON(w, r, &req) {
		return
	}
	g, err := h.service.Create(r.Context(), admin.FromContext(r.Context()), req.Name)
	if err != nil {
		writeGroupError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusCreated, groupJSON{ID: g.ID, Name: g.Name})
}

// HandleUpdate — PUT /api/v1/admin/group/{id}, body {name}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req struct {
		Name string `json:"name"`
	}
	if !common.DecodeJSON(w, r, &req) {
		return
	}
	if err := h.service.Rename(r.Context(), admin.FromContext(r.Context()), id, req.Name); err != nil {
		writeGroupError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, groupJSON{ID: id, Name: req.Name})
}

// HandleDelete — DELETE /api/v1/admin/group/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.Delete(r.Context(), admin.FromContext(r.Context()), id); err != nil {
		writeGroupError(w, err)
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// writeGroupError переводит ошибки сервиса в коды ответа API.
func writeGroupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrForbidden):
		common.WriteError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, common.ErrGroupNotFound):
		common.WriteError(w, http.StatusNotFound, "not_found")
	case errors.Is(err, common.ErrGroupNotEmpty), errors.Is(err, common.ErrGroupInUse):
		common.WriteError(w, http.StatusConflict, "conflict")
	case errors.Is(err, common.ErrEmptyName):
		common.WriteError(w, http.StatusBadRequest, "invalid_input")
	default:
		log.WithError(err).Error("Ошибка операции с группой")
		common.WriteError(w, http.StatusInternalServerError, "storage_failure")
	}
}
