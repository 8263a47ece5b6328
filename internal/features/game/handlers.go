// Package game — handlers.go обрабатывает игровые HTTP-эндпоинты:
// GET /game/actions и POST /game/interaction.
package game

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"ecosadik.ru/ecocoin-backend/internal/common"
)

// Handler обрабатывает игровые запросы.
type Handler struct {
	service *Service
}

// NewHandler создаёт игровой обработчик.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleActions — GET /api/v1/game/actions. Правила начисления для клиента.
func (h *Handler) HandleActions(w http.ResponseWriter, r *http.Request) {
	actions, err := h.service.Actions(r.Context())
	if err != nil {
		log.WithError(err).Error("Ошибка чтения каталога действий")
		common.WriteError(w, http.StatusInternalServerError, "storage_failure")
		return
	}

	type actionJSON struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Coins       int64  `json:"coins"`
		CooldownSec int    `json:"cooldown_sec"`
		DailyCap    int    `json:"daily_cap"`
	}
	out := make([]actionJSON, 0, len(actions))
	for _, a := range actions {
		out = append(out, actionJSON{
			ID: a.ID, Name: a.Name, Coins: a.Coins,
			CooldownSec: a.CooldownSec, DailyCap: a.DailyCap,
		})
	}
	common.WriteJSON(w, http.StatusOK, out)
}

// HandleInteraction — POST /api/v1/game/interaction, body {childId, actionId}.
//
// Ответы:
//   - 200 {success:true, credited, new_balance, reason:"ok"}
//   - 200 {success:false, reason:"cooldown"|"daily_limit", new_balance}
//   - 404 {success:false, reason:"not_found"} — неизвестный ребёнок/действие
//   - 500 {success:false, reason:"error"} — ошибка хранилища (можно повторить)
func (h *Handler) HandleInteraction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChildID  string `json:"childId"`
		ActionID string `json:"actionId"`
	}
	if !common.DecodeJSON(w, r, &req) {
		return
	}
	if req.ChildID == "" || req.ActionID == "" {
		common.WriteJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false, "reason": "childId and actionId required",
		})
		return
	}

	result, err := h.service.Interact(r.Context(), req.ChildID, req.ActionID)
	if err != nil {
		if errors.Is(err, common.ErrChildNotFound) || errors.Is(err, common.ErrActionNotFound) {
			common.WriteJSON(w, http.StatusNotFound, map[string]interface{}{
				"success": false, "reason": "not_found",
			})
			return
		}
		log.WithError(err).Error("Ошибка обработки взаимодействия")
		common.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false, "reason": "error",
		})
		return
	}

	common.WriteJSON(w, http.StatusOK, result)
}
