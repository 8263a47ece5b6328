// Package admin — handlers.go обрабатывает HTTP-эндпоинты аутентификации:
// POST /admin/login, POST /admin/logout, GET /admin/me.
package admin

import (
	"errors"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"ecosadik.ru/ecocoin-backend/internal/common"
)

// SessionCookie — имя cookie с токеном сессии.
const SessionCookie = "ecocoin_session"

// Handler обрабатывает HTTP-запросы аутентификации.
type Handler struct {
	service *Service
}

// NewHandler создаёт обработчик.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleLogin — POST /api/v1/admin/login, body {username, password}.
// При успехе ставит cookie сессии и возвращает {ok, role, group_id}.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !common.DecodeJSON(w, r, &req) {
		return
	}

	token, principal, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrWrongPassword):
			common.WriteJSON(w, http.StatusUnauthorized, map[string]interface{}{
				"ok": false, "error": "invalid_credentials",
			})
		case errors.Is(err, common.ErrTooManyAttempts):
			common.WriteJSON(w, http.StatusTooManyRequests, map[string]interface{}{
				"ok": false, "error": "too_many_attempts",
			})
		default:
			log.WithError(err).Error("Ошибка входа")
			common.WriteError(w, http.StatusInternalServerError, "storage_failure")
		}
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.service.cfg.SessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	common.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"ok":       true,
		"role":     principal.Role,
		"group_id": principal.EducatorGroup(),
	})
}

// HandleLogout — POST /api/v1/admin/logout. Отзывает сессию и гасит cookie.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookie); err == nil {
		if err := h.service.Logout(r.Context(), cookie.Value); err != nil {
			log.WithError(err).Error("Ошибка выхода")
		}
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	common.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// HandleMe — GET /api/v1/admin/me. Роль и группа текущего пользователя
// (фронтенд по ним решает, какие разделы показывать воспитателю).
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principal := FromContext(r.Context())
	if principal == nil {
		common.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	common.WriteJSON(w, http.StatusOK, map[string]string{
		"role":     principal.Role,
		"group_id": principal.EducatorGroup(),
	})
}
