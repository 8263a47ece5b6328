// Package common — web.go содержит помощники для JSON-ответов HTTP-обработчиков.
package common

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// WriteJSON пишет ответ в формате JSON с указанным статусом.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Ошибка сериализации JSON-ответа")
	}
}

// WriteError пишет ошибку в формате {"error": "<code>"}.
// Коды ошибок: not_found, invalid_input, invalid_amount, conflict,
// forbidden, unauthorized, storage_failure.
func WriteError(w http.ResponseWriter, status int, code string) {
	WriteJSON(w, status, map[string]string{"error": code})
}

// DecodeJSON разбирает тело запроса в v. Возвращает false и отвечает 400,
// если тело не является корректным JSON.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_input")
		return false
	}
	return true
}
