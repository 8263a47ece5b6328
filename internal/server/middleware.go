// Package server — middleware.go: логирование запросов, CORS,
// ограничение частоты и проверка сессии администратора.
package server

import (
	"errors"
	"net"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"

	"ecosadik.ru/ecocoin-backend/internal/common"
	"ecosadik.ru/ecocoin-backend/internal/features/admin"
)

// statusWriter запоминает код ответа для лога.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// requestLogger пишет строку лога на каждый запрос.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		log.WithFields(log.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"status":   sw.status,
			"duration": time.Since(start).String(),
			"ip":       r.RemoteAddr,
		}).Debug("HTTP-запрос")
	})
}

// corsMiddleware разрешает запросы фронтенда с cookie сессии.
// Origin задаётся конфигурацией; "*" несовместим с credentials,
// поэтому при нём cookie-заголовок не выставляется.
func corsMiddleware(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if origin != "*" {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP извлекает IP клиента. Без прокси RemoteAddr — это «ip:port»,
// и порт меняется от соединения к соединению, поэтому его отбрасываем;
// после RealIP там уже чистый IP, SplitHostPort тогда вернёт ошибку.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// rateLimitMiddleware отбивает слишком частые запросы одного клиента.
// Рассчитан на планшет в группе: детские «закликивания» экрана не должны
// заваливать сервер.
func rateLimitMiddleware(limiter *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			if !limiter.Allow(ip) {
				log.WithField("ip", ip).Warn("Превышен лимит запросов")
				common.WriteError(w, http.StatusTooManyRequests, "too_many_requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// authMiddleware проверяет cookie сессии и кладёт принципала в контекст.
// Запросы без живой сессии получают 401.
func authMiddleware(adminService *admin.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(admin.SessionCookie)
			if err != nil || cookie.Value == "" {
				common.WriteError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			principal, err := adminService.Authenticate(r.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, common.ErrSessionExpired) {
					common.WriteError(w, http.StatusUnauthorized, "unauthorized")
					return
				}
				log.WithError(err).Error("Ошибка проверки сессии")
				common.WriteError(w, http.StatusInternalServerError, "storage_failure")
				return
			}
			next.ServeHTTP(w, r.WithContext(admin.WithPrincipal(r.Context(), principal)))
		})
	}
}
