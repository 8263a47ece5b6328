// Package server собирает HTTP-сервер: роутер chi, middleware
// и маршруты всех фич под /api/v1.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"ecosadik.ru/ecocoin-backend/internal/common"
	"ecosadik.ru/ecocoin-backend/internal/config"
	"ecosadik.ru/ecocoin-backend/internal/features/admin"
	"ecosadik.ru/ecocoin-backend/internal/features/children"
	"ecosadik.ru/ecocoin-backend/internal/features/economy"
	"ecosadik.ru/ecocoin-backend/internal/features/game"
	"ecosadik.ru/ecocoin-backend/internal/features/groups"
	"ecosadik.ru/ecocoin-backend/internal/features/rollover"
	"ecosadik.ru/ecocoin-backend/internal/features/stats"
)

// Handlers — обработчики всех фич, монтируемые в роутер.
type Handlers struct {
	Admin    *admin.Handler
	Groups   *groups.Handler
	Children *children.Handler
	Game     *game.Handler
	Economy  *economy.Handler
	Stats    *stats.Handler
	Rollover *rollover.Handler

	AdminService *admin.Service // для middleware проверки сессий
}

// Server — HTTP-сервер приложения.
type Server struct {
	cfg     *config.Config
	http    *http.Server
	limiter *RateLimiter
}

// New собирает сервер с роутером и middleware.
func New(cfg *config.Config, h *Handlers) *Server {
	limiter := NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(requestLogger)
	origin := cfg.CORSOrigin
	if origin == "" {
		origin = "*"
	}
	r.Use(corsMiddleware(origin))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			common.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		// Публичные маршруты игрового экрана
		r.Group(func(r chi.Router) {
			r.Use(rateLimitMiddleware(limiter))

			r.Get("/groups", h.Groups.HandlePublicList)
			r.Get("/children", h.Children.HandlePublicList)
			r.Get("/leaderboard", h.Stats.HandleLeaderboard)
			r.Get("/game/actions", h.Game.HandleActions)
			r.Post("/game/interaction", h.Game.HandleInteraction)

			r.Post("/admin/login", h.Admin.HandleLogin)
			r.Post("/admin/logout", h.Admin.HandleLogout)
		})

		// Админка: всё под проверкой сессии
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware(h.AdminService))

			r.Get("/admin/me", h.Admin.HandleMe)

			r.Get("/admin/groups", h.Groups.HandleAdminList)
			r.Post("/admin/group/create", h.Groups.HandleCreate)
			r.Put("/admin/group/{id}", h.Groups.HandleUpdate)
			r.Delete("/admin/group/{id}", h.Groups.HandleDelete)

			r.Post("/admin/children/create", h.Children.HandleCreate)
			r.Put("/admin/child/{id}/update", h.Children.HandleUpdate)
			r.Delete("/admin/child/{id}/delete", h.Children.HandleDelete)

			r.Post("/admin/child/{id}/balance-adjust", h.Economy.HandleAdjust)
			r.Get("/admin/child/{id}/events", h.Stats.HandleChildEvents)

			r.Get("/admin/stats/groups", h.Stats.HandleGroupStats)
			r.Get("/admin/stats/children", h.Stats.HandleChildStats)
			r.Get("/admin/events", h.Stats.HandleEvents)
			r.Get("/admin/monthly-results", h.Rollover.HandleResults)
		})
	})

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return &Server{
		cfg: cfg,
		http: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.HTTPHost, cfg.HTTPPort),
			Handler:      r,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		limiter: limiter,
	}
}

// Start запускает прослушивание. Блокирует до остановки сервера;
// http.ErrServerClosed после Shutdown ошибкой не считается.
func (s *Server) Start() error {
	log.WithField("addr", s.http.Addr).Info("HTTP-сервер запущен")
	err := s.http.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("ошибка HTTP-сервера: %w", err)
	}
	return nil
}

// Shutdown мягко останавливает сервер: новые запросы не принимаются,
// текущие дорабатывают до конца ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Close()
	return s.http.Shutdown(ctx)
}
