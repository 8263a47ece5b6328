// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики
// и собирает всё в один объект App.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"ecosadik.ru/ecocoin-backend/internal/config"
	"ecosadik.ru/ecocoin-backend/internal/db/postgres"
	"ecosadik.ru/ecocoin-backend/internal/features/admin"
	"ecosadik.ru/ecocoin-backend/internal/features/children"
	"ecosadik.ru/ecocoin-backend/internal/features/economy"
	"ecosadik.ru/ecocoin-backend/internal/features/game"
	"ecosadik.ru/ecocoin-backend/internal/features/groups"
	"ecosadik.ru/ecocoin-backend/internal/features/rollover"
	"ecosadik.ru/ecocoin-backend/internal/features/stats"
	"ecosadik.ru/ecocoin-backend/internal/jobs"
	"ecosadik.ru/ecocoin-backend/internal/server"
)

// App содержит все компоненты приложения.
type App struct {
	Server    *server.Server
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool

	AdminService    *admin.Service
	GameService     *game.Service
	EconomyService  *economy.Service
	RolloverService *rollover.Service
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Запускаем миграции
	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	loc := cfg.Location()

	// === 2. Репозитории ===
	adminRepo := admin.NewRepository(pool)
	groupsRepo := groups.NewRepository(pool)
	childrenRepo := children.NewRepository(pool)
	gameRepo := game.NewRepository(pool)
	economyRepo := economy.NewRepository(pool)
	statsRepo := stats.NewRepository(pool)
	rolloverRepo := rollover.NewRepository(pool)

	// === 3. Сервисы ===
	adminService := admin.NewService(adminRepo, cfg)
	groupsService := groups.NewService(groupsRepo)
	childrenService := children.NewService(childrenRepo)
	gameService := game.NewService(gameRepo, loc)
	economyService := economy.NewService(economyRepo, loc)
	statsService := stats.NewService(statsRepo)
	rolloverService := rollover.NewService(rolloverRepo, loc)

	// === 4. Обработчики ===
	handlers := &server.Handlers{
		Admin:        admin.NewHandler(adminService),
		Groups:       groups.NewHandler(groupsService),
		Children:     children.NewHandler(childrenService),
		Game:         game.NewHandler(gameService),
		Economy:      economy.NewHandler(economyService, childrenService),
		Stats:        stats.NewHandler(statsService, childrenService, loc),
		Rollover:     rollover.NewHandler(rolloverService),
		AdminService: adminService,
	}

	// === 5. Стартовые процедуры ===
	// Каталог действий по умолчанию (существующие не трогаем)
	if err := gameService.EnsureCatalog(ctx); err != nil {
		return nil, fmt.Errorf("ошибка засева каталога действий: %w", err)
	}
	// Пропущенное закрытие месяца (сервер мог быть выключен первого числа)
	if err := rolloverService.CloseMonthIfDue(ctx); err != nil {
		return nil, fmt.Errorf("ошибка месячного закрытия при старте: %w", err)
	}
	// Сверка балансов с журналом событий
	if err := economyService.Reconcile(ctx); err != nil {
		return nil, fmt.Errorf("ошибка сверки балансов: %w", err)
	}

	// === 6. HTTP-сервер и планировщик ===
	srv := server.New(cfg, handlers)
	scheduler := jobs.NewScheduler(loc, rolloverService, adminService)

	log.Info("Приложение инициализировано")

	return &App{
		Server:          srv,
		Scheduler:       scheduler,
		DB:              pool,
		AdminService:    adminService,
		GameService:     gameService,
		EconomyService:  economyService,
		RolloverService: rolloverService,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	// Инициализируем систему миграций
	if err := postgres.EnsureMigrationTable(ctx, pool); err != nil {
		return err
	}

	// Выполняем миграции по порядку
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Groups},
		{2, migration002Children},
		{3, migration003Actions},
		{4, migration004Events},
		{5, migration005MonthlyResults},
		{6, migration006Admin},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Groups = `
CREATE TABLE IF NOT EXISTS groups (
    id VARCHAR(64) PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW()
);
INSERT INTO groups (id, name) VALUES
    ('group1', 'Солнышко'),
    ('group2', 'Ромашка')
ON CONFLICT (id) DO NOTHING;
`

var migration002Children = `
CREATE TABLE IF NOT EXISTS children (
    id VARCHAR(64) PRIMARY KEY,
    full_name VARCHAR(255) NOT NULL,
    group_id VARCHAR(64) REFERENCES groups(id) ON DELETE RESTRICT,
    balance BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ DEFAULT NOW(),
    updated_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_children_group_id ON children(group_id);
`

var migration003Actions = `
CREATE TABLE IF NOT EXISTS actions (
    id VARCHAR(64) PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    coins BIGINT NOT NULL,
    cooldown_sec INTEGER NOT NULL DEFAULT 0,
    daily_cap INTEGER NOT NULL DEFAULT 0,
    position INTEGER NOT NULL DEFAULT 0
);
`

var migration004Events = `
CREATE TABLE IF NOT EXISTS events (
    id BIGSERIAL PRIMARY KEY,
    child_id VARCHAR(64) NOT NULL REFERENCES children(id),
    action_id VARCHAR(64) REFERENCES actions(id),
    credited BIGINT NOT NULL,
    kind VARCHAR(32) NOT NULL CHECK (kind IN ('action_credit', 'manual_adjustment')),
    comment TEXT,
    admin_name VARCHAR(64),
    balance_after BIGINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_events_child_action_created
    ON events(child_id, action_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_events_created_at ON events(created_at DESC);
`

var migration005MonthlyResults = `
CREATE TABLE IF NOT EXISTS monthly_results (
    id BIGSERIAL PRIMARY KEY,
    year INTEGER NOT NULL,
    month INTEGER NOT NULL,
    total_sum BIGINT NOT NULL DEFAULT 0,
    closed_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (year, month)
);
CREATE TABLE IF NOT EXISTS monthly_result_children (
    id BIGSERIAL PRIMARY KEY,
    result_id BIGINT NOT NULL REFERENCES monthly_results(id) ON DELETE CASCADE,
    child_id VARCHAR(64) NOT NULL,
    full_name VARCHAR(255) NOT NULL,
    group_id VARCHAR(64),
    balance BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_monthly_result_children_result
    ON monthly_result_children(result_id);
CREATE TABLE IF NOT EXISTS rollover_state (
    id SMALLINT PRIMARY KEY CHECK (id = 1),
    last_year INTEGER NOT NULL,
    last_month INTEGER NOT NULL
);
`

var migration006Admin = `
CREATE TABLE IF NOT EXISTS admins (
    id BIGSERIAL PRIMARY KEY,
    username VARCHAR(64) UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    role VARCHAR(16) NOT NULL CHECK (role IN ('admin', 'educator')),
    group_id VARCHAR(64) REFERENCES groups(id),
    created_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE TABLE IF NOT EXISTS admin_sessions (
    id BIGSERIAL PRIMARY KEY,
    account_id BIGINT NOT NULL REFERENCES admins(id) ON DELETE CASCADE,
    session_token VARCHAR(255) UNIQUE NOT NULL,
    created_at TIMESTAMPTZ DEFAULT NOW(),
    expires_at TIMESTAMPTZ NOT NULL,
    last_activity TIMESTAMPTZ DEFAULT NOW(),
    is_active BOOLEAN DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS idx_admin_sessions_token ON admin_sessions(session_token);
CREATE TABLE IF NOT EXISTS admin_login_attempts (
    id BIGSERIAL PRIMARY KEY,
    username VARCHAR(64) NOT NULL,
    attempt_time TIMESTAMPTZ DEFAULT NOW(),
    success BOOLEAN DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS idx_admin_login_attempts_username
    ON admin_login_attempts(username, attempt_time DESC);
`
