// Package game — repository.go выполняет операции с таблицами actions,
// children и events. Начисление выполняется одной транзакцией с блокировкой
// строки ребёнка (SELECT ... FOR UPDATE): проверка лимитов, запись события
// и обновление баланса — неделимая единица на пару (ребёнок, действие).
package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecosadik.ru/ecocoin-backend/internal/common"
	"ecosadik.ru/ecocoin-backend/internal/features/economy"
)

// Repository работает с игровыми таблицами.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт игровой репозиторий.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// ListActions возвращает каталог действий в игровом порядке.
func (r *Repository) ListActions(ctx context.Context) ([]*Action, error) {
	query := `SELECT id, name, coins, cooldown_sec, daily_cap, position FROM actions ORDER BY position, id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса каталога действий: %w", err)
	}
	defer rows.Close()

	var out []*Action
	for rows.Next() {
		var a Action
		if err := rows.Scan(&a.ID, &a.Name, &a.Coins, &a.CooldownSec, &a.DailyCap, &a.Position); err != nil {
			return nil, fmt.Errorf("ошибка сканирования действия: %w", err)
		}
		out = append(out, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// GetAction: если действия нет в каталоге — (nil, nil).
func (r *Repository) GetAction(ctx context.Context, id string) (*Action, error) {
	query := `SELECT id, name, coins, cooldown_sec, daily_cap, position FROM actions WHERE id = $1`
	var a Action
	err := r.db.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.Coins, &a.CooldownSec, &a.DailyCap, &a.Position)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения действия (id=%s): %w", id, err)
	}
	return &a, nil
}

// CreditOutcome — итог попытки начисления в хранилище.
type CreditOutcome struct {
	Verdict    Verdict // Решение лимитера
	Credited   int64   // Сколько начислено (0 при отказе)
	NewBalance int64   // Баланс после (текущий баланс при отказе)
}

// CreditTx атомарно выполняет «проверил-и-начислил» для пары (ребёнок, действие):
//
//  1. блокирует строку ребёнка (FOR UPDATE) — записи по одному ребёнку
//     сериализованы, дети друг друга не блокируют;
//  2. под блокировкой читает время последнего начисления пары и число
//     начислений за день, передаёт их decide;
//  3. при Allowed — пишет ровно одно событие action_credit и новый баланс.
//
// При отказе лимитера транзакция откатывается без записи. Любая ошибка
// хранилища также откатывает всё: частичных событий не бывает.
func (r *Repository) CreditTx(ctx context.Context, childID string, a *Action, now, dayStart time.Time, decide DecideFunc) (*CreditOutcome, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Блокируем строку ребёнка — эксклюзивная секция записи
	var balance int64
	err = tx.QueryRow(ctx, `SELECT balance FROM children WHERE id = $1 FOR UPDATE`, childID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrChildNotFound
		}
		return nil, fmt.Errorf("ошибка чтения баланса: %w", err)
	}

	// Последнее игровое начисление этой пары (NULL, если не было)
	var lastCredit *time.Time
	err = tx.QueryRow(ctx, `
		SELECT MAX(created_at) FROM events
		WHERE child_id = $1 AND action_id = $2 AND kind = $3
	`, childID, a.ID, economy.KindActionCredit).Scan(&lastCredit)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения последнего начисления: %w", err)
	}

	// Число начислений пары за текущий календарный день
	var todayCount int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FROM events
		WHERE child_id = $1 AND action_id = $2 AND kind = $3 AND created_at >= $4
	`, childID, a.ID, economy.KindActionCredit, dayStart).Scan(&todayCount)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта дневных начислений: %w", err)
	}

	verdict := decide(lastCredit, todayCount)
	if verdict != Allowed {
		// Отказ — события нет, баланс не тронут
		return &CreditOutcome{Verdict: verdict, NewBalance: balance}, nil
	}

	newBalance := balance + a.Coins

	_, err = tx.Exec(ctx, `
		INSERT INTO events (child_id, action_id, credited, kind, balance_after, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, childID, a.ID, a.Coins, economy.KindActionCredit, newBalance, now)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи события: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE children SET balance = $2, updated_at = NOW() WHERE id = $1
	`, childID, newBalance)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления баланса: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return &CreditOutcome{Verdict: Allowed, Credited: a.Coins, NewBalance: newBalance}, nil
}

// EnsureCatalog засевает каталог действиями по умолчанию, не трогая существующие.
func (r *Repository) EnsureCatalog(ctx context.Context) error {
	for _, a := range DefaultActions {
		_, err := r.db.Exec(ctx, `
			INSERT INTO actions (id, name, coins, cooldown_sec, daily_cap, position)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING
		`, a.ID, a.Name, a.Coins, a.CooldownSec, a.DailyCap, a.Position)
		if err != nil {
			return fmt.Errorf("ошибка засева каталога: %w", err)
		}
	}
	return nil
}

// ResetCatalog перезаписывает каталог действиями по умолчанию.
func (r *Repository) ResetCatalog(ctx context.Context) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM actions`); err != nil {
		return fmt.Errorf("ошибка очистки каталога: %w", err)
	}
	for _, a := range DefaultActions {
		_, err := tx.Exec(ctx, `
			INSERT INTO actions (id, name, coins, cooldown_sec, daily_cap, position)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, a.ID, a.Name, a.Coins, a.CooldownSec, a.DailyCap, a.Position)
		if err != nil {
			return fmt.Errorf("ошибка восстановления каталога: %w", err)
		}
	}
	return tx.Commit(ctx)
}
