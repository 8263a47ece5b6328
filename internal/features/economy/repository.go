// Package economy — repository.go выполняет денежные операции с таблицами
// children и events. Все операции — транзакции БД с блокировкой строки
// ребёнка, чтобы обновление баланса и запись события были атомарными.
package economy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecosadik.ru/ecocoin-backend/internal/common"
)

// Repository выполняет операции журнала и балансов.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий экономики.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// AdjustTx атомарно применяет ручную корректировку: блокирует строку ребёнка,
// проверяет, что баланс не уйдёт в минус, пишет событие manual_adjustment
// и новый баланс. Всё или ничего: при любой ошибке события не остаётся.
func (r *Repository) AdjustTx(ctx context.Context, childID string, delta int64, comment, adminName string, now time.Time) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Блокируем строку ребёнка (та же эксклюзивная секция, что у игры)
	var balance int64
	err = tx.QueryRow(ctx, `SELECT balance FROM children WHERE id = $1 FOR UPDATE`, childID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, common.ErrChildNotFound
		}
		return 0, fmt.Errorf("ошибка чтения баланса: %w", err)
	}

	newBalance := balance + delta
	if newBalance < 0 {
		// Баланс не может стать отрицательным — отказ без записи
		return 0, common.ErrInvalidAmount
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO events (child_id, action_id, credited, kind, comment, admin_name, balance_after, created_at)
		VALUES ($1, NULL, $2, $3, $4, $5, $6, $7)
	`, childID, delta, KindManualAdjustment, comment, adminName, newBalance, now)
	if err != nil {
		return 0, fmt.Errorf("ошибка записи события корректировки: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE children SET balance = $2, updated_at = NOW() WHERE id = $1
	`, childID, newBalance)
	if err != nil {
		return 0, fmt.Errorf("ошибка обновления баланса: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return newBalance, nil
}

// ReconcileBalances сверяет кэшированные балансы с журналом событий
// и исправляет расхождения. Источник истины — события с момента последнего
// месячного закрытия (или все события, если закрытий не было).
// Возвращает число исправленных балансов.
func (r *Repository) ReconcileBalances(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		WITH boundary AS (
			SELECT COALESCE(MAX(closed_at), 'epoch'::timestamptz) AS ts FROM monthly_results
		),
		sums AS (
			SELECT c.id, COALESCE(SUM(e.credited), 0) AS expected
			FROM children c
			LEFT JOIN events e
			  ON e.child_id = c.id AND e.created_at > (SELECT ts FROM boundary)
			GROUP BY c.id
		)
		UPDATE children c
		SET balance = s.expected, updated_at = NOW()
		FROM sums s
		WHERE s.id = c.id AND c.balance <> s.expected
	`)
	if err != nil {
		return 0, fmt.Errorf("ошибка сверки балансов: %w", err)
	}
	return tag.RowsAffected(), nil
}
