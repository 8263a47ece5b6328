// Package children — repository.go отвечает за операции с таблицей children.
// Удаление ребёнка и его событий выполняется в одной транзакции.
package children

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// List возвращает всех детей в порядке создания.
func (r *Repository) List(ctx context.Context) ([]*Child, error) {
	query := `
		SELECT id, full_name, group_id, balance, created_at, updated_at
		FROM children
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса детей: %w", err)
	}
	defer rows.Close()

	var out []*Child
	for rows.Next() {
		var c Child
		if err := rows.Scan(&c.ID, &c.FullName, &c.GroupID, &c.Balance, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования ребёнка: %w", err)
		}
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// Get: если ребёнок не найден — (nil, nil).
func (r *Repository) Get(ctx context.Context, id string) (*Child, error) {
	query := `
		SELECT id, full_name, group_id, balance, created_at, updated_at
		FROM children
		WHERE id = $1
	`
	var c Child
	err := r.db.QueryRow(ctx, query, id).Scan(&c.ID, &c.FullName, &c.GroupID, &c.Balance, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения ребёнка (id=%s): %w", id, err)
	}
	return &c, nil
}

// Create добавляет нового ребёнка с нулевым балансом.
func (r *Repository) Create(ctx context.Context, c *Child) error {
	query := `INSERT INTO children (id, full_name, group_id, balance) VALUES ($1, $2, $3, 0)`
	if _, err := r.db.Exec(ctx, query, c.ID, c.FullName, c.GroupID); err != nil {
		return fmt.Errorf("ошибка создания ребёнка: %w", err)
	}
	return nil
}

// Update обновляет ФИО и группу. Возвращает false, если ребёнка нет.
func (r *Repository) Update(ctx context.Context, id, fullName string, groupID *string) (bool, error) {
	query := `UPDATE children SET full_name = $2, group_id = $3, updated_at = NOW() WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, fullName, groupID)
	if err != nil {
		return false, fmt.Errorf("ошибка обновления ребёнка: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteWithEvents удаляет ребёнка и ВСЕ его события одной транзакцией.
// Операция необратима.
func (r *Repository) DeleteWithEvents(ctx context.Context, id string) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM events WHERE child_id = $1`, id); err != nil {
		return false, fmt.Errorf("ошибка удаления событий ребёнка: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM children WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("ошибка удаления ребёнка: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return true, nil
}

// GroupExists проверяет существование группы (для валидации groupId).
func (r *Repository) GroupExists(ctx context.Context, groupID string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM groups WHERE id = $1)`, groupID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки группы: %w", err)
	}
	return exists, nil
}
