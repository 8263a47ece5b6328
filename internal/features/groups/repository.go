// Package groups — repository.go отвечает за все операции с таблицей groups в БД.
package groups

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ecosadik.ru/ecocoin-backend/internal/common"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// List возвращает все группы в порядке создания.
func (r *Repository) List(ctx context.Context) ([]*Group, error) {
	query := `SELECT id, name, created_at FROM groups ORDER BY created_at, id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса групп: %w", err)
	}
	defer rows.Close()

	var out []*Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования группы: %w", err)
		}
		out = append(out, &g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// Get: если группа не найдена — (nil, nil).
func (r *Repository) Get(ctx context.Context, id string) (*Group, error) {
	query := `SELECT id, name, created_at FROM groups WHERE id = $1`
	var g Group
	err := r.db.QueryRow(ctx, query, id).Scan(&g.ID, &g.Name, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения группы (id=%s): %w", id, err)
	}
	return &g, nil
}

// Create добавляет новую группу.
func (r *Repository) Create(ctx context.Context, g *Group) error {
	query := `INSERT INTO groups (id, name) VALUES ($1, $2)`
	if _, err := r.db.Exec(ctx, query, g.ID, g.Name); err != nil {
		return fmt.Errorf("ошибка создания группы: %w", err)
	}
	return nil
}

// UpdateName переименовывает группу. Возвращает false, если группы нет.
func (r *Repository) UpdateName(ctx context.Context, id, name string) (bool, error) {
	query := `UPDATE groups SET name = $2 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, name)
	if err != nil {
		return false, fmt.Errorf("ошибка переименования группы: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Delete удаляет группу. Проверка пустоты в сервисе и DELETE — разные
// запросы, между ними ребёнка могут добавить; внешние ключи
// children.group_id (ON DELETE RESTRICT) и admins.group_id закрывают
// эту гонку, а нарушение FK переводится в понятную ошибку.
func (r *Repository) Delete(ctx context.Context, id string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM groups WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			if pgErr.TableName == "admins" {
				return false, common.ErrGroupInUse
			}
			return false, common.ErrGroupNotEmpty
		}
		return false, fmt.Errorf("ошибка удаления группы: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CountChildren возвращает число детей в группе.
func (r *Repository) CountChildren(ctx context.Context, groupID string) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM children WHERE group_id = $1`, groupID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта детей в группе: %w", err)
	}
	return count, nil
}
