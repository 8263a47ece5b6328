// Package stats — repository.go выполняет агрегирующие запросы по журналу
// событий и балансам. Только чтение: блокировок не берём, слегка устаревшие
// агрегаты при параллельных записях допустимы.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// nullable превращает нулевое время в NULL для SQL-фильтров.
func nullable(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// GroupStats возвращает сводку по каждой группе: число детей, суммарный
// баланс и сумму начислений за период [from, to).
func (r *Repository) GroupStats(ctx context.Context, from, to time.Time) ([]*GroupStat, error) {
	query := `
		SELECT g.id, g.name,
		       (SELECT COUNT(*) FROM children c WHERE c.group_id = g.id),
		       (SELECT COALESCE(SUM(c.balance), 0) FROM children c WHERE c.group_id = g.id),
		       (SELECT COALESCE(SUM(e.credited), 0)
		        FROM events e
		        JOIN children c ON c.id = e.child_id
		        WHERE c.group_id = g.id
		          AND ($1::timestamptz IS NULL OR e.created_at >= $1)
		          AND ($2::timestamptz IS NULL OR e.created_at < $2))
		FROM groups g
		ORDER BY g.created_at, g.id
	`
	rows, err := r.db.Query(ctx, query, nullable(from), nullable(to))
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса статистики групп: %w", err)
	}
	defer rows.Close()

	var out []*GroupStat
	for rows.Next() {
		var s GroupStat
		if err := rows.Scan(&s.GroupID, &s.GroupName, &s.ChildrenCount, &s.TotalBalance, &s.PeriodCredited); err != nil {
			return nil, fmt.Errorf("ошибка сканирования статистики группы: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// ChildStats возвращает сводку по детям с фильтрами по группе и подстроке ФИО.
func (r *Repository) ChildStats(ctx context.Context, groupID, q string, from, to time.Time) ([]*ChildStat, error) {
	query := `
		SELECT c.id, c.full_name, c.group_id, g.name, c.balance,
		       COALESCE(SUM(e.credited), 0),
		       COUNT(e.id)
		FROM children c
		LEFT JOIN groups g ON g.id = c.group_id
		LEFT JOIN events e
		  ON e.child_id = c.id
		 AND ($3::timestamptz IS NULL OR e.created_at >= $3)
		 AND ($4::timestamptz IS NULL OR e.created_at < $4)
		WHERE ($1 = '' OR c.group_id = $1)
		  AND ($2 = '' OR c.full_name ILIKE '%' || $2 || '%')
		GROUP BY c.id, c.full_name, c.group_id, g.name, c.balance, c.created_at
		ORDER BY c.created_at, c.id
	`
	rows, err := r.db.Query(ctx, query, groupID, q, nullable(from), nullable(to))
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса статистики детей: %w", err)
	}
	defer rows.Close()

	var out []*ChildStat
	for rows.Next() {
		var s ChildStat
		if err := rows.Scan(&s.ID, &s.FullName, &s.GroupID, &s.GroupName, &s.Balance, &s.PeriodCredited, &s.EventsCount); err != nil {
			return nil, fmt.Errorf("ошибка сканирования статистики ребёнка: %w", err)
		}
		out = append(out, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// Events возвращает события журнала (новые первыми) с фильтрами по группе,
// ребёнку и периоду. Каждое событие дополнено ФИО ребёнка и названием
// действия; ручные корректировки подписаны «Корректировка баланса».
func (r *Repository) Events(ctx context.Context, groupID, childID string, from, to time.Time) ([]*EventView, error) {
	query := `
		SELECT e.id, e.child_id, c.full_name,
		       e.action_id, COALESCE(a.name, 'Корректировка баланса'),
		       e.credited, e.kind, e.comment, e.admin_name, e.balance_after, e.created_at
		FROM events e
		JOIN children c ON c.id = e.child_id
		LEFT JOIN actions a ON a.id = e.action_id
		WHERE ($1 = '' OR c.group_id = $1)
		  AND ($2 = '' OR e.child_id = $2)
		  AND ($3::timestamptz IS NULL OR e.created_at >= $3)
		  AND ($4::timestamptz IS NULL OR e.created_at < $4)
		ORDER BY e.created_at DESC, e.id DESC
	`
	rows, err := r.db.Query(ctx, query, groupID, childID, nullable(from), nullable(to))
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса событий: %w", err)
	}
	defer rows.Close()

	var out []*EventView
	for rows.Next() {
		var e EventView
		if err := rows.Scan(
			&e.ID, &e.ChildID, &e.ChildName,
			&e.ActionID, &e.ActionName,
			&e.Credited, &e.Kind, &e.Comment, &e.AdminName, &e.BalanceAfter, &e.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("ошибка сканирования события: %w", err)
		}
		out = append(out, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// Leaderboard возвращает детей по убыванию баланса. Вторичный ключ (ФИО)
// нужен только для стабильности вывода; порядок равных балансов
// контрактом не фиксирован.
func (r *Repository) Leaderboard(ctx context.Context, groupID string) ([]*LeaderboardRow, error) {
	query := `
		SELECT id, full_name, group_id, balance
		FROM children
		WHERE ($1 = '' OR group_id = $1)
		ORDER BY balance DESC, full_name ASC
	`
	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса таблицы лидеров: %w", err)
	}
	defer rows.Close()

	var out []*LeaderboardRow
	for rows.Next() {
		var l LeaderboardRow
		if err := rows.Scan(&l.ChildID, &l.FullName, &l.GroupID, &l.Balance); err != nil {
			return nil, fmt.Errorf("ошибка сканирования строки лидеров: %w", err)
		}
		out = append(out, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}
