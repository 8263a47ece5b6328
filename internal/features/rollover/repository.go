// Package rollover — repository.go работает с таблицами monthly_results,
// monthly_result_children и маркером rollover_state. Закрытие месяца —
// одна транзакция: снимок, обнуление балансов и сдвиг маркера либо
// происходят вместе, либо не происходят вовсе.
package rollover

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository выполняет операции месячного закрытия.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий месячных итогов.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// LastClosed возвращает (год, месяц) последнего закрытого месяца из маркера.
// ok=false — маркер ещё не инициализирован (первый запуск).
func (r *Repository) LastClosed(ctx context.Context) (int, int, bool, error) {
	var year, month int
	err := r.db.QueryRow(ctx, `SELECT last_year, last_month FROM rollover_state WHERE id = 1`).Scan(&year, &month)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, 0, false, nil
		}
		return 0, 0, false, fmt.Errorf("ошибка чтения маркера закрытия: %w", err)
	}
	return year, month, true, nil
}

// InitMarker инициализирует маркер при первом запуске, не создавая итогов.
// Уже существующий маркер не трогает.
func (r *Repository) InitMarker(ctx context.Context, year, month int) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO rollover_state (id, last_year, last_month)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO NOTHING
	`, year, month)
	if err != nil {
		return fmt.Errorf("ошибка инициализации маркера закрытия: %w", err)
	}
	return nil
}

// CloseMonth атомарно закрывает месяц (year, month): блокирует все строки
// детей, создаёт итог с поимённым снимком балансов, обнуляет балансы и
// сдвигает маркер. От двойного закрытия конкурирующими экземплярами
// страхуют два рубежа: проигравший либо видит существующий итог до
// блокировок, либо (если прошёл проверку раньше фиксации победителя)
// упирается в UNIQUE(year, month) на вставке — оба пути выходят без
// изменений.
func (r *Repository) CloseMonth(ctx context.Context, year, month int, now time.Time) (*MonthlyResult, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	// Если итог уже есть — месяц закрыт кем-то другим
	var existing int64
	err = tx.QueryRow(ctx, `SELECT id FROM monthly_results WHERE year = $1 AND month = $2`, year, month).Scan(&existing)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("ошибка проверки итогов месяца: %w", err)
	}

	// Блокируем всех детей: начисления и корректировки ждут конца закрытия
	rows, err := tx.Query(ctx, `
		SELECT id, full_name, group_id, balance
		FROM children
		ORDER BY id
		FOR UPDATE
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка блокировки детей: %w", err)
	}
	var children []*ResultChild
	var total int64
	for rows.Next() {
		var c ResultChild
		if err := rows.Scan(&c.ChildID, &c.FullName, &c.GroupID, &c.Balance); err != nil {
			rows.Close()
			return nil, fmt.Errorf("ошибка сканирования ребёнка: %w", err)
		}
		total += c.Balance
		children = append(children, &c)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}

	result := &MonthlyResult{Year: year, Month: month, TotalSum: total, ClosedAt: now, Children: children}
	err = tx.QueryRow(ctx, `
		INSERT INTO monthly_results (year, month, total_sum, closed_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, year, month, total, now).Scan(&result.ID)
	if err != nil {
		// Победитель зафиксировал итог, пока мы ждали блокировок детей
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка записи итога месяца: %w", err)
	}

	for _, c := range children {
		_, err = tx.Exec(ctx, `
			INSERT INTO monthly_result_children (result_id, child_id, full_name, group_id, balance)
			VALUES ($1, $2, $3, $4, $5)
		`, result.ID, c.ChildID, c.FullName, c.GroupID, c.Balance)
		if err != nil {
			return nil, fmt.Errorf("ошибка записи снимка ребёнка: %w", err)
		}
	}

	_, err = tx.Exec(ctx, `UPDATE children SET balance = 0, updated_at = NOW() WHERE balance <> 0`)
	if err != nil {
		return nil, fmt.Errorf("ошибка обнуления балансов: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO rollover_state (id, last_year, last_month)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET last_year = $1, last_month = $2
	`, year, month)
	if err != nil {
		return nil, fmt.Errorf("ошибка обновления маркера закрытия: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return result, nil
}

// ListResults возвращает итоги закрытых месяцев, новые первыми,
// вместе с поимёнными снимками.
func (r *Repository) ListResults(ctx context.Context) ([]*MonthlyResult, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, year, month, total_sum, closed_at
		FROM monthly_results
		ORDER BY year DESC, month DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса итогов месяцев: %w", err)
	}
	defer rows.Close()

	var results []*MonthlyResult
	byID := make(map[int64]*MonthlyResult)
	for rows.Next() {
		var m MonthlyResult
		if err := rows.Scan(&m.ID, &m.Year, &m.Month, &m.TotalSum, &m.ClosedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования итога: %w", err)
		}
		m.Children = []*ResultChild{}
		results = append(results, &m)
		byID[m.ID] = &m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	if len(results) == 0 {
		return results, nil
	}

	crows, err := r.db.Query(ctx, `
		SELECT result_id, child_id, full_name, group_id, balance
		FROM monthly_result_children
		ORDER BY balance DESC, full_name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса снимков детей: %w", err)
	}
	defer crows.Close()

	for crows.Next() {
		var resultID int64
		var c ResultChild
		if err := crows.Scan(&resultID, &c.ChildID, &c.FullName, &c.GroupID, &c.Balance); err != nil {
			return nil, fmt.Errorf("ошибка сканирования снимка: %w", err)
		}
		if m, ok := byID[resultID]; ok {
			m.Children = append(m.Children, &c)
		}
	}
	if err := crows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return results, nil
}
