// Package admin — repository.go работает с таблицами admins,
// admin_sessions и admin_login_attempts.
package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository работает с таблицами учётных записей.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateAccount создаёт учётную запись. На конфликте по username обновляет
// хеш пароля, роль и группу (повторный запуск create-admin меняет пароль).
func (r *Repository) CreateAccount(ctx context.Context, a *Account) error {
	query := `
		INSERT INTO admins (username, password_hash, role, group_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    role = EXCLUDED.role,
		    group_id = EXCLUDED.group_id
	`
	_, err := r.db.Exec(ctx, query, a.Username, a.PasswordHash, a.Role, a.GroupID)
	if err != nil {
		return fmt.Errorf("ошибка создания учётной записи: %w", err)
	}
	return nil
}

// GetAccountByUsername: если не найден — (nil, nil), чтобы не различать
// «нет пользователя» и «неверный пароль» в ответе клиенту.
func (r *Repository) GetAccountByUsername(ctx context.Context, username string) (*Account, error) {
	query := `
		SELECT id, username, password_hash, role, group_id, created_at
		FROM admins
		WHERE LOWER(username) = LOWER($1)
	`
	var a Account
	err := r.db.QueryRow(ctx, query, username).Scan(
		&a.ID, &a.Username, &a.PasswordHash, &a.Role, &a.GroupID, &a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения учётной записи: %w", err)
	}
	return &a, nil
}

// CreateSession создаёт новую сессию.
func (r *Repository) CreateSession(ctx context.Context, s *Session) error {
	query := `
		INSERT INTO admin_sessions (account_id, session_token, expires_at, is_active)
		VALUES ($1, $2, $3, TRUE)
	`
	_, err := r.db.Exec(ctx, query, s.AccountID, s.SessionToken, s.ExpiresAt)
	if err != nil {
		return fmt.Errorf("ошибка создания сессии: %w", err)
	}
	return nil
}

// GetPrincipalByToken возвращает принципала по токену активной сессии.
// Просроченные и отозванные сессии не учитываются.
func (r *Repository) GetPrincipalByToken(ctx context.Context, token string) (*Principal, error) {
	query := `
		SELECT a.username, a.role, COALESCE(a.group_id, '')
		FROM admin_sessions s
		JOIN admins a ON a.id = s.account_id
		WHERE s.session_token = $1 AND s.is_active = TRUE AND s.expires_at > NOW()
	`
	var p Principal
	err := r.db.QueryRow(ctx, query, token).Scan(&p.Username, &p.Role, &p.GroupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения сессии: %w", err)
	}
	return &p, nil
}

// TouchSession обновляет время последней активности.
func (r *Repository) TouchSession(ctx context.Context, token string) error {
	query := `UPDATE admin_sessions SET last_activity = NOW() WHERE session_token = $1 AND is_active = TRUE`
	_, err := r.db.Exec(ctx, query, token)
	return err
}

// DeactivateSession отзывает сессию (выход).
func (r *Repository) DeactivateSession(ctx context.Context, token string) error {
	query := `UPDATE admin_sessions SET is_active = FALSE WHERE session_token = $1`
	_, err := r.db.Exec(ctx, query, token)
	return err
}

// DeleteExpiredSessions удаляет просроченные сессии. Возвращает число удалённых.
func (r *Repository) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM admin_sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("ошибка очистки сессий: %w", err)
	}
	return tag.RowsAffected(), nil
}

// LogAttempt записывает попытку входа.
func (r *Repository) LogAttempt(ctx context.Context, username string, success bool) error {
	query := `INSERT INTO admin_login_attempts (username, success) VALUES ($1, $2)`
	_, err := r.db.Exec(ctx, query, username, success)
	return err
}

// GetRecentFailures возвращает количество неудачных попыток за указанный период.
func (r *Repository) GetRecentFailures(ctx context.Context, username string, period time.Duration) (int, error) {
	since := time.Now().Add(-period)
	query := `
		SELECT COUNT(*) FROM admin_login_attempts
		WHERE LOWER(username) = LOWER($1) AND success = FALSE AND attempt_time >= $2
	`
	var count int
	err := r.db.QueryRow(ctx, query, username, since).Scan(&count)
	return count, err
}
