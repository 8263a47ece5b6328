// Package admin реализует учётные записи персонала с парольной аутентификацией.
// models.go описывает структуры аккаунтов, сессий и попыток входа.
package admin

import (
	"context"
	"time"
)

// Роли учётных записей.
const (
	// RoleAdmin — администратор: полный доступ, включая удаление групп.
	RoleAdmin = "admin"
	// RoleEducator — воспитатель: привязан к одной группе, видит и правит
	// только её, создавать и удалять группы не может.
	RoleEducator = "educator"
)

// Account — учётная запись администратора или воспитателя.
type Account struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"` // Argon2id, формат $argon2id$v=19$...
	Role         string    `db:"role"`          // admin | educator
	GroupID      *string   `db:"group_id"`      // Группа воспитателя (nil для админа)
	CreatedAt    time.Time `db:"created_at"`
}

// Session — активная сессия учётной записи.
type Session struct {
	ID              int64     `db:"id"`
	AccountID       int64     `db:"account_id"`
	SessionToken    string    `db:"session_token"`
	AuthenticatedAt time.Time `db:"authenticated_at"`
	ExpiresAt       time.Time `db:"expires_at"`
	LastActivity    time.Time `db:"last_activity"`
	IsActive        bool      `db:"is_active"`
}

// LoginAttempt — попытка входа (для защиты от brute-force).
type LoginAttempt struct {
	ID          int64     `db:"id"`
	Username    string    `db:"username"`
	AttemptTime time.Time `db:"attempt_time"`
	Success     bool      `db:"success"`
}

// Principal — аутентифицированный вызывающий. Сервисы ядра доверяют этой
// структуре и сами проверяют права: ограничения воспитателя — это контракт
// сервисов, а не только HTTP-слоя.
type Principal struct {
	Username string
	Role     string
	GroupID  string // группа воспитателя; пустая строка для админа
}

// IsEducator сообщает, является ли принципал воспитателем.
func (p *Principal) IsEducator() bool {
	return p != nil && p.Role == RoleEducator
}

// EducatorGroup возвращает группу воспитателя или пустую строку для админа.
func (p *Principal) EducatorGroup() string {
	if p.IsEducator() {
		return p.GroupID
	}
	return ""
}

// --- Прокидывание принципала через context ---

type principalKey struct{}

// WithPrincipal кладёт принципала в контекст запроса.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext достаёт принципала из контекста. nil — запрос не аутентифицирован.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
