// Package economy — фундамент балансов: журнал событий и ручные корректировки.
// models.go описывает событие — единственный источник истины по истории баланса.
package economy

import "time"

// Виды событий.
const (
	// KindActionCredit — игровое начисление за экологическое действие.
	KindActionCredit = "action_credit"
	// KindManualAdjustment — ручная корректировка администратора
	// (всегда с комментарием, отличима от игровых начислений в любых выборках).
	KindManualAdjustment = "manual_adjustment"
)

// Event представляет одно событие журнала. События неизменяемы;
// баланс ребёнка равен сумме credited его событий с последнего
// месячного сброса (или с создания).
type Event struct {
	ID           int64     `db:"id"`            // ID события
	ChildID      string    `db:"child_id"`      // Ребёнок (обязателен всегда)
	ActionID     *string   `db:"action_id"`     // Действие (nil для ручных корректировок)
	Credited     int64     `db:"credited"`      // Сумма со знаком
	Kind         string    `db:"kind"`          // action_credit | manual_adjustment
	Comment      *string   `db:"comment"`       // Комментарий (обязателен для корректировок)
	AdminName    *string   `db:"admin_name"`    // Кто корректировал (для аудита)
	BalanceAfter int64     `db:"balance_after"` // Баланс после события
	CreatedAt    time.Time `db:"created_at"`    // Время события
}
