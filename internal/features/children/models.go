// Package children управляет карточками детей.
// models.go описывает структуру ребёнка.
package children

import "time"

// Child представляет ребёнка в базе данных.
//
// Balance — рабочий баланс экокоинов с последнего месячного сброса.
// Он кэш: источником истины остаётся журнал событий (см. пакет economy),
// и при расхождении баланс пересчитывается из событий.
type Child struct {
	ID        string    `db:"id"`         // Строковый идентификатор ("child1" или UUID)
	FullName  string    `db:"full_name"`  // ФИО ребёнка
	GroupID   *string   `db:"group_id"`   // Группа (nil — без группы)
	Balance   int64     `db:"balance"`    // Текущий баланс экокоинов (≥ 0)
	CreatedAt time.Time `db:"created_at"` // Когда запись создана
	UpdatedAt time.Time `db:"updated_at"` // Последнее обновление
}
