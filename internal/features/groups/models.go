// Package groups управляет группами детского сада.
// models.go описывает структуру группы.
package groups

import "time"

// Group представляет группу детского сада.
// Ребёнок принадлежит максимум одной группе; группа удаляется только пустой.
type Group struct {
	ID        string    `db:"id"`         // Строковый идентификатор ("group1" или UUID)
	Name      string    `db:"name"`       // Название («Солнышко», «Ромашка», ...)
	CreatedAt time.Time `db:"created_at"` // Когда запись создана в БД
}
