// Package game реализует игровое ядро: каталог действий, перезарядки,
// дневные лимиты и начисление экокоинов.
// models.go описывает каталог действий и результат взаимодействия.
package game

import "time"

// Action — правило начисления за экологическое действие.
// Справочные данные: игрой не изменяются, правится только админ-утилитами.
type Action struct {
	ID          string `db:"id"`           // Идентификатор ("crane", "battery", ...)
	Name        string `db:"name"`         // Отображаемое название
	Coins       int64  `db:"coins"`        // Базовое начисление за одно действие
	CooldownSec int    `db:"cooldown_sec"` // Перезарядка между начислениями, секунды
	DailyCap    int    `db:"daily_cap"`    // Максимум начислений за календарный день
	Position    int    `db:"position"`     // Порядок на игровом экране
}

// Cooldown возвращает перезарядку действия как time.Duration.
func (a *Action) Cooldown() time.Duration {
	return time.Duration(a.CooldownSec) * time.Second
}

// Причины отказа/успеха взаимодействия (возвращаются клиенту как есть).
const (
	ReasonOK         = "ok"
	ReasonCooldown   = "cooldown"
	ReasonDailyLimit = "daily_limit"
)

// InteractResult — итог одного взаимодействия.
// При Success=false событие НЕ записано и баланс не изменён.
type InteractResult struct {
	Success    bool   `json:"success"`
	Credited   int64  `json:"credited"`
	NewBalance int64  `json:"new_balance"`
	Reason     string `json:"reason"`
}

// DefaultActions — каталог по умолчанию. Засевается при первом запуске
// и восстанавливается командой reset-actions.
var DefaultActions = []Action{
	{ID: "crane", Name: "Закрытие крана", Coins: 1, CooldownSec: 120, DailyCap: 20, Position: 1},
	{ID: "cardboard_box", Name: "Макулатура", Coins: 5, CooldownSec: 120, DailyCap: 3, Position: 2},
	{ID: "battery", Name: "Батарейка", Coins: 5, CooldownSec: 120, DailyCap: 2, Position: 3},
	{ID: "plastic_cap", Name: "Пластиковые крышки", Coins: 3, CooldownSec: 120, DailyCap: 6, Position: 4},
	{ID: "sorting", Name: "Сортировка мусора", Coins: 2, CooldownSec: 120, DailyCap: 10, Position: 5},
}
