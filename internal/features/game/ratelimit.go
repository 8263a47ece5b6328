// Package game — ratelimit.go принимает решение «начислять или нет»
// для пары (ребёнок, действие). Решение чистое: все данные передаются
// аргументами, а атомарность «проверил-и-записал» обеспечивает хранилище,
// вызывающее Decide под блокировкой строки ребёнка.
package game

import "time"

// Verdict — решение лимитера.
type Verdict int

const (
	// Allowed — начисление разрешено.
	Allowed Verdict = iota
	// Cooldown — действие ещё на перезарядке.
	Cooldown
	// DailyLimit — исчерпан дневной лимит начислений этого действия.
	DailyLimit
)

// String возвращает текстовое представление вердикта (для логов и метрик).
func (v Verdict) String() string {
	switch v {
	case Allowed:
		return "allowed"
	case Cooldown:
		return ReasonCooldown
	case DailyLimit:
		return ReasonDailyLimit
	default:
		return "unknown"
	}
}

// DecideFunc вызывается хранилищем внутри эксклюзивной секции записи:
// lastCredit — время последнего игрового начисления этой пары
// (nil, если начислений не было), todayCount — число начислений
// за текущий календарный день.
type DecideFunc func(lastCredit *time.Time, todayCount int) Verdict

// Decide проверяет перезарядку и дневной лимит действия a на момент now.
//
// Перезарядка: последнее начисление должно быть старше a.Cooldown().
// Дневной лимит: число начислений за календарный день (не скользящие
// 24 часа) должно быть меньше a.DailyCap.
func Decide(a *Action, lastCredit *time.Time, todayCount int, now time.Time) Verdict {
	if lastCredit != nil && now.Sub(*lastCredit) < a.Cooldown() {
		return Cooldown
	}
	if todayCount >= a.DailyCap {
		return DailyLimit
	}
	return Allowed
}
