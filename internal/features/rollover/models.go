// Package rollover — месячное закрытие: в начале нового месяца балансы
// всех детей фиксируются в итогах месяца и обнуляются.
// models.go описывает итоги закрытого месяца.
package rollover

import "time"

// ResultChild — снимок баланса одного ребёнка на момент закрытия месяца.
type ResultChild struct {
	ChildID  string  `json:"childId"`
	FullName string  `json:"fullName"`
	GroupID  *string `json:"groupId"`
	Balance  int64   `json:"balance"`
}

// MonthlyResult — итог одного закрытого месяца.
type MonthlyResult struct {
	ID       int64          `json:"id"`
	Year     int            `json:"year"`
	Month    int            `json:"month"`
	TotalSum int64          `json:"totalSum"`
	ClosedAt time.Time      `json:"closedAt"`
	Children []*ResultChild `json:"children"`
}
