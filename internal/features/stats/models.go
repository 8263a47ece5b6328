// Package stats — read-only статистика по журналу событий и балансам.
// models.go описывает строки отчётов.
package stats

import "time"

// GroupStat — сводка по группе за период.
type GroupStat struct {
	GroupID        string `json:"groupId"`
	GroupName      string `json:"groupName"`
	ChildrenCount  int    `json:"childrenCount"`
	TotalBalance   int64  `json:"totalBalance"`
	PeriodCredited int64  `json:"periodCredited"` // сумма начислений за период (не живой баланс)
}

// ChildStat — сводка по ребёнку за период.
type ChildStat struct {
	ID             string  `json:"id"`
	FullName       string  `json:"fullName"`
	GroupID        *string `json:"groupId"`
	GroupName      *string `json:"groupName"`
	Balance        int64   `json:"balance"`
	PeriodCredited int64   `json:"periodCredited"`
	EventsCount    int     `json:"actionsCount"`
}

// EventView — событие журнала, дополненное ФИО ребёнка и названием действия.
type EventView struct {
	ID           int64     `json:"id"`
	ChildID      string    `json:"childId"`
	ChildName    string    `json:"childName"`
	ActionID     *string   `json:"actionId"`
	ActionName   string    `json:"actionName"`
	Credited     int64     `json:"credited"`
	Kind         string    `json:"kind"`
	Comment      *string   `json:"comment,omitempty"`
	AdminName    *string   `json:"admin,omitempty"`
	BalanceAfter int64     `json:"balanceAfter"`
	Timestamp    time.Time `json:"timestamp"`
}

// LeaderboardRow — строка таблицы лидеров.
type LeaderboardRow struct {
	ChildID  string  `json:"childId"`
	FullName string  `json:"fullName"`
	GroupID  *string `json:"groupId"`
	Balance  int64   `json:"balance"`
}
