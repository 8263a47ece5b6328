// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, работа с календарными границами.
package common

import (
	"fmt"
	"math"
	"time"
)

// PluralizeCoins возвращает правильную форму слова «экокоин» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "экокоин" (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → "экокоина" (2, 3, 4, 22, 23, ...)
//   - Остальные случаи → "экокоинов" (0, 5-20, 25-30, 100, ...)
//
// Примеры:
//
//	PluralizeCoins(1)  → "экокоин"
//	PluralizeCoins(3)  → "экокоина"
//	PluralizeCoins(5)  → "экокоинов"
//	PluralizeCoins(11) → "экокоинов"
//	PluralizeCoins(21) → "экокоин"
func PluralizeCoins(n int64) string {
	// Берём абсолютное значение для отрицательных чисел
	absN := int64(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	// Единственное число: 1, 21, 31, 101 (но НЕ 11, 111)
	if lastDigit == 1 && lastTwoDigits != 11 {
		return "экокоин"
	}

	// Малое множественное: 2-4, 22-24, 32-34 (но НЕ 12-14)
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "экокоина"
	}

	// Большое множественное: 0, 5-20, 25-30, 100, ...
	return "экокоинов"
}

// FormatBalance форматирует баланс в читабельную строку для логов.
// Пример: FormatBalance(150) → "150 экокоинов"
func FormatBalance(balance int64) string {
	return fmt.Sprintf("%d %s", balance, PluralizeCoins(balance))
}

// DayStart возвращает начало календарного дня момента t в поясе loc.
// Дневные лимиты действий считаются от этой границы, а не скользящими 24 часами.
func DayStart(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// MonthStart возвращает начало календарного месяца момента t в поясе loc.
func MonthStart(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), 1, 0, 0, 0, 0, loc)
}

// PrevMonth возвращает (год, месяц) месяца, предшествующего моменту t в поясе loc.
// Именно этот месяц закрывается при месячном сбросе балансов.
func PrevMonth(t time.Time, loc *time.Location) (int, time.Month) {
	lt := t.In(loc)
	y, m := lt.Year(), lt.Month()
	if m == time.January {
		return y - 1, time.December
	}
	return y, m - 1
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04" (день.месяц.год часы:минуты).
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02.01.2006 15:04")
}

// ParseDate разбирает дату фильтра "YYYY-MM-DD" как полночь в поясе loc.
// Пустая строка → нулевое время (фильтр не задан).
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("некорректная дата %q: %w", s, err)
	}
	return t, nil
}

// DateRange разбирает границы периода [from, to] из строк "YYYY-MM-DD".
// Верхняя граница включительна: to превращается в начало следующего дня,
// чтобы SQL-сравнение created_at < to захватывало весь день.
func DateRange(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	f, err := ParseDate(from, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	t, err := ParseDate(to, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !t.IsZero() {
		t = t.AddDate(0, 0, 1)
	}
	return f, t, nil
}
