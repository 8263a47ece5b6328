// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях сервера.
// Эти ошибки позволяют HTTP-слою различать типы проблем
// и возвращать клиенту правильный код ответа.
package common

import "errors"

// Ошибки справочников (группы, дети, действия)
var (
	// ErrChildNotFound — ребёнок не найден в базе
	ErrChildNotFound = errors.New("ребёнок не найден")
	// ErrGroupNotFound — группа не найдена
	ErrGroupNotFound = errors.New("группа не найдена")
	// ErrActionNotFound — действие отсутствует в каталоге
	ErrActionNotFound = errors.New("действие не найдено в каталоге")
	// ErrGroupNotEmpty — в группе остались дети, удалять нельзя
	ErrGroupNotEmpty = errors.New("в группе есть дети, сначала переместите или удалите их")
	// ErrGroupInUse — группа привязана к учётной записи воспитателя
	ErrGroupInUse = errors.New("группа привязана к учётной записи воспитателя")
)

// Ошибки игры и начислений
var (
	// ErrCooldown — действие на перезарядке, монеты не начислены
	ErrCooldown = errors.New("действие ещё на перезарядке")
	// ErrDailyLimit — дневной лимит действия исчерпан
	ErrDailyLimit = errors.New("дневной лимит действия исчерпан")
	// ErrInvalidAmount — некорректная сумма (ноль или баланс ушёл бы в минус)
	ErrInvalidAmount = errors.New("некорректная сумма корректировки")
	// ErrEmptyComment — ручная корректировка без комментария запрещена
	ErrEmptyComment = errors.New("комментарий к корректировке обязателен")
	// ErrEmptyName — пустое имя (группы или ребёнка)
	ErrEmptyName = errors.New("имя не может быть пустым")
)

// Ошибки доступа и аутентификации
var (
	// ErrForbidden — у принципала недостаточно прав (например, воспитатель удаляет группу)
	ErrForbidden = errors.New("недостаточно прав для этой операции")
	// ErrWrongPassword — неверный логин или пароль
	ErrWrongPassword = errors.New("неверный логин или пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrSessionExpired — сессия истекла или отозвана
	ErrSessionExpired = errors.New("сессия истекла, авторизуйтесь заново")
)
