// Пакет service — бизнес-логика Files Manager.
// errors.go — таксономия ошибок сервисного слоя. Маппинг на HTTP-статусы
// выполняется только на границе (internal/api/handlers).
package service

import "errors"

// Сигнальные ошибки сервисного слоя.
var (
	// ErrUnauthenticated — токен отсутствует, не найден или истёк.
	ErrUnauthenticated = errors.New("аутентификация не пройдена")
	// ErrNotFound — запись отсутствует, принадлежит другому владельцу
	// или скрыта видимостью. Случаи намеренно неразличимы, чтобы не
	// раскрывать существование чужих записей.
	ErrNotFound = errors.New("запись не найдена")
	// ErrParentNotFound — родительская запись не существует или
	// принадлежит другому владельцу.
	ErrParentNotFound = errors.New("родительская запись не найдена")
	// ErrParentNotAFolder — родительская запись существует, но не папка.
	ErrParentNotAFolder = errors.New("родительская запись не является папкой")
	// ErrInvalidOperation — семантически бессмысленный запрос
	// (например, чтение содержимого папки).
	ErrInvalidOperation = errors.New("недопустимая операция")
)

// ValidationError — отказ валидации входных данных.
// Reason — клиентское сообщение wire-контракта ("Missing name" и т.п.).
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}
