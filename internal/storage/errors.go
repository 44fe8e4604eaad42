// Package storage реализует хранилище данных на основе PostgreSQL.
package storage

import "errors"

// Сентинельные ошибки хранилища. Обработчики сопоставляют их
// со стабильными HTTP-статусами через errors.Is.
var (
	// ErrUserExists возвращается при регистрации на уже занятую почту.
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound возвращается, когда пользователь отсутствует.
	ErrUserNotFound = errors.New("user not found")
	// ErrRecordExists возвращается при создании второй записи
	// за тот же (год, месяц) у одного пользователя.
	ErrRecordExists = errors.New("record for this period already exists")
	// ErrRecordNotFound возвращается, когда запись отсутствует
	// или принадлежит другому пользователю.
	ErrRecordNotFound = errors.New("record not found")
)
