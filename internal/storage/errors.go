// Package storage содержит общие ошибки хранилищ пользователей.
// Конкретные реализации лежат в подпакетах mongo, jsonfile и postgres.
package storage

import "errors"

var (
	// ErrUserNotFound пользователь с заданным ключом отсутствует.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken почта уже занята другим пользователем.
	ErrEmailTaken = errors.New("email already registered")
)
