package account

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound пользователь не найден.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidCredentials пароль не совпал.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrMissingToken запрос не содержит ни сессии, ни bearer-токена.
	ErrMissingToken = errors.New("token is required")
	// ErrUnauthorized токен повреждён или истёк.
	ErrUnauthorized = errors.New("invalid or expired token")
	// ErrConflict почта уже зарегистрирована.
	ErrConflict = errors.New("email already registered")
)

// FieldError ошибка конкретного поля ввода.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"msg"`
}

// ValidationError набор ошибок полей. Возвращается до любой записи в хранилище.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, ", ")
}
