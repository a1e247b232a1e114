// Package response содержит вспомогательные типы и функции для формирования
// унифицированных JSON‑ответов HTTP‑обработчиков. Пакет упрощает возврат
// успешных ответов, ошибок и сообщений валидации в едином формате.
package response

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/user-accounts/internal/services/account"
)

// Response описывает стандартную структуру JSON‑ответа сервера.
// Поле Status — статус запроса ("OK" или "Error").
// Поле Error — текст ошибки (опционально, при неуспехе).
// Поле Errors — ошибки по полям ввода (опционально, при ошибке валидации).
// Поле Data — данные ответа (опционально, при успехе).
type Response struct {
	Status string               `json:"status"`
	Error  string               `json:"error,omitempty"`
	Errors []account.FieldError `json:"errors,omitempty"`
	Data   any                  `json:"data,omitempty"`
}

// ErrorResponse — структура ошибки для Swagger-документации.
// Используется в аннотациях @Failure как возвращаемый тип ошибки.
type ErrorResponse struct {
	Status string `json:"status" example:"Error"`
	Error  string `json:"error" example:"invalid request body"`
}

// ValidationResponse — ответ с ошибками полей для Swagger-документации.
type ValidationResponse struct {
	Status string               `json:"status" example:"Error"`
	Error  string               `json:"error" example:"validation failed"`
	Errors []account.FieldError `json:"errors"`
}

const (
	// StatusOK — значение статуса для успешного ответа.
	StatusOK = "OK"
	// StatusError — значение статуса для ответа с ошибкой.
	StatusError = "Error"
)

// StatusOKWithData возвращает успешный Response с переданными данными.
func StatusOKWithData(data any) Response {
	return Response{
		Status: StatusOK,
		Data:   data,
	}
}

// Error возвращает Response с ошибкой и переданным сообщением.
func Error(msg string) Response {
	return Response{
		Status: StatusError,
		Error:  msg,
	}
}

// ValidationError формирует Response со списком ошибок по полям.
func ValidationError(verr *account.ValidationError) Response {
	return Response{
		Status: StatusError,
		Error:  "validation failed",
		Errors: verr.Fields,
	}
}

// JSON пишет статус и тело ответа.
func JSON(w http.ResponseWriter, r *http.Request, status int, resp Response) {
	render.Status(r, status)
	render.JSON(w, r, resp)
}

// FromError переводит ошибку сервиса в HTTP-статус и тело ответа.
// Ошибки хранилища наружу не раскрываются.
func FromError(err error) (int, Response) {
	var verr *account.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, ValidationError(verr)
	case errors.Is(err, account.ErrNotFound):
		return http.StatusNotFound, Error(account.ErrNotFound.Error())
	case errors.Is(err, account.ErrInvalidCredentials):
		return http.StatusUnauthorized, Error(account.ErrInvalidCredentials.Error())
	case errors.Is(err, account.ErrMissingToken):
		return http.StatusForbidden, Error(account.ErrMissingToken.Error())
	case errors.Is(err, account.ErrUnauthorized):
		return http.StatusUnauthorized, Error(account.ErrUnauthorized.Error())
	case errors.Is(err, account.ErrConflict):
		return http.StatusConflict, Error(account.ErrConflict.Error())
	default:
		return http.StatusInternalServerError, Error("internal error")
	}
}
