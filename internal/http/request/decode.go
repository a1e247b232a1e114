// Package request разбирает тело запроса: JSON, urlencoded или multipart форму.
package request

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/ajg/form"
	"github.com/go-chi/render"
)

// ErrBadBody тело запроса не удалось разобрать.
var ErrBadBody = errors.New("invalid request body")

// DefaultMaxMemory лимит памяти для multipart формы.
const DefaultMaxMemory = 32 << 20

// IsMultipart сообщает, что тело запроса multipart/form-data.
func IsMultipart(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "multipart/form-data"
}

// Decode заполняет dst из тела запроса. Поля формы сопоставляются по тегу form,
// поля JSON по тегу json. Пустое тело даёт пустой dst.
func Decode(r *http.Request, dst any, maxMemory int64) error {
	if maxMemory <= 0 {
		maxMemory = DefaultMaxMemory
	}

	switch {
	case IsMultipart(r):
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return fmt.Errorf("%w: %w", ErrBadBody, err)
		}
		return decodeValues(r, dst)
	case render.GetRequestContentType(r) == render.ContentTypeForm:
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: %w", ErrBadBody, err)
		}
		return decodeValues(r, dst)
	default:
		if r.Body == nil || r.ContentLength == 0 {
			return nil
		}
		// ContentLength -1 у chunked тела, пустоту видно только по io.EOF
		err := render.DecodeJSON(r.Body, dst)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: %w", ErrBadBody, err)
		}
		return nil
	}
}

func decodeValues(r *http.Request, dst any) error {
	dec := form.NewDecoder(nil)
	dec.IgnoreUnknownKeys(true)
	if err := dec.DecodeValues(dst, r.PostForm); err != nil {
		return fmt.Errorf("%w: %w", ErrBadBody, err)
	}
	return nil
}
