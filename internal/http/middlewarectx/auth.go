// Package middlewarectx содержит HTTP middleware аутентификации.
//
// Auth ищет токен сначала в серверной сессии по cookie, затем в заголовке
// Authorization: Bearer. При успехе кладёт в контекст ID пользователя и claims.
// Нет токена: 403. Токен невалиден или истёк: 401.
package middlewarectx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/user-accounts/internal/http/response"
	"github.com/magabrotheeeer/user-accounts/internal/lib/jwt"
	"github.com/magabrotheeeer/user-accounts/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserID — ключ для ID пользователя в контексте.
	UserID Key = "user_id"
	// ClaimsKey — ключ для claims токена в контексте.
	ClaimsKey Key = "claims"
)

// Authenticator проверяет токен из сессии или заголовка.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID, bearer string) (*jwt.Claims, error)
}

// Auth возвращает middleware, требующий валидный токен.
func Auth(auth Authenticator, cookieName string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Auth"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			sessionID := ""
			if c, err := r.Cookie(cookieName); err == nil {
				sessionID = c.Value
			}
			bearer := ""
			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				bearer = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			}

			claims, err := auth.Authenticate(r.Context(), sessionID, bearer)
			if err != nil {
				status, resp := response.FromError(err)
				log.Warn("authentication failed", slog.Int("status", status), sl.Err(err))
				response.JSON(w, r, status, resp)
				return
			}

			ctx := context.WithValue(r.Context(), UserID, claims.UserID)
			ctx = context.WithValue(ctx, ClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFrom достаёт ID пользователя, положенный Auth.
func UserIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserID).(string)
	return id, ok && id != ""
}
