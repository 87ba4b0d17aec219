// auth.go — middleware аутентификации по сессионному токену X-Token.
// Токены непрозрачные (uuid), разрешение владельца выполняет сервисный
// слой через Redis-хранилище сессий.
package middleware

import (
	"context"
	"errors"
	"net/http"

	apierrors "github.com/bigkaa/gofilestore/internal/api/errors"
	"github.com/bigkaa/gofilestore/internal/service"
)

// headerToken — заголовок с сессионным токеном.
const headerToken = "X-Token"

// contextKey — тип для ключей контекста (избегаем коллизий).
type contextKey string

// contextKeyOwner — идентификатор владельца сессии в контексте запроса.
const contextKeyOwner contextKey = "owner_id"

// OwnerResolver разрешает сессионный токен в идентификатор владельца.
// Реализуется service.AuthService.
type OwnerResolver interface {
	ResolveOwner(ctx context.Context, token string) (string, error)
}

// OwnerFromContext возвращает идентификатор владельца текущей сессии.
// Пустая строка — запрос анонимный.
func OwnerFromContext(ctx context.Context) string {
	ownerID, _ := ctx.Value(contextKeyOwner).(string)
	return ownerID
}

// RequireAuth возвращает middleware обязательной аутентификации.
// Запрос без валидного токена отклоняется с 401, тело запроса
// при этом не читается.
func RequireAuth(resolver OwnerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerID, err := resolver.ResolveOwner(r.Context(), r.Header.Get(headerToken))
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					apierrors.Unauthorized(w)
					return
				}
				apierrors.InternalError(w)
				return
			}

			ctx := context.WithValue(r.Context(), contextKeyOwner, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth возвращает middleware необязательной аутентификации.
// Невалидный или отсутствующий токен не отклоняет запрос: владелец
// остаётся пустым и downstream-обработчик видит анонима.
func OptionalAuth(resolver OwnerResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerID, err := resolver.ResolveOwner(r.Context(), r.Header.Get(headerToken))
			if err != nil {
				ownerID = ""
			}

			ctx := context.WithValue(r.Context(), contextKeyOwner, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
