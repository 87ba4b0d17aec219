// auth.go — обработчики сессий /connect и /disconnect.
package handlers

import (
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/gofilestore/internal/api/errors"
)

// AuthHandler — обработчик аутентификации.
type AuthHandler struct {
	auth   Authenticator
	logger *slog.Logger
}

// NewAuthHandler создаёт обработчик аутентификации.
func NewAuthHandler(auth Authenticator, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		logger: logger.With(slog.String("component", "auth_handler")),
	}
}

// connectResponse — ответ GET /connect.
type connectResponse struct {
	Token string `json:"token"`
}

// Connect — GET /connect. Единственный маршрут с Basic-аутентификацией:
// обменивает пару email/password на сессионный токен.
func (h *AuthHandler) Connect(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok {
		apierrors.Unauthorized(w)
		return
	}

	token, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, connectResponse{Token: token})
}

// Disconnect — GET /disconnect. Отзывает сессию по X-Token.
// Успех — 204 без тела; повторный отзыв того же токена — 401.
func (h *AuthHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), r.Header.Get("X-Token")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
