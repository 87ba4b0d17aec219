// users.go — обработчики учётных записей /users и /users/me.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/gofilestore/internal/api/errors"
	"github.com/bigkaa/gofilestore/internal/api/middleware"
	"github.com/bigkaa/gofilestore/internal/service"
)

// UsersHandler — обработчик учётных записей.
type UsersHandler struct {
	users  UserCatalog
	logger *slog.Logger
}

// NewUsersHandler создаёт обработчик учётных записей.
func NewUsersHandler(users UserCatalog, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{
		users:  users,
		logger: logger.With(slog.String("component", "users_handler")),
	}
}

// createUserRequest — тело POST /users.
type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// userResponse — публичное представление учётной записи.
// Хэш пароля наружу не отдаётся никогда.
type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Create — POST /users. Регистрация учётной записи.
// Некорректное или отсутствующее тело эквивалентно пустым полям:
// валидацию с wire-сообщениями выполняет сервисный слой.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	user, err := h.users.CreateAccount(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{ID: user.ID.Hex(), Email: user.Email})
}

// Me — GET /users/me. Учётная запись текущей сессии.
// Сессия валидная, но запись удалена — 401: токен больше никого
// не представляет.
func (h *UsersHandler) Me(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.OwnerFromContext(r.Context())

	user, err := h.users.GetByID(r.Context(), ownerID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.Unauthorized(w)
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, userResponse{ID: user.ID.Hex(), Email: user.Email})
}
