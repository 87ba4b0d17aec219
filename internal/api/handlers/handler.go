// handler.go — основной обработчик API Files Manager.
// Объединяет системные, аутентификационные и файловые обработчики
// и регистрирует маршруты wire-контракта на chi-роутере.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apierrors "github.com/bigkaa/gofilestore/internal/api/errors"
	"github.com/bigkaa/gofilestore/internal/api/middleware"
	"github.com/bigkaa/gofilestore/internal/domain/model"
	"github.com/bigkaa/gofilestore/internal/service"
)

// Authenticator — поверхность AuthService, нужная обработчикам.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	ResolveOwner(ctx context.Context, token string) (string, error)
}

// UserCatalog — поверхность UserService, нужная обработчикам.
type UserCatalog interface {
	CreateAccount(ctx context.Context, email, password string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// FileCatalog — поверхность FileService, нужная обработчикам.
type FileCatalog interface {
	CreateEntry(ctx context.Context, params service.CreateEntryParams) (*model.FileNode, error)
	GetEntry(ctx context.Context, ownerID, fileID string) (*model.FileNode, error)
	ListEntries(ctx context.Context, ownerID, parentID string, page int) ([]*model.FileNode, error)
	SetVisibility(ctx context.Context, ownerID, fileID string, isPublic bool) (*model.FileNode, error)
	ReadContent(ctx context.Context, requesterID, fileID string) (*model.FileNode, []byte, error)
}

// APIHandler — основной обработчик API Files Manager.
type APIHandler struct {
	system *SystemHandler
	auth   *AuthHandler
	users  *UsersHandler
	files  *FilesHandler
	health *HealthHandler

	resolver middleware.OwnerResolver
	logger   *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	system *SystemHandler,
	auth *AuthHandler,
	users *UsersHandler,
	files *FilesHandler,
	health *HealthHandler,
	resolver middleware.OwnerResolver,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		system:   system,
		auth:     auth,
		users:    users,
		files:    files,
		health:   health,
		resolver: resolver,
		logger:   logger.With(slog.String("component", "api_handler")),
	}
}

// Register регистрирует маршруты wire-контракта.
// Защищённые маршруты используют обязательную аутентификацию по X-Token;
// чтение содержимого — необязательную (публичные записи доступны анониму).
func (h *APIHandler) Register(r chi.Router) {
	// Публичные маршруты
	r.Get("/status", h.system.Status)
	r.Get("/stats", h.system.Stats)
	r.Get("/connect", h.auth.Connect)
	r.Post("/users", h.users.Create)

	// Служебные endpoints
	r.Get("/health/live", h.health.HealthLive)
	r.Get("/health/ready", h.health.HealthReady)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Защищённые маршруты
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.resolver))

		r.Get("/disconnect", h.auth.Disconnect)
		r.Get("/users/me", h.users.Me)

		r.Post("/files", h.files.Create)
		r.Get("/files", h.files.List)
		r.Get("/files/{id}", h.files.Get)
		r.Put("/files/{id}/publish", h.files.Publish)
		r.Put("/files/{id}/unpublish", h.files.Unpublish)
	})

	// Содержимое: доступ определяется видимостью записи, не сессией
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalAuth(h.resolver))

		r.Get("/files/{id}/data", h.files.Data)
	})
}

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeServiceError маппит ошибку сервисного слоя в HTTP-ответ.
// Сообщения ValidationError и сигнальных ошибок иерархии являются
// частью wire-контракта.
func writeServiceError(w http.ResponseWriter, err error) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		apierrors.ValidationError(w, vErr.Reason)
	case errors.Is(err, service.ErrUnauthenticated):
		apierrors.Unauthorized(w)
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w)
	case errors.Is(err, service.ErrParentNotFound):
		apierrors.ValidationError(w, "Parent not found")
	case errors.Is(err, service.ErrParentNotAFolder):
		apierrors.ValidationError(w, "Parent is not a folder")
	case errors.Is(err, service.ErrInvalidOperation):
		apierrors.ValidationError(w, "A folder doesn't have content")
	default:
		apierrors.InternalError(w)
	}
}
