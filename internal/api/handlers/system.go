// system.go — системные обработчики /status и /stats.
package handlers

import (
	"context"
	"log/slog"
	"net/http"
)

// DependencyPinger — проверка доступности внешней зависимости.
type DependencyPinger interface {
	Ping(ctx context.Context) error
}

// Counter — подсчёт записей коллекции каталога.
type Counter interface {
	Count(ctx context.Context) (int64, error)
}

// SystemHandler — обработчик системных endpoints.
type SystemHandler struct {
	redis  DependencyPinger
	db     DependencyPinger
	users  Counter
	files  Counter
	logger *slog.Logger
}

// NewSystemHandler создаёт обработчик системных endpoints.
func NewSystemHandler(redis, db DependencyPinger, users, files Counter, logger *slog.Logger) *SystemHandler {
	return &SystemHandler{
		redis:  redis,
		db:     db,
		users:  users,
		files:  files,
		logger: logger.With(slog.String("component", "system_handler")),
	}
}

// statusResponse — ответ GET /status.
type statusResponse struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

// statsResponse — ответ GET /stats.
type statsResponse struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

// Status — GET /status. Всегда 200: недоступность зависимости
// отражается флагом false, а не статус-кодом.
func (h *SystemHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := statusResponse{
		Redis: h.redis.Ping(r.Context()) == nil,
		DB:    h.db.Ping(r.Context()) == nil,
	}
	writeJSON(w, http.StatusOK, resp)
}

// Stats — GET /stats. Количество учётных записей и записей каталога.
func (h *SystemHandler) Stats(w http.ResponseWriter, r *http.Request) {
	usersTotal, err := h.users.Count(r.Context())
	if err != nil {
		h.logger.Error("Ошибка подсчёта учётных записей", slog.String("error", err.Error()))
		writeServiceError(w, err)
		return
	}

	filesTotal, err := h.files.Count(r.Context())
	if err != nil {
		h.logger.Error("Ошибка подсчёта записей каталога", slog.String("error", err.Error()))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{Users: usersTotal, Files: filesTotal})
}
