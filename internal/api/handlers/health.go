// health.go — обработчики health endpoints Files Manager.
// /health/live — liveness probe (процесс жив)
// /health/ready — readiness probe (MongoDB и Redis доступны)
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bigkaa/gofilestore/internal/config"
)

// readyCheckTimeout — бюджет одной проверки зависимости.
const readyCheckTimeout = 2 * time.Second

// Константы статусов health check.
const (
	statusOK   = "ok"
	statusFail = "fail"
)

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	db    DependencyPinger
	redis DependencyPinger
}

// NewHealthHandler создаёт обработчик health endpoints.
func NewHealthHandler(db, redis DependencyPinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// healthCheckResult — результат проверки одной зависимости.
type healthCheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// healthLiveResponse — ответ liveness probe.
type healthLiveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

// healthReadyResponse — ответ readiness probe.
type healthReadyResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
	Checks    struct {
		MongoDB healthCheckResult `json:"mongodb"`
		Redis   healthCheckResult `json:"redis"`
	} `json:"checks"`
}

// HealthLive — liveness probe. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthLiveResponse{
		Status:    statusOK,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   "files-manager",
	})
}

// HealthReady — readiness probe. Проверяет MongoDB и Redis.
// Возвращает 200 (ok) или 503 (fail).
func (h *HealthHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	resp := healthReadyResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   "files-manager",
	}

	resp.Checks.MongoDB = checkDependency(r.Context(), h.db)
	resp.Checks.Redis = checkDependency(r.Context(), h.redis)

	resp.Status = statusOK
	status := http.StatusOK
	if resp.Checks.MongoDB.Status == statusFail || resp.Checks.Redis.Status == statusFail {
		resp.Status = statusFail
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}

// checkDependency выполняет ping зависимости с собственным таймаутом.
func checkDependency(ctx context.Context, p DependencyPinger) healthCheckResult {
	if p == nil {
		return healthCheckResult{Status: statusFail, Message: "не инициализирован"}
	}

	pingCtx, cancel := context.WithTimeout(ctx, readyCheckTimeout)
	defer cancel()

	if err := p.Ping(pingCtx); err != nil {
		return healthCheckResult{Status: statusFail, Message: err.Error()}
	}
	return healthCheckResult{Status: statusOK}
}
