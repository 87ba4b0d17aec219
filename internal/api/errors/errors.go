// Пакет errors — конструкторы стандартных ошибок wire-контракта
// Files Manager. Единый формат: {"error": "<сообщение>"}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors //nolint:revive // имя пакета повторяет слой API, конфликт со stdlib осознанный

import (
	"encoding/json"
	"net/http"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error string `json:"error"`
}

// WriteError записывает ответ ошибки в стандартном формате.
// statusCode — HTTP статус-код, message — клиентское сообщение.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{Error: message})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
// Сообщение является частью wire-контракта и отдаётся клиенту как есть.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// Unauthorized — 401 требуется аутентификация.
func Unauthorized(w http.ResponseWriter) {
	WriteError(w, http.StatusUnauthorized, "Unauthorized")
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter) {
	WriteError(w, http.StatusNotFound, "Not found")
}

// InternalError — 500 внутренняя ошибка. Детали не раскрываются.
func InternalError(w http.ResponseWriter) {
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}
