// files.go — обработчики каталога /files.
package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/bigkaa/gofilestore/internal/api/middleware"
	"github.com/bigkaa/gofilestore/internal/domain/model"
	"github.com/bigkaa/gofilestore/internal/service"
)

// FilesHandler — обработчик каталога.
type FilesHandler struct {
	files  FileCatalog
	logger *slog.Logger
}

// NewFilesHandler создаёт обработчик каталога.
func NewFilesHandler(files FileCatalog, logger *slog.Logger) *FilesHandler {
	return &FilesHandler{
		files:  files,
		logger: logger.With(slog.String("component", "files_handler")),
	}
}

// flexibleID — идентификатор родителя в теле запроса.
// Клиенты передают parentId и строкой ("0", hex) и числом (0):
// оба варианта принимаются.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexibleID(s)
		return nil
	}
	*f = flexibleID(bytes.TrimSpace(b))
	return nil
}

// createFileRequest — тело POST /files.
type createFileRequest struct {
	Name     string     `json:"name"`
	Type     string     `json:"type"`
	ParentID flexibleID `json:"parentId"`
	IsPublic bool       `json:"isPublic"`
	Data     string     `json:"data"`
}

// Create — POST /files. Создание папки или загрузка файла/изображения.
// Некорректное тело эквивалентно пустым полям, wire-сообщения
// валидации порождает сервисный слой.
func (h *FilesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createFileRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	node, err := h.files.CreateEntry(r.Context(), service.CreateEntryParams{
		OwnerID:  middleware.OwnerFromContext(r.Context()),
		Name:     req.Name,
		Kind:     model.Kind(req.Type),
		ParentID: string(req.ParentID),
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, node)
}

// Get — GET /files/{id}. Метаданные записи текущего владельца.
func (h *FilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	node, err := h.files.GetEntry(r.Context(),
		middleware.OwnerFromContext(r.Context()),
		chi.URLParam(r, "id"),
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, node)
}

// List — GET /files?parentId=&page=. Страница записей владельца.
// Невалидный page трактуется как нулевая страница; пустая страница —
// пустой массив, не ошибка.
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 0
	}

	nodes, err := h.files.ListEntries(r.Context(),
		middleware.OwnerFromContext(r.Context()),
		r.URL.Query().Get("parentId"),
		page,
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if nodes == nil {
		nodes = []*model.FileNode{}
	}
	writeJSON(w, http.StatusOK, nodes)
}

// Publish — PUT /files/{id}/publish.
func (h *FilesHandler) Publish(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, true)
}

// Unpublish — PUT /files/{id}/unpublish.
func (h *FilesHandler) Unpublish(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, false)
}

func (h *FilesHandler) setVisibility(w http.ResponseWriter, r *http.Request, isPublic bool) {
	node, err := h.files.SetVisibility(r.Context(),
		middleware.OwnerFromContext(r.Context()),
		chi.URLParam(r, "id"),
		isPublic,
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, node)
}

// Data — GET /files/{id}/data. Содержимое файла.
// MIME-тип определяется по расширению имени записи в каталоге,
// не по байтам blob-а.
func (h *FilesHandler) Data(w http.ResponseWriter, r *http.Request) {
	node, data, err := h.files.ReadContent(r.Context(),
		middleware.OwnerFromContext(r.Context()),
		chi.URLParam(r, "id"),
	)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(node.Name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
