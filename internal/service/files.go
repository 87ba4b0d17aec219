// files.go — File Service: создание записей каталога, разрешение
// иерархии, пагинация списков, видимость и чтение содержимого.
package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/gofilestore/internal/domain/model"
	"github.com/bigkaa/gofilestore/internal/queue"
	"github.com/bigkaa/gofilestore/internal/repository"
	"github.com/bigkaa/gofilestore/internal/storage/filestore"
)

// DefaultPageSize — размер страницы листинга.
const DefaultPageSize = 20

// Бизнес-метрики файловых операций.
var operationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "fm_operations_total",
		Help: "Общее количество файловых операций",
	},
	[]string{"operation", "result"},
)

// FileService — операции над записями каталога.
type FileService struct {
	files  repository.FileRepository
	store  *filestore.FileStore
	broker queue.Broker
	cache  *CacheService
	logger *slog.Logger
}

// NewFileService создаёт File Service.
func NewFileService(
	files repository.FileRepository,
	store *filestore.FileStore,
	broker queue.Broker,
	cache *CacheService,
	logger *slog.Logger,
) *FileService {
	return &FileService{
		files:  files,
		store:  store,
		broker: broker,
		cache:  cache,
		logger: logger.With(slog.String("component", "file_service")),
	}
}

// CreateEntryParams — параметры создания записи каталога.
type CreateEntryParams struct {
	OwnerID  string
	Name     string
	Kind     model.Kind
	ParentID string
	IsPublic bool
	// Data — содержимое в транспортной кодировке base64 (kind != folder)
	Data string
}

// CreateEntry создаёт папку или загружает файл/изображение.
//
// Порядок валидации (первый отказ выигрывает): name → kind → data →
// родитель. Родитель вне корня обязан существовать, быть папкой и
// принадлежать тому же владельцу; нарушение отклоняется, запись и blob
// не создаются.
//
// Для изображения после вставки ставится задание генерации миниатюр.
// Сбой постановки не откатывает созданную запись: pipeline независим
// от успеха загрузки.
func (s *FileService) CreateEntry(ctx context.Context, p CreateEntryParams) (*model.FileNode, error) {
	if p.Name == "" {
		return nil, &ValidationError{Reason: "Missing name"}
	}
	if !p.Kind.Valid() {
		return nil, &ValidationError{Reason: "Missing type"}
	}
	if p.Kind != model.KindFolder && p.Data == "" {
		return nil, &ValidationError{Reason: "Missing data"}
	}

	parent := model.ParseParent(p.ParentID)
	if !parent.IsRoot() {
		parentNode, err := s.files.GetOwned(ctx, parent.ID(), p.OwnerID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrParentNotFound
			}
			return nil, fmt.Errorf("ошибка проверки родителя: %w", err)
		}
		if parentNode.Kind != model.KindFolder {
			return nil, ErrParentNotAFolder
		}
	}

	node := &model.FileNode{
		OwnerID:  p.OwnerID,
		Name:     p.Name,
		Kind:     p.Kind,
		IsPublic: p.IsPublic,
		ParentID: parent.String(),
	}

	if p.Kind != model.KindFolder {
		raw, err := base64.StdEncoding.DecodeString(p.Data)
		if err != nil {
			return nil, &ValidationError{Reason: "Invalid data"}
		}

		locator, err := s.store.Save(raw)
		if err != nil {
			return nil, fmt.Errorf("ошибка записи blob: %w", err)
		}
		node.StoragePath = locator
	}

	created, err := s.files.Insert(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("ошибка вставки записи каталога: %w", err)
	}

	if created.Kind == model.KindImage {
		job := queue.Job{OwnerID: created.OwnerID, FileID: created.ID.Hex()}
		if err := s.broker.Enqueue(ctx, job); err != nil {
			// Запись уже создана; клиенту сбой pipeline не виден
			s.logger.Error("Ошибка постановки задания миниатюр",
				slog.String("file_id", job.FileID),
				slog.String("error", err.Error()),
			)
		}
	}

	operationsTotal.WithLabelValues("create", "ok").Inc()
	s.logger.Info("Запись каталога создана",
		slog.String("file_id", created.ID.Hex()),
		slog.String("kind", string(created.Kind)),
		slog.String("owner_id", created.OwnerID),
	)
	return created, nil
}

// GetEntry возвращает запись владельца. Чужая или несуществующая
// запись — ErrNotFound (случаи неразличимы).
func (s *FileService) GetEntry(ctx context.Context, ownerID, fileID string) (*model.FileNode, error) {
	node, err := s.files.GetOwned(ctx, fileID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения записи каталога: %w", err)
	}
	return node, nil
}

// ListEntries возвращает страницу записей владельца внутри родителя.
// parentID по умолчанию — корень, страницы нумеруются с нуля.
// Страница не курсор-стабильна при конкурентных вставках.
func (s *FileService) ListEntries(ctx context.Context, ownerID, parentID string, page int) ([]*model.FileNode, error) {
	if page < 0 {
		page = 0
	}
	parent := model.ParseParent(parentID)

	nodes, err := s.files.List(ctx, ownerID, parent.String(), page, DefaultPageSize)
	if err != nil {
		return nil, fmt.Errorf("ошибка листинга каталога: %w", err)
	}
	return nodes, nil
}

// SetVisibility атомарно выставляет isPublic и возвращает запись после
// обновления. Инвалидирует кэш метаданных.
func (s *FileService) SetVisibility(ctx context.Context, ownerID, fileID string, isPublic bool) (*model.FileNode, error) {
	node, err := s.files.SetVisibility(ctx, fileID, ownerID, isPublic)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка смены видимости: %w", err)
	}

	s.cache.Remove(fileID)
	operationsTotal.WithLabelValues("visibility", "ok").Inc()
	return node, nil
}

// ReadContent возвращает запись каталога и байты её содержимого.
//
// requesterID может быть пустым (анонимный запрос). Непубличная запись
// для не-владельца сообщается как ErrNotFound — так же, как
// несуществующий идентификатор. Папка содержимого не имеет.
func (s *FileService) ReadContent(ctx context.Context, requesterID, fileID string) (*model.FileNode, []byte, error) {
	node, cached := s.cache.Get(fileID)
	if !cached {
		var err error
		node, err = s.files.GetByID(ctx, fileID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, nil, ErrNotFound
			}
			return nil, nil, fmt.Errorf("ошибка чтения записи каталога: %w", err)
		}
		s.cache.Add(fileID, node)
	}

	if !node.IsPublic && (requesterID == "" || requesterID != node.OwnerID) {
		return nil, nil, ErrNotFound
	}

	if node.Kind == model.KindFolder {
		return nil, nil, fmt.Errorf("%w: папка не имеет содержимого", ErrInvalidOperation)
	}

	data, err := s.store.Read(node.StoragePath)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			// Расхождение каталога и blob-хранилища
			return nil, nil, ErrNotFound
		}
		return nil, nil, fmt.Errorf("ошибка чтения blob: %w", err)
	}

	operationsTotal.WithLabelValues("read", "ok").Inc()
	return node, data, nil
}
