// thumbnails.go — обработчик заданий thumbnail pipeline.
//
// Воркер перечитывает авторитетную запись каталога в момент обработки
// (владение могло измениться после загрузки), читает исходный blob и
// порождает производные изображения фиксированных ширин. Повторная
// доставка задания безопасна: производные перезаписываются.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log/slog"

	// Регистрация декодеров форматов исходных изображений
	_ "image/gif"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/image/draw"

	"github.com/bigkaa/gofilestore/internal/domain/model"
	"github.com/bigkaa/gofilestore/internal/queue"
	"github.com/bigkaa/gofilestore/internal/repository"
	"github.com/bigkaa/gofilestore/internal/storage/filestore"
)

// thumbnailWidths — фиксированный набор ширин производных, в убывающем
// порядке для детерминированной обработки.
var thumbnailWidths = []int{500, 250, 100}

// thumbnailsGeneratedTotal — количество успешно записанных производных.
var thumbnailsGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "fm_thumbnails_generated_total",
	Help: "Общее количество сгенерированных производных изображений",
})

// ThumbnailService — генерация производных изображений.
type ThumbnailService struct {
	files  repository.FileRepository
	store  *filestore.FileStore
	logger *slog.Logger
}

// NewThumbnailService создаёт обработчик заданий миниатюр.
func NewThumbnailService(files repository.FileRepository, store *filestore.FileStore, logger *slog.Logger) *ThumbnailService {
	return &ThumbnailService{
		files:  files,
		store:  store,
		logger: logger.With(slog.String("component", "thumbnail_service")),
	}
}

// Process обрабатывает одно задание очереди.
//
// Классификация ошибок:
//   - некорректный payload, отсутствующая запись, не-изображение —
//     постоянные (queue.ErrPermanent), без повтора;
//   - недоступность каталога, ошибки чтения/декодирования/записи —
//     transient, подлежат повтору очередью.
//
// Атомарности между тремя ширинами нет: частично записанные производные
// при сбое остаются на диске и перезаписываются при повторе.
func (s *ThumbnailService) Process(ctx context.Context, job queue.Job) error {
	if job.FileID == "" {
		return fmt.Errorf("%w: отсутствует fileId", queue.ErrPermanent)
	}
	if job.OwnerID == "" {
		return fmt.Errorf("%w: отсутствует userId", queue.ErrPermanent)
	}

	// Повторное разрешение владения в момент обработки
	node, err := s.files.GetOwned(ctx, job.FileID, job.OwnerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: файл не найден", queue.ErrPermanent)
		}
		return fmt.Errorf("ошибка чтения записи каталога: %w", err)
	}
	if node.Kind != model.KindImage {
		return fmt.Errorf("%w: запись %s не является изображением", queue.ErrPermanent, job.FileID)
	}

	data, err := s.store.Read(node.StoragePath)
	if err != nil {
		return fmt.Errorf("ошибка чтения исходного blob: %w", err)
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("ошибка декодирования изображения: %w", err)
	}

	for _, width := range thumbnailWidths {
		thumb := scaleToWidth(src, width)

		encoded, err := encodeImage(thumb, format)
		if err != nil {
			return fmt.Errorf("ошибка кодирования производной %d: %w", width, err)
		}

		locator := fmt.Sprintf("%s_%d", node.StoragePath, width)
		if err := s.store.Write(locator, encoded); err != nil {
			return fmt.Errorf("ошибка записи производной %d: %w", width, err)
		}
		thumbnailsGeneratedTotal.Inc()
	}

	s.logger.Info("Производные изображения созданы",
		slog.String("file_id", job.FileID),
		slog.String("locator", node.StoragePath),
	)
	return nil
}

// scaleToWidth масштабирует изображение к заданной ширине
// с сохранением пропорций.
func scaleToWidth(src image.Image, width int) image.Image {
	b := src.Bounds()
	height := b.Dy() * width / b.Dx()
	if height < 1 {
		height = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

// encodeImage кодирует производную в формате исходного изображения.
// Форматы без собственного энкодера (gif и пр.) кодируются как PNG.
func encodeImage(img image.Image, format string) ([]byte, error) {
	buf := &bytes.Buffer{}
	switch format {
	case "jpeg":
		if err := jpeg.Encode(buf, img, nil); err != nil {
			return nil, err
		}
	default:
		if err := png.Encode(buf, img); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
