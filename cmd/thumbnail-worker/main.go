// main.go — точка входа воркера производных изображений.
// Потребляет задания из Redis-очереди и генерирует производные
// фиксированных ширин. Разделение процессов с HTTP API позволяет
// масштабировать обработку независимо от приёма запросов.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/bigkaa/gofilestore/internal/config"
	"github.com/bigkaa/gofilestore/internal/queue"
	"github.com/bigkaa/gofilestore/internal/repository"
	"github.com/bigkaa/gofilestore/internal/service"
	"github.com/bigkaa/gofilestore/internal/storage/filestore"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// 2. Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("Thumbnail worker запускается",
		slog.String("version", config.Version),
		slog.Int("workers", cfg.WorkerCount),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. MongoDB — каталог метаданных
	mongoClient, err := repository.Connect(ctx, cfg.MongoURI())
	if err != nil {
		log.Fatalf("Ошибка подключения к MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("Ошибка закрытия соединения с MongoDB", slog.String("error", err.Error()))
		}
	}()
	db := mongoClient.Database(cfg.DBName)

	// 4. Redis — очередь заданий
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr()})
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error("Ошибка закрытия соединения с Redis", slog.String("error", err.Error()))
		}
	}()

	// 5. Blob-хранилище
	store, err := filestore.New(cfg.FolderPath)
	if err != nil {
		log.Fatalf("Ошибка инициализации blob-хранилища: %v", err)
	}

	// 6. Обработчик заданий и пул воркеров
	thumbnails := service.NewThumbnailService(repository.NewFileRepository(db), store, logger)
	worker := queue.NewWorker(
		queue.NewRedisBroker(rdb),
		thumbnails.Process,
		cfg.WorkerCount,
		cfg.QueueMaxAttempts,
		logger,
	)

	worker.Start(ctx)

	// 7. Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))

	cancel()
	worker.Stop()
	logger.Info("Thumbnail worker остановлен")
}
