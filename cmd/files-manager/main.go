// main.go — точка входа HTTP API Files Manager.
// Собирает зависимости: config, logger, MongoDB, Redis, blob-хранилище,
// репозитории, сервисы, обработчики — и запускает сервер.
package main

import (
	"context"
	"log"
	"log/slog"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/bigkaa/gofilestore/internal/api/handlers"
	"github.com/bigkaa/gofilestore/internal/api/middleware"
	"github.com/bigkaa/gofilestore/internal/config"
	"github.com/bigkaa/gofilestore/internal/queue"
	"github.com/bigkaa/gofilestore/internal/repository"
	"github.com/bigkaa/gofilestore/internal/server"
	"github.com/bigkaa/gofilestore/internal/service"
	"github.com/bigkaa/gofilestore/internal/storage/filestore"
	"github.com/bigkaa/gofilestore/internal/storage/sessions"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	// 2. Настройка логгера
	logger := config.SetupLogger(cfg)
	logger.Info("Files Manager запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	ctx := context.Background()

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

	// 4. Redis — сессии и очередь заданий
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

	// 6. Репозитории и сервисы
	userRepo := repository.NewUserRepository(db)
	fileRepo := repository.NewFileRepository(db)
	sessionStore := sessions.New(rdb)
	broker := queue.NewRedisBroker(rdb)
	cache := service.NewCacheService(cfg.CacheSize, cfg.CacheTTL)

	authService := service.NewAuthService(userRepo, sessionStore, cfg.SessionTTL, logger)
	userService := service.NewUserService(userRepo, logger)
	fileService := service.NewFileService(fileRepo, store, broker, cache, logger)

	// 7. Обработчики
	dbPinger := repository.NewPinger(mongoClient)
	apiHandler := handlers.NewAPIHandler(
		handlers.NewSystemHandler(sessionStore, dbPinger, userRepo, fileRepo, logger),
		handlers.NewAuthHandler(authService, logger),
		handlers.NewUsersHandler(userService, logger),
		handlers.NewFilesHandler(fileService, logger),
		handlers.NewHealthHandler(dbPinger, sessionStore),
		authService,
		logger,
	)

	// 8. HTTP-сервер (блокирующий вызов с graceful shutdown)
	srv := server.New(cfg, logger, apiHandler,
		chimw.RequestID,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		log.Fatalf("Сервер завершился с ошибкой: %v", err)
	}

	logger.Info("Files Manager остановлен")
}
