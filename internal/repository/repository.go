// Пакет repository — слой доступа к каталогу метаданных (MongoDB)
// для Files Manager. Коллекции: users, files. Все операции — через
// официальный mongo-driver, без ODM.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/bigkaa/gofilestore/internal/domain/model"
)

// Ошибки слоя репозиториев.
var (
	// ErrNotFound — запись не найдена.
	ErrNotFound = errors.New("запись не найдена")
	// ErrAlreadyExists — запись с таким уникальным ключом уже существует.
	ErrAlreadyExists = errors.New("запись уже существует")
)

// UserRepository — доступ к коллекции users.
type UserRepository interface {
	// Insert создаёт учётную запись. ErrAlreadyExists при занятом email.
	// Проверка уникальности — check-then-insert; окно гонки принято
	// осознанно (транзакций между документами нет).
	Insert(ctx context.Context, email, passwordHash string) (*model.User, error)
	// GetByEmail возвращает пользователя по email (точное совпадение,
	// с учётом регистра) или ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// GetByCredentials возвращает пользователя по паре email + хэш пароля
	// или ErrNotFound.
	GetByCredentials(ctx context.Context, email, passwordHash string) (*model.User, error)
	// GetByID возвращает пользователя по hex-идентификатору или ErrNotFound.
	GetByID(ctx context.Context, id string) (*model.User, error)
	// Count возвращает количество учётных записей.
	Count(ctx context.Context) (int64, error)
}

// FileRepository — доступ к коллекции files.
type FileRepository interface {
	// Insert сохраняет новую запись каталога и возвращает её
	// со сгенерированным идентификатором.
	Insert(ctx context.Context, node *model.FileNode) (*model.FileNode, error)
	// GetByID возвращает запись по hex-идентификатору без учёта владельца
	// (путь чтения содержимого: видимость проверяет сервисный слой).
	GetByID(ctx context.Context, id string) (*model.FileNode, error)
	// GetOwned возвращает запись по идентификатору в пределах владельца.
	// Чужая и несуществующая записи неразличимы: обе — ErrNotFound.
	GetOwned(ctx context.Context, id, ownerID string) (*model.FileNode, error)
	// List возвращает страницу записей владельца внутри родителя
	// в естественном порядке вставки (skip/limit пагинация).
	List(ctx context.Context, ownerID, parentID string, page, pageSize int) ([]*model.FileNode, error)
	// SetVisibility атомарно (findOneAndUpdate) выставляет isPublic
	// и возвращает запись после обновления или ErrNotFound.
	SetVisibility(ctx context.Context, id, ownerID string, isPublic bool) (*model.FileNode, error)
	// Count возвращает количество записей каталога.
	Count(ctx context.Context) (int64, error)
}

// Connect открывает соединение с MongoDB и проверяет его ping-ом.
// Пул соединений один на процесс; закрывается при shutdown.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к MongoDB: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("MongoDB недоступна: %w", err)
	}

	return client, nil
}

// Pinger — проверка доступности каталога для health и status endpoints.
type Pinger struct {
	client *mongo.Client
}

// NewPinger создаёт проверку доступности MongoDB.
func NewPinger(client *mongo.Client) *Pinger {
	return &Pinger{client: client}
}

// Ping проверяет доступность primary-узла.
func (p *Pinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}
