// user.go — UserRepository поверх коллекции users.
package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/bigkaa/gofilestore/internal/domain/model"
)

// userRepo — реализация UserRepository через mongo-driver.
type userRepo struct {
	coll *mongo.Collection
}

// NewUserRepository создаёт репозиторий пользователей.
func NewUserRepository(db *mongo.Database) UserRepository {
	return &userRepo{coll: db.Collection("users")}
}

// Insert создаёт учётную запись с проверкой уникальности email.
func (r *userRepo) Insert(ctx context.Context, email, passwordHash string) (*model.User, error) {
	// check-then-insert: окно гонки между проверкой и вставкой принято
	if _, err := r.GetByEmail(ctx, email); err == nil {
		return nil, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: passwordHash,
	}

	res, err := r.coll.InsertOne(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("ошибка вставки пользователя: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("неожиданный тип InsertedID: %T", res.InsertedID)
	}
	user.ID = oid
	return user, nil
}

// GetByEmail возвращает пользователя по email или ErrNotFound.
func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// GetByCredentials возвращает пользователя по email и хэшу пароля или ErrNotFound.
func (r *userRepo) GetByCredentials(ctx context.Context, email, passwordHash string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email, "password": passwordHash})
}

// GetByID возвращает пользователя по hex-идентификатору или ErrNotFound.
func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// Некорректный hex неотличим для клиента от отсутствующей записи
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// Count возвращает количество учётных записей.
func (r *userRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта пользователей: %w", err)
	}
	return n, nil
}

// findOne выполняет FindOne по фильтру с маппингом ErrNoDocuments → ErrNotFound.
func (r *userRepo) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	user := &model.User{}
	err := r.coll.FindOne(ctx, filter).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска пользователя: %w", err)
	}
	return user, nil
}
