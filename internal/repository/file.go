// file.go — FileRepository поверх коллекции files.
package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bigkaa/gofilestore/internal/domain/model"
)

// fileRepo — реализация FileRepository через mongo-driver.
type fileRepo struct {
	coll *mongo.Collection
}

// NewFileRepository создаёт репозиторий записей каталога.
func NewFileRepository(db *mongo.Database) FileRepository {
	return &fileRepo{coll: db.Collection("files")}
}

// Insert сохраняет запись каталога и возвращает её со сгенерированным id.
func (r *fileRepo) Insert(ctx context.Context, node *model.FileNode) (*model.FileNode, error) {
	res, err := r.coll.InsertOne(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("ошибка вставки записи каталога: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("неожиданный тип InsertedID: %T", res.InsertedID)
	}
	node.ID = oid
	return node, nil
}

// GetByID возвращает запись по hex-идентификатору без учёта владельца.
func (r *fileRepo) GetByID(ctx context.Context, id string) (*model.FileNode, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

// GetOwned возвращает запись в пределах владельца или ErrNotFound.
func (r *fileRepo) GetOwned(ctx context.Context, id, ownerID string) (*model.FileNode, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid, "userId": ownerID})
}

// List возвращает страницу записей владельца внутри родителя.
// Пагинация skip/limit: страница не курсор-стабильна при конкурентных
// вставках (принятое ограничение).
func (r *fileRepo) List(ctx context.Context, ownerID, parentID string, page, pageSize int) ([]*model.FileNode, error) {
	opts := options.Find().
		SetSkip(int64(page * pageSize)).
		SetLimit(int64(pageSize))

	cur, err := r.coll.Find(ctx, bson.M{"userId": ownerID, "parentId": parentID}, opts)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки записей каталога: %w", err)
	}
	defer cur.Close(ctx)

	nodes := []*model.FileNode{}
	if err := cur.All(ctx, &nodes); err != nil {
		return nil, fmt.Errorf("ошибка чтения курсора: %w", err)
	}
	return nodes, nil
}

// SetVisibility атомарно выставляет isPublic через findOneAndUpdate
// и возвращает документ после обновления.
func (r *fileRepo) SetVisibility(ctx context.Context, id, ownerID string, isPublic bool) (*model.FileNode, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	node := &model.FileNode{}
	err = r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "userId": ownerID},
		bson.M{"$set": bson.M{"isPublic": isPublic}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(node)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка обновления видимости: %w", err)
	}
	return node, nil
}

// Count возвращает количество записей каталога.
func (r *fileRepo) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("ошибка подсчёта записей каталога: %w", err)
	}
	return n, nil
}

// findOne выполняет FindOne по фильтру с маппингом ErrNoDocuments → ErrNotFound.
func (r *fileRepo) findOne(ctx context.Context, filter bson.M) (*model.FileNode, error) {
	node := &model.FileNode{}
	err := r.coll.FindOne(ctx, filter).Decode(node)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска записи каталога: %w", err)
	}
	return node, nil
}
