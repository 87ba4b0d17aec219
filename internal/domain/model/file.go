// Пакет model — доменные модели Files Manager.
// file.go — FileNode: запись каталога (файл, изображение или папка)
// в иерархическом пространстве имён владельца.
package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Kind — тип записи каталога.
type Kind string

// Допустимые типы записей.
const (
	KindFolder Kind = "folder"
	KindFile   Kind = "file"
	KindImage  Kind = "image"
)

// Valid проверяет, что тип входит в допустимый набор.
func (k Kind) Valid() bool {
	switch k {
	case KindFolder, KindFile, KindImage:
		return true
	}
	return false
}

// RootParentID — sentinel-значение parentId для корня пространства имён владельца.
const RootParentID = "0"

// FileNode — запись каталога. Образует лес деревьев per-owner:
// parentId либо RootParentID, либо _id существующей папки того же владельца.
//
// StoragePath задаётся один раз при создании (kind != folder) и далее
// неизменяем. Единственное изменяемое после создания поле — IsPublic.
type FileNode struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID  string             `bson:"userId" json:"userId"`
	Name     string             `bson:"name" json:"name"`
	Kind     Kind               `bson:"type" json:"type"`
	IsPublic bool               `bson:"isPublic" json:"isPublic"`
	ParentID string             `bson:"parentId" json:"parentId"`
	// StoragePath — blob-локатор в файловом хранилище.
	// Не попадает в публичную проекцию API.
	StoragePath string `bson:"localPath,omitempty" json:"-"`
}

// ParentRef — разобранная ссылка на родителя: корень или id папки.
// Устраняет строковые сравнения с sentinel "0" в бизнес-логике.
type ParentRef struct {
	id string
}

// ParseParent разбирает строковую форму parentId.
// Пустая строка трактуется как корень (значение по умолчанию API).
func ParseParent(s string) ParentRef {
	if s == "" || s == RootParentID {
		return ParentRef{}
	}
	return ParentRef{id: s}
}

// IsRoot сообщает, указывает ли ссылка на корень пространства имён.
func (p ParentRef) IsRoot() bool {
	return p.id == ""
}

// ID возвращает id родительской папки. Пусто для корня.
func (p ParentRef) ID() string {
	return p.id
}

// String возвращает строковую форму для хранения: "0" или id папки.
func (p ParentRef) String() string {
	if p.IsRoot() {
		return RootParentID
	}
	return p.id
}
