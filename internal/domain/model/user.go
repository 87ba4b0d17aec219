// user.go — учётная запись пользователя.
package model

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User — учётная запись. PasswordHash — односторонний SHA-1 hex,
// plaintext-пароль нигде не хранится и не возвращается.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password" json:"-"`
}
