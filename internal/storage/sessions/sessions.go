// Пакет sessions — хранилище сессионных токенов поверх Redis.
// Привязка token → ownerId живёт фиксированные 24 часа с момента
// создания (TTL Redis); истёкший ключ неотличим от несуществующего.
package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix — пространство имён ключей сессий в Redis.
const keyPrefix = "auth_"

// ErrNotFound — сессия отсутствует (не создавалась, истекла или отозвана).
var ErrNotFound = errors.New("сессия не найдена")

// Store — хранилище сессий поверх Redis.
type Store struct {
	rdb *redis.Client
}

// New создаёт хранилище сессий поверх готового Redis-клиента.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// Get возвращает ownerId, привязанный к токену, или ErrNotFound.
// TTL ключа при чтении не продлевается: сессия истекает по часам
// от момента создания, а не от последнего использования.
func (s *Store) Get(ctx context.Context, token string) (string, error) {
	val, err := s.rdb.Get(ctx, keyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("ошибка чтения сессии: %w", err)
	}
	return val, nil
}

// Set сохраняет привязку token → ownerId с указанным TTL.
func (s *Store) Set(ctx context.Context, token, ownerID string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, keyPrefix+token, ownerID, ttl).Err(); err != nil {
		return fmt.Errorf("ошибка записи сессии: %w", err)
	}
	return nil
}

// Del удаляет привязку токена. Возвращает ErrNotFound, если ключ
// уже отсутствовал: явный logout отличим от idempotent no-op.
func (s *Store) Del(ctx context.Context, token string) error {
	removed, err := s.rdb.Del(ctx, keyPrefix+token).Result()
	if err != nil {
		return fmt.Errorf("ошибка удаления сессии: %w", err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

// Ping проверяет доступность Redis (для /status и readiness probe).
func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
