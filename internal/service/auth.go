// auth.go — Authenticator: выпуск, разрешение и отзыв сессионных токенов.
// Единственный шлюз доступа: каждая защищённая операция File Service
// сначала разрешает токен в ownerId через этот сервис.
package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/gofilestore/internal/repository"
	"github.com/bigkaa/gofilestore/internal/storage/sessions"
)

// TokenStore — поверхность Credential Store, нужная Authenticator-у.
// Реализуется sessions.Store (Redis).
type TokenStore interface {
	Get(ctx context.Context, token string) (string, error)
	Set(ctx context.Context, token, ownerID string, ttl time.Duration) error
	Del(ctx context.Context, token string) error
}

// AuthService — аутентификация по ephemeral-токенам.
type AuthService struct {
	users  repository.UserRepository
	tokens TokenStore
	ttl    time.Duration
	logger *slog.Logger
}

// NewAuthService создаёт Authenticator.
// ttl — фиксированное время жизни сессии от момента создания (FM_SESSION_TTL).
func NewAuthService(users repository.UserRepository, tokens TokenStore, ttl time.Duration, logger *slog.Logger) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		ttl:    ttl,
		logger: logger.With(slog.String("component", "auth_service")),
	}
}

// Login проверяет пару email/password и создаёт сессию.
// Возвращает токен или ErrUnauthenticated. Проверка коллизий токена
// не выполняется: вероятность пренебрежимо мала.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrUnauthenticated
	}

	user, err := s.users.GetByCredentials(ctx, email, hashPassword(password))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("ошибка проверки учётных данных: %w", err)
	}

	token := uuid.NewString()
	if err := s.tokens.Set(ctx, token, user.ID.Hex(), s.ttl); err != nil {
		return "", fmt.Errorf("ошибка создания сессии: %w", err)
	}

	s.logger.Info("Сессия создана",
		slog.String("owner_id", user.ID.Hex()),
	)
	return token, nil
}

// ResolveOwner разрешает токен в ownerId.
// Пустой токен отклоняется сразу, без обращения к хранилищу.
// Отсутствующий и истёкший ключи неразличимы — оба дают ErrUnauthenticated.
// TTL при чтении не продлевается.
func (s *AuthService) ResolveOwner(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}

	ownerID, err := s.tokens.Get(ctx, token)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("ошибка разрешения токена: %w", err)
	}
	return ownerID, nil
}

// Logout отзывает сессию. Уже отсутствующий токен — ErrUnauthenticated:
// наблюдаемый logout отличим от no-op.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return ErrUnauthenticated
	}

	if err := s.tokens.Del(ctx, token); err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			return ErrUnauthenticated
		}
		return fmt.Errorf("ошибка отзыва сессии: %w", err)
	}
	return nil
}

// hashPassword возвращает односторонний SHA-1 hex-дайджест пароля
// (формат хранения каталога, совместимый с существующими данными).
func hashPassword(password string) string {
	sum := sha1.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}
