// users.go — сервис учётных записей.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bigkaa/gofilestore/internal/domain/model"
	"github.com/bigkaa/gofilestore/internal/repository"
)

// UserService — создание и чтение учётных записей.
type UserService struct {
	users  repository.UserRepository
	logger *slog.Logger
}

// NewUserService создаёт сервис учётных записей.
func NewUserService(users repository.UserRepository, logger *slog.Logger) *UserService {
	return &UserService{
		users:  users,
		logger: logger.With(slog.String("component", "user_service")),
	}
}

// CreateAccount создаёт учётную запись.
// Порядок валидации: email → password → уникальность email.
// На один email существует ровно одна учётная запись.
func (s *UserService) CreateAccount(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" {
		return nil, &ValidationError{Reason: "Missing email"}
	}
	if password == "" {
		return nil, &ValidationError{Reason: "Missing password"}
	}

	user, err := s.users.Insert(ctx, email, hashPassword(password))
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, &ValidationError{Reason: "Already exist"}
		}
		return nil, fmt.Errorf("ошибка создания учётной записи: %w", err)
	}

	s.logger.Info("Учётная запись создана",
		slog.String("user_id", user.ID.Hex()),
	)
	return user, nil
}

// GetByID возвращает учётную запись по идентификатору или ErrNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения учётной записи: %w", err)
	}
	return user, nil
}
