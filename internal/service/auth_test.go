package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

// newTestAuth создаёт AuthService с in-memory зависимостями и одним
// зарегистрированным пользователем a@x.com / pw1.
func newTestAuth(t *testing.T) (*AuthService, *memUserRepo, *memTokenStore) {
	t.Helper()
	users := newMemUserRepo()
	tokens := newMemTokenStore()

	if _, err := users.Insert(context.Background(), "a@x.com", hashPassword("pw1")); err != nil {
		t.Fatalf("ошибка подготовки пользователя: %v", err)
	}

	auth := NewAuthService(users, tokens, 24*time.Hour, slog.Default())
	return auth, users, tokens
}

// TestLogin_Success проверяет выпуск токена по корректным учётным данным.
func TestLogin_Success(t *testing.T) {
	auth, _, _ := newTestAuth(t)
	ctx := context.Background()

	token, err := auth.Login(ctx, "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("ошибка логина: %v", err)
	}
	if token == "" {
		t.Fatal("токен не должен быть пустым")
	}

	ownerID, err := auth.ResolveOwner(ctx, token)
	if err != nil {
		t.Fatalf("ошибка разрешения токена: %v", err)
	}
	if ownerID == "" {
		t.Error("ownerId не должен быть пустым")
	}
}

// TestLogin_InvalidCredentials проверяет отказ по неверным данным.
func TestLogin_InvalidCredentials(t *testing.T) {
	auth, _, _ := newTestAuth(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"неверный пароль", "a@x.com", "wrong"},
		{"несуществующий email", "b@x.com", "pw1"},
		{"пустой email", "", "pw1"},
		{"пустой пароль", "a@x.com", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := auth.Login(ctx, tt.email, tt.password); !errors.Is(err, ErrUnauthenticated) {
				t.Errorf("ожидалась ErrUnauthenticated, получено %v", err)
			}
		})
	}
}

// TestResolveOwner_EmptyToken проверяет отказ без обращения к хранилищу.
func TestResolveOwner_EmptyToken(t *testing.T) {
	auth, _, _ := newTestAuth(t)

	if _, err := auth.ResolveOwner(context.Background(), ""); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("ожидалась ErrUnauthenticated, получено %v", err)
	}
}

// TestResolveOwner_UnknownToken проверяет отказ по неизвестному токену.
func TestResolveOwner_UnknownToken(t *testing.T) {
	auth, _, _ := newTestAuth(t)

	if _, err := auth.ResolveOwner(context.Background(), "no-such-token"); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("ожидалась ErrUnauthenticated, получено %v", err)
	}
}

// TestResolveOwner_Expired проверяет, что истёкшая сессия неотличима
// от несуществующей и TTL не продлевается чтением.
func TestResolveOwner_Expired(t *testing.T) {
	auth, _, tokens := newTestAuth(t)
	ctx := context.Background()

	token, err := auth.Login(ctx, "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("ошибка логина: %v", err)
	}

	// Сдвигаем часы хранилища на 23 часа: сессия ещё жива
	base := time.Now()
	tokens.now = func() time.Time { return base.Add(23 * time.Hour) }
	if _, err := auth.ResolveOwner(ctx, token); err != nil {
		t.Fatalf("сессия должна быть жива через 23 часа: %v", err)
	}

	// Чтение не продлило TTL: ещё через 2 часа сессия истекла
	tokens.now = func() time.Time { return base.Add(25 * time.Hour) }
	if _, err := auth.ResolveOwner(ctx, token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("ожидалась ErrUnauthenticated после истечения TTL, получено %v", err)
	}
}

// TestLogout проверяет отзыв сессии и повторный logout.
func TestLogout(t *testing.T) {
	auth, _, _ := newTestAuth(t)
	ctx := context.Background()

	token, err := auth.Login(ctx, "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("ошибка логина: %v", err)
	}

	if err := auth.Logout(ctx, token); err != nil {
		t.Fatalf("ошибка logout: %v", err)
	}

	// Отозванный токен немедленно недействителен
	if _, err := auth.ResolveOwner(ctx, token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("отозванный токен должен давать ErrUnauthenticated, получено %v", err)
	}

	// Повторный logout — наблюдаемый отказ, не no-op
	if err := auth.Logout(ctx, token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("повторный logout должен давать ErrUnauthenticated, получено %v", err)
	}
}

// TestLogin_TokensUnique проверяет, что каждая сессия получает свой токен.
func TestLogin_TokensUnique(t *testing.T) {
	auth, _, _ := newTestAuth(t)
	ctx := context.Background()

	t1, err := auth.Login(ctx, "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("ошибка логина: %v", err)
	}
	t2, err := auth.Login(ctx, "a@x.com", "pw1")
	if err != nil {
		t.Fatalf("ошибка логина: %v", err)
	}
	if t1 == t2 {
		t.Error("повторный логин должен выпускать новый токен")
	}
}
