// fakes_test.go — in-memory реализации репозиториев, хранилища токенов
// и брокера очереди для unit-тестов сервисного слоя.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/bigkaa/gofilestore/internal/domain/model"
	"github.com/bigkaa/gofilestore/internal/queue"
	"github.com/bigkaa/gofilestore/internal/repository"
	"github.com/bigkaa/gofilestore/internal/storage/sessions"
)

// --- UserRepository ---

type memUserRepo struct {
	mu    sync.Mutex
	users []*model.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{}
}

func (r *memUserRepo) Insert(_ context.Context, email, passwordHash string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return nil, repository.ErrAlreadyExists
		}
	}
	u := &model.User{ID: primitive.NewObjectID(), Email: email, PasswordHash: passwordHash}
	r.users = append(r.users, u)
	return u, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByCredentials(_ context.Context, email, passwordHash string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && u.PasswordHash == passwordHash {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID.Hex() == id {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

// --- FileRepository ---

type memFileRepo struct {
	mu    sync.Mutex
	nodes []*model.FileNode
}

func newMemFileRepo() *memFileRepo {
	return &memFileRepo{}
}

func (r *memFileRepo) Insert(_ context.Context, node *model.FileNode) (*model.FileNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	node.ID = primitive.NewObjectID()
	r.nodes = append(r.nodes, node)
	return node, nil
}

func (r *memFileRepo) GetByID(_ context.Context, id string) (*model.FileNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.nodes {
		if n.ID.Hex() == id {
			return n, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memFileRepo) GetOwned(_ context.Context, id, ownerID string) (*model.FileNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.nodes {
		if n.ID.Hex() == id && n.OwnerID == ownerID {
			return n, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memFileRepo) List(_ context.Context, ownerID, parentID string, page, pageSize int) ([]*model.FileNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := []*model.FileNode{}
	for _, n := range r.nodes {
		if n.OwnerID == ownerID && n.ParentID == parentID {
			matched = append(matched, n)
		}
	}
	start := page * pageSize
	if start >= len(matched) {
		return []*model.FileNode{}, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (r *memFileRepo) SetVisibility(_ context.Context, id, ownerID string, isPublic bool) (*model.FileNode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.nodes {
		if n.ID.Hex() == id && n.OwnerID == ownerID {
			n.IsPublic = isPublic
			return n, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memFileRepo) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.nodes)), nil
}

// --- TokenStore ---

type tokenEntry struct {
	ownerID   string
	expiresAt time.Time
}

// memTokenStore — in-memory TokenStore с управляемыми часами
// для проверки TTL-семантики.
type memTokenStore struct {
	mu      sync.Mutex
	entries map[string]tokenEntry
	now     func() time.Time
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{
		entries: map[string]tokenEntry{},
		now:     time.Now,
	}
}

func (s *memTokenStore) Get(_ context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[token]
	if !ok || s.now().After(e.expiresAt) {
		// Истёкший ключ неотличим от несуществующего
		return "", sessions.ErrNotFound
	}
	return e.ownerID, nil
}

func (s *memTokenStore) Set(_ context.Context, token, ownerID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[token] = tokenEntry{ownerID: ownerID, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *memTokenStore) Del(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[token]; !ok {
		return sessions.ErrNotFound
	}
	delete(s.entries, token)
	return nil
}

// --- Broker ---

// recordingBroker — брокер, записывающий поставленные задания.
type recordingBroker struct {
	mu   sync.Mutex
	jobs []queue.Job
}

func newRecordingBroker() *recordingBroker {
	return &recordingBroker{}
}

func (b *recordingBroker) Enqueue(_ context.Context, job queue.Job) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jobs = append(b.jobs, job)
	return nil
}

func (b *recordingBroker) Dequeue(_ context.Context) (*queue.Job, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.jobs) == 0 {
		return nil, nil
	}
	j := b.jobs[0]
	b.jobs = b.jobs[1:]
	return &j, nil
}

func (b *recordingBroker) enqueued() []queue.Job {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]queue.Job, len(b.jobs))
	copy(out, b.jobs)
	return out
}

// failingBroker — брокер, всегда отказывающий в постановке.
type failingBroker struct{}

func (failingBroker) Enqueue(_ context.Context, _ queue.Job) error {
	return errors.New("очередь недоступна")
}

func (failingBroker) Dequeue(_ context.Context) (*queue.Job, error) {
	return nil, errors.New("очередь недоступна")
}
