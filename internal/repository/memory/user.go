package memory

import (
	"context"
	"sync"
	"time"

	"github.com/firetrack/backend/internal/domain"

	"github.com/google/uuid"
)

type UserRepo struct {
	mu    sync.RWMutex
	users map[uuid.UUID]domain.User
	now   func() time.Time
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		users: make(map[uuid.UUID]domain.User),
		now:   time.Now,
	}
}

func (r *UserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.ID]; ok {
		return domain.ErrDuplicateEntry
	}
	for _, u := range r.users {
		if u.Email == user.Email {
			return domain.ErrDuplicateEntry
		}
	}

	u := *user
	u.CreatedAt = r.now()
	u.UpdatedAt = u.CreatedAt
	r.users[u.ID] = u

	return nil
}

func (r *UserRepo) GetOneByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}

	return nil, domain.ErrNotFound
}

func (r *UserRepo) Activate(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}

	if !u.Activated {
		u.Activated = true
		u.UpdatedAt = r.now()
		r.users[id] = u
	}

	return &u, nil
}
