// Package memory holds in-process implementations of the repository
// interfaces. They are used by tests and by the CLI when no database is
// configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/firetrack/backend/internal/domain"

	"github.com/google/uuid"
)

type ActivationCodeRepo struct {
	mu    sync.Mutex
	codes map[uuid.UUID]domain.ActivationCode
}

func NewActivationCodeRepo() *ActivationCodeRepo {
	return &ActivationCodeRepo{
		codes: make(map[uuid.UUID]domain.ActivationCode),
	}
}

func (r *ActivationCodeRepo) FindByUser(_ context.Context, userID uuid.UUID) (*domain.ActivationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.codes[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}

	return &c, nil
}

func (r *ActivationCodeRepo) Upsert(_ context.Context, code *domain.ActivationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codes[code.UserID] = *code

	return nil
}

func (r *ActivationCodeRepo) IncrementAttempts(_ context.Context, userID uuid.UUID, code int, limit int) (*domain.ActivationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.codes[userID]
	if !ok || c.Code != code || c.Attempts >= limit {
		return nil, domain.ErrNoRowsAffected
	}

	c.Attempts++
	r.codes[userID] = c

	return &c, nil
}

func (r *ActivationCodeRepo) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.codes, userID)

	return nil
}

func (r *ActivationCodeRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, c := range r.codes {
		if !c.ExpirationTime.After(before) {
			delete(r.codes, id)
			n++
		}
	}

	return n, nil
}

// Len returns the number of stored codes.
func (r *ActivationCodeRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.codes)
}
