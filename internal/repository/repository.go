package repository

import (
	"context"
	"time"

	"github.com/firetrack/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repositories struct {
	Users           Users
	ActivationCodes ActivationCodes
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Users:           newUserRepository(db),
		ActivationCodes: newActivationCodeRepository(db),
	}
}

type Users interface {
	Create(ctx context.Context, user *domain.User) error
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Activate sets the activated flag. Activating an activated user returns it unchanged.
	Activate(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// ActivationCodes stores at most one activation code per user.
type ActivationCodes interface {
	// FindByUser returns domain.ErrNotFound when the user has no code.
	FindByUser(ctx context.Context, userID uuid.UUID) (*domain.ActivationCode, error)
	// Upsert inserts the code or replaces code, expiration time and attempts
	// of the existing row in a single statement.
	Upsert(ctx context.Context, code *domain.ActivationCode) error
	// IncrementAttempts adds one attempt to the row holding the given code value
	// if it has fewer than limit attempts, and returns the updated row.
	// It returns domain.ErrNoRowsAffected when the condition does not hold.
	IncrementAttempts(ctx context.Context, userID uuid.UUID, code int, limit int) (*domain.ActivationCode, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
