package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/firetrack/backend/internal/db"
	"github.com/firetrack/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type userRepository struct {
	db *sqlx.DB
}

func newUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
	INSERT INTO user
	(id, email, password, activated)
	VALUES(uuid_to_bin(?), ?, ?, ?);
	`

	result, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Password,
		user.Activated,
	)

	if err != nil {
		if db.IsDuplicateEntry(err) {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("db insert user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected failed: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

func (r *userRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `
	SELECT id, email, password, activated, created_at, updated_at FROM user WHERE id = uuid_to_bin(?);
	`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select from user by id failed: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
	SELECT id, email, password, activated, created_at, updated_at FROM user WHERE email = ?;
	`

	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select from user by email failed: %w", err)
	}

	return &user, nil
}

func (r *userRepository) Activate(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `
	UPDATE user SET activated = TRUE WHERE id = uuid_to_bin(?);
	`

	// Zero affected rows means either an unknown user or one that was already
	// activated; the read below tells them apart.
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return nil, fmt.Errorf("update user activated failed: %w", err)
	}

	return r.GetOneByID(ctx, id)
}
