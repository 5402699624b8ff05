package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/firetrack/backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type activationCodeRepository struct {
	db *sqlx.DB
}

func newActivationCodeRepository(db *sqlx.DB) *activationCodeRepository {
	return &activationCodeRepository{
		db: db,
	}
}

func (r *activationCodeRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.ActivationCode, error) {
	const op = "repository.activationCode.FindByUser"

	const query = `
    SELECT user_id, code, expiration_time, attempts
    FROM activation_code
    WHERE user_id = uuid_to_bin(?)
    `

	var activationCode domain.ActivationCode
	if err := r.db.GetContext(ctx, &activationCode, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("%s: select activation code failed: %w", op, err)
	}

	return &activationCode, nil
}

func (r *activationCodeRepository) Upsert(ctx context.Context, activationCode *domain.ActivationCode) error {
	const op = "repository.activationCode.Upsert"

	const query = `
    INSERT INTO activation_code (user_id, code, expiration_time, attempts)
    VALUES (uuid_to_bin(:user_id), :code, :expiration_time, :attempts)
    ON DUPLICATE KEY UPDATE code = VALUES(code), expiration_time = VALUES(expiration_time), attempts = VALUES(attempts)
    `

	// MySQL reports 1 for an insert, 2 for an update and 0 when the row already
	// held identical values, so the affected rows count is not checked here.
	if _, err := r.db.NamedExecContext(ctx, query, activationCode); err != nil {
		return fmt.Errorf("%s: upsert activation code failed: %w", op, err)
	}

	return nil
}

func (r *activationCodeRepository) IncrementAttempts(ctx context.Context, userID uuid.UUID, code int, limit int) (*domain.ActivationCode, error) {
	const op = "repository.activationCode.IncrementAttempts"

	const updateQuery = `
    UPDATE activation_code
    SET attempts = attempts + 1
    WHERE user_id = uuid_to_bin(?) AND code = ? AND attempts < ?
    `

	const selectQuery = `
    SELECT user_id, code, expiration_time, attempts
    FROM activation_code
    WHERE user_id = uuid_to_bin(?)
    `

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx failed: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	res, err := tx.ExecContext(ctx, updateQuery, userID, code, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: update activation code failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	if rows == 0 {
		return nil, domain.ErrNoRowsAffected
	}

	// The row lock taken by the update is held until commit, so the read
	// observes this increment and any that committed before it.
	var activationCode domain.ActivationCode
	if err := tx.GetContext(ctx, &activationCode, selectQuery, userID); err != nil {
		return nil, fmt.Errorf("%s: select activation code failed: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit tx failed: %w", op, err)
	}

	return &activationCode, nil
}

func (r *activationCodeRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	const op = "repository.activationCode.DeleteByUser"

	const query = `DELETE FROM activation_code WHERE user_id = uuid_to_bin(?)`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("%s: delete activation code failed: %w", op, err)
	}

	return nil
}

func (r *activationCodeRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	const op = "repository.activationCode.DeleteExpired"

	const query = `DELETE FROM activation_code WHERE expiration_time <= ?`

	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("%s: delete expired activation codes failed: %w", op, err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: get rows affected failed: %w", op, err)
	}

	return rows, nil
}
