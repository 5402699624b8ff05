package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firetrack/backend/internal/domain"
	"github.com/firetrack/backend/internal/metrics"
	"github.com/firetrack/backend/internal/repository"
	"github.com/firetrack/backend/pkg/logger"
	"github.com/firetrack/backend/pkg/otp"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conditional increments that lose a race are retried from the read this many times.
const maxConflictRetries = 3

type activationService struct {
	codeRepository repository.ActivationCodes
	userRepository repository.Users
	generator      otp.Generator
	now            func() time.Time
	ttl            time.Duration
	maxAttempts    int
}

func newActivationService(
	codeRepository repository.ActivationCodes,
	userRepository repository.Users,
	generator otp.Generator,
	now func() time.Time,
	ttl time.Duration,
	maxAttempts int,
) *activationService {
	if now == nil {
		now = defaultClock
	}
	if maxAttempts <= 0 {
		maxAttempts = domain.MaxActivationAttempts
	}

	return &activationService{
		codeRepository: codeRepository,
		userRepository: userRepository,
		generator:      generator,
		now:            now,
		ttl:            ttl,
		maxAttempts:    maxAttempts,
	}
}

// defaultClock drops the monotonic reading and keeps the precision MySQL stores.
func defaultClock() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// IssueOrRefresh returns the live code of the user, counting the retrieval
// as an attempt, or mints a new one when there is none or it expired.
func (s *activationService) IssueOrRefresh(ctx context.Context, user *domain.User) (*domain.ActivationCode, error) {
	if user.Activated {
		return nil, ErrUserAlreadyActivated
	}

	for i := 0; i < maxConflictRetries; i++ {
		current, err := s.find(ctx, user.ID)
		if err != nil {
			metrics.IncActivationCodeIssued("error")
			return nil, err
		}

		now := s.now()
		if current == nil || current.IsExpired(now) {
			code, err := s.mint(ctx, user.ID, now)
			if err != nil {
				metrics.IncActivationCodeIssued("error")
				return nil, err
			}
			metrics.IncActivationCodeIssued("minted")
			return code, nil
		}

		// Retrieval consumes the budget too, so repeated resend requests
		// cannot flood the inbox.
		if current.AttemptsExceeded(s.maxAttempts) {
			metrics.IncActivationCodeIssued("rejected")
			logger.Warn("activation code attempts exhausted on refresh", zap.String("user_id", user.ID.String()))
			return nil, ErrMaxAttemptsExceeded
		}

		updated, err := s.codeRepository.IncrementAttempts(ctx, user.ID, current.Code, s.maxAttempts)
		if errors.Is(err, domain.ErrNoRowsAffected) {
			continue
		}
		if err != nil {
			metrics.IncActivationCodeIssued("error")
			return nil, storageError(StorageOpUpdate, err)
		}

		metrics.IncActivationCodeIssued("refreshed")
		return updated, nil
	}

	metrics.IncActivationCodeIssued("error")
	return nil, storageError(StorageOpUpdate, errConcurrentModification)
}

// ValidateAndActivate activates the user when code matches the stored live
// code. A mismatch counts as an attempt.
func (s *activationService) ValidateAndActivate(ctx context.Context, user *domain.User, code int) (*domain.User, error) {
	if user.Activated {
		return nil, ErrUserAlreadyActivated
	}

	for i := 0; i < maxConflictRetries; i++ {
		current, err := s.find(ctx, user.ID)
		if err != nil {
			metrics.IncActivationValidation("error")
			return nil, err
		}

		// Issuance always precedes validation, so a missing row means the
		// previous code expired and was purged.
		if current == nil || current.IsExpired(s.now()) {
			metrics.IncActivationValidation("expired")
			return nil, ErrActivationCodeExpired
		}

		if current.AttemptsExceeded(s.maxAttempts) {
			metrics.IncActivationValidation("locked")
			return nil, ErrMaxAttemptsExceeded
		}

		if current.Code == code {
			return s.activate(ctx, user.ID)
		}

		updated, err := s.codeRepository.IncrementAttempts(ctx, user.ID, current.Code, s.maxAttempts)
		if errors.Is(err, domain.ErrNoRowsAffected) {
			continue
		}
		if err != nil {
			metrics.IncActivationValidation("error")
			return nil, storageError(StorageOpUpdate, err)
		}

		metrics.IncActivationValidation("invalid")
		logger.Info("invalid activation code submitted",
			zap.String("user_id", user.ID.String()),
			zap.Int("attempts", updated.Attempts),
		)

		return nil, &InvalidActivationCodeError{RemainingAttempts: updated.RemainingAttempts(s.maxAttempts)}
	}

	metrics.IncActivationValidation("error")
	return nil, storageError(StorageOpUpdate, errConcurrentModification)
}

// Delete removes the code of the user. Deleting a missing code is not an error.
func (s *activationService) Delete(ctx context.Context, user *domain.User) error {
	if err := s.codeRepository.DeleteByUser(ctx, user.ID); err != nil {
		return storageError(StorageOpDelete, err)
	}

	return nil
}

// PurgeExpired deletes every expired code and returns how many were removed.
func (s *activationService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.codeRepository.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, storageError(StorageOpPurge, err)
	}

	metrics.AddActivationCodesPurged(n)

	return n, nil
}

func (s *activationService) RemainingAttempts(code *domain.ActivationCode) int {
	return code.RemainingAttempts(s.maxAttempts)
}

func (s *activationService) find(ctx context.Context, userID uuid.UUID) (*domain.ActivationCode, error) {
	code, err := s.codeRepository.FindByUser(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storageError(StorageOpRead, err)
	}

	return code, nil
}

func (s *activationService) mint(ctx context.Context, userID uuid.UUID, now time.Time) (*domain.ActivationCode, error) {
	value, err := s.generator.RandomCode(domain.ActivationCodeMin, domain.ActivationCodeMax)
	if err != nil {
		return nil, fmt.Errorf("generate activation code failed: %w", err)
	}
	if !domain.ValidActivationCode(value) {
		return nil, fmt.Errorf("generate activation code failed: %d out of range", value)
	}

	expirationTime, err := addTTL(now, s.ttl)
	if err != nil {
		return nil, err
	}

	code := &domain.ActivationCode{
		UserID:         userID,
		Code:           value,
		ExpirationTime: expirationTime,
		Attempts:       0,
	}

	if err := s.codeRepository.Upsert(ctx, code); err != nil {
		return nil, storageError(StorageOpCreate, err)
	}

	logger.Info("activation code minted",
		zap.String("user_id", userID.String()),
		zap.Time("expiration_time", expirationTime),
	)

	return code, nil
}

func (s *activationService) activate(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userRepository.Activate(ctx, userID)
	if err != nil {
		metrics.IncActivationValidation("error")
		return nil, storageError(StorageOpActivate, err)
	}

	metrics.IncActivationValidation("activated")

	// The activated flag guards every further call, so a leftover row is
	// harmless and will be purged once it expires.
	if err := s.codeRepository.DeleteByUser(ctx, userID); err != nil {
		logger.Warn("delete activation code after activation failed",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}

	return user, nil
}

// addTTL fails instead of saturating when now+ttl is not representable.
func addTTL(now time.Time, ttl time.Duration) (time.Time, error) {
	expirationTime := now.Add(ttl)
	if expirationTime.Sub(now) != ttl {
		return time.Time{}, ErrExpirationTimeOverflow
	}

	return expirationTime, nil
}
