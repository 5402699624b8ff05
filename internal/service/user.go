package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/firetrack/backend/internal/domain"
	"github.com/firetrack/backend/internal/repository"
	"github.com/firetrack/backend/pkg/email"
	"github.com/firetrack/backend/pkg/hash"

	"github.com/google/uuid"
)

type userService struct {
	userRepository  repository.Users
	activationCodes ActivationCodes
	hasher          hash.PasswordHasher
	notifier        ActivationNotifier
}

func newUserService(
	userRepository repository.Users,
	activationCodes ActivationCodes,
	hasher hash.PasswordHasher,
	notifier ActivationNotifier,
) *userService {
	return &userService{
		userRepository:  userRepository,
		activationCodes: activationCodes,
		hasher:          hasher,
		notifier:        notifier,
	}
}

// Register creates a user that is not yet activated and sends it an activation code.
// When the user was stored but the code could not be sent, the user is returned
// with an error matching ErrActivationCodeNotSent; ResendActivationCode retries delivery.
func (s *userService) Register(ctx context.Context, emailAddr string, password string) (*domain.User, error) {
	emailAddr = strings.ToLower(strings.TrimSpace(emailAddr))
	if !email.IsEmailValid(emailAddr) {
		return nil, ErrInvalidEmail
	}

	hashed, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate user id failed: %w", err)
	}

	user := &domain.User{
		ID:       id,
		Email:    emailAddr,
		Password: hashed,
	}

	if err := s.userRepository.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return nil, ErrUserAlreadyExist
		}
		return nil, fmt.Errorf("create user failed: %w", err)
	}

	if _, err := s.sendActivationCode(ctx, user); err != nil {
		return user, fmt.Errorf("%w: %w", ErrActivationCodeNotSent, err)
	}

	return user, nil
}

func (s *userService) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userRepository.GetOneByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by id failed: %w", err)
	}

	return user, nil
}

func (s *userService) GetByEmail(ctx context.Context, emailAddr string) (*domain.User, error) {
	user, err := s.userRepository.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(emailAddr)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email failed: %w", err)
	}

	return user, nil
}

func (s *userService) ResendActivationCode(ctx context.Context, id uuid.UUID) (*domain.ActivationCode, error) {
	user, err := s.GetOneByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.sendActivationCode(ctx, user)
}

func (s *userService) Activate(ctx context.Context, id uuid.UUID, code int) (*domain.User, error) {
	user, err := s.GetOneByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.activationCodes.ValidateAndActivate(ctx, user, code)
}

func (s *userService) RevokeActivationCode(ctx context.Context, id uuid.UUID) error {
	user, err := s.GetOneByID(ctx, id)
	if err != nil {
		return err
	}

	return s.activationCodes.Delete(ctx, user)
}

func (s *userService) sendActivationCode(ctx context.Context, user *domain.User) (*domain.ActivationCode, error) {
	code, err := s.activationCodes.IssueOrRefresh(ctx, user)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.NotifyActivationCode(ctx, user, code); err != nil {
		return nil, fmt.Errorf("notify activation code failed: %w", err)
	}

	return code, nil
}
