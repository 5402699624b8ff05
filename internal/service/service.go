package service

import (
	"context"
	"time"

	"github.com/firetrack/backend/internal/config"
	"github.com/firetrack/backend/internal/domain"
	"github.com/firetrack/backend/internal/repository"
	"github.com/firetrack/backend/pkg/hash"
	"github.com/firetrack/backend/pkg/otp"

	"github.com/google/uuid"
)

type Services struct {
	Users           Users
	ActivationCodes ActivationCodes
}

type Deps struct {
	Config       *config.Config
	Hasher       hash.PasswordHasher
	OtpGenerator otp.Generator
	Notifier     ActivationNotifier
	Repos        *repository.Repositories
	// Clock defaults to the wall clock in UTC.
	Clock func() time.Time
}

func NewServices(deps Deps) *Services {
	activationCodes := newActivationService(
		deps.Repos.ActivationCodes,
		deps.Repos.Users,
		deps.OtpGenerator,
		deps.Clock,
		deps.Config.Activation.CodeTTL,
		deps.Config.Activation.MaxAttempts,
	)

	return &Services{
		Users: newUserService(
			deps.Repos.Users,
			activationCodes,
			deps.Hasher,
			deps.Notifier,
		),
		ActivationCodes: activationCodes,
	}
}

type Users interface {
	Register(ctx context.Context, email string, password string) (*domain.User, error)
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	ResendActivationCode(ctx context.Context, id uuid.UUID) (*domain.ActivationCode, error)
	Activate(ctx context.Context, id uuid.UUID, code int) (*domain.User, error)
	RevokeActivationCode(ctx context.Context, id uuid.UUID) error
}

// ActivationCodes manages the one-time code that activates a registered user.
type ActivationCodes interface {
	IssueOrRefresh(ctx context.Context, user *domain.User) (*domain.ActivationCode, error)
	ValidateAndActivate(ctx context.Context, user *domain.User, code int) (*domain.User, error)
	Delete(ctx context.Context, user *domain.User) error
	PurgeExpired(ctx context.Context) (int64, error)
	// RemainingAttempts reports how many counted calls code still allows.
	RemainingAttempts(code *domain.ActivationCode) int
}

// ActivationNotifier hands an issued code over for delivery to the user.
type ActivationNotifier interface {
	NotifyActivationCode(ctx context.Context, user *domain.User, code *domain.ActivationCode) error
}
