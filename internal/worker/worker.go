package worker

import (
	"context"

	"github.com/firetrack/backend/internal/cache"
	"github.com/firetrack/backend/internal/config"
	"github.com/firetrack/backend/internal/service"
	emailProvider "github.com/firetrack/backend/pkg/email"

	"github.com/redis/go-redis/v9"
)

type Workers struct {
	EmailSender EmailSender
	Purger      Purger
}

type Deps struct {
	Redis         redis.UniversalClient
	Services      *service.Services
	EmailProvider emailProvider.Sender
	Config        *config.Config
}

type EmailSender interface {
	SendActivationEmail(ctx context.Context, email string, activationCode string) error
}

type Purger interface {
	PurgeExpiredActivationCodes(ctx context.Context) (int64, error)
}

func NewWorkers(deps Deps) *Workers {
	return &Workers{
		EmailSender: newEmailSender(deps.EmailProvider, deps.Config.Email),
		Purger: newPurger(
			cache.NewLocker(deps.Redis),
			deps.Services.ActivationCodes,
			deps.Config.Activation.PurgeLockTTL,
		),
	}
}
