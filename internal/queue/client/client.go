package client

import (
	"context"
	"fmt"

	"github.com/firetrack/backend/internal/domain"
	"github.com/firetrack/backend/internal/queue/task"
	"github.com/firetrack/backend/pkg/logger"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ActivationNotifier delivers activation codes through the email queue.
type ActivationNotifier struct {
	enqueuer Enqueuer
}

func NewActivationNotifier(enqueuer Enqueuer) *ActivationNotifier {
	return &ActivationNotifier{
		enqueuer: enqueuer,
	}
}

func (n *ActivationNotifier) NotifyActivationCode(ctx context.Context, user *domain.User, code *domain.ActivationCode) error {
	t, err := task.NewSendActivationEmailTask(user.Email, code.String(), code.ExpirationTime)
	if err != nil {
		return fmt.Errorf("create send activation email task failed: %w", err)
	}

	info, err := n.enqueuer.EnqueueContext(ctx, t)
	if err != nil {
		return fmt.Errorf("enqueue send activation email task failed: %w", err)
	}

	logger.Debug("activation email enqueued",
		zap.String("user_id", user.ID.String()),
		zap.String("task_id", info.ID),
	)

	return nil
}
