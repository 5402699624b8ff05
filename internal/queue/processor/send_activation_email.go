package processor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/firetrack/backend/internal/queue/task"
	"github.com/firetrack/backend/internal/worker"

	"github.com/hibiken/asynq"
)

type sendActivationEmailProcessor struct {
	workers *worker.Workers
}

func NewSendActivationEmailProcessor(workers *worker.Workers) *sendActivationEmailProcessor {
	return &sendActivationEmailProcessor{
		workers: workers,
	}
}

func (p *sendActivationEmailProcessor) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var data task.SendActivationEmail
	err := json.Unmarshal(t.Payload(), &data)
	if err != nil {
		return fmt.Errorf("process send activation email task json unmarshal failed: %w: %w", err, asynq.SkipRetry)
	}

	if err = p.workers.EmailSender.SendActivationEmail(ctx, data.Email, data.ActivationCode); err != nil {
		return fmt.Errorf("send activation email failed: %w", err)
	}

	return nil
}
