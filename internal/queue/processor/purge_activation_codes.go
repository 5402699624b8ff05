package processor

import (
	"context"
	"fmt"

	"github.com/firetrack/backend/internal/worker"

	"github.com/hibiken/asynq"
)

type purgeActivationCodesProcessor struct {
	workers *worker.Workers
}

func NewPurgeActivationCodesProcessor(workers *worker.Workers) *purgeActivationCodesProcessor {
	return &purgeActivationCodesProcessor{
		workers: workers,
	}
}

func (p *purgeActivationCodesProcessor) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	if _, err := p.workers.Purger.PurgeExpiredActivationCodes(ctx); err != nil {
		return fmt.Errorf("purge expired activation codes failed: %w", err)
	}

	return nil
}
