package task

import (
	"time"

	"github.com/hibiken/asynq"
)

const (
	PurgeActivationCodesTaskName = "purgeActivationCodesTask"
	MaintenanceQueueName         = "maintenanceQueue"
)

// NewPurgeActivationCodesTask builds the periodic sweep of expired activation codes.
// Only one such task can be pending within uniqueFor.
func NewPurgeActivationCodesTask(uniqueFor time.Duration) *asynq.Task {
	return asynq.NewTask(
		PurgeActivationCodesTaskName,
		nil,
		asynq.MaxRetry(1),
		asynq.Queue(MaintenanceQueueName),
		asynq.Unique(uniqueFor),
	)
}
