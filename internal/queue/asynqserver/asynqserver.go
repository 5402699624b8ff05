package asynqserver

import (
	"fmt"
	"time"

	"github.com/firetrack/backend/internal/cache"
	"github.com/firetrack/backend/internal/config"
	"github.com/firetrack/backend/internal/queue/processor"
	"github.com/firetrack/backend/internal/queue/task"
	"github.com/firetrack/backend/internal/worker"

	"github.com/hibiken/asynq"
)

func New(cfg config.Cache, concurrency int, workers *worker.Workers) (*asynq.Server, *asynq.ServeMux) {
	mux, queues := getQueues(workers)
	srv := asynq.NewServer(
		RedisOptions(cfg),
		asynq.Config{
			Concurrency: concurrency,
			LogLevel:    asynq.ErrorLevel,
			Queues:      queues,
		},
	)

	return srv, mux
}

// NewScheduler enqueues the expired activation code sweep on the configured cron spec.
func NewScheduler(cfg config.Cache, activation config.ActivationConfig) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(RedisOptions(cfg), &asynq.SchedulerOpts{
		Location: time.UTC,
		LogLevel: asynq.ErrorLevel,
	})

	if _, err := scheduler.Register(activation.PurgeCron, task.NewPurgeActivationCodesTask(activation.PurgeLockTTL)); err != nil {
		return nil, fmt.Errorf("register purge activation codes task failed: %w", err)
	}

	return scheduler, nil
}

func RedisOptions(cfg config.Cache) asynq.RedisConnOpt {
	var opts asynq.RedisConnOpt
	if cfg.Type == cache.RedisTypeCluster {
		opts = asynq.RedisClusterClientOpt{
			Addrs:    cfg.RedisCluster.Addresses,
			Password: cfg.RedisCluster.Password,
		}
	} else {
		opts = asynq.RedisClientOpt{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			PoolSize: cfg.Redis.PoolSize,
		}
	}
	return opts
}

func getQueues(workers *worker.Workers) (*asynq.ServeMux, map[string]int) {
	mux := asynq.NewServeMux()
	mux.Handle(task.SendActivationEmailTaskName, processor.NewSendActivationEmailProcessor(workers))
	mux.Handle(task.PurgeActivationCodesTaskName, processor.NewPurgeActivationCodesProcessor(workers))
	queues := map[string]int{
		task.SendActivationEmailQueueName: 3,
		task.MaintenanceQueueName:         1,
	}
	return mux, queues
}
