package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firetrack/backend/internal/cache"
	"github.com/firetrack/backend/internal/service"
	"github.com/firetrack/backend/pkg/logger"

	"go.uber.org/zap"
)

const purgeLockKey = "lock:activation_code:purge"

type purger struct {
	locker          cache.Locker
	activationCodes service.ActivationCodes
	lockTTL         time.Duration
}

func newPurger(locker cache.Locker, activationCodes service.ActivationCodes, lockTTL time.Duration) *purger {
	return &purger{
		locker:          locker,
		activationCodes: activationCodes,
		lockTTL:         lockTTL,
	}
}

// PurgeExpiredActivationCodes runs the sweep unless another instance is running it.
func (p *purger) PurgeExpiredActivationCodes(ctx context.Context) (int64, error) {
	token, err := p.locker.TryLock(ctx, purgeLockKey, p.lockTTL)
	if errors.Is(err, cache.ErrLockHeld) {
		logger.Debug("activation code purge already running elsewhere")
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("acquire purge lock failed: %w", err)
	}
	defer func() {
		if err := p.locker.Unlock(context.WithoutCancel(ctx), purgeLockKey, token); err != nil {
			logger.Warn("release purge lock failed", zap.Error(err))
		}
	}()

	n, err := p.activationCodes.PurgeExpired(ctx)
	if err != nil {
		return 0, fmt.Errorf("purge expired activation codes failed: %w", err)
	}

	if n > 0 {
		logger.Info("expired activation codes purged", zap.Int64("count", n))
	}

	return n, nil
}
