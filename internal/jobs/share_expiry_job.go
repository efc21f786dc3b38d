package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// ShareExpiryJobName identifies the share cleanup job in the scheduler.
const ShareExpiryJobName = "share_expiry"

// ShareCleanupService deactivates share links that have passed their
// expiry time.
type ShareCleanupService interface {
	CleanupExpired(ctx context.Context) (int64, error)
}

// ShareExpiryJob periodically sweeps expired share links so stale
// tokens stop resolving even if nobody requests them.
type ShareExpiryJob struct {
	shares  ShareCleanupService
	logger  *zap.Logger
	timeout time.Duration
}

func NewShareExpiryJob(shares ShareCleanupService, logger *zap.Logger, timeout time.Duration) *ShareExpiryJob {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ShareExpiryJob{
		shares:  shares,
		logger:  logger,
		timeout: timeout,
	}
}

// Run performs one cleanup sweep.
func (j *ShareExpiryJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	count, err := j.shares.CleanupExpired(ctx)
	if err != nil {
		j.logger.Error("share expiry sweep failed", zap.Error(err))
		return
	}
	if count > 0 {
		j.logger.Info("share expiry sweep finished", zap.Int64("deactivated", count))
	}
}
