package service

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// StartPollLockWorker starts a background worker that periodically locks
// open polls whose deadline has elapsed. It runs one sweep immediately
// so polls that expired while the process was down are picked up on
// startup. Returns a stop function.
func StartPollLockWorker(ctx context.Context, polls PollService, interval time.Duration) func() {
	stopChan := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		log.WithField("interval", interval).Info("Poll lock worker started")

		sweep := func() {
			sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()

			if err := polls.LockExpiredPolls(sweepCtx); err != nil {
				log.WithError(err).Error("Poll lock sweep failed")
			}
		}

		sweep()

		for {
			select {
			case <-ticker.C:
				sweep()
			case <-stopChan:
				log.Info("Poll lock worker stopped")
				return
			case <-ctx.Done():
				log.Info("Poll lock worker stopped due to context cancellation")
				return
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}
