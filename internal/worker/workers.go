package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/plotmarket/plot-service/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// StartStatsFlusher periodically folds Redis view counters into Postgres
// until ctx is cancelled. A final flush runs on shutdown.
func StartStatsFlusher(ctx context.Context, stats *service.StatsService, interval time.Duration, logger *zap.Logger) {
	if stats == nil {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := stats.Flush(flushCtx); err != nil {
					logger.Warn("final stats flush failed", zap.Error(err))
				}
				cancel()
				return
			case <-ticker.C:
				if err := stats.Flush(ctx); err != nil {
					logger.Warn("stats flush failed", zap.Error(err))
				}
			}
		}
	}()
}
