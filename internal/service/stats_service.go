package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/plotmarket/plot-service/internal/persistence"
	"github.com/plotmarket/plot-service/internal/repository"
)

const (
	viewCounterPrefix = "listing:views:"
	viewDirtySet      = "listing:views:dirty"
)

// StatsService accumulates listing view counts in Redis and periodically
// folds them into Postgres. When Redis is unreachable it degrades to direct
// row increments so counts are never lost, only slower.
type StatsService struct {
	redis    *persistence.Redis
	listings repository.ListingRepository
	logger   *zap.Logger
}

// NewStatsService builds the service. redis may be nil.
func NewStatsService(redis *persistence.Redis, listings repository.ListingRepository, logger *zap.Logger) *StatsService {
	return &StatsService{redis: redis, listings: listings, logger: logger}
}

// RecordView counts one view of the listing.
func (s *StatsService) RecordView(ctx context.Context, listingID string) {
	if s.redis != nil && s.redis.Client != nil {
		pipe := s.redis.Client.Pipeline()
		pipe.Incr(ctx, viewCounterPrefix+listingID)
		pipe.SAdd(ctx, viewDirtySet, listingID)
		if _, err := pipe.Exec(ctx); err == nil {
			return
		}
		s.logger.Warn("redis view counter unavailable, falling back to direct write", zap.String("listing_id", listingID))
	}

	if err := s.listings.IncrementViews(ctx, listingID, 1, time.Now()); err != nil {
		s.logger.Warn("failed to record view", zap.String("listing_id", listingID), zap.Error(err))
	}
}

// Flush drains accumulated counters into the listings table. Safe to call
// concurrently with RecordView: GETDEL makes each drained delta count once.
func (s *StatsService) Flush(ctx context.Context) error {
	if s.redis == nil || s.redis.Client == nil {
		return nil
	}

	ids, err := s.redis.Client.SMembers(ctx, viewDirtySet).Result()
	if err != nil {
		return err
	}

	now := time.Now()
	for _, id := range ids {
		val, err := s.redis.Client.GetDel(ctx, viewCounterPrefix+id).Int64()
		if err != nil || val == 0 {
			_ = s.redis.Client.SRem(ctx, viewDirtySet, id)
			continue
		}
		if err := s.listings.IncrementViews(ctx, id, val, now); err != nil {
			// put the delta back so the next flush retries it
			_ = s.redis.Client.IncrBy(ctx, viewCounterPrefix+id, val).Err()
			s.logger.Warn("failed to flush views", zap.String("listing_id", id), zap.Error(err))
			continue
		}
		_ = s.redis.Client.SRem(ctx, viewDirtySet, id)
	}
	return nil
}
