package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/plotmarket/plot-service/internal/config"
	"github.com/plotmarket/plot-service/internal/domain"
	"github.com/plotmarket/plot-service/internal/persistence"
)

func seedListing(t *testing.T, listings *fakeListingRepo) string {
	t.Helper()
	listing := &domain.Listing{SellerID: "user-1", Status: domain.ListingStatusPublished}
	require.NoError(t, listings.Create(context.Background(), listing))
	return listing.ID
}

func TestRecordViewWithoutRedisWritesDirectly(t *testing.T) {
	listings := newFakeListingRepo()
	id := seedListing(t, listings)

	svc := NewStatsService(nil, listings, zap.NewNop())
	svc.RecordView(context.Background(), id)
	svc.RecordView(context.Background(), id)

	stored, err := listings.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Stats.Views)
	assert.NotNil(t, stored.Stats.LastViewed)
}

func TestRecordViewFallsBackWhenRedisUnreachable(t *testing.T) {
	listings := newFakeListingRepo()
	id := seedListing(t, listings)

	// port 1 is never listening, so the pipeline fails and the service
	// degrades to a direct row increment
	redis := persistence.NewRedis(config.RedisConfig{Addr: "127.0.0.1:1"}, zap.NewNop())
	defer redis.Close()

	svc := NewStatsService(redis, listings, zap.NewNop())
	svc.RecordView(context.Background(), id)

	stored, err := listings.GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stored.Stats.Views)
}

func TestFlushWithoutRedisIsNoop(t *testing.T) {
	listings := newFakeListingRepo()
	svc := NewStatsService(nil, listings, zap.NewNop())

	assert.NoError(t, svc.Flush(context.Background()))
}

func TestFlushReportsRedisFailure(t *testing.T) {
	listings := newFakeListingRepo()
	redis := persistence.NewRedis(config.RedisConfig{Addr: "127.0.0.1:1"}, zap.NewNop())
	defer redis.Close()

	svc := NewStatsService(redis, listings, zap.NewNop())
	assert.Error(t, svc.Flush(context.Background()))
}
