package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortlink-geo/internal/repository"
)

func TestStatsRecordAndSync(t *testing.T) {
	_, pool := setupTestRedis(t)
	repo := repository.NewLinkRepository(setupTestDB(t))
	link := newLink(t, repo)
	idle := newLink(t, repo)

	stats := NewStatsService(pool, repo)
	day := time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)
	stats.now = func() time.Time { return day }
	ctx := context.Background()

	stats.RecordVisit(ctx, link.ShortCode, "1.1.1.1")
	stats.RecordVisit(ctx, link.ShortCode, "1.1.1.1")
	stats.RecordVisit(ctx, link.ShortCode, "2.2.2.2")

	totals := stats.Totals(ctx, link.ShortCode)
	assert.Equal(t, int64(3), totals.PV)
	assert.Equal(t, int64(2), totals.UV)
	assert.Equal(t, Totals{}, stats.Totals(ctx, idle.ShortCode))

	require.NoError(t, stats.SyncDailyStats(ctx))

	daily, err := stats.DailyStats(ctx, link.ID)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, "2026-03-14", daily[0].Date)
	assert.Equal(t, int64(3), daily[0].PV)
	assert.Equal(t, int64(2), daily[0].UV)

	// 再次同步只更新不新增
	stats.RecordVisit(ctx, link.ShortCode, "3.3.3.3")
	require.NoError(t, stats.SyncDailyStats(ctx))
	daily, err = stats.DailyStats(ctx, link.ID)
	require.NoError(t, err)
	require.Len(t, daily, 1)
	assert.Equal(t, int64(4), daily[0].PV)
	assert.Equal(t, int64(3), daily[0].UV)

	idleDaily, err := stats.DailyStats(ctx, idle.ID)
	require.NoError(t, err)
	assert.Empty(t, idleDaily)
}

func TestStatsWithoutRedis(t *testing.T) {
	repo := repository.NewLinkRepository(setupTestDB(t))
	stats := NewStatsService(nil, repo)
	ctx := context.Background()

	stats.RecordVisit(ctx, "abc", "1.1.1.1")
	assert.Equal(t, Totals{}, stats.Totals(ctx, "abc"))
	assert.NoError(t, stats.SyncDailyStats(ctx))

	link := newLink(t, repo)
	total, err := stats.ClickCount(ctx, link.ID)
	require.NoError(t, err)
	assert.Zero(t, total)

	var nilStats *StatsService
	nilStats.RecordVisit(ctx, "abc", "1.1.1.1")
}
