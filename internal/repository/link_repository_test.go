package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gomodule/redigo/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shortlink-geo/internal/config"
	"shortlink-geo/internal/model"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := NewDB(config.DBConfig{
		Driver: "sqlite",
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", name),
	}, logger.Default.LogMode(logger.Silent))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestUnsupportedDriver(t *testing.T) {
	_, err := NewDB(config.DBConfig{Driver: "oracle"}, logger.Default.LogMode(logger.Silent))
	assert.ErrorContains(t, err, "unsupported db driver")
}

func TestCreateDuplicateShortCode(t *testing.T) {
	repo := NewLinkRepository(setupTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &model.Link{ShortCode: "dup00001", OriginalURL: "https://a.example"}))
	err := repo.Create(ctx, &model.Link{ShortCode: "dup00001", OriginalURL: "https://b.example"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	_, err = repo.FindByShortCode(ctx, "nope0000")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestClicksAppendOnlyOrder(t *testing.T) {
	repo := NewLinkRepository(setupTestDB(t))
	ctx := context.Background()

	link := &model.Link{ShortCode: "order001", OriginalURL: "https://example.com"}
	require.NoError(t, repo.Create(ctx, link))

	base := time.Now()
	for i := 0; i < 5; i++ {
		click := &model.Click{
			LinkID:    link.ID,
			IPAddress: fmt.Sprintf("10.0.0.%d", i),
			Location:  model.UnknownLocationValue(),
			Geo:       &model.GeoRecord{Country: "US", LL: [2]float64{1, 2}},
			Timestamp: base.Add(time.Duration(i) * time.Second),
		}
		if i == 4 {
			click.ExactLocation = &model.ExactLocation{Latitude: 1.5, Longitude: -2.5, DisplayName: "somewhere"}
		}
		require.NoError(t, repo.AppendClick(ctx, click))
	}

	clicks, err := repo.ListClicks(ctx, link.ID)
	require.NoError(t, err)
	require.Len(t, clicks, 5)
	for i, c := range clicks {
		assert.Equal(t, fmt.Sprintf("10.0.0.%d", i), c.IPAddress)
	}
	assert.Nil(t, clicks[0].ExactLocation)
	require.NotNil(t, clicks[4].ExactLocation)
	assert.Equal(t, "somewhere", clicks[4].ExactLocation.DisplayName)
	assert.Equal(t, [2]float64{1, 2}, clicks[0].Geo.LL)

	total, err := repo.CountClicks(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	empty, err := repo.ListClicks(ctx, link.ID+100)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestSaveDailyStatUpserts(t *testing.T) {
	repo := NewLinkRepository(setupTestDB(t))
	ctx := context.Background()

	link := &model.Link{ShortCode: "stats001", OriginalURL: "https://example.com"}
	require.NoError(t, repo.Create(ctx, link))

	require.NoError(t, repo.SaveDailyStat(ctx, &model.DailyStat{LinkID: link.ID, Date: "2026-01-01", PV: 1, UV: 1}))
	require.NoError(t, repo.SaveDailyStat(ctx, &model.DailyStat{LinkID: link.ID, Date: "2026-01-01", PV: 5, UV: 3}))
	require.NoError(t, repo.SaveDailyStat(ctx, &model.DailyStat{LinkID: link.ID, Date: "2026-01-02", PV: 2, UV: 2}))

	stats, err := repo.ListDailyStats(ctx, link.ID)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, "2026-01-02", stats[0].Date)
	assert.Equal(t, int64(5), stats[1].PV)
	assert.Equal(t, int64(3), stats[1].UV)
}

func TestLinkCache(t *testing.T) {
	mr := miniredis.RunT(t)
	pool := &redis.Pool{Dial: func() (redis.Conn, error) { return redis.Dial("tcp", mr.Addr()) }}
	defer pool.Close()

	cache := NewLinkCache(pool, 120)
	ctx := context.Background()

	_, hit := cache.Get(ctx, "abc12345")
	assert.False(t, hit)

	cache.SetMissing(ctx, "abc12345")
	link, hit := cache.Get(ctx, "abc12345")
	assert.True(t, hit)
	assert.Nil(t, link)
	assert.Equal(t, 300*time.Second, mr.TTL("redirect:shortcode:abc12345"))

	stored := &model.Link{ShortCode: "abc12345", OriginalURL: "https://example.com", OgTitle: "t"}
	stored.ID = 42
	cache.Set(ctx, stored)
	link, hit = cache.Get(ctx, "abc12345")
	require.True(t, hit)
	require.NotNil(t, link)
	assert.Equal(t, uint(42), link.ID)
	assert.Equal(t, "t", link.OgTitle)
	assert.Equal(t, 120*time.Second, mr.TTL("redirect:shortcode:abc12345"))

	cache.Delete(ctx, "abc12345")
	_, hit = cache.Get(ctx, "abc12345")
	assert.False(t, hit)

	// 未启用 Redis
	var disabled *LinkCache
	disabled.Set(ctx, stored)
	_, hit = disabled.Get(ctx, "abc12345")
	assert.False(t, hit)
	_, hit = NewLinkCache(nil, 0).Get(ctx, "abc12345")
	assert.False(t, hit)
}
