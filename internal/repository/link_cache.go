package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"shortlink-geo/constant"
	"shortlink-geo/internal/model"
	"shortlink-geo/pkg/logging"
)

// LinkCache 短链 Redis 缓存，pool 为 nil 时所有操作为空操作
type LinkCache struct {
	pool *redis.Pool
	ttl  int
}

// cachedLink 缓存结构，需要保留主键用于写入访问记录
type cachedLink struct {
	ID            uint      `json:"id"`
	ShortCode     string    `json:"shortCode"`
	OriginalURL   string    `json:"originalUrl"`
	OgTitle       string    `json:"ogTitle,omitempty"`
	OgDescription string    `json:"ogDescription,omitempty"`
	OgImage       string    `json:"ogImage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

func NewLinkCache(pool *redis.Pool, ttlSeconds int) *LinkCache {
	if ttlSeconds <= 0 {
		ttlSeconds = 3600
	}
	return &LinkCache{pool: pool, ttl: ttlSeconds}
}

// Get 查询缓存。hit 为 true 表示缓存命中，此时 link 为 nil 代表短链不存在
func (c *LinkCache) Get(ctx context.Context, shortCode string) (link *model.Link, hit bool) {
	if c == nil || c.pool == nil {
		return nil, false
	}
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		logging.Logger.Warn("Failed to get redis connection", zap.Error(err))
		return nil, false
	}
	defer CloseConn(conn)

	cacheKey := constant.GetShortCodeKey(shortCode)
	cachedValue, err := redis.Bytes(conn.Do("GET", cacheKey))
	if err != nil {
		if !errors.Is(err, redis.ErrNil) {
			logging.Logger.Warn("Error getting from Redis",
				zap.String("cache_key", cacheKey),
				zap.Error(err))
		}
		return nil, false
	}

	// 空值代表数据库中不存在
	if len(cachedValue) == 0 {
		return nil, true
	}

	var cl cachedLink
	if err := json.Unmarshal(cachedValue, &cl); err != nil {
		logging.Logger.Warn("Failed to unmarshal cached value",
			zap.String("cache_key", cacheKey),
			zap.Error(err))
		return nil, false
	}

	link = &model.Link{
		ShortCode:     cl.ShortCode,
		OriginalURL:   cl.OriginalURL,
		OgTitle:       cl.OgTitle,
		OgDescription: cl.OgDescription,
		OgImage:       cl.OgImage,
	}
	link.ID = cl.ID
	link.CreatedAt = cl.CreatedAt
	return link, true
}

// Set 缓存短链
func (c *LinkCache) Set(ctx context.Context, link *model.Link) {
	if c == nil || c.pool == nil {
		return
	}
	value, err := json.Marshal(cachedLink{
		ID:            link.ID,
		ShortCode:     link.ShortCode,
		OriginalURL:   link.OriginalURL,
		OgTitle:       link.OgTitle,
		OgDescription: link.OgDescription,
		OgImage:       link.OgImage,
		CreatedAt:     link.CreatedAt,
	})
	if err != nil {
		logging.Logger.Warn("Failed to marshal link", zap.String("short_code", link.ShortCode), zap.Error(err))
		return
	}
	c.set(ctx, link.ShortCode, value, c.ttl)
}

// SetMissing 缓存空值
func (c *LinkCache) SetMissing(ctx context.Context, shortCode string) {
	c.set(ctx, shortCode, []byte{}, constant.MissingLinkTTL)
}

// Delete 删除缓存，创建短链后清除可能存在的空值
func (c *LinkCache) Delete(ctx context.Context, shortCode string) {
	if c == nil || c.pool == nil {
		return
	}
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		logging.Logger.Warn("Failed to get redis connection", zap.Error(err))
		return
	}
	defer CloseConn(conn)

	cacheKey := constant.GetShortCodeKey(shortCode)
	if _, err := conn.Do("DEL", cacheKey); err != nil {
		logging.Logger.Warn("Redis 删除缓存失败",
			zap.String("cache_key", cacheKey),
			zap.Error(err))
	}
}

func (c *LinkCache) set(ctx context.Context, shortCode string, value []byte, ttl int) {
	if c == nil || c.pool == nil {
		return
	}
	conn, err := c.pool.GetContext(ctx)
	if err != nil {
		logging.Logger.Warn("Failed to get redis connection", zap.Error(err))
		return
	}
	defer CloseConn(conn)

	cacheKey := constant.GetShortCodeKey(shortCode)
	if _, err := conn.Do("SET", cacheKey, value, "EX", ttl); err != nil {
		logging.Logger.Error("设置缓存失败",
			zap.String("cache_key", cacheKey),
			zap.Error(err),
		)
	}
}
