package service

import (
	"context"
	"errors"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"shortlink-geo/constant"
	"shortlink-geo/internal/model"
	"shortlink-geo/internal/repository"
	"shortlink-geo/pkg/logging"
)

// StatsService Redis PV/UV 计数，定时落库到 daily_stats
type StatsService struct {
	pool *redis.Pool
	repo *repository.LinkRepository
	now  func() time.Time
}

func NewStatsService(pool *redis.Pool, repo *repository.LinkRepository) *StatsService {
	return &StatsService{pool: pool, repo: repo, now: time.Now}
}

// Totals 累计 PV/UV
type Totals struct {
	PV int64 `json:"totalPv"`
	UV int64 `json:"totalUv"`
}

// RecordVisit 记录一次访问，Redis 不可用时忽略
func (s *StatsService) RecordVisit(ctx context.Context, shortCode, ip string) {
	if s == nil || s.pool == nil {
		return
	}
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		logging.Logger.Warn("Failed to get redis connection", zap.Error(err))
		return
	}
	defer repository.CloseConn(conn)

	date := constant.GetDateKey(s.now())
	RecordDailyPV(conn, shortCode, date)
	RecordDailyUV(conn, shortCode, ip, date)
	RecordTotalPV(conn, shortCode)
	RecordTotalUV(conn, shortCode, ip)
}

// Totals 查询累计 PV/UV，Redis 不可用时返回 0
func (s *StatsService) Totals(ctx context.Context, shortCode string) Totals {
	var t Totals
	if s == nil || s.pool == nil {
		return t
	}
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		logging.Logger.Warn("Failed to get redis connection", zap.Error(err))
		return t
	}
	defer repository.CloseConn(conn)

	t.PV, _ = GetTotalPv(conn, shortCode)
	t.UV, _ = GetTotalUv(conn, shortCode)
	return t
}

// DailyStats 已落库的每日统计
func (s *StatsService) DailyStats(ctx context.Context, linkID uint) ([]model.DailyStat, error) {
	return s.repo.ListDailyStats(ctx, linkID)
}

// ClickCount 访问记录总数，直接 COUNT 不加载明细
func (s *StatsService) ClickCount(ctx context.Context, linkID uint) (int64, error) {
	return s.repo.CountClicks(ctx, linkID)
}

// SyncDailyStats 将今天和昨天的 Redis 计数写入数据库，昨天的数据用于补齐跨零点的最后一段
func (s *StatsService) SyncDailyStats(ctx context.Context) error {
	if s.pool == nil {
		return nil
	}
	logging.Logger.Info("SyncDailyStats start")

	links, err := s.repo.ListLinks(ctx)
	if err != nil {
		logging.Logger.Error("获取短链列表失败", zap.Error(err))
		return err
	}

	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer repository.CloseConn(conn)

	now := s.now()
	days := []time.Time{now.AddDate(0, 0, -1), now}
	for _, link := range links {
		for _, day := range days {
			if err := ctx.Err(); err != nil {
				return err
			}
			s.syncLinkDay(ctx, conn, link, day)
		}
	}

	logging.Logger.Info("SyncDailyStats end", zap.Int("links", len(links)))
	return nil
}

func (s *StatsService) syncLinkDay(ctx context.Context, conn redis.Conn, link model.Link, day time.Time) {
	dateKey := constant.GetDateKey(day)
	dailyPv, _ := GetDailyPv(conn, link.ShortCode, dateKey)
	dailyUv, _ := GetDailyUv(conn, link.ShortCode, dateKey)
	if dailyPv == 0 && dailyUv == 0 {
		return
	}

	stat := &model.DailyStat{
		LinkID: link.ID,
		Date:   constant.GetStatDate(day),
		PV:     dailyPv,
		UV:     dailyUv,
	}
	if err := s.repo.SaveDailyStat(ctx, stat); err != nil {
		logging.Logger.Error("Failed to insert or update daily stat",
			zap.Uint("link_id", link.ID),
			zap.String("date", stat.Date),
			zap.Int64("pv", dailyPv),
			zap.Int64("uv", dailyUv),
			zap.Error(err),
		)
	}
}

// RecordDailyPV 记录每日 PV
func RecordDailyPV(conn redis.Conn, shortCode, date string) {
	dailyPvKey := constant.GetDailyPVKey(date)

	if _, err := conn.Do("HINCRBY", dailyPvKey, shortCode, 1); err != nil {
		logging.Logger.Error("Failed to record daily PV",
			zap.String("key", dailyPvKey),
			zap.String("short_code", shortCode),
			zap.Error(err))
	}

	if _, err := conn.Do("EXPIRE", dailyPvKey, constant.DailyKeyTTL); err != nil {
		logging.Logger.Error("Failed to record daily PV Expire",
			zap.String("key", dailyPvKey),
			zap.String("short_code", shortCode),
			zap.Error(err))
	}
}

// RecordDailyUV 记录每日 UV
func RecordDailyUV(conn redis.Conn, shortCode, ip, date string) {
	dailyUvKey := constant.GetDailyUVKey(shortCode, date)

	if _, err := conn.Do("PFADD", dailyUvKey, ip); err != nil {
		logging.Logger.Error("Failed to record daily UV",
			zap.String("key", dailyUvKey),
			zap.String("ip", ip),
			zap.Error(err))
	}

	if _, err := conn.Do("EXPIRE", dailyUvKey, constant.DailyKeyTTL); err != nil {
		logging.Logger.Error("Failed to record daily UV Expire",
			zap.String("key", dailyUvKey),
			zap.String("short_code", shortCode),
			zap.Error(err))
	}
}

// RecordTotalPV 记录总 PV
func RecordTotalPV(conn redis.Conn, shortCode string) {
	totalPvKey := constant.GetTotalPVKey(shortCode)
	if _, err := conn.Do("INCR", totalPvKey); err != nil {
		logging.Logger.Error("Failed to record total PV",
			zap.String("key", totalPvKey),
			zap.String("short_code", shortCode),
			zap.Error(err))
	}
}

// RecordTotalUV 记录总UV
func RecordTotalUV(conn redis.Conn, shortCode, ip string) {
	totalUvKey := constant.GetTotalUVKey(shortCode)
	if _, err := conn.Do("PFADD", totalUvKey, ip); err != nil {
		logging.Logger.Error("Failed to record total UV",
			zap.String("key", totalUvKey),
			zap.String("ip", ip),
			zap.Error(err))
	}
}

// GetDailyPv 获取某日期的短链接访问量（PV）
func GetDailyPv(conn redis.Conn, shortCode, date string) (int64, error) {
	dailyPvKey := constant.GetDailyPVKey(date)
	return readCount(conn, "daily PV", dailyPvKey, shortCode, "HGET", dailyPvKey, shortCode)
}

// GetDailyUv 获取某日期的短链接独立访客数（UV）
func GetDailyUv(conn redis.Conn, shortCode, date string) (int64, error) {
	dailyUvKey := constant.GetDailyUVKey(shortCode, date)
	return readCount(conn, "daily UV", dailyUvKey, shortCode, "PFCOUNT", dailyUvKey)
}

// GetTotalPv 获取短链接的总访问量（PV）
func GetTotalPv(conn redis.Conn, shortCode string) (int64, error) {
	totalPvKey := constant.GetTotalPVKey(shortCode)
	return readCount(conn, "total PV", totalPvKey, shortCode, "GET", totalPvKey)
}

// GetTotalUv 获取短链接的总独立访客数（UV）
func GetTotalUv(conn redis.Conn, shortCode string) (int64, error) {
	totalUvKey := constant.GetTotalUVKey(shortCode)
	return readCount(conn, "total UV", totalUvKey, shortCode, "PFCOUNT", totalUvKey)
}

// readCount 键不存在时返回 0
func readCount(conn redis.Conn, metric, key, shortCode, cmd string, args ...interface{}) (int64, error) {
	result, err := redis.Int64(conn.Do(cmd, args...))
	if errors.Is(err, redis.ErrNil) {
		return 0, nil
	}
	if err != nil {
		logging.Logger.Error("Failed to get "+metric,
			zap.String("key", key),
			zap.String("short_code", shortCode),
			zap.Error(err))
		return 0, err
	}
	return result, nil
}
