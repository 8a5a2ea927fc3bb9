package repository

import (
	"context"

	"gorm.io/gorm"

	"shortlink-geo/internal/model"
)

// LinkRepository 短链及访问记录的持久化
type LinkRepository struct {
	db *gorm.DB
}

func NewLinkRepository(db *gorm.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// DB 底层连接，健康检查使用
func (r *LinkRepository) DB() *gorm.DB {
	return r.db
}

// Create 插入短链，short_code 冲突时返回 gorm.ErrDuplicatedKey
func (r *LinkRepository) Create(ctx context.Context, link *model.Link) error {
	return r.db.WithContext(ctx).Omit("Clicks").Create(link).Error
}

// FindByShortCode 未找到时返回 gorm.ErrRecordNotFound
func (r *LinkRepository) FindByShortCode(ctx context.Context, shortCode string) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).Where("short_code = ?", shortCode).First(&link).Error; err != nil {
		return nil, err
	}
	return &link, nil
}

// ListLinks 全部短链（定时统计使用）
func (r *LinkRepository) ListLinks(ctx context.Context) ([]model.Link, error) {
	var links []model.Link
	err := r.db.WithContext(ctx).Order("id ASC").Find(&links).Error
	return links, err
}

// AppendClick 追加一条访问记录
func (r *LinkRepository) AppendClick(ctx context.Context, click *model.Click) error {
	return r.db.WithContext(ctx).Create(click).Error
}

// CountClicks 统计短链访问次数
func (r *LinkRepository) CountClicks(ctx context.Context, linkID uint) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Click{}).Where("link_id = ?", linkID).Count(&total).Error
	return total, err
}

// ListClicks 按写入顺序返回全部访问记录
func (r *LinkRepository) ListClicks(ctx context.Context, linkID uint) ([]model.Click, error) {
	clicks := make([]model.Click, 0)
	err := r.db.WithContext(ctx).Where("link_id = ?", linkID).Order("id ASC").Find(&clicks).Error
	return clicks, err
}

// PageClicks 分页查询访问记录，最新的在前
func (r *LinkRepository) PageClicks(ctx context.Context, linkID uint, page, size int) ([]model.Click, int64, error) {
	db := r.db.WithContext(ctx).Model(&model.Click{}).Where("link_id = ?", linkID)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	clicks := make([]model.Click, 0, size)
	if total == 0 {
		return clicks, 0, nil
	}

	err := db.Order("id DESC").
		Limit(size).
		Offset((page - 1) * size).
		Find(&clicks).Error
	return clicks, total, err
}

// SaveDailyStat 按 (link_id, date) 插入或更新当日 PV/UV
func (r *LinkRepository) SaveDailyStat(ctx context.Context, stat *model.DailyStat) error {
	return r.db.WithContext(ctx).
		Where("link_id = ? AND date = ?", stat.LinkID, stat.Date).
		Assign(map[string]interface{}{"pv": stat.PV, "uv": stat.UV}).
		FirstOrCreate(stat).Error
}

// ListDailyStats 每日统计，日期倒序
func (r *LinkRepository) ListDailyStats(ctx context.Context, linkID uint) ([]model.DailyStat, error) {
	stats := make([]model.DailyStat, 0)
	err := r.db.WithContext(ctx).Where("link_id = ?", linkID).Order("date DESC").Find(&stats).Error
	return stats, err
}
