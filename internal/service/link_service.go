package service

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shortlink-geo/internal/apperrors"
	"shortlink-geo/internal/dto"
	"shortlink-geo/internal/model"
	"shortlink-geo/internal/preview"
	"shortlink-geo/internal/repository"
	"shortlink-geo/pkg/logging"
	"shortlink-geo/pkg/utils"
	"shortlink-geo/response"
)

// ErrShortCodeExhausted 多次生成的短码均已被占用
var ErrShortCodeExhausted = apperrors.WithCode(http.StatusInternalServerError, apperrors.MsgShortCodeExhausted)

// PreviewFetcher 抓取目标页的社交预览信息
type PreviewFetcher interface {
	Fetch(ctx context.Context, targetURL string) preview.Metadata
}

// LinkOptions 短码生成参数
type LinkOptions struct {
	CodeLength  int
	MaxAttempts int
}

type LinkService struct {
	repo     *repository.LinkRepository
	cache    *repository.LinkCache
	previews PreviewFetcher
	opts     LinkOptions
	generate func(n int) string
}

// NewLinkService previews 为 nil 时不抓取预览
func NewLinkService(repo *repository.LinkRepository, cache *repository.LinkCache, previews PreviewFetcher, opts LinkOptions) *LinkService {
	if opts.CodeLength <= 0 {
		opts.CodeLength = utils.DefaultShortCodeLength
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	return &LinkService{
		repo:     repo,
		cache:    cache,
		previews: previews,
		opts:     opts,
		generate: utils.GenerateShortCode,
	}
}

// CreateLink 创建短链，短码冲突时重新生成，最多尝试 MaxAttempts 次
func (s *LinkService) CreateLink(ctx context.Context, req dto.CreateLinkRequest) (*model.Link, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var meta preview.Metadata
	if s.previews != nil {
		meta = s.previews.Fetch(ctx, req.OriginalURL)
	}

	for attempt := 1; attempt <= s.opts.MaxAttempts; attempt++ {
		link := &model.Link{
			ShortCode:     s.generate(s.opts.CodeLength),
			OriginalURL:   req.OriginalURL,
			OgTitle:       meta.Title,
			OgDescription: meta.Description,
			OgImage:       meta.Image,
		}

		err := s.repo.Create(ctx, link)
		if err == nil {
			// 清除该短码可能存在的空值缓存
			s.cache.Delete(ctx, link.ShortCode)
			logging.Logger.Info("Short link created",
				zap.String("short_code", link.ShortCode),
				zap.Int("attempt", attempt),
			)
			return link, nil
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			logging.Logger.Error("数据库操作失败", zap.Error(err))
			return nil, apperrors.SystemError(apperrors.MsgSystem, err)
		}
		logging.Logger.Warn("Short code collision, regenerating",
			zap.String("short_code", link.ShortCode),
			zap.Int("attempt", attempt),
		)
	}

	return nil, ErrShortCodeExhausted
}

// FindLink 先查缓存再查数据库，不存在时缓存空值
func (s *LinkService) FindLink(ctx context.Context, shortCode string) (*model.Link, error) {
	if err := utils.ValidateShortCode(shortCode); err != nil {
		return nil, apperrors.LinkNotFound()
	}

	if link, hit := s.cache.Get(ctx, shortCode); hit {
		if link == nil {
			return nil, apperrors.LinkNotFound()
		}
		return link, nil
	}

	link, err := s.repo.FindByShortCode(ctx, shortCode)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.cache.SetMissing(ctx, shortCode)
			return nil, apperrors.LinkNotFound()
		}
		logging.Logger.Error("查询短链失败", zap.String("short_code", shortCode), zap.Error(err))
		return nil, apperrors.SystemError(apperrors.MsgSystem, err)
	}

	s.cache.Set(ctx, link)
	return link, nil
}

// GetAnalytics 返回短链信息及全部访问记录
func (s *LinkService) GetAnalytics(ctx context.Context, shortCode string) (*dto.AnalyticsResponse, error) {
	link, err := s.FindLink(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	clicks, err := s.repo.ListClicks(ctx, link.ID)
	if err != nil {
		logging.Logger.Error("查询访问记录失败", zap.String("short_code", shortCode), zap.Error(err))
		return nil, apperrors.SystemError(apperrors.MsgSystem, err)
	}
	return dto.NewAnalyticsResponse(link, clicks), nil
}

// ListClicks 分页查询访问记录
func (s *LinkService) ListClicks(ctx context.Context, shortCode string, page, size int) (*response.PageResponse[model.Click], error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10
	}

	link, err := s.FindLink(ctx, shortCode)
	if err != nil {
		return nil, err
	}

	clicks, total, err := s.repo.PageClicks(ctx, link.ID, page, size)
	if err != nil {
		logging.Logger.Error("分页查询访问记录失败", zap.String("short_code", shortCode), zap.Error(err))
		return nil, apperrors.SystemError(apperrors.MsgSystem, err)
	}
	return response.NewPage(clicks, page, size, total), nil
}
