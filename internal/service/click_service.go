package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"shortlink-geo/internal/apperrors"
	"shortlink-geo/internal/geo"
	"shortlink-geo/internal/model"
	"shortlink-geo/internal/repository"
	"shortlink-geo/pkg/logging"
	"shortlink-geo/pkg/utils"
)

// Visitor 访问者信息
type Visitor struct {
	IP        string
	UserAgent string
}

// ClickService 访问记录
type ClickService struct {
	repo     *repository.LinkRepository
	resolver geo.Resolver
	reverse  geo.ReverseGeocoder
	stats    *StatsService
}

// NewClickService reverse 为 nil 时不做逆地理编码
func NewClickService(repo *repository.LinkRepository, resolver geo.Resolver, reverse geo.ReverseGeocoder, stats *StatsService) *ClickService {
	if resolver == nil {
		resolver = geo.NopResolver{}
	}
	return &ClickService{
		repo:     repo,
		resolver: resolver,
		reverse:  reverse,
		stats:    stats,
	}
}

func (s *ClickService) newClick(link *model.Link, v Visitor) *model.Click {
	location, record := geo.Locate(s.resolver, v.IP)
	userAgent := strings.TrimSpace(v.UserAgent)
	if userAgent == "" {
		userAgent = model.UnknownLocation
	}
	return &model.Click{
		LinkID:    link.ID,
		IPAddress: utils.TruncateRunes(v.IP, model.MaxIPAddressLen),
		UserAgent: utils.TruncateRunes(userAgent, model.MaxUserAgentLen),
		Location:  location,
		Geo:       record,
		Timestamp: time.Now(),
	}
}

// RecordVisit 记录一次跳转访问并累加 PV/UV
func (s *ClickService) RecordVisit(ctx context.Context, link *model.Link, v Visitor) (*model.Click, error) {
	click := s.newClick(link, v)
	if err := s.repo.AppendClick(ctx, click); err != nil {
		logging.Logger.Error("Failed to append click",
			zap.String("short_code", link.ShortCode),
			zap.String("ip", v.IP),
			zap.Error(err))
		return nil, apperrors.SystemError(apperrors.MsgSystem, err)
	}

	s.stats.RecordVisit(ctx, link.ShortCode, v.IP)
	return click, nil
}

// RecordLocation 追加一条带精确坐标的访问记录，逆地理编码失败时只保留坐标
func (s *ClickService) RecordLocation(ctx context.Context, link *model.Link, v Visitor, lat, lon float64) (*model.Click, error) {
	click := s.newClick(link, v)
	click.ExactLocation = &model.ExactLocation{
		Latitude:  lat,
		Longitude: lon,
	}

	if s.reverse != nil {
		addr, err := s.reverse.Reverse(ctx, lat, lon)
		if err != nil {
			logging.Logger.Warn("Reverse geocoding failed",
				zap.Float64("latitude", lat),
				zap.Float64("longitude", lon),
				zap.Error(err))
		} else if addr != nil {
			click.ExactLocation.Address = addr.Address
			click.ExactLocation.DisplayName = addr.DisplayName
		}
	}

	if err := s.repo.AppendClick(ctx, click); err != nil {
		logging.Logger.Error("Failed to save location",
			zap.String("short_code", link.ShortCode),
			zap.Error(err))
		return nil, apperrors.SystemError(apperrors.MsgServer, err)
	}
	return click, nil
}
