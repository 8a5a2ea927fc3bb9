package dto

import (
	"strings"
	"time"

	"shortlink-geo/internal/apperrors"
	"shortlink-geo/internal/model"
)

// CreateLinkRequest 创建短链请求，originalUrl 只要求非空
type CreateLinkRequest struct {
	OriginalURL string `json:"originalUrl" binding:"required" msg:"error.original_url_required"`
}

// Validate 去除首尾空白后再次校验
func (r *CreateLinkRequest) Validate() error {
	r.OriginalURL = strings.TrimSpace(r.OriginalURL)
	if r.OriginalURL == "" {
		return apperrors.InvalidRequestError(apperrors.MsgOriginalURLRequired)
	}
	return nil
}

// CreateLinkResponse 创建短链响应
type CreateLinkResponse struct {
	Message       string `json:"message"`
	CustomerLink  string `json:"customerLink"`
	AnalyticsLink string `json:"analyticsLink"`
	ShortCode     string `json:"shortCode"`
}

// LocationRequest 浏览器上报坐标，0 为合法值
type LocationRequest struct {
	Latitude  *float64 `json:"latitude" binding:"required,gte=-90,lte=90" msg:"error.coordinates_required" invalid_msg:"error.coordinates_out_of_range"`
	Longitude *float64 `json:"longitude" binding:"required,gte=-180,lte=180" msg:"error.coordinates_required" invalid_msg:"error.coordinates_out_of_range"`
}

// AnalyticsResponse 单个短链的访问统计
type AnalyticsResponse struct {
	OriginalURL   string        `json:"originalUrl"`
	ShortCode     string        `json:"shortCode"`
	CreatedAt     time.Time     `json:"createdAt"`
	OgTitle       string        `json:"ogTitle,omitempty"`
	OgDescription string        `json:"ogDescription,omitempty"`
	OgImage       string        `json:"ogImage,omitempty"`
	TotalClicks   int           `json:"totalClicks"`
	Clicks        []model.Click `json:"clicks"`
}

// NewAnalyticsResponse clicks 为 nil 时输出空数组
func NewAnalyticsResponse(link *model.Link, clicks []model.Click) *AnalyticsResponse {
	if clicks == nil {
		clicks = []model.Click{}
	}
	return &AnalyticsResponse{
		OriginalURL:   link.OriginalURL,
		ShortCode:     link.ShortCode,
		CreatedAt:     link.CreatedAt,
		OgTitle:       link.OgTitle,
		OgDescription: link.OgDescription,
		OgImage:       link.OgImage,
		TotalClicks:   len(clicks),
		Clicks:        clicks,
	}
}
