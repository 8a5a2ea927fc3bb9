package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"shortlink-geo/internal/apperrors"
	"shortlink-geo/internal/model"
	"shortlink-geo/internal/service"
	"shortlink-geo/internal/web"
)

type AnalyticsHandler struct {
	links *service.LinkService
	stats *service.StatsService
}

func NewAnalyticsHandler(links *service.LinkService, stats *service.StatsService) *AnalyticsHandler {
	return &AnalyticsHandler{links: links, stats: stats}
}

// Get 访问统计 GET /api/analytics/:shortCode
func (h *AnalyticsHandler) Get(c *gin.Context) {
	resp, err := h.links.GetAnalytics(c.Request.Context(), c.Param("shortCode"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Clicks 分页查询访问记录 GET /api/analytics/:shortCode/clicks?page=1&size=10
func (h *AnalyticsHandler) Clicks(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		_ = c.Error(apperrors.InvalidRequestError("error.invalid_page"))
		return
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size < 1 || size > 100 {
		_ = c.Error(apperrors.InvalidRequestError("error.invalid_size"))
		return
	}

	pageResp, err := h.links.ListClicks(c.Request.Context(), c.Param("shortCode"), page, size)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, pageResp)
}

// DailyResponse 每日统计及累计 PV/UV
type DailyResponse struct {
	ShortCode   string            `json:"shortCode"`
	TotalClicks int64             `json:"totalClicks"`
	Totals      service.Totals    `json:"totals"`
	Days        []model.DailyStat `json:"days"`
}

// Daily 每日 PV/UV GET /api/analytics/:shortCode/daily
func (h *AnalyticsHandler) Daily(c *gin.Context) {
	ctx := c.Request.Context()
	link, err := h.links.FindLink(ctx, c.Param("shortCode"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	days, err := h.stats.DailyStats(ctx, link.ID)
	if err != nil {
		_ = c.Error(apperrors.SystemError(apperrors.MsgSystem, err))
		return
	}

	total, err := h.stats.ClickCount(ctx, link.ID)
	if err != nil {
		_ = c.Error(apperrors.SystemError(apperrors.MsgSystem, err))
		return
	}

	c.JSON(http.StatusOK, DailyResponse{
		ShortCode:   link.ShortCode,
		TotalClicks: total,
		Totals:      h.stats.Totals(ctx, link.ShortCode),
		Days:        days,
	})
}

// Page 统计页面 GET /analytics/:shortCode
func (h *AnalyticsHandler) Page(c *gin.Context) {
	if _, err := h.links.FindLink(c.Request.Context(), c.Param("shortCode")); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == http.StatusNotFound {
			c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte("<h1>Link not found</h1>"))
			return
		}
		_ = c.Error(err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.AnalyticsPage)
}

// Index 首页 GET /
func Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", web.IndexPage)
}
