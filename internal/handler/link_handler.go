package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shortlink-geo/internal/apperrors"
	"shortlink-geo/internal/config"
	"shortlink-geo/internal/dto"
	"shortlink-geo/internal/i18n"
	"shortlink-geo/internal/service"
	"shortlink-geo/internal/web"
	"shortlink-geo/pkg/utils"
)

type LinkHandler struct {
	links     *service.LinkService
	clicks    *service.ClickService
	baseURL   string
	mode      string
	geoWait   time.Duration
	countdown int
}

func NewLinkHandler(links *service.LinkService, clicks *service.ClickService, cfg *config.Config) *LinkHandler {
	return &LinkHandler{
		links:     links,
		clicks:    clicks,
		baseURL:   cfg.Server.BaseURL,
		mode:      cfg.Redirect.Mode,
		geoWait:   cfg.Redirect.GeoTimeout,
		countdown: cfg.Redirect.Countdown,
	}
}

func visitorFrom(c *gin.Context) service.Visitor {
	return service.Visitor{
		IP:        utils.ClientIP(c.Request),
		UserAgent: c.Request.UserAgent(),
	}
}

// Create 创建短链 POST /api/create
func (h *LinkHandler) Create(c *gin.Context) {
	var req dto.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("Request body binding failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		_ = c.Error(bindingError(err, &req))
		return
	}

	link, err := h.links.CreateLink(c.Request.Context(), req)
	if err != nil {
		zap.L().Warn("Short link creation failed",
			zap.Error(err),
			zap.String("original_url", req.OriginalURL),
		)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, dto.CreateLinkResponse{
		Message:       i18n.T(c.Request.Context(), "message.links_created", nil),
		CustomerLink:  h.baseURL + "/link/" + link.ShortCode,
		AnalyticsLink: h.baseURL + "/analytics/" + link.ShortCode,
		ShortCode:     link.ShortCode,
	})
}

// Redirect 记录访问后按配置的模式跳转 GET /link/:shortCode
func (h *LinkHandler) Redirect(c *gin.Context) {
	shortCode := c.Param("shortCode")
	ctx := c.Request.Context()

	link, err := h.links.FindLink(ctx, shortCode)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if _, err := h.clicks.RecordVisit(ctx, link, visitorFrom(c)); err != nil {
		_ = c.Error(err)
		return
	}

	locURL := "/loc/" + link.ShortCode
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")

	switch h.mode {
	case config.RedirectModeDirect:
		c.Redirect(http.StatusFound, link.OriginalURL)
	case config.RedirectModeLocation:
		c.Redirect(http.StatusFound, locURL)
	default:
		data := web.PreviewData{
			Title:       link.OgTitle,
			Description: link.OgDescription,
			URL:         h.baseURL + "/link/" + link.ShortCode,
			RefreshURL:  locURL,
		}
		if data.Title == "" {
			data.Title = link.OriginalURL
		}
		if link.OgImage != "" {
			data.Image = h.baseURL + link.OgImage
		}
		c.HTML(http.StatusOK, web.PreviewTemplate, data)
	}
}

// Locate 定位中转页 GET /loc/:shortCode
func (h *LinkHandler) Locate(c *gin.Context) {
	link, err := h.links.FindLink(c.Request.Context(), c.Param("shortCode"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.HTML(http.StatusOK, web.LocationTemplate, web.LocationData{
		ShortCode:        link.ShortCode,
		OriginalURL:      link.OriginalURL,
		TimeoutMillis:    h.geoWait.Milliseconds(),
		CountdownSeconds: h.countdown,
	})
}

// SaveLocation 保存浏览器上报的坐标 POST /api/location/:shortCode
func (h *LinkHandler) SaveLocation(c *gin.Context) {
	ctx := c.Request.Context()

	link, err := h.links.FindLink(ctx, c.Param("shortCode"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req dto.LocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		appErr := bindingError(err, &req)
		if appErr.Message == apperrors.MsgInvalidRequest {
			appErr = apperrors.InvalidRequestError(apperrors.MsgCoordinatesRequired)
		}
		_ = c.Error(appErr)
		return
	}

	if _, err := h.clicks.RecordLocation(ctx, link, visitorFrom(c), *req.Latitude, *req.Longitude); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": i18n.T(ctx, "message.location_saved", nil)})
}
