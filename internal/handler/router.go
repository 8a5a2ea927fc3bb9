package handler

import (
	"github.com/gin-gonic/gin"
	thirdPartyI18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"go.uber.org/zap"

	"shortlink-geo/internal/middleware"
	"shortlink-geo/internal/web"
)

// RouterDeps 路由依赖
type RouterDeps struct {
	Logger    *zap.Logger
	Bundle    *thirdPartyI18n.Bundle
	Links     *LinkHandler
	Analytics *AnalyticsHandler
	Health    *HealthHandler
	AssetDir  string
	URLPrefix string
}

// NewRouter 注册中间件和路由
func NewRouter(deps RouterDeps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middleware.GlobalErrorMiddleware())
	r.Use(middleware.ZapGinLogger(deps.Logger))
	r.Use(middleware.CorsMiddleware())
	r.Use(middleware.I18nMiddleware(deps.Bundle))

	tmpl, err := web.Templates()
	if err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)

	r.GET("/", Index)
	r.GET("/healthz", deps.Health.Healthz)
	r.GET("/readyz", deps.Health.Readyz)
	if deps.AssetDir != "" && deps.URLPrefix != "" {
		r.Static(deps.URLPrefix, deps.AssetDir)
	}

	r.GET("/link/:shortCode", deps.Links.Redirect)
	r.GET("/loc/:shortCode", deps.Links.Locate)
	r.GET("/analytics/:shortCode", deps.Analytics.Page)

	api := r.Group("/api")
	{
		api.POST("/create", deps.Links.Create)
		api.POST("/location/:shortCode", deps.Links.SaveLocation)
		api.GET("/analytics/:shortCode", deps.Analytics.Get)
		api.GET("/analytics/:shortCode/clicks", deps.Analytics.Clicks)
		api.GET("/analytics/:shortCode/daily", deps.Analytics.Daily)
	}

	return r, nil
}
