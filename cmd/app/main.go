package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"shortlink-geo/internal/config"
	"shortlink-geo/internal/geo"
	"shortlink-geo/internal/handler"
	"shortlink-geo/internal/i18n"
	"shortlink-geo/internal/preview"
	"shortlink-geo/internal/repository"
	"shortlink-geo/internal/service"
	"shortlink-geo/pkg/logging"
)

func startServer(r *gin.Engine, cfg *config.Config, cleanup func()) {
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Logger.Info("Server is running on " + cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中断信号以优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	cleanup()
	logging.Logger.Info("Server exiting")
}

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logging.InitLogger(logging.Options{
		Level:      cfg.Log.Level,
		Path:       cfg.Log.Path,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})
	defer logging.Sync()
	logging.Logger.Info("Application started", zap.String("redirect_mode", cfg.Redirect.Mode))

	db, err := repository.NewDB(cfg.DB, nil)
	if err != nil {
		logging.Logger.Fatal("Failed to connect database", zap.Error(err))
	}
	pool := repository.NewRedisPool(cfg.Redis)

	bundle, err := i18n.InitI18n("en")
	if err != nil {
		logging.Logger.Fatal("Failed to initialize i18n", zap.Error(err))
	}

	resolver := geo.NewResolver(cfg.Geo.MMDBPath)
	var reverse geo.ReverseGeocoder
	if cfg.Geo.ReverseURL != "" {
		reverse = geo.NewNominatim(cfg.Geo.ReverseURL, cfg.Geo.UserAgent, cfg.Geo.Timeout)
	}

	var previews service.PreviewFetcher
	if cfg.Preview.Enabled {
		previews = preview.NewFetcher(preview.Options{
			Timeout:       cfg.Preview.Timeout,
			AssetDir:      cfg.Preview.AssetDir,
			URLPrefix:     cfg.Preview.URLPrefix,
			MaxImageBytes: cfg.Preview.MaxImageBytes,
		})
	}

	repo := repository.NewLinkRepository(db)
	cache := repository.NewLinkCache(pool, cfg.Redis.LinkTTL)
	stats := service.NewStatsService(pool, repo)
	links := service.NewLinkService(repo, cache, previews, service.LinkOptions{
		CodeLength:  cfg.ShortCode.Length,
		MaxAttempts: cfg.ShortCode.MaxAttempts,
	})
	clicks := service.NewClickService(repo, resolver, reverse, stats)

	gin.SetMode(cfg.Server.Mode)
	r, err := handler.NewRouter(handler.RouterDeps{
		Logger:    logging.Logger,
		Bundle:    bundle,
		Links:     handler.NewLinkHandler(links, clicks, cfg),
		Analytics: handler.NewAnalyticsHandler(links, stats),
		Health:    handler.NewHealthHandler(db, pool),
		AssetDir:  cfg.Preview.AssetDir,
		URLPrefix: cfg.Preview.URLPrefix,
	})
	if err != nil {
		logging.Logger.Fatal("Failed to build router", zap.Error(err))
	}

	c := cron.New()
	// 定时将 Redis 中的 PV/UV 落库
	_, addErr := c.AddFunc(cfg.Stats.Cron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if err := stats.SyncDailyStats(ctx); err != nil {
			logging.Logger.Error("Failed to sync daily stats via cron job", zap.Error(err))
		}
	})
	if addErr != nil {
		logging.Logger.Fatal("Failed to schedule cron job", zap.Error(addErr))
	}
	c.Start()

	startServer(r, cfg, func() {
		<-c.Stop().Done()
		if closer, ok := resolver.(*geo.MaxMindResolver); ok {
			if err := closer.Close(); err != nil {
				logging.Logger.Warn("GeoIP reader close failed", zap.Error(err))
			}
		}
		if pool != nil {
			if err := pool.Close(); err != nil {
				logging.Logger.Warn("Redis pool close failed", zap.Error(err))
			}
		}
		repository.CloseDB(db)
	})
}
