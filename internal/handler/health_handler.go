package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gomodule/redigo/redis"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db    *gorm.DB
	redis *redis.Pool
}

type HealthResponse struct {
	Status    string           `json:"status"`
	Checks    map[string]Check `json:"checks"`
	Timestamp string           `json:"timestamp"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(db *gorm.DB, pool *redis.Pool) *HealthHandler {
	return &HealthHandler{db: db, redis: pool}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]Check{
		"database": h.checkDatabase(ctx),
		"redis":    h.checkRedis(ctx),
	}

	status := http.StatusOK
	resp := HealthResponse{Status: "up", Checks: checks, Timestamp: time.Now().Format(time.RFC3339)}
	for _, check := range checks {
		if check.Status == "down" {
			resp.Status = "down"
			status = http.StatusServiceUnavailable
		}
	}
	c.JSON(status, resp)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	sqlDB, err := h.db.DB()
	if err != nil {
		return Check{Status: "down", Message: err.Error()}
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return Check{Status: "down", Message: err.Error()}
	}
	return Check{Status: "up"}
}

func (h *HealthHandler) checkRedis(ctx context.Context) Check {
	if h.redis == nil {
		return Check{Status: "disabled"}
	}
	conn, err := h.redis.GetContext(ctx)
	if err != nil {
		return Check{Status: "down", Message: err.Error()}
	}
	defer conn.Close()

	if _, err := redis.DoContext(conn, ctx, "PING"); err != nil {
		return Check{Status: "down", Message: err.Error()}
	}
	return Check{Status: "up"}
}
