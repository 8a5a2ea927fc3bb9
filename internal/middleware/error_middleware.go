package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"shortlink-geo/internal/apperrors"
	"shortlink-geo/internal/i18n"
	"shortlink-geo/pkg/logging"
	"shortlink-geo/response"
)

// GlobalErrorMiddleware 全局错误中间件
func GlobalErrorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		ctx := c.Request.Context()
		for _, err := range c.Errors {
			var appErr *apperrors.AppError
			if errors.As(err.Err, &appErr) {
				if appErr.Code >= http.StatusInternalServerError {
					logging.Logger.Error("Request failed",
						zap.String("path", c.Request.URL.Path),
						zap.String("request_id", c.GetString(RequestIDKey)),
						zap.Error(appErr),
					)
				}
				c.AbortWithStatusJSON(appErr.Code, response.Error(i18n.T(ctx, appErr.Message, nil)))
				return
			}
		}

		// 默认处理未定义的错误
		logging.Logger.Error("Unhandled error",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(RequestIDKey)),
			zap.Error(c.Errors.Last().Err),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(i18n.T(ctx, apperrors.MsgSystem, nil)))
	}
}
