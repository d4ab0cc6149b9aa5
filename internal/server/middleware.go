package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-sales-service/internal/apperror"
	"github.com/fekuna/omnipos-sales-service/internal/auth"
	"github.com/fekuna/omnipos-sales-service/internal/metrics"
	"github.com/fekuna/omnipos-sales-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type errorBody struct {
	Message   string `json:"message"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
	Detail    string `json:"detail,omitempty"`
}

// errorRenderer writes the last handler error as the JSON error body.
func errorRenderer(showDetail bool, log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		appErr := apperror.From(c.Errors.Last().Err)

		if appErr.Kind == apperror.KindUnexpected {
			log.Error("unexpected error",
				zap.String("path", c.FullPath()),
				zap.String("detail", appErr.Detail()),
			)
		}

		body := errorBody{
			Message:   appErr.Message,
			Kind:      string(appErr.Kind),
			Retryable: appErr.Retryable(),
		}
		if showDetail {
			body.Detail = appErr.Detail()
		}
		c.JSON(appErr.HTTPStatus(), body)
	}
}

// recoverer turns a handler panic into an Unexpected error body.
func recoverer(showDetail bool, log logger.ZapLogger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, recovered any) {
		appErr := apperror.Wrap(apperror.KindUnexpected, fmt.Errorf("panic: %v", recovered), "internal server error")
		log.Error("handler panicked",
			zap.String("path", c.FullPath()),
			zap.Any("panic", recovered),
			zap.Stack("stack"),
		)

		body := errorBody{
			Message: appErr.Message,
			Kind:    string(appErr.Kind),
		}
		if showDetail {
			body.Detail = appErr.Detail()
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, body)
	})
}

// requireActor attaches the gateway identity to the request context.
func requireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := auth.FromHeaders(c.Request.Header)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody{
				Message: "missing caller identity",
				Kind:    "Unauthenticated",
			})
			return
		}
		c.Request = c.Request.WithContext(auth.WithActor(c.Request.Context(), actor))
		c.Next()
	}
}

func zapLoggerMiddleware(log logger.ZapLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("tenant_id", auth.GetMerchantID(c.Request.Context())),
		)
	}
}

func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
