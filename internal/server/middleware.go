package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLogger logs every request once it has been served
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request failed", fields...)
			return
		}
		logger.Debug("request served", fields...)
	}
}

// BodyLimit caps request bodies at limit bytes
func BodyLimit(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit > 0 && c.Request.Body != nil {
			if c.Request.ContentLength > limit {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse(c, "Request body too large"))
				return
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// bindError answers a failed body bind. Bodies cut off by BodyLimit get a
// 413 even when the request carried no Content-Length.
func bindError(c *gin.Context, what string, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse(c, "Request body too large"))
		return
	}
	c.JSON(http.StatusBadRequest, ErrorResponse(c, "Invalid "+what+" body: "+err.Error()))
}

// Recovery turns panics into a 500 envelope
func Recovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		logger.Error("panic while serving request",
			zap.String("path", c.Request.URL.Path),
			zap.Any("error", err))
		c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse(c, "Internal server error"))
	})
}
