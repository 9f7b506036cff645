package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// cors describes the preflight answer for one group of routes.
type cors struct {
	methods string
	headers string
}

func (p cors) apply(c *gin.Context) {
	c.Header("Access-Control-Allow-Headers", p.headers)
	c.Header("Access-Control-Allow-Methods", p.methods)
}

func (p cors) preflight(c *gin.Context) {
	p.apply(c)
	c.Status(http.StatusOK)
}

func allowAnyOrigin() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(requestIDHeader, requestID)
		c.Next()
		s.logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func writeError(c *gin.Context, status int, kind, detail string) {
	c.JSON(status, gin.H{
		"error":  kind,
		"detail": detail,
	})
}
