package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mikeydub/go-portfolio/env"
	"github.com/mikeydub/go-portfolio/service/logger"
)

// IsOriginAllowed checks the request origin against the configured allowlist
func IsOriginAllowed(requestOrigin string) bool {
	for _, allowed := range strings.Split(env.GetString("ALLOWED_ORIGINS"), ",") {
		if strings.TrimSpace(allowed) == requestOrigin {
			return true
		}
	}
	return false
}

// HandleCORS sets the CORS headers on all responses and handles preflight requests
func HandleCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestOrigin := c.Request.Header.Get("Origin")

		if IsOriginAllowed(requestOrigin) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", requestOrigin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// ErrLogger is a middleware that logs errors attached to the gin context
func ErrLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) > 0 {
			logger.For(c).Errorf("%s %s %s %s %s", c.Request.Method, c.Request.URL, c.ClientIP(), c.Request.Header.Get("User-Agent"), c.Errors.JSON())
		}
	}
}
