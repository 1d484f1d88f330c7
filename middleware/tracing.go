package middleware

import (
	"log"

	"execpanel/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func RequestTracingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		browser, os, device := utils.ParseUserAgent(c.Request.UserAgent())
		log.Printf("[%s] %s %s from %s/%s/%s", requestID[:8],
			c.Request.Method, c.Request.URL.Path, browser, os, device)

		c.Next()
	}
}
