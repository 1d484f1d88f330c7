package handler

import (
	"log"
	"time"

	"execpanel/services"
	"execpanel/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type HealthHandler struct {
	mongoClient *mongo.Client
	cache       *services.DocumentCache
	startedAt   time.Time
}

func NewHealthHandler(mongoClient *mongo.Client, cache *services.DocumentCache) *HealthHandler {
	return &HealthHandler{
		mongoClient: mongoClient,
		cache:       cache,
		startedAt:   time.Now(),
	}
}

// Health reports process and dependency status. The cache being down
// is degraded, not unhealthy: the store falls back to Mongo.
func (h *HealthHandler) Health(c *gin.Context) {
	status := "healthy"

	mongoUp := true
	if err := h.mongoClient.Ping(c.Request.Context(), readpref.Primary()); err != nil {
		log.Printf("Health check: mongo ping failed: %v", err)
		mongoUp = false
		status = "unhealthy"
	}

	cacheUp := h.cache != nil && h.cache.IsConnected()
	if mongoUp && !cacheUp {
		status = "degraded"
	}

	utils.Success(c, gin.H{
		"status":     status,
		"uptimeSec":  int(time.Since(h.startedAt).Seconds()),
		"mongo":      mongoUp,
		"cache":      cacheUp,
		"cpuPercent": utils.GetCPUUsage(),
		"memPercent": utils.GetMemoryUsage(),
	})
}
