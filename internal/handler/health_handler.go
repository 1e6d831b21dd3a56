package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/catalog_sync/internal/utils"
)

var startTime = time.Now()

// Pinger is anything whose connection can be checked.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// ProductCounter reports how many products are stored locally.
type ProductCounter interface {
	Count(ctx context.Context) (int, error)
}

// HealthHandler provides health endpoint.
type HealthHandler struct {
	db       Pinger
	redis    Pinger
	products ProductCounter
	syncing  func() bool
}

// NewHealthHandler creates a new HealthHandler. redis and products may be nil.
func NewHealthHandler(db Pinger, redis Pinger, products ProductCounter, syncing func() bool) *HealthHandler {
	return &HealthHandler{db: db, redis: redis, products: products, syncing: syncing}
}

// GetHealth responds with service, database and Redis status.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	dbStatus := "connected"
	if err := h.db.PingContext(ctx); err != nil {
		dbStatus = "disconnected"
		status = "degraded"
	}

	redisStatus := "disabled"
	if h.redis != nil {
		redisStatus = "connected"
		if err := h.redis.PingContext(ctx); err != nil {
			redisStatus = "disconnected"
			status = "degraded"
		}
	}

	code := 200
	if dbStatus != "connected" {
		code = 503
	}

	data := gin.H{
		"status":   status,
		"version":  "1.0.0",
		"uptime":   int(time.Since(startTime).Seconds()),
		"database": dbStatus,
		"redis":    redisStatus,
		"syncing":  h.syncing != nil && h.syncing(),
	}
	if h.products != nil && dbStatus == "connected" {
		if n, err := h.products.Count(ctx); err == nil {
			data["products"] = n
		}
	}

	utils.Success(c, code, "Service is "+status, data)
}
