package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports liveness of the API and its backing stores. A degraded
// dependency answers 503 so upstream load balancers stop routing here.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"postgres": "up", "redis": "up"}
		healthy := true

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			checks["postgres"] = "down"
			healthy = false
		}
		if rdb.Ping(ctx).Err() != nil {
			checks["redis"] = "down"
			healthy = false
		}

		status := http.StatusOK
		state := "ok"
		if !healthy {
			status = http.StatusServiceUnavailable
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": checks})
	}
}
