package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports liveness of the service and its two backing stores. Each
// check gets a short deadline so a hung dependency cannot stall the probe
// past the load balancer's timeout.
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
		if err := rdb.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down"
			healthy = false
		}

		status, overall := http.StatusOK, "ok"
		if !healthy {
			status, overall = http.StatusServiceUnavailable, "degraded"
		}
		c.JSON(status, gin.H{
			"service": "retailpos",
			"status":  overall,
			"checks":  checks,
		})
	}
}
