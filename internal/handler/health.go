package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"tillpos/internal/infra"
)

// Health reports liveness of the database, Redis, and the event-publish
// circuit. The endpoint is public so load balancers can probe it.
func Health(db *gorm.DB, rdb *redis.Client, notifier *infra.SaleNotifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ok"
		checks := gin.H{}

		dbStatus := "up"
		if db != nil {
			sqlDB, err := db.DB()
			if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
				dbStatus = "down"
				status = "degraded"
			}
		} else {
			dbStatus = "down"
			status = "degraded"
		}
		checks["database"] = dbStatus

		redisStatus := "up"
		if rdb == nil || rdb.Ping(c.Request.Context()).Err() != nil {
			redisStatus = "down"
			status = "degraded"
		}
		checks["redis"] = redisStatus

		if notifier != nil {
			checks["event_circuit"] = notifier.CircuitState()
		}

		code := http.StatusOK
		if status != "ok" {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":    status,
			"checks":    checks,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
