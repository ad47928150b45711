package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type healthCheck struct {
	name string
	ping func(ctx context.Context) error
}

// newHealthHandler reports 503 when any dependency is unreachable. Failure
// details go to the log only.
func newHealthHandler(log *zap.Logger, checks ...healthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		for _, check := range checks {
			if err := check.ping(ctx); err != nil {
				log.Error("Health check failed", zap.String("dependency", check.name), zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "message": check.name + " is unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
