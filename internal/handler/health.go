package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Check is one dependency probed by /health.
type Check struct {
	Nome string
	Ping func(ctx context.Context) error
}

func DBCheck(db *gorm.DB) Check {
	return Check{Nome: "db", Ping: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

func RedisCheck(rdb *redis.Client) Check {
	return Check{Nome: "redis", Ping: func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}}
}

// Health returns a JSON health check response.
// Reports each dependency as connected or error; never exposes credentials or internals.
func Health(checks ...Check) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		status := http.StatusOK
		body := gin.H{}
		for _, chk := range checks {
			estado := "connected"
			if chk.Ping(ctx) != nil {
				estado = "error"
				status = http.StatusServiceUnavailable
			}
			body[chk.Nome] = estado
		}
		body["ok"] = status == http.StatusOK
		c.JSON(status, body)
	}
}
