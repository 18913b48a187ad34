package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/avestan/hotel-booking-api/internal/config"
)

// RateLimitByIP returns middleware enforcing a fixed-window limit per client
// address, backed by Redis so the count survives restarts and is shared
// between replicas. It is applied to the forgot-password endpoint to slow
// down enumeration and mail-bombing attempts. When Redis is unavailable the
// limiter fails open and requests pass through.
func RateLimitByIP(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	windowScript := redis.NewScript(`
        local count = redis.call('INCR', KEYS[1])
        if count == 1 then
            redis.call('PEXPIRE', KEYS[1], ARGV[1])
        end
        local ttl = redis.call('PTTL', KEYS[1])
        return { count, ttl }
    `)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			key := cfg.Prefix + ":ip:" + ip + ":" + c.Path()

			ctx := c.Request().Context()
			vals, err := windowScript.Run(ctx, rdb, []string{key}, cfg.Window.Milliseconds()).Result()
			if err != nil {
				c.Logger().Warnf("ratelimit: redis error for key=%s: %v", key, err)
				return next(c)
			}
			arr, ok := vals.([]interface{})
			if !ok || len(arr) != 2 {
				return next(c)
			}
			count, _ := arr[0].(int64)
			ttlMs, _ := arr[1].(int64)

			remaining := int64(cfg.Capacity) - count
			if remaining < 0 {
				remaining = 0
			}
			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(cfg.Capacity) {
				secs := int((time.Duration(ttlMs) * time.Millisecond).Round(time.Second) / time.Second)
				if secs < 1 {
					secs = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"message": "Too many requests, please try again later",
				})
			}
			return next(c)
		}
	}
}
