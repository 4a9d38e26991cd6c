package middleware

import (
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/ticketing-core/internal/config"
)

// fixedWindowScript atomically increments rate_limit:{ip} and, only on
// the first increment of a window, sets its TTL — the exact two-step
// INCR/EXPIRE-if-first sequence the public read paths used originally,
// made atomic so a burst of concurrent requests can't race the TTL set.
var fixedWindowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return { count, ttl }
`)

// NewFixedWindow builds the fixed-window request counter guarding public
// read paths (event/banner listings): at most cfg.Max requests per
// cfg.Window per client IP. A Redis failure fails the request open
// (allowed) rather than cascading into a full outage, per the spec's
// StoreUnavailable handling for non-critical paths.
func NewFixedWindow(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return func(c echo.Context) error { return next(c) } }
    }

    windowSecs := int64(cfg.Window.Seconds())
    if windowSecs < 1 {
        windowSecs = 1
    }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            ip := c.RealIP()
            if ip == "" {
                ip = "unknown"
            }
            key := cfg.Prefix + ":" + ip

            ctx := c.Request().Context()
            res, err := fixedWindowScript.Run(ctx, rdb, []string{key}, windowSecs).Result()
            if err != nil {
                if cfg.Debug {
                    c.Logger().Warnf("[ratelimit] redis error for key=%s: %v", key, err)
                }
                return next(c)
            }

            arr, ok := res.([]interface{})
            if !ok || len(arr) != 2 {
                return next(c)
            }
            count := asInt64(arr[0])
            ttl := asInt64(arr[1])
            if ttl < 0 {
                ttl = windowSecs
            }

            c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
            remaining := int64(cfg.Max) - count
            if remaining < 0 {
                remaining = 0
            }
            c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

            if count > int64(cfg.Max) {
                c.Response().Header().Set("Retry-After", strconv.FormatInt(ttl, 10))
                if cfg.Debug {
                    c.Logger().Infof("[ratelimit] block key=%s count=%d max=%d", key, count, cfg.Max)
                }
                return c.JSON(http.StatusTooManyRequests, map[string]any{
                    "error":       "too_many_requests",
                    "message":     "rate limit exceeded",
                    "retry_after": ttl,
                })
            }
            return next(c)
        }
    }
}

func asInt64(v interface{}) int64 {
    switch t := v.(type) {
    case int64:
        return t
    case int32:
        return int64(t)
    case int:
        return int64(t)
    case float64:
        return int64(t)
    case float32:
        return int64(t)
    case string:
        if n, err := strconv.ParseInt(t, 10, 64); err == nil {
            return n
        }
    }
    return 0
}
