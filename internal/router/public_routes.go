package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/ticketing-core/internal/config"
	"github.com/iliyamo/ticketing-core/internal/handler"
	"github.com/iliyamo/ticketing-core/internal/middleware"
)

// RegisterPublic mounts the unauthenticated event-browsing surface behind
// the fixed-window rate limiter and the response cache. Venue and
// seat-grade listing reuse the owner handler's read methods, since the
// public views are the same queries with no ownership filter applied.
func RegisterPublic(e *echo.Echo, pub *handler.PublicHandler, owner *handler.OwnerHandler, rateCfg config.RateLimitConfig, cacheCfg config.CacheConfig, rdb *redis.Client) {
	g := e.Group("", middleware.NewFixedWindow(rateCfg, rdb), middleware.NewRedisCache(cacheCfg, rdb))

	g.GET("/events", pub.ListEvents)
	g.GET("/events/search", pub.SearchEvents)
	g.GET("/events/:id", pub.GetEvent)
	g.GET("/events/:id/schedules", pub.ListEventSchedules)
	g.GET("/events/:id/seat-grades", owner.ListSeatGrades)

	g.GET("/venues", owner.ListVenues)
	g.GET("/venues/:id", owner.GetVenue)
}
