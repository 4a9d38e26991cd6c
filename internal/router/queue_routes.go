package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticketing-core/internal/handler"
	"github.com/iliyamo/ticketing-core/internal/middleware"
)

// RegisterQueue mounts the admission queue's entry and polling endpoints.
// Both require a valid bearer token; the account's active flag is not
// checked here or in the queue handler.
func RegisterQueue(e *echo.Echo, h *handler.QueueHandler, jwtSecret string) {
	g := e.Group("", middleware.JWTAuth(jwtSecret))
	g.POST("/queue/enter/:event_id", h.Enter)
	g.GET("/queue/status/:event_id", h.Status)
}
