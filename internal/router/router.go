package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/eventpro/ticketing/internal/config"
	"github.com/eventpro/ticketing/internal/handler"
	"github.com/eventpro/ticketing/internal/middleware"
)

// Handlers bundles the HTTP handlers the API exposes so route
// registration takes one argument instead of five.
type Handlers struct {
	Events      *handler.EventHandler
	TicketTypes *handler.TicketTypeHandler
	Tickets     *handler.TicketHandler
	Payments    *handler.PaymentHandler
}

// RegisterRoutes wires the full API surface onto the provided Echo
// instance. Public GET endpoints go through the Redis response cache;
// booking and payment mutations go through the token-bucket rate
// limiter. Both middlewares degrade to pass-through when rdb is nil.
func RegisterRoutes(e *echo.Echo, h Handlers, rdb *redis.Client, jwtSecret string) {
	// Health check for load balancers and monitoring systems.
	e.GET("/healthz", handler.Health)
	// Prometheus scrape endpoint.
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)

	api := e.Group("/api")
	api.Use(middleware.Identity(jwtSecret))

	// Event catalogue. Reads are cacheable; writes come from the event
	// organizer's tooling.
	api.GET("/events", h.Events.List, cache)
	api.GET("/events/:id", h.Events.Get, cache)
	api.POST("/events", h.Events.Create)
	api.PUT("/events/:id", h.Events.Update)
	api.DELETE("/events/:id", h.Events.Delete)

	// Ticket categories per event.
	api.GET("/tickettypes", h.TicketTypes.List, cache)
	api.POST("/tickettypes", h.TicketTypes.CreateBulk)
	api.PUT("/tickettypes/:id", h.TicketTypes.Update)

	// Booking workflow. Mutations are rate limited since they contend
	// on event capacity.
	api.POST("/tickets", h.Tickets.Create, limit)
	api.GET("/tickets", h.Tickets.List)
	api.GET("/tickets/:id", h.Tickets.Get)
	api.GET("/tickets/:id/qr", h.Tickets.QRCode)
	api.POST("/tickets/:ticketId/order", h.Tickets.CreateOrder, limit)
	api.POST("/tickets/verify", h.Tickets.VerifyPayment, limit)
	api.DELETE("/tickets/:ticketId/rollback", h.Tickets.Rollback, limit)

	// Payment ledger routes for clients driving payment separately.
	api.GET("/payments/:ticketId", h.Payments.Details)
	api.POST("/payments/create/:ticketId", h.Payments.Create, limit)
	api.POST("/payments/verify", h.Payments.Verify, limit)
	api.GET("/payments/status/:ticketId", h.Payments.Status)
}
