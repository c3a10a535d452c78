package http

import (
	"github.com/gin-gonic/gin"

	"github.com/orris-inc/ticketdesk/internal/interfaces/http/middleware"
	"github.com/orris-inc/ticketdesk/internal/interfaces/http/routes"
)

// SetupRoutes configures all HTTP routes
func (c *Container) SetupRoutes() {
	httpLog := c.log.Named("http")

	c.engine.Use(middleware.Logger(httpLog))
	c.engine.Use(middleware.Recovery(httpLog))
	c.engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))
	c.engine.Use(middleware.SecurityHeaders())

	c.engine.GET("/health", c.hdlrs.healthHandler.HealthCheck)
	c.engine.GET("/version", c.hdlrs.healthHandler.Version)

	var apiMiddlewares []gin.HandlerFunc
	if c.rateLimiter != nil {
		apiMiddlewares = append(apiMiddlewares, c.rateLimiter.Limit())
	}

	routes.SetupTicketRoutes(c.engine, &routes.TicketRouteConfig{
		TicketHandler:     c.hdlrs.ticketHandler,
		EntryHandler:      c.hdlrs.entryHandler,
		AttachmentHandler: c.hdlrs.attachmentHandler,
		SearchHandler:     c.hdlrs.searchHandler,
		Middlewares:       apiMiddlewares,
	})
}

// GetEngine returns the Gin engine
func (c *Container) GetEngine() *gin.Engine {
	return c.engine
}

// Run starts the HTTP server
func (c *Container) Run(addr string) error {
	return c.engine.Run(addr)
}

// Shutdown releases connections the container opened itself. The database
// and the attachment store belong to the caller.
func (c *Container) Shutdown() {
	if c.schedulerManager != nil {
		if err := c.schedulerManager.Stop(); err != nil {
			c.log.Errorw("failed to stop scheduler", "error", err)
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Errorw("failed to close Redis client", "error", err)
		}
	}
}
