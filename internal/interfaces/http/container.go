package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/ticketdesk/internal/infrastructure/config"
	"github.com/orris-inc/ticketdesk/internal/infrastructure/scheduler"
	"github.com/orris-inc/ticketdesk/internal/infrastructure/storage"
	"github.com/orris-inc/ticketdesk/internal/interfaces/http/middleware"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

// Container holds the infrastructure components, repositories, use cases and
// handlers, wires them together, and releases them in Shutdown.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	store  storage.Store
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	// Repositories
	repos *repositories

	// Use cases
	ucs *allUseCases

	// Handlers
	hdlrs *allHandlers

	// Middlewares
	rateLimiter *middleware.RateLimiter

	// Background jobs
	schedulerManager *scheduler.SchedulerManager
}

// NewContainer creates a new Container with all dependencies wired together.
// The attachment store is built by the caller so it can be shared with the
// maintenance commands.
func NewContainer(db *gorm.DB, store storage.Store, cfg *config.Config, log logger.Interface) *Container {
	c := &Container{
		engine: gin.New(),
		db:     db,
		store:  store,
		cfg:    cfg,
		log:    log,
	}

	// Section 1: Infrastructure - Redis, rate limiter
	c.initInfrastructure()

	// Section 2: Repositories and use cases
	c.repos = newRepositories(db, log)
	c.ucs = newUseCases(c.repos, store, log)

	// Section 3: Handlers
	c.hdlrs = c.newHandlers()

	// Section 4: Scheduled maintenance
	c.initScheduler()

	return c
}
