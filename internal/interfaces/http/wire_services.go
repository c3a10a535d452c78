package http

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/ticketdesk/internal/application/ticket/usecases"
	"github.com/orris-inc/ticketdesk/internal/infrastructure/config"
	"github.com/orris-inc/ticketdesk/internal/infrastructure/ratelimit"
	"github.com/orris-inc/ticketdesk/internal/infrastructure/scheduler"
	"github.com/orris-inc/ticketdesk/internal/interfaces/http/middleware"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

// initInfrastructure connects Redis and builds the rate limiter when rate
// limiting is enabled. Without it no Redis connection is made.
func (c *Container) initInfrastructure() {
	rl := c.cfg.RateLimit
	if !rl.Enabled {
		c.log.Infow("rate limiting disabled")
		return
	}

	c.redis = initRedis(c.cfg, c.log)
	limiter := ratelimit.NewRedisRateLimiter(c.redis, ratelimit.Config{
		Requests: rl.Requests,
		Window:   rl.Window,
	})
	c.rateLimiter = middleware.NewRateLimiter(limiter, rl.Requests, c.log.Named("ratelimit"))
	c.log.Infow("rate limiting enabled", "requests", rl.Requests, "window", rl.Window)
}

// initRedis creates and tests the Redis client connection. A failed ping is
// only logged; the limiter lets traffic through until Redis answers.
func initRedis(cfg *config.Config, log logger.Interface) *redis.Client {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warnw("failed to connect to Redis, rate limiting fails open", "addr", cfg.Redis.GetAddr(), "error", err)
		return redisClient
	}
	log.Infow("Redis connection established successfully")

	return redisClient
}

// initScheduler registers the orphan sweep when it is enabled. Jobs start
// with StartJobs so tests and maintenance commands never run them.
func (c *Container) initScheduler() {
	sweep := c.cfg.OrphanSweep
	if !sweep.Enabled {
		return
	}

	log := c.log.Named("scheduler")
	schedulerManager, err := scheduler.NewSchedulerManager(log)
	if err != nil {
		log.Errorw("failed to create scheduler manager, orphan sweep disabled", "error", err)
		return
	}

	scanOrphans := usecases.NewScanOrphansUseCase(c.repos.ticketRepo, c.store, c.repos.txm, c.log.Named("usecase"))
	job := scheduler.BatchJobFunc(func(ctx context.Context) (int, error) {
		report, err := scanOrphans.Execute(ctx, usecases.ScanOrphansCommand{
			Prune:  sweep.Prune,
			MinAge: sweep.MinAge,
		})
		if err != nil {
			return 0, err
		}
		return len(report.OrphanFiles) + len(report.DanglingAttachments), nil
	})

	if err := schedulerManager.RegisterOrphanSweepJob(job, sweep.Interval); err != nil {
		log.Errorw("failed to register orphan sweep job", "error", err)
		_ = schedulerManager.Stop()
		return
	}

	c.schedulerManager = schedulerManager
}

// StartJobs starts the scheduled maintenance jobs, if any are configured.
func (c *Container) StartJobs() {
	if c.schedulerManager != nil {
		c.schedulerManager.Start()
	}
}
