package migration

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/ticketdesk/internal/shared/config"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

// Manager handles database migrations with different strategies
type Manager struct {
	strategy Strategy
	logger   logger.Interface
}

// NewManager picks the strategy named in cfg.
func NewManager(cfg *config.DatabaseConfig) (*Manager, error) {
	var strategy Strategy

	switch cfg.Migration {
	case config.MigrationGoose:
		strategy = NewGooseStrategy(cfg.Driver)
	case config.MigrationAuto:
		strategy = NewGormAutoMigrateStrategy(AutoMigrateModels()...)
	default:
		return nil, fmt.Errorf("unsupported migration strategy %q", cfg.Migration)
	}

	return NewManagerWithStrategy(strategy), nil
}

// NewManagerWithStrategy creates a new migration manager with a specific strategy
func NewManagerWithStrategy(strategy Strategy) *Manager {
	return &Manager{
		strategy: strategy,
		logger:   logger.WithComponent("migration.manager"),
	}
}

// Migrate executes the configured migration strategy
func (m *Manager) Migrate(ctx context.Context, db *gorm.DB) error {
	m.logger.Infow("starting database migration", "strategy", m.strategy.GetName())

	if err := m.strategy.Migrate(ctx, db); err != nil {
		m.logger.Errorw("migration failed",
			"strategy", m.strategy.GetName(),
			"error", err)
		return fmt.Errorf("migration failed with strategy %s: %w", m.strategy.GetName(), err)
	}

	m.logger.Infow("database migration completed successfully", "strategy", m.strategy.GetName())
	return nil
}

// GetStrategy returns the current migration strategy
func (m *Manager) GetStrategy() Strategy {
	return m.strategy
}

// Goose returns the versioned strategy, or an error when the manager runs
// auto migrations, which cannot roll back or report versions.
func (m *Manager) Goose() (*GooseStrategy, error) {
	g, ok := m.strategy.(*GooseStrategy)
	if !ok {
		return nil, fmt.Errorf("strategy %s does not support versioned operations", m.strategy.GetName())
	}
	return g, nil
}
