package migration

import (
	"github.com/orris-inc/ticketdesk/internal/infrastructure/persistence/models"
)

// AutoMigrateModels lists the models the auto strategy keeps in sync.
func AutoMigrateModels() []interface{} {
	return []interface{}{
		&models.TicketModel{},
	}
}
