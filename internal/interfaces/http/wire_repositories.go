package http

import (
	"gorm.io/gorm"

	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/infrastructure/repository"
	"github.com/orris-inc/ticketdesk/internal/shared/db"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

// repositories holds the repository instances and the transaction runner
// the use cases share.
type repositories struct {
	ticketRepo ticket.Repository
	txm        db.TxRunner
}

func newRepositories(gormDB *gorm.DB, log logger.Interface) *repositories {
	return &repositories{
		ticketRepo: repository.NewTicketRepository(gormDB, log),
		txm:        db.NewTransactionManager(gormDB),
	}
}
