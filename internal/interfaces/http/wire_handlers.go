package http

import (
	"context"

	"github.com/orris-inc/ticketdesk/internal/interfaces/http/handlers"
	ticketHandlers "github.com/orris-inc/ticketdesk/internal/interfaces/http/handlers/ticket"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	healthHandler *handlers.HealthHandler

	// Ticket
	ticketHandler     *ticketHandlers.TicketHandler
	entryHandler      *ticketHandlers.EntryHandler
	attachmentHandler *ticketHandlers.AttachmentHandler
	searchHandler     *ticketHandlers.SearchHandler
}

func (c *Container) newHandlers() *allHandlers {
	ucs := c.ucs
	log := c.log.Named("http")
	maxUpload := c.cfg.Server.UploadMaxBytes

	return &allHandlers{
		healthHandler: handlers.NewHealthHandler(map[string]handlers.HealthCheck{
			"database": c.pingDatabase,
			"storage":  c.store.Check,
		}, log),

		ticketHandler: ticketHandlers.NewTicketHandler(
			ucs.createTicketUC,
			ucs.getTicketUC,
			ucs.listTicketsUC,
			ucs.updateTicketUC,
			ucs.deleteTicketUC,
			log,
		),
		entryHandler: ticketHandlers.NewEntryHandler(
			ucs.addEntryUC,
			ucs.updateEntryUC,
			ucs.deleteEntryUC,
			ucs.saveEntryUC,
			maxUpload,
			log,
		),
		attachmentHandler: ticketHandlers.NewAttachmentHandler(
			ucs.uploadAttachmentUC,
			ucs.deleteAttachmentUC,
			ucs.openAttachmentUC,
			maxUpload,
			log,
		),
		searchHandler: ticketHandlers.NewSearchHandler(ucs.searchEntriesUC, log),
	}
}

func (c *Container) pingDatabase(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
