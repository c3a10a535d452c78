package http

import (
	"github.com/orris-inc/ticketdesk/internal/application/ticket/usecases"
	"github.com/orris-inc/ticketdesk/internal/infrastructure/storage"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

// allUseCases holds all use case instances used by the HTTP layer.
type allUseCases struct {
	// Ticket
	createTicketUC *usecases.CreateTicketUseCase
	getTicketUC    *usecases.GetTicketUseCase
	listTicketsUC  *usecases.ListTicketsUseCase
	updateTicketUC *usecases.UpdateTicketUseCase
	deleteTicketUC *usecases.DeleteTicketUseCase

	// Entry
	addEntryUC    *usecases.AddEntryUseCase
	updateEntryUC *usecases.UpdateEntryUseCase
	deleteEntryUC *usecases.DeleteEntryUseCase
	saveEntryUC   *usecases.SaveEntryUseCase

	// Attachment
	uploadAttachmentUC *usecases.UploadAttachmentUseCase
	deleteAttachmentUC *usecases.DeleteAttachmentUseCase
	openAttachmentUC   *usecases.OpenAttachmentUseCase

	// Search
	searchEntriesUC *usecases.SearchEntriesUseCase
}

func newUseCases(repos *repositories, store storage.Store, log logger.Interface) *allUseCases {
	ucLog := log.Named("usecase")
	teardown := usecases.NewTeardown(store, ucLog)

	return &allUseCases{
		createTicketUC: usecases.NewCreateTicketUseCase(repos.ticketRepo, ucLog),
		getTicketUC:    usecases.NewGetTicketUseCase(repos.ticketRepo, ucLog),
		listTicketsUC:  usecases.NewListTicketsUseCase(repos.ticketRepo, ucLog),
		updateTicketUC: usecases.NewUpdateTicketUseCase(repos.ticketRepo, repos.txm, ucLog),
		deleteTicketUC: usecases.NewDeleteTicketUseCase(repos.ticketRepo, teardown, repos.txm, ucLog),

		addEntryUC:    usecases.NewAddEntryUseCase(repos.ticketRepo, repos.txm, ucLog),
		updateEntryUC: usecases.NewUpdateEntryUseCase(repos.ticketRepo, repos.txm, ucLog),
		deleteEntryUC: usecases.NewDeleteEntryUseCase(repos.ticketRepo, teardown, repos.txm, ucLog),
		saveEntryUC:   usecases.NewSaveEntryUseCase(repos.ticketRepo, store, teardown, repos.txm, ucLog),

		uploadAttachmentUC: usecases.NewUploadAttachmentUseCase(repos.ticketRepo, store, repos.txm, ucLog),
		deleteAttachmentUC: usecases.NewDeleteAttachmentUseCase(repos.ticketRepo, teardown, repos.txm, ucLog),
		openAttachmentUC:   usecases.NewOpenAttachmentUseCase(repos.ticketRepo, store, ucLog),

		searchEntriesUC: usecases.NewSearchEntriesUseCase(repos.ticketRepo, ucLog),
	}
}
