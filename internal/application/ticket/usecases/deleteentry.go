package usecases

import (
	"context"

	"github.com/orris-inc/ticketdesk/internal/application/ticket/dto"
	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/shared/db"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

type DeleteEntryCommand struct {
	TicketID string
	EntryID  string
}

type DeleteEntryUseCase struct {
	ticketRepo ticket.Repository
	teardown   *Teardown
	txm        db.TxRunner
	logger     logger.Interface
}

func NewDeleteEntryUseCase(
	ticketRepo ticket.Repository,
	teardown *Teardown,
	txm db.TxRunner,
	logger logger.Interface,
) *DeleteEntryUseCase {
	return &DeleteEntryUseCase{
		ticketRepo: ticketRepo,
		teardown:   teardown,
		txm:        txm,
		logger:     logger,
	}
}

func (uc *DeleteEntryUseCase) Execute(ctx context.Context, cmd DeleteEntryCommand) (*dto.TicketDTO, error) {
	uc.logger.Infow("executing delete entry use case", "ticket_id", cmd.TicketID, "entry_id", cmd.EntryID)

	if err := requireID("ticket_id", cmd.TicketID); err != nil {
		return nil, err
	}
	if err := requireID("entry_id", cmd.EntryID); err != nil {
		return nil, err
	}

	current, err := uc.ticketRepo.GetByID(ctx, cmd.TicketID)
	if err != nil {
		uc.logger.Errorw("failed to get ticket", "ticket_id", cmd.TicketID, "error", err)
		return nil, toAppError(err, "failed to get ticket", "ticket_id="+cmd.TicketID)
	}
	e, _, err := current.FindEntry(cmd.EntryID)
	if err != nil {
		return nil, err
	}

	if err := uc.teardown.Entry(ctx, cmd.TicketID, e); err != nil {
		return nil, err
	}

	t, err := mutateTicket(ctx, uc.txm, uc.ticketRepo, cmd.TicketID, func(t *ticket.Ticket) error {
		removed, err := t.RemoveEntry(cmd.EntryID)
		if err != nil {
			return err
		}
		// Attachments uploaded after the files above were removed.
		return uc.teardown.Remaining(ctx, cmd.TicketID, e, removed)
	})
	if err != nil {
		uc.logger.Errorw("failed to delete entry",
			"ticket_id", cmd.TicketID,
			"entry_id", cmd.EntryID,
			"error", err)
		return nil, toAppError(err, "failed to delete entry", "ticket_id="+cmd.TicketID, "entry_id="+cmd.EntryID)
	}

	uc.logger.Infow("entry deleted successfully",
		"ticket_id", cmd.TicketID,
		"entry_id", cmd.EntryID,
		"files_removed", len(e.Attachments()))
	return dto.ToTicketDTO(t), nil
}
