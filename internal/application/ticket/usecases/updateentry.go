package usecases

import (
	"context"

	"github.com/orris-inc/ticketdesk/internal/application/ticket/dto"
	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/shared/db"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

// UpdateEntryCommand is a partial update; a nil field is left unchanged.
type UpdateEntryCommand struct {
	TicketID string
	EntryID  string
	Step     *string
	Solution *string
}

type UpdateEntryUseCase struct {
	ticketRepo ticket.Repository
	txm        db.TxRunner
	logger     logger.Interface
}

func NewUpdateEntryUseCase(
	ticketRepo ticket.Repository,
	txm db.TxRunner,
	logger logger.Interface,
) *UpdateEntryUseCase {
	return &UpdateEntryUseCase{
		ticketRepo: ticketRepo,
		txm:        txm,
		logger:     logger,
	}
}

func (uc *UpdateEntryUseCase) Execute(ctx context.Context, cmd UpdateEntryCommand) (*dto.TicketDTO, error) {
	uc.logger.Infow("executing update entry use case", "ticket_id", cmd.TicketID, "entry_id", cmd.EntryID)

	if err := requireID("ticket_id", cmd.TicketID); err != nil {
		return nil, err
	}
	if err := requireID("entry_id", cmd.EntryID); err != nil {
		return nil, err
	}

	t, err := mutateTicket(ctx, uc.txm, uc.ticketRepo, cmd.TicketID, func(t *ticket.Ticket) error {
		_, err := t.UpdateEntry(cmd.EntryID, cmd.Step, cmd.Solution)
		return err
	})
	if err != nil {
		uc.logger.Errorw("failed to update entry",
			"ticket_id", cmd.TicketID,
			"entry_id", cmd.EntryID,
			"error", err)
		return nil, toAppError(err, "failed to update entry", "ticket_id="+cmd.TicketID, "entry_id="+cmd.EntryID)
	}

	uc.logger.Infow("entry updated successfully", "ticket_id", cmd.TicketID, "entry_id", cmd.EntryID)
	return dto.ToTicketDTO(t), nil
}
