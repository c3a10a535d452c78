package usecases

import (
	"context"

	"github.com/orris-inc/ticketdesk/internal/application/ticket/dto"
	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/shared/db"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

type AddEntryCommand struct {
	TicketID string
	Step     string
	Solution string
}

type AddEntryResult struct {
	EntryID string
	Ticket  *dto.TicketDTO
}

type AddEntryUseCase struct {
	ticketRepo ticket.Repository
	txm        db.TxRunner
	logger     logger.Interface
}

func NewAddEntryUseCase(
	ticketRepo ticket.Repository,
	txm db.TxRunner,
	logger logger.Interface,
) *AddEntryUseCase {
	return &AddEntryUseCase{
		ticketRepo: ticketRepo,
		txm:        txm,
		logger:     logger,
	}
}

func (uc *AddEntryUseCase) Execute(ctx context.Context, cmd AddEntryCommand) (*AddEntryResult, error) {
	uc.logger.Infow("executing add entry use case", "ticket_id", cmd.TicketID)

	if err := requireID("ticket_id", cmd.TicketID); err != nil {
		return nil, err
	}

	var entryID string
	t, err := mutateTicket(ctx, uc.txm, uc.ticketRepo, cmd.TicketID, func(t *ticket.Ticket) error {
		e, err := t.AddEntry(cmd.Step, cmd.Solution)
		if err != nil {
			return err
		}
		entryID = e.ID()
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to add entry", "ticket_id", cmd.TicketID, "error", err)
		return nil, toAppError(err, "failed to add entry", "ticket_id="+cmd.TicketID)
	}

	uc.logger.Infow("entry added successfully", "ticket_id", cmd.TicketID, "entry_id", entryID)

	return &AddEntryResult{
		EntryID: entryID,
		Ticket:  dto.ToTicketDTO(t),
	}, nil
}
