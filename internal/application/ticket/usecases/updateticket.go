package usecases

import (
	"context"

	"github.com/orris-inc/ticketdesk/internal/application/ticket/dto"
	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/shared/db"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

type UpdateTicketCommand struct {
	TicketID string
	Title    string
}

type UpdateTicketUseCase struct {
	ticketRepo ticket.Repository
	txm        db.TxRunner
	logger     logger.Interface
}

func NewUpdateTicketUseCase(
	ticketRepo ticket.Repository,
	txm db.TxRunner,
	logger logger.Interface,
) *UpdateTicketUseCase {
	return &UpdateTicketUseCase{
		ticketRepo: ticketRepo,
		txm:        txm,
		logger:     logger,
	}
}

func (uc *UpdateTicketUseCase) Execute(ctx context.Context, cmd UpdateTicketCommand) (*dto.TicketDTO, error) {
	uc.logger.Infow("executing update ticket use case", "ticket_id", cmd.TicketID)

	if err := requireID("ticket_id", cmd.TicketID); err != nil {
		return nil, err
	}

	t, err := mutateTicket(ctx, uc.txm, uc.ticketRepo, cmd.TicketID, func(t *ticket.Ticket) error {
		return t.UpdateTitle(cmd.Title)
	})
	if err != nil {
		uc.logger.Errorw("failed to update ticket", "ticket_id", cmd.TicketID, "error", err)
		return nil, toAppError(err, "failed to update ticket", "ticket_id="+cmd.TicketID)
	}

	uc.logger.Infow("ticket updated successfully", "ticket_id", cmd.TicketID, "version", t.Version())
	return dto.ToTicketDTO(t), nil
}
