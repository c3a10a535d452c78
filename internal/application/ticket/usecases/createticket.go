package usecases

import (
	"context"

	"github.com/orris-inc/ticketdesk/internal/application/ticket/dto"
	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

type CreateTicketCommand struct {
	Title   string
	Entries []ticket.EntryInput
}

type CreateTicketUseCase struct {
	ticketRepo ticket.Repository
	logger     logger.Interface
}

func NewCreateTicketUseCase(
	ticketRepo ticket.Repository,
	logger logger.Interface,
) *CreateTicketUseCase {
	return &CreateTicketUseCase{
		ticketRepo: ticketRepo,
		logger:     logger,
	}
}

func (uc *CreateTicketUseCase) Execute(ctx context.Context, cmd CreateTicketCommand) (*dto.TicketDTO, error) {
	uc.logger.Infow("executing create ticket use case", "title", cmd.Title, "entries", len(cmd.Entries))

	newTicket, err := ticket.NewTicket(cmd.Title, cmd.Entries)
	if err != nil {
		uc.logger.Errorw("invalid create ticket command", "error", err)
		return nil, err
	}

	if err := uc.ticketRepo.Create(ctx, newTicket); err != nil {
		uc.logger.Errorw("failed to save ticket", "ticket_id", newTicket.ID(), "error", err)
		return nil, toAppError(err, "failed to save ticket", "ticket_id="+newTicket.ID())
	}

	uc.logger.Infow("ticket created successfully", "ticket_id", newTicket.ID())

	return dto.ToTicketDTO(newTicket), nil
}
