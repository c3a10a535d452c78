package usecases

import (
	"context"

	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/shared/db"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

type DeleteTicketCommand struct {
	TicketID string
}

type DeleteTicketResult struct {
	TicketID     string
	FilesRemoved int
}

type DeleteTicketUseCase struct {
	ticketRepo ticket.Repository
	teardown   *Teardown
	txm        db.TxRunner
	logger     logger.Interface
}

func NewDeleteTicketUseCase(
	ticketRepo ticket.Repository,
	teardown *Teardown,
	txm db.TxRunner,
	logger logger.Interface,
) *DeleteTicketUseCase {
	return &DeleteTicketUseCase{
		ticketRepo: ticketRepo,
		teardown:   teardown,
		txm:        txm,
		logger:     logger,
	}
}

// Execute removes every attachment file first and the record last, so a
// storage failure leaves the ticket fully intact and retryable.
func (uc *DeleteTicketUseCase) Execute(ctx context.Context, cmd DeleteTicketCommand) (*DeleteTicketResult, error) {
	uc.logger.Infow("executing delete ticket use case", "ticket_id", cmd.TicketID)

	if err := requireID("ticket_id", cmd.TicketID); err != nil {
		return nil, err
	}

	t, err := uc.ticketRepo.GetByID(ctx, cmd.TicketID)
	if err != nil {
		uc.logger.Errorw("failed to get ticket", "ticket_id", cmd.TicketID, "error", err)
		return nil, toAppError(err, "failed to get ticket", "ticket_id="+cmd.TicketID)
	}

	if err := uc.teardown.Ticket(ctx, t); err != nil {
		return nil, err
	}

	err = uc.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		latest, err := uc.ticketRepo.GetByID(ctx, cmd.TicketID)
		if err != nil {
			return err
		}
		for _, e := range latest.Entries() {
			// Entries added after the first pass have no files removed yet.
			seen, _, _ := t.FindEntry(e.ID())
			if err := uc.teardown.Remaining(ctx, cmd.TicketID, seen, e); err != nil {
				return err
			}
		}
		return uc.ticketRepo.Delete(ctx, cmd.TicketID)
	})
	if err != nil {
		uc.logger.Errorw("failed to delete ticket", "ticket_id", cmd.TicketID, "error", err)
		return nil, toAppError(err, "failed to delete ticket", "ticket_id="+cmd.TicketID)
	}

	files := len(t.Attachments())
	uc.logger.Infow("ticket deleted successfully", "ticket_id", cmd.TicketID, "files_removed", files)

	return &DeleteTicketResult{
		TicketID:     cmd.TicketID,
		FilesRemoved: files,
	}, nil
}
