package usecases

import (
	"context"

	"github.com/orris-inc/ticketdesk/internal/application/ticket/dto"
	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/shared/db"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

type DeleteAttachmentCommand struct {
	TicketID     string
	EntryID      string
	AttachmentID string
}

type DeleteAttachmentUseCase struct {
	ticketRepo ticket.Repository
	teardown   *Teardown
	txm        db.TxRunner
	logger     logger.Interface
}

func NewDeleteAttachmentUseCase(
	ticketRepo ticket.Repository,
	teardown *Teardown,
	txm db.TxRunner,
	logger logger.Interface,
) *DeleteAttachmentUseCase {
	return &DeleteAttachmentUseCase{
		ticketRepo: ticketRepo,
		teardown:   teardown,
		txm:        txm,
		logger:     logger,
	}
}

// Execute deletes the file and then the metadata. A storage failure aborts
// before the metadata changes.
func (uc *DeleteAttachmentUseCase) Execute(ctx context.Context, cmd DeleteAttachmentCommand) (*dto.TicketDTO, error) {
	uc.logger.Infow("executing delete attachment use case",
		"ticket_id", cmd.TicketID,
		"entry_id", cmd.EntryID,
		"attachment_id", cmd.AttachmentID)

	for _, f := range []struct{ name, value string }{
		{"ticket_id", cmd.TicketID},
		{"entry_id", cmd.EntryID},
		{"attachment_id", cmd.AttachmentID},
	} {
		if err := requireID(f.name, f.value); err != nil {
			return nil, err
		}
	}

	current, err := uc.ticketRepo.GetByID(ctx, cmd.TicketID)
	if err != nil {
		uc.logger.Errorw("failed to get ticket", "ticket_id", cmd.TicketID, "error", err)
		return nil, toAppError(err, "failed to get ticket", "ticket_id="+cmd.TicketID)
	}
	att, err := current.FindAttachment(cmd.EntryID, cmd.AttachmentID)
	if err != nil {
		return nil, err
	}

	if err := uc.teardown.Attachment(ctx, cmd.TicketID, cmd.EntryID, att); err != nil {
		return nil, err
	}

	t, err := mutateTicket(ctx, uc.txm, uc.ticketRepo, cmd.TicketID, func(t *ticket.Ticket) error {
		_, err := t.RemoveAttachment(cmd.EntryID, cmd.AttachmentID)
		return err
	})
	if err != nil {
		uc.logger.Errorw("failed to remove attachment metadata",
			"ticket_id", cmd.TicketID,
			"entry_id", cmd.EntryID,
			"attachment_id", cmd.AttachmentID,
			"error", err)
		return nil, toAppError(err, "failed to remove attachment",
			"ticket_id="+cmd.TicketID, "entry_id="+cmd.EntryID, "attachment_id="+cmd.AttachmentID)
	}

	uc.logger.Infow("attachment deleted successfully",
		"ticket_id", cmd.TicketID,
		"entry_id", cmd.EntryID,
		"attachment_id", cmd.AttachmentID)
	return dto.ToTicketDTO(t), nil
}
