package usecases

import (
	"context"

	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/shared/db"
	"github.com/orris-inc/ticketdesk/internal/shared/errors"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

type RepairEntriesCommand struct {
	// DryRun counts what would change without writing.
	DryRun bool
}

type RepairEntriesResult struct {
	TicketsScanned  int
	TicketsRepaired int
	FieldsRepaired  int
}

// RepairEntriesUseCase fills blank step or solution text left by older data
// with placeholders, so every stored entry satisfies the non-empty rule.
type RepairEntriesUseCase struct {
	ticketRepo ticket.Repository
	txm        db.TxRunner
	logger     logger.Interface
}

func NewRepairEntriesUseCase(
	ticketRepo ticket.Repository,
	txm db.TxRunner,
	logger logger.Interface,
) *RepairEntriesUseCase {
	return &RepairEntriesUseCase{
		ticketRepo: ticketRepo,
		txm:        txm,
		logger:     logger,
	}
}

func (uc *RepairEntriesUseCase) Execute(ctx context.Context, cmd RepairEntriesCommand) (*RepairEntriesResult, error) {
	uc.logger.Infow("executing repair entries use case", "dry_run", cmd.DryRun)

	tickets, err := uc.ticketRepo.List(ctx, ticket.ListFilter{})
	if err != nil {
		uc.logger.Errorw("failed to list tickets", "error", err)
		return nil, toAppError(err, "failed to list tickets")
	}

	result := &RepairEntriesResult{TicketsScanned: len(tickets)}
	for _, snapshot := range tickets {
		if cmd.DryRun {
			if n := snapshot.RepairBlankText(); n > 0 {
				result.TicketsRepaired++
				result.FieldsRepaired += n
			}
			continue
		}

		fixed := 0
		_, err := mutateTicket(ctx, uc.txm, uc.ticketRepo, snapshot.ID(), func(t *ticket.Ticket) error {
			fixed = t.RepairBlankText()
			return nil
		})
		if errors.IsNotFoundError(err) {
			continue
		}
		if err != nil {
			uc.logger.Errorw("failed to repair ticket", "ticket_id", snapshot.ID(), "error", err)
			return result, toAppError(err, "failed to repair ticket", "ticket_id="+snapshot.ID())
		}
		if fixed > 0 {
			result.TicketsRepaired++
			result.FieldsRepaired += fixed
			uc.logger.Infow("ticket repaired", "ticket_id", snapshot.ID(), "fields", fixed)
		}
	}

	uc.logger.Infow("repair entries completed",
		"tickets_scanned", result.TicketsScanned,
		"tickets_repaired", result.TicketsRepaired,
		"fields_repaired", result.FieldsRepaired)
	return result, nil
}
