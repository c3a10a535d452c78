package usecases

import (
	"context"

	"github.com/orris-inc/ticketdesk/internal/application/ticket/dto"
	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/shared/db"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

// SaveEntryCommand is the editor's single save: text changes, attachment
// removals and new uploads for one entry.
type SaveEntryCommand struct {
	TicketID            string
	EntryID             string
	Step                *string
	Solution            *string
	RemoveAttachmentIDs []string
	Files               []UploadFile
}

type SaveEntryResult struct {
	Ticket               *dto.TicketDTO
	AddedAttachmentIDs   []string
	RemovedAttachmentIDs []string
	// OrphanedFiles lists storage names whose deletion failed after the
	// metadata was committed.
	OrphanedFiles []string
}

type SaveEntryUseCase struct {
	ticketRepo ticket.Repository
	stager     *stager
	teardown   *Teardown
	txm        db.TxRunner
	logger     logger.Interface
}

func NewSaveEntryUseCase(
	ticketRepo ticket.Repository,
	store FileStore,
	teardown *Teardown,
	txm db.TxRunner,
	logger logger.Interface,
) *SaveEntryUseCase {
	return &SaveEntryUseCase{
		ticketRepo: ticketRepo,
		stager:     &stager{store: store, logger: logger},
		teardown:   teardown,
		txm:        txm,
		logger:     logger,
	}
}

// Execute validates everything, stages new files, commits all metadata
// changes in one conditional write and only then deletes removed files. The
// ticket is unchanged if anything before the commit fails.
func (uc *SaveEntryUseCase) Execute(ctx context.Context, cmd SaveEntryCommand) (*SaveEntryResult, error) {
	uc.logger.Infow("executing save entry use case",
		"ticket_id", cmd.TicketID,
		"entry_id", cmd.EntryID,
		"remove_count", len(cmd.RemoveAttachmentIDs),
		"upload_count", len(cmd.Files))

	if err := requireID("ticket_id", cmd.TicketID); err != nil {
		return nil, err
	}
	if err := requireID("entry_id", cmd.EntryID); err != nil {
		return nil, err
	}
	for _, f := range cmd.Files {
		if err := validateUpload(f); err != nil {
			return nil, err
		}
	}

	current, err := uc.ticketRepo.GetByID(ctx, cmd.TicketID)
	if err != nil {
		uc.logger.Errorw("failed to get ticket", "ticket_id", cmd.TicketID, "error", err)
		return nil, toAppError(err, "failed to get ticket", "ticket_id="+cmd.TicketID)
	}
	rev := ticket.EntryRevision{
		Step:                cmd.Step,
		Solution:            cmd.Solution,
		RemoveAttachmentIDs: cmd.RemoveAttachmentIDs,
	}
	if err := current.CheckRevision(cmd.EntryID, rev); err != nil {
		return nil, err
	}

	staged, err := uc.stager.stage(ctx, cmd.TicketID, cmd.EntryID, cmd.Files)
	if err != nil {
		return nil, err
	}
	rev.AddAttachments = staged

	var removed []*ticket.Attachment
	t, err := mutateTicket(ctx, uc.txm, uc.ticketRepo, cmd.TicketID, func(t *ticket.Ticket) error {
		var err error
		removed, err = t.ReviseEntry(cmd.EntryID, rev)
		return err
	})
	if err != nil {
		uc.stager.discard(ctx, cmd.TicketID, staged)
		uc.logger.Errorw("failed to save entry",
			"ticket_id", cmd.TicketID,
			"entry_id", cmd.EntryID,
			"error", err)
		return nil, toAppError(err, "failed to save entry", "ticket_id="+cmd.TicketID, "entry_id="+cmd.EntryID)
	}

	result := &SaveEntryResult{
		Ticket:               dto.ToTicketDTO(t),
		AddedAttachmentIDs:   make([]string, 0, len(staged)),
		RemovedAttachmentIDs: make([]string, 0, len(removed)),
	}
	for _, a := range staged {
		result.AddedAttachmentIDs = append(result.AddedAttachmentIDs, a.ID())
	}

	// The metadata is committed; a failed delete here only leaves an orphan
	// file for the maintenance scan.
	for _, a := range removed {
		result.RemovedAttachmentIDs = append(result.RemovedAttachmentIDs, a.ID())
		if err := uc.teardown.Attachment(ctx, cmd.TicketID, cmd.EntryID, a); err != nil {
			uc.logger.Warnw("attachment file left orphaned after save",
				"ticket_id", cmd.TicketID,
				"entry_id", cmd.EntryID,
				"attachment_id", a.ID(),
				"storage_name", a.StorageName(),
				"error", err)
			result.OrphanedFiles = append(result.OrphanedFiles, a.StorageName())
		}
	}

	uc.logger.Infow("entry saved successfully",
		"ticket_id", cmd.TicketID,
		"entry_id", cmd.EntryID,
		"added", len(result.AddedAttachmentIDs),
		"removed", len(result.RemovedAttachmentIDs))

	return result, nil
}
