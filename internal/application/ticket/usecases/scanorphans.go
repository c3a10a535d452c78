package usecases

import (
	"context"
	"sort"
	"time"

	"github.com/orris-inc/ticketdesk/internal/application/ticket/dto"
	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/shared/biztime"
	"github.com/orris-inc/ticketdesk/internal/shared/db"
	"github.com/orris-inc/ticketdesk/internal/shared/errors"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

// DefaultOrphanMinAge protects files that may belong to an upload whose
// metadata write has not committed yet.
const DefaultOrphanMinAge = time.Hour

type ScanOrphansCommand struct {
	// Prune deletes orphan files and drops dangling attachment metadata.
	Prune bool
	// MinAge skips stored files younger than this. Zero uses DefaultOrphanMinAge.
	MinAge time.Duration
}

// ScanOrphansUseCase compares the attachment store with attachment metadata
// and reports files nothing references and metadata whose file is missing.
type ScanOrphansUseCase struct {
	ticketRepo ticket.Repository
	store      FileStore
	txm        db.TxRunner
	logger     logger.Interface
}

func NewScanOrphansUseCase(
	ticketRepo ticket.Repository,
	store FileStore,
	txm db.TxRunner,
	logger logger.Interface,
) *ScanOrphansUseCase {
	return &ScanOrphansUseCase{
		ticketRepo: ticketRepo,
		store:      store,
		txm:        txm,
		logger:     logger,
	}
}

func (uc *ScanOrphansUseCase) Execute(ctx context.Context, cmd ScanOrphansCommand) (*dto.OrphanReport, error) {
	uc.logger.Infow("executing scan orphans use case", "prune", cmd.Prune)

	minAge := cmd.MinAge
	if minAge <= 0 {
		minAge = DefaultOrphanMinAge
	}
	cutoff := biztime.NowUTC().Add(-minAge)

	tickets, err := uc.ticketRepo.List(ctx, ticket.ListFilter{})
	if err != nil {
		uc.logger.Errorw("failed to list tickets", "error", err)
		return nil, toAppError(err, "failed to list tickets")
	}
	objects, err := uc.store.List(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list stored files", "error", err)
		return nil, errors.NewStorageError("failed to list stored files").WithCause(err)
	}

	stored := make(map[string]struct{}, len(objects))
	for _, o := range objects {
		stored[o.Name] = struct{}{}
	}

	report := &dto.OrphanReport{
		OrphanFiles:         []dto.OrphanFileDTO{},
		DanglingAttachments: []dto.DanglingAttachmentDTO{},
		Pruned:              cmd.Prune,
	}

	referenced := map[string]struct{}{}
	for _, t := range tickets {
		for _, e := range t.Entries() {
			for _, a := range e.Attachments() {
				referenced[a.StorageName()] = struct{}{}
				if _, ok := stored[a.StorageName()]; ok {
					continue
				}
				report.DanglingAttachments = append(report.DanglingAttachments, dto.DanglingAttachmentDTO{
					TicketID:     t.ID(),
					EntryID:      e.ID(),
					AttachmentID: a.ID(),
					StorageName:  a.StorageName(),
					OriginalName: a.OriginalName(),
				})
			}
		}
	}

	for _, o := range objects {
		if _, ok := referenced[o.Name]; ok {
			continue
		}
		if o.ModTime.After(cutoff) {
			report.SkippedRecent++
			continue
		}
		report.OrphanFiles = append(report.OrphanFiles, dto.OrphanFileDTO{
			StorageName: o.Name,
			SizeBytes:   o.SizeBytes,
			ModTime:     o.ModTime,
		})
	}
	sort.Slice(report.OrphanFiles, func(i, j int) bool {
		return report.OrphanFiles[i].StorageName < report.OrphanFiles[j].StorageName
	})

	if cmd.Prune {
		if err := uc.prune(ctx, report); err != nil {
			return report, err
		}
	}

	uc.logger.Infow("scan orphans completed",
		"orphan_files", len(report.OrphanFiles),
		"dangling_attachments", len(report.DanglingAttachments),
		"skipped_recent", report.SkippedRecent,
		"files_deleted", report.FilesDeleted,
		"metadata_removed", report.MetadataRemoved)
	return report, nil
}

func (uc *ScanOrphansUseCase) prune(ctx context.Context, report *dto.OrphanReport) error {
	for _, f := range report.OrphanFiles {
		if err := uc.store.Delete(ctx, f.StorageName); err != nil && !isNotExist(err) {
			uc.logger.Errorw("failed to delete orphan file", "storage_name", f.StorageName, "error", err)
			return errors.NewStorageError("failed to delete orphan file", "storage_name="+f.StorageName).WithCause(err)
		}
		report.FilesDeleted++
	}

	byTicket := map[string][]dto.DanglingAttachmentDTO{}
	var order []string
	for _, d := range report.DanglingAttachments {
		if _, ok := byTicket[d.TicketID]; !ok {
			order = append(order, d.TicketID)
		}
		byTicket[d.TicketID] = append(byTicket[d.TicketID], d)
	}

	for _, ticketID := range order {
		removed := 0
		_, err := mutateTicket(ctx, uc.txm, uc.ticketRepo, ticketID, func(t *ticket.Ticket) error {
			removed = 0
			for _, d := range byTicket[ticketID] {
				if _, err := t.RemoveAttachment(d.EntryID, d.AttachmentID); err != nil {
					if errors.IsNotFoundError(err) {
						continue
					}
					return err
				}
				removed++
			}
			return nil
		})
		if errors.IsNotFoundError(err) {
			continue
		}
		if err != nil {
			uc.logger.Errorw("failed to drop dangling attachments", "ticket_id", ticketID, "error", err)
			return toAppError(err, "failed to drop dangling attachments", "ticket_id="+ticketID)
		}
		report.MetadataRemoved += removed
	}
	return nil
}
