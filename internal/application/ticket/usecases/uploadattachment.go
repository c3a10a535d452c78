package usecases

import (
	"context"
	"io"
	"strings"

	"github.com/orris-inc/ticketdesk/internal/application/ticket/dto"
	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/shared/db"
	"github.com/orris-inc/ticketdesk/internal/shared/errors"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

// UploadFile is one incoming file. Content is read exactly once.
type UploadFile struct {
	OriginalName string
	ContentType  string
	Content      io.Reader
}

type UploadAttachmentCommand struct {
	TicketID string
	EntryID  string
	File     UploadFile
}

type UploadAttachmentResult struct {
	Attachment dto.AttachmentDTO
	Ticket     *dto.TicketDTO
}

type UploadAttachmentUseCase struct {
	ticketRepo ticket.Repository
	stager     *stager
	txm        db.TxRunner
	logger     logger.Interface
}

func NewUploadAttachmentUseCase(
	ticketRepo ticket.Repository,
	store FileStore,
	txm db.TxRunner,
	logger logger.Interface,
) *UploadAttachmentUseCase {
	return &UploadAttachmentUseCase{
		ticketRepo: ticketRepo,
		stager:     &stager{store: store, logger: logger},
		txm:        txm,
		logger:     logger,
	}
}

// Execute writes the bytes before any metadata exists. If recording the
// metadata then fails, the written object is removed again.
func (uc *UploadAttachmentUseCase) Execute(ctx context.Context, cmd UploadAttachmentCommand) (*UploadAttachmentResult, error) {
	uc.logger.Infow("executing upload attachment use case",
		"ticket_id", cmd.TicketID,
		"entry_id", cmd.EntryID,
		"original_name", cmd.File.OriginalName)

	if err := requireID("ticket_id", cmd.TicketID); err != nil {
		return nil, err
	}
	if err := requireID("entry_id", cmd.EntryID); err != nil {
		return nil, err
	}
	if err := validateUpload(cmd.File); err != nil {
		return nil, err
	}

	current, err := uc.ticketRepo.GetByID(ctx, cmd.TicketID)
	if err != nil {
		uc.logger.Errorw("failed to get ticket", "ticket_id", cmd.TicketID, "error", err)
		return nil, toAppError(err, "failed to get ticket", "ticket_id="+cmd.TicketID)
	}
	if _, _, err := current.FindEntry(cmd.EntryID); err != nil {
		return nil, err
	}

	staged, err := uc.stager.stage(ctx, cmd.TicketID, cmd.EntryID, []UploadFile{cmd.File})
	if err != nil {
		return nil, err
	}
	att := staged[0]

	t, err := mutateTicket(ctx, uc.txm, uc.ticketRepo, cmd.TicketID, func(t *ticket.Ticket) error {
		return t.AddAttachment(cmd.EntryID, att)
	})
	if err != nil {
		uc.stager.discard(ctx, cmd.TicketID, staged)
		uc.logger.Errorw("failed to record attachment",
			"ticket_id", cmd.TicketID,
			"entry_id", cmd.EntryID,
			"error", err)
		return nil, toAppError(err, "failed to record attachment", "ticket_id="+cmd.TicketID, "entry_id="+cmd.EntryID)
	}

	uc.logger.Infow("attachment uploaded successfully",
		"ticket_id", cmd.TicketID,
		"entry_id", cmd.EntryID,
		"attachment_id", att.ID(),
		"storage_name", att.StorageName(),
		"size_bytes", att.SizeBytes())

	return &UploadAttachmentResult{
		Attachment: dto.ToAttachmentDTO(att),
		Ticket:     dto.ToTicketDTO(t),
	}, nil
}

func validateUpload(f UploadFile) error {
	if f.Content == nil {
		return errors.NewValidationError("file is required", "field=file")
	}
	if strings.TrimSpace(f.OriginalName) == "" {
		return errors.NewValidationError("file name is required", "field=file")
	}
	return nil
}

// stager writes uploads to the store ahead of the metadata write and can
// undo them if that write does not happen.
type stager struct {
	store  FileStore
	logger logger.Interface
}

// stage stores every file in order. On failure the files already written are
// removed and a storage error is returned.
func (s *stager) stage(ctx context.Context, ticketID, entryID string, files []UploadFile) ([]*ticket.Attachment, error) {
	staged := make([]*ticket.Attachment, 0, len(files))
	for _, f := range files {
		stored, err := s.store.Save(ctx, f.OriginalName, f.Content, f.ContentType)
		if err != nil {
			s.discard(ctx, ticketID, staged)
			s.logger.Errorw("failed to store attachment file",
				"ticket_id", ticketID,
				"entry_id", entryID,
				"original_name", f.OriginalName,
				"error", err)
			return nil, errors.NewStorageError("failed to store attachment file",
				"ticket_id="+ticketID,
				"entry_id="+entryID,
				"original_name="+f.OriginalName,
			).WithCause(err)
		}

		att, err := ticket.NewAttachment(ticket.FileMeta{
			OriginalName: f.OriginalName,
			StorageName:  stored.StorageName,
			ContentType:  f.ContentType,
			Checksum:     stored.Checksum,
			SizeBytes:    stored.SizeBytes,
		})
		if err != nil {
			s.discardName(ctx, ticketID, stored.StorageName)
			s.discard(ctx, ticketID, staged)
			return nil, err
		}
		staged = append(staged, att)
	}
	return staged, nil
}

// discard removes staged objects. Failures only leave orphans, so they are
// logged rather than returned.
func (s *stager) discard(ctx context.Context, ticketID string, staged []*ticket.Attachment) {
	for _, a := range staged {
		s.discardName(ctx, ticketID, a.StorageName())
	}
}

func (s *stager) discardName(ctx context.Context, ticketID, storageName string) {
	if err := s.store.Delete(context.WithoutCancel(ctx), storageName); err != nil && !isNotExist(err) {
		s.logger.Warnw("failed to remove staged attachment file",
			"ticket_id", ticketID,
			"storage_name", storageName,
			"error", err)
	}
}
