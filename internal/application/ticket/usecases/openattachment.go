package usecases

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/infrastructure/storage"
	"github.com/orris-inc/ticketdesk/internal/shared/errors"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

type OpenAttachmentQuery struct {
	StorageName string
}

// OpenAttachmentResult carries an open file. The caller closes Content.
type OpenAttachmentResult struct {
	Content      io.ReadCloser
	StorageName  string
	OriginalName string
	ContentType  string
	SizeBytes    int64
}

type OpenAttachmentUseCase struct {
	ticketRepo ticket.Repository
	files      FileReader
	logger     logger.Interface
}

func NewOpenAttachmentUseCase(
	ticketRepo ticket.Repository,
	files FileReader,
	logger logger.Interface,
) *OpenAttachmentUseCase {
	return &OpenAttachmentUseCase{
		ticketRepo: ticketRepo,
		files:      files,
		logger:     logger,
	}
}

// Execute serves a stored file only while some entry's metadata references
// it, reporting the name and type it was uploaded with.
func (uc *OpenAttachmentUseCase) Execute(ctx context.Context, query OpenAttachmentQuery) (*OpenAttachmentResult, error) {
	if !storage.ValidName(query.StorageName) {
		return nil, errors.NewNotFoundError("file not found", "storage_name="+query.StorageName)
	}

	owner, err := uc.ticketRepo.FindByStorageName(ctx, query.StorageName)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil, errors.NewNotFoundError("file not found", "storage_name="+query.StorageName)
		}
		uc.logger.Errorw("failed to look up attachment metadata", "storage_name", query.StorageName, "error", err)
		return nil, toAppError(err, "failed to open attachment file")
	}
	a := owner.AttachmentByStorageName(query.StorageName)
	if a == nil {
		return nil, errors.NewNotFoundError("file not found", "storage_name="+query.StorageName)
	}

	rc, obj, err := uc.files.Open(ctx, query.StorageName)
	if err != nil {
		if isNotExist(err) || stderrors.Is(err, storage.ErrInvalidName) {
			uc.logger.Warnw("attachment metadata references a missing file",
				"ticket_id", owner.ID(),
				"storage_name", query.StorageName,
			)
			return nil, errors.NewNotFoundError("file not found", "storage_name="+query.StorageName)
		}
		uc.logger.Errorw("failed to open attachment file", "storage_name", query.StorageName, "error", err)
		return nil, errors.NewStorageError("failed to open attachment file", "storage_name="+query.StorageName).WithCause(err)
	}

	result := &OpenAttachmentResult{
		Content:      rc,
		StorageName:  query.StorageName,
		OriginalName: a.OriginalName(),
		ContentType:  a.ContentType(),
		SizeBytes:    obj.SizeBytes,
	}
	if result.ContentType == "" {
		result.ContentType = obj.ContentType
	}
	if result.ContentType == "" {
		result.ContentType = "application/octet-stream"
	}
	return result, nil
}
