package usecases

import (
	"context"
	"io"

	"github.com/orris-inc/ticketdesk/internal/application/ticket/dto"
	"github.com/orris-inc/ticketdesk/internal/infrastructure/storage"
)

// FileStore is the part of the attachment store the use cases need.
type FileStore interface {
	Save(ctx context.Context, originalName string, r io.Reader, contentType string) (storage.StoredFile, error)
	Delete(ctx context.Context, storageName string) error
	List(ctx context.Context) ([]storage.Object, error)
}

// FileReader serves stored bytes for downloads.
type FileReader interface {
	Open(ctx context.Context, storageName string) (io.ReadCloser, storage.Object, error)
}

type CreateTicketExecutor interface {
	Execute(ctx context.Context, cmd CreateTicketCommand) (*dto.TicketDTO, error)
}

type GetTicketExecutor interface {
	Execute(ctx context.Context, query GetTicketQuery) (*dto.TicketDTO, error)
}

type ListTicketsExecutor interface {
	Execute(ctx context.Context, query ListTicketsQuery) (*ListTicketsResult, error)
}

type UpdateTicketExecutor interface {
	Execute(ctx context.Context, cmd UpdateTicketCommand) (*dto.TicketDTO, error)
}

type DeleteTicketExecutor interface {
	Execute(ctx context.Context, cmd DeleteTicketCommand) (*DeleteTicketResult, error)
}

type AddEntryExecutor interface {
	Execute(ctx context.Context, cmd AddEntryCommand) (*AddEntryResult, error)
}

type UpdateEntryExecutor interface {
	Execute(ctx context.Context, cmd UpdateEntryCommand) (*dto.TicketDTO, error)
}

type DeleteEntryExecutor interface {
	Execute(ctx context.Context, cmd DeleteEntryCommand) (*dto.TicketDTO, error)
}

type SaveEntryExecutor interface {
	Execute(ctx context.Context, cmd SaveEntryCommand) (*SaveEntryResult, error)
}

type UploadAttachmentExecutor interface {
	Execute(ctx context.Context, cmd UploadAttachmentCommand) (*UploadAttachmentResult, error)
}

type DeleteAttachmentExecutor interface {
	Execute(ctx context.Context, cmd DeleteAttachmentCommand) (*dto.TicketDTO, error)
}

type OpenAttachmentExecutor interface {
	Execute(ctx context.Context, query OpenAttachmentQuery) (*OpenAttachmentResult, error)
}

type SearchEntriesExecutor interface {
	Execute(ctx context.Context, query SearchEntriesQuery) (*SearchEntriesResult, error)
}

type RepairEntriesExecutor interface {
	Execute(ctx context.Context, cmd RepairEntriesCommand) (*RepairEntriesResult, error)
}

type ScanOrphansExecutor interface {
	Execute(ctx context.Context, cmd ScanOrphansCommand) (*dto.OrphanReport, error)
}
