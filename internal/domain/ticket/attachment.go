package ticket

import (
	"strings"
	"time"

	"github.com/orris-inc/ticketdesk/internal/shared/errors"
	"github.com/orris-inc/ticketdesk/internal/shared/id"
)

// UploadsPathPrefix is the public path under which stored files are served.
const UploadsPathPrefix = "/uploads/"

// Attachment is the metadata of one uploaded file. The bytes live in the
// attachment store under StorageName.
type Attachment struct {
	id           string
	originalName string
	storageName  string
	contentType  string
	checksum     string
	sizeBytes    int64
	uploadedAt   time.Time
}

// FileMeta describes bytes already written to the attachment store.
type FileMeta struct {
	OriginalName string
	StorageName  string
	ContentType  string
	Checksum     string
	SizeBytes    int64
}

// NewAttachment records metadata for a stored file. uploadedAt is assigned
// when the attachment is added to an entry.
func NewAttachment(meta FileMeta) (*Attachment, error) {
	name := strings.TrimSpace(meta.OriginalName)
	if name == "" {
		return nil, errors.NewValidationError("original file name is required")
	}
	if strings.TrimSpace(meta.StorageName) == "" {
		return nil, errors.NewValidationError("storage name is required")
	}
	if meta.SizeBytes < 0 {
		return nil, errors.NewValidationError("file size cannot be negative")
	}

	return &Attachment{
		id:           id.NewAttachmentID(),
		originalName: name,
		storageName:  meta.StorageName,
		contentType:  meta.ContentType,
		checksum:     meta.Checksum,
		sizeBytes:    meta.SizeBytes,
	}, nil
}

func ReconstructAttachment(
	attachmentID string,
	originalName string,
	storageName string,
	contentType string,
	checksum string,
	sizeBytes int64,
	uploadedAt time.Time,
) (*Attachment, error) {
	if attachmentID == "" {
		return nil, errors.NewInternalError("attachment ID cannot be empty")
	}
	if storageName == "" {
		return nil, errors.NewInternalError("attachment storage name cannot be empty", "attachment_id="+attachmentID)
	}

	return &Attachment{
		id:           attachmentID,
		originalName: originalName,
		storageName:  storageName,
		contentType:  contentType,
		checksum:     checksum,
		sizeBytes:    sizeBytes,
		uploadedAt:   uploadedAt,
	}, nil
}

func (a *Attachment) ID() string            { return a.id }
func (a *Attachment) OriginalName() string  { return a.originalName }
func (a *Attachment) StorageName() string   { return a.storageName }
func (a *Attachment) ContentType() string   { return a.contentType }
func (a *Attachment) Checksum() string      { return a.checksum }
func (a *Attachment) SizeBytes() int64      { return a.sizeBytes }
func (a *Attachment) UploadedAt() time.Time { return a.uploadedAt }

// Path is the retrievable reference for the stored file.
func (a *Attachment) Path() string {
	return UploadsPathPrefix + a.storageName
}
