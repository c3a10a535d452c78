package ticket

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/orris-inc/ticketdesk/internal/shared/errors"
	"github.com/orris-inc/ticketdesk/internal/shared/id"
	"github.com/orris-inc/ticketdesk/internal/shared/services/richtext"
)

// MaxTextLength bounds a single step or solution.
const MaxTextLength = 20000

// Entry is one step/solution pair. Its position in the ticket is not stored;
// it is whatever index the entry currently has.
type Entry struct {
	id          string
	step        string
	solution    string
	attachments []*Attachment
	addedAt     time.Time
}

func newEntry(step, solution string, addedAt time.Time) (*Entry, error) {
	s, err := normalizeText("step", step)
	if err != nil {
		return nil, err
	}
	sol, err := normalizeText("solution", solution)
	if err != nil {
		return nil, err
	}

	return &Entry{
		id:          id.NewEntryID(),
		step:        s,
		solution:    sol,
		attachments: []*Attachment{},
		addedAt:     addedAt,
	}, nil
}

// ReconstructEntry rebuilds a persisted entry. Blank text is accepted here so
// legacy rows can be loaded and repaired.
func ReconstructEntry(
	entryID string,
	step string,
	solution string,
	attachments []*Attachment,
	addedAt time.Time,
) (*Entry, error) {
	if entryID == "" {
		return nil, errors.NewInternalError("entry ID cannot be empty")
	}
	if attachments == nil {
		attachments = []*Attachment{}
	}

	return &Entry{
		id:          entryID,
		step:        step,
		solution:    solution,
		attachments: attachments,
		addedAt:     addedAt,
	}, nil
}

func (e *Entry) ID() string         { return e.id }
func (e *Entry) Step() string       { return e.step }
func (e *Entry) Solution() string   { return e.solution }
func (e *Entry) AddedAt() time.Time { return e.addedAt }

func (e *Entry) Attachments() []*Attachment {
	out := make([]*Attachment, len(e.attachments))
	copy(out, e.attachments)
	return out
}

// FindAttachment returns the attachment with the given id.
func (e *Entry) FindAttachment(attachmentID string) (*Attachment, error) {
	for _, a := range e.attachments {
		if a.id == attachmentID {
			return a, nil
		}
	}
	return nil, errors.NewNotFoundError("attachment not found", "entry_id="+e.id, "attachment_id="+attachmentID)
}

func (e *Entry) attachmentIndex(attachmentID string) int {
	for i, a := range e.attachments {
		if a.id == attachmentID {
			return i
		}
	}
	return -1
}

// normalizeText trims the text and rejects it when nothing visible remains
// once markup is ignored. The text is stored as sent; markup is only
// sanitized when rendered.
func normalizeText(field, raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	if richtext.IsBlank(clean) {
		return "", errors.NewValidationError(field+" is required", "field="+field)
	}
	if utf8.RuneCountInString(clean) > MaxTextLength {
		return "", errors.NewValidationError(field+" is too long", "field="+field)
	}
	return clean, nil
}
