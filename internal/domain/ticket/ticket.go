package ticket

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/orris-inc/ticketdesk/internal/shared/biztime"
	"github.com/orris-inc/ticketdesk/internal/shared/errors"
	"github.com/orris-inc/ticketdesk/internal/shared/id"
	"github.com/orris-inc/ticketdesk/internal/shared/services/richtext"
)

const MaxTitleLength = 200

// Placeholders written by RepairBlankText.
const (
	MissingStepPlaceholder     = "[MISSING STEP]"
	MissingSolutionPlaceholder = "[MISSING SOLUTION]"
)

// Ticket is the aggregate root. Entries and their attachments are only ever
// changed through its methods, and every change moves updatedAt forward.
type Ticket struct {
	id          string
	title       string
	entries     []*Entry
	version     int
	baseVersion int
	createdAt   time.Time
	updatedAt   time.Time
	// fields loaded from an older storage shape and not yet written back
	upgraded int
}

// EntryInput is the text of an entry to be created.
type EntryInput struct {
	Step     string
	Solution string
}

func NewTicket(title string, initial []EntryInput) (*Ticket, error) {
	clean, err := normalizeTitle(title)
	if err != nil {
		return nil, err
	}

	now := biztime.NowUTC()
	t := &Ticket{
		id:        id.NewTicketID(),
		title:     clean,
		entries:   make([]*Entry, 0, len(initial)),
		version:   1,
		createdAt: now,
		updatedAt: now,
	}

	for i, in := range initial {
		e, err := newEntry(in.Step, in.Solution, now)
		if err != nil {
			if appErr := errors.GetAppError(err); appErr != nil {
				appErr.Details += ", entry_index=" + strconv.Itoa(i)
			}
			return nil, err
		}
		t.entries = append(t.entries, e)
	}

	return t, nil
}

func ReconstructTicket(
	ticketID string,
	title string,
	entries []*Entry,
	version int,
	createdAt, updatedAt time.Time,
) (*Ticket, error) {
	if ticketID == "" {
		return nil, errors.NewInternalError("ticket ID cannot be empty")
	}
	if version < 1 {
		return nil, errors.NewInternalError("ticket version must be positive", "ticket_id="+ticketID)
	}
	if entries == nil {
		entries = []*Entry{}
	}

	return &Ticket{
		id:          ticketID,
		title:       title,
		entries:     entries,
		version:     version,
		baseVersion: version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}, nil
}

func (t *Ticket) ID() string           { return t.id }
func (t *Ticket) Title() string        { return t.title }
func (t *Ticket) Version() int         { return t.version }
func (t *Ticket) CreatedAt() time.Time { return t.createdAt }
func (t *Ticket) UpdatedAt() time.Time { return t.updatedAt }

// BaseVersion is the version the aggregate had when it was loaded. A
// conditional write must match it.
func (t *Ticket) BaseVersion() int { return t.baseVersion }

// IsNew reports whether the ticket has never been persisted.
func (t *Ticket) IsNew() bool { return t.baseVersion == 0 }

// MarkPersisted records that the current version has been written.
func (t *Ticket) MarkPersisted() { t.baseVersion = t.version }

func (t *Ticket) Entries() []*Entry {
	out := make([]*Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Attachments walks every entry and returns all attachments in order.
func (t *Ticket) Attachments() []*Attachment {
	var out []*Attachment
	for _, e := range t.entries {
		out = append(out, e.attachments...)
	}
	return out
}

// FindEntry returns the entry and its current 0-based position.
func (t *Ticket) FindEntry(entryID string) (*Entry, int, error) {
	for i, e := range t.entries {
		if e.id == entryID {
			return e, i, nil
		}
	}
	return nil, -1, errors.NewNotFoundError("entry not found", "ticket_id="+t.id, "entry_id="+entryID)
}

// FindAttachment resolves an attachment through its entry.
func (t *Ticket) FindAttachment(entryID, attachmentID string) (*Attachment, error) {
	e, _, err := t.FindEntry(entryID)
	if err != nil {
		return nil, err
	}
	a, err := e.FindAttachment(attachmentID)
	if err != nil {
		return nil, errors.NewNotFoundError("attachment not found",
			"ticket_id="+t.id, "entry_id="+entryID, "attachment_id="+attachmentID)
	}
	return a, nil
}

// AttachmentByStorageName returns the attachment stored under storageName,
// or nil.
func (t *Ticket) AttachmentByStorageName(storageName string) *Attachment {
	for _, a := range t.Attachments() {
		if a.StorageName() == storageName {
			return a
		}
	}
	return nil
}

// UpdateTitle renames the ticket. Every accepted rename bumps UpdatedAt.
func (t *Ticket) UpdateTitle(title string) error {
	clean, err := normalizeTitle(title)
	if err != nil {
		return err
	}
	t.title = clean
	t.touch()
	return nil
}

// AddEntry appends a new entry at the end of the sequence.
func (t *Ticket) AddEntry(step, solution string) (*Entry, error) {
	now := t.nextTimestamp()
	e, err := newEntry(step, solution, now)
	if err != nil {
		return nil, err
	}
	t.entries = append(t.entries, e)
	t.touchAt(now)
	return e, nil
}

// UpdateEntry applies a partial update. A nil field is left unchanged; a
// non-nil field must not be blank. Both fields are validated before either is
// applied. Every accepted update bumps UpdatedAt, even when the text is the
// same.
func (t *Ticket) UpdateEntry(entryID string, step, solution *string) (*Entry, error) {
	e, _, err := t.FindEntry(entryID)
	if err != nil {
		return nil, err
	}

	newStep, newSolution := e.step, e.solution
	if step != nil {
		if newStep, err = normalizeText("step", *step); err != nil {
			return nil, err
		}
	}
	if solution != nil {
		if newSolution, err = normalizeText("solution", *solution); err != nil {
			return nil, err
		}
	}

	e.step, e.solution = newStep, newSolution
	t.touch()
	return e, nil
}

// RemoveEntry detaches the entry and returns it so the caller can tear down
// its attachments. Surviving entries keep their order and identifiers.
func (t *Ticket) RemoveEntry(entryID string) (*Entry, error) {
	e, idx, err := t.FindEntry(entryID)
	if err != nil {
		return nil, err
	}
	t.entries = append(t.entries[:idx:idx], t.entries[idx+1:]...)
	t.touch()
	return e, nil
}

// AddAttachment appends stored-file metadata to an entry.
func (t *Ticket) AddAttachment(entryID string, a *Attachment) error {
	if a == nil {
		return errors.NewValidationError("attachment cannot be nil")
	}
	e, _, err := t.FindEntry(entryID)
	if err != nil {
		return err
	}
	now := t.nextTimestamp()
	a.uploadedAt = now
	e.attachments = append(e.attachments, a)
	t.touchAt(now)
	return nil
}

// RemoveAttachment detaches attachment metadata and returns it.
func (t *Ticket) RemoveAttachment(entryID, attachmentID string) (*Attachment, error) {
	a, err := t.FindAttachment(entryID, attachmentID)
	if err != nil {
		return nil, err
	}
	e, _, _ := t.FindEntry(entryID)
	idx := e.attachmentIndex(attachmentID)
	e.attachments = append(e.attachments[:idx:idx], e.attachments[idx+1:]...)
	t.touch()
	return a, nil
}

// EntryRevision is a combined edit of one entry: optional new text, attachment
// removals and new attachments.
type EntryRevision struct {
	Step                *string
	Solution            *string
	RemoveAttachmentIDs []string
	AddAttachments      []*Attachment
}

type preparedRevision struct {
	entry     *Entry
	step      string
	solution  string
	removeIDs map[string]struct{}
	additions []*Attachment
}

func (t *Ticket) prepareRevision(entryID string, rev EntryRevision) (*preparedRevision, error) {
	e, _, err := t.FindEntry(entryID)
	if err != nil {
		return nil, err
	}

	p := &preparedRevision{
		entry:     e,
		step:      e.step,
		solution:  e.solution,
		removeIDs: make(map[string]struct{}, len(rev.RemoveAttachmentIDs)),
		additions: rev.AddAttachments,
	}
	if rev.Step != nil {
		if p.step, err = normalizeText("step", *rev.Step); err != nil {
			return nil, err
		}
	}
	if rev.Solution != nil {
		if p.solution, err = normalizeText("solution", *rev.Solution); err != nil {
			return nil, err
		}
	}

	for _, attID := range rev.RemoveAttachmentIDs {
		if e.attachmentIndex(attID) < 0 {
			return nil, errors.NewNotFoundError("attachment not found",
				"ticket_id="+t.id, "entry_id="+entryID, "attachment_id="+attID)
		}
		p.removeIDs[attID] = struct{}{}
	}
	for _, a := range rev.AddAttachments {
		if a == nil {
			return nil, errors.NewValidationError("attachment cannot be nil")
		}
	}
	return p, nil
}

// CheckRevision reports whether ReviseEntry would accept rev, without
// changing anything.
func (t *Ticket) CheckRevision(entryID string, rev EntryRevision) error {
	_, err := t.prepareRevision(entryID, rev)
	return err
}

// ReviseEntry applies an EntryRevision all-or-nothing: every part is checked
// before anything changes. It returns the detached attachments, whose files
// the caller must delete once the ticket is persisted.
func (t *Ticket) ReviseEntry(entryID string, rev EntryRevision) ([]*Attachment, error) {
	p, err := t.prepareRevision(entryID, rev)
	if err != nil {
		return nil, err
	}
	e := p.entry

	now := t.nextTimestamp()
	kept := make([]*Attachment, 0, len(e.attachments)+len(p.additions))
	var removed []*Attachment
	for _, a := range e.attachments {
		if _, drop := p.removeIDs[a.id]; drop {
			removed = append(removed, a)
			continue
		}
		kept = append(kept, a)
	}
	for _, a := range p.additions {
		a.uploadedAt = now
		kept = append(kept, a)
	}

	e.step, e.solution = p.step, p.solution
	e.attachments = kept
	t.touchAt(now)
	return removed, nil
}

// NoteUpgradedFields records that n fields were read from an older storage
// shape. RepairBlankText counts them so the next write persists the new shape.
func (t *Ticket) NoteUpgradedFields(n int) {
	t.upgraded += n
}

// RepairBlankText fills blank step or solution fields left by older data with
// placeholders and returns how many fields were changed, upgraded fields
// included.
func (t *Ticket) RepairBlankText() int {
	fixed := t.upgraded
	t.upgraded = 0
	for _, e := range t.entries {
		if richtext.IsBlank(e.step) {
			e.step = MissingStepPlaceholder
			fixed++
		}
		if richtext.IsBlank(e.solution) {
			e.solution = MissingSolutionPlaceholder
			fixed++
		}
	}
	if fixed > 0 {
		t.touch()
	}
	return fixed
}

// SearchText is the lower-cased plain text of every entry, one field per
// line. It backs the list filter.
func (t *Ticket) SearchText() string {
	var b strings.Builder
	for _, e := range t.entries {
		b.WriteString(strings.ToLower(richtext.PlainText(e.step)))
		b.WriteByte('\n')
		b.WriteString(strings.ToLower(richtext.PlainText(e.solution)))
		b.WriteByte('\n')
	}
	return b.String()
}

// nextTimestamp never goes backwards relative to updatedAt, keeping
// updatedAt >= every addedAt and uploadedAt even if the wall clock steps back.
func (t *Ticket) nextTimestamp() time.Time {
	now := biztime.NowUTC()
	if now.Before(t.updatedAt) {
		return t.updatedAt
	}
	return now
}

func (t *Ticket) touch() {
	t.touchAt(t.nextTimestamp())
}

// touchAt bumps the version at most once per load so a single persisted write
// is compared against the loaded version.
func (t *Ticket) touchAt(now time.Time) {
	t.updatedAt = now
	if t.version == t.baseVersion {
		t.version++
	}
}

func normalizeTitle(title string) (string, error) {
	clean := strings.TrimSpace(title)
	if clean == "" {
		return "", errors.NewValidationError("title is required", "field=title")
	}
	if utf8.RuneCountInString(clean) > MaxTitleLength {
		return "", errors.NewValidationError("title exceeds maximum length of 200 characters", "field=title")
	}
	return clean, nil
}
