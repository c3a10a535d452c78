package usecases

import (
	"context"

	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/shared/errors"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

// Teardown removes the physical files behind attachments. Entry and ticket
// deletion both go through it; a file that is already gone counts as removed.
type Teardown struct {
	store  FileStore
	logger logger.Interface
}

func NewTeardown(store FileStore, logger logger.Interface) *Teardown {
	return &Teardown{
		store:  store,
		logger: logger,
	}
}

// Ticket removes the files of every attachment of every entry of t.
func (td *Teardown) Ticket(ctx context.Context, t *ticket.Ticket) error {
	for _, e := range t.Entries() {
		if err := td.Entry(ctx, t.ID(), e); err != nil {
			return err
		}
	}
	return nil
}

// Entry removes the files of every attachment of e.
func (td *Teardown) Entry(ctx context.Context, ticketID string, e *ticket.Entry) error {
	for _, a := range e.Attachments() {
		if err := td.Attachment(ctx, ticketID, e.ID(), a); err != nil {
			return err
		}
	}
	return nil
}

// Remaining removes the files of attachments in current that were not in
// done, which is an earlier snapshot of the same entry whose files are
// already gone. A nil done means nothing was removed yet.
func (td *Teardown) Remaining(ctx context.Context, ticketID string, done, current *ticket.Entry) error {
	handled := map[string]struct{}{}
	if done != nil {
		for _, a := range done.Attachments() {
			handled[a.ID()] = struct{}{}
		}
	}
	for _, a := range current.Attachments() {
		if _, ok := handled[a.ID()]; ok {
			continue
		}
		if err := td.Attachment(ctx, ticketID, current.ID(), a); err != nil {
			return err
		}
	}
	return nil
}

// Attachment removes one file. Any failure other than the file already being
// absent is a storage error.
func (td *Teardown) Attachment(ctx context.Context, ticketID, entryID string, a *ticket.Attachment) error {
	err := td.store.Delete(ctx, a.StorageName())
	if err == nil {
		return nil
	}
	if isNotExist(err) {
		td.logger.Warnw("attachment file already missing, removing metadata anyway",
			"ticket_id", ticketID,
			"entry_id", entryID,
			"attachment_id", a.ID(),
			"storage_name", a.StorageName())
		return nil
	}

	td.logger.Errorw("failed to delete attachment file",
		"ticket_id", ticketID,
		"entry_id", entryID,
		"attachment_id", a.ID(),
		"storage_name", a.StorageName(),
		"error", err)
	return errors.NewStorageError("failed to delete attachment file",
		"ticket_id="+ticketID,
		"entry_id="+entryID,
		"attachment_id="+a.ID(),
	).WithCause(err)
}
