package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/shared/db"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

type fixture struct {
	repo     *memRepo
	store    *mockFileStore
	txm      db.TxRunner
	log      logger.Interface
	teardown *Teardown
}

func newFixture() *fixture {
	store := newMockFileStore()
	log := logger.NewNop()
	return &fixture{
		repo:     newMemRepo(),
		store:    store,
		txm:      db.NoopTxRunner{},
		log:      log,
		teardown: NewTeardown(store, log),
	}
}

// seed creates a ticket with the given entries and returns it as stored.
func (f *fixture) seed(t *testing.T, title string, entries ...ticket.EntryInput) *ticket.Ticket {
	t.Helper()
	if len(entries) == 0 {
		entries = []ticket.EntryInput{{Step: "Initial step", Solution: "Initial solution"}}
	}
	tk, err := ticket.NewTicket(title, entries)
	require.NoError(t, err)
	require.NoError(t, f.repo.Create(context.Background(), tk))
	return f.repo.stored(tk.ID())
}

// attach uploads one file to an entry through the use case.
func (f *fixture) attach(t *testing.T, ticketID, entryID, name string) string {
	t.Helper()
	res, err := NewUploadAttachmentUseCase(f.repo, f.store, f.txm, f.log).Execute(context.Background(), UploadAttachmentCommand{
		TicketID: ticketID,
		EntryID:  entryID,
		File:     upload(name, "content of "+name),
	})
	require.NoError(t, err)
	return res.Attachment.ID
}
