package ticket

import (
	"context"
	"io"

	ticketdto "github.com/orris-inc/ticketdesk/internal/application/ticket/dto"
	"github.com/orris-inc/ticketdesk/internal/application/ticket/usecases"
	"github.com/orris-inc/ticketdesk/internal/interfaces/http/handlers/testutil"
)

const (
	testTicketID     = "tkt_A1b2C3d4E5f6G7h8"
	testEntryID      = "ent_Q9w8E7r6T5y4U3i2"
	testAttachmentID = "att_Z1x2C3v4B5n6M7k8"
)

type mockCreateTicketUC struct {
	got    usecases.CreateTicketCommand
	result *ticketdto.TicketDTO
	err    error
}

func (m *mockCreateTicketUC) Execute(_ context.Context, cmd usecases.CreateTicketCommand) (*ticketdto.TicketDTO, error) {
	m.got = cmd
	return m.result, m.err
}

type mockGetTicketUC struct {
	result *ticketdto.TicketDTO
	err    error
}

func (m *mockGetTicketUC) Execute(_ context.Context, _ usecases.GetTicketQuery) (*ticketdto.TicketDTO, error) {
	return m.result, m.err
}

type mockListTicketsUC struct {
	got    usecases.ListTicketsQuery
	result *usecases.ListTicketsResult
	err    error
}

func (m *mockListTicketsUC) Execute(_ context.Context, query usecases.ListTicketsQuery) (*usecases.ListTicketsResult, error) {
	m.got = query
	return m.result, m.err
}

type mockUpdateTicketUC struct {
	got    usecases.UpdateTicketCommand
	result *ticketdto.TicketDTO
	err    error
}

func (m *mockUpdateTicketUC) Execute(_ context.Context, cmd usecases.UpdateTicketCommand) (*ticketdto.TicketDTO, error) {
	m.got = cmd
	return m.result, m.err
}

type mockDeleteTicketUC struct {
	result *usecases.DeleteTicketResult
	err    error
}

func (m *mockDeleteTicketUC) Execute(_ context.Context, _ usecases.DeleteTicketCommand) (*usecases.DeleteTicketResult, error) {
	return m.result, m.err
}

type mockAddEntryUC struct {
	got    usecases.AddEntryCommand
	result *usecases.AddEntryResult
	err    error
}

func (m *mockAddEntryUC) Execute(_ context.Context, cmd usecases.AddEntryCommand) (*usecases.AddEntryResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockUpdateEntryUC struct {
	got    usecases.UpdateEntryCommand
	result *ticketdto.TicketDTO
	err    error
}

func (m *mockUpdateEntryUC) Execute(_ context.Context, cmd usecases.UpdateEntryCommand) (*ticketdto.TicketDTO, error) {
	m.got = cmd
	return m.result, m.err
}

type mockDeleteEntryUC struct {
	got    usecases.DeleteEntryCommand
	result *ticketdto.TicketDTO
	err    error
}

func (m *mockDeleteEntryUC) Execute(_ context.Context, cmd usecases.DeleteEntryCommand) (*ticketdto.TicketDTO, error) {
	m.got = cmd
	return m.result, m.err
}

// mockSaveEntryUC reads file contents during Execute, while the handler
// still holds the multipart parts open.
type mockSaveEntryUC struct {
	got      usecases.SaveEntryCommand
	contents []string
	result   *usecases.SaveEntryResult
	err      error
}

func (m *mockSaveEntryUC) Execute(_ context.Context, cmd usecases.SaveEntryCommand) (*usecases.SaveEntryResult, error) {
	m.got = cmd
	for _, f := range cmd.Files {
		b, _ := io.ReadAll(f.Content)
		m.contents = append(m.contents, string(b))
	}
	return m.result, m.err
}

type mockUploadAttachmentUC struct {
	got     usecases.UploadAttachmentCommand
	content string
	result  *usecases.UploadAttachmentResult
	err     error
}

func (m *mockUploadAttachmentUC) Execute(_ context.Context, cmd usecases.UploadAttachmentCommand) (*usecases.UploadAttachmentResult, error) {
	m.got = cmd
	if cmd.File.Content != nil {
		b, _ := io.ReadAll(cmd.File.Content)
		m.content = string(b)
	}
	return m.result, m.err
}

type mockDeleteAttachmentUC struct {
	got    usecases.DeleteAttachmentCommand
	result *ticketdto.TicketDTO
	err    error
}

func (m *mockDeleteAttachmentUC) Execute(_ context.Context, cmd usecases.DeleteAttachmentCommand) (*ticketdto.TicketDTO, error) {
	m.got = cmd
	return m.result, m.err
}

type mockOpenAttachmentUC struct {
	got    usecases.OpenAttachmentQuery
	result *usecases.OpenAttachmentResult
	err    error
}

func (m *mockOpenAttachmentUC) Execute(_ context.Context, query usecases.OpenAttachmentQuery) (*usecases.OpenAttachmentResult, error) {
	m.got = query
	return m.result, m.err
}

type mockSearchEntriesUC struct {
	got    usecases.SearchEntriesQuery
	result *usecases.SearchEntriesResult
	err    error
}

func (m *mockSearchEntriesUC) Execute(_ context.Context, query usecases.SearchEntriesQuery) (*usecases.SearchEntriesResult, error) {
	m.got = query
	return m.result, m.err
}

type ticketDeps struct {
	createTicketUC usecases.CreateTicketExecutor
	getTicketUC    usecases.GetTicketExecutor
	listTicketsUC  usecases.ListTicketsExecutor
	updateTicketUC usecases.UpdateTicketExecutor
	deleteTicketUC usecases.DeleteTicketExecutor
}

func newTestTicketHandler(deps ticketDeps) *TicketHandler {
	return NewTicketHandler(
		deps.createTicketUC,
		deps.getTicketUC,
		deps.listTicketsUC,
		deps.updateTicketUC,
		deps.deleteTicketUC,
		testutil.NewMockLogger(),
	)
}

func sampleTicket() *ticketdto.TicketDTO {
	return &ticketdto.TicketDTO{
		ID:      testTicketID,
		Title:   "Printer offline",
		Version: 1,
		Entries: []ticketdto.EntryDTO{{
			ID:          testEntryID,
			Position:    0,
			Step:        "Power cycled printer",
			Solution:    "Came back online",
			Attachments: []ticketdto.AttachmentDTO{},
		}},
	}
}
