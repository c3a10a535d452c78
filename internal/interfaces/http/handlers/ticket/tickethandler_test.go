package ticket

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ticketdto "github.com/orris-inc/ticketdesk/internal/application/ticket/dto"
	"github.com/orris-inc/ticketdesk/internal/application/ticket/usecases"
	"github.com/orris-inc/ticketdesk/internal/interfaces/http/handlers/testutil"
	"github.com/orris-inc/ticketdesk/internal/shared/errors"
)

func TestTicketHandler_CreateTicket_Success(t *testing.T) {
	mockUC := &mockCreateTicketUC{result: sampleTicket()}
	handler := newTestTicketHandler(ticketDeps{createTicketUC: mockUC})

	reqBody := CreateTicketRequest{
		Title: "Printer offline",
		Entries: []EntryRequest{
			{Step: "Power cycled printer", Solution: "Came back online"},
		},
	}
	c, w := testutil.NewTestContext(http.MethodPost, "/api/tickets", reqBody)

	handler.CreateTicket(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)

	var got ticketdto.TicketDTO
	require.NoError(t, json.Unmarshal(resp.Data, &got))
	assert.Equal(t, testTicketID, got.ID)

	require.Len(t, mockUC.got.Entries, 1)
	assert.Equal(t, "Power cycled printer", mockUC.got.Entries[0].Step)
}

func TestTicketHandler_CreateTicket_BindError(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"missing title", map[string]any{"entries": []any{}}},
		{"blank title", map[string]any{"title": "  \t "}},
		{"entry without solution", map[string]any{
			"title":   "x",
			"entries": []map[string]string{{"step": "only step"}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestTicketHandler(ticketDeps{})
			c, w := testutil.NewTestContext(http.MethodPost, "/api/tickets", tt.body)

			handler.CreateTicket(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)

			var resp testutil.APIResponse
			require.NoError(t, testutil.ParseResponse(w, &resp))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "validation_error", resp.Error.Type)
		})
	}
}

func TestTicketHandler_CreateTicket_UseCaseError(t *testing.T) {
	mockUC := &mockCreateTicketUC{
		err: errors.NewValidationError("entry step must not be empty", "entry_index=0"),
	}
	handler := newTestTicketHandler(ticketDeps{createTicketUC: mockUC})

	reqBody := CreateTicketRequest{
		Title:   "Printer offline",
		Entries: []EntryRequest{{Step: "<p> </p>", Solution: "x"}},
	}
	c, w := testutil.NewTestContext(http.MethodPost, "/api/tickets", reqBody)

	handler.CreateTicket(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "entry_index=0", resp.Error.Details)
	assert.False(t, resp.Error.Retryable)
}

func TestTicketHandler_GetTicket_Success(t *testing.T) {
	handler := newTestTicketHandler(ticketDeps{getTicketUC: &mockGetTicketUC{result: sampleTicket()}})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/tickets/"+testTicketID, nil)
	testutil.SetURLParam(c, "id", testTicketID)

	handler.GetTicket(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	assert.True(t, resp.Success)
}

func TestTicketHandler_GetTicket_InvalidID(t *testing.T) {
	handler := newTestTicketHandler(ticketDeps{})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/tickets/42", nil)
	testutil.SetURLParam(c, "id", "42")

	handler.GetTicket(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "field=id", resp.Error.Details)
}

func TestTicketHandler_GetTicket_NotFound(t *testing.T) {
	mockUC := &mockGetTicketUC{err: errors.NewNotFoundError("ticket not found", "ticket_id="+testTicketID)}
	handler := newTestTicketHandler(ticketDeps{getTicketUC: mockUC})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/tickets/"+testTicketID, nil)
	testutil.SetURLParam(c, "id", testTicketID)

	handler.GetTicket(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTicketHandler_ListTickets(t *testing.T) {
	mockUC := &mockListTicketsUC{
		result: &usecases.ListTicketsResult{
			Tickets: []*ticketdto.TicketDTO{{
				ID:    testTicketID,
				Title: "Printer offline",
				Entries: []ticketdto.EntryDTO{
					{ID: "ent_1", Step: "Tray 2 jammed", Solution: "Cleared paper path"},
				},
			}},
			TotalCount: 1,
		},
	}
	handler := newTestTicketHandler(ticketDeps{listTicketsUC: mockUC})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/tickets", nil)
	testutil.SetQueryParams(c, map[string]string{"q": "printer"})

	handler.ListTickets(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "printer", mockUC.got.Query)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))

	var list struct {
		Items []ticketdto.TicketDTO `json:"items"`
		Total int                   `json:"total"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &list))
	assert.Equal(t, 1, list.Total)
	require.Len(t, list.Items, 1)
	assert.Equal(t, testTicketID, list.Items[0].ID)
	require.Len(t, list.Items[0].Entries, 1)
	assert.Equal(t, "Tray 2 jammed", list.Items[0].Entries[0].Step)
}

func TestTicketHandler_UpdateTicket_Conflict(t *testing.T) {
	mockUC := &mockUpdateTicketUC{
		err: errors.NewConflictError("ticket was modified concurrently", "ticket_id="+testTicketID),
	}
	handler := newTestTicketHandler(ticketDeps{updateTicketUC: mockUC})

	c, w := testutil.NewTestContext(http.MethodPatch, "/api/tickets/"+testTicketID, UpdateTicketRequest{Title: "Renamed"})
	testutil.SetURLParam(c, "id", testTicketID)

	handler.UpdateTicket(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Renamed", mockUC.got.Title)
	assert.Equal(t, testTicketID, mockUC.got.TicketID)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	require.NotNil(t, resp.Error)
	assert.True(t, resp.Error.Retryable)
}

func TestTicketHandler_DeleteTicket(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockUC := &mockDeleteTicketUC{result: &usecases.DeleteTicketResult{TicketID: testTicketID, FilesRemoved: 3}}
		handler := newTestTicketHandler(ticketDeps{deleteTicketUC: mockUC})

		c, w := testutil.NewTestContext(http.MethodDelete, "/api/tickets/"+testTicketID, nil)
		testutil.SetURLParam(c, "id", testTicketID)

		handler.DeleteTicket(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		var got DeleteTicketResponse
		require.NoError(t, json.Unmarshal(resp.Data, &got))
		assert.Equal(t, 3, got.FilesRemoved)
	})

	t.Run("storage failure is retryable", func(t *testing.T) {
		mockUC := &mockDeleteTicketUC{err: errors.NewStorageError("failed to delete attachment file")}
		handler := newTestTicketHandler(ticketDeps{deleteTicketUC: mockUC})

		c, w := testutil.NewTestContext(http.MethodDelete, "/api/tickets/"+testTicketID, nil)
		testutil.SetURLParam(c, "id", testTicketID)

		handler.DeleteTicket(c)

		assert.Equal(t, http.StatusInternalServerError, w.Code)

		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "storage_error", resp.Error.Type)
		assert.True(t, resp.Error.Retryable)
	})
}
