package ticket

import (
	"github.com/orris-inc/ticketdesk/internal/application/ticket/dto"
	"github.com/orris-inc/ticketdesk/internal/application/ticket/usecases"
	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
)

type EntryRequest struct {
	Step     string `json:"step" binding:"required"`
	Solution string `json:"solution" binding:"required"`
}

type CreateTicketRequest struct {
	Title   string         `json:"title" binding:"required,notblank,max=200"`
	Entries []EntryRequest `json:"entries" binding:"omitempty,dive"`
}

func (r *CreateTicketRequest) ToCommand() usecases.CreateTicketCommand {
	entries := make([]ticket.EntryInput, 0, len(r.Entries))
	for _, e := range r.Entries {
		entries = append(entries, ticket.EntryInput{Step: e.Step, Solution: e.Solution})
	}
	return usecases.CreateTicketCommand{
		Title:   r.Title,
		Entries: entries,
	}
}

type UpdateTicketRequest struct {
	Title string `json:"title" binding:"required,notblank,max=200"`
}

type AddEntryRequest struct {
	Step     string `json:"step" binding:"required"`
	Solution string `json:"solution" binding:"required"`
}

// UpdateEntryRequest is a partial update; an omitted field is left unchanged.
type UpdateEntryRequest struct {
	Step     *string `json:"step"`
	Solution *string `json:"solution"`
}

type SearchRequest struct {
	Query string `form:"q"`
	Limit *int   `form:"limit" binding:"omitempty,gte=0,lte=100"`
}

// DefaultSearchLimit matches the ten results the search view shows.
const DefaultSearchLimit = 10

func (r *SearchRequest) ToQuery() usecases.SearchEntriesQuery {
	limit := DefaultSearchLimit
	if r.Limit != nil {
		limit = *r.Limit
	}
	return usecases.SearchEntriesQuery{
		Query: r.Query,
		Limit: limit,
	}
}

type SearchResponse struct {
	Query string             `json:"query"`
	Total int                `json:"total"`
	Hits  []dto.SearchHitDTO `json:"hits"`
}

type DeleteTicketResponse struct {
	TicketID     string `json:"ticket_id"`
	FilesRemoved int    `json:"files_removed"`
}

type AddEntryResponse struct {
	EntryID string         `json:"entry_id"`
	Ticket  *dto.TicketDTO `json:"ticket"`
}

type UploadAttachmentResponse struct {
	Attachment dto.AttachmentDTO `json:"attachment"`
	Ticket     *dto.TicketDTO    `json:"ticket"`
}

type SaveEntryResponse struct {
	Ticket               *dto.TicketDTO `json:"ticket"`
	AddedAttachmentIDs   []string       `json:"added_attachment_ids"`
	RemovedAttachmentIDs []string       `json:"removed_attachment_ids"`
	OrphanedFiles        []string       `json:"orphaned_files,omitempty"`
}
