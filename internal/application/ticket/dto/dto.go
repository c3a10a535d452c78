package dto

import (
	"html"
	"time"

	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/shared/services/richtext"
)

type TicketDTO struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Version   int        `json:"version"`
	Entries   []EntryDTO `json:"entries"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type EntryDTO struct {
	ID           string          `json:"id"`
	Position     int             `json:"position"`
	Step         string          `json:"step"`
	Solution     string          `json:"solution"`
	StepHTML     string          `json:"step_html"`
	SolutionHTML string          `json:"solution_html"`
	Attachments  []AttachmentDTO `json:"attachments"`
	AddedAt      time.Time       `json:"added_at"`
}

type AttachmentDTO struct {
	ID           string    `json:"id"`
	OriginalName string    `json:"original_name"`
	StorageName  string    `json:"storage_name"`
	ContentType  string    `json:"content_type,omitempty"`
	Checksum     string    `json:"checksum,omitempty"`
	SizeBytes    int64     `json:"size_bytes"`
	Path         string    `json:"path"`
	UploadedAt   time.Time `json:"uploaded_at"`
}

type SearchHitDTO struct {
	TicketID    string `json:"ticket_id"`
	TicketTitle string `json:"ticket_title"`
	EntryID     string `json:"entry_id"`
	Position    int    `json:"position"`
	Kind        string `json:"kind"`
	Preview     string `json:"preview"`
	FullText    string `json:"full_text"`
}

// OrphanReport lists the two kinds of store/metadata disagreement.
type OrphanReport struct {
	OrphanFiles         []OrphanFileDTO         `json:"orphan_files" yaml:"orphan_files"`
	DanglingAttachments []DanglingAttachmentDTO `json:"dangling_attachments" yaml:"dangling_attachments"`
	SkippedRecent       int                     `json:"skipped_recent" yaml:"skipped_recent"`
	Pruned              bool                    `json:"pruned" yaml:"pruned"`
	FilesDeleted        int                     `json:"files_deleted" yaml:"files_deleted"`
	MetadataRemoved     int                     `json:"metadata_removed" yaml:"metadata_removed"`
}

type OrphanFileDTO struct {
	StorageName string    `json:"storage_name" yaml:"storage_name"`
	SizeBytes   int64     `json:"size_bytes" yaml:"size_bytes"`
	ModTime     time.Time `json:"mod_time" yaml:"mod_time"`
}

type DanglingAttachmentDTO struct {
	TicketID     string `json:"ticket_id" yaml:"ticket_id"`
	EntryID      string `json:"entry_id" yaml:"entry_id"`
	AttachmentID string `json:"attachment_id" yaml:"attachment_id"`
	StorageName  string `json:"storage_name" yaml:"storage_name"`
	OriginalName string `json:"original_name" yaml:"original_name"`
}

func ToTicketDTO(t *ticket.Ticket) *TicketDTO {
	if t == nil {
		return nil
	}

	entries := t.Entries()
	entryDTOs := make([]EntryDTO, 0, len(entries))
	for pos, e := range entries {
		entryDTOs = append(entryDTOs, ToEntryDTO(e, pos))
	}

	return &TicketDTO{
		ID:        t.ID(),
		Title:     t.Title(),
		Version:   t.Version(),
		Entries:   entryDTOs,
		CreatedAt: t.CreatedAt(),
		UpdatedAt: t.UpdatedAt(),
	}
}

func ToEntryDTO(e *ticket.Entry, position int) EntryDTO {
	atts := e.Attachments()
	attDTOs := make([]AttachmentDTO, 0, len(atts))
	for _, a := range atts {
		attDTOs = append(attDTOs, ToAttachmentDTO(a))
	}

	return EntryDTO{
		ID:           e.ID(),
		Position:     position,
		Step:         e.Step(),
		Solution:     e.Solution(),
		StepHTML:     renderHTML(e.Step()),
		SolutionHTML: renderHTML(e.Solution()),
		Attachments:  attDTOs,
		AddedAt:      e.AddedAt(),
	}
}

func ToAttachmentDTO(a *ticket.Attachment) AttachmentDTO {
	return AttachmentDTO{
		ID:           a.ID(),
		OriginalName: a.OriginalName(),
		StorageName:  a.StorageName(),
		ContentType:  a.ContentType(),
		Checksum:     a.Checksum(),
		SizeBytes:    a.SizeBytes(),
		Path:         a.Path(),
		UploadedAt:   a.UploadedAt(),
	}
}

// ToTicketDTOs converts whole tickets, entries and attachments included.
func ToTicketDTOs(tickets []*ticket.Ticket) []*TicketDTO {
	out := make([]*TicketDTO, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, ToTicketDTO(t))
	}
	return out
}

func ToSearchHitDTOs(hits []ticket.SearchHit) []SearchHitDTO {
	out := make([]SearchHitDTO, 0, len(hits))
	for _, h := range hits {
		out = append(out, SearchHitDTO{
			TicketID:    h.TicketID,
			TicketTitle: h.TicketTitle,
			EntryID:     h.EntryID,
			Position:    h.Position,
			Kind:        string(h.Kind),
			Preview:     h.Preview,
			FullText:    h.FullText,
		})
	}
	return out
}

// renderHTML falls back to escaped plain text if markdown rendering fails.
func renderHTML(s string) string {
	out, err := richtext.Render(s)
	if err != nil {
		return html.EscapeString(richtext.PlainText(s))
	}
	return out
}
