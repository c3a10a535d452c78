package mappers

import (
	"fmt"

	"gorm.io/datatypes"

	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/infrastructure/persistence/models"
	"github.com/orris-inc/ticketdesk/internal/shared/biztime"
	"github.com/orris-inc/ticketdesk/internal/shared/services/richtext"
)

// TicketMapper handles the conversion between Ticket aggregates and persistence models.
type TicketMapper interface {
	ToModel(t *ticket.Ticket) *models.TicketModel
	ToDomain(model *models.TicketModel) (*ticket.Ticket, error)
	ToDomainList(list []models.TicketModel) ([]*ticket.Ticket, error)
}

type TicketMapperImpl struct{}

func NewTicketMapper() TicketMapper {
	return &TicketMapperImpl{}
}

func (m *TicketMapperImpl) ToModel(t *ticket.Ticket) *models.TicketModel {
	entries := t.Entries()
	docs := make([]models.EntryDocument, 0, len(entries))
	attachmentCount := 0

	for _, e := range entries {
		atts := e.Attachments()
		attDocs := make([]models.AttachmentDocument, 0, len(atts))
		for _, a := range atts {
			attDocs = append(attDocs, models.AttachmentDocument{
				ID:           a.ID(),
				OriginalName: a.OriginalName(),
				StorageName:  a.StorageName(),
				ContentType:  a.ContentType(),
				Checksum:     a.Checksum(),
				SizeBytes:    a.SizeBytes(),
				UploadedAt:   biztime.ToUnixMilli(a.UploadedAt()),
			})
		}
		attachmentCount += len(attDocs)

		docs = append(docs, models.EntryDocument{
			ID:          e.ID(),
			Step:        e.Step(),
			Solution:    e.Solution(),
			Attachments: attDocs,
			AddedAt:     biztime.ToUnixMilli(e.AddedAt()),
		})
	}

	return &models.TicketModel{
		ID:              t.ID(),
		Title:           t.Title(),
		Entries:         datatypes.NewJSONType(docs),
		SearchText:      t.SearchText(),
		EntryCount:      len(docs),
		AttachmentCount: attachmentCount,
		Version:         t.Version(),
		CreatedAt:       biztime.ToUnixMilli(t.CreatedAt()),
		UpdatedAt:       biztime.ToUnixMilli(t.UpdatedAt()),
	}
}

func (m *TicketMapperImpl) ToDomain(model *models.TicketModel) (*ticket.Ticket, error) {
	if model == nil {
		return nil, nil
	}

	docs := model.Entries.Data()
	entries := make([]*ticket.Entry, 0, len(docs))
	upgraded := 0
	for _, d := range docs {
		atts := make([]*ticket.Attachment, 0, len(d.Attachments))
		for _, ad := range d.Attachments {
			a, err := ticket.ReconstructAttachment(
				ad.ID,
				ad.OriginalName,
				ad.StorageName,
				ad.ContentType,
				ad.Checksum,
				ad.SizeBytes,
				biztime.FromUnixMilli(ad.UploadedAt),
			)
			if err != nil {
				return nil, fmt.Errorf("ticket %s entry %s: %w", model.ID, d.ID, err)
			}
			atts = append(atts, a)
		}

		step := d.Step
		if richtext.IsBlank(step) && !richtext.IsBlank(d.Problem) {
			step = d.Problem
			upgraded++
		}

		e, err := ticket.ReconstructEntry(d.ID, step, d.Solution, atts, biztime.FromUnixMilli(d.AddedAt))
		if err != nil {
			return nil, fmt.Errorf("ticket %s: %w", model.ID, err)
		}
		entries = append(entries, e)
	}

	t, err := ticket.ReconstructTicket(
		model.ID,
		model.Title,
		entries,
		model.Version,
		biztime.FromUnixMilli(model.CreatedAt),
		biztime.FromUnixMilli(model.UpdatedAt),
	)
	if err != nil {
		return nil, err
	}
	if upgraded > 0 {
		t.NoteUpgradedFields(upgraded)
	}
	return t, nil
}

func (m *TicketMapperImpl) ToDomainList(list []models.TicketModel) ([]*ticket.Ticket, error) {
	out := make([]*ticket.Ticket, 0, len(list))
	for i := range list {
		t, err := m.ToDomain(&list[i])
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}
