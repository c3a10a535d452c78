package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/ticketdesk/internal/infrastructure/persistence/models"
	"github.com/orris-inc/ticketdesk/internal/shared/db"
	"github.com/orris-inc/ticketdesk/internal/shared/errors"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

// TicketRepositoryImpl implements ticket.Repository on gorm.
type TicketRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.TicketMapper
	logger logger.Interface
}

func NewTicketRepository(db *gorm.DB, logger logger.Interface) ticket.Repository {
	return &TicketRepositoryImpl{
		db:     db,
		mapper: mappers.NewTicketMapper(),
		logger: logger,
	}
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, t *ticket.Ticket) error {
	model := r.mapper.ToModel(t)
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Create(model).Error; err != nil {
		if errors.IsDuplicateError(err) {
			return errors.NewConflictError("ticket already exists", "ticket_id="+model.ID)
		}
		r.logger.Errorw("failed to create ticket", "ticket_id", model.ID, "error", err)
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	t.MarkPersisted()
	return nil
}

// Update writes the aggregate only if the stored version still equals the
// version it was loaded at.
func (r *TicketRepositoryImpl) Update(ctx context.Context, t *ticket.Ticket) error {
	if t.Version() == t.BaseVersion() {
		return nil
	}

	model := r.mapper.ToModel(t)
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Model(&models.TicketModel{}).
		Where("id = ? AND version = ?", model.ID, t.BaseVersion()).
		Updates(map[string]interface{}{
			"title":            model.Title,
			"entries":          model.Entries,
			"search_text":      model.SearchText,
			"entry_count":      model.EntryCount,
			"attachment_count": model.AttachmentCount,
			"version":          model.Version,
			"updated_at":       model.UpdatedAt,
		})

	if result.Error != nil {
		r.logger.Errorw("failed to update ticket", "ticket_id", model.ID, "error", result.Error)
		return fmt.Errorf("failed to update ticket: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		exists, err := r.exists(ctx, model.ID)
		if err != nil {
			return err
		}
		if !exists {
			return errors.NewNotFoundError("ticket not found", "ticket_id="+model.ID)
		}
		return errors.NewConflictError(
			"ticket was modified by another request",
			"ticket_id="+model.ID,
			fmt.Sprintf("expected_version=%d", t.BaseVersion()),
		)
	}

	t.MarkPersisted()
	return nil
}

func (r *TicketRepositoryImpl) Delete(ctx context.Context, ticketID string) error {
	tx := db.GetTxFromContext(ctx, r.db)

	result := tx.Where("id = ?", ticketID).Delete(&models.TicketModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete ticket", "ticket_id", ticketID, "error", result.Error)
		return fmt.Errorf("failed to delete ticket: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NewNotFoundError("ticket not found", "ticket_id="+ticketID)
	}

	return nil
}

func (r *TicketRepositoryImpl) GetByID(ctx context.Context, ticketID string) (*ticket.Ticket, error) {
	var model models.TicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Where("id = ?", ticketID).First(&model).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("ticket not found", "ticket_id="+ticketID)
		}
		r.logger.Errorw("failed to get ticket", "ticket_id", ticketID, "error", err)
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	t, err := r.mapper.ToDomain(&model)
	if err != nil {
		r.logger.Errorw("failed to map ticket model to entity", "ticket_id", ticketID, "error", err)
		return nil, fmt.Errorf("failed to map ticket: %w", err)
	}

	return t, nil
}

// List returns every ticket matching filter, newest-created first.
func (r *TicketRepositoryImpl) List(ctx context.Context, filter ticket.ListFilter) ([]*ticket.Ticket, error) {
	var list []models.TicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	q := strings.ToLower(strings.TrimSpace(filter.Query))
	if err := tx.Scopes(db.TitleOrBodyContains(q), db.NewestFirst()).Find(&list).Error; err != nil {
		r.logger.Errorw("failed to list tickets", "query", q, "error", err)
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}

	tickets, err := r.mapper.ToDomainList(list)
	if err != nil {
		r.logger.Errorw("failed to map ticket models to entities", "error", err)
		return nil, fmt.Errorf("failed to map tickets: %w", err)
	}

	return tickets, nil
}

// FindByStorageName narrows candidates in the database by the stored entries
// document, then confirms the exact attachment on the mapped aggregate.
func (r *TicketRepositoryImpl) FindByStorageName(ctx context.Context, storageName string) (*ticket.Ticket, error) {
	var list []models.TicketModel
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Scopes(db.TextContains("entries", storageName), db.NewestFirst()).Find(&list).Error; err != nil {
		r.logger.Errorw("failed to find ticket by storage name", "storage_name", storageName, "error", err)
		return nil, fmt.Errorf("failed to find ticket by storage name: %w", err)
	}

	for i := range list {
		t, err := r.mapper.ToDomain(&list[i])
		if err != nil {
			r.logger.Errorw("failed to map ticket model to entity", "ticket_id", list[i].ID, "error", err)
			return nil, fmt.Errorf("failed to map ticket: %w", err)
		}
		if t.AttachmentByStorageName(storageName) != nil {
			return t, nil
		}
	}

	return nil, errors.NewNotFoundError("attachment not found", "storage_name="+storageName)
}

func (r *TicketRepositoryImpl) exists(ctx context.Context, ticketID string) (bool, error) {
	var count int64
	tx := db.GetTxFromContext(ctx, r.db)

	if err := tx.Model(&models.TicketModel{}).Where("id = ?", ticketID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check ticket existence: %w", err)
	}
	return count > 0, nil
}
