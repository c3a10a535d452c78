package ticket

import (
	"context"
)

// Repository persists whole Ticket aggregates. Update is conditional on the
// aggregate's BaseVersion and fails with a conflict error when the stored
// version has moved on.
type Repository interface {
	Create(ctx context.Context, t *Ticket) error
	Update(ctx context.Context, t *Ticket) error
	Delete(ctx context.Context, ticketID string) error
	GetByID(ctx context.Context, ticketID string) (*Ticket, error)
	List(ctx context.Context, filter ListFilter) ([]*Ticket, error)
	// FindByStorageName returns the ticket holding the attachment stored
	// under storageName, or a not-found error when no metadata references it.
	FindByStorageName(ctx context.Context, storageName string) (*Ticket, error)
}

// ListFilter narrows List. Results are always newest-created first.
type ListFilter struct {
	// Query matches the title or any entry text, case-insensitively.
	Query string
}
