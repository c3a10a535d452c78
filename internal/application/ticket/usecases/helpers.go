package usecases

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/infrastructure/storage"
	"github.com/orris-inc/ticketdesk/internal/shared/db"
	"github.com/orris-inc/ticketdesk/internal/shared/errors"
)

// toAppError passes classified errors through and turns anything else into an
// internal error that keeps the original as its cause.
func toAppError(err error, message string, details ...string) error {
	if err == nil {
		return nil
	}
	if errors.IsAppError(err) {
		return err
	}
	return errors.NewInternalError(message, details...).WithCause(err)
}

func requireID(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewValidationError(field+" is required", "field="+field)
	}
	return nil
}

// mutateTicket is the read-modify-write every ticket change goes through: it
// loads the ticket inside a transaction, applies fn and writes the result back
// conditionally on the loaded version.
func mutateTicket(
	ctx context.Context,
	txm db.TxRunner,
	repo ticket.Repository,
	ticketID string,
	fn func(t *ticket.Ticket) error,
) (*ticket.Ticket, error) {
	var out *ticket.Ticket
	err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
		t, err := repo.GetByID(ctx, ticketID)
		if err != nil {
			return err
		}
		if err := fn(t); err != nil {
			return err
		}
		if err := repo.Update(ctx, t); err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func isNotExist(err error) bool {
	return stderrors.Is(err, storage.ErrNotExist)
}
