package usecases

import (
	"context"

	"github.com/orris-inc/ticketdesk/internal/application/ticket/dto"
	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

type ListTicketsQuery struct {
	// Query optionally filters by title or entry text.
	Query string
}

type ListTicketsResult struct {
	Tickets    []*dto.TicketDTO
	TotalCount int
}

type ListTicketsUseCase struct {
	ticketRepo ticket.Repository
	logger     logger.Interface
}

func NewListTicketsUseCase(
	ticketRepo ticket.Repository,
	logger logger.Interface,
) *ListTicketsUseCase {
	return &ListTicketsUseCase{
		ticketRepo: ticketRepo,
		logger:     logger,
	}
}

// Execute returns whole tickets, entries included, newest first.
func (uc *ListTicketsUseCase) Execute(ctx context.Context, query ListTicketsQuery) (*ListTicketsResult, error) {
	tickets, err := uc.ticketRepo.List(ctx, ticket.ListFilter{Query: query.Query})
	if err != nil {
		uc.logger.Errorw("failed to list tickets", "query", query.Query, "error", err)
		return nil, toAppError(err, "failed to list tickets")
	}

	items := dto.ToTicketDTOs(tickets)
	return &ListTicketsResult{
		Tickets:    items,
		TotalCount: len(items),
	}, nil
}
