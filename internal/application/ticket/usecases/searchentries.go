package usecases

import (
	"context"
	"strings"

	"github.com/orris-inc/ticketdesk/internal/application/ticket/dto"
	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

type SearchEntriesQuery struct {
	Query string
	// Limit caps the returned hits; zero or less returns all of them.
	Limit int
}

type SearchEntriesResult struct {
	Query string
	Hits  []dto.SearchHitDTO
	// Total counts every hit, including those cut by Limit.
	Total int
}

type SearchEntriesUseCase struct {
	ticketRepo ticket.Repository
	logger     logger.Interface
}

func NewSearchEntriesUseCase(
	ticketRepo ticket.Repository,
	logger logger.Interface,
) *SearchEntriesUseCase {
	return &SearchEntriesUseCase{
		ticketRepo: ticketRepo,
		logger:     logger,
	}
}

// Execute scans a snapshot of every ticket, newest first.
func (uc *SearchEntriesUseCase) Execute(ctx context.Context, query SearchEntriesQuery) (*SearchEntriesResult, error) {
	q := query.Query
	if strings.TrimSpace(q) == "" {
		return &SearchEntriesResult{Hits: []dto.SearchHitDTO{}}, nil
	}

	tickets, err := uc.ticketRepo.List(ctx, ticket.ListFilter{})
	if err != nil {
		uc.logger.Errorw("failed to load tickets for search", "query", q, "error", err)
		return nil, toAppError(err, "failed to search entries")
	}

	hits := ticket.Search(tickets, q)
	total := len(hits)
	if query.Limit > 0 && len(hits) > query.Limit {
		hits = hits[:query.Limit]
	}

	uc.logger.Debugw("search completed", "query", q, "total", total, "returned", len(hits))

	return &SearchEntriesResult{
		Query: q,
		Hits:  dto.ToSearchHitDTOs(hits),
		Total: total,
	}, nil
}
