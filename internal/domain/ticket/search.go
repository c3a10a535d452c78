package ticket

import (
	"strings"

	"github.com/orris-inc/ticketdesk/internal/shared/services/richtext"
)

// PreviewLength is the number of characters kept in a SearchHit preview.
const PreviewLength = 80

type MatchKind string

const (
	MatchStep     MatchKind = "step"
	MatchSolution MatchKind = "solution"
)

// SearchHit locates one matching field. TicketID and EntryID are the lookup
// keys; Position is the entry's index at search time and is for display only.
type SearchHit struct {
	TicketID    string
	TicketTitle string
	EntryID     string
	Position    int
	Kind        MatchKind
	Preview     string
	FullText    string
}

// Search scans every entry of every ticket for query as a case-insensitive
// substring of the step and solution text. Hits come out in snapshot order:
// tickets, then entries, then step before solution. A blank query matches
// nothing; otherwise the query is matched as sent, surrounding spaces
// included.
func Search(tickets []*Ticket, query string) []SearchHit {
	if strings.TrimSpace(query) == "" {
		return []SearchHit{}
	}
	needle := strings.ToLower(query)

	hits := []SearchHit{}
	for _, t := range tickets {
		for pos, e := range t.entries {
			for _, f := range [...]struct {
				kind MatchKind
				text string
			}{
				{MatchStep, e.step},
				{MatchSolution, e.solution},
			} {
				plain := richtext.PlainText(f.text)
				if !strings.Contains(strings.ToLower(plain), needle) {
					continue
				}
				hits = append(hits, SearchHit{
					TicketID:    t.id,
					TicketTitle: t.title,
					EntryID:     e.id,
					Position:    pos,
					Kind:        f.kind,
					Preview:     richtext.Truncate(plain, PreviewLength),
					FullText:    f.text,
				})
			}
		}
	}
	return hits
}
