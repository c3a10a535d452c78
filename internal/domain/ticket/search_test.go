package ticket

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearch_EmptyQuery(t *testing.T) {
	tk := persistedTicket(t, EntryInput{Step: "Disk is full", Solution: "Cleared temp files"})

	assert.Empty(t, Search([]*Ticket{tk}, ""))
	assert.Empty(t, Search([]*Ticket{tk}, "   "))
	assert.NotNil(t, Search(nil, ""))
}

func TestSearch_StepMatchOnly(t *testing.T) {
	tk := persistedTicket(t, EntryInput{Step: "Disk is full", Solution: "Cleared temp files"})

	hits := Search([]*Ticket{tk}, "disk")

	require.Len(t, hits, 1)
	h := hits[0]
	assert.Equal(t, MatchStep, h.Kind)
	assert.Equal(t, tk.ID(), h.TicketID)
	assert.Equal(t, "INC-1", h.TicketTitle)
	assert.Equal(t, tk.Entries()[0].ID(), h.EntryID)
	assert.Equal(t, 0, h.Position)
	assert.Equal(t, "Disk is full", h.Preview)
	assert.Equal(t, "Disk is full", h.FullText)
}

func TestSearch_QueryWhitespaceIsSignificant(t *testing.T) {
	tk := persistedTicket(t,
		EntryInput{Step: "restart the print spooler", Solution: "done"},
		EntryInput{Step: "printer offline", Solution: "reprint job"},
	)

	hits := Search([]*Ticket{tk}, " print ")
	require.Len(t, hits, 1)
	assert.Equal(t, tk.Entries()[0].ID(), hits[0].EntryID)
	assert.Equal(t, MatchStep, hits[0].Kind)

	assert.Len(t, Search([]*Ticket{tk}, "print"), 3)
}

func TestSearch_BothFieldsStepFirst(t *testing.T) {
	tk := persistedTicket(t, EntryInput{Step: "Printer offline", Solution: "Power-cycled printer"})

	hits := Search([]*Ticket{tk}, "PRINTER")

	require.Len(t, hits, 2)
	assert.Equal(t, MatchStep, hits[0].Kind)
	assert.Equal(t, MatchSolution, hits[1].Kind)
	assert.Equal(t, hits[0].EntryID, hits[1].EntryID)
}

func TestSearch_EncounterOrder(t *testing.T) {
	a := persistedTicket(t,
		EntryInput{Step: "reboot one", Solution: "x"},
		EntryInput{Step: "y", Solution: "reboot two"},
	)
	b := persistedTicket(t, EntryInput{Step: "reboot three", Solution: "reboot four"})

	hits := Search([]*Ticket{b, a}, "reboot")

	require.Len(t, hits, 4)
	var got []string
	for _, h := range hits {
		got = append(got, h.Preview)
	}
	assert.Equal(t, []string{"reboot three", "reboot four", "reboot one", "reboot two"}, got)
	assert.Equal(t, 1, hits[3].Position)
}

func TestSearch_MatchesPlainTextNotMarkup(t *testing.T) {
	tk := persistedTicket(t, EntryInput{Step: "<b>Reset</b> the <u>router</u>", Solution: "done"})

	assert.Empty(t, Search([]*Ticket{tk}, "<b>"))
	assert.Empty(t, Search([]*Ticket{tk}, "span"))

	hits := Search([]*Ticket{tk}, "reset the router")
	require.Len(t, hits, 1)
	assert.Equal(t, "Reset the router", hits[0].Preview)
	assert.Equal(t, "<b>Reset</b> the <u>router</u>", hits[0].FullText)
}

func TestSearch_PreviewTruncatedTo80(t *testing.T) {
	long := "timeout " + strings.Repeat("ab", 60)
	tk := persistedTicket(t, EntryInput{Step: long, Solution: "raised limit"})

	hits := Search([]*Ticket{tk}, "timeout")

	require.Len(t, hits, 1)
	assert.Equal(t, PreviewLength, len([]rune(hits[0].Preview)))
	assert.Equal(t, long, hits[0].FullText)
}

func TestSearch_INC1Scenario(t *testing.T) {
	tk := persistedTicket(t, EntryInput{Step: "Network down", Solution: "Restarted switch"})
	second, err := tk.AddEntry("VPN fails", "Reset credentials")
	require.NoError(t, err)

	hits := Search([]*Ticket{tk}, "VPN")
	require.Len(t, hits, 1)
	assert.Equal(t, MatchStep, hits[0].Kind)
	assert.Equal(t, second.ID(), hits[0].EntryID)
	assert.Equal(t, 1, hits[0].Position)

	first := tk.Entries()[0]
	_, err = tk.RemoveEntry(first.ID())
	require.NoError(t, err)

	entries := tk.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, second.ID(), entries[0].ID())
	assert.Equal(t, "VPN fails", entries[0].Step())
	assert.Equal(t, "Reset credentials", entries[0].Solution())

	// the stale position from the earlier hit no longer applies, the id still does
	e, pos, err := tk.FindEntry(hits[0].EntryID)
	require.NoError(t, err)
	assert.Equal(t, 0, pos)
	assert.Equal(t, "VPN fails", e.Step())
}
