package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/shared/biztime"
)

func seedLegacy(t *testing.T, f *fixture, step, solution string) *ticket.Ticket {
	t.Helper()
	now := biztime.NowUTC()
	e, err := ticket.ReconstructEntry("ent_legacy"+step+solution, step, solution, nil, now)
	require.NoError(t, err)
	tk, err := ticket.ReconstructTicket("tkt_legacy"+step+solution, "Imported", []*ticket.Entry{e}, 1, now, now)
	require.NoError(t, err)
	require.NoError(t, f.repo.Create(context.Background(), tk))
	return tk
}

func TestRepairEntriesUseCase_Execute(t *testing.T) {
	t.Run("dry run changes nothing", func(t *testing.T) {
		f := newFixture()
		legacy := seedLegacy(t, f, "", "")
		f.seed(t, "Healthy")

		res, err := NewRepairEntriesUseCase(f.repo, f.txm, f.log).Execute(context.Background(), RepairEntriesCommand{DryRun: true})
		require.NoError(t, err)
		assert.Equal(t, 2, res.TicketsScanned)
		assert.Equal(t, 1, res.TicketsRepaired)
		assert.Equal(t, 2, res.FieldsRepaired)
		assert.Empty(t, f.repo.stored(legacy.ID()).Entries()[0].Step())
	})

	t.Run("fills blank fields with placeholders", func(t *testing.T) {
		f := newFixture()
		legacy := seedLegacy(t, f, "", "kept solution")

		res, err := NewRepairEntriesUseCase(f.repo, f.txm, f.log).Execute(context.Background(), RepairEntriesCommand{})
		require.NoError(t, err)
		assert.Equal(t, 1, res.FieldsRepaired)

		e := f.repo.stored(legacy.ID()).Entries()[0]
		assert.Equal(t, ticket.MissingStepPlaceholder, e.Step())
		assert.Equal(t, "kept solution", e.Solution())
		assert.Equal(t, 2, f.repo.stored(legacy.ID()).Version())
	})
}

func TestScanOrphansUseCase_Execute(t *testing.T) {
	setup := func(t *testing.T) (*fixture, *ticket.Ticket, string) {
		f := newFixture()
		tk := f.seed(t, "T")
		entryID := tk.Entries()[0].ID()
		f.attach(t, tk.ID(), entryID, "live.txt")
		danglingID := f.attach(t, tk.ID(), entryID, "lost.txt")
		lost, err := f.repo.stored(tk.ID()).FindAttachment(entryID, danglingID)
		require.NoError(t, err)
		require.NoError(t, f.store.Delete(context.Background(), lost.StorageName()))

		f.store.put("stale.bin", []byte("old"), biztime.NowUTC().Add(-3*time.Hour))
		f.store.put("fresh.bin", []byte("new"), biztime.NowUTC())
		return f, tk, danglingID
	}

	t.Run("report only", func(t *testing.T) {
		f, tk, danglingID := setup(t)

		report, err := NewScanOrphansUseCase(f.repo, f.store, f.txm, f.log).Execute(context.Background(), ScanOrphansCommand{})
		require.NoError(t, err)
		require.Len(t, report.OrphanFiles, 1)
		assert.Equal(t, "stale.bin", report.OrphanFiles[0].StorageName)
		assert.Equal(t, 1, report.SkippedRecent)
		require.Len(t, report.DanglingAttachments, 1)
		assert.Equal(t, danglingID, report.DanglingAttachments[0].AttachmentID)
		assert.Equal(t, tk.ID(), report.DanglingAttachments[0].TicketID)
		assert.False(t, report.Pruned)

		assert.True(t, f.store.has("stale.bin"))
		assert.Len(t, f.repo.stored(tk.ID()).Attachments(), 2)
	})

	t.Run("prune", func(t *testing.T) {
		f, tk, _ := setup(t)

		report, err := NewScanOrphansUseCase(f.repo, f.store, f.txm, f.log).Execute(context.Background(), ScanOrphansCommand{Prune: true})
		require.NoError(t, err)
		assert.True(t, report.Pruned)
		assert.Equal(t, 1, report.FilesDeleted)
		assert.Equal(t, 1, report.MetadataRemoved)

		assert.False(t, f.store.has("stale.bin"))
		assert.True(t, f.store.has("fresh.bin"))
		atts := f.repo.stored(tk.ID()).Attachments()
		require.Len(t, atts, 1)
		assert.Equal(t, "live.txt", atts[0].OriginalName())
	})

	t.Run("short min age includes recent files", func(t *testing.T) {
		f, _, _ := setup(t)
		f.store.put("fresh.bin", []byte("new"), biztime.NowUTC().Add(-2*time.Minute))

		report, err := NewScanOrphansUseCase(f.repo, f.store, f.txm, f.log).Execute(context.Background(), ScanOrphansCommand{MinAge: time.Minute})
		require.NoError(t, err)
		assert.Len(t, report.OrphanFiles, 2)
		assert.Zero(t, report.SkippedRecent)
	})
}
