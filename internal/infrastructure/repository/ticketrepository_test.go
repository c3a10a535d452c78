package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/infrastructure/persistence/models"
	"github.com/orris-inc/ticketdesk/internal/shared/biztime"
	"github.com/orris-inc/ticketdesk/internal/shared/db"
	"github.com/orris-inc/ticketdesk/internal/shared/errors"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, gdb.AutoMigrate(&models.TicketModel{}))
	return gdb
}

func newRepo(t *testing.T) ticket.Repository {
	return NewTicketRepository(setupTestDB(t), logger.NewNop())
}

func createTestTicket(t *testing.T, title string, entries ...ticket.EntryInput) *ticket.Ticket {
	if len(entries) == 0 {
		entries = []ticket.EntryInput{{Step: "Printer offline", Solution: "Power cycled it"}}
	}
	tk, err := ticket.NewTicket(title, entries)
	require.NoError(t, err)
	return tk
}

func TestTicketRepository_Create(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	t.Run("create and reload", func(t *testing.T) {
		tk := createTestTicket(t, "INC-1",
			ticket.EntryInput{Step: "Mail bouncing", Solution: "Fixed MX record"},
			ticket.EntryInput{Step: "Still bouncing", Solution: "Flushed DNS cache"},
		)
		require.NoError(t, repo.Create(ctx, tk))
		assert.False(t, tk.IsNew())

		found, err := repo.GetByID(ctx, tk.ID())
		require.NoError(t, err)
		assert.Equal(t, "INC-1", found.Title())
		assert.Equal(t, 1, found.Version())
		require.Len(t, found.Entries(), 2)
		assert.Equal(t, "Mail bouncing", found.Entries()[0].Step())
		assert.Equal(t, "Flushed DNS cache", found.Entries()[1].Solution())
	})

	t.Run("duplicate id is a conflict", func(t *testing.T) {
		tk := createTestTicket(t, "INC-2")
		require.NoError(t, repo.Create(ctx, tk))

		again, err := repo.GetByID(ctx, tk.ID())
		require.NoError(t, err)
		err = repo.Create(ctx, again)
		assert.True(t, errors.IsConflictError(err))
	})
}

func TestTicketRepository_GetByID_NotFound(t *testing.T) {
	repo := newRepo(t)

	_, err := repo.GetByID(context.Background(), "tkt_missing")
	assert.True(t, errors.IsNotFoundError(err))
}

func TestTicketRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("persists changes and bumps version once", func(t *testing.T) {
		repo := newRepo(t)
		tk := createTestTicket(t, "INC-3")
		require.NoError(t, repo.Create(ctx, tk))

		loaded, err := repo.GetByID(ctx, tk.ID())
		require.NoError(t, err)
		_, err = loaded.AddEntry("Toner low", "Replaced cartridge")
		require.NoError(t, err)
		require.NoError(t, loaded.UpdateTitle("INC-3 printer"))
		require.NoError(t, repo.Update(ctx, loaded))

		found, err := repo.GetByID(ctx, tk.ID())
		require.NoError(t, err)
		assert.Equal(t, "INC-3 printer", found.Title())
		assert.Equal(t, 2, found.Version())
		assert.Len(t, found.Entries(), 2)
	})

	t.Run("no changes is a no-op", func(t *testing.T) {
		repo := newRepo(t)
		tk := createTestTicket(t, "INC-4")
		require.NoError(t, repo.Create(ctx, tk))

		loaded, err := repo.GetByID(ctx, tk.ID())
		require.NoError(t, err)
		require.NoError(t, repo.Update(ctx, loaded))

		found, err := repo.GetByID(ctx, tk.ID())
		require.NoError(t, err)
		assert.Equal(t, 1, found.Version())
	})

	t.Run("stale copy is rejected", func(t *testing.T) {
		repo := newRepo(t)
		tk := createTestTicket(t, "INC-5")
		require.NoError(t, repo.Create(ctx, tk))

		first, err := repo.GetByID(ctx, tk.ID())
		require.NoError(t, err)
		second, err := repo.GetByID(ctx, tk.ID())
		require.NoError(t, err)

		_, err = first.AddEntry("First writer", "Wins")
		require.NoError(t, err)
		require.NoError(t, repo.Update(ctx, first))

		_, err = second.AddEntry("Second writer", "Loses")
		require.NoError(t, err)
		err = repo.Update(ctx, second)
		assert.True(t, errors.IsConflictError(err))

		found, err := repo.GetByID(ctx, tk.ID())
		require.NoError(t, err)
		require.Len(t, found.Entries(), 2)
		assert.Equal(t, "First writer", found.Entries()[1].Step())
	})

	t.Run("deleted ticket is not found", func(t *testing.T) {
		repo := newRepo(t)
		tk := createTestTicket(t, "INC-6")
		require.NoError(t, repo.Create(ctx, tk))

		loaded, err := repo.GetByID(ctx, tk.ID())
		require.NoError(t, err)
		require.NoError(t, repo.Delete(ctx, tk.ID()))

		require.NoError(t, loaded.UpdateTitle("gone"))
		err = repo.Update(ctx, loaded)
		assert.True(t, errors.IsNotFoundError(err))
	})
}

func TestTicketRepository_Update_RollsBackWithTransaction(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewTicketRepository(gdb, logger.NewNop())
	txm := db.NewTransactionManager(gdb)
	ctx := context.Background()

	tk := createTestTicket(t, "INC-7")
	require.NoError(t, repo.Create(ctx, tk))

	err := txm.RunInTransaction(ctx, func(ctx context.Context) error {
		loaded, err := repo.GetByID(ctx, tk.ID())
		if err != nil {
			return err
		}
		if err := loaded.UpdateTitle("renamed"); err != nil {
			return err
		}
		if err := repo.Update(ctx, loaded); err != nil {
			return err
		}
		return errors.NewStorageError("simulated failure")
	})
	require.Error(t, err)

	found, err := repo.GetByID(ctx, tk.ID())
	require.NoError(t, err)
	assert.Equal(t, "INC-7", found.Title())
}

func TestTicketRepository_Delete(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	tk := createTestTicket(t, "INC-8")
	require.NoError(t, repo.Create(ctx, tk))

	require.NoError(t, repo.Delete(ctx, tk.ID()))

	_, err := repo.GetByID(ctx, tk.ID())
	assert.True(t, errors.IsNotFoundError(err))

	err = repo.Delete(ctx, tk.ID())
	assert.True(t, errors.IsNotFoundError(err))
}

func TestTicketRepository_LegacyProblemField(t *testing.T) {
	gdb := setupTestDB(t)
	repo := NewTicketRepository(gdb, logger.NewNop())
	ctx := context.Background()

	require.NoError(t, gdb.Create(&models.TicketModel{
		ID:    "tkt_legacy",
		Title: "Imported",
		Entries: datatypes.NewJSONType([]models.EntryDocument{
			{ID: "ent_1", Problem: "Outlook crashes on start", Solution: "Safe mode, removed add-in", AddedAt: 1700000000000},
		}),
		Version:   1,
		CreatedAt: 1700000000000,
		UpdatedAt: 1700000000000,
	}).Error)

	tk, err := repo.GetByID(ctx, "tkt_legacy")
	require.NoError(t, err)
	assert.Equal(t, "Outlook crashes on start", tk.Entries()[0].Step())

	require.Equal(t, 1, tk.RepairBlankText())
	require.NoError(t, repo.Update(ctx, tk))

	var stored models.TicketModel
	require.NoError(t, gdb.First(&stored, "id = ?", "tkt_legacy").Error)
	doc := stored.Entries.Data()[0]
	assert.Equal(t, "Outlook crashes on start", doc.Step)
	assert.Empty(t, doc.Problem)
	assert.Equal(t, 2, stored.Version)
	assert.Contains(t, stored.SearchText, "outlook crashes on start")
}

func TestTicketRepository_FindByStorageName(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	attach := func(tk *ticket.Ticket, storageName string) {
		a, err := ticket.NewAttachment(ticket.FileMeta{
			OriginalName: "scan.pdf",
			StorageName:  storageName,
			SizeBytes:    10,
		})
		require.NoError(t, err)
		require.NoError(t, tk.AddAttachment(tk.Entries()[0].ID(), a))
	}

	first := createTestTicket(t, "INC-1")
	attach(first, "0190_a.pdf")
	require.NoError(t, repo.Create(ctx, first))

	second := createTestTicket(t, "INC-2")
	attach(second, "0190xa.pdf")
	require.NoError(t, repo.Create(ctx, second))

	t.Run("resolves the owning ticket", func(t *testing.T) {
		got, err := repo.FindByStorageName(ctx, "0190xa.pdf")
		require.NoError(t, err)
		assert.Equal(t, second.ID(), got.ID())
		require.NotNil(t, got.AttachmentByStorageName("0190xa.pdf"))
	})

	t.Run("underscore is not a wildcard", func(t *testing.T) {
		got, err := repo.FindByStorageName(ctx, "0190_a.pdf")
		require.NoError(t, err)
		assert.Equal(t, first.ID(), got.ID())
	})

	t.Run("substring of a name is not a reference", func(t *testing.T) {
		_, err := repo.FindByStorageName(ctx, "a.pdf")
		assert.True(t, errors.IsNotFoundError(err))
	})

	t.Run("unreferenced name", func(t *testing.T) {
		_, err := repo.FindByStorageName(ctx, "missing.pdf")
		assert.True(t, errors.IsNotFoundError(err))
	})
}

func TestTicketRepository_List(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	titles := []string{"VPN drops", "Printer jam", "Mail bouncing"}
	steps := []string{"Tunnel resets hourly", "Tray 2 jammed", "NDR from 50% of senders"}
	for i, title := range titles {
		restore := biztime.SetClock(func() time.Time { return base.Add(time.Duration(i) * time.Minute) })
		tk := createTestTicket(t, title, ticket.EntryInput{Step: steps[i], Solution: "Investigating"})
		restore()
		require.NoError(t, repo.Create(ctx, tk))
	}

	t.Run("newest first", func(t *testing.T) {
		list, err := repo.List(ctx, ticket.ListFilter{})
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "Mail bouncing", list[0].Title())
		assert.Equal(t, "Printer jam", list[1].Title())
		assert.Equal(t, "VPN drops", list[2].Title())
	})

	t.Run("matches title case-insensitively", func(t *testing.T) {
		list, err := repo.List(ctx, ticket.ListFilter{Query: "PRINTER"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Printer jam", list[0].Title())
	})

	t.Run("matches entry text", func(t *testing.T) {
		list, err := repo.List(ctx, ticket.ListFilter{Query: "tunnel"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "VPN drops", list[0].Title())
	})

	t.Run("wildcards are literal", func(t *testing.T) {
		list, err := repo.List(ctx, ticket.ListFilter{Query: "50%"})
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "Mail bouncing", list[0].Title())

		list, err = repo.List(ctx, ticket.ListFilter{Query: "%"})
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("no match is empty", func(t *testing.T) {
		list, err := repo.List(ctx, ticket.ListFilter{Query: "keyboard"})
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}
