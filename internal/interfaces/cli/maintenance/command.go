// Package maintenance holds offline repair commands that run against the
// configured database and attachment store without starting the server.
package maintenance

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/orris-inc/ticketdesk/internal/application/ticket/dto"
	"github.com/orris-inc/ticketdesk/internal/application/ticket/usecases"
	"github.com/orris-inc/ticketdesk/internal/domain/ticket"
	"github.com/orris-inc/ticketdesk/internal/infrastructure/config"
	"github.com/orris-inc/ticketdesk/internal/infrastructure/database"
	"github.com/orris-inc/ticketdesk/internal/infrastructure/repository"
	"github.com/orris-inc/ticketdesk/internal/infrastructure/storage"
	"github.com/orris-inc/ticketdesk/internal/shared/db"
	"github.com/orris-inc/ticketdesk/internal/shared/logger"
)

const (
	outputText = "text"
	outputYAML = "yaml"
)

var (
	env        string
	configPath string
	dryRun     bool
	prune      bool
	minAge     time.Duration
	output     string
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "maintenance",
		Short: "Data maintenance tools",
		Long:  `Repair stored entries and reconcile the attachment store with ticket metadata.`,
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ./configs/config.yaml)")
	cmd.PersistentFlags().StringVarP(&output, "output", "o", outputText, "Output format (text, yaml)")

	cmd.AddCommand(
		newRepairEntriesCommand(),
		newOrphansCommand(),
	)

	return cmd
}

func newRepairEntriesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repair-entries",
		Short: "Fill blank entry text with placeholders",
		Long:  `Scan every ticket and replace blank step or solution text with placeholder text.`,
		RunE:  runRepairEntries,
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")

	return cmd
}

func newOrphansCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orphans",
		Short: "Find orphan attachment files",
		Long:  `List stored files that no attachment references and attachments whose file is missing.`,
		RunE:  runOrphans,
	}

	cmd.Flags().BoolVar(&prune, "prune", false, "Delete orphan files and drop dangling attachment metadata")
	cmd.Flags().DurationVar(&minAge, "min-age", usecases.DefaultOrphanMinAge, "Ignore stored files younger than this")

	return cmd
}

// toolEnv holds what the maintenance use cases need.
type toolEnv struct {
	log   logger.Interface
	repo  ticket.Repository
	store storage.Store
	txm   *db.TransactionManager
}

func initRuntime(ctx context.Context, withStore bool) (*toolEnv, error) {
	switch output {
	case outputText, outputYAML:
	default:
		return nil, fmt.Errorf("unsupported output format %q", output)
	}

	cfg, err := config.Load(env, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger()

	if err := database.Init(&cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	rt := &toolEnv{
		log:  log,
		repo: repository.NewTicketRepository(database.Get(), log.Named("repository")),
		txm:  db.NewTransactionManager(database.Get()),
	}

	if withStore {
		store, err := storage.New(ctx, &cfg.Storage, log.Named("storage"))
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to initialize attachment store: %w", err)
		}
		rt.store = store
	}

	return rt, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func runRepairEntries(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	rt, err := initRuntime(ctx, false)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	uc := usecases.NewRepairEntriesUseCase(rt.repo, rt.txm, rt.log.Named("usecase"))
	result, err := uc.Execute(ctx, usecases.RepairEntriesCommand{DryRun: dryRun})
	if err != nil {
		rt.log.Errorw("repair entries failed", "error", err)
		return fmt.Errorf("repair entries failed: %w", err)
	}

	return writeRepairResult(cmd.OutOrStdout(), result)
}

func runOrphans(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	rt, err := initRuntime(ctx, true)
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	uc := usecases.NewScanOrphansUseCase(rt.repo, rt.store, rt.txm, rt.log.Named("usecase"))
	report, err := uc.Execute(ctx, usecases.ScanOrphansCommand{Prune: prune, MinAge: minAge})
	if err != nil {
		rt.log.Errorw("orphan scan failed", "error", err)
		return fmt.Errorf("orphan scan failed: %w", err)
	}

	return writeOrphanReport(cmd.OutOrStdout(), report)
}

type repairOutput struct {
	DryRun          bool `yaml:"dry_run"`
	TicketsScanned  int  `yaml:"tickets_scanned"`
	TicketsRepaired int  `yaml:"tickets_repaired"`
	FieldsRepaired  int  `yaml:"fields_repaired"`
}

func writeRepairResult(w io.Writer, result *usecases.RepairEntriesResult) error {
	out := repairOutput{
		DryRun:          dryRun,
		TicketsScanned:  result.TicketsScanned,
		TicketsRepaired: result.TicketsRepaired,
		FieldsRepaired:  result.FieldsRepaired,
	}

	if output == outputYAML {
		return writeYAML(w, out)
	}

	verb := "repaired"
	if out.DryRun {
		verb = "would repair"
	}
	_, err := fmt.Fprintf(w, "scanned %d tickets, %s %d fields in %d tickets\n",
		out.TicketsScanned, verb, out.FieldsRepaired, out.TicketsRepaired)
	return err
}

func writeOrphanReport(w io.Writer, report *dto.OrphanReport) error {
	if output == outputYAML {
		return writeYAML(w, report)
	}

	fmt.Fprintf(w, "orphan files: %d\n", len(report.OrphanFiles))
	for _, f := range report.OrphanFiles {
		fmt.Fprintf(w, "  %s  %d bytes  %s\n", f.StorageName, f.SizeBytes, f.ModTime.Format(time.RFC3339))
	}
	fmt.Fprintf(w, "dangling attachments: %d\n", len(report.DanglingAttachments))
	for _, a := range report.DanglingAttachments {
		fmt.Fprintf(w, "  %s/%s/%s  %s (%s)\n", a.TicketID, a.EntryID, a.AttachmentID, a.StorageName, a.OriginalName)
	}
	fmt.Fprintf(w, "skipped recent files: %d\n", report.SkippedRecent)

	if report.Pruned {
		_, err := fmt.Fprintf(w, "pruned: %d files deleted, %d attachments removed\n",
			report.FilesDeleted, report.MetadataRemoved)
		return err
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return enc.Close()
}
