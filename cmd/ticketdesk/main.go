package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/orris-inc/ticketdesk/internal/interfaces/cli/maintenance"
	"github.com/orris-inc/ticketdesk/internal/interfaces/cli/migrate"
	"github.com/orris-inc/ticketdesk/internal/interfaces/cli/server"
	"github.com/orris-inc/ticketdesk/internal/interfaces/cli/versioncmd"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "ticketdesk",
		Short:        "Ticketdesk - IT support ticket service",
		Long:         `Ticketdesk records support tickets with ordered troubleshooting entries and file attachments, and serves them over HTTP.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
		maintenance.NewCommand(),
		versioncmd.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
