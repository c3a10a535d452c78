package versioncmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/orris-inc/ticketdesk/internal/shared/version"
)

func NewCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			out := cmd.OutOrStdout()

			switch format {
			case "yaml":
				data, err := yaml.Marshal(info)
				if err != nil {
					return fmt.Errorf("failed to encode version: %w", err)
				}
				_, err = out.Write(data)
				return err
			case "text":
				_, err := fmt.Fprintf(out, "ticketdesk %s (commit %s, built %s, %s)\n",
					info.Version, info.Commit, info.BuildTime, info.GoVersion)
				return err
			default:
				return fmt.Errorf("unsupported output format %q", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "text", "Output format (text, yaml)")

	return cmd
}
