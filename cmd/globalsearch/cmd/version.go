package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ravi-m-fleetenable/global-search/internal/version"
)

func newVersionCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := version.Get()
			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info) //nolint:wrapcheck // terminal output
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "globalsearch %s (commit %s, built %s)\n",
				info.Version, info.Commit, info.Date)
			return err //nolint:wrapcheck // terminal output
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")
	return cmd
}
