package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "bianx",
		Short:        "bianx exports the BIAN service domain catalog to a spreadsheet table",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging (also written to .bianx/logs/bianx.log)")

	cmd.AddCommand(
		exportCmd(),
		validateCmd(),
		initCmd(),
		versionCmd(),
	)
	return cmd
}

func debugEnabled(cmd *cobra.Command) bool {
	v, err := cmd.Root().PersistentFlags().GetBool("debug")
	return err == nil && v
}
