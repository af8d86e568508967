package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func validateCmd() *cobra.Command {
	var configPath string

	c := &cobra.Command{
		Use:   "validate",
		Short: "Load and check the configuration (no HTTP)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := loadProject(configPath)
			if err != nil {
				return err
			}
			if err := p.settings.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			source := p.configPath
			if source == "" {
				source = "(defaults)"
			}
			fmt.Fprintf(out, "Config:  %s\n", source)
			fmt.Fprintf(out, "API:     %s\n", p.settings.API.BaseURL)
			fmt.Fprintf(out, "Output:  %s\n", p.settings.Output.Path)
			if p.settings.UsesPlaceholderToken() {
				fmt.Fprintln(out, "Warning: no access token configured (set BIANX_TOKEN)")
			}
			fmt.Fprintln(out, "OK")
			return nil
		},
	}

	c.Flags().StringVarP(&configPath, "config", "c", "", "Config file (optional; autodetected if omitted)")
	return c
}
