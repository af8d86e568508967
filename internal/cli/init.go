package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/souvikmukherjee/util-bian-modelling/internal/infra/fsproject"
)

func initCmd() *cobra.Command {
	var path string
	var force bool

	c := &cobra.Command{
		Use:   "init",
		Short: "Write a starter bianx.yaml into a project directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("invalid path: %w", err)
			}
			if err := fsproject.NewInitializer().Init(root, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Initialized bianx project in %s\n", root)
			return nil
		},
	}

	c.Flags().StringVar(&path, "path", ".", "Project directory")
	c.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	return c
}
