package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/user/release-tools/internal/config"
)

func newInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter release configuration",
		Long: `Create a ` + config.DefaultFile + ` in the current directory with sensible
defaults for a single-package Node.js project. Edit it afterwards to match
your project layout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(config.DefaultFile); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", config.DefaultFile)
			}

			data, err := yaml.Marshal(config.Default())
			if err != nil {
				return fmt.Errorf("encoding configuration: %w", err)
			}

			if err := os.WriteFile(config.DefaultFile, data, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", config.DefaultFile, err)
			}

			fmt.Printf("Wrote %s\n", config.DefaultFile)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing configuration file")

	return cmd
}
