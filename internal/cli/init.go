package cli

import (
	"fmt"

	"github.com/ariel-frischer/clog/internal/config"
	clerrors "github.com/ariel-frischer/clog/internal/errors"
	"github.com/spf13/cobra"
)

func (a *App) newInitCmd(opts *runOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented .clog.toml",
		Long: `Write a starter configuration with every option documented.

The file goes to --config when given, otherwise .clog.toml in the working
directory. An existing file is kept unless --force is set.`,
		Example: `  clog init
  clog init --force
  clog init --config release/clog.toml`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.ResolvePath(opts.configPath, a.Getwd)
			if err != nil {
				return err
			}
			if err := config.WriteDefaultConfig(path, force); err != nil {
				return clerrors.OutputNotCreatable(path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Created %s\n", path)
			return nil
		},
	}
	cmd.GroupID = GroupConfiguration
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
