package cli

import (
	"github.com/ariel-frischer/clog/internal/changelog"
	clerrors "github.com/ariel-frischer/clog/internal/errors"
	"github.com/spf13/cobra"
)

func (a *App) newPreviewCmd(opts *runOptions) *cobra.Command {
	var plain bool
	var width int

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the pending release in the terminal",
		Long: `Show the release clog would generate, formatted for reading in a
terminal. Nothing is written; outfile, infile and changelog settings are
ignored.`,
		Example: `  # Colored preview of everything since the last tag
  clog preview -F

  # Plain text, e.g. for a pull request comment
  clog preview --from v1.2.0 --plain`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := a.buildRelease(cmd, opts)
			if err != nil {
				return err
			}
			fo := changelog.FormatOptions{Plain: plain, MaxWidth: width}
			if err := changelog.FormatTerminal(rel.doc, cmd.OutOrStdout(), fo); err != nil {
				return clerrors.OutputNotWritable("standard output", err)
			}
			return nil
		},
	}
	cmd.GroupID = GroupChangelog
	cmd.Flags().BoolVar(&plain, "plain", false, "Plain text output (no colors/icons)")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width (0 = terminal width)")
	return cmd
}
