// Package cli wires the clog commands: the root command generates a
// changelog, preview shows it in the terminal, init writes a starter config
// and version prints build information.
package cli

import (
	"io"
	"os"
	"time"

	clerrors "github.com/ariel-frischer/clog/internal/errors"
	"github.com/ariel-frischer/clog/internal/progress"
	"github.com/spf13/cobra"
)

// Command groups for help output
const (
	GroupChangelog     = "changelog"
	GroupConfiguration = "configuration"
)

// App holds the process collaborators the commands use. Tests replace them.
type App struct {
	Stdout io.Writer
	Stderr io.Writer
	// Getwd resolves relative paths (config, outputs).
	Getwd func() (string, error)
	// Now supplies the release date; it is formatted in UTC.
	Now func() time.Time
	// Terminal reports what stderr can render, for the spinner.
	Terminal func() progress.TerminalCapabilities

	policy         clerrors.Policy
	restoreLogging func()
}

// NewApp returns an App bound to the process streams, working directory
// and wall clock.
func NewApp() *App {
	return &App{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getwd:  os.Getwd,
		Now:    time.Now,
		Terminal: func() progress.TerminalCapabilities {
			return progress.DetectTerminalCapabilities(os.Stderr)
		},
		policy: clerrors.DefaultPolicy,
	}
}

// Policy returns the fatality policy of the last run. It reflects the
// loaded configuration, or the --strict flag when loading failed.
func (a *App) Policy() clerrors.Policy {
	return a.policy
}

// Execute runs the command line args and returns the run's error. The
// caller reports it with a Reporter using Policy.
func (a *App) Execute(args []string) error {
	cmd := a.newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(a.Stdout)
	cmd.SetErr(a.Stderr)
	defer func() {
		if a.restoreLogging != nil {
			a.restoreLogging()
			a.restoreLogging = nil
		}
	}()
	return cmd.Execute()
}

// runOptions are flags that shape the run but are not configuration.
type runOptions struct {
	configPath string
	setVersion string
	major      bool
	minor      bool
	patch      bool
	debug      bool
}

func (a *App) newRootCmd() *cobra.Command {
	opts := &runOptions{}

	root := &cobra.Command{
		Use:   "clog",
		Short: "Generate a changelog from conventional commits",
		Long: `clog reads the commit history of a git repository, keeps the commits
written in the conventional format (type(component): subject) and renders
them as a release section that is prepended to an existing changelog.

Settings come from .clog.toml (see 'clog init'), CLOG_* environment
variables and the flags below, in increasing priority.`,
		Example: `  # Print the changes since the last tag as Markdown
  clog --from-latest-tag --setversion 1.4.0

  # Prepend a minor release to CHANGELOG.md with GitHub links
  clog -r https://github.com/me/proj -F --minor -C CHANGELOG.md

  # Emit JSON for another tool
  clog --format json --from v1.3.0`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.debug {
				a.restoreLogging = setupDebugLogging(a.Stderr)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd, opts)
		},
	}

	root.AddGroup(
		&cobra.Group{ID: GroupChangelog, Title: "Changelog Commands:"},
		&cobra.Group{ID: GroupConfiguration, Title: "Configuration Commands:"},
	)

	a.registerFlags(root, opts)

	root.AddCommand(
		a.newPreviewCmd(opts),
		a.newInitCmd(opts),
		a.newVersionCmd(),
	)
	return root
}

// registerFlags declares the persistent flags shared by root and preview.
// Flag names that match config keys are layered into the configuration by
// internal/config; the rest live in opts.
func (a *App) registerFlags(root *cobra.Command, opts *runOptions) {
	pf := root.PersistentFlags()

	pf.StringVarP(&opts.configPath, "config", "c", "", "Config file (default .clog.toml in the working directory)")
	pf.BoolVar(&opts.debug, "debug", false, "Log debug output to stderr")

	pf.StringP("repository", "r", "", "Repository URL used for commit and issue links")
	pf.StringP("link-style", "l", "", "Link style: github, gitlab, stash, cgit or none")
	pf.StringP("subtitle", "s", "", "Text after the version in the release header")
	pf.StringP("from", "f", "", "Exclusive start of the commit range")
	pf.StringP("to", "t", "", "Inclusive end of the commit range (default HEAD)")
	pf.BoolP("from-latest-tag", "F", false, "Start the range at the newest semver tag")
	pf.StringP("outfile", "o", "", "Write the merged changelog to this file")
	pf.StringP("infile", "i", "", "Read the previous changelog from this file")
	pf.StringP("changelog", "C", "", "Changelog file read and rewritten in place")
	pf.StringP("git-dir", "g", "", "Repository metadata directory (.git)")
	pf.StringP("work-tree", "w", "", "Work tree belonging to --git-dir")
	pf.StringP("format", "T", "", "Output format: markdown or json")
	pf.Bool("strict", false, "Treat every error as fatal")

	pf.StringVar(&opts.setVersion, "setversion", "", "Version label for the release header")
	pf.BoolVarP(&opts.major, "major", "M", false, "Bump the major version of the latest tag")
	pf.BoolVarP(&opts.minor, "minor", "m", false, "Bump the minor version of the latest tag")
	pf.BoolVarP(&opts.patch, "patch", "p", false, "Bump the patch version of the latest tag (smaller header)")

	root.MarkFlagsMutuallyExclusive("major", "minor", "patch")
}
