package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/ariel-frischer/clog/internal/build"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// SourceURL is the project source URL
const SourceURL = "https://github.com/ariel-frischer/clog"

func (a *App) newVersionCmd() *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:     "version",
		Aliases: []string{"v"},
		Short:   "Display version information (v)",
		Long:    "Display version, commit, build date, and Go version information for clog",
		Example: `  # Show version info
  clog version

  # Plain output (for scripts)
  clog version --plain`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if plain {
				printPlainVersion(cmd.OutOrStdout())
				return
			}
			printPrettyVersion(cmd.OutOrStdout())
		},
	}
	cmd.GroupID = GroupConfiguration
	cmd.Flags().BoolVar(&plain, "plain", false, "Plain output without formatting")
	return cmd
}

type versionField struct {
	label string
	value string
}

func versionFields() []versionField {
	return []versionField{
		{"Version", displayVersion()},
		{"Commit", truncateCommit(build.Commit)},
		{"Built", build.BuildDate},
		{"Go", runtime.Version()},
		{"Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)},
	}
}

// printPlainVersion prints a simple version output for scripting
func printPlainVersion(w io.Writer) {
	fmt.Fprintf(w, "clog %s\n", displayVersion())
	fmt.Fprintf(w, "commit: %s\n", build.Commit)
	fmt.Fprintf(w, "built: %s\n", build.BuildDate)
	fmt.Fprintf(w, "go: %s\n", runtime.Version())
	fmt.Fprintf(w, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

// printPrettyVersion prints a styled version output
func printPrettyVersion(w io.Writer) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()
	white := color.New(color.FgWhite, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(w, "\n  %s %s\n\n", cyan("clog"), dim("conventional changelog generator"))
	for _, f := range versionFields() {
		fmt.Fprintf(w, "  %s  %s\n", yellow(fmt.Sprintf("%10s", f.label)), white(f.value))
	}
	fmt.Fprintf(w, "\n  %s\n\n", dim(SourceURL))
}

// displayVersion marks builds made without release ldflags.
func displayVersion() string {
	if build.IsDevBuild() {
		return build.Version + " (development build)"
	}
	return build.Version
}

// truncateCommit shortens commit hash if it's too long
func truncateCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
