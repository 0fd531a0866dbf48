package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/ariel-frischer/clog/internal/changelog"
	"github.com/ariel-frischer/clog/internal/config"
	"github.com/ariel-frischer/clog/internal/git"
)

// setupDebugLogging routes the debug hooks of the pipeline packages to a
// slog text handler on w. The returned function unhooks them again.
func setupDebugLogging(w io.Writer) func() {
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
	hook := func(component string) func(format string, args ...any) {
		l := logger.With("component", component)
		return func(format string, args ...any) {
			l.Debug(fmt.Sprintf(format, args...))
		}
	}

	config.SetDebugLogger(hook("config"))
	git.SetDebugLogger(hook("git"))
	changelog.SetDebugLogger(hook("changelog"))
	logger.Debug("debug logging enabled")

	return func() {
		config.SetDebugLogger(nil)
		git.SetDebugLogger(nil)
		changelog.SetDebugLogger(nil)
	}
}
