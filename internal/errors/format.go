package errors

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	// Color functions with auto-detection for terminal support.
	// These fall back gracefully when colors are unavailable.
	errorLabel  = color.New(color.FgRed, color.Bold).SprintFunc()
	warnLabel   = color.New(color.FgYellow, color.Bold).SprintFunc()
	errorMsg    = color.New(color.FgRed).SprintFunc()
	fixLabel    = color.New(color.FgGreen, color.Bold).SprintFunc()
	bullet      = color.New(color.FgGreen).SprintFunc()
	categoryFmt = color.New(color.FgYellow).SprintFunc()
)

// FormatError formats an Error for display in the terminal.
// It uses colors when available and falls back to plain text otherwise.
func FormatError(err *Error, fatal bool) string {
	if err == nil {
		return ""
	}
	return formatError(err, fatal, true)
}

// FormatErrorPlain formats an Error without colors.
func FormatErrorPlain(err *Error, fatal bool) string {
	if err == nil {
		return ""
	}
	return formatError(err, fatal, false)
}

func formatError(err *Error, fatal, useColors bool) string {
	var sb strings.Builder

	label := "Error"
	if !fatal {
		label = "Warning"
	}

	detail := err.Message
	if err.Err != nil {
		if detail != "" {
			detail += ": "
		}
		detail += err.Err.Error()
	}

	if useColors {
		if fatal {
			sb.WriteString(errorLabel(label))
		} else {
			sb.WriteString(warnLabel(label))
		}
		sb.WriteString(" [")
		sb.WriteString(categoryFmt(err.Kind.String()))
		sb.WriteString("]")
		if detail != "" {
			sb.WriteString(": ")
			sb.WriteString(errorMsg(detail))
		}
	} else {
		sb.WriteString(label)
		sb.WriteString(" [")
		sb.WriteString(err.Kind.String())
		sb.WriteString("]")
		if detail != "" {
			sb.WriteString(": ")
			sb.WriteString(detail)
		}
	}
	sb.WriteString("\n")

	if len(err.Remediation) > 0 {
		sb.WriteString("\n")
		if useColors {
			sb.WriteString(fixLabel("To fix this:"))
		} else {
			sb.WriteString("To fix this:")
		}
		sb.WriteString("\n")
		for _, step := range err.Remediation {
			if useColors {
				sb.WriteString("  ")
				sb.WriteString(bullet("•"))
				sb.WriteString(" ")
			} else {
				sb.WriteString("  • ")
			}
			sb.WriteString(step)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// Reporter prints classified errors and terminates the process.
// Non-fatal errors go to Stdout with exit code 0, fatal ones to Stderr with 1.
type Reporter struct {
	Stdout io.Writer
	Stderr io.Writer
	// Exit terminates the process. Tests replace it.
	Exit   func(code int)
	Policy Policy
	// Plain disables colors.
	Plain bool
}

// NewReporter returns a Reporter bound to the process streams and os.Exit.
func NewReporter(policy Policy) *Reporter {
	return &Reporter{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Exit:   os.Exit,
		Policy: policy,
	}
}

// Report prints err and returns the exit code the process should use.
// Errors without a kind are reported as UnknownErr.
func (r *Reporter) Report(err error) int {
	if err == nil {
		return 0
	}

	e := As(err)
	if e == nil {
		e = Wrap(err, UnknownErr, "")
	}

	fatal := r.Policy.IsFatal(e.Kind)
	var text string
	if r.Plain {
		text = FormatErrorPlain(e, fatal)
	} else {
		text = FormatError(e, fatal)
	}

	if fatal {
		fmt.Fprint(r.Stderr, text)
		return 1
	}
	fmt.Fprint(r.Stdout, text)
	return 0
}

// ReportAndExit prints err and terminates the process with the matching code.
func (r *Reporter) ReportAndExit(err error) {
	r.Exit(r.Report(err))
}
