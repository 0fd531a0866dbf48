package changelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// SectionStyle defines the color and icon for a section in the terminal.
type SectionStyle struct {
	Color *color.Color
	Icon  string
}

// sectionStyles maps built-in section titles to their terminal styling.
var sectionStyles = map[string]SectionStyle{
	SectionFeatures:    {Color: color.New(color.FgGreen), Icon: "✓"},
	SectionPerformance: {Color: color.New(color.FgBlue), Icon: "~"},
	SectionBugFixes:    {Color: color.New(color.FgYellow), Icon: "⚡"},
}

var (
	defaultSectionStyle = SectionStyle{Color: color.New(color.FgCyan), Icon: "•"}
	breakingStyle       = SectionStyle{Color: color.New(color.FgRed), Icon: "⚠"}
)

// FormatOptions controls the terminal output formatting.
type FormatOptions struct {
	Plain    bool // Disable colors and icons
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

// FormatTerminal writes doc to w for reading in a terminal: colored section
// headers, component lead-ins and wrapped subjects. It is a preview only and
// never used for file output.
func FormatTerminal(doc *Document, w io.Writer, opts FormatOptions) error {
	width := resolveWidth(opts.MaxWidth)

	if err := writeVersionHeader(doc.Header, w, opts); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	sections := doc.NonEmptySections()
	if len(sections) == 0 {
		_, err := fmt.Fprintln(w, "\n  (no conventional commits in range)")
		return err
	}

	for _, s := range sections {
		style, ok := sectionStyles[s.Title]
		if !ok {
			style = defaultSectionStyle
		}
		if err := writeSection(s, style, w, opts, width); err != nil {
			return fmt.Errorf("formatting section %s: %w", s.Title, err)
		}
	}

	breaking := doc.Breaking()
	if len(breaking) == 0 {
		return nil
	}
	if err := writeSectionHeader("Breaking Changes", breakingStyle, w, opts); err != nil {
		return err
	}
	for _, e := range breaking {
		if err := writeEntry(e.BreakingNote, e, breakingStyle, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

// writeVersionHeader writes the version header line.
func writeVersionHeader(h Header, w io.Writer, opts FormatOptions) error {
	header := strings.TrimPrefix(formatVersionHeader(h), "### ")
	header = strings.TrimPrefix(header, "## ")

	if opts.Plain {
		_, err := fmt.Fprintf(w, "## %s\n", header)
		return err
	}

	bold := color.New(color.Bold).SprintFunc()
	_, err := fmt.Fprintf(w, "## %s\n", bold(header))
	return err
}

// writeSection writes a section header followed by its component groups.
func writeSection(s Section, style SectionStyle, w io.Writer, opts FormatOptions, width int) error {
	if err := writeSectionHeader(s.Title, style, w, opts); err != nil {
		return err
	}

	for _, g := range s.Components {
		if g.Name != NoComponent {
			name := g.Name + ":"
			if !opts.Plain {
				name = color.New(color.Bold).Sprint(name)
			}
			if _, err := fmt.Fprintf(w, "  %s\n", name); err != nil {
				return err
			}
		}
		for _, e := range g.Entries {
			if err := writeEntry(e.Subject, e, style, w, opts, width); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeSectionHeader writes the section header line.
func writeSectionHeader(title string, style SectionStyle, w io.Writer, opts FormatOptions) error {
	if opts.Plain {
		_, err := fmt.Fprintf(w, "\n### %s\n", title)
		return err
	}

	colored := style.Color.SprintFunc()
	_, err := fmt.Fprintf(w, "\n%s %s\n", colored(style.Icon), colored(title))
	return err
}

// writeEntry writes one entry line with its short hash and closes references.
func writeEntry(text string, e Entry, style SectionStyle, w io.Writer, opts FormatOptions, width int) error {
	prefix := "  - "
	suffix := " (" + ShortHash(e.Hash)
	for _, issue := range e.Closes {
		suffix += ", #" + issue
	}
	suffix += ")"

	if opts.Plain {
		_, err := fmt.Fprintf(w, "%s%s%s\n", prefix, text, suffix)
		return err
	}

	wrapped := wrapText(text+suffix, width-len(prefix), "    ")

	colored := style.Color.SprintFunc()
	_, err := fmt.Fprintf(w, "%s%s\n", prefix, colored(wrapped))
	return err
}

// resolveWidth determines the terminal width to use.
func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps text to fit within maxWidth, using indent for continuation lines.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || len(text) <= maxWidth {
		return text
	}

	var lines []string
	remaining := text

	for len(remaining) > maxWidth {
		breakPoint := maxWidth
		for i := maxWidth - 1; i > 0; i-- {
			if remaining[i] == ' ' {
				breakPoint = i
				break
			}
		}

		lines = append(lines, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], " ")
	}

	if len(remaining) > 0 {
		lines = append(lines, remaining)
	}

	return strings.Join(lines, "\n"+indent)
}
