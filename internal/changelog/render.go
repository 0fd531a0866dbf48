package changelog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Format selects the output serialization.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ErrUnknownFormat is returned by ParseFormat for unrecognized tokens.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat reads a format token case-insensitively.
// An empty token means markdown; "md" is accepted as a shorthand.
func ParseFormat(token string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, token)
	}
}

// Render serializes doc in the given format. It never mutates doc and
// produces identical bytes for identical input.
func Render(doc *Document, f Format, links LinkTemplates) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatMarkdown, "":
		err = RenderMarkdown(doc, links, &buf)
	case FormatJSON:
		err = RenderJSON(doc, links, &buf)
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderMarkdown writes the release as Markdown. The output ends with a
// blank line so that previously written releases stay separated when the
// result is prepended to an existing changelog.
func RenderMarkdown(doc *Document, links LinkTemplates, w io.Writer) error {
	if err := renderHeader(doc.Header, w); err != nil {
		return fmt.Errorf("rendering header: %w", err)
	}

	for _, s := range doc.NonEmptySections() {
		if err := renderSection(s, links, w); err != nil {
			return fmt.Errorf("rendering section %s: %w", s.Title, err)
		}
	}

	if err := renderBreaking(doc, links, w); err != nil {
		return fmt.Errorf("rendering breaking changes: %w", err)
	}

	_, err := io.WriteString(w, "\n")
	return err
}

// renderHeader writes the anchor and release heading.
func renderHeader(h Header, w io.Writer) error {
	_, err := fmt.Fprintf(w, "<a name=\"%s\"></a>\n%s\n", h.Version, formatVersionHeader(h))
	return err
}

// formatVersionHeader formats the heading line, using a smaller heading
// for patch releases.
func formatVersionHeader(h Header) string {
	level := "##"
	if h.Patch {
		level = "###"
	}

	parts := []string{level}
	if h.Version != "" {
		parts = append(parts, h.Version)
	}
	if h.Subtitle != "" {
		parts = append(parts, h.Subtitle)
	}
	if h.Date != "" {
		parts = append(parts, "("+h.Date+")")
	}
	return strings.Join(parts, " ")
}

// renderSection writes one section. Components with several entries get a
// lead-in line with their entries nested beneath it.
func renderSection(s Section, links LinkTemplates, w io.Writer) error {
	if _, err := fmt.Fprintf(w, "\n#### %s\n\n", s.Title); err != nil {
		return err
	}

	for _, g := range s.Components {
		nested := len(g.Entries) > 1 && g.Name != NoComponent

		prefix := "*"
		switch {
		case nested:
			if _, err := fmt.Fprintf(w, "* **%s:**\n", g.Name); err != nil {
				return err
			}
			prefix = "  *"
		case g.Name != NoComponent:
			prefix = fmt.Sprintf("* **%s:**", g.Name)
		}

		for _, e := range g.Entries {
			if _, err := fmt.Fprintf(w, "%s %s\n", prefix, formatEntryLine(e, links)); err != nil {
				return err
			}
		}
	}
	return nil
}

// formatEntryLine returns "subject (hash, closes #1, breaks #2)".
func formatEntryLine(e Entry, links LinkTemplates) string {
	l := RenderLinks(links, e)
	refs := l.Hash
	if len(l.Closes) > 0 {
		refs += ", closes " + strings.Join(l.Closes, ", ")
	}
	if len(l.Breaks) > 0 {
		refs += ", breaks " + strings.Join(l.Breaks, ", ")
	}
	return fmt.Sprintf("%s (%s)", e.Subject, refs)
}

// renderBreaking writes the trailing Breaking Changes block.
func renderBreaking(doc *Document, links LinkTemplates, w io.Writer) error {
	if len(doc.Breaking()) == 0 {
		return nil
	}

	if _, err := io.WriteString(w, "\n#### Breaking Changes\n\n"); err != nil {
		return err
	}
	for _, s := range doc.Sections {
		for _, g := range s.Components {
			for _, e := range g.Entries {
				if !e.Breaking {
					continue
				}
				if _, err := io.WriteString(w, formatBreakingLine(g.Name, e, links)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func formatBreakingLine(component string, e Entry, links LinkTemplates) string {
	l := RenderLinks(links, e)
	lead := "*"
	if component != NoComponent {
		lead = fmt.Sprintf("* **%s:**", component)
	}
	line := fmt.Sprintf("%s %s (%s", lead, e.BreakingNote, l.Hash)
	if len(l.Breaks) > 0 {
		line += ", breaks " + strings.Join(l.Breaks, ", ")
	}
	return line + ")\n"
}
