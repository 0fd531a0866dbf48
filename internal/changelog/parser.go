package changelog

import (
	"errors"
	"regexp"
	"strings"
)

// ErrNotConventional is returned by Parse for records whose subject line does
// not follow the conventional grammar. Callers skip such records.
var ErrNotConventional = errors.New("not a conventional commit")

var (
	subjectPattern = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9_-]*)(?:\(([^()\r\n]*)\))?(!)?: (.+)$`)
	closesPattern  = regexp.MustCompile(`(?i)\b(?:close[sd]?|fix(?:e[sd])?|resolve[sd]?)\s+(#\d+(?:\s*,\s*#\d+)*)`)
	breaksPattern  = regexp.MustCompile(`(?i)\b(?:breaks|broke)\s+(#\d+(?:\s*,\s*#\d+)*)`)
	issuePattern   = regexp.MustCompile(`#(\d+)`)
)

var breakingMarkers = []string{"BREAKING CHANGE:", "BREAKING-CHANGE:"}

// debugLogger is a function that logs debug messages when debug mode is enabled.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for parsing and aggregation.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Parse classifies one commit record.
// It returns ErrNotConventional when the subject line does not match
// "type(component)!: subject" or the subject text is blank.
func Parse(rec Record) (Entry, error) {
	subjectLine, body, _ := strings.Cut(rec.Message, "\n")
	subjectLine = strings.TrimRight(subjectLine, "\r \t")

	m := subjectPattern.FindStringSubmatch(subjectLine)
	if m == nil {
		return Entry{}, ErrNotConventional
	}
	subject := strings.TrimSpace(m[4])
	if subject == "" {
		return Entry{}, ErrNotConventional
	}

	e := Entry{
		Hash:      strings.TrimSpace(rec.Hash),
		Type:      m[1],
		Component: strings.TrimSpace(m[2]),
		Subject:   subject,
	}

	e.Closes = collectIssues(closesPattern, body)
	e.Breaks = collectIssues(breaksPattern, body)

	if note, ok := breakingNote(body); ok {
		e.Breaking = true
		e.BreakingNote = note
		if e.BreakingNote == "" {
			e.BreakingNote = subject
		}
	}
	if m[3] == "!" && !e.Breaking {
		e.Breaking = true
		e.BreakingNote = subject
	}
	if len(e.Breaks) > 0 && !e.Breaking {
		e.Breaking = true
		e.BreakingNote = subject
	}

	return e, nil
}

// ParseAll parses records in order, skipping those that are not conventional.
func ParseAll(recs []Record) []Entry {
	entries := make([]Entry, 0, len(recs))
	for _, rec := range recs {
		e, err := Parse(rec)
		if err != nil {
			logDebug("[changelog] skipping %s: %v", ShortHash(rec.Hash), err)
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// collectIssues returns the issue numbers referenced after pattern matches,
// deduplicated in order of first appearance.
func collectIssues(pattern *regexp.Regexp, body string) []string {
	var issues []string
	seen := make(map[string]bool)
	for _, m := range pattern.FindAllStringSubmatch(body, -1) {
		for _, num := range issuePattern.FindAllStringSubmatch(m[1], -1) {
			if seen[num[1]] {
				continue
			}
			seen[num[1]] = true
			issues = append(issues, num[1])
		}
	}
	return issues
}

// breakingNote extracts the text of a BREAKING CHANGE block. The block
// starts at the marker and runs until the next blank line.
func breakingNote(body string) (string, bool) {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		rest, ok := cutMarker(trimmed)
		if !ok {
			continue
		}

		parts := []string{}
		if rest = strings.TrimSpace(rest); rest != "" {
			parts = append(parts, rest)
		}
		for _, next := range lines[i+1:] {
			next = strings.TrimSpace(next)
			if next == "" {
				break
			}
			parts = append(parts, next)
		}
		return strings.Join(parts, " "), true
	}
	return "", false
}

func cutMarker(line string) (string, bool) {
	for _, marker := range breakingMarkers {
		if rest, ok := strings.CutPrefix(line, marker); ok {
			return rest, true
		}
	}
	return "", false
}
