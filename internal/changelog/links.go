package changelog

import (
	"errors"
	"fmt"
	"strings"
)

// LinkStyle selects how commit hashes and issue numbers become hyperlinks.
type LinkStyle string

const (
	LinkStyleGitHub LinkStyle = "github"
	LinkStyleGitLab LinkStyle = "gitlab"
	LinkStyleStash  LinkStyle = "stash"
	LinkStyleCgit   LinkStyle = "cgit"
	LinkStyleNone   LinkStyle = "none"
)

// ErrUnknownLinkStyle is returned by ParseLinkStyle for unrecognized tokens.
var ErrUnknownLinkStyle = errors.New("unknown link style")

// LinkStyles returns every recognized link style.
func LinkStyles() []LinkStyle {
	return []LinkStyle{LinkStyleGitHub, LinkStyleGitLab, LinkStyleStash, LinkStyleCgit, LinkStyleNone}
}

// ParseLinkStyle reads a link style token case-insensitively.
// An empty token means github.
func ParseLinkStyle(token string) (LinkStyle, error) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return LinkStyleGitHub, nil
	}
	for _, s := range LinkStyles() {
		if string(s) == token {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLinkStyle, token)
}

// Placeholders substituted in LinkTemplates.
const (
	hashPlaceholder  = "{hash}"
	issuePlaceholder = "{issue}"
)

// LinkTemplates holds URL templates for one repository. An empty template
// means that kind of reference renders as plain text.
type LinkTemplates struct {
	Style  LinkStyle
	Commit string
	Issue  string
}

// ResolveLinks expands the templates of style for repo. Without a
// repository URL every style degrades to none.
func ResolveLinks(repo string, style LinkStyle) LinkTemplates {
	repo = strings.TrimRight(strings.TrimSpace(repo), "/")
	if repo == "" || style == LinkStyleNone {
		return LinkTemplates{Style: LinkStyleNone}
	}

	t := LinkTemplates{Style: style}
	switch style {
	case LinkStyleStash:
		t.Commit = repo + "/commits/" + hashPlaceholder
	case LinkStyleCgit:
		t.Commit = repo + "/commit/?id=" + hashPlaceholder
	default:
		t.Commit = repo + "/commit/" + hashPlaceholder
		t.Issue = repo + "/issues/" + issuePlaceholder
	}
	return t
}

// CommitURL returns the link for hash, or "" when commits are unlinked.
func (t LinkTemplates) CommitURL(hash string) string {
	if t.Commit == "" || hash == "" {
		return ""
	}
	return strings.ReplaceAll(t.Commit, hashPlaceholder, hash)
}

// IssueURL returns the link for an issue number, or "" when issues are unlinked.
func (t LinkTemplates) IssueURL(issue string) string {
	if t.Issue == "" || issue == "" {
		return ""
	}
	return strings.ReplaceAll(t.Issue, issuePlaceholder, issue)
}

// EntryLinks is the inline Markdown for the references of one entry.
type EntryLinks struct {
	Hash   string
	Closes []string
	Breaks []string
}

// RenderLinks renders the short hash and every closes and breaks reference
// of e as Markdown links, or as plain text when unlinked.
func RenderLinks(t LinkTemplates, e Entry) EntryLinks {
	links := EntryLinks{Hash: markdownLink(ShortHash(e.Hash), t.CommitURL(e.Hash))}
	for _, issue := range e.Closes {
		links.Closes = append(links.Closes, markdownLink("#"+issue, t.IssueURL(issue)))
	}
	for _, issue := range e.Breaks {
		links.Breaks = append(links.Breaks, markdownLink("#"+issue, t.IssueURL(issue)))
	}
	return links
}

// ShortHashLen is the number of hash characters shown in rendered output.
const ShortHashLen = 8

// ShortHash abbreviates hash for display.
func ShortHash(hash string) string {
	if len(hash) <= ShortHashLen {
		return hash
	}
	return hash[:ShortHashLen]
}

func markdownLink(text, url string) string {
	if url == "" {
		return text
	}
	return "[" + text + "](" + url + ")"
}
