package changelog

import (
	"encoding/json"
	"fmt"
	"io"
)

// jsonDocument mirrors Document in the documented JSON schema.
type jsonDocument struct {
	Version      string        `json:"version"`
	Subtitle     string        `json:"subtitle"`
	Date         string        `json:"date"`
	PatchVersion bool          `json:"patch_version"`
	Sections     []jsonSection `json:"sections"`
}

type jsonSection struct {
	Title      string          `json:"title"`
	Components []jsonComponent `json:"components"`
}

type jsonComponent struct {
	Name    string      `json:"name"`
	Entries []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	Hash         string          `json:"hash"`
	ShortHash    string          `json:"short_hash"`
	Type         string          `json:"type"`
	Component    string          `json:"component"`
	Subject      string          `json:"subject"`
	CommitLink   string          `json:"commit_link"`
	Closes       []jsonReference `json:"closes"`
	Breaks       []jsonReference `json:"breaks"`
	Breaking     bool            `json:"breaking"`
	BreakingNote string          `json:"breaking_note"`
}

type jsonReference struct {
	Issue string `json:"issue"`
	Link  string `json:"link"`
}

// RenderJSON writes the release as an indented JSON object followed by a
// newline. Empty sections are omitted and list fields are never null.
func RenderJSON(doc *Document, links LinkTemplates, w io.Writer) error {
	out := jsonDocument{
		Version:      doc.Header.Version,
		Subtitle:     doc.Header.Subtitle,
		Date:         doc.Header.Date,
		PatchVersion: doc.Header.Patch,
		Sections:     []jsonSection{},
	}

	for _, s := range doc.NonEmptySections() {
		js := jsonSection{Title: s.Title, Components: []jsonComponent{}}
		for _, g := range s.Components {
			jc := jsonComponent{Name: g.Name, Entries: make([]jsonEntry, 0, len(g.Entries))}
			for _, e := range g.Entries {
				jc.Entries = append(jc.Entries, toJSONEntry(e, links))
			}
			js.Components = append(js.Components, jc)
		}
		out.Sections = append(out.Sections, js)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

func toJSONEntry(e Entry, links LinkTemplates) jsonEntry {
	return jsonEntry{
		Hash:         e.Hash,
		ShortHash:    ShortHash(e.Hash),
		Type:         e.Type,
		Component:    e.Component,
		Subject:      e.Subject,
		CommitLink:   links.CommitURL(e.Hash),
		Closes:       toJSONReferences(e.Closes, links),
		Breaks:       toJSONReferences(e.Breaks, links),
		Breaking:     e.Breaking,
		BreakingNote: e.BreakingNote,
	}
}

func toJSONReferences(issues []string, links LinkTemplates) []jsonReference {
	refs := make([]jsonReference, 0, len(issues))
	for _, issue := range issues {
		refs = append(refs, jsonReference{Issue: issue, Link: links.IssueURL(issue)})
	}
	return refs
}
