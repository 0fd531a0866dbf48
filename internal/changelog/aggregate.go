package changelog

import (
	"sort"
	"strings"
)

// Built-in section titles. They are always present and always come first.
const (
	SectionFeatures    = "Features"
	SectionPerformance = "Performance"
	SectionBugFixes    = "Bug Fixes"
)

// SectionAliases names a section and the commit types that land in it.
type SectionAliases struct {
	Name    string
	Aliases []string
}

// DefaultSections returns the built-in sections in their fixed order.
func DefaultSections() []SectionAliases {
	return []SectionAliases{
		{Name: SectionFeatures, Aliases: []string{"feat", "ft"}},
		{Name: SectionPerformance, Aliases: []string{"perf"}},
		{Name: SectionBugFixes, Aliases: []string{"fix", "fx"}},
	}
}

// Aliases holds the section and component lookup tables. It is read-only
// once built and can be shared freely.
type Aliases struct {
	sections         []string
	sectionByAlias   map[string]string
	componentByAlias map[string]string
}

// NewAliases builds lookup tables from the user sections and components.
// User sections follow the built-ins in declaration order; a user section
// named like a built-in extends it in place. When two sections claim the
// same alias the first one wins. Component display names are consulted in
// sorted order so alias conflicts resolve the same way on every run.
func NewAliases(sections []SectionAliases, components map[string][]string) *Aliases {
	a := &Aliases{
		sectionByAlias:   make(map[string]string),
		componentByAlias: make(map[string]string),
	}

	index := make(map[string]int)
	merged := DefaultSections()
	for i, s := range merged {
		index[s.Name] = i
	}
	for _, s := range sections {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			continue
		}
		if i, ok := index[name]; ok {
			merged[i].Aliases = append(merged[i].Aliases, s.Aliases...)
			continue
		}
		index[name] = len(merged)
		merged = append(merged, SectionAliases{Name: name, Aliases: append([]string(nil), s.Aliases...)})
	}

	for _, s := range merged {
		a.sections = append(a.sections, s.Name)
		for _, alias := range s.Aliases {
			alias = strings.TrimSpace(alias)
			if alias == "" {
				continue
			}
			if _, taken := a.sectionByAlias[alias]; taken {
				continue
			}
			a.sectionByAlias[alias] = s.Name
		}
	}

	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, alias := range components[name] {
			alias = strings.TrimSpace(alias)
			if alias == "" {
				continue
			}
			if _, taken := a.componentByAlias[alias]; taken {
				continue
			}
			a.componentByAlias[alias] = name
		}
	}

	return a
}

// SectionNames returns every section title in document order.
func (a *Aliases) SectionNames() []string {
	return append([]string(nil), a.sections...)
}

// Section returns the section title for a raw commit type.
// Matching is exact and case-sensitive.
func (a *Aliases) Section(rawType string) (string, bool) {
	name, ok := a.sectionByAlias[rawType]
	return name, ok
}

// Component returns the display name for a raw component, which is the
// component itself when no alias matches.
func (a *Aliases) Component(raw string) string {
	if raw == NoComponent {
		return NoComponent
	}
	if name, ok := a.componentByAlias[raw]; ok {
		return name
	}
	return raw
}

// Aggregate groups entries into sections and components in a single pass.
// Entries are expected newest first. When from is non-empty, aggregation
// stops at the first entry whose hash matches it (either hash may be an
// abbreviation of the other); that entry and everything after it are
// excluded. Entries whose type has no section alias are dropped.
func Aggregate(entries []Entry, aliases *Aliases, from string) *Document {
	if aliases == nil {
		aliases = NewAliases(nil, nil)
	}

	doc := &Document{}
	sectionIdx := make(map[string]int, len(aliases.sections))
	for _, name := range aliases.sections {
		sectionIdx[name] = len(doc.Sections)
		doc.Sections = append(doc.Sections, Section{Title: name})
	}

	groupIdx := make(map[string]map[string]int)
	from = strings.TrimSpace(from)

	for _, e := range entries {
		if from != "" && sameCommit(e.Hash, from) {
			logDebug("[changelog] reached boundary %s", ShortHash(from))
			break
		}

		title, ok := aliases.Section(e.Type)
		if !ok {
			logDebug("[changelog] dropping %s: no section for type %q", ShortHash(e.Hash), e.Type)
			continue
		}

		component := aliases.Component(e.Component)
		si := sectionIdx[title]
		groups, ok := groupIdx[title]
		if !ok {
			groups = make(map[string]int)
			groupIdx[title] = groups
		}

		section := &doc.Sections[si]
		gi, ok := groups[component]
		if !ok {
			gi = len(section.Components)
			groups[component] = gi
			section.Components = append(section.Components, ComponentGroup{Name: component})
		}
		section.Components[gi].Entries = append(section.Components[gi].Entries, e)
	}

	return doc
}

func sameCommit(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.HasPrefix(a, b) || strings.HasPrefix(b, a)
}
