package changelog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAliases_SectionOrder(t *testing.T) {
	t.Parallel()

	a := NewAliases([]SectionAliases{
		{Name: "Security", Aliases: []string{"sec", "mysec"}},
		{Name: "Bug Fixes", Aliases: []string{"bugfix"}},
		{Name: "Docs", Aliases: []string{"docs", "sec"}},
		{Name: "  ", Aliases: []string{"ignored"}},
	}, nil)

	assert.Equal(t, []string{"Features", "Performance", "Bug Fixes", "Security", "Docs"}, a.SectionNames())

	tests := map[string]struct {
		rawType string
		want    string
		found   bool
	}{
		"builtin feat":        {rawType: "feat", want: "Features", found: true},
		"builtin ft":          {rawType: "ft", want: "Features", found: true},
		"builtin perf":        {rawType: "perf", want: "Performance", found: true},
		"builtin fix":         {rawType: "fix", want: "Bug Fixes", found: true},
		"extended builtin":    {rawType: "bugfix", want: "Bug Fixes", found: true},
		"user section":        {rawType: "mysec", want: "Security", found: true},
		"first alias wins":    {rawType: "sec", want: "Security", found: true},
		"case sensitive":      {rawType: "Feat", found: false},
		"unknown type":        {rawType: "chore", found: false},
		"blank section alias": {rawType: "ignored", found: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, ok := a.Section(tt.rawType)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewAliases_Components(t *testing.T) {
	t.Parallel()

	a := NewAliases(nil, map[string][]string{
		"Parser":     {"parse", "parser"},
		"Link Links": {"links", "parse"},
	})

	assert.Equal(t, "Parser", a.Component("parser"))
	assert.Equal(t, "Link Links", a.Component("links"))
	assert.Equal(t, "Link Links", a.Component("parse"), "sorted display names resolve conflicts")
	assert.Equal(t, "writer", a.Component("writer"))
	assert.Equal(t, NoComponent, a.Component(""))
}

func TestNewAliases_NotShared(t *testing.T) {
	t.Parallel()

	first := NewAliases([]SectionAliases{{Name: "Features", Aliases: []string{"feature"}}}, nil)
	second := NewAliases(nil, nil)

	_, ok := first.Section("feature")
	assert.True(t, ok)
	_, ok = second.Section("feature")
	assert.False(t, ok, "aliases from one table must not leak into another")
	assert.Len(t, DefaultSections()[0].Aliases, 2)
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{Hash: "aaaa1111", Type: "feat", Component: "parser", Subject: "one"},
		{Hash: "bbbb2222", Type: "fix", Subject: "two"},
		{Hash: "cccc3333", Type: "chore", Subject: "dropped"},
		{Hash: "dddd4444", Type: "feat", Component: "writer", Subject: "four"},
		{Hash: "eeee5555", Type: "feat", Component: "parser", Subject: "five"},
		{Hash: "ffff6666", Type: "feat", Subject: "six"},
	}

	doc := Aggregate(entries, NewAliases(nil, nil), "")

	require.Len(t, doc.Sections, 3)
	features := doc.Sections[0]
	assert.Equal(t, "Features", features.Title)
	require.Len(t, features.Components, 3)
	assert.Equal(t, "parser", features.Components[0].Name)
	assert.Equal(t, []string{"one", "five"}, subjects(features.Components[0].Entries))
	assert.Equal(t, "writer", features.Components[1].Name)
	assert.Equal(t, NoComponent, features.Components[2].Name)

	assert.Equal(t, 0, doc.Sections[1].Len(), "performance is present but empty")
	assert.Equal(t, []string{"two"}, subjects(doc.Sections[2].Components[0].Entries))

	nonEmpty := doc.NonEmptySections()
	require.Len(t, nonEmpty, 2)
	assert.Equal(t, "Bug Fixes", nonEmpty[1].Title)
	assert.Equal(t, 5, doc.Len())

	for _, s := range doc.Sections {
		for _, g := range s.Components {
			for _, e := range g.Entries {
				assert.NotEqual(t, "chore", e.Type)
			}
		}
	}
}

func TestAggregate_FromBoundary(t *testing.T) {
	t.Parallel()

	entries := []Entry{
		{Hash: "aaaa1111ffff", Type: "feat", Subject: "newest"},
		{Hash: "bbbb2222ffff", Type: "feat", Subject: "middle"},
		{Hash: "cccc3333ffff", Type: "feat", Subject: "boundary"},
		{Hash: "dddd4444ffff", Type: "feat", Subject: "oldest"},
	}

	tests := map[string]struct {
		from string
		want []string
	}{
		"no boundary":          {from: "", want: []string{"newest", "middle", "boundary", "oldest"}},
		"full hash":            {from: "cccc3333ffff", want: []string{"newest", "middle"}},
		"abbreviated boundary": {from: "cccc333", want: []string{"newest", "middle"}},
		"boundary is newest":   {from: "aaaa1111ffff", want: nil},
		"boundary never seen":  {from: "99999999", want: []string{"newest", "middle", "boundary", "oldest"}},
		"boundary longer":      {from: "bbbb2222ffff0000", want: []string{"newest"}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			doc := Aggregate(entries, NewAliases(nil, nil), tt.from)
			var got []string
			for _, s := range doc.NonEmptySections() {
				for _, g := range s.Components {
					got = append(got, subjects(g.Entries)...)
				}
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAggregate_ComponentAliases(t *testing.T) {
	t.Parallel()

	aliases := NewAliases(nil, map[string][]string{"Parser": {"parse", "parser"}})
	doc := Aggregate([]Entry{
		{Hash: "1", Type: "feat", Component: "parse", Subject: "a"},
		{Hash: "2", Type: "feat", Component: "parser", Subject: "b"},
	}, aliases, "")

	require.Len(t, doc.Sections[0].Components, 1)
	assert.Equal(t, "Parser", doc.Sections[0].Components[0].Name)
	assert.Len(t, doc.Sections[0].Components[0].Entries, 2)
}

func TestAggregate_NilAliases(t *testing.T) {
	t.Parallel()

	doc := Aggregate([]Entry{{Hash: "1", Type: "perf", Subject: "faster"}}, nil, "")
	require.Len(t, doc.NonEmptySections(), 1)
	assert.Equal(t, "Performance", doc.NonEmptySections()[0].Title)
}

func TestDocument_Breaking(t *testing.T) {
	t.Parallel()

	doc := Aggregate([]Entry{
		{Hash: "1", Type: "fix", Subject: "b", Breaking: true, BreakingNote: "second"},
		{Hash: "2", Type: "feat", Subject: "a", Breaking: true, BreakingNote: "first"},
		{Hash: "3", Type: "feat", Subject: "c"},
	}, NewAliases(nil, nil), "")

	breaking := doc.Breaking()
	require.Len(t, breaking, 2)
	assert.Equal(t, "first", breaking[0].BreakingNote, "document order follows sections")
	assert.Equal(t, "second", breaking[1].BreakingNote)
}

func subjects(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Subject)
	}
	return out
}
