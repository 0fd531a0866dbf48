package changelog

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	hashA = "aaaaaaaa11111111aaaaaaaa11111111aaaaaaaa"
	hashB = "bbbbbbbb22222222bbbbbbbb22222222bbbbbbbb"
	hashC = "cccccccc33333333cccccccc33333333cccccccc"
	hashD = "dddddddd44444444dddddddd44444444dddddddd"
)

func renderMarkdownString(doc *Document, links LinkTemplates) (string, error) {
	var b strings.Builder
	if err := RenderMarkdown(doc, links, &b); err != nil {
		return "", err
	}
	return b.String(), nil
}

func sampleDocument(t *testing.T) *Document {
	t.Helper()

	entries := ParseAll([]Record{
		{Hash: hashA, Message: "feat(parser): add support for X\n\ncloses #3, #4"},
		{Hash: hashB, Message: "fix: correct bug"},
		{Hash: hashC, Message: "feat(parser): handle scopes\n\nBREAKING CHANGE: removes old API"},
		{Hash: hashD, Message: "chore: update deps"},
	})
	require.Len(t, entries, 4)

	doc := Aggregate(entries, NewAliases(nil, nil), "")
	doc.Header = Header{Version: "1.2.0", Subtitle: "Crusty", Date: "2026-01-15"}
	return doc
}

func TestRenderMarkdown_Layout(t *testing.T) {
	t.Parallel()

	doc := sampleDocument(t)
	links := ResolveLinks("https://github.com/o/r", LinkStyleGitHub)

	got, err := renderMarkdownString(doc, links)
	require.NoError(t, err)

	want := `<a name="1.2.0"></a>
## 1.2.0 Crusty (2026-01-15)

#### Features

* **parser:**
  * add support for X ([aaaaaaaa](https://github.com/o/r/commit/` + hashA + `), closes [#3](https://github.com/o/r/issues/3), [#4](https://github.com/o/r/issues/4))
  * handle scopes ([cccccccc](https://github.com/o/r/commit/` + hashC + `))

#### Bug Fixes

* correct bug ([bbbbbbbb](https://github.com/o/r/commit/` + hashB + `))

#### Breaking Changes

* **parser:** removes old API ([cccccccc](https://github.com/o/r/commit/` + hashC + `))

`
	assert.Equal(t, want, got)
}

func TestRenderMarkdown(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		header      Header
		entries     []Entry
		style       LinkStyle
		contains    []string
		notContains []string
	}{
		"patch release uses smaller heading": {
			header:      Header{Version: "1.2.1", Date: "2026-01-15", Patch: true},
			entries:     []Entry{{Hash: hashA, Type: "fix", Subject: "x"}},
			style:       LinkStyleGitHub,
			contains:    []string{"### 1.2.1 (2026-01-15)\n"},
			notContains: []string{"\n## 1.2.1"},
		},
		"no date and no subtitle": {
			header:   Header{Version: "abc1234"},
			entries:  []Entry{{Hash: hashA, Type: "feat", Subject: "x"}},
			style:    LinkStyleGitHub,
			contains: []string{"<a name=\"abc1234\"></a>\n## abc1234\n"},
		},
		"single component entry stays inline": {
			header:      Header{Version: "1.0.0"},
			entries:     []Entry{{Hash: hashA, Type: "feat", Component: "cli", Subject: "x"}},
			style:       LinkStyleGitHub,
			contains:    []string{"* **cli:** x ("},
			notContains: []string{"* **cli:**\n"},
		},
		"none style renders plain references": {
			header:      Header{Version: "1.0.0"},
			entries:     []Entry{{Hash: hashA, Type: "feat", Subject: "x", Closes: []string{"5"}}},
			style:       LinkStyleNone,
			contains:    []string{"* x (aaaaaaaa, closes #5)"},
			notContains: []string{"](", "[#5]"},
		},
		"breaks references": {
			header:   Header{Version: "1.0.0"},
			entries:  []Entry{{Hash: hashA, Type: "fix", Subject: "x", Breaks: []string{"8"}, Breaking: true, BreakingNote: "x"}},
			style:    LinkStyleNone,
			contains: []string{"* x (aaaaaaaa, breaks #8)\n", "#### Breaking Changes\n\n* x (aaaaaaaa, breaks #8)\n"},
		},
		"empty document has heading only": {
			header:      Header{Version: "1.0.0"},
			style:       LinkStyleGitHub,
			contains:    []string{"## 1.0.0\n"},
			notContains: []string{"####"},
		},
		"user section after builtins": {
			header: Header{Version: "1.0.0"},
			entries: []Entry{
				{Hash: hashA, Type: "docs", Subject: "d"},
				{Hash: hashB, Type: "perf", Subject: "p"},
			},
			style:    LinkStyleNone,
			contains: []string{"#### Performance\n\n* p (bbbbbbbb)\n\n#### Documentation\n\n* d (aaaaaaaa)\n"},
		},
	}

	aliases := NewAliases([]SectionAliases{{Name: "Documentation", Aliases: []string{"docs"}}}, nil)
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			doc := Aggregate(tt.entries, aliases, "")
			doc.Header = tt.header

			got, err := renderMarkdownString(doc, ResolveLinks("https://github.com/o/r", tt.style))
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.notContains {
				assert.NotContains(t, got, s)
			}
			assert.True(t, strings.HasSuffix(got, "\n\n"), "output ends with a blank line")
		})
	}
}

func TestRender_EveryReferenceLinked(t *testing.T) {
	t.Parallel()

	doc := sampleDocument(t)
	for _, style := range LinkStyles() {
		links := ResolveLinks("https://forge.example/o/r", style)
		out, err := Render(doc, FormatMarkdown, links)
		require.NoError(t, err)

		for _, s := range doc.NonEmptySections() {
			for _, g := range s.Components {
				for _, e := range g.Entries {
					rendered := RenderLinks(links, e)
					assert.Contains(t, string(out), rendered.Hash, "style %s", style)
					for _, c := range rendered.Closes {
						assert.Contains(t, string(out), c, "style %s", style)
					}
				}
			}
		}
	}
}

func TestRender_Deterministic(t *testing.T) {
	t.Parallel()

	links := ResolveLinks("https://github.com/o/r", LinkStyleGitHub)
	for _, f := range []Format{FormatMarkdown, FormatJSON} {
		first, err := Render(sampleDocument(t), f, links)
		require.NoError(t, err)
		second, err := Render(sampleDocument(t), f, links)
		require.NoError(t, err)
		assert.Equal(t, first, second, "format %s", f)
	}
}

func TestRender_DoesNotMutate(t *testing.T) {
	t.Parallel()

	doc := sampleDocument(t)
	before := *doc
	beforeSections := len(doc.Sections)

	_, err := Render(doc, FormatJSON, ResolveLinks("", LinkStyleNone))
	require.NoError(t, err)
	_, err = Render(doc, FormatMarkdown, ResolveLinks("", LinkStyleNone))
	require.NoError(t, err)

	assert.Equal(t, before.Header, doc.Header)
	assert.Len(t, doc.Sections, beforeSections)
}

func TestRender_UnknownFormat(t *testing.T) {
	t.Parallel()

	_, err := Render(sampleDocument(t), Format("yaml"), LinkTemplates{})
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		token   string
		want    Format
		wantErr bool
	}{
		"empty":    {token: "", want: FormatMarkdown},
		"markdown": {token: "markdown", want: FormatMarkdown},
		"md":       {token: "MD", want: FormatMarkdown},
		"json":     {token: "Json", want: FormatJSON},
		"yaml":     {token: "yaml", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseFormat(tt.token)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderJSON_Schema(t *testing.T) {
	t.Parallel()

	doc := sampleDocument(t)
	out, err := Render(doc, FormatJSON, ResolveLinks("https://github.com/o/r", LinkStyleGitHub))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(out), "}\n"))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "1.2.0", decoded["version"])
	assert.Equal(t, "Crusty", decoded["subtitle"])
	assert.Equal(t, "2026-01-15", decoded["date"])
	assert.Equal(t, false, decoded["patch_version"])

	sections, ok := decoded["sections"].([]any)
	require.True(t, ok)
	require.Len(t, sections, 2, "empty sections are omitted")

	features := sections[0].(map[string]any)
	assert.Equal(t, "Features", features["title"])
	components := features["components"].([]any)
	require.Len(t, components, 1)
	parser := components[0].(map[string]any)
	assert.Equal(t, "parser", parser["name"])

	entries := parser["entries"].([]any)
	require.Len(t, entries, 2)
	first := entries[0].(map[string]any)
	assert.Equal(t, hashA, first["hash"])
	assert.Equal(t, "aaaaaaaa", first["short_hash"])
	assert.Equal(t, "feat", first["type"])
	assert.Equal(t, "parser", first["component"])
	assert.Equal(t, "add support for X", first["subject"])
	assert.Equal(t, "https://github.com/o/r/commit/"+hashA, first["commit_link"])
	assert.Equal(t, []any{
		map[string]any{"issue": "3", "link": "https://github.com/o/r/issues/3"},
		map[string]any{"issue": "4", "link": "https://github.com/o/r/issues/4"},
	}, first["closes"])
	assert.Equal(t, []any{}, first["breaks"])
	assert.Equal(t, false, first["breaking"])

	second := entries[1].(map[string]any)
	assert.Equal(t, true, second["breaking"])
	assert.Equal(t, "removes old API", second["breaking_note"])
}

func TestRenderJSON_EmptyDocument(t *testing.T) {
	t.Parallel()

	doc := Aggregate(nil, NewAliases(nil, nil), "")
	doc.Header = Header{Version: "0.1.0"}

	out, err := Render(doc, FormatJSON, LinkTemplates{})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"sections": []`)
}
