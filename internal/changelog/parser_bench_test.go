package changelog

import (
	"fmt"
	"strings"
	"testing"
)

// generateRecords creates count commit records cycling through section
// types, components and body markers.
func generateRecords(count int) []Record {
	types := []string{"feat", "fix", "perf", "chore", "docs"}
	components := []string{"parser", "", "writer", "cli"}

	recs := make([]Record, 0, count)
	for i := 0; i < count; i++ {
		var b strings.Builder
		b.WriteString(types[i%len(types)])
		if c := components[i%len(components)]; c != "" {
			fmt.Fprintf(&b, "(%s)", c)
		}
		fmt.Fprintf(&b, ": change number %d\n\nSome body text.\n", i)
		if i%3 == 0 {
			fmt.Fprintf(&b, "closes #%d, #%d\n", i, i+1)
		}
		if i%10 == 0 {
			b.WriteString("\nBREAKING CHANGE: behaviour changed\n")
		}
		recs = append(recs, Record{Hash: fmt.Sprintf("%040x", i), Message: b.String()})
	}
	return recs
}

func BenchmarkParseAll(b *testing.B) {
	sizes := []int{10, 100, 1000}

	for _, size := range sizes {
		recs := generateRecords(size)
		b.Run(fmt.Sprintf("records_%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				ParseAll(recs)
			}
		})
	}
}

func BenchmarkRenderMarkdown(b *testing.B) {
	entries := ParseAll(generateRecords(1000))
	doc := Aggregate(entries, NewAliases(nil, nil), "")
	doc.Header = Header{Version: "1.0.0", Date: "2026-01-15"}
	links := ResolveLinks("https://github.com/o/r", LinkStyleGitHub)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Render(doc, FormatMarkdown, links); err != nil {
			b.Fatal(err)
		}
	}
}
