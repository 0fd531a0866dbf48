// Package changelog turns conventional commits into release notes.
//
// This package implements:
//   - Commit parsing of "type(component)!: subject" records with closes,
//     breaks and BREAKING CHANGE body markers
//   - Aggregation into ordered sections and component groups driven by
//     alias tables
//   - Link templates for commit hashes and issue references per forge
//   - Markdown and JSON rendering, plus a colored terminal preview
//
// Everything here is pure: no I/O besides the io.Writer handed to
// FormatTerminal, no clock reads, no process exit.
//
// # JSON output
//
// The JSON format is a stable external interface:
//
//	{
//	  "version": "1.2.0",
//	  "subtitle": "Crusty Crab",
//	  "date": "2026-10-16",
//	  "patch_version": false,
//	  "sections": [
//	    {
//	      "title": "Features",
//	      "components": [
//	        {
//	          "name": "parser",
//	          "entries": [
//	            {
//	              "hash": "9a3c1e...",
//	              "short_hash": "9a3c1e7b",
//	              "type": "feat",
//	              "component": "parser",
//	              "subject": "add support for X",
//	              "commit_link": "https://github.com/o/r/commit/9a3c1e...",
//	              "closes": [{"issue": "3", "link": "https://github.com/o/r/issues/3"}],
//	              "breaks": [],
//	              "breaking": false,
//	              "breaking_note": ""
//	            }
//	          ]
//	        }
//	      ]
//	    }
//	  ]
//	}
//
// Sections without entries are omitted. The component name is "" for
// entries without a component. Link fields are "" when the active link
// style has no template for them.
package changelog
