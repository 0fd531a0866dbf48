package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/v2"
)

// GetDefaultConfigTemplate returns a fully commented .clog.toml template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# clog configuration
# Values here are overridden by CLOG_* environment variables and command-line flags.

[clog]
repository = ""                 # Base URL used for commit and issue links
subtitle = ""                   # Text after the version in the release header
link-style = "github"           # github | gitlab | stash | cgit | none
output-format = "markdown"      # markdown | json
# changelog = "CHANGELOG.md"    # Read and rewritten in place (excludes outfile/infile)
# outfile = ""                  # Write the merged changelog here
# infile = ""                   # Read the previous changelog from here
# from = ""                     # Exclusive start of the commit range
# to = "HEAD"                   # Inclusive end of the commit range
# from-latest-tag = false       # Start the range at the newest semver tag
# strict = false                # Treat every error as fatal

# Extra commit type aliases per section. A built-in section name
# (Features, Performance, Bug Fixes) extends that section; other names
# add a new section after the built-ins, in declaration order.
[sections]
# Documentation = ["docs", "doc"]

# Component display names with the raw scopes that map to them.
[components]
# Parser = ["parse", "lexer"]
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		clogKey + ".repository":      "",
		clogKey + ".subtitle":        "",
		clogKey + ".link-style":      "github",
		clogKey + ".output-format":   "markdown",
		clogKey + ".changelog":       "",
		clogKey + ".outfile":         "",
		clogKey + ".infile":          "",
		clogKey + ".from":            "",
		clogKey + ".to":              "HEAD",
		clogKey + ".from-latest-tag": false,
		clogKey + ".git-dir":         "",
		clogKey + ".git-work-tree":   "",
		clogKey + ".strict":          false,
	}
}

// flagKeys maps command-line flag names to keys under the clog table.
// Flags not listed here never reach the configuration.
var flagKeys = map[string]string{
	"repository":      "repository",
	"subtitle":        "subtitle",
	"link-style":      "link-style",
	"format":          "output-format",
	"changelog":       "changelog",
	"outfile":         "outfile",
	"infile":          "infile",
	"from":            "from",
	"to":              "to",
	"from-latest-tag": "from-latest-tag",
	"git-dir":         "git-dir",
	"work-tree":       "git-work-tree",
	"strict":          "strict",
}

// parser returns the koanf parser for the format.
func (f fileFormat) parser() koanf.Parser {
	switch f {
	case formatYAML:
		return yaml.Parser()
	case formatJSON:
		return json.Parser()
	default:
		return toml.Parser()
	}
}

// WriteDefaultConfig writes the commented template to path. An existing
// file is only replaced when force is set.
func WriteDefaultConfig(path string, force bool) error {
	flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
	if force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	if _, err := f.WriteString(GetDefaultConfigTemplate()); err != nil {
		f.Close()
		return fmt.Errorf("writing config file: %w", err)
	}
	return f.Close()
}
