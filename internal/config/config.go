// Package config provides layered configuration for clog using koanf.
// Configuration is loaded with priority: command-line flags > environment
// variables (CLOG_*) > config file (.clog.toml by default) > defaults. The
// config file may be TOML, YAML or JSON, chosen by its extension.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ariel-frischer/clog/internal/changelog"
	clerrors "github.com/ariel-frischer/clog/internal/errors"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ConfigSource tracks where the configuration file came from
type ConfigSource string

const (
	SourceDefault ConfigSource = "default"
	SourceFile    ConfigSource = "file"
)

// Configuration is the record handed to the changelog pipeline.
type Configuration struct {
	Repository string `koanf:"repository"`
	Subtitle   string `koanf:"subtitle"`
	// LinkStyle is one of github, gitlab, stash, cgit, none.
	LinkStyle string `koanf:"link-style" validate:"linkstyle"`
	// OutputFormat is markdown or json.
	OutputFormat string `koanf:"output-format" validate:"outputformat"`

	// Changelog is read and rewritten in place. Mutually exclusive with
	// Outfile and Infile.
	Changelog string `koanf:"changelog" validate:"excluded_with=Outfile Infile"`
	Outfile   string `koanf:"outfile"`
	Infile    string `koanf:"infile"`

	From          string `koanf:"from"`
	To            string `koanf:"to"`
	FromLatestTag bool   `koanf:"from-latest-tag"`

	GitDir      string `koanf:"git-dir"`
	GitWorkTree string `koanf:"git-work-tree"`

	// Strict makes every error kind fatal.
	Strict bool `koanf:"strict"`

	// Sections and Components come from the [sections] and [components]
	// tables; Sections keeps declaration order.
	Sections   []changelog.SectionAliases `koanf:"-"`
	Components map[string][]string        `koanf:"-"`

	// Path is the resolved config file path and Dir its directory, which
	// is also where the repository is looked up when no git-dir is set.
	Path   string       `koanf:"-"`
	Dir    string       `koanf:"-"`
	Source ConfigSource `koanf:"-"`

	// Style and Format are the parsed forms of LinkStyle and OutputFormat.
	Style  changelog.LinkStyle `koanf:"-"`
	Format changelog.Format    `koanf:"-"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ConfigPath overrides the config file path (default: .clog.toml in the working directory)
	ConfigPath string
	// Flags are command-line flags layered on top of every other source.
	// Only flags listed in flagKeys are considered.
	Flags *pflag.FlagSet
	// Getwd returns the working directory (default: os.Getwd)
	Getwd func() (string, error)
}

// Load loads configuration from the given config file path.
func Load(configPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ConfigPath: configPath})
}

// LoadWithOptions loads configuration with custom options.
// Returned errors are classified *clerrors.Error values.
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	path, err := ResolvePath(opts.ConfigPath, opts.Getwd)
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")
	loadDefaults(k)

	cfg := &Configuration{
		Path:       path,
		Dir:        filepath.Dir(path),
		Source:     SourceDefault,
		Components: map[string][]string{},
	}

	if err := loadConfigFile(k, cfg); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	if err := loadFlagConfig(k, opts.Flags); err != nil {
		return nil, err
	}

	return finalizeConfig(k, cfg)
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	for key, value := range GetDefaults() {
		k.Set(key, value)
	}
}

// loadConfigFile reads the config file, validates its syntax and shape,
// merges the clog table into k and collects the alias tables into cfg.
// A missing file leaves the defaults in place.
func loadConfigFile(k *koanf.Koanf, cfg *Configuration) error {
	data, err := os.ReadFile(cfg.Path)
	if errors.Is(err, fs.ErrNotExist) {
		logDebug("[config] no config file at %s, using defaults", cfg.Path)
		return nil
	}
	if err != nil {
		return clerrors.ConfigReadFailed(cfg.Path, err)
	}

	// An empty file is valid - will use defaults
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}

	format := formatFor(cfg.Path)
	if err := ValidateSyntax(data, format, cfg.Path); err != nil {
		return clerrors.ConfigSyntax(cfg.Path, err)
	}

	raw, err := format.parser().Unmarshal(data)
	if err != nil {
		return clerrors.ConfigSyntax(cfg.Path, err)
	}
	if _, ok := raw[clogKey].(map[string]interface{}); !ok {
		return clerrors.ConfigShape(cfg.Path, "missing ["+clogKey+"] table")
	}

	fk := koanf.New(".")
	if err := fk.Load(file.Provider(cfg.Path), format.parser()); err != nil {
		return clerrors.ConfigSyntax(cfg.Path, err)
	}
	if err := k.Merge(fk); err != nil {
		return clerrors.Wrap(err, clerrors.UnknownErr, "merging config file")
	}

	tables, err := scanAliasTables(data, format)
	if err != nil {
		return clerrors.ConfigShape(cfg.Path, err.Error())
	}
	cfg.Sections = tables.sections
	cfg.Components = tables.components
	cfg.Source = SourceFile

	logDebug("[config] loaded %s (%d sections, %d components)", cfg.Path, len(cfg.Sections), len(cfg.Components))
	return nil
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider(envPrefix, ".", envTransform), nil); err != nil {
		return clerrors.Wrap(err, clerrors.UnknownErr, "loading environment config")
	}
	return nil
}

// loadFlagConfig loads explicitly set command-line flags.
func loadFlagConfig(k *koanf.Koanf, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
		key, ok := flagKeys[f.Name]
		if !ok {
			return "", nil
		}
		return clogKey + "." + key, posflag.FlagVal(flags, f)
	})
	if err := k.Load(provider, nil); err != nil {
		return clerrors.Wrap(err, clerrors.UnknownErr, "loading command-line flags")
	}
	return nil
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf, cfg *Configuration) (*Configuration, error) {
	if err := k.Unmarshal(clogKey, cfg); err != nil {
		return nil, clerrors.ConfigShape(cfg.Path, err.Error())
	}

	cfg.LinkStyle = strings.ToLower(strings.TrimSpace(cfg.LinkStyle))
	cfg.OutputFormat = strings.ToLower(strings.TrimSpace(cfg.OutputFormat))
	cfg.Repository = strings.TrimSpace(cfg.Repository)

	if err := ValidateConfigValues(cfg); err != nil {
		return nil, err
	}

	// Both parse cleanly after validation.
	cfg.Style, _ = changelog.ParseLinkStyle(cfg.LinkStyle)
	cfg.Format, _ = changelog.ParseFormat(cfg.OutputFormat)

	logDebug("[config] %s", cfg.describe())
	return cfg, nil
}

// Policy returns the fatality policy selected by the strict setting.
func (c *Configuration) Policy() clerrors.Policy {
	if c.Strict {
		return clerrors.StrictPolicy
	}
	return clerrors.DefaultPolicy
}

// Aliases builds the section and component lookup tables.
func (c *Configuration) Aliases() *changelog.Aliases {
	return changelog.NewAliases(c.Sections, c.Components)
}

// envTransform converts environment variable names to config keys
// Example: CLOG_LINK_STYLE -> clog.link-style
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, envPrefix))
	return clogKey + "." + strings.ReplaceAll(key, "_", "-")
}

// debugLogger is a function that logs debug messages when debug mode is enabled.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for configuration loading.
// Pass nil to disable debug logging.
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// describe renders a short summary used in debug output.
func (c *Configuration) describe() string {
	return fmt.Sprintf("source=%s link-style=%s format=%s", c.Source, c.Style, c.Format)
}
