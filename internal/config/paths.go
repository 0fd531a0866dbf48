package config

import (
	"os"
	"path/filepath"
	"strings"

	clerrors "github.com/ariel-frischer/clog/internal/errors"
)

// DefaultConfigFile is the config file looked up in the working directory
// when no path is given.
const DefaultConfigFile = ".clog.toml"

const (
	clogKey   = "clog"
	envPrefix = "CLOG_"
)

// ResolvePath returns the absolute config path for configPath. An empty
// path means DefaultConfigFile; relative paths are joined to the working
// directory. A working directory failure is a CurrentDirErr.
func ResolvePath(configPath string, getwd func() (string, error)) (string, error) {
	if getwd == nil {
		getwd = os.Getwd
	}
	if configPath == "" {
		configPath = DefaultConfigFile
	}
	if filepath.IsAbs(configPath) {
		return filepath.Clean(configPath), nil
	}

	cwd, err := getwd()
	if err != nil {
		return "", clerrors.WorkingDirUnavailable(err)
	}
	return filepath.Join(cwd, configPath), nil
}

// fileFormat is the syntax of a config file.
type fileFormat int

const (
	formatTOML fileFormat = iota
	formatYAML
	formatJSON
)

// String returns the format name.
func (f fileFormat) String() string {
	switch f {
	case formatYAML:
		return "yaml"
	case formatJSON:
		return "json"
	default:
		return "toml"
	}
}

// formatFor picks the format from the file extension. Anything other than
// .yml, .yaml or .json is read as TOML.
func formatFor(path string) fileFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return formatYAML
	case ".json":
		return formatJSON
	default:
		return formatTOML
	}
}
