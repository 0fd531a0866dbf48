package errors

import "fmt"

// Common error messages for the clog CLI.
// These templates ensure consistent, actionable error messages.

// ConfigReadFailed creates an error for a config file that exists but cannot be read.
func ConfigReadFailed(path string, err error) *Error {
	return Wrap(err, TomlReadErr,
		fmt.Sprintf("reading %s", path),
		"Check file permissions: ls -la "+path,
	)
}

// ConfigSyntax creates an error for a config file with invalid syntax.
func ConfigSyntax(path string, err error) *Error {
	return Wrap(err, ConfigParseErr,
		fmt.Sprintf("parsing %s", path),
		"Check the file for syntax errors",
		"Regenerate a default file with: clog init --force",
	)
}

// ConfigShape creates an error for a config file with unexpected structure or values.
func ConfigShape(path, detail string) *Error {
	return New(ConfigFormatErr,
		fmt.Sprintf("%s: %s", path, detail),
		"Settings live under a [clog] table; see 'clog init' for a template",
	)
}

// UnknownLinkStyle creates an error for an unrecognized link-style token.
func UnknownLinkStyle(token string) *Error {
	return New(LinkStyleErr,
		fmt.Sprintf("%q", token),
		"Use one of: github, gitlab, stash, cgit, none",
	)
}

// WorkingDirUnavailable creates an error when the cwd cannot be determined.
func WorkingDirUnavailable(err error) *Error {
	return Wrap(err, CurrentDirErr, "",
		"Run clog from an existing directory",
		"Or pass an absolute path with --config",
	)
}

// MalformedTag creates an error for tag text that is not a semantic version.
func MalformedTag(tag string, err error) *Error {
	return Wrap(err, SemVerErr,
		fmt.Sprintf("tag %q", tag),
		"Tag releases as vMAJOR.MINOR.PATCH (e.g. v1.4.0)",
		"Or pass the boundary explicitly with --from <hash>",
	)
}

// OutputNotCreatable creates an error when the output file cannot be created.
func OutputNotCreatable(path string, err error) *Error {
	return Wrap(err, CreateFileErr,
		path,
		"Check that the directory exists: ls -la "+path,
		"Check directory permissions",
	)
}

// OutputNotWritable creates an error when writing the changelog fails.
func OutputNotWritable(path string, err error) *Error {
	return Wrap(err, WriteErr, path, "Check available disk space and permissions")
}

// OutputIO creates a generic I/O error around the changelog files.
func OutputIO(path string, err error) *Error {
	return Wrap(err, IoErr, path)
}
