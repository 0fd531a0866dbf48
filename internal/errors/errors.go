// Package errors provides the closed error model for the clog CLI.
// Every failure that can stop a run is one of a fixed set of kinds, each
// classified as fatal or non-fatal, with actionable remediation guidance.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind identifies one of the failure kinds a run can end with.
type Kind int

const (
	// UnknownErr is the catch-all for conditions not otherwise classified.
	UnknownErr Kind = iota
	// ConfigParseErr is raised when the config file has invalid syntax.
	ConfigParseErr
	// ConfigFormatErr is raised when the config file parses but is not shaped as expected.
	ConfigFormatErr
	// CurrentDirErr is raised when the working directory cannot be determined.
	CurrentDirErr
	// TomlReadErr is raised when the config file exists but cannot be read.
	TomlReadErr
	// LinkStyleErr is raised for an unrecognized link-style value.
	LinkStyleErr
	// SemVerErr is raised when tag text cannot be read as a semantic version.
	SemVerErr
	// CreateFileErr is raised when the output file or stream cannot be created.
	CreateFileErr
	// WriteErr is raised when writing the changelog output fails.
	WriteErr
	// IoErr is the generic I/O failure around the output file.
	IoErr
)

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		UnknownErr, ConfigParseErr, ConfigFormatErr, CurrentDirErr, TomlReadErr,
		LinkStyleErr, SemVerErr, CreateFileErr, WriteErr, IoErr,
	}
}

// String returns the human-readable description of the kind.
func (k Kind) String() string {
	switch k {
	case ConfigParseErr:
		return "error parsing config file"
	case ConfigFormatErr:
		return "incorrect format for config file"
	case CurrentDirErr:
		return "cannot get current directory"
	case TomlReadErr:
		return "cannot read TOML config file"
	case LinkStyleErr:
		return "unrecognized link-style field"
	case SemVerErr:
		return "cannot parse semantic version"
	case CreateFileErr:
		return "cannot create output file"
	case WriteErr:
		return "cannot write to output file or stream"
	case IoErr:
		return "fatal i/o error with output file"
	default:
		return "unknown fatal error"
	}
}

// IsFatal reports whether the kind stops the run under DefaultPolicy.
func (k Kind) IsFatal() bool {
	return DefaultPolicy.IsFatal(k)
}

// Policy decides which kinds are fatal. Kinds absent from NonFatal are fatal.
type Policy struct {
	NonFatal map[Kind]bool
}

// DefaultPolicy treats the kinds with a safe fallback as non-fatal: an
// unknown link style can degrade to plain text and a bad tag only affects
// the history boundary.
var DefaultPolicy = Policy{
	NonFatal: map[Kind]bool{
		LinkStyleErr: true,
		SemVerErr:    true,
	},
}

// StrictPolicy treats every kind as fatal.
var StrictPolicy = Policy{}

// IsFatal reports whether kind stops the run under this policy.
func (p Policy) IsFatal(kind Kind) bool {
	if kind == UnknownErr {
		return true
	}
	return !p.NonFatal[kind]
}

// Error is a classified failure with an optional cause and remediation guidance.
type Error struct {
	// Kind is the failure classification.
	Kind Kind
	// Message is the call-site detail shown after the kind description.
	Message string
	// Remediation is a list of actionable steps to resolve the error.
	Remediation []string
	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return e.Kind.String()
	}
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsFatal reports whether the error stops the run under DefaultPolicy.
func (e *Error) IsFatal() bool {
	return e.Kind.IsFatal()
}

// New creates an error of the given kind.
func New(kind Kind, message string, remediation ...string) *Error {
	return &Error{
		Kind:        kind,
		Message:     message,
		Remediation: remediation,
	}
}

// Wrap classifies an existing error. Returns nil if err is nil.
func Wrap(err error, kind Kind, message string, remediation ...string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Kind:        kind,
		Message:     message,
		Remediation: remediation,
		Err:         err,
	}
}

// As returns the *Error in err's chain, or nil.
func As(err error) *Error {
	var e *Error
	if stderrors.As(err, &e) {
		return e
	}
	return nil
}

// KindOf returns the kind of the first *Error in err's chain.
// Unclassified errors are UnknownErr.
func KindOf(err error) Kind {
	if e := As(err); e != nil {
		return e.Kind
	}
	return UnknownErr
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
