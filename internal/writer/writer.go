// Package writer persists rendered changelog text. New content is always
// prepended to the previous changelog body, and file destinations are
// replaced atomically so a failed run never leaves a half-written file.
package writer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	clerrors "github.com/ariel-frischer/clog/internal/errors"
)

// Roles names the files involved in a run. Changelog is mutually exclusive
// with Outfile and Infile; the config layer enforces that.
type Roles struct {
	// Changelog is read for the old body and rewritten in place.
	Changelog string
	// Outfile receives the merged result.
	Outfile string
	// Infile supplies the old body and is never modified.
	Infile string
}

// Mode is the write strategy derived from Roles.
type Mode int

const (
	// ModeStdout writes the rendered text to standard output.
	ModeStdout Mode = iota
	// ModeCombined reads and rewrites a single path.
	ModeCombined
	// ModeSeparate reads Infile and writes Outfile.
	ModeSeparate
	// ModeStdoutMerge writes the rendered text followed by Infile to standard output.
	ModeStdoutMerge
)

// String returns a short name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeCombined:
		return "combined"
	case ModeSeparate:
		return "separate"
	case ModeStdoutMerge:
		return "stdout-merge"
	default:
		return "stdout"
	}
}

// Mode reports the strategy for these roles. An outfile without an infile
// behaves like a combined changelog.
func (r Roles) Mode() Mode {
	switch {
	case r.Changelog != "":
		return ModeCombined
	case r.Outfile != "" && r.Infile != "" && r.Outfile != r.Infile:
		return ModeSeparate
	case r.Outfile != "":
		return ModeCombined
	case r.Infile != "":
		return ModeStdoutMerge
	default:
		return ModeStdout
	}
}

// source returns the path that holds the old body, or "".
func (r Roles) source() string {
	switch r.Mode() {
	case ModeCombined:
		if r.Changelog != "" {
			return r.Changelog
		}
		return r.Outfile
	case ModeSeparate, ModeStdoutMerge:
		return r.Infile
	default:
		return ""
	}
}

// destination returns the file path that is written, or "" for stdout.
func (r Roles) destination() string {
	switch r.Mode() {
	case ModeCombined:
		if r.Changelog != "" {
			return r.Changelog
		}
		return r.Outfile
	case ModeSeparate:
		return r.Outfile
	default:
		return ""
	}
}

// Write merges rendered with the old body selected by roles and writes the
// result. The merged content is exactly rendered followed by the old body.
// Errors are classified as CreateFileErr, WriteErr or IoErr.
func Write(rendered []byte, roles Roles, stdout io.Writer) error {
	old, err := readOld(roles.source())
	if err != nil {
		return err
	}

	merged := make([]byte, 0, len(rendered)+len(old))
	merged = append(merged, rendered...)
	merged = append(merged, old...)

	dest := roles.destination()
	if dest == "" {
		if _, err := io.Copy(stdout, bytes.NewReader(merged)); err != nil {
			return clerrors.OutputNotWritable("standard output", err)
		}
		return nil
	}

	return atomicWriteToFile(dest, merged)
}

// readOld returns the content of path. A missing file is an empty body.
func readOld(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, clerrors.OutputIO(path, fmt.Errorf("reading existing changelog: %w", err))
	}
	return data, nil
}

// atomicWriteToFile writes data to a temporary file in the destination
// directory and renames it over path. The previous file mode is kept.
// The temporary file is removed on any failure.
func atomicWriteToFile(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	mode := fs.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return clerrors.OutputNotCreatable(path, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath) // Best effort cleanup
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return clerrors.OutputNotWritable(path, err)
	}
	if err = tmp.Sync(); err != nil {
		return clerrors.OutputNotWritable(path, err)
	}
	if err = tmp.Chmod(mode); err != nil {
		return clerrors.OutputIO(path, fmt.Errorf("setting file mode: %w", err))
	}
	if err = tmp.Close(); err != nil {
		return clerrors.OutputNotWritable(path, err)
	}
	if err = os.Rename(tmpPath, path); err != nil {
		return clerrors.OutputIO(path, fmt.Errorf("renaming temp file: %w", err))
	}
	return nil
}
