// Package versionfile persists the resolved release tag for the companion
// service, which parses the file as plain text at startup.
package versionfile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// Filename is the well-known name inside the data directory.
	Filename = ".latest_version"

	// HasCommitsMarker is written on line 2 when unapplied commits exist.
	HasCommitsMarker = "has_commits"

	filePermissions = 0o644
	dirPermissions  = 0o755
)

// ErrNotFound is returned by Read when no state has been written yet.
var ErrNotFound = errors.New("version state not found")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// State is the persisted version/update status.
type State struct {
	Tag        string `json:"tag"`
	HasCommits bool   `json:"has_commits"`
}

// Writer owns the state file of one data directory.
type Writer struct {
	dir string
}

// NewWriter creates a writer for <dataDir>/.latest_version.
func NewWriter(dataDir string) *Writer {
	return &Writer{dir: filepath.Clean(dataDir)}
}

// Path returns the state file location.
func (w *Writer) Path() string {
	return filepath.Join(w.dir, Filename)
}

// Write replaces the file content with the tag and, when hasCommits is set,
// the marker line. The directory is created if needed.
func (w *Writer) Write(tag string, hasCommits bool) error {
	if err := os.MkdirAll(w.dir, dirPermissions); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	data := Encode(State{Tag: tag, HasCommits: hasCommits})

	tmp, err := os.CreateTemp(w.dir, Filename+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write state file: %w", err)
	}
	if err := tmp.Chmod(filePermissions); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close state file: %w", err)
	}

	if err := os.Rename(tmpName, w.Path()); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// Read loads the current state.
func (w *Writer) Read() (State, error) {
	contents, err := os.ReadFile(w.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return State{}, ErrNotFound
		}
		return State{}, fmt.Errorf("read state file: %w", err)
	}
	return Decode(contents), nil
}

// Encode renders the file format: newline-terminated lines, no BOM.
func Encode(s State) []byte {
	var buf bytes.Buffer
	buf.WriteString(strings.TrimSpace(s.Tag))
	buf.WriteByte('\n')
	if s.HasCommits {
		buf.WriteString(HasCommitsMarker)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Decode parses the file format. It accepts CRLF line endings and a leading
// BOM left behind by older launchers.
func Decode(contents []byte) State {
	contents = bytes.TrimPrefix(contents, utf8BOM)
	text := strings.ReplaceAll(string(contents), "\r\n", "\n")
	lines := strings.Split(strings.TrimSpace(text), "\n")

	var s State
	if len(lines) > 0 {
		s.Tag = strings.TrimSpace(lines[0])
	}
	if len(lines) > 1 && strings.TrimSpace(lines[1]) == HasCommitsMarker {
		s.HasCommits = true
	}
	return s
}
