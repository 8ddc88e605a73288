package machine

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// PipeData is the value passed between pipeline stages (spec §4.4): either
// held inline as text, or spooled to a file once it grows past a
// threshold. Grounded on original_source/pushvm/pushvm.py's PipeData/
// _StringLineReader, reworked into a Go Reader-producing type instead of a
// Python generator.
type PipeData struct {
	text   string
	path   string
	isFile bool
}

// NewTextPipeData wraps s as inline pipe data.
func NewTextPipeData(s string) PipeData { return PipeData{text: s} }

// Spool returns a PipeData for s: inline if s is shorter than threshold (or
// threshold is <= 0, meaning spooling is disabled), otherwise written to
// path and referenced by file.
func Spool(s string, path string, threshold int) (PipeData, error) {
	if threshold <= 0 || len(s) < threshold {
		return PipeData{text: s}, nil
	}
	if err := os.WriteFile(path, []byte(s), 0o644); err != nil {
		return PipeData{}, err
	}
	return PipeData{path: path, isFile: true}, nil
}

// AsText returns the full contents, reading from the spool file if this
// PipeData was spilled to disk.
func (d PipeData) AsText() (string, error) {
	if !d.isFile {
		return d.text, nil
	}
	b, err := os.ReadFile(d.path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// OpenReader returns a line-oriented reader over the pipe data, reading
// directly from the spool file when isFile, or from an in-memory string
// reader otherwise — avoids materializing a spooled file's full contents in
// memory just to iterate its lines (the point of spooling in the first
// place).
func (d PipeData) OpenReader() (*bufio.Scanner, io.Closer, error) {
	if d.isFile {
		f, err := os.Open(d.path)
		if err != nil {
			return nil, nil, err
		}
		return bufio.NewScanner(f), f, nil
	}
	return bufio.NewScanner(strings.NewReader(d.text)), io.NopCloser(nil), nil
}

// IsFile reports whether this PipeData's content lives on disk.
func (d PipeData) IsFile() bool { return d.isFile }

// Path returns the spool file path, or "" if the content is held inline.
func (d PipeData) Path() string { return d.path }
