// Package logwriter persists child process output to an append-only log file.
//
// The log file is the sole durable artifact of a run: a flat text file, one
// line per record, no header or metadata. Every write is flushed promptly so
// a concurrent extract against a live log sees reasonably fresh data.
package logwriter

import (
	"bufio"
	"fmt"
	"os"
	"sync"
)

// Mode controls how the target path is opened.
type Mode int

const (
	// ModeCreate fails if the path already exists.
	ModeCreate Mode = iota

	// ModeTruncate overwrites an existing file.
	ModeTruncate

	// ModeAppend appends to an existing file (creating it if needed).
	ModeAppend
)

// Writer appends lines to a log file and tracks cumulative counts.
//
// Thread-safe: WriteLine may be called concurrently with Lines/Bytes.
type Writer struct {
	path string

	mu   sync.Mutex
	file *os.File
	buf  *bufio.Writer

	lines int64
	bytes int64
}

// Open creates a Writer for the given path. With ModeCreate an existing
// path is an error: a run must not silently clobber a previous log.
func Open(path string, mode Mode) (*Writer, error) {
	flags := os.O_WRONLY | os.O_CREATE
	switch mode {
	case ModeCreate:
		flags |= os.O_EXCL
	case ModeTruncate:
		flags |= os.O_TRUNC
	case ModeAppend:
		flags |= os.O_APPEND
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log %s: %w", path, err)
	}

	return &Writer{
		path: path,
		file: f,
		buf:  bufio.NewWriterSize(f, 64*1024),
	}, nil
}

// WriteLine appends one line (terminator added here) and flushes.
// Any failure is returned to the caller and is fatal to the run: the child
// must not keep running unmonitored against a dead log.
func (w *Writer) WriteLine(line string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return fmt.Errorf("write to closed log %s", w.path)
	}

	n, err := w.buf.WriteString(line)
	if err == nil {
		err = w.buf.WriteByte('\n')
		n++
	}
	if err == nil {
		// Flush per line so concurrent readers see fresh data. Pulse
		// workloads are line-oriented and low frequency relative to
		// disk bandwidth, so this does not need write coalescing.
		err = w.buf.Flush()
	}
	if err != nil {
		return fmt.Errorf("write log %s: %w", w.path, err)
	}

	w.lines++
	w.bytes += int64(n)
	return nil
}

// Lines returns the cumulative number of lines written.
func (w *Writer) Lines() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lines
}

// Bytes returns the cumulative number of bytes written, terminators included.
func (w *Writer) Bytes() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.bytes
}

// Path returns the log file path.
func (w *Writer) Path() string { return w.path }

// Close flushes and closes the underlying file. Safe to call twice.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}

	flushErr := w.buf.Flush()
	closeErr := w.file.Close()
	w.file = nil

	if flushErr != nil {
		return fmt.Errorf("flush log %s: %w", w.path, flushErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close log %s: %w", w.path, closeErr)
	}
	return nil
}
