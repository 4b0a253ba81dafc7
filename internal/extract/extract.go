// Package extract produces a compact error/warning report from a log file.
//
// Extraction is a single linear scan, decoupled from the live run: it works
// on finished logs and on logs still being appended to (it reads up to the
// current EOF and never mutates the file). Running it twice on a finished
// log yields byte-identical output.
package extract

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/logpulse/logpulse/internal/matcher"
	"github.com/logpulse/logpulse/internal/pulse"
)

// Options controls scan limits and tail behavior.
type Options struct {
	MaxMatches int  // displayed matches per class; true totals are always reported
	MaxLineLen int  // displayed match lines are truncated to this length
	TailLines  int  // size of the verbatim tail
	ShowTail   bool // include the tail in rendered output
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		MaxMatches: 20,
		MaxLineLen: 240,
		TailLines:  80,
	}
}

// Match is one matched line with its 1-based line number.
type Match struct {
	Line int64
	Text string
}

// Report is the derived, read-only summary of a log file.
type Report struct {
	LogPath string

	TotalLines    int64
	TotalErrors   int64
	TotalWarnings int64

	// Errors and Warnings hold the first MaxMatches matching lines;
	// the Total* fields carry the real counts even when these are capped.
	Errors   []Match
	Warnings []Match

	// LastLine is the last non-empty line, truncated for display.
	LastLine string

	// Tail holds the final TailLines lines verbatim.
	Tail []string
}

// Scan reads the log once and builds a Report. A missing path is returned
// as an error wrapping fs.ErrNotExist so callers can report it distinctly.
func Scan(path string, rules *matcher.Rules, opts Options) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	report := &Report{LogPath: path}

	// Ring buffer for the tail, sized up front.
	tailSize := opts.TailLines
	if tailSize < 0 {
		tailSize = 0
	}
	ring := make([]string, tailSize)
	ringIdx := 0
	ringCount := 0

	// ReadString instead of a Scanner: captured logs may carry lines past
	// any fixed token cap, and a long line must not fail the report.
	reader := bufio.NewReaderSize(f, 64*1024)

	for {
		raw, readErr := reader.ReadString('\n')
		if raw == "" {
			if readErr == io.EOF {
				break
			}
			if readErr != nil {
				return nil, fmt.Errorf("read log: %w", readErr)
			}
			continue
		}

		line := strings.TrimSuffix(raw, "\n")
		report.TotalLines++

		if tailSize > 0 {
			ring[ringIdx] = line
			ringIdx = (ringIdx + 1) % tailSize
			if ringCount < tailSize {
				ringCount++
			}
		}

		if line != "" {
			report.LastLine = pulse.Truncate(line, pulse.ExcerptLimit)

			res := rules.Classify(line)
			if res.Error {
				report.TotalErrors++
				if len(report.Errors) < opts.MaxMatches {
					report.Errors = append(report.Errors, Match{
						Line: report.TotalLines,
						Text: pulse.Truncate(line, opts.MaxLineLen),
					})
				}
			}
			if res.Warning {
				report.TotalWarnings++
				if len(report.Warnings) < opts.MaxMatches {
					report.Warnings = append(report.Warnings, Match{
						Line: report.TotalLines,
						Text: pulse.Truncate(line, opts.MaxLineLen),
					})
				}
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("read log: %w", readErr)
		}
	}

	if ringCount > 0 {
		report.Tail = make([]string, ringCount)
		if ringCount == tailSize {
			for i := 0; i < ringCount; i++ {
				report.Tail[i] = ring[(ringIdx+i)%tailSize]
			}
		} else {
			copy(report.Tail, ring[:ringCount])
		}
	}

	return report, nil
}

// Render writes the report in the compact pulse format.
func (r *Report) Render(w io.Writer, opts Options) {
	fmt.Fprintf(w, "pulse: log=%s lines=%d errors=%d warnings=%d\n",
		r.LogPath, r.TotalLines, r.TotalErrors, r.TotalWarnings)

	if len(r.Errors) > 0 {
		fmt.Fprintf(w, "pulse: error matches (showing %d of %d):\n",
			len(r.Errors), r.TotalErrors)
		for _, m := range r.Errors {
			fmt.Fprintf(w, "  [E] L%d: %s\n", m.Line, m.Text)
		}
	}
	if len(r.Warnings) > 0 {
		fmt.Fprintf(w, "pulse: warning matches (showing %d of %d):\n",
			len(r.Warnings), r.TotalWarnings)
		for _, m := range r.Warnings {
			fmt.Fprintf(w, "  [W] L%d: %s\n", m.Line, m.Text)
		}
	}

	if opts.ShowTail {
		fmt.Fprintf(w, "pulse: tail (last %d lines):\n", len(r.Tail))
		for _, line := range r.Tail {
			fmt.Fprintln(w, line)
		}
	}
}

// PulseSnapshot views the whole report as a single pulse window, for the
// one-shot pulse subcommand on an externally managed log.
func (r *Report) PulseSnapshot() pulse.Snapshot {
	return pulse.Snapshot{
		Lines:    r.TotalLines,
		Errors:   r.TotalErrors,
		Warnings: r.TotalWarnings,
		Total:    r.TotalLines,
		LastLine: r.LastLine,
	}
}
