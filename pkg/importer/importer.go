// Package importer orchestrates reconstruction of play history files into
// the ledger.
package importer

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kaiano/vdjhist/pkg/m3u"
)

// Ledger is the persistent play store an import runs against.
type Ledger interface {
	// Keys loads every recorded dedup key.
	Keys(ctx context.Context) (*m3u.MemorySet, error)

	// Record persists new entries for one source file, returning the
	// number of rows actually inserted.
	Record(ctx context.Context, source string, entries []m3u.Entry) (int, error)
}

// Importer runs the reconstruction pipeline over a set of history files.
type Importer struct {
	// Location is the time zone timestamps are assigned in. Nil means UTC.
	Location *time.Location

	// Ledger is the persistent store; nil runs against an empty in-memory
	// key set (entries are reported but nothing is recorded).
	Ledger Ledger

	// Date, when non-empty, overrides the file-name-derived date for every
	// file in the run.
	Date string

	// DryRun loads existing keys and reconstructs but records nothing.
	DryRun bool
}

// FileResult is the outcome of importing one history file.
type FileResult struct {
	// Path is the source file.
	Path string

	// FileDate is the base date the file was reconstructed against.
	FileDate string

	// Lines is the total number of lines read from the file.
	Lines int

	// Entries are the new play events, in strictly increasing timestamp order.
	Entries []m3u.Entry

	// Duplicates is the number of occurrences suppressed by the key set.
	Duplicates int

	// Warnings are the non-duplicate soft anomalies observed.
	Warnings []m3u.Diagnostic
}

// Metadata provides context about an import run.
type Metadata struct {
	// Sources lists the files that were processed, in order.
	Sources []string

	// Timezone is the zone timestamps were assigned in.
	Timezone string

	// StartTime and EndTime bound the run.
	StartTime time.Time
	EndTime   time.Time
}

// Result is the outcome of one import run.
type Result struct {
	Files    []FileResult
	Metadata Metadata
}

// NewEntries returns the total number of new entries across all files.
func (r *Result) NewEntries() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Entries)
	}
	return n
}

// Duplicates returns the total number of suppressed occurrences.
func (r *Result) Duplicates() int {
	n := 0
	for _, f := range r.Files {
		n += f.Duplicates
	}
	return n
}

// Warnings returns the total number of soft anomalies.
func (r *Result) Warnings() int {
	n := 0
	for _, f := range r.Files {
		n += len(f.Warnings)
	}
	return n
}

// Run imports every file matched by the given patterns. The dedup key set is
// loaded from the ledger once and carried across files, so a track recorded
// by an earlier file deduplicates in a later one within the same run.
func (imp *Importer) Run(ctx context.Context, patterns []string) (*Result, error) {
	files, err := ExpandSources(patterns)
	if err != nil {
		return nil, fmt.Errorf("expanding history sources: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no history files matched patterns: %v", patterns)
	}

	keys, err := imp.loadKeys(ctx)
	if err != nil {
		return nil, err
	}

	var diags []m3u.Diagnostic
	rec := m3u.NewReconstructor(imp.Location, m3u.WithDiagnostics(func(d m3u.Diagnostic) {
		diags = append(diags, d)
	}))

	result := &Result{
		Metadata: Metadata{
			Sources:   files,
			Timezone:  rec.Location().String(),
			StartTime: time.Now(),
		},
	}

	for _, path := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		fileDate := imp.Date
		if fileDate == "" {
			if fileDate, err = FileDate(path); err != nil {
				return nil, err
			}
		}

		lines, err := readLines(path)
		if err != nil {
			return nil, err
		}

		diags = nil
		entries, err := rec.Reconstruct(lines, keys, fileDate)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		fr := FileResult{
			Path:     path,
			FileDate: fileDate,
			Lines:    len(lines),
			Entries:  entries,
		}
		for _, d := range diags {
			if d.Reason == m3u.DiagDuplicate {
				fr.Duplicates++
			} else {
				fr.Warnings = append(fr.Warnings, d)
			}
		}

		if imp.Ledger != nil && !imp.DryRun {
			if _, err := imp.Ledger.Record(ctx, filepath.Base(path), entries); err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
		}

		result.Files = append(result.Files, fr)
	}

	result.Metadata.EndTime = time.Now()
	return result, nil
}

func (imp *Importer) loadKeys(ctx context.Context) (*m3u.MemorySet, error) {
	if imp.Ledger == nil {
		return m3u.NewMemorySet(), nil
	}
	keys, err := imp.Ledger.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading ledger keys: %w", err)
	}
	return keys, nil
}

// readLines reads all lines of a history file.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("opening history file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // 1MB max line size

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return lines, nil
}
