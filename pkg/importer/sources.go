package importer

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
)

var fileDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// FileDate derives the calendar date of a history file from its base name.
// VirtualDJ names history exports after the day the session started
// (e.g. "2026-01-19.m3u"). Returns an error if no date is present.
func FileDate(path string) (string, error) {
	name := filepath.Base(path)
	date := fileDatePattern.FindString(name)
	if date == "" {
		return "", fmt.Errorf("no YYYY-MM-DD date in file name %q", name)
	}
	return date, nil
}

// ExpandSources expands file paths and glob patterns into a deduplicated
// list of history files, sorted by base name so date-named files import in
// chronological order. A pattern that matches nothing is kept as a literal
// path, letting the read step report the missing file.
func ExpandSources(patterns []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string

	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			add(pattern)
			continue
		}
		for _, match := range matches {
			add(match)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		bi, bj := filepath.Base(files[i]), filepath.Base(files[j])
		if bi != bj {
			return bi < bj
		}
		return files[i] < files[j]
	})

	return files, nil
}
