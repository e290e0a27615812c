// Package output provides formatting and output generation for import results.
package output

import (
	"fmt"
	"time"

	"github.com/kaiano/vdjhist/pkg/importer"
	"github.com/kaiano/vdjhist/pkg/m3u"
)

// Report is the complete import output.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Files contains per-file results in processing order.
	Files []FileReport `json:"files"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	// FilesProcessed is the number of history files imported.
	FilesProcessed int `json:"files_processed"`

	// NewEntries is the number of new play events emitted.
	NewEntries int `json:"new_entries"`

	// Duplicates is the number of occurrences suppressed by the dedup ledger.
	Duplicates int `json:"duplicates"`

	// Warnings is the number of soft anomalies observed.
	Warnings int `json:"warnings"`
}

// Event is one play event as presented to the user.
type Event struct {
	// Time is the assigned timestamp, minute precision, in the run's zone.
	Time string `json:"time"`

	Title      string `json:"title"`
	Artist     string `json:"artist,omitempty"`
	Duration   string `json:"duration,omitempty"`
	LastPlayed string `json:"last_played,omitempty"`
}

// FileReport is the presentable result for one history file.
type FileReport struct {
	Path       string   `json:"path"`
	FileDate   string   `json:"file_date"`
	Lines      int      `json:"lines"`
	NewEntries int      `json:"new_entries"`
	Duplicates int      `json:"duplicates"`
	Warnings   []string `json:"warnings,omitempty"`
	Events     []Event  `json:"events,omitempty"`
}

// Metadata provides context about the import run.
type Metadata struct {
	// ConfigFile is the path to the configuration file used, if any.
	ConfigFile string `json:"config_file,omitempty"`

	// Sources lists the history files that were processed.
	Sources []string `json:"sources"`

	// Timezone is the zone timestamps were assigned in.
	Timezone string `json:"timezone"`

	// ImportedAt is when the run finished.
	ImportedAt time.Time `json:"imported_at"`

	// Duration is how long the run took.
	Duration time.Duration `json:"duration"`
}

// NewReport creates a Report from an import result.
func NewReport(result *importer.Result, configFile string) *Report {
	report := &Report{
		Metadata: Metadata{
			ConfigFile: configFile,
			Sources:    result.Metadata.Sources,
			Timezone:   result.Metadata.Timezone,
			ImportedAt: result.Metadata.EndTime,
			Duration:   result.Metadata.EndTime.Sub(result.Metadata.StartTime),
		},
		Summary: Summary{
			FilesProcessed: len(result.Files),
			NewEntries:     result.NewEntries(),
			Duplicates:     result.Duplicates(),
			Warnings:       result.Warnings(),
		},
	}

	for _, f := range result.Files {
		fr := FileReport{
			Path:       f.Path,
			FileDate:   f.FileDate,
			Lines:      f.Lines,
			NewEntries: len(f.Entries),
			Duplicates: f.Duplicates,
		}
		for _, e := range f.Entries {
			fr.Events = append(fr.Events, newEvent(e))
		}
		for _, d := range f.Warnings {
			fr.Warnings = append(fr.Warnings, formatDiagnostic(d))
		}
		report.Files = append(report.Files, fr)
	}

	return report
}

// HasNewEntries returns true if the run produced any new play events.
func (r *Report) HasNewEntries() bool {
	return r.Summary.NewEntries > 0
}

func newEvent(e m3u.Entry) Event {
	return Event{
		Time:       e.Timestamp.Format(m3u.KeyTimeLayout),
		Title:      e.Title,
		Artist:     e.Artist,
		Duration:   e.Duration,
		LastPlayed: e.LastPlayedRaw,
	}
}

func formatDiagnostic(d m3u.Diagnostic) string {
	if d.Detail == "" {
		return fmt.Sprintf("line %d: %s", d.Line, d.Reason)
	}
	return fmt.Sprintf("line %d: %s (%s)", d.Line, d.Reason, d.Detail)
}
