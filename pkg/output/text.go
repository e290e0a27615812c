package output

import (
	"context"
	"fmt"
	"io"
)

// TextFormatter formats reports as human-readable text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	fmt.Fprintf(w, "vdjhist: %d file(s), %d new plays, %d duplicates, %d warnings\n",
		report.Summary.FilesProcessed,
		report.Summary.NewEntries,
		report.Summary.Duplicates,
		report.Summary.Warnings)
	return nil
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	fmt.Fprintln(w, "=== Play History Import ===")
	fmt.Fprintln(w)

	for _, file := range report.Files {
		f.formatFile(&file, w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d file(s), %d new plays, %d duplicates, %d warnings\n",
		report.Summary.FilesProcessed,
		report.Summary.NewEntries,
		report.Summary.Duplicates,
		report.Summary.Warnings)

	if f.opts.Verbose {
		fmt.Fprintf(w, "Timezone: %s\n", report.Metadata.Timezone)
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	return nil
}

func (f *TextFormatter) formatFile(file *FileReport, w io.Writer) {
	fmt.Fprintf(w, "%s (file date %s)\n", file.Path, file.FileDate)
	fmt.Fprintf(w, "  New plays: %d, duplicates: %d\n", file.NewEntries, file.Duplicates)

	for _, e := range file.Events {
		f.formatEvent(&e, w)
	}

	if len(file.Warnings) > 0 {
		fmt.Fprintf(w, "  Warnings: %d\n", len(file.Warnings))
		if f.opts.Verbose {
			for _, warning := range file.Warnings {
				fmt.Fprintf(w, "    %s\n", warning)
			}
		}
	}

	fmt.Fprintln(w)
}

func (f *TextFormatter) formatEvent(e *Event, w io.Writer) {
	line := "  " + e.Time + "  " + e.Title
	if e.Artist != "" {
		line += " - " + e.Artist
	}
	if f.opts.Verbose && e.Duration != "" {
		line += " [" + e.Duration + "]"
	}
	fmt.Fprintln(w, line)
}
