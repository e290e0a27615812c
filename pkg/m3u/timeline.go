package m3u

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDate is returned when a file date cannot be parsed as a calendar
// date. It is the only failure Reconstruct propagates; every per-line anomaly
// degrades to a best-effort timestamp or a silently dropped line.
var ErrInvalidDate = errors.New("invalid file date")

// FileDateLayout is the expected file date format.
const FileDateLayout = "2006-01-02"

const markerLower = "#extvdj:"

// lastPlayLayouts are the accepted lastplaytime string formats, in
// preference order.
var lastPlayLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006 15:04:05",
}

// epochMillisCutoff: integer lastplaytime values above this are taken as
// milliseconds rather than seconds.
const epochMillisCutoff = 10_000_000_000

// DiagReason classifies a per-line soft anomaly.
type DiagReason string

const (
	// DiagMissingTitle marks a record line with no title; the line is dropped.
	DiagMissingTitle DiagReason = "missing-title"

	// DiagBadClock marks a malformed <time> value, treated as 00:00.
	DiagBadClock DiagReason = "bad-clock"

	// DiagBadLastPlay marks an unparsable <lastplaytime> value; the
	// fallback chain assigns the timestamp instead.
	DiagBadLastPlay DiagReason = "bad-lastplaytime"

	// DiagDuplicate marks an occurrence suppressed by the dedup key set.
	DiagDuplicate DiagReason = "duplicate"
)

// Diagnostic describes one soft anomaly observed while reconstructing.
type Diagnostic struct {
	// Line is the 1-based index of the input line.
	Line int

	// Reason classifies the anomaly.
	Reason DiagReason

	// Detail carries the offending value or derived key, if useful.
	Detail string
}

// Option configures a Reconstructor.
type Option func(*Reconstructor)

// WithDiagnostics registers a callback invoked once per soft anomaly.
// The lenient defaults are unchanged; this only adds observability.
func WithDiagnostics(fn func(Diagnostic)) Option {
	return func(r *Reconstructor) {
		r.diag = fn
	}
}

// Reconstructor assigns absolute, strictly monotonic timestamps to the
// play-history lines of one source file and deduplicates them against a
// caller-supplied key set.
//
// A Reconstructor holds no per-file state and may be reused across files;
// the reconstruction cursor is created fresh per Reconstruct call. It is not
// safe for concurrent use of a shared KeySet without caller-side locking.
type Reconstructor struct {
	loc  *time.Location
	tags *TagExtractor
	diag func(Diagnostic)
}

// NewReconstructor creates a Reconstructor producing timestamps in loc.
// A nil loc means UTC.
func NewReconstructor(loc *time.Location, opts ...Option) *Reconstructor {
	if loc == nil {
		loc = time.UTC
	}
	r := &Reconstructor{loc: loc, tags: NewTagExtractor()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Location returns the time zone timestamps are assigned in.
func (r *Reconstructor) Location() *time.Location {
	return r.loc
}

// lineFields are the raw tag values extracted from one record line.
type lineFields struct {
	clock    string
	title    string
	artist   string
	length   string
	lastPlay string
}

// cursor tracks the most recently assigned timestamp and the running
// day offset relative to the file's base date.
type cursor struct {
	prev      time.Time
	dayOffset int
}

func (c *cursor) hasPrev() bool {
	return !c.prev.IsZero()
}

// commit enforces strict monotonicity by advancing cand in whole calendar
// days until it is strictly after the previous timestamp, then records it as
// the new previous timestamp and updates the day offset. Returns the final
// candidate.
//
// Advancing by whole days rather than re-deriving minutes models a multi-day
// continuous set: once a rollover is detected, every later line in the file
// belongs to that later day even if its relative clock looks earlier.
func (c *cursor) commit(base, cand time.Time) time.Time {
	if c.hasPrev() {
		for !cand.After(c.prev) {
			cand = cand.AddDate(0, 0, 1)
		}
	}
	c.dayOffset = daysBetween(base, cand)
	c.prev = cand
	return cand
}

// Reconstruct processes the raw lines of one history file in input order and
// returns the new entries, ordered by strictly increasing timestamp.
//
// fileDate must be a valid YYYY-MM-DD date; otherwise ErrInvalidDate is
// returned and no partial output is produced. Lines not starting with the
// event marker, and record lines without a title, are skipped silently.
// keys is read and inserted into in place; entries whose dedup key is
// already present are suppressed (the cursor still advances).
func (r *Reconstructor) Reconstruct(lines []string, keys KeySet, fileDate string) ([]Entry, error) {
	base, err := time.ParseInLocation(FileDateLayout, strings.TrimSpace(fileDate), r.loc)
	if err != nil {
		return nil, fmt.Errorf("file date %q: %w", fileDate, ErrInvalidDate)
	}

	cur := &cursor{}
	var entries []Entry

	for i, line := range lines {
		lineNum := i + 1
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), markerLower) {
			continue
		}

		f := lineFields{
			clock:    r.tags.Extract(line, TagTime),
			title:    r.tags.Extract(line, TagTitle),
			artist:   r.tags.Extract(line, TagArtist),
			length:   r.tags.Extract(line, TagSongLength),
			lastPlay: r.tags.Extract(line, TagLastPlayTime),
		}

		if f.title == "" {
			r.report(Diagnostic{Line: lineNum, Reason: DiagMissingTitle})
			continue
		}

		cand := r.resolveCandidate(f, cur, base, lineNum)
		assigned := cur.commit(base, cand)

		entry := Entry{
			Timestamp:     assigned,
			Title:         f.title,
			Artist:        f.artist,
			Duration:      f.length,
			LastPlayedRaw: f.lastPlay,
		}

		key := entry.DedupKey()
		if keys.Contains(key) {
			r.report(Diagnostic{Line: lineNum, Reason: DiagDuplicate, Detail: key})
			continue
		}
		keys.Add(key)
		entries = append(entries, entry)
	}

	return entries, nil
}

// resolveCandidate tries each timestamp strategy in order and returns the
// first candidate produced. The final strategy always applies.
func (r *Reconstructor) resolveCandidate(f lineFields, cur *cursor, base time.Time, lineNum int) time.Time {
	strategies := []func(lineFields, *cursor, time.Time, int) (time.Time, bool){
		r.clockFieldCandidate,
		r.lastPlayEpochCandidate,
		r.lastPlayLayoutCandidate,
		r.incrementPreviousCandidate,
		r.dayStartCandidate,
	}

	for _, strategy := range strategies {
		if t, ok := strategy(f, cur, base, lineNum); ok {
			return t
		}
	}
	return base
}

// clockFieldCandidate places the relative HH:MM clock on the base date plus
// the current day offset. Malformed clock values count as 00:00.
func (r *Reconstructor) clockFieldCandidate(f lineFields, cur *cursor, base time.Time, lineNum int) (time.Time, bool) {
	if f.clock == "" {
		return time.Time{}, false
	}

	minutes, ok := parseClock(f.clock)
	if !ok {
		r.report(Diagnostic{Line: lineNum, Reason: DiagBadClock, Detail: f.clock})
	}
	return base.AddDate(0, 0, cur.dayOffset).Add(time.Duration(minutes) * time.Minute), true
}

// lastPlayEpochCandidate uses a Unix epoch lastplaytime (seconds, or
// milliseconds above epochMillisCutoff) when the clock field is absent and
// the result is strictly later than the previous timestamp.
func (r *Reconstructor) lastPlayEpochCandidate(f lineFields, cur *cursor, _ time.Time, lineNum int) (time.Time, bool) {
	if f.clock != "" || !isDigits(f.lastPlay) {
		return time.Time{}, false
	}

	n, err := strconv.ParseInt(f.lastPlay, 10, 64)
	if err != nil {
		r.report(Diagnostic{Line: lineNum, Reason: DiagBadLastPlay, Detail: f.lastPlay})
		return time.Time{}, false
	}

	var t time.Time
	if n > epochMillisCutoff {
		t = time.UnixMilli(n)
	} else {
		t = time.Unix(n, 0)
	}
	t = t.In(r.loc).Truncate(time.Minute)

	if cur.hasPrev() && !t.After(cur.prev) {
		return time.Time{}, false
	}
	return t, true
}

// lastPlayLayoutCandidate parses a date-time lastplaytime string when the
// clock field is absent, subject to the same strictly-later requirement.
func (r *Reconstructor) lastPlayLayoutCandidate(f lineFields, cur *cursor, _ time.Time, lineNum int) (time.Time, bool) {
	if f.clock != "" || f.lastPlay == "" || isDigits(f.lastPlay) {
		return time.Time{}, false
	}

	for _, layout := range lastPlayLayouts {
		t, err := time.ParseInLocation(layout, f.lastPlay, r.loc)
		if err != nil {
			continue
		}
		t = t.Truncate(time.Minute)
		if cur.hasPrev() && !t.After(cur.prev) {
			return time.Time{}, false
		}
		return t, true
	}

	r.report(Diagnostic{Line: lineNum, Reason: DiagBadLastPlay, Detail: f.lastPlay})
	return time.Time{}, false
}

// incrementPreviousCandidate advances one minute past the previous timestamp.
func (r *Reconstructor) incrementPreviousCandidate(_ lineFields, cur *cursor, _ time.Time, _ int) (time.Time, bool) {
	if !cur.hasPrev() {
		return time.Time{}, false
	}
	return cur.prev.Add(time.Minute), true
}

// dayStartCandidate is the terminal fallback: midnight of the base date plus
// the current day offset.
func (r *Reconstructor) dayStartCandidate(_ lineFields, cur *cursor, base time.Time, _ int) (time.Time, bool) {
	return base.AddDate(0, 0, cur.dayOffset), true
}

func (r *Reconstructor) report(d Diagnostic) {
	if r.diag != nil {
		r.diag(d)
	}
}

// parseClock converts an "HH:MM" relative clock value to minutes since
// midnight. The second return is false for malformed values, which count as
// 0 minutes.
func parseClock(s string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, false
	}

	h, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, false
	}
	return h*60 + m, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// daysBetween returns the whole calendar days from the date of from to the
// date of to, both taken in their own locations. Rounded to absorb DST
// transitions.
func daysBetween(from, to time.Time) int {
	d := midnight(to).Sub(midnight(from))
	return int(math.Round(d.Hours() / 24))
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
