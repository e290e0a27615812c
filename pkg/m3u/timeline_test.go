package m3u

import (
	"errors"
	"strconv"
	"testing"
	"time"
)

func mustReconstruct(t *testing.T, r *Reconstructor, lines []string, keys KeySet, fileDate string) []Entry {
	t.Helper()
	entries, err := r.Reconstruct(lines, keys, fileDate)
	if err != nil {
		t.Fatalf("Reconstruct() error = %v", err)
	}
	return entries
}

func assertMonotonic(t *testing.T, entries []Entry) {
	t.Helper()
	for i := 1; i < len(entries); i++ {
		if !entries[i].Timestamp.After(entries[i-1].Timestamp) {
			t.Errorf("entries[%d].Timestamp = %v, not strictly after entries[%d].Timestamp = %v",
				i, entries[i].Timestamp, i-1, entries[i-1].Timestamp)
		}
	}
}

func TestReconstruct_RolloverScenario(t *testing.T) {
	r := NewReconstructor(time.UTC)
	keys := NewMemorySet()

	lines := []string{
		"#EXTVDJ:<time>23:59</time><title>T1</title><artist>A</artist>",
		"#EXTVDJ:<time>00:01</time><title>T2</title><artist>A</artist>",
		"#EXTVDJ:<title>T1</title><artist>A</artist>",
	}

	entries := mustReconstruct(t, r, lines, keys, "2026-01-19")

	if len(entries) != 3 {
		t.Fatalf("Got %d entries, want 3", len(entries))
	}

	want0 := time.Date(2026, 1, 19, 23, 59, 0, 0, time.UTC)
	if !entries[0].Timestamp.Equal(want0) {
		t.Errorf("entries[0].Timestamp = %v, want %v", entries[0].Timestamp, want0)
	}

	// 00:01 rolls over to the day after the file date.
	want1 := time.Date(2026, 1, 20, 0, 1, 0, 0, time.UTC)
	if !entries[1].Timestamp.Equal(want1) {
		t.Errorf("entries[1].Timestamp = %v, want %v", entries[1].Timestamp, want1)
	}

	// No time and no lastplaytime: previous + 1 minute.
	want2 := time.Date(2026, 1, 20, 0, 2, 0, 0, time.UTC)
	if !entries[2].Timestamp.Equal(want2) {
		t.Errorf("entries[2].Timestamp = %v, want %v", entries[2].Timestamp, want2)
	}
	if !entries[2].Timestamp.After(entries[1].Timestamp) {
		t.Error("third entry is not strictly after the second")
	}

	assertMonotonic(t, entries)
}

func TestReconstruct_Monotonicity(t *testing.T) {
	r := NewReconstructor(time.UTC)
	keys := NewMemorySet()

	// Out of order, repeated and ambiguous clock values.
	lines := []string{
		"#EXTVDJ:<time>10:00</time><title>T1</title>",
		"#EXTVDJ:<time>10:00</time><title>T2</title>",
		"#EXTVDJ:<time>09:30</time><title>T3</title>",
		"#EXTVDJ:<time>23:59</time><title>T4</title>",
		"#EXTVDJ:<time>00:00</time><title>T5</title>",
	}

	entries := mustReconstruct(t, r, lines, keys, "2026-01-19")

	if len(entries) != 5 {
		t.Fatalf("Got %d entries, want 5", len(entries))
	}
	assertMonotonic(t, entries)
}

func TestReconstruct_Idempotence(t *testing.T) {
	r := NewReconstructor(time.UTC)
	keys := NewMemorySet()

	lines := []string{
		"#EXTVDJ:<time>10:00</time><title>T1</title><artist>A</artist>",
		"#EXTVDJ:<time>11:00</time><title>T2</title><artist>B</artist>",
	}

	first := mustReconstruct(t, r, lines, keys, "2026-01-19")
	if len(first) != 2 {
		t.Fatalf("First pass: got %d entries, want 2", len(first))
	}

	second := mustReconstruct(t, r, lines, keys, "2026-01-19")
	if len(second) != 0 {
		t.Errorf("Second pass: got %d entries, want 0", len(second))
	}
}

func TestReconstruct_TitleRequired(t *testing.T) {
	r := NewReconstructor(time.UTC)
	keys := NewMemorySet()

	lines := []string{
		"#EXTVDJ:<time>10:00</time><artist>A</artist>",
		"#EXTVDJ:<time>10:05</time><title></title><artist>A</artist>",
		"#EXTVDJ:<time>10:10</time><title>Kept</title>",
	}

	entries := mustReconstruct(t, r, lines, keys, "2026-01-19")

	if len(entries) != 1 {
		t.Fatalf("Got %d entries, want 1", len(entries))
	}
	if entries[0].Title != "Kept" {
		t.Errorf("Title = %q, want %q", entries[0].Title, "Kept")
	}
}

func TestReconstruct_LenientClock(t *testing.T) {
	r := NewReconstructor(time.UTC)
	keys := NewMemorySet()

	lines := []string{
		"#EXTVDJ:<time>bad</time><title>T1</title>",
	}

	entries := mustReconstruct(t, r, lines, keys, "2026-01-19")

	if len(entries) != 1 {
		t.Fatalf("Got %d entries, want 1", len(entries))
	}
	want := time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC)
	if !entries[0].Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want midnight %v", entries[0].Timestamp, want)
	}
}

func TestReconstruct_LastPlayEpoch(t *testing.T) {
	r := NewReconstructor(time.UTC)

	later := time.Date(2026, 1, 19, 12, 34, 0, 0, time.UTC)

	tests := []struct {
		name     string
		lastPlay string
		want     time.Time
	}{
		{
			name:     "epoch seconds later than previous used verbatim",
			lastPlay: strconv.FormatInt(later.Unix(), 10),
			want:     later,
		},
		{
			name:     "epoch milliseconds later than previous used verbatim",
			lastPlay: strconv.FormatInt(later.UnixMilli(), 10),
			want:     later,
		},
		{
			name:     "epoch earlier than previous falls back to previous plus one minute",
			lastPlay: strconv.FormatInt(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Unix(), 10),
			want:     time.Date(2026, 1, 19, 10, 1, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := NewMemorySet()
			lines := []string{
				"#EXTVDJ:<time>10:00</time><title>T1</title>",
				"#EXTVDJ:<lastplaytime>" + tt.lastPlay + "</lastplaytime><title>T2</title>",
			}

			entries := mustReconstruct(t, r, lines, keys, "2026-01-19")
			if len(entries) != 2 {
				t.Fatalf("Got %d entries, want 2", len(entries))
			}
			if !entries[1].Timestamp.Equal(tt.want) {
				t.Errorf("entries[1].Timestamp = %v, want %v", entries[1].Timestamp, tt.want)
			}
			if entries[1].LastPlayedRaw != tt.lastPlay {
				t.Errorf("LastPlayedRaw = %q, want %q", entries[1].LastPlayedRaw, tt.lastPlay)
			}
		})
	}
}

func TestReconstruct_LastPlayLayouts(t *testing.T) {
	r := NewReconstructor(time.UTC)

	tests := []struct {
		name     string
		lastPlay string
		want     time.Time
	}{
		{
			name:     "iso date time",
			lastPlay: "2026-01-19 12:30",
			want:     time.Date(2026, 1, 19, 12, 30, 0, 0, time.UTC),
		},
		{
			name:     "iso date time with seconds truncated to minute",
			lastPlay: "2026-01-19 13:45:30",
			want:     time.Date(2026, 1, 19, 13, 45, 0, 0, time.UTC),
		},
		{
			name:     "us date time",
			lastPlay: "01/19/2026 14:15",
			want:     time.Date(2026, 1, 19, 14, 15, 0, 0, time.UTC),
		},
		{
			name:     "us date time with seconds",
			lastPlay: "01/19/2026 15:00:59",
			want:     time.Date(2026, 1, 19, 15, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := NewMemorySet()
			lines := []string{
				"#EXTVDJ:<lastplaytime>" + tt.lastPlay + "</lastplaytime><title>T</title>",
			}

			entries := mustReconstruct(t, r, lines, keys, "2026-01-19")
			if len(entries) != 1 {
				t.Fatalf("Got %d entries, want 1", len(entries))
			}
			if !entries[0].Timestamp.Equal(tt.want) {
				t.Errorf("Timestamp = %v, want %v", entries[0].Timestamp, tt.want)
			}
		})
	}
}

func TestReconstruct_UnparsableLastPlayFallsBack(t *testing.T) {
	r := NewReconstructor(time.UTC)
	keys := NewMemorySet()

	lines := []string{
		"#EXTVDJ:<time>10:00</time><title>T1</title>",
		"#EXTVDJ:<lastplaytime>not a date</lastplaytime><title>T2</title>",
	}

	entries := mustReconstruct(t, r, lines, keys, "2026-01-19")
	if len(entries) != 2 {
		t.Fatalf("Got %d entries, want 2", len(entries))
	}
	want := time.Date(2026, 1, 19, 10, 1, 0, 0, time.UTC)
	if !entries[1].Timestamp.Equal(want) {
		t.Errorf("entries[1].Timestamp = %v, want %v", entries[1].Timestamp, want)
	}
}

func TestReconstruct_InvalidDate(t *testing.T) {
	r := NewReconstructor(time.UTC)

	for _, fileDate := range []string{"2026-13-40", "not-a-date", ""} {
		entries, err := r.Reconstruct([]string{"#EXTVDJ:<title>T</title>"}, NewMemorySet(), fileDate)
		if !errors.Is(err, ErrInvalidDate) {
			t.Errorf("Reconstruct(fileDate=%q) error = %v, want ErrInvalidDate", fileDate, err)
		}
		if entries != nil {
			t.Errorf("Reconstruct(fileDate=%q) = %v, want no partial output", fileDate, entries)
		}
	}
}

func TestReconstruct_NonMarkerLinesInert(t *testing.T) {
	r := NewReconstructor(time.UTC)
	keys := NewMemorySet()

	lines := []string{
		"#EXTM3U",
		"",
		"Track01.mp3",
		"  #extvdj:<time>10:00</time><title>T1</title>",
		"# some comment with <title>Not A Track</title>",
	}

	entries := mustReconstruct(t, r, lines, keys, "2026-01-19")
	if len(entries) != 1 {
		t.Fatalf("Got %d entries, want 1", len(entries))
	}
	if entries[0].Title != "T1" {
		t.Errorf("Title = %q, want %q", entries[0].Title, "T1")
	}
}

func TestReconstruct_EmptyInput(t *testing.T) {
	r := NewReconstructor(time.UTC)

	entries := mustReconstruct(t, r, nil, NewMemorySet(), "2026-01-19")
	if len(entries) != 0 {
		t.Errorf("Got %d entries, want 0", len(entries))
	}
}

func TestReconstruct_DuplicateAdvancesCursor(t *testing.T) {
	r := NewReconstructor(time.UTC)

	// Pre-seed the key the first line will derive, so it deduplicates.
	seeded := Entry{
		Timestamp: time.Date(2026, 1, 19, 10, 0, 0, 0, time.UTC),
		Title:     "T1",
		Artist:    "A",
	}
	keys := NewMemorySet(seeded.DedupKey())

	lines := []string{
		"#EXTVDJ:<time>10:00</time><title>T1</title><artist>A</artist>",
		"#EXTVDJ:<title>T2</title>",
	}

	entries := mustReconstruct(t, r, lines, keys, "2026-01-19")
	if len(entries) != 1 {
		t.Fatalf("Got %d entries, want 1", len(entries))
	}
	if entries[0].Title != "T2" {
		t.Errorf("Title = %q, want %q", entries[0].Title, "T2")
	}

	// The suppressed occurrence still moved the cursor to 10:00.
	want := time.Date(2026, 1, 19, 10, 1, 0, 0, time.UTC)
	if !entries[0].Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", entries[0].Timestamp, want)
	}
}

func TestReconstruct_Diagnostics(t *testing.T) {
	var diags []Diagnostic
	r := NewReconstructor(time.UTC, WithDiagnostics(func(d Diagnostic) {
		diags = append(diags, d)
	}))
	keys := NewMemorySet()

	lines := []string{
		"#EXTVDJ:<time>10:00</time><artist>A</artist>",
		"#EXTVDJ:<time>bad</time><title>T1</title>",
		"#EXTVDJ:<lastplaytime>junk</lastplaytime><title>T2</title>",
		"#EXTVDJ:<time>bad</time><title>T1</title>",
	}

	entries := mustReconstruct(t, r, lines, keys, "2026-01-19")
	if len(entries) != 3 {
		t.Fatalf("Got %d entries, want 3", len(entries))
	}

	wantReasons := []DiagReason{DiagMissingTitle, DiagBadClock, DiagBadLastPlay, DiagBadClock}
	if len(diags) != len(wantReasons) {
		t.Fatalf("Got %d diagnostics (%v), want %d", len(diags), diags, len(wantReasons))
	}
	for i, want := range wantReasons {
		if diags[i].Reason != want {
			t.Errorf("diags[%d].Reason = %q, want %q", i, diags[i].Reason, want)
		}
	}
	if diags[0].Line != 1 || diags[1].Line != 2 {
		t.Errorf("diagnostic line numbers = %d, %d, want 1, 2", diags[0].Line, diags[1].Line)
	}
}

func TestReconstruct_MultiDayGap(t *testing.T) {
	r := NewReconstructor(time.UTC)
	keys := NewMemorySet()

	// A lastplaytime two days ahead moves the day offset; later clock
	// values stay on the advanced day.
	future := time.Date(2026, 1, 21, 9, 0, 0, 0, time.UTC)
	lines := []string{
		"#EXTVDJ:<time>22:00</time><title>T1</title>",
		"#EXTVDJ:<lastplaytime>" + strconv.FormatInt(future.Unix(), 10) + "</lastplaytime><title>T2</title>",
		"#EXTVDJ:<time>10:00</time><title>T3</title>",
	}

	entries := mustReconstruct(t, r, lines, keys, "2026-01-19")
	if len(entries) != 3 {
		t.Fatalf("Got %d entries, want 3", len(entries))
	}
	if !entries[1].Timestamp.Equal(future) {
		t.Errorf("entries[1].Timestamp = %v, want %v", entries[1].Timestamp, future)
	}
	want2 := time.Date(2026, 1, 21, 10, 0, 0, 0, time.UTC)
	if !entries[2].Timestamp.Equal(want2) {
		t.Errorf("entries[2].Timestamp = %v, want %v", entries[2].Timestamp, want2)
	}
	assertMonotonic(t, entries)
}
