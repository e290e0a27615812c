package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/kaiano/vdjhist/pkg/m3u"
)

// Play is one recorded play event.
type Play struct {
	Key           string
	PlayedAt      time.Time
	Title         string
	Artist        string
	Duration      string
	LastPlayedRaw string
	Source        string
	ImportedAt    time.Time
}

// Keys loads every recorded dedup key into a memory set. The returned set is
// the caller's to mutate; newly reconstructed entries are persisted separately
// via Record.
func (s *Store) Keys(ctx context.Context) (*m3u.MemorySet, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM plays`)
	if err != nil {
		return nil, fmt.Errorf("loading ledger keys: %w", err)
	}
	defer rows.Close()

	set := m3u.NewMemorySet()
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("scanning ledger key: %w", err)
		}
		set.Add(key)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading ledger keys: %w", err)
	}

	return set, nil
}

// Record persists reconstructed entries in one transaction. Inserts use
// ON CONFLICT DO NOTHING keyed on the dedup key, so replaying a file is
// idempotent. Returns the number of rows actually inserted.
func (s *Store) Record(ctx context.Context, source string, entries []m3u.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("recording plays: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO plays
		(key, played_at, title, artist, duration, last_played_raw, source, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("recording plays: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(timeFormat)
	inserted := 0
	for _, e := range entries {
		res, err := stmt.ExecContext(ctx,
			e.DedupKey(),
			e.Timestamp.UTC().Format(timeFormat),
			e.Title,
			e.Artist,
			e.Duration,
			e.LastPlayedRaw,
			source,
			now,
		)
		if err != nil {
			return 0, fmt.Errorf("recording play %q: %w", e.Title, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("recording play %q: %w", e.Title, err)
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("recording plays: %w", err)
	}
	return inserted, nil
}

// Recent returns plays with a play time at or after since, newest first.
func (s *Store) Recent(ctx context.Context, since time.Time) ([]Play, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key, played_at, title, artist, duration, last_played_raw, source, imported_at
		FROM plays
		WHERE played_at >= ?
		ORDER BY played_at DESC
	`, since.UTC().Format(timeFormat))
	if err != nil {
		return nil, fmt.Errorf("loading recent plays: %w", err)
	}
	defer rows.Close()

	var plays []Play
	for rows.Next() {
		p, err := scanPlay(rows)
		if err != nil {
			return nil, err
		}
		plays = append(plays, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading recent plays: %w", err)
	}

	return plays, nil
}

// Count returns the total number of recorded plays.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM plays`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting plays: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlay(row rowScanner) (Play, error) {
	var p Play
	var playedAt, importedAt string

	err := row.Scan(&p.Key, &playedAt, &p.Title, &p.Artist, &p.Duration,
		&p.LastPlayedRaw, &p.Source, &importedAt)
	if err != nil {
		return Play{}, fmt.Errorf("scanning play: %w", err)
	}

	if p.PlayedAt, err = time.Parse(timeFormat, playedAt); err != nil {
		return Play{}, fmt.Errorf("parsing played_at %q: %w", playedAt, err)
	}
	if p.ImportedAt, err = time.Parse(timeFormat, importedAt); err != nil {
		return Play{}, fmt.Errorf("parsing imported_at %q: %w", importedAt, err)
	}

	return p, nil
}
