// Package m3u reconstructs ordered play-history timelines from VirtualDJ
// .m3u history exports.
package m3u

import (
	"strings"
	"time"
)

// Marker is the line prefix identifying a play-history record.
// Matching is case-insensitive after trimming.
const Marker = "#EXTVDJ:"

// KeyTimeLayout is the timestamp layout used inside dedup keys.
const KeyTimeLayout = "2006-01-02 15:04"

// keySeparator joins the dedup key parts.
const keySeparator = "||"

// Entry is a single reconstructed play event.
type Entry struct {
	// Timestamp is the assigned calendar time, minute precision, in the
	// reconstructor's time zone. Always set.
	Timestamp time.Time

	// Title is the track title. Never empty.
	Title string

	// Artist is the track artist, may be empty.
	Artist string

	// Duration is the free-form song length as given in the source
	// (e.g. "3:45"), may be empty.
	Duration string

	// LastPlayedRaw is the original lastplaytime field, unparsed, may be empty.
	LastPlayedRaw string
}

// DedupKey derives the composite identity used to suppress re-importing the
// same occurrence: lowercased timestamp (minute precision), title and artist.
func (e Entry) DedupKey() string {
	return strings.ToLower(strings.Join([]string{
		e.Timestamp.Format(KeyTimeLayout),
		strings.TrimSpace(e.Title),
		strings.TrimSpace(e.Artist),
	}, keySeparator))
}

// KeySet is the caller-owned ledger of dedup keys already recorded.
// The reconstructor only reads and inserts; it never removes. Implementations
// need not be safe for concurrent use.
type KeySet interface {
	// Contains reports whether the key has been seen.
	Contains(key string) bool

	// Add records the key as seen.
	Add(key string)
}

// MemorySet is a map-backed KeySet.
type MemorySet struct {
	keys map[string]struct{}
}

// NewMemorySet creates a MemorySet seeded with the given keys.
func NewMemorySet(keys ...string) *MemorySet {
	s := &MemorySet{keys: make(map[string]struct{}, len(keys))}
	for _, k := range keys {
		s.keys[k] = struct{}{}
	}
	return s
}

// Contains reports whether the key has been seen.
func (s *MemorySet) Contains(key string) bool {
	_, ok := s.keys[key]
	return ok
}

// Add records the key as seen.
func (s *MemorySet) Add(key string) {
	s.keys[key] = struct{}{}
}

// Len returns the number of keys in the set.
func (s *MemorySet) Len() int {
	return len(s.keys)
}
