package m3u

import (
	"regexp"
	"strings"
)

// Recognized tag names in #EXTVDJ lines.
const (
	TagTime         = "time"
	TagTitle        = "title"
	TagArtist       = "artist"
	TagSongLength   = "songlength"
	TagLastPlayTime = "lastplaytime"
)

// TagExtractor pulls named fields out of the inline <tag>value</tag> markup
// used in #EXTVDJ lines. Tag names match case-insensitively; values are
// captured non-greedily up to the closing tag and trimmed.
type TagExtractor struct {
	patterns map[string]*regexp.Regexp
}

// NewTagExtractor creates an extractor with patterns precompiled for the
// recognized tag names. Other tag names compile on first use.
func NewTagExtractor() *TagExtractor {
	e := &TagExtractor{patterns: make(map[string]*regexp.Regexp)}
	for _, tag := range []string{TagTime, TagTitle, TagArtist, TagSongLength, TagLastPlayTime} {
		e.patterns[tag] = compileTagPattern(tag)
	}
	return e
}

// Extract returns the trimmed text between <tag> and </tag> in line, or the
// empty string if the tag is not present. Absence is a normal, silent outcome.
func (e *TagExtractor) Extract(line, tag string) string {
	re, ok := e.patterns[tag]
	if !ok {
		re = compileTagPattern(tag)
		e.patterns[tag] = re
	}

	m := re.FindStringSubmatch(line)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func compileTagPattern(tag string) *regexp.Regexp {
	quoted := regexp.QuoteMeta(tag)
	return regexp.MustCompile(`(?i)<` + quoted + `>(.*?)</` + quoted + `>`)
}
