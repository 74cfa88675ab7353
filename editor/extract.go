package editor

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"golang.org/x/text/encoding/charmap"
)

// Patterns is an ordered list of expressions that pull path-shaped strings
// out of text with no known structure. Earlier patterns win.
type Patterns []*regexp.Regexp

// StatusPatterns matches `<editor> --status` output: URIs first, then
// absolute POSIX paths.
func StatusPatterns(ext string) Patterns {
	e := regexp.QuoteMeta(ext)
	return Patterns{
		regexp.MustCompile(`file://[^\s)\]']+` + e),
		regexp.MustCompile(`/[^\s)\]']+` + e),
	}
}

// StatePatterns matches paths embedded in persisted workspace state:
// drive-letter paths, POSIX paths, then URIs. Control characters are
// excluded so a path is not glued onto preceding binary data. When a
// pattern has a capture group, the group is the candidate.
func StatePatterns(ext string) Patterns {
	e := regexp.QuoteMeta(ext)
	return Patterns{
		// the drive letter must not end a word, or "file:///x" reads as drive e:
		regexp.MustCompile(`(?:^|[^A-Za-z0-9])([A-Za-z]:[/\\][^"'<>|?*\n\x00-\x1f]+` + e + `)`),
		regexp.MustCompile(`/[^"'<>|?*\n\x00-\x1f]+` + e),
		regexp.MustCompile(`file://[^\s)\]']+` + e),
	}
}

// All returns every match of every pattern, pattern by pattern and in text
// order within a pattern, without duplicates.
func (p Patterns) All(text string) []string {
	var matches []string
	for _, re := range p {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			matches = append(matches, m[len(m)-1])
		}
	}
	return lo.Uniq(matches)
}

// FirstExisting returns the first match of each pattern in turn whose
// normalized form exists on disk.
func (p Patterns) FirstExisting(text string) (string, bool) {
	for _, re := range p {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if path := NormalizePath(m[len(m)-1]); Exists(path) {
			return path, true
		}
	}
	return "", false
}

// decode returns the text views of raw bytes that are worth scanning. Valid
// UTF-8 is returned as is. Anything else yields the UTF-8 text with invalid
// sequences dropped, followed by an ISO-8859-1 view that keeps every byte.
// It never fails.
func decode(raw []byte) []string {
	if utf8.Valid(raw) {
		return []string{string(raw)}
	}
	views := []string{strings.ToValidUTF8(string(raw), "")}
	if latin, err := charmap.ISO8859_1.NewDecoder().Bytes(raw); err == nil {
		views = append(views, string(latin))
	}
	return views
}
