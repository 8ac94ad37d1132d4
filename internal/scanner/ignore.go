package scanner

import (
	"path"
	"strings"
)

// IgnorePattern is one line of a .gpxignore file, with gitignore-style
// syntax: a leading "!" negates, a trailing "/" matches directories only,
// a leading "/" anchors the pattern at the scan root and "**" matches any
// number of directories.
type IgnorePattern struct {
	negate   bool
	dirOnly  bool
	anchored bool
	segments []string
}

// ParseIgnorePattern parses a pattern line.
func ParseIgnorePattern(line string) IgnorePattern {
	var p IgnorePattern
	if rest, ok := strings.CutPrefix(line, "!"); ok {
		p.negate, line = true, rest
	}
	if rest, ok := strings.CutSuffix(line, "/"); ok {
		p.dirOnly, line = true, rest
	}
	if rest, ok := strings.CutPrefix(line, "/"); ok {
		p.anchored, line = true, rest
	}
	// A pattern with an inner slash is relative to the root, as in git.
	if strings.Contains(line, "/") && !strings.HasPrefix(line, "**/") {
		p.anchored = true
	}
	p.segments = strings.Split(line, "/")
	return p
}

// IsNegation reports whether the pattern re-includes what it matches.
func (p IgnorePattern) IsNegation() bool {
	return p.negate
}

// Match reports whether the slash-separated path relative to the scan root
// matches the pattern. A path inside a matched directory matches too.
func (p IgnorePattern) Match(rel string) bool {
	segs := strings.Split(rel, "/")
	if p.anchored {
		return p.matchFrom(segs)
	}
	for i := range segs {
		if p.matchFrom(segs[i:]) {
			return true
		}
	}
	return false
}

// matchFrom matches the pattern against a prefix of segs. The pattern may
// stop at a directory, in which case everything below it matches.
func (p IgnorePattern) matchFrom(segs []string) bool {
	for n := 1; n <= len(segs); n++ {
		if !matchSegments(p.segments, segs[:n]) {
			continue
		}
		// A dir-only pattern needs something below the matched prefix.
		if p.dirOnly && n == len(segs) {
			continue
		}
		return true
	}
	return false
}

func matchSegments(pattern, segs []string) bool {
	if len(pattern) == 0 {
		return len(segs) == 0
	}
	if pattern[0] == "**" {
		for i := 0; i <= len(segs); i++ {
			if matchSegments(pattern[1:], segs[i:]) {
				return true
			}
		}
		return false
	}
	if len(segs) == 0 {
		return false
	}
	ok, err := path.Match(pattern[0], segs[0])
	if err != nil || !ok {
		return false
	}
	return matchSegments(pattern[1:], segs[1:])
}
