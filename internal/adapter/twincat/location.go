package twincat

import (
	"regexp"
	"strings"
	"sync"
)

// SourceLocation marks the first character of a CDATA payload in the
// original file. Line and Column are 1-indexed, Offset is a 0-indexed byte
// offset.
type SourceLocation struct {
	Line   int
	Column int
	Offset int
}

const cdataOpen = "<![CDATA["

var (
	tagPatternsMu sync.Mutex
	tagPatterns   = map[string]*regexp.Regexp{}
)

func tagPattern(name string) *regexp.Regexp {
	tagPatternsMu.Lock()
	defer tagPatternsMu.Unlock()
	re, ok := tagPatterns[name]
	if !ok {
		re = regexp.MustCompile(`<` + regexp.QuoteMeta(name) + `(?:\s[^>]*)?>`)
		tagPatterns[name] = re
	}
	return re
}

// namedTagPattern matches the opening tag of an element with the given Name
// attribute.
func namedTagPattern(tag, name string) *regexp.Regexp {
	key := tag + "\x00" + name
	tagPatternsMu.Lock()
	defer tagPatternsMu.Unlock()
	re, ok := tagPatterns[key]
	if !ok {
		re = regexp.MustCompile(`<` + regexp.QuoteMeta(tag) + `\s(?:[^>]*\s)?Name="` + regexp.QuoteMeta(name) + `"`)
		tagPatterns[key] = re
	}
	return re
}

// Locate walks path from start, matching each opening tag in turn, and
// returns the position just after the next CDATA marker. It returns nil when
// any step fails.
func Locate(xmlText string, start int, path ...string) *SourceLocation {
	if start < 0 || start > len(xmlText) {
		return nil
	}
	pos := start
	for _, name := range path {
		loc := tagPattern(name).FindStringIndex(xmlText[pos:])
		if loc == nil {
			return nil
		}
		pos += loc[1]
	}
	idx := strings.Index(xmlText[pos:], cdataOpen)
	if idx < 0 {
		return nil
	}
	offset := pos + idx + len(cdataOpen)
	return locationAt(xmlText, offset)
}

func locationAt(text string, offset int) *SourceLocation {
	before := text[:offset]
	line := strings.Count(before, "\n") + 1
	col := offset + 1
	if nl := strings.LastIndexByte(before, '\n'); nl >= 0 {
		col = offset - nl
	}
	return &SourceLocation{Line: line, Column: col, Offset: offset}
}

// AdjustLine converts a line relative to a CDATA body into a file line.
func AdjustLine(relative int, anchor *SourceLocation) int {
	if anchor == nil {
		return relative
	}
	return relative + anchor.Line - 1
}
