package analyzer

import (
	"regexp"
	"strings"
)

type CommentBlock struct {
	Text      string
	Raw       string
	StartLine int
	EndLine   int
	Type      string
}

const (
	CommentBlockType = "block"
	CommentLineType  = "line"
	CommentTodoType  = "todo"
)

// CommentExtractor finds (* *) and // comments in Structured Text. String
// literals are matched too so that comment markers inside them are skipped.
// Block comments nest.
type CommentExtractor struct {
	pattern *regexp.Regexp
	marker  *regexp.Regexp
}

func NewCommentExtractor() *CommentExtractor {
	return &CommentExtractor{
		pattern: regexp.MustCompile(`'(?:\$.|[^'$\n])*'|"(?:\$.|[^"$\n])*"|\(\*|//[^\n]*`),
		marker:  regexp.MustCompile(`^(TODO|FIXME|NOTE|BUG|HACK|XXX|REVIEW|OPTIMIZE)\b:?`),
	}
}

// Extract returns one CommentBlock per comment with 1-indexed lines relative
// to content. An unterminated (* is not a comment.
func (e *CommentExtractor) Extract(content string) []CommentBlock {
	var comments []CommentBlock
	line, last := 1, 0
	for pos := 0; pos < len(content); {
		loc := e.pattern.FindStringIndex(content[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]
		pos = end
		if c := content[start]; c == '\'' || c == '"' {
			continue
		}
		if strings.HasPrefix(content[start:], "(*") {
			end = BlockCommentEnd(content, start)
			if end < 0 {
				continue
			}
			pos = end
		}
		raw := content[start:end]
		line += strings.Count(content[last:start], "\n")
		last = start

		var text, typ string
		if strings.HasPrefix(raw, "//") {
			text, typ = strings.TrimSpace(raw[2:]), CommentLineType
		} else {
			text, typ = strings.TrimSpace(raw[2:len(raw)-2]), CommentBlockType
		}
		if e.marker.MatchString(text) {
			typ = CommentTodoType
		}
		comments = append(comments, CommentBlock{
			Text:      text,
			Raw:       strings.TrimRight(raw, "\r"),
			StartLine: line,
			EndLine:   line + strings.Count(raw, "\n"),
			Type:      typ,
		})
	}
	return comments
}

// BlockCommentEnd returns the offset just past the *) closing the block
// comment opened at start, or -1 when it is never closed.
func BlockCommentEnd(content string, start int) int {
	depth := 0
	for i := start; i+1 < len(content); {
		switch content[i : i+2] {
		case "(*":
			depth++
			i += 2
		case "*)":
			depth--
			i += 2
			if depth == 0 {
				return i
			}
		default:
			i++
		}
	}
	return -1
}
