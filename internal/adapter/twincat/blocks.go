package twincat

import (
	"strings"

	"tcpou/internal/adapter/st"
)

var blockKinds = map[string]string{
	st.RuleIfStatement:     "if_block",
	st.RuleCaseStatement:   "case_block",
	st.RuleForStatement:    "for_loop",
	st.RuleWhileStatement:  "while_loop",
	st.RuleRepeatStatement: "repeat_loop",
}

// BlockRecord is one control-flow statement sliced from its source body.
type BlockRecord struct {
	Kind      string
	Code      string
	StartLine int
	EndLine   int
}

// extractBlocks finds every control statement, nested ones included, and
// slices its exact source lines from text.
func extractBlocks(tree *st.Rule, text string, anchor *SourceLocation) []BlockRecord {
	lines := strings.Split(text, "\n")
	var out []BlockRecord
	nodes := tree.FindAny(st.RuleIfStatement, st.RuleCaseStatement, st.RuleForStatement,
		st.RuleWhileStatement, st.RuleRepeatStatement)
	for _, n := range nodes {
		span := n.Span()
		out = append(out, BlockRecord{
			Kind:      blockKinds[n.Name],
			Code:      extractLines(lines, span.StartLine, span.EndLine),
			StartLine: AdjustLine(span.StartLine, anchor),
			EndLine:   AdjustLine(span.EndLine, anchor),
		})
	}
	return out
}

// extractLines returns lines startLine..endLine, 1-indexed and inclusive.
func extractLines(lines []string, startLine, endLine int) string {
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(lines) {
		endLine = len(lines)
	}
	if startLine > len(lines) || startLine > endLine {
		return ""
	}
	return strings.Join(lines[startLine-1:endLine], "\n")
}
