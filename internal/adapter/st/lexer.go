package st

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// stLexer tokenizes Structured Text. Block comments nest, so they run in
// their own state.
var stLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "CommentOpen", Pattern: `\(\*`, Action: lexer.Push("Comment")},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Pragma", Pattern: `\{[^}]*\}`},
		{Name: "Whitespace", Pattern: `[ \t\r\n\f\v]+`},
		// T#5s, E_State#Idle, INT#-5 and DT#2024-01-01-12:00:00
		{Name: "DateTime", Pattern: `(?i:DATE_AND_TIME|TIME_OF_DAY|LDATE|LTOD|LDT|DATE|TOD|DT|D)#(?:[\w#+\-]|\.\w|:\d)+`},
		{Name: "Typed", Pattern: `[A-Za-z_]\w*#[-+]?(?:[\w#]|\.\w)+`},
		{Name: "Ident", Pattern: `[A-Za-z_]\w*`},
		{Name: "Based", Pattern: `\d[\d_]*#[0-9A-Fa-f_]+`},
		{Name: "Real", Pattern: `\d[\d_]*(?:\.\d[\d_]*(?:[eE][-+]?\d+)?|[eE][-+]?\d+)`},
		{Name: "Int", Pattern: `\d[\d_]*`},
		// %I*, %QW50, %MX100.0
		{Name: "Address", Pattern: `%[IQMiqm][XBWDLxbwdl]?(?:\*|\d+(?:\.\d+)*)`},
		{Name: "String", Pattern: `'(?:\$.|[^'$\n])*'|"(?:\$.|[^"$\n])*"`},
		{Name: "Punct", Pattern: `:=|\?=|=>|<=|>=|<>|\.\.|\*\*|[:;,.()\[\]+\-*/=<>&^]`},
	},
	"Comment": {
		{Name: "CommentOpen", Pattern: `\(\*`, Action: lexer.Push("Comment")},
		{Name: "CommentClose", Pattern: `\*\)`, Action: lexer.Pop()},
		{Name: "CommentText", Pattern: `[^(*]+|[(*]`},
	},
})

var (
	symbols      = stLexer.Symbols()
	commentOpen  = symbols["CommentOpen"]
	commentClose = symbols["CommentClose"]
	identType    = symbols["Ident"]
	trivia       = map[lexer.TokenType]bool{
		symbols["CommentText"]: true,
		symbols["LineComment"]: true,
		symbols["Pragma"]:      true,
		symbols["Whitespace"]:  true,
	}
	literalTypes = map[lexer.TokenType]TokenType{
		symbols["DateTime"]: TypedLiteral,
		symbols["Typed"]:    TypedLiteral,
		symbols["Based"]:    Integer,
		symbols["Real"]:     RealNumber,
		symbols["Int"]:      Integer,
		symbols["Address"]:  HWAddress,
		symbols["String"]:   StringLit,
	}
)

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

// positions converts byte offsets to 1-indexed line and column. Offsets
// must be requested in increasing order.
type positions struct {
	src  string
	off  int
	line int
	col  int
}

func (p *positions) at(offset int) (int, int) {
	for p.off < offset && p.off < len(p.src) {
		if p.src[p.off] == '\n' {
			p.line++
			p.col = 1
		} else {
			p.col++
		}
		p.off++
	}
	return p.line, p.col
}

func tokenize(src string, keywords map[string]TokenType) ([]*Token, error) {
	pos := &positions{src: src, line: 1, col: 1}
	lex, err := stLexer.LexString("", src)
	if err != nil {
		return nil, lexError(err, pos)
	}

	var (
		toks              []*Token
		depth             int
		openLine, openCol int
	)
	for {
		t, err := lex.Next()
		if err != nil {
			return nil, lexError(err, pos)
		}
		if t.EOF() {
			break
		}
		switch {
		case t.Type == commentOpen:
			if depth == 0 {
				openLine, openCol = pos.at(t.Pos.Offset)
			}
			depth++
			continue
		case t.Type == commentClose:
			depth--
			continue
		case trivia[t.Type]:
			continue
		}

		line, col := pos.at(t.Pos.Offset)
		tok := &Token{
			Type: TokenType(t.Value), Text: t.Value,
			Line: line, Column: col, EndLine: line, EndColumn: col + len(t.Value) - 1,
		}
		if typ, ok := literalTypes[t.Type]; ok {
			tok.Type = typ
		} else if t.Type == identType {
			tok.Type = Identifier
			if kw, ok := keywords[strings.ToUpper(t.Value)]; ok {
				tok.Type = kw
			}
		}

		// REF= is an identifier glued to '='.
		if n := len(toks); n > 0 && tok.Type == "=" {
			prev := toks[n-1]
			if prev.Type == Identifier && strings.EqualFold(prev.Text, "REF") &&
				prev.EndLine == line && prev.EndColumn+1 == col {
				prev.Type, prev.Text, prev.EndColumn = RefAssign, prev.Text+"=", col
				continue
			}
		}
		toks = append(toks, tok)
	}
	if depth > 0 {
		return nil, &GrammarError{Msg: "unterminated comment", Line: openLine, Column: openCol}
	}
	line, col := pos.at(len(src))
	toks = append(toks, &Token{Type: EOF, Line: line, Column: col, EndLine: line, EndColumn: col})
	return toks, nil
}

// lexError converts a lexer failure into a GrammarError naming the
// offending construct.
func lexError(err error, pos *positions) error {
	perr, ok := err.(interface{ Position() lexer.Position })
	if !ok {
		return &GrammarError{Msg: err.Error(), Line: pos.line, Column: pos.col}
	}
	offset := perr.Position().Offset
	line, col := pos.at(offset)
	msg := err.Error()
	if offset < len(pos.src) {
		switch c := pos.src[offset]; c {
		case '\'', '"':
			msg = "unterminated string"
		case '{':
			msg = "unterminated pragma"
		case '%':
			msg = "malformed address"
		default:
			msg = fmt.Sprintf("unexpected character %q", c)
		}
	}
	return &GrammarError{Msg: msg, Line: line, Column: col}
}
