package st

import (
	"fmt"
	"strings"
)

// Grammar holds the compiled keyword and type tables shared by the
// declaration and implementation parsers. A Grammar is immutable after
// NewGrammar and safe for concurrent use.
type Grammar struct {
	keywords   map[string]TokenType
	primitives map[string]bool
}

func NewGrammar() *Grammar {
	g := &Grammar{
		keywords:   make(map[string]TokenType, len(keywordList)),
		primitives: make(map[string]bool, len(primitiveList)),
	}
	for _, kw := range keywordList {
		g.keywords[kw] = TokenType(kw)
	}
	for _, p := range primitiveList {
		g.primitives[p] = true
	}
	return g
}

// IsPrimitive reports whether name is an elementary IEC type.
func (g *Grammar) IsPrimitive(name string) bool {
	upper := strings.ToUpper(name)
	return g.primitives[upper] || upper == "STRING" || upper == "WSTRING"
}

// ParseDeclaration parses a declaration section: an optional POU header
// followed by variable blocks.
func (g *Grammar) ParseDeclaration(src string) (*Rule, error) {
	return g.run(src, (*parser).declaration)
}

// ParseImplementation parses an implementation section into a statement list.
func (g *Grammar) ParseImplementation(src string) (*Rule, error) {
	return g.run(src, (*parser).implementation)
}

func (g *Grammar) run(src string, entry func(*parser) *Rule) (tree *Rule, err error) {
	toks, err := tokenize(src, g.keywords)
	if err != nil {
		return nil, err
	}
	p := &parser{g: g, toks: toks}
	defer p.recover(&err)
	tree = entry(p)
	return tree, nil
}

type parser struct {
	g    *Grammar
	toks []*Token
	pos  int
}

type bailout struct{ err *GrammarError }

func (p *parser) recover(errp *error) {
	if e := recover(); e != nil {
		b, ok := e.(bailout)
		if !ok {
			panic(e)
		}
		*errp = b.err
	}
}

func (p *parser) errorf(tok *Token, format string, args ...any) {
	panic(bailout{&GrammarError{Msg: fmt.Sprintf(format, args...), Line: tok.Line, Column: tok.Column}})
}

func (p *parser) peek() *Token { return p.toks[p.pos] }

func (p *parser) peekN(n int) *Token {
	if p.pos+n < len(p.toks) {
		return p.toks[p.pos+n]
	}
	return p.toks[len(p.toks)-1]
}

func (p *parser) at(types ...TokenType) bool {
	t := p.peek().Type
	for _, want := range types {
		if t == want {
			return true
		}
	}
	return false
}

func (p *parser) next() *Token {
	t := p.toks[p.pos]
	if t.Type != EOF {
		p.pos++
	}
	return t
}

func (p *parser) accept(t TokenType) *Token {
	if p.at(t) {
		return p.next()
	}
	return nil
}

func (p *parser) expect(t TokenType, context string) *Token {
	if p.at(t) {
		return p.next()
	}
	p.unexpected(context)
	return nil
}

func (p *parser) unexpected(context string) {
	tok := p.peek()
	if tok.Type == EOF {
		p.errorf(tok, "unexpected end of input in %s", context)
	}
	p.errorf(tok, "unexpected %s %q in %s", describe(tok.Type), tok.Text, context)
}

func describe(t TokenType) string {
	switch t {
	case Identifier:
		return "identifier"
	case Integer, RealNumber:
		return "number"
	case StringLit:
		return "string"
	case TypedLiteral:
		return "literal"
	case HWAddress:
		return "address"
	}
	if strings.ToUpper(string(t)) == string(t) && isLetter(string(t)[0]) {
		return "keyword"
	}
	return "token"
}

// balanced consumes tokens up to (not including) a stop token at nesting
// depth zero and returns them.
func (p *parser) balanced(context string, stops ...TokenType) []*Token {
	var out []*Token
	depth := 0
	for {
		tok := p.peek()
		if tok.Type == EOF {
			p.unexpected(context)
		}
		if depth == 0 {
			for _, s := range stops {
				if tok.Type == s {
					return out
				}
			}
		}
		switch tok.Type {
		case "(", "[":
			depth++
		case ")", "]":
			if depth == 0 {
				p.unexpected(context)
			}
			depth--
		}
		out = append(out, p.next())
	}
}
