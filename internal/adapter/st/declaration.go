package st

import "strings"

var pouModifiers = map[string]bool{
	"ABSTRACT": true, "FINAL": true, "PUBLIC": true,
	"PRIVATE": true, "PROTECTED": true, "INTERNAL": true,
}

var pouEnds = map[TokenType]bool{
	"END_PROGRAM": true, "END_FUNCTION": true, "END_FUNCTION_BLOCK": true,
	"END_METHOD": true, "END_PROPERTY": true, "END_INTERFACE": true,
	"END_ACTION": true,
}

func (p *parser) declaration() *Rule {
	root := newRule(RuleDeclaration)
	if p.at("PROGRAM", "FUNCTION", "FUNCTION_BLOCK", "METHOD", "PROPERTY", "INTERFACE", "ACTION") {
		root.add(p.pouHeader())
	}
	for !p.at(EOF) {
		tok := p.peek()
		switch {
		case varBlockStarts[tok.Type]:
			root.add(p.varBlock())
		case pouEnds[tok.Type]:
			end := newRule(RulePOUEnd, p.next())
			if semi := p.accept(";"); semi != nil {
				end.add(semi)
			}
			root.add(end)
		default:
			p.unexpected("declaration")
		}
	}
	return root
}

func (p *parser) pouHeader() *Rule {
	kw := p.next()
	h := newRule(RulePOUHeader, kw)
	// modifiers are contextual: a word is a modifier only when a name follows
	for p.at(Identifier) && pouModifiers[strings.ToUpper(p.peek().Text)] && p.peekN(1).Type == Identifier {
		h.add(newRule(RulePOUModifier, p.next()))
	}
	h.add(p.expect(Identifier, "POU header"))

	switch kw.Type {
	case "FUNCTION_BLOCK", "INTERFACE":
		if p.at("EXTENDS") {
			ext := newRule(RuleExtendsClause, p.next())
			ext.add(p.qualifiedName())
			for kw.Type == "INTERFACE" && p.at(",") {
				ext.add(p.next())
				ext.add(p.qualifiedName())
			}
			h.add(ext)
		}
		if kw.Type == "FUNCTION_BLOCK" && p.at("IMPLEMENTS") {
			impl := newRule(RuleImplementsClause, p.next())
			impl.add(p.qualifiedName())
			for p.at(",") {
				impl.add(p.next())
				impl.add(p.qualifiedName())
			}
			h.add(impl)
		}
	case "FUNCTION", "METHOD":
		if p.at(":") {
			h.add(p.next())
			h.add(p.typeSpec())
		}
	case "PROPERTY":
		h.add(p.expect(":", "property header"))
		h.add(p.typeSpec())
	}
	if semi := p.accept(";"); semi != nil {
		h.add(semi)
	}
	return h
}

func (p *parser) qualifiedName() *Rule {
	q := newRule(RuleQualifiedName, p.expect(Identifier, "qualified name"))
	for p.at(".") && p.peekN(1).Type == Identifier {
		q.add(p.next())
		q.add(p.next())
	}
	return q
}

func (p *parser) varBlock() *Rule {
	b := newRule(RuleVarBlock, p.next())
	for varQualifiers[p.peek().Type] {
		b.add(newRule(RuleVarQualifier, p.next()))
	}
	for !p.at("END_VAR") {
		if !p.at(Identifier) {
			p.unexpected("variable block")
		}
		b.add(p.varDeclaration())
	}
	b.add(p.next())
	if semi := p.accept(";"); semi != nil {
		b.add(semi)
	}
	return b
}

func (p *parser) varDeclaration() *Rule {
	d := newRule(RuleVarDeclaration, p.expect(Identifier, "variable declaration"))
	for p.at(",") {
		d.add(p.next())
		d.add(p.expect(Identifier, "variable declaration"))
	}
	if p.at("AT") {
		d.add(newRule(RuleHWLocation, p.next(), p.expect(HWAddress, "AT location")))
	}
	d.add(p.expect(":", "variable declaration"))
	d.add(p.typeSpec())
	if p.at(":=") {
		init := newRule(RuleInitializer, p.next())
		vals := p.balanced("initializer", ";")
		if len(vals) == 0 {
			p.unexpected("initializer")
		}
		for _, t := range vals {
			init.add(t)
		}
		d.add(init)
	}
	d.add(p.expect(";", "variable declaration"))
	return d
}

func (p *parser) typeSpec() *Rule {
	ts := newRule(RuleTypeSpec)
	tok := p.peek()
	switch {
	case tok.Type == "ARRAY":
		ts.add(p.arrayType())
	case tok.Type == "POINTER":
		ts.add(newRule(RulePointerType, p.next(), p.expect("TO", "pointer type"), p.typeSpec()))
	case tok.Type == "REFERENCE":
		ts.add(newRule(RuleReferenceType, p.next(), p.expect("TO", "reference type"), p.typeSpec()))
	case tok.Type == "STRING" || tok.Type == "WSTRING":
		ts.add(p.stringType())
	case tok.Type == Identifier && p.g.primitives[strings.ToUpper(tok.Text)]:
		prim := newRule(RulePrimitiveType, p.next())
		if p.at("(") {
			// subrange such as INT(0..100)
			prim.add(p.next())
			for _, t := range p.balanced("subrange", ")") {
				prim.add(t)
			}
			prim.add(p.next())
		}
		ts.add(prim)
	case tok.Type == Identifier:
		ut := newRule(RuleUserType, p.qualifiedName())
		if p.at("(") {
			args := newRule(RuleTypeArguments, p.next())
			for _, t := range p.balanced("type arguments", ")") {
				args.add(t)
			}
			args.add(p.next())
			ut.add(args)
		}
		ts.add(ut)
	default:
		p.unexpected("type")
	}
	return ts
}

func (p *parser) stringType() *Rule {
	s := newRule(RuleStringType, p.next())
	var closer TokenType
	switch {
	case p.at("("):
		closer = ")"
	case p.at("["):
		closer = "]"
	default:
		return s
	}
	s.add(p.next())
	if !p.at(Integer, Identifier) {
		p.unexpected("string size")
	}
	s.add(p.next())
	s.add(p.expect(closer, "string size"))
	return s
}

func (p *parser) arrayType() *Rule {
	a := newRule(RuleArrayType, p.next())
	a.add(p.expect("[", "array type"))
	a.add(p.arrayRange())
	for p.at(",") {
		a.add(p.next())
		a.add(p.arrayRange())
	}
	a.add(p.expect("]", "array type"))
	a.add(p.expect("OF", "array type"))
	a.add(p.typeSpec())
	return a
}

func (p *parser) arrayRange() *Rule {
	r := newRule(RuleArrayRange, p.arrayBound())
	if p.at("..") {
		r.add(p.next())
		r.add(p.arrayBound())
	}
	return r
}

func (p *parser) arrayBound() *Rule {
	toks := p.balanced("array bound", "..", ",", "]")
	if len(toks) == 0 {
		p.unexpected("array bound")
	}
	b := newRule(RuleArrayBound)
	for _, t := range toks {
		b.add(t)
	}
	return b
}
