package st

func (p *parser) implementation() *Rule {
	root := newRule(RuleImplementation, p.statementList(false))
	if !p.at(EOF) {
		p.unexpected("implementation")
	}
	return root
}

var statementStops = map[TokenType]bool{
	EOF: true, "END_IF": true, "ELSIF": true, "ELSE": true, "END_CASE": true,
	"END_FOR": true, "END_WHILE": true, "UNTIL": true, "END_REPEAT": true,
}

// statementList parses statements until a block terminator. Inside a CASE
// body it also stops in front of the next case label.
func (p *parser) statementList(caseBody bool) *Rule {
	list := newRule(RuleStatementList)
	for !statementStops[p.peek().Type] {
		if caseBody && p.caseLabelAhead() {
			break
		}
		list.add(p.statement())
	}
	return list
}

var labelTokens = map[TokenType]bool{
	Integer: true, RealNumber: true, Identifier: true, TypedLiteral: true,
	StringLit: true, "-": true, "+": true, "..": true, ",": true, ".": true,
}

func (p *parser) caseLabelAhead() bool {
	for i := p.pos; i < len(p.toks); i++ {
		t := p.toks[i].Type
		if t == ":" {
			return i > p.pos
		}
		if !labelTokens[t] {
			return false
		}
	}
	return false
}

func (p *parser) optionalSemicolon(r *Rule) *Rule {
	if semi := p.accept(";"); semi != nil {
		r.add(semi)
	}
	return r
}

func (p *parser) statement() *Rule {
	switch p.peek().Type {
	case "IF":
		return p.ifStatement()
	case "CASE":
		return p.caseStatement()
	case "FOR":
		return p.forStatement()
	case "WHILE":
		return p.whileStatement()
	case "REPEAT":
		return p.repeatStatement()
	case "EXIT":
		return p.optionalSemicolon(newRule(RuleExitStatement, p.next()))
	case "CONTINUE":
		return p.optionalSemicolon(newRule(RuleContinueStmt, p.next()))
	case "RETURN":
		return p.optionalSemicolon(newRule(RuleReturnStatement, p.next()))
	case ";":
		return newRule(RuleEmptyStatement, p.next())
	}
	lhs := p.expression()
	if p.at(":=", RefAssign, "?=") {
		return newRule(RuleAssignment, lhs, p.next(), p.expression(), p.expect(";", "assignment"))
	}
	return newRule(RuleExpressionStmt, lhs, p.expect(";", "statement"))
}

func (p *parser) ifStatement() *Rule {
	r := newRule(RuleIfStatement, p.next(), p.expression(), p.expect("THEN", "IF statement"), p.statementList(false))
	for p.at("ELSIF") {
		r.add(newRule(RuleElsifClause, p.next(), p.expression(), p.expect("THEN", "ELSIF clause"), p.statementList(false)))
	}
	if p.at("ELSE") {
		r.add(newRule(RuleElseClause, p.next(), p.statementList(false)))
	}
	r.add(p.expect("END_IF", "IF statement"))
	return p.optionalSemicolon(r)
}

func (p *parser) caseStatement() *Rule {
	r := newRule(RuleCaseStatement, p.next(), p.expression(), p.expect("OF", "CASE statement"))
	for !p.at("ELSE", "END_CASE", EOF) {
		if !p.caseLabelAhead() {
			p.unexpected("CASE statement")
		}
		r.add(p.caseElement())
	}
	if p.at("ELSE") {
		r.add(newRule(RuleElseClause, p.next(), p.statementList(false)))
	}
	r.add(p.expect("END_CASE", "CASE statement"))
	return p.optionalSemicolon(r)
}

func (p *parser) caseElement() *Rule {
	e := newRule(RuleCaseElement, p.caseLabel())
	for p.at(",") {
		e.add(p.next())
		e.add(p.caseLabel())
	}
	e.add(p.expect(":", "case label"))
	e.add(p.statementList(true))
	return e
}

func (p *parser) caseLabel() *Rule {
	l := newRule(RuleCaseLabel, p.expression())
	if p.at("..") {
		l.add(p.next())
		l.add(p.expression())
	}
	return l
}

func (p *parser) forStatement() *Rule {
	r := newRule(RuleForStatement, p.next(), p.expect(Identifier, "FOR statement"),
		p.expect(":=", "FOR statement"), p.expression(),
		p.expect("TO", "FOR statement"), p.expression())
	if p.at("BY") {
		r.add(p.next())
		r.add(p.expression())
	}
	r.add(p.expect("DO", "FOR statement"))
	r.add(p.statementList(false))
	r.add(p.expect("END_FOR", "FOR statement"))
	return p.optionalSemicolon(r)
}

func (p *parser) whileStatement() *Rule {
	r := newRule(RuleWhileStatement, p.next(), p.expression(), p.expect("DO", "WHILE statement"),
		p.statementList(false), p.expect("END_WHILE", "WHILE statement"))
	return p.optionalSemicolon(r)
}

func (p *parser) repeatStatement() *Rule {
	r := newRule(RuleRepeatStatement, p.next(), p.statementList(false),
		p.expect("UNTIL", "REPEAT statement"), p.expression(), p.expect("END_REPEAT", "REPEAT statement"))
	return p.optionalSemicolon(r)
}
