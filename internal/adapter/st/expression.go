package st

type binaryLevel struct {
	rule string
	ops  []TokenType
}

// Lowest precedence first. Unary operators and ** sit below the last level.
var binaryLevels = []binaryLevel{
	{RuleOrExpression, []TokenType{"OR", "OR_ELSE"}},
	{RuleXorExpression, []TokenType{"XOR"}},
	{RuleAndExpression, []TokenType{"AND", "&", "AND_THEN"}},
	{RuleEqualityExpression, []TokenType{"=", "<>"}},
	{RuleRelationalExpr, []TokenType{"<", ">", "<=", ">="}},
	{RuleAdditiveExpression, []TokenType{"+", "-"}},
	{RuleMultiplicativeExpr, []TokenType{"*", "/", "MOD"}},
}

func (p *parser) expression() Node {
	return p.binary(0)
}

func (p *parser) binary(level int) Node {
	if level == len(binaryLevels) {
		return p.unary()
	}
	lv := binaryLevels[level]
	left := p.binary(level + 1)
	for p.at(lv.ops...) {
		left = newRule(lv.rule, left, p.next(), p.binary(level+1))
	}
	return left
}

func (p *parser) unary() Node {
	if p.at("-", "+", "NOT") {
		return newRule(RuleUnaryExpression, p.next(), p.unary())
	}
	return p.power()
}

func (p *parser) power() Node {
	left := p.postfix()
	for p.at("**") {
		op := p.next()
		var right Node
		if p.at("-", "+") {
			right = newRule(RuleUnaryExpression, p.next(), p.postfix())
		} else {
			right = p.postfix()
		}
		left = newRule(RulePowerExpression, left, op, right)
	}
	return left
}

func (p *parser) postfix() Node {
	n := p.primary()
	for {
		switch {
		case p.at("("):
			n = newRule(RuleCall, n, p.argumentList())
		case p.at("["):
			idx := newRule(RuleIndex, n, p.next(), p.expression())
			for p.at(",") {
				idx.add(p.next())
				idx.add(p.expression())
			}
			idx.add(p.expect("]", "index"))
			n = idx
		case p.at("."):
			dot := p.next()
			member := p.peek()
			if member.Type != Identifier && member.Type != Integer && describe(member.Type) != "keyword" {
				p.unexpected("member access")
			}
			n = newRule(RuleMember, n, dot, p.next())
		case p.at("^"):
			n = newRule(RuleDeref, n, p.next())
		default:
			return n
		}
	}
}

func (p *parser) argumentList() *Rule {
	args := newRule(RuleArgumentList, p.next())
	if p.at(")") {
		args.add(p.next())
		return args
	}
	for {
		switch {
		case p.at(Identifier) && p.peekN(1).Type == ":=":
			args.add(newRule(RuleNamedArgument, p.next(), p.next(), p.expression()))
		case p.at(Identifier) && p.peekN(1).Type == "=>":
			args.add(newRule(RuleOutputArgument, p.next(), p.next(), p.expression()))
		case p.at("NOT") && p.peekN(1).Type == Identifier && p.peekN(2).Type == "=>":
			args.add(newRule(RuleOutputArgument, p.next(), p.next(), p.next(), p.expression()))
		default:
			args.add(p.expression())
		}
		if !p.at(",") {
			break
		}
		args.add(p.next())
	}
	args.add(p.expect(")", "argument list"))
	return args
}

func (p *parser) primary() Node {
	tok := p.peek()
	switch tok.Type {
	case Integer, RealNumber, StringLit, TypedLiteral, "TRUE", "FALSE",
		Identifier, "THIS", "SUPER":
		return p.next()
	case "STRING", "WSTRING":
		// conversion calls such as STRING(x) are rare but legal
		return p.next()
	case "(":
		return newRule(RuleParenthesized, p.next(), p.expression(), p.expect(")", "parenthesized expression"))
	case "[":
		lit := newRule(RuleArrayLiteral, p.next())
		if !p.at("]") {
			lit.add(p.expression())
			for p.at(",") {
				lit.add(p.next())
				lit.add(p.expression())
			}
		}
		lit.add(p.expect("]", "array literal"))
		return lit
	}
	p.unexpected("expression")
	return nil
}
