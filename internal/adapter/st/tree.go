package st

import "strings"

// Rule names produced by the declaration and implementation grammars.
const (
	RuleDeclaration      = "declaration"
	RulePOUHeader        = "pou_header"
	RulePOUModifier      = "pou_modifier"
	RuleQualifiedName    = "qualified_name"
	RuleExtendsClause    = "extends_clause"
	RuleImplementsClause = "implements_clause"
	RulePOUEnd           = "pou_end"
	RuleVarBlock         = "var_block"
	RuleVarQualifier     = "var_qualifier"
	RuleVarDeclaration   = "var_declaration"
	RuleHWLocation       = "hw_location"
	RuleTypeSpec         = "type_spec"
	RulePrimitiveType    = "primitive_type"
	RuleStringType       = "string_type"
	RuleArrayType        = "array_type"
	RuleArrayRange       = "array_range"
	RuleArrayBound       = "array_bound"
	RulePointerType      = "pointer_type"
	RuleReferenceType    = "reference_type"
	RuleUserType         = "user_type"
	RuleTypeArguments    = "type_arguments"
	RuleInitializer      = "initializer"

	RuleImplementation  = "implementation"
	RuleStatementList   = "statement_list"
	RuleIfStatement     = "if_statement"
	RuleElsifClause     = "elsif_clause"
	RuleElseClause      = "else_clause"
	RuleCaseStatement   = "case_statement"
	RuleCaseElement     = "case_element"
	RuleCaseLabel       = "case_label"
	RuleForStatement    = "for_statement"
	RuleWhileStatement  = "while_statement"
	RuleRepeatStatement = "repeat_statement"
	RuleAssignment      = "assignment"
	RuleExpressionStmt  = "expression_statement"
	RuleEmptyStatement  = "empty_statement"
	RuleExitStatement   = "exit_statement"
	RuleContinueStmt    = "continue_statement"
	RuleReturnStatement = "return_statement"

	RuleOrExpression       = "or_expression"
	RuleXorExpression      = "xor_expression"
	RuleAndExpression      = "and_expression"
	RuleEqualityExpression = "equality_expression"
	RuleRelationalExpr     = "relational_expression"
	RuleAdditiveExpression = "additive_expression"
	RuleMultiplicativeExpr = "multiplicative_expression"
	RuleUnaryExpression    = "unary_expression"
	RulePowerExpression    = "power_expression"
	RuleCall               = "call"
	RuleArgumentList       = "argument_list"
	RuleNamedArgument      = "named_argument"
	RuleOutputArgument     = "output_argument"
	RuleIndex              = "index"
	RuleMember             = "member"
	RuleDeref              = "deref"
	RuleParenthesized      = "parenthesized"
	RuleArrayLiteral       = "array_literal"
)

// Span is the inclusive source range of a node, 1-indexed.
type Span struct {
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

func (s Span) empty() bool { return s.StartLine == 0 }

// Node is either a *Rule or a *Token.
type Node interface {
	Span() Span
	isNode()
}

type Token struct {
	Type      TokenType
	Text      string
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

func (t *Token) Span() Span {
	return Span{StartLine: t.Line, StartColumn: t.Column, EndLine: t.EndLine, EndColumn: t.EndColumn}
}

func (*Token) isNode() {}

type Rule struct {
	Name     string
	Children []Node
	span     Span
}

func (*Rule) isNode() {}

func (r *Rule) Span() Span { return r.span }

func newRule(name string, children ...Node) *Rule {
	r := &Rule{Name: name}
	for _, c := range children {
		if c == nil {
			continue
		}
		if rule, ok := c.(*Rule); ok && rule == nil {
			continue
		}
		if tok, ok := c.(*Token); ok && tok == nil {
			continue
		}
		r.add(c)
	}
	return r
}

func (r *Rule) add(n Node) {
	r.Children = append(r.Children, n)
	s := n.Span()
	if s.empty() {
		return
	}
	if r.span.empty() {
		r.span = s
		return
	}
	r.span.EndLine = s.EndLine
	r.span.EndColumn = s.EndColumn
}

// Find returns r and every descendant rule with the given name, in preorder.
func (r *Rule) Find(name string) []*Rule {
	var out []*Rule
	var walk func(*Rule)
	walk = func(n *Rule) {
		if n.Name == name {
			out = append(out, n)
		}
		for _, c := range n.Children {
			if sub, ok := c.(*Rule); ok {
				walk(sub)
			}
		}
	}
	walk(r)
	return out
}

// FindAny is Find over a set of names, preserving document order.
func (r *Rule) FindAny(names ...string) []*Rule {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}
	var out []*Rule
	var walk func(*Rule)
	walk = func(n *Rule) {
		if want[n.Name] {
			out = append(out, n)
		}
		for _, c := range n.Children {
			if sub, ok := c.(*Rule); ok {
				walk(sub)
			}
		}
	}
	walk(r)
	return out
}

func (r *Rule) Child(name string) *Rule {
	for _, c := range r.Children {
		if sub, ok := c.(*Rule); ok && sub.Name == name {
			return sub
		}
	}
	return nil
}

func (r *Rule) ChildRules(name string) []*Rule {
	var out []*Rule
	for _, c := range r.Children {
		if sub, ok := c.(*Rule); ok && sub.Name == name {
			out = append(out, sub)
		}
	}
	return out
}

// Token returns the first direct child token of type t.
func (r *Rule) Token(t TokenType) *Token {
	for _, c := range r.Children {
		if tok, ok := c.(*Token); ok && tok.Type == t {
			return tok
		}
	}
	return nil
}

// DirectTokens returns the direct child tokens of r.
func (r *Rule) DirectTokens() []*Token {
	var out []*Token
	for _, c := range r.Children {
		if tok, ok := c.(*Token); ok {
			out = append(out, tok)
		}
	}
	return out
}

// Tokens returns every leaf below r in source order.
func (r *Rule) Tokens() []*Token {
	var out []*Token
	var walk func(Node)
	walk = func(n Node) {
		switch v := n.(type) {
		case *Token:
			out = append(out, v)
		case *Rule:
			for _, c := range v.Children {
				walk(c)
			}
		}
	}
	walk(r)
	return out
}

// Text joins the leaves below r with sep.
func (r *Rule) Text(sep string) string {
	toks := r.Tokens()
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Text
	}
	return strings.Join(parts, sep)
}
