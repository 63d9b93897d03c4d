package twincat

import (
	"strings"

	"tcpou/internal/adapter/st"
)

// ExtractImports lists the dependencies a POU declaration pulls in:
// "EXTENDS X", "IMPLEMENTS I" per interface, "VAR_EXTERNAL name : Type" and
// "TYPE T" for each referenced non-elementary type. Unreadable input yields
// an empty list. The error list of the parser is left untouched.
func (p *Parser) ExtractImports(content string) []string {
	imports := []string{}
	unit, err := ExtractUnit(content)
	if err != nil || blank(unit.Declaration) {
		return imports
	}
	tree, err := p.Grammar().ParseDeclaration(unit.Declaration)
	if err != nil {
		p.log.WithField("pou", unit.Name).WithError(err).Debug("imports: declaration not parsed")
		return imports
	}

	seen := map[string]bool{}
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			imports = append(imports, s)
		}
	}

	if header := tree.Child(st.RulePOUHeader); header != nil {
		if ext := header.Child(st.RuleExtendsClause); ext != nil {
			for _, q := range ext.ChildRules(st.RuleQualifiedName) {
				add("EXTENDS " + q.Text(""))
			}
		}
		if impl := header.Child(st.RuleImplementsClause); impl != nil {
			for _, q := range impl.ChildRules(st.RuleQualifiedName) {
				add("IMPLEMENTS " + q.Text(""))
			}
		}
	}

	for _, block := range tree.Find(st.RuleVarBlock) {
		toks := block.DirectTokens()
		if len(toks) == 0 || strings.ToUpper(toks[0].Text) != "VAR_EXTERNAL" {
			continue
		}
		for _, decl := range block.ChildRules(st.RuleVarDeclaration) {
			ts := decl.Child(st.RuleTypeSpec)
			if ts == nil {
				continue
			}
			sig := TypeSignature(ts)
			for _, name := range declaredNames(decl) {
				add("VAR_EXTERNAL " + name + " : " + sig)
			}
		}
	}

	g := p.Grammar()
	for _, ut := range tree.Find(st.RuleUserType) {
		q := ut.Child(st.RuleQualifiedName)
		if q == nil {
			continue
		}
		name := q.Text("")
		if g.IsPrimitive(name) {
			continue
		}
		add("TYPE " + name)
	}
	return imports
}
