package twincat

import (
	"strings"

	"tcpou/internal/adapter/st"
	"tcpou/internal/domain"
)

var varClasses = map[string]string{
	"VAR_INPUT":    "input",
	"VAR_OUTPUT":   "output",
	"VAR_IN_OUT":   "in_out",
	"VAR_GLOBAL":   "global",
	"VAR_EXTERNAL": "external",
	"VAR_TEMP":     "temp",
	"VAR_STAT":     "static",
	"VAR":          "local",
}

// VarClass maps a block keyword to its semantic class. Unknown keywords fall
// back to their lower-cased spelling.
func VarClass(keyword string) string {
	upper := strings.ToUpper(keyword)
	if class, ok := varClasses[upper]; ok {
		return class
	}
	return strings.ToLower(keyword)
}

// VariableRecord is one declared identifier with its block-level context.
type VariableRecord struct {
	Name       string
	Code       string
	Class      string
	DataType   string
	HWAddress  string
	Retain     bool
	Persistent bool
	Constant   bool
	StartLine  int
	EndLine    int
}

func (v VariableRecord) Kind() domain.ChunkKind {
	if v.Class == "global" || v.Class == "external" {
		return domain.KindVariable
	}
	return domain.KindField
}

func extractVariables(tree *st.Rule, anchor *SourceLocation) []VariableRecord {
	var out []VariableRecord
	for _, block := range tree.Find(st.RuleVarBlock) {
		toks := block.DirectTokens()
		if len(toks) == 0 {
			continue
		}
		class := VarClass(toks[0].Text)
		var retain, persistent, constant bool
		for _, q := range block.ChildRules(st.RuleVarQualifier) {
			switch strings.ToUpper(q.Tokens()[0].Text) {
			case "RETAIN":
				retain = true
			case "PERSISTENT":
				persistent = true
			case "CONSTANT":
				constant = true
			}
		}
		for _, decl := range block.ChildRules(st.RuleVarDeclaration) {
			names := declaredNames(decl)
			dataType := "UNKNOWN"
			if ts := decl.Child(st.RuleTypeSpec); ts != nil {
				dataType = TypeSignature(ts)
			}
			var address string
			if hw := decl.Child(st.RuleHWLocation); hw != nil {
				if tok := hw.Token(st.HWAddress); tok != nil {
					address = tok.Text
				}
			}
			code := varCode(names, address, dataType)
			span := decl.Span()
			for _, name := range names {
				out = append(out, VariableRecord{
					Name:       name,
					Code:       code,
					Class:      class,
					DataType:   dataType,
					HWAddress:  address,
					Retain:     retain,
					Persistent: persistent,
					Constant:   constant,
					StartLine:  AdjustLine(span.StartLine, anchor),
					EndLine:    AdjustLine(span.EndLine, anchor),
				})
			}
		}
	}
	return out
}

// declaredNames collects the identifiers before the type colon.
func declaredNames(decl *st.Rule) []string {
	var names []string
	for _, tok := range decl.DirectTokens() {
		if tok.Type == ":" {
			break
		}
		if tok.Type == st.Identifier {
			names = append(names, tok.Text)
		}
	}
	return names
}

func varCode(names []string, address, dataType string) string {
	var b strings.Builder
	b.WriteString(strings.Join(names, ", "))
	if address != "" {
		b.WriteString(" AT ")
		b.WriteString(address)
	}
	b.WriteString(" : ")
	b.WriteString(dataType)
	b.WriteString(";")
	return b.String()
}

// TypeSignature renders a type_spec node in canonical form, e.g.
// "ARRAY[0..9, 1..2] OF POINTER TO INT". Unrecognised specs yield "UNKNOWN".
func TypeSignature(ts *st.Rule) string {
	for _, c := range ts.Children {
		r, ok := c.(*st.Rule)
		if !ok {
			continue
		}
		switch r.Name {
		case st.RulePrimitiveType:
			return r.Tokens()[0].Text
		case st.RuleStringType:
			return stringSignature(r)
		case st.RuleArrayType:
			return arraySignature(r)
		case st.RulePointerType:
			if inner := r.Child(st.RuleTypeSpec); inner != nil {
				return "POINTER TO " + TypeSignature(inner)
			}
		case st.RuleReferenceType:
			if inner := r.Child(st.RuleTypeSpec); inner != nil {
				return "REFERENCE TO " + TypeSignature(inner)
			}
		case st.RuleUserType:
			if q := r.Child(st.RuleQualifiedName); q != nil {
				return q.Text("")
			}
		}
	}
	return "UNKNOWN"
}

func stringSignature(r *st.Rule) string {
	toks := r.DirectTokens()
	sig := strings.ToUpper(toks[0].Text)
	if len(toks) >= 3 {
		sig += "(" + toks[2].Text + ")"
	}
	return sig
}

func arraySignature(r *st.Rule) string {
	var ranges []string
	for _, rng := range r.ChildRules(st.RuleArrayRange) {
		var bounds []string
		for _, b := range rng.ChildRules(st.RuleArrayBound) {
			bounds = append(bounds, b.Text(""))
		}
		ranges = append(ranges, strings.Join(bounds, ".."))
	}
	elem := "UNKNOWN"
	if inner := r.Child(st.RuleTypeSpec); inner != nil {
		elem = TypeSignature(inner)
	}
	return "ARRAY[" + strings.Join(ranges, ", ") + "] OF " + elem
}
