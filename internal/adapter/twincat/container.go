package twincat

import (
	"encoding/xml"
	"regexp"
	"strings"

	"tcpou/internal/adapter/analyzer"
)

// UnitKind is the kind of a POU, taken from the first keyword of its
// declaration.
type UnitKind string

const (
	UnitProgram       UnitKind = "PROGRAM"
	UnitFunctionBlock UnitKind = "FUNCTION_BLOCK"
	UnitFunction      UnitKind = "FUNCTION"
	UnitUnknown       UnitKind = "UNKNOWN"
)

// ProgramUnit is the content tree of one POU.
type ProgramUnit struct {
	Name              string
	ID                string
	Kind              UnitKind
	Declaration       string
	Implementation    string
	DeclarationLoc    *SourceLocation
	ImplementationLoc *SourceLocation
	Actions           []Action
	Methods           []Method
	Properties        []Property
}

// Action is a named body that shares the variables of its POU. It has no
// declaration of its own in most projects.
type Action struct {
	Name              string
	ID                string
	Declaration       string
	Implementation    string
	DeclarationLoc    *SourceLocation
	ImplementationLoc *SourceLocation
}

// Method is a METHOD of a function block. Property accessors use the same
// shape.
type Method struct {
	Name              string
	ID                string
	Declaration       string
	Implementation    string
	DeclarationLoc    *SourceLocation
	ImplementationLoc *SourceLocation
}

// Property carries optional Get and Set accessors, each shaped like a method.
type Property struct {
	Name           string
	ID             string
	Declaration    string
	Get            *Method
	Set            *Method
	DeclarationLoc *SourceLocation
}

// xmlNode is a generic element tree; content is read from known paths.
type xmlNode struct {
	XMLName  xml.Name
	Attrs    []xml.Attr `xml:",any,attr"`
	Content  string     `xml:",chardata"`
	Children []*xmlNode `xml:",any"`
}

func (n *xmlNode) attr(name string) string {
	for _, a := range n.Attrs {
		if a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

func (n *xmlNode) child(localName string) *xmlNode {
	for _, c := range n.Children {
		if c.XMLName.Local == localName {
			return c
		}
	}
	return nil
}

func (n *xmlNode) allChildren(localName string) []*xmlNode {
	var out []*xmlNode
	for _, c := range n.Children {
		if c.XMLName.Local == localName {
			out = append(out, c)
		}
	}
	return out
}

func (n *xmlNode) text() string {
	if n == nil {
		return ""
	}
	return n.Content
}

// find returns the first element named localName in a depth-first walk.
func (n *xmlNode) find(localName string) *xmlNode {
	if n.XMLName.Local == localName {
		return n
	}
	for _, c := range n.Children {
		if found := c.find(localName); found != nil {
			return found
		}
	}
	return nil
}

// implementationText reads the ST body below an Implementation element. A
// missing ST element means an empty body.
func implementationText(impl *xmlNode) string {
	if impl == nil {
		return ""
	}
	return impl.child("ST").text()
}

var leadingTrivia = regexp.MustCompile(`^(?:\s+|//[^\n]*|\{[^}]*\})*`)

// DetectKind classifies a declaration by its first keyword, ignoring
// leading comments and pragmas.
func DetectKind(declaration string) UnitKind {
	head := declaration
	for {
		head = leadingTrivia.ReplaceAllString(head, "")
		if !strings.HasPrefix(head, "(*") {
			break
		}
		end := analyzer.BlockCommentEnd(head, 0)
		if end < 0 {
			return UnitUnknown
		}
		head = head[end:]
	}
	head = strings.ToUpper(head)
	switch {
	case strings.HasPrefix(head, "PROGRAM"):
		return UnitProgram
	case strings.HasPrefix(head, "FUNCTION_BLOCK"):
		return UnitFunctionBlock
	case strings.HasPrefix(head, "FUNCTION"):
		return UnitFunction
	}
	return UnitUnknown
}

// cursor hands out search offsets for same-named siblings in document order.
type cursor struct {
	xml string
	pos int
}

func (c *cursor) advance(tag, name string) int {
	loc := namedTagPattern(tag, name).FindStringIndex(c.xml[c.pos:])
	if loc == nil {
		return c.pos
	}
	start := c.pos + loc[0]
	c.pos += loc[1]
	return start
}

// ExtractUnit parses TcPOU XML into a ProgramUnit.
func ExtractUnit(xmlText string) (*ProgramUnit, error) {
	var root xmlNode
	if err := xml.Unmarshal([]byte(xmlText), &root); err != nil {
		return nil, &StructuralError{Msg: "invalid XML", Err: err}
	}
	pou := root.find("POU")
	if pou == nil {
		return nil, structural("no POU element found")
	}
	if pou.attr("Name") == "" {
		return nil, structural("POU element missing Name attribute")
	}
	name := pou.attr("Name")
	decl := pou.child("Declaration")
	if decl == nil {
		return nil, structural("POU %q missing Declaration element", name)
	}
	impl := pou.child("Implementation")
	if impl == nil {
		return nil, structural("POU %q missing Implementation element", name)
	}

	unit := &ProgramUnit{
		Name:           name,
		ID:             pou.attr("Id"),
		Declaration:    decl.text(),
		Implementation: implementationText(impl),
	}
	unit.Kind = DetectKind(unit.Declaration)

	start := 0
	if loc := namedTagPattern("POU", name).FindStringIndex(xmlText); loc != nil {
		start = loc[0]
	}
	if unit.Declaration != "" {
		unit.DeclarationLoc = Locate(xmlText, start, "Declaration")
	}
	if unit.Implementation != "" {
		unit.ImplementationLoc = Locate(xmlText, start, "Implementation", "ST")
	}

	actions := &cursor{xml: xmlText, pos: start}
	for _, a := range pou.allChildren("Action") {
		actionImpl := a.child("Implementation")
		if actionImpl == nil || a.attr("Name") == "" {
			continue
		}
		action := Action{
			Name:           a.attr("Name"),
			ID:             a.attr("Id"),
			Declaration:    a.child("Declaration").text(),
			Implementation: implementationText(actionImpl),
		}
		at := actions.advance("Action", action.Name)
		if action.Declaration != "" {
			action.DeclarationLoc = Locate(xmlText, at, "Declaration")
		}
		if action.Implementation != "" {
			action.ImplementationLoc = Locate(xmlText, at, "Implementation", "ST")
		}
		unit.Actions = append(unit.Actions, action)
	}

	methods := &cursor{xml: xmlText, pos: start}
	for _, m := range pou.allChildren("Method") {
		if m.attr("Name") == "" {
			continue
		}
		at := methods.advance("Method", m.attr("Name"))
		unit.Methods = append(unit.Methods, accessor(xmlText, m, at))
	}

	properties := &cursor{xml: xmlText, pos: start}
	for _, pr := range pou.allChildren("Property") {
		if pr.attr("Name") == "" {
			continue
		}
		prop := Property{
			Name:        pr.attr("Name"),
			ID:          pr.attr("Id"),
			Declaration: pr.child("Declaration").text(),
		}
		at := properties.advance("Property", prop.Name)
		if prop.Declaration != "" {
			prop.DeclarationLoc = Locate(xmlText, at, "Declaration")
		}
		inner := &cursor{xml: xmlText, pos: at}
		if g := pr.child("Get"); g != nil {
			m := accessor(xmlText, g, inner.tag("Get"))
			prop.Get = &m
		}
		if s := pr.child("Set"); s != nil {
			m := accessor(xmlText, s, inner.tag("Set"))
			prop.Set = &m
		}
		unit.Properties = append(unit.Properties, prop)
	}
	return unit, nil
}

func (c *cursor) tag(name string) int {
	loc := tagPattern(name).FindStringIndex(c.xml[c.pos:])
	if loc == nil {
		return c.pos
	}
	start := c.pos + loc[0]
	c.pos += loc[1]
	return start
}

func accessor(xmlText string, n *xmlNode, at int) Method {
	m := Method{
		Name:           n.attr("Name"),
		ID:             n.attr("Id"),
		Declaration:    n.child("Declaration").text(),
		Implementation: implementationText(n.child("Implementation")),
	}
	if m.Declaration != "" {
		m.DeclarationLoc = Locate(xmlText, at, "Declaration")
	}
	if m.Implementation != "" {
		m.ImplementationLoc = Locate(xmlText, at, "Implementation", "ST")
	}
	return m
}
