package twincat

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tcpou/internal/adapter/analyzer"
	"tcpou/internal/adapter/st"
	"tcpou/internal/domain"
)

// Parser turns TcPOU documents into chunks. The grammar is compiled on first
// use and reused. A Parser keeps the error list of its last call, so one
// instance must not be shared between goroutines.
type Parser struct {
	log      logrus.FieldLogger
	settings domain.PipelineSettings
	comments *analyzer.CommentExtractor

	grammarOnce sync.Once
	grammar     *st.Grammar

	errors []string
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets where grammar failures and per-POU summaries are logged.
// Without it the parser logs nowhere.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Parser) { p.log = l }
}

// WithPipelineSettings sets the bundle handed to the merge stage by
// ExtractBatch. Extraction itself ignores it.
func WithPipelineSettings(s domain.PipelineSettings) Option {
	return func(p *Parser) { p.settings = s }
}

// NewParser returns a Parser with the given options applied.
func NewParser(opts ...Option) *Parser {
	p := &Parser{comments: analyzer.NewCommentExtractor()}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		p.log = l
	}
	return p
}

// Grammar returns the compiled Structured Text grammar, building it on the
// first call.
func (p *Parser) Grammar() *st.Grammar {
	p.grammarOnce.Do(func() {
		p.grammar = st.NewGrammar()
	})
	return p.grammar
}

// Errors returns the grammar errors recorded by the last Parse,
// ParseFile, ExtractForPipeline or ExtractBatch call.
func (p *Parser) Errors() []string {
	return slices.Clone(p.errors)
}

// FileID derives a stable identifier for a file path.
func FileID(path string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(path))).String()
}

// Parse extracts persisted chunks from TcPOU content. A returned error is
// always a *StructuralError; grammar failures are reported by Errors.
func (p *Parser) Parse(content string) ([]domain.Chunk, error) {
	return p.parse(content, fileIdentity{})
}

func (p *Parser) ParseFile(path string) ([]domain.Chunk, error) {
	p.errors = nil
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return p.ParseSource(path, string(data))
}

// ParseSource is ParseFile for content the caller has already read.
func (p *Parser) ParseSource(path, content string) ([]domain.Chunk, error) {
	return p.parse(content, fileIdentity{id: FileID(path), path: path})
}

func (p *Parser) parse(content string, file fileIdentity) ([]domain.Chunk, error) {
	recs, err := p.records(content)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]int, len(recs))
	chunks := make([]domain.Chunk, 0, len(recs))
	for _, r := range recs {
		key := fmt.Sprintf("%s|%d", r.symbol, r.startLine)
		chunks = append(chunks, r.toChunk(file, seen[key]))
		seen[key]++
	}
	return chunks, nil
}

// ExtractForPipeline returns the same units as Parse in pipeline form.
func (p *Parser) ExtractForPipeline(content string) ([]domain.PipelineChunk, error) {
	recs, err := p.records(content)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PipelineChunk, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.toPipelineChunk())
	}
	return out, nil
}

// ExtractBatch bundles pipeline chunks with the pass-through settings and
// the grammar errors of this call.
func (p *Parser) ExtractBatch(content string) (domain.PipelineBatch, error) {
	chunks, err := p.ExtractForPipeline(content)
	if err != nil {
		return domain.PipelineBatch{}, err
	}
	return domain.PipelineBatch{Settings: p.settings, Chunks: chunks, Errors: p.Errors()}, nil
}

func (p *Parser) records(content string) ([]record, error) {
	p.errors = nil
	unit, err := ExtractUnit(content)
	if err != nil {
		return nil, err
	}
	a := &assembler{p: p, unit: unit, log: p.log.WithField("pou", unit.Name)}
	a.run()
	a.log.WithFields(logrus.Fields{"chunks": len(a.out), "errors": len(p.errors)}).Debug("extracted POU")
	return a.out, nil
}

// scope names the construct a nested element belongs to.
type scope struct {
	name string
	key  string
}

func (s scope) fqn(unit, element string) string {
	if s.name == "" {
		return unit + "." + element
	}
	return unit + "." + s.name + "." + element
}

func (s scope) annotate(meta map[string]any) map[string]any {
	if s.name != "" {
		meta[s.key] = s.name
	}
	return meta
}

type assembler struct {
	p    *Parser
	unit *ProgramUnit
	log  logrus.FieldLogger
	out  []record
}

func (a *assembler) emit(r record) { a.out = append(a.out, r) }

func (a *assembler) fail(section, msg string) {
	a.log.WithField("section", section).Error(msg)
	a.p.errors = append(a.p.errors, msg)
}

func (a *assembler) meta(kind string) map[string]any {
	return map[string]any{
		"kind":     kind,
		"pou_type": string(a.unit.Kind),
		"pou_name": a.unit.Name,
	}
}

func unitChunkKind(k UnitKind) domain.ChunkKind {
	switch k {
	case UnitProgram:
		return domain.KindProgram
	case UnitFunctionBlock:
		return domain.KindFunctionBlock
	case UnitFunction:
		return domain.KindFunction
	}
	return domain.KindBlock
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func endLine(start int, code string) int {
	return start + strings.Count(code, "\n")
}

func firstLine(locs ...*SourceLocation) int {
	for _, l := range locs {
		if l != nil {
			return l.Line
		}
	}
	return 1
}

func (a *assembler) run() {
	u := a.unit
	code := u.Declaration
	if !blank(u.Implementation) {
		code += "\n\n" + u.Implementation
	}
	if !blank(code) {
		start := firstLine(u.DeclarationLoc)
		meta := a.meta(strings.ToLower(string(u.Kind)))
		meta["pou_id"] = u.ID
		a.emit(record{
			kind: unitChunkKind(u.Kind), symbol: u.Name, code: code,
			startLine: start, endLine: endLine(start, code), metadata: meta,
		})
	}

	top := scope{}
	a.declaration(u.Declaration, u.DeclarationLoc, top, "declaration",
		fmt.Sprintf("Declaration parse error in %s", u.Name))
	a.implementation(u.Implementation, u.ImplementationLoc, top, "implementation",
		fmt.Sprintf("Implementation parse error in %s", u.Name))

	for _, act := range u.Actions {
		a.action(act)
	}
	for _, m := range u.Methods {
		a.method(m)
	}
	for _, prop := range u.Properties {
		a.property(prop)
	}
}

func joinCode(decl, impl string) string {
	code := decl
	if !blank(impl) {
		if code != "" {
			code += "\n\n"
		}
		code += impl
	}
	return code
}

func (a *assembler) action(act Action) {
	code := joinCode(act.Declaration, act.Implementation)
	if blank(code) {
		return
	}
	start := firstLine(act.DeclarationLoc, act.ImplementationLoc)
	meta := a.meta("action")
	meta["action_id"] = act.ID
	a.emit(record{
		kind: domain.KindAction, symbol: a.unit.Name + "." + act.Name, code: code,
		startLine: start, endLine: endLine(start, code), metadata: meta,
	})

	sc := scope{name: act.Name, key: "action_name"}
	a.declaration(act.Declaration, act.DeclarationLoc, sc, "action:"+act.Name+":declaration",
		fmt.Sprintf("Action '%s' declaration parse error", act.Name))
	a.implementation(act.Implementation, act.ImplementationLoc, sc, "action:"+act.Name+":implementation",
		fmt.Sprintf("Action '%s' implementation parse error", act.Name))
}

func (a *assembler) method(m Method) {
	code := joinCode(m.Declaration, m.Implementation)
	if blank(code) {
		return
	}
	start := firstLine(m.DeclarationLoc, m.ImplementationLoc)
	meta := a.meta("method")
	meta["method_id"] = m.ID
	a.emit(record{
		kind: domain.KindMethod, symbol: a.unit.Name + "." + m.Name, code: code,
		startLine: start, endLine: endLine(start, code), metadata: meta,
	})

	sc := scope{name: m.Name, key: "method_name"}
	a.declaration(m.Declaration, m.DeclarationLoc, sc, "method:"+m.Name+":declaration",
		fmt.Sprintf("Method '%s' declaration parse error", m.Name))
	a.implementation(m.Implementation, m.ImplementationLoc, sc, "method:"+m.Name+":implementation",
		fmt.Sprintf("Method '%s' implementation parse error", m.Name))
}

func (a *assembler) property(prop Property) {
	parts := []string{prop.Declaration}
	var locs []*SourceLocation
	locs = append(locs, prop.DeclarationLoc)
	if prop.Get != nil {
		parts = append(parts, "// GET\n"+prop.Get.Implementation)
		locs = append(locs, prop.Get.DeclarationLoc, prop.Get.ImplementationLoc)
	}
	if prop.Set != nil {
		parts = append(parts, "// SET\n"+prop.Set.Implementation)
		locs = append(locs, prop.Set.DeclarationLoc, prop.Set.ImplementationLoc)
	}
	code := strings.Join(parts, "\n\n")
	start := firstLine(locs...)
	meta := a.meta("property")
	meta["property_id"] = prop.ID
	meta["has_get"] = prop.Get != nil
	meta["has_set"] = prop.Set != nil
	a.emit(record{
		kind: domain.KindProperty, symbol: a.unit.Name + "." + prop.Name, code: code,
		startLine: start, endLine: endLine(start, code), metadata: meta,
	})

	sc := scope{name: prop.Name, key: "method_name"}
	for _, acc := range []struct {
		label string
		m     *Method
	}{{"GET", prop.Get}, {"SET", prop.Set}} {
		if acc.m == nil {
			continue
		}
		section := "property:" + prop.Name + ":" + strings.ToLower(acc.label)
		a.declaration(acc.m.Declaration, acc.m.DeclarationLoc, sc, section+":declaration",
			fmt.Sprintf("Property '%s' %s declaration parse error", prop.Name, acc.label))
		a.implementation(acc.m.Implementation, acc.m.ImplementationLoc, sc, section+":implementation",
			fmt.Sprintf("Property '%s' %s implementation parse error", prop.Name, acc.label))
	}
}

func (a *assembler) declaration(text string, anchor *SourceLocation, sc scope, section, failure string) {
	if blank(text) {
		return
	}
	a.commentRecords(text, anchor, sc, "declaration")
	tree, err := a.p.Grammar().ParseDeclaration(text)
	if err != nil {
		a.fail(section, fmt.Sprintf("%s: %v", failure, err))
		return
	}
	for _, v := range extractVariables(tree, anchor) {
		kind := "field"
		if v.Kind() == domain.KindVariable {
			kind = "variable"
		}
		meta := a.meta(kind)
		meta["var_class"] = v.Class
		meta["data_type"] = v.DataType
		meta["hw_address"] = nil
		if v.HWAddress != "" {
			meta["hw_address"] = v.HWAddress
		}
		meta["retain"] = v.Retain
		meta["persistent"] = v.Persistent
		meta["constant"] = v.Constant
		a.emit(record{
			kind: v.Kind(), symbol: sc.fqn(a.unit.Name, v.Name), code: v.Code,
			startLine: v.StartLine, endLine: v.EndLine, metadata: sc.annotate(meta),
		})
	}
}

func (a *assembler) implementation(text string, anchor *SourceLocation, sc scope, section, failure string) {
	if blank(text) {
		return
	}
	a.commentRecords(text, anchor, sc, "implementation")
	tree, err := a.p.Grammar().ParseImplementation(text)
	if err != nil {
		a.fail(section, fmt.Sprintf("%s: %v", failure, err))
		return
	}
	for _, b := range extractBlocks(tree, text, anchor) {
		a.emit(record{
			kind:      domain.KindBlock,
			symbol:    sc.fqn(a.unit.Name, fmt.Sprintf("%s_%d", b.Kind, b.StartLine)),
			code:      b.Code,
			startLine: b.StartLine,
			endLine:   b.EndLine,
			metadata:  sc.annotate(a.meta(b.Kind)),
		})
	}
}

func (a *assembler) commentRecords(text string, anchor *SourceLocation, sc scope, section string) {
	for _, c := range a.p.comments.Extract(text) {
		start := AdjustLine(c.StartLine, anchor)
		meta := a.meta("comment")
		meta["comment_type"] = c.Type
		meta["section"] = section
		a.emit(record{
			kind:      domain.KindComment,
			symbol:    sc.fqn(a.unit.Name, fmt.Sprintf("comment_line_%d", start)),
			code:      c.Raw,
			startLine: start,
			endLine:   AdjustLine(c.EndLine, anchor),
			metadata:  sc.annotate(meta),
		})
	}
}
