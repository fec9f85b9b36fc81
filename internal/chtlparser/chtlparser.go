// Package chtlparser implements the CHTL recursive-descent parser. Error
// recovery is a synchronize-to-statement-boundary scheme (spec 4.2): on
// failure, report one diagnostic, skip tokens until a semicolon or a brace
// boundary that would begin a new top-level construct, then resume.
package chtlparser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Yhlight/chtl/internal/chtlast"
	"github.com/Yhlight/chtl/internal/chtllexer"
	"github.com/Yhlight/chtl/internal/chtlregistry"
	"github.com/Yhlight/chtl/internal/chtlstate"
	"github.com/Yhlight/chtl/internal/chtltoken"
	"github.com/Yhlight/chtl/internal/logger"
)

// selfClosingTags is the fixed HTML list the generator also consults (spec
// 4.4); the parser uses it only to decide whether a bare "tag;" element
// (no body) is legal without text/children.
var selfClosingTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

type Parser struct {
	log      logger.Log
	source   logger.Source
	tokens   []chtltoken.Token
	cur      int
	tree     *chtlast.Tree
	registry *chtlregistry.Registry
	state    *chtlstate.Helper
}

// Result is what one Parse call returns: the CHTL AST plus everything the
// generator and validator need afterward (spec 3's "Lifecycle").
type Result struct {
	Tree     *chtlast.Tree
	Registry *chtlregistry.Registry
	State    *chtlstate.Helper
}

func Parse(log logger.Log, source logger.Source) Result {
	p := &Parser{
		log:      log,
		source:   source,
		tokens:   chtllexer.Tokenize(log, source),
		tree:     chtlast.NewTree(source),
		registry: chtlregistry.New(log),
		state:    chtlstate.NewHelper(),
	}
	root := p.tree.New(chtlast.Document, chtlast.Span{Start: 0, End: len(source.Contents)})
	p.tree.Root = root

	guard := p.state.ScopedGuard(root, chtlast.Document, p.tree.Get(root).Span, chtlstate.TopLevel, chtlstate.ScopeGlobal, "")
	defer guard.Release()

	for !p.isEOF() {
		if child, ok := p.parseTopLevelItem(); ok {
			p.tree.AddChild(root, child)
		}
	}

	p.state.ValidatePermissions(p.tree, p.registry)
	return Result{Tree: p.tree, Registry: p.registry, State: p.state}
}

// --- token cursor helpers ---

func (p *Parser) peek() chtltoken.Token { return p.tokens[p.cur] }
func (p *Parser) peekAt(n int) chtltoken.Token {
	if p.cur+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.cur+n]
}
func (p *Parser) isEOF() bool { return p.peek().Kind == chtltoken.EOF }

func (p *Parser) advance() chtltoken.Token {
	t := p.tokens[p.cur]
	if p.cur < len(p.tokens)-1 {
		p.cur++
	}
	return t
}

func (p *Parser) check(k chtltoken.Kind) bool { return p.peek().Kind == k }

func (p *Parser) match(k chtltoken.Kind) (chtltoken.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	return chtltoken.Token{}, false
}

func (p *Parser) expect(k chtltoken.Kind) (chtltoken.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	tok := p.peek()
	p.errorAt(tok, fmt.Sprintf("expected %s but found %s", k, describeToken(tok)))
	return tok, false
}

func describeToken(t chtltoken.Token) string {
	if t.Kind == chtltoken.EOF {
		return "end of file"
	}
	return fmt.Sprintf("%q", t.Lexeme)
}

func (p *Parser) errorAt(t chtltoken.Token, message string) {
	logger.AddError(p.log, p.source, t.Start, t.End-t.Start, message)
}

// collectComments consumes any run of comment tokens, surfacing them as
// Comment nodes attached to dest. When dest is chtlast.InvalidNodeID the
// comments are consumed without creating nodes.
func (p *Parser) collectComments(dest chtlast.NodeID) {
	for {
		switch p.peek().Kind {
		case chtltoken.CommentDoubleDash, chtltoken.CommentLine, chtltoken.CommentBlock:
			t := p.advance()
			if dest != chtlast.InvalidNodeID {
				id := p.tree.New(chtlast.Comment, chtlast.Span{Start: t.Start, End: t.End})
				p.tree.Get(id).Name = t.Lexeme
				p.tree.AddChild(dest, id)
			}
		default:
			return
		}
	}
}

// synchronize implements spec 4.2's recovery scheme: skip to the next
// semicolon or a brace boundary that would begin a new top-level construct.
func (p *Parser) synchronize() {
	for !p.isEOF() {
		switch p.peek().Kind {
		case chtltoken.Semicolon:
			p.advance()
			return
		case chtltoken.RBrace, chtltoken.LBracket, chtltoken.BracketTemplate,
			chtltoken.BracketCustom, chtltoken.BracketOrigin, chtltoken.BracketNamespace,
			chtltoken.BracketConfiguration:
			return
		}
		p.advance()
	}
}

// --- top level ---

func (p *Parser) parseTopLevelItem() (chtlast.NodeID, bool) {
	p.collectComments(chtlast.InvalidNodeID)
	if p.isEOF() {
		return chtlast.InvalidNodeID, false
	}

	switch p.peek().Kind {
	case chtltoken.BracketTemplate:
		return p.parseTemplateOrCustomDecl(true)
	case chtltoken.BracketCustom:
		return p.parseTemplateOrCustomDecl(false)
	case chtltoken.BracketOrigin:
		return p.parseOrigin()
	case chtltoken.BracketNamespace:
		return p.parseNamespace()
	case chtltoken.BracketConfiguration:
		return p.parseConfiguration()
	case chtltoken.KwStyle:
		return p.parseStyleBlock(false)
	case chtltoken.KwScript:
		return p.parseScriptBlock(false)
	case chtltoken.Identifier:
		return p.parseElement()
	default:
		p.errorAt(p.peek(), fmt.Sprintf("unexpected %s at top level", describeToken(p.peek())))
		p.synchronize()
		return chtlast.InvalidNodeID, false
	}
}

// --- [Template]/[Custom] declarations ---

func declKindFromAt(at string) chtlast.DeclKind {
	switch at {
	case "@Style":
		return chtlast.DeclStyle
	case "@Element":
		return chtlast.DeclElement
	case "@Var":
		return chtlast.DeclVar
	default:
		return chtlast.DeclNone
	}
}

func (p *Parser) parseTemplateOrCustomDecl(isTemplate bool) (chtlast.NodeID, bool) {
	start := p.advance() // consume [Template] or [Custom]
	atTok, ok := p.expect(chtltoken.AtSigil)
	if !ok {
		p.synchronize()
		return chtlast.InvalidNodeID, false
	}
	declKind := declKindFromAt(atTok.Lexeme)
	if declKind == chtlast.DeclNone {
		p.errorAt(atTok, fmt.Sprintf("unknown template/custom kind %q", atTok.Lexeme))
	}
	nameTok, ok := p.expect(chtltoken.Identifier)
	if !ok {
		p.synchronize()
		return chtlast.InvalidNodeID, false
	}

	kind := chtlast.TemplateDecl
	stateVal := chtlstate.InTemplateDecl
	if !isTemplate {
		kind = chtlast.CustomDecl
		stateVal = chtlstate.InCustomDecl
	}

	id := p.tree.New(kind, chtlast.Span{Start: start.Start, End: nameTok.End})
	n := p.tree.Get(id)
	n.DeclKind = declKind
	n.Name = nameTok.Lexeme

	guard := p.state.ScopedGuard(id, kind, n.Span, stateVal, scopeFor(kind), nameTok.Lexeme)
	defer guard.Release()

	if _, ok := p.expect(chtltoken.LBrace); ok {
		p.parseDeclBody(id, declKind)
		if closeTok, ok := p.expect(chtltoken.RBrace); ok {
			p.tree.Get(id).Span.End = closeTok.End
		}
	}

	if isTemplate {
		p.registry.RegisterTemplate(p.source, declKind, nameTok.Lexeme, id, nameTok.Start)
	} else {
		p.registry.RegisterCustom(p.source, declKind, nameTok.Lexeme, id, nameTok.Start)
	}
	return id, true
}

func scopeFor(kind chtlast.Kind) chtlstate.Scope {
	switch kind {
	case chtlast.TemplateDecl:
		return chtlstate.ScopeTemplate
	case chtlast.CustomDecl:
		return chtlstate.ScopeCustom
	case chtlast.Namespace:
		return chtlstate.ScopeNamespace
	case chtlast.OriginEmbed:
		return chtlstate.ScopeOrigin
	default:
		return chtlstate.ScopeElement
	}
}

// parseDeclBody parses the body of a [Template]/[Custom] declaration. For
// @Var it is a flat list of "name: value;" bindings; for @Style it is style
// properties; for @Element it is a sequence of element declarations.
func (p *Parser) parseDeclBody(parent chtlast.NodeID, declKind chtlast.DeclKind) {
	for !p.check(chtltoken.RBrace) && !p.isEOF() {
		p.collectComments(parent)
		if p.check(chtltoken.RBrace) || p.isEOF() {
			break
		}
		switch declKind {
		case chtlast.DeclVar:
			if child, ok := p.parseVarBinding(); ok {
				p.tree.AddChild(parent, child)
			} else {
				p.synchronize()
			}
		case chtlast.DeclStyle:
			if child, ok := p.parseStyleBodyItem(); ok {
				p.tree.AddChild(parent, child)
			} else {
				p.synchronize()
			}
		default: // DeclElement
			if child, ok := p.parseElementBodyItem(); ok {
				p.tree.AddChild(parent, child)
			} else {
				p.synchronize()
			}
		}
	}
}

func (p *Parser) parseVarBinding() (chtlast.NodeID, bool) {
	nameTok, ok := p.expect(chtltoken.Identifier)
	if !ok {
		return chtlast.InvalidNodeID, false
	}
	if _, ok := p.match(chtltoken.Colon); !ok {
		p.expect(chtltoken.Equals)
	}
	valueTok := p.parseValueUntilTerminator()
	p.match(chtltoken.Semicolon)

	id := p.tree.New(chtlast.StyleProperty, chtlast.Span{Start: nameTok.Start, End: nameTok.End})
	n := p.tree.Get(id)
	n.Name = nameTok.Lexeme
	n.RawText = valueTok
	p.registry.RegisterVar(nameTok.Lexeme, valueTok)
	return id, true
}

// parseValueUntilTerminator consumes tokens up to (not including) the next
// ';' or '}' and returns their concatenated raw text, used for attribute and
// style-property values which may be bare words, numbers, or @Var refs.
func (p *Parser) parseValueUntilTerminator() string {
	var sb strings.Builder
	first := true
	for !p.check(chtltoken.Semicolon) && !p.check(chtltoken.RBrace) && !p.isEOF() {
		t := p.advance()
		if !first {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Lexeme)
		first = false
	}
	return sb.String()
}

// --- [Origin] ---

func (p *Parser) parseOrigin() (chtlast.NodeID, bool) {
	start := p.advance() // [Origin]
	atTok, ok := p.expect(chtltoken.AtSigil)
	if !ok {
		p.synchronize()
		return chtlast.InvalidNodeID, false
	}
	language := strings.TrimPrefix(atTok.Lexeme, "@")

	name := ""
	if nameTok, ok := p.match(chtltoken.Identifier); ok {
		name = nameTok.Lexeme
	}

	open, ok := p.expect(chtltoken.LBrace)
	if !ok {
		p.synchronize()
		return chtlast.InvalidNodeID, false
	}

	raw, closeOffset, found := chtllexer.RawBraceCapture(p.source.Contents, open.Start)
	id := p.tree.New(chtlast.OriginEmbed, chtlast.Span{Start: start.Start, End: open.End})
	n := p.tree.Get(id)
	n.Language = language
	n.Name = name
	if !found {
		p.errorAt(open, "unterminated [Origin] block")
		return id, true
	}
	n.RawText = raw
	n.Span.End = closeOffset + 1
	p.resyncPast(closeOffset + 1)

	if name != "" {
		p.registry.RegisterOrigin(name, language, id)
	}
	return id, true
}

// resyncPast advances the token cursor until the current token starts at or
// after offset, used after a raw-capture (script/[Origin] bodies) to skip
// every token the eager tokenizer produced from content that was actually
// meant for a different grammar.
func (p *Parser) resyncPast(offset int) {
	for !p.isEOF() && p.peek().Start < offset {
		p.advance()
	}
}

// --- [Namespace] ---

func (p *Parser) parseNamespace() (chtlast.NodeID, bool) {
	start := p.advance() // [Namespace]
	nameTok, ok := p.expect(chtltoken.Identifier)
	if !ok {
		p.synchronize()
		return chtlast.InvalidNodeID, false
	}

	id := p.tree.New(chtlast.Namespace, chtlast.Span{Start: start.Start, End: nameTok.End})
	n := p.tree.Get(id)
	n.Name = nameTok.Lexeme

	guard := p.state.ScopedGuard(id, chtlast.Namespace, n.Span, chtlstate.InNamespace, chtlstate.ScopeNamespace, nameTok.Lexeme)
	defer guard.Release()

	p.registry.RegisterNamespace(nameTok.Lexeme, id)
	p.registry.PushNamespace(nameTok.Lexeme)
	defer p.registry.PopNamespace()

	if _, ok := p.expect(chtltoken.LBrace); ok {
		for !p.check(chtltoken.RBrace) && !p.isEOF() {
			p.collectComments(id)
			if p.check(chtltoken.RBrace) || p.isEOF() {
				break
			}
			if p.check(chtltoken.KwExcept) {
				if child, ok := p.parseExcept(); ok {
					p.tree.Get(id).ExceptList = append(p.tree.Get(id).ExceptList, p.tree.Get(child).ExceptList...)
					p.registry.AddExcept(nameTok.Lexeme, p.tree.Get(child).ExceptList)
					p.tree.AddChild(id, child)
				} else {
					p.synchronize()
				}
				continue
			}
			if item, ok := p.parseTopLevelItem(); ok {
				p.tree.AddChild(id, item)
			}
		}
		if closeTok, ok := p.expect(chtltoken.RBrace); ok {
			p.tree.Get(id).Span.End = closeTok.End
		}
	}
	return id, true
}

func (p *Parser) parseExcept() (chtlast.NodeID, bool) {
	start := p.advance() // "except"
	var names []string
	for {
		tok := p.peek()
		// Tag names spelled like keywords ("script", "style", "text") lex as
		// keyword tokens and are accepted here as plain names.
		if _, isKeyword := chtltoken.Keywords[strings.ToLower(tok.Lexeme)]; isKeyword {
			p.advance()
		} else if _, ok := p.expect(chtltoken.Identifier); !ok {
			break
		}
		names = append(names, tok.Lexeme)
		if _, ok := p.match(chtltoken.Comma); !ok {
			break
		}
	}
	end, _ := p.expect(chtltoken.Semicolon)
	id := p.tree.New(chtlast.Except, chtlast.Span{Start: start.Start, End: end.End})
	p.tree.Get(id).ExceptList = names
	return id, true
}

// --- [Configuration] ---

func (p *Parser) parseConfiguration() (chtlast.NodeID, bool) {
	start := p.advance() // [Configuration]
	open, ok := p.expect(chtltoken.LBrace)
	if !ok {
		p.synchronize()
		return chtlast.InvalidNodeID, false
	}
	id := p.tree.New(chtlast.Configuration, chtlast.Span{Start: start.Start, End: open.End})

	for !p.check(chtltoken.RBrace) && !p.isEOF() {
		p.collectComments(id)
		if p.check(chtltoken.RBrace) || p.isEOF() {
			break
		}
		keyTok, ok := p.expect(chtltoken.Identifier)
		if !ok {
			p.synchronize()
			continue
		}
		if _, ok := p.match(chtltoken.Colon); !ok {
			p.expect(chtltoken.Equals)
		}
		value := p.parseValueUntilTerminator()
		p.match(chtltoken.Semicolon)
		p.tree.Get(id).Attrs[keyTok.Lexeme] = value
	}
	if closeTok, ok := p.expect(chtltoken.RBrace); ok {
		p.tree.Get(id).Span.End = closeTok.End
	}
	return id, true
}

// --- elements ---

func (p *Parser) parseElement() (chtlast.NodeID, bool) {
	tagTok := p.advance()
	id := p.tree.New(chtlast.Element, chtlast.Span{Start: tagTok.Start, End: tagTok.End})
	n := p.tree.Get(id)
	n.Name = tagTok.Lexeme

	guard := p.state.ScopedGuard(id, chtlast.Element, n.Span, chtlstate.InElement, chtlstate.ScopeElement, tagTok.Lexeme)
	defer guard.Release()

	if _, ok := p.match(chtltoken.Semicolon); ok {
		if !selfClosingTags[strings.ToLower(tagTok.Lexeme)] {
			p.errorAt(tagTok, fmt.Sprintf("<%s> requires a body; only void elements may end with ';'", tagTok.Lexeme))
		}
		return id, true
	}

	open, ok := p.expect(chtltoken.LBrace)
	if !ok {
		p.synchronize()
		return id, true
	}
	_ = open

	bodyGuard := p.state.ScopedGuard(id, chtlast.Element, n.Span, chtlstate.InElementBody, chtlstate.ScopeElement, tagTok.Lexeme)
	for !p.check(chtltoken.RBrace) && !p.isEOF() {
		p.collectComments(id)
		if p.check(chtltoken.RBrace) || p.isEOF() {
			break
		}
		if child, ok := p.parseElementBodyItem(); ok {
			p.tree.AddChild(id, child)
		} else {
			p.synchronize()
		}
	}
	bodyGuard.Release()

	if closeTok, ok := p.expect(chtltoken.RBrace); ok {
		p.tree.Get(id).Span.End = closeTok.End
	}
	return id, true
}

// parseElementBodyItem parses one construct legal inside an element body:
// nested element, text{}, style{}, script{}, attribute, use-site, insert,
// delete, except (spec 4.2).
func (p *Parser) parseElementBodyItem() (chtlast.NodeID, bool) {
	switch p.peek().Kind {
	case chtltoken.KwText:
		return p.parseTextBlock()
	case chtltoken.KwStyle:
		return p.parseStyleBlock(true)
	case chtltoken.KwScript:
		return p.parseScriptBlock(true)
	case chtltoken.KwInsert:
		return p.parseInsert()
	case chtltoken.KwDelete:
		return p.parseDelete()
	case chtltoken.KwExcept:
		return p.parseExcept()
	case chtltoken.AtSigil:
		return p.parseUseSite()
	case chtltoken.Identifier:
		if p.peekIsAttribute() {
			return p.parseAttribute()
		}
		return p.parseElement()
	default:
		p.errorAt(p.peek(), fmt.Sprintf("unexpected %s inside element body", describeToken(p.peek())))
		return chtlast.InvalidNodeID, false
	}
}

// peekIsAttribute looks ahead for "identifier :" / "identifier =" which
// distinguishes "name: value;" attributes from a nested element declaration
// "name { ... }".
func (p *Parser) peekIsAttribute() bool {
	next := p.peekAt(1)
	return next.Kind == chtltoken.Colon || next.Kind == chtltoken.Equals
}

func (p *Parser) parseAttribute() (chtlast.NodeID, bool) {
	nameTok := p.advance()
	id := p.tree.New(chtlast.Attribute, chtlast.Span{Start: nameTok.Start, End: nameTok.End})
	n := p.tree.Get(id)
	n.Name = nameTok.Lexeme

	guard := p.state.ScopedGuard(id, chtlast.Attribute, n.Span, chtlstate.InAttribute, chtlstate.ScopeElement, nameTok.Lexeme)
	defer guard.Release()

	p.advance() // consume ':' or '='
	value := p.parseValueUntilTerminator()
	n.RawText = strings.Trim(value, `"'`)
	if end, ok := p.expect(chtltoken.Semicolon); ok {
		n.Span.End = end.End
	}
	return id, true
}

func (p *Parser) parseTextBlock() (chtlast.NodeID, bool) {
	start := p.advance() // "text"
	open, ok := p.expect(chtltoken.LBrace)
	if !ok {
		return chtlast.InvalidNodeID, false
	}
	raw, closeOffset, found := chtllexer.RawBraceCapture(p.source.Contents, open.Start)
	id := p.tree.New(chtlast.TextBlock, chtlast.Span{Start: start.Start, End: open.End})
	n := p.tree.Get(id)
	if !found {
		p.errorAt(open, "unterminated text{} block")
		return id, true
	}
	n.RawText = strings.TrimSpace(raw)
	n.Span.End = closeOffset + 1
	p.resyncPast(closeOffset + 1)
	return id, true
}

func (p *Parser) parseScriptBlock(isLocal bool) (chtlast.NodeID, bool) {
	start := p.advance() // "script"
	open, ok := p.expect(chtltoken.LBrace)
	if !ok {
		return chtlast.InvalidNodeID, false
	}
	raw, closeOffset, found := chtllexer.RawBraceCapture(p.source.Contents, open.Start)
	id := p.tree.New(chtlast.ScriptBlock, chtlast.Span{Start: start.Start, End: open.End})
	n := p.tree.Get(id)
	n.Attrs["isLocal"] = strconv.FormatBool(isLocal)

	stateVal := chtlstate.InLocalScript
	if !isLocal {
		stateVal = chtlstate.InGlobalScript
	}
	guard := p.state.ScopedGuard(id, chtlast.ScriptBlock, n.Span, stateVal, chtlstate.ScopeScriptBlock, "")
	defer guard.Release()

	if !found {
		p.errorAt(open, "unterminated script{} block")
		return id, true
	}
	n.RawText = raw
	n.Span.End = closeOffset + 1
	p.resyncPast(closeOffset + 1)
	return id, true
}

// --- style blocks ---

func (p *Parser) parseStyleBlock(isLocal bool) (chtlast.NodeID, bool) {
	start := p.advance() // "style"
	id := p.tree.New(chtlast.StyleBlock, chtlast.Span{Start: start.Start, End: start.End})
	n := p.tree.Get(id)
	n.Attrs["isLocal"] = strconv.FormatBool(isLocal)

	stateVal := chtlstate.InLocalStyle
	if !isLocal {
		stateVal = chtlstate.InGlobalStyle
	}
	guard := p.state.ScopedGuard(id, chtlast.StyleBlock, n.Span, stateVal, chtlstate.ScopeStyleBlock, "")
	defer guard.Release()

	if _, ok := p.expect(chtltoken.LBrace); !ok {
		return id, true
	}
	for !p.check(chtltoken.RBrace) && !p.isEOF() {
		p.collectComments(id)
		if p.check(chtltoken.RBrace) || p.isEOF() {
			break
		}
		if child, ok := p.parseStyleBodyItem(); ok {
			p.tree.AddChild(id, child)
		} else {
			p.synchronize()
		}
	}
	if closeTok, ok := p.expect(chtltoken.RBrace); ok {
		p.tree.Get(id).Span.End = closeTok.End
	}
	return id, true
}

// parseStyleBodyItem parses one of: a bare "property: value;", a nested
// selector rule "selector { properties }", a @Style/@Var use-site, or a
// comment (spec 4.2/4.4).
func (p *Parser) parseStyleBodyItem() (chtlast.NodeID, bool) {
	switch p.peek().Kind {
	case chtltoken.AtSigil:
		return p.parseUseSite()
	case chtltoken.Identifier, chtltoken.Dot:
		// Disambiguate "prop: value;" from "selector { ... }" by scanning
		// ahead for the next unmatched ':' vs '{' at depth 0.
		if p.styleItemIsRule() {
			return p.parseStyleRule()
		}
		return p.parseStyleProperty()
	default:
		p.errorAt(p.peek(), fmt.Sprintf("unexpected %s inside style block", describeToken(p.peek())))
		return chtlast.InvalidNodeID, false
	}
}

func (p *Parser) styleItemIsRule() bool {
	for i := 0; ; i++ {
		t := p.peekAt(i)
		switch t.Kind {
		case chtltoken.LBrace:
			return true
		case chtltoken.Colon, chtltoken.Semicolon, chtltoken.RBrace, chtltoken.EOF:
			return false
		}
	}
}

func (p *Parser) parseStyleRule() (chtlast.NodeID, bool) {
	var sb strings.Builder
	startTok := p.peek()
	for !p.check(chtltoken.LBrace) && !p.isEOF() {
		t := p.advance()
		sb.WriteString(t.Lexeme)
	}
	open, ok := p.expect(chtltoken.LBrace)
	if !ok {
		return chtlast.InvalidNodeID, false
	}
	id := p.tree.New(chtlast.StyleRule, chtlast.Span{Start: startTok.Start, End: open.End})
	n := p.tree.Get(id)
	n.Name = sb.String()
	for !p.check(chtltoken.RBrace) && !p.isEOF() {
		if child, ok := p.parseStyleBodyItem(); ok {
			p.tree.AddChild(id, child)
		} else {
			p.synchronize()
		}
	}
	if closeTok, ok := p.expect(chtltoken.RBrace); ok {
		p.tree.Get(id).Span.End = closeTok.End
	}
	return id, true
}

func (p *Parser) parseStyleProperty() (chtlast.NodeID, bool) {
	nameTok := p.advance()
	name := nameTok.Lexeme
	if _, ok := p.match(chtltoken.Colon); !ok {
		p.expect(chtltoken.Equals)
	}
	value := p.parseValueUntilTerminator()
	id := p.tree.New(chtlast.StyleProperty, chtlast.Span{Start: nameTok.Start, End: nameTok.End})
	n := p.tree.Get(id)
	n.Name = name
	n.RawText = value
	if end, ok := p.expect(chtltoken.Semicolon); ok {
		n.Span.End = end.End
	}
	return id, true
}

// --- use-sites: @Kind Name [{ override-body }] ---

func (p *Parser) parseUseSite() (chtlast.NodeID, bool) {
	atTok := p.advance()
	declKind := declKindFromAt(atTok.Lexeme)
	nameTok, ok := p.expect(chtltoken.Identifier)
	if !ok {
		return chtlast.InvalidNodeID, false
	}

	id := p.tree.New(chtlast.Use, chtlast.Span{Start: atTok.Start, End: nameTok.End})
	n := p.tree.Get(id)
	n.Name = nameTok.Lexeme
	n.DeclKind = declKind

	if p.check(chtltoken.LBrace) {
		open := p.advance()
		for !p.check(chtltoken.RBrace) && !p.isEOF() {
			p.collectComments(id)
			if p.check(chtltoken.RBrace) || p.isEOF() {
				break
			}
			var child chtlast.NodeID
			var ok bool
			switch p.peek().Kind {
			case chtltoken.KwInsert:
				child, ok = p.parseInsert()
			case chtltoken.KwDelete:
				child, ok = p.parseDelete()
			case chtltoken.AtSigil:
				child, ok = p.parseUseSite()
			case chtltoken.Identifier:
				if p.peekIsAttribute() || p.styleItemIsRule() {
					child, ok = p.parseStyleProperty()
				} else {
					child, ok = p.parseElement()
				}
			default:
				p.errorAt(p.peek(), fmt.Sprintf("unexpected %s inside use-site override body", describeToken(p.peek())))
			}
			if ok {
				p.tree.AddChild(id, child)
			} else {
				p.synchronize()
			}
		}
		_ = open
		if closeTok, ok := p.expect(chtltoken.RBrace); ok {
			p.tree.Get(id).Span.End = closeTok.End
		}
	} else {
		p.match(chtltoken.Semicolon)
	}
	return id, true
}

// --- insert / delete ---

func (p *Parser) parseAnchor() (chtlast.Anchor, bool) {
	tagTok, ok := p.expect(chtltoken.Identifier)
	if !ok {
		return chtlast.Anchor{}, false
	}
	anchor := chtlast.Anchor{Tag: tagTok.Lexeme}
	if _, ok := p.match(chtltoken.LBracket); ok {
		numTok, ok := p.expect(chtltoken.NumberLit)
		if ok {
			if idx, err := strconv.Atoi(numTok.Lexeme); err == nil {
				anchor.Index = idx
				anchor.HasIndex = true
			}
		}
		p.expect(chtltoken.RBracket)
	}
	return anchor, true
}

func (p *Parser) parseInsert() (chtlast.NodeID, bool) {
	start := p.advance() // "insert"
	var position chtlast.InsertPosition
	var anchor chtlast.Anchor
	haveAnchor := true

	switch p.peek().Kind {
	case chtltoken.KwBefore:
		p.advance()
		position = chtlast.PosBefore
	case chtltoken.KwAfter:
		p.advance()
		position = chtlast.PosAfter
	case chtltoken.KwReplace:
		p.advance()
		position = chtlast.PosReplace
	case chtltoken.KwAt:
		p.advance()
		switch p.peek().Kind {
		case chtltoken.KwTop:
			p.advance()
			position = chtlast.PosAtTop
			haveAnchor = false
		case chtltoken.KwBottom:
			p.advance()
			position = chtlast.PosAtBottom
			haveAnchor = false
		default:
			p.errorAt(p.peek(), "expected 'top' or 'bottom' after 'at'")
		}
	default:
		p.errorAt(p.peek(), "expected before/after/replace/at after 'insert'")
	}

	if haveAnchor {
		a, ok := p.parseAnchor()
		if !ok {
			return chtlast.InvalidNodeID, false
		}
		anchor = a
	}

	open, ok := p.expect(chtltoken.LBrace)
	if !ok {
		return chtlast.InvalidNodeID, false
	}
	id := p.tree.New(chtlast.Insert, chtlast.Span{Start: start.Start, End: open.End})
	n := p.tree.Get(id)
	n.Position = position
	n.Anchor = anchor

	for !p.check(chtltoken.RBrace) && !p.isEOF() {
		p.collectComments(id)
		if p.check(chtltoken.RBrace) || p.isEOF() {
			break
		}
		if child, ok := p.parseElementBodyItem(); ok {
			p.tree.AddChild(id, child)
		} else {
			p.synchronize()
		}
	}
	if closeTok, ok := p.expect(chtltoken.RBrace); ok {
		p.tree.Get(id).Span.End = closeTok.End
	}
	return id, true
}

func (p *Parser) parseDelete() (chtlast.NodeID, bool) {
	start := p.advance() // "delete"
	anchor, ok := p.parseAnchor()
	if !ok {
		return chtlast.InvalidNodeID, false
	}
	end, _ := p.expect(chtltoken.Semicolon)
	id := p.tree.New(chtlast.Delete, chtlast.Span{Start: start.Start, End: end.End})
	p.tree.Get(id).Anchor = anchor
	return id, true
}
