// Package chtlgen lowers a validated CHTL AST to HTML/CSS, routing script{}
// content through the CHTL-JS subpipeline (spec 4.4). It never mutates the
// AST it's given; the AST is read-only during generation (spec 3).
package chtlgen

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Yhlight/chtl/internal/chtlast"
	"github.com/Yhlight/chtl/internal/chtljsgen"
	"github.com/Yhlight/chtl/internal/chtljsparser"
	"github.com/Yhlight/chtl/internal/chtljsregistry"
	"github.com/Yhlight/chtl/internal/chtlregistry"
	"github.com/Yhlight/chtl/internal/chtlstate"
	"github.com/Yhlight/chtl/internal/config"
	"github.com/Yhlight/chtl/internal/logger"
)

// selfClosingTags mirrors the parser's list; the generator is the
// authoritative consumer of it (spec 4.4: "self-closing tags are recognized
// from a fixed HTML list").
var selfClosingTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Metadata mirrors spec 6's GenerateResult.metadata shape, gathered from the
// CHTL-JS subpipeline runs triggered by this compile.
type Metadata struct {
	GeneratedFunctions []string
	VirMappings        map[string]string
	UsedSelectors      []string
}

type Result struct {
	OK       bool
	HTML     string
	CSS      string
	JS       string
	Metadata Metadata
}

type Generator struct {
	tree     *chtlast.Tree
	registry *chtlregistry.Registry
	state    *chtlstate.Helper
	opts     config.Options
	log      logger.Log
	source   logger.Source

	html strings.Builder
	css  strings.Builder
	js   strings.Builder

	indent           int
	classCounter     int
	emittedJSPrelude bool

	jsRegistry *chtljsregistry.Registry
	metadata   Metadata

	exceptStack [][]string
}

func Generate(log logger.Log, source logger.Source, tree *chtlast.Tree, reg *chtlregistry.Registry, state *chtlstate.Helper, opts config.Options) Result {
	g := &Generator{
		tree:       tree,
		registry:   reg,
		state:      state,
		opts:       opts,
		log:        log,
		source:     source,
		jsRegistry: chtljsregistry.New(log),
		metadata:   Metadata{VirMappings: map[string]string{}},
	}

	root := tree.Get(tree.Root)
	for _, child := range root.Children {
		g.genTopLevel(child)
	}

	html := g.composeDocument()

	return Result{
		OK:       !log.HasErrors(),
		HTML:     html,
		CSS:      g.css.String(),
		JS:       g.js.String(),
		Metadata: g.metadata,
	}
}

func (g *Generator) writeIndentTo(sb *strings.Builder) {
	if g.opts.PrettyPrint {
		sb.WriteString(strings.Repeat(" ", g.indent*g.indentSize()))
	}
}

func (g *Generator) indentSize() int {
	if g.opts.IndentSize > 0 {
		return g.opts.IndentSize
	}
	return 2
}

func (g *Generator) newline(sb *strings.Builder) {
	if g.opts.PrettyPrint {
		sb.WriteString("\n")
	}
}

// composeDocument assembles the final html per spec 6: optional doctype, the
// element tree, then trailing <style>/<script> blocks when non-empty.
func (g *Generator) composeDocument() string {
	var out strings.Builder
	if g.opts.AutoDoctype && strings.Contains(g.html.String(), "<html") {
		out.WriteString("<!DOCTYPE html>")
		g.newline(&out)
	}
	out.WriteString(g.html.String())

	if g.css.Len() > 0 {
		g.newline(&out)
		out.WriteString("<style>")
		g.newline(&out)
		out.WriteString(g.css.String())
		out.WriteString("</style>")
	}
	if g.js.Len() > 0 {
		g.newline(&out)
		out.WriteString("<script>")
		g.newline(&out)
		out.WriteString(g.js.String())
		out.WriteString("</script>")
	}
	return out.String()
}

func (g *Generator) currentExcepts() map[string]bool {
	set := map[string]bool{}
	for _, list := range g.exceptStack {
		for _, tag := range list {
			set[strings.ToLower(tag)] = true
		}
	}
	return set
}

func (g *Generator) genTopLevel(id chtlast.NodeID) {
	n := g.tree.Get(id)
	switch n.Kind {
	case chtlast.Element:
		g.genElement(id)
	case chtlast.Namespace:
		g.exceptStack = append(g.exceptStack, n.ExceptList)
		for _, c := range n.Children {
			g.genTopLevel(c)
		}
		g.exceptStack = g.exceptStack[:len(g.exceptStack)-1]
	case chtlast.OriginEmbed:
		g.genOrigin(id)
	case chtlast.StyleBlock:
		g.genStyleBlock(id, "")
	case chtlast.ScriptBlock:
		g.genScriptBlock(id)
	case chtlast.TemplateDecl, chtlast.CustomDecl, chtlast.Configuration, chtlast.Comment, chtlast.Except:
		// Declarations register themselves during parsing; Configuration is
		// consumed by pkg/chtl before generation starts; comments here are
		// at document level and only re-emitted when include_comments asks
		// for it (spec 6).
		if n.Kind == chtlast.Comment && g.opts.IncludeComments {
			g.newline(&g.html)
			fmt.Fprintf(&g.html, "<!--%s-->", strings.TrimPrefix(n.Name, "--"))
		}
	}
}

func (g *Generator) genOrigin(id chtlast.NodeID) {
	n := g.tree.Get(id)
	switch strings.ToLower(n.Language) {
	case "style":
		g.css.WriteString(n.RawText)
		g.newline(&g.css)
	case "javascript":
		g.js.WriteString(n.RawText)
		g.newline(&g.js)
	default: // "Html" and anything a CJMOD extension contributes
		g.html.WriteString(n.RawText)
	}
}

func (g *Generator) genElement(id chtlast.NodeID) {
	n := g.tree.Get(id)
	tag := n.Name

	if g.currentExcepts()[strings.ToLower(tag)] {
		logger.AddError(g.log, g.source, n.Span.Start, len(tag),
			fmt.Sprintf("element %q is prohibited by an 'except' constraint in this namespace", tag))
	}

	attrs := map[string]string{}
	var attrOrder []string
	var localClass string
	var textParts []string
	var elementChildren []chtlast.NodeID
	var styleBlocks []chtlast.NodeID
	var scriptBlocks []chtlast.NodeID

	for _, c := range n.Children {
		cn := g.tree.Get(c)
		switch cn.Kind {
		case chtlast.Attribute:
			if _, exists := attrs[cn.Name]; !exists {
				attrOrder = append(attrOrder, cn.Name)
			}
			attrs[cn.Name] = cn.RawText
			if cn.Name == "class" {
				localClass = cn.RawText
			}
		case chtlast.TextBlock:
			textParts = append(textParts, g.resolveVars(cn.RawText))
		case chtlast.StyleBlock:
			styleBlocks = append(styleBlocks, c)
		case chtlast.ScriptBlock:
			scriptBlocks = append(scriptBlocks, c)
		case chtlast.Use:
			elementChildren = append(elementChildren, g.expandUse(c)...)
		case chtlast.Element:
			elementChildren = append(elementChildren, c)
		case chtlast.Comment:
			if g.opts.IncludeComments {
				g.html.WriteString(fmt.Sprintf("<!--%s-->", strings.TrimPrefix(cn.Name, "--")))
			}
		}
	}

	// Local style blocks get a synthetic class when the element doesn't
	// already carry one (spec scenario 4); other style blocks are emitted
	// without a scoping selector.
	for _, sb := range styleBlocks {
		isLocal := g.tree.Get(sb).Attrs["isLocal"] == "true"
		if isLocal && localClass == "" {
			localClass = g.nextClassName()
			attrs["class"] = localClass
			attrOrder = append(attrOrder, "class")
		}
		g.genStyleBlock(sb, localClass)
	}

	for _, sb := range scriptBlocks {
		g.genScriptBlock(sb)
	}

	g.writeIndentTo(&g.html)
	g.html.WriteString("<")
	g.html.WriteString(tag)
	for _, name := range attrOrder {
		fmt.Fprintf(&g.html, " %s=\"%s\"", name, attrs[name])
	}

	if selfClosingTags[strings.ToLower(tag)] {
		g.html.WriteString(">")
		g.newline(&g.html)
		return
	}
	g.html.WriteString(">")

	for _, t := range textParts {
		g.html.WriteString(t)
	}
	for _, c := range elementChildren {
		g.genElement(c)
	}

	g.html.WriteString("</")
	g.html.WriteString(tag)
	g.html.WriteString(">")
	g.newline(&g.html)
}

func (g *Generator) nextClassName() string {
	name := fmt.Sprintf("_c%d", g.classCounter)
	g.classCounter++
	return name
}

var varRefPattern = regexp.MustCompile(`@Var\s+([A-Za-z_][A-Za-z0-9_\-]*)`)

// resolveVars substitutes "@Var Name" occurrences with their registered
// binding (spec 4.4). An unresolved reference keeps the generator producing
// structurally valid output with a visible placeholder (spec 4.4, 7).
func (g *Generator) resolveVars(text string) string {
	return varRefPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := varRefPattern.FindStringSubmatch(match)[1]
		if binding, ok := g.registry.LookupVar(name); ok {
			return binding.Value
		}
		logger.AddError(g.log, g.source, 0, 0, fmt.Sprintf("unresolved variable reference @Var %s", name))
		return fmt.Sprintf("/* unresolved: %s */", name)
	})
}

func (g *Generator) genScriptBlock(id chtlast.NodeID) {
	n := g.tree.Get(id)
	src := logger.Source{Index: g.source.Index, Name: g.source.Name, Contents: n.RawText}

	isLocal := n.Attrs["isLocal"] == "true"
	parsed := chtljsparser.Parse(g.log, src, g.jsRegistry, isLocal)
	out := chtljsgen.Generate(g.log, src, parsed.Tree, g.jsRegistry, g.opts, !g.emittedJSPrelude)
	g.emittedJSPrelude = true

	g.js.WriteString(out.JS)
	g.newline(&g.js)

	g.metadata.GeneratedFunctions = append(g.metadata.GeneratedFunctions, out.GeneratedFunctions...)
	g.metadata.UsedSelectors = append(g.metadata.UsedSelectors, out.UsedSelectors...)
	for k, v := range out.VirMappings {
		g.metadata.VirMappings[k] = v
	}
}
