package chtlgen

import (
	"fmt"
	"strings"

	"github.com/Yhlight/chtl/internal/chtlast"
	"github.com/Yhlight/chtl/internal/logger"
)

// genStyleBlock flattens one style{} block's properties/rules/use-sites into
// the CSS buffer, scoped by class when the block is local (spec 4.4:
// "local styles are scoped by the element's generated class or id").
func (g *Generator) genStyleBlock(id chtlast.NodeID, scopeClass string) {
	n := g.tree.Get(id)
	isLocal := n.Attrs["isLocal"] == "true"

	var flatProps []propEntry
	var rules []chtlast.NodeID

	for _, c := range n.Children {
		cn := g.tree.Get(c)
		switch cn.Kind {
		case chtlast.StyleProperty:
			flatProps = append(flatProps, propEntry{cn.Name, g.resolveVars(cn.RawText)})
		case chtlast.StyleRule:
			rules = append(rules, c)
		case chtlast.Use:
			flatProps = append(flatProps, g.expandStyleUse(c)...)
		}
	}

	if len(flatProps) > 0 {
		selector := ""
		if isLocal {
			if scopeClass != "" {
				selector = "." + scopeClass
			}
		}
		g.writeCSSRule(selector, flatProps)
	}

	for _, r := range rules {
		g.genStyleRule(r)
	}
}

type propEntry struct {
	Name  string
	Value string
}

func (g *Generator) writeCSSRule(selector string, props []propEntry) {
	if selector != "" {
		g.css.WriteString(selector)
		g.css.WriteString("{")
	}
	for i, p := range props {
		if i > 0 && selector == "" {
			g.css.WriteString(" ")
		}
		fmt.Fprintf(&g.css, "%s:%s;", p.Name, p.Value)
	}
	if selector != "" {
		g.css.WriteString("}")
	}
	g.newline(&g.css)
}

func (g *Generator) genStyleRule(id chtlast.NodeID) {
	n := g.tree.Get(id)
	var props []propEntry
	for _, c := range n.Children {
		cn := g.tree.Get(c)
		if cn.Kind == chtlast.StyleProperty {
			props = append(props, propEntry{cn.Name, g.resolveVars(cn.RawText)})
		}
	}
	g.writeCSSRule(strings.TrimSpace(n.Name), props)
}

// expandStyleUse resolves a "@Style Name;" or "@Style Name { overrides }"
// use-site inside a style block into the flattened property list of the
// referenced template/custom, with any direct overrides replacing matching
// properties by key (spec 4.4 step 3).
func (g *Generator) expandStyleUse(id chtlast.NodeID) []propEntry {
	n := g.tree.Get(id)
	def, ok := g.registry.LookupTemplate(chtlast.DeclStyle, n.Name)
	if !ok {
		def, ok = g.registry.LookupCustom(chtlast.DeclStyle, n.Name)
	}
	if !ok {
		g.reportUnresolved(id, n.Name)
		return nil
	}

	defNode := g.tree.Get(def.Node)
	var props []propEntry
	index := map[string]int{}
	for _, c := range defNode.Children {
		cn := g.tree.Get(c)
		if cn.Kind == chtlast.StyleProperty {
			index[cn.Name] = len(props)
			props = append(props, propEntry{cn.Name, g.resolveVars(cn.RawText)})
		}
	}

	for _, c := range n.Children {
		cn := g.tree.Get(c)
		if cn.Kind == chtlast.StyleProperty {
			if i, exists := index[cn.Name]; exists {
				props[i].Value = g.resolveVars(cn.RawText)
			} else {
				index[cn.Name] = len(props)
				props = append(props, propEntry{cn.Name, g.resolveVars(cn.RawText)})
			}
		}
	}
	return props
}

func (g *Generator) reportUnresolved(id chtlast.NodeID, name string) {
	n := g.tree.Get(id)
	logger.AddError(g.log, g.source, n.Span.Start, len(name), fmt.Sprintf("unknown template/custom %q", name))
	g.html.WriteString(fmt.Sprintf("<!-- unresolved: %s -->", name))
}
