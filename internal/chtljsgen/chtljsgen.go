// Package chtljsgen lowers a validated CHTL-JS AST to JavaScript text plus a
// side record of generated functions, vir mappings, and observed selectors
// (spec 4.4).
package chtljsgen

import (
	"fmt"
	"strings"

	"github.com/Yhlight/chtl/internal/chtljsast"
	"github.com/Yhlight/chtl/internal/chtljsregistry"
	"github.com/Yhlight/chtl/internal/config"
	"github.com/Yhlight/chtl/internal/logger"
)

type Result struct {
	JS                 string
	GeneratedFunctions []string
	UsedSelectors      []string
	VirMappings        map[string]string
}

type generator struct {
	log      logger.Log
	source   logger.Source
	tree     *chtljsast.Tree
	registry *chtljsregistry.Registry
	opts     config.Options

	out strings.Builder

	generatedFunctions []string
	virMappings        map[string]string
}

// Generate visits tree's Document and emits JS text. emitPrelude controls
// whether the runtime helpers are written before the statements — callers
// pass true only for the first script{} block in a compilation unit (spec
// 4.4's prelude is emitted once per document).
func Generate(log logger.Log, source logger.Source, tree *chtljsast.Tree, registry *chtljsregistry.Registry, opts config.Options, emitPrelude bool) Result {
	g := &generator{
		log: log, source: source, tree: tree, registry: registry, opts: opts,
		virMappings: map[string]string{},
	}

	if emitPrelude {
		g.out.WriteString(runtimePrelude)
	}

	doc := tree.Get(tree.Root)
	for _, c := range doc.Children {
		g.genStatement(c)
	}

	return Result{
		JS:                 g.out.String(),
		GeneratedFunctions: g.generatedFunctions,
		UsedSelectors:      registry.ObservedSelectors(),
		VirMappings:        g.virMappings,
	}
}

func (g *generator) newline() {
	if g.opts.PrettyPrint {
		g.out.WriteString("\n")
	}
}

func (g *generator) genStatement(id chtljsast.NodeID) {
	n := g.tree.Get(id)
	switch n.Kind {
	case chtljsast.ExprStmt:
		g.out.WriteString(g.genExpr(n.Children[0]))
		g.out.WriteString(";")
		g.newline()
	case chtljsast.VirDeclaration:
		g.genVirDeclaration(id)
	case chtljsast.JSFragment:
		g.out.WriteString(n.Text)
		g.newline()
	default:
		g.out.WriteString(g.genExpr(id))
		g.out.WriteString(";")
		g.newline()
	}
}

// genVirDeclaration never emits a JS binding for the vir itself (spec 4.4:
// "VirDeclaration does not emit a JS binding"); instead it emits one global
// function per declared key.
func (g *generator) genVirDeclaration(id chtljsast.NodeID) {
	n := g.tree.Get(id)
	initID := n.Children[0]
	objID := initID
	if init := g.tree.Get(initID); init.Kind == chtljsast.Call {
		for _, c := range init.Children {
			if g.tree.Get(c).Kind == chtljsast.ObjectLiteral {
				objID = c
				break
			}
		}
	}
	obj := g.tree.Get(objID)
	if obj.Kind != chtljsast.ObjectLiteral {
		return
	}

	for _, c := range obj.Children {
		prop := g.tree.Get(c)
		if prop.Kind != chtljsast.Property {
			continue
		}
		genName := fmt.Sprintf("__chtljs_vir_%s_%s", n.Name, prop.Name)
		g.generatedFunctions = append(g.generatedFunctions, genName)
		g.virMappings[n.Name+"."+prop.Name] = genName
		g.emitVirFunction(genName, prop.Children[0])
	}
}

func (g *generator) emitVirFunction(genName string, valueID chtljsast.NodeID) {
	value := g.tree.Get(valueID)
	if value.Kind == chtljsast.ArrowFunction {
		params := g.tree.Get(value.Children[0])
		var names []string
		for _, p := range params.Children {
			names = append(names, g.tree.Get(p).Name)
		}
		body := g.tree.Get(value.Children[1])
		var bodyText string
		if body.Kind == chtljsast.Block {
			bodyText = g.tree.Get(body.Children[0]).Text
		} else {
			bodyText = "return " + g.genExpr(value.Children[1]) + ";"
		}
		fmt.Fprintf(&g.out, "function %s(%s) {", genName, strings.Join(names, ", "))
		g.out.WriteString(bodyText)
		g.out.WriteString("}")
		g.newline()
		return
	}
	// Non-arrow initializer values (already-named functions, etc.) get a
	// thin forwarding wrapper so call sites can always call genName(...).
	fmt.Fprintf(&g.out, "function %s() { return (%s).apply(this, arguments); }", genName, g.genExpr(valueID))
	g.newline()
}

func (g *generator) genExpr(id chtljsast.NodeID) string {
	if id == chtljsast.InvalidNodeID {
		return ""
	}
	n := g.tree.Get(id)
	switch n.Kind {
	case chtljsast.Identifier:
		return n.Name
	case chtljsast.StringLit:
		return "\"" + strings.ReplaceAll(n.Text, "\"", "\\\"") + "\""
	case chtljsast.NumberLit:
		return n.Text
	case chtljsast.BoolLit:
		if n.BoolValue {
			return "true"
		}
		return "false"
	case chtljsast.JSFragment:
		return n.Text
	case chtljsast.ArrayLit:
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = g.genExpr(c)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case chtljsast.ObjectLiteral:
		return g.genObjectLiteral(n)
	case chtljsast.EnhancedSelector:
		return g.genEnhancedSelector(n)
	case chtljsast.DotOp, chtljsast.ArrowOp:
		return g.genExpr(n.Children[0]) + "." + n.Text
	case chtljsast.Assignment:
		return g.genExpr(n.Children[0]) + " = " + g.genExpr(n.Children[1])
	case chtljsast.VirAccess:
		return g.genVirAccess(n)
	case chtljsast.Call:
		return g.genCall(id, n)
	case chtljsast.ArrowFunction:
		return g.genArrowFunctionExpr(n)
	case chtljsast.Block:
		if len(n.Children) > 0 {
			return "{" + g.tree.Get(n.Children[0]).Text + "}"
		}
		return "{}"
	default:
		return ""
	}
}

func (g *generator) genObjectLiteral(n *chtljsast.Node) string {
	parts := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		prop := g.tree.Get(c)
		if prop.Kind != chtljsast.Property {
			continue
		}
		parts = append(parts, fmt.Sprintf("%q: %s", prop.Name, g.genExpr(prop.Children[0])))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (g *generator) genEnhancedSelector(n *chtljsast.Node) string {
	call := fmt.Sprintf("__chtljs_select(%q)", n.Text)
	if n.HasIndex {
		return fmt.Sprintf("%s[%d]", call, n.Index)
	}
	return call
}

// genVirAccess lowers VirAccess(target, member, isCall, args) to a call of
// the generated function (spec 4.4), using the same naming scheme
// genVirDeclaration assigned so the two always agree without needing a
// registry round-trip.
func (g *generator) genVirAccess(n *chtljsast.Node) string {
	genName := fmt.Sprintf("__chtljs_vir_%s_%s", n.Target, n.Member)
	if !n.IsCall {
		return genName
	}
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = g.genExpr(c)
	}
	return genName + "(" + strings.Join(parts, ", ") + ")"
}

func (g *generator) genCall(id chtljsast.NodeID, n *chtljsast.Node) string {
	if n.Attrs["calleeIsChild"] == "true" {
		callee := g.genExpr(n.Children[0])
		parts := make([]string, len(n.Children)-1)
		for i, c := range n.Children[1:] {
			parts[i] = g.genExpr(c)
		}
		return callee + "(" + strings.Join(parts, ", ") + ")"
	}

	switch n.CallKind {
	case chtljsast.CallListen:
		return fmt.Sprintf("__chtljs_listen(%s)", g.joinChildren(n))
	case chtljsast.CallDelegate:
		return fmt.Sprintf("__chtljs_delegate(%s)", g.joinChildren(n))
	case chtljsast.CallAnimate:
		return fmt.Sprintf("__chtljs_animate(%s)", g.joinChildren(n))
	case chtljsast.CallINeverAway, chtljsast.CallPrintMyLove:
		// No extension synthesizer registered: emit a placeholder comment
		// per spec 4.4 ("may be delegated to extension-contributed
		// synthesizers when present; otherwise a placeholder comment").
		return fmt.Sprintf("/* %s(%s) */", n.Name, g.joinChildren(n))
	default:
		if n.StateTagName != "" {
			genName := g.registry.StateFunctionName(n.Name, n.StateTagName)
			return fmt.Sprintf("%s(%s)", genName, g.joinChildren(n))
		}
		return fmt.Sprintf("%s(%s)", n.Name, g.joinChildren(n))
	}
}

func (g *generator) joinChildren(n *chtljsast.Node) string {
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = g.genExpr(c)
	}
	return strings.Join(parts, ", ")
}

func (g *generator) genArrowFunctionExpr(n *chtljsast.Node) string {
	params := g.tree.Get(n.Children[0])
	var names []string
	for _, p := range params.Children {
		names = append(names, g.tree.Get(p).Name)
	}
	return fmt.Sprintf("(%s) => %s", strings.Join(names, ", "), g.genExpr(n.Children[1]))
}
