package chtlgen

import (
	"fmt"

	"github.com/Yhlight/chtl/internal/chtlast"
	"github.com/Yhlight/chtl/internal/logger"
)

// expandUse resolves a "@Element Name [{ overrides }]" use-site (spec 4.4):
// look up the canonical definition, deep-copy its body, apply Insert/Delete/
// nested-Use/style-property overrides from the use-site's own body in
// source order, and return the resulting list of top-level element NodeIDs
// to splice into the caller.
//
// Open question (spec section 9): whether insert/delete indices refer to
// pre- or post-mutation positions when several overrides target the same
// anchor. This implementation applies the overrides one after another, so
// each override's anchor is resolved against the list as left by the
// overrides before it (post-mutation), and a delete whose anchor matches no
// child is silently a no-op.
func (g *Generator) expandUse(id chtlast.NodeID) []chtlast.NodeID {
	n := g.tree.Get(id)

	if n.DeclKind == chtlast.DeclVar {
		// A bare "@Var Name;" used where an element is expected has no
		// structural expansion; spec scopes @Var substitution to style/
		// script text, so this is a no-op with no diagnostic.
		return nil
	}

	def, ok := g.registry.LookupTemplate(chtlast.DeclElement, n.Name)
	if !ok {
		def, ok = g.registry.LookupCustom(chtlast.DeclElement, n.Name)
	}
	if !ok {
		g.reportUnresolved(id, n.Name)
		return nil
	}

	defNode := g.tree.Get(def.Node)
	base := make([]chtlast.NodeID, 0, len(defNode.Children))
	for _, c := range defNode.Children {
		if g.tree.Get(c).Kind == chtlast.Element {
			base = append(base, g.deepCopy(c))
		}
	}

	for _, c := range n.Children {
		cn := g.tree.Get(c)
		switch cn.Kind {
		case chtlast.Insert:
			base = g.applyInsert(cn, base)
		case chtlast.Delete:
			base = g.applyDelete(cn, base)
		case chtlast.Use:
			base = append(base, g.expandUse(c)...)
		case chtlast.StyleProperty:
			g.overrideFirstStyleProperty(base, cn.Name, cn.RawText)
		}
	}
	return base
}

// deepCopy clones id and its whole subtree into fresh NodeIDs, per spec
// 4.4 step 2 ("deep-copy the definition's body").
func (g *Generator) deepCopy(id chtlast.NodeID) chtlast.NodeID {
	src := g.tree.Get(id)
	newID := g.tree.New(src.Kind, src.Span)
	dst := g.tree.Get(newID)
	dst.Name = src.Name
	dst.DeclKind = src.DeclKind
	dst.Language = src.Language
	dst.RawText = src.RawText
	dst.Position = src.Position
	dst.Anchor = src.Anchor
	dst.ExceptList = append([]string(nil), src.ExceptList...)
	for k, v := range src.Attrs {
		dst.Attrs[k] = v
	}
	for _, c := range src.Children {
		g.tree.AddChild(newID, g.deepCopy(c))
	}
	return newID
}

// findAnchorIndex returns the index within children of the anchor.Index-th
// (0-based) element whose tag matches anchor.Tag, or -1 if out of range.
func findAnchorIndex(tree *chtlast.Tree, children []chtlast.NodeID, anchor chtlast.Anchor) int {
	want := anchor.Index
	if !anchor.HasIndex {
		want = 0
	}
	count := 0
	for i, c := range children {
		if tree.Get(c).Name == anchor.Tag {
			if count == want {
				return i
			}
			count++
		}
	}
	return -1
}

// countTag returns how many children have the given tag name.
func countTag(tree *chtlast.Tree, children []chtlast.NodeID, tag string) int {
	n := 0
	for _, c := range children {
		if tree.Get(c).Name == tag {
			n++
		}
	}
	return n
}

func (g *Generator) applyInsert(n *chtlast.Node, children []chtlast.NodeID) []chtlast.NodeID {
	var newChildren []chtlast.NodeID
	for _, c := range n.Children {
		if g.tree.Get(c).Kind == chtlast.Element {
			newChildren = append(newChildren, c)
		}
	}

	switch n.Position {
	case chtlast.PosAtTop:
		return append(append([]chtlast.NodeID{}, newChildren...), children...)
	case chtlast.PosAtBottom:
		return append(append([]chtlast.NodeID{}, children...), newChildren...)
	}

	want := n.Anchor.Index
	if !n.Anchor.HasIndex {
		want = 0
	}
	total := countTag(g.tree, children, n.Anchor.Tag)

	switch n.Position {
	case chtlast.PosAfter:
		if want == total {
			// Legal boundary case (spec 8): appends at the end of the list.
			return append(append([]chtlast.NodeID{}, children...), newChildren...)
		}
		idx := findAnchorIndex(g.tree, children, n.Anchor)
		if idx == -1 {
			g.reportOutOfRangeAnchor(n)
			return children
		}
		out := append([]chtlast.NodeID{}, children[:idx+1]...)
		out = append(out, newChildren...)
		out = append(out, children[idx+1:]...)
		return out
	case chtlast.PosBefore:
		idx := findAnchorIndex(g.tree, children, n.Anchor)
		if idx == -1 {
			g.reportOutOfRangeAnchor(n)
			return children
		}
		out := append([]chtlast.NodeID{}, children[:idx]...)
		out = append(out, newChildren...)
		out = append(out, children[idx:]...)
		return out
	case chtlast.PosReplace:
		idx := findAnchorIndex(g.tree, children, n.Anchor)
		if idx == -1 {
			g.reportOutOfRangeAnchor(n)
			return children
		}
		out := append([]chtlast.NodeID{}, children[:idx]...)
		out = append(out, newChildren...)
		out = append(out, children[idx+1:]...)
		return out
	}
	return children
}

func (g *Generator) reportOutOfRangeAnchor(n *chtlast.Node) {
	logger.AddError(g.log, g.source, n.Span.Start, n.Span.End-n.Span.Start,
		fmt.Sprintf("index out of range for anchor %q", n.Anchor.Tag))
}

// applyDelete removes the anchored child. A delete whose anchor matches no
// child is silently a no-op (spec section 9's documented ambiguity,
// resolved here to match the observed original behavior).
func (g *Generator) applyDelete(n *chtlast.Node, children []chtlast.NodeID) []chtlast.NodeID {
	idx := findAnchorIndex(g.tree, children, n.Anchor)
	if idx == -1 {
		return children
	}
	out := append([]chtlast.NodeID{}, children[:idx]...)
	out = append(out, children[idx+1:]...)
	return out
}

// overrideFirstStyleProperty replaces a matching property by key in the
// first local style block found (by depth-first search) among children,
// implementing the "style-property overrides replace matching properties by
// key" rule (spec 4.4 step 3) for @Element use-sites overriding a nested
// style.
func (g *Generator) overrideFirstStyleProperty(children []chtlast.NodeID, key, value string) bool {
	for _, c := range children {
		cn := g.tree.Get(c)
		if cn.Kind == chtlast.StyleBlock {
			for _, sc := range cn.Children {
				scn := g.tree.Get(sc)
				if scn.Kind == chtlast.StyleProperty && scn.Name == key {
					scn.RawText = value
					return true
				}
			}
		}
		if g.overrideFirstStyleProperty(cn.Children, key, value) {
			return true
		}
	}
	return false
}
