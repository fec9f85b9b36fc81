// Package chtlast implements the CHTL abstract syntax tree: a tagged-variant
// node model over an arena, per the disciplined rewrite spec section 9 asks
// for ("an arena with stable indices... nodes live in a Vec<Node> and
// relationships are NodeId indices"). Every node carries a span, an ordered
// children list (by NodeId) and an attribute map, matching spec section 3.
package chtlast

import "github.com/Yhlight/chtl/internal/logger"

type NodeID int32

const InvalidNodeID NodeID = -1

type Kind uint8

const (
	Document Kind = iota
	Element
	Attribute
	TextBlock
	StyleBlock
	ScriptBlock
	TemplateDecl
	CustomDecl
	OriginEmbed
	Use
	VarReference
	StyleRule
	StyleProperty
	Insert
	Delete
	Namespace
	Except
	Configuration
	Comment
)

// DeclKind distinguishes the three template/custom kinds (spec section 3).
type DeclKind uint8

const (
	DeclNone DeclKind = iota
	DeclStyle
	DeclElement
	DeclVar
)

// InsertPosition is one of the five position specifiers the spec names.
type InsertPosition uint8

const (
	PosBefore InsertPosition = iota
	PosAfter
	PosReplace
	PosAtTop
	PosAtBottom
)

// Anchor selects the n-th (0-based) child of a given tag name inside an
// element or template body, per spec section 4.2.
type Anchor struct {
	Tag      string
	Index    int
	HasIndex bool
}

// Span is a half-open byte range into the owning Source.
type Span struct {
	Start int
	End   int
}

func (s Span) Contains(child Span) bool {
	return s.Start <= child.Start && child.End <= s.End
}

// Node is one arena slot. Only the fields relevant to Kind are meaningful;
// this mirrors a tagged union without Go generics-driven sum types, which is
// the idiomatic compromise spec section 9 recommends ("exhaustive pattern
// match on the tagged node variant").
type Node struct {
	Kind     Kind
	Span     Span
	Children []NodeID
	Attrs    map[string]string

	// Identifier-bearing kinds (Element.Tag, TemplateDecl/CustomDecl.Name,
	// Namespace.Name, Use.Target, VarReference.Name, Comment text, ...).
	Name string

	// TemplateDecl / CustomDecl / Use's resolved kind (Style/Element/Var).
	DeclKind DeclKind

	// OriginEmbed's declared language (e.g. "Html", "Style", "JavaScript",
	// or an arbitrary name a CJMOD extension recognizes), plus the raw
	// embedded text, passed through unchanged.
	Language string
	RawText  string

	// Insert/Delete.
	Position InsertPosition
	Anchor   Anchor

	// Except's prohibited tag list.
	ExceptList []string

	// Use-site override body operations are just further children
	// (Insert/Delete/Use/StyleProperty nodes) in source order, resolved at
	// generation time against the canonical definition (spec 4.4).
}

// Tree is the arena: a compilation unit's full CHTL AST plus a back-pointer
// to the Source it was parsed from, for diagnostics.
type Tree struct {
	Source logger.Source
	Nodes  []Node
	Root   NodeID
}

func NewTree(source logger.Source) *Tree {
	return &Tree{Source: source, Root: InvalidNodeID}
}

// New allocates a node and returns its stable NodeID.
func (t *Tree) New(kind Kind, span Span) NodeID {
	id := NodeID(len(t.Nodes))
	t.Nodes = append(t.Nodes, Node{Kind: kind, Span: span, Attrs: map[string]string{}})
	return id
}

func (t *Tree) Get(id NodeID) *Node {
	return &t.Nodes[id]
}

// AddChild appends child to parent's children list and widens parent's span
// to enclose it, preserving the invariant in spec section 8 ("for all parsed
// CHTL nodes N, N.span encloses the spans of every child of N").
func (t *Tree) AddChild(parent, child NodeID) {
	p := t.Get(parent)
	p.Children = append(p.Children, child)
	c := t.Get(child)
	if c.Span.Start < p.Span.Start {
		p.Span.Start = c.Span.Start
	}
	if c.Span.End > p.Span.End {
		p.Span.End = c.Span.End
	}
}

// Walk visits id and every descendant, in declaration order (spec section 5:
// "Children of a node are visited in declaration order").
func (t *Tree) Walk(id NodeID, visit func(NodeID, *Node)) {
	if id == InvalidNodeID {
		return
	}
	n := t.Get(id)
	visit(id, n)
	for _, c := range n.Children {
		t.Walk(c, visit)
	}
}
