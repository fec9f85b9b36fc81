// Package chtljsast implements the CHTL-JS abstract syntax tree. It mirrors
// chtlast's arena-with-stable-NodeID shape (spec section 3: "Same span/
// children/attributes shape") but the two trees never share a node — a
// CHTL-JS Document is logically nested inside a CHTL ScriptBlock but is
// produced and owned as a wholly separate tree (spec section 3).
package chtljsast

import "github.com/Yhlight/chtl/internal/logger"

type NodeID int32

const InvalidNodeID NodeID = -1

type Kind uint8

const (
	Document Kind = iota
	ScriptBlock
	EnhancedSelector
	ArrowOp
	DotOp
	ObjectLiteral
	Property
	VirDeclaration
	VirAccess
	StateTag
	FunctionWithState
	Call
	Identifier
	StringLit
	NumberLit
	BoolLit
	ArrayLit
	ArrowFunction
	FunctionDecl
	ParamList
	Block
	ExprStmt
	JSFragment
	Assignment
)

// CallKind distinguishes the five built-in function call variants.
type CallKind uint8

const (
	CallNone CallKind = iota
	CallListen
	CallDelegate
	CallAnimate
	CallINeverAway
	CallPrintMyLove
)

// SelectorClass classifies an EnhancedSelector by its leading character
// (spec 4.2).
type SelectorClass uint8

const (
	SelectorAuto SelectorClass = iota
	SelectorClassName
	SelectorID
	SelectorTag
	SelectorDescendant
	SelectorSelf
)

type Span struct {
	Start int
	End   int
}

func (s Span) Contains(child Span) bool {
	return s.Start <= child.Start && child.End <= s.End
}

type Node struct {
	Kind     Kind
	Span     Span
	Children []NodeID
	Attrs    map[string]string

	// Identifier / Property key / VirDeclaration name / StateTag name /
	// FunctionWithState name.
	Name string

	// StringLit/NumberLit/JSFragment/EnhancedSelector raw text; ArrowOp/DotOp
	// right-hand member name.
	Text string

	// Document.
	IsLocal bool

	// EnhancedSelector.
	SelectorClass SelectorClass
	HasIndex      bool
	Index         int

	// Call.
	CallKind CallKind

	// VirDeclaration: the initializer's recorded top-level property keys
	// (spec 4.2: "its top-level property keys recorded as function_keys").
	FunctionKeys []string

	// VirAccess.
	Target string
	Member string
	IsCall bool

	// Property / FunctionWithState / fn<State>(...) call sites: the state
	// tag name, when present ("" means none).
	StateTagName string

	// BoolLit.
	BoolValue bool
}

type Tree struct {
	Source logger.Source
	Nodes  []Node
	Root   NodeID
}

func NewTree(source logger.Source) *Tree {
	return &Tree{Source: source, Root: InvalidNodeID}
}

func (t *Tree) New(kind Kind, span Span) NodeID {
	id := NodeID(len(t.Nodes))
	t.Nodes = append(t.Nodes, Node{Kind: kind, Span: span, Attrs: map[string]string{}})
	return id
}

func (t *Tree) Get(id NodeID) *Node {
	return &t.Nodes[id]
}

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
