package chtlast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yhlight/chtl/internal/logger"
)

func TestNewTreeStartsWithInvalidRoot(t *testing.T) {
	tree := NewTree(logger.Source{Name: "t.chtl"})
	assert.Equal(t, InvalidNodeID, tree.Root)
	assert.Empty(t, tree.Nodes)
}

func TestNewAllocatesStableSequentialIDs(t *testing.T) {
	tree := NewTree(logger.Source{Name: "t.chtl"})
	a := tree.New(Element, Span{Start: 0, End: 5})
	b := tree.New(TextBlock, Span{Start: 5, End: 10})

	assert.Equal(t, NodeID(0), a)
	assert.Equal(t, NodeID(1), b)
	assert.Equal(t, Element, tree.Get(a).Kind)
	assert.Equal(t, TextBlock, tree.Get(b).Kind)
}

func TestAddChildWidensParentSpan(t *testing.T) {
	tree := NewTree(logger.Source{Name: "t.chtl"})
	parent := tree.New(Element, Span{Start: 10, End: 20})
	child := tree.New(TextBlock, Span{Start: 5, End: 25})

	tree.AddChild(parent, child)

	p := tree.Get(parent)
	require.Len(t, p.Children, 1)
	assert.Equal(t, child, p.Children[0])
	assert.Equal(t, 5, p.Span.Start)
	assert.Equal(t, 25, p.Span.End)
}

func TestAddChildWithinParentSpanDoesNotShrink(t *testing.T) {
	tree := NewTree(logger.Source{Name: "t.chtl"})
	parent := tree.New(Element, Span{Start: 0, End: 100})
	child := tree.New(TextBlock, Span{Start: 10, End: 20})

	tree.AddChild(parent, child)

	p := tree.Get(parent)
	assert.Equal(t, 0, p.Span.Start)
	assert.Equal(t, 100, p.Span.End)
}

func TestSpanContains(t *testing.T) {
	outer := Span{Start: 0, End: 10}
	assert.True(t, outer.Contains(Span{Start: 2, End: 8}))
	assert.True(t, outer.Contains(outer))
	assert.False(t, outer.Contains(Span{Start: -1, End: 5}))
	assert.False(t, outer.Contains(Span{Start: 5, End: 11}))
}

func TestWalkVisitsInDeclarationOrder(t *testing.T) {
	tree := NewTree(logger.Source{Name: "t.chtl"})
	root := tree.New(Document, Span{})
	first := tree.New(Element, Span{})
	second := tree.New(Element, Span{})
	tree.AddChild(root, first)
	tree.AddChild(root, second)
	tree.Root = root

	var visited []NodeID
	tree.Walk(tree.Root, func(id NodeID, _ *Node) {
		visited = append(visited, id)
	})

	assert.Equal(t, []NodeID{root, first, second}, visited)
}

func TestWalkOnInvalidNodeIsNoop(t *testing.T) {
	tree := NewTree(logger.Source{Name: "t.chtl"})
	called := false
	tree.Walk(InvalidNodeID, func(NodeID, *Node) { called = true })
	assert.False(t, called)
}
