package chtlstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yhlight/chtl/internal/chtlast"
	"github.com/Yhlight/chtl/internal/chtlregistry"
	"github.com/Yhlight/chtl/internal/logger"
)

func TestNewHelperStartsAtTopLevelish(t *testing.T) {
	h := NewHelper()
	state, scope := h.Current()
	assert.Equal(t, Initial, state)
	assert.Equal(t, ScopeGlobal, scope)
}

func TestCanTransitionSameStateAlwaysAllowed(t *testing.T) {
	h := NewHelper()
	assert.True(t, h.CanTransition(InElement, InElement, StateInfo{}))
}

func TestCanTransitionRegisteredRule(t *testing.T) {
	h := NewHelper()
	info := StateInfo{NodeKind: chtlast.TemplateDecl}
	assert.True(t, h.CanTransition(TopLevel, InTemplateDecl, info))

	wrongKind := StateInfo{NodeKind: chtlast.Element}
	assert.False(t, h.CanTransition(TopLevel, InTemplateDecl, wrongKind))
}

func TestCanTransitionUnregisteredPairRejected(t *testing.T) {
	h := NewHelper()
	assert.False(t, h.CanTransition(InLocalStyle, InTemplateDecl, StateInfo{}))
}

func TestScopedGuardPushesAndReleasePops(t *testing.T) {
	h := NewHelper()
	node := chtlast.NodeID(7)

	g := h.ScopedGuard(node, chtlast.Element, chtlast.Span{}, InElement, ScopeElement, "box")
	state, scope := h.Current()
	assert.Equal(t, InElement, state)
	assert.Equal(t, ScopeElement, scope)

	info, ok := h.StateInfoFor(node)
	require.True(t, ok)
	assert.Equal(t, "box", info.Identifier)
	assert.Equal(t, InElement, info.State)

	g.Release()
	state, scope = h.Current()
	assert.Equal(t, Initial, state)
	assert.Equal(t, ScopeGlobal, scope)
}

func TestScopedGuardNestingIsLIFO(t *testing.T) {
	h := NewHelper()
	outer := h.ScopedGuard(chtlast.NodeID(1), chtlast.Element, chtlast.Span{}, InElement, ScopeElement, "outer")
	inner := h.ScopedGuard(chtlast.NodeID(2), chtlast.Element, chtlast.Span{}, InElementBody, ScopeElement, "inner")

	state, _ := h.Current()
	assert.Equal(t, InElementBody, state)

	inner.Release()
	state, _ = h.Current()
	assert.Equal(t, InElement, state)

	outer.Release()
	state, _ = h.Current()
	assert.Equal(t, Initial, state)
}

func TestReleaseNeverUnderflowsPastInitial(t *testing.T) {
	h := NewHelper()
	g := h.ScopedGuard(chtlast.NodeID(1), chtlast.Element, chtlast.Span{}, InElement, ScopeElement, "box")
	g.Release()
	g.Release() // double release must not panic or corrupt the stack
	state, scope := h.Current()
	assert.Equal(t, Initial, state)
	assert.Equal(t, ScopeGlobal, scope)
}

func TestPermissionsForLocalScriptDisallowsTemplates(t *testing.T) {
	p := PermissionsFor(InLocalScript)
	assert.True(t, p.CHTLSyntax)
	assert.False(t, p.Templates)
	assert.False(t, p.CustomElements)
	assert.True(t, p.OriginEmbedding)
}

func TestPermissionsForGlobalScriptDisallowsCHTLSyntax(t *testing.T) {
	p := PermissionsFor(InGlobalScript)
	assert.False(t, p.CHTLSyntax)
	assert.False(t, p.Variables)
	assert.True(t, p.OriginEmbedding)
}

func TestPermissionsForUnlistedStateDefaultsPermissive(t *testing.T) {
	p := PermissionsFor(InAttribute)
	assert.True(t, p.CHTLSyntax)
	assert.True(t, p.Templates)
	assert.True(t, p.CustomElements)
}

func TestAddErrorAndValid(t *testing.T) {
	h := NewHelper()
	node := chtlast.NodeID(3)
	g := h.ScopedGuard(node, chtlast.Element, chtlast.Span{}, InElement, ScopeElement, "box")
	defer g.Release()

	assert.True(t, h.Valid())
	h.AddError(node, "unresolved reference")
	assert.False(t, h.Valid())

	info, ok := h.StateInfoFor(node)
	require.True(t, ok)
	require.Len(t, info.Errors, 1)
	assert.Equal(t, "unresolved reference", info.Errors[0])
}

func TestValidatePermissionsFlagsCustomElementInsideLocalStyle(t *testing.T) {
	tree := chtlast.NewTree(logger.Source{Name: "t"})
	reg := chtlregistry.New(logger.NewDeferLog())

	root := tree.New(chtlast.Document, chtlast.Span{})
	tree.Root = root
	styleID := tree.New(chtlast.StyleBlock, chtlast.Span{})
	tree.AddChild(root, styleID)
	useID := tree.New(chtlast.Use, chtlast.Span{})
	use := tree.Get(useID)
	use.DeclKind = chtlast.DeclElement
	use.Name = "Box"
	tree.AddChild(styleID, useID)

	reg.RegisterCustom(logger.Source{Name: "t"}, chtlast.DeclElement, "Box", 0, 0)

	h := NewHelper()
	guard := h.ScopedGuard(styleID, chtlast.StyleBlock, chtlast.Span{}, InLocalStyle, ScopeStyleBlock, "")
	defer guard.Release()

	h.ValidatePermissions(tree, reg)

	assert.False(t, h.Valid())
	info, ok := h.StateInfoFor(styleID)
	require.True(t, ok)
	require.Len(t, info.Errors, 1)
	assert.Contains(t, info.Errors[0], "custom element")
}

func TestValidatePermissionsAllowsCustomElementWhereAllowed(t *testing.T) {
	tree := chtlast.NewTree(logger.Source{Name: "t"})
	reg := chtlregistry.New(logger.NewDeferLog())

	root := tree.New(chtlast.Document, chtlast.Span{})
	tree.Root = root
	elemID := tree.New(chtlast.Element, chtlast.Span{})
	tree.AddChild(root, elemID)
	useID := tree.New(chtlast.Use, chtlast.Span{})
	use := tree.Get(useID)
	use.DeclKind = chtlast.DeclElement
	use.Name = "Box"
	tree.AddChild(elemID, useID)

	reg.RegisterCustom(logger.Source{Name: "t"}, chtlast.DeclElement, "Box", 0, 0)

	h := NewHelper()
	guard := h.ScopedGuard(elemID, chtlast.Element, chtlast.Span{}, InElementBody, ScopeElement, "div")
	defer guard.Release()

	h.ValidatePermissions(tree, reg)
	assert.True(t, h.Valid())
}

func TestHistoryRecordsEnterAndExitInOrder(t *testing.T) {
	h := NewHelper()
	g := h.ScopedGuard(chtlast.NodeID(1), chtlast.Element, chtlast.Span{}, InElement, ScopeElement, "box")
	g.Release()

	hist := h.History()
	require.Len(t, hist, 2)
	assert.True(t, hist[0].Enter)
	assert.False(t, hist[1].Enter)
	assert.Equal(t, InElement, hist[0].State)
	assert.Equal(t, InElement, hist[1].State)
}
