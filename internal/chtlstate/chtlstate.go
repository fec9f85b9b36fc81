// Package chtlstate implements the nested state/scope machinery of spec
// section 4.3: a StateContextHelper wrapping two stacks (compiler state and
// scope), guards with guaranteed release on every exit path, a fixed
// permission table, and a registrable transition-rule table.
package chtlstate

import (
	"fmt"
	"regexp"

	"github.com/Yhlight/chtl/internal/chtlast"
	"github.com/Yhlight/chtl/internal/chtlregistry"
)

type State uint8

const (
	Initial State = iota
	TopLevel
	InTemplateDecl
	InCustomDecl
	InElement
	InAttribute
	InElementBody
	InLocalStyle
	InGlobalStyle
	InLocalScript
	InGlobalScript
	InOrigin
	InNamespace
	InConfiguration
)

func (s State) String() string {
	names := [...]string{
		"Initial", "TopLevel", "InTemplateDecl", "InCustomDecl", "InElement",
		"InAttribute", "InElementBody", "InLocalStyle", "InGlobalStyle",
		"InLocalScript", "InGlobalScript", "InOrigin", "InNamespace", "InConfiguration",
	}
	if int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

type Scope uint8

const (
	ScopeGlobal Scope = iota
	ScopeTemplate
	ScopeCustom
	ScopeElement
	ScopeStyleBlock
	ScopeScriptBlock
	ScopeNamespace
	ScopeOrigin
)

// Permissions is the row of the fixed table in spec section 4.3.
type Permissions struct {
	CHTLSyntax      bool
	Variables       bool
	Templates       bool
	CustomElements  bool
	OriginEmbedding bool
}

// permissionTable implements the matrix verbatim. States not listed default
// to the permissive InElement/InElementBody row, since spec 4.3 only
// constrains the rows it lists and everything else is ordinary element
// context.
var permissionTable = map[State]Permissions{
	InLocalStyle:   {CHTLSyntax: true, Variables: true, Templates: true, CustomElements: false, OriginEmbedding: true},
	InGlobalStyle:  {CHTLSyntax: true, Variables: true, Templates: true, CustomElements: false, OriginEmbedding: true},
	InLocalScript:  {CHTLSyntax: true, Variables: true, Templates: false, CustomElements: false, OriginEmbedding: true},
	InGlobalScript: {CHTLSyntax: false, Variables: false, Templates: false, CustomElements: false, OriginEmbedding: true},
	InElement:      {CHTLSyntax: true, Variables: true, Templates: true, CustomElements: true, OriginEmbedding: true},
	InElementBody:  {CHTLSyntax: true, Variables: true, Templates: true, CustomElements: true, OriginEmbedding: true},
	InTemplateDecl: {CHTLSyntax: true, Variables: true, Templates: true, CustomElements: true, OriginEmbedding: true},
	InCustomDecl:   {CHTLSyntax: true, Variables: true, Templates: true, CustomElements: true, OriginEmbedding: true},
}

func PermissionsFor(s State) Permissions {
	if p, ok := permissionTable[s]; ok {
		return p
	}
	return Permissions{CHTLSyntax: true, Variables: true, Templates: true, CustomElements: true, OriginEmbedding: true}
}

// StateInfo is the per-node record attached during validation (spec section
// 3, "Per-node state info").
type StateInfo struct {
	NodeKind         chtlast.Kind
	State            State
	Scope            Scope
	Span             chtlast.Span
	Identifier       string
	ParentIdentifier string
	Depth            int
	Permissions      Permissions
	Validated        bool
	Errors           []string
}

// TransitionRule is one (from, to, predicate, description) tuple, spec 4.3.
type TransitionRule struct {
	From        State
	To          State
	Predicate   func(StateInfo) bool
	Description string
}

// Guard is returned by ScopedGuard; Release must be called exactly once,
// normally via defer, so release happens on every exit path including a
// panic recovered higher up the call stack.
type Guard struct {
	helper *Helper
	state  State
	scope  Scope
}

func (g *Guard) Release() {
	g.helper.pop()
}

type historyEntry struct {
	State State
	Scope Scope
	Enter bool
}

// Helper is the CHTL StateContextHelper: two stacks plus a registrable
// transition rule table.
type Helper struct {
	stateStack []State
	scopeStack []Scope
	rules      []TransitionRule
	history    []historyEntry
	nodeInfo   map[chtlast.NodeID]*StateInfo
}

func NewHelper() *Helper {
	h := &Helper{
		stateStack: []State{Initial},
		scopeStack: []Scope{ScopeGlobal},
		nodeInfo:   map[chtlast.NodeID]*StateInfo{},
	}
	h.registerDefaultRules()
	return h
}

func (h *Helper) registerDefaultRules() {
	h.RegisterRule(TransitionRule{TopLevel, InTemplateDecl,
		func(i StateInfo) bool { return i.NodeKind == chtlast.TemplateDecl }, "top level to template declaration"})
	h.RegisterRule(TransitionRule{TopLevel, InCustomDecl,
		func(i StateInfo) bool { return i.NodeKind == chtlast.CustomDecl }, "top level to custom declaration"})
	h.RegisterRule(TransitionRule{TopLevel, InElement,
		func(i StateInfo) bool { return i.NodeKind == chtlast.Element }, "top level to element"})
	h.RegisterRule(TransitionRule{InElement, InAttribute,
		func(i StateInfo) bool { return i.NodeKind == chtlast.Attribute }, "element to attribute"})
	h.RegisterRule(TransitionRule{InElementBody, InLocalStyle,
		func(i StateInfo) bool { return i.NodeKind == chtlast.StyleBlock }, "element body to local style"})
	h.RegisterRule(TransitionRule{InElementBody, InLocalScript,
		func(i StateInfo) bool { return i.NodeKind == chtlast.ScriptBlock }, "element body to local script"})
	h.RegisterRule(TransitionRule{TopLevel, InGlobalStyle,
		func(i StateInfo) bool { return i.NodeKind == chtlast.StyleBlock }, "top level to global style"})
	h.RegisterRule(TransitionRule{TopLevel, InGlobalScript,
		func(i StateInfo) bool { return i.NodeKind == chtlast.ScriptBlock }, "top level to global script"})
	h.RegisterRule(TransitionRule{TopLevel, InOrigin,
		func(i StateInfo) bool { return i.NodeKind == chtlast.OriginEmbed }, "top level to origin"})
	h.RegisterRule(TransitionRule{TopLevel, InNamespace,
		func(i StateInfo) bool { return i.NodeKind == chtlast.Namespace }, "top level to namespace"})
	h.RegisterRule(TransitionRule{TopLevel, InConfiguration,
		func(i StateInfo) bool { return i.NodeKind == chtlast.Configuration }, "top level to configuration"})
}

func (h *Helper) RegisterRule(r TransitionRule) {
	h.rules = append(h.rules, r)
}

// CanTransition returns true iff any registered rule's predicate holds for
// from->to, or the intrinsic stack-machine rule allows it (a transition to
// the same state is always allowed, modeling re-entrant nesting such as a
// nested element inside an element).
func (h *Helper) CanTransition(from, to State, info StateInfo) bool {
	if from == to {
		return true
	}
	for _, r := range h.rules {
		if r.From == from && r.To == to && r.Predicate(info) {
			return true
		}
	}
	return false
}

func (h *Helper) Current() (State, Scope) {
	return h.stateStack[len(h.stateStack)-1], h.scopeStack[len(h.scopeStack)-1]
}

// ScopedGuard pushes state/scope and attaches a StateInfo to node, returning
// a Guard whose Release pops them again. Guards are strictly LIFO: callers
// must release the most recently acquired guard first, and must always
// release via defer so the machine unwinds correctly even when a parser
// error aborts the current construct.
func (h *Helper) ScopedGuard(node chtlast.NodeID, nodeKind chtlast.Kind, span chtlast.Span,
	state State, scope Scope, identifier string) *Guard {

	parentIdentifier := ""
	if len(h.stateStack) > 0 {
		// The stacks record states and scopes only, not identifiers, so
		// ParentIdentifier is always left empty.
	}
	depth := len(h.stateStack)

	info := StateInfo{
		NodeKind:         nodeKind,
		State:            state,
		Scope:            scope,
		Span:             span,
		Identifier:       identifier,
		ParentIdentifier: parentIdentifier,
		Depth:            depth,
		Permissions:      PermissionsFor(state),
	}
	h.nodeInfo[node] = &info

	h.stateStack = append(h.stateStack, state)
	h.scopeStack = append(h.scopeStack, scope)
	h.history = append(h.history, historyEntry{state, scope, true})

	return &Guard{helper: h, state: state, scope: scope}
}

func (h *Helper) pop() {
	if len(h.stateStack) <= 1 {
		return
	}
	top := h.stateStack[len(h.stateStack)-1]
	topScope := h.scopeStack[len(h.scopeStack)-1]
	h.stateStack = h.stateStack[:len(h.stateStack)-1]
	h.scopeStack = h.scopeStack[:len(h.scopeStack)-1]
	h.history = append(h.history, historyEntry{top, topScope, false})
}

// StateInfoFor returns the attached StateInfo for a node, if any.
func (h *Helper) StateInfoFor(node chtlast.NodeID) (*StateInfo, bool) {
	info, ok := h.nodeInfo[node]
	return info, ok
}

// History returns the full enter/exit trace, in strict LIFO exit order
// relative to entries (spec section 5's ordering guarantee).
func (h *Helper) History() []historyEntry {
	return h.history
}

// AddError attaches an error to node's StateInfo instead of raising it;
// validation returns a boolean "valid" over the whole tree (spec 4.3).
func (h *Helper) AddError(node chtlast.NodeID, message string) {
	if info, ok := h.nodeInfo[node]; ok {
		info.Errors = append(info.Errors, message)
	}
}

// Valid reports whether every node that received a StateInfo is free of
// attached errors.
func (h *Helper) Valid() bool {
	for _, info := range h.nodeInfo {
		if len(info.Errors) > 0 {
			return false
		}
	}
	return true
}

// chtlSyntaxPattern matches the sigils and bracket keywords that make a
// fragment of text recognizably CHTL rather than plain JS.
var chtlSyntaxPattern = regexp.MustCompile(`@(Element|Style|Var|Custom|Html|JavaScript)\b|\[(Template|Custom|Origin|Namespace|Configuration|Import)\]`)

// templateRefPattern matches a template/custom use-site written directly in
// text: @Element/@Style/@Var Name.
var templateRefPattern = regexp.MustCompile(`@(Element|Style|Var)\s+[A-Za-z_]`)

// ValidatePermissions walks tree and, for every construct the active state's
// permission row forbids, attaches an error to the nearest enclosing node
// that carries a StateInfo — so Valid() and a caller walking the tree for
// StateInfoFor(id).Errors both see it. reg resolves whether an
// @Element/@Style/@Var use-site names a custom declaration, since the two
// share syntax and only the registry tells them apart.
func (h *Helper) ValidatePermissions(tree *chtlast.Tree, reg *chtlregistry.Registry) {
	h.validatePermissions(tree, tree.Root, chtlast.InvalidNodeID, reg)
}

func (h *Helper) validatePermissions(tree *chtlast.Tree, id, anchor chtlast.NodeID, reg *chtlregistry.Registry) {
	if id == chtlast.InvalidNodeID {
		return
	}
	n := tree.Get(id)
	if _, ok := h.nodeInfo[id]; ok {
		anchor = id
	}

	if info, ok := h.nodeInfo[anchor]; ok {
		switch n.Kind {
		case chtlast.Use:
			h.checkUsePermission(anchor, info, n, reg)
		case chtlast.ScriptBlock:
			h.checkScriptPermission(anchor, info, n)
		}
	}

	for _, c := range n.Children {
		h.validatePermissions(tree, c, anchor, reg)
	}
}

func (h *Helper) checkUsePermission(anchor chtlast.NodeID, info *StateInfo, n *chtlast.Node, reg *chtlregistry.Registry) {
	perms := info.Permissions

	if n.DeclKind == chtlast.DeclElement && !perms.CustomElements {
		if _, ok := reg.LookupCustom(chtlast.DeclElement, n.Name); ok {
			h.AddError(anchor, fmt.Sprintf("custom element %q is not permitted in %s", n.Name, info.State))
			return
		}
	}
	if !perms.Templates {
		if _, ok := reg.LookupTemplate(n.DeclKind, n.Name); ok {
			h.AddError(anchor, fmt.Sprintf("template reference %q is not permitted in %s", n.Name, info.State))
		}
	}
}

func (h *Helper) checkScriptPermission(anchor chtlast.NodeID, info *StateInfo, n *chtlast.Node) {
	perms := info.Permissions

	if !perms.CHTLSyntax && chtlSyntaxPattern.MatchString(n.RawText) {
		h.AddError(anchor, fmt.Sprintf("CHTL syntax is not permitted in %s", info.State))
		return
	}
	if !perms.Templates && templateRefPattern.MatchString(n.RawText) {
		h.AddError(anchor, fmt.Sprintf("template reference is not permitted in %s", info.State))
	}
}
