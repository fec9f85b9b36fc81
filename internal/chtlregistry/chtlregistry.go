// Package chtlregistry implements the CHTL global symbol registry: templates,
// customs, namespaces, origin blocks and var bindings (spec section 3). A
// registry is created per compilation unit and discarded afterward; it is
// never a process-wide singleton (spec section 5).
package chtlregistry

import (
	"fmt"

	"github.com/Yhlight/chtl/internal/chtlast"
	"github.com/Yhlight/chtl/internal/logger"
)

type TemplateEntry struct {
	Kind chtlast.DeclKind
	Node chtlast.NodeID
}

type CustomEntry struct {
	Kind chtlast.DeclKind
	Node chtlast.NodeID
}

type NamespaceEntry struct {
	Node    chtlast.NodeID
	Except  []string
}

type OriginBlock struct {
	Language string
	Node     chtlast.NodeID
}

type VarBinding struct {
	Name  string
	Value string
}

// key combines kind+name since the two namespaces (template, custom) each
// key uniquely per (kind, name), per spec section 3.
type key struct {
	kind chtlast.DeclKind
	name string
}

type Registry struct {
	log log

	templates  map[key]TemplateEntry
	customs    map[key]CustomEntry
	namespaces map[string]NamespaceEntry
	origins    map[string]OriginBlock
	vars       map[string]VarBinding

	// namespaced shadowing: a namespace name prefixes the keys registered
	// while inside it, allowing the same (kind, name) to be redeclared in a
	// different namespace (spec section 3: "redefinition is an error unless
	// the registry explicitly supports shadowing within a namespace scope").
	namespaceStack []string
}

type log = logger.Log

func New(l logger.Log) *Registry {
	return &Registry{
		log:        l,
		templates:  map[key]TemplateEntry{},
		customs:    map[key]CustomEntry{},
		namespaces: map[string]NamespaceEntry{},
		origins:    map[string]OriginBlock{},
		vars:       map[string]VarBinding{},
	}
}

func (r *Registry) PushNamespace(name string) {
	r.namespaceStack = append(r.namespaceStack, name)
}

func (r *Registry) PopNamespace() {
	if len(r.namespaceStack) > 0 {
		r.namespaceStack = r.namespaceStack[:len(r.namespaceStack)-1]
	}
}

func (r *Registry) qualify(name string) string {
	if len(r.namespaceStack) == 0 {
		return name
	}
	return r.namespaceStack[len(r.namespaceStack)-1] + "::" + name
}

// RegisterTemplate returns false (with a diagnostic already recorded) if
// (kind, name) is already defined in the active namespace.
func (r *Registry) RegisterTemplate(src logger.Source, declKind chtlast.DeclKind, name string, node chtlast.NodeID, offset int) bool {
	k := key{declKind, r.qualify(name)}
	if _, exists := r.templates[k]; exists {
		logger.AddError(r.log, src, offset, len(name),
			fmt.Sprintf("template %q is already defined", name))
		return false
	}
	r.templates[k] = TemplateEntry{Kind: declKind, Node: node}
	return true
}

func (r *Registry) LookupTemplate(declKind chtlast.DeclKind, name string) (TemplateEntry, bool) {
	if e, ok := r.templates[key{declKind, r.qualify(name)}]; ok {
		return e, true
	}
	e, ok := r.templates[key{declKind, name}]
	return e, ok
}

func (r *Registry) RegisterCustom(src logger.Source, declKind chtlast.DeclKind, name string, node chtlast.NodeID, offset int) bool {
	k := key{declKind, r.qualify(name)}
	if _, exists := r.customs[k]; exists {
		logger.AddError(r.log, src, offset, len(name),
			fmt.Sprintf("custom %q is already defined", name))
		return false
	}
	r.customs[k] = CustomEntry{Kind: declKind, Node: node}
	return true
}

func (r *Registry) LookupCustom(declKind chtlast.DeclKind, name string) (CustomEntry, bool) {
	if e, ok := r.customs[key{declKind, r.qualify(name)}]; ok {
		return e, true
	}
	e, ok := r.customs[key{declKind, name}]
	return e, ok
}

func (r *Registry) RegisterNamespace(name string, node chtlast.NodeID) {
	r.namespaces[name] = NamespaceEntry{Node: node}
}

func (r *Registry) AddExcept(namespace string, tags []string) {
	entry := r.namespaces[namespace]
	entry.Except = append(entry.Except, tags...)
	r.namespaces[namespace] = entry
}

func (r *Registry) LookupNamespace(name string) (NamespaceEntry, bool) {
	e, ok := r.namespaces[name]
	return e, ok
}

func (r *Registry) RegisterOrigin(name, language string, node chtlast.NodeID) {
	r.origins[name] = OriginBlock{Language: language, Node: node}
}

func (r *Registry) LookupOrigin(name string) (OriginBlock, bool) {
	e, ok := r.origins[name]
	return e, ok
}

func (r *Registry) RegisterVar(name, value string) {
	r.vars[name] = VarBinding{Name: name, Value: value}
}

func (r *Registry) LookupVar(name string) (VarBinding, bool) {
	e, ok := r.vars[name]
	return e, ok
}
