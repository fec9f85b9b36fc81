// Package chtljsregistry implements the CHTL-JS global symbol registry:
// built-in function names, vir objects, observed enhanced selectors, state-
// tagged function emission names, and delegation configs (spec section 3).
// Like chtlregistry, one instance is created per compilation unit and
// discarded afterward (spec section 5).
package chtljsregistry

import (
	"strconv"

	"github.com/Yhlight/chtl/internal/logger"
)

// VirObject records a declared vir's initializer property keys and a unique
// symbol for the vir from GenerateUniqueName("vir_" + name), e.g.
// "__chtljs_vir_box_0". The lowered per-key functions are named
// "__chtljs_vir_<virName>_<key>" by chtljsgen, which does not read
// GeneratedName.
type VirObject struct {
	FunctionKeys []string
	GeneratedName string
}

// DelegationConfig tracks the per-event-type handler arrays installed for one
// delegation parent, so "multiple delegations against the same parent/event
// extend the handler array rather than re-attaching" (spec 4.4).
type DelegationConfig struct {
	EventTypes []string
}

type stateKey struct {
	function string
	state    string
}

type Registry struct {
	log logger.Log

	builtins map[string]bool

	virs map[string]VirObject

	selectors map[string]bool

	stateFunctions map[stateKey]string

	delegations map[string]*DelegationConfig

	counters map[string]int
}

func New(log logger.Log) *Registry {
	r := &Registry{
		log:            log,
		builtins:       map[string]bool{},
		virs:           map[string]VirObject{},
		selectors:      map[string]bool{},
		stateFunctions: map[stateKey]string{},
		delegations:    map[string]*DelegationConfig{},
		counters:       map[string]int{},
	}
	for name := range builtinSeed {
		r.builtins[name] = true
	}
	return r
}

var builtinSeed = map[string]bool{
	"listen": true, "delegate": true, "animate": true,
	"iNeverAway": true, "printMylove": true,
}

// IsBuiltin reports whether name is a recognized built-in call target,
// including any the host has registered via AddBuiltinFunction (spec 4.6).
func (r *Registry) IsBuiltin(name string) bool {
	return r.builtins[name]
}

// AddBuiltinFunction lets an extension provider contribute an additional
// recognized call name (spec 4.6).
func (r *Registry) AddBuiltinFunction(name string) {
	r.builtins[name] = true
}

func (r *Registry) RegisterVir(name string, functionKeys []string) VirObject {
	obj := VirObject{FunctionKeys: append([]string(nil), functionKeys...), GeneratedName: r.GenerateUniqueName("vir_" + name)}
	r.virs[name] = obj
	return obj
}

func (r *Registry) LookupVir(name string) (VirObject, bool) {
	v, ok := r.virs[name]
	return v, ok
}

func (r *Registry) RecordSelector(text string) {
	r.selectors[text] = true
}

func (r *Registry) ObservedSelectors() []string {
	out := make([]string, 0, len(r.selectors))
	for s := range r.selectors {
		out = append(out, s)
	}
	return out
}

// RegisterStateFunction fixes the emission name for (functionName, state)
// (spec 4.6: "register_state_function(name, state, unique_emitted_name)").
func (r *Registry) RegisterStateFunction(functionName, state, uniqueEmittedName string) {
	r.stateFunctions[stateKey{functionName, state}] = uniqueEmittedName
}

// StateFunctionName resolves a prior RegisterStateFunction call, or
// synthesizes and remembers one with GenerateUniqueName when none was
// pre-registered (the call-site path described in spec 4.2: "fn<State>(args)
// routes through the stored (name, state) → unique_emitted_name mapping").
func (r *Registry) StateFunctionName(functionName, state string) string {
	k := stateKey{functionName, state}
	if name, ok := r.stateFunctions[k]; ok {
		return name
	}
	name := r.GenerateUniqueName(functionName + "_" + state)
	r.stateFunctions[k] = name
	return name
}

func (r *Registry) DelegationFor(parentSelector string) *DelegationConfig {
	d, ok := r.delegations[parentSelector]
	if !ok {
		d = &DelegationConfig{}
		r.delegations[parentSelector] = d
	}
	return d
}

// HasEventType reports whether this delegation parent already has a handler
// array for eventType. It does not record anything; AddEventType does
// (spec 4.4's "extend rather than re-attach" rule).
func (d *DelegationConfig) HasEventType(eventType string) bool {
	for _, e := range d.EventTypes {
		if e == eventType {
			return true
		}
	}
	return false
}

func (d *DelegationConfig) AddEventType(eventType string) {
	if !d.HasEventType(eventType) {
		d.EventTypes = append(d.EventTypes, eventType)
	}
}

// GenerateUniqueName produces a stable symbol "__chtljs_<prefix>_<n>" from a
// per-prefix monotonic counter (spec section 3).
func (r *Registry) GenerateUniqueName(prefix string) string {
	n := r.counters[prefix]
	r.counters[prefix] = n + 1
	return "__chtljs_" + prefix + "_" + strconv.Itoa(n)
}
