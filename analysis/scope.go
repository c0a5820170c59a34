// Copyright © 2024 The NRefactory authors

package analysis

import "github.com/ezhangle/NRefactory/syntax"

// ScopeKind classifies the kind of scope.
type ScopeKind int

const (
	ScopeGlobal    ScopeKind = iota // compilation unit
	ScopeNamespace                  // namespace body
	ScopeType                       // type body
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeNamespace:
		return "namespace"
	case ScopeType:
		return "type"
	default:
		return "unknown"
	}
}

// Scope is a declaration space. Names map to every symbol declared under
// them, so method overloads share an entry.
type Scope struct {
	Kind     ScopeKind
	Parent   *Scope
	Children []*Scope
	Symbols  map[string][]*Symbol
	Node     *syntax.Node // the declaration that introduced this scope
}

// NewScope creates a new scope of the given kind with the given parent.
func NewScope(kind ScopeKind, parent *Scope, node *syntax.Node) *Scope {
	s := &Scope{
		Kind:    kind,
		Parent:  parent,
		Symbols: make(map[string][]*Symbol),
		Node:    node,
	}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// Define adds a symbol to this scope.
func (s *Scope) Define(sym *Symbol) {
	s.Symbols[sym.Name] = append(s.Symbols[sym.Name], sym)
}

// Lookup resolves a name by walking the parent chain. The innermost scope
// that declares the name wins. Returns nil if the name is not found.
func (s *Scope) Lookup(name string) []*Symbol {
	for scope := s; scope != nil; scope = scope.Parent {
		if syms, ok := scope.Symbols[name]; ok {
			return syms
		}
	}
	return nil
}

// LookupLocal resolves a name only in this scope (not parents).
func (s *Scope) LookupLocal(name string) []*Symbol {
	if s == nil {
		return nil
	}
	return s.Symbols[name]
}
