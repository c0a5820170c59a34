// Copyright © 2024 The NRefactory authors

package analysis

import (
	"strings"

	"github.com/ezhangle/NRefactory/syntax"
)

// SymbolKind classifies a symbol definition.
type SymbolKind int

const (
	SymNamespace   SymbolKind = iota // namespace N { }
	SymType                          // class, struct, interface, record, enum
	SymDelegate                      // delegate void D();
	SymMethod                        // method declaration
	SymConstructor                   // instance or static constructor
	SymField                         // field declarator
	SymProperty                      // property declaration
	SymEvent                         // field-like or accessor event
	SymEnumMember                    // enum member
)

func (k SymbolKind) String() string {
	switch k {
	case SymNamespace:
		return "namespace"
	case SymType:
		return "type"
	case SymDelegate:
		return "delegate"
	case SymMethod:
		return "method"
	case SymConstructor:
		return "constructor"
	case SymField:
		return "field"
	case SymProperty:
		return "property"
	case SymEvent:
		return "event"
	case SymEnumMember:
		return "enum-member"
	default:
		return "unknown"
	}
}

// Symbol represents a declared name.
type Symbol struct {
	Name string
	Kind SymbolKind

	// Decl is the node carrying the declaration's modifiers. For fields and
	// field-like events this is the whole field declaration; NameSpan
	// locates the individual declarator.
	Decl     *syntax.Node
	NameSpan syntax.Span
	// Partials holds further declarations of a partial type or a reopened
	// namespace.
	Partials []*syntax.Node

	Container *Symbol
	Members   *Scope    // non-nil for namespaces and types
	Bases     []*Symbol // base types declared in the same unit

	Static        bool
	Accessibility Accessibility
	// Explicit is set when Accessibility was written in source rather than
	// implied by the declaration context.
	Explicit bool
}

// FullName returns the dotted name of the symbol from the global namespace.
func (s *Symbol) FullName() string {
	if s == nil {
		return ""
	}
	var parts []string
	for sym := s; sym != nil; sym = sym.Container {
		if sym.Name != "" {
			parts = append(parts, sym.Name)
		}
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// IsType reports whether the symbol names a type or delegate.
func (s *Symbol) IsType() bool {
	return s != nil && (s.Kind == SymType || s.Kind == SymDelegate)
}
