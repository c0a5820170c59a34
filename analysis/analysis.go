// Copyright © 2024 The NRefactory authors

// Package analysis provides declaration-based semantic analysis for one C#
// compilation unit.
//
// The analyzer builds a symbol table from the declarations in a tree and
// resolves identifiers and member accesses against it. It is not a type
// checker: anything that depends on expression types, other files or
// referenced assemblies resolves to nothing. Rules treat "nothing" as a
// reason to stay silent, so an incomplete model can only hide findings.
package analysis

import (
	"github.com/ezhangle/NRefactory/syntax"
)

// Model is the semantic view of a tree that lint rules consume.
type Model interface {
	// Symbol returns the single symbol n declares or refers to, or nil when
	// n resolves to nothing or to more than one candidate.
	Symbol(n *syntax.Node) *Symbol
	// Candidates returns every symbol n may refer to. More than one
	// candidate means overload resolution would be needed.
	Candidates(n *syntax.Node) []*Symbol
	// AttributeType returns the full name of the attribute class applied by
	// attr, or "" when it cannot be determined.
	AttributeType(attr *syntax.Node) string
}

// Config controls the behavior of the analyzer.
type Config struct {
	// Filename is the source file being analyzed.
	Filename string
}

// Result holds the output of semantic analysis. It is immutable once
// Analyze returns and safe for concurrent readers.
type Result struct {
	Filename   string
	Global     *Symbol
	Symbols    []*Symbol
	References []*Reference
	Unresolved []*UnresolvedRef

	// Usings lists the namespaces imported by using directives, in source
	// order. Aliases maps using aliases to their targets.
	Usings  []string
	Aliases map[string]string

	decls map[*syntax.Node]*Symbol
	refs  map[*syntax.Node][]*Symbol
	attrs map[*syntax.Node]string
}

// ConstructorName is the member name constructors are declared under.
const ConstructorName = ".ctor"

var _ Model = (*Result)(nil)

// Analyze performs semantic analysis on a parsed tree.
func Analyze(tree *syntax.Tree, cfg *Config) *Result {
	if cfg == nil {
		cfg = &Config{}
	}
	filename := cfg.Filename
	if filename == "" && tree != nil {
		filename = tree.Filename
	}
	global := &Symbol{Kind: SymNamespace, Accessibility: AccessPublic}
	global.Members = NewScope(ScopeGlobal, nil, nil)
	a := &analyzer{
		result: &Result{
			Filename: filename,
			Global:   global,
			Aliases:  make(map[string]string),
			decls:    make(map[*syntax.Node]*Symbol),
			refs:     make(map[*syntax.Node][]*Symbol),
			attrs:    make(map[*syntax.Node]string),
		},
		imports:  make(map[string]bool),
		resolved: make(map[*syntax.Node]bool),
	}
	if tree == nil || tree.Root == nil {
		return a.result
	}

	// Phase 1: declarations, so later code can refer to earlier and later
	// members alike.
	a.declareChildren(tree.Root, global)
	// Phase 2: base types, which member lookup walks.
	for _, t := range a.types {
		a.resolveBases(t)
	}
	// Phase 3: references.
	a.resolveAll(tree.Root)
	return a.result
}

// Symbol implements Model.
func (r *Result) Symbol(n *syntax.Node) *Symbol {
	cands := r.Candidates(n)
	if len(cands) != 1 {
		return nil
	}
	return cands[0]
}

// Candidates implements Model.
func (r *Result) Candidates(n *syntax.Node) []*Symbol {
	if r == nil || n == nil {
		return nil
	}
	if sym, ok := r.decls[n]; ok {
		return []*Symbol{sym}
	}
	return r.refs[n]
}

// AttributeType implements Model.
func (r *Result) AttributeType(attr *syntax.Node) string {
	if r == nil || attr == nil {
		return ""
	}
	return r.attrs[attr]
}

// Imports reports whether the unit imports namespace ns with a using
// directive.
func (r *Result) Imports(ns string) bool {
	if r == nil {
		return false
	}
	for _, u := range r.Usings {
		if u == ns {
			return true
		}
	}
	return false
}
