// Copyright © 2024 The NRefactory authors

package analysis

import (
	"strings"

	"github.com/ezhangle/NRefactory/astutil"
	"github.com/ezhangle/NRefactory/syntax"
)

// analyzer is the internal state for a single analysis run.
type analyzer struct {
	result   *Result
	types    []*Symbol
	imports  map[string]bool
	resolved map[*syntax.Node]bool
	locals   map[*syntax.Node]map[string]bool
}

// declareChildren registers the declarations directly under n in the
// member scope of container.
func (a *analyzer) declareChildren(n *syntax.Node, container *Symbol) {
	current := container
	for _, child := range n.Children {
		if child.Kind == syntax.KindNamespace {
			ns := a.declareNamespace(child, current)
			if _, fileScoped := child.Token(";"); fileScoped {
				// namespace N; applies to the rest of the unit.
				current = ns
			}
			continue
		}
		a.declare(child, current)
	}
}

func (a *analyzer) declare(n *syntax.Node, container *Symbol) {
	switch {
	case n.Kind == syntax.KindUsing:
		a.declareUsing(n)
	case n.Kind == syntax.KindNamespace:
		a.declareNamespace(n, container)
	case n.Kind.IsTypeDeclaration():
		a.declareType(n, container)
	case n.Kind == syntax.KindDelegate:
		a.define(n, container, SymDelegate, n.Name, n.NameSpan)
	case n.Kind == syntax.KindMethod:
		a.define(n, container, SymMethod, n.Name, n.NameSpan)
	case n.Kind == syntax.KindConstructor:
		// Constructors live under .ctor so they never shadow the type name.
		a.define(n, container, SymConstructor, ConstructorName, n.NameSpan)
	case n.Kind == syntax.KindProperty:
		a.define(n, container, SymProperty, n.Name, n.NameSpan)
	case n.Kind == syntax.KindEvent:
		a.define(n, container, SymEvent, n.Name, n.NameSpan)
	case n.Kind == syntax.KindEnumMember:
		a.define(n, container, SymEnumMember, n.Name, n.NameSpan)
	case n.Kind == syntax.KindField || n.Kind == syntax.KindEventField:
		kind := SymField
		if n.Kind == syntax.KindEventField {
			kind = SymEvent
		}
		for _, v := range n.ChildrenOf(syntax.KindVariableDeclaration) {
			for _, d := range v.ChildrenOf(syntax.KindVariableDeclarator) {
				sym := a.define(n, container, kind, d.Name, d.NameSpan)
				if sym != nil {
					a.result.decls[d] = sym
				}
			}
		}
	case n.Kind == syntax.KindError:
		// Declarations inside a region the parser could not make sense of
		// are still worth knowing about.
		a.declareChildren(n, container)
	}
}

func (a *analyzer) declareUsing(n *syntax.Node) {
	if n.Name == "" {
		return
	}
	if alias := usingAlias(n); alias != "" {
		a.result.Aliases[alias] = strings.TrimPrefix(n.Name, "global::")
		return
	}
	if _, isStatic := n.Token("static"); isStatic {
		return
	}
	name := strings.TrimPrefix(n.Name, "global::")
	a.result.Usings = append(a.result.Usings, name)
	a.imports[name] = true
}

// usingAlias returns X for using X = Target; and "" otherwise. Depending on
// the grammar revision the alias is either a direct identifier followed by
// '=' or wrapped in a name_equals node.
func usingAlias(n *syntax.Node) string {
	if _, ok := n.Token("="); ok {
		if first := n.Child(syntax.KindIdentifier); first != nil && first.Span != n.NameSpan {
			return first.Name
		}
	}
	for _, c := range n.Children {
		if c.Kind != syntax.KindOther {
			continue
		}
		if _, ok := c.Token("="); ok {
			if id := c.Child(syntax.KindIdentifier); id != nil {
				return id.Name
			}
		}
	}
	return ""
}

// declareNamespace opens (or reopens) the namespace named by n, creating one
// symbol per dotted segment.
func (a *analyzer) declareNamespace(n *syntax.Node, container *Symbol) *Symbol {
	ns := container
	for _, part := range strings.Split(n.Name, ".") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		var found *Symbol
		for _, s := range ns.Members.LookupLocal(part) {
			if s.Kind == SymNamespace {
				found = s
				break
			}
		}
		if found == nil {
			found = &Symbol{
				Name:          part,
				Kind:          SymNamespace,
				Decl:          n,
				NameSpan:      n.NameSpan,
				Container:     ns,
				Accessibility: AccessPublic,
			}
			found.Members = NewScope(ScopeNamespace, ns.Members, n)
			ns.Members.Define(found)
			a.result.Symbols = append(a.result.Symbols, found)
		} else if found.Decl != n {
			found.Partials = append(found.Partials, n)
		}
		ns = found
	}
	a.result.decls[n] = ns
	a.declareChildren(n, ns)
	return ns
}

func (a *analyzer) declareType(n *syntax.Node, container *Symbol) {
	var sym *Symbol
	if n.HasModifier("partial") {
		for _, s := range container.Members.LookupLocal(n.Name) {
			if s.Kind == SymType && s.Decl != nil && s.Decl.Kind == n.Kind {
				sym = s
				s.Partials = append(s.Partials, n)
				a.result.decls[n] = s
				break
			}
		}
	}
	if sym == nil {
		sym = a.define(n, container, SymType, n.Name, n.NameSpan)
		if sym == nil {
			return
		}
		sym.Members = NewScope(ScopeType, container.Members, n)
		a.types = append(a.types, sym)
	}
	for _, child := range n.Children {
		a.declare(child, sym)
	}
}

// define creates a symbol for decl in container's member scope.
func (a *analyzer) define(decl *syntax.Node, container *Symbol, kind SymbolKind, name string, nameSpan syntax.Span) *Symbol {
	if name == "" || container == nil || container.Members == nil {
		return nil
	}
	acc, explicit := EffectiveAccessibility(decl)
	sym := &Symbol{
		Name:          name,
		Kind:          kind,
		Decl:          decl,
		NameSpan:      nameSpan,
		Container:     container,
		Static:        isStatic(decl, container),
		Accessibility: acc,
		Explicit:      explicit,
	}
	container.Members.Define(sym)
	a.result.Symbols = append(a.result.Symbols, sym)
	if _, ok := a.result.decls[decl]; !ok {
		a.result.decls[decl] = sym
	}
	return sym
}

func isStatic(decl *syntax.Node, container *Symbol) bool {
	if decl.HasModifier("static") || decl.HasModifier("const") {
		return true
	}
	if decl.Kind == syntax.KindEnumMember {
		return true
	}
	// Members of a static class are static whether or not they say so.
	return container != nil && container.Kind == SymType && container.Decl != nil &&
		container.Decl.HasModifier("static") &&
		!decl.Kind.IsTypeDeclaration() && decl.Kind != syntax.KindDelegate
}

// resolveBases links t to the base types named in its base lists that are
// declared in the unit.
func (a *analyzer) resolveBases(t *Symbol) {
	decls := append([]*syntax.Node{t.Decl}, t.Partials...)
	for _, d := range decls {
		for _, list := range d.ChildrenOf(syntax.KindBaseList) {
			for _, b := range list.Children {
				for _, s := range a.resolveTypeRef(b) {
					if s.Kind == SymType && s != t {
						t.Bases = append(t.Bases, s)
					}
				}
			}
		}
	}
}

// resolveTypeRef resolves a type reference in a base list or attribute
// position.
func (a *analyzer) resolveTypeRef(n *syntax.Node) []*Symbol {
	switch n.Kind {
	case syntax.KindIdentifier, syntax.KindQualifiedName:
		return a.lookupTypePath(n.Name, n)
	}
	// primary constructor bases and similar wrappers: first named child.
	if len(n.Children) > 0 {
		return a.resolveTypeRef(n.Children[0])
	}
	return nil
}

// lookupTypePath resolves a dotted type name as seen from at.
func (a *analyzer) lookupTypePath(name string, at *syntax.Node) []*Symbol {
	name = strings.TrimPrefix(name, "global::")
	parts := strings.Split(name, ".")
	for i := range parts {
		if j := strings.IndexByte(parts[i], '<'); j > 0 {
			parts[i] = parts[i][:j]
		}
		parts[i] = strings.TrimSpace(parts[i])
	}
	if target, ok := a.result.Aliases[parts[0]]; ok {
		parts = append(strings.Split(target, "."), parts[1:]...)
	}
	syms := a.lookupScopes(parts[0], at)
	for _, part := range parts[1:] {
		if len(syms) != 1 || syms[0].Members == nil {
			return nil
		}
		syms = a.lookupMember(syms[0], part, nil)
	}
	return syms
}

// lookupScopes resolves name against the enclosing types, the enclosing
// namespaces and the imported namespaces, innermost first.
func (a *analyzer) lookupScopes(name string, at *syntax.Node) []*Symbol {
	var container *Symbol
	for p := at.Parent; p != nil; p = p.Parent {
		if sym, ok := a.result.decls[p]; ok && sym.Members != nil {
			container = sym
			break
		}
	}
	if container == nil {
		container = a.fileNamespace(at)
	}
	for c := container; c != nil; c = c.Container {
		if syms := a.lookupMember(c, name, nil); len(syms) > 0 {
			return syms
		}
	}
	// using N; brings N's types, not its nested namespaces, into scope.
	var found []*Symbol
	for _, ns := range a.result.Usings {
		nsSyms := a.lookupTypePathFromGlobal(ns)
		if nsSyms == nil {
			continue
		}
		for _, s := range nsSyms.Members.LookupLocal(name) {
			if s.IsType() {
				found = append(found, s)
			}
		}
	}
	return found
}

// fileNamespace returns the namespace a node at compilation-unit level
// belongs to, accounting for file-scoped namespace declarations.
func (a *analyzer) fileNamespace(at *syntax.Node) *Symbol {
	root := at
	for root.Parent != nil {
		root = root.Parent
	}
	ns := a.result.Global
	for _, child := range root.Children {
		if child.Span.Start.Offset > at.Span.Start.Offset {
			break
		}
		if child.Kind == syntax.KindNamespace {
			if _, fileScoped := child.Token(";"); fileScoped {
				if sym, ok := a.result.decls[child]; ok {
					ns = sym
				}
			}
		}
	}
	return ns
}

func (a *analyzer) lookupTypePathFromGlobal(name string) *Symbol {
	cur := a.result.Global
	for _, part := range strings.Split(name, ".") {
		var next *Symbol
		for _, s := range cur.Members.LookupLocal(part) {
			if s.Kind == SymNamespace {
				next = s
			}
		}
		if next == nil {
			return nil
		}
		cur = next
	}
	return cur
}

// lookupMember finds members of t named name, searching base types declared
// in the unit when t itself has none. seen guards against cyclic bases in
// malformed code.
func (a *analyzer) lookupMember(t *Symbol, name string, seen map[*Symbol]bool) []*Symbol {
	if t == nil || t.Members == nil {
		return nil
	}
	if syms := t.Members.LookupLocal(name); len(syms) > 0 {
		return syms
	}
	if len(t.Bases) == 0 {
		return nil
	}
	if seen == nil {
		seen = make(map[*Symbol]bool)
	}
	seen[t] = true
	for _, b := range t.Bases {
		if seen[b] {
			continue
		}
		if syms := a.lookupMember(b, name, seen); len(syms) > 0 {
			return syms
		}
	}
	return nil
}

// resolveAll records the candidates of every identifier, qualified name and
// member access in the tree.
func (a *analyzer) resolveAll(root *syntax.Node) {
	astutil.Walk(root, func(n *syntax.Node, parent *syntax.Node, _ int) {
		switch n.Kind {
		case syntax.KindIdentifier, syntax.KindQualifiedName, syntax.KindMemberAccess:
			a.resolve(n)
		case syntax.KindAttribute:
			if name := a.attributeType(n); name != "" {
				a.result.attrs[n] = name
			}
		}
	})
}

func (a *analyzer) resolve(n *syntax.Node) []*Symbol {
	if a.resolved[n] {
		return a.result.refs[n]
	}
	a.resolved[n] = true
	if sym, ok := a.result.decls[n]; ok {
		return []*Symbol{sym}
	}
	syms := a.resolveUncached(n)
	if len(syms) > 0 {
		a.result.refs[n] = syms
		a.result.References = append(a.result.References, &Reference{Symbols: syms, Node: n})
	} else if n.Kind != syntax.KindMemberAccess && !a.isDeclarationName(n) {
		a.result.Unresolved = append(a.result.Unresolved, &UnresolvedRef{Name: n.Name, Node: n})
	}
	return syms
}

func (a *analyzer) resolveUncached(n *syntax.Node) []*Symbol {
	parent := n.Parent
	if a.isDeclarationName(n) {
		if sym, ok := a.result.decls[parent]; ok {
			return []*Symbol{sym}
		}
		return nil
	}
	if parent != nil && parent.Kind == syntax.KindMemberAccess && len(parent.Children) > 1 && parent.Children[0] != n {
		// The name half of a member access resolves with the access.
		return a.resolve(parent)
	}
	switch n.Kind {
	case syntax.KindMemberAccess:
		return a.resolveMemberAccess(n)
	case syntax.KindQualifiedName:
		return a.lookupTypePath(n.Name, n)
	case syntax.KindIdentifier:
		return a.resolveSimpleName(n)
	}
	return nil
}

// isDeclarationName reports whether n is the name token of the declaration
// that contains it.
func (a *analyzer) isDeclarationName(n *syntax.Node) bool {
	p := n.Parent
	if p == nil || p.NameSpan.IsZero() || p.NameSpan != n.Span {
		return false
	}
	return p.Kind.IsTypeDeclaration() || p.Kind.IsMemberDeclaration() ||
		p.Kind == syntax.KindDelegate || p.Kind == syntax.KindVariableDeclarator ||
		p.Kind == syntax.KindParameter || p.Kind == syntax.KindNamespace
}

func (a *analyzer) resolveSimpleName(n *syntax.Node) []*Symbol {
	if member := astutil.EnclosingMember(n); member != nil {
		if a.localNames(member)[n.Name] {
			return nil
		}
	}
	return a.lookupScopes(n.Name, n)
}

func (a *analyzer) localNames(member *syntax.Node) map[string]bool {
	if a.locals == nil {
		a.locals = make(map[*syntax.Node]map[string]bool)
	}
	names, ok := a.locals[member]
	if !ok {
		names = astutil.LocalNames(member)
		a.locals[member] = names
	}
	return names
}

func (a *analyzer) resolveMemberAccess(n *syntax.Node) []*Symbol {
	if len(n.Children) == 0 || n.Name == "" {
		return nil
	}
	target := n.Children[0]
	var owner *Symbol
	switch target.Kind {
	case syntax.KindThis:
		owner = a.result.decls[astutil.EnclosingType(n)]
	case syntax.KindBase:
		if t := a.result.decls[astutil.EnclosingType(n)]; t != nil && len(t.Bases) > 0 {
			owner = t.Bases[0]
		}
	default:
		syms := a.resolve(target)
		if len(syms) == 1 && syms[0].Members != nil {
			owner = syms[0]
		}
	}
	if owner == nil {
		return nil
	}
	return a.lookupMember(owner, n.Name, nil)
}

// attributeType resolves the class an attribute applies. C# lets [Foo]
// name either Foo or FooAttribute.
func (a *analyzer) attributeType(n *syntax.Node) string {
	name := strings.TrimPrefix(n.Name, "global::")
	if i := strings.IndexByte(name, '('); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	suffixed := name
	if !strings.HasSuffix(name, "Attribute") {
		suffixed = name + "Attribute"
	}
	for _, cand := range []string{suffixed, name} {
		syms := a.lookupTypePath(cand, n)
		if len(syms) == 1 && syms[0].IsType() {
			return syms[0].FullName()
		}
	}
	if i := strings.IndexByte(suffixed, '.'); i > 0 {
		if target, ok := a.result.Aliases[suffixed[:i]]; ok {
			return target + suffixed[i:]
		}
		return suffixed
	}
	if full, ok := frameworkType(suffixed, a.imports); ok {
		return full
	}
	return ""
}
