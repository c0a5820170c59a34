// Copyright © 2024 The NRefactory authors

package analysis

import (
	"context"
	"testing"

	"github.com/ezhangle/NRefactory/astutil"
	"github.com/ezhangle/NRefactory/parser"
	"github.com/ezhangle/NRefactory/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseAndAnalyze is a test helper that parses source and runs analysis.
func parseAndAnalyze(t *testing.T, source string) (*syntax.Tree, *Result) {
	t.Helper()
	f, err := parser.Parse(context.Background(), "test.cs", []byte(source))
	require.NoError(t, err)
	return f.Tree, Analyze(f.Tree, &Config{Filename: "test.cs"})
}

// nodeAt returns the innermost node of the given kind whose source text is
// text.
func nodeAt(t *testing.T, tree *syntax.Tree, kind syntax.Kind, text string) *syntax.Node {
	t.Helper()
	var found *syntax.Node
	astutil.Walk(tree.Root, func(n *syntax.Node, _ *syntax.Node, _ int) {
		if n.Kind == kind && tree.Text(n.Span) == text {
			found = n
		}
	})
	require.NotNil(t, found, "no %s node with text %q", kind, text)
	return found
}

// --- Scope tests ---

func TestScope_Define_Lookup(t *testing.T) {
	parent := NewScope(ScopeGlobal, nil, nil)
	child := NewScope(ScopeType, parent, nil)

	parent.Define(&Symbol{Name: "X", Kind: SymType})
	child.Define(&Symbol{Name: "y", Kind: SymField})

	assert.Len(t, child.Lookup("X"), 1)
	assert.Len(t, child.Lookup("y"), 1)
	assert.Len(t, parent.Lookup("X"), 1)
	assert.Nil(t, parent.Lookup("y"))
	assert.Equal(t, []*Scope{child}, parent.Children)
}

func TestScope_Overloads(t *testing.T) {
	s := NewScope(ScopeType, nil, nil)
	s.Define(&Symbol{Name: "M", Kind: SymMethod})
	s.Define(&Symbol{Name: "M", Kind: SymMethod})
	assert.Len(t, s.LookupLocal("M"), 2)
}

func TestScope_Shadowing(t *testing.T) {
	parent := NewScope(ScopeGlobal, nil, nil)
	child := NewScope(ScopeType, parent, nil)
	outer := &Symbol{Name: "x"}
	inner := &Symbol{Name: "x"}
	parent.Define(outer)
	child.Define(inner)
	assert.Equal(t, []*Symbol{inner}, child.Lookup("x"))
	assert.Equal(t, []*Symbol{outer}, parent.Lookup("x"))
}

// --- Accessibility ---

func TestDefaultAccessibility(t *testing.T) {
	tree, _ := parseAndAnalyze(t, `
class Top {
	class Nested {}
	int field;
	void M() {}
}
interface I { void N(); }
enum E { A }
delegate void D();
`)
	tests := []struct {
		kind syntax.Kind
		name string
		want Accessibility
	}{
		{syntax.KindClass, "Top", AccessInternal},
		{syntax.KindClass, "Nested", AccessPrivate},
		{syntax.KindMethod, "M", AccessPrivate},
		{syntax.KindMethod, "N", AccessPublic},
		{syntax.KindEnumMember, "A", AccessPublic},
		{syntax.KindDelegate, "D", AccessInternal},
		{syntax.KindInterface, "I", AccessInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var decl *syntax.Node
			for _, n := range astutil.Find(tree.Root, tt.kind) {
				if n.Name == tt.name {
					decl = n
				}
			}
			require.NotNil(t, decl)
			assert.Equal(t, tt.want, DefaultAccessibility(decl))
		})
	}
}

func TestDeclaredAccessibility(t *testing.T) {
	mods := func(words ...string) *syntax.Node {
		n := &syntax.Node{Kind: syntax.KindMethod}
		for _, w := range words {
			n.Modifiers = append(n.Modifiers, syntax.Token{Text: w})
		}
		return n
	}
	tests := []struct {
		words []string
		want  Accessibility
		ok    bool
	}{
		{nil, AccessNone, false},
		{[]string{"static"}, AccessNone, false},
		{[]string{"public"}, AccessPublic, true},
		{[]string{"protected", "internal"}, AccessProtectedInternal, true},
		{[]string{"private", "protected"}, AccessPrivateProtected, true},
		{[]string{"internal", "static"}, AccessInternal, true},
	}
	for _, tt := range tests {
		acc, ok := DeclaredAccessibility(mods(tt.words...))
		assert.Equal(t, tt.want, acc, "%v", tt.words)
		assert.Equal(t, tt.ok, ok, "%v", tt.words)
	}
}

// --- Declarations ---

func TestAnalyze_Declarations(t *testing.T) {
	tree, r := parseAndAnalyze(t, `
namespace A.B {
	internal class Foo {
		public static event System.EventHandler Changed, Closed;
		int x;
		public Foo() {}
		void M() {}
		void M(int a) {}
	}
}
`)
	require.NotNil(t, r.Global)
	a := r.Global.Members.LookupLocal("A")
	require.Len(t, a, 1)
	b := a[0].Members.LookupLocal("B")
	require.Len(t, b, 1)
	foos := b[0].Members.LookupLocal("Foo")
	require.Len(t, foos, 1)
	foo := foos[0]
	assert.Equal(t, "A.B.Foo", foo.FullName())
	assert.Equal(t, AccessInternal, foo.Accessibility)
	assert.True(t, foo.Explicit)

	changed := foo.Members.LookupLocal("Changed")
	require.Len(t, changed, 1)
	assert.Equal(t, SymEvent, changed[0].Kind)
	assert.True(t, changed[0].Static)
	assert.Len(t, foo.Members.LookupLocal("Closed"), 1)

	assert.Len(t, foo.Members.LookupLocal("M"), 2)
	ctors := foo.Members.LookupLocal(ConstructorName)
	require.Len(t, ctors, 1)
	assert.Equal(t, SymConstructor, ctors[0].Kind)

	class := astutil.Find(tree.Root, syntax.KindClass)[0]
	assert.Same(t, foo, r.Symbol(class))
	assert.Equal(t, "test.cs", r.Filename)
}

func TestAnalyze_PartialTypesMerge(t *testing.T) {
	_, r := parseAndAnalyze(t, `
partial class P { void A() {} }
partial class P { void B() {} }
`)
	ps := r.Global.Members.LookupLocal("P")
	require.Len(t, ps, 1)
	assert.Len(t, ps[0].Partials, 1)
	assert.Len(t, ps[0].Members.LookupLocal("A"), 1)
	assert.Len(t, ps[0].Members.LookupLocal("B"), 1)
}

func TestAnalyze_StaticClassMembersAreStatic(t *testing.T) {
	_, r := parseAndAnalyze(t, `static class S { static void M() {} class Inner {} }`)
	s := r.Global.Members.LookupLocal("S")[0]
	assert.True(t, s.Members.LookupLocal("M")[0].Static)
	assert.False(t, s.Members.LookupLocal("Inner")[0].Static)
}

func TestAnalyze_Usings(t *testing.T) {
	_, r := parseAndAnalyze(t, `
using System;
using System.Runtime.InteropServices;
using IO = System.IO;
using static System.Math;
class C {}
`)
	assert.Equal(t, []string{"System", "System.Runtime.InteropServices"}, r.Usings)
	assert.Equal(t, "System.IO", r.Aliases["IO"])
	assert.True(t, r.Imports("System"))
	assert.False(t, r.Imports("System.IO"))
}

// --- Resolution ---

func TestResolve_SimpleNames(t *testing.T) {
	tree, r := parseAndAnalyze(t, `
class C {
	static event System.EventHandler E;
	void Handler(object s, System.EventArgs e) {}
	void Overload() {}
	void Overload(int x) {}
	void M(int local) {
		E += Handler;
		E -= Overload;
		local = 1;
	}
}
`)
	e := nodeAt(t, tree, syntax.KindIdentifier, "E")
	sym := r.Symbol(e)
	require.NotNil(t, sym)
	assert.Equal(t, SymEvent, sym.Kind)
	assert.True(t, sym.Static)

	h := nodeAt(t, tree, syntax.KindIdentifier, "Handler")
	hs := r.Symbol(h)
	require.NotNil(t, hs)
	assert.Equal(t, SymMethod, hs.Kind)

	o := nodeAt(t, tree, syntax.KindIdentifier, "Overload")
	assert.Len(t, r.Candidates(o), 2)
	assert.Nil(t, r.Symbol(o), "overloaded method groups are ambiguous")

	local := nodeAt(t, tree, syntax.KindIdentifier, "local")
	assert.Nil(t, r.Symbol(local), "parameters shadow members")
}

func TestResolve_MemberAccess(t *testing.T) {
	tree, r := parseAndAnalyze(t, `
class Source { public static event System.EventHandler Changed; }
class Sink {
	void OnChanged(object s, System.EventArgs e) {}
	void M() {
		Source.Changed += this.OnChanged;
	}
}
`)
	access := nodeAt(t, tree, syntax.KindMemberAccess, "Source.Changed")
	sym := r.Symbol(access)
	require.NotNil(t, sym)
	assert.Equal(t, "Source.Changed", sym.FullName())

	self := nodeAt(t, tree, syntax.KindMemberAccess, "this.OnChanged")
	sym = r.Symbol(self)
	require.NotNil(t, sym)
	assert.Equal(t, "Sink.OnChanged", sym.FullName())
}

func TestResolve_InheritedMembers(t *testing.T) {
	tree, r := parseAndAnalyze(t, `
class Base { protected void Helper() {} }
class Derived : Base {
	void M() { Helper(); base.Helper(); }
}
`)
	derived := r.Global.Members.LookupLocal("Derived")[0]
	require.Len(t, derived.Bases, 1)
	assert.Equal(t, "Base", derived.Bases[0].Name)

	var helpers []*syntax.Node
	astutil.Walk(tree.Root, func(n *syntax.Node, _ *syntax.Node, _ int) {
		if n.Kind == syntax.KindIdentifier && n.Name == "Helper" && n.Parent.Kind != syntax.KindMethod {
			helpers = append(helpers, n)
		}
	})
	require.Len(t, helpers, 2)
	for _, h := range helpers {
		sym := r.Symbol(h)
		require.NotNil(t, sym)
		assert.Equal(t, "Base.Helper", sym.FullName())
	}
}

func TestResolve_Unresolved(t *testing.T) {
	_, r := parseAndAnalyze(t, `class C { void M() { Console.WriteLine(); } }`)
	var names []string
	for _, u := range r.Unresolved {
		names = append(names, u.Name)
	}
	assert.Contains(t, names, "Console")
}

func TestAttributeType(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "imported short name",
			source: "using System.Runtime.InteropServices;\nclass C { void M([Optional] ref int x) {} }",
			want:   "System.Runtime.InteropServices.OptionalAttribute",
		},
		{
			name:   "imported long name",
			source: "using System.Runtime.InteropServices;\nclass C { void M([OptionalAttribute] ref int x) {} }",
			want:   "System.Runtime.InteropServices.OptionalAttribute",
		},
		{
			name:   "qualified",
			source: "class C { void M([System.Runtime.InteropServices.Optional] ref int x) {} }",
			want:   "System.Runtime.InteropServices.OptionalAttribute",
		},
		{
			name:   "alias",
			source: "using IS = System.Runtime.InteropServices;\nclass C { void M([IS.Optional] ref int x) {} }",
			want:   "System.Runtime.InteropServices.OptionalAttribute",
		},
		{
			name:   "not imported",
			source: "class C { void M([Optional] ref int x) {} }",
			want:   "",
		},
		{
			name:   "declared in unit",
			source: "class OptionalAttribute : System.Attribute {}\nclass C { void M([Optional] ref int x) {} }",
			want:   "OptionalAttribute",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, r := parseAndAnalyze(t, tt.source)
			attrs := astutil.Find(tree.Root, syntax.KindAttribute)
			require.Len(t, attrs, 1)
			assert.Equal(t, tt.want, r.AttributeType(attrs[0]))
		})
	}
}

func TestResult_NilSafe(t *testing.T) {
	var r *Result
	assert.Nil(t, r.Symbol(&syntax.Node{}))
	assert.Nil(t, r.Candidates(&syntax.Node{}))
	assert.Equal(t, "", r.AttributeType(&syntax.Node{}))
	assert.False(t, r.Imports("System"))

	empty := Analyze(nil, nil)
	require.NotNil(t, empty)
	assert.Empty(t, empty.Symbols)
}

func TestSymbolKind_String(t *testing.T) {
	assert.Equal(t, "event", SymEvent.String())
	assert.Equal(t, "unknown", SymbolKind(99).String())
	assert.Equal(t, "protected internal", AccessProtectedInternal.String())
	assert.Equal(t, "type", ScopeType.String())
}
