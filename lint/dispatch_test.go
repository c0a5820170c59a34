// Copyright © 2024 The NRefactory authors

package lint

import (
	"bytes"
	"context"
	"testing"

	"github.com/ezhangle/NRefactory/syntax"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// treeBuilder hands out consecutive one-byte spans so hand-built trees
// satisfy the span invariants of a parsed tree.
type treeBuilder struct {
	next int
}

func (b *treeBuilder) node(kind syntax.Kind, name string, children ...*syntax.Node) *syntax.Node {
	start := b.next
	b.next++
	n := &syntax.Node{Kind: kind, Name: name, Children: children}
	end := b.next
	for _, c := range children {
		c.Parent = n
		if c.Span.End.Offset > end {
			end = c.Span.End.Offset
		}
	}
	n.Span = syntax.Span{
		Start: syntax.Pos{Offset: start, Line: 1, Col: start + 1},
		End:   syntax.Pos{Offset: end, Line: 1, Col: end + 1},
	}
	return n
}

func (b *treeBuilder) tree(children ...*syntax.Node) *syntax.Tree {
	root := &syntax.Node{Kind: syntax.KindCompilationUnit, Children: children}
	for _, c := range children {
		c.Parent = root
	}
	root.Span = syntax.Span{End: syntax.Pos{Offset: b.next + 1, Line: 1, Col: b.next + 2}}
	return &syntax.Tree{Filename: "test.cs", Root: root}
}

// visitRule reports every node of the given kinds by name.
func visitRule(id string, fn func(pass *Pass)) *Analyzer {
	return &Analyzer{
		Desc: &Descriptor{ID: id, MessageTemplate: "{0}"},
		Run:  fn,
	}
}

func names(diags []Diagnostic) []string {
	var out []string
	for _, d := range diags {
		out = append(out, d.ID()+":"+d.Args[0])
	}
	return out
}

func classTree() *syntax.Tree {
	var b treeBuilder
	outer := b.node(syntax.KindClass, "Outer",
		b.node(syntax.KindClass, "Inner",
			b.node(syntax.KindMethod, "M")),
		b.node(syntax.KindMethod, "N"),
	)
	other := b.node(syntax.KindEnum, "E", b.node(syntax.KindEnumMember, "A"))
	return b.tree(outer, other)
}

func TestDispatcher_PreOrderRegistrationOrder(t *testing.T) {
	first := visitRule("T1", func(pass *Pass) {
		pass.Visit(func(n *syntax.Node) {
			pass.ReportAt(n.Span, n.Name)
		}, syntax.KindClass, syntax.KindMethod)
	})
	second := visitRule("T2", func(pass *Pass) {
		pass.Visit(func(n *syntax.Node) {
			pass.ReportAt(n.Span, n.Name)
		}, syntax.KindClass)
	})
	l := &Linter{Rules: []Rule{first, second}}
	res := l.Run(context.Background(), classTree(), nil)
	assert.Equal(t, []string{
		"T1:Outer", "T2:Outer",
		"T1:Inner", "T2:Inner",
		"T1:M",
		"T1:N",
	}, names(res.Diagnostics))
}

func TestDispatcher_UnhandledKindsRecurse(t *testing.T) {
	rule := visitRule("T1", func(pass *Pass) {
		pass.Visit(func(n *syntax.Node) {
			pass.ReportAt(n.Span, n.Name)
		}, syntax.KindEnumMember)
	})
	res := (&Linter{Rules: []Rule{rule}}).Run(context.Background(), classTree(), nil)
	assert.Equal(t, []string{"T1:A"}, names(res.Diagnostics))
}

func TestDispatcher_PruneOnlyAffectsOwnRule(t *testing.T) {
	pruning := visitRule("PRUNE", func(pass *Pass) {
		pass.On(func(n *syntax.Node) bool {
			pass.ReportAt(n.Span, n.Name)
			return n.Name != "Outer"
		}, syntax.KindClass, syntax.KindMethod)
	})
	watching := visitRule("ALL", func(pass *Pass) {
		pass.Visit(func(n *syntax.Node) {
			pass.ReportAt(n.Span, n.Name)
		}, syntax.KindMethod)
	})
	res := (&Linter{Rules: []Rule{pruning, watching}}).Run(context.Background(), classTree(), nil)
	assert.Equal(t, []string{"PRUNE:Outer", "ALL:M", "ALL:N"}, names(res.Diagnostics))
}

func TestDispatcher_PruneRestoredAfterSubtree(t *testing.T) {
	var b treeBuilder
	tree := b.tree(
		b.node(syntax.KindClass, "A", b.node(syntax.KindMethod, "Hidden")),
		b.node(syntax.KindClass, "B", b.node(syntax.KindMethod, "Seen")),
	)
	rule := visitRule("T", func(pass *Pass) {
		pass.On(func(n *syntax.Node) bool {
			return n.Name != "A"
		}, syntax.KindClass)
		pass.Visit(func(n *syntax.Node) {
			pass.ReportAt(n.Span, n.Name)
		}, syntax.KindMethod)
	})
	res := (&Linter{Rules: []Rule{rule}}).Run(context.Background(), tree, nil)
	assert.Equal(t, []string{"T:Seen"}, names(res.Diagnostics))
}

func TestDispatcher_Terminal(t *testing.T) {
	var b treeBuilder
	tree := b.tree(b.node(syntax.KindEnum, "E",
		b.node(syntax.KindEnumMember, "A"),
		b.node(syntax.KindEnumMember, "B"),
	))
	var seen []string
	terminal := visitRule("TERM", func(pass *Pass) {
		pass.Terminal(syntax.KindEnum)
		pass.Visit(func(n *syntax.Node) {
			seen = append(seen, "TERM:"+n.Name)
		}, syntax.KindEnum, syntax.KindEnumMember)
	})
	open := visitRule("OPEN", func(pass *Pass) {
		pass.Visit(func(n *syntax.Node) {
			seen = append(seen, "OPEN:"+n.Name)
		}, syntax.KindEnumMember)
	})
	res := (&Linter{Rules: []Rule{terminal, open}}).Run(context.Background(), tree, nil)
	require.False(t, res.Canceled)
	assert.Equal(t, []string{"TERM:E", "OPEN:A", "OPEN:B"}, seen)
}

func TestDispatcher_PanicDisablesOnlyThatRule(t *testing.T) {
	var logs bytes.Buffer
	log := logrus.New()
	log.SetOutput(&logs)

	bad := visitRule("BAD", func(pass *Pass) {
		pass.Visit(func(n *syntax.Node) {
			if n.Name == "Inner" {
				panic("boom")
			}
			pass.ReportAt(n.Span, n.Name)
		}, syntax.KindClass, syntax.KindMethod)
	})
	good := visitRule("GOOD", func(pass *Pass) {
		pass.Visit(func(n *syntax.Node) {
			pass.ReportAt(n.Span, n.Name)
		}, syntax.KindMethod)
	})
	l := &Linter{Rules: []Rule{bad, good}, Logger: log}
	res := l.Run(context.Background(), classTree(), nil)
	assert.False(t, res.Canceled)
	assert.Equal(t, []string{"BAD:Outer", "GOOD:M", "GOOD:N"}, names(res.Diagnostics))
	assert.Equal(t, []string{"BAD"}, res.Disabled)
	assert.Contains(t, logs.String(), "boom")
	assert.Contains(t, logs.String(), "rule=BAD")
}

func TestDispatcher_PanicInInitAndEnd(t *testing.T) {
	initPanic := visitRule("INIT", func(pass *Pass) {
		panic("init")
	})
	endPanic := visitRule("END", func(pass *Pass) {
		pass.OnEnd(func() { panic("end") })
		pass.OnEnd(func() { t.Error("hook after a panic must not run") })
	})
	ok := visitRule("OK", func(pass *Pass) {
		pass.OnEnd(func() {
			pass.ReportAt(pass.Tree.Root.Span, "done")
		})
	})
	res := (&Linter{Rules: []Rule{initPanic, endPanic, ok}}).Run(context.Background(), classTree(), nil)
	assert.Equal(t, []string{"OK:done"}, names(res.Diagnostics))
	assert.ElementsMatch(t, []string{"INIT", "END"}, res.Disabled)
}

func TestPass_ReportOutsideTreeDropped(t *testing.T) {
	rule := visitRule("T", func(pass *Pass) {
		pass.OnEnd(func() {
			outside := syntax.Span{
				Start: syntax.Pos{Offset: 1000},
				End:   syntax.Pos{Offset: 1001},
			}
			pass.ReportAt(outside, "outside")
			pass.ReportWithNotes(Diagnostic{Span: pass.Tree.Root.Span, Args: []string{"inside"}}, "a note")
		})
	})
	res := (&Linter{Rules: []Rule{rule}}).Run(context.Background(), classTree(), nil)
	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, "inside", d.Args[0])
	assert.Equal(t, []string{"a note"}, d.Notes)
	assert.Equal(t, "test.cs", d.File)
	assert.Equal(t, SeverityWarning, d.Severity)
}

func TestPass_Accessors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rule := visitRule("T", func(pass *Pass) {
		assert.Equal(t, "test.cs", pass.Filename())
		assert.False(t, pass.Canceled())
		assert.NotNil(t, pass.Context())
		assert.NotNil(t, pass.Semantics)
	})
	(&Linter{Rules: []Rule{rule}}).Run(ctx, classTree(), nil)
}

// largeTree builds a namespace holding n classes with one method each.
func largeTree(n int) *syntax.Tree {
	var b treeBuilder
	classes := make([]*syntax.Node, 0, n)
	for i := 0; i < n; i++ {
		classes = append(classes, b.node(syntax.KindClass, "C", b.node(syntax.KindMethod, "M")))
	}
	return b.tree(b.node(syntax.KindNamespace, "N", classes...))
}

func TestRun_CanceledMidPass(t *testing.T) {
	tree := largeTree(50000)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	visited := 0
	ended := false
	rule := visitRule("T", func(pass *Pass) {
		pass.Visit(func(n *syntax.Node) {
			visited++
			pass.ReportAt(n.Span, n.Name)
			if visited == 100 {
				cancel()
			}
		}, syntax.KindClass)
		pass.OnEnd(func() { ended = true })
	})
	var res *Result
	require.NotPanics(t, func() {
		res = (&Linter{Rules: []Rule{rule, AnalyzerStaticEventSubscription}}).Run(ctx, tree, nil)
	})
	assert.True(t, res.Canceled)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, 100, visited)
	assert.False(t, ended)
}

func TestRun_CanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := (&Linter{Rules: DefaultRules()}).Run(ctx, largeTree(10), nil)
	assert.True(t, res.Canceled)
	assert.Empty(t, res.Diagnostics)
}

func TestRun_NilRoot(t *testing.T) {
	res := (&Linter{Rules: DefaultRules()}).Run(context.Background(), &syntax.Tree{Filename: "empty.cs"}, nil)
	assert.False(t, res.Canceled)
	assert.Empty(t, res.Diagnostics)
}
