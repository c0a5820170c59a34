// Copyright © 2024 The NRefactory authors

// Package syntax defines the language-neutral syntax tree that rules walk.
//
// A tree is a set of typed nodes. Each node carries its modifiers, the
// anonymous tokens (keywords, punctuation, operators) that appear directly
// under it in source order, its child nodes and its source span. Trees are
// immutable once built; passes share them freely across goroutines.
package syntax

import "fmt"

// Pos is a position in source text. Line and Col are 1-based; Offset is a
// 0-based byte offset.
type Pos struct {
	Offset int
	Line   int
	Col    int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Before reports whether p precedes q.
func (p Pos) Before(q Pos) bool {
	return p.Offset < q.Offset
}

// Span is the half-open byte range [Start, End) of a node or token.
type Span struct {
	Start Pos
	End   Pos
}

func (s Span) String() string {
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

// IsZero reports whether the span was never set.
func (s Span) IsZero() bool {
	return s == Span{}
}

// Contains reports whether inner lies within s.
func (s Span) Contains(inner Span) bool {
	return inner.Start.Offset >= s.Start.Offset && inner.End.Offset <= s.End.Offset &&
		inner.Start.Offset <= inner.End.Offset
}

// Token is a keyword, operator, punctuation mark or comment.
type Token struct {
	Text string
	Span Span
}

// Node is one construct in the tree.
type Node struct {
	Kind Kind

	// Name is the declared name for declarations, the identifier text for
	// identifiers and the member name for member accesses.
	Name     string
	NameSpan Span

	Span      Span
	Modifiers []Token
	Tokens    []Token
	Children  []*Node
	Parent    *Node
}

// HasModifier reports whether the node carries the given modifier keyword.
func (n *Node) HasModifier(text string) bool {
	_, ok := n.Modifier(text)
	return ok
}

// Modifier returns the first modifier token with the given text.
func (n *Node) Modifier(text string) (Token, bool) {
	if n == nil {
		return Token{}, false
	}
	for _, m := range n.Modifiers {
		if m.Text == text {
			return m, true
		}
	}
	return Token{}, false
}

// Token returns the first anonymous token with the given text.
func (n *Node) Token(text string) (Token, bool) {
	if n == nil {
		return Token{}, false
	}
	for _, t := range n.Tokens {
		if t.Text == text {
			return t, true
		}
	}
	return Token{}, false
}

// Child returns the first child of the given kind, or nil.
func (n *Node) Child(kind Kind) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// ChildrenOf returns every child of the given kind.
func (n *Node) ChildrenOf(kind Kind) []*Node {
	if n == nil {
		return nil
	}
	var out []*Node
	for _, c := range n.Children {
		if c.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Name != "" {
		return fmt.Sprintf("%s %q@%s", n.Kind, n.Name, n.Span.Start)
	}
	return fmt.Sprintf("%s@%s", n.Kind, n.Span.Start)
}

// Tree is one parsed compilation unit.
type Tree struct {
	Filename string
	Source   []byte
	Root     *Node
	Comments []Token

	// Literals are the spans of string and character literals.
	Literals []Span
}

// Contains reports whether span lies within the bounds of the tree.
func (t *Tree) Contains(span Span) bool {
	if t == nil || t.Root == nil {
		return false
	}
	if span.Start.Offset < 0 || span.End.Offset > len(t.Source) && len(t.Source) > 0 {
		return false
	}
	return t.Root.Span.Contains(span)
}

// Text returns the source text covered by span, or "" when out of range.
func (t *Tree) Text(span Span) string {
	if t == nil || span.Start.Offset < 0 || span.End.Offset > len(t.Source) ||
		span.Start.Offset > span.End.Offset {
		return ""
	}
	return string(t.Source[span.Start.Offset:span.End.Offset])
}
