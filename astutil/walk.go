// Copyright © 2024 The NRefactory authors

// Package astutil provides shared syntax-tree walking utilities.
//
// These helpers are used by both the lint and analysis packages for
// navigating parsed C# trees.
package astutil

import "github.com/ezhangle/NRefactory/syntax"

// Walk calls fn for every node in the tree, depth-first, pre-order.
// parent is nil for the root.
func Walk(root *syntax.Node, fn func(node *syntax.Node, parent *syntax.Node, depth int)) {
	walkNode(root, nil, 0, fn)
}

func walkNode(node *syntax.Node, parent *syntax.Node, depth int, fn func(*syntax.Node, *syntax.Node, int)) {
	if node == nil {
		return
	}
	fn(node, parent, depth)
	for _, child := range node.Children {
		walkNode(child, node, depth+1, fn)
	}
}

// Inspect traverses the tree in pre-order. If fn returns false the children
// of that node are skipped.
func Inspect(root *syntax.Node, fn func(node *syntax.Node) bool) {
	if root == nil || !fn(root) {
		return
	}
	for _, child := range root.Children {
		Inspect(child, fn)
	}
}

// Find returns every node of the given kinds in pre-order.
func Find(root *syntax.Node, kinds ...syntax.Kind) []*syntax.Node {
	var out []*syntax.Node
	Walk(root, func(n *syntax.Node, _ *syntax.Node, _ int) {
		for _, k := range kinds {
			if n.Kind == k {
				out = append(out, n)
				return
			}
		}
	})
	return out
}

// Enclosing returns the nearest proper ancestor of n whose kind is one of
// kinds, or nil.
func Enclosing(n *syntax.Node, kinds ...syntax.Kind) *syntax.Node {
	if n == nil {
		return nil
	}
	for p := n.Parent; p != nil; p = p.Parent {
		for _, k := range kinds {
			if p.Kind == k {
				return p
			}
		}
	}
	return nil
}

// EnclosingType returns the nearest type declaration strictly containing n.
func EnclosingType(n *syntax.Node) *syntax.Node {
	if n == nil {
		return nil
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind.IsTypeDeclaration() {
			return p
		}
	}
	return nil
}

// EnclosingMember returns the nearest member declaration (method,
// constructor, property, ...) strictly containing n.
func EnclosingMember(n *syntax.Node) *syntax.Node {
	if n == nil {
		return nil
	}
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Kind.IsMemberDeclaration() {
			return p
		}
		if p.Kind.IsTypeDeclaration() {
			return nil
		}
	}
	return nil
}

// IsNested reports whether the declaration n sits inside another type
// declaration. Namespaces do not count.
func IsNested(n *syntax.Node) bool {
	return EnclosingType(n) != nil
}

// LocalNames returns the names of parameters, local variables and lambda
// parameters declared anywhere inside member. The result ignores block
// scoping, which is conservative: a name that may be a local is never
// treated as a member reference.
func LocalNames(member *syntax.Node) map[string]bool {
	names := make(map[string]bool)
	if member == nil {
		return names
	}
	Walk(member, func(n *syntax.Node, parent *syntax.Node, _ int) {
		switch n.Kind {
		case syntax.KindParameter:
			if n.Name != "" {
				names[n.Name] = true
			}
		case syntax.KindVariableDeclarator:
			if parent != nil && parent.Kind == syntax.KindVariableDeclaration &&
				parent.Parent != nil && (parent.Parent.Kind == syntax.KindField || parent.Parent.Kind == syntax.KindEventField) {
				return
			}
			if n.Name != "" {
				names[n.Name] = true
			}
		case syntax.KindLambda:
			// x => ... has a bare identifier parameter.
			if len(n.Children) > 0 && n.Children[0].Kind == syntax.KindIdentifier {
				names[n.Children[0].Name] = true
			}
		}
	})
	return names
}

// SpanOf returns the best span to report for a node: its name when it has
// one, otherwise the node itself.
func SpanOf(n *syntax.Node) syntax.Span {
	if n == nil {
		return syntax.Span{}
	}
	if !n.NameSpan.IsZero() {
		return n.NameSpan
	}
	return n.Span
}

// LastToken returns the last anonymous token of n, or false when n has none.
func LastToken(n *syntax.Node) (syntax.Token, bool) {
	if n == nil || len(n.Tokens) == 0 {
		return syntax.Token{}, false
	}
	return n.Tokens[len(n.Tokens)-1], true
}
