// Copyright © 2024 The NRefactory authors

package analysis

import "github.com/ezhangle/NRefactory/syntax"

// Reference records a resolved name usage.
type Reference struct {
	Symbols []*Symbol // more than one for overloaded method groups
	Node    *syntax.Node
}

// UnresolvedRef records a name usage that could not be resolved within the
// unit. These are expected for anything declared elsewhere.
type UnresolvedRef struct {
	Name string
	Node *syntax.Node
}
