// Copyright © 2024 The NRefactory authors

package lint

import "github.com/ezhangle/NRefactory/syntax"

// AnalyzerRedundantCommaInInitializer flags a trailing comma before the
// closing brace of an initializer.
var AnalyzerRedundantCommaInInitializer = &Analyzer{
	Desc: &Descriptor{
		ID:               IDRedundantCommaInInitializer,
		Name:             "redundant-comma-in-initializer",
		Title:            "Redundant comma in array initializer",
		MessageTemplate:  "Redundant comma in {0}",
		Category:         CategoryRedundancy,
		DefaultSeverity:  SeverityWarning,
		EnabledByDefault: true,
		HelpLink:         HelpLinkFor(IDRedundantCommaInInitializer),
		Tags:             []string{TagUnnecessary},
		Fix:              FixRemoveComma,
	},
	Doc: `Flag a trailing comma in array, object and collection initializers.

    var a = new[] { 1, 2, };          // flagged: array initializer
    var p = new Point { X = 1, };     // flagged: object initializer
    var l = new List<int> { 1, };     // flagged: collection initializer`,
	Run: func(pass *Pass) {
		pass.Visit(func(n *syntax.Node) {
			comma, ok := trailingComma(n)
			if !ok {
				return
			}
			pass.ReportAt(comma.Span, initializerKind(n))
		}, syntax.KindInitializer)
	},
}

// trailingComma returns the comma directly before the closing brace of a
// non-empty initializer.
func trailingComma(n *syntax.Node) (syntax.Token, bool) {
	if len(n.Children) == 0 || len(n.Tokens) < 2 {
		return syntax.Token{}, false
	}
	closing := n.Tokens[len(n.Tokens)-1]
	comma := n.Tokens[len(n.Tokens)-2]
	if closing.Text != "}" || comma.Text != "," {
		return syntax.Token{}, false
	}
	last := n.Children[len(n.Children)-1]
	if comma.Span.Start.Offset < last.Span.End.Offset {
		return syntax.Token{}, false
	}
	return comma, true
}

const (
	arrayInitializer      = "array initializer"
	objectInitializer     = "object initializer"
	collectionInitializer = "collection initializer"
)

// initializerKind names the construct an initializer belongs to.
func initializerKind(n *syntax.Node) string {
	p := n.Parent
	if p == nil {
		return arrayInitializer
	}
	switch p.Kind {
	case syntax.KindObjectCreation, syntax.KindAssignment:
		// new T { X = 1 } or a nested member initializer X = { ... }.
		if n.Children[0].Kind == syntax.KindAssignment {
			return objectInitializer
		}
		return collectionInitializer
	case syntax.KindInitializer:
		if initializerKind(p) == arrayInitializer {
			return arrayInitializer
		}
		return collectionInitializer
	}
	return arrayInitializer
}
