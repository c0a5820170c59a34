// Copyright © 2024 The NRefactory authors

package lint

import "github.com/ezhangle/NRefactory/syntax"

// AnalyzerRedundantBaseConstructorCall flags ': base()' constructor
// initializers without arguments.
var AnalyzerRedundantBaseConstructorCall = &Analyzer{
	Desc: &Descriptor{
		ID:               IDRedundantBaseConstructorCall,
		Name:             "redundant-base-constructor-call",
		Title:            "This is generated by the compiler and can be safely removed",
		MessageTemplate:  "Redundant base constructor call",
		Category:         CategoryRedundancy,
		DefaultSeverity:  SeverityInfo,
		EnabledByDefault: true,
		HelpLink:         HelpLinkFor(IDRedundantBaseConstructorCall),
		Tags:             []string{TagUnnecessary},
		Fix:              FixRemoveBaseCall,
	},
	Doc: `Flag ': base()' initializers that pass no arguments.

The compiler calls the parameterless base constructor implicitly, so an
explicit empty call can be deleted. ': this()' chains to another
constructor of the same type and is never flagged.`,
	Run: func(pass *Pass) {
		pass.Visit(func(n *syntax.Node) {
			if !isBaseInitializer(n) {
				return
			}
			args := n.Child(syntax.KindArgumentList)
			if args == nil || len(args.ChildrenOf(syntax.KindArgument)) != 0 {
				return
			}
			pass.ReportAt(n.Span)
		}, syntax.KindConstructorInitializer)
	},
}

func isBaseInitializer(n *syntax.Node) bool {
	if _, ok := n.Token("base"); ok {
		return true
	}
	return n.Child(syntax.KindBase) != nil
}
