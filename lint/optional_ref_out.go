// Copyright © 2024 The NRefactory authors

package lint

import "github.com/ezhangle/NRefactory/syntax"

const optionalAttribute = "System.Runtime.InteropServices.OptionalAttribute"

// AnalyzerOptionalParameterRefOut flags ref and out parameters marked
// [Optional].
var AnalyzerOptionalParameterRefOut = &Analyzer{
	Desc: &Descriptor{
		ID:               IDOptionalParameterRefOut,
		Name:             "optional-parameter-ref-out",
		Title:            "C# doesn't support optional 'ref' or 'out' parameters",
		MessageTemplate:  "C# doesn't support optional 'ref' or 'out' parameters",
		Category:         CategoryCodeQuality,
		DefaultSeverity:  SeverityWarning,
		EnabledByDefault: true,
		HelpLink:         HelpLinkFor(IDOptionalParameterRefOut),
	},
	Doc: `Flag [Optional] on ref and out parameters.

System.Runtime.InteropServices.OptionalAttribute is ignored by the C#
compiler for by-reference parameters; callers must still pass an argument.`,
	Run: func(pass *Pass) {
		pass.Visit(func(n *syntax.Node) {
			if !n.HasModifier("ref") && !n.HasModifier("out") {
				return
			}
			for _, list := range n.ChildrenOf(syntax.KindAttributeList) {
				for _, attr := range list.ChildrenOf(syntax.KindAttribute) {
					if pass.Semantics.AttributeType(attr) == optionalAttribute {
						pass.ReportAt(n.Span)
						return
					}
				}
			}
		}, syntax.KindParameter)
	},
}
