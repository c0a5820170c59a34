// Copyright © 2024 The NRefactory authors

package lint

import (
	"github.com/ezhangle/NRefactory/analysis"
	"github.com/ezhangle/NRefactory/astutil"
	"github.com/ezhangle/NRefactory/syntax"
)

// AnalyzerRedundantInternal flags an explicit 'internal' on a top-level type
// or delegate, where internal is already the default accessibility.
var AnalyzerRedundantInternal = &Analyzer{
	Desc: &Descriptor{
		ID:               IDRedundantInternal,
		Name:             "redundant-internal",
		Title:            "Removes 'internal' modifiers that are not required",
		MessageTemplate:  "'internal' modifier is redundant",
		Category:         CategoryRedundancy,
		DefaultSeverity:  SeverityWarning,
		EnabledByDefault: true,
		HelpLink:         HelpLinkFor(IDRedundantInternal),
		Tags:             []string{TagUnnecessary},
		Fix:              FixRemoveModifier,
	},
	Doc: `Flag 'internal' modifiers that restate the default accessibility.

A type or delegate declared directly in a namespace (or at file scope) is
internal unless stated otherwise, so writing 'internal' on it changes
nothing. Nested types default to private and are never flagged.

    internal class Foo {}             // flagged
    public class Foo {
        internal class Bar {}         // not flagged
    }`,
	Run: func(pass *Pass) {
		// Enum bodies hold nothing this rule looks at.
		pass.Terminal(syntax.KindEnum)
		pass.Visit(func(n *syntax.Node) {
			if astutil.IsNested(n) {
				return
			}
			if analysis.DefaultAccessibility(n) != analysis.AccessInternal {
				return
			}
			tok, ok := n.Modifier("internal")
			if !ok {
				return
			}
			pass.ReportAt(tok.Span)
		},
			syntax.KindClass,
			syntax.KindStruct,
			syntax.KindInterface,
			syntax.KindRecord,
			syntax.KindEnum,
			syntax.KindDelegate,
		)
	},
}
