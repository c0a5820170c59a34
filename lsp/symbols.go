// Copyright © 2024 The NRefactory authors

package lsp

import (
	"github.com/ezhangle/NRefactory/analysis"
	"github.com/ezhangle/NRefactory/syntax"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDocumentSymbol handles the textDocument/documentSymbol
// request with a hierarchical outline: namespaces contain types, types
// contain members.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	snap := doc.current()
	if snap == nil || snap.Model == nil {
		return nil, nil
	}
	return documentSymbols(snap.lines, snap.Model), nil
}

// documentSymbols builds the outline of res. Symbols appear in declaration
// order under their container.
func documentSymbols(lines *lineIndex, res *analysis.Result) []protocol.DocumentSymbol {
	children := make(map[*analysis.Symbol][]*analysis.Symbol)
	for _, sym := range res.Symbols {
		if sym.Decl == nil || sym.Container == nil {
			continue
		}
		children[sym.Container] = append(children[sym.Container], sym)
	}
	var build func(parent *analysis.Symbol) []protocol.DocumentSymbol
	build = func(parent *analysis.Symbol) []protocol.DocumentSymbol {
		var out []protocol.DocumentSymbol
		for _, sym := range children[parent] {
			ds := protocol.DocumentSymbol{
				Name:           symbolName(sym),
				Detail:         symbolDetail(sym),
				Kind:           mapSymbolKind(sym),
				Range:          lines.rangeOf(sym.Decl.Span),
				SelectionRange: lines.rangeOf(selectionSpan(sym)),
				Children:       build(sym),
			}
			out = append(out, ds)
		}
		return out
	}
	out := build(res.Global)
	if out == nil {
		out = []protocol.DocumentSymbol{}
	}
	return out
}

// symbolName returns the display name. Constructors show their type name.
func symbolName(sym *analysis.Symbol) string {
	if sym.Name == analysis.ConstructorName && sym.Container != nil {
		return sym.Container.Name
	}
	return sym.Name
}

func selectionSpan(sym *analysis.Symbol) syntax.Span {
	if sym.NameSpan.IsZero() {
		return sym.Decl.Span
	}
	return sym.NameSpan
}

// symbolDetail shows accessibility and staticness, e.g. "public static".
func symbolDetail(sym *analysis.Symbol) *string {
	if sym.Kind == analysis.SymNamespace {
		return nil
	}
	detail := sym.Accessibility.String()
	if sym.Static {
		detail += " static"
	}
	return &detail
}

// mapSymbolKind converts an analysis symbol to a protocol.SymbolKind.
func mapSymbolKind(sym *analysis.Symbol) protocol.SymbolKind {
	switch sym.Kind {
	case analysis.SymNamespace:
		return protocol.SymbolKindNamespace
	case analysis.SymType:
		switch sym.Decl.Kind {
		case syntax.KindStruct:
			return protocol.SymbolKindStruct
		case syntax.KindInterface:
			return protocol.SymbolKindInterface
		case syntax.KindEnum:
			return protocol.SymbolKindEnum
		}
		return protocol.SymbolKindClass
	case analysis.SymDelegate:
		return protocol.SymbolKindFunction
	case analysis.SymMethod:
		return protocol.SymbolKindMethod
	case analysis.SymConstructor:
		return protocol.SymbolKindConstructor
	case analysis.SymField:
		return protocol.SymbolKindField
	case analysis.SymProperty:
		return protocol.SymbolKindProperty
	case analysis.SymEvent:
		return protocol.SymbolKindEvent
	case analysis.SymEnumMember:
		return protocol.SymbolKindEnumMember
	default:
		return protocol.SymbolKindVariable
	}
}
