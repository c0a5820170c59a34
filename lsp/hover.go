// Copyright © 2024 The NRefactory authors

package lsp

import (
	"fmt"
	"strings"

	"github.com/ezhangle/NRefactory/docs"
	"github.com/ezhangle/NRefactory/lint"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentHover handles the textDocument/hover request. Hovering a
// finding explains the rule that produced it.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	snap := doc.current()
	if snap == nil {
		return nil, nil
	}

	var parts []string
	var hit *protocol.Range
	seen := make(map[string]bool)
	for _, d := range doc.Diagnostics() {
		r := snap.lines.rangeOf(d.Span)
		if !containsPos(r, params.Position) || seen[d.ID()] {
			continue
		}
		seen[d.ID()] = true
		parts = append(parts, s.hoverContent(d))
		if hit == nil {
			hit = &r
		}
	}
	if len(parts) == 0 {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: strings.Join(parts, "\n\n---\n\n"),
		},
		Range: hit,
	}, nil
}

// hoverContent builds Markdown hover text for a finding.
func (s *Server) hoverContent(d lint.Diagnostic) string {
	var sb strings.Builder
	desc := d.Descriptor
	if desc == nil {
		return d.Message()
	}

	// Header: **NR0030** `redundant-internal` (warning)
	fmt.Fprintf(&sb, "**%s** `%s` (%s)\n\n%s", desc.ID, desc.Name, d.Severity, desc.Title)

	if page, ok := docs.Rule(desc.ID); ok {
		body := docs.Summary(page)
		// The first paragraph restates the title.
		if _, rest, ok := strings.Cut(body, "\n\n"); ok {
			body = rest
		}
		if body != "" {
			sb.WriteString("\n\n")
			sb.WriteString(body)
		}
	} else if doc := s.ruleDoc(desc.ID); doc != "" {
		sb.WriteString("\n\n")
		sb.WriteString(doc)
	}

	if desc.Fix != nil {
		fmt.Fprintf(&sb, "\n\nFix: %s", desc.Fix.Title)
	}
	if desc.HelpLink != "" {
		fmt.Fprintf(&sb, "\n\n[Documentation](%s)", desc.HelpLink)
	}
	return sb.String()
}
