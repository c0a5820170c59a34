// Copyright © 2024 The NRefactory authors

package lsp

import (
	"fmt"
	"strings"

	"github.com/ezhangle/NRefactory/lint"
	"github.com/ezhangle/NRefactory/syntax"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentCodeAction handles the textDocument/codeAction request.
// It returns quick fixes and nolint suppressions for the findings of the
// last completed pass that overlap the requested range.
func (s *Server) textDocumentCodeAction(_ *glsp.Context, params *protocol.CodeActionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	// If the client only wants specific kinds, check we support them.
	if len(params.Context.Only) > 0 && !slicesContains(params.Context.Only, protocol.CodeActionKindQuickFix) {
		return nil, nil
	}

	snap := doc.current()
	if snap == nil {
		return nil, nil
	}
	uri := params.TextDocument.URI

	var actions []protocol.CodeAction
	for _, d := range doc.Diagnostics() {
		pd := convertLintDiagnostic(snap.lines, d)
		if !overlaps(pd.Range, params.Range) {
			continue
		}
		if a, ok := fixAction(uri, snap, d, pd); ok {
			actions = append(actions, a)
		}
		actions = append(actions, suppressLintAction(uri, snap, d, pd))
	}

	if len(actions) == 0 {
		return nil, nil
	}
	return actions, nil
}

// fixAction builds the quick fix named by the diagnostic's descriptor.
// Only removal fixes are offered; other fixes need edits the engine does
// not describe.
func fixAction(uri string, snap *snapshot, d lint.Diagnostic, pd protocol.Diagnostic) (protocol.CodeAction, bool) {
	if d.Descriptor == nil || !d.Descriptor.Fix.IsRemoval() {
		return protocol.CodeAction{}, false
	}
	start, end := removalBounds(snap.Content, d.Span)
	kind := protocol.CodeActionKindQuickFix
	return protocol.CodeAction{
		Title:       d.Descriptor.Fix.Title,
		Kind:        &kind,
		Diagnostics: []protocol.Diagnostic{pd},
		IsPreferred: boolPtr(true),
		Edit: &protocol.WorkspaceEdit{
			Changes: map[string][]protocol.TextEdit{
				uri: {{
					Range:   protocol.Range{Start: snap.lines.position(start), End: snap.lines.position(end)},
					NewText: "",
				}},
			},
		},
	}, true
}

// removalBounds returns the byte range to delete for sp. Blanks after the
// span are taken along when the span starts a word, so "internal class"
// becomes "class" while "2, }" becomes "2 }".
func removalBounds(content string, sp syntax.Span) (int, int) {
	start, end := sp.Start.Offset, sp.End.Offset
	if start < 0 || end > len(content) || start > end {
		return start, start
	}
	if start == 0 || isBlank(content[start-1]) || content[start-1] == '\n' {
		for end < len(content) && isBlank(content[end]) {
			end++
		}
	}
	return start, end
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}

// suppressLintAction creates a code action that silences the diagnostic
// with a nolint comment on its first line. An existing nolint list on the
// line is extended instead.
func suppressLintAction(uri string, snap *snapshot, d lint.Diagnostic, pd protocol.Diagnostic) protocol.CodeAction {
	id := d.ID()
	kind := protocol.CodeActionKindQuickFix
	return protocol.CodeAction{
		Title:       fmt.Sprintf("Suppress with // nolint:%s", id),
		Kind:        &kind,
		Diagnostics: []protocol.Diagnostic{pd},
		Edit: &protocol.WorkspaceEdit{
			Changes: map[string][]protocol.TextEdit{
				uri: {nolintEdit(snap, d.Span.Start.Line, id)},
			},
		},
	}
}

// nolintEdit inserts "// nolint:id" on line (1-based). A trailing comment
// already on the line is kept after the directive.
func nolintEdit(snap *snapshot, line int, id string) protocol.TextEdit {
	text := snap.lines.lineText(line - 1)
	if c, ok := trailingComment(snap, line); ok {
		body := strings.TrimSpace(strings.TrimPrefix(c.Text, "//"))
		if list, ok := strings.CutPrefix(body, "nolint:"); ok {
			// Extend the id list, which ends at the first blank.
			n := strings.IndexAny(list, " \t")
			if n < 0 {
				n = len(list)
			}
			at := c.Span.Start.Offset + strings.Index(c.Text, "nolint:") + len("nolint:") + n
			pos := snap.lines.position(at)
			return protocol.TextEdit{Range: protocol.Range{Start: pos, End: pos}, NewText: "," + id}
		}
		pos := snap.lines.position(c.Span.Start.Offset)
		return protocol.TextEdit{Range: protocol.Range{Start: pos, End: pos}, NewText: "// nolint:" + id + " "}
	}
	pos := protocol.Position{Line: safeUint(line - 1), Character: safeUint(utf16Len(text))}
	return protocol.TextEdit{Range: protocol.Range{Start: pos, End: pos}, NewText: " // nolint:" + id}
}

// trailingComment returns the // comment that starts on line, if any.
func trailingComment(snap *snapshot, line int) (syntax.Token, bool) {
	if snap.File == nil {
		return syntax.Token{}, false
	}
	for _, c := range snap.File.Tree.Comments {
		if c.Span.Start.Line == line && strings.HasPrefix(c.Text, "//") {
			return c, true
		}
	}
	return syntax.Token{}, false
}

// slicesContains checks if a string slice contains a value.
func slicesContains(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}
