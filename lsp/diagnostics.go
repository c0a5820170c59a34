// Copyright © 2024 The NRefactory authors

package lsp

import (
	"fmt"
	"strings"
	"time"

	"github.com/ezhangle/NRefactory/lint"
	"github.com/ezhangle/NRefactory/parser"
	"github.com/sirupsen/logrus"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const defaultDebounce = 300 * time.Millisecond

// textDocumentDidOpen handles the textDocument/didOpen notification.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	doc := s.docs.Open(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		params.TextDocument.Text,
	)
	s.analyzeAndPublish(doc)
	return nil
}

// textDocumentDidChange handles the textDocument/didChange notification.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	// Installing the new snapshot cancels the pass over the old one.
	doc := s.docs.Change(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		content,
	)

	s.debounceMu.Lock()
	if t, ok := s.debounce[doc.URI]; ok {
		t.Stop()
	}
	s.debounce[doc.URI] = time.AfterFunc(s.debounceDelay, func() {
		defer s.recoverPanic(doc.URI)
		if d := s.docs.Get(doc.URI); d != nil {
			s.analyzeAndPublish(d)
		}
	})
	s.debounceMu.Unlock()
	return nil
}

// textDocumentDidSave handles the textDocument/didSave notification.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	s.stopDebounce(params.TextDocument.URI)
	if doc := s.docs.Get(params.TextDocument.URI); doc != nil {
		s.analyzeAndPublish(doc)
	}
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.stopDebounce(params.TextDocument.URI)
	s.docs.Close(params.TextDocument.URI)

	// Clear diagnostics for the closed file.
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (s *Server) stopDebounce(uri string) {
	s.debounceMu.Lock()
	if t, ok := s.debounce[uri]; ok {
		t.Stop()
		delete(s.debounce, uri)
	}
	s.debounceMu.Unlock()
}

func (s *Server) recoverPanic(uri string) {
	if r := recover(); r != nil {
		s.log.WithField("uri", uri).Errorf("analysis panic: %v", r)
	}
}

// analyzeAndPublish lints the current snapshot of doc and publishes the
// result. A pass that is canceled or overtaken by a newer edit publishes
// nothing.
func (s *Server) analyzeAndPublish(doc *Document) {
	ctx, snap := doc.beginPass(s.ctx)
	if snap == nil {
		return
	}
	log := s.log.WithFields(logrus.Fields{"uri": doc.URI, "version": snap.Version})

	var lintDiags []lint.Diagnostic
	if snap.File != nil {
		res := s.linter.Run(ctx, snap.File.Tree, snap.Model)
		if res.Canceled {
			log.Debug("pass canceled")
			return
		}
		for _, id := range res.Disabled {
			log.WithField("rule", id).Warn("rule disabled after panic")
		}
		lintDiags = lint.Suppress(snap.File.Tree, res.Diagnostics)
		lint.SortDiagnostics(lintDiags)
	}
	if !doc.endPass(snap, lintDiags) {
		log.Debug("dropping stale result")
		return
	}

	diags := []protocol.Diagnostic{}
	if snap.ParseErr != nil {
		diags = append(diags, protocol.Diagnostic{
			Severity: severity(protocol.DiagnosticSeverityError),
			Source:   strPtr(parserSource),
			Message:  snap.ParseErr.Error(),
		})
	}
	if snap.File != nil {
		for _, e := range snap.File.Errors {
			diags = append(diags, convertSyntaxError(snap.lines, e))
		}
	}
	for _, d := range lintDiags {
		diags = append(diags, convertLintDiagnostic(snap.lines, d))
	}

	version := safeUint(int(snap.Version))
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     &version,
		Diagnostics: diags,
	})
}

// convertLintDiagnostic converts a lint.Diagnostic to an LSP Diagnostic.
func convertLintDiagnostic(lines *lineIndex, d lint.Diagnostic) protocol.Diagnostic {
	msg := d.Message()
	if len(d.Notes) > 0 {
		msg += "\n" + strings.Join(d.Notes, "\n")
	}
	pd := protocol.Diagnostic{
		Range:    lines.rangeOf(d.Span),
		Severity: severity(mapLintSeverity(d.Severity)),
		Source:   strPtr(diagnosticSource),
		Code:     &protocol.IntegerOrString{Value: d.ID()},
		Message:  msg,
	}
	if desc := d.Descriptor; desc != nil {
		if desc.HelpLink != "" {
			pd.CodeDescription = &protocol.CodeDescription{HRef: desc.HelpLink}
		}
		if desc.HasTag(lint.TagUnnecessary) {
			pd.Tags = []protocol.DiagnosticTag{protocol.DiagnosticTagUnnecessary}
		}
	}
	if d.FixID != "" {
		pd.Data = d.FixID
	}
	return pd
}

// convertSyntaxError reports a region the parser could not make sense of.
func convertSyntaxError(lines *lineIndex, e *parser.SyntaxError) protocol.Diagnostic {
	msg := "syntax error"
	if e.Missing != "" {
		msg = fmt.Sprintf("syntax error: missing %q", e.Missing)
	}
	return protocol.Diagnostic{
		Range:    lines.rangeOf(e.Span),
		Severity: severity(protocol.DiagnosticSeverityError),
		Source:   strPtr(parserSource),
		Message:  msg,
	}
}

// mapLintSeverity converts a lint.Severity to a protocol.DiagnosticSeverity.
func mapLintSeverity(sev lint.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case lint.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityWarning
	}
}

func severity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func strPtr(s string) *string {
	return &s
}
