// Copyright © 2024 The NRefactory authors

package cmd

import (
	"io"

	"github.com/ezhangle/NRefactory/diagnostic"
	"github.com/ezhangle/NRefactory/lint"
	"github.com/ezhangle/NRefactory/parser"
)

func newRenderer(color string, src map[string][]byte) *diagnostic.Renderer {
	r := &diagnostic.Renderer{Color: diagnostic.ParseColorMode(color)}
	if len(src) > 0 {
		r.SourceReader = func(name string) ([]byte, error) {
			if b, ok := src[name]; ok {
				return b, nil
			}
			return readFile(name)
		}
	}
	return r
}

// lintDiagToDiagnostic converts a lint.Diagnostic to a diagnostic.Diagnostic.
func lintDiagToDiagnostic(ld lint.Diagnostic) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityWarning,
		Code:     ld.ID(),
		Message:  ld.Message(),
	}
	if ld.Severity == lint.SeverityInfo {
		d.Severity = diagnostic.SeverityInfo
	}
	if ld.Span.Start.Line > 0 {
		span := diagnostic.Span{
			File: ld.File,
			Line: ld.Span.Start.Line,
			Col:  ld.Span.Start.Col,
		}
		if ld.Span.End.Line == ld.Span.Start.Line && ld.Span.End.Col > ld.Span.Start.Col {
			span.EndCol = ld.Span.End.Col - 1
		}
		d.Spans = append(d.Spans, span)
	}
	d.Notes = append(d.Notes, ld.Notes...)
	if desc := ld.Descriptor; desc != nil {
		if desc.Fix != nil {
			d.Notes = append(d.Notes, "fix: "+desc.Fix.Title)
		}
		d.Help = desc.HelpLink
	}
	d.Notes = append(d.Notes, "to suppress: add \"// nolint:"+ld.ID()+"\" as a comment on this line")
	return d
}

// syntaxErrorToDiagnostic converts a parse error to an error diagnostic.
func syntaxErrorToDiagnostic(se *parser.SyntaxError) diagnostic.Diagnostic {
	msg := "syntax error"
	if se.Missing != "" {
		msg = "syntax error: missing " + se.Missing
	}
	span := diagnostic.Span{File: se.File, Line: se.Span.Start.Line, Col: se.Span.Start.Col}
	if se.Span.End.Line == se.Span.Start.Line && se.Span.End.Col > se.Span.Start.Col {
		span.EndCol = se.Span.End.Col - 1
	}
	return diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Message:  msg,
		Spans:    []diagnostic.Span{span},
	}
}

// renderResults renders syntax errors and lint diagnostics of results to w.
func renderResults(w io.Writer, r *diagnostic.Renderer, results []*lint.Result) error {
	var ds []diagnostic.Diagnostic
	for _, res := range results {
		if res == nil {
			continue
		}
		for _, se := range res.SyntaxErrors {
			ds = append(ds, syntaxErrorToDiagnostic(se))
		}
		for _, ld := range res.Diagnostics {
			ds = append(ds, lintDiagToDiagnostic(ld))
		}
	}
	return r.RenderAll(w, ds)
}
