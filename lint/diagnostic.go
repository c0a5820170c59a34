// Copyright © 2024 The NRefactory authors

package lint

import (
	"encoding/json"
	"fmt"

	"github.com/ezhangle/NRefactory/message"
	"github.com/ezhangle/NRefactory/syntax"
)

// Diagnostic is a single reported finding. It is never mutated after the
// pass that produced it hands it to the host.
type Diagnostic struct {
	Descriptor *Descriptor
	File       string
	Span       syntax.Span

	// Args fill the positional placeholders of Descriptor.MessageTemplate.
	Args []string

	// FixID names the fix a host may offer, "" when there is none.
	FixID string

	Severity Severity

	// Notes are optional hint text lines for the user.
	Notes []string
}

// ID returns the descriptor id.
func (d Diagnostic) ID() string {
	if d.Descriptor == nil {
		return ""
	}
	return d.Descriptor.ID
}

// Pos returns the start of the diagnostic span.
func (d Diagnostic) Pos() Position {
	return Position{File: d.File, Line: d.Span.Start.Line, Col: d.Span.Start.Col}
}

// Message renders the message with the default English provider.
func (d Diagnostic) Message() string {
	return d.MessageWith(message.Default)
}

// MessageWith renders the message with p.
func (d Diagnostic) MessageWith(p message.Provider) string {
	if d.Descriptor == nil {
		return ""
	}
	if p == nil {
		p = message.Default
	}
	return p.Format(d.Descriptor.MessageTemplate, d.Args...)
}

// Position identifies a location in source code.
type Position struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col,omitempty"`
}

// String returns the position in file:line:col format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic in go vet style: file:line:col: message (id)
// with optional note lines appended.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Pos(), d.Message(), d.ID())
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// WirePos is the serialized form of a syntax.Pos.
type WirePos struct {
	Offset int `json:"offset" msgpack:"o"`
	Line   int `json:"line" msgpack:"l"`
	Col    int `json:"col" msgpack:"c"`
}

// WireSpan is the serialized form of a syntax.Span.
type WireSpan struct {
	Start WirePos `json:"start" msgpack:"s"`
	End   WirePos `json:"end" msgpack:"e"`
}

// WireDiagnostic is the serialized form of a Diagnostic shared by JSON
// output, the result cache and editor integrations. Its fields are a
// compatibility contract.
type WireDiagnostic struct {
	ID       string   `json:"id" msgpack:"id"`
	File     string   `json:"file" msgpack:"file"`
	Span     WireSpan `json:"span" msgpack:"span"`
	Args     []string `json:"args,omitempty" msgpack:"args,omitempty"`
	Fix      string   `json:"fix,omitempty" msgpack:"fix,omitempty"`
	Severity Severity `json:"severity" msgpack:"sev"`
	Message  string   `json:"message" msgpack:"-"`
	Notes    []string `json:"notes,omitempty" msgpack:"notes,omitempty"`
}

func wirePos(p syntax.Pos) WirePos {
	return WirePos{Offset: p.Offset, Line: p.Line, Col: p.Col}
}

func (p WirePos) pos() syntax.Pos {
	return syntax.Pos{Offset: p.Offset, Line: p.Line, Col: p.Col}
}

// Wire converts d to its serialized form.
func (d Diagnostic) Wire() WireDiagnostic {
	return WireDiagnostic{
		ID:       d.ID(),
		File:     d.File,
		Span:     WireSpan{Start: wirePos(d.Span.Start), End: wirePos(d.Span.End)},
		Args:     d.Args,
		Fix:      d.FixID,
		Severity: d.Severity,
		Message:  d.Message(),
		Notes:    d.Notes,
	}
}

// FromWire rebuilds a diagnostic, looking its descriptor up in cat.
func FromWire(w WireDiagnostic, cat *Catalog) (Diagnostic, error) {
	desc, ok := cat.Lookup(w.ID)
	if !ok {
		return Diagnostic{}, fmt.Errorf("unknown diagnostic id: %q", w.ID)
	}
	return Diagnostic{
		Descriptor: desc,
		File:       w.File,
		Span:       syntax.Span{Start: w.Span.Start.pos(), End: w.Span.End.pos()},
		Args:       w.Args,
		FixID:      w.Fix,
		Severity:   w.Severity,
		Notes:      w.Notes,
	}, nil
}

// MarshalJSON encodes the wire format.
func (d Diagnostic) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Wire())
}

// UnmarshalJSON decodes the wire format against DefaultCatalog.
func (d *Diagnostic) UnmarshalJSON(data []byte) error {
	var w WireDiagnostic
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	v, err := FromWire(w, DefaultCatalog)
	if err != nil {
		return err
	}
	*d = v
	return nil
}
