// Copyright © 2024 The NRefactory authors

package lint

// Sink accumulates the diagnostics of one pass in the order they are
// reported. It is not safe for concurrent use; each pass owns its own.
type Sink struct {
	diags []Diagnostic
}

// Add appends d.
func (s *Sink) Add(d Diagnostic) {
	s.diags = append(s.diags, d)
}

// Diagnostics returns a copy of the collected diagnostics.
func (s *Sink) Diagnostics() []Diagnostic {
	if len(s.diags) == 0 {
		return nil
	}
	return append([]Diagnostic(nil), s.diags...)
}
