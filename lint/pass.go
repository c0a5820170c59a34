// Copyright © 2024 The NRefactory authors

package lint

import (
	"context"

	"github.com/ezhangle/NRefactory/analysis"
	"github.com/ezhangle/NRefactory/syntax"
)

// Pass provides context to one rule during one analysis pass. Rules must
// not retain it after the pass.
type Pass struct {
	// Rule is the currently running check.
	Rule Rule

	// Tree is the tree being analyzed.
	Tree *syntax.Tree

	// Semantics resolves nodes to symbols. It is never nil during a pass;
	// rules treat an unresolved node as a reason to stay silent.
	Semantics analysis.Model

	ctx      context.Context
	d        *Dispatcher
	client   *client
	sink     *Sink
	severity Severity
}

// Context returns the pass's cancellation context.
func (p *Pass) Context() context.Context { return p.ctx }

// Canceled reports whether the pass has been canceled.
func (p *Pass) Canceled() bool { return p.ctx.Err() != nil }

// Filename is the source file being analyzed.
func (p *Pass) Filename() string { return p.Tree.Filename }

// On registers fn for nodes of the given kinds. When fn returns false the
// rule stops seeing that node's subtree.
func (p *Pass) On(fn Handler, kinds ...syntax.Kind) {
	p.d.on(p.client, fn, kinds...)
}

// Visit registers fn for nodes of the given kinds. The rule keeps seeing
// their subtrees.
func (p *Pass) Visit(fn func(n *syntax.Node), kinds ...syntax.Kind) {
	p.d.on(p.client, func(n *syntax.Node) bool {
		fn(n)
		return true
	}, kinds...)
}

// Terminal declares that the rule never needs to look inside nodes of the
// given kinds. Handlers for the nodes themselves still run.
func (p *Pass) Terminal(kinds ...syntax.Kind) {
	for _, k := range kinds {
		p.client.terminal[k] = true
	}
}

// OnEnd registers fn to run after the whole tree has been walked. It does
// not run when the pass is canceled.
func (p *Pass) OnEnd(fn func()) {
	p.client.end = append(p.client.end, fn)
}

// Report records a diagnostic finding. The rule's descriptor, the file and
// the effective severity are filled in. Spans outside the tree are dropped.
func (p *Pass) Report(d Diagnostic) {
	if !p.Tree.Contains(d.Span) {
		return
	}
	if d.Descriptor == nil {
		d.Descriptor = p.Rule.Descriptor()
	}
	if d.File == "" {
		d.File = p.Tree.Filename
	}
	if d.Severity == severityUnset {
		d.Severity = p.severity
	}
	if d.FixID == "" && d.Descriptor.Fix != nil {
		d.FixID = d.Descriptor.Fix.ID
	}
	p.sink.Add(d)
}

// ReportAt is a convenience for reporting at a span with message arguments.
func (p *Pass) ReportAt(span syntax.Span, args ...string) {
	p.Report(Diagnostic{Span: span, Args: args})
}

// ReportWithNotes records a diagnostic with additional hint text.
func (p *Pass) ReportWithNotes(d Diagnostic, notes ...string) {
	d.Notes = append(d.Notes, notes...)
	p.Report(d)
}
