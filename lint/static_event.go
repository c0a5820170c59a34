// Copyright © 2024 The NRefactory authors

package lint

import (
	"github.com/ezhangle/NRefactory/analysis"
	"github.com/ezhangle/NRefactory/astutil"
	"github.com/ezhangle/NRefactory/syntax"
)

// AnalyzerStaticEventSubscription flags subscriptions to static events that
// are never undone within the compilation unit.
var AnalyzerStaticEventSubscription = &Analyzer{
	Desc: &Descriptor{
		ID:               IDStaticEventSubscription,
		Name:             "static-event-subscription",
		Title:            "Checks if static events are removed",
		MessageTemplate:  "Subscription to static events {0} may cause memory leaks",
		Category:         CategoryCodeQuality,
		DefaultSeverity:  SeverityWarning,
		EnabledByDefault: true,
		HelpLink:         HelpLinkFor(IDStaticEventSubscription),
	},
	Doc: `Flag subscriptions to static events that are never removed.

A static event keeps every subscriber reachable for the life of the
process. Within one file, each 'E += Handler' from an instance member must
be matched by an 'E -= Handler' somewhere in the same file, and lambdas or
anonymous methods can never be unsubscribed at all. Events that are
reassigned with '=' are not checked. Subscriptions made from static
methods and static constructors are exempt.`,
	Run: func(pass *Pass) {
		acc := newEventSubscriptions()
		pass.Visit(func(n *syntax.Node) {
			acc.record(pass.Semantics, n)
		}, syntax.KindAssignment)
		pass.OnEnd(func() {
			for _, s := range acc.leaks() {
				arg := "without unsubscription"
				if s.handler == nil {
					arg = "with an anonymous method"
				}
				pass.ReportAt(s.site, arg)
			}
		})
	},
}

type subscription struct {
	event *analysis.Symbol
	// handler is nil for lambdas and anonymous methods.
	handler *analysis.Symbol
	site    syntax.Span
}

// eventSubscriptions accumulates the event assignments of one pass.
type eventSubscriptions struct {
	added      []subscription
	removed    map[*analysis.Symbol]map[*analysis.Symbol]bool
	reassigned map[*analysis.Symbol]bool
}

func newEventSubscriptions() *eventSubscriptions {
	return &eventSubscriptions{
		removed:    make(map[*analysis.Symbol]map[*analysis.Symbol]bool),
		reassigned: make(map[*analysis.Symbol]bool),
	}
}

func (acc *eventSubscriptions) record(model analysis.Model, n *syntax.Node) {
	if len(n.Children) < 2 || isStaticContext(n) {
		return
	}
	event := model.Symbol(n.Children[0])
	if event == nil || event.Kind != analysis.SymEvent || !event.Static {
		return
	}
	right := n.Children[len(n.Children)-1]
	switch op, ok := assignmentOperator(n); {
	case !ok:
		return
	case op.Text == "=":
		acc.reassigned[event] = true
	case op.Text == "+=":
		if right.Kind == syntax.KindLambda || right.Kind == syntax.KindAnonymousMethod {
			acc.added = append(acc.added, subscription{event: event, site: op.Span})
			return
		}
		if handler := handlerMethod(model, right); handler != nil {
			acc.added = append(acc.added, subscription{event: event, handler: handler, site: op.Span})
		}
	case op.Text == "-=":
		handler := handlerMethod(model, right)
		if handler == nil {
			return
		}
		if acc.removed[event] == nil {
			acc.removed[event] = make(map[*analysis.Symbol]bool)
		}
		acc.removed[event][handler] = true
	}
}

// leaks returns the subscriptions left after removing unsubscribed pairs
// and reassigned events, in the order they were made.
func (acc *eventSubscriptions) leaks() []subscription {
	var out []subscription
	for _, s := range acc.added {
		if acc.reassigned[s.event] {
			continue
		}
		if s.handler != nil && acc.removed[s.event][s.handler] {
			continue
		}
		out = append(out, s)
	}
	return out
}

func assignmentOperator(n *syntax.Node) (syntax.Token, bool) {
	for _, t := range n.Tokens {
		switch t.Text {
		case "=", "+=", "-=":
			return t, true
		}
	}
	return syntax.Token{}, false
}

// handlerMethod returns the method n names when it resolves to exactly one.
func handlerMethod(model analysis.Model, n *syntax.Node) *analysis.Symbol {
	if n.Kind != syntax.KindIdentifier && n.Kind != syntax.KindMemberAccess {
		return nil
	}
	cands := model.Candidates(n)
	if len(cands) != 1 || cands[0].Kind != analysis.SymMethod {
		return nil
	}
	return cands[0]
}

// isStaticContext reports whether n runs inside a static method or a static
// constructor.
func isStaticContext(n *syntax.Node) bool {
	member := astutil.Enclosing(n, syntax.KindMethod, syntax.KindConstructor)
	return member != nil && member.HasModifier("static")
}
