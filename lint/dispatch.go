// Copyright © 2024 The NRefactory authors

package lint

import (
	"context"
	"io"

	"github.com/ezhangle/NRefactory/syntax"
	"github.com/sirupsen/logrus"
)

// Handler inspects one node. Returning false stops the registering rule
// from seeing the node's subtree; other rules still do.
type Handler func(n *syntax.Node) bool

type handler struct {
	client *client
	fn     Handler
}

// client is the dispatcher's view of one rule in a combined pass.
type client struct {
	id       string
	terminal map[syntax.Kind]bool
	end      []func()
	disabled bool
	// mutedBy is the node whose subtree the client is not visiting, nil
	// while the client is active.
	mutedBy *syntax.Node
}

// Dispatcher walks a tree once, depth-first and pre-order, calling every
// handler registered for each node's kind. Handlers for one kind run in
// registration order. Kinds nobody handles are recursed into unchanged.
//
// A Dispatcher serves one pass and is not safe for concurrent use.
type Dispatcher struct {
	handlers map[syntax.Kind][]handler
	clients  []*client
	log      logrus.FieldLogger
}

// NewDispatcher returns an empty dispatcher. log receives a message when a
// handler panics; nil discards them.
func NewDispatcher(log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Dispatcher{
		handlers: make(map[syntax.Kind][]handler),
		log:      log,
	}
}

func (d *Dispatcher) newClient(id string) *client {
	c := &client{id: id, terminal: make(map[syntax.Kind]bool)}
	d.clients = append(d.clients, c)
	return c
}

func (d *Dispatcher) on(c *client, fn Handler, kinds ...syntax.Kind) {
	for _, k := range kinds {
		d.handlers[k] = append(d.handlers[k], handler{client: c, fn: fn})
	}
}

// Walk traverses root. It checks ctx at every node and returns ctx.Err()
// as soon as it is done; the caller discards whatever was reported.
func (d *Dispatcher) Walk(ctx context.Context, root *syntax.Node) error {
	if root == nil {
		return ctx.Err()
	}
	return d.walk(ctx, root)
}

func (d *Dispatcher) walk(ctx context.Context, n *syntax.Node) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var muted []*client
	for _, h := range d.handlers[n.Kind] {
		c := h.client
		if c.disabled || c.mutedBy != nil {
			continue
		}
		if !d.call(c, h.fn, n) && !c.disabled {
			c.mutedBy = n
			muted = append(muted, c)
		}
	}
	for _, c := range d.clients {
		if c.mutedBy == nil && !c.disabled && c.terminal[n.Kind] {
			c.mutedBy = n
			muted = append(muted, c)
		}
	}
	if d.active() {
		for _, child := range n.Children {
			if err := d.walk(ctx, child); err != nil {
				return err
			}
		}
	}
	for _, c := range muted {
		c.mutedBy = nil
	}
	return nil
}

// active reports whether any client is still visiting.
func (d *Dispatcher) active() bool {
	for _, c := range d.clients {
		if !c.disabled && c.mutedBy == nil {
			return true
		}
	}
	return false
}

// call runs one handler. A panic disables the client for the rest of the
// pass instead of failing it.
func (d *Dispatcher) call(c *client, fn Handler, n *syntax.Node) (cont bool) {
	defer func() {
		if r := recover(); r != nil {
			c.disabled = true
			cont = false
			d.log.WithFields(logrus.Fields{
				"rule": c.id,
				"node": n.String(),
			}).Errorf("rule disabled after panic: %v", r)
		}
	}()
	return fn(n)
}

// finish runs end-of-pass hooks of every client that is still enabled.
func (d *Dispatcher) finish(ctx context.Context) error {
	for _, c := range d.clients {
		for _, fn := range c.end {
			if err := ctx.Err(); err != nil {
				return err
			}
			if c.disabled {
				break
			}
			d.callEnd(c, fn)
		}
	}
	return nil
}

func (d *Dispatcher) callEnd(c *client, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.disabled = true
			d.log.WithField("rule", c.id).Errorf("rule disabled after panic: %v", r)
		}
	}()
	fn()
}

// Disabled returns the ids of rules disabled by a panic during the pass.
func (d *Dispatcher) Disabled() []string {
	var ids []string
	for _, c := range d.clients {
		if c.disabled {
			ids = append(ids, c.id)
		}
	}
	return ids
}
