// Copyright © 2024 The NRefactory authors

package lint

import (
	"bytes"
	"strings"

	"github.com/ezhangle/NRefactory/syntax"
	parsec "github.com/prataprc/goparsec"
)

// Suppress removes diagnostics silenced in source. Two forms are honored:
//
//	#pragma warning disable NR0030, redundant-comma-in-initializer
//	#pragma warning restore NR0030
//
// which silence every diagnostic starting between the two directives (no
// ids means all rules), and trailing line comments
//
//	internal class Foo {} // nolint:NR0030
//
// which silence diagnostics starting on the comment's line. A bare
// "// nolint" silences every rule on that line.
func Suppress(tree *syntax.Tree, diags []Diagnostic) []Diagnostic {
	if tree == nil || len(diags) == 0 {
		return diags
	}
	pragmas := scanPragmas(tree)
	nolint := nolintLines(tree.Comments)
	if len(pragmas) == 0 && len(nolint) == 0 {
		return diags
	}
	var filtered []Diagnostic
	for _, d := range diags {
		if directive, ok := nolint[d.Span.Start.Line]; ok && directive.covers(d) {
			continue
		}
		if disabledByPragma(pragmas, d) {
			continue
		}
		filtered = append(filtered, d)
	}
	return filtered
}

// ruleList is a set of rule ids or names. An empty list covers every rule.
type ruleList []string

func (l ruleList) covers(d Diagnostic) bool {
	if len(l) == 0 {
		return true
	}
	for _, id := range l {
		if d.Descriptor != nil && d.Descriptor.Matches(id) {
			return true
		}
	}
	return false
}

type pragma struct {
	line    int
	disable bool
	rules   ruleList
}

func disabledByPragma(pragmas []pragma, d Diagnostic) bool {
	off := false
	for _, p := range pragmas {
		if p.line > d.Span.Start.Line {
			break
		}
		if p.rules.covers(d) {
			off = p.disable
		}
	}
	return off
}

// scanPragmas returns the warning pragmas of tree in line order. Lines
// that start inside a comment or a string literal are not directives.
func scanPragmas(tree *syntax.Tree) []pragma {
	var out []pragma
	parser := newPragmaParser()
	offset := 0
	for i, line := range bytes.Split(tree.Source, []byte("\n")) {
		start := offset
		offset += len(line) + 1
		trimmed := bytes.TrimSpace(line)
		if !bytes.HasPrefix(trimmed, []byte("#")) {
			continue
		}
		if quoted(tree, start+bytes.IndexByte(line, '#')) {
			continue
		}
		node, _ := parser(parsec.NewScanner(trimmed))
		p, ok := node.(*pragma)
		if !ok {
			continue
		}
		p.line = i + 1
		out = append(out, *p)
	}
	return out
}

// quoted reports whether offset lies inside a comment or literal of tree.
func quoted(tree *syntax.Tree, offset int) bool {
	for _, c := range tree.Comments {
		if c.Span.Start.Offset <= offset && offset < c.Span.End.Offset {
			return true
		}
	}
	for _, sp := range tree.Literals {
		if sp.Start.Offset <= offset && offset < sp.End.Offset {
			return true
		}
	}
	return false
}

func newPragmaParser() parsec.Parser {
	directive := parsec.Token(`#\s*pragma\b`, "PRAGMA")
	warning := parsec.Token(`warning\b`, "WARNING")
	action := parsec.Token(`(disable|restore)\b`, "ACTION")
	id := parsec.Token(`[A-Za-z_][A-Za-z0-9_\-]*`, "ID")
	comma := parsec.Atom(",", "COMMA")
	ids := parsec.Kleene(nil, id, comma)
	return parsec.And(nodifyPragma, directive, warning, action, ids)
}

func nodifyPragma(nodes []parsec.ParsecNode) parsec.ParsecNode {
	p := &pragma{}
	for _, t := range terminals(nodes) {
		switch t.Name {
		case "ACTION":
			p.disable = t.Value == "disable"
		case "ID":
			p.rules = append(p.rules, t.Value)
		}
	}
	return p
}

// terminals flattens a parsec result into its terminal tokens.
func terminals(node parsec.ParsecNode) []*parsec.Terminal {
	switch n := node.(type) {
	case *parsec.Terminal:
		return []*parsec.Terminal{n}
	case []parsec.ParsecNode:
		var out []*parsec.Terminal
		for _, c := range n {
			out = append(out, terminals(c)...)
		}
		return out
	}
	return nil
}

// nolintLines maps line numbers to the rules silenced by a nolint comment
// on that line.
func nolintLines(comments []syntax.Token) map[int]ruleList {
	lines := make(map[int]ruleList)
	for _, c := range comments {
		text := strings.TrimSpace(c.Text)
		if !strings.HasPrefix(text, "//") {
			continue
		}
		text = strings.TrimSpace(strings.TrimPrefix(text, "//"))
		if !strings.HasPrefix(text, "nolint") {
			continue
		}
		rest := strings.TrimPrefix(text, "nolint")
		if rest == "" || strings.HasPrefix(rest, " ") {
			lines[c.Span.Start.Line] = nil
			continue
		}
		if !strings.HasPrefix(rest, ":") {
			continue
		}
		var ids ruleList
		for _, id := range strings.Split(strings.TrimPrefix(rest, ":"), ",") {
			id = strings.TrimSpace(id)
			// Free text after the list ends it.
			if i := strings.IndexAny(id, " \t"); i >= 0 {
				if id = id[:i]; id != "" {
					ids = append(ids, id)
				}
				break
			}
			if id != "" {
				ids = append(ids, id)
			}
		}
		if len(ids) > 0 {
			lines[c.Span.Start.Line] = ids
		}
	}
	return lines
}
