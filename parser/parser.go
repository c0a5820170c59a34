// Copyright © 2024 The NRefactory authors

// Package parser turns C# source into a syntax.Tree using the tree-sitter C#
// grammar.
//
// Tree-sitter never fails on malformed input; it inserts ERROR and MISSING
// nodes instead. Those are reported as SyntaxErrors alongside the tree so
// callers can still lint whatever parsed.
package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ezhangle/NRefactory/syntax"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
)

// ErrAborted is returned when tree-sitter gives up without producing a tree.
var ErrAborted = errors.New("parse aborted")

// SyntaxError is a region the grammar could not make sense of.
type SyntaxError struct {
	File    string
	Span    syntax.Span
	Missing string // expected token for MISSING nodes, "" for ERROR nodes
}

func (e *SyntaxError) Error() string {
	if e.Missing != "" {
		return fmt.Sprintf("%s:%d:%d: syntax error: missing %q", e.File, e.Span.Start.Line, e.Span.Start.Col, e.Missing)
	}
	return fmt.Sprintf("%s:%d:%d: syntax error", e.File, e.Span.Start.Line, e.Span.Start.Col)
}

// File is the result of parsing one source file.
type File struct {
	Tree   *syntax.Tree
	Errors []*SyntaxError
}

// Parse parses src. The returned error is non-nil only when parsing could
// not run at all (for example when ctx is cancelled); syntax errors are
// returned in File.Errors.
func Parse(ctx context.Context, filename string, src []byte) (*File, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(csharp.GetLanguage())

	tsTree, err := p.ParseCtx(ctx, nil, src)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	if tsTree == nil {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		return nil, fmt.Errorf("%s: %w", filename, ErrAborted)
	}
	defer tsTree.Close()

	c := &converter{
		filename: filename,
		src:      src,
		tree:     &syntax.Tree{Filename: filename, Source: src},
	}
	c.tree.Root = c.convert(tsTree.RootNode(), nil)
	if c.tree.Root == nil {
		c.tree.Root = &syntax.Node{Kind: syntax.KindCompilationUnit}
	}
	// The root always covers the whole file, including leading and trailing
	// trivia tree-sitter leaves outside of compilation_unit.
	c.tree.Root.Span = syntax.Span{
		Start: syntax.Pos{Offset: 0, Line: 1, Col: 1},
		End:   endPos(src),
	}
	return &File{Tree: c.tree, Errors: c.errors}, nil
}

// kindByType maps tree-sitter node types to syntax kinds. Types missing from
// the table become syntax.KindOther.
var kindByType = map[string]syntax.Kind{
	"compilation_unit":                    syntax.KindCompilationUnit,
	"using_directive":                     syntax.KindUsing,
	"namespace_declaration":               syntax.KindNamespace,
	"file_scoped_namespace_declaration":   syntax.KindNamespace,
	"class_declaration":                   syntax.KindClass,
	"struct_declaration":                  syntax.KindStruct,
	"interface_declaration":               syntax.KindInterface,
	"record_declaration":                  syntax.KindRecord,
	"record_struct_declaration":           syntax.KindRecord,
	"enum_declaration":                    syntax.KindEnum,
	"enum_member_declaration":             syntax.KindEnumMember,
	"delegate_declaration":                syntax.KindDelegate,
	"field_declaration":                   syntax.KindField,
	"event_field_declaration":             syntax.KindEventField,
	"event_declaration":                   syntax.KindEvent,
	"property_declaration":                syntax.KindProperty,
	"accessor_declaration":                syntax.KindAccessor,
	"method_declaration":                  syntax.KindMethod,
	"constructor_declaration":             syntax.KindConstructor,
	"destructor_declaration":              syntax.KindDestructor,
	"constructor_initializer":             syntax.KindConstructorInitializer,
	"parameter_list":                      syntax.KindParameterList,
	"parameter":                           syntax.KindParameter,
	"attribute_list":                      syntax.KindAttributeList,
	"attribute":                           syntax.KindAttribute,
	"base_list":                           syntax.KindBaseList,
	"variable_declaration":                syntax.KindVariableDeclaration,
	"variable_declarator":                 syntax.KindVariableDeclarator,
	"block":                               syntax.KindBlock,
	"assignment_expression":               syntax.KindAssignment,
	"invocation_expression":               syntax.KindInvocation,
	"argument_list":                       syntax.KindArgumentList,
	"argument":                            syntax.KindArgument,
	"object_creation_expression":          syntax.KindObjectCreation,
	"implicit_object_creation_expression": syntax.KindObjectCreation,
	"array_creation_expression":           syntax.KindArrayCreation,
	"implicit_array_creation_expression":  syntax.KindArrayCreation,
	"initializer_expression":              syntax.KindInitializer,
	"lambda_expression":                   syntax.KindLambda,
	"anonymous_method_expression":         syntax.KindAnonymousMethod,
	"member_access_expression":            syntax.KindMemberAccess,
	"identifier":                          syntax.KindIdentifier,
	"generic_name":                        syntax.KindIdentifier,
	"qualified_name":                      syntax.KindQualifiedName,
	"alias_qualified_name":                syntax.KindQualifiedName,
	"this_expression":                     syntax.KindThis,
	"this":                                syntax.KindThis,
	"base_expression":                     syntax.KindBase,
	"base":                                syntax.KindBase,
	"ERROR":                               syntax.KindError,
}

// Nodes whose contents are hoisted into the parent. Member bodies become
// direct children of the type declaration that owns them.
var flattened = map[string]bool{
	"declaration_list":             true,
	"enum_member_declaration_list": true,
}

// Named nodes that are kept as tokens of their parent rather than as nodes.
var tokenTypes = map[string]bool{
	"assignment_operator": true,
}

// Literal tokens whose text may span lines. Directives inside them are not
// directives.
var literalTypes = map[string]bool{
	"string_literal":                 true,
	"verbatim_string_literal":        true,
	"raw_string_literal":             true,
	"interpolated_string_expression": true,
	"character_literal":              true,
}

var modifierTypes = map[string]bool{
	"modifier":           true,
	"parameter_modifier": true,
}

// Keywords that act as parameter modifiers when the grammar exposes them as
// anonymous tokens.
var parameterModifierKeywords = map[string]bool{
	"ref": true, "out": true, "in": true, "params": true, "this": true, "scoped": true,
}

type converter struct {
	filename string
	src      []byte
	tree     *syntax.Tree
	errors   []*SyntaxError
}

func (c *converter) convert(n *sitter.Node, parent *syntax.Node) *syntax.Node {
	if n == nil || n.IsNull() {
		return nil
	}
	typ := n.Type()
	kind, ok := kindByType[typ]
	if !ok {
		kind = syntax.KindOther
	}
	node := &syntax.Node{
		Kind:   kind,
		Span:   c.span(n),
		Parent: parent,
	}
	before := len(c.errors)
	if kind == syntax.KindError {
		c.errors = append(c.errors, &SyntaxError{File: c.filename, Span: node.Span})
	}
	if literalTypes[typ] {
		c.tree.Literals = append(c.tree.Literals, node.Span)
	}
	c.fill(node, n)
	node.Name, node.NameSpan = c.name(node, n)
	if n.HasError() && len(c.errors) == before {
		// The grammar sometimes hides a MISSING token below a zero-width
		// named node, e.g. the operand of "x = ;".
		e := &SyntaxError{File: c.filename, Span: node.Span}
		if n.StartByte() == n.EndByte() {
			e.Missing = typ
		}
		c.errors = append(c.errors, e)
	}
	return node
}

// fill converts the children of n into node's modifiers, tokens and
// children, hoisting flattened containers.
func (c *converter) fill(node *syntax.Node, n *sitter.Node) {
	count := int(n.ChildCount())
	for i := 0; i < count; i++ {
		child := n.Child(i)
		if child == nil || child.IsNull() {
			continue
		}
		typ := child.Type()
		if child.IsMissing() {
			c.errors = append(c.errors, &SyntaxError{File: c.filename, Span: c.span(child), Missing: typ})
			continue
		}
		switch {
		case typ == "comment":
			c.tree.Comments = append(c.tree.Comments, c.token(child))
		case modifierTypes[typ]:
			node.Modifiers = append(node.Modifiers, c.token(child))
		case tokenTypes[typ]:
			node.Tokens = append(node.Tokens, c.token(child))
		case flattened[typ]:
			c.fill(node, child)
		case !child.IsNamed():
			tok := c.token(child)
			if node.Kind == syntax.KindParameter && parameterModifierKeywords[tok.Text] && onlyAttributes(node) {
				node.Modifiers = append(node.Modifiers, tok)
				continue
			}
			if node.Kind == syntax.KindMemberAccess && len(node.Children) == 0 && (tok.Text == "this" || tok.Text == "base") {
				// Grammar revisions that expose this/base as bare keywords
				// still get an expression node for the receiver.
				kind := syntax.KindThis
				if tok.Text == "base" {
					kind = syntax.KindBase
				}
				node.Children = append(node.Children, &syntax.Node{Kind: kind, Name: tok.Text, Span: tok.Span, Parent: node})
				continue
			}
			node.Tokens = append(node.Tokens, tok)
		default:
			if cn := c.convert(child, node); cn != nil {
				node.Children = append(node.Children, cn)
			}
		}
	}
}

// onlyAttributes reports whether every child seen so far is an attribute
// list, i.e. the parameter's type has not started yet.
func onlyAttributes(n *syntax.Node) bool {
	for _, c := range n.Children {
		if c.Kind != syntax.KindAttributeList {
			return false
		}
	}
	return true
}

// name extracts the declared or referenced name of a node.
func (c *converter) name(node *syntax.Node, n *sitter.Node) (string, syntax.Span) {
	switch node.Kind {
	case syntax.KindIdentifier:
		if first := node.Child(syntax.KindIdentifier); first != nil {
			// generic_name: Foo<T> is named Foo.
			return first.Name, first.Span
		}
		return n.Content(c.src), node.Span
	case syntax.KindQualifiedName, syntax.KindThis, syntax.KindBase:
		return n.Content(c.src), node.Span
	case syntax.KindUsing:
		for i := len(node.Children) - 1; i >= 0; i-- {
			ch := node.Children[i]
			if ch.Kind == syntax.KindIdentifier || ch.Kind == syntax.KindQualifiedName {
				return ch.Name, ch.Span
			}
		}
		return "", syntax.Span{}
	}
	if f := n.ChildByFieldName("name"); f != nil && !f.IsNull() {
		text := f.Content(c.src)
		if i := strings.IndexByte(text, '<'); i > 0 {
			text = text[:i]
		}
		return strings.TrimSpace(text), c.span(f)
	}
	switch node.Kind {
	case syntax.KindVariableDeclarator, syntax.KindEnumMember, syntax.KindParameter:
		// Older grammar revisions do not label the name field.
		var last *syntax.Node
		for _, ch := range node.Children {
			if ch.Kind == syntax.KindIdentifier {
				last = ch
				if node.Kind != syntax.KindParameter {
					break
				}
			}
		}
		if last != nil {
			return last.Name, last.Span
		}
	}
	return "", syntax.Span{}
}

func (c *converter) token(n *sitter.Node) syntax.Token {
	return syntax.Token{Text: n.Content(c.src), Span: c.span(n)}
}

func (c *converter) span(n *sitter.Node) syntax.Span {
	sp, ep := n.StartPoint(), n.EndPoint()
	return syntax.Span{
		Start: syntax.Pos{Offset: int(n.StartByte()), Line: int(sp.Row) + 1, Col: int(sp.Column) + 1},
		End:   syntax.Pos{Offset: int(n.EndByte()), Line: int(ep.Row) + 1, Col: int(ep.Column) + 1},
	}
}

// endPos computes the position just past the last byte of src.
func endPos(src []byte) syntax.Pos {
	line, col := 1, 1
	for _, b := range src {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return syntax.Pos{Offset: len(src), Line: line, Col: col}
}
