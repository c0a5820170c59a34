// Copyright © 2024 The NRefactory authors

package lint

import (
	"testing"

	"github.com/ezhangle/NRefactory/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNolint_SuppressAll(t *testing.T) {
	source := "internal class A {} // nolint\ninternal class B {}\n"
	diags := lintSource(t, source)
	require.Len(t, diags, 1)
	assert.Equal(t, 2, diags[0].Pos().Line)
}

func TestNolint_SuppressSpecific(t *testing.T) {
	source := "internal class A {} //nolint:NR0030\n"
	assertNoDiags(t, lintSource(t, source))
}

func TestNolint_SuppressByName(t *testing.T) {
	source := "internal class A {} // nolint:redundant-internal\n"
	assertNoDiags(t, lintSource(t, source))
}

func TestNolint_DifferentCheck(t *testing.T) {
	source := "internal class A {} // nolint:NR0032\n"
	diags := lintSource(t, source)
	require.Len(t, diags, 1)
	assert.Equal(t, IDRedundantInternal, diags[0].ID())
}

func TestNolint_MultipleNames(t *testing.T) {
	source := "internal class A { int[] x = { 1, }; } // nolint:NR0032,redundant-internal\n"
	assertNoDiags(t, lintSource(t, source))
}

func TestNolint_NotADirective(t *testing.T) {
	source := "internal class A {} // nolinting is fun\n"
	assert.Len(t, lintSource(t, source), 1)
}

func TestPragma_DisableRestore(t *testing.T) {
	source := `#pragma warning disable NR0030
internal class A {}
#pragma warning restore NR0030
internal class B {}
`
	diags := lintSource(t, source)
	require.Len(t, diags, 1)
	assert.Equal(t, 4, diags[0].Pos().Line)
}

func TestPragma_DisableAll(t *testing.T) {
	source := `#pragma warning disable
internal class A {}
internal class B {}
`
	assertNoDiags(t, lintSource(t, source))
}

func TestPragma_InsideVerbatimString(t *testing.T) {
	source := "class A { string s = @\"\n#pragma warning disable\n\"; }\ninternal class B {}\n"
	diags := lintSource(t, source)
	require.Len(t, diags, 1)
	assert.Equal(t, 4, diags[0].Pos().Line)
}

func TestPragma_InsideBlockComment(t *testing.T) {
	source := "/*\n#pragma warning disable NR0030\n*/\ninternal class B {}\n"
	assert.Len(t, lintSource(t, source), 1)
}

func TestScanPragmas_SkipsQuotedLines(t *testing.T) {
	src := "x\n  #pragma warning disable\n#pragma warning restore\n"
	// The first directive sits inside a literal spanning lines 1-2.
	tree := &syntax.Tree{
		Source:   []byte(src),
		Literals: []syntax.Span{{Start: syntax.Pos{Offset: 0}, End: syntax.Pos{Offset: 26}}},
	}
	pragmas := scanPragmas(tree)
	require.Len(t, pragmas, 1)
	assert.Equal(t, 3, pragmas[0].line)
}

// pragmaDiag builds a diagnostic for the given rule on line.
func pragmaDiag(desc *Descriptor, line int) Diagnostic {
	return Diagnostic{
		Descriptor: desc,
		Span:       syntax.Span{Start: syntax.Pos{Line: line, Col: 1}, End: syntax.Pos{Line: line, Col: 2}},
	}
}

func TestSuppress_PragmaRegions(t *testing.T) {
	tree := &syntax.Tree{Source: []byte(`line1
#pragma warning disable
line3
  #pragma warning restore NR0030, redundant-comma-in-initializer // back on
line5
# pragma warning restore
line7
`)}
	internal := AnalyzerRedundantInternal.Desc
	comma := AnalyzerRedundantCommaInInitializer.Desc
	event := AnalyzerStaticEventSubscription.Desc
	diags := []Diagnostic{
		pragmaDiag(internal, 1),
		pragmaDiag(internal, 3),
		pragmaDiag(internal, 5),
		pragmaDiag(comma, 5),
		pragmaDiag(event, 5),
		pragmaDiag(event, 7),
	}
	got := Suppress(tree, diags)
	var kept []string
	for _, d := range got {
		kept = append(kept, d.ID()+"@"+d.Span.Start.String())
	}
	assert.Equal(t, []string{"NR0030@1:1", "NR0030@5:1", "NR0032@5:1", "NR0033@7:1"}, kept)
}

func TestScanPragmas(t *testing.T) {
	src := "#pragma warning disable NR0001 , NR0002\n#region foo\n#pragma warning restore\n#pragma checksum \"x\"\n"
	pragmas := scanPragmas(&syntax.Tree{Source: []byte(src)})
	require.Len(t, pragmas, 2)
	assert.Equal(t, pragma{line: 1, disable: true, rules: ruleList{"NR0001", "NR0002"}}, pragmas[0])
	assert.Equal(t, 3, pragmas[1].line)
	assert.False(t, pragmas[1].disable)
	assert.Empty(t, pragmas[1].rules)
}

func TestNolintLines(t *testing.T) {
	comments := []syntax.Token{
		{Text: "// nolint", Span: syntax.Span{Start: syntax.Pos{Line: 1}}},
		{Text: "//nolint:NR0030, NR0031", Span: syntax.Span{Start: syntax.Pos{Line: 2}}},
		{Text: "/* nolint */", Span: syntax.Span{Start: syntax.Pos{Line: 3}}},
		{Text: "// nolint:NR0032 trailing words", Span: syntax.Span{Start: syntax.Pos{Line: 4}}},
		{Text: "// regular comment", Span: syntax.Span{Start: syntax.Pos{Line: 5}}},
	}
	lines := nolintLines(comments)
	assert.Len(t, lines, 3)
	assert.Nil(t, lines[1])
	assert.Equal(t, ruleList{"NR0030", "NR0031"}, lines[2])
	assert.Equal(t, ruleList{"NR0032"}, lines[4])
}

func TestSuppress_Empty(t *testing.T) {
	assert.Nil(t, Suppress(&syntax.Tree{}, nil))
	diags := []Diagnostic{pragmaDiag(AnalyzerRedundantInternal.Desc, 1)}
	assert.Equal(t, diags, Suppress(nil, diags))
	assert.Equal(t, diags, Suppress(&syntax.Tree{Source: []byte("class A {}")}, diags))
}
