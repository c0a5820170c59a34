// Copyright © 2024 The NRefactory authors

package lint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/ezhangle/NRefactory/analysis"
	"github.com/ezhangle/NRefactory/parser"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lintSource runs all default rules on the given source and returns diagnostics.
func lintSource(t *testing.T, source string) []Diagnostic {
	t.Helper()
	l := &Linter{Rules: DefaultRules()}
	diags, err := l.LintFile([]byte(source), "test.cs")
	require.NoError(t, err)
	return diags
}

// lintCheck runs a single rule on the given source.
func lintCheck(t *testing.T, rule Rule, source string) []Diagnostic {
	t.Helper()
	l := &Linter{Rules: []Rule{rule}}
	diags, err := l.LintFile([]byte(source), "test.cs")
	require.NoError(t, err)
	return diags
}

// assertNoDiags checks that there are no diagnostics.
func assertNoDiags(t *testing.T, diags []Diagnostic) {
	t.Helper()
	if len(diags) > 0 {
		var msgs []string
		for _, d := range diags {
			msgs = append(msgs, d.String())
		}
		t.Errorf("expected no diagnostics, got %d: %v", len(diags), msgs)
	}
}

// assertDiagOnLine checks that a diagnostic exists on the given line with the given substring.
func assertDiagOnLine(t *testing.T, diags []Diagnostic, line int, substr string) {
	t.Helper()
	for _, d := range diags {
		if d.Pos().Line == line && strings.Contains(d.Message(), substr) {
			return
		}
	}
	var msgs []string
	for _, d := range diags {
		msgs = append(msgs, fmt.Sprintf("line %d: %s", d.Pos().Line, d.Message()))
	}
	t.Errorf("expected diagnostic on line %d containing %q, got: %v", line, substr, msgs)
}

// textAt returns the source text covered by a diagnostic.
func textAt(source string, d Diagnostic) string {
	return source[d.Span.Start.Offset:d.Span.End.Offset]
}

// --- Position.String() ---

func TestPosition_String_FileOnly(t *testing.T) {
	p := Position{File: "test.cs"}
	assert.Equal(t, "test.cs", p.String())
}

func TestPosition_String_FileLine(t *testing.T) {
	p := Position{File: "test.cs", Line: 10}
	assert.Equal(t, "test.cs:10", p.String())
}

func TestPosition_String_FileLineCol(t *testing.T) {
	p := Position{File: "test.cs", Line: 10, Col: 5}
	assert.Equal(t, "test.cs:10:5", p.String())
}

// --- Diagnostic ---

func TestDiagnostic_String(t *testing.T) {
	diags := lintCheck(t, AnalyzerRedundantInternal, "internal class Foo {}")
	require.Len(t, diags, 1)
	assert.Equal(t, "test.cs:1:1: 'internal' modifier is redundant (NR0030)", diags[0].String())
}

func TestDiagnostic_StringWithNotes(t *testing.T) {
	d := Diagnostic{Descriptor: AnalyzerRedundantInternal.Desc, File: "a.cs", Notes: []string{"remove it"}}
	assert.Equal(t, "a.cs: 'internal' modifier is redundant (NR0030)\n  = note: remove it", d.String())
}

func TestDiagnostic_MessageArgs(t *testing.T) {
	d := Diagnostic{Descriptor: AnalyzerRedundantCommaInInitializer.Desc, Args: []string{"object initializer"}}
	assert.Equal(t, "Redundant comma in object initializer", d.Message())
	assert.Empty(t, Diagnostic{}.Message())
	assert.Empty(t, Diagnostic{}.ID())
}

func TestDiagnostic_JSON(t *testing.T) {
	diags := lintCheck(t, AnalyzerRedundantCommaInInitializer, "class A { int[] x = new int[] { 1, 2, }; }")
	require.Len(t, diags, 1)
	data, err := json.Marshal(diags[0])
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "NR0032", raw["id"])
	assert.Equal(t, "test.cs", raw["file"])
	assert.Equal(t, "warning", raw["severity"])
	assert.Equal(t, "remove-comma", raw["fix"])
	assert.Equal(t, "Redundant comma in array initializer", raw["message"])
	assert.Equal(t, []interface{}{"array initializer"}, raw["args"])

	var back Diagnostic
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Same(t, diags[0].Descriptor, back.Descriptor)
	assert.Equal(t, diags[0].Span, back.Span)
	assert.Equal(t, diags[0].Args, back.Args)
}

func TestDiagnostic_UnmarshalUnknownID(t *testing.T) {
	var d Diagnostic
	err := json.Unmarshal([]byte(`{"id":"NR9999","file":"a.cs"}`), &d)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NR9999")
}

func TestFormatText(t *testing.T) {
	diags := lintSource(t, "internal class Foo {}\ninternal class Bar {}\n")
	var buf bytes.Buffer
	FormatText(&buf, diags)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "test.cs:1:1:"))
	assert.True(t, strings.HasPrefix(lines[1], "test.cs:2:1:"))
}

func TestFormatJSON_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

// --- redundant-internal ---

func TestRedundantInternal_Positive_TopLevel(t *testing.T) {
	source := "internal class Foo {}"
	diags := lintCheck(t, AnalyzerRedundantInternal, source)
	require.Len(t, diags, 1)
	assert.Equal(t, "internal", textAt(source, diags[0]))
	assert.Equal(t, 1, diags[0].Pos().Line)
	assert.Equal(t, 1, diags[0].Pos().Col)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Equal(t, "remove-modifier", diags[0].FixID)
	assert.True(t, diags[0].Descriptor.HasTag(TagUnnecessary))
}

func TestRedundantInternal_Positive_InNamespace(t *testing.T) {
	source := "namespace N {\n    internal class Foo {}\n}"
	diags := lintCheck(t, AnalyzerRedundantInternal, source)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 2, "'internal' modifier is redundant")
}

func TestRedundantInternal_Positive_OtherTypes(t *testing.T) {
	source := `internal struct S {}
internal interface I {}
internal enum E { A, B }
internal delegate void D();
`
	diags := lintCheck(t, AnalyzerRedundantInternal, source)
	require.Len(t, diags, 4)
	for i, d := range diags {
		assert.Equal(t, i+1, d.Pos().Line)
		assert.Equal(t, "internal", textAt(source, d))
	}
}

func TestRedundantInternal_Positive_AfterOtherModifiers(t *testing.T) {
	source := "static internal class Foo {}"
	diags := lintCheck(t, AnalyzerRedundantInternal, source)
	require.Len(t, diags, 1)
	assert.Equal(t, 7, diags[0].Span.Start.Offset)
}

func TestRedundantInternal_Positive_ReportFirstTokenOnce(t *testing.T) {
	source := "internal internal class Foo {}"
	diags := lintCheck(t, AnalyzerRedundantInternal, source)
	require.Len(t, diags, 1)
	assert.Equal(t, 0, diags[0].Span.Start.Offset)
}

func TestRedundantInternal_Negative_Nested(t *testing.T) {
	diags := lintCheck(t, AnalyzerRedundantInternal, "public class Foo { internal class Bar {} }")
	assertNoDiags(t, diags)
}

func TestRedundantInternal_Negative_NestedKinds(t *testing.T) {
	source := `public class Outer {
    internal struct S {}
    internal interface I {}
    internal enum E { A }
    internal delegate void D();
    public class Inner {
        internal class Deep {}
    }
}
public interface J {
    internal class C {}
}`
	assertNoDiags(t, lintCheck(t, AnalyzerRedundantInternal, source))
}

func TestRedundantInternal_Negative_NoModifier(t *testing.T) {
	assertNoDiags(t, lintCheck(t, AnalyzerRedundantInternal, "class Foo {}\npublic class Bar {}"))
}

func TestRedundantInternal_Negative_Members(t *testing.T) {
	assertNoDiags(t, lintCheck(t, AnalyzerRedundantInternal, "public class Foo { internal void M() {} internal int x; }"))
}

// --- redundant-base-constructor-call ---

func TestRedundantBaseCtor_Positive(t *testing.T) {
	source := "class B {}\nclass A : B {\n    public A() : base() {}\n}"
	diags := lintCheck(t, AnalyzerRedundantBaseConstructorCall, source)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 3, "Redundant base constructor call")
	assert.Contains(t, textAt(source, diags[0]), "base()")
	assert.Equal(t, SeverityInfo, diags[0].Severity)
	assert.Equal(t, "remove-base-call", diags[0].FixID)
}

func TestRedundantBaseCtor_Negative_WithArguments(t *testing.T) {
	source := "class B { public B(int x) {} }\nclass A : B { public A() : base(1) {} }"
	assertNoDiags(t, lintCheck(t, AnalyzerRedundantBaseConstructorCall, source))
}

func TestRedundantBaseCtor_Negative_This(t *testing.T) {
	source := "class A { public A() : this(1) {} public A(int x) {} public A(string s) : this() {} }"
	assertNoDiags(t, lintCheck(t, AnalyzerRedundantBaseConstructorCall, source))
}

func TestRedundantBaseCtor_Negative_NoInitializer(t *testing.T) {
	assertNoDiags(t, lintCheck(t, AnalyzerRedundantBaseConstructorCall, "class A { public A() {} }"))
}

// --- redundant-comma-in-initializer ---

func TestRedundantComma_Positive_Array(t *testing.T) {
	source := "class A { int[] x = new int[] { 1, 2, }; }"
	diags := lintCheck(t, AnalyzerRedundantCommaInInitializer, source)
	require.Len(t, diags, 1)
	assert.Equal(t, ",", textAt(source, diags[0]))
	assert.Equal(t, strings.LastIndex(source, ","), diags[0].Span.Start.Offset)
	assert.Equal(t, []string{"array initializer"}, diags[0].Args)
}

func TestRedundantComma_Positive_ImplicitArray(t *testing.T) {
	source := "class A { void M() { var x = new[] { 1, 2, }; } }"
	diags := lintCheck(t, AnalyzerRedundantCommaInInitializer, source)
	require.Len(t, diags, 1)
	assert.Equal(t, "Redundant comma in array initializer", diags[0].Message())
}

func TestRedundantComma_Positive_Object(t *testing.T) {
	source := "class P { public int X; public int Y; }\nclass A { P p = new P { X = 1, Y = 2, }; }"
	diags := lintCheck(t, AnalyzerRedundantCommaInInitializer, source)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 2, "Redundant comma in object initializer")
}

func TestRedundantComma_Positive_Collection(t *testing.T) {
	source := "using System.Collections.Generic;\nclass A { List<int> l = new List<int> { 1, 2, }; }"
	diags := lintCheck(t, AnalyzerRedundantCommaInInitializer, source)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 2, "Redundant comma in collection initializer")
}

func TestRedundantComma_Negative_NoTrailingComma(t *testing.T) {
	source := "class A { int[] x = new int[] { 1, 2 }; int[] y = new int[] { }; }"
	assertNoDiags(t, lintCheck(t, AnalyzerRedundantCommaInInitializer, source))
}

// --- static-event-subscription ---

const staticEventSource = `class Source {
    public static event System.EventHandler Changed;
}
class Listener {
    void Start() {
        Source.Changed += OnChanged;
    }
    void OnChanged(object s, System.EventArgs e) {}
}
`

func TestStaticEvent_Positive_NeverRemoved(t *testing.T) {
	diags := lintCheck(t, AnalyzerStaticEventSubscription, staticEventSource)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 6, "Subscription to static events without unsubscription may cause memory leaks")
	assert.Equal(t, "+=", textAt(staticEventSource, diags[0]))
}

func TestStaticEvent_Negative_RemovedElsewhere(t *testing.T) {
	source := strings.Replace(staticEventSource, "    void OnChanged", `    void Stop() {
        Source.Changed -= OnChanged;
    }
    void OnChanged`, 1)
	assertNoDiags(t, lintCheck(t, AnalyzerStaticEventSubscription, source))
}

func TestStaticEvent_Negative_RemovedBeforeSubscription(t *testing.T) {
	source := `class A {
    static event System.EventHandler E;
    void Stop() { E -= H; }
    void Start() { E += H; }
    void H(object s, System.EventArgs e) {}
}`
	assertNoDiags(t, lintCheck(t, AnalyzerStaticEventSubscription, source))
}

func TestStaticEvent_Positive_RemovedOtherHandler(t *testing.T) {
	source := `class A {
    static event System.EventHandler E;
    void Start() { E += H; }
    void Stop() { E -= G; }
    void H(object s, System.EventArgs e) {}
    void G(object s, System.EventArgs e) {}
}`
	diags := lintCheck(t, AnalyzerStaticEventSubscription, source)
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 3, "without unsubscription")
}

func TestStaticEvent_Negative_Reassigned(t *testing.T) {
	source := `class A {
    static event System.EventHandler E;
    void Start() { E += H; E += (s, e) => {}; }
    void Reset() { E = G; }
    void H(object s, System.EventArgs e) {}
    void G(object s, System.EventArgs e) {}
}`
	assertNoDiags(t, lintCheck(t, AnalyzerStaticEventSubscription, source))
}

func TestStaticEvent_Positive_Anonymous(t *testing.T) {
	source := `class A {
    static event System.EventHandler E;
    void Start() {
        E += (s, e) => {};
        E += delegate { };
    }
}`
	diags := lintCheck(t, AnalyzerStaticEventSubscription, source)
	require.Len(t, diags, 2)
	assertDiagOnLine(t, diags, 4, "with an anonymous method")
	assertDiagOnLine(t, diags, 5, "with an anonymous method")
}

func TestStaticEvent_Negative_StaticContext(t *testing.T) {
	source := `class A {
    static event System.EventHandler E;
    static A() { E += H; }
    static void Init() { E += H; }
    static void H(object s, System.EventArgs e) {}
}`
	assertNoDiags(t, lintCheck(t, AnalyzerStaticEventSubscription, source))
}

func TestStaticEvent_Negative_InstanceEvent(t *testing.T) {
	source := `class A {
    event System.EventHandler E;
    void Start() { E += H; }
    void H(object s, System.EventArgs e) {}
}`
	assertNoDiags(t, lintCheck(t, AnalyzerStaticEventSubscription, source))
}

func TestStaticEvent_Negative_AmbiguousHandler(t *testing.T) {
	source := `class A {
    static event System.EventHandler E;
    void Start() { E += H; }
    void H(object s, System.EventArgs e) {}
    void H(int x) {}
}`
	assertNoDiags(t, lintCheck(t, AnalyzerStaticEventSubscription, source))
}

func TestStaticEvent_Negative_UnresolvedHandler(t *testing.T) {
	source := `class A {
    static event System.EventHandler E;
    void Start() { E += Missing; }
}`
	assertNoDiags(t, lintCheck(t, AnalyzerStaticEventSubscription, source))
}

func TestStaticEvent_FreshStatePerPass(t *testing.T) {
	// A removal seen in one pass must not cancel a subscription in another.
	removal := `class A {
    static event System.EventHandler E;
    void Stop() { E -= H; }
    void H(object s, System.EventArgs e) {}
}`
	l := &Linter{Rules: []Rule{AnalyzerStaticEventSubscription}}
	_, err := l.LintFile([]byte(removal), "a.cs")
	require.NoError(t, err)
	diags, err := l.LintFile([]byte(staticEventSource), "b.cs")
	require.NoError(t, err)
	assert.Len(t, diags, 1)
}

// --- optional-parameter-ref-out ---

func TestOptionalRefOut_Positive(t *testing.T) {
	source := `using System.Runtime.InteropServices;
class A {
    void M([Optional] ref int x) {}
    void N([OptionalAttribute] out int y) { y = 0; }
}`
	diags := lintCheck(t, AnalyzerOptionalParameterRefOut, source)
	require.Len(t, diags, 2)
	assertDiagOnLine(t, diags, 3, "C# doesn't support optional 'ref' or 'out' parameters")
	assertDiagOnLine(t, diags, 4, "C# doesn't support optional 'ref' or 'out' parameters")
	assert.Contains(t, textAt(source, diags[0]), "ref int x")
}

func TestOptionalRefOut_Positive_Qualified(t *testing.T) {
	source := "class A { void M([System.Runtime.InteropServices.Optional] ref int x) {} }"
	diags := lintCheck(t, AnalyzerOptionalParameterRefOut, source)
	require.Len(t, diags, 1)
}

func TestOptionalRefOut_Negative_NotByRef(t *testing.T) {
	source := "using System.Runtime.InteropServices;\nclass A { void M([Optional] int x) {} }"
	assertNoDiags(t, lintCheck(t, AnalyzerOptionalParameterRefOut, source))
}

func TestOptionalRefOut_Negative_OtherOptional(t *testing.T) {
	// Without the InteropServices import, [Optional] is some other attribute.
	source := "class A { void M([Optional] ref int x) {} }"
	assertNoDiags(t, lintCheck(t, AnalyzerOptionalParameterRefOut, source))
}

func TestOptionalRefOut_Negative_NoAttribute(t *testing.T) {
	source := "using System.Runtime.InteropServices;\nclass A { void M(ref int x, out int y) { y = 0; } }"
	assertNoDiags(t, lintCheck(t, AnalyzerOptionalParameterRefOut, source))
}

// --- combined pass ---

func TestEndToEnd_NestedInternal(t *testing.T) {
	assertNoDiags(t, lintSource(t, "public class Foo { internal class Bar {} }"))
}

func TestEndToEnd_NamespaceInternal(t *testing.T) {
	source := "namespace N { internal class Foo {} }"
	diags := lintSource(t, source)
	require.Len(t, diags, 1)
	assert.Equal(t, IDRedundantInternal, diags[0].ID())
	assert.Equal(t, "internal", textAt(source, diags[0]))
}

func TestLintFile_SortedByLocation(t *testing.T) {
	source := `class A {
    static event System.EventHandler E;
    void Start() { E += H; }
    void H(object s, System.EventArgs e) {}
}
internal class B {}
`
	diags := lintSource(t, source)
	require.Len(t, diags, 2)
	// The event diagnostic is reported last during the pass but sorts first.
	assert.Equal(t, IDStaticEventSubscription, diags[0].ID())
	assert.Equal(t, IDRedundantInternal, diags[1].ID())
}

func TestRun_VisitOrder(t *testing.T) {
	source := "internal class B {}\ninternal class A { int[] x = new int[] { 1, }; }\n"
	f, err := parser.Parse(context.Background(), "test.cs", []byte(source))
	require.NoError(t, err)
	l := &Linter{Rules: []Rule{AnalyzerRedundantCommaInInitializer, AnalyzerRedundantInternal}}
	res := l.Run(context.Background(), f.Tree, nil)
	require.False(t, res.Canceled)
	var ids []string
	for _, d := range res.Diagnostics {
		ids = append(ids, d.ID())
	}
	assert.Equal(t, []string{IDRedundantInternal, IDRedundantInternal, IDRedundantCommaInInitializer}, ids)
	assert.NotEmpty(t, res.PassID)
}

func TestRun_Idempotent(t *testing.T) {
	f, err := parser.Parse(context.Background(), "test.cs", []byte(staticEventSource+"internal class X { int[] a = { 1, }; }\n"))
	require.NoError(t, err)
	model := analysis.Analyze(f.Tree, &analysis.Config{Filename: "test.cs"})
	l := &Linter{Rules: DefaultRules()}
	first := l.Run(context.Background(), f.Tree, model).Diagnostics
	second := l.Run(context.Background(), f.Tree, model).Diagnostics
	require.NotEmpty(t, first)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second pass differs (-first +second):\n%s", diff)
	}
}

func TestAnalyze_SingleRule(t *testing.T) {
	f, err := parser.Parse(context.Background(), "test.cs", []byte("internal class A {}"))
	require.NoError(t, err)
	diags := Analyze(context.Background(), AnalyzerRedundantInternal, f.Tree, nil)
	require.Len(t, diags, 1)
	assert.Empty(t, Analyze(context.Background(), AnalyzerRedundantBaseConstructorCall, f.Tree, nil))
}

func TestLinter_SeverityOverride(t *testing.T) {
	l := &Linter{
		Rules:    []Rule{AnalyzerRedundantInternal},
		Severity: map[string]Severity{IDRedundantInternal: SeverityInfo},
	}
	diags, err := l.LintFile([]byte("internal class A {}"), "test.cs")
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Equal(t, SeverityInfo, diags[0].Severity)
}

func TestLintFileContext_SyntaxErrors(t *testing.T) {
	l := &Linter{Rules: DefaultRules()}
	res, err := l.LintFileContext(context.Background(), []byte("internal class A {}\nclass B { void M( { }\n"), "test.cs")
	require.NoError(t, err)
	assert.NotEmpty(t, res.SyntaxErrors)
	assertDiagOnLine(t, res.Diagnostics, 1, "'internal' modifier is redundant")
}

func TestLintFileContext_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := &Linter{Rules: DefaultRules()}
	res, err := l.LintFileContext(ctx, []byte("internal class A {}"), "test.cs")
	require.NoError(t, err)
	assert.True(t, res.Canceled)
	assert.Empty(t, res.Diagnostics)
}
