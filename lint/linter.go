// Copyright © 2024 The NRefactory authors

// Package lint is a rule-driven static analysis engine for C# source.
//
// The linter is modeled after go vet: each check is an independent Rule
// bound to one Descriptor. Unlike go vet, rules do not walk the tree
// themselves. They register node handlers on a Pass, and a single
// Dispatcher walk serves every rule of a combined pass. Stateful rules
// collect what they need while the walk runs and report from an
// end-of-pass hook.
//
// Rules are composable and extensible: embedders can define custom checks
// alongside the built-in set and register their descriptors in their own
// Catalog.
package lint

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ezhangle/NRefactory/analysis"
	"github.com/ezhangle/NRefactory/parser"
	"github.com/ezhangle/NRefactory/syntax"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of pass spans.
const TracerName = "github.com/ezhangle/NRefactory/lint"

// RulesVersion changes whenever a built-in rule changes what it reports.
// It is part of every cache key.
const RulesVersion = "1"

// Linter runs a set of rules over source files.
type Linter struct {
	Rules []Rule

	// Severity overrides descriptor default severities by rule id.
	Severity map[string]Severity

	// Logger receives per-pass debug logs. Nil discards them.
	Logger logrus.FieldLogger

	// Tracer starts one span per pass. Nil uses the global provider.
	Tracer trace.Tracer

	// Metrics records pass counters. Nil disables metrics.
	Metrics *Metrics

	// Cache stores results of LintFiles keyed by content. Nil disables
	// caching.
	Cache ResultCache

	// Version identifies the build running the rules. Cached results of
	// other builds are never reused.
	Version string
}

// Result is the outcome of one pass.
type Result struct {
	File   string
	PassID string

	// Diagnostics are in visit order for Run and location order for
	// LintFileContext. Always empty when Canceled is set.
	Diagnostics []Diagnostic

	// SyntaxErrors are regions the parser could not make sense of. Rules
	// still run on the rest of the tree.
	SyntaxErrors []*parser.SyntaxError

	// Canceled is set when the context was done before the pass finished.
	Canceled bool

	// Disabled lists rules that panicked and were switched off mid-pass.
	Disabled []string
}

func (l *Linter) logger() logrus.FieldLogger {
	if l.Logger != nil {
		return l.Logger
	}
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func (l *Linter) tracer() trace.Tracer {
	if l.Tracer != nil {
		return l.Tracer
	}
	return otel.GetTracerProvider().Tracer(TracerName)
}

func (l *Linter) severityOf(desc *Descriptor) Severity {
	if s, ok := l.Severity[desc.ID]; ok && s != severityUnset {
		return s
	}
	if desc.DefaultSeverity == severityUnset {
		return SeverityWarning
	}
	return desc.DefaultSeverity
}

// Run performs one combined pass of every rule over tree. Diagnostics are
// returned in the order nodes were visited. If ctx is done before the pass
// completes, the result is marked Canceled and carries no diagnostics.
//
// model may be nil, in which case tree is analyzed first.
func (l *Linter) Run(ctx context.Context, tree *syntax.Tree, model analysis.Model) *Result {
	passID := uuid.NewString()
	res := &Result{File: tree.Filename, PassID: passID}
	log := l.logger().WithFields(logrus.Fields{
		"file": tree.Filename,
		"pass": passID,
	})
	ctx, span := l.tracer().Start(ctx, "nrlint.pass", trace.WithAttributes(
		semconv.CodeFilepath(tree.Filename),
		attribute.String("nrlint.pass_id", passID),
		attribute.Int("nrlint.rules", len(l.Rules)),
	))
	defer span.End()
	start := time.Now()

	if model == nil {
		model = analysis.Analyze(tree, &analysis.Config{Filename: tree.Filename})
	}

	d := NewDispatcher(log)
	sink := &Sink{}
	for _, r := range l.Rules {
		desc := r.Descriptor()
		pass := &Pass{
			Rule:      r,
			Tree:      tree,
			Semantics: model,
			ctx:       ctx,
			d:         d,
			client:    d.newClient(desc.ID),
			sink:      sink,
			severity:  l.severityOf(desc),
		}
		initRule(pass, log)
	}

	err := d.Walk(ctx, tree.Root)
	if err == nil {
		err = d.finish(ctx)
	}
	res.Disabled = d.Disabled()
	if err != nil {
		res.Canceled = true
		span.SetAttributes(attribute.Bool("nrlint.canceled", true))
		span.SetStatus(codes.Error, err.Error())
		l.Metrics.observePass(nil, true, time.Since(start))
		log.WithError(err).Debug("pass canceled")
		return res
	}
	res.Diagnostics = sink.Diagnostics()
	span.SetAttributes(
		attribute.Bool("nrlint.canceled", false),
		attribute.Int("nrlint.diagnostics", len(res.Diagnostics)),
	)
	l.Metrics.observePass(res.Diagnostics, false, time.Since(start))
	log.WithFields(logrus.Fields{
		"rules":       len(l.Rules),
		"diagnostics": len(res.Diagnostics),
		"elapsed":     time.Since(start),
	}).Debug("pass complete")
	return res
}

// initRule calls the rule's Init. A panic disables the rule for the pass.
func initRule(pass *Pass, log logrus.FieldLogger) {
	defer func() {
		if r := recover(); r != nil {
			pass.client.disabled = true
			log.WithField("rule", pass.client.id).Errorf("rule disabled after panic in init: %v", r)
		}
	}()
	pass.Rule.Init(pass)
}

// Analyze runs a single rule over tree and returns its diagnostics in visit
// order. It returns nil when ctx is done before the pass completes.
func Analyze(ctx context.Context, rule Rule, tree *syntax.Tree, model analysis.Model) []Diagnostic {
	l := &Linter{Rules: []Rule{rule}}
	return l.Run(ctx, tree, model).Diagnostics
}

// LintFile parses, analyzes and lints a single source file and returns all
// diagnostics that survive suppression, sorted by location.
func (l *Linter) LintFile(source []byte, filename string) ([]Diagnostic, error) {
	res, err := l.LintFileContext(context.Background(), source, filename)
	if err != nil {
		return nil, err
	}
	return res.Diagnostics, nil
}

// LintFileContext is LintFile with a cancellation context and the full
// pass result. Cancellation is reported through Result.Canceled, never as
// an error.
func (l *Linter) LintFileContext(ctx context.Context, source []byte, filename string) (*Result, error) {
	f, err := parser.Parse(ctx, filename, source)
	if err != nil {
		if ctx.Err() != nil {
			return &Result{File: filename, Canceled: true}, nil
		}
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	model := analysis.Analyze(f.Tree, &analysis.Config{Filename: filename})
	res := l.Run(ctx, f.Tree, model)
	res.SyntaxErrors = f.Errors
	if res.Canceled {
		return res, nil
	}
	res.Diagnostics = Suppress(f.Tree, res.Diagnostics)
	SortDiagnostics(res.Diagnostics)
	return res, nil
}

// SortDiagnostics orders diagnostics by file, then position, then id.
func SortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Span.Start.Offset != b.Span.Start.Offset {
			return a.Span.Start.Offset < b.Span.Start.Offset
		}
		return a.ID() < b.ID()
	})
}
