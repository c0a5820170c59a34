// Copyright © 2024 The NRefactory authors

package lint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// Source is one input of a multi-file run. When Content is nil the file
// is read from Filename.
type Source struct {
	Filename string
	Content  []byte
}

// ResultCache stores the diagnostics of a file under a content key.
// Implementations must be safe for concurrent use.
type ResultCache interface {
	Get(key string) ([]WireDiagnostic, bool)
	Put(key string, diags []WireDiagnostic)
}

// LintFiles lints every source, running up to jobs passes concurrently
// (GOMAXPROCS when jobs <= 0). Results are returned in input order; the
// entry of a file that could not be read or parsed is nil and its error is
// part of the combined error.
func (l *Linter) LintFiles(ctx context.Context, srcs []Source, jobs int) ([]*Result, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]*Result, len(srcs))
	var (
		mu   sync.Mutex
		errs error
	)
	var g errgroup.Group
	g.SetLimit(jobs)
	for i, src := range srcs {
		g.Go(func() error {
			res, err := l.lintSource(ctx, src)
			if err != nil {
				mu.Lock()
				errs = multierr.Append(errs, err)
				mu.Unlock()
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()
	return results, errs
}

func (l *Linter) lintSource(ctx context.Context, src Source) (*Result, error) {
	content := src.Content
	if content == nil {
		b, err := os.ReadFile(src.Filename)
		if err != nil {
			return nil, err
		}
		content = b
	}
	if l.Cache == nil {
		return l.LintFileContext(ctx, content, src.Filename)
	}
	key := l.CacheKey(src.Filename, content)
	if wire, ok := l.Cache.Get(key); ok {
		if diags, err := l.fromWire(wire); err == nil {
			l.Metrics.cacheHit()
			return &Result{File: src.Filename, Diagnostics: diags}, nil
		}
	}
	res, err := l.LintFileContext(ctx, content, src.Filename)
	if err != nil || res.Canceled || len(res.Disabled) > 0 || len(res.SyntaxErrors) > 0 {
		return res, err
	}
	wire := make([]WireDiagnostic, len(res.Diagnostics))
	for i, d := range res.Diagnostics {
		wire[i] = d.Wire()
	}
	l.Cache.Put(key, wire)
	return res, nil
}

// fromWire rebuilds cached diagnostics against the linter's own rules
// first and DefaultCatalog second.
func (l *Linter) fromWire(wire []WireDiagnostic) ([]Diagnostic, error) {
	cat := NewCatalog()
	for _, r := range l.Rules {
		if _, err := cat.Register(r.Descriptor()); err != nil {
			return nil, err
		}
	}
	cat.Freeze()
	diags := make([]Diagnostic, 0, len(wire))
	for _, w := range wire {
		d, err := FromWire(w, cat)
		if err != nil {
			if d, err = FromWire(w, DefaultCatalog); err != nil {
				return nil, err
			}
		}
		diags = append(diags, d)
	}
	return diags, nil
}

// CacheKey identifies the result of linting content as filename with the
// linter's build, current rule set and severities.
func (l *Linter) CacheKey(filename string, content []byte) string {
	ids := make([]string, 0, len(l.Rules))
	for _, r := range l.Rules {
		desc := r.Descriptor()
		ids = append(ids, fmt.Sprintf("%s=%s", desc.ID, l.severityOf(desc)))
	}
	sort.Strings(ids)
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00", RulesVersion, l.Version)
	fmt.Fprintf(h, "%s\x00", filename)
	for _, id := range ids {
		fmt.Fprintf(h, "%s\x00", id)
	}
	h.Write(content) //nolint:errcheck // hash writes never fail
	return hex.EncodeToString(h.Sum(nil))
}
