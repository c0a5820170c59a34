// Copyright © 2024 The NRefactory authors

package lint

import (
	"fmt"
	"sort"
	"strings"
)

// Rule is a unit of detection logic bound to one descriptor.
//
// Init is called once per pass. It registers node handlers and end-of-pass
// hooks on the Pass; any state a rule needs lives in closures created by
// Init and is discarded with the pass.
type Rule interface {
	Descriptor() *Descriptor
	Init(pass *Pass)
}

// Analyzer is the Rule implementation used by the built-in checks.
type Analyzer struct {
	Desc *Descriptor

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Run registers the check's handlers on pass.
	Run func(pass *Pass)
}

var _ Rule = (*Analyzer)(nil)

// Descriptor implements Rule.
func (a *Analyzer) Descriptor() *Descriptor { return a.Desc }

// Init implements Rule.
func (a *Analyzer) Init(pass *Pass) { a.Run(pass) }

// DefaultRules returns the built-in set of rules, including those disabled
// by default.
func DefaultRules() []Rule {
	return []Rule{
		AnalyzerOptionalParameterRefOut,
		AnalyzerRedundantInternal,
		AnalyzerRedundantBaseConstructorCall,
		AnalyzerRedundantCommaInInitializer,
		AnalyzerStaticEventSubscription,
	}
}

// EnabledRules returns the default rules whose descriptors are enabled by
// default.
func EnabledRules() []Rule {
	var out []Rule
	for _, r := range DefaultRules() {
		if r.Descriptor().EnabledByDefault {
			out = append(out, r)
		}
	}
	return out
}

// SelectRules returns the default rules named by ids (ids or names). An
// unknown name is an error; a reserved id without detection logic selects
// nothing.
func SelectRules(ids []string) ([]Rule, error) {
	var out []Rule
	seen := make(map[Rule]bool)
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		desc, ok := DefaultCatalog.Lookup(id)
		if !ok {
			return nil, fmt.Errorf("unknown check: %q", id)
		}
		for _, r := range DefaultRules() {
			if r.Descriptor() == desc && !seen[r] {
				seen[r] = true
				out = append(out, r)
			}
		}
	}
	return out, nil
}

// RuleNames returns a sorted list of the default rule ids.
func RuleNames() []string {
	var names []string
	for _, r := range DefaultRules() {
		names = append(names, r.Descriptor().ID)
	}
	sort.Strings(names)
	return names
}

// RuleDoc returns a formatted listing of all catalog entries with their
// titles, suitable for CLI help text.
func RuleDoc() string {
	var b strings.Builder
	for _, d := range DefaultCatalog.Supported() {
		state := ""
		if !d.EnabledByDefault {
			state = " (disabled)"
		}
		fmt.Fprintf(&b, "  %-8s %-34s %s%s\n", d.ID, d.Name, d.Title, state)
	}
	return b.String()
}
