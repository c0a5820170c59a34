// Copyright © 2024 The NRefactory authors

package cmd

import (
	"github.com/ezhangle/NRefactory/lint"
	"github.com/prometheus/client_golang/prometheus"
)

// Option configures an exported command factory (LintCommand, LSPCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	rules      []lint.Rule
	registerer prometheus.Registerer
}

// WithRules adds embedder-defined rules that run alongside the built-in
// set. Their descriptors do not need to be in lint.DefaultCatalog.
func WithRules(rules ...lint.Rule) Option {
	return func(c *cmdConfig) { c.rules = append(c.rules, rules...) }
}

// WithRegisterer registers the linter metrics with reg instead of leaving
// them unregistered.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *cmdConfig) { c.registerer = reg }
}

func newCmdConfig(opts []Option) cmdConfig {
	var c cmdConfig
	for _, o := range opts {
		o(&c)
	}
	return c
}
