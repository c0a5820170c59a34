// Copyright © 2024 The NRefactory authors

package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/ezhangle/NRefactory/config"
	"github.com/ezhangle/NRefactory/lint"
	"github.com/ezhangle/NRefactory/lsp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type lspFlags struct {
	stdio       bool
	port        int
	metricsAddr string
	debounce    time.Duration
}

// LSPCommand creates the "lsp" cobra command. Embedders can pass WithRules
// to publish their own checks alongside the built-in ones.
func LSPCommand(opts ...Option) *cobra.Command {
	cc := newCmdConfig(opts)
	var flags lspFlags

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the nrlint Language Server Protocol server",
		Long: `Start an LSP server for C# source files.

The language server lints open documents as they change and publishes the
findings as diagnostics. It also provides quick fixes and suppression
actions, hover help for findings, document symbols and folding ranges.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Rule configuration (.nrlint.yaml) applies as it does for "nrlint lint".
With --metrics-addr the server also exposes Prometheus metrics over HTTP.

Examples:
  nrlint lsp                                Start with stdio transport
  nrlint lsp --port 7998                    Start with TCP on port 7998
  nrlint lsp --metrics-addr=localhost:9090  Serve /metrics while running

Editor configuration (VS Code):
  Install a generic LSP client extension and configure it to run
  "nrlint lsp --stdio" for .cs files.`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				fmt.Fprintln(os.Stderr, "nrlint lsp:", err)
				os.Exit(exitUsage)
			}
			// stdout carries the protocol in stdio mode; log to stderr.
			log := newLogger(cfg, os.Stderr)
			if err := runLSP(cfg, flags, cc, log); err != nil {
				fmt.Fprintf(os.Stderr, "lsp server error: %v\n", err)
				os.Exit(1)
			}
		},
	}

	f := cmd.Flags()
	f.BoolVar(&flags.stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	f.IntVar(&flags.port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")
	f.StringVar(&flags.metricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics on this address (e.g. localhost:9090)")
	f.DurationVar(&flags.debounce, "debounce", 0,
		"Quiet period after an edit before a document is linted (default 300ms)")

	return cmd
}

// newLSPServer builds the server with the configured rules. Metrics are
// registered with reg when it is not nil.
func newLSPServer(cfg *config.Config, flags lspFlags, cc cmdConfig, reg prometheus.Registerer, log logrus.FieldLogger) *lsp.Server {
	rules, severity := cfg.ConfigureRules(append(lint.EnabledRules(), cc.rules...))
	l := &lint.Linter{
		Rules:    rules,
		Severity: severity,
		Logger:   log,
		Metrics:  lint.NewMetrics(reg),
	}
	opts := []lsp.Option{lsp.WithLinter(l), lsp.WithLogger(log)}
	if flags.debounce > 0 {
		opts = append(opts, lsp.WithDebounce(flags.debounce))
	}
	return lsp.New(opts...)
}

func runLSP(cfg *config.Config, flags lspFlags, cc cmdConfig, log *logrus.Logger) error {
	reg := cc.registerer
	if flags.metricsAddr != "" {
		r := prometheus.NewRegistry()
		r.MustRegister(collectors.NewGoCollector())
		reg = r
		go serveMetrics(flags.metricsAddr, r, log)
	}

	srv := newLSPServer(cfg, flags, cc, reg, log)
	if !flags.stdio && flags.port > 0 {
		addr := fmt.Sprintf("localhost:%d", flags.port)
		log.WithField("addr", addr).Info("nrlint LSP server listening")
		return srv.RunTCP(addr)
	}
	return srv.RunStdio()
}

func serveMetrics(addr string, g prometheus.Gatherer, log logrus.FieldLogger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	hs := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.WithField("addr", addr).Info("serving metrics")
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("metrics server stopped")
	}
}

func init() {
	rootCmd.AddCommand(LSPCommand())
}
