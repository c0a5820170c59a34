// Copyright © 2024 The NRefactory authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/ezhangle/NRefactory/cache"
	"github.com/ezhangle/NRefactory/config"
	"github.com/ezhangle/NRefactory/lint"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

const stdinName = "<stdin>"

type lintFlags struct {
	json   bool
	checks string
	list   bool
	watch  bool
}

// lintRun is one invocation of the lint command.
type lintRun struct {
	cfg    *config.Config
	flags  lintFlags
	cc     cmdConfig
	log    *logrus.Logger
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// LintCommand creates the "lint" cobra command. Embedders can pass
// WithRules to run their own checks alongside the built-in ones.
func LintCommand(opts ...Option) *cobra.Command {
	cc := newCmdConfig(opts)
	var flags lintFlags

	cmd := &cobra.Command{
		Use:   "lint [flags] [paths...]",
		Short: "Run static analysis checks on C# source files",
		Long: `Run static analysis checks on C# source files.

The linter reports redundant code and likely mistakes, similar to "go vet"
for Go. Each check is an independent rule with a stable id (NRxxxx) that
examines the parsed syntax tree and reports diagnostics.

Paths may be files, directories (searched recursively for .cs files),
patterns ending in "/..." or doublestar globs such as "src/**/*.cs". With
no paths, reads from stdin. Findings are written to stderr, or to stdout
as JSON with --json.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (invalid flags, unreadable files, bad config, timeout)

To suppress a specific diagnostic, add a comment on the same line:
  internal class Foo {} // nolint:NR0030

To suppress all checks on a line:
  internal class Foo {} // nolint

To suppress a region:
  #pragma warning disable NR0030
  ...
  #pragma warning restore NR0030

Available checks (use --checks to select specific ones):
` + lint.RuleDoc() + `
Examples:
  nrlint lint Foo.cs                              # Lint a single file
  nrlint lint ./...                               # Lint a directory tree
  nrlint lint 'src/**/*.cs'                       # Lint files matching a glob
  nrlint lint --json Foo.cs                       # Output diagnostics as JSON
  nrlint lint --checks=NR0030,NR0032 ./...        # Run only specific checks
  nrlint lint --list                              # List available checks
  nrlint lint --exclude='**/obj/**' ./...         # Exclude paths
  nrlint lint --watch src                         # Re-lint files as they change
  cat Foo.cs | nrlint lint                        # Lint from stdin`,
		Run: func(cmd *cobra.Command, args []string) {
			cfg, err := loadConfig(cmd)
			if err != nil {
				fmt.Fprintln(os.Stderr, "nrlint lint:", err)
				os.Exit(exitUsage)
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			r := &lintRun{
				cfg:    cfg,
				flags:  flags,
				cc:     cc,
				log:    newLogger(cfg, os.Stderr),
				stdin:  os.Stdin,
				stdout: os.Stdout,
				stderr: os.Stderr,
			}
			code := r.run(ctx, args)
			stop()
			if code != exitClean {
				os.Exit(code)
			}
		},
	}

	f := cmd.Flags()
	f.BoolVar(&flags.json, "json", false,
		"Output diagnostics as JSON.")
	f.StringVar(&flags.checks, "checks", "",
		"Comma-separated list of check ids or names to run (default: all enabled).")
	f.BoolVar(&flags.list, "list", false,
		"List available checks and exit.")
	f.BoolVar(&flags.watch, "watch", false,
		"Keep running and re-lint files when they change.")
	f.StringArray(config.KeyExclude, nil,
		"Glob pattern for paths to exclude (may be repeated).")
	f.Int(config.KeyJobs, 0,
		"Number of files linted concurrently (default: number of CPUs).")
	f.Duration(config.KeyTimeout, 0,
		"Abort a run that takes longer than this (e.g. 30s).")
	f.String(config.KeyCacheDir, "",
		"Directory of the result cache (default: $XDG_CACHE_HOME/nrlint).")
	f.Bool(config.KeyNoCache, false,
		"Do not read or write the result cache.")

	return cmd
}

func (r *lintRun) errorf(format string, args ...interface{}) {
	fmt.Fprintf(r.stderr, "nrlint lint: "+format+"\n", args...)
}

// run executes the command and returns its exit code.
func (r *lintRun) run(ctx context.Context, args []string) int {
	if r.flags.list {
		for _, d := range lint.DefaultCatalog.Supported() {
			fmt.Fprintf(r.stdout, "%s\t%s\n", d.ID, d.Name)
		}
		return exitClean
	}

	l, err := r.newLinter()
	if err != nil {
		r.errorf("%v", err)
		return exitUsage
	}

	if len(args) == 0 {
		if r.flags.watch {
			r.errorf("--watch needs at least one path")
			return exitUsage
		}
		return r.lintStdin(ctx, l)
	}

	paths, err := expandArgs(args, r.cfg.Exclude)
	if err != nil {
		r.errorf("%v", err)
		return exitUsage
	}
	if r.flags.watch {
		return r.watch(ctx, l, args, paths)
	}
	return r.lintPaths(ctx, l, paths)
}

// newLinter builds the linter from the selected checks and configuration.
func (r *lintRun) newLinter() (*lint.Linter, error) {
	rules := lint.EnabledRules()
	if r.flags.checks != "" {
		selected, err := lint.SelectRules(strings.Split(r.flags.checks, ","))
		if err != nil {
			return nil, err
		}
		rules = selected
	}
	rules = append(rules, r.cc.rules...)
	rules, severity := r.cfg.ConfigureRules(rules)

	l := &lint.Linter{
		Rules:    rules,
		Severity: severity,
		Logger:   r.log,
		Metrics:  lint.NewMetrics(r.cc.registerer),
		Version:  Version,
	}
	if r.cfg.NoCache {
		return l, nil
	}
	dir := r.cfg.CacheDir
	if dir == "" {
		d, err := cache.DefaultDir("nrlint")
		if err != nil {
			r.log.WithError(err).Debug("no user cache directory; caching in memory")
		}
		dir = d
	}
	c, err := cache.New(0, dir, r.log)
	if err != nil {
		return nil, err
	}
	l.Cache = c
	return l, nil
}

// withTimeout applies the configured timeout to a single run.
func (r *lintRun) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.cfg.Timeout > 0 {
		return context.WithTimeout(ctx, r.cfg.Timeout)
	}
	return context.WithCancel(ctx)
}

func (r *lintRun) lintStdin(ctx context.Context, l *lint.Linter) int {
	src, err := io.ReadAll(r.stdin)
	if err != nil {
		r.errorf("reading stdin: %v", err)
		return exitUsage
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	res, err := l.LintFileContext(ctx, src, stdinName)
	if err != nil {
		r.errorf("%v", err)
		return exitUsage
	}
	return r.report([]*lint.Result{res}, map[string][]byte{stdinName: src})
}

func (r *lintRun) lintPaths(ctx context.Context, l *lint.Linter, paths []string) int {
	srcs := make([]lint.Source, len(paths))
	for i, p := range paths {
		srcs[i] = lint.Source{Filename: p}
	}
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	results, err := l.LintFiles(ctx, srcs, r.cfg.Jobs)
	if err != nil {
		for _, e := range multierr.Errors(err) {
			r.errorf("%v", e)
		}
		return exitUsage
	}
	return r.report(results, nil)
}

// report prints the results and returns the exit code they imply.
func (r *lintRun) report(results []*lint.Result, src map[string][]byte) int {
	var (
		diags    []lint.Diagnostic
		problems int
	)
	for _, res := range results {
		if res == nil {
			continue
		}
		if res.Canceled {
			r.errorf("%s: analysis canceled", res.File)
			return exitUsage
		}
		for _, id := range res.Disabled {
			r.log.WithFields(logrus.Fields{"file": res.File, "rule": id}).Warn("rule disabled after internal error")
		}
		diags = append(diags, res.Diagnostics...)
		problems += len(res.Diagnostics) + len(res.SyntaxErrors)
	}
	lint.SortDiagnostics(diags)

	if r.flags.json {
		for _, res := range results {
			if res == nil {
				continue
			}
			for _, se := range res.SyntaxErrors {
				fmt.Fprintln(r.stderr, se.Error())
			}
		}
		if err := lint.FormatJSON(r.stdout, diags); err != nil {
			r.errorf("%v", err)
			return exitUsage
		}
	} else if problems > 0 {
		if err := renderResults(r.stderr, newRenderer(r.cfg.Color, src), results); err != nil {
			r.errorf("%v", err)
			return exitUsage
		}
	}
	if problems > 0 {
		return exitFindings
	}
	return exitClean
}

func readFile(path string) ([]byte, error) {
	return os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
}

func init() {
	rootCmd.AddCommand(LintCommand())
}
