// Copyright © 2024 The NRefactory authors

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/ezhangle/NRefactory/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Exit codes shared by the commands.
const (
	exitClean    = 0 // no problems found
	exitFindings = 1 // one or more problems were reported
	exitUsage    = 2 // bad invocation, unreadable files, bad config
)

var (
	cfgFile  string
	settings = config.New()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nrlint",
	Short: "nrlint - rule-driven static analysis for C#",
	Long: `nrlint finds redundant code and likely mistakes in C# sources.

Getting started:
  nrlint lint ./...              Lint every .cs file below the current directory
  nrlint lint --json Foo.cs      Print findings as JSON
  nrlint rules                   List the rules and their ids
  nrlint lsp                     Start the language server for editors

Configuration is read from --config, or from .nrlint.yaml in the working
directory or the home directory. Every key can also be set through an
NRLINT_ environment variable (NRLINT_JOBS, NRLINT_CACHE_DIR, ...):

  rules:
    NR0030: off          # never run redundant-internal
    NR0032: info         # report redundant commas as info
  exclude:
    - "**/obj/**"
  jobs: 8
  timeout: 2m
  cache-dir: ~/.cache/nrlint
  color: auto
  log-level: warning

More information:
  Source code:     https://github.com/ezhangle/NRefactory`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUsage)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./.nrlint.yaml or $HOME/.nrlint.yaml)")
	pf.String(config.KeyColor, "auto", `Control colored output: "auto", "always", or "never".`)
	pf.String(config.KeyLogLevel, "warning", `Log level: "debug", "info", "warning" or "error".`)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if err := config.ReadIn(settings, cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, "nrlint:", err)
		os.Exit(exitUsage)
	}
}

// loadConfig binds the flags of cmd, including inherited persistent
// flags, and decodes the settings.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	return loadConfigFrom(settings, cmd)
}

func loadConfigFrom(v *viper.Viper, cmd *cobra.Command) (*config.Config, error) {
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	return config.Load(v)
}

// newLogger returns the command logger writing to w at the configured level.
func newLogger(cfg *config.Config, w io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(w)
	log.SetLevel(cfg.Level())
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return log
}
