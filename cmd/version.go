// Copyright © 2024 The NRefactory authors

package cmd

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version information. These variables can be overridden at build time
// via -ldflags "-X github.com/ezhangle/NRefactory/cmd.Version=...".
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	BuildDate = ""
)

func writeVersion(w io.Writer) {
	commit := GitCommit
	if commit == "" {
		if info, ok := debug.ReadBuildInfo(); ok {
			for _, s := range info.Settings {
				if s.Key == "vcs.revision" {
					commit = s.Value
				}
			}
		}
	}
	fmt.Fprintf(w, "nrlint %s", Version)
	if commit != "" {
		fmt.Fprintf(w, " (%s)", commit)
	}
	if BuildDate != "" {
		fmt.Fprintf(w, " built %s", BuildDate)
	}
	fmt.Fprintf(w, " %s/%s %s\n", runtime.GOOS, runtime.GOARCH, runtime.Version())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the nrlint version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		writeVersion(cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
