// Copyright © 2024 The NRefactory authors

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ezhangle/NRefactory/docs"
	"github.com/ezhangle/NRefactory/lint"
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const docWidth = 72

// RulesCommand creates the "rules" cobra command.
func RulesCommand(opts ...Option) *cobra.Command {
	cc := newCmdConfig(opts)
	var (
		format string
		all    bool
		page   bool
	)
	cmd := &cobra.Command{
		Use:   "rules [flags] [id...]",
		Short: "Describe the available rules",
		Long: `Describe the rules known to nrlint.

With no arguments every implemented rule is listed. Arguments select rules
by id or name. --all also lists ids that are reserved for rules without an
implementation; they are accepted in configuration but never report.

Examples:
  nrlint rules                     # Describe every rule
  nrlint rules NR0033              # Describe one rule
  nrlint rules --page NR0030       # Print the reference page of a rule
  nrlint rules --format=yaml --all # Export the whole catalog`,
		Run: func(cmd *cobra.Command, args []string) {
			var err error
			if page {
				err = writePages(cmd.OutOrStdout(), all, args, cc.rules)
			} else {
				err = writeRules(cmd.OutOrStdout(), format, all, args, cc.rules)
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, "nrlint rules:", err)
				os.Exit(exitUsage)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", `Output format: "text", "json" or "yaml".`)
	cmd.Flags().BoolVar(&all, "all", false, "Include reserved rule ids.")
	cmd.Flags().BoolVar(&page, "page", false, "Print the markdown reference page of each rule.")
	return cmd
}

// ruleInfo pairs a descriptor with the documentation of its rule.
type ruleInfo struct {
	Desc *lint.Descriptor
	Doc  string
}

// selectDescriptors returns the descriptors to describe, in id order.
func selectDescriptors(all bool, args []string, extra []lint.Rule) ([]ruleInfo, error) {
	docs := make(map[*lint.Descriptor]string)
	implemented := make(map[*lint.Descriptor]bool)
	var extraDescs []*lint.Descriptor
	for _, r := range append(lint.DefaultRules(), extra...) {
		d := r.Descriptor()
		implemented[d] = true
		if a, ok := r.(*lint.Analyzer); ok {
			docs[d] = a.Doc
		}
		if _, known := lint.DefaultCatalog.Lookup(d.ID); !known {
			extraDescs = append(extraDescs, d)
		}
	}
	candidates := append(lint.DefaultCatalog.Supported(), extraDescs...)

	var out []ruleInfo
	if len(args) > 0 {
		for _, arg := range args {
			var found *lint.Descriptor
			for _, d := range candidates {
				if d.Matches(arg) {
					found = d
					break
				}
			}
			if found == nil {
				return nil, fmt.Errorf("unknown rule: %q", arg)
			}
			out = append(out, ruleInfo{Desc: found, Doc: docs[found]})
		}
		return out, nil
	}
	for _, d := range candidates {
		if all || implemented[d] {
			out = append(out, ruleInfo{Desc: d, Doc: docs[d]})
		}
	}
	return out, nil
}

func writeRules(w io.Writer, format string, all bool, args []string, extra []lint.Rule) error {
	infos, err := selectDescriptors(all, args, extra)
	if err != nil {
		return err
	}
	descs := make([]*lint.Descriptor, len(infos))
	for i, info := range infos {
		descs[i] = info.Desc
	}
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(descs)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(descs); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		for i, info := range infos {
			if i > 0 {
				fmt.Fprintln(w)
			}
			writeRuleText(w, info)
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %q", format)
	}
}

// writePages prints the reference pages of the selected rules. Rules
// without a page fall back to their text description.
func writePages(w io.Writer, all bool, args []string, extra []lint.Rule) error {
	infos, err := selectDescriptors(all, args, extra)
	if err != nil {
		return err
	}
	for i, info := range infos {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if p, ok := docs.Rule(info.Desc.ID); ok {
			fmt.Fprint(w, p)
			continue
		}
		writeRuleText(w, info)
	}
	return nil
}

func writeRuleText(w io.Writer, info ruleInfo) {
	d := info.Desc
	state := ""
	if !d.EnabledByDefault {
		state = ", disabled"
	}
	fmt.Fprintf(w, "%s  %s  (%s, %s%s)\n", d.ID, d.Name, d.Category, d.DefaultSeverity, state)
	fmt.Fprintln(w, indent.String(wordwrap.String(d.Title, docWidth), 2))
	if doc := strings.TrimSpace(info.Doc); doc != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, indent.String(wordwrap.String(doc, docWidth), 4))
		fmt.Fprintln(w)
	}
	if d.Fix != nil {
		fmt.Fprintf(w, "  fix:  %s\n", d.Fix.Title)
	}
	if d.HelpLink != "" {
		fmt.Fprintf(w, "  help: %s\n", d.HelpLink)
	}
}

func init() {
	rootCmd.AddCommand(RulesCommand())
}
