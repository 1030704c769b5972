// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xataio/sandbench/cmd/flags"
	"github.com/xataio/sandbench/pkg/trace"
)

func traceCmd() *cobra.Command {
	var benchInstructions uint64
	var aggregate bool
	var namesFile, rootName, format, output string

	traceCmd := &cobra.Command{
		Use:       "trace <buffer file>",
		Short:     "Reconstruct the call tree of a raw instruction trace",
		Example:   "trace insert.trace --bench-instructions 1250000 --names names.yml > insert.folded",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"file"},
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading trace buffer: %w", err)
			}

			f, err := trace.ParseFormat(format)
			if err != nil {
				return err
			}

			names, err := loadNames(namesFile)
			if err != nil {
				return err
			}
			if rootName == "" {
				rootName = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
			}

			opts := trace.DefaultOptions()
			opts.MaxNodes = flags.MaxTraceNodes()
			opts.Aggregate = aggregate

			profile, err := trace.Reconstruct(buf, benchInstructions, opts)
			if err != nil {
				return err
			}
			if profile.Truncated {
				pterm.Warning.Printfln("Trace truncated to %d nodes", profile.Root.Count())
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				file, err := os.Create(output)
				if err != nil {
					return err
				}
				defer file.Close()
				w = file
			}

			return trace.NewWriter(w, f, names.WithRoot(rootName)).Write(profile)
		},
	}

	traceCmd.Flags().Uint64Var(&benchInstructions, "bench-instructions", 0, "Instructions of the benchmark measured without tracing")
	traceCmd.Flags().BoolVar(&aggregate, "aggregate", false, "Merge calls to the same function")
	traceCmd.Flags().StringVar(&namesFile, "names", "", "YAML file mapping function ids to names")
	traceCmd.Flags().StringVar(&rootName, "name", "", "Name of the root frame (default is the buffer file name)")
	traceCmd.Flags().StringVarP(&format, "format", "f", "folded", "Output format: folded, json or yaml")
	traceCmd.Flags().StringVarP(&output, "output", "o", "", "Write the profile to this file instead of stdout")

	traceCmd.MarkFlagRequired("bench-instructions")

	return traceCmd
}
