// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xataio/sandbench/pkg/results"
)

var validateCmd = &cobra.Command{
	Use:       "validate <file>",
	Short:     "Validate a results file",
	Example:   "validate sandbench_results.yml",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"file"},
	RunE: func(cmd *cobra.Command, args []string) error {
		fileName := args[0]

		data, err := os.ReadFile(fileName)
		if err != nil {
			return fmt.Errorf("reading results file: %w", err)
		}

		f, err := results.Parse(fileName, data)
		if err != nil {
			return err
		}
		if err := results.CheckVersion(f.Version, Version); err != nil {
			return err
		}

		pterm.Success.Printfln("%s is valid (%d benchmarks, written by version %s)", fileName, len(f.Benches), f.Version)
		return nil
	},
}
