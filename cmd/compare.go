// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xataio/sandbench/cmd/flags"
	"github.com/xataio/sandbench/pkg/report"
	"github.com/xataio/sandbench/pkg/results"
)

func compareCmd() *cobra.Command {
	var csvPath string
	var failOnRegression bool

	compareCmd := &cobra.Command{
		Use:       "compare <new results> <old results>",
		Short:     "Compare two results files",
		Example:   "compare sandbench_results.yml main/sandbench_results.yml",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"new", "old"},
		RunE: func(cmd *cobra.Command, args []string) error {
			current, err := results.Read(args[0], Version)
			if err != nil {
				return err
			}
			old, err := results.Read(args[1], Version)
			if err != nil {
				return err
			}

			var opts []report.ExtractOption
			if flags.ReportRemoved() {
				opts = append(opts, report.WithRemoved())
			}
			threshold := flags.NoiseThreshold()
			entries := report.Extract(current, old, opts...)

			out := cmd.OutOrStdout()
			if err := report.WriteTable(out, entries, threshold); err != nil {
				return err
			}
			fmt.Fprintln(out)
			report.WriteSummary(out, report.SummarizeAll(entries, threshold))

			if csvPath != "" {
				f, err := os.Create(csvPath)
				if err != nil {
					return fmt.Errorf("creating csv report: %w", err)
				}
				defer f.Close()
				if err := report.WriteCSV(f, entries); err != nil {
					return err
				}
			}

			if failOnRegression && report.HasRegression(entries, threshold) {
				return errRegression
			}
			return nil
		},
	}

	compareCmd.Flags().StringVar(&csvPath, "csv", "", "Write a tab-separated report to this file")
	compareCmd.Flags().BoolVar(&failOnRegression, "fail-on-regression", false, "Exit with an error if the instructions of any benchmark regressed")

	return compareCmd
}
