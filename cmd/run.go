// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/xataio/sandbench/cmd/flags"
	"github.com/xataio/sandbench/pkg/history"
	"github.com/xataio/sandbench/pkg/runner"
	"github.com/xataio/sandbench/pkg/trace"
)

func runCmd() *cobra.Command {
	var persist, lessVerbose, failOnRegression bool
	var useHistory bool
	var gitSHA, csvPath string
	var tracing, aggregate bool
	var traceDir, namesFile, traceFormat string

	runCmd := &cobra.Command{
		Use:       "run [pattern]",
		Short:     "Run benchmarks and compare them with the stored results",
		Example:   "run --persist\nrun insert --trace --names names.yml",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"pattern"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if flags.RuntimeCommand() == "" {
				return errNoRuntime
			}
			rt, err := runner.NewExecRuntime(flags.RuntimeCommand(), "")
			if err != nil {
				return err
			}

			var store runner.Store = &runner.FileStore{Path: flags.ResultsPath(), Version: Version}
			if useHistory {
				st, err := openHistory(ctx)
				if err != nil {
					return err
				}
				defer st.Close()
				store = &runner.HistoryStore{Store: st, GitSHA: gitSHA, Version: Version}
			}

			opts := []runner.Option{
				runner.WithNoiseThreshold(flags.NoiseThreshold()),
				runner.WithLogger(runner.NewLogger()),
				runner.WithOutput(cmd.OutOrStdout()),
			}
			if len(args) > 0 {
				opts = append(opts, runner.WithPattern(args[0]))
			}
			if persist {
				opts = append(opts, runner.WithPersist())
			}
			if lessVerbose {
				opts = append(opts, runner.WithLessVerbose())
			}
			if flags.ReportRemoved() {
				opts = append(opts, runner.WithReportRemoved())
			}

			if tracing {
				names, err := loadNames(namesFile)
				if err != nil {
					return err
				}
				if traceDir == "" {
					traceDir = filepath.Dir(flags.ResultsPath())
				}
				traceOpts := trace.DefaultOptions()
				traceOpts.MaxNodes = flags.MaxTraceNodes()
				traceOpts.Aggregate = aggregate
				format, err := trace.ParseFormat(traceFormat)
				if err != nil {
					return err
				}
				opts = append(opts, runner.WithTracing(traceDir, traceOpts, names), runner.WithTraceFormat(format))
			}

			if csvPath != "" {
				f, err := os.Create(csvPath)
				if err != nil {
					return fmt.Errorf("creating csv report: %w", err)
				}
				defer f.Close()
				opts = append(opts, runner.WithCSV(f))
			}

			rep, err := runner.New(rt, store, opts...).Run(ctx)
			if err != nil {
				return err
			}

			if failOnRegression && rep.Regressed {
				return errRegression
			}
			return nil
		},
	}

	runCmd.Flags().BoolVar(&persist, "persist", false, "Save the results of the run as the new baseline")
	runCmd.Flags().BoolVar(&lessVerbose, "less-verbose", false, "Only print the final table and summary, not the comparison of every benchmark")
	runCmd.Flags().BoolVar(&failOnRegression, "fail-on-regression", false, "Exit with an error if the instructions of any benchmark regressed")
	runCmd.Flags().BoolVar(&useHistory, "history", false, "Compare with and persist to the Postgres history store instead of the results file")
	runCmd.Flags().StringVar(&gitSHA, "git-sha", "", "Commit recorded with runs persisted to the history store")
	runCmd.Flags().StringVar(&csvPath, "csv", "", "Write a tab-separated report to this file")
	runCmd.Flags().BoolVar(&tracing, "trace", false, "Reconstruct instruction traces and write collapsed stacks for flamegraphs")
	runCmd.Flags().BoolVar(&aggregate, "aggregate", false, "Merge calls to the same function in traces")
	runCmd.Flags().StringVar(&traceDir, "trace-dir", "", "Directory for collapsed stack files (default is the results file directory)")
	runCmd.Flags().StringVar(&namesFile, "names", "", "YAML file mapping function ids to names")
	runCmd.Flags().StringVar(&traceFormat, "trace-format", "folded", "Format of the trace files: folded, json or yaml")

	return runCmd
}

// openHistory connects to the history store and checks that it is
// initialized.
func openHistory(ctx context.Context) (*history.Store, error) {
	st, err := history.New(ctx, flags.PostgresURL(), flags.HistorySchema())
	if err != nil {
		return nil, err
	}

	ok, err := st.IsInitialized(ctx)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("checking history store: %w", err)
	}
	if !ok {
		st.Close()
		return nil, errHistoryNotInitialized
	}
	return st, nil
}

func loadNames(path string) (trace.NameTable, error) {
	if path == "" {
		return trace.NameTable{}, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening name table: %w", err)
	}
	defer f.Close()

	return trace.LoadNames(f)
}
