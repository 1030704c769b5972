// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/xataio/sandbench/cmd/flags"
	"github.com/xataio/sandbench/pkg/history"
	"github.com/xataio/sandbench/pkg/results"
)

func historyCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Manage benchmark history stored in Postgres",
	}

	historyCmd.AddCommand(historyInitCmd)
	historyCmd.AddCommand(historyPushCmd())
	historyCmd.AddCommand(historyPullCmd())
	historyCmd.AddCommand(historyListCmd())

	return historyCmd
}

var historyInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the history schema and tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		sp, _ := pterm.DefaultSpinner.WithText("Initializing history store...").Start()

		st, err := history.New(ctx, flags.PostgresURL(), flags.HistorySchema())
		if err != nil {
			sp.Fail(fmt.Sprintf("Failed to connect: %s", err))
			return err
		}
		defer st.Close()

		if err := st.Init(ctx); err != nil {
			sp.Fail(fmt.Sprintf("Failed to initialize history store: %s", err))
			return err
		}

		sp.Success(fmt.Sprintf("History store ready in schema %q", st.Schema()))
		return nil
	},
}

func historyPushCmd() *cobra.Command {
	var gitSHA string

	pushCmd := &cobra.Command{
		Use:       "push [results file]",
		Short:     "Push a results file to the history store as a new run",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"file"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			path := flags.ResultsPath()
			if len(args) > 0 {
				path = args[0]
			}

			r, err := results.Read(path, Version)
			if err != nil {
				return err
			}

			st, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			sp, _ := pterm.DefaultSpinner.WithText("Pushing results...").Start()
			run, err := st.Push(ctx, gitSHA, Version, r)
			if err != nil {
				sp.Fail(fmt.Sprintf("Failed to push results: %s", err))
				return err
			}

			sp.Success(fmt.Sprintf("Pushed %d benchmarks as run %s", len(r), run.ID))
			return nil
		},
	}

	pushCmd.Flags().StringVar(&gitSHA, "git-sha", "", "Commit the results were measured at")

	return pushCmd
}

func historyPullCmd() *cobra.Command {
	var output string

	pullCmd := &cobra.Command{
		Use:   "pull",
		Short: "Write the latest run in the history store to a results file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			st, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			run, r, err := st.Latest(ctx)
			if err != nil {
				return err
			}
			if err := results.CheckVersion(run.Version, Version); err != nil {
				return err
			}

			if output == "" {
				output = flags.ResultsPath()
			}
			if err := results.Write(output, run.Version, r); err != nil {
				return err
			}

			pterm.Success.Printfln("Wrote run %s (%s) to %s", run.ID, run.CreatedAt.Format("2006-01-02 15:04:05"), output)
			return nil
		},
	}

	pullCmd.Flags().StringVarP(&output, "output", "o", "", "Results file to write (default is the configured results file)")

	return pullCmd
}

func historyListCmd() *cobra.Command {
	var limit int

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List the runs in the history store, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			st, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.Runs(ctx, limit)
			if err != nil {
				return err
			}

			data := pterm.TableData{{"id", "created at", "git sha", "version"}}
			for _, r := range runs {
				data = append(data, []string{r.ID.String(), r.CreatedAt.Format("2006-01-02 15:04:05"), r.GitSHA, r.Version})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(cmd.OutOrStdout()).Render()
		},
	}

	listCmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")

	return listCmd
}
