// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xataio/sandbench/pkg/measurement"
	"github.com/xataio/sandbench/pkg/report"
	"github.com/xataio/sandbench/pkg/trace"
)

// Runner executes benchmarks one after another and compares their results
// with history.
type Runner struct {
	runtime Runtime
	store   Store
	opts    *options
}

// Report is the outcome of a run.
type Report struct {
	Results   measurement.Results
	Entries   []report.Entry
	Summaries []report.Summary

	// Reconstruction failures, keyed by benchmark name
	TraceErrors map[string]error

	// Whether the instructions of any benchmark total regressed
	Regressed bool
}

func New(rt Runtime, store Store, opts ...Option) *Runner {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return &Runner{runtime: rt, store: store, opts: o}
}

// Run executes the selected benchmarks, prints the comparison with the
// stored history and, if requested, persists the new results.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	names, err := r.benchmarks(ctx)
	if err != nil {
		return nil, err
	}

	old, err := r.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading results from %s: %w", r.store, err)
	}
	r.opts.logger.Info("comparing with stored results", "store", r.store.String(), "benchmarks", len(names), "history", len(old))

	rep := &Report{
		Results:     make(measurement.Results, len(names)),
		TraceErrors: map[string]error{},
	}

	for _, name := range names {
		r.opts.logger.LogBenchmarkStart(name)

		result, err := r.runtime.Run(ctx, name)
		if err != nil {
			return nil, BenchmarkError{Name: name, Err: err}
		}
		rep.Results[name] = result
		r.opts.logger.LogBenchmarkComplete(name, result)

		if !r.opts.lessVerbose {
			var prev *measurement.BenchResult
			if p, ok := old[name]; ok {
				prev = &p
			}
			report.PrintBenchmark(r.opts.out, name, result, prev, r.opts.noiseThreshold)
			fmt.Fprintln(r.opts.out)
		}

		if r.opts.tracing {
			if err := r.trace(ctx, name, result.Total.Instructions); err != nil {
				rep.TraceErrors[name] = err
				r.opts.logger.LogTraceFailed(name, err)
			}
		}
	}

	r.compare(rep, old)
	if err := r.write(rep); err != nil {
		return nil, err
	}

	if r.opts.persist {
		if err := r.store.Save(ctx, rep.Results); err != nil {
			return nil, fmt.Errorf("persisting results to %s: %w", r.store, err)
		}
		r.opts.logger.LogResultsPersisted(r.store.String(), len(rep.Results))
	}

	return rep, nil
}

func (r *Runner) benchmarks(ctx context.Context) ([]string, error) {
	all, err := r.runtime.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing benchmarks: %w", err)
	}

	var names []string
	for _, name := range all {
		if strings.Contains(name, r.opts.pattern) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, ErrNoBenchmarks
	}
	return names, nil
}

func (r *Runner) compare(rep *Report, old measurement.Results) {
	var opts []report.ExtractOption
	if r.opts.reportRemoved {
		opts = append(opts, report.WithRemoved())
	}

	rep.Entries = report.Extract(rep.Results, old, opts...)
	rep.Summaries = report.SummarizeAll(rep.Entries, r.opts.noiseThreshold)
	rep.Regressed = report.HasRegression(rep.Entries, r.opts.noiseThreshold)
}

func (r *Runner) write(rep *Report) error {
	if err := report.WriteTable(r.opts.out, rep.Entries, r.opts.noiseThreshold); err != nil {
		return err
	}
	fmt.Fprintln(r.opts.out)
	report.WriteSummary(r.opts.out, rep.Summaries)

	if r.opts.csv != nil {
		if err := report.WriteCSV(r.opts.csv, rep.Entries); err != nil {
			return fmt.Errorf("writing csv report: %w", err)
		}
	}
	return nil
}

// trace reconstructs the instruction trace of a benchmark and writes the
// profile to <traceDir>/<name>.<ext>. A partially written file is removed.
func (r *Runner) trace(ctx context.Context, name string, instructions uint64) error {
	buf, err := r.runtime.Trace(ctx, name, instructions)
	if err != nil {
		return err
	}

	profile, err := trace.Reconstruct(buf, instructions, r.opts.traceOpts)
	if err != nil {
		return err
	}

	path := filepath.Join(r.opts.traceDir, TraceFileName(name, r.opts.traceFormat))
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := trace.NewWriter(f, r.opts.traceFormat, r.opts.names.WithRoot(name))
	if err := w.Write(profile); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("writing %s: %w", path, err)
	}

	r.opts.logger.LogTraceWritten(name, path, profile.Root.Count(), profile.Truncated)
	return nil
}

var fileNameEscaper = strings.NewReplacer("/", "_", "\\", "_", ":", "_", " ", "_")

// TraceFileName is the name of the profile file of a benchmark written in
// format f.
func TraceFileName(benchmark string, f trace.Format) string {
	return fileNameEscaper.Replace(benchmark) + "." + f.Extension()
}
