// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"io"

	"github.com/xataio/sandbench/pkg/measurement"
	"github.com/xataio/sandbench/pkg/trace"
)

type options struct {
	// only run benchmarks whose name contains this substring
	pattern string

	// percentage below which changes are noise
	noiseThreshold float64

	// reconstruct instruction traces and write them to traceDir
	tracing  bool
	traceDir string

	// trace reconstruction settings, output format and function names
	traceOpts   trace.Options
	traceFormat trace.Format
	names       trace.NameTable

	// report benchmarks that only exist in history
	reportRemoved bool

	// save the results of the run to the store
	persist bool

	// optional CSV report destination
	csv io.Writer

	// skip the per-benchmark comparison printed as each benchmark completes
	lessVerbose bool

	logger Logger
	out    io.Writer
}

type Option func(*options)

// WithPattern restricts the run to benchmarks whose name contains pattern.
func WithPattern(pattern string) Option {
	return func(o *options) {
		o.pattern = pattern
	}
}

// WithNoiseThreshold sets the percentage below which a change is treated
// as noise.
func WithNoiseThreshold(threshold float64) Option {
	return func(o *options) {
		o.noiseThreshold = threshold
	}
}

// WithTracing reconstructs the instruction trace of every benchmark and
// writes its collapsed stacks to dir.
func WithTracing(dir string, opts trace.Options, names trace.NameTable) Option {
	return func(o *options) {
		o.tracing = true
		o.traceDir = dir
		o.traceOpts = opts
		o.names = names
	}
}

// WithTraceFormat sets the format trace profiles are written in. The
// default is collapsed stacks.
func WithTraceFormat(f trace.Format) Option {
	return func(o *options) {
		o.traceFormat = f
	}
}

// WithReportRemoved reports benchmarks present in history but missing from
// the run.
func WithReportRemoved() Option {
	return func(o *options) {
		o.reportRemoved = true
	}
}

// WithPersist saves the results of the run to the store.
func WithPersist() Option {
	return func(o *options) {
		o.persist = true
	}
}

// WithCSV writes a CSV report of the run to w.
func WithCSV(w io.Writer) Option {
	return func(o *options) {
		o.csv = w
	}
}

// WithLessVerbose only prints the final table and summary, not the
// comparison of every benchmark as it completes.
func WithLessVerbose() Option {
	return func(o *options) {
		o.lessVerbose = true
	}
}

// WithLogger sets the logger of the run.
func WithLogger(l Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithOutput sets where reports are printed.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

func defaultOptions() *options {
	return &options{
		noiseThreshold: measurement.DefaultNoiseThreshold,
		traceOpts:      trace.DefaultOptions(),
		traceFormat:    trace.FoldedFormat,
		logger:         NewNoopLogger(),
		out:            io.Discard,
	}
}
