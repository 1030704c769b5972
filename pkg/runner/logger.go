// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"github.com/pterm/pterm"

	"github.com/xataio/sandbench/pkg/measurement"
)

// Logger is responsible for logging the steps of a benchmark run.
type Logger interface {
	LogBenchmarkStart(name string)
	LogBenchmarkComplete(name string, result measurement.BenchResult)
	LogTraceWritten(name, path string, nodes int, truncated bool)
	LogTraceFailed(name string, err error)
	LogResultsPersisted(destination string, benchmarks int)

	Info(msg string, args ...any)
}

type runLogger struct {
	logger pterm.Logger
}

type noopLogger struct{}

func NewLogger() Logger {
	return &runLogger{logger: pterm.DefaultLogger}
}

func NewNoopLogger() Logger {
	return &noopLogger{}
}

func (l *runLogger) LogBenchmarkStart(name string) {
	l.logger.Debug("running benchmark", l.logger.Args("name", name))
}

func (l *runLogger) LogBenchmarkComplete(name string, result measurement.BenchResult) {
	l.logger.Debug("benchmark complete", l.logger.Args([]any{
		"name", name,
		"instructions", result.Total.Instructions,
		"scope_count", len(result.Scopes),
	}))
}

func (l *runLogger) LogTraceWritten(name, path string, nodes int, truncated bool) {
	if truncated {
		l.logger.Warn("instruction trace truncated to fit the node budget", l.logger.Args([]any{
			"name", name,
			"path", path,
			"nodes", nodes,
		}))
		return
	}
	l.logger.Info("wrote instruction trace", l.logger.Args([]any{
		"name", name,
		"path", path,
		"nodes", nodes,
	}))
}

func (l *runLogger) LogTraceFailed(name string, err error) {
	l.logger.Error("failed to reconstruct instruction trace", l.logger.Args("name", name, "error", err.Error()))
}

func (l *runLogger) LogResultsPersisted(destination string, benchmarks int) {
	l.logger.Info("persisted results", l.logger.Args("destination", destination, "benchmark_count", benchmarks))
}

func (l *runLogger) Info(msg string, args ...any) {
	l.logger.Info(msg, l.logger.Args(args...))
}

func (l *noopLogger) LogBenchmarkStart(name string) {}

func (l *noopLogger) LogBenchmarkComplete(name string, result measurement.BenchResult) {}

func (l *noopLogger) LogTraceWritten(name, path string, nodes int, truncated bool) {}

func (l *noopLogger) LogTraceFailed(name string, err error) {}

func (l *noopLogger) LogResultsPersisted(destination string, benchmarks int) {}

func (l *noopLogger) Info(msg string, args ...any) {}
