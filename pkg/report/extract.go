// SPDX-License-Identifier: Apache-2.0

package report

import "github.com/xataio/sandbench/pkg/measurement"

type extractOptions struct {
	removed bool
}

type ExtractOption func(*extractOptions)

// WithRemoved also reports benchmarks and scopes only present in history.
func WithRemoved() ExtractOption {
	return func(o *extractOptions) {
		o.removed = true
	}
}

// Extract compares the current results with the historical ones. It emits
// one entry per benchmark total followed by one per scope of that
// benchmark, benchmarks and scopes in sorted name order. Scopes are
// compared against history independently of whether their benchmark is
// new.
func Extract(current, old measurement.Results, opts ...ExtractOption) []Entry {
	o := &extractOptions{}
	for _, opt := range opts {
		opt(o)
	}

	var entries []Entry
	for _, name := range current.Names() {
		bench := current[name]
		prev, hasPrev := old[name]

		status := StatusNew
		var oldTotal *measurement.Measurement
		if hasPrev {
			status = ""
			oldTotal = &prev.Total
		}
		entries = append(entries, newEntry(status, Benchmark{Name: name}, bench.Total, oldTotal))

		for _, scope := range bench.ScopeNames() {
			status := StatusNew
			var oldScope *measurement.Measurement
			if m, ok := prev.Scope(scope); hasPrev && ok {
				status = ""
				oldScope = &m
			}
			entries = append(entries, newEntry(status, Benchmark{Name: name, Scope: scope}, bench.Scopes[scope], oldScope))
		}
	}

	if o.removed {
		entries = append(entries, removed(current, old)...)
	}
	return entries
}

func removed(current, old measurement.Results) []Entry {
	var entries []Entry
	for _, name := range old.Names() {
		prev := old[name]
		bench, exists := current[name]
		if !exists {
			entries = append(entries, removedEntry(Benchmark{Name: name}, prev.Total))
		}
		for _, scope := range prev.ScopeNames() {
			if _, ok := bench.Scope(scope); exists && ok {
				continue
			}
			entries = append(entries, removedEntry(Benchmark{Name: name, Scope: scope}, prev.Scopes[scope]))
		}
	}
	return entries
}
