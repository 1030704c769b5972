// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"errors"
	"fmt"
)

var ErrNoBenchmarks = errors.New("no benchmarks matched")

// BenchmarkError is returned when the runtime fails to execute a benchmark.
type BenchmarkError struct {
	Name string
	Err  error
}

func (e BenchmarkError) Error() string {
	return fmt.Sprintf("benchmark %q failed: %s", e.Name, e.Err)
}

func (e BenchmarkError) Unwrap() error {
	return e.Err
}

// RuntimeError carries the diagnostic output of a failed runtime command.
type RuntimeError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e RuntimeError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("runtime command %q failed: %s: %s", e.Args, e.Err, e.Stderr)
	}
	return fmt.Sprintf("runtime command %q failed: %s", e.Args, e.Err)
}

func (e RuntimeError) Unwrap() error {
	return e.Err
}
