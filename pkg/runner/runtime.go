// SPDX-License-Identifier: Apache-2.0

package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/xataio/sandbench/pkg/measurement"
)

// Runtime executes benchmarks in the sandbox and reports their
// measurements.
type Runtime interface {
	// List returns the names of the available benchmarks.
	List(ctx context.Context) ([]string, error)

	// Run executes a benchmark and returns its measurements.
	Run(ctx context.Context, name string) (measurement.BenchResult, error)

	// Trace executes a benchmark with instruction tracing enabled and
	// returns the raw trace buffer. instructions is the benchmark's
	// instruction count measured without tracing.
	Trace(ctx context.Context, name string, instructions uint64) ([]byte, error)
}

// ExecRuntime runs an external command as the sandbox runtime:
//
//	<command> list                         benchmark names, one per line
//	<command> run <name>                   the BenchResult as JSON
//	<command> trace <name> <instructions>  the raw trace buffer
type ExecRuntime struct {
	Command []string
	Dir     string
}

// NewExecRuntime builds an ExecRuntime from a command line. Arguments are
// split on whitespace.
func NewExecRuntime(commandLine, dir string) (*ExecRuntime, error) {
	command := strings.Fields(commandLine)
	if len(command) == 0 {
		return nil, errors.New("runtime command is empty")
	}
	return &ExecRuntime{Command: command, Dir: dir}, nil
}

func (r *ExecRuntime) List(ctx context.Context) ([]string, error) {
	out, err := r.exec(ctx, "list")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, line := range strings.Split(string(out), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func (r *ExecRuntime) Run(ctx context.Context, name string) (measurement.BenchResult, error) {
	out, err := r.exec(ctx, "run", name)
	if err != nil {
		return measurement.BenchResult{}, err
	}

	var result measurement.BenchResult
	if err := json.Unmarshal(out, &result); err != nil {
		return measurement.BenchResult{}, fmt.Errorf("decoding result of %s: %w", name, err)
	}
	return result, nil
}

func (r *ExecRuntime) Trace(ctx context.Context, name string, instructions uint64) ([]byte, error) {
	return r.exec(ctx, "trace", name, strconv.FormatUint(instructions, 10))
}

func (r *ExecRuntime) exec(ctx context.Context, args ...string) ([]byte, error) {
	argv := append(append([]string{}, r.Command[1:]...), args...)

	cmd := exec.CommandContext(ctx, r.Command[0], argv...)
	cmd.Dir = r.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, RuntimeError{
			Args:   append([]string{r.Command[0]}, argv...),
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return stdout.Bytes(), nil
}
