// SPDX-License-Identifier: Apache-2.0

package benchmarks

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"
)

// ReportRecorder collects the throughput of the core algorithms across one
// `go test -bench` invocation. The recorded line is consumed by the chart
// builder under dev/benchmark-results.
type ReportRecorder struct {
	mu        sync.Mutex
	GitSHA    string
	GoVersion string
	Timestamp int64
	Reports   []Report
}

func (r *ReportRecorder) AddReport(report Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Reports = append(r.Reports, report)
}

// WriteLine appends the recorder as a single JSON line to path.
func (r *ReportRecorder) WriteLine(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	line, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding benchmark reports: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(append(line, '\n'))
	return err
}

func newReportRecorder() *ReportRecorder {
	return &ReportRecorder{
		GitSHA:    os.Getenv("GITHUB_SHA"),
		GoVersion: runtime.Version(),
		Timestamp: time.Now().Unix(),
		Reports:   []Report{},
	}
}

type Report struct {
	Name   string
	Size   int
	Unit   string
	Result float64
}
