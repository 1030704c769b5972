// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"cmp"
	"encoding/json"
	"fmt"
	"log"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:          "build <inputfile> <outputfile>",
	SilenceUsage: true,
	Args:         cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return buildCharts(args[0], args[1])
	},
}

// Renders the throughput of the sandbench core algorithms over time as line
// charts, one per algorithm and Go toolchain version.
func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func buildCharts(inputFile, outputFile string) error {
	log.Println("Loading data")
	reports, err := loadData(inputFile)
	if err != nil {
		return fmt.Errorf("loading data: %w", err)
	}
	log.Printf("Loaded %d reports", len(reports))

	page := components.NewPage()
	page.SetPageTitle("sandbench throughput")
	page.SetLayout("flex")
	for _, c := range generateCharts(reports) {
		page.AddCharts(c)
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := page.Render(f); err != nil {
		return fmt.Errorf("rendering: %w", err)
	}
	log.Printf("Charts generated at %s", outputFile)

	return nil
}

type chartKey struct {
	goVersion string
	algorithm string
}

// chartData holds the points of one chart: the commits on the x axis and
// one value per (commit, input size).
type chartData struct {
	unit   string
	shas   []string
	points map[string]map[int]float64
}

// generateCharts groups reports by Go version and algorithm, with one
// series per input size and commits ordered by time on the x axis.
func generateCharts(reports []BenchmarkReports) []*charts.Line {
	timeOrder := make(map[string]int64)
	grouped := make(map[chartKey]*chartData)
	sizes := make(map[int]struct{})

	for _, run := range reports {
		sha := shortSHA(run.GitSHA)
		timeOrder[sha] = run.Timestamp
		for _, r := range run.Reports {
			ck := chartKey{goVersion: run.GoVersion, algorithm: trimName(r.Name)}
			d, ok := grouped[ck]
			if !ok {
				d = &chartData{unit: r.Unit, points: make(map[string]map[int]float64)}
				grouped[ck] = d
			}
			if d.points[sha] == nil {
				d.points[sha] = make(map[int]float64)
				d.shas = append(d.shas, sha)
			}
			d.points[sha][r.Size] = r.Result
			sizes[r.Size] = struct{}{}
		}
	}

	sortedSizes := slices.Sorted(maps.Keys(sizes))

	allCharts := make([]*charts.Line, 0, len(grouped))
	for ck, d := range grouped {
		slices.SortStableFunc(d.shas, func(a, b string) int {
			return cmp.Compare(timeOrder[a], timeOrder[b])
		})

		chart := charts.NewLine()
		chart.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{
				Title:    fmt.Sprintf("%s (%s)", ck.algorithm, ck.goVersion),
				Subtitle: d.unit,
			}),
			charts.WithAnimation(false))
		chart.SetXAxis(d.shas)

		for _, size := range sortedSizes {
			var data []opts.LineData
			for _, sha := range d.shas {
				if v, ok := d.points[sha][size]; ok {
					data = append(data, opts.LineData{Value: v})
				}
			}
			if len(data) > 0 {
				chart.AddSeries(strconv.Itoa(size), data)
			}
		}

		allCharts = append(allCharts, chart)
	}

	slices.SortFunc(allCharts, func(a, b *charts.Line) int {
		return cmp.Compare(a.Title.Title, b.Title.Title)
	})
	return allCharts
}

// loadData reads one JSON document per line, each holding the reports of a
// single commit.
func loadData(filename string) ([]BenchmarkReports, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	var all []BenchmarkReports
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var reports BenchmarkReports
		if err := json.Unmarshal([]byte(line), &reports); err != nil {
			return nil, fmt.Errorf("unmarshalling reports: %w", err)
		}
		all = append(all, reports)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning input: %w", err)
	}
	return all, nil
}

// Reports are named after the Go sub-benchmark, which carries the input
// size as its last path element.
func trimName(name string) string {
	name = strings.TrimPrefix(name, "Benchmark")
	if i := strings.LastIndex(name, "/"); i != -1 {
		name = name[:i]
	}
	return name
}

func shortSHA(sha string) string {
	if len(sha) <= 7 {
		return sha
	}
	return sha[:7]
}

type BenchmarkReports struct {
	GitSHA    string
	GoVersion string
	Timestamp int64
	Reports   []BenchmarkReport
}

type BenchmarkReport struct {
	Name   string
	Size   int
	Unit   string
	Result float64
}
