// Package main provides a performance benchmarking tool for the jirametrics CLI.
// It measures report generation times for growing date ranges, running each
// case multiple times, treating the first successful cached run as cold and
// averaging the rest as warm, and writes CSV output for performance analysis.
//
// Prerequisites:
// - jirametrics binary installed and available in PATH
// - A work directory with a templates folder and a .jirametrics.yaml that
//   sets auth-url (and credentials if the templates carry none)
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory the reports are generated in
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark case (no-cache average, cold run and average of warm runs).
type BenchmarkResult struct {
	Case        string
	Command     string
	NoCacheTime string
	ColdTime    string
	WarmTime    string
}

// BenchmarkCase is one command with its date range.
type BenchmarkCase struct {
	Name     string
	Command  string
	Template string
	Start    string
	End      string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir     string
	Timeout     time.Duration
	NoCacheRuns int
	CacheRuns   int
	Cases       []BenchmarkCase
}

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}
	workDir := os.Args[1]

	config := BenchmarkConfig{
		WorkDir:     workDir,
		Timeout:     10 * time.Minute,
		NoCacheRuns: 2,
		CacheRuns:   3,
		Cases: []BenchmarkCase{
			{"month", "report", "Option1", "2024-01-01", "2024-01-31"},
			{"quarter", "report", "Option1", "2024-01-01", "2024-03-31"},
			{"year", "report", "Option1", "2024-01-01", "2024-12-31"},
			{"quarter", "defect-age", "Option2", "2024-01-01", "2024-03-31"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clearing cache...\n")
	clearCmd := exec.Command("jirametrics", "cache", "clear")
	clearCmd.Dir = workDir
	if output, err := clearCmd.CombinedOutput(); err != nil {
		fmt.Printf("Warning: failed to clear cache: %v\nOutput: %s\n", err, string(output))
	} else {
		fmt.Printf("Cache cleared successfully\n")
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the binary and the templates directory exist.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("jirametrics"); err != nil {
		return fmt.Errorf("jirametrics binary not found in PATH")
	}
	templates := filepath.Join(config.WorkDir, "templates")
	if _, err := os.Stat(templates); os.IsNotExist(err) {
		return fmt.Errorf("templates directory not found at %s", templates)
	}
	return nil
}

// runBenchmarks executes all benchmark cases.
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d cases, %v timeout, no-cache: %d runs, cache: %d runs\n",
		len(config.Cases), config.Timeout, config.NoCacheRuns, config.CacheRuns)

	for _, c := range config.Cases {
		results = append(results, runBenchmarkSuite(config, c))
	}
	return results
}

// runBenchmarkSuite runs both no-cache and cache benchmarks for a case.
func runBenchmarkSuite(config BenchmarkConfig, c BenchmarkCase) BenchmarkResult {
	fmt.Printf("Running %s over %s (%s to %s)\n", c.Command, c.Name, c.Start, c.End)

	runPhase := func(cacheBackend string, numRuns int, phaseName string) (coldTime float64, avgTime string) {
		fmt.Printf("  %s phase (%d runs)\n", phaseName, numRuns)
		cold, times := runBenchmark(config, c, cacheBackend, numRuns)
		if len(times) == 0 {
			avgTime = "TIMEOUT"
		} else {
			var sum float64
			for _, t := range times {
				sum += t
			}
			avgTime = fmt.Sprintf("%.3fs", sum/float64(len(times)))
		}
		return cold, avgTime
	}

	_, noCacheAvg := runPhase("none", config.NoCacheRuns, "No-cache")
	coldTime, warmAvg := runPhase("sqlite", config.CacheRuns, "Cache")

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}

	fmt.Printf("  No-cache average: %s, Cold time: %s, Warm average: %s\n", noCacheAvg, coldTimeStr, warmAvg)

	return BenchmarkResult{
		Case:        c.Name,
		Command:     c.Command,
		NoCacheTime: noCacheAvg,
		ColdTime:    coldTimeStr,
		WarmTime:    warmAvg,
	}
}

// runBenchmark executes a case multiple times with the given cache backend and returns cold time and warm times.
func runBenchmark(config BenchmarkConfig, c BenchmarkCase, cacheBackend string, numRuns int) (coldTime float64, warmTimes []float64) {
	args := []string{
		c.Command,
		"--template", c.Template,
		"--start", c.Start,
		"--end", c.End,
		"--output", "csv",
		"--output-dir", filepath.Join(config.WorkDir, "benchmark-out"),
		"--cache-backend", cacheBackend,
	}

	var times []float64
	for run := 1; run <= numRuns; run++ {
		start := time.Now()

		cmd := exec.Command("jirametrics", args...)
		cmd.Dir = config.WorkDir

		done := make(chan bool, 1)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion.
func isSuccess(output []byte) bool {
	return strings.Contains(string(output), "Generated")
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := filepath.Join(os.TempDir(), fmt.Sprintf("jirametrics_benchmark_%s.csv", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"case", "cmd", "no_cache_avg", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Case, result.Command, result.NoCacheTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary.
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range []string{"report", "defect-age"} {
		fmt.Printf("%s:\n", command)
		for _, result := range results {
			if result.Command == command {
				fmt.Printf("  %-8s: No-cache: %s, Cold: %s, Warm: %s\n", result.Case, result.NoCacheTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
