// Package main provides a performance benchmarking tool for the starsview CLI.
// It measures execution times across data locations and command types,
// running each test multiple times, treating the first successful run as cold and averaging the rest as warm,
// generating CSV output for performance analysis and documentation.
//
// Prerequisites:
// - starsview binary installed and available in PATH
// - Data locations reachable (shard directories, bundle files or base URLs)
//
// Usage: go run benchmark/main.go [data-location...]
//
//	data-location: Shard directory, bundle .json file or base URL
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// BenchmarkResult holds the result of a benchmark run (cold run and average of warm runs).
type BenchmarkResult struct {
	Location string
	Command  string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	Locations []string
	Timeout   time.Duration
	Workers   int
	Runs      int
	Commands  map[string][]string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Printf("Usage: %s [data-location...]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		Locations: os.Args[1:],
		Timeout:   2 * time.Minute,
		Workers:   8,
		Runs:      4,
		Commands: map[string][]string{
			"series":   {"series", "--metric", "measure_stars", "--quick", "humana,cvs,unh,all_ma"},
			"total":    {"series", "--metric", "total_raw_stars_score", "--quick", "all_ma"},
			"export":   {"export", "--output", "csv", "--output-file", os.DevNull, "--quick", "humana,all_ma"},
			"measures": {"measures", "--output", "csv"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	results := runBenchmarks(config)

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(results)
}

// checkPrerequisites verifies that the starsview binary and local data locations exist
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("starsview"); err != nil {
		return fmt.Errorf("starsview binary not found in PATH")
	}

	for _, location := range config.Locations {
		if isURL(location) {
			continue
		}
		if _, err := os.Stat(location); os.IsNotExist(err) {
			return fmt.Errorf("data location %s not found", location)
		}
	}

	return nil
}

func isURL(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// runBenchmarks executes all benchmark commands across configured data locations
func runBenchmarks(config BenchmarkConfig) []BenchmarkResult {
	var results []BenchmarkResult

	fmt.Printf("Starting benchmark: %d locations, %v timeout, %d workers, %d runs\n",
		len(config.Locations), config.Timeout, config.Workers, config.Runs)

	for _, location := range config.Locations {
		fmt.Printf("Benchmarking %s\n", location)
		for _, name := range []string{"series", "total", "export", "measures"} {
			results = append(results, runBenchmarkSuite(config, location, name))
		}
	}

	return results
}

// runBenchmarkSuite runs one command repeatedly and summarizes the timings
func runBenchmarkSuite(config BenchmarkConfig, location, name string) BenchmarkResult {
	fmt.Printf("Running %s on %s\n", name, location)

	coldTime, warmTimes := runBenchmark(config, location, config.Commands[name])

	coldTimeStr := "TIMEOUT"
	if coldTime > 0 {
		coldTimeStr = fmt.Sprintf("%.3fs", coldTime)
	}
	warmAvg := "TIMEOUT"
	if len(warmTimes) > 0 {
		var sum float64
		for _, t := range warmTimes {
			sum += t
		}
		warmAvg = fmt.Sprintf("%.3fs", sum/float64(len(warmTimes)))
	}

	fmt.Printf("  Cold time: %s, Warm average: %s\n", coldTimeStr, warmAvg)

	return BenchmarkResult{
		Location: location,
		Command:  name,
		ColdTime: coldTimeStr,
		WarmTime: warmAvg,
	}
}

// runBenchmark executes a starsview command multiple times and returns cold time and warm times
func runBenchmark(config BenchmarkConfig, location string, command []string) (coldTime float64, warmTimes []float64) {
	args := append([]string{}, command...)
	args = append(args, "--data", location, "--workers", fmt.Sprint(config.Workers), "--snapshot-backend", "none")

	var times []float64
	for run := 1; run <= config.Runs; run++ {
		start := time.Now()

		cmd := exec.Command("starsview", args...)

		done := make(chan bool)
		var output []byte
		var cmdErr error

		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output, command[0]) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			if cmd.Process != nil {
				_ = cmd.Process.Kill()
			}
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

// isSuccess checks if command output indicates successful completion
func isSuccess(output []byte, command string) bool {
	if command != "series" {
		return true
	}
	outputStr := string(output)
	return strings.Contains(outputStr, "Series view completed in") &&
		strings.Contains(outputStr, "workers")
}

// saveResults writes benchmark results to a timestamped CSV file
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/starsview_benchmark_%s.csv", timestamp)

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

	if err := writer.Write([]string{"location", "cmd", "cold_time", "warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, result := range results {
		if err := writer.Write([]string{result.Location, result.Command, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results summary
func printSummary(results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")

	printCommandSummary(results, "series", "Measure Series:")
	printCommandSummary(results, "total", "Total Score Series:")
	printCommandSummary(results, "export", "CSV Export:")
	printCommandSummary(results, "measures", "Measure Catalog:")
}

// printCommandSummary displays results for a specific command type
func printCommandSummary(results []BenchmarkResult, command, title string) {
	fmt.Printf("%s\n", title)
	for _, result := range results {
		if result.Command == command {
			fmt.Printf("  %-30s: Cold: %s, Warm: %s\n", result.Location, result.ColdTime, result.WarmTime)
		}
	}
}
