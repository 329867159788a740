package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
)

// DefaultResultFiles are the four plan-cache / result-limit configurations,
// reference first.
var DefaultResultFiles = []string{
	"result_wo_pc_wo_rl.json",
	"result_w_pc_wo_rl.json",
	"result_wo_pc_w_rl.json",
	"result_w_pc_w_rl.json",
}

var CompareMeasurements = []string{"cpu_time", "real_time", "items_per_second"}

type BenchmarkRun struct {
	Name           string  `json:"name"`
	CPUTime        float64 `json:"cpu_time"`
	RealTime       float64 `json:"real_time"`
	ItemsPerSecond float64 `json:"items_per_second"`
}

func (r BenchmarkRun) Value(measurement string) (float64, error) {
	switch measurement {
	case "cpu_time":
		return r.CPUTime, nil
	case "real_time":
		return r.RealTime, nil
	case "items_per_second":
		return r.ItemsPerSecond, nil
	}
	return 0, fmt.Errorf("unknown measurement %q", measurement)
}

// BenchmarkResults is the JSON written by google benchmark.
type BenchmarkResults struct {
	Label      string         `json:"-"`
	Benchmarks []BenchmarkRun `json:"benchmarks"`
}

func LoadBenchmarkResults(path string) (BenchmarkResults, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return BenchmarkResults{}, err
	}
	var results BenchmarkResults
	if err := json.Unmarshal(data, &results); err != nil {
		return BenchmarkResults{}, fmt.Errorf("failed to parse %v: %w", path, err)
	}
	results.Label = strings.TrimSuffix(strings.TrimPrefix(filepath.Base(path), "result_"), ".json")
	return results, nil
}

// ResultFiles returns the default configuration files in root, or every
// result_*.json when all is set.
func ResultFiles(root string, all bool) ([]string, error) {
	if !all {
		files := make([]string, len(DefaultResultFiles))
		for i, name := range DefaultResultFiles {
			files[i] = filepath.Join(root, name)
		}
		return files, nil
	}
	files, err := ListFiles(root, ".json")
	if err != nil {
		return nil, err
	}
	result := make([]string, 0, len(files))
	for _, file := range files {
		if strings.HasPrefix(filepath.Base(file), "result_") {
			result = append(result, file)
		}
	}
	return result, nil
}

// LoadComparison loads result files, the first being the reference. Files
// that fail to load or cover fewer benchmarks than the reference are
// skipped; a broken reference fails the comparison.
func LoadComparison(files []string) ([]BenchmarkResults, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no result files", ErrNoInputs)
	}
	results := make([]BenchmarkResults, 0, len(files))
	for i, file := range files {
		loaded, err := LoadBenchmarkResults(file)
		if err != nil {
			if i == 0 {
				return nil, fmt.Errorf("reference %v: %w", file, err)
			}
			Logger.Warnf("skipping %v: %v", filepath.Base(file), err)
			continue
		}
		if i > 0 && len(loaded.Benchmarks) < len(results[0].Benchmarks) {
			Logger.Warnf("skipping %v: %v benchmarks, reference has %v", filepath.Base(file), len(loaded.Benchmarks), len(results[0].Benchmarks))
			continue
		}
		results = append(results, loaded)
	}
	return results, nil
}

func round(value float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(value*scale) / scale
}

// WriteComparison prints, per measurement and benchmark, the raw values of
// every configuration and their percentage of the reference.
func WriteComparison(w io.Writer, results []BenchmarkResults) error {
	labels := make([]string, len(results))
	for i, result := range results {
		labels[i] = "'" + result.Label + "'"
	}
	fmt.Fprintf(w, "[%v]\n", strings.Join(labels, ", "))
	reference := results[0]
	for _, measurement := range CompareMeasurements {
		fmt.Fprintf(w, "%v:\n", measurement)
		for i, run := range reference.Benchmarks {
			base, err := run.Value(measurement)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%v : ", run.Name)
			for _, result := range results {
				value, _ := result.Benchmarks[i].Value(measurement)
				fmt.Fprintf(w, "%v, ", round(value, 4))
			}
			fmt.Fprintln(w)
			fmt.Fprintf(w, "%v %% : ", strings.Repeat(" ", max(len(run.Name)-2, 0)))
			for _, result := range results {
				value, _ := result.Benchmarks[i].Value(measurement)
				fmt.Fprintf(w, "%v, ", round(100*value/base, 2))
			}
			fmt.Fprintln(w)
		}
	}
	return nil
}

func comparisonMeasurements(results []BenchmarkResults) []Measurement {
	measurements := make([]Measurement, 0)
	for _, result := range results {
		for _, run := range result.Benchmarks {
			for _, measurement := range CompareMeasurements {
				value, _ := run.Value(measurement)
				measurements = append(measurements, Measurement{
					Name:        result.Label + "/" + run.Name,
					Measurement: measurement,
					Value:       value,
				})
			}
		}
	}
	return measurements
}
