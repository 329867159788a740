package main

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"

	"github.com/montanaflynn/stats"
)

const BaselineFile = "baseline.csv"

var baselineHeader = []string{"Name", "MinExeDuration", "MaxExeDuration", "AverageExeDuration", "MedianExeDuration"}

type BaselineRow struct {
	Name    string
	Min     float64
	Max     float64
	Average float64
	Median  float64
}

func SummarizeDurations(name string, durations []float64) (BaselineRow, error) {
	data := make(stats.Float64Data, 0, len(durations))
	for _, duration := range durations {
		if !math.IsNaN(duration) {
			data = append(data, duration)
		}
	}
	row := BaselineRow{Name: name}
	var err error
	if row.Min, err = stats.Min(data); err != nil {
		return BaselineRow{}, fmt.Errorf("%v: %w", name, err)
	}
	if row.Max, err = stats.Max(data); err != nil {
		return BaselineRow{}, fmt.Errorf("%v: %w", name, err)
	}
	if row.Average, err = stats.Mean(data); err != nil {
		return BaselineRow{}, fmt.Errorf("%v: %w", name, err)
	}
	if row.Median, err = stats.Median(data); err != nil {
		return BaselineRow{}, fmt.Errorf("%v: %w", name, err)
	}
	return row, nil
}

// Baseline summarizes the Duration column of every JOB csv in the root.
func Baseline(env Env) ([]BaselineRow, error) {
	files, err := ListFiles(env.Root, ".csv")
	if err != nil {
		return nil, err
	}
	rows := make([]BaselineRow, 0, len(files))
	for _, file := range files {
		Logger.Infof("processing %v", filepath.Base(file))
		name, ok := QueryNameWithPrefix(file)
		if !ok || !env.Filter.Allows(name) {
			Logger.Infof("skipping %v", filepath.Base(file))
			continue
		}
		frame, err := ReadFrame(file)
		if err != nil {
			Logger.Warnf("couldn't parse %v: %v", filepath.Base(file), err)
			continue
		}
		if !frame.Has("Duration") {
			Logger.Infof("skipping %v: no Duration column", filepath.Base(file))
			continue
		}
		durations, err := frame.Floats("Duration")
		if err != nil {
			Logger.Warnf("couldn't parse %v: %v", filepath.Base(file), err)
			continue
		}
		row, err := SummarizeDurations(name, durations)
		if err != nil {
			Logger.Warnf("skipping %v: %v", filepath.Base(file), err)
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoInputs, env.Root)
	}

	records := make([][]string, len(rows))
	measurements := make([]Measurement, 0, 4*len(rows))
	for i, row := range rows {
		records[i] = []string{row.Name, formatFloat(row.Min), formatFloat(row.Max), formatFloat(row.Average), formatFloat(row.Median)}
		measurements = append(measurements,
			Measurement{Name: row.Name, Measurement: "min", Value: row.Min},
			Measurement{Name: row.Name, Measurement: "max", Value: row.Max},
			Measurement{Name: row.Name, Measurement: "average", Value: row.Average},
			Measurement{Name: row.Name, Measurement: "median", Value: row.Median},
		)
	}
	path := env.OutPath(BaselineFile)
	if err := WriteCSV(path, baselineHeader, records); err != nil {
		return nil, fmt.Errorf("failed to write %v: %w", path, err)
	}
	Logger.Infof("wrote %v rows to %v", len(rows), path)
	return rows, env.Record("baseline", measurements)
}

// LoadBaseline reads a baseline file into name -> MinExeDuration.
func LoadBaseline(path string) (map[string]float64, error) {
	frame, err := ReadFrame(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read baseline %v: %w", path, err)
	}
	names, err := frame.Strings("Name")
	if err != nil {
		return nil, fmt.Errorf("baseline %v: %w", path, err)
	}
	mins, err := frame.Floats("MinExeDuration")
	if err != nil {
		return nil, fmt.Errorf("baseline %v: %w", path, err)
	}
	result := make(map[string]float64, len(names))
	for i, name := range names {
		result[name] = mins[i]
	}
	return result, nil
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
