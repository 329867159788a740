package main

import (
	"fmt"
	"io"
	"os"

	"github.com/tidwall/gjson"
	"gonum.org/v1/plot/vg"
)

type CostModelOptions struct {
	Operator   string
	Features   []string
	MinRuntime float64
	MaxRuntime float64
}

func DefaultCostModelOptions() CostModelOptions {
	return CostModelOptions{
		Operator:   "JoinHash",
		Features:   []string{"MajorInputRowCount", "MinorInputRowCount", "OutputRowCount"},
		MinRuntime: 1000,
		MaxRuntime: 300 * 1000 * 1000,
	}
}

// CostSamples is the runtime and feature vector of every sample of one
// operator that passed the runtime window.
type CostSamples struct {
	Operator string
	Total    int
	Runtimes []float64
	Rows     [][]float64
}

// LoadCostSamples reads a JSON object mapping operator names to arrays of
// sample objects. Samples missing a feature are dropped.
func LoadCostSamples(path string, options CostModelOptions) (CostSamples, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CostSamples{}, fmt.Errorf("failed to read samples %v: %w", path, err)
	}
	if !gjson.ValidBytes(data) {
		return CostSamples{}, fmt.Errorf("samples %v: invalid json", path)
	}
	operators := gjson.ParseBytes(data)
	if !operators.IsObject() {
		return CostSamples{}, fmt.Errorf("samples %v: expected an object keyed by operator", path)
	}
	samples := operators.Get(options.Operator)
	if !samples.IsArray() {
		return CostSamples{}, fmt.Errorf("%w: no samples for operator %v in %v", ErrNoInputs, options.Operator, path)
	}

	result := CostSamples{Operator: options.Operator}
	samples.ForEach(func(_, sample gjson.Result) bool {
		result.Total++
		runtime := sample.Get("Runtime")
		if !runtime.Exists() {
			return true
		}
		value := runtime.Float()
		if value >= options.MaxRuntime || value <= options.MinRuntime {
			return true
		}
		row := make([]float64, len(options.Features))
		for i, feature := range options.Features {
			field := sample.Get(feature)
			if !field.Exists() {
				Logger.Debugf("sample without %v dropped", feature)
				return true
			}
			row[i] = field.Float()
		}
		result.Runtimes = append(result.Runtimes, value)
		result.Rows = append(result.Rows, row)
		return true
	})
	Logger.Infof("%v: %v samples, %v within runtime window", options.Operator, result.Total, len(result.Runtimes))
	return result, nil
}

type CostModelFit struct {
	Samples     CostSamples
	Model       LinearModel
	Predictions []float64
	Score       float64
}

func FitCostModel(path string, options CostModelOptions) (CostModelFit, error) {
	samples, err := LoadCostSamples(path, options)
	if err != nil {
		return CostModelFit{}, err
	}
	model, err := FitNonNegative(options.Features, samples.Rows, samples.Runtimes)
	if err != nil {
		return CostModelFit{}, fmt.Errorf("failed to fit %v: %w", options.Operator, err)
	}
	return CostModelFit{
		Samples:     samples,
		Model:       model,
		Predictions: model.PredictAll(samples.Rows),
		Score:       model.Score(samples.Rows, samples.Runtimes),
	}, nil
}

func WriteCostModelFit(w io.Writer, fit CostModelFit) {
	fmt.Fprintf(w, "%v: %v samples\n", fit.Samples.Operator, fit.Samples.Total)
	for i, actual := range fit.Samples.Runtimes {
		fmt.Fprintf(w, "%v %v\n", actual, int64(fit.Predictions[i]))
	}
	fmt.Fprintln(w, fit.Score)
	fmt.Fprintln(w, fit.Model.Coefficients)
}

func PlotCostModelFit(fit CostModelFit, path string) error {
	chart := NewChart(fit.Samples.Operator, "Measured runtime", "Predicted runtime")
	if err := chart.Scatter("", fit.Samples.Runtimes, fit.Predictions, vg.Points(0.4), nil); err != nil {
		return err
	}
	return chart.Save(path)
}

func costModelMeasurements(fit CostModelFit) []Measurement {
	measurements := make([]Measurement, 0, len(fit.Model.Features)+1)
	for i, feature := range fit.Model.Features {
		measurements = append(measurements, Measurement{Name: fit.Samples.Operator, Measurement: "coef_" + feature, Value: fit.Model.Coefficients[i]})
	}
	measurements = append(measurements, Measurement{Name: fit.Samples.Operator, Measurement: "r2", Value: fit.Score})
	return measurements
}
