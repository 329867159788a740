package main

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const costSamples = `{
  "JoinHash": [
    {"Runtime": 3000, "MajorInputRowCount": 2, "MinorInputRowCount": 0},
    {"Runtime": 2100, "MajorInputRowCount": 0, "MinorInputRowCount": 3},
    {"Runtime": 4400, "MajorInputRowCount": 2, "MinorInputRowCount": 2},
    {"Runtime": 2200, "MajorInputRowCount": 1, "MinorInputRowCount": 1},
    {"Runtime": 500, "MajorInputRowCount": 1, "MinorInputRowCount": 0},
    {"Runtime": 400000000, "MajorInputRowCount": 1, "MinorInputRowCount": 0},
    {"Runtime": 5000, "MajorInputRowCount": 1}
  ],
  "Sort": [{"Runtime": 2000, "InputRowCount": 1}]
}`

func costModelOptions() CostModelOptions {
	options := DefaultCostModelOptions()
	options.Features = []string{"MajorInputRowCount", "MinorInputRowCount"}
	return options
}

func TestLoadCostSamples(t *testing.T) {
	path := writeFile(t, t.TempDir(), "samples.json", costSamples)
	samples, err := LoadCostSamples(path, costModelOptions())
	require.Nil(t, err)
	require.Equal(t, 7, samples.Total)
	require.Equal(t, []float64{3000, 2100, 4400, 2200}, samples.Runtimes)
	require.Equal(t, [][]float64{{2, 0}, {0, 3}, {2, 2}, {1, 1}}, samples.Rows)

	options := costModelOptions()
	options.Operator = "Missing"
	_, err = LoadCostSamples(path, options)
	require.ErrorIs(t, err, ErrNoInputs)

	broken := writeFile(t, t.TempDir(), "broken.json", "{")
	_, err = LoadCostSamples(broken, costModelOptions())
	require.NotNil(t, err)
}

func TestFitCostModel(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "samples.json", costSamples)
	fit, err := FitCostModel(path, costModelOptions())
	require.Nil(t, err)
	require.InDeltaSlice(t, []float64{1500, 700}, fit.Model.Coefficients, 1e-6)
	require.InDelta(t, 1.0, fit.Score, 1e-9)
	require.Len(t, costModelMeasurements(fit), 3)

	var out strings.Builder
	WriteCostModelFit(&out, fit)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Equal(t, "JoinHash: 7 samples", lines[0])
	require.Len(t, lines, 1+4+2)

	plotPath := filepath.Join(dir, "fit.png")
	require.Nil(t, PlotCostModelFit(fit, plotPath))
	requireNonEmptyFile(t, plotPath)
}
