package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const cacheHeader = "CECacheDistinctHitCount,CECacheDistinctMissCount"

func TestHitFrequencies(t *testing.T) {
	require.Equal(t, []float64{0, 0.25, 1}, HitFrequencies([]float64{0, 1, 4}, []float64{0, 3, 0}))
}

func TestTrimConverged(t *testing.T) {
	require.Equal(t, []float64{0, 0.5, 0.8}, TrimConverged([]float64{0, 0.5, 0.8, 0.8, 0.8}))
	require.Equal(t, []float64{0.5, 0.5}, TrimConverged([]float64{0.5, 0.5, 0.5}))
	require.Equal(t, []float64{0.1, 0.2}, TrimConverged([]float64{0.1, 0.2}))
	require.Equal(t, []float64{0.3}, TrimConverged([]float64{0.3}))
}

func TestCacheHits(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "JOB-1a.Iterations.csv", cacheHeader, "0,10", "5,5", "8,2", "8,2", "8,2")
	writeFile(t, root, "JOB-2a.Iterations.csv", cacheHeader, "1,1", "1,1", "1,1", "1,1", "1,1")
	writeFile(t, root, "JOB-3a.Iterations.csv", "Other", "1", "1", "1", "1", "1")

	env := testEnv(t, root)
	result, err := CacheHits(env)
	require.Nil(t, err)
	require.Len(t, result.Curves, 2)
	require.Equal(t, []float64{0, 0.5, 0.8}, result.Curves[0].Plotted)
	require.Equal(t, []float64{0.5, 0.5}, result.Curves[1].Plotted)

	expected := []float64{0.25, 0.5, 0.65, 0.65, 0.65}
	require.Len(t, result.Mean, len(expected))
	for i := range expected {
		require.InDelta(t, expected[i], result.Mean[i], 1e-9)
	}

	measurements := cacheMeasurements(result)
	require.Len(t, measurements, 3)
	require.Equal(t, Measurement{Name: "1a", Measurement: "converged_hit_frequency", Value: 0.8}, measurements[0])

	path := filepath.Join(env.Out, "cecache.svg")
	require.Nil(t, PlotCacheHits(result, path))
	requireNonEmptyFile(t, path)
}

func TestCacheHitsWithoutCounters(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "JOB-1a.Iterations.csv", "Other", "1")
	_, err := CacheHits(testEnv(t, root))
	require.ErrorIs(t, err, ErrNoInputs)
}
