package main

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func bruteInversions(values []float64) int {
	count := 0
	for i := range values {
		for j := i + 1; j < len(values); j++ {
			if values[i] > values[j] {
				count++
			}
		}
	}
	return count
}

func TestCountInversions(t *testing.T) {
	require.Equal(t, 0, CountInversions(nil))
	require.Equal(t, 0, CountInversions([]float64{1, 2, 3}))
	require.Equal(t, 3, CountInversions([]float64{3, 2, 1}))
	require.Equal(t, 2, CountInversions([]float64{1, 1, 0.5}))

	rng := rand.New(rand.NewSource(1))
	for n := 0; n < 50; n++ {
		values := make([]float64, n)
		for i := range values {
			values[i] = float64(rng.Intn(10))
		}
		original := append([]float64(nil), values...)
		require.Equal(t, bruteInversions(values), CountInversions(values))
		require.Equal(t, original, values)
	}
}

func TestDisorder(t *testing.T) {
	require.Equal(t, 0.0, Disorder(0, 1))
	require.Equal(t, 1.0, Disorder(3, 3))
	require.InDelta(t, 0.5, Disorder(3, 4), 1e-12)
}

func TestMinPositive(t *testing.T) {
	value, idx, ok := MinPositive([]float64{0, 5, 3, 3, 0})
	require.True(t, ok)
	require.Equal(t, 3.0, value)
	require.Equal(t, 2, idx)

	_, _, ok = MinPositive([]float64{0, 0})
	require.False(t, ok)
}

func TestColumnMeans(t *testing.T) {
	means := ColumnMeans([][]float64{{1, 2, math.NaN()}, {3, 4, 6}})
	require.Equal(t, []float64{2, 3, 6}, means)
}
