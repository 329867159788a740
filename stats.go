package main

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnMeans averages rows index-wise, ignoring NaN cells. Rows may differ
// in length; the result has the length of the longest row.
func ColumnMeans(rows [][]float64) []float64 {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	means := make([]float64, width)
	column := make([]float64, 0, len(rows))
	for i := range means {
		column = column[:0]
		for _, row := range rows {
			if i < len(row) && !math.IsNaN(row[i]) {
				column = append(column, row[i])
			}
		}
		if len(column) == 0 {
			means[i] = math.NaN()
			continue
		}
		means[i] = stat.Mean(column, nil)
	}
	return means
}

// Positive keeps the strictly positive values. Zero marks a timed out run.
func Positive(values []float64) []float64 {
	result := make([]float64, 0, len(values))
	for _, value := range values {
		if value > 0 {
			result = append(result, value)
		}
	}
	return result
}

// MinPositive returns the smallest positive value and its first index.
func MinPositive(values []float64) (float64, int, bool) {
	best, idx := 0.0, -1
	for i, value := range values {
		if value > 0 && (idx < 0 || value < best) {
			best, idx = value, i
		}
	}
	return best, idx, idx >= 0
}

func Sum(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return floats.Sum(values)
}

// CountInversions counts pairs i < j with values[i] > values[j].
func CountInversions(values []float64) int {
	buffer := make([]float64, len(values))
	work := make([]float64, len(values))
	copy(work, values)
	return mergeCount(work, buffer)
}

func mergeCount(values, buffer []float64) int {
	if len(values) < 2 {
		return 0
	}
	mid := len(values) / 2
	count := mergeCount(values[:mid], buffer[:mid]) + mergeCount(values[mid:], buffer[mid:])
	i, j, k := 0, mid, 0
	for i < mid && j < len(values) {
		if values[j] < values[i] {
			count += mid - i
			buffer[k] = values[j]
			j++
		} else {
			buffer[k] = values[i]
			i++
		}
		k++
	}
	k += copy(buffer[k:], values[i:mid])
	copy(buffer[k:], values[j:])
	copy(values, buffer[:len(values)])
	return count
}

// Disorder normalizes an inversion count to [0, 1].
func Disorder(inversions, n int) float64 {
	pairs := n * (n - 1) / 2
	if pairs == 0 {
		return 0
	}
	return float64(inversions) / float64(pairs)
}
