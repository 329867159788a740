package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
)

// Frame is a CSV file held in memory with cells addressed by header name.
type Frame struct {
	header []string
	index  map[string]int
	rows   [][]string
}

func ReadFrame(path string) (*Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ParseFrame(file)
}

func ParseFrame(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty csv: no header")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	frame := &Frame{header: header, index: make(map[string]int, len(header))}
	for i, column := range header {
		frame.index[strings.TrimSpace(column)] = i
	}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %v: %w", len(frame.rows)+1, err)
		}
		frame.rows = append(frame.rows, record)
	}
	return frame, nil
}

func (f *Frame) Len() int { return len(f.rows) }

func (f *Frame) Columns() []string { return slices.Clone(f.header) }

func (f *Frame) Has(column string) bool {
	_, ok := f.index[column]
	return ok
}

func (f *Frame) Strings(column string) ([]string, error) {
	i, ok := f.index[column]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingColumn, column)
	}
	values := make([]string, len(f.rows))
	for row, record := range f.rows {
		values[row] = strings.TrimSpace(record[i])
	}
	return values, nil
}

// Floats parses a column as float64. Empty and "nan" cells become NaN.
func (f *Frame) Floats(column string) ([]float64, error) {
	raw, err := f.Strings(column)
	if err != nil {
		return nil, err
	}
	return parseFloats(column, raw)
}

// FloatsAt is Floats addressed by column position.
func (f *Frame) FloatsAt(i int) ([]float64, error) {
	if i < 0 || i >= len(f.header) {
		return nil, fmt.Errorf("%w #%v", ErrMissingColumn, i)
	}
	return f.Floats(strings.TrimSpace(f.header[i]))
}

func parseFloats(column string, raw []string) ([]float64, error) {
	values := make([]float64, len(raw))
	for i, cell := range raw {
		if cell == "" || strings.EqualFold(cell, "nan") {
			values[i] = math.NaN()
			continue
		}
		value, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("column %v row %v: %w", column, i+1, err)
		}
		values[i] = value
	}
	return values, nil
}

func WriteCSV(path string, header []string, rows [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	writer := csv.NewWriter(file)
	if err := writer.Write(header); err != nil {
		file.Close()
		return err
	}
	if err := writer.WriteAll(rows); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
