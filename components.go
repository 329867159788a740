package main

import (
	"errors"
	"io"
	"path/filepath"
)

var (
	ErrNoInputs          = errors.New("no usable input files")
	ErrIterationMismatch = errors.New("iteration count mismatch")
	ErrMissingColumn     = errors.New("missing column")
)

// Env is what every analysis gets from the command line.
type Env struct {
	Root   string
	Out    string
	Filter Filter
	Stdout io.Writer
	Sink   Sink
}

// OutPath resolves a generated file name inside the output directory.
func (e Env) OutPath(name string) string {
	if e.Out == "" {
		return name
	}
	return filepath.Join(e.Out, name)
}

func (e Env) Record(analysis string, measurements []Measurement) error {
	if e.Sink == nil || len(measurements) == 0 {
		return nil
	}
	return e.Sink.Record(analysis, measurements)
}

// Measurement is a single derived number an analysis may publish.
type Measurement struct {
	Name        string
	Measurement string
	Value       float64
}

type Sink interface {
	Record(analysis string, measurements []Measurement) error
}
