package main

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Chart wraps a gonum plot and hands out palette colors in the order series
// are added.
type Chart struct {
	*plot.Plot
	next int
}

func NewChart(title, xLabel, yLabel string) *Chart {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Legend.Top = true
	return &Chart{Plot: p}
}

func (c *Chart) nextColor() color.Color {
	col := plotutil.Color(c.next)
	c.next++
	return col
}

func toXYs(xs, ys []float64) (plotter.XYs, error) {
	if len(xs) != len(ys) {
		return nil, fmt.Errorf("series length mismatch: %v x values, %v y values", len(xs), len(ys))
	}
	points := make(plotter.XYs, len(xs))
	for i := range xs {
		points[i].X = xs[i]
		points[i].Y = ys[i]
	}
	return points, nil
}

// Line draws a polyline and returns the color it was given. An empty label
// keeps the series out of the legend.
func (c *Chart) Line(label string, xs, ys []float64, width vg.Length) (color.Color, error) {
	points, err := toXYs(xs, ys)
	if err != nil {
		return nil, err
	}
	col := c.nextColor()
	if len(points) == 0 {
		return col, nil
	}
	line, err := plotter.NewLine(points)
	if err != nil {
		return nil, err
	}
	line.Color = col
	line.Width = width
	c.Add(line)
	if label != "" {
		c.Legend.Add(label, line)
	}
	return col, nil
}

func (c *Chart) Scatter(label string, xs, ys []float64, radius vg.Length, col color.Color) error {
	points, err := toXYs(xs, ys)
	if err != nil {
		return err
	}
	if len(points) == 0 {
		return nil
	}
	if col == nil {
		col = c.nextColor()
	}
	scatter, err := plotter.NewScatter(points)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Color = col
	scatter.GlyphStyle.Radius = radius
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	c.Add(scatter)
	if label != "" {
		c.Legend.Add(label, scatter)
	}
	return nil
}

func (c *Chart) HLine(y float64) {
	line := plotter.NewFunction(func(float64) float64 { return y })
	line.Color = color.Black
	line.Width = vg.Points(0.5)
	c.Add(line)
}

func (c *Chart) Annotate(x, y float64, text string, col color.Color) error {
	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    plotter.XYs{{X: x, Y: y}},
		Labels: []string{text},
	})
	if err != nil {
		return err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = col
	}
	c.Add(labels)
	return nil
}

// BarGroup is one bar per category, drawn side by side with other groups.
type BarGroup struct {
	Label  string
	Values []float64
}

func (c *Chart) Bars(categories []string, groups []BarGroup, width vg.Length) error {
	for i, group := range groups {
		if len(group.Values) != len(categories) {
			return fmt.Errorf("bar group %v has %v values for %v categories", group.Label, len(group.Values), len(categories))
		}
		bars, err := plotter.NewBarChart(plotter.Values(group.Values), width)
		if err != nil {
			return fmt.Errorf("bar group %v: %w", group.Label, err)
		}
		bars.Color = c.nextColor()
		bars.LineStyle.Width = 0
		bars.Offset = vg.Length(float64(i)-float64(len(groups)-1)/2) * width
		c.Add(bars)
		if group.Label != "" {
			c.Legend.Add(group.Label, bars)
		}
	}
	c.NominalX(categories...)
	return nil
}

func (c *Chart) LogY() {
	c.Y.Scale = plot.LogScale{}
	c.Y.Tick.Marker = plot.LogTicks{Prec: -1}
}

// Save renders to path; the format follows the file extension.
func (c *Chart) Save(path string) error {
	if err := c.Plot.Save(8*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot %v: %w", path, err)
	}
	Logger.Infof("saved plot %v", path)
	return nil
}
