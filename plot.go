package pertpy

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Tick marks the path position of a labeled point
type Tick struct {
	Label string
	X     float64
}

// LabelTicks locates every label of db on its path. A label that matches
// several points yields one tick per match; a label with no point within
// DefaultMaxDist is skipped. Ticks are sorted by position, then label.
func LabelTicks(db *RecipPtDB) []Tick {
	var ret []Tick
	for label, pt := range db.Labels {
		for _, x := range db.Point2Path(pt, DefaultMaxDist, false) {
			ret = append(ret, Tick{Label: label, X: x})
		}
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].X != ret[j].X {
			return ret[i].X < ret[j].X
		}
		return ret[i].Label < ret[j].Label
	})
	return ret
}

// Line is the dispersion of a single band or mode
type Line struct {
	Index int
	X, Y  []float64
}

// DispersionLines pairs the path of db with each entry of energies. When
// window is non-nil, only points with window[0] < y < window[1] are kept and
// lines left empty are dropped.
func DispersionLines(db *RecipPtDB, energies *UnitsDict,
	window *[2]float64) []Line {
	var ret []Line
	for _, n := range energies.Indices() {
		y := energies.Data[n]
		line := Line{Index: n}
		for i, x := range db.Path {
			if i >= len(y) {
				break
			}
			if window != nil && (y[i] <= window[0] || y[i] >= window[1]) {
				continue
			}
			line.X = append(line.X, x)
			line.Y = append(line.Y, y[i])
		}
		if len(line.X) > 0 {
			ret = append(ret, line)
		}
	}
	return ret
}

// WriteDispersion writes lines as whitespace-separated columns of path
// coordinate and energy, with a blank line between bands, followed by a
// commented list of ticks
func WriteDispersion(w io.Writer, lines []Line, ticks []Tick, units string) {
	fmt.Fprintf(w, "# %5s%14s%20s\n", "BAND", "PATH", "ENERGY ("+units+")")
	for _, l := range lines {
		for i := range l.X {
			fmt.Fprintf(w, "%7d%14.6f%20.10f\n", l.Index, l.X[i], l.Y[i])
		}
		fmt.Fprint(w, "\n")
	}
	for _, t := range ticks {
		fmt.Fprintf(w, "# %-10s%14.6f\n", t.Label, t.X)
	}
}

// tickColor is the light gray of the vertical lines marking labeled points
var tickColor = color.Gray{Y: 0xd3}

// PlotDispersion draws each line as a band in its own color, with a dashed
// vertical line and an axis label at every tick. The y axis covers the
// energies present in lines.
func PlotDispersion(lines []Line, ticks []Tick, units string) (*plot.Plot,
	error) {
	if len(lines) == 0 {
		return nil, errors.New("no bands to plot")
	}
	p := plot.New()
	p.Y.Label.Text = fmt.Sprintf("Energy (%s)", units)
	ymin, ymax := math.Inf(1), math.Inf(-1)
	for i, l := range lines {
		xys := make(plotter.XYs, len(l.X))
		for j := range l.X {
			xys[j].X, xys[j].Y = l.X[j], l.Y[j]
			ymin = math.Min(ymin, l.Y[j])
			ymax = math.Max(ymax, l.Y[j])
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("band %d: %w", l.Index, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(2)
		p.Add(line)
	}

	marks := make([]plot.Tick, 0, len(ticks))
	for _, t := range ticks {
		v, err := plotter.NewLine(plotter.XYs{{X: t.X, Y: ymin},
			{X: t.X, Y: ymax}})
		if err != nil {
			return nil, fmt.Errorf("tick %s: %w", t.Label, err)
		}
		v.Color = tickColor
		v.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
		p.Add(v)
		marks = append(marks, plot.Tick{Value: t.X, Label: t.Label})
	}
	p.X.Tick.Marker = plot.ConstantTicks(marks)
	if ymin == ymax {
		ymin, ymax = ymin-1, ymax+1
	}
	p.Y.Min, p.Y.Max = ymin, ymax
	return p, nil
}

// SaveDispersion plots lines and ticks and writes the figure to path, in the
// format given by its extension
func SaveDispersion(path string, lines []Line, ticks []Tick,
	units string) error {
	p, err := PlotDispersion(lines, ticks, units)
	if err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 4.5*vg.Inch, path)
}
