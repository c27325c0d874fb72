package report

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/panelflutter/internal/flutter"
)

// Plot builds a gonum plot of one diagram. Failed roots break the line.
func Plot(res *flutter.Result, k Kind) (*plot.Plot, error) {
	v, curves := series(res, k)

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: %s", k, res)
	p.X.Label.Text = "V (m/s)"
	p.Y.Label.Text = "damping g"
	if k == Frequency {
		p.Y.Label.Text = "frequency (Hz)"
	}
	p.Add(plotter.NewGrid())

	for m, c := range curves {
		for i, seg := range segments(v, c) {
			l, err := plotter.NewLine(seg)
			if err != nil {
				return nil, err
			}
			l.Color = plotutil.Color(m)
			l.Dashes = plotutil.Dashes(m)
			p.Add(l)
			if i == 0 {
				p.Legend.Add(fmt.Sprintf("mode %d", m+1), l)
			}
		}
	}

	if k == Damping && len(v) > 1 {
		zero, err := plotter.NewLine(plotter.XYs{{X: v[0], Y: 0}, {X: v[len(v)-1], Y: 0}})
		if err != nil {
			return nil, err
		}
		zero.Width = vg.Points(0.5)
		p.Add(zero)
	}
	p.Legend.Top = true
	return p, nil
}

// PNG saves the diagram; the extension picks the format.
func PNG(path string, res *flutter.Result, k Kind) error {
	p, err := Plot(res, k)
	if err != nil {
		return err
	}
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

// segments splits a curve at NaN values.
func segments(x, y []float64) []plotter.XYs {
	var out []plotter.XYs
	var cur plotter.XYs
	for i := range x {
		if math.IsNaN(y[i]) || math.IsInf(y[i], 0) {
			if len(cur) > 0 {
				out = append(out, cur)
				cur = nil
			}
			continue
		}
		cur = append(cur, plotter.XY{X: x[i], Y: y[i]})
	}
	if len(cur) > 0 {
		out = append(out, cur)
	}
	return out
}
