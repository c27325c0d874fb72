package report

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/san-kum/panelflutter/internal/flutter"
)

// HTML renders the V-g and V-f diagrams as one interactive page.
func HTML(w io.Writer, title string, res *flutter.Result) error {
	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(lineChart(res, Damping), lineChart(res, Frequency))
	return page.Render(w)
}

func HTMLFile(path, title string, res *flutter.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return HTML(f, title, res)
}

func lineChart(res *flutter.Result, k Kind) *charts.Line {
	v, curves := series(res, k)

	yName := "damping g"
	if k == Frequency {
		yName = "frequency, Hz"
	}
	subtitle := res.String()

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			BackgroundColor: "#ffffff",
			Width:           "100%",
			Height:          "480px",
		}),
		charts.WithTitleOpts(opts.Title{Title: k.String(), Subtitle: subtitle}),
		charts.WithLegendOpts(opts.Legend{
			Show:         opts.Bool(true),
			SelectedMode: "multiple",
			Type:         "scroll",
			Top:          "8%",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
			AxisPointer: &opts.AxisPointer{
				Type: "cross",
				Snap: opts.Bool(true),
			},
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Name:      "V, m/s",
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name:      yName,
			Type:      "value",
			Scale:     opts.Bool(true),
			SplitLine: &opts.SplitLine{Show: opts.Bool(true)},
		}),
	)

	x := make([]string, len(v))
	for i := range v {
		x[i] = fmt.Sprintf("%.1f", v[i])
	}
	line.SetXAxis(x)
	for m, c := range curves {
		line.AddSeries(fmt.Sprintf("mode %d", m+1), lineData(c))
	}
	return line
}

// lineData maps NaN to "-", which echarts draws as a gap.
func lineData(xs []float64) []opts.LineData {
	out := make([]opts.LineData, len(xs))
	for i, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			out[i] = opts.LineData{Value: "-"}
			continue
		}
		out[i] = opts.LineData{Value: x}
	}
	return out
}
